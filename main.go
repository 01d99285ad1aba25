package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// main entry point to all the experiments
func main() {
	rootCommand := &cobra.Command{
		Use:   "golts",
		Short: "Train policies with learning to search algorithms",
	}
	rootCommand.AddCommand(TrainCommand())

	if err := rootCommand.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
