package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/samuelfneumann/golts/experiment"
	"github.com/samuelfneumann/golts/experiment/trackers"
	"github.com/spf13/cobra"
)

// loadConfig reads an experiment configuration from a JSON file. Fields
// missing from the file keep their default values.
func loadConfig(filename string) (experiment.Config, error) {
	config := experiment.DefaultConfig()
	if filename == "" {
		return config, nil
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return config, fmt.Errorf("loadConfig: could not read config: %v",
			err)
	}
	if err := json.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("loadConfig: could not unmarshal "+
			"config: %v", err)
	}
	return config, nil
}

// Train runs the experiment described by config, saving the training
// and test losses in saveDir
func Train(config experiment.Config, saveDir string, verbose bool) error {
	if err := os.MkdirAll(saveDir, 0o755); err != nil {
		return fmt.Errorf("train: could not create save directory: %v", err)
	}

	trainLoss := trackers.NewLoss(trackers.Train,
		filepath.Join(saveDir, "train.bin"))
	testLoss := trackers.NewLoss(trackers.Test,
		filepath.Join(saveDir, "test.bin"))

	if config.CheckpointEvery > 0 {
		config.CheckpointFile = filepath.Join(saveDir, config.CheckpointFile)
	}

	exp, err := config.CreateExp(trainLoss, testLoss)
	if err != nil {
		return fmt.Errorf("train: %v", err)
	}
	exp.Verbose = verbose

	if err := exp.Run(); err != nil {
		return fmt.Errorf("train: %v", err)
	}
	if err := exp.Save(); err != nil {
		return fmt.Errorf("train: %v", err)
	}
	return nil
}

// TrainCommand returns the command which trains a policy on a randomly
// generated sequence labeling task
func TrainCommand() *cobra.Command {
	var configFile string
	var saveDir string
	var algorithm string
	var epochs int
	var seed uint64
	var quiet bool

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train a linear policy on a sequence labeling task",
		Run: func(cmd *cobra.Command, args []string) {
			config, err := loadConfig(configFile)
			if err != nil {
				log.Fatalf("could not load config: %v", err)
			}

			// Flags override the configuration file
			if cmd.Flags().Changed("algorithm") {
				config.Algorithm = experiment.Algorithm(algorithm)
			}
			if cmd.Flags().Changed("epochs") {
				config.Epochs = epochs
			}
			if cmd.Flags().Changed("seed") {
				config.Seed = seed
			}

			if err := Train(config, saveDir, !quiet); err != nil {
				log.Fatalf("could not train: %v", err)
			}
		},
	}
	cmd.PersistentFlags().StringVar(&configFile, "config", "",
		"JSON experiment configuration")
	cmd.PersistentFlags().StringVar(&saveDir, "save", "results",
		"Directory to save data in")
	cmd.PersistentFlags().StringVar(&algorithm, "algorithm",
		string(experiment.LOLS), "Learning algorithm (LOLS or BanditLOLS)")
	cmd.PersistentFlags().IntVar(&epochs, "epochs", 5, "Number of epochs")
	cmd.PersistentFlags().Uint64Var(&seed, "seed", 0, "Random seed")
	cmd.PersistentFlags().BoolVar(&quiet, "quiet", false,
		"Do not print progress")
	return cmd
}
