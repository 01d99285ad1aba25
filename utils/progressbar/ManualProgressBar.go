// Package progressbar implements functionality of printing a progress
// bar to the terminal window
package progressbar

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// ManualProgressBar implement progress bar functionality that must
// be manually managed. That is, the Display() function must be called
// whenever an updated progress bar should be printed to the screen.
//
// ManualProgressBar does not use concurrency.
type ManualProgressBar struct {
	width           float64
	maxProgress     float64
	currentProgress float64
	description     string
	bar             strings.Builder
	startTime       time.Time
	out             io.Writer
}

// NewManualProgressBar returns a new ManualProgressBar which writes to
// standard output
func NewManualProgressBar(width, max int) *ManualProgressBar {
	return NewManualProgressBarTo(os.Stdout, width, max)
}

// NewManualProgressBarTo returns a new ManualProgressBar which writes
// to out
func NewManualProgressBarTo(out io.Writer, width,
	max int) *ManualProgressBar {
	if max < 1 {
		max = 1
	}
	return &ManualProgressBar{
		width:       float64(width),
		maxProgress: float64(max),
		startTime:   time.Now(),
		out:         out,
	}
}

// Increment increments the interal progress counter. Each time an
// iteration is performed, Increment should be called.
func (p *ManualProgressBar) Increment() {
	if p.currentProgress < p.maxProgress {
		p.currentProgress++
	}
}

// Describe sets a message to display after the progress bar, such as
// the current training loss
func (p *ManualProgressBar) Describe(format string, a ...interface{}) {
	p.description = fmt.Sprintf(format, a...)
}

// Progress returns the fraction of iterations completed
func (p *ManualProgressBar) Progress() float64 {
	return p.currentProgress / p.maxProgress
}

// String returns the progress bar as it would be displayed
func (p *ManualProgressBar) String() string {
	p.bar.Reset()
	p.bar.WriteString("|")

	currentProg := p.Progress() * p.width
	for i := 0.0; i < currentProg; i++ {
		p.bar.WriteString("█")
	}
	for i := currentProg; i < p.width; i++ {
		p.bar.WriteString(" ")
	}
	p.bar.WriteString(fmt.Sprintf("| [%.2f%v | elapsed: %v]",
		p.Progress()*100, "%",
		time.Since(p.startTime).Truncate(time.Second)))

	if p.description != "" {
		p.bar.WriteString(" " + p.description)
	}
	return p.bar.String()
}

// Display prints the progress bar over the previous one
func (p *ManualProgressBar) Display() {
	fmt.Fprintf(p.out, "\n\033[1A\033[K%v", p.String())
}

// Close moves the cursor past the progress bar
func (p *ManualProgressBar) Close() {
	fmt.Fprintln(p.out)
}
