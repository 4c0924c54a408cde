package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// ProgressBar represents a simple progress bar for determinate operations
type ProgressBar struct {
	writer  io.Writer
	total   int
	current int
	width   int
	message string
	noColor bool
}

// ProgressBarOptions configures progress bar behavior
type ProgressBarOptions struct {
	Total   int
	Width   int // Default: 40
	Message string
	NoColor bool
}

// NewProgressBar creates a new progress bar
func NewProgressBar(w io.Writer, opts ProgressBarOptions) *ProgressBar {
	width := opts.Width
	if width == 0 {
		width = 40
	}

	return &ProgressBar{
		writer:  w,
		total:   opts.Total,
		current: 0,
		width:   width,
		message: opts.Message,
		noColor: opts.NoColor,
	}
}

// Set sets the current progress to the given value
func (p *ProgressBar) Set(n int) {
	p.current = n
	if p.current > p.total {
		p.current = p.total
	}
	p.render()
}

// Finish completes the progress bar
func (p *ProgressBar) Finish() {
	p.current = p.total
	p.render()
	fmt.Fprintln(p.writer)
}

// FinishWithMessage completes the progress bar with a success message
func (p *ProgressBar) FinishWithMessage(message string) {
	p.Finish()
	green := color.New(color.FgGreen, color.Bold)
	if p.noColor {
		green.DisableColor()
	}
	green.Fprintf(p.writer, "✓ %s\n", message)
}

func (p *ProgressBar) render() {
	if p.total == 0 {
		return
	}

	percent := float64(p.current) / float64(p.total)
	filledWidth := int(float64(p.width) * percent)

	cyan := color.New(color.FgCyan)
	gray := color.New(color.FgHiBlack)
	if p.noColor {
		cyan.DisableColor()
		gray.DisableColor()
	}

	var bar strings.Builder
	bar.WriteString("[")
	cyan.Fprint(&bar, strings.Repeat("█", filledWidth))
	gray.Fprint(&bar, strings.Repeat("░", p.width-filledWidth))
	bar.WriteString("]")

	message := ""
	if p.message != "" {
		message = " " + p.message
	}

	fmt.Fprintf(p.writer, "\r%s %3d%%%s", bar.String(), int(percent*100), message)
}
