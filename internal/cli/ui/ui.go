// Package ui renders command output: status messages, numbered report
// sections and a single-line progress display.
package ui

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// FormatSuccess creates a success message
func FormatSuccess(message string, noColor bool) string {
	green := color.New(color.FgGreen, color.Bold)
	if noColor {
		green.DisableColor()
	}
	return green.Sprintf("✓ %s", message)
}

// WriteSuccess writes a success message to the writer
func WriteSuccess(w io.Writer, message string, noColor bool) {
	fmt.Fprintln(w, FormatSuccess(message, noColor))
}

// NumberedSection writes a titled, numbered list. Empty lists produce no
// output at all, so reports with nothing to say stay silent.
func NumberedSection(w io.Writer, title string, items []string, c *color.Color) {
	if len(items) == 0 {
		return
	}
	c.Fprintf(w, "%s\n", title)
	for i, item := range items {
		fmt.Fprintf(w, "%4d. %s\n", i+1, item)
	}
	fmt.Fprintln(w)
}

// StatusLine rewrites a single terminal line, for live progress during long
// operations.
type StatusLine struct {
	writer  io.Writer
	noColor bool
}

// NewStatusLine creates a status line on the writer.
func NewStatusLine(w io.Writer, noColor bool) *StatusLine {
	return &StatusLine{writer: w, noColor: noColor}
}

// Update replaces the current line with the formatted message.
func (s *StatusLine) Update(format string, args ...any) {
	cyan := color.New(color.FgCyan)
	if s.noColor {
		cyan.DisableColor()
	}
	fmt.Fprint(s.writer, "\r\033[K")
	cyan.Fprintf(s.writer, format, args...)
}

// Clear erases the line.
func (s *StatusLine) Clear() {
	fmt.Fprint(s.writer, "\r\033[K")
}
