package report

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"

	"stockdash/internal/analytics"
)

// DefaultWordWrap is the wrap width used when none is given.
const DefaultWordWrap = 100

// Options controls terminal rendering.
type Options struct {
	// Styled renders through glamour. Otherwise plain markdown is written.
	Styled   bool
	WordWrap int
}

// Render returns md styled for the terminal.
func Render(md string, wordWrap int) (string, error) {
	if wordWrap <= 0 {
		wordWrap = DefaultWordWrap
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wordWrap),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create markdown renderer: %w", err)
	}

	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return out, nil
}

// Write writes the dashboard summary to w.
func Write(w io.Writer, d *analytics.Dashboard, opts Options) error {
	md := Markdown(d)

	if opts.Styled {
		out, err := Render(md, opts.WordWrap)
		if err != nil {
			return err
		}
		md = out
	}

	_, err := io.WriteString(w, md)
	return err
}

// IsTerminal reports whether f is attached to a character device.
func IsTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
