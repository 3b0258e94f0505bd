package tui

import (
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// NewRenderer returns a function that renders markdown using glamour.
func NewRenderer() (func(string) (string, error), error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
	)
	if err != nil {
		return nil, err
	}
	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}, nil
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// ColorProfile resolves the colour mode: "always", "never" or "auto"
// (colour only when stdout is a terminal).
func ColorProfile(mode string) termenv.Profile {
	switch mode {
	case "always":
		if p := termenv.ColorProfile(); p != termenv.Ascii {
			return p
		}
		return termenv.ANSI256
	case "never":
		return termenv.Ascii
	default:
		if !IsTerminal(os.Stdout) {
			return termenv.Ascii
		}
		return termenv.ColorProfile()
	}
}
