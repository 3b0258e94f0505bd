package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the portscope banner, shaded along the plug-type palette.
func PrintBanner(w io.Writer, p termenv.Profile) {
	lines := []struct {
		text, hex string
	}{
		{"                  _                             ", "#62cfd9"},
		{"  _ __   ___  _ __| |_ ___  ___ ___  _ __   ___ ", "#82d99f"},
		{" | '_ \\ / _ \\| '__| __/ __|/ __/ _ \\| '_ \\ / _ \\", "#a8d977"},
		{" | |_) | (_) | |  | |_\\__ \\ (_| (_) | |_) |  __/", "#d9be6c"},
		{" | .__/ \\___/|_|   \\__|___/\\___\\___/| .__/ \\___|", "#e69963"},
		{" |_|                                |_|         ", "#de756e"},
	}

	_, _ = fmt.Fprintln(w)
	for _, l := range lines {
		if p == termenv.Ascii {
			_, _ = fmt.Fprintln(w, l.text)
			continue
		}
		_, _ = fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.hex)))
	}
	_, _ = fmt.Fprintln(w)
}
