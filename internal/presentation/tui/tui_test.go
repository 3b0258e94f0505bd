package tui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColorProfile(t *testing.T) {
	assert.Equal(t, termenv.Ascii, ColorProfile("never"))
	assert.NotEqual(t, termenv.Ascii, ColorProfile("always"))
}

func TestPrintBanner_Plain(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, termenv.Ascii)
	assert.NotContains(t, buf.String(), "\x1b[")
	assert.Equal(t, 8, strings.Count(buf.String(), "\n"))
}

func TestNewRenderer(t *testing.T) {
	render, err := NewRenderer()
	require.NoError(t, err)

	out, err := render("| a |\n|---|\n| 1 |\n")
	require.NoError(t, err)
	assert.Contains(t, out, "1")
}
