// Package ui provides terminal styling and output helpers for mostr's
// REPL.
package ui

import (
	"os"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// IsTerminal returns true if stdout is connected to a terminal (TTY).
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// ShouldUseColor determines if ANSI color codes should be used,
// deferring to termenv's own environment detection (NO_COLOR,
// CLICOLOR/CLICOLOR_FORCE, and terminfo-based profile sniffing) rather
// than re-checking those variables by hand.
func ShouldUseColor() bool {
	return termenv.EnvColorProfile() != termenv.Ascii
}

// ColorMode resolves the settings.yaml "color-mode" knob ("auto",
// "always", "never") against termenv's detected profile, so callers
// that want an explicit override don't need their own env parsing.
func ColorMode(mode string) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default:
		return ShouldUseColor()
	}
}

// ShouldUseEmoji determines if emoji decorations should be used.
// Disabled in non-TTY mode to keep output machine-readable.
// Can be controlled with the MOSTR_NO_EMOJI environment variable.
func ShouldUseEmoji() bool {
	// Explicit disable
	if os.Getenv("MOSTR_NO_EMOJI") != "" {
		return false
	}

	// Default: use emoji only if stdout is a TTY
	return IsTerminal()
}

// GetWidth returns the width of the terminal or a default value.
func GetWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return 80
	}
	return w
}
