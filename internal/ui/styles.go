package ui

import "github.com/charmbracelet/lipgloss"

// Color palette. ANSI-indexed like cklxx-elephant.ai's tui_styles.go
// rather than hex, since the teacher's own color constants file (the
// one table.go/terminal.go/prompts.go were written against) was never
// retrieved in the pack - only its call sites (ColorAccent,
// ColorWarn, ColorPass, ColorMuted) survived. These four are rebuilt
// here under the same names so the rest of internal/ui needs no
// further change.
var (
	ColorAccent = lipgloss.Color("14") // cyan: headers, the active task
	ColorWarn   = lipgloss.Color("3")  // yellow: pending actions, stale state
	ColorPass   = lipgloss.Color("10") // green: Done status
	ColorFail   = lipgloss.Color("1")  // red: Closed status, errors
	ColorMuted  = lipgloss.Color("8")  // gray: borders, hints, Open/default
)

// StatusStyle returns the style a task's status column renders with.
func StatusStyle(name string) lipgloss.Style {
	switch name {
	case "Done":
		return lipgloss.NewStyle().Foreground(ColorPass)
	case "Closed":
		return lipgloss.NewStyle().Foreground(ColorFail)
	case "Pending":
		return lipgloss.NewStyle().Foreground(ColorWarn)
	default:
		return lipgloss.NewStyle().Foreground(ColorMuted)
	}
}

// RenderPass, RenderWarn, and RenderError apply the same three-tier
// severity coloring the error taxonomy's status line uses - their
// call sites survived in the teacher's init_render.go but the
// functions' own source never made it into the pack, so these are
// rebuilt directly on styles.go's palette.
func RenderPass(s string) string {
	return lipgloss.NewStyle().Foreground(ColorPass).Render(s)
}

func RenderWarn(s string) string {
	return lipgloss.NewStyle().Foreground(ColorWarn).Render(s)
}

func RenderError(s string) string {
	return lipgloss.NewStyle().Foreground(ColorFail).Render(s)
}
