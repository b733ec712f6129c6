package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/xeruf/mostr-go/internal/aggregate"
	"github.com/xeruf/mostr-go/internal/view"
)

var (
	statusMutedStyle = lipgloss.NewStyle().Foreground(ColorMuted)
	statusWarnStyle  = lipgloss.NewStyle().Foreground(ColorWarn)
	statusAccentStyle = lipgloss.NewStyle().Foreground(ColorAccent).Bold(true)
)

// RenderStatusLine builds the single summary line printed above the
// prompt: current position (name, or "root"), depth, column list, and
// a pending-action marker when one is outstanding.
func RenderStatusLine(eng *aggregate.Engine, v *view.State, now time.Time) string {
	pos := "root"
	if v.Position != "" {
		if t := eng.Store.Get(v.Position); t != nil && t.Name != "" {
			pos = t.Name
		} else {
			pos = v.Position[:min(8, len(v.Position))]
		}
	}

	var b strings.Builder
	b.WriteString(statusAccentStyle.Render(pos))
	b.WriteString(statusMutedStyle.Render(fmt.Sprintf(" depth=%d cols=%s", v.Depth, strings.Join(v.Columns, ","))))

	if v.Pending != nil {
		remaining := v.Pending.Deadline.Sub(now)
		if remaining < 0 {
			remaining = 0
		}
		b.WriteString(statusWarnStyle.Render(fmt.Sprintf(" pending(%s, %d events)", remaining.Round(time.Second), len(v.Pending.Events))))
	}

	return b.String()
}
