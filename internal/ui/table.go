package ui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/xeruf/mostr-go/internal/aggregate"
	"github.com/xeruf/mostr-go/internal/store"
)

// Table Styles
var (
	TableHeaderStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorAccent).
		Align(lipgloss.Center)

	TableBorderStyle = lipgloss.NewStyle().
		Foreground(ColorMuted)

	activeRowStyle = lipgloss.NewStyle().Bold(true)
)

// NewTaskTable creates a table with the same rounded-border styling
// the teacher's NewSearchTable used for search results, now scoped to
// the column-based task view of §4.5.
func NewTaskTable(width int) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(TableBorderStyle).
		Width(width)
}

// RenderTasks renders tasks as a table with the given column list, in
// the order view.State.Columns specifies, marking activeID's row; rpath
// is relative to activeID. notes may be nil, in which case the
// desc/description columns fall back to plain text (descriptions is
// always raw).
func RenderTasks(eng *aggregate.Engine, tasks []*store.Task, columns []string, localAuthor string, now time.Time, activeID string, width int, notes *NoteRenderer) string {
	t := NewTaskTable(width)
	t.Headers(headerRow(columns)...)

	t.StyleFunc(func(row, col int) lipgloss.Style {
		if row == table.HeaderRow {
			return TableHeaderStyle
		}
		if row >= 0 && row < len(tasks) && tasks[row].ID == activeID {
			return activeRowStyle
		}
		return lipgloss.NewStyle()
	})

	for _, task := range tasks {
		row := make([]string, len(columns))
		for i, col := range columns {
			row[i] = cellValue(eng, task, col, localAuthor, now, activeID, notes)
		}
		t.Row(row...)
	}
	return t.Render()
}

func headerRow(columns []string) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = strings.ToUpper(c[:1]) + c[1:]
	}
	return out
}

// cellValue computes one column's display value for one task. Derived
// columns (progress, subtasks, time, rtime, path, rpath, desc) are
// read from the aggregator; everything else comes straight off the
// store projection.
func cellValue(eng *aggregate.Engine, t *store.Task, col, localAuthor string, now time.Time, position string, notes *NoteRenderer) string {
	renderNote := func(s string) string {
		if notes == nil {
			return s
		}
		return strings.TrimSpace(notes.Render(s))
	}
	switch col {
	case "id":
		return t.ID[:min(8, len(t.ID))]
	case "parentid":
		if t.ParentID == "" {
			return ""
		}
		return t.ParentID[:min(8, len(t.ParentID))]
	case "name":
		return t.Name
	case "state":
		return StatusStyle(t.StatusKind.StatusName()).Render(t.StatusKind.StatusName())
	case "hashtags":
		return strings.Join(sortedKeys(t.Hashtags), " ")
	case "tags":
		return strings.Join(sortedKeys(t.Hashtags), " ")
	case "desc":
		return renderNote(eng.Desc(t.ID))
	case "description":
		return renderNote(eng.Description(t.ID))
	case "path":
		return strings.Join(eng.Path(t.ID), "/")
	case "rpath":
		return strings.Join(eng.RPath(t.ID, position), "/")
	case "time":
		return formatDuration(eng.Ledger.Duration(t.ID, localAuthor, now))
	case "rtime":
		return formatDuration(eng.RTime(t.ID, localAuthor, now))
	case "progress":
		return fmt.Sprintf("%.0f%%", eng.Progress(t.ID))
	case "subtasks":
		return strconv.Itoa(eng.Subtasks(t.ID))
	case "props":
		return fmt.Sprintf("author=%s created=%d", t.Author, t.CreatedAt)
	case "alltags":
		var parts []string
		for _, tag := range t.RawTags {
			parts = append(parts, strings.Join(tag, "="))
		}
		return strings.Join(parts, " ")
	case "descriptions":
		var parts []string
		for _, n := range t.Notes {
			parts = append(parts, n.Content)
		}
		return strings.Join(parts, " | ")
	default:
		return ""
	}
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return ""
	}
	d = d.Round(time.Minute)
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	if h > 0 {
		return fmt.Sprintf("%dh%dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
