package ui

import (
	"fmt"

	"github.com/charmbracelet/glamour"
)

// NoteRenderer pretty-prints note/comment content as terminal markdown -
// a rendering concern, not the document-rendering feature excluded
// elsewhere: a note's text may use markdown inline syntax, but mostr
// never renders a task tree as a document.
type NoteRenderer struct {
	r *glamour.TermRenderer
}

// NewNoteRenderer builds a renderer sized to width, following the
// dark/notty style switch the teacher's markdown renderer uses for
// color vs plain-text terminals.
func NewNoteRenderer(width int, color bool) (*NoteRenderer, error) {
	style := glamour.WithStandardStyle("dark")
	if !color {
		style = glamour.WithStandardStyle("notty")
	}
	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(width), glamour.WithEmoji())
	if err != nil {
		return nil, fmt.Errorf("building note renderer: %w", err)
	}
	return &NoteRenderer{r: r}, nil
}

// Render renders one note's content, falling back to the raw text if
// glamour can't parse it (malformed embedded markdown isn't fatal).
func (n *NoteRenderer) Render(content string) string {
	if content == "" {
		return ""
	}
	out, err := n.r.Render(content)
	if err != nil {
		return content
	}
	return out
}
