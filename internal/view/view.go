// Package view implements §4.5's navigation and view state: current
// position, depth, column list, sort key, and the pending-action/undo
// buffer. It holds no task data itself - only the cursor over the
// store that the command interpreter and renderer share.
package view

import (
	"time"

	"github.com/xeruf/mostr-go/internal/events"
)

// Catalog is the fixed set of recognized column names, in the order
// they appear in §4.5. Debug columns (props, alltags, descriptions)
// are included but excluded from DefaultColumns.
var Catalog = []string{
	"id", "parentid", "name", "state", "hashtags", "tags",
	"desc", "description", "path", "rpath", "time", "rtime",
	"progress", "subtasks",
	"props", "alltags", "descriptions",
}

func isCatalogColumn(name string) bool {
	for _, c := range Catalog {
		if c == name {
			return true
		}
	}
	return false
}

// DefaultColumns is the column list a fresh view starts with.
var DefaultColumns = []string{"name", "state", "progress", "time"}

// PendingAction is a write the interpreter has built but holds back,
// neither applied nor published, until it is confirmed, per §4.6's
// undo semantics. Until Deadline, `&` can discard it instead.
type PendingAction struct {
	Events     []*events.Event
	PriorPos   string
	Deadline   time.Time
}

// State is the navigation/view cursor: current position, depth,
// column list, sort key, pending-action buffer, and navigation
// history for plain `&` undo of position-only moves.
type State struct {
	Position string // task id; "" = root
	Depth    int
	Columns  []string
	SortKey  string

	Pending *PendingAction

	history []string // prior positions, most recent last
}

// New returns a fresh view at root, depth 1, with the default column
// list and no sort key or pending action.
func New() *State {
	cols := make([]string, len(DefaultColumns))
	copy(cols, DefaultColumns)
	return &State{
		Position: "",
		Depth:    1,
		Columns:  cols,
	}
}

// Ascend moves the effective position up one parent, given a lookup
// of parent ids by task id. Ascending past root is a no-op. It
// pushes the prior position onto the navigation history.
func (v *State) Ascend(parentOf func(id string) string) {
	if v.Position == "" {
		return
	}
	v.history = append(v.history, v.Position)
	v.Position = parentOf(v.Position)
}

// Descend moves to a specific task id, pushing the prior position
// onto history.
func (v *State) Descend(id string) {
	v.history = append(v.history, v.Position)
	v.Position = id
}

// UndoNavigation pops the most recent navigation history entry and
// restores it as the current position. It reports whether there was
// anything to undo.
func (v *State) UndoNavigation() bool {
	if len(v.history) == 0 {
		return false
	}
	last := v.history[len(v.history)-1]
	v.history = v.history[:len(v.history)-1]
	v.Position = last
	return true
}

// SetDepth re-sets the view depth; depths below 1 clamp to 1.
func (v *State) SetDepth(d int) {
	if d < 1 {
		d = 1
	}
	v.Depth = d
}

// ToggleColumn inserts name at the given 1-indexed position (end if
// index is 0 or past the end), or removes an existing occurrence of
// name if one is already present - repeating a column name removes
// it, per §4.5.
func (v *State) ToggleColumn(name string, index int) {
	if !isCatalogColumn(name) {
		return
	}
	for i, c := range v.Columns {
		if c == name {
			v.Columns = append(v.Columns[:i], v.Columns[i+1:]...)
			return
		}
	}
	v.insertColumn(name, index)
}

// RemoveColumnAt removes the column at the given 1-indexed position,
// if one exists - repeating an index removes the entry there, per
// §4.5.
func (v *State) RemoveColumnAt(index int) {
	i := index - 1
	if i < 0 || i >= len(v.Columns) {
		return
	}
	v.Columns = append(v.Columns[:i], v.Columns[i+1:]...)
}

func (v *State) insertColumn(name string, index int) {
	i := index - 1
	if i < 0 || i > len(v.Columns) {
		i = len(v.Columns)
	}
	v.Columns = append(v.Columns[:i], append([]string{name}, v.Columns[i:]...)...)
}

// SetPending installs a new pending action, discarding any unconfirmed
// prior one (the interpreter never holds more than one at a time:
// any command other than ascend/undo displaces the previous pending
// action by confirming or replacing it before a new one is set).
func (v *State) SetPending(evts []*events.Event, priorPos string, window time.Duration, now time.Time) {
	v.Pending = &PendingAction{Events: evts, PriorPos: priorPos, Deadline: now.Add(window)}
}

// Expired reports whether the pending action's window has elapsed as
// of now, in which case the interpreter should confirm it.
func (p *PendingAction) Expired(now time.Time) bool {
	return p != nil && !now.Before(p.Deadline)
}

// ConfirmPending clears the pending slot and returns the events that
// were held, so the caller can hand them to the relay sink.
func (v *State) ConfirmPending() []*events.Event {
	if v.Pending == nil {
		return nil
	}
	evts := v.Pending.Events
	v.Pending = nil
	return evts
}

// DiscardPending cancels the pending action (`&`) and restores the
// position it displaced, if any.
func (v *State) DiscardPending() {
	if v.Pending == nil {
		return
	}
	v.Position = v.Pending.PriorPos
	v.Pending = nil
}
