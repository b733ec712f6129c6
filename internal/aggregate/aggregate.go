// Package aggregate wires the task store and time-tracking ledger
// together and computes the roll-up properties of §4.2: rtime,
// progress, subtasks, path/rpath, and the note-derived description
// columns. Engine.Apply is the single ingestion entry point that both
// the command interpreter's optimistic local apply and the relay's
// inbound stream feed events through.
package aggregate

import (
	"strings"
	"sync"
	"time"

	"github.com/xeruf/mostr-go/internal/events"
	"github.com/xeruf/mostr-go/internal/ledger"
	"github.com/xeruf/mostr-go/internal/store"
)

// memoEntry caches the structural (clock-independent) roll-ups for a
// task as of a given store generation. rtime is intentionally not
// memoized here: it depends on wall-clock time for any still-open
// interval, so caching it across calls would need a second,
// time-bucketed invalidation axis that the specification does not
// call for - it is cheap enough (one ledger scan plus a child sum) to
// recompute on every call instead.
type memoEntry struct {
	generation int
	progress   float64
	subtasks   int
	path       []string
}

// Engine composes a Store and a Ledger and memoizes the derived
// roll-ups per store generation, invalidating a task and all its
// ancestors whenever that task (or a descendant) changes.
type Engine struct {
	Store  *store.Store
	Ledger *ledger.Ledger

	mu         sync.Mutex
	generation int
	memo       map[string]*memoEntry
}

// New returns an Engine over a fresh store and ledger.
func New() *Engine {
	return &Engine{
		Store:  store.New(),
		Ledger: ledger.New(),
		memo:   make(map[string]*memoEntry),
	}
}

// Apply routes e to the store or ledger as appropriate and invalidates
// memo entries for every task whose projection may have changed. It
// returns the task ids the store reports as changed (tracking events
// return the author's previous and new active task, if any, so
// rtime-dependent displays know to refresh even though rtime itself
// is not memoized).
func (a *Engine) Apply(e *events.Event) []string {
	a.mu.Lock()
	defer a.mu.Unlock()

	var touched []string
	if e.Kind == events.KindTracking {
		prev, hadPrev := a.Ledger.ActiveTask(e.Author)
		a.Ledger.Apply(e)
		next, hasNext := a.Ledger.ActiveTask(e.Author)
		if hadPrev {
			touched = append(touched, prev)
		}
		if hasNext {
			touched = append(touched, next)
		}
	} else {
		touched = a.Store.Apply(e)
	}

	a.generation++
	a.invalidate(touched)
	return touched
}

// invalidate drops memo entries for every id in touched and all of
// their ancestors.
func (a *Engine) invalidate(touched []string) {
	seen := make(map[string]struct{})
	for _, id := range touched {
		for cur := id; cur != "" && cur != "root"; {
			if _, ok := seen[cur]; ok {
				break
			}
			seen[cur] = struct{}{}
			delete(a.memo, cur)
			t := a.Store.Get(cur)
			if t == nil {
				break
			}
			cur = t.ParentID
		}
	}
}

func (a *Engine) lookup(id string) *memoEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	if e, ok := a.memo[id]; ok && e.generation == a.generation {
		return e
	}
	return nil
}

func (a *Engine) store(id string, e *memoEntry) {
	a.mu.Lock()
	defer a.mu.Unlock()
	e.generation = a.generation
	a.memo[id] = e
}

// leaves returns every descendant of id with no children, including id
// itself if it has none.
func (a *Engine) leaves(id string) []*store.Task {
	children := a.Store.ChildrenOf(id)
	if len(children) == 0 {
		if t := a.Store.Get(id); t != nil {
			return []*store.Task{t}
		}
		return nil
	}
	var out []*store.Task
	for _, c := range children {
		out = append(out, a.leaves(c.ID)...)
	}
	return out
}

// Progress reports the percentage (0-100) of leaf descendants of id
// (id itself if it has no children) whose status is Done. Closed
// leaves are excluded from both numerator and denominator; Pending
// counts as not-done. A subtree with no Open/Done/Pending leaves
// reports 100.
func (a *Engine) Progress(id string) float64 {
	if m := a.lookup(id); m != nil {
		return m.progress
	}
	var done, total int
	for _, lf := range a.leaves(id) {
		switch lf.StatusKind {
		case events.KindStatusClosed:
			continue
		case events.KindStatusDone:
			done++
			total++
		default:
			total++
		}
	}
	p := 100.0
	if total > 0 {
		p = 100 * float64(done) / float64(total)
	}
	if m := a.lookup(id); m != nil {
		return m.progress
	}
	a.store(id, &memoEntry{progress: p, subtasks: a.subtasksUncached(id), path: a.pathUncached(id)})
	return p
}

func (a *Engine) subtasksUncached(id string) int {
	n := 0
	for _, c := range a.Store.ChildrenOf(id) {
		if c.StatusKind == events.KindStatusDone {
			n++
		}
	}
	return n
}

// Subtasks returns the count of direct children of id whose status is
// Done.
func (a *Engine) Subtasks(id string) int {
	if m := a.lookup(id); m != nil {
		return m.subtasks
	}
	n := a.subtasksUncached(id)
	a.store(id, &memoEntry{progress: a.Progress(id), subtasks: n, path: a.pathUncached(id)})
	return n
}

func (a *Engine) pathUncached(id string) []string {
	var chain []string
	visited := make(map[string]struct{})
	cur := id
	for cur != "" {
		if _, ok := visited[cur]; ok {
			break
		}
		visited[cur] = struct{}{}
		t := a.Store.Get(cur)
		if t == nil {
			break
		}
		chain = append(chain, t.Name)
		cur = t.ParentID
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// Path returns the name chain from the forest root down to id.
func (a *Engine) Path(id string) []string {
	if m := a.lookup(id); m != nil {
		return m.path
	}
	p := a.pathUncached(id)
	a.store(id, &memoEntry{progress: a.Progress(id), subtasks: a.subtasksUncached(id), path: p})
	return p
}

// RPath returns id's path relative to the current view position
// `from` ("" meaning root): the name chain with from's own path
// trimmed off the front, or the full path if from is not an ancestor.
func (a *Engine) RPath(id, from string) []string {
	full := a.Path(id)
	if from == "" {
		return full
	}
	base := a.Path(from)
	if len(base) > len(full) {
		return full
	}
	for i, name := range base {
		if full[i] != name {
			return full
		}
	}
	return full[len(base):]
}

// RTime is the tracked time on id plus the rtime of every transitive
// descendant, per §4.2/§8 invariant 4.
func (a *Engine) RTime(id, localAuthor string, now time.Time) time.Duration {
	total := a.Ledger.Duration(id, localAuthor, now)
	for _, c := range a.Store.ChildrenOf(id) {
		total += a.RTime(c.ID, localAuthor, now)
	}
	return total
}

// Description concatenates a task's notes in created_at order.
func (a *Engine) Description(id string) string {
	t := a.Store.Get(id)
	if t == nil {
		return ""
	}
	parts := make([]string, 0, len(t.Notes))
	for _, n := range t.Notes {
		parts = append(parts, n.Content)
	}
	return strings.Join(parts, "\n\n")
}

// Desc returns the content of the most recent note on id, or "".
func (a *Engine) Desc(id string) string {
	t := a.Store.Get(id)
	if t == nil || len(t.Notes) == 0 {
		return ""
	}
	return t.Notes[len(t.Notes)-1].Content
}
