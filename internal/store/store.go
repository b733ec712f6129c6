// Package store maintains the set of known tasks and the per-task
// projections derived from the event multiset: status, notes,
// children, and dangling-reference buffering. It implements §4.1 of
// the specification: apply is idempotent and order-independent, and
// recomputing from scratch at any time yields the same result.
package store

import (
	"sort"
	"sync"

	"github.com/xeruf/mostr-go/internal/events"
)

// Task is the derived entity keyed by the id of its kind-1621 creation
// event. Fields set at creation are immutable; StatusKind, StatusDesc,
// and Notes are projections recomputed as further events arrive.
type Task struct {
	ID        string
	Name      string
	ParentID  string // "" if absent or dangling
	Author    string
	CreatedAt int64
	Hashtags  map[string]struct{}
	RawTags   events.Tags // creation event's tags, for the alltags debug column

	StatusKind events.Kind // KindStatusOpen if no status event has been seen
	StatusDesc string
	statusWin  *events.Event // winning status event, for tie-break bookkeeping

	Notes []*events.Event // sorted by (created_at, id)

	Children map[string]struct{}
}

// HasTag reports whether name (already lower-cased) is one of the
// task's hashtags.
func (t *Task) HasTag(name string) bool {
	_, ok := t.Hashtags[name]
	return ok
}

func newTask(create *events.Event) *Task {
	return &Task{
		ID:        create.ID,
		Name:      create.Content,
		ParentID:  create.ParentID(),
		Author:    create.Author,
		CreatedAt: create.CreatedAt,
		Hashtags:  create.Hashtags(),
		RawTags:   create.Tags,
		StatusKind: events.KindStatusOpen,
		Children:  make(map[string]struct{}),
	}
}

// Store is the content-addressed map of tasks plus the buffers needed
// to tolerate out-of-order arrival. All exported methods are safe for
// concurrent use, though the specification's single-threaded core
// discipline means this is a convenience, not a requirement.
type Store struct {
	mu sync.RWMutex

	seen  map[string]struct{}
	tasks map[string]*Task

	// pending holds status/note events whose target task has not yet
	// been observed, keyed by the target task id.
	pending map[string][]*events.Event

	// rawPool retains events of unrecognized kinds, readable by id
	// through RawEvent; the props column does not display them.
	rawPool map[string]*events.Event

	warnedCycle map[string]struct{}
}

// New returns an empty task store.
func New() *Store {
	return &Store{
		seen:        make(map[string]struct{}),
		tasks:       make(map[string]*Task),
		pending:     make(map[string][]*events.Event),
		rawPool:     make(map[string]*events.Event),
		warnedCycle: make(map[string]struct{}),
	}
}

// Apply ingests an event. It is idempotent: re-applying an id already
// seen is a no-op. It returns the set of task ids whose projection
// changed as a result, which callers use to invalidate aggregator
// memos. Kind-1650 (tracking) events are not handled here - route them
// to the ledger separately; Apply treats them as inert, matching any
// other unrecognized kind.
func (s *Store) Apply(e *events.Event) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e == nil || e.ID == "" {
		return nil
	}
	if _, dup := s.seen[e.ID]; dup {
		return nil
	}
	s.seen[e.ID] = struct{}{}

	switch {
	case e.Kind == events.KindTaskCreate:
		return s.applyCreate(e)
	case e.Kind.IsStatus():
		return s.applyStatus(e)
	case e.Kind.IsNote():
		return s.applyNote(e)
	case e.Kind == events.KindTracking:
		return nil
	default:
		s.rawPool[e.ID] = e
		return nil
	}
}

func (s *Store) applyCreate(e *events.Event) []string {
	if _, exists := s.tasks[e.ID]; exists {
		return nil
	}
	task := newTask(e)
	if parent := task.ParentID; parent != "" {
		if s.wouldCycle(parent, task.ID) {
			task.ParentID = ""
		}
	}
	s.tasks[task.ID] = task
	changed := []string{task.ID}

	if p, ok := s.tasks[task.ParentID]; task.ParentID != "" && ok {
		p.Children[task.ID] = struct{}{}
		changed = append(changed, p.ID)
	}

	// Retroactively absorb any status/note events that arrived before
	// this task's creation event.
	if buffered, ok := s.pending[task.ID]; ok {
		delete(s.pending, task.ID)
		for _, be := range buffered {
			var more []string
			if be.Kind.IsStatus() {
				more = s.applyStatus(be)
			} else {
				more = s.applyNote(be)
			}
			changed = append(changed, more...)
		}
	}

	// Any task whose creation event already declared this one as its
	// parent (but arrived first, when the parent was still dangling)
	// now attaches as a child, provided doing so would not close a
	// cycle through the newly created task's own ancestor chain.
	for _, other := range s.tasks {
		if other.ID == task.ID || other.ParentID != task.ID {
			continue
		}
		if s.wouldCycle(task.ID, other.ID) {
			continue
		}
		task.Children[other.ID] = struct{}{}
		changed = append(changed, other.ID, task.ID)
	}

	return changed
}

func (s *Store) applyStatus(e *events.Event) []string {
	targetID := e.ParentID()
	task, ok := s.tasks[targetID]
	if !ok {
		s.pending[targetID] = append(s.pending[targetID], e)
		return nil
	}
	if task.statusWin != nil && !events.Less(task.statusWin, e) {
		return nil // existing winner is >= e, no change
	}
	task.statusWin = e
	task.StatusKind = e.Kind
	task.StatusDesc = e.Content
	return []string{task.ID}
}

func (s *Store) applyNote(e *events.Event) []string {
	targetID := e.ParentID()
	task, ok := s.tasks[targetID]
	if !ok {
		s.pending[targetID] = append(s.pending[targetID], e)
		return nil
	}
	task.Notes = append(task.Notes, e)
	sort.SliceStable(task.Notes, func(i, j int) bool { return events.Less(task.Notes[i], task.Notes[j]) })
	return []string{task.ID}
}

// wouldCycle reports whether making child a descendant of parent (by
// setting child.ParentID = parent) would create a cycle, i.e. parent
// is already (transitively) a descendant of child, or parent == child.
func (s *Store) wouldCycle(parent, child string) bool {
	if parent == child {
		return true
	}
	visited := make(map[string]struct{})
	cur := parent
	for cur != "" {
		if cur == child {
			return true
		}
		if _, ok := visited[cur]; ok {
			return true // pre-existing cycle; treat as a cycle too
		}
		visited[cur] = struct{}{}
		t, ok := s.tasks[cur]
		if !ok {
			break
		}
		cur = t.ParentID
	}
	return false
}

// Get returns the task projection for id, or nil if unknown.
func (s *Store) Get(id string) *Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tasks[id]
}

// Iter returns every known task in stable (created_at, id) order.
func (s *Store) Iter() []*Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt < out[j].CreatedAt
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// ChildrenOf returns the direct children of id in stable order, or of
// every root task (no parent, or a dangling parent) when id == "".
func (s *Store) ChildrenOf(id string) []*Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Task
	if id == "" {
		for _, t := range s.tasks {
			if t.ParentID == "" {
				out = append(out, t)
				continue
			}
			if _, ok := s.tasks[t.ParentID]; !ok {
				out = append(out, t) // declared parent hasn't arrived yet
			}
		}
	} else {
		parent, ok := s.tasks[id]
		if !ok {
			return nil
		}
		for childID := range parent.Children {
			if c, ok := s.tasks[childID]; ok {
				out = append(out, c)
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt < out[j].CreatedAt
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// RawEvent returns a retained event of an unrecognized kind, or nil.
func (s *Store) RawEvent(id string) *events.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rawPool[id]
}

// PendingCount returns the number of status/note events still waiting
// on a dangling target, for diagnostics.
func (s *Store) PendingCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, v := range s.pending {
		n += len(v)
	}
	return n
}
