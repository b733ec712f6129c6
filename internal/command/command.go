// Package command implements the §4.6 command interpreter: a total
// function over the leading-character token alphabet that maps one
// input line, the current engine state, filter set, and view cursor
// to the events to emit, the view's next state, and whether a write
// now sits in the pending/undo buffer.
package command

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xeruf/mostr-go/internal/aggregate"
	"github.com/xeruf/mostr-go/internal/events"
	"github.com/xeruf/mostr-go/internal/filter"
	"github.com/xeruf/mostr-go/internal/timeparse"
	"github.com/xeruf/mostr-go/internal/view"
)

// PendingWindow is the undo window (§9 open question 2). It is a fixed
// constant: the undo-window setting read by config.LoadSettings is not
// applied to it.
const PendingWindow = 60 * time.Second

// resolveSearchDepth is effectively "unlimited" for `.IDPREFIX`
// resolution: navigation can jump to any filter-passing task in the
// forest, unlike the rendered view which is capped at v.Depth.
const resolveSearchDepth = 1 << 20

// Result is what one call to Interpret produced.
type Result struct {
	// ToApply are the events Interpret has already applied to the
	// engine and that the caller hands to the relay sink: this
	// command's own immediate events, plus any previously pending
	// events this command's arrival confirmed.
	ToApply []*events.Event
	// Pending is true when this command's own event now sits in the
	// view's pending slot, held back from ToApply until confirmed.
	Pending bool
	// RelayControl carries a `wss://`/`ws://` line verbatim; it is not
	// a task event and the caller routes it to the transport adapter.
	RelayControl string
	// Err surfaces a rejected command (bad time expression, no active
	// task for a task-scoped sigil, etc); no event is emitted.
	Err error
}

func parentOf(eng *aggregate.Engine) func(string) string {
	return func(id string) string {
		t := eng.Store.Get(id)
		if t == nil {
			return ""
		}
		return t.ParentID
	}
}

// Interpret runs one input line against the engine, filter set, and
// view cursor. now is the wall-clock time used both for default event
// timestamps and for resolving the time-offset grammar.
func Interpret(input string, eng *aggregate.Engine, fs *filter.Set, v *view.State, localAuthor string, now time.Time) Result {
	confirmed := confirmPendingIfDisplaced(input, eng, v, now)

	if strings.HasPrefix(input, " ") {
		r := createTask(eng, fs, v, localAuthor, now, input[1:], false)
		r.ToApply = append(confirmed, r.ToApply...)
		return r
	}

	ascends, rest := splitAscendMarkers(input)
	for i := 0; i < ascends; i++ {
		v.Ascend(parentOf(eng))
	}

	r := dispatch(rest, eng, fs, v, localAuthor, now)
	r.ToApply = append(confirmed, r.ToApply...)
	return r
}

// confirmPendingIfDisplaced confirms (applies + returns) any existing
// pending action unless input is itself an ascend-only or undo
// command, per §4.6: "held ... until any further command other than
// another ascend/undo".
func confirmPendingIfDisplaced(input string, eng *aggregate.Engine, v *view.State, now time.Time) []*events.Event {
	if v.Pending == nil {
		return nil
	}
	if isAscendOrUndoOnly(input) {
		return nil
	}
	evts := v.ConfirmPending()
	for _, e := range evts {
		eng.Apply(e)
	}
	return evts
}

func isAscendOrUndoOnly(input string) bool {
	if input == "&" || input == "@" {
		return true
	}
	for _, c := range input {
		if c != '.' && c != '/' {
			return false
		}
	}
	return input != ""
}

// splitAscendMarkers consumes a leading homogeneous run of '.' or '/'
// characters as ascend markers, reserving the final character of that
// run (if the run does not consume the whole input) as the sigil that
// selects the actual handler - so ".foo" dispatches to the `.IDPREFIX`
// handler with zero ascends, while "..foo" ascends once and then
// dispatches `.foo` the same way.
func splitAscendMarkers(input string) (ascends int, rest string) {
	if input == "" {
		return 0, input
	}
	sigil := input[0]
	if sigil != '.' && sigil != '/' {
		return 0, input
	}
	i := 0
	for i < len(input) && input[i] == sigil {
		i++
	}
	// The final sigil in the run is reserved as the terminal command
	// (clear-filters-and-root for a lone '.', `/TEXT` substring filter,
	// or `.IDPREFIX` resolution); any sigils before it are ascends.
	return i - 1, input[i-1:]
}

func dispatch(rest string, eng *aggregate.Engine, fs *filter.Set, v *view.State, localAuthor string, now time.Time) Result {
	if rest == "" {
		return Result{}
	}

	switch rest[0] {
	case '.':
		return dotCommand(rest[1:], eng, fs, v, localAuthor, now)
	case '/':
		fs.Name = rest[1:]
		return Result{}
	case ':':
		return columnCommand(rest[1:], v)
	case '(':
		return trackCommand(eng, v, localAuthor, now, rest[1:], true)
	case ')':
		return trackCommand(eng, v, localAuthor, now, rest[1:], false)
	case '>':
		return statusCommand(eng, v, localAuthor, now, rest[1:], events.KindStatusDone, true)
	case '<':
		return statusCommand(eng, v, localAuthor, now, rest[1:], events.KindStatusClosed, true)
	case '!':
		return statusCommand(eng, v, localAuthor, now, rest[1:], events.KindStatusOpen, false)
	case ',':
		return noteCommand(eng, v, localAuthor, now, rest[1:])
	case '#':
		fs.Include = map[string]struct{}{normalize(rest[1:]): {}}
		return Result{}
	case '+':
		fs.Include[normalize(rest[1:])] = struct{}{}
		return Result{}
	case '-':
		tag := normalize(rest[1:])
		delete(fs.Include, tag)
		fs.Exclude[tag] = struct{}{}
		return Result{}
	case '?':
		return statusFilterCommand(fs, rest[1:])
	case '@':
		return authorFilterCommand(fs, v, rest[1:])
	case '&':
		undoCommand(v)
		return Result{}
	}

	if strings.HasPrefix(rest, "wss://") || strings.HasPrefix(rest, "ws://") {
		return Result{RelayControl: rest}
	}

	return createTask(eng, fs, v, localAuthor, now, rest, true)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// dotCommand handles everything after a leading '.': "" means clear
// filters and move to root; otherwise it's an IDPREFIX to resolve,
// fall back to setting view depth, or fall back further to create.
func dotCommand(prefix string, eng *aggregate.Engine, fs *filter.Set, v *view.State, localAuthor string, now time.Time) Result {
	if prefix == "" {
		*fs = filter.New()
		v.Descend("")
		return Result{}
	}

	// Name/id resolution searches the whole forest rather than the
	// current rendering scope: view depth governs what the table
	// displays, not what `.IDPREFIX` can jump to.
	candidates := filter.VisibleFiltered(eng.Store, *fs, "", resolveSearchDepth, localAuthor)
	if t := filter.ResolvePrefix(prefix, candidates); t != nil {
		track := activate(eng, v, localAuthor, now, t.ID)
		return Result{ToApply: []*events.Event{track}}
	}
	if depth, err := strconv.Atoi(prefix); err == nil {
		v.SetDepth(depth)
		return Result{}
	}
	return createTask(eng, fs, v, localAuthor, now, prefix, false)
}

func columnCommand(rest string, v *view.State) Result {
	if strings.HasPrefix(rest, ":") {
		v.SortKey = rest[1:]
		return Result{}
	}
	idx, name := 0, rest
	i := 0
	for i < len(rest) && rest[i] >= '0' && rest[i] <= '9' {
		i++
	}
	if i > 0 {
		idx, _ = strconv.Atoi(rest[:i])
		name = rest[i:]
	}
	if name == "" {
		v.RemoveColumnAt(idx)
	} else {
		v.ToggleColumn(name, idx)
	}
	return Result{}
}

func trackCommand(eng *aggregate.Engine, v *view.State, localAuthor string, now time.Time, offset string, start bool) Result {
	if start && v.Position == "" {
		return Result{Err: fmt.Errorf("command: no active task to track")}
	}
	ts, err := timeparse.Parse(offset, now)
	if err != nil {
		return Result{Err: err}
	}
	var tags events.Tags
	if start {
		tags = events.Tags{{"e", v.Position}}
	}
	e := newEvent(events.KindTracking, localAuthor, ts.Unix(), "", tags)
	eng.Apply(e)
	return Result{ToApply: []*events.Event{e}}
}

func statusCommand(eng *aggregate.Engine, v *view.State, localAuthor string, now time.Time, desc string, kind events.Kind, ascend bool) Result {
	if v.Position == "" {
		return Result{Err: fmt.Errorf("command: no active task for status event")}
	}
	target := v.Position
	e := newEvent(kind, localAuthor, now.Unix(), desc, events.Tags{{"e", target}})

	priorPos := v.Position
	if ascend {
		v.Ascend(parentOf(eng))
	}
	v.SetPending([]*events.Event{e}, priorPos, PendingWindow, now)
	return Result{Pending: true}
}

func noteCommand(eng *aggregate.Engine, v *view.State, localAuthor string, now time.Time, text string) Result {
	if v.Position == "" {
		return Result{Err: fmt.Errorf("command: no active task for note")}
	}
	e := newEvent(events.KindTaskComment, localAuthor, now.Unix(), text, events.Tags{{"e", v.Position}})
	eng.Apply(e)
	return Result{ToApply: []*events.Event{e}}
}

func statusFilterCommand(fs *filter.Set, text string) Result {
	if text == "?" {
		fs.Status = filter.StatusPredicate{Mode: filter.StatusAll}
		return Result{}
	}
	if text == "" {
		fs.Status = filter.StatusPredicate{Mode: filter.StatusDefault}
		return Result{}
	}
	switch strings.ToLower(text) {
	case "open":
		fs.Status = filter.StatusPredicate{Mode: filter.StatusKind, Kind: events.KindStatusOpen}
	case "done":
		fs.Status = filter.StatusPredicate{Mode: filter.StatusKind, Kind: events.KindStatusDone}
	case "closed":
		fs.Status = filter.StatusPredicate{Mode: filter.StatusKind, Kind: events.KindStatusClosed}
	case "pending":
		fs.Status = filter.StatusPredicate{Mode: filter.StatusKind, Kind: events.KindStatusPend}
	default:
		fs.Status = filter.StatusPredicate{Mode: filter.StatusSubstring, Query: text}
	}
	return Result{}
}

// authorFilterCommand implements `@TEXT`. An empty TEXT can never be a
// valid author filter (a pubkey/prefix filter always requires
// content), so per the `&`/`@` migration note in §9 it falls back to
// undo; `@@` sets the local-author alias (TEXT == "@"); anything else
// is a pubkey/prefix match.
func authorFilterCommand(fs *filter.Set, v *view.State, text string) Result {
	if text == "" {
		undoCommand(v)
		return Result{}
	}
	if text == "@" {
		fs.Author = filter.AuthorPredicate{Mode: filter.AuthorLocal}
		return Result{}
	}
	fs.Author = filter.AuthorPredicate{Mode: filter.AuthorText, Text: text}
	return Result{}
}

func undoCommand(v *view.State) {
	if v.Pending != nil {
		v.DiscardPending()
		return
	}
	v.UndoNavigation()
}

func createTask(eng *aggregate.Engine, fs *filter.Set, v *view.State, localAuthor string, now time.Time, text string, splitTags bool) Result {
	name := text
	var tagWords []string
	if splitTags {
		if idx := strings.IndexByte(text, ':'); idx >= 0 {
			name = strings.TrimSpace(text[:idx])
			tagWords = strings.Fields(text[idx+1:])
		}
	}

	var tags events.Tags
	if v.Position != "" {
		tags = append(tags, events.Tag{"e", v.Position})
	}
	for _, w := range tagWords {
		tags = append(tags, events.Tag{"t", normalize(w)})
	}
	for _, t := range fs.ContextTags() {
		tags = append(tags, t)
	}

	e := newEvent(events.KindTaskCreate, localAuthor, now.Unix(), name, tags)
	eng.Apply(e)
	toApply := []*events.Event{e}

	if desc, ok := fs.ContextStatusDesc(); ok {
		status := newEvent(events.KindStatusOpen, localAuthor, now.Unix(), desc, events.Tags{{"e", e.ID}})
		eng.Apply(status)
		toApply = append(toApply, status)
	}

	track := activate(eng, v, localAuthor, now, e.ID)
	toApply = append(toApply, track)
	return Result{ToApply: toApply}
}

// activate moves the view to taskID and emits the kind-1650 marker
// that makes it the local author's active (tracked) task, per §4.6's
// "activate it" wording shared by the plain-text create handler and
// `.IDPREFIX` resolution.
func activate(eng *aggregate.Engine, v *view.State, localAuthor string, now time.Time, taskID string) *events.Event {
	v.Descend(taskID)
	e := newEvent(events.KindTracking, localAuthor, now.Unix(), "", events.Tags{{"e", taskID}})
	eng.Apply(e)
	return e
}

// Tick flushes an expired pending action, per §5's timer that fires
// once per command completion and at least once per ~1s of idle. It
// applies the confirmed events to the engine and returns them for the
// relay sink, if any.
func Tick(eng *aggregate.Engine, v *view.State, now time.Time) []*events.Event {
	if v.Pending == nil || !v.Pending.Expired(now) {
		return nil
	}
	evts := v.ConfirmPending()
	for _, e := range evts {
		eng.Apply(e)
	}
	return evts
}

func newEvent(kind events.Kind, author string, createdAt int64, content string, tags events.Tags) *events.Event {
	e := &events.Event{Author: author, CreatedAt: createdAt, Kind: kind, Content: content, Tags: tags}
	e.ID = e.ComputeID()
	return e
}
