// Package filter implements the §4.4 filter & context engine: the
// tag/status/author/depth predicates that determine the visible task
// set, and the context-propagation rule that carries active filter
// values onto newly created tasks.
package filter

import (
	"strings"

	"github.com/xeruf/mostr-go/internal/events"
	"github.com/xeruf/mostr-go/internal/store"
	"github.com/xeruf/mostr-go/internal/utils"
)

// StatusMode selects how the status predicate evaluates a task.
type StatusMode int

const (
	// StatusDefault hides Closed and Done when no `?` filter is set.
	StatusDefault StatusMode = iota
	// StatusAll matches every task regardless of status (`??`).
	StatusAll
	// StatusKind matches a specific status kind exactly.
	StatusKind
	// StatusSubstring smart-case matches against the status description.
	StatusSubstring
)

// StatusPredicate is the `?` filter's current state.
type StatusPredicate struct {
	Mode  StatusMode
	Kind  events.Kind
	Query string
}

// Match reports whether t's status satisfies p.
func (p StatusPredicate) Match(t *store.Task) bool {
	switch p.Mode {
	case StatusAll:
		return true
	case StatusKind:
		return t.StatusKind == p.Kind
	case StatusSubstring:
		return smartCaseContains(p.Query, t.StatusDesc)
	default:
		return t.StatusKind != events.KindStatusClosed && t.StatusKind != events.KindStatusDone
	}
}

// AuthorMode selects how the author predicate evaluates a task.
type AuthorMode int

const (
	// AuthorAny matches every author (no `@` filter set).
	AuthorAny AuthorMode = iota
	// AuthorLocal matches only the local viewer's own pubkey (`@@`).
	AuthorLocal
	// AuthorText matches an exact pubkey or a textual hex prefix of one.
	AuthorText
)

// AuthorPredicate is the `@` filter's current state.
type AuthorPredicate struct {
	Mode AuthorMode
	Text string
}

// Match reports whether t's author satisfies p, given the local
// viewer's own pubkey for AuthorLocal.
func (p AuthorPredicate) Match(t *store.Task, localAuthor string) bool {
	switch p.Mode {
	case AuthorLocal:
		return t.Author == localAuthor
	case AuthorText:
		return t.Author == p.Text || strings.HasPrefix(t.Author, p.Text)
	default:
		return true
	}
}

// Set is the full composed filter state, each independent predicate
// conjoined with the others.
type Set struct {
	Include map[string]struct{} // tag include set; empty means "any"
	Exclude map[string]struct{} // tag exclude set
	Status  StatusPredicate
	Author  AuthorPredicate
	Name    string // `/TEXT` smart-case name-substring filter; "" means unset
}

// New returns the default filter set: no tag constraints, the default
// (non-Closed, non-Done) status predicate, and no author constraint.
func New() Set {
	return Set{
		Include: make(map[string]struct{}),
		Exclude: make(map[string]struct{}),
	}
}

// Match reports whether t passes every predicate in s except subtree
// scope, which depends on view position and is evaluated separately
// via Visible.
func (s Set) Match(t *store.Task, localAuthor string) bool {
	if len(s.Include) > 0 && !intersects(t.Hashtags, s.Include) {
		return false
	}
	if intersects(t.Hashtags, s.Exclude) {
		return false
	}
	if !s.Status.Match(t) {
		return false
	}
	if !s.Author.Match(t, localAuthor) {
		return false
	}
	if s.Name != "" && !smartCaseContains(s.Name, t.Name) {
		return false
	}
	return true
}

func intersects(a, b map[string]struct{}) bool {
	small, big := a, b
	if len(b) < len(a) {
		small, big = b, a
	}
	for k := range small {
		if _, ok := big[k]; ok {
			return true
		}
	}
	return false
}

// smartCaseContains matches query against text case-insensitively
// unless query itself contains an uppercase rune, per the glossary's
// smart-case definition; it is grounded on the fuzzy/distance helpers
// used elsewhere for prefix and typo-tolerant matching.
func smartCaseContains(query, text string) bool {
	if query == "" {
		return true
	}
	if hasUpper(query) {
		return strings.Contains(text, query)
	}
	return strings.Contains(strings.ToLower(text), strings.ToLower(query))
}

func hasUpper(s string) bool {
	for _, r := range s {
		if r >= 'A' && r <= 'Z' {
			return true
		}
	}
	return false
}

// ResolvePrefix finds the task among candidates whose id or name best
// matches query under the position-resolution rule of §4.5:
// smart-case prefix match first, then a case-insensitive fuzzy
// fallback. It returns nil if nothing matches either pass.
func ResolvePrefix(query string, candidates []*store.Task) *store.Task {
	if query == "" {
		return nil
	}
	for _, t := range candidates {
		if strings.HasPrefix(t.ID, query) {
			return t
		}
		if hasUpper(query) {
			if strings.HasPrefix(t.Name, query) {
				return t
			}
		} else if strings.HasPrefix(strings.ToLower(t.Name), strings.ToLower(query)) {
			return t
		}
	}
	var best *store.Task
	bestDist := -1
	for _, t := range candidates {
		if !utils.FuzzyMatch(query, t.Name) && !utils.FuzzyMatch(query, t.ID) {
			continue
		}
		d := utils.ComputeDistance(query, t.Name)
		if idDist := utils.ComputeDistance(query, t.ID); idDist < d {
			d = idDist
		}
		if best == nil || d < bestDist {
			best, bestDist = t, d
		}
	}
	return best
}

// Visible returns every task within depth levels of position (""
// meaning root) in stable order, without applying s's predicates -
// callers combine this with Set.Match for the fully filtered view.
func Visible(st *store.Store, position string, depth int) []*store.Task {
	var out []*store.Task
	var walk func(id string, remaining int)
	walk = func(id string, remaining int) {
		for _, t := range st.ChildrenOf(id) {
			out = append(out, t)
			if remaining > 1 {
				walk(t.ID, remaining-1)
			}
		}
	}
	if depth < 1 {
		depth = 1
	}
	walk(position, depth)
	return out
}

// VisibleFiltered returns the tasks within scope of position/depth
// that also satisfy s, in stable order.
func VisibleFiltered(st *store.Store, s Set, position string, depth int, localAuthor string) []*store.Task {
	var out []*store.Task
	for _, t := range Visible(st, position, depth) {
		if s.Match(t, localAuthor) {
			out = append(out, t)
		}
	}
	return out
}

// ContextTags returns the `t`-tags a newly created task should carry
// under context propagation: the active tag include set, if any.
func (s Set) ContextTags() []events.Tag {
	if len(s.Include) == 0 {
		return nil
	}
	tags := make([]events.Tag, 0, len(s.Include))
	for tag := range s.Include {
		tags = append(tags, events.Tag{"t", tag})
	}
	return tags
}

// ContextStatusDesc returns the status description a newly created
// task's immediately-following status event should carry, and whether
// one should be emitted at all: only a specific status-description
// substring filter selects for a positive attribute worth propagating.
func (s Set) ContextStatusDesc() (string, bool) {
	if s.Status.Mode == StatusSubstring && s.Status.Query != "" {
		return s.Status.Query, true
	}
	return "", false
}
