// Package events defines the canonical event envelope and the fixed
// kind catalog that the task aggregator is built on. Every observable
// fact in the system - a task, a status change, a note, a tracked
// interval - is one of these events; nothing else is authoritative.
package events

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
)

// Kind identifies an event's semantic role. The catalog is fixed;
// unrecognized kinds are tolerated but otherwise inert.
type Kind int

const (
	KindNote         Kind = 1    // free-text note; an e-tag makes it a task note
	KindTaskCreate   Kind = 1621 // content is the task name
	KindTaskComment  Kind = 1622 // reserved, aggregated identically to KindNote
	KindStatusOpen   Kind = 1630
	KindStatusDone   Kind = 1631
	KindStatusClosed Kind = 1632
	KindStatusPend   Kind = 1633
	KindTracking     Kind = 1650 // time-tracking marker
)

// IsStatus reports whether k is one of the four status-transition kinds.
func (k Kind) IsStatus() bool {
	switch k {
	case KindStatusOpen, KindStatusDone, KindStatusClosed, KindStatusPend:
		return true
	}
	return false
}

// IsNote reports whether k is treated as a note/comment for aggregation.
func (k Kind) IsNote() bool {
	return k == KindNote || k == KindTaskComment
}

// StatusName returns the human-readable status name for a status kind,
// or "" if k is not a status kind.
func (k Kind) StatusName() string {
	switch k {
	case KindStatusOpen:
		return "Open"
	case KindStatusDone:
		return "Done"
	case KindStatusClosed:
		return "Closed"
	case KindStatusPend:
		return "Pending"
	}
	return ""
}

// Tag is a non-empty, ordered sequence of strings; the first element
// is the tag name (e.g. "e", "t").
type Tag []string

// Name returns the tag name, or "" for an empty tag.
func (t Tag) Name() string {
	if len(t) == 0 {
		return ""
	}
	return t[0]
}

// Value returns the tag's first value (index 1), or "" if absent.
func (t Tag) Value() string {
	if len(t) < 2 {
		return ""
	}
	return t[1]
}

// Tags is an ordered sequence of tag-tuples.
type Tags []Tag

// First returns the first tag with the given name, or nil.
func (ts Tags) First(name string) *Tag {
	for i := range ts {
		if ts[i].Name() == name {
			return &ts[i]
		}
	}
	return nil
}

// All returns every tag with the given name, in order.
func (ts Tags) All(name string) Tags {
	var out Tags
	for _, t := range ts {
		if t.Name() == name {
			out = append(out, t)
		}
	}
	return out
}

// Values returns the values (index 1) of every tag with the given name.
func (ts Tags) Values(name string) []string {
	all := ts.All(name)
	out := make([]string, 0, len(all))
	for _, t := range all {
		if v := t.Value(); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Event is the immutable, signed, content-addressed record that the
// entire task forest is derived from. Two events with the same ID are
// the same event; identity never depends on Sig.
type Event struct {
	ID        string `json:"id"`
	Author    string `json:"pubkey"`
	CreatedAt int64  `json:"created_at"`
	Kind      Kind   `json:"kind"`
	Tags      Tags   `json:"tags"`
	Content   string `json:"content"`
	Sig       string `json:"sig,omitempty"`
}

// ParentID returns the first e-tag value on the event, or "" if none.
func (e *Event) ParentID() string {
	if t := e.Tags.First("e"); t != nil {
		return t.Value()
	}
	return ""
}

// Hashtags returns the lower-cased, trimmed set of t-tag values.
func (e *Event) Hashtags() map[string]struct{} {
	out := make(map[string]struct{})
	for _, v := range e.Tags.Values("t") {
		v = normalizeTag(v)
		if v != "" {
			out[v] = struct{}{}
		}
	}
	return out
}

func normalizeTag(s string) string {
	b := bytes.TrimSpace([]byte(s))
	return string(bytes.ToLower(b))
}

// ComputeID derives the content-addressed id per NIP-01's canonical
// serialization: sha256 of the JSON array
// [0, pubkey, created_at, kind, tags, content], compactly encoded with
// no HTML-escaping. Signing is out of scope for the core (it is the
// key-lifecycle adapter's job); ComputeID only fixes identity.
func (e *Event) ComputeID() string {
	tags := e.Tags
	if tags == nil {
		tags = Tags{}
	}
	arr := []interface{}{0, e.Author, e.CreatedAt, int(e.Kind), tags, e.Content}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(arr)
	sum := sha256.Sum256(bytes.TrimRight(buf.Bytes(), "\n"))
	return hex.EncodeToString(sum[:])
}

// Less orders two events by (created_at, id) - the tie-break used
// throughout the store, ledger, and aggregator whenever "latest wins"
// or "earliest wins" must be deterministic across arrival order.
func Less(a, b *Event) bool {
	if a.CreatedAt != b.CreatedAt {
		return a.CreatedAt < b.CreatedAt
	}
	return a.ID < b.ID
}

// SortByCreatedAt sorts events in place by (created_at, id) ascending.
func SortByCreatedAt(evts []*Event) {
	sort.SliceStable(evts, func(i, j int) bool { return Less(evts[i], evts[j]) })
}

// Max returns the event that wins under Less's ordering, i.e. the one
// with the greatest (created_at, id). Panics on an empty slice.
func Max(evts []*Event) *Event {
	best := evts[0]
	for _, e := range evts[1:] {
		if Less(best, e) {
			best = e
		}
	}
	return best
}
