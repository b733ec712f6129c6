package events

import "testing"

func TestComputeIDStable(t *testing.T) {
	e := &Event{
		Author:    "abc",
		CreatedAt: 1000,
		Kind:      KindTaskCreate,
		Tags:      Tags{{"t", "errand"}},
		Content:   "groceries",
	}
	id1 := e.ComputeID()
	id2 := e.ComputeID()
	if id1 != id2 {
		t.Fatalf("ComputeID not deterministic: %s != %s", id1, id2)
	}
	if len(id1) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(id1))
	}
}

func TestComputeIDSensitiveToContent(t *testing.T) {
	e1 := &Event{Author: "a", CreatedAt: 1, Kind: KindNote, Content: "x"}
	e2 := &Event{Author: "a", CreatedAt: 1, Kind: KindNote, Content: "y"}
	if e1.ComputeID() == e2.ComputeID() {
		t.Fatal("different content must yield different id")
	}
}

func TestTagsFirstAndAll(t *testing.T) {
	tags := Tags{{"e", "parent1"}, {"t", "shop"}, {"t", "errand"}, {"e", "parent2"}}
	if got := tags.First("e").Value(); got != "parent1" {
		t.Fatalf("First(e) = %q, want parent1", got)
	}
	if got := tags.Values("t"); len(got) != 2 || got[0] != "shop" || got[1] != "errand" {
		t.Fatalf("Values(t) = %v", got)
	}
}

func TestHashtagsNormalized(t *testing.T) {
	e := &Event{Tags: Tags{{"t", "  Shop "}, {"t", "ERRAND"}}}
	h := e.Hashtags()
	if _, ok := h["shop"]; !ok {
		t.Error("expected normalized 'shop'")
	}
	if _, ok := h["errand"]; !ok {
		t.Error("expected normalized 'errand'")
	}
}

func TestLessTiesBreakOnID(t *testing.T) {
	a := &Event{ID: "aaa", CreatedAt: 5}
	b := &Event{ID: "bbb", CreatedAt: 5}
	if !Less(a, b) {
		t.Fatal("expected a < b on id tie-break")
	}
	if Less(b, a) {
		t.Fatal("expected b not < a")
	}
}

func TestMaxPicksLatest(t *testing.T) {
	evts := []*Event{
		{ID: "a", CreatedAt: 10},
		{ID: "b", CreatedAt: 30},
		{ID: "c", CreatedAt: 20},
	}
	if got := Max(evts); got.ID != "b" {
		t.Fatalf("Max = %s, want b", got.ID)
	}
}

func TestKindClassification(t *testing.T) {
	if !KindStatusDone.IsStatus() {
		t.Error("KindStatusDone should be a status kind")
	}
	if KindNote.IsStatus() {
		t.Error("KindNote should not be a status kind")
	}
	if !KindTaskComment.IsNote() {
		t.Error("KindTaskComment should aggregate as a note")
	}
	if got := KindStatusClosed.StatusName(); got != "Closed" {
		t.Fatalf("StatusName = %q, want Closed", got)
	}
}
