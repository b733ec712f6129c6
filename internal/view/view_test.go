package view

import (
	"testing"
	"time"

	"github.com/xeruf/mostr-go/internal/events"
)

func TestAscendPastRootIsNoOp(t *testing.T) {
	v := New()
	parentOf := func(id string) string { return "" }
	v.Ascend(parentOf)
	if v.Position != "" {
		t.Fatalf("expected ascending past root to stay at root, got %q", v.Position)
	}
}

func TestDescendAndUndoNavigation(t *testing.T) {
	v := New()
	v.Descend("t1")
	if v.Position != "t1" {
		t.Fatalf("expected position t1, got %q", v.Position)
	}
	if !v.UndoNavigation() {
		t.Fatal("expected undo to succeed")
	}
	if v.Position != "" {
		t.Fatalf("expected undo to restore root, got %q", v.Position)
	}
	if v.UndoNavigation() {
		t.Fatal("expected no further history to undo")
	}
}

func TestSetDepthClampsToOne(t *testing.T) {
	v := New()
	v.SetDepth(0)
	if v.Depth != 1 {
		t.Fatalf("expected depth clamped to 1, got %d", v.Depth)
	}
	v.SetDepth(3)
	if v.Depth != 3 {
		t.Fatalf("expected depth 3, got %d", v.Depth)
	}
}

func TestToggleColumnInsertsThenRemoves(t *testing.T) {
	v := New()
	before := len(v.Columns)
	v.ToggleColumn("rtime", 1)
	if v.Columns[0] != "rtime" || len(v.Columns) != before+1 {
		t.Fatalf("expected rtime inserted at front, got %v", v.Columns)
	}
	v.ToggleColumn("rtime", 0)
	if len(v.Columns) != before {
		t.Fatalf("expected repeating column name to remove it, got %v", v.Columns)
	}
}

func TestToggleColumnIgnoresUnknownName(t *testing.T) {
	v := New()
	before := len(v.Columns)
	v.ToggleColumn("bogus", 0)
	if len(v.Columns) != before {
		t.Fatalf("expected unknown column name to be ignored, got %v", v.Columns)
	}
}

func TestRemoveColumnAtIndex(t *testing.T) {
	v := New()
	v.Columns = []string{"a", "b", "c"}
	v.RemoveColumnAt(2)
	if len(v.Columns) != 2 || v.Columns[0] != "a" || v.Columns[1] != "c" {
		t.Fatalf("expected b removed by index, got %v", v.Columns)
	}
}

func TestPendingActionLifecycle(t *testing.T) {
	v := New()
	v.Descend("t1")
	evt := &events.Event{ID: "e1"}
	now := time.Unix(1000, 0)
	v.SetPending([]*events.Event{evt}, "", 60*time.Second, now)

	if v.Pending.Expired(now) {
		t.Fatal("should not be expired immediately")
	}
	if !v.Pending.Expired(now.Add(61 * time.Second)) {
		t.Fatal("should be expired after the window elapses")
	}

	confirmed := v.ConfirmPending()
	if len(confirmed) != 1 || confirmed[0].ID != "e1" {
		t.Fatalf("expected confirmed events to include e1, got %v", confirmed)
	}
	if v.Pending != nil {
		t.Fatal("expected pending slot cleared after confirm")
	}
}

func TestDiscardPendingRestoresPriorPosition(t *testing.T) {
	v := New()
	v.Descend("t1")
	v.SetPending(nil, "", 60*time.Second, time.Unix(0, 0))
	v.Descend("t1-child") // position moves on after the pending write, as `>` does by ascending

	v.DiscardPending()
	if v.Position != "" {
		t.Fatalf("expected discard to restore prior position root, got %q", v.Position)
	}
	if v.Pending != nil {
		t.Fatal("expected pending cleared after discard")
	}
}
