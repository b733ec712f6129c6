package command

import (
	"testing"
	"time"

	"github.com/xeruf/mostr-go/internal/aggregate"
	"github.com/xeruf/mostr-go/internal/events"
	"github.com/xeruf/mostr-go/internal/filter"
	"github.com/xeruf/mostr-go/internal/view"
)

const alice = "alice"

func TestS1CreateAndActivate(t *testing.T) {
	eng := aggregate.New()
	fs := filter.New()
	v := view.New()
	now := time.Unix(1000, 0)

	r1 := Interpret("groceries: shop errand", eng, &fs, v, alice, now)
	if len(r1.ToApply) != 2 {
		t.Fatalf("expected create + tracking events, got %d: %+v", len(r1.ToApply), r1.ToApply)
	}
	create := r1.ToApply[0]
	if create.Kind != events.KindTaskCreate || create.Content != "groceries" {
		t.Fatalf("unexpected create event: %+v", create)
	}
	tags := create.Hashtags()
	if _, ok := tags["shop"]; !ok {
		t.Fatalf("expected 'shop' hashtag, got %v", tags)
	}
	if _, ok := tags["errand"]; !ok {
		t.Fatalf("expected 'errand' hashtag, got %v", tags)
	}
	track := r1.ToApply[1]
	if track.Kind != events.KindTracking || track.ParentID() != create.ID {
		t.Fatalf("expected tracking marker pointing at new task, got %+v", track)
	}
	if v.Position != create.ID {
		t.Fatalf("expected position to become new task id, got %q want %q", v.Position, create.ID)
	}

	r2 := Interpret(".groc", eng, &fs, v, alice, now.Add(time.Second))
	if v.Position != create.ID {
		t.Fatalf("expected .groc to resolve back to groceries, got %q", v.Position)
	}
	if len(r2.ToApply) != 1 || r2.ToApply[0].Kind != events.KindTracking {
		t.Fatalf("expected .groc to re-activate with a tracking marker, got %+v", r2.ToApply)
	}
}

func TestS2SubdivideAndComplete(t *testing.T) {
	eng := aggregate.New()
	fs := filter.New()
	v := view.New()
	now := time.Unix(1000, 0)

	r1 := Interpret("groceries: shop errand", eng, &fs, v, alice, now)
	groceriesID := r1.ToApply[0].ID

	r2 := Interpret("buy milk", eng, &fs, v, alice, now.Add(10*time.Second))
	if len(r2.ToApply) != 2 {
		t.Fatalf("expected create + tracking for buy milk, got %+v", r2.ToApply)
	}
	buyMilkID := r2.ToApply[0].ID
	if r2.ToApply[0].ParentID() != groceriesID {
		t.Fatalf("expected buy milk's parent to be groceries, got %q", r2.ToApply[0].ParentID())
	}
	if v.Position != buyMilkID {
		t.Fatalf("expected position at buy milk after create, got %q", v.Position)
	}

	r3 := Interpret(">bought", eng, &fs, v, alice, now.Add(20*time.Second))
	if !r3.Pending {
		t.Fatal("expected >bought to enter the pending buffer")
	}
	if len(r3.ToApply) != 0 {
		t.Fatalf("expected no immediate events while pending, got %+v", r3.ToApply)
	}
	if v.Position != groceriesID {
		t.Fatalf("expected position to ascend to groceries immediately, got %q", v.Position)
	}

	// Confirm by letting the window elapse.
	applied := Tick(eng, v, now.Add(20*time.Second+PendingWindow+time.Second))
	if len(applied) != 1 || applied[0].Kind != events.KindStatusDone || applied[0].Content != "bought" {
		t.Fatalf("expected the Done status event to confirm, got %+v", applied)
	}
	if applied[0].ParentID() != buyMilkID {
		t.Fatalf("expected status event to target buy milk, got %q", applied[0].ParentID())
	}

	if p := eng.Progress(groceriesID); p != 100 {
		t.Fatalf("expected groceries progress 100 after buy milk is Done, got %v", p)
	}
}

func TestS5UndoWithinWindow(t *testing.T) {
	eng := aggregate.New()
	fs := filter.New()
	v := view.New()
	now := time.Unix(1000, 0)

	r1 := Interpret("wash car", eng, &fs, v, alice, now)
	taskID := r1.ToApply[0].ID

	r2 := Interpret(">done", eng, &fs, v, alice, now.Add(time.Second))
	if !r2.Pending {
		t.Fatal("expected >done to be pending")
	}
	if v.Position != "" {
		t.Fatalf("expected ascend to root immediately, got %q", v.Position)
	}

	r3 := Interpret("&", eng, &fs, v, alice, now.Add(2*time.Second))
	if len(r3.ToApply) != 0 {
		t.Fatalf("expected undo to emit nothing, got %+v", r3.ToApply)
	}
	if v.Position != taskID {
		t.Fatalf("expected undo to restore position to the task, got %q", v.Position)
	}
	if eng.Store.Get(taskID).StatusKind != events.KindStatusOpen {
		t.Fatalf("expected store unchanged (still Open), got %v", eng.Store.Get(taskID).StatusKind)
	}
}

func TestPendingConfirmedByNextCommand(t *testing.T) {
	eng := aggregate.New()
	fs := filter.New()
	v := view.New()
	now := time.Unix(1000, 0)

	Interpret("wash car", eng, &fs, v, alice, now)
	Interpret(">done", eng, &fs, v, alice, now.Add(time.Second))

	r := Interpret("laundry", eng, &fs, v, alice, now.Add(2*time.Second))
	var sawDone bool
	for _, e := range r.ToApply {
		if e.Kind == events.KindStatusDone {
			sawDone = true
		}
	}
	if !sawDone {
		t.Fatalf("expected the pending Done status to confirm alongside the next command, got %+v", r.ToApply)
	}
}

func TestAscendMarkersRepeat(t *testing.T) {
	eng := aggregate.New()
	fs := filter.New()
	v := view.New()
	now := time.Unix(1000, 0)

	Interpret("home", eng, &fs, v, alice, now)
	Interpret("groceries", eng, &fs, v, alice, now.Add(time.Second))
	r := Interpret("buy milk", eng, &fs, v, alice, now.Add(2*time.Second))
	buyMilkID := r.ToApply[0].ID
	_ = buyMilkID

	if v.Position == "" {
		t.Fatal("expected to be positioned at buy milk before ascending")
	}
	Interpret("..foo", eng, &fs, v, alice, now.Add(3*time.Second))
	// The first '.' ascends once from buy-milk to groceries; the second
	// is the `.IDPREFIX` sigil, so "foo" is resolved there. Since nothing
	// named "foo" exists, it creates and activates a new task under
	// groceries.
	if v.Position == "" {
		t.Fatal("expected a resolved/created position, not root")
	}
}

func TestTagFilterSetAddRemove(t *testing.T) {
	eng := aggregate.New()
	fs := filter.New()
	v := view.New()
	now := time.Unix(1000, 0)

	Interpret("#work", eng, &fs, v, alice, now)
	if _, ok := fs.Include["work"]; !ok {
		t.Fatalf("expected include set {work}, got %v", fs.Include)
	}
	Interpret("+home", eng, &fs, v, alice, now)
	if _, ok := fs.Include["home"]; !ok {
		t.Fatalf("expected home added to include set, got %v", fs.Include)
	}
	Interpret("-home", eng, &fs, v, alice, now)
	if _, ok := fs.Include["home"]; ok {
		t.Fatal("expected home removed from include set")
	}
	if _, ok := fs.Exclude["home"]; !ok {
		t.Fatal("expected home added to exclude set")
	}
}

func TestStatusFilterDefaultAndAll(t *testing.T) {
	fs := filter.New()
	statusFilterCommand(&fs, "")
	if fs.Status.Mode != filter.StatusDefault {
		t.Fatalf("expected default status mode, got %v", fs.Status.Mode)
	}
	statusFilterCommand(&fs, "?")
	if fs.Status.Mode != filter.StatusAll {
		t.Fatalf("expected `??` to mean StatusAll, got %v", fs.Status.Mode)
	}
}

func TestAuthorFilterLocalAliasAndBareFallsBackToUndo(t *testing.T) {
	eng := aggregate.New()
	fs := filter.New()
	v := view.New()
	now := time.Unix(1000, 0)

	Interpret("home", eng, &fs, v, alice, now)
	Interpret("@@", eng, &fs, v, alice, now)
	if fs.Author.Mode != filter.AuthorLocal {
		t.Fatalf("expected @@ to set local author alias, got %v", fs.Author)
	}

	Interpret("@", eng, &fs, v, alice, now)
	if v.Position != "" {
		t.Fatalf("expected bare @ to fall back to undo and pop navigation history to root, got %q", v.Position)
	}
}

func TestNoteRequiresActiveTask(t *testing.T) {
	eng := aggregate.New()
	fs := filter.New()
	v := view.New()
	now := time.Unix(1000, 0)

	r := Interpret(",a remark", eng, &fs, v, alice, now)
	if r.Err == nil {
		t.Fatal("expected an error emitting a note with no active task")
	}
}

func TestRelayControlLinePassedThrough(t *testing.T) {
	eng := aggregate.New()
	fs := filter.New()
	v := view.New()
	now := time.Unix(1000, 0)

	r := Interpret("wss://relay.example.com", eng, &fs, v, alice, now)
	if r.RelayControl != "wss://relay.example.com" {
		t.Fatalf("expected relay control line passed through, got %q", r.RelayControl)
	}
	if len(r.ToApply) != 0 {
		t.Fatalf("expected no task events from a relay control line, got %+v", r.ToApply)
	}
}
