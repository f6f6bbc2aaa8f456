package storage

import (
	stderrors "errors"
	"testing"

	"go.uber.org/multierr"

	"github.com/yaoyutaoTom/diplib/errors"
)

type testObserver struct {
	events []Event
}

func (o *testObserver) OnBlockEvent(e Event) {
	o.events = append(o.events, e)
}

func TestRegistry_Observer(t *testing.T) {
	reg := NewRegistry()
	obs := &testObserver{}
	reg.Subscribe(obs)

	blk := NewBlock(make([]byte, 32), nil)
	if err := reg.Track(blk); err != nil {
		t.Fatal(err)
	}
	if len(obs.events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(obs.events))
	}
	if e := obs.events[0]; e.Type != EventAllocated || e.ID != blk.ID() || e.Size != 32 || e.Block != blk {
		t.Fatalf("unexpected event %+v", e)
	}

	// Tracking twice is a no-op.
	if err := reg.Track(blk); err != nil {
		t.Fatal(err)
	}
	if len(obs.events) != 1 || reg.Len() != 1 {
		t.Fatal("double Track should not add events or entries")
	}

	blk.Retain()
	_ = blk.Release()
	if len(obs.events) != 1 {
		t.Fatal("Release with outstanding references should not notify")
	}

	_ = blk.Release()
	if len(obs.events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(obs.events))
	}
	if e := obs.events[1]; e.Type != EventReleased || e.Size != 32 {
		t.Fatalf("unexpected event %+v", e)
	}

	reg.Unsubscribe(obs)
	other := NewBlock(make([]byte, 1), nil)
	_ = reg.Track(other)
	if len(obs.events) != 2 {
		t.Fatal("unsubscribed observer still notified")
	}
}

func TestRegistry_Each(t *testing.T) {
	reg := NewRegistry()
	for range 3 {
		_ = reg.Track(NewBlock(make([]byte, 4), nil))
	}

	seen := 0
	reg.Each(func(*Block) bool {
		seen++
		return true
	})
	if seen != 3 {
		t.Fatalf("Each visited %d blocks, want 3", seen)
	}

	seen = 0
	reg.Each(func(*Block) bool {
		seen++
		return false
	})
	if seen != 1 {
		t.Fatalf("Each visited %d blocks after stop, want 1", seen)
	}
}

func TestRegistry_Close(t *testing.T) {
	reg := NewRegistry()
	obs := &testObserver{}
	reg.Subscribe(obs)

	errA := stderrors.New("a")
	errB := stderrors.New("b")
	a := NewBlock(make([]byte, 1), func([]byte) error { return errA })
	b := NewBlock(make([]byte, 1), func([]byte) error { return errB })
	c := NewBlock(make([]byte, 1), nil)
	for _, blk := range []*Block{a, b, c} {
		if err := reg.Track(blk); err != nil {
			t.Fatal(err)
		}
	}
	a.Retain()

	err := reg.Close()
	if got := len(multierr.Errors(err)); got != 2 {
		t.Fatalf("Close returned %d errors, want 2: %v", got, err)
	}
	if !stderrors.Is(err, errA) || !stderrors.Is(err, errB) {
		t.Fatalf("Close error %v should contain both hook errors", err)
	}
	if reg.Len() != 0 {
		t.Fatalf("Len after Close = %d", reg.Len())
	}
	if a.RefCount() != 0 || a.Bytes() != nil || !a.Released() {
		t.Fatal("Close should free blocks with outstanding references")
	}

	released := 0
	for _, e := range obs.events {
		if e.Type == EventReleased {
			released++
		}
	}
	if released != 3 {
		t.Fatalf("got %d release events, want 3", released)
	}

	if err := reg.Track(NewBlock(nil, nil)); !stderrors.Is(err, errors.ErrClosed) {
		t.Fatalf("Track after Close error = %v, want closed", err)
	}
	if err := reg.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if err := a.Release(); err != nil {
		t.Fatalf("Release after Close: %v", err)
	}
}

func TestEventType_String(t *testing.T) {
	tests := []struct {
		want string
		typ  EventType
	}{
		{"allocated", EventAllocated},
		{"released", EventReleased},
		{"unknown", EventType(9)},
	}
	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.want {
			t.Errorf("EventType(%d).String() = %q, want %q", tt.typ, got, tt.want)
		}
	}
}
