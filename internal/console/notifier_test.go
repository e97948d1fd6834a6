package console

import (
	"testing"
	"time"
)

const lifetime = DefaultEntrance + DefaultDwell

func TestNotifierExpiresAfterLifetime(t *testing.T) {
	sched := &fakeScheduler{}
	surface := &recordingSurface{}
	n := NewNotifier(surface, sched, DefaultEntrance, DefaultDwell)

	note := n.Notify("hello", SeverityNormal)
	if note.Emphasis {
		t.Fatalf("normal notification should not carry emphasis")
	}

	sched.Advance(lifetime - time.Millisecond)
	if _, ok := n.Current(); !ok {
		t.Fatalf("notification expired before its lifetime")
	}

	sched.Advance(time.Millisecond)
	if _, ok := n.Current(); ok {
		t.Fatalf("notification still current after its lifetime")
	}
	clears := surface.byKind("clear")
	if len(clears) != 1 || clears[0].note.ID != note.ID {
		t.Fatalf("clears = %+v, want one clear for id %d", clears, note.ID)
	}
}

func TestNotifierSupersedeCancelsPendingExpiry(t *testing.T) {
	sched := &fakeScheduler{}
	surface := &recordingSurface{}
	n := NewNotifier(surface, sched, DefaultEntrance, DefaultDwell)

	first := n.Notify("NO INPUT DETECTED", SeverityError)
	sched.Advance(2 * time.Second)
	second := n.Notify("quota exceeded", SeverityError)

	if got := sched.pending(); got != 1 {
		t.Fatalf("pending timers = %d, want 1", got)
	}

	// Past the first message's deadline: nothing may be cleared.
	sched.Advance(lifetime - 2*time.Second)
	if len(surface.byKind("clear")) != 0 {
		t.Fatalf("stale expiry cleared a newer message")
	}
	shown, ok := surface.displayed()
	if !ok || shown.ID != second.ID {
		t.Fatalf("displayed = %+v, want second message", shown)
	}
	if !shown.Emphasis {
		t.Fatalf("error emphasis cleared by the superseded message's expiry")
	}

	sched.Advance(2 * time.Second)
	clears := surface.byKind("clear")
	if len(clears) != 1 {
		t.Fatalf("len(clears) = %d, want 1", len(clears))
	}
	if clears[0].note.ID != second.ID {
		t.Fatalf("cleared id = %d, want %d (first was %d)", clears[0].note.ID, second.ID, first.ID)
	}
}

func TestNotifierStaleCallbackIgnored(t *testing.T) {
	surface := &recordingSurface{}
	var captured []func()
	sched := schedulerFunc(func(_ time.Duration, f func()) CancelFunc {
		captured = append(captured, f)
		// Report the timer as already fired so cancellation cannot stop it.
		return func() bool { return false }
	})
	n := NewNotifier(surface, sched, 0, time.Second)

	n.Notify("one", SeverityNormal)
	second := n.Notify("two", SeverityError)

	captured[0]()
	if got, ok := n.Current(); !ok || got.ID != second.ID {
		t.Fatalf("Current() = %+v, %v; want second message", got, ok)
	}
	if len(surface.byKind("clear")) != 0 {
		t.Fatalf("stale callback cleared the display")
	}

	captured[1]()
	if _, ok := n.Current(); ok {
		t.Fatalf("own expiry did not clear the message")
	}
}

func TestNotifierCloseCancelsExpiry(t *testing.T) {
	sched := &fakeScheduler{}
	n := NewNotifier(nil, sched, DefaultEntrance, DefaultDwell)
	n.Notify("bye", SeverityNormal)
	n.Close()
	if got := sched.pending(); got != 0 {
		t.Fatalf("pending timers after Close = %d, want 0", got)
	}
}

type schedulerFunc func(d time.Duration, f func()) CancelFunc

func (f schedulerFunc) AfterFunc(d time.Duration, fn func()) CancelFunc { return f(d, fn) }
