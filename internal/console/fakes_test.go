package console

import (
	"context"
	"sort"
	"sync"
	"time"
)

type fakeTimer struct {
	at        time.Duration
	f         func()
	cancelled bool
	fired     bool
}

// fakeScheduler fires callbacks only when Advance moves past their deadline.
type fakeScheduler struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*fakeTimer
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) CancelFunc {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &fakeTimer{at: s.now + d, f: f}
	s.timers = append(s.timers, t)
	return func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		if t.fired || t.cancelled {
			return false
		}
		t.cancelled = true
		return true
	}
}

func (s *fakeScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	s.now += d
	var due []*fakeTimer
	for _, t := range s.timers {
		if !t.fired && !t.cancelled && t.at <= s.now {
			t.fired = true
			due = append(due, t)
		}
	}
	s.mu.Unlock()
	sort.Slice(due, func(i, j int) bool { return due[i].at < due[j].at })
	for _, t := range due {
		t.f()
	}
}

func (s *fakeScheduler) pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.timers {
		if !t.fired && !t.cancelled {
			n++
		}
	}
	return n
}

type surfaceEvent struct {
	kind string
	note Notification
	ctrl Controls
	ref  string
}

type recordingSurface struct {
	mu     sync.Mutex
	events []surfaceEvent
	shown  *Notification
}

func (s *recordingSurface) ShowNotification(n Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, surfaceEvent{kind: "show", note: n})
	s.shown = &n
}

func (s *recordingSurface) ClearNotification(n Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, surfaceEvent{kind: "clear", note: n})
	if s.shown != nil && s.shown.ID == n.ID {
		s.shown = nil
	}
}

func (s *recordingSurface) SetControls(c Controls) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, surfaceEvent{kind: "controls", ctrl: c})
}

func (s *recordingSurface) Play(ref string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, surfaceEvent{kind: "play", ref: ref})
}

func (s *recordingSurface) byKind(kind string) []surfaceEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []surfaceEvent
	for _, e := range s.events {
		if e.kind == kind {
			out = append(out, e)
		}
	}
	return out
}

func (s *recordingSurface) lastControls() (Controls, bool) {
	ctrls := s.byKind("controls")
	if len(ctrls) == 0 {
		return Controls{}, false
	}
	return ctrls[len(ctrls)-1].ctrl, true
}

func (s *recordingSurface) displayed() (Notification, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.shown == nil {
		return Notification{}, false
	}
	return *s.shown, true
}

type stubSynthesizer struct {
	mu         sync.Mutex
	calls      int
	texts      []string
	synthesize func(ctx context.Context, req SynthesisRequest) (Result, error)
}

func (s *stubSynthesizer) Synthesize(ctx context.Context, req SynthesisRequest) (Result, error) {
	s.mu.Lock()
	s.calls++
	s.texts = append(s.texts, req.Text)
	fn := s.synthesize
	s.mu.Unlock()
	return fn(ctx, req)
}

func (s *stubSynthesizer) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}
