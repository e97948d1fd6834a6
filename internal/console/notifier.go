package console

import (
	"sync"
	"time"
)

const (
	DefaultEntrance = 500 * time.Millisecond
	DefaultDwell    = 3 * time.Second
)

type pendingExpiry struct {
	note   Notification
	cancel CancelFunc
}

// Notifier is a single-slot message surface. A new message replaces the shown
// one and cancels its pending expiry before scheduling its own.
type Notifier struct {
	mu       sync.Mutex
	display  Display
	sched    Scheduler
	lifetime time.Duration
	recorder Recorder
	now      func() time.Time

	seq     uint64
	current *pendingExpiry
}

// NewNotifier builds a Notifier whose messages expire after entrance+dwell.
func NewNotifier(display Display, sched Scheduler, entrance, dwell time.Duration) *Notifier {
	if sched == nil {
		sched = WallScheduler()
	}
	if entrance < 0 {
		entrance = 0
	}
	if dwell <= 0 {
		dwell = DefaultDwell
	}
	return &Notifier{
		display:  display,
		sched:    sched,
		lifetime: entrance + dwell,
		recorder: nopRecorder{},
		now:      time.Now,
	}
}

func (n *Notifier) setRecorder(r Recorder) {
	if r != nil {
		n.recorder = r
	}
}

// Notify shows text immediately and restarts the expiry clock for it.
func (n *Notifier) Notify(text string, severity Severity) Notification {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.current != nil {
		n.current.cancel()
		n.current = nil
	}

	n.seq++
	note := Notification{
		ID:       n.seq,
		Text:     text,
		Severity: severity,
		Emphasis: severity == SeverityError,
		ShownAt:  n.now().UTC(),
	}
	p := &pendingExpiry{note: note}
	n.current = p
	// Display calls stay under the lock so a show and a clear can never reorder.
	if n.display != nil {
		n.display.ShowNotification(note)
	}
	p.cancel = n.sched.AfterFunc(n.lifetime, func() { n.expire(p) })
	n.recorder.ObserveNotification(string(severity))
	return note
}

func (n *Notifier) expire(p *pendingExpiry) {
	n.mu.Lock()
	defer n.mu.Unlock()
	// A callback that fired while Notify held the lock is stale once replaced.
	if n.current != p {
		return
	}
	n.current = nil
	if n.display != nil {
		n.display.ClearNotification(p.note)
	}
}

// Current reports the message on display, if any.
func (n *Notifier) Current() (Notification, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current == nil {
		return Notification{}, false
	}
	return n.current.note, true
}

// Close cancels the pending expiry without clearing the display.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current != nil {
		n.current.cancel()
		n.current = nil
	}
}
