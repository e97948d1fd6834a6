package console

import "time"

// CancelFunc stops a scheduled callback. It reports whether the callback was
// prevented from running.
type CancelFunc func() bool

// Scheduler runs f once after d and hands back a cancellation handle.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) CancelFunc
}

type wallScheduler struct{}

// WallScheduler schedules on real timers.
func WallScheduler() Scheduler { return wallScheduler{} }

func (wallScheduler) AfterFunc(d time.Duration, f func()) CancelFunc {
	t := time.AfterFunc(d, f)
	return t.Stop
}
