// Package console coordinates one synthesis front-end: the request lifecycle,
// the single-slot replay cache and the auto-expiring notification surface.
package console

import (
	"context"
	"time"
)

type Options struct {
	Synthesizer    Synthesizer
	Surface        Surface
	Scheduler      Scheduler
	Recorder       Recorder
	Entrance       time.Duration
	Dwell          time.Duration
	RequestTimeout time.Duration
}

// Console wires the slot, notifier, controller and playback trigger around a
// single presentation surface.
type Console struct {
	slot       *AudioSlot
	notifier   *Notifier
	controller *Controller
	playback   *Playback
	surface    Surface
}

type Snapshot struct {
	Controls     Controls      `json:"controls"`
	Notification *Notification `json:"notification,omitempty"`
	LastResult   *Result       `json:"last_result,omitempty"`
}

func New(opts Options) *Console {
	entrance := opts.Entrance
	if entrance == 0 {
		entrance = DefaultEntrance
	}
	slot := NewAudioSlot()
	notifier := NewNotifier(opts.Surface, opts.Scheduler, entrance, opts.Dwell)
	controller := NewController(slot, notifier, opts.Synthesizer, opts.Surface, opts.Surface, opts.RequestTimeout)
	playback := NewPlayback(slot, notifier, opts.Surface)
	if opts.Recorder != nil {
		notifier.setRecorder(opts.Recorder)
		controller.recorder = opts.Recorder
		playback.recorder = opts.Recorder
	}
	return &Console{
		slot:       slot,
		notifier:   notifier,
		controller: controller,
		playback:   playback,
		surface:    opts.Surface,
	}
}

// Start publishes the initial controls: submit ready, playback disabled.
func (c *Console) Start() {
	if c.surface != nil {
		c.surface.SetControls(c.controller.Controls())
	}
}

func (c *Console) Submit(ctx context.Context, text string) (Result, error) {
	return c.controller.Submit(ctx, text)
}

func (c *Console) Replay() error { return c.playback.Replay() }

func (c *Console) Snapshot() Snapshot {
	snap := Snapshot{Controls: c.controller.Controls()}
	if n, ok := c.notifier.Current(); ok {
		snap.Notification = &n
	}
	if r, ok := c.slot.Get(); ok {
		snap.LastResult = &r
	}
	return snap
}

func (c *Console) Close() { c.notifier.Close() }
