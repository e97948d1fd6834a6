package console

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

const (
	msgSynthesisComplete = "SYNTHESIS COMPLETE. PLAYING AUDIO."
	msgPlayingLast       = "PLAYING LAST SYNTHESIS."
)

// SynthesisRequest is what crosses the network boundary. Text is never empty.
type SynthesisRequest struct {
	Text string `json:"text"`
}

// Synthesizer issues one outbound synthesis call.
type Synthesizer interface {
	Synthesize(ctx context.Context, req SynthesisRequest) (Result, error)
}

// Controller serializes submissions against the outcome of the single
// outstanding synthesis call and owns the request state.
type Controller struct {
	mu       sync.Mutex
	state    RequestState
	slot     *AudioSlot
	notifier *Notifier
	synth    Synthesizer
	controls ControlSurface
	player   Player
	recorder Recorder
	timeout  time.Duration
}

func NewController(slot *AudioSlot, notifier *Notifier, synth Synthesizer, controls ControlSurface, player Player, timeout time.Duration) *Controller {
	return &Controller{
		state:    StateIdle,
		slot:     slot,
		notifier: notifier,
		synth:    synth,
		controls: controls,
		player:   player,
		recorder: nopRecorder{},
		timeout:  timeout,
	}
}

type outcome struct {
	result Result
	err    error
}

// Submit validates raw, runs one synthesis call and dispatches its outcome.
// Every error is already surfaced as a notification when Submit returns, except
// ErrRequestInFlight which is a silent rejection.
func (c *Controller) Submit(ctx context.Context, raw string) (Result, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		c.notifier.Notify(ErrEmptyInput.Error(), SeverityError)
		c.recorder.ObserveSubmission("empty_input", 0)
		return Result{}, ErrEmptyInput
	}

	release, err := c.acquire()
	if err != nil {
		c.recorder.ObserveSubmission("rejected_in_flight", 0)
		return Result{}, err
	}
	defer release()

	started := time.Now()
	out := c.call(ctx, text)

	switch {
	case out.err == nil && strings.TrimSpace(out.result.AudioRef) == "":
		out.err = ErrMissingAudio
		fallthrough
	case out.err != nil:
		c.notifier.Notify(out.err.Error(), SeverityError)
		c.recorder.ObserveSubmission(outcomeLabel(out.err), time.Since(started))
		return Result{}, out.err
	default:
		c.slot.Set(out.result)
		c.notifier.Notify(msgSynthesisComplete, SeverityNormal)
		if c.player != nil {
			c.player.Play(out.result.AudioRef)
		}
		c.recorder.ObserveSubmission("success", time.Since(started))
		return out.result, nil
	}
}

func (c *Controller) call(ctx context.Context, text string) (out outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = outcome{err: &TransportError{Err: errors.New("synthesizer panicked")}}
		}
	}()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	res, err := c.synth.Synthesize(ctx, SynthesisRequest{Text: text})
	if err != nil {
		return outcome{err: classify(ctx, err)}
	}
	return outcome{result: res}
}

// classify folds whatever the synthesizer returned into the error taxonomy.
func classify(ctx context.Context, err error) error {
	var te *TransportError
	if errors.Is(err, ErrMissingAudio) {
		return err
	}
	if errors.As(err, &te) && strings.TrimSpace(te.Detail) != "" {
		return err
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &TransportError{Err: fmt.Errorf("%w: %w", ErrTimeout, err)}
	}
	if te != nil {
		return err
	}
	return &TransportError{Err: err}
}

// acquire moves idle -> in flight and returns the matching release. The
// release runs exactly once per accepted submission.
func (c *Controller) acquire() (func(), error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateInFlight {
		return nil, ErrRequestInFlight
	}
	c.state = StateInFlight
	c.publishLocked()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			c.state = StateIdle
			c.publishLocked()
		})
	}, nil
}

func (c *Controller) publishLocked() {
	if c.controls == nil {
		return
	}
	c.controls.SetControls(c.controlsLocked())
}

func (c *Controller) controlsLocked() Controls {
	if c.state == StateInFlight {
		return Controls{
			State:       StateInFlight,
			SubmitLabel: LabelProcessing,
		}
	}
	return Controls{
		State:           StateIdle,
		SubmitEnabled:   true,
		PlaybackEnabled: !c.slot.IsEmpty(),
		SubmitLabel:     LabelReady,
	}
}

// Controls reports the control state as last published.
func (c *Controller) Controls() Controls {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.controlsLocked()
}

func (c *Controller) State() RequestState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func outcomeLabel(err error) string {
	var te *TransportError
	switch {
	case errors.Is(err, ErrMissingAudio):
		return "missing_audio"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.As(err, &te):
		return "transport_error"
	default:
		return "error"
	}
}
