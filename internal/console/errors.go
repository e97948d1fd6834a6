package console

import (
	"errors"
	"strings"
)

const genericFailure = "API request failed"

var (
	// ErrEmptyInput is reported when the trimmed submission is empty.
	ErrEmptyInput = errors.New("NO INPUT DETECTED")
	// ErrRequestInFlight rejects a submission while another one is outstanding.
	ErrRequestInFlight = errors.New("synthesis request already in flight")
	// ErrMissingAudio is a successful response without a usable audio reference.
	ErrMissingAudio = errors.New("Audio URL not found in response.")
	// ErrPlaybackUnavailable is reported by Replay when nothing was synthesized yet.
	ErrPlaybackUnavailable = errors.New("NO AUDIO AVAILABLE FOR PLAYBACK.")
	// ErrTimeout marks a synthesis call abandoned by the controller deadline.
	ErrTimeout = errors.New("SYNTHESIS REQUEST TIMED OUT")
)

// TransportError is an outbound call that failed to complete or returned a
// non-success status. Detail carries the server supplied message, if any.
type TransportError struct {
	StatusCode int
	Detail     string
	Err        error
}

func (e *TransportError) Error() string {
	if d := strings.TrimSpace(e.Detail); d != "" {
		return d
	}
	if errors.Is(e.Err, ErrTimeout) {
		return ErrTimeout.Error()
	}
	return genericFailure
}

func (e *TransportError) Unwrap() error { return e.Err }
