// Package tts holds the upstream speech providers behind /generate-voice.
package tts

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotConfigured is returned by providers missing their credentials.
var ErrNotConfigured = errors.New("MURF_API_KEY not configured in .env file.")

type Request struct {
	Text    string
	VoiceID string
}

// Clip is a synthesized result addressed by URL. AudioURL may be empty when the
// upstream reported success without a file.
type Clip struct {
	AudioURL string
	Provider string
	VoiceID  string
}

type Provider interface {
	Name() string
	Synthesize(ctx context.Context, req Request) (Clip, error)
}

// UpstreamError is a non-2xx answer from a provider.
type UpstreamError struct {
	Provider   string
	StatusCode int
	Body       string
	Retryable  bool
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s status %d: %s", e.Provider, e.StatusCode, e.Body)
}
