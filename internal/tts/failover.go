package tts

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/ent0n29/hudsynth/internal/reliability"
)

// FailoverProvider prefers primary and switches to fallback when primary is
// unavailable. Once fallback succeeds it stays active until it fails; then
// primary is retried. Client errors from primary (bad request, quota) are
// returned as is.
type FailoverProvider struct {
	primary        Provider
	fallback       Provider
	fallbackActive atomic.Bool
}

func NewFailoverProvider(primary, fallback Provider) *FailoverProvider {
	return &FailoverProvider{primary: primary, fallback: fallback}
}

func (p *FailoverProvider) Name() string {
	if p.fallbackActive.Load() {
		return p.fallback.Name()
	}
	return p.primary.Name()
}

func (p *FailoverProvider) Synthesize(ctx context.Context, req Request) (Clip, error) {
	if p.fallbackActive.Load() {
		clip, fbErr := p.fallback.Synthesize(ctx, req)
		if fbErr == nil {
			return clip, nil
		}
		// Fallback failed after being active; try primary again.
		clip, prErr := p.primary.Synthesize(ctx, req)
		if prErr == nil {
			p.fallbackActive.Store(false)
			return clip, nil
		}
		return Clip{}, fmt.Errorf("tts fallback failed: %v; tts primary failed: %w", fbErr, prErr)
	}

	clip, prErr := p.primary.Synthesize(ctx, req)
	if prErr == nil || !shouldFailover(prErr) {
		return clip, prErr
	}
	clip, fbErr := p.fallback.Synthesize(ctx, req)
	if fbErr != nil {
		return Clip{}, fmt.Errorf("tts primary failed: %v; tts fallback failed: %w", prErr, fbErr)
	}
	p.fallbackActive.Store(true)
	return clip, nil
}

func shouldFailover(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	return retryable(err)
}

func retryable(err error) bool {
	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		return upstream.Retryable
	}
	return reliability.IsRetryableError(err)
}
