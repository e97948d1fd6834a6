package tts

import (
	"context"
	"errors"
	"testing"
)

func TestFailoverSwitchesToFallbackAndSticks(t *testing.T) {
	ctx := context.Background()
	primary := &stubProvider{name: "murf", err: &UpstreamError{Provider: "murf", StatusCode: 503, Retryable: true}}
	fallback := &stubProvider{name: "mock", clip: Clip{AudioURL: "/v1/audio/x"}}

	p := NewFailoverProvider(primary, fallback)
	for i := 0; i < 2; i++ {
		clip, err := p.Synthesize(ctx, Request{Text: "hi"})
		if err != nil {
			t.Fatalf("Synthesize() unexpected error = %v", err)
		}
		if clip.AudioURL != "/v1/audio/x" {
			t.Fatalf("AudioURL = %q, want fallback clip", clip.AudioURL)
		}
	}
	if primary.calls != 1 {
		t.Fatalf("primary calls = %d, want 1", primary.calls)
	}
	if fallback.calls != 2 {
		t.Fatalf("fallback calls = %d, want 2", fallback.calls)
	}
	if p.Name() != "mock" {
		t.Fatalf("Name() = %q, want active fallback name", p.Name())
	}
}

func TestFailoverKeepsClientErrors(t *testing.T) {
	quota := &UpstreamError{Provider: "murf", StatusCode: 402, Body: "quota exceeded"}
	primary := &stubProvider{name: "murf", err: quota}
	fallback := &stubProvider{name: "mock"}

	_, err := NewFailoverProvider(primary, fallback).Synthesize(context.Background(), Request{Text: "hi"})
	if !errors.Is(err, quota) {
		t.Fatalf("Synthesize() error = %v, want primary client error", err)
	}
	if fallback.calls != 0 {
		t.Fatalf("fallback calls = %d, want 0", fallback.calls)
	}
}

func TestFailoverReturnsCombinedErrorWhenBothFail(t *testing.T) {
	primary := &stubProvider{name: "murf", err: &UpstreamError{Provider: "murf", StatusCode: 500, Retryable: true}}
	fallback := &stubProvider{name: "mock", err: errors.New("fallback down")}

	if _, err := NewFailoverProvider(primary, fallback).Synthesize(context.Background(), Request{Text: "hi"}); err == nil {
		t.Fatalf("Synthesize() expected error when both providers fail")
	}
}

type stubProvider struct {
	name  string
	calls int
	clip  Clip
	err   error
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) Synthesize(context.Context, Request) (Clip, error) {
	p.calls++
	if p.err != nil {
		return Clip{}, p.err
	}
	return p.clip, nil
}
