// Package synthesis implements the /generate-voice operation: validate text,
// call the upstream provider, then record and announce the outcome.
package synthesis

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ent0n29/hudsynth/internal/events"
	"github.com/ent0n29/hudsynth/internal/history"
	"github.com/ent0n29/hudsynth/internal/observability"
	"github.com/ent0n29/hudsynth/internal/policy"
	"github.com/ent0n29/hudsynth/internal/tts"
)

var ErrEmptyText = errors.New("text is required")

type Result struct {
	ID       string
	AudioURL string
	Provider string
	Latency  time.Duration
}

type Options struct {
	Provider  tts.Provider
	History   history.Store
	Events    events.Publisher
	Metrics   *observability.Metrics
	RedactPII bool
	Logger    *slog.Logger
}

type Service struct {
	provider  tts.Provider
	history   history.Store
	events    events.Publisher
	metrics   *observability.Metrics
	redactPII bool
	log       *slog.Logger
	tracer    trace.Tracer
}

func NewService(opts Options) *Service {
	if opts.History == nil {
		opts.History = history.NewInMemoryStore(0)
	}
	if opts.Events == nil {
		opts.Events = events.NewNopPublisher()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Service{
		provider:  opts.Provider,
		history:   opts.History,
		events:    opts.Events,
		metrics:   opts.Metrics,
		redactPII: opts.RedactPII,
		log:       opts.Logger.With(slog.String("component", "synthesis")),
		tracer:    otel.Tracer("github.com/ent0n29/hudsynth/internal/synthesis"),
	}
}

// Generate synthesizes text. A Result with an empty AudioURL means the
// provider answered without a file; callers report that as missing audio.
func (s *Service) Generate(ctx context.Context, text string) (Result, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Result{}, ErrEmptyText
	}

	ctx, span := s.tracer.Start(ctx, "synthesis.generate", trace.WithAttributes(
		attribute.String("tts.provider", s.provider.Name()),
		attribute.Int("tts.text_chars", utf8.RuneCountInString(text)),
	))
	defer span.End()

	started := time.Now()
	clip, err := s.provider.Synthesize(ctx, tts.Request{Text: text})
	latency := time.Since(started)
	provider := clip.Provider
	if provider == "" {
		provider = s.provider.Name()
	}

	ev := events.SynthesisEvent{
		Provider:  provider,
		TextChars: utf8.RuneCountInString(text),
		LatencyMS: latency.Milliseconds(),
	}

	switch {
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, "provider failed")
		s.observe(provider, "error", latency)
		s.log.Warn("synthesis failed", slog.String("provider", provider), slog.String("error", err.Error()))
		ev.Kind = events.KindFailed
		ev.Error = err.Error()
		s.publish(ctx, ev)
		return Result{}, err
	case clip.AudioURL == "":
		span.SetStatus(codes.Error, "missing audio url")
		s.observe(provider, "missing_audio", latency)
		s.log.Warn("synthesis returned no audio url", slog.String("provider", provider))
		ev.Kind = events.KindFailed
		ev.Error = "missing audio url"
		s.publish(ctx, ev)
		return Result{Provider: provider, Latency: latency}, nil
	}

	rec := history.Record{
		Text:      text,
		AudioURL:  clip.AudioURL,
		Provider:  provider,
		VoiceID:   clip.VoiceID,
		LatencyMS: latency.Milliseconds(),
		CreatedAt: time.Now().UTC(),
	}
	if s.redactPII {
		rec.Text, rec.PIIRedacted = policy.RedactPII(rec.Text)
	}
	rec.ID = uuid.NewString()
	if err := s.history.Save(ctx, rec); err != nil {
		s.log.Warn("history save failed", slog.String("error", err.Error()))
	}

	s.observe(provider, "success", latency)
	span.SetAttributes(attribute.String("tts.audio_url", clip.AudioURL))
	ev.Kind = events.KindCompleted
	ev.ID = rec.ID
	ev.AudioURL = clip.AudioURL
	s.publish(ctx, ev)

	return Result{ID: rec.ID, AudioURL: clip.AudioURL, Provider: provider, Latency: latency}, nil
}

func (s *Service) History(ctx context.Context, limit int) ([]history.Record, error) {
	return s.history.Recent(ctx, limit)
}

func (s *Service) ProviderName() string { return s.provider.Name() }

func (s *Service) HistoryMode() string { return s.history.Mode() }

func (s *Service) EventsHealthy() bool { return s.events.Healthy() }

func (s *Service) observe(provider, outcome string, d time.Duration) {
	if s.metrics != nil {
		s.metrics.ObserveSynthesis(provider, outcome, d)
	}
}

func (s *Service) publish(ctx context.Context, ev events.SynthesisEvent) {
	if err := s.events.Publish(ctx, ev); err != nil {
		s.log.Warn("event publish failed", slog.String("error", err.Error()))
	}
}

// DetailFor maps a Generate error to the HTTP status and the human readable
// detail sent back to clients.
func DetailFor(err error) (int, string) {
	switch {
	case errors.Is(err, ErrEmptyText):
		return http.StatusBadRequest, ErrEmptyText.Error()
	case errors.Is(err, tts.ErrNotConfigured):
		return http.StatusInternalServerError, tts.ErrNotConfigured.Error()
	default:
		return http.StatusInternalServerError, "API request failed: " + err.Error()
	}
}
