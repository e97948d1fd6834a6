package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ent0n29/hudsynth/internal/config"
	"github.com/ent0n29/hudsynth/internal/events"
	"github.com/ent0n29/hudsynth/internal/history"
	"github.com/ent0n29/hudsynth/internal/httpapi"
	"github.com/ent0n29/hudsynth/internal/observability"
	"github.com/ent0n29/hudsynth/internal/session"
	"github.com/ent0n29/hudsynth/internal/synthesis"
	"github.com/ent0n29/hudsynth/internal/telemetry"
	"github.com/ent0n29/hudsynth/internal/tts"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	logger := cfg.Logger()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Config{
		ServiceName: cfg.ServiceName,
		Stdout:      cfg.TraceStdout,
	}, logger)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(flushCtx)
	}()

	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	store, err := history.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer store.Close()
	logger.Info("history store ready", slog.String("mode", store.Mode()))

	publisher := events.NewNopPublisher()
	if strings.TrimSpace(cfg.NATSURL) != "" {
		p, err := events.ConnectNATS(cfg.NATSURL, cfg.NATSSubject, logger.With(slog.String("component", "events")))
		if err != nil {
			// Events are best effort; synthesis keeps working without them.
			logger.Warn("nats unavailable, events disabled", slog.String("error", err.Error()))
		} else {
			publisher = p
		}
	}
	defer publisher.Close()

	clips := tts.NewClipStore(cfg.MockClipLimit)
	provider, err := buildProvider(cfg, clips, logger)
	if err != nil {
		return err
	}

	svc := synthesis.NewService(synthesis.Options{
		Provider:  provider,
		History:   store,
		Events:    publisher,
		Metrics:   metrics,
		RedactPII: cfg.HistoryRedactPII,
		Logger:    logger,
	})

	sessions := session.NewManager(cfg.SessionInactivityTimeout)
	sessions.SetExpireHook(func(_ *session.Session) {
		metrics.SessionEvents.WithLabelValues("expired").Inc()
		metrics.ActiveSessions.Set(float64(sessions.ActiveCount()))
	})

	api := httpapi.New(cfg, sessions, svc, clips, metrics, logger)
	httpServer := &http.Server{
		Addr:              cfg.BindAddr,
		Handler:           api.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	sessions.StartJanitor(gctx, 5*time.Second)

	g.Go(func() error {
		logger.Info("server listening", slog.String("addr", cfg.BindAddr), slog.String("provider", provider.Name()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("graceful shutdown failed", slog.String("error", err.Error()))
			_ = httpServer.Close()
		}
		return nil
	})
	return g.Wait()
}

// buildProvider resolves SYNTH_PROVIDER. auto uses Murf when a key is set,
// backed by the local tone renderer, and the local renderer alone otherwise.
func buildProvider(cfg config.Config, clips *tts.ClipStore, logger *slog.Logger) (tts.Provider, error) {
	mock := tts.NewMockProvider(clips, "/v1/audio")
	murf := func() *tts.MurfProvider {
		return tts.NewMurfProvider(tts.MurfConfig{
			APIKey:         cfg.MurfAPIKey,
			BaseURL:        cfg.MurfBaseURL,
			DefaultVoiceID: cfg.MurfVoiceID,
			Timeout:        cfg.MurfTimeout,
			MaxRetries:     cfg.MurfMaxRetries,
		})
	}

	switch cfg.SynthProvider {
	case "murf":
		if strings.TrimSpace(cfg.MurfAPIKey) == "" {
			logger.Warn("MURF_API_KEY is not set; /generate-voice will report it on every request")
		}
		return murf(), nil
	case "mock":
		logger.Info("synthesis provider: mock")
		return mock, nil
	case "auto", "":
		if strings.TrimSpace(cfg.MurfAPIKey) != "" {
			logger.Info("synthesis provider: murf with mock fallback")
			return tts.NewFailoverProvider(murf(), mock), nil
		}
		logger.Info("synthesis provider: mock (no MURF_API_KEY)")
		return mock, nil
	default:
		return nil, errors.New("invalid SYNTH_PROVIDER: " + cfg.SynthProvider)
	}
}
