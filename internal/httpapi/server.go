package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/ent0n29/hudsynth/internal/config"
	"github.com/ent0n29/hudsynth/internal/observability"
	"github.com/ent0n29/hudsynth/internal/session"
	"github.com/ent0n29/hudsynth/internal/synthesis"
	"github.com/ent0n29/hudsynth/internal/tts"
)

type Server struct {
	cfg       config.Config
	sessions  *session.Manager
	synthesis *synthesis.Service
	clips     *tts.ClipStore
	metrics   *observability.Metrics
	log       *slog.Logger
	upgrader  websocket.Upgrader
	static    http.Handler
}

// New builds the HTTP surface. clips may be nil when no local provider runs.
func New(cfg config.Config, sessions *session.Manager, svc *synthesis.Service, clips *tts.ClipStore, metrics *observability.Metrics, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:       cfg,
		sessions:  sessions,
		synthesis: svc,
		clips:     clips,
		metrics:   metrics,
		log:       logger.With(slog.String("component", "httpapi")),
		static:    newStaticHandler(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				// Only same-origin browsers may drive a console unless configured otherwise.
				if cfg.AllowAnyOrigin {
					return true
				}
				origin := strings.TrimSpace(r.Header.Get("Origin"))
				if origin == "" {
					// Non-browser clients often omit Origin.
					return true
				}
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				if u.Scheme != "http" && u.Scheme != "https" {
					return false
				}
				return strings.EqualFold(u.Host, r.Host)
			},
		},
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/", s.handleIndex)
	r.Handle("/static/*", http.StripPrefix("/static/", s.static))

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})

	r.Post("/generate-voice", s.handleGenerateVoice)
	r.Get("/v1/audio/{id}", s.handleAudioClip)
	r.Get("/v1/history", s.handleHistory)
	r.Get("/v1/perf/latency", s.handlePerfLatency)

	r.Post("/v1/console/session", s.handleCreateSession)
	r.Post("/v1/console/session/{id}/end", s.handleEndSession)
	r.Get("/v1/console/ws", s.handleConsoleWS)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, s.status("ok"))
}

// handleReady fails while the event publisher is disconnected.
func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	if s.synthesis != nil && !s.synthesis.EventsHealthy() {
		respondJSON(w, http.StatusServiceUnavailable, s.status("degraded"))
		return
	}
	respondJSON(w, http.StatusOK, s.status("ready"))
}

func (s *Server) status(state string) map[string]any {
	out := map[string]any{
		"status":          state,
		"active_sessions": s.sessions.ActiveCount(),
	}
	if s.synthesis != nil {
		out["synth_provider"] = s.synthesis.ProviderName()
		out["history_mode"] = s.synthesis.HistoryMode()
		out["events_healthy"] = s.synthesis.EventsHealthy()
	}
	return out
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req session.CreateRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	sess := s.sessions.Create(strings.TrimSpace(req.ClientID))
	s.metrics.ActiveSessions.Set(float64(s.sessions.ActiveCount()))
	s.metrics.SessionEvents.WithLabelValues("created").Inc()

	respondJSON(w, http.StatusCreated, session.CreateResponse{
		SessionID:       sess.ID,
		ClientID:        sess.ClientID,
		Status:          sess.Status,
		StartedAt:       sess.StartedAt,
		LastActivityAt:  sess.LastActivityAt,
		InactivityTTLMS: s.sessions.InactivityTimeout().Milliseconds(),
	})
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if strings.TrimSpace(id) == "" {
		respondError(w, http.StatusBadRequest, "invalid_session_id", "missing session id")
		return
	}

	sess, err := s.sessions.End(id)
	if err != nil {
		respondError(w, http.StatusNotFound, "session_not_found", err.Error())
		return
	}
	s.metrics.ActiveSessions.Set(float64(s.sessions.ActiveCount()))
	s.metrics.SessionEvents.WithLabelValues("ended").Inc()
	respondJSON(w, http.StatusOK, sess)
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// detailResponse is the error body of /generate-voice.
type detailResponse struct {
	Detail string `json:"detail"`
}

var errEmptyBody = errors.New("empty body")

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	defer r.Body.Close()
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	if err := dec.Decode(out); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "eof") {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}

func respondDetail(w http.ResponseWriter, status int, detail string) {
	respondJSON(w, status, detailResponse{Detail: detail})
}
