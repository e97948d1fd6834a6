package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ent0n29/hudsynth/internal/console"
	"github.com/ent0n29/hudsynth/internal/protocol"
	"github.com/ent0n29/hudsynth/internal/session"
	"github.com/ent0n29/hudsynth/internal/synthesis"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsReadTimeout  = 120 * time.Second
	wsPingInterval = 30 * time.Second
)

// handleConsoleWS hosts one console for the lifetime of the connection. The
// browser renders whatever the console pushes and sends submit/replay actions.
func (s *Server) handleConsoleWS(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.URL.Query().Get("session_id"))
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "missing_session_id", "query parameter session_id is required")
		return
	}
	if s.synthesis == nil {
		respondError(w, http.StatusNotImplemented, "unavailable", "synthesis not configured")
		return
	}

	if err := s.sessions.Attach(sessionID); err != nil {
		switch {
		case errors.Is(err, session.ErrNotFound):
			respondError(w, http.StatusNotFound, "session_not_found", err.Error())
		case errors.Is(err, session.ErrAlreadyAttached):
			respondError(w, http.StatusConflict, "session_attached", err.Error())
		default:
			respondError(w, http.StatusGone, "session_ended", err.Error())
		}
		return
	}
	defer s.sessions.Detach(sessionID)

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	s.metrics.SessionEvents.WithLabelValues("ws_connected").Inc()
	log := s.log.With(slog.String("session_id", sessionID))

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	outbound := make(chan any, 256)
	surface := &wsSurface{sessionID: sessionID, outbound: outbound, s: s}
	c := console.New(console.Options{
		Synthesizer:    serviceSynthesizer{svc: s.synthesis},
		Surface:        surface,
		Recorder:       s.metrics,
		Entrance:       s.cfg.ConsoleEntrance,
		Dwell:          s.cfg.ConsoleDwell,
		RequestTimeout: s.cfg.ConsoleRequestTimeout,
	})
	defer c.Close()
	c.Start()
	surface.send(snapshotEvent(sessionID, c.Snapshot()))

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		ping := time.NewTicker(wsPingInterval)
		defer ping.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ping.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteTimeout)); err != nil {
					cancel()
					return
				}
			case msg := <-outbound:
				_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
				if err := conn.WriteJSON(msg); err != nil {
					log.Debug("websocket write failed", slog.String("error", err.Error()))
					cancel()
					return
				}
				if t, ok := messageTypeOf(msg); ok {
					s.metrics.WSMessages.WithLabelValues("outbound", string(t)).Inc()
				}
			}
		}
	}()

	conn.SetReadLimit(64 << 10)
	_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
		return nil
	})

	var submits sync.WaitGroup
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		if msgType != websocket.TextMessage {
			continue
		}
		_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))

		parsed, err := protocol.ParseClientMessage(data)
		if err != nil {
			surface.send(protocol.ErrorEvent{
				Type:      protocol.TypeErrorEvent,
				SessionID: sessionID,
				Code:      "invalid_client_message",
				Source:    "gateway",
				Detail:    err.Error(),
			})
			continue
		}
		if t, ok := messageTypeOf(parsed); ok {
			s.metrics.WSMessages.WithLabelValues("inbound", string(t)).Inc()
		}

		switch msg := parsed.(type) {
		case protocol.ClientSubmit:
			_ = s.sessions.RecordSubmission(sessionID)
			submits.Add(1)
			go func(text string) {
				defer submits.Done()
				if _, err := c.Submit(ctx, text); errors.Is(err, console.ErrRequestInFlight) {
					log.Debug("submit ignored while request in flight")
				}
			}(msg.Text)
		case protocol.ClientReplay:
			_ = s.sessions.RecordReplay(sessionID)
			_ = c.Replay()
		}
	}

	cancel()
	submits.Wait()
	<-writerDone
	s.metrics.SessionEvents.WithLabelValues("ws_disconnected").Inc()
}

// wsSurface turns console signals into websocket events. Sends never block:
// the console calls it while holding its own locks.
type wsSurface struct {
	sessionID string
	outbound  chan<- any
	s         *Server
}

func (w *wsSurface) ShowNotification(n console.Notification) {
	w.send(notificationEvent(w.sessionID, n))
}

func (w *wsSurface) ClearNotification(n console.Notification) {
	w.send(protocol.NotificationCleared{
		Type:      protocol.TypeNotificationCleared,
		SessionID: w.sessionID,
		ID:        n.ID,
	})
}

func (w *wsSurface) SetControls(c console.Controls) {
	w.send(controlsEvent(w.sessionID, c))
}

func (w *wsSurface) Play(audioRef string) {
	w.send(protocol.PlayEvent{
		Type:      protocol.TypePlay,
		SessionID: w.sessionID,
		AudioURL:  audioRef,
	})
}

func (w *wsSurface) send(msg any) {
	select {
	case w.outbound <- msg:
	default:
		t, _ := messageTypeOf(msg)
		w.s.metrics.WSMessages.WithLabelValues("dropped", string(t)).Inc()
	}
}

// serviceSynthesizer runs console submissions against the in-process
// synthesis service with the same error mapping /generate-voice clients see.
type serviceSynthesizer struct {
	svc *synthesis.Service
}

func (a serviceSynthesizer) Synthesize(ctx context.Context, req console.SynthesisRequest) (console.Result, error) {
	res, err := a.svc.Generate(ctx, req.Text)
	if err != nil {
		if ctx.Err() != nil {
			return console.Result{}, &console.TransportError{Err: err}
		}
		status, detail := synthesis.DetailFor(err)
		return console.Result{}, &console.TransportError{StatusCode: status, Detail: detail, Err: err}
	}
	if res.AudioURL == "" {
		return console.Result{}, console.ErrMissingAudio
	}
	return console.Result{AudioRef: res.AudioURL}, nil
}

func controlsEvent(sessionID string, c console.Controls) protocol.ControlsEvent {
	return protocol.ControlsEvent{
		Type:            protocol.TypeControls,
		SessionID:       sessionID,
		State:           string(c.State),
		SubmitEnabled:   c.SubmitEnabled,
		PlaybackEnabled: c.PlaybackEnabled,
		SubmitLabel:     c.SubmitLabel,
	}
}

func notificationEvent(sessionID string, n console.Notification) protocol.NotificationEvent {
	return protocol.NotificationEvent{
		Type:      protocol.TypeNotification,
		SessionID: sessionID,
		ID:        n.ID,
		Text:      n.Text,
		Severity:  string(n.Severity),
		Emphasis:  n.Emphasis,
	}
}

func snapshotEvent(sessionID string, snap console.Snapshot) protocol.SnapshotEvent {
	ev := protocol.SnapshotEvent{
		Type:      protocol.TypeSnapshot,
		SessionID: sessionID,
		Controls:  controlsEvent(sessionID, snap.Controls),
	}
	if snap.Notification != nil {
		n := notificationEvent(sessionID, *snap.Notification)
		ev.Notification = &n
	}
	if snap.LastResult != nil {
		ev.LastAudioURL = snap.LastResult.AudioRef
	}
	return ev
}

func messageTypeOf(v any) (protocol.MessageType, bool) {
	switch m := v.(type) {
	case protocol.ClientSubmit:
		return m.Type, true
	case protocol.ClientReplay:
		return m.Type, true
	case protocol.ControlsEvent:
		return m.Type, true
	case protocol.NotificationEvent:
		return m.Type, true
	case protocol.NotificationCleared:
		return m.Type, true
	case protocol.PlayEvent:
		return m.Type, true
	case protocol.SnapshotEvent:
		return m.Type, true
	case protocol.ErrorEvent:
		return m.Type, true
	default:
		return "", false
	}
}
