package httpapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ent0n29/hudsynth/internal/synthesis"
)

type generateVoiceRequest struct {
	Text string `json:"text"`
}

// generateVoiceResponse keeps audio_url present as null when the provider
// answered without a file.
type generateVoiceResponse struct {
	AudioURL *string `json:"audio_url"`
}

func (s *Server) handleGenerateVoice(w http.ResponseWriter, r *http.Request) {
	var req generateVoiceRequest
	if err := decodeJSON(r, &req); err != nil {
		if errors.Is(err, errEmptyBody) {
			respondDetail(w, http.StatusBadRequest, synthesis.ErrEmptyText.Error())
			return
		}
		respondDetail(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if s.synthesis == nil {
		respondDetail(w, http.StatusNotImplemented, "synthesis not configured")
		return
	}

	res, err := s.synthesis.Generate(r.Context(), req.Text)
	if err != nil {
		status, detail := synthesis.DetailFor(err)
		respondDetail(w, status, detail)
		return
	}

	var out generateVoiceResponse
	if res.AudioURL != "" {
		out.AudioURL = &res.AudioURL
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.synthesis == nil {
		respondJSON(w, http.StatusOK, map[string]any{"items": []any{}})
		return
	}
	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer")
			return
		}
		limit = n
	}

	items, err := s.synthesis.History(r.Context(), limit)
	if err != nil {
		s.log.Warn("history query failed", slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "history_unavailable", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"mode":  s.synthesis.HistoryMode(),
		"items": items,
	})
}

func (s *Server) handleAudioClip(w http.ResponseWriter, r *http.Request) {
	if s.clips == nil {
		respondError(w, http.StatusNotFound, "clip_not_found", "no local clips are served")
		return
	}
	clip, ok := s.clips.Get(chi.URLParam(r, "id"))
	if !ok {
		respondError(w, http.StatusNotFound, "clip_not_found", "clip expired or unknown")
		return
	}
	w.Header().Set("Content-Type", clip.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(clip.Data)))
	w.Header().Set("Cache-Control", "private, max-age=300")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(clip.Data)
}
