// Package history records completed syntheses for the /v1/history listing.
package history

import (
	"context"
	"time"
)

// Record is one successful synthesis.
type Record struct {
	ID          string    `json:"id"`
	Text        string    `json:"text"`
	AudioURL    string    `json:"audio_url"`
	Provider    string    `json:"provider"`
	VoiceID     string    `json:"voice_id"`
	PIIRedacted bool      `json:"pii_redacted"`
	LatencyMS   int64     `json:"latency_ms"`
	CreatedAt   time.Time `json:"created_at"`
}

// Store persists and lists synthesis records, newest first.
type Store interface {
	Save(ctx context.Context, record Record) error
	Recent(ctx context.Context, limit int) ([]Record, error)
	Mode() string
	Close() error
}

const defaultLimit = 20
