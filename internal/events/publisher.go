// Package events fans synthesis outcomes out to a NATS subject.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
)

type Kind string

const (
	KindCompleted Kind = "completed"
	KindFailed    Kind = "failed"
)

// SynthesisEvent is published once per /generate-voice call.
type SynthesisEvent struct {
	Kind      Kind      `json:"kind"`
	ID        string    `json:"id,omitempty"`
	Provider  string    `json:"provider"`
	AudioURL  string    `json:"audio_url,omitempty"`
	Error     string    `json:"error,omitempty"`
	TextChars int       `json:"text_chars"`
	LatencyMS int64     `json:"latency_ms"`
	At        time.Time `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, ev SynthesisEvent) error
	Healthy() bool
	Close()
}

type nopPublisher struct{}

// NewNopPublisher drops every event.
func NewNopPublisher() Publisher { return nopPublisher{} }

func (nopPublisher) Publish(context.Context, SynthesisEvent) error { return nil }
func (nopPublisher) Healthy() bool                                 { return true }
func (nopPublisher) Close()                                        {}

// NATSPublisher publishes events as JSON on <subject>.<kind>.
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
	log     *slog.Logger
}

func ConnectNATS(url, subject string, log *slog.Logger) (*NATSPublisher, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, fmt.Errorf("nats url is empty")
	}
	conn, err := nats.Connect(url,
		nats.Name("hudsynth"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	log.Info("connected to NATS", slog.String("servers", url), slog.String("subject", subject))
	return &NATSPublisher{conn: conn, subject: subject, log: log}, nil
}

func (p *NATSPublisher) Publish(_ context.Context, ev SynthesisEvent) error {
	data, err := encode(ev)
	if err != nil {
		return err
	}
	if err := p.conn.Publish(SubjectFor(p.subject, ev.Kind), data); err != nil {
		return fmt.Errorf("publish synthesis event: %w", err)
	}
	return nil
}

func (p *NATSPublisher) Healthy() bool {
	return p != nil && p.conn != nil && p.conn.Status() == nats.CONNECTED
}

func (p *NATSPublisher) Close() {
	if p == nil {
		return
	}
	p.log.Info("closing NATS connection")
	_ = p.conn.Drain()
	p.conn.Close()
}

// SubjectFor joins the configured prefix with the event kind.
func SubjectFor(prefix string, kind Kind) string {
	prefix = strings.Trim(strings.TrimSpace(prefix), ".")
	if prefix == "" {
		prefix = "hudsynth.synthesis"
	}
	return prefix + "." + string(kind)
}

func encode(ev SynthesisEvent) ([]byte, error) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("encode synthesis event: %w", err)
	}
	return data, nil
}
