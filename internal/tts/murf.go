package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ent0n29/hudsynth/internal/reliability"
)

type MurfConfig struct {
	APIKey         string
	BaseURL        string
	DefaultVoiceID string
	Timeout        time.Duration
	MaxRetries     int
}

// MurfProvider calls Murf's speech generation endpoint, which answers with a
// hosted audio file URL.
type MurfProvider struct {
	cfg    MurfConfig
	client *http.Client
}

func NewMurfProvider(cfg MurfConfig) *MurfProvider {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = "https://api.murf.ai"
	}
	if strings.TrimSpace(cfg.DefaultVoiceID) == "" {
		cfg.DefaultVoiceID = "en-US-terrell"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &MurfProvider{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

func (p *MurfProvider) Name() string { return "murf" }

type murfRequest struct {
	Text    string `json:"text"`
	VoiceID string `json:"voiceId"`
}

type murfResponse struct {
	AudioFile string `json:"audioFile"`
}

func (p *MurfProvider) Synthesize(ctx context.Context, req Request) (Clip, error) {
	if strings.TrimSpace(p.cfg.APIKey) == "" {
		return Clip{}, ErrNotConfigured
	}
	voiceID := strings.TrimSpace(req.VoiceID)
	if voiceID == "" {
		voiceID = p.cfg.DefaultVoiceID
	}
	payload, err := json.Marshal(murfRequest{Text: req.Text, VoiceID: voiceID})
	if err != nil {
		return Clip{}, fmt.Errorf("marshal murf request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= p.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := reliability.Sleep(ctx, reliability.ExponentialBackoff(attempt-1, 250*time.Millisecond, 2*time.Second)); err != nil {
				return Clip{}, err
			}
		}
		clip, err := p.generate(ctx, payload)
		if err == nil {
			clip.VoiceID = voiceID
			return clip, nil
		}
		lastErr = err
		if !retryable(err) {
			break
		}
	}
	return Clip{}, lastErr
}

func (p *MurfProvider) generate(ctx context.Context, payload []byte) (Clip, error) {
	url := strings.TrimRight(p.cfg.BaseURL, "/") + "/v1/speech/generate"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return Clip{}, fmt.Errorf("create murf request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("api-key", p.cfg.APIKey)

	res, err := p.client.Do(httpReq)
	if err != nil {
		return Clip{}, fmt.Errorf("send murf request: %w", err)
	}
	defer res.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return Clip{}, &UpstreamError{
			Provider:   p.Name(),
			StatusCode: res.StatusCode,
			Body:       strings.TrimSpace(string(body)),
			Retryable:  reliability.IsRetryableHTTPStatus(res.StatusCode),
		}
	}

	var parsed murfResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Clip{}, fmt.Errorf("decode murf response: %w", err)
	}
	return Clip{AudioURL: strings.TrimSpace(parsed.AudioFile), Provider: p.Name()}, nil
}
