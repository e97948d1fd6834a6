package console

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// HTTPSynthesizer posts {"text"} to a synthesis endpoint and expects
// {"audio_url"} back. Failure bodies may carry {"detail"}.
type HTTPSynthesizer struct {
	url    string
	client *http.Client
}

func NewHTTPSynthesizer(url string, client *http.Client) *HTTPSynthesizer {
	if client == nil {
		// No client-level timeout; the controller owns the deadline.
		client = &http.Client{}
	}
	return &HTTPSynthesizer{url: strings.TrimSpace(url), client: client}
}

func (s *HTTPSynthesizer) Synthesize(ctx context.Context, req SynthesisRequest) (Result, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return Result{}, &TransportError{Err: fmt.Errorf("marshal request: %w", err)}
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return Result{}, &TransportError{Err: fmt.Errorf("create request: %w", err)}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	res, err := s.client.Do(httpReq)
	if err != nil {
		return Result{}, &TransportError{Err: fmt.Errorf("send request: %w", err)}
	}
	defer res.Body.Close()
	body, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return Result{}, &TransportError{StatusCode: res.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		var failure struct {
			Detail any `json:"detail"`
		}
		te := &TransportError{StatusCode: res.StatusCode, Err: fmt.Errorf("synthesis status %d", res.StatusCode)}
		if json.Unmarshal(body, &failure) == nil {
			if d, ok := failure.Detail.(string); ok {
				te.Detail = strings.TrimSpace(d)
			}
		}
		return Result{}, te
	}

	var success struct {
		AudioURL string `json:"audio_url"`
	}
	if err := json.Unmarshal(body, &success); err != nil {
		return Result{}, &TransportError{StatusCode: res.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	if strings.TrimSpace(success.AudioURL) == "" {
		return Result{}, ErrMissingAudio
	}
	return Result{AudioRef: success.AudioURL}, nil
}
