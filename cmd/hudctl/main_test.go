package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newGenerateServer(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/generate-voice" {
			http.NotFound(w, r)
			return
		}
		var req struct {
			Text string `json:"text"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		w.Header().Set("Content-Type", "application/json")
		if req.Text == "fail" {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"detail":"API request failed: quota"}`))
			return
		}
		_, _ = w.Write([]byte(`{"audio_url":"/v1/audio/clip-1"}`))
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestRunSubmitAndReplay(t *testing.T) {
	ts := newGenerateServer(t)
	var out syncBuffer

	in := strings.NewReader(":play\n   \nhello\nfail\n:play\n:quit\nnever sent\n")
	err := run(context.Background(), options{baseURL: ts.URL, timeout: 5 * time.Second, dwell: time.Second}, in, &out)
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}

	got := out.String()
	wantInOrder := []string{
		"[SYNTHESIZE] playback off",
		"!! NO AUDIO AVAILABLE FOR PLAYBACK.",
		"!! NO INPUT DETECTED",
		"[PROCESSING...] playback off",
		">> SYNTHESIS COMPLETE. PLAYING AUDIO.",
		"PLAY " + ts.URL + "/v1/audio/clip-1",
		"[SYNTHESIZE] playback on",
		"!! API request failed: quota",
		">> PLAYING LAST SYNTHESIS.",
		"PLAY " + ts.URL + "/v1/audio/clip-1",
	}
	rest := got
	for _, want := range wantInOrder {
		i := strings.Index(rest, want)
		if i < 0 {
			t.Fatalf("output missing %q after earlier lines:\n%s", want, got)
		}
		rest = rest[i+len(want):]
	}
}

func TestRunRejectsBadServer(t *testing.T) {
	var out syncBuffer
	if err := run(context.Background(), options{baseURL: "not a url"}, strings.NewReader(""), &out); err == nil {
		t.Fatalf("run() expected error for invalid server")
	}
}
