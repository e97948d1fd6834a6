package console

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPSynthesizerResponses(t *testing.T) {
	cases := []struct {
		name        string
		status      int
		body        string
		wantRef     string
		wantText    string
		wantMissing bool
	}{
		{name: "success", status: 200, body: `{"audio_url":"a.mp3"}`, wantRef: "a.mp3"},
		{name: "missing url", status: 200, body: `{"audio_url":""}`, wantMissing: true},
		{name: "detail", status: 500, body: `{"detail":"quota exceeded"}`, wantText: "quota exceeded"},
		{name: "non string detail", status: 422, body: `{"detail":[{"msg":"field required"}]}`, wantText: "API request failed"},
		{name: "not json", status: 502, body: `bad gateway`, wantText: "API request failed"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got SynthesisRequest
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if ct := r.Header.Get("Content-Type"); ct != "application/json" {
					t.Errorf("Content-Type = %q", ct)
				}
				_ = json.NewDecoder(r.Body).Decode(&got)
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer ts.Close()

			res, err := NewHTTPSynthesizer(ts.URL, nil).Synthesize(context.Background(), SynthesisRequest{Text: "hi"})
			if got.Text != "hi" {
				t.Fatalf("posted text = %q, want %q", got.Text, "hi")
			}
			switch {
			case tc.wantRef != "":
				if err != nil || res.AudioRef != tc.wantRef {
					t.Fatalf("Synthesize() = %+v, %v; want %q", res, err, tc.wantRef)
				}
			case tc.wantMissing:
				if !errors.Is(err, ErrMissingAudio) {
					t.Fatalf("error = %v, want ErrMissingAudio", err)
				}
			default:
				var te *TransportError
				if !errors.As(err, &te) {
					t.Fatalf("error = %v, want *TransportError", err)
				}
				if te.Error() != tc.wantText {
					t.Fatalf("Error() = %q, want %q", te.Error(), tc.wantText)
				}
			}
		})
	}
}

func TestHTTPSynthesizerUnreachable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	_, err := NewHTTPSynthesizer(url, nil).Synthesize(context.Background(), SynthesisRequest{Text: "hi"})
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("error = %v, want *TransportError", err)
	}
	if te.Error() != "API request failed" {
		t.Fatalf("Error() = %q", te.Error())
	}
}
