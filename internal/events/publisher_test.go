package events

import (
	"context"
	"encoding/json"
	"testing"
)

func TestSubjectFor(t *testing.T) {
	cases := []struct {
		prefix string
		kind   Kind
		want   string
	}{
		{"hudsynth.synthesis", KindCompleted, "hudsynth.synthesis.completed"},
		{"hud.", KindFailed, "hud.failed"},
		{"", KindCompleted, "hudsynth.synthesis.completed"},
	}
	for _, tc := range cases {
		if got := SubjectFor(tc.prefix, tc.kind); got != tc.want {
			t.Fatalf("SubjectFor(%q, %q) = %q, want %q", tc.prefix, tc.kind, got, tc.want)
		}
	}
}

func TestEncodeStampsTime(t *testing.T) {
	data, err := encode(SynthesisEvent{Kind: KindCompleted, Provider: "mock", TextChars: 5})
	if err != nil {
		t.Fatalf("encode() error = %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded["kind"] != "completed" || decoded["provider"] != "mock" {
		t.Fatalf("decoded = %+v", decoded)
	}
	if at, _ := decoded["at"].(string); at == "" || at == "0001-01-01T00:00:00Z" {
		t.Fatalf("at = %v, want stamped time", decoded["at"])
	}
}

func TestNopPublisher(t *testing.T) {
	p := NewNopPublisher()
	if err := p.Publish(context.Background(), SynthesisEvent{Kind: KindFailed}); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if !p.Healthy() {
		t.Fatalf("Healthy() = false")
	}
	p.Close()
}
