package tts

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/ent0n29/hudsynth/internal/audio"
)

// StoredClip is a locally rendered audio file.
type StoredClip struct {
	ID          string
	ContentType string
	Data        []byte
	CreatedAt   time.Time
}

// ClipStore keeps the most recent locally rendered clips, oldest evicted first.
type ClipStore struct {
	mu    sync.RWMutex
	limit int
	order []string
	clips map[string]StoredClip
}

func NewClipStore(limit int) *ClipStore {
	if limit <= 0 {
		limit = 32
	}
	return &ClipStore{limit: limit, clips: make(map[string]StoredClip)}
}

func (s *ClipStore) Put(contentType string, data []byte) StoredClip {
	clip := StoredClip{
		ID:          uuid.NewString(),
		ContentType: contentType,
		Data:        data,
		CreatedAt:   time.Now().UTC(),
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clips[clip.ID] = clip
	s.order = append(s.order, clip.ID)
	for len(s.order) > s.limit {
		delete(s.clips, s.order[0])
		s.order = s.order[1:]
	}
	return clip
}

func (s *ClipStore) Get(id string) (StoredClip, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.clips[id]
	return c, ok
}

func (s *ClipStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clips)
}

// MockProvider renders a short tone per request so the HUD works without an
// upstream account. Pitch follows the text, length follows its size.
type MockProvider struct {
	clips   *ClipStore
	urlBase string
}

// NewMockProvider serves clips under urlBase + "/" + id.
func NewMockProvider(clips *ClipStore, urlBase string) *MockProvider {
	if strings.TrimSpace(urlBase) == "" {
		urlBase = "/v1/audio"
	}
	return &MockProvider{clips: clips, urlBase: strings.TrimRight(urlBase, "/")}
}

func (p *MockProvider) Name() string { return "mock" }

func (p *MockProvider) Synthesize(ctx context.Context, req Request) (Clip, error) {
	if err := ctx.Err(); err != nil {
		return Clip{}, err
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(req.Text))
	freq := 220 + float64(h.Sum32()%440)
	durationMS := 200 + 40*utf8.RuneCountInString(req.Text)
	if durationMS > 4000 {
		durationMS = 4000
	}

	wav, err := audio.EncodeWAVPCM16LE(audio.TonePCM16(freq, durationMS, audio.DefaultSampleRate), audio.DefaultSampleRate)
	if err != nil {
		return Clip{}, fmt.Errorf("encode mock clip: %w", err)
	}
	stored := p.clips.Put("audio/wav", wav)
	return Clip{
		AudioURL: p.urlBase + "/" + stored.ID,
		Provider: p.Name(),
		VoiceID:  req.VoiceID,
	}, nil
}
