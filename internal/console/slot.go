package console

import "sync"

// Result is one successful synthesis: an opaque locator the player understands.
type Result struct {
	AudioRef string `json:"audio_ref"`
}

// AudioSlot holds at most one Result. Each Set overwrites the previous one and
// nothing ever clears it.
type AudioSlot struct {
	mu     sync.RWMutex
	result Result
	set    bool
}

func NewAudioSlot() *AudioSlot { return &AudioSlot{} }

func (s *AudioSlot) Set(r Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.result = r
	s.set = true
}

func (s *AudioSlot) Get() (Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.result, s.set
}

func (s *AudioSlot) IsEmpty() bool {
	_, ok := s.Get()
	return !ok
}
