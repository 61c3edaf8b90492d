package audio

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dgnsrekt/kikitori/internal/speech"
)

// SpeechClip speaks text with a voice. Synthesis happens on the first Play
// and the result is kept for later plays. The lock is never held while
// synthesizing, so Pause and IsPlaying answer immediately.
type SpeechClip struct {
	ctx   context.Context
	out   Output
	voice speech.Voice
	text  string

	mu     sync.Mutex
	clip   *Clip
	volume float64
	cancel context.CancelFunc // pending synthesis
	gen    uint64
}

// NewSpeechClip returns an unsynthesized clip. ctx bounds synthesis.
func NewSpeechClip(ctx context.Context, out Output, voice speech.Voice, text string) *SpeechClip {
	return &SpeechClip{ctx: ctx, out: out, voice: voice, text: text, volume: 1}
}

// Play implements Playable. A Pause during synthesis cancels it and Play
// returns the cancellation error without starting playback.
func (s *SpeechClip) Play() error {
	s.mu.Lock()
	if s.clip != nil {
		clip := s.clip
		s.mu.Unlock()
		clip.SetCurrentTime(0)
		return clip.Play()
	}
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(s.ctx)
	s.cancel = cancel
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	buf, err := s.voice.Synthesize(ctx, s.text)
	var clip *Clip
	if err == nil {
		clip, err = clipFromBuffer(s.out, buf)
	}
	cancel()

	s.mu.Lock()
	current := s.gen == gen
	if current {
		s.cancel = nil
	}
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("synthesize with %s: %w", s.voice.ID(), err)
	}
	if s.clip == nil {
		clip.SetVolume(s.volume)
		s.clip = clip
	}
	clip = s.clip
	s.mu.Unlock()

	if !current {
		return fmt.Errorf("synthesize with %s: %w", s.voice.ID(), context.Canceled)
	}
	clip.SetCurrentTime(0)
	return clip.Play()
}

// Pause implements Playable. It also cancels a pending synthesis.
func (s *SpeechClip) Pause() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
		s.gen++
	}
	clip := s.clip
	s.mu.Unlock()
	if clip != nil {
		clip.Pause()
	}
}

// SetCurrentTime is a no-op; speech always starts from the beginning.
func (s *SpeechClip) SetCurrentTime(time.Duration) {}

// SetVolume implements Playable.
func (s *SpeechClip) SetVolume(volume float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.volume = clampVolume(volume)
	if s.clip != nil {
		s.clip.SetVolume(s.volume)
	}
}

// Voice returns the voice identifier.
func (s *SpeechClip) Voice() string { return s.voice.ID() }

// Text returns the text that will be spoken.
func (s *SpeechClip) Text() string { return s.text }

// IsPlaying reports whether synthesis is pending or the synthesized audio
// is playing.
func (s *SpeechClip) IsPlaying() bool {
	s.mu.Lock()
	pending := s.cancel != nil
	clip := s.clip
	s.mu.Unlock()
	return pending || (clip != nil && clip.IsPlaying())
}
