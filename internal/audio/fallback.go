package audio

import (
	"fmt"
	"strings"
	"time"

	"github.com/dgnsrekt/kikitori/internal/codec"
)

// FallbackSound is played when no source produced audio.
type FallbackSound string

const (
	FallbackNone  FallbackSound = "none"
	FallbackClick FallbackSound = "click"
	FallbackBloop FallbackSound = "bloop"
)

// ParseFallbackSound validates a configured fallback sound name.
func ParseFallbackSound(s string) (FallbackSound, error) {
	switch f := FallbackSound(strings.ToLower(strings.TrimSpace(s))); f {
	case FallbackNone, FallbackClick, FallbackBloop:
		return f, nil
	case "":
		return FallbackNone, nil
	default:
		return "", fmt.Errorf("unknown fallback sound %q", s)
	}
}

// NewFallback returns the clip for kind, or nil for FallbackNone.
func NewFallback(out Output, kind FallbackSound) Playable {
	rate := out.Format().SampleRate
	var clip *Clip
	var err error
	switch kind {
	case FallbackClick:
		clip, err = clipFromBuffer(out, codec.Tone(1800, 1200, 25*time.Millisecond, rate, 0.6))
	case FallbackBloop:
		clip, err = clipFromBuffer(out, codec.Tone(660, 330, 150*time.Millisecond, rate, 0.5))
	default:
		return nil
	}
	if err != nil {
		return nil
	}
	return clip
}
