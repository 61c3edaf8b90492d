package options

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/dgnsrekt/kikitori/internal/audio"
	"github.com/dgnsrekt/kikitori/internal/sources"
	"github.com/dgnsrekt/kikitori/internal/speech"
)

// Options is the complete user configuration.
type Options struct {
	// Language is the ISO 639-1 code of the dictionary language.
	Language string
	Audio    AudioOptions
	Speech   speech.Config
	HTTP     HTTPOptions
}

// AudioOptions configures lookup and playback.
type AudioOptions struct {
	Enabled       bool
	AutoPlay      bool
	AutoPlayDelay time.Duration
	FallbackSound audio.FallbackSound
	// Volume is a percentage; values outside 0-100 are clamped on use.
	Volume               float64
	EnableDefaultSources bool
	CacheFailures        bool
	// IdleTimeout aborts stalled downloads, 0 disables it.
	IdleTimeout time.Duration
	Sources     []sources.SourceConfig
}

// HTTPOptions configures the shared HTTP client.
type HTTPOptions struct {
	RequestsPerMinute int
	BodyCacheSize     int64
	Timeout           time.Duration
}

// Default returns the default options.
func Default() Options {
	return Options{
		Language: "ja",
		Audio: AudioOptions{
			Enabled:              true,
			AutoPlay:             false,
			AutoPlayDelay:        400 * time.Millisecond,
			FallbackSound:        audio.FallbackClick,
			Volume:               100,
			EnableDefaultSources: true,
			CacheFailures:        true,
		},
		Speech: speech.Config{
			GTTS: speech.GTTSConfig{
				Command:           "gtts-cli",
				RequestsPerMinute: 50,
				Timeout:           30 * time.Second,
			},
			Piper: speech.PiperConfig{
				Command: "piper",
				Timeout: 30 * time.Second,
			},
		},
		HTTP: HTTPOptions{
			RequestsPerMinute: 120,
			BodyCacheSize:     32 * 1024 * 1024,
			Timeout:           15 * time.Second,
		},
	}
}

// SpeechConfig returns the speech settings with the Google Translate
// languages defaulting to the dictionary language.
func (o Options) SpeechConfig() speech.Config {
	cfg := o.Speech
	if len(cfg.GTTS.Languages) == 0 && o.Language != "" {
		cfg.GTTS.Languages = []string{o.Language}
	}
	return cfg
}

// PlaybackVolume maps the configured percentage to a 0-1 gain. Non-finite
// values play at full volume.
func (a AudioOptions) PlaybackVolume() float64 {
	if math.IsNaN(a.Volume) || math.IsInf(a.Volume, 0) {
		return 1
	}
	return max(0, min(1, a.Volume/100))
}

// AutoPlayEnabled reports whether content updates should start playback.
func (a AudioOptions) AutoPlayEnabled() bool {
	return a.Enabled && a.AutoPlay
}

// Validate checks the options and normalizes source types.
func (o *Options) Validate() error {
	if o.Language == "" {
		return errors.New("language cannot be empty")
	}
	if o.Audio.AutoPlayDelay < 0 {
		return fmt.Errorf("auto play delay cannot be negative, got %s", o.Audio.AutoPlayDelay)
	}
	if o.Audio.IdleTimeout < 0 {
		return fmt.Errorf("idle timeout cannot be negative, got %s", o.Audio.IdleTimeout)
	}
	fallback, err := audio.ParseFallbackSound(string(o.Audio.FallbackSound))
	if err != nil {
		return err
	}
	o.Audio.FallbackSound = fallback
	for i, s := range o.Audio.Sources {
		t, err := sources.ParseSourceType(string(s.Type))
		if err != nil {
			return fmt.Errorf("audio source %d: %w", i+1, err)
		}
		o.Audio.Sources[i].Type = t
	}
	if o.HTTP.RequestsPerMinute < 0 {
		return fmt.Errorf("requests per minute cannot be negative, got %d", o.HTTP.RequestsPerMinute)
	}
	if o.HTTP.BodyCacheSize < 0 {
		return fmt.Errorf("body cache size cannot be negative, got %d", o.HTTP.BodyCacheSize)
	}
	return nil
}
