package audio

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/kikitori/internal/codec"
	"github.com/dgnsrekt/kikitori/internal/sources"
	"github.com/dgnsrekt/kikitori/internal/speech"
)

// ErrInvalidVoice is returned for text-to-speech infos naming a voice the
// speech registry does not know.
var ErrInvalidVoice = errors.New("invalid voice")

// Fetcher downloads the body behind an audio URL and reports its content
// type.
type Fetcher interface {
	FetchAudio(ctx context.Context, url string) (data []byte, contentType string, err error)
}

// Factory creates playables from infos.
type Factory struct {
	fetcher Fetcher
	voices  *speech.Registry
	out     Output
	logger  *log.Logger
}

// NewFactory returns a factory playing on out.
func NewFactory(fetcher Fetcher, voices *speech.Registry, out Output, logger *log.Logger) *Factory {
	if logger == nil {
		logger = log.Default()
	}
	return &Factory{
		fetcher: fetcher,
		voices:  voices,
		out:     out,
		logger:  logger.WithPrefix("audio"),
	}
}

// Output returns the device clips are created on.
func (f *Factory) Output() Output {
	return f.out
}

// Create resolves info into a playable. URL infos are downloaded and decoded
// immediately; speech infos defer synthesis to the first Play.
func (f *Factory) Create(ctx context.Context, info sources.Info, source sources.AudioSource) (Playable, error) {
	switch info := info.(type) {
	case sources.URLInfo:
		return f.createFromURL(ctx, info.URL, source)
	case sources.TTSInfo:
		return f.createFromSpeech(ctx, info.Text, info.Voice)
	default:
		return nil, fmt.Errorf("unsupported info %T", info)
	}
}

func (f *Factory) createFromURL(ctx context.Context, url string, source sources.AudioSource) (Playable, error) {
	data, contentType, err := f.fetcher.FetchAudio(ctx, url)
	if err != nil {
		return nil, err
	}
	if err := sources.ValidateAudio(source.Type, data); err != nil {
		return nil, err
	}

	format := codec.Detect(contentType, url, data)
	buf, err := codec.Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", url, err)
	}
	clip, err := clipFromBuffer(f.out, buf)
	if err != nil {
		return nil, err
	}
	if err := sources.ValidateDuration(source.Type, clip.Duration()); err != nil {
		return nil, err
	}
	f.logger.Debug("decoded", "url", url, "format", format, "duration", clip.Duration())
	return clip, nil
}

func (f *Factory) createFromSpeech(ctx context.Context, text, voiceID string) (Playable, error) {
	voice, ok := f.voices.Lookup(voiceID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidVoice, voiceID)
	}
	return NewSpeechClip(context.WithoutCancel(ctx), f.out, voice, text), nil
}
