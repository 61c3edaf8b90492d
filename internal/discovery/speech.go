package discovery

import (
	"context"

	"github.com/dgnsrekt/kikitori/internal/sources"
)

func (p *Provider) textToSpeech(_ context.Context, req request) ([]sources.Info, error) {
	return speechInfo(req.source.Voice, req.term)
}

func (p *Provider) textToSpeechReading(_ context.Context, req request) ([]sources.Info, error) {
	return speechInfo(req.source.Voice, req.reading)
}

func speechInfo(voice, text string) ([]sources.Info, error) {
	if voice == "" {
		return nil, ErrMissingVoice
	}
	return []sources.Info{sources.TTSInfo{Text: text, Voice: voice}}, nil
}
