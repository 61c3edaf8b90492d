package discovery

import (
	"context"
	"net/url"

	"github.com/dgnsrekt/kikitori/internal/sources"
)

func (p *Provider) jisho(ctx context.Context, req request) ([]sources.Info, error) {
	body, err := p.client.Get(ctx, p.endpoints.Jisho+url.PathEscape(req.term))
	if err != nil {
		return nil, err
	}
	doc, err := parseHTML(body.Data)
	if err != nil {
		return nil, err
	}

	audio := elementByID(doc, "audio_"+req.term+":"+req.reading)
	if audio == nil {
		return nil, ErrAudioNotFound
	}
	src, ok := audioSourceURL(audio)
	if !ok {
		return nil, ErrAudioNotFound
	}
	resolved, err := resolveURL(src, body.URL)
	if err != nil {
		return nil, err
	}
	return []sources.Info{sources.URLInfo{URL: resolved}}, nil
}
