package discovery

import (
	"context"
	"net/url"

	"github.com/dgnsrekt/kikitori/internal/sources"
)

// jpod101 needs no request: the audio URL is derived from the headword.
// Kana-only headwords are looked up by reading alone.
func (p *Provider) jpod101(_ context.Context, req request) ([]sources.Info, error) {
	term, reading := req.term, req.reading
	if reading == term && isEntirelyKana(term) {
		term = ""
	}

	params := url.Values{}
	if term != "" {
		params.Set("kanji", term)
	}
	if reading != "" {
		params.Set("kana", reading)
	}
	return []sources.Info{sources.URLInfo{URL: p.endpoints.Jpod101 + "?" + params.Encode()}}, nil
}
