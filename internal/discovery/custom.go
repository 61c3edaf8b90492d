package discovery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/dgnsrekt/kikitori/internal/sources"
)

var placeholderRe = regexp.MustCompile(`\{([^}]*)\}`)

// expandCustomURL substitutes {term}, {reading} and {language}. Unknown
// placeholders are left untouched.
func expandCustomURL(template, term, reading string, lang sources.LanguageSummary) string {
	values := map[string]string{
		"term":     term,
		"reading":  reading,
		"language": lang.ISO,
	}
	return placeholderRe.ReplaceAllStringFunc(template, func(m string) string {
		key := m[1 : len(m)-1]
		if v, ok := values[key]; ok {
			return v
		}
		return m
	})
}

func (p *Provider) custom(_ context.Context, req request) ([]sources.Info, error) {
	if req.source.URL == "" {
		return nil, ErrMissingURL
	}
	return []sources.Info{sources.URLInfo{URL: expandCustomURL(req.source.URL, req.term, req.reading, req.lang)}}, nil
}

// customAudioList is the document a custom-json source returns.
type customAudioList struct {
	Type         string `json:"type"`
	AudioSources []struct {
		URL  *string `json:"url"`
		Name *string `json:"name"`
	} `json:"audioSources"`
}

func (p *Provider) customJSON(ctx context.Context, req request) ([]sources.Info, error) {
	if req.source.URL == "" {
		return nil, ErrMissingURL
	}
	body, err := p.client.Get(ctx, expandCustomURL(req.source.URL, req.term, req.reading, req.lang))
	if err != nil {
		return nil, err
	}
	list, err := parseCustomAudioList(body.Data)
	if err != nil {
		return nil, err
	}

	infos := make([]sources.Info, 0, len(list.AudioSources))
	for _, s := range list.AudioSources {
		info := sources.URLInfo{URL: *s.URL}
		if s.Name != nil {
			info.Name = *s.Name
		}
		infos = append(infos, info)
	}
	return infos, nil
}

func parseCustomAudioList(data []byte) (*customAudioList, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var list customAudioList
	if err := dec.Decode(&list); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAudioList, err)
	}
	if list.Type != "audioSourceList" {
		return nil, fmt.Errorf("%w: type must be \"audioSourceList\", got %q", ErrInvalidAudioList, list.Type)
	}
	if list.AudioSources == nil {
		return nil, fmt.Errorf("%w: missing audioSources", ErrInvalidAudioList)
	}
	for i, s := range list.AudioSources {
		if s.URL == nil {
			return nil, fmt.Errorf("%w: audioSources[%d] has no url", ErrInvalidAudioList, i)
		}
	}
	return &list, nil
}
