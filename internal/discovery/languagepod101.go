package discovery

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/dgnsrekt/kikitori/internal/sources"
	"golang.org/x/net/html"
)

var languagePod101Sites = map[string]string{
	"Afrikaans":  "pod",
	"Arabic":     "pod",
	"Bulgarian":  "pod",
	"Dutch":      "pod",
	"Filipino":   "pod",
	"Finnish":    "pod",
	"French":     "pod",
	"German":     "pod",
	"Greek":      "pod",
	"Hebrew":     "pod",
	"Hindi":      "pod",
	"Hungarian":  "pod",
	"Indonesian": "pod",
	"Italian":    "pod",
	"Japanese":   "pod",
	"Persian":    "pod",
	"Polish":     "pod",
	"Portuguese": "pod",
	"Romanian":   "pod",
	"Russian":    "pod",
	"Spanish":    "pod",
	"Swahili":    "pod",
	"Swedish":    "pod",
	"Thai":       "pod",
	"Urdu":       "pod",
	"Vietnamese": "pod",
	"Cantonese":  "class",
	"Chinese":    "class",
	"Czech":      "class",
	"Danish":     "class",
	"English":    "class",
	"Korean":     "class",
	"Norwegian":  "class",
	"Turkish":    "class",
}

func (p *Provider) languagePod101URL(language string) (string, error) {
	podOrClass, ok := languagePod101Sites[language]
	if !ok {
		return "", fmt.Errorf("%w for LanguagePod101: %q", ErrUnsupportedLanguage, language)
	}
	r := strings.NewReplacer("{language}", strings.ToLower(language), "{podOrClass}", podOrClass)
	return r.Replace(p.endpoints.LanguagePod101), nil
}

func (p *Provider) languagePod101(ctx context.Context, req request) ([]sources.Info, error) {
	language := req.lang.Name
	fetchURL, err := p.languagePod101URL(language)
	if err != nil {
		return nil, err
	}

	form := url.Values{
		"post":         {"dictionary_reference"},
		"match_type":   {"exact"},
		"search_query": {req.term},
		"vulgar":       {"true"},
	}
	body, err := p.client.PostForm(ctx, fetchURL, form)
	if err != nil {
		return nil, err
	}
	doc, err := parseHTML(body.Data)
	if err != nil {
		return nil, err
	}

	var infos []sources.Info
	seen := make(map[string]struct{})
	for _, row := range elementsByClass(doc, "dc-result-row") {
		src, ok := audioSourceURL(row)
		if !ok {
			continue
		}
		if !validLanguagePod101Row(language, row, req.term, req.reading) {
			continue
		}
		resolved, err := resolveURL(src, body.URL)
		if err != nil {
			continue
		}
		if _, dup := seen[resolved]; dup {
			continue
		}
		seen[resolved] = struct{}{}
		infos = append(infos, sources.URLInfo{URL: resolved})
	}
	return infos, nil
}

// validLanguagePod101Row checks that a result row is for the headword.
// Japanese rows are matched on reading, others on the vocabulary text.
func validLanguagePod101Row(language string, row *html.Node, term, reading string) bool {
	if language == "Japanese" {
		kana := elementsByClass(row, "dc-vocab_kana")
		if len(kana) == 0 {
			return false
		}
		htmlReading := textContent(kana[0])
		if htmlReading == "" {
			return false
		}
		return reading == term || reading == htmlReading
	}

	vocab := elementsByClass(row, "dc-vocab")
	if len(vocab) == 0 {
		return false
	}
	return textContent(vocab[0]) == term
}
