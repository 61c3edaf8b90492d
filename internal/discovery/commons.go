package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/dgnsrekt/kikitori/internal/sources"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

type commonsSearchResponse struct {
	Query struct {
		Search []struct {
			Title string `json:"title"`
		} `json:"search"`
	} `json:"query"`
}

type commonsFileResponse struct {
	Query struct {
		Pages map[string]struct {
			ImageInfo []struct {
				URL  string `json:"url"`
				User string `json:"user"`
			} `json:"imageinfo"`
		} `json:"pages"`
	} `json:"query"`
}

// commonsFilter validates file titles and names the accepted ones.
type commonsFilter struct {
	valid   func(title, user string) bool
	display func(title, user string) string
}

func (p *Provider) linguaLibre(ctx context.Context, req request) ([]sources.Info, error) {
	iso3 := req.lang.ISO639_3
	search := fmt.Sprintf(`intitle:/-%s.wav/i incategory:"Lingua_Libre_pronunciation-%s"`, req.term, iso3)

	filter := commonsFilter{
		valid: func(title, user string) bool {
			re, err := regexp.Compile(`(?i)^File:LL-Q\d+\s+\(` + regexp.QuoteMeta(iso3) + `\)-` +
				regexp.QuoteMeta(user) + `-` + regexp.QuoteMeta(req.term) + `\.wav$`)
			return err == nil && re.MatchString(title)
		},
		display: func(_, user string) string { return user },
	}
	return p.commons(ctx, search, filter)
}

func (p *Provider) wiktionary(ctx context.Context, req request) ([]sources.Info, error) {
	iso := req.lang.ISO
	search := fmt.Sprintf(`intitle:/%s(-[a-zA-Z]{2})?-%s[0123456789]*.ogg/i`, iso, req.term)

	valid := regexp.MustCompile(`(?i)^File:` + regexp.QuoteMeta(iso) + `(-\w\w)?-` + regexp.QuoteMeta(req.term) + `\d*\.ogg$`)
	regional := regexp.MustCompile(`(?i)^File:` + regexp.QuoteMeta(iso) + `(-\w\w)-` + regexp.QuoteMeta(req.term))

	filter := commonsFilter{
		valid: func(title, _ string) bool { return valid.MatchString(title) },
		display: func(title, user string) string {
			m := regional.FindStringSubmatch(title)
			if m == nil {
				return user
			}
			return fmt.Sprintf("(%s) %s", regionName(strings.ToUpper(m[1][1:])), user)
		},
	}
	return p.commons(ctx, search, filter)
}

// regionName returns the English name of a two letter region code, or the
// code itself when it is unknown.
func regionName(code string) string {
	region, err := language.ParseRegion(code)
	if err != nil {
		return code
	}
	if name := display.English.Regions().Name(region); name != "" {
		return name
	}
	return code
}

// commons searches the file namespace of Wikimedia Commons, then fetches
// file info for every hit concurrently. Results keep search order.
func (p *Provider) commons(ctx context.Context, search string, filter commonsFilter) ([]sources.Info, error) {
	params := url.Values{
		"action":      {"query"},
		"format":      {"json"},
		"list":        {"search"},
		"srsearch":    {search},
		"srnamespace": {"6"},
		"origin":      {"*"},
	}
	body, err := p.client.Get(ctx, p.endpoints.Commons+"?"+params.Encode())
	if err != nil {
		return nil, err
	}
	var lookup commonsSearchResponse
	if err := json.Unmarshal(body.Data, &lookup); err != nil {
		return nil, fmt.Errorf("decode commons search: %w", err)
	}

	hits := lookup.Query.Search
	results := make([][]sources.Info, len(hits))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, hit := range hits {
		g.Go(func() error {
			infos, err := p.commonsFile(gctx, hit.Title, filter)
			if err != nil {
				return err
			}
			results[i] = infos
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var infos []sources.Info
	for _, r := range results {
		infos = append(infos, r...)
	}
	return infos, nil
}

func (p *Provider) commonsFile(ctx context.Context, title string, filter commonsFilter) ([]sources.Info, error) {
	params := url.Values{
		"action": {"query"},
		"format": {"json"},
		"titles": {title},
		"prop":   {"imageinfo"},
		"iiprop": {"user|url"},
		"origin": {"*"},
	}
	body, err := p.client.Get(ctx, p.endpoints.Commons+"?"+params.Encode())
	if err != nil {
		return nil, err
	}
	var file commonsFileResponse
	if err := json.Unmarshal(body.Data, &file); err != nil {
		return nil, fmt.Errorf("decode commons file info: %w", err)
	}

	var infos []sources.Info
	for _, page := range file.Query.Pages {
		if len(page.ImageInfo) == 0 {
			continue
		}
		info := page.ImageInfo[0]
		if filter.valid(title, info.User) {
			infos = append(infos, sources.URLInfo{URL: info.URL, Name: filter.display(title, info.User)})
		}
	}
	return infos, nil
}
