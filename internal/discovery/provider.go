package discovery

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/kikitori/internal/sources"
)

// Endpoints are the remote services handlers talk to. Tests point them at
// local servers.
type Endpoints struct {
	Jpod101 string
	// LanguagePod101 is a template; {language} and {podOrClass} are
	// substituted.
	LanguagePod101 string
	Jisho          string
	Commons        string
}

// DefaultEndpoints returns the production endpoints.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Jpod101:        "https://assets.languagepod101.com/dictionary/japanese/audiomp3.php",
		LanguagePod101: "https://www.{language}{podOrClass}101.com/learningcenter/reference/dictionary_post",
		Jisho:          "https://jisho.org/search/",
		Commons:        "https://commons.wikimedia.org/w/api.php",
	}
}

type request struct {
	source  sources.AudioSource
	term    string
	reading string
	lang    sources.LanguageSummary
}

type handler func(ctx context.Context, req request) ([]sources.Info, error)

// Provider discovers audio infos for every source type.
type Provider struct {
	client    *Client
	endpoints Endpoints
	handlers  map[sources.SourceType]handler
	log       *log.Logger
}

// NewProvider creates a Provider using the production endpoints.
func NewProvider(client *Client, logger *log.Logger) *Provider {
	return NewProviderWithEndpoints(client, DefaultEndpoints(), logger)
}

// NewProviderWithEndpoints creates a Provider with custom endpoints (for
// testing).
func NewProviderWithEndpoints(client *Client, endpoints Endpoints, logger *log.Logger) *Provider {
	if logger == nil {
		logger = log.Default()
	}
	p := &Provider{
		client:    client,
		endpoints: endpoints,
		log:       logger.WithPrefix("discovery"),
	}
	p.handlers = map[sources.SourceType]handler{
		sources.TypeJpod101:             p.jpod101,
		sources.TypeLanguagePod101:      p.languagePod101,
		sources.TypeJisho:               p.jisho,
		sources.TypeLinguaLibre:         p.linguaLibre,
		sources.TypeWiktionary:          p.wiktionary,
		sources.TypeTextToSpeech:        p.textToSpeech,
		sources.TypeTextToSpeechReading: p.textToSpeechReading,
		sources.TypeCustom:              p.custom,
		sources.TypeCustomJSON:          p.customJSON,
	}
	return p
}

// Client returns the shared HTTP client.
func (p *Provider) Client() *Client {
	return p.client
}

// GetInfoList returns the candidates source has for (term, reading).
// Transient failures such as network errors, bad statuses and unparsable
// pages yield nil, nil. Configuration errors and invalid custom audio lists
// are returned.
func (p *Provider) GetInfoList(ctx context.Context, source sources.AudioSource, term, reading string, lang sources.LanguageSummary) ([]sources.Info, error) {
	h, ok := p.handlers[source.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSourceType, source.Type)
	}

	infos, err := h(ctx, request{source: source, term: term, reading: reading, lang: lang})
	if err != nil {
		if isConfigError(err) || ctx.Err() != nil {
			return nil, err
		}
		p.log.Debug("no audio", "source", source.Type, "term", term, "reading", reading, "err", err)
		return nil, nil
	}
	p.log.Debug("infos", "source", source.Type, "term", term, "reading", reading, "count", len(infos))
	return infos, nil
}

// GetTermAudioInfoList is GetInfoList with every error swallowed, for menu
// listings and the export path.
func (p *Provider) GetTermAudioInfoList(ctx context.Context, source sources.AudioSource, term, reading string, lang sources.LanguageSummary) []sources.Info {
	infos, err := p.GetInfoList(ctx, source, term, reading, lang)
	if err != nil {
		p.log.Debug("info list failed", "source", source.Type, "err", err)
		return nil
	}
	return infos
}
