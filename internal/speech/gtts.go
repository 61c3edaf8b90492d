package speech

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/kikitori/internal/codec"
	"github.com/go-audio/audio"
	"golang.org/x/time/rate"
)

// GTTSConfig configures gTTS voices.
type GTTSConfig struct {
	// Command is the gtts-cli binary, defaults to "gtts-cli".
	Command string
	// Languages lists the ISO codes to register a voice for.
	Languages []string
	Slow      bool
	// RequestsPerMinute throttles calls so Google does not block us,
	// defaults to 50.
	RequestsPerMinute int
	Timeout           time.Duration
}

// GTTSVoice speaks through Google Translate via gtts-cli. The mp3 output is
// decoded in-process.
type GTTSVoice struct {
	command string
	lang    string
	slow    bool
	timeout time.Duration
	limiter *rate.Limiter
	run     Runner
	logger  *log.Logger
}

// NewGTTSVoices returns one voice per configured language. All voices share
// one rate limiter.
func NewGTTSVoices(cfg GTTSConfig, run Runner, logger *log.Logger) []*GTTSVoice {
	if cfg.Command == "" {
		cfg.Command = "gtts-cli"
	}
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 50
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if run == nil {
		run = ExecRunner
	}
	if logger == nil {
		logger = log.Default()
	}
	limiter := rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1)

	voices := make([]*GTTSVoice, 0, len(cfg.Languages))
	for _, lang := range cfg.Languages {
		voices = append(voices, &GTTSVoice{
			command: cfg.Command,
			lang:    lang,
			slow:    cfg.Slow,
			timeout: cfg.Timeout,
			limiter: limiter,
			run:     run,
			logger:  logger.WithPrefix("gtts"),
		})
	}
	return voices
}

func (v *GTTSVoice) ID() string   { return "gtts:" + v.lang }
func (v *GTTSVoice) Name() string { return fmt.Sprintf("Google Translate (%s)", v.lang) }
func (v *GTTSVoice) Lang() string { return v.lang }

// Synthesize runs gtts-cli and decodes its mp3 output.
func (v *GTTSVoice) Synthesize(ctx context.Context, text string) (*audio.IntBuffer, error) {
	if err := checkText(text); err != nil {
		return nil, err
	}
	if err := v.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait cancelled: %w", err)
	}

	args := []string{text, "-l", v.lang}
	if v.slow {
		args = append(args, "--slow")
	}
	args = append(args, "-o", "-")

	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	start := time.Now()
	data, err := v.run(ctx, v.command, args, nil)
	if err != nil {
		return nil, fmt.Errorf("gtts synthesis: %w", err)
	}
	v.logger.Debug("synthesized", "lang", v.lang, "bytes", len(data), "took", time.Since(start))

	buf, err := codec.Decode(data, codec.FormatMP3)
	if err != nil {
		return nil, fmt.Errorf("gtts output: %w", err)
	}
	return buf, nil
}
