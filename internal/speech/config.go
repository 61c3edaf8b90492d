package speech

import "github.com/charmbracelet/log"

// Config configures every voice family.
type Config struct {
	GTTS  GTTSConfig
	Piper PiperConfig
}

// Load builds a registry from cfg. Piper models that fail to load are
// logged and skipped.
func Load(cfg Config, run Runner, logger *log.Logger) *Registry {
	if logger == nil {
		logger = log.Default()
	}
	r := NewRegistry()
	for _, v := range NewGTTSVoices(cfg.GTTS, run, logger) {
		r.Register(v)
	}
	for _, m := range cfg.Piper.Models {
		v, err := NewPiperVoice(cfg.Piper, m, run, logger)
		if err != nil {
			logger.Warn("skipping piper voice", "model", m.Model, "err", err)
			continue
		}
		r.Register(v)
	}
	return r
}
