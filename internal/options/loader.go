package options

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/kikitori/internal/audio"
	"github.com/dgnsrekt/kikitori/internal/sources"
	"github.com/dgnsrekt/kikitori/internal/speech"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Load reads options from v, starting from the defaults.
func Load(v *viper.Viper) (Options, error) {
	opts := Default()

	if v.IsSet("language") {
		opts.Language = v.GetString("language")
	}

	if v.IsSet("audio.enabled") {
		opts.Audio.Enabled = v.GetBool("audio.enabled")
	}
	if v.IsSet("audio.auto_play") {
		opts.Audio.AutoPlay = v.GetBool("audio.auto_play")
	}
	if v.IsSet("audio.auto_play_delay") {
		d, err := duration(v, "audio.auto_play_delay")
		if err != nil {
			return opts, err
		}
		opts.Audio.AutoPlayDelay = d
	}
	if v.IsSet("audio.fallback_sound") {
		opts.Audio.FallbackSound = audio.FallbackSound(v.GetString("audio.fallback_sound"))
	}
	if v.IsSet("audio.volume") {
		opts.Audio.Volume = v.GetFloat64("audio.volume")
	}
	if v.IsSet("audio.enable_default_sources") {
		opts.Audio.EnableDefaultSources = v.GetBool("audio.enable_default_sources")
	}
	if v.IsSet("audio.cache_failures") {
		opts.Audio.CacheFailures = v.GetBool("audio.cache_failures")
	}
	if v.IsSet("audio.idle_timeout") {
		d, err := duration(v, "audio.idle_timeout")
		if err != nil {
			return opts, err
		}
		opts.Audio.IdleTimeout = d
	}
	if v.IsSet("audio.sources") {
		var configured []sources.SourceConfig
		if err := v.UnmarshalKey("audio.sources", &configured); err != nil {
			return opts, fmt.Errorf("audio.sources: %w", err)
		}
		opts.Audio.Sources = configured
	}

	speechCfg, err := loadSpeech(v, opts.Speech)
	if err != nil {
		return opts, err
	}
	opts.Speech = speechCfg

	if v.IsSet("http.requests_per_minute") {
		opts.HTTP.RequestsPerMinute = v.GetInt("http.requests_per_minute")
	}
	if v.IsSet("http.body_cache_size") {
		opts.HTTP.BodyCacheSize = int64(v.GetSizeInBytes("http.body_cache_size"))
	}
	if v.IsSet("http.timeout") {
		d, err := duration(v, "http.timeout")
		if err != nil {
			return opts, err
		}
		opts.HTTP.Timeout = d
	}

	if err := opts.Validate(); err != nil {
		return opts, fmt.Errorf("invalid configuration: %w", err)
	}
	return opts, nil
}

func loadSpeech(v *viper.Viper, cfg speech.Config) (speech.Config, error) {
	if v.IsSet("speech.gtts.command") {
		cfg.GTTS.Command = v.GetString("speech.gtts.command")
	}
	if v.IsSet("speech.gtts.languages") {
		cfg.GTTS.Languages = v.GetStringSlice("speech.gtts.languages")
	}
	if v.IsSet("speech.gtts.slow") {
		cfg.GTTS.Slow = v.GetBool("speech.gtts.slow")
	}
	if v.IsSet("speech.gtts.requests_per_minute") {
		cfg.GTTS.RequestsPerMinute = v.GetInt("speech.gtts.requests_per_minute")
	}
	if v.IsSet("speech.gtts.timeout") {
		d, err := duration(v, "speech.gtts.timeout")
		if err != nil {
			return cfg, err
		}
		cfg.GTTS.Timeout = d
	}

	if v.IsSet("speech.piper.command") {
		cfg.Piper.Command = v.GetString("speech.piper.command")
	}
	if v.IsSet("speech.piper.timeout") {
		d, err := duration(v, "speech.piper.timeout")
		if err != nil {
			return cfg, err
		}
		cfg.Piper.Timeout = d
	}
	if v.IsSet("speech.piper.models") {
		var models []speech.PiperModel
		if err := v.UnmarshalKey("speech.piper.models", &models); err != nil {
			return cfg, fmt.Errorf("speech.piper.models: %w", err)
		}
		for i := range models {
			models[i].Model = expandPath(models[i].Model)
			models[i].Config = expandPath(models[i].Config)
		}
		cfg.Piper.Models = models
	}
	return cfg, nil
}

// duration accepts both Go duration strings and bare millisecond counts.
func duration(v *viper.Viper, key string) (time.Duration, error) {
	switch raw := v.Get(key).(type) {
	case int:
		return time.Duration(raw) * time.Millisecond, nil
	case int64:
		return time.Duration(raw) * time.Millisecond, nil
	case float64:
		return time.Duration(raw * float64(time.Millisecond)), nil
	case string:
		if ms, err := strconv.Atoi(raw); err == nil {
			return time.Duration(ms) * time.Millisecond, nil
		}
		d, err := time.ParseDuration(raw)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", key, err)
		}
		return d, nil
	default:
		return 0, fmt.Errorf("%s: unsupported duration %v", key, raw)
	}
}

func expandPath(path string) string {
	if path == "" {
		return path
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		log.Debug("could not expand path", "path", path, "err", err)
		return path
	}
	return expanded
}

// SetDefaults registers the default options with v so they show up in
// v.AllSettings.
func SetDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("language", d.Language)

	v.SetDefault("audio.enabled", d.Audio.Enabled)
	v.SetDefault("audio.auto_play", d.Audio.AutoPlay)
	v.SetDefault("audio.auto_play_delay", d.Audio.AutoPlayDelay.String())
	v.SetDefault("audio.fallback_sound", string(d.Audio.FallbackSound))
	v.SetDefault("audio.volume", d.Audio.Volume)
	v.SetDefault("audio.enable_default_sources", d.Audio.EnableDefaultSources)
	v.SetDefault("audio.cache_failures", d.Audio.CacheFailures)
	v.SetDefault("audio.idle_timeout", d.Audio.IdleTimeout.String())

	v.SetDefault("speech.gtts.command", d.Speech.GTTS.Command)
	v.SetDefault("speech.gtts.requests_per_minute", d.Speech.GTTS.RequestsPerMinute)
	v.SetDefault("speech.gtts.timeout", d.Speech.GTTS.Timeout.String())
	v.SetDefault("speech.piper.command", d.Speech.Piper.Command)
	v.SetDefault("speech.piper.timeout", d.Speech.Piper.Timeout.String())

	v.SetDefault("http.requests_per_minute", d.HTTP.RequestsPerMinute)
	v.SetDefault("http.body_cache_size", d.HTTP.BodyCacheSize)
	v.SetDefault("http.timeout", d.HTTP.Timeout.String())
}
