package main

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/kikitori/internal/audio"
	"github.com/dgnsrekt/kikitori/internal/discovery"
	"github.com/dgnsrekt/kikitori/internal/options"
	"github.com/dgnsrekt/kikitori/internal/playback"
	"github.com/dgnsrekt/kikitori/internal/speech"
)

// app wires the discovery, speech, audio and playback layers together.
type app struct {
	client   *discovery.Client
	provider *discovery.Provider
	voices   *speech.Registry
	ctrl     *playback.Controller
}

func newApp(opts options.Options) (*app, error) {
	logger := log.Default()

	cfg := discovery.DefaultClientConfig()
	cfg.Timeout = opts.HTTP.Timeout
	cfg.RequestsPerMinute = opts.HTTP.RequestsPerMinute
	cfg.BodyCacheSize = opts.HTTP.BodyCacheSize
	cfg.UserAgent = "kikitori/" + Version
	client := discovery.NewClient(cfg, logger)
	provider := discovery.NewProvider(client, logger)

	voices := speech.Load(opts.SpeechConfig(), speech.ExecRunner, logger)

	device, err := audio.NewDevice(audio.DefaultDeviceConfig())
	if err != nil {
		return nil, fmt.Errorf("unable to open audio device: %w", err)
	}
	factory := audio.NewFactory(client, voices, device, logger)

	ctrl := playback.New(playback.Config{
		Provider: provider,
		Creator:  factory,
		Output:   device,
		Logger:   logger,
	}, opts)

	log.Debug("app ready", "language", opts.Language, "sources", len(ctrl.Sources()), "voices", len(voices.Voices()))
	return &app{
		client:   client,
		provider: provider,
		voices:   voices,
		ctrl:     ctrl,
	}, nil
}
