package options

import (
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Watch reloads the options whenever the config file behind v changes and
// hands valid results to apply. Invalid edits are logged and ignored.
func Watch(v *viper.Viper, logger *log.Logger, apply func(Options)) {
	if logger == nil {
		logger = log.Default()
	}
	logger = logger.WithPrefix("options")

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		opts, err := Load(v)
		if err != nil {
			logger.Warn("ignoring config change", "file", e.Name, "err", err)
			return
		}
		logger.Info("config reloaded", "file", e.Name)
		apply(opts)
	})
	v.WatchConfig()
}
