package ui

// Config contains TUI-specific configuration.
type Config struct {
	EnableMouse bool
	AltScreen   bool `env:"KIKITORI_ALT_SCREEN"      envDefault:"true"`
	ShowHelp    bool `env:"KIKITORI_SHOW_HELP"`
	// MaxLabelWidth caps the width of menu labels, 0 for no cap.
	MaxLabelWidth uint `env:"KIKITORI_MAX_LABEL_WIDTH" envDefault:"48"`

	// Word list path. Empty or "-" means the entries came from stdin and
	// are not watched.
	Path string
}

func (c Config) watchable() bool {
	return c.Path != "" && c.Path != "-"
}
