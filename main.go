// Package main provides the entry point for the kikitori CLI application.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/kikitori/internal/options"
	"github.com/dgnsrekt/kikitori/ui"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile string
	language   string
	autoPlay   bool
	mouse      bool

	// opts is filled in by validateOptions before any command runs.
	opts options.Options

	rootCmd = &cobra.Command{
		Use:   "kikitori [FILE|-]",
		Short: "Listen to how words are pronounced, from the terminal",
		Long: paragraph(
			fmt.Sprintf("\nFind and play %s for dictionary headwords.\nReads a word list with one %s per line and opens it in the TUI.",
				keyword("pronunciation audio"), keyword("term<TAB>reading")),
		),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.MaximumNArgs(1),
		ValidArgsFunction: func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return nil, cobra.ShellCompDirectiveDefault
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return validateOptions(cmd)
		},
		RunE: execute,
	}
)

func validateOptions(cmd *cobra.Command) error {
	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("unable to read config file: %w", err)
		}
	}

	mouse = viper.GetBool("mouse")

	var err error
	opts, err = options.Load(viper.GetViper())
	if err != nil {
		return err //nolint:wrapcheck
	}

	// flags win over the config file
	if cmd.Flags().Changed("language") {
		opts.Language = language
	}
	if cmd.Flags().Changed("auto-play") {
		opts.Audio.AutoPlay = autoPlay
	}
	return opts.Validate() //nolint:wrapcheck
}

func stdinIsPipe() (bool, error) {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false, fmt.Errorf("unable to open file: %w", err)
	}
	if stat.Mode()&os.ModeCharDevice == 0 || stat.Size() > 0 {
		return true, nil
	}
	return false, nil
}

func execute(_ *cobra.Command, args []string) error {
	path := ""
	if len(args) == 1 {
		path = args[0]
	}

	// if stdin is a pipe then use stdin for input. note that you can also
	// explicitly use a - to read from stdin.
	if path == "" {
		yes, err := stdinIsPipe()
		if err != nil {
			return err
		}
		if !yes {
			return errors.New("missing word list: pass a file or pipe one in")
		}
		path = "-"
	}

	if path != "-" {
		abs, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("unable to get absolute path: %w", err)
		}
		path = abs
	}
	return runTUI(path)
}

func runTUI(path string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("the TUI needs a terminal, use the play or info commands instead")
	}

	// Read environment to get debugging stuff
	cfg, err := env.ParseAs[ui.Config]()
	if err != nil {
		return fmt.Errorf("error parsing config: %v", err)
	}
	cfg.Path = path
	cfg.EnableMouse = mouse

	entries, err := ui.LoadEntries(path)
	if err != nil {
		return err //nolint:wrapcheck
	}

	a, err := newApp(opts)
	if err != nil {
		return err
	}
	defer a.ctrl.Close()

	p := ui.NewProgram(cfg, a.ctrl, entries)
	if viper.ConfigFileUsed() != "" {
		options.Watch(viper.GetViper(), log.Default(), func(o options.Options) {
			p.Send(ui.OptionsChanged(o))
		})
	}
	return ui.Run(p) //nolint:wrapcheck
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	rootCmd.PersistentFlags().StringVarP(&language, "language", "l", "ja", "dictionary language as an ISO 639-1 code")
	rootCmd.Flags().BoolVar(&autoPlay, "auto-play", false, "play the first headword when the list loads")
	rootCmd.Flags().BoolVarP(&mouse, "mouse", "m", false, "enable mouse support (TUI-mode only)")
	_ = rootCmd.Flags().MarkHidden("mouse")

	// Config bindings
	_ = viper.BindPFlag("mouse", rootCmd.Flags().Lookup("mouse"))

	options.SetDefaults(viper.GetViper())
	viper.SetDefault("mouse", false)

	rootCmd.AddCommand(playCmd, sourcesCmd, infoCmd, downloadCmd, configCmd, manCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "kikitori")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not load find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "kikitori")}, dirs...)
	}

	if c := os.Getenv("KIKITORI_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("kikitori")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("kikitori")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", viper.ConfigFileUsed())
		return
	}

	if viper.ConfigFileUsed() == "" {
		configFile = filepath.Join(dirs[0], "kikitori.yml")
	}
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}
