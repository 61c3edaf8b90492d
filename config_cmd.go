package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/charmbracelet/x/editor"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultConfig = `# dictionary language, ISO 639-1
language: "ja"

audio:
  # show play buttons and allow playback
  enabled: true
  # play the first headword when a word list loads
  auto_play: false
  # wait this long before auto-play starts
  auto_play_delay: "400ms"
  # sound played when no source has audio: none, click or bloop
  fallback_sound: "click"
  # playback volume in percent
  volume: 100
  # append the built-in sources for the language after your own
  enable_default_sources: true
  # remember failed lookups for the rest of the session
  cache_failures: true
  # abort a download that stalls this long, 0 to disable
  idle_timeout: "0s"
  # sources tried in order, types: jpod101, language-pod-101, jisho,
  # lingua-libre, wiktionary, text-to-speech, text-to-speech-reading,
  # custom, custom-json
  sources:
    - type: jpod101
    # - type: custom
    #   url: "https://example.com/audio/{term}/{reading}.mp3"
    # - type: text-to-speech
    #   voice: "gtts:ja"

speech:
  gtts:
    command: "gtts-cli"
    # languages to register voices for, defaults to the dictionary language
    # languages: ["ja", "en"]
    slow: false
    requests_per_minute: 50
    timeout: "30s"
  piper:
    command: "piper"
    timeout: "30s"
    # models:
    #   - name: "ja_JP-test-medium"
    #     model: "~/.local/share/piper/ja_JP-test-medium.onnx"

http:
  requests_per_minute: 120
  body_cache_size: "32MB"
  timeout: "15s"

# mouse support (TUI-mode only)
mouse: false
`

var configCmd = &cobra.Command{
	Use:     "config",
	Hidden:  false,
	Short:   "Edit the kikitori config file",
	Long:    paragraph(fmt.Sprintf("\n%s the kikitori config file. We’ll use EDITOR to determine which editor to use. If the config file doesn't exist, it will be created.", keyword("Edit"))),
	Example: paragraph("kikitori config\nkikitori config --config path/to/config.yml"),
	Args:    cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		if err := ensureConfigFile(); err != nil {
			return err
		}

		c, err := editor.Cmd("kikitori", configFile)
		if err != nil {
			return fmt.Errorf("unable to set config file: %w", err)
		}
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		if err := c.Run(); err != nil {
			return fmt.Errorf("unable to run command: %w", err)
		}

		fmt.Println("Wrote config file to:", configFile)
		return nil
	},
}

func ensureConfigFile() error {
	if configFile == "" {
		configFile = viper.GetViper().ConfigFileUsed()
		if err := os.MkdirAll(filepath.Dir(configFile), 0o755); err != nil { //nolint:gosec
			return fmt.Errorf("could not write configuration file: %w", err)
		}
	}

	if ext := path.Ext(configFile); ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("'%s' is not a supported configuration type: use '%s' or '%s'", ext, ".yaml", ".yml")
	}

	if _, err := os.Stat(configFile); errors.Is(err, fs.ErrNotExist) {
		// File doesn't exist yet, create all necessary directories and
		// write the default config file
		if err := os.MkdirAll(filepath.Dir(configFile), 0o700); err != nil {
			return fmt.Errorf("unable create directory: %w", err)
		}

		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("unable to create config file: %w", err)
		}
		defer func() { _ = f.Close() }()

		if _, err := f.WriteString(defaultConfig); err != nil {
			return fmt.Errorf("unable to write config file: %w", err)
		}
	} else if err != nil { // some other error occurred
		return fmt.Errorf("unable to stat config file: %w", err)
	}
	return nil
}
