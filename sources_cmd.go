package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/kikitori/internal/sources"
	"github.com/dgnsrekt/kikitori/internal/speech"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var sourcesCmd = &cobra.Command{
	Use:     "sources",
	Short:   "List the audio sources and voices in use",
	Long:    paragraph(fmt.Sprintf("\n%s the audio sources in the order they are tried, and the text to speech voices available to them.", keyword("List"))),
	Example: paragraph("kikitori sources\nkikitori sources --language en"),
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		list := sources.Build(opts.Audio.Sources, opts.Audio.EnableDefaultSources, opts.Language)
		voices := speech.Load(opts.SpeechConfig(), speech.ExecRunner, log.Default())

		md := sourcesMarkdown(opts.Language, list, voices.Voices())
		out, err := renderMarkdown(md)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func sourcesMarkdown(lang string, list []sources.AudioSource, voices []speech.Voice) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Audio sources (%s)\n\n", sources.LookupLanguage(lang).Name)
	if len(list) == 0 {
		b.WriteString("No audio sources configured.\n")
	} else {
		b.WriteString("| # | Name | Type | Target | Download | Origin |\n")
		b.WriteString("|---|---|---|---|---|---|\n")
		for _, s := range list {
			target := s.URL
			if target == "" {
				target = s.Voice
			}
			origin := "default"
			if s.IsInOptions {
				origin = "config"
			}
			download := "no"
			if s.Downloadable {
				download = "yes"
			}
			fmt.Fprintf(&b, "| %d | %s | `%s` | %s | %s | %s |\n",
				s.Index+1, s.Label(), s.Type, markdownCell(target), download, origin)
		}
	}

	b.WriteString("\n## Voices\n\n")
	if len(voices) == 0 {
		b.WriteString("No text to speech voices available.\n")
		return b.String()
	}
	b.WriteString("| ID | Name | Language |\n|---|---|---|\n")
	for _, v := range voices {
		fmt.Fprintf(&b, "| `%s` | %s | %s |\n", v.ID(), v.Name(), v.Lang())
	}
	return b.String()
}

func markdownCell(s string) string {
	if s == "" {
		return "-"
	}
	return strings.ReplaceAll(s, "|", `\|`)
}

func renderMarkdown(md string) (string, error) {
	width := 80
	style := glamour.WithAutoStyle()
	if term.IsTerminal(int(os.Stdout.Fd())) {
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			width = min(w, 120)
		}
	} else {
		style = glamour.WithStandardStyle(styles.NoTTYStyle)
	}

	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(width))
	if err != nil {
		return "", fmt.Errorf("unable to create renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("unable to render markdown: %w", err)
	}
	return out, nil
}
