package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgnsrekt/kikitori/internal/sources"
	"github.com/dustin/go-humanize"
	runewidth "github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	infoStats bool

	infoCmd = &cobra.Command{
		Use:     "info TERM [READING]",
		Short:   "List the audio candidates every source offers",
		Long:    paragraph(fmt.Sprintf("\n%s the audio candidates of every source for a headword without downloading or playing any of them.", keyword("List"))),
		Example: paragraph("kikitori info 食べる たべる\nkikitori info hello --language en --stats"),
		Args:    cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			term, reading := headwordArgs(args)

			a, err := newApp(opts)
			if err != nil {
				return err
			}
			list := a.ctrl.Sources()
			lang := sources.LookupLanguage(opts.Language)

			results := make([][]sources.Info, len(list))
			g, ctx := errgroup.WithContext(cmd.Context())
			for i, source := range list {
				g.Go(func() error {
					results[i] = a.provider.GetTermAudioInfoList(ctx, source, term, reading, lang)
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return fmt.Errorf("unable to list audio: %w", err)
			}

			writeInfoTable(cmd.OutOrStdout(), list, results)

			if infoStats {
				s := a.client.BodyStats()
				fmt.Fprintf(cmd.OutOrStdout(), "\nresponse cache: %d bodies, %s of %s, %d hits, %d misses\n",
					s.ItemCount, humanize.IBytes(uint64(max(0, s.Size))), humanize.IBytes(uint64(max(0, s.Capacity))), //nolint:gosec
					s.Hits, s.Misses)
			}
			return nil
		},
	}
)

func init() {
	infoCmd.Flags().BoolVar(&infoStats, "stats", false, "print response cache statistics")
}

// writeInfoTable prints one line per candidate with source labels padded
// to a shared column.
func writeInfoTable(w io.Writer, list []sources.AudioSource, results [][]sources.Info) {
	width := 0
	for _, s := range list {
		width = max(width, runewidth.StringWidth(s.Label()))
	}

	for i, s := range list {
		label := runewidth.FillRight(s.Label(), width)
		if len(results[i]) == 0 {
			fmt.Fprintf(w, "%s  -\n", label)
			continue
		}
		for j, info := range results[i] {
			if j > 0 {
				label = strings.Repeat(" ", width)
			}
			fmt.Fprintf(w, "%s  %s\n", label, describeInfo(info))
		}
	}
}

func describeInfo(info sources.Info) string {
	switch info := info.(type) {
	case sources.URLInfo:
		if info.Name != "" {
			return fmt.Sprintf("%s (%s)", info.URL, info.Name)
		}
		return info.URL
	case sources.TTSInfo:
		return fmt.Sprintf("speech %s %q", info.Voice, info.Text)
	default:
		return fmt.Sprintf("%v", info)
	}
}
