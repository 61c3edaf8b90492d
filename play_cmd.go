package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/dgnsrekt/kikitori/internal/cache"
	"github.com/dgnsrekt/kikitori/internal/playback"
	"github.com/dgnsrekt/kikitori/internal/sources"
	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"
)

const maxPlayWait = 30 * time.Second

var (
	playSource string
	playIndex  int

	playCmd = &cobra.Command{
		Use:   "play TERM [READING]",
		Short: "Play the pronunciation of a headword",
		Long: paragraph(fmt.Sprintf("\n%s the first audio any source yields for a headword. "+
			"Use --source to try one source type only, or --index to play one configured source.",
			keyword("Play"))),
		Example: paragraph("kikitori play 食べる たべる\nkikitori play 食べる たべる --source jisho\nkikitori play 猫 ねこ --index 2"),
		Args:    cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			term, reading := headwordArgs(args)

			var sourceType sources.SourceType
			if playSource != "" {
				t, err := matchSourceType(playSource)
				if err != nil {
					return err
				}
				sourceType = t
			}

			a, err := newApp(opts)
			if err != nil {
				return err
			}
			a.ctrl.SetContent([]playback.Entry{
				{Headwords: []playback.Headword{{Term: term, Reading: reading}}},
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			var res playback.Result
			if playIndex > 0 {
				res, err = a.ctrl.PlayFromSource(ctx, 0, 0, playIndex-1, cache.NoSubIndex)
			} else {
				res, err = a.ctrl.Play(ctx, 0, 0, sourceType)
			}
			if err != nil {
				return fmt.Errorf("unable to play: %w", err)
			}
			if res.Title != "" {
				fmt.Fprintln(cmd.OutOrStdout(), res.Title)
			}

			waitForPlayback(ctx, a.ctrl)
			a.ctrl.Close()
			if !res.Valid {
				return errors.New("no audio found")
			}
			return nil
		},
	}
)

func init() {
	playCmd.Flags().StringVarP(&playSource, "source", "s", "", "only try sources of this type (fuzzy matched)")
	playCmd.Flags().IntVarP(&playIndex, "index", "i", 0, "play only the n-th configured source, starting at 1")
}

// headwordArgs returns the term and reading; the reading defaults to the
// term.
func headwordArgs(args []string) (string, string) {
	term := args[0]
	reading := term
	if len(args) > 1 && args[1] != "" {
		reading = args[1]
	}
	return term, reading
}

// waitForPlayback blocks while the controller plays, up to maxPlayWait.
func waitForPlayback(ctx context.Context, ctrl *playback.Controller) {
	deadline := time.NewTimer(maxPlayWait)
	defer deadline.Stop()
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()

	for ctrl.State() == playback.StatePlaying {
		select {
		case <-ctx.Done():
			return
		case <-deadline.C:
			return
		case <-tick.C:
		}
	}
}

// matchSourceType resolves s to a source type, exactly when possible and
// otherwise by fuzzy matching type ids and display names.
func matchSourceType(s string) (sources.SourceType, error) {
	if t, err := sources.ParseSourceType(s); err == nil {
		return t, nil
	}

	var names []string
	var types []sources.SourceType
	for _, t := range sources.AllTypes {
		names = append(names, string(t), strings.ToLower(t.DisplayName()))
		types = append(types, t, t)
	}
	matches := fuzzy.Find(strings.ToLower(s), names)
	if len(matches) == 0 {
		return "", fmt.Errorf("unknown source type %q", s)
	}
	return types[matches[0].Index], nil
}
