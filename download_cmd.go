package main

import (
	"errors"
	"fmt"
	"mime"
	"os"
	"strings"

	"github.com/dgnsrekt/kikitori/internal/discovery"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	downloadOutput string

	downloadCmd = &cobra.Command{
		Use:   "download TERM [READING]",
		Short: "Download the pronunciation of a headword to a file",
		Long: paragraph(fmt.Sprintf("\n%s the first audio file any downloadable source yields. "+
			"Text to speech sources are skipped.", keyword("Download"))),
		Example: paragraph("kikitori download 食べる たべる -o taberu.mp3"),
		Args:    cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			term, reading := headwordArgs(args)

			a, err := newApp(opts)
			if err != nil {
				return err
			}

			req := a.ctrl.DownloadRequest(term, reading)
			bin, err := a.provider.DownloadTermAudio(cmd.Context(), req)
			if err != nil {
				var de *discovery.DownloadError
				if errors.As(err, &de) {
					for _, e := range de.Errors {
						fmt.Fprintln(cmd.ErrOrStderr(), "  "+e.Error())
					}
					return errors.New("no source yielded audio")
				}
				return fmt.Errorf("unable to download audio: %w", err)
			}

			path := downloadOutput
			if path == "" {
				path = term + audioExtension(bin.ContentType)
			}
			if err := os.WriteFile(path, bin.Data, 0o644); err != nil { //nolint:gosec
				return fmt.Errorf("unable to write audio: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%s) to %s\n",
				humanize.Bytes(uint64(len(bin.Data))), bin.ContentType, path)
			return nil
		},
	}
)

func init() {
	downloadCmd.Flags().StringVarP(&downloadOutput, "output", "o", "", "output file (default TERM plus an extension from the content type)")
}

// audioExtension picks a file extension for a content type.
func audioExtension(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ".mp3"
	}
	switch mt {
	case "audio/mpeg", "audio/mp3":
		return ".mp3"
	case "audio/ogg", "application/ogg":
		return ".ogg"
	case "audio/wav", "audio/x-wav", "audio/wave":
		return ".wav"
	}
	if exts, err := mime.ExtensionsByType(mt); err == nil && len(exts) > 0 {
		return exts[0]
	}
	if strings.HasPrefix(mt, "audio/") {
		return "." + strings.TrimPrefix(mt, "audio/")
	}
	return ".mp3"
}
