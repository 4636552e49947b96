package cfg

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"tubegrab/internal/domain/keys"
	"tubegrab/internal/downloads"
	"tubegrab/internal/playlist"

	"github.com/spf13/cobra"
)

// resolveCmd lists the items behind a URL without downloading.
func resolveCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve [URL]",
		Short: "List the items of a video or playlist",
		Long:  "Query a URL's metadata with yt-dlp and print the items a download would fetch.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := newViper(cmd)
			if err != nil {
				return err
			}
			url := v.GetString(keys.URL)
			if len(args) > 0 {
				url = args[0]
			}
			if url == "" {
				return errors.New("must enter a URL")
			}

			dlCfg := downloads.DefaultConfig()
			dlCfg.Binary = v.GetString(keys.YtdlpPath)
			_, prober := app.backend(dlCfg)

			p, err := playlist.New(prober, v.GetInt(keys.PlaylistEnd)).Resolve(cmd.Context(), url)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if v.GetBool(keys.JSONOutput) {
				return writeJSON(out, p)
			}

			if p.IsPlaylist {
				fmt.Fprintf(out, "Playlist %q from %s: %d item(s)\n\n", p.Title, p.Source, len(p.Items))
			} else {
				fmt.Fprintf(out, "Single video from %s\n\n", p.Source)
			}
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "#\tID\tTITLE\tDURATION\tUPLOADED")
			for i, it := range p.Items {
				uploaded := ""
				if !it.UploadDate.IsZero() {
					uploaded = it.UploadDate.Format("2006-01-02")
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", i+1, it.ID, it.Title, it.Duration, uploaded)
			}
			return w.Flush()
		},
	}

	fs := cmd.Flags()
	fs.StringP(keys.URL, "u", "", "Video or playlist URL")
	addToolFlags(fs)
	fs.Bool(keys.JSONOutput, false, "Print as JSON")
	return cmd
}
