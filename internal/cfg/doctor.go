package cfg

import (
	"fmt"
	"strings"

	"tubegrab/internal/domain/command"
	"tubegrab/internal/domain/keys"
	"tubegrab/internal/downloads"

	"github.com/spf13/cobra"
)

// doctorCmd reports whether the external programs are installed.
func doctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check that yt-dlp and ffmpeg are installed",
		RunE: func(cmd *cobra.Command, args []string) error {
			bin, err := cmd.Flags().GetString(keys.YtdlpPath)
			if err != nil {
				return err
			}

			deps := downloads.DependencyStatus(cmd.Context(), bin)
			out := cmd.OutOrStdout()
			for _, d := range deps {
				if !d.Found {
					fmt.Fprintf(out, "%-8s missing\n", d.Name)
					continue
				}
				fmt.Fprintf(out, "%-8s %s (%s)\n", d.Name, d.Version, d.Path)
			}

			if missing := downloads.MissingDependencies(deps); len(missing) > 0 {
				return fmt.Errorf("missing required programs: %s", strings.Join(missing, ", "))
			}
			return nil
		},
	}

	cmd.Flags().String(keys.YtdlpPath, command.YTDLP, "yt-dlp executable")
	return cmd
}
