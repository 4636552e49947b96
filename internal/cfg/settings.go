package cfg

import (
	"fmt"

	"tubegrab/internal/config"
	"tubegrab/internal/domain/keys"
	"tubegrab/internal/domain/logger"
	"tubegrab/internal/models"

	"github.com/spf13/cobra"
)

// initConfigCmds is the entrypoint for the saved settings commands.
func initConfigCmds(app *App) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Saved settings commands",
		Long:  "Show or change the download directory, quality and format used when none are given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return fmt.Errorf("please specify a subcommand. Use --help to see available subcommands")
		},
	}

	configCmd.AddCommand(showConfigCmd(app.Settings))
	configCmd.AddCommand(setConfigCmd(app.Settings))
	return configCmd
}

// showConfigCmd prints the saved settings.
func showConfigCmd(st *config.Store) *cobra.Command {
	var asJSON bool

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show saved settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := st.Load()
			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, map[string]string{
					keys.DocDownloadPath:   c.DownloadPath,
					keys.DocDefaultQuality: c.DefaultQuality.String(),
					keys.DocDefaultFormat:  string(c.DefaultFormat),
				})
			}
			fmt.Fprintf(out, "Settings file: %s\n\n", st.Path())
			fmt.Fprintf(out, "Download path:   %s\n", c.DownloadPath)
			fmt.Fprintf(out, "Default quality: %s\n", c.DefaultQuality)
			fmt.Fprintf(out, "Default format:  %s\n", c.DefaultFormat)
			return nil
		},
	}

	showCmd.Flags().BoolVar(&asJSON, keys.JSONOutput, false, "Print as JSON")
	return showCmd
}

// setConfigCmd changes the saved settings given as flags.
func setConfigCmd(st *config.Store) *cobra.Command {
	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Change saved settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			fs := cmd.Flags()
			if !fs.Changed(keys.DownloadDir) && !fs.Changed(keys.Quality) && !fs.Changed(keys.Format) {
				return fmt.Errorf("nothing to set, use --%s, --%s or --%s", keys.DownloadDir, keys.Quality, keys.Format)
			}

			c := st.Load()
			if fs.Changed(keys.DownloadDir) {
				dir, err := fs.GetString(keys.DownloadDir)
				if err != nil {
					return err
				}
				c.DownloadPath = dir
			}
			if fs.Changed(keys.Quality) {
				c.DefaultQuality = fs.Lookup(keys.Quality).Value.(*qualityValue).q
			}
			if fs.Changed(keys.Format) {
				c.DefaultFormat = fs.Lookup(keys.Format).Value.(*formatValue).f
			}

			if err := st.Save(c); err != nil {
				return err
			}
			logger.Pl.S("Saved settings: %s", describeConfig(c))
			return nil
		},
	}

	addSettingFlags(setCmd.Flags())
	return setCmd
}

func describeConfig(c models.SessionConfig) string {
	return fmt.Sprintf("path %q, quality %s, format %s", c.DownloadPath, c.DefaultQuality, c.DefaultFormat)
}
