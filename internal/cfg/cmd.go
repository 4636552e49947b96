// Package cfg builds the tubegrab command tree.
package cfg

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tubegrab/internal/config"
	"tubegrab/internal/contracts"
	"tubegrab/internal/domain/keys"
	"tubegrab/internal/domain/logger"
	"tubegrab/internal/downloads"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Backend returns the fetcher and prober used for a run.
type Backend func(cfg downloads.Config) (downloads.Fetcher, downloads.Prober)

// App holds what the commands run against.
type App struct {
	Settings   *config.Store
	History    contracts.HistoryStore // nil disables history
	Backend    Backend                // nil uses yt-dlp
	CookieFile string
}

func (a *App) backend(cfg downloads.Config) (downloads.Fetcher, downloads.Prober) {
	if a.Backend != nil {
		return a.Backend(cfg)
	}
	y := downloads.New(cfg)
	return y, y
}

var rootCmd *cobra.Command

// InitCommands initializes all commands and their flags.
func InitCommands(ctx context.Context, app *App) error {
	if app == nil || app.Settings == nil {
		return errors.New("settings store is required")
	}
	rootCmd = newRootCmd(ctx, app)
	return nil
}

// Execute runs the command named by the program arguments.
func Execute() error {
	if rootCmd == nil {
		return errors.New("commands not initialized")
	}
	return rootCmd.Execute()
}

func newRootCmd(ctx context.Context, app *App) *cobra.Command {
	v := viper.New()

	root := &cobra.Command{
		Use:           "tubegrab",
		Short:         "Tubegrab downloads videos and playlists with yt-dlp",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := v.GetInt(keys.DebugLevel)
			if level < 0 || level > 5 {
				return fmt.Errorf("invalid debug level %d (0-5)", level)
			}
			logger.Pl.SetLevel(level)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	root.SetContext(ctx)

	// Root-level flags
	root.PersistentFlags().Int(keys.DebugLevel, 0, "Debug level (0-5)")
	if err := v.BindPFlag(keys.DebugLevel, root.PersistentFlags().Lookup(keys.DebugLevel)); err != nil {
		logger.Pl.E("could not bind flag %q: %v", keys.DebugLevel, err)
	}
	setEnv(v)

	root.AddCommand(downloadCmd(app))
	root.AddCommand(resolveCmd(app))
	root.AddCommand(initConfigCmds(app))
	root.AddCommand(initHistoryCmds(app))
	root.AddCommand(doctorCmd())
	return root
}

// newViper binds a command's flags to a fresh viper instance with environment fallback.
func newViper(cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}
	setEnv(v)
	return v, nil
}

// setEnv makes TUBEGRAB_<FLAG> environment variables visible to v.
func setEnv(v *viper.Viper) {
	v.SetEnvPrefix(keys.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
}
