package cfg

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"tubegrab/internal/cookies"
	"tubegrab/internal/domain/command"
	"tubegrab/internal/domain/consts"
	"tubegrab/internal/domain/keys"
	"tubegrab/internal/domain/logger"
	"tubegrab/internal/downloads"
	"tubegrab/internal/history"
	"tubegrab/internal/models"
	"tubegrab/internal/playlist"
	"tubegrab/internal/session"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// downloadCmd downloads every item behind a URL.
func downloadCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "download [URL]",
		Short: "Download a video or playlist",
		Long: "Resolve a video or playlist URL and download each item with yt-dlp, retrying transient failures.\n\n" +
			"On Unix systems, sending SIGUSR1 to the process pauses the session and a second SIGUSR1 resumes it.",
		Args: cobra.MaximumNArgs(1),
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
			return runDownload(cmd.Context(), cmd.OutOrStdout(), app, v, url)
		},
	}

	fs := cmd.Flags()
	fs.StringP(keys.URL, "u", "", "Video or playlist URL")
	addSettingFlags(fs)
	addToolFlags(fs)
	fs.IntP(keys.Concurrency, "c", consts.DefaultWorkers, fmt.Sprintf("Parallel downloads (1-%d)", consts.MaxWorkers))
	fs.Int(keys.MaxAttempts, consts.DefaultMaxAttempts, "Attempts per item before giving up on transient errors")
	fs.Duration(keys.RetryDelay, consts.RetryInterval, "Pause between attempts")
	fs.String(keys.Template, command.FilenameSyntax, "yt-dlp output filename template")
	fs.String(keys.CookieSource, "", "Pass --cookies-from-browser to yt-dlp (e.g. firefox)")
	fs.Bool(keys.CookieExport, false, "Export this site's browser cookies to a cookie file for yt-dlp")
	fs.Bool(keys.NoHistory, false, "Do not record this session in the history database")
	return cmd
}

// addToolFlags adds the flags shared by every command invoking yt-dlp.
func addToolFlags(fs *pflag.FlagSet) {
	fs.String(keys.YtdlpPath, command.YTDLP, "yt-dlp executable")
	fs.Int(keys.PlaylistEnd, consts.DefaultPlaylistEnd, "Maximum playlist entries to read (0 for all)")
}

// runDownload runs one session to completion, printing progress to out.
func runDownload(ctx context.Context, out io.Writer, app *App, v *viper.Viper, url string) error {
	req, err := buildRequest(app, v, url)
	if err != nil {
		return err
	}

	if v.GetInt(keys.Concurrency) > consts.MaxWorkers {
		logger.Pl.W("Concurrency %d above maximum, using %d", v.GetInt(keys.Concurrency), consts.MaxWorkers)
	}

	dlCfg := downloads.DefaultConfig()
	dlCfg.Binary = v.GetString(keys.YtdlpPath)
	dlCfg.FilenameTemplate = v.GetString(keys.Template)
	dlCfg.CookiesFromBrowser = v.GetString(keys.CookieSource)
	if v.GetBool(keys.CookieExport) {
		dlCfg.CookieFile = exportCookies(ctx, app, url)
	}

	fetcher, prober := app.backend(dlCfg)
	deps := session.Deps{
		Resolver: playlist.New(prober, v.GetInt(keys.PlaylistEnd)),
		Fetcher:  fetcher,
		Config:   app.Settings,
	}

	if app.History != nil && !v.GetBool(keys.NoHistory) {
		tracker := history.NewTracker(app.History)
		tracker.Start()
		defer tracker.Stop()
		deps.Recorder = tracker
	}

	s := session.New(deps, session.Options{
		Workers:       v.GetInt(keys.Concurrency),
		MaxAttempts:   v.GetInt(keys.MaxAttempts),
		RetryInterval: v.GetDuration(keys.RetryDelay),
	})

	updates, unsubscribe := s.Subscribe(0)
	defer unsubscribe()

	if err := s.Start(ctx, req); err != nil {
		return err
	}

	stopPause := watchPauseToggle(s)
	defer stopPause()

	p := newProgressView(out)
	for u := range updates {
		p.update(u)
	}
	sum := s.Wait()
	p.summary(sum, s.Jobs())
	return summaryErr(sum)
}

// buildRequest fills unset options from the saved settings.
func buildRequest(app *App, v *viper.Viper, url string) (session.Request, error) {
	saved := app.Settings.Load()
	req := session.Request{
		URL:       url,
		Quality:   saved.DefaultQuality,
		Format:    saved.DefaultFormat,
		Directory: saved.DownloadPath,
	}

	if v.IsSet(keys.DownloadDir) && v.GetString(keys.DownloadDir) != "" {
		req.Directory = v.GetString(keys.DownloadDir)
	}
	if v.IsSet(keys.Quality) && v.GetString(keys.Quality) != "" {
		q, err := models.ParseQuality(v.GetString(keys.Quality))
		if err != nil {
			return req, err
		}
		req.Quality = q
	}
	if v.IsSet(keys.Format) && v.GetString(keys.Format) != "" {
		f, err := models.ParseFormat(v.GetString(keys.Format))
		if err != nil {
			return req, err
		}
		req.Format = f
	}
	return req, nil
}

// exportCookies writes the site's browser cookies and returns the file path, or "" if none.
func exportCookies(ctx context.Context, app *App, url string) string {
	if app.CookieFile == "" {
		logger.Pl.W("No cookie file location configured, skipping browser cookies")
		return ""
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	n, err := cookies.Export(ctx, cookies.BrowserReader, url, app.CookieFile)
	if err != nil {
		logger.Pl.W("Could not export browser cookies: %v", err)
		return ""
	}
	if n == 0 {
		return ""
	}
	return app.CookieFile
}

// summaryErr turns an unsuccessful outcome into the command's error.
func summaryErr(sum models.Summary) error {
	switch sum.Outcome {
	case consts.OutcomeCompleted:
		return nil
	case consts.OutcomePartial:
		return fmt.Errorf("%d of %d downloads failed", sum.Failed, sum.Total)
	case consts.OutcomeAllFailed:
		return fmt.Errorf("all %d downloads failed", sum.Total)
	case consts.OutcomeCancelled:
		return errors.New("download cancelled")
	}
	if sum.Err != "" {
		return errors.New(sum.Err)
	}
	return fmt.Errorf("session ended with outcome %s", sum.Outcome)
}
