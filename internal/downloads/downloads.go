// Package downloads runs yt-dlp for single jobs and metadata queries.
package downloads

import (
	"context"
	"os/exec"
	"sync"
	"time"

	"tubegrab/internal/domain/command"
	"tubegrab/internal/domain/consts"
	"tubegrab/internal/models"
)

// Fetcher downloads one job.
//
// The returned channel yields the job's progress events in order and is closed
// right after exactly one Finished or Errored event. Fetch never panics on
// tool failure; failures arrive as the Errored event.
type Fetcher interface {
	Fetch(ctx context.Context, job models.Job) <-chan models.ProgressEvent
}

// Prober queries metadata for a URL without downloading media.
//
// It returns the raw flat-playlist JSON document.
type Prober interface {
	Probe(ctx context.Context, url string, playlistEnd int) ([]byte, error)
}

// Pauser suspends and continues the downloads a Fetcher has in flight.
//
// A Fetch started while paused begins suspended.
type Pauser interface {
	Pause() error
	Resume() error
}

// Config configures the yt-dlp backend.
type Config struct {
	Binary             string
	FilenameTemplate   string
	RestrictFilenames  bool
	CookiesFromBrowser string
	CookieFile         string
	CancelGrace        time.Duration
}

// DefaultConfig returns the settings used when none are given.
func DefaultConfig() Config {
	return Config{
		Binary:            command.YTDLP,
		FilenameTemplate:  command.FilenameSyntax,
		RestrictFilenames: true,
		CancelGrace:       consts.CancelGracePeriod,
	}
}

// YTDLP is the production Fetcher and Prober.
type YTDLP struct {
	cfg Config
	now func() time.Time

	mu      sync.Mutex
	running map[*exec.Cmd]struct{}
	paused  bool
}

// New returns a yt-dlp backend, filling unset fields from DefaultConfig.
func New(cfg Config) *YTDLP {
	def := DefaultConfig()
	if cfg.Binary == "" {
		cfg.Binary = def.Binary
	}
	if cfg.FilenameTemplate == "" {
		cfg.FilenameTemplate = def.FilenameTemplate
	}
	if cfg.CancelGrace <= 0 {
		cfg.CancelGrace = def.CancelGrace
	}
	return &YTDLP{cfg: cfg, now: time.Now, running: make(map[*exec.Cmd]struct{})}
}

// Config returns the effective configuration.
func (y *YTDLP) Config() Config {
	return y.cfg
}

var (
	_ Fetcher = (*YTDLP)(nil)
	_ Prober  = (*YTDLP)(nil)
	_ Pauser  = (*YTDLP)(nil)
)
