package downloads

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"tubegrab/internal/domain/command"
	"tubegrab/internal/domain/consts"
	"tubegrab/internal/domain/logger"
	"tubegrab/internal/models"
)

// ProbeArgs returns the yt-dlp arguments for a metadata-only query.
func (y *YTDLP) ProbeArgs(url string, playlistEnd int) []string {
	args := []string{command.YtDLPFlatPlaylist, command.OutputJSON, command.NoWarnings}
	if playlistEnd > 0 {
		args = append(args, command.PlaylistEnd, strconv.Itoa(playlistEnd))
	}
	switch {
	case y.cfg.CookieFile != "":
		args = append(args, command.CookiePath, y.cfg.CookieFile)
	case y.cfg.CookiesFromBrowser != "":
		args = append(args, command.CookiesFromBrowser, y.cfg.CookiesFromBrowser)
	}
	return append(args, "--", url)
}

// Probe runs a flat-playlist query and returns yt-dlp's JSON document.
//
// Failures are returned as *models.FetchError carrying the classified cause.
func (y *YTDLP) Probe(ctx context.Context, url string, playlistEnd int) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, consts.ProbeTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, y.cfg.Binary, y.ProbeArgs(url, playlistEnd)...)
	setProcessGroup(cmd)
	cmd.Cancel = func() error { return interruptProcess(cmd) }
	cmd.WaitDelay = y.cfg.CancelGrace

	var stdout bytes.Buffer
	errs := &stderrCollector{limit: consts.MaxStderrBytes}
	cmd.Stdout = &stdout
	stderr := &lineWriter{fn: errs.add}
	cmd.Stderr = stderr

	logger.Pl.D(1, "Probing %q:\n%v", url, cmd.String())

	err := cmd.Run()
	stderr.Flush()
	if err != nil {
		switch {
		case errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist):
			return nil, &models.FetchError{Kind: models.FaultPermanent, Cause: fmt.Sprintf("%s not found: install it or set its path", y.cfg.Binary)}
		case ctx.Err() != nil:
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, &models.FetchError{Kind: models.FaultTransient, Cause: "metadata query timed out"}
			}
			return nil, &models.FetchError{Kind: models.FaultCancelled, Cause: CauseCancelled}
		}
		cause := errs.cause(fmt.Sprintf("%s exited: %v", y.cfg.Binary, err))
		return nil, &models.FetchError{Kind: Classify(cause), Cause: cause}
	}
	return stdout.Bytes(), nil
}

// lineWriter feeds written bytes to fn one complete line at a time,
// carrying a partial line over to the next write.
type lineWriter struct {
	fn  func(string)
	buf []byte
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexAny(w.buf, "\r\n")
		if i < 0 {
			break
		}
		if i > 0 {
			w.fn(string(w.buf[:i]))
		}
		w.buf = w.buf[i+1:]
	}
	if len(w.buf) > consts.MaxStderrBytes {
		w.Flush()
	}
	return len(p), nil
}

// Flush emits a trailing line that never got its newline.
func (w *lineWriter) Flush() {
	if len(w.buf) > 0 {
		w.fn(string(w.buf))
	}
	w.buf = nil
}
