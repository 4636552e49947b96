package downloads

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"

	"tubegrab/internal/domain/consts"
	"tubegrab/internal/domain/logger"
	"tubegrab/internal/models"
)

// CauseCancelled is the cause reported for a fetch stopped by its context.
const CauseCancelled = "cancelled"

// Fetch runs yt-dlp for job and streams its progress.
func (y *YTDLP) Fetch(ctx context.Context, job models.Job) <-chan models.ProgressEvent {
	out := make(chan models.ProgressEvent, 16)
	go func() {
		defer close(out)
		y.run(ctx, job, func(ev models.ProgressEvent) {
			ev.JobID = job.ID
			if ev.At.IsZero() {
				ev.At = y.now()
			}
			out <- ev
		})
	}()
	return out
}

// run executes the download and emits events, ending with exactly one terminal event.
func (y *YTDLP) run(ctx context.Context, job models.Job, emit func(models.ProgressEvent)) {
	fail := func(kind models.FaultKind, cause string) {
		emit(models.ProgressEvent{Phase: consts.PhaseErrored, Fraction: models.Indeterminate, Fault: kind, Cause: cause})
	}

	if ctx.Err() != nil {
		fail(models.FaultCancelled, CauseCancelled)
		return
	}

	if job.Directory != "" {
		if err := os.MkdirAll(job.Directory, consts.PermsGenericDir); err != nil {
			fail(models.FaultPermanent, fmt.Sprintf("cannot create download directory: %v", err))
			return
		}
	}

	cmd := exec.Command(y.cfg.Binary, y.BuildArgs(job)...)
	setProcessGroup(cmd)
	logger.Pl.D(1, "Built download command for job %d (%s):\n%v", job.ID, job.Label(), cmd.String())

	// Set pipes
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		fail(models.FaultPermanent, fmt.Sprintf("stdout pipe error: %v", err))
		return
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		fail(models.FaultPermanent, fmt.Sprintf("stderr pipe error: %v", err))
		return
	}

	if err := cmd.Start(); err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
			fail(models.FaultPermanent, fmt.Sprintf("%s not found: install it or set its path", y.cfg.Binary))
			return
		}
		fail(models.FaultPermanent, fmt.Sprintf("failed to start %s: %v", y.cfg.Binary, err))
		return
	}

	y.track(cmd)
	emit(models.ProgressEvent{Phase: consts.PhaseResolving, Fraction: models.Indeterminate})

	// Wait for completion or cancel
	done := make(chan struct{})
	var cancelled atomic.Bool
	go func() {
		select {
		case <-ctx.Done():
			cancelled.Store(true)
			// A suspended group cannot act on the interrupt.
			if err := resumeProcess(cmd); err != nil {
				logger.Pl.D(2, "Continue of PID %d failed: %v", cmd.Process.Pid, err)
			}
			if err := interruptProcess(cmd); err != nil {
				logger.Pl.D(2, "Interrupt of PID %d failed: %v", cmd.Process.Pid, err)
			}
			select {
			case <-done:
			case <-time.After(y.cfg.CancelGrace):
				logger.Pl.W("yt-dlp (PID %d) did not exit within %v, killing it", cmd.Process.Pid, y.cfg.CancelGrace)
				if err := killProcess(cmd); err != nil {
					logger.Pl.E("Failed to kill process %d: %v", cmd.Process.Pid, err)
				}
			}
		case <-done:
		}
	}()

	errs := &stderrCollector{limit: consts.MaxStderrBytes}
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		scanLines(stderr, func(line string) {
			errs.add(line)
			logger.Pl.D(3, "yt-dlp stderr [job %d]: %s", job.ID, line)
		})
	}()

	var outputPath string
	scanLines(stdout, func(line string) {
		kind, ev, path := parseLine(line)
		switch kind {
		case lineProgress:
			emit(ev)
		case lineOutputPath:
			outputPath = path
		default:
			logger.Pl.D(4, "yt-dlp [job %d]: %s", job.ID, line)
		}
	})
	wg.Wait()

	y.untrack(cmd)
	waitErr := cmd.Wait()
	close(done)

	// A clean exit wins over a cancel that landed after the work was done.
	switch {
	case waitErr == nil:
		emit(models.ProgressEvent{Phase: consts.PhaseFinished, Fraction: 1, OutputPath: outputPath})
	case cancelled.Load():
		fail(models.FaultCancelled, CauseCancelled)
	default:
		cause := errs.cause(fmt.Sprintf("%s exited: %v", y.cfg.Binary, waitErr))
		fail(Classify(cause), cause)
	}
}

// scanLines calls fn for each line of r, splitting on newlines and carriage returns.
func scanLines(r io.Reader, fn func(string)) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	sc.Split(splitByNewlineOrCR)
	for sc.Scan() {
		fn(sc.Text())
	}
	// Drain so the child never blocks on a full pipe after an oversized line.
	_, _ = io.Copy(io.Discard, r)
}

func splitByNewlineOrCR(data []byte, atEOF bool) (advance int, token []byte, err error) {
	for i := 0; i < len(data); i++ {
		if data[i] == '\n' || data[i] == '\r' {
			if i == 0 {
				return 1, nil, nil
			}
			return i + 1, data[:i], nil
		}
	}
	if atEOF && len(data) > 0 {
		return len(data), data, nil
	}
	return 0, nil, nil
}
