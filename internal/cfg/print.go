package cfg

import (
	"fmt"
	"io"
	"os"

	"tubegrab/internal/domain/consts"
	"tubegrab/internal/models"
	"tubegrab/internal/playlist"
	"tubegrab/internal/session"

	"github.com/mattn/go-isatty"
)

// progressStep is the percentage granularity of printed progress lines.
const progressStep = 10

// progressView renders a running session for the user.
type progressView interface {
	update(u session.Update)
	summary(sum models.Summary, jobs []models.Job)
}

// newProgressView draws bars on a terminal and falls back to plain lines
// when out is redirected.
func newProgressView(out io.Writer) progressView {
	if f, ok := out.(*os.File); ok {
		if fd := f.Fd(); isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
			return newBarView(out)
		}
	}
	return newPrinter(out)
}

// printer renders a session's progress as plain lines.
//
// Session log lines reach the console through the program logger.
type printer struct {
	out    io.Writer
	jobs   map[int]models.Job
	bucket map[int]int
	phase  map[int]consts.Phase
	total  int
}

func newPrinter(out io.Writer) *printer {
	return &printer{
		out:    out,
		jobs:   make(map[int]models.Job),
		bucket: make(map[int]int),
		phase:  make(map[int]consts.Phase),
	}
}

func (p *printer) update(u session.Update) {
	switch u.Kind {
	case session.UpdateJob:
		if _, ok := p.jobs[u.Job.ID]; !ok {
			p.total++
		}
		p.jobs[u.Job.ID] = u.Job
	case session.UpdateProgress:
		p.progress(u.Event)
	}
}

// progress prints phase changes and every progressStep percent of download.
func (p *printer) progress(ev models.ProgressEvent) {
	label := p.label(ev.JobID)
	prev, seen := p.phase[ev.JobID]
	p.phase[ev.JobID] = ev.Phase

	switch ev.Phase {
	case consts.PhaseDownloading:
		if ev.IsIndeterminate() {
			if !seen || prev != ev.Phase {
				fmt.Fprintf(p.out, "  %s downloading %s\n", label, formatBytes(ev.BytesDone))
			}
			return
		}
		b := int(ev.Fraction*100) / progressStep
		if last, ok := p.bucket[ev.JobID]; ok && b <= last && prev == ev.Phase {
			return
		}
		p.bucket[ev.JobID] = b
		line := fmt.Sprintf("  %s %5.1f%%", label, ev.Fraction*100)
		if ev.BytesTotal > 0 {
			line += " of " + formatBytes(ev.BytesTotal)
		}
		if ev.SpeedBps > 0 {
			line += " at " + formatBytes(int64(ev.SpeedBps)) + "/s"
		}
		if ev.ETA > 0 {
			line += " ETA " + playlist.FormatDuration(ev.ETA.Seconds())
		}
		fmt.Fprintln(p.out, line)
	case consts.PhaseMerging:
		if prev != ev.Phase {
			fmt.Fprintf(p.out, "  %s post-processing\n", label)
		}
	}
}

func (p *printer) label(jobID int) string {
	j, ok := p.jobs[jobID]
	if !ok {
		return fmt.Sprintf("[%d]", jobID)
	}
	return fmt.Sprintf("[%d/%d] %s", jobID, p.total, j.Label())
}

func (p *printer) summary(sum models.Summary, jobs []models.Job) {
	printSummary(p.out, sum, jobs)
}

// printSummary prints the final tally and each failed job's cause.
func printSummary(out io.Writer, sum models.Summary, jobs []models.Job) {
	fmt.Fprintf(out, "\nSession %s: %s\n", sum.SessionID, sum.Outcome)
	fmt.Fprintf(out, "  Succeeded: %d  Failed: %d  Cancelled: %d  Total: %d\n",
		sum.Succeeded, sum.Failed, sum.Cancelled, sum.Total)
	for _, j := range jobs {
		if j.Status == consts.JobFailed {
			fmt.Fprintf(out, "  Failed: %s (%s)\n", j.Label(), j.LastError)
		}
	}
	if sum.Err != "" {
		fmt.Fprintf(out, "  Error: %s\n", sum.Err)
	}
}

// formatBytes renders n in binary units.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%dB", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit && exp < 4; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f%ciB", float64(n)/float64(div), "KMGTP"[exp])
}
