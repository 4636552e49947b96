package cfg

import (
	"fmt"
	"io"
	"sync"

	"tubegrab/internal/domain/consts"
	"tubegrab/internal/domain/logger"
	"tubegrab/internal/models"
	"tubegrab/internal/playlist"
	"tubegrab/internal/session"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// barView draws one progress bar per job.
type barView struct {
	out   io.Writer
	p     *mpb.Progress
	jobs  map[int]models.Job
	bars  map[int]*jobBar
	total int
}

// jobBar is a job's bar and the last event its status decorator shows.
type jobBar struct {
	bar *mpb.Bar

	mu sync.Mutex
	ev models.ProgressEvent
}

func newBarView(out io.Writer) *barView {
	return &barView{
		out:  out,
		p:    mpb.New(mpb.WithOutput(out), mpb.WithWidth(64), mpb.WithAutoRefresh()),
		jobs: make(map[int]models.Job),
		bars: make(map[int]*jobBar),
	}
}

func (v *barView) update(u session.Update) {
	switch u.Kind {
	case session.UpdateJob:
		if _, ok := v.jobs[u.Job.ID]; !ok {
			v.total++
		}
		v.jobs[u.Job.ID] = u.Job
		v.settle(u.Job)
	case session.UpdateProgress:
		v.progress(u.Event)
	}
}

func (v *barView) progress(ev models.ProgressEvent) {
	jb := v.bar(ev.JobID)
	if jb == nil {
		return
	}
	jb.mu.Lock()
	jb.ev = ev
	jb.mu.Unlock()

	if ev.Phase != consts.PhaseDownloading {
		return
	}
	if ev.BytesTotal > 0 {
		jb.bar.SetTotal(ev.BytesTotal, false)
	}
	jb.bar.SetCurrent(ev.BytesDone)
}

// settle completes or aborts the bar of a job in a terminal status.
func (v *barView) settle(j models.Job) {
	switch j.Status {
	case consts.JobSucceeded:
		if jb := v.bar(j.ID); jb != nil {
			jb.bar.SetTotal(-1, true)
		}
	case consts.JobFailed, consts.JobCancelled:
		if jb, ok := v.bars[j.ID]; ok {
			jb.bar.Abort(false)
		}
	}
}

// bar returns the job's bar, adding it on first use.
func (v *barView) bar(jobID int) *jobBar {
	if jb, ok := v.bars[jobID]; ok {
		return jb
	}
	jb := &jobBar{}
	b, err := v.p.New(0, mpb.BarStyle(),
		mpb.BarPriority(jobID),
		mpb.PrependDecorators(
			decor.Name(v.label(jobID), decor.WCSyncSpaceR),
		),
		mpb.AppendDecorators(
			decor.OnAbort(decor.OnComplete(decor.CountersKibiByte("% .1f / % .1f", decor.WCSyncSpace), "done"), "stopped"),
			decor.OnAbort(decor.OnComplete(decor.Percentage(decor.WCSyncSpace), ""), ""),
			decor.Any(jb.status, decor.WCSyncSpace),
		),
	)
	if err != nil {
		logger.Pl.D(2, "No progress bar for job %d: %v", jobID, err)
		return nil
	}
	jb.bar = b
	v.bars[jobID] = jb
	return jb
}

// status shows the reported speed and ETA, or the post-processing phase.
func (jb *jobBar) status(st decor.Statistics) string {
	if st.Completed || st.Aborted {
		return ""
	}
	jb.mu.Lock()
	ev := jb.ev
	jb.mu.Unlock()

	switch ev.Phase {
	case consts.PhaseMerging:
		return "post-processing"
	case consts.PhaseResolving:
		return "starting"
	}
	var s string
	if ev.SpeedBps > 0 {
		s = formatBytes(int64(ev.SpeedBps)) + "/s"
	}
	if ev.ETA > 0 {
		s += " ETA " + playlist.FormatDuration(ev.ETA.Seconds())
	}
	return s
}

func (v *barView) label(jobID int) string {
	j, ok := v.jobs[jobID]
	if !ok {
		return fmt.Sprintf("[%d]", jobID)
	}
	return fmt.Sprintf("[%d/%d] %s", jobID, v.total, j.Label())
}

// summary stops the remaining bars, waits for the last render and prints the tally.
func (v *barView) summary(sum models.Summary, jobs []models.Job) {
	for _, jb := range v.bars {
		jb.bar.Abort(false)
	}
	v.p.Wait()
	printSummary(v.out, sum, jobs)
}
