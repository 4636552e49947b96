package downloads

import (
	"encoding/json"
	"strings"
	"time"

	"tubegrab/internal/domain/command"
	"tubegrab/internal/domain/consts"
	"tubegrab/internal/models"
)

// progressInfo is the subset of yt-dlp's progress dictionary we read.
type progressInfo struct {
	Status        string   `json:"status"`
	Downloaded    *float64 `json:"downloaded_bytes"`
	Total         *float64 `json:"total_bytes"`
	TotalEstimate *float64 `json:"total_bytes_estimate"`
	Speed         *float64 `json:"speed"`
	ETA           *float64 `json:"eta"`
	FragmentIndex *float64 `json:"fragment_index"`
	FragmentCount *float64 `json:"fragment_count"`
	Postprocessor string   `json:"postprocessor"`
}

// lineKind is what a line of yt-dlp output turned out to be.
type lineKind int

const (
	lineOther lineKind = iota
	lineProgress
	lineOutputPath
)

// parseLine interprets one stdout line.
//
// Progress lines yield an event; the output path line yields the final file
// path in the returned string.
func parseLine(line string) (lineKind, models.ProgressEvent, string) {
	line = strings.TrimSpace(line)

	if rest, ok := strings.CutPrefix(line, command.OutputPathMarker); ok {
		return lineOutputPath, models.ProgressEvent{}, strings.TrimSpace(rest)
	}

	if rest, ok := strings.CutPrefix(line, command.ProgressMarker); ok {
		if ev, ok := parseProgressJSON(rest); ok {
			return lineProgress, ev, ""
		}
		return lineOther, models.ProgressEvent{}, ""
	}

	for _, p := range command.PostProcessPrefixes {
		if strings.HasPrefix(line, p) {
			return lineProgress, models.ProgressEvent{
				Phase:    consts.PhaseMerging,
				Fraction: models.Indeterminate,
				Message:  line,
			}, ""
		}
	}
	return lineOther, models.ProgressEvent{}, ""
}

// parseProgressJSON converts a progress template payload into an event.
func parseProgressJSON(payload string) (models.ProgressEvent, bool) {
	var p progressInfo
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return models.ProgressEvent{}, false
	}

	if p.Postprocessor != "" {
		return models.ProgressEvent{
			Phase:    consts.PhaseMerging,
			Fraction: models.Indeterminate,
			Message:  p.Postprocessor + " " + p.Status,
		}, true
	}

	ev := models.ProgressEvent{
		Phase:     consts.PhaseDownloading,
		BytesDone: toInt64(p.Downloaded),
		Fraction:  models.Indeterminate,
		SpeedBps:  toFloat(p.Speed),
	}
	if eta := toFloat(p.ETA); eta > 0 {
		ev.ETA = time.Duration(eta * float64(time.Second))
	}

	switch {
	case toInt64(p.Total) > 0:
		ev.BytesTotal = toInt64(p.Total)
	case toInt64(p.TotalEstimate) > 0:
		ev.BytesTotal = toInt64(p.TotalEstimate)
	}

	switch {
	case p.Status == "finished":
		ev.Fraction = 1
		if ev.BytesTotal == 0 {
			ev.BytesTotal = ev.BytesDone
		}
	case ev.BytesTotal > 0:
		ev.Fraction = clamp(float64(ev.BytesDone) / float64(ev.BytesTotal))
	case toFloat(p.FragmentCount) > 0:
		ev.Fraction = clamp(toFloat(p.FragmentIndex) / toFloat(p.FragmentCount))
	}
	return ev, true
}

func toFloat(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

func toInt64(f *float64) int64 {
	return int64(toFloat(f))
}

func clamp(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}
