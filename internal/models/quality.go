package models

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"tubegrab/internal/domain/consts"
)

// QualityMode is the kind of quality selection.
type QualityMode uint8

// Quality modes.
const (
	QualityBest QualityMode = iota
	QualityCap
	QualityAudioOnly
)

// Quality is the requested quality for a job.
//
// MaxHeight is only meaningful for QualityCap.
type Quality struct {
	Mode      QualityMode
	MaxHeight int
}

// Best selects the best available video and audio.
func Best() Quality { return Quality{Mode: QualityBest} }

// AudioOnly selects the audio stream alone.
func AudioOnly() Quality { return Quality{Mode: QualityAudioOnly} }

// CapResolution selects video no taller than h pixels.
func CapResolution(h int) (Quality, error) {
	if !slices.Contains(consts.CapHeights, h) {
		return Quality{}, fmt.Errorf("%w: unsupported height %d", ErrInvalidQuality, h)
	}
	return Quality{Mode: QualityCap, MaxHeight: h}, nil
}

// MustCap is CapResolution for known-good heights.
func MustCap(h int) Quality {
	q, err := CapResolution(h)
	if err != nil {
		panic(err)
	}
	return q
}

// ParseQuality parses the document form of a quality ("Best", "720p", "AudioOnly").
func ParseQuality(s string) (Quality, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch v {
	case "best":
		return Best(), nil
	case "audioonly", "audio_only", "audio-only", "audio":
		return AudioOnly(), nil
	}

	if h, ok := strings.CutSuffix(v, "p"); ok {
		if n, err := strconv.Atoi(h); err == nil {
			return CapResolution(n)
		}
	}
	return Quality{}, fmt.Errorf("%w: %q", ErrInvalidQuality, s)
}

// Valid reports whether q is one of the supported selections.
func (q Quality) Valid() bool {
	switch q.Mode {
	case QualityBest, QualityAudioOnly:
		return q.MaxHeight == 0
	case QualityCap:
		return slices.Contains(consts.CapHeights, q.MaxHeight)
	}
	return false
}

// String returns the document form of q.
func (q Quality) String() string {
	switch q.Mode {
	case QualityBest:
		return "Best"
	case QualityAudioOnly:
		return "AudioOnly"
	case QualityCap:
		return strconv.Itoa(q.MaxHeight) + "p"
	}
	return "Quality(" + strconv.Itoa(int(q.Mode)) + ")"
}

// QualityChoices lists every valid quality in display order.
func QualityChoices() []Quality {
	out := []Quality{Best()}
	for _, h := range consts.CapHeights {
		out = append(out, Quality{Mode: QualityCap, MaxHeight: h})
	}
	return append(out, AudioOnly())
}
