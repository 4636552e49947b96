package models

import (
	"fmt"
	"slices"
	"strings"
)

// Format is the requested output container.
type Format string

// Output formats.
const (
	FormatMP4  Format = "MP4"
	FormatMKV  Format = "MKV"
	FormatWebM Format = "WebM"
	FormatMP3  Format = "MP3"
)

// FormatChoices lists every valid format in display order.
func FormatChoices() []Format {
	return []Format{FormatMP4, FormatMKV, FormatWebM, FormatMP3}
}

// ParseFormat parses a format name case-insensitively.
func ParseFormat(s string) (Format, error) {
	for _, f := range FormatChoices() {
		if strings.EqualFold(strings.TrimSpace(s), string(f)) {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidFormat, s)
}

// Valid reports whether f is one of the canonical format values.
func (f Format) Valid() bool {
	return slices.Contains(FormatChoices(), f)
}

// Ext returns the file extension for f, without a dot.
func (f Format) Ext() string {
	return strings.ToLower(string(f))
}

// IsAudio reports whether f is an audio-only container.
func (f Format) IsAudio() bool {
	return f == FormatMP3
}

// EffectiveQuality returns the quality a job actually downloads at.
//
// MP3 always forces AudioOnly.
func EffectiveQuality(q Quality, f Format) Quality {
	if f.IsAudio() {
		return AudioOnly()
	}
	return q
}
