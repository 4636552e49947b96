package cfg

import (
	"strings"

	"tubegrab/internal/domain/keys"
	"tubegrab/internal/models"

	"github.com/spf13/pflag"
)

// qualityValue is a pflag.Value accepting best, audio or a capped height.
type qualityValue struct {
	q   models.Quality
	set bool
}

var _ pflag.Value = (*qualityValue)(nil)

func (qv *qualityValue) String() string {
	if !qv.set {
		return ""
	}
	return qv.q.String()
}

func (qv *qualityValue) Set(s string) error {
	q, err := models.ParseQuality(s)
	if err != nil {
		return err
	}
	qv.q, qv.set = q, true
	return nil
}

func (qv *qualityValue) Type() string {
	return "quality"
}

// formatValue is a pflag.Value accepting the supported container formats.
type formatValue struct {
	f models.Format
}

var _ pflag.Value = (*formatValue)(nil)

func (fv *formatValue) String() string {
	return string(fv.f)
}

func (fv *formatValue) Set(s string) error {
	f, err := models.ParseFormat(s)
	if err != nil {
		return err
	}
	fv.f = f
	return nil
}

func (fv *formatValue) Type() string {
	return "format"
}

func qualityUsage() string {
	var names []string
	for _, q := range models.QualityChoices() {
		names = append(names, q.String())
	}
	return "Quality (" + strings.Join(names, ", ") + ")"
}

func formatUsage() string {
	var names []string
	for _, f := range models.FormatChoices() {
		names = append(names, string(f))
	}
	return "Output format (" + strings.Join(names, ", ") + ")"
}

// addSettingFlags adds the flags overriding the persisted settings.
func addSettingFlags(fs *pflag.FlagSet) {
	fs.StringP(keys.DownloadDir, "d", "", "Download directory (defaults to the saved setting)")
	fs.VarP(new(qualityValue), keys.Quality, "q", qualityUsage())
	fs.VarP(new(formatValue), keys.Format, "f", formatUsage())
}
