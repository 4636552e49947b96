package downloads

import (
	"strconv"

	"tubegrab/internal/domain/command"
	"tubegrab/internal/models"
)

// FormatArgs returns the format selection and post-processing flags for a job.
//
// MP3 forces audio-only extraction whatever quality was requested, so every
// MP3 job yields the same flags.
func FormatArgs(q models.Quality, f models.Format) []string {
	q = models.EffectiveQuality(q, f)

	if q.Mode == models.QualityAudioOnly {
		args := []string{command.Format, "ba/b", command.ExtractAudio, command.AudioFormat, audioCodec(f)}
		if f == models.FormatMP3 {
			args = append(args, command.AudioQuality, command.AudioQualityHighest)
		}
		return args
	}

	ext := f.Ext()
	return []string{
		command.Format, videoSelector(q, f),
		command.MergeOutputFormat, ext,
		command.RemuxVideo, ext,
	}
}

// videoSelector builds a yt-dlp -f expression, preferring native streams for the container.
func videoSelector(q models.Quality, f models.Format) string {
	var limit string
	if q.Mode == models.QualityCap {
		limit = "[height<=" + strconv.Itoa(q.MaxHeight) + "]"
	}

	generic := "bv*" + limit + "+ba/b" + limit
	switch f {
	case models.FormatMP4:
		return "bv*" + limit + "[ext=mp4]+ba[ext=m4a]/" + generic
	case models.FormatWebM:
		return "bv*" + limit + "[ext=webm]+ba[ext=webm]/" + generic
	default:
		return generic
	}
}

// audioCodec maps a container to the codec used for audio-only jobs.
func audioCodec(f models.Format) string {
	switch f {
	case models.FormatMP3:
		return "mp3"
	case models.FormatMP4:
		return "m4a"
	case models.FormatWebM:
		return "opus"
	default:
		return "best"
	}
}

// BuildArgs returns the full yt-dlp argument list for a job.
func (y *YTDLP) BuildArgs(job models.Job) []string {
	args := make([]string, 0, 32)

	args = append(args,
		command.Newline,
		command.NoColors,
		command.Progress,
		command.ProgressTemplate, command.ProgressLine,
		command.ProgressTemplate, command.PostProcessLine,
		command.Print, command.AfterMove,
	)

	if y.cfg.RestrictFilenames {
		args = append(args, command.RestrictFilenames)
	}

	// Output location
	if job.Directory != "" {
		args = append(args, command.Paths, job.Directory)
	}
	args = append(args, command.Output, y.cfg.FilenameTemplate)

	// Cookies
	switch {
	case y.cfg.CookieFile != "":
		args = append(args, command.CookiePath, y.cfg.CookieFile)
	case y.cfg.CookiesFromBrowser != "":
		args = append(args, command.CookiesFromBrowser, y.cfg.CookiesFromBrowser)
	}

	args = append(args, FormatArgs(job.Quality, job.Format)...)

	// Target URL [ MUST GO LAST ]
	return append(args, "--", jobTarget(job))
}

func jobTarget(job models.Job) string {
	if job.URL != "" {
		return job.URL
	}
	return job.ItemID
}
