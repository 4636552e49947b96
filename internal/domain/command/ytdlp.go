// Package command holds yt-dlp command-line flags.
package command

// General
const (
	AfterMove          = "after_move:" + OutputPathMarker + "%(filepath)s"
	CookiesFromBrowser = "--cookies-from-browser"
	CookiePath         = "--cookies"
	FilenameSyntax     = "%(title)s.%(ext)s"
	Newline            = "--newline"
	NoColors           = "--no-colors"
	Output             = "-o"
	Paths              = "-P"
	Print              = "--print"
	RestrictFilenames  = "--restrict-filenames"
	YTDLP              = "yt-dlp"
	FFMPEG             = "ffmpeg"
)

// Format selection
const (
	Format              = "-f"
	MergeOutputFormat   = "--merge-output-format"
	RemuxVideo          = "--remux-video"
	ExtractAudio        = "-x"
	AudioFormat         = "--audio-format"
	AudioQuality        = "--audio-quality"
	AudioQualityHighest = "0"
)

// Progress reporting
const (
	Progress         = "--progress"
	ProgressTemplate = "--progress-template"
	ProgressMarker   = "[tubegrab] "
	ProgressLine     = "download:" + ProgressMarker + "%(progress)j"
	PostProcessLine  = "postprocess:" + ProgressMarker + "%(progress)j"
	OutputPathMarker = "[tubegrab:file] "
)

// Scrape
const (
	YtDLPFlatPlaylist = "--flat-playlist"
	OutputJSON        = "-J"
	PlaylistEnd       = "--playlist-end"
	NoWarnings        = "--no-warnings"
)

// Output line prefixes which signal post-processing.
var PostProcessPrefixes = []string{
	"[Merger]",
	"[ExtractAudio]",
	"[VideoRemuxer]",
	"[VideoConvertor]",
	"[FixupM3u8]",
	"[FixupM4a]",
}
