package downloads

import (
	"strings"

	"tubegrab/internal/models"
)

// Causes that will fail the same way on every attempt.
var permanentPatterns = []string{
	"unsupported url",
	"no suitable extractor",
	"is not a valid url",
	"available in your country",
	"geo restrict",
	"geo-restrict",
	"requested format is not available",
	"video unavailable",
	"private video",
	"this video is private",
	"has been removed",
	"members-only",
	"sign in to confirm your age",
	"age-restricted",
	"account associated with this video has been terminated",
	"copyright",
	"no video formats found",
	"permission denied",
	"no space left on device",
	"http error 404",
	"http error 410",
}

// Causes a retry could plausibly get past.
var transientPatterns = []string{
	"timed out",
	"timeout",
	"connection reset",
	"connection refused",
	"connection aborted",
	"broken pipe",
	"temporary failure in name resolution",
	"name or service not known",
	"network is unreachable",
	"unable to download webpage",
	"unable to download video data",
	"incompleteread",
	"incomplete read",
	"got server http error",
	"http error 429",
	"too many requests",
	"http error 500",
	"http error 502",
	"http error 503",
	"http error 504",
	"service unavailable",
	"fragment not found",
}

// Classify decides whether a failure cause is transient or permanent.
//
// Unrecognised causes are permanent.
func Classify(cause string) models.FaultKind {
	c := strings.ToLower(cause)
	for _, p := range permanentPatterns {
		if strings.Contains(c, p) {
			return models.FaultPermanent
		}
	}
	for _, p := range transientPatterns {
		if strings.Contains(c, p) {
			return models.FaultTransient
		}
	}
	return models.FaultPermanent
}

// stderrCollector keeps the ERROR lines and a bounded head of yt-dlp's stderr.
type stderrCollector struct {
	b       strings.Builder
	lastErr string
	limit   int
}

func (s *stderrCollector) add(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	if rest, ok := strings.CutPrefix(line, "ERROR:"); ok {
		s.lastErr = strings.TrimSpace(rest)
	}
	if s.b.Len() >= s.limit {
		return
	}
	toWrite := line + "\n"
	if remain := s.limit - s.b.Len(); len(toWrite) > remain {
		toWrite = toWrite[:remain]
	}
	s.b.WriteString(toWrite)
}

// cause returns the most useful description of the failure.
func (s *stderrCollector) cause(fallback string) string {
	if s.lastErr != "" {
		return s.lastErr
	}
	lines := strings.Split(strings.TrimSpace(s.b.String()), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" && !strings.HasPrefix(l, "WARNING:") {
			return l
		}
	}
	return fallback
}
