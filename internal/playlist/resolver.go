// Package playlist expands a URL into the ordered items to download.
package playlist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"

	"tubegrab/internal/domain/logger"
	"tubegrab/internal/downloads"
	"tubegrab/internal/models"

	"github.com/araddon/dateparse"
	"golang.org/x/net/publicsuffix"
)

// Resolver turns URLs into playlists using a metadata-only query.
type Resolver struct {
	prober      downloads.Prober
	playlistEnd int
}

// New returns a resolver. A playlistEnd above zero caps the number of entries read.
func New(prober downloads.Prober, playlistEnd int) *Resolver {
	return &Resolver{prober: prober, playlistEnd: playlistEnd}
}

// Resolve returns the items behind rawURL in source order.
//
// Every failure is a *models.ResolutionError.
func (r *Resolver) Resolve(ctx context.Context, rawURL string) (*models.Playlist, error) {
	u, err := ValidateURL(rawURL)
	if err != nil {
		return nil, &models.ResolutionError{URL: rawURL, Reason: "malformed URL", Err: err}
	}

	raw, err := r.prober.Probe(ctx, u.String(), r.playlistEnd)
	if err != nil {
		reason := "metadata query failed"
		var fe *models.FetchError
		if errors.As(err, &fe) {
			reason = fe.Cause
		}
		return nil, &models.ResolutionError{URL: rawURL, Reason: reason, Err: err}
	}

	p, err := Parse(raw, u.String())
	if err != nil {
		return nil, err
	}
	p.Source = SourceDomain(u)

	logger.Pl.D(1, "Resolved %q (%s) to %d item(s)", rawURL, p.Source, len(p.Items))
	return p, nil
}

// ValidateURL checks rawURL is an absolute http(s) URL with a host.
func ValidateURL(rawURL string) (*url.URL, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, errors.New("empty URL")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Hostname() == "" {
		return nil, errors.New("missing host")
	}
	return u, nil
}

// SourceDomain returns the registrable domain of u (e.g. "youtube.com" for "m.youtube.com").
func SourceDomain(u *url.URL) string {
	host := strings.ToLower(u.Hostname())
	if d, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return d
	}
	return host
}

// info is the subset of yt-dlp's JSON document we read.
type info struct {
	Type        string            `json:"_type"`
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	URL         string            `json:"url"`
	WebpageURL  string            `json:"webpage_url"`
	Duration    *float64          `json:"duration"`
	DurationStr string            `json:"duration_string"`
	UploadDate  string            `json:"upload_date"`
	Timestamp   *float64          `json:"timestamp"`
	Entries     []json.RawMessage `json:"entries"`
}

// Parse converts a flat-playlist document into a playlist.
//
// Null and id-less entries are skipped. Duplicate IDs are kept.
func Parse(raw []byte, inputURL string) (*models.Playlist, error) {
	var doc info
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, &models.ResolutionError{URL: inputURL, Reason: "unreadable metadata", Err: err}
	}

	p := &models.Playlist{
		ID:    doc.ID,
		Title: doc.Title,
		URL:   firstNonEmpty(doc.WebpageURL, inputURL),
	}

	switch doc.Type {
	case "playlist", "multi_video":
		p.IsPlaylist = true
		for i, rawEntry := range doc.Entries {
			var e info
			if err := json.Unmarshal(rawEntry, &e); err != nil {
				logger.Pl.W("Skipping unreadable entry %d of %q: %v", i+1, inputURL, err)
				continue
			}
			if e.ID == "" {
				logger.Pl.D(2, "Skipping entry %d of %q without an ID", i+1, inputURL)
				continue
			}
			p.Items = append(p.Items, toItem(e, ""))
		}
	default:
		if doc.ID != "" {
			p.Items = []models.Item{toItem(doc, inputURL)}
		}
	}

	if len(p.Items) == 0 {
		return nil, &models.ResolutionError{URL: inputURL, Reason: "no downloadable items found"}
	}
	return p, nil
}

func toItem(e info, fallbackURL string) models.Item {
	it := models.Item{
		ID:       e.ID,
		Title:    firstNonEmpty(e.Title, e.ID),
		URL:      firstNonEmpty(e.WebpageURL, e.URL, fallbackURL),
		Duration: e.DurationStr,
	}
	if it.Duration == "" && e.Duration != nil {
		it.Duration = FormatDuration(*e.Duration)
	}

	if e.UploadDate != "" {
		if t, err := dateparse.ParseIn(e.UploadDate, time.UTC); err == nil {
			it.UploadDate = t
		}
	} else if e.Timestamp != nil {
		it.UploadDate = time.Unix(int64(*e.Timestamp), 0).UTC()
	}
	return it
}

// FormatDuration renders seconds as H:MM:SS or M:SS.
func FormatDuration(seconds float64) string {
	if seconds <= 0 || math.IsNaN(seconds) {
		return ""
	}
	total := int(math.Round(seconds))
	h, m, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
