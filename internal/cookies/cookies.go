// Package cookies exports browser cookies into a file yt-dlp can read.
package cookies

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"tubegrab/internal/domain/consts"
	"tubegrab/internal/domain/logger"

	"github.com/browserutils/kooky"
	// Use all browsers for Kooky:
	_ "github.com/browserutils/kooky/browser/all"
	"golang.org/x/net/publicsuffix"
)

// Reader returns the cookies stored for a registrable domain.
type Reader func(ctx context.Context, domain string) ([]*http.Cookie, error)

// BrowserReader reads valid cookies for domain from every browser kooky can find.
func BrowserReader(ctx context.Context, domain string) ([]*http.Cookie, error) {
	kookyCookies, err := kooky.ReadCookies(ctx, kooky.Valid, kooky.Domain(domain))
	if err != nil && len(kookyCookies) == 0 {
		return nil, fmt.Errorf("failed reading browser cookies for %s: %w", domain, err)
	}
	if err != nil {
		logger.Pl.D(2, "Some cookie stores could not be read: %v", err)
	}
	return convertToHTTPCookies(kookyCookies), nil
}

// Export reads cookies for the site of rawURL and writes them to path.
//
// It returns the number of cookies written. When none are found no file is
// written and zero is returned.
func Export(ctx context.Context, read Reader, rawURL, path string) (int, error) {
	domain, err := baseDomain(rawURL)
	if err != nil {
		return 0, fmt.Errorf("error extracting base domain in cookie grab: %w", err)
	}

	found, err := read(ctx, domain)
	if err != nil {
		return 0, err
	}
	found = dedupe(found)
	if len(found) == 0 {
		logger.Pl.I("No cookies found for %s", domain)
		return 0, nil
	}
	logger.Pl.I("Found %d cookies for %s", len(found), domain)

	if err := writeFile(path, found, domain); err != nil {
		return 0, err
	}
	return len(found), nil
}

// WriteNetscape writes cookies in the Netscape cookies.txt format.
//
// Cookies without a domain are attributed to fallbackDomain.
func WriteNetscape(w io.Writer, cookies []*http.Cookie, fallbackDomain string) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString("# Netscape HTTP Cookie File\n# This is a generated file! Do not edit.\n\n"); err != nil {
		return err
	}

	for _, c := range cookies {
		domain := c.Domain
		if domain == "" {
			domain = fallbackDomain
		}
		subdomains := "FALSE"
		if strings.HasPrefix(domain, ".") {
			subdomains = "TRUE"
		}
		if c.HttpOnly {
			domain = "#HttpOnly_" + domain
		}

		path := c.Path
		if path == "" {
			path = "/"
		}

		secure := "FALSE"
		if c.Secure {
			secure = "TRUE"
		}

		// Zero means session cookie
		expires := int64(0)
		if !c.Expires.IsZero() {
			expires = c.Expires.Unix()
		}

		if _, err := fmt.Fprintf(bw, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			domain, subdomains, path, secure, expires, c.Name, c.Value); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// writeFile writes the cookie file atomically with owner-only permissions.
func writeFile(path string, cookies []*http.Cookie, fallbackDomain string) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, consts.PermsHomeProgDir); err != nil {
		return fmt.Errorf("failed to create cookie directory %q: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".cookies-*.txt")
	if err != nil {
		return fmt.Errorf("failed to create temporary cookie file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if err := tmp.Chmod(consts.PermsCookieFile); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to set cookie file permissions: %w", err)
	}
	if err := WriteNetscape(tmp, cookies, fallbackDomain); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write cookies: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close cookie file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move cookie file into place: %w", err)
	}
	logger.Pl.D(1, "Saved %d cookies to file %s", len(cookies), path)
	return nil
}

// dedupe keeps the last cookie for each domain, path and name, sorted for stable output.
func dedupe(cookies []*http.Cookie) []*http.Cookie {
	cookieMap := make(map[string]*http.Cookie, len(cookies))
	for _, c := range cookies {
		if c == nil || c.Name == "" {
			continue
		}
		key := c.Domain + "|" + c.Path + "|" + c.Name
		cookieMap[key] = c
	}

	merged := make([]*http.Cookie, 0, len(cookieMap))
	for _, c := range cookieMap {
		merged = append(merged, c)
	}
	sort.Slice(merged, func(i, j int) bool {
		a, b := merged[i], merged[j]
		if a.Domain != b.Domain {
			return a.Domain < b.Domain
		}
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		return a.Name < b.Name
	})
	return merged
}

// convertToHTTPCookies converts kooky cookies to http.Cookie format.
func convertToHTTPCookies(kookyCookies []*kooky.Cookie) []*http.Cookie {
	httpCookies := make([]*http.Cookie, 0, len(kookyCookies))
	for _, c := range kookyCookies {
		if c == nil {
			continue
		}
		httpCookies = append(httpCookies, &http.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Path:     c.Path,
			Domain:   c.Domain,
			Expires:  c.Expires,
			Secure:   c.Secure,
			HttpOnly: c.HttpOnly,
		})
	}
	return httpCookies
}

// baseDomain returns the registrable domain of a URL.
func baseDomain(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	host := u.Hostname()
	if host == "" {
		return "", fmt.Errorf("no host in %q", rawURL)
	}
	if d, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return d, nil
	}
	return host, nil
}
