package cookies

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestWriteNetscape checks the field layout of each cookie line.
func TestWriteNetscape(t *testing.T) {
	t.Parallel()
	exp := time.Unix(1900000000, 0)
	cookies := []*http.Cookie{
		{Name: "SID", Value: "abc", Domain: ".example.com", Path: "/", Secure: true, Expires: exp},
		{Name: "pref", Value: "x=1", Domain: "www.example.com", HttpOnly: true},
		{Name: "bare", Value: "v"},
	}

	var buf bytes.Buffer
	if err := WriteNetscape(&buf, cookies, "example.com"); err != nil {
		t.Fatalf("WriteNetscape: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "# Netscape HTTP Cookie File\n") {
		t.Fatalf("missing header: %q", out)
	}

	want := []string{
		".example.com\tTRUE\t/\tTRUE\t1900000000\tSID\tabc\n",
		"#HttpOnly_www.example.com\tFALSE\t/\tFALSE\t0\tpref\tx=1\n",
		"example.com\tFALSE\t/\tFALSE\t0\tbare\tv\n",
	}
	for _, w := range want {
		if !strings.Contains(out, w) {
			t.Errorf("output missing line %q\n%s", w, out)
		}
	}
}

// TestExport checks cookies for the URL's registrable domain are written once each with private permissions.
func TestExport(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "cookies.txt")

	var asked string
	read := func(_ context.Context, domain string) ([]*http.Cookie, error) {
		asked = domain
		return []*http.Cookie{
			{Name: "a", Value: "1", Domain: ".youtube.com", Path: "/"},
			{Name: "a", Value: "2", Domain: ".youtube.com", Path: "/"},
			{Name: "b", Value: "3", Domain: ".youtube.com", Path: "/"},
		}, nil
	}

	n, err := Export(context.Background(), read, "https://music.youtube.com/watch?v=x", path)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if asked != "youtube.com" {
		t.Errorf("asked for domain %q, want youtube.com", asked)
	}
	if n != 2 {
		t.Fatalf("wrote %d cookies, want 2", n)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), "\ta\t2\n") || strings.Contains(string(data), "\ta\t1\n") {
		t.Errorf("later duplicate should win:\n%s", data)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("perm = %o, want 600", perm)
	}
}

// TestExportNone checks no file is written when the browser has nothing for the site.
func TestExportNone(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "cookies.txt")
	read := func(context.Context, string) ([]*http.Cookie, error) { return nil, nil }

	n, err := Export(context.Background(), read, "https://example.com/v", path)
	if err != nil || n != 0 {
		t.Fatalf("Export = %d, %v", n, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected no file, stat err = %v", err)
	}
}

// TestExportErrors checks bad URLs and reader failures are reported.
func TestExportErrors(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "cookies.txt")
	boom := errors.New("locked")
	read := func(context.Context, string) ([]*http.Cookie, error) { return nil, boom }

	if _, err := Export(context.Background(), read, "not a url", path); err == nil {
		t.Error("expected error for URL without host")
	}
	if _, err := Export(context.Background(), read, "https://example.com", path); !errors.Is(err, boom) {
		t.Errorf("err = %v, want reader error", err)
	}
}
