package downloads

import (
	"context"
	"os/exec"
	"strings"

	"tubegrab/internal/domain/command"
)

// Dependency is the install state of one external program.
type Dependency struct {
	Name    string
	Path    string
	Version string
	Found   bool
}

// DependencyStatus reports whether yt-dlp and ffmpeg are installed.
func DependencyStatus(ctx context.Context, ytdlpBinary string) []Dependency {
	if ytdlpBinary == "" {
		ytdlpBinary = command.YTDLP
	}
	return []Dependency{
		lookup(ctx, ytdlpBinary, "--version"),
		lookup(ctx, command.FFMPEG, "-version"),
	}
}

func lookup(ctx context.Context, name, versionFlag string) Dependency {
	d := Dependency{Name: name}
	path, err := exec.LookPath(name)
	if err != nil {
		return d
	}
	d.Path = path
	d.Found = true

	out, err := exec.CommandContext(ctx, path, versionFlag).Output()
	if err == nil {
		first, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
		d.Version = strings.TrimSpace(first)
	}
	return d
}

// MissingDependencies returns the names of programs not found.
func MissingDependencies(deps []Dependency) []string {
	var out []string
	for _, d := range deps {
		if !d.Found {
			out = append(out, d.Name)
		}
	}
	return out
}
