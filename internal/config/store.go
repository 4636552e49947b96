// Package config loads and saves the persisted user preferences.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"tubegrab/internal/domain/consts"
	"tubegrab/internal/domain/keys"
	"tubegrab/internal/domain/logger"
	"tubegrab/internal/models"

	"github.com/spf13/viper"
)

const docType = "json"

// Store reads and writes the settings document at a fixed path.
type Store struct {
	path     string
	defaults models.SessionConfig
}

// NewStore returns a store for the document at path.
func NewStore(path string, defaults models.SessionConfig) *Store {
	return &Store{path: path, defaults: defaults}
}

// Defaults returns the built-in preferences.
func Defaults() models.SessionConfig {
	dir := "."
	if home, err := os.UserHomeDir(); err == nil {
		dir = filepath.Join(home, "Downloads")
	}
	return models.SessionConfig{
		DownloadPath:   dir,
		DefaultQuality: models.Best(),
		DefaultFormat:  models.FormatMP4,
	}
}

// Path returns the document location.
func (s *Store) Path() string {
	return s.path
}

// Load returns the stored preferences.
//
// It never fails: a missing or unreadable document yields the defaults, and
// each missing or invalid key falls back to its default individually.
func (s *Store) Load() models.SessionConfig {
	cfg := s.defaults

	v := viper.New()
	v.SetConfigFile(s.path)
	v.SetConfigType(docType)
	if err := v.ReadInConfig(); err != nil {
		var pathErr *os.PathError
		if errors.As(err, &pathErr) && errors.Is(pathErr, os.ErrNotExist) {
			logger.Pl.D(1, "No settings file at %q, using defaults", s.path)
		} else {
			logger.Pl.W("Could not read settings file %q, using defaults: %v", s.path, err)
		}
		return cfg
	}

	if p, ok := v.Get(keys.DocDownloadPath).(string); ok && strings.TrimSpace(p) != "" {
		cfg.DownloadPath = p
	} else if v.IsSet(keys.DocDownloadPath) {
		logger.Pl.W("Ignoring invalid %s in %q", keys.DocDownloadPath, s.path)
	}

	if raw, ok := v.Get(keys.DocDefaultQuality).(string); ok {
		if q, err := models.ParseQuality(raw); err == nil {
			cfg.DefaultQuality = q
		} else {
			logger.Pl.W("Ignoring %s in %q: %v", keys.DocDefaultQuality, s.path, err)
		}
	}

	if raw, ok := v.Get(keys.DocDefaultFormat).(string); ok {
		if f, err := models.ParseFormat(raw); err == nil {
			cfg.DefaultFormat = f
		} else {
			logger.Pl.W("Ignoring %s in %q: %v", keys.DocDefaultFormat, s.path, err)
		}
	}
	return cfg
}

// Save validates cfg and atomically replaces the document with it.
func (s *Store) Save(cfg models.SessionConfig) error {
	if err := Validate(cfg); err != nil {
		return err
	}

	v := viper.New()
	v.Set(keys.DocDownloadPath, cfg.DownloadPath)
	v.Set(keys.DocDefaultQuality, cfg.DefaultQuality.String())
	v.Set(keys.DocDefaultFormat, string(cfg.DefaultFormat))

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, consts.PermsHomeProgDir); err != nil {
		return fmt.Errorf("failed to create settings directory %q: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".settings-*."+docType)
	if err != nil {
		return fmt.Errorf("failed to create temp settings file: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpPath)
		}
	}()
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := v.WriteConfigAs(tmpPath); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := syncFile(tmpPath); err != nil {
		return err
	}
	if err := os.Chmod(tmpPath, consts.PermsConfigFile); err != nil {
		return fmt.Errorf("failed to set settings permissions: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("failed to replace settings file %q: %w", s.path, err)
	}
	committed = true
	logger.Pl.D(2, "Saved settings to %q", s.path)
	return nil
}

// Validate reports whether cfg can be saved.
func Validate(cfg models.SessionConfig) error {
	if strings.TrimSpace(cfg.DownloadPath) == "" {
		return errors.New("download path is empty")
	}
	if !cfg.DefaultQuality.Valid() {
		return fmt.Errorf("%w: %v", models.ErrInvalidQuality, cfg.DefaultQuality)
	}
	if !cfg.DefaultFormat.Valid() {
		return fmt.Errorf("%w: %q", models.ErrInvalidFormat, cfg.DefaultFormat)
	}
	return nil
}

func syncFile(path string) error {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("failed to open %q for sync: %w", path, err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to sync %q: %w", path, err)
	}
	return f.Close()
}
