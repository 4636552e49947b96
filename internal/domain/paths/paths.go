// Package paths initializes tubegrab's filepaths and directories.
package paths

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"tubegrab/internal/domain/consts"
)

const (
	tDir         = ".tubegrab"
	tDBFile      = "tubegrab.db"
	tLogFile     = "tubegrab.log"
	tSettingFile = "settings.json"
	tCookieFile  = "cookies.txt"
)

// File and directory path strings.
var (
	HomeTubegrabDir  string
	DBFilePath       string
	LogFilePath      string
	SettingsFilePath string
	CookieFilePath   string
)

// InitProgFilesDirs initializes necessary program directories and filepaths.
func InitProgFilesDirs() error {
	userHomeDir, err := os.UserHomeDir()
	if err != nil {
		return errors.New("failed to get home directory")
	}
	return InitProgFilesDirsAt(filepath.Join(userHomeDir, tDir))
}

// InitProgFilesDirsAt initializes the program files under dir.
func InitProgFilesDirsAt(dir string) error {
	HomeTubegrabDir = dir
	if _, err := os.Stat(HomeTubegrabDir); os.IsNotExist(err) {
		if err := os.MkdirAll(HomeTubegrabDir, consts.PermsHomeProgDir); err != nil {
			return fmt.Errorf("failed to make directories: %w", err)
		}
	}

	// Main files
	DBFilePath = filepath.Join(HomeTubegrabDir, tDBFile)
	LogFilePath = filepath.Join(HomeTubegrabDir, tLogFile)
	SettingsFilePath = filepath.Join(HomeTubegrabDir, tSettingFile)
	CookieFilePath = filepath.Join(HomeTubegrabDir, tCookieFile)
	return nil
}
