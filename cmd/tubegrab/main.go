// Package main is the entrypoint of Tubegrab.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tubegrab/internal/cfg"
	"tubegrab/internal/config"
	"tubegrab/internal/database"
	"tubegrab/internal/domain/logger"
	"tubegrab/internal/domain/paths"
	"tubegrab/internal/repo"
	"tubegrab/internal/utils/logging"
)

// main is the main entrypoint of the program.
func main() {
	os.Exit(run())
}

func run() int {
	startTime := time.Now()

	if err := paths.InitProgFilesDirs(); err != nil {
		fmt.Fprintf(os.Stderr, "Tubegrab exiting with error: %v\n", err)
		return 1
	}

	// Setup Tubegrab logging
	logConfig := logging.LoggingConfig{
		LogFilePath: paths.LogFilePath,
		MaxSizeMB:   1,
		MaxBackups:  3,
		Console:     os.Stderr,
		Program:     "Tubegrab",
	}

	pl, err := logging.SetupLogging(logConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Notice: log file was not created: %v\n", err)
		pl = logging.New(os.Stderr, 0)
	}
	logger.Pl = pl
	defer func() {
		if err := pl.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to close log file: %v\n", err)
		}
	}()

	app, closeDB := initializeApplication()
	defer closeDB()

	// create cancellable context for shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// ---- INIT COMMANDS ----
	if err := cfg.InitCommands(ctx, app); err != nil {
		logger.Pl.E("Error: %v", err)
		return 1
	}

	// ---- RUN PROGRAM ----
	runErr := cfg.Execute()

	logger.Pl.D(1, "Time elapsed: %.2f seconds", time.Since(startTime).Seconds())
	if runErr != nil {
		logger.Pl.E("Error: %v", runErr)
		return 1
	}
	return 0
}

// initializeApplication opens the settings and history stores.
//
// History is optional: without a database downloads still run.
func initializeApplication() (*cfg.App, func()) {
	app := &cfg.App{
		Settings:   config.NewStore(paths.SettingsFilePath, config.Defaults()),
		CookieFile: paths.CookieFilePath,
	}

	db, err := database.InitDB(paths.DBFilePath)
	if err != nil {
		logger.Pl.W("History disabled, could not open database %q: %v", paths.DBFilePath, err)
		return app, func() {}
	}
	app.History = repo.GetHistoryStore(db.DB)

	return app, func() {
		if err := db.Close(); err != nil {
			logger.Pl.E("Failed to close database: %v", err)
		}
	}
}
