// Package cmd contains the command-line entry points for the portfolio
// backend. main.go stays a minimal shim; all initialization, flag handling
// and command routing lives here.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/maximotodev/portfolio-api/internal/log"
)

// Version information (injected at build time via ldflags).
var (
	AppVersion = "0.1.0"
	BuildTime  = "unknown"
	GitCommit  = "unknown"
)

// Execute is the main entry point for the portfolio-api binary.
//
// Usage:
//
//	portfolio-api              Start the HTTP API server (default)
//	portfolio-api serve        Same as above
//	portfolio-api version      Show version information
func Execute() error {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "version", "--version", "-v":
			printVersion()
			return nil
		case "help", "--help", "-h":
			printHelp()
			return nil
		case "serve":
			// Fall through to the default below.
		default:
			printHelp()
			return fmt.Errorf("unknown command %q", os.Args[1])
		}
	}

	logger := initLogger()
	slog.SetDefault(logger)

	return runServe(logger)
}

// initLogger builds the process-wide structured logger.
// DEBUG=1 (or any non-empty value) enables debug-level logging;
// LOG_JSON enables JSON output for log aggregation.
func initLogger() log.Logger {
	cfg := log.Config{Level: slog.LevelInfo}
	if os.Getenv("DEBUG") != "" {
		cfg.Level = slog.LevelDebug
	}
	if os.Getenv("LOG_JSON") != "" {
		cfg.JSON = true
	}
	return log.New(cfg)
}

func printVersion() {
	fmt.Printf("portfolio-api v%s\n", AppVersion)
	fmt.Printf("Build: %s\n", BuildTime)
	fmt.Printf("Commit: %s\n", GitCommit)
}

func printHelp() {
	fmt.Println("portfolio-api - personal portfolio backend with an AI career assistant")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  portfolio-api [serve]    Start the HTTP API server (default)")
	fmt.Println("  portfolio-api version    Show version information")
	fmt.Println("  portfolio-api help       Show this help")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  GEMINI_API_KEY     Gemini API key (required for the gemini provider)")
	fmt.Println("  DATABASE_URL       postgres:// connection URL (overrides postgres_* config)")
	fmt.Println("  GITHUB_API_TOKEN   Optional: raises the GitHub API rate limit")
	fmt.Println("  DEBUG              Optional: enable debug logging")
}
