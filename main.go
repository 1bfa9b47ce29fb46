// Command tflineage parses Terraform, builds a module dependency graph and
// renders an interactive HTML visualization.
package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/zinrai/tflineage/internal/cli"
)

// logLevel reads TFLINEAGE_LOG_LEVEL, defaulting to info.
func logLevel() slog.Level {
	switch strings.ToLower(os.Getenv("TFLINEAGE_LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func main() {
	// Log to stderr so stdout stays clean for commands that output data.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(),
	})))

	if err := cli.NewRootCmd().Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}
