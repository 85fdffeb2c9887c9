package telemetry

import (
	"log/slog"
	"os"
)

// InitSlog installs the default slog logger, writing text to stderr so it
// never mixes with command output.
func InitSlog(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:     level,
		AddSource: verbose,
	})
	slog.SetDefault(slog.New(handler))
}
