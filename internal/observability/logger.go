package observability

import (
	"log/slog"
	"os"
)

// NewLogger builds the process-wide JSON logger. Debug level outside prod
// would be noisy, so only dev gets it.
func NewLogger(env string) *slog.Logger {
	level := slog.LevelInfo

	if env == "dev" {
		level = slog.LevelDebug
	}

	json := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})

	logger := slog.New(NewTraceHandler(json))

	return logger.With("service", "bloghub")
}
