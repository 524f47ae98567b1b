package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Setup installs a JSON slog handler on stdout as the process-wide default.
func Setup(level string) {
	slog.SetDefault(New(os.Stdout, level))
}

func New(w io.Writer, level string) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(level),
	})
	return slog.New(handler).With("service", "emergency-assist")
}

func ParseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func Fatalf(format string, args ...any) {
	slog.Error(fmt.Sprintf(format, args...))
	os.Exit(1)
}
