package telemetry

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

// InitSlog installs the default logger: colored output for an interactive
// terminal, JSON lines otherwise (cron, CI, log shippers).
func InitSlog(verbose bool) {
	slog.SetDefault(slog.New(newHandler(os.Stderr, verbose)))
}

func newHandler(out *os.File, verbose bool) slog.Handler {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	if isatty.IsTerminal(out.Fd()) || isatty.IsCygwinTerminal(out.Fd()) {
		return tint.NewHandler(out, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	}
	return jsonHandler(out, level)
}

func jsonHandler(out io.Writer, level slog.Level) slog.Handler {
	return slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})
}
