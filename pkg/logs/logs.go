package logs

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/Alijeyrad/salon_storefront/config"
)

// New builds the process logger from config. Stdout and the rotating file
// share one handler.
func New(cfg *config.Config) *slog.Logger {
	return slog.New(NewHandler(cfg, writersFor(cfg.Logging))).With(
		slog.String("service", cfg.Observability.ServiceName),
		slog.String("version", cfg.Observability.ServiceVersion),
		slog.String("env", cfg.Server.Environment),
	)
}

// NewHandler picks JSON or text output. Text is only used in development
// and only when asked for.
func NewHandler(cfg *config.Config, w io.Writer) slog.Handler {
	isDev := strings.EqualFold(cfg.Server.Environment, "development")
	opts := &slog.HandlerOptions{
		Level:     ParseLevel(cfg.Logging.Level),
		AddSource: isDev,
	}
	if isDev && strings.EqualFold(cfg.Logging.Format, "text") {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}

func writersFor(lc config.LoggingConfig) io.Writer {
	var writers []io.Writer

	if lc.Output.Stdout || !lc.Output.File.Enabled {
		writers = append(writers, os.Stdout)
	}

	if lc.Output.File.Enabled {
		writers = append(writers, &lumberjack.Logger{
			Filename:   lc.Output.File.Path,
			MaxSize:    lc.Output.File.MaxSizeMB,
			MaxBackups: lc.Output.File.MaxBackups,
			MaxAge:     lc.Output.File.MaxAgeDays,
			Compress:   lc.Output.File.Compress,
		})
	}

	if len(writers) == 1 {
		return writers[0]
	}
	return io.MultiWriter(writers...)
}

func Default() *slog.Logger {
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:     slog.LevelInfo,
		AddSource: false,
	})
	return slog.New(h).With(slog.String("service", "salon-storefront"))
}

func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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
