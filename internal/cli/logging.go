package cli

import (
	"io"
	"log/slog"
	"os"

	"github.com/andrewimm/clancy/internal/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

var logFile *lumberjack.Logger

// initLogging sends structured logs to a rotating file. --verbose also
// copies them to stderr at debug level.
func initLogging(verbose bool) {
	level := slog.LevelInfo
	if cfg, err := config.Load(); err == nil {
		if err := level.UnmarshalText([]byte(cfg.Logging.Level)); err != nil {
			level = slog.LevelInfo
		}
	}

	logFile = &lumberjack.Logger{
		Filename:   config.LogPath(),
		MaxSize:    10,
		MaxAge:     14,
		MaxBackups: 3,
		Compress:   true,
	}

	var w io.Writer = logFile
	if verbose {
		level = slog.LevelDebug
		w = io.MultiWriter(os.Stderr, logFile)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})))
}

func closeLogging() {
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}
