package logging

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Init initializes the global logger with dual sinks: os.Stderr and a
// rotating file. Stdout stays reserved for the report table. The file sink
// is best effort; when the log directory cannot be created we keep the
// console sink and carry on.
func Init(verbose bool) {
	// Init runs before config.Load, so pick up LOGS_FOLDER from a
	// binary-relative .env ourselves.
	exePath, exeErr := os.Executable()
	if exeErr == nil {
		_ = godotenv.Load(filepath.Join(filepath.Dir(exePath), ".env"))
	}

	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	isTerminal := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	consoleWriter := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !isTerminal,
	}

	logDir := os.Getenv("LOGS_FOLDER")
	if logDir == "" {
		if exeErr == nil {
			logDir = filepath.Join(filepath.Dir(exePath), "logs")
		} else {
			logDir = "logs"
		}
	}

	var sink io.Writer = consoleWriter
	fileSink := false
	if err := os.MkdirAll(logDir, 0o755); err == nil {
		fileWriter := &lumberjack.Logger{
			Filename:   filepath.Join(logDir, "optime.log"),
			MaxSize:    16, // megabytes
			MaxBackups: 8,
			MaxAge:     90, // days
			Compress:   true,
		}
		sink = zerolog.MultiLevelWriter(consoleWriter, fileWriter)
		fileSink = true
	}

	log.Logger = zerolog.New(sink).
		With().
		Timestamp().
		Logger()

	if !fileSink {
		log.Warn().Str("path", logDir).Msg("Log directory unavailable, logging to stderr only")
	}
}
