package cmdutil

import (
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type loggerConfig struct {
	level  string
	format string
}

var loggerConfigInst = loggerConfig{
	level:  zerolog.InfoLevel.String(),
	format: "console",
}

func RegisterLoggerFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(
		&loggerConfigInst.level,
		"level",
		loggerConfigInst.level,
		"what level to log at - maps to zerolog.Level",
	)
	cmd.PersistentFlags().StringVar(
		&loggerConfigInst.format,
		"log-format",
		loggerConfigInst.format,
		"log output format, console or json",
	)
}

// Logger writes to stderr, leaving stdout to reports.
func Logger() (zerolog.Logger, error) {
	return newLogger(os.Stderr, loggerConfigInst)
}

func newLogger(out io.Writer, cfg loggerConfig) (zerolog.Logger, error) {
	w := out
	switch cfg.format {
	case "console":
		w = zerolog.NewConsoleWriter(func(cw *zerolog.ConsoleWriter) { cw.Out = out })
	case "json":
	default:
		return zerolog.Nop(), errors.Newf("unknown log format %q", cfg.format)
	}
	logger := zerolog.New(w).With().Timestamp().Logger()
	lvl, err := zerolog.ParseLevel(cfg.level)
	if err != nil {
		return logger, err
	}
	return logger.Level(lvl), nil
}
