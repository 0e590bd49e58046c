package logging

import (
	"bytes"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init initializes the global logger. Extra writers (the GUI log area, a
// file) receive the same events as stderr.
func Init(verbose bool, extra ...io.Writer) {
	zerolog.TimeFieldFormat = time.RFC3339

	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	zerolog.SetGlobalLevel(level)

	log.Logger = NewLogger(append([]io.Writer{Console()}, extra...)...)
}

// Console is the human-readable stderr writer, coloured only on a terminal.
func Console() zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "15:04:05",
		NoColor:    !isTerminal(os.Stderr),
	}
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// NewLogger creates a new logger with optional writers
func NewLogger(writers ...io.Writer) zerolog.Logger {
	if len(writers) == 0 {
		return log.Logger
	}

	if len(writers) == 1 {
		return zerolog.New(writers[0]).With().Timestamp().Logger()
	}

	multi := zerolog.MultiLevelWriter(writers...)
	return zerolog.New(multi).With().Timestamp().Logger()
}

// WithComponent creates a logger with a component field
func WithComponent(component string) zerolog.Logger {
	return log.Logger.With().Str("component", component).Logger()
}

// LineWriter turns each zerolog event into one plain console line and hands
// it to fn. Used to mirror warnings into the GUI log area.
type LineWriter struct {
	fn  func(string)
	min zerolog.Level
}

// NewLineWriter forwards events at or above min.
func NewLineWriter(min zerolog.Level, fn func(string)) *LineWriter {
	return &LineWriter{fn: fn, min: min}
}

func (w *LineWriter) Write(p []byte) (int, error) {
	return w.WriteLevel(zerolog.NoLevel, p)
}

// WriteLevel implements zerolog.LevelWriter.
func (w *LineWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level != zerolog.NoLevel && level < w.min {
		return len(p), nil
	}
	var buf bytes.Buffer
	cw := zerolog.ConsoleWriter{Out: &buf, NoColor: true, PartsExclude: []string{zerolog.TimestampFieldName}}
	if _, err := cw.Write(p); err != nil {
		return 0, err
	}
	w.fn(strings.TrimRight(buf.String(), " \n"))
	return len(p), nil
}
