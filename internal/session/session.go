// Package session is the controller between a view and the extraction
// machinery. It owns the busy flag, the selected input, the time-range model,
// and the channel the single background worker reports through.
//
// Every method except Results is meant to be called from one goroutine (the
// UI goroutine in the GUI, main in the CLI). Worker output only reaches the
// session's state through Apply on that same goroutine.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/kikiluvv/videotoframe/internal/ffmpeg"
	"github.com/kikiluvv/videotoframe/internal/pipeline"
	"github.com/kikiluvv/videotoframe/internal/timerange"
	"github.com/kikiluvv/videotoframe/pkg/util"
)

var (
	// ErrBusy rejects a new probe or extraction while one is running.
	ErrBusy = errors.New("an operation is already in progress, wait for it to finish")

	// ErrInputMissing is returned when the input path is not an existing file.
	ErrInputMissing = errors.New("select a valid video file")

	// ErrUnparsed marks a text commit that was ignored because a field did
	// not parse. The range is unchanged; views usually leave the text as typed.
	ErrUnparsed = errors.New("time fields not understood")
)

// Backend is what the session needs from the outside world.
// *pipeline.Pipeline satisfies it.
type Backend interface {
	CheckTools() error
	ProbeDuration(ctx context.Context, input string) (float64, error)
	Run(ctx context.Context, job *ffmpeg.Job, hooks pipeline.Hooks) (*pipeline.Report, error)
}

// Defaults fill blank request fields.
type Defaults struct {
	OutputDir string
	Prefix    string
	Format    string
	Quality   int
	ClipFile  string
}

// Request is the raw form state at the moment the user hits extract.
type Request struct {
	Input      string
	OutputDir  string
	Prefix     string
	Format     string
	Quality    string
	UsePTS     bool
	ExportClip bool
	ClipPath   string
}

// Session holds the mutable state of one window.
type Session struct {
	mu       sync.Mutex
	logger   zerolog.Logger
	backend  Backend
	defaults Defaults
	model    *timerange.Model
	results  chan Message

	busy     bool
	input    string
	duration DurationMsg
}

// New creates an idle session with an unknown-duration range.
func New(logger zerolog.Logger, backend Backend, defaults Defaults) *Session {
	if defaults.OutputDir == "" {
		defaults.OutputDir = "frames_out"
	}
	if defaults.Prefix == "" {
		defaults.Prefix = "frame"
	}
	if defaults.Format == "" {
		defaults.Format = string(ffmpeg.FormatPNG)
	}
	if defaults.Quality == 0 {
		defaults.Quality = ffmpeg.DefaultQuality
	}
	if defaults.ClipFile == "" {
		defaults.ClipFile = "recorte.mp4"
	}

	return &Session{
		logger:   logger.With().Str("component", "session").Logger(),
		backend:  backend,
		defaults: defaults,
		model:    timerange.New(),
		results:  make(chan Message, 256),
	}
}

// Results is the worker -> controller channel. Drain it on the controller
// goroutine and pass every message to Apply.
func (s *Session) Results() <-chan Message {
	return s.results
}

// Busy reports whether a worker is running.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// Input is the last selected input path.
func (s *Session) Input() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.input
}

// Duration is the last applied probe result.
func (s *Session) Duration() DurationMsg {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.duration
}

// Defaults returns the values used for blank request fields.
func (s *Session) Defaults() Defaults {
	return s.defaults
}

// Snapshot returns the current range state.
func (s *Session) Snapshot() timerange.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model.Snapshot()
}

// Dispatch routes a range edit to its model operation and returns the
// resulting state.
func (s *Session) Dispatch(ev Event) (timerange.Snapshot, error) {
	h, ok := handlers[ev.Kind]
	if !ok {
		return s.Snapshot(), fmt.Errorf("unknown event %s", ev.Kind)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := h(s.model, ev)
	if !ok {
		return snap, ErrUnparsed
	}
	s.logger.Debug().
		Stringer("event", ev.Kind).
		Int64("start_ms", snap.StartMs).
		Int64("end_ms", snap.EndMs).
		Msg("range updated")
	return snap, nil
}

// SelectInput records a new input and probes its duration in the background.
// The result arrives as a DurationMsg.
func (s *Session) SelectInput(path string) error {
	path = strings.TrimSpace(path)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.busy {
		return ErrBusy
	}
	if !util.FileExists(path) {
		return fmt.Errorf("%w: %s", ErrInputMissing, path)
	}

	s.input = path
	s.duration = DurationMsg{Input: path}
	s.busy = true

	s.logger.Info().Str("input", path).Msg("probing input")

	s.spawn(func() Message {
		secs, err := s.backend.ProbeDuration(context.Background(), path)
		if err != nil {
			var depErr *ffmpeg.DependencyError
			return DurationMsg{Input: path, Unavailable: errors.As(err, &depErr), Err: err}
		}
		return DurationMsg{Input: path, Seconds: secs, Known: true}
	}, func(err error) Message {
		return DurationMsg{Input: path, Err: err}
	})
	return nil
}

// BuildJob turns the form state into a validated job using the current
// range. It has no side effects.
func (s *Session) BuildJob(req Request) (*ffmpeg.Job, error) {
	input := strings.TrimSpace(req.Input)
	if input == "" || !util.FileExists(input) {
		return nil, ErrInputMissing
	}

	format, err := ffmpeg.ParseImageFormat(orDefault(req.Format, s.defaults.Format))
	if err != nil {
		return nil, err
	}

	quality := s.defaults.Quality
	if format.UsesQuality() {
		quality, err = ffmpeg.ParseQuality(orDefault(req.Quality, fmt.Sprint(s.defaults.Quality)))
		if err != nil {
			return nil, err
		}
	}

	job := ffmpeg.NewJob()
	if job.Input, err = util.AbsPath(input, ""); err != nil {
		return nil, fmt.Errorf("resolve input: %w", err)
	}
	if job.OutputDir, err = util.AbsPath(strings.TrimSpace(req.OutputDir), s.defaults.OutputDir); err != nil {
		return nil, fmt.Errorf("resolve output dir: %w", err)
	}
	if req.ExportClip {
		if job.ClipOutput, err = util.AbsPath(strings.TrimSpace(req.ClipPath), s.defaults.ClipFile); err != nil {
			return nil, fmt.Errorf("resolve clip path: %w", err)
		}
	}

	job.Prefix = orDefault(req.Prefix, s.defaults.Prefix)
	job.Format = format
	job.Quality = quality
	job.UsePTS = req.UsePTS

	r := s.Snapshot().Range
	job.StartMs, job.EndMs = r.StartMs, r.EndMs

	if err := job.Validate(); err != nil {
		return nil, err
	}
	return job, nil
}

// StartExtraction checks every precondition synchronously, then runs the job
// on a worker goroutine. Progress arrives as LogMsg/ProgressMsg and the run
// ends with a DoneMsg.
func (s *Session) StartExtraction(req Request) (*ffmpeg.Job, error) {
	if s.Busy() {
		return nil, ErrBusy
	}
	if err := s.backend.CheckTools(); err != nil {
		return nil, err
	}
	job, err := s.BuildJob(req)
	if err != nil {
		return nil, err
	}
	if err := util.EnsureDir(job.OutputDir); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return nil, ErrBusy
	}
	s.busy = true

	s.logger.Info().
		Str("job", job.ID.String()).
		Str("range", job.Start()+" -> "+job.End()).
		Msg("extraction queued")

	hooks := pipeline.Hooks{
		Log:      func(line string) { s.results <- LogMsg{Line: line} },
		Progress: func(f float64) { s.results <- ProgressMsg{Fraction: f} },
	}

	s.spawn(func() Message {
		report, err := s.backend.Run(context.Background(), job, hooks)
		return DoneMsg{Job: job, Report: report, Err: err}
	}, func(err error) Message {
		return DoneMsg{Job: job, Err: err}
	})
	return job, nil
}

// Apply folds a worker message into the session. Call it on the controller
// goroutine for every message read from Results.
func (s *Session) Apply(msg Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch m := msg.(type) {
	case DurationMsg:
		if m.Input == s.input {
			s.duration = m
			s.model.Reset(m.Seconds, m.Known)
		}
		if m.Err != nil {
			s.logger.Warn().Err(m.Err).Str("input", m.Input).Msg("duration unknown")
		}
	case DoneMsg:
		if m.Err != nil {
			s.logger.Error().Err(m.Err).Msg("extraction failed")
		}
	}

	if msg.Terminal() {
		s.busy = false
	}
}

// spawn runs fn on the worker goroutine and always posts exactly one
// terminal message, converting a panic into onPanic's message.
func (s *Session) spawn(fn func() Message, onPanic func(error) Message) {
	go func() {
		var final Message
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error().Interface("panic", r).Msg("worker crashed")
				final = onPanic(fmt.Errorf("unexpected error: %v", r))
			}
			s.results <- final
		}()
		final = fn()
	}()
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}
