package session

import (
	"github.com/kikiluvv/videotoframe/internal/ffmpeg"
	"github.com/kikiluvv/videotoframe/internal/pipeline"
)

// Message is anything the worker posts back to the controller goroutine.
type Message interface {
	// Terminal messages end a worker run and clear the busy flag when applied.
	Terminal() bool
}

// DurationMsg carries the result of probing a newly selected input.
type DurationMsg struct {
	Input   string
	Seconds float64
	Known   bool
	// Unavailable is set when ffprobe itself is missing.
	Unavailable bool
	Err         error
}

func (DurationMsg) Terminal() bool { return true }

// LogMsg is one line for the log area.
type LogMsg struct {
	Line string
}

func (LogMsg) Terminal() bool { return false }

// ProgressMsg reports how far the current extraction is, in [0, 1].
type ProgressMsg struct {
	Fraction float64
}

func (ProgressMsg) Terminal() bool { return false }

// DoneMsg ends an extraction, successful or not.
type DoneMsg struct {
	Job    *ffmpeg.Job
	Report *pipeline.Report
	Err    error
}

func (DoneMsg) Terminal() bool { return true }
