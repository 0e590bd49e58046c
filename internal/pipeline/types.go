package pipeline

import (
	"time"

	"github.com/google/uuid"

	"github.com/kikiluvv/videotoframe/internal/metrics"
)

// Hooks receive everything a run wants to tell its caller. Both are optional
// and are called from the worker goroutine.
type Hooks struct {
	Log      func(line string)
	Progress func(fraction float64)
}

func (h Hooks) log(line string) {
	if h.Log != nil {
		h.Log(line)
	}
}

func (h Hooks) progress(f float64) {
	if h.Progress != nil {
		h.Progress(max(0, min(1, f)))
	}
}

// Report summarizes a finished extraction
type Report struct {
	JobID      uuid.UUID
	ClipPath   string
	OutputDir  string
	Format     string
	FrameCount int
	FirstFrame string
	Elapsed    time.Duration
}

// Config holds pipeline-specific configuration
type Config struct {
	FFmpegBinary  string
	FFprobeBinary string
	Threads       int
	ProbeTimeout  time.Duration

	// Metrics is optional. When MetricsFile is set the registry is written
	// there after every run.
	Metrics     *metrics.Recorder
	MetricsFile string
}
