package ffmpeg

import "time"

// VideoInfo contains metadata about a video file
type VideoInfo struct {
	FilePath     string
	Duration     time.Duration
	Width        int
	Height       int
	FPS          float64
	Bitrate      int64
	VideoCodec   string
	HasAudio     bool
	AudioCodec   string
	AudioBitrate int64
}

// Progress is one block of ffmpeg's -progress output
type Progress struct {
	Frame   int
	FPS     float64
	Bitrate string
	OutTime time.Duration
	Speed   string
	Done    bool
}

// ProgressFunc is a callback for progress updates during ffmpeg operations.
// Called once per -progress block as the operation executes.
type ProgressFunc func(*Progress)

// RunOptions configures ffmpeg execution
type RunOptions struct {
	Args            []string
	ProgressHandler ProgressFunc
	LogHandler      func(line string)
}

// RunResult is what a finished ffmpeg process left behind.
type RunResult struct {
	ExitCode int
	Output   string
	Elapsed  time.Duration
}

// Options selects the binaries and thread count used by an Executor
type Options struct {
	FFmpegBinary  string
	FFprobeBinary string
	Threads       int
}

// Clip export encoding. These are fixed on purpose; the clip is a convenience
// copy of the range, not a configurable transcode.
const (
	ClipVideoCodec   = "libx264"
	ClipCRF          = 18
	ClipPreset       = "veryfast"
	ClipAudioCodec   = "aac"
	ClipAudioBitrate = "192k"
)

// Quality bounds for lossy image formats (ffmpeg -q:v scale, 2 = best).
const (
	MinQuality     = 2
	MaxQuality     = 31
	DefaultQuality = 2
)

// FrameCounterDigits is the zero padding of sequential frame numbers.
const FrameCounterDigits = 6
