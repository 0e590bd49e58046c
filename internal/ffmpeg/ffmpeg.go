package ffmpeg

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Executor handles all ffmpeg operations with progress streaming
type Executor struct {
	logger      zerolog.Logger
	ffmpegPath  string
	ffprobePath string
	threads     int
}

// New resolves both ffmpeg and ffprobe. A missing binary is a *DependencyError.
func New(logger zerolog.Logger, opts Options) (*Executor, error) {
	ffmpegPath, err := lookup(opts.FFmpegBinary, "ffmpeg")
	if err != nil {
		return nil, err
	}

	ffprobePath, err := lookup(opts.FFprobeBinary, "ffprobe")
	if err != nil {
		return nil, err
	}

	return &Executor{
		logger:      logger.With().Str("component", "ffmpeg").Logger(),
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		threads:     opts.Threads,
	}, nil
}

// NewProber resolves only ffprobe; Run on the result fails.
func NewProber(logger zerolog.Logger, opts Options) (*Executor, error) {
	ffprobePath, err := lookup(opts.FFprobeBinary, "ffprobe")
	if err != nil {
		return nil, err
	}
	return &Executor{
		logger:      logger.With().Str("component", "ffprobe").Logger(),
		ffprobePath: ffprobePath,
	}, nil
}

// CheckTools reports the first missing binary, if any.
func CheckTools(opts Options) error {
	if _, err := lookup(opts.FFmpegBinary, "ffmpeg"); err != nil {
		return err
	}
	_, err := lookup(opts.FFprobeBinary, "ffprobe")
	return err
}

func lookup(name, fallback string) (string, error) {
	if name == "" {
		name = fallback
	}
	path, err := exec.LookPath(name)
	if err != nil {
		return "", &DependencyError{Name: name, InstallURL: FfmpegInstallURL, Err: err}
	}
	return path, nil
}

// FFmpegPath is the resolved ffmpeg binary
func (e *Executor) FFmpegPath() string { return e.ffmpegPath }

// FFprobePath is the resolved ffprobe binary
func (e *Executor) FFprobePath() string { return e.ffprobePath }

// Run executes ffmpeg and waits for it. Every output line goes to LogHandler
// and into RunResult.Output; with a ProgressHandler set, -progress blocks are
// parsed out of stderr instead of being logged.
func (e *Executor) Run(ctx context.Context, opts RunOptions) (*RunResult, error) {
	if len(opts.Args) == 0 {
		return nil, fmt.Errorf("no arguments provided")
	}
	if e.ffmpegPath == "" {
		return nil, &DependencyError{Name: "ffmpeg", InstallURL: FfmpegInstallURL}
	}

	baseArgs := []string{"-nostdin"}

	if e.threads > 0 {
		baseArgs = append(baseArgs, "-threads", strconv.Itoa(e.threads))
	}

	if opts.ProgressHandler != nil {
		baseArgs = append(baseArgs, "-progress", "pipe:2", "-nostats")
	}
	args := append(baseArgs, opts.Args...)

	e.logger.Debug().
		Str("cmd", e.ffmpegPath).
		Strs("args", args).
		Msg("executing ffmpeg")

	cmd := exec.CommandContext(ctx, e.ffmpegPath, args...)

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}

	started := time.Now()
	if err := cmd.Start(); err != nil {
		return &RunResult{ExitCode: -1, Output: err.Error()}, fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	out := &outputBuffer{handler: opts.LogHandler}

	var wg sync.WaitGroup
	wg.Add(2)

	// Stream stderr (progress + logs)
	go func() {
		defer wg.Done()
		streamOutput(stderr, opts.ProgressHandler, out.add)
	}()

	// Stream stdout
	go func() {
		defer wg.Done()
		streamOutput(stdout, nil, out.add)
	}()

	wg.Wait()

	waitErr := cmd.Wait()
	res := &RunResult{
		ExitCode: cmd.ProcessState.ExitCode(),
		Output:   out.String(),
		Elapsed:  time.Since(started),
	}

	if waitErr != nil {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			return res, &ExitError{Code: res.ExitCode, Output: res.Output}
		}
		return res, fmt.Errorf("ffmpeg execution failed: %w", waitErr)
	}

	e.logger.Debug().Dur("took", res.Elapsed).Msg("ffmpeg execution completed")
	return res, nil
}

// outputBuffer collects lines from both pipes in arrival order.
type outputBuffer struct {
	mu      sync.Mutex
	b       strings.Builder
	handler func(string)
}

func (o *outputBuffer) add(line string) {
	o.mu.Lock()
	o.b.WriteString(line)
	o.b.WriteByte('\n')
	o.mu.Unlock()
	if o.handler != nil {
		o.handler(line)
	}
}

func (o *outputBuffer) String() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.b.String()
}

var progressKeys = map[string]bool{
	"frame": true, "fps": true, "bitrate": true, "total_size": true,
	"out_time_us": true, "out_time_ms": true, "out_time": true,
	"dup_frames": true, "drop_frames": true, "speed": true, "progress": true,
}

// streamOutput splits r into lines. When progressHandler is set, lines that
// belong to a -progress block are parsed instead of forwarded.
func streamOutput(r io.Reader, progressHandler ProgressFunc, logLine func(string)) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	progressData := &Progress{}

	for scanner.Scan() {
		line := scanner.Text()

		if progressHandler != nil {
			if key, value, ok := strings.Cut(line, "="); ok && (progressKeys[key] || strings.HasPrefix(key, "stream_")) {
				if parseProgressLine(progressData, key, strings.TrimSpace(value)) {
					progressHandler(progressData)
					progressData = &Progress{}
				}
				continue
			}
		}

		if logLine != nil {
			logLine(line)
		}
	}

	// Scan gives up on an oversized line; keep draining so ffmpeg never
	// blocks writing to a full pipe
	if err := scanner.Err(); err != nil && logLine != nil {
		logLine("[WARN] output not shown: " + err.Error())
	}
	_, _ = io.Copy(io.Discard, r)
}

// parseProgressLine folds one key=value pair into p and reports whether the
// block is complete.
func parseProgressLine(p *Progress, key, value string) bool {
	switch key {
	case "frame":
		p.Frame, _ = strconv.Atoi(value)
	case "fps":
		p.FPS, _ = strconv.ParseFloat(value, 64)
	case "bitrate":
		p.Bitrate = value
	case "out_time_us":
		if us, err := strconv.ParseInt(value, 10, 64); err == nil {
			p.OutTime = time.Duration(us) * time.Microsecond
		}
	case "speed":
		p.Speed = value
	case "progress":
		p.Done = value == "end"
		return true
	}
	return false
}
