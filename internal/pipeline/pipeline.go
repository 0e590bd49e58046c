package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/kikiluvv/videotoframe/internal/ffmpeg"
	"github.com/kikiluvv/videotoframe/internal/metrics"
	"github.com/kikiluvv/videotoframe/pkg/util"
)

// Pipeline runs probes and extraction jobs against the ffmpeg binaries.
// Binaries are looked up on every call so installing ffmpeg while the app
// is open is picked up without a restart.
type Pipeline struct {
	logger zerolog.Logger
	config *Config
}

// New creates a new pipeline instance
func New(logger zerolog.Logger, cfg *Config) *Pipeline {
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = 30 * time.Second
	}
	return &Pipeline{
		logger: logger.With().Str("component", "pipeline").Logger(),
		config: cfg,
	}
}

func (p *Pipeline) options() ffmpeg.Options {
	return ffmpeg.Options{
		FFmpegBinary:  p.config.FFmpegBinary,
		FFprobeBinary: p.config.FFprobeBinary,
		Threads:       p.config.Threads,
	}
}

// CheckTools fails with *ffmpeg.DependencyError when either binary is missing.
func (p *Pipeline) CheckTools() error {
	return ffmpeg.CheckTools(p.options())
}

// ProbeDuration returns the input's duration in seconds.
func (p *Pipeline) ProbeDuration(ctx context.Context, input string) (float64, error) {
	prober, err := ffmpeg.NewProber(p.logger, p.options())
	if err != nil {
		return 0, err
	}

	ctx, cancel := context.WithTimeout(ctx, p.config.ProbeTimeout)
	defer cancel()

	secs, err := prober.ProbeDuration(ctx, input)
	if err != nil {
		return 0, fmt.Errorf("failed to probe %s: %w", filepath.Base(input), err)
	}

	p.logger.Info().Str("input", input).Float64("seconds", secs).Msg("duration probed")
	return secs, nil
}

// ProbeVideo returns full stream metadata for the input.
func (p *Pipeline) ProbeVideo(ctx context.Context, input string) (*ffmpeg.VideoInfo, error) {
	prober, err := ffmpeg.NewProber(p.logger, p.options())
	if err != nil {
		return nil, err
	}
	return prober.ProbeVideo(ctx, input)
}

// Run executes one job: output directory, optional clip, then frames.
// Stops at the first failing step; nothing is retried.
func (p *Pipeline) Run(ctx context.Context, job *ffmpeg.Job, hooks Hooks) (report *Report, err error) {
	if job == nil {
		return nil, fmt.Errorf("job cannot be nil")
	}
	if err := job.Validate(); err != nil {
		return nil, err
	}

	exec, err := ffmpeg.New(p.logger, p.options())
	if err != nil {
		return nil, err
	}

	defer func() { p.recordJob(report, err) }()

	p.logger.Info().
		Str("job", job.ID.String()).
		Str("input", job.Input).
		Str("start", job.Start()).
		Str("end", job.End()).
		Str("format", string(job.Format)).
		Bool("clip", job.WantsClip()).
		Msg("starting extraction")

	started := time.Now()

	if err := util.EnsureDir(job.OutputDir); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}

	// frames already in the folder only count if this run rewrites them
	existing, err := listFrames(job)
	if err != nil {
		return nil, err
	}

	report = &Report{
		JobID:     job.ID,
		OutputDir: job.OutputDir,
		Format:    string(job.Format),
	}

	rangeMs := float64(job.EndMs - job.StartMs)
	phases := 1.0
	if job.WantsClip() {
		phases = 2
	}
	phaseProgress := func(phase float64) ffmpeg.ProgressFunc {
		return func(pr *ffmpeg.Progress) {
			done := 1.0
			if !pr.Done {
				done = float64(pr.OutTime.Milliseconds()) / rangeMs
			}
			hooks.progress((phase + max(0, min(1, done))) / phases)
		}
	}

	phase := 0.0
	if job.WantsClip() {
		if err := util.EnsureDir(filepath.Dir(job.ClipOutput)); err != nil {
			return nil, fmt.Errorf("failed to create clip dir: %w", err)
		}
		hooks.log("[INFO] Cutting video clip...")
		res, err := exec.ExportClip(ctx, job, phaseProgress(phase), hooks.Log)
		logOutput(hooks, res)
		observeStage(p.config.Metrics, "clip", res)
		if err != nil {
			hooks.log("[ERROR] Clip export failed.")
			return nil, err
		}
		hooks.log("[OK] Clip: " + job.ClipOutput)
		report.ClipPath = job.ClipOutput
		phase++
	}

	hooks.log(fmt.Sprintf("[INFO] Extracting native frames as %s...", strings.ToUpper(string(job.Format))))
	res, err := exec.ExtractFrames(ctx, job, phaseProgress(phase), hooks.Log)
	logOutput(hooks, res)
	observeStage(p.config.Metrics, "frames", res)
	if err != nil {
		hooks.log("[ERROR] Frame extraction failed.")
		return nil, err
	}

	after, err := listFrames(job)
	if err != nil {
		return nil, err
	}
	frames := writtenSince(existing, after)
	report.FrameCount = len(frames)
	if len(frames) > 0 {
		report.FirstFrame = frames[0]
	}
	report.Elapsed = time.Since(started)

	hooks.progress(1)
	hooks.log(fmt.Sprintf("[OK] %d frames extracted to: %s", report.FrameCount, job.OutputDir))

	p.logger.Info().
		Str("job", job.ID.String()).
		Int("frames", report.FrameCount).
		Dur("took", report.Elapsed).
		Msg("extraction complete")

	return report, nil
}

// logOutput forwards a failed run's exit code. Output lines were already
// streamed through the log hook as they arrived.
func logOutput(hooks Hooks, res *ffmpeg.RunResult) {
	if res != nil && res.ExitCode != 0 {
		hooks.log(fmt.Sprintf("[ERROR] ffmpeg exit code %d", res.ExitCode))
	}
}

func observeStage(m *metrics.Recorder, stage string, res *ffmpeg.RunResult) {
	if res != nil {
		m.ObserveStage(stage, res.Elapsed)
	}
}

// recordJob counts the finished job and refreshes the metrics textfile.
func (p *Pipeline) recordJob(report *Report, err error) {
	m := p.config.Metrics
	if m == nil {
		return
	}
	if err != nil {
		m.JobFinished(metrics.StatusFailed, 0)
	} else {
		m.JobFinished(metrics.StatusOK, report.FrameCount)
	}
	if werr := m.WriteTextfile(p.config.MetricsFile); werr != nil {
		p.logger.Warn().Err(werr).Str("path", p.config.MetricsFile).Msg("failed to write metrics")
	}
}

// listFrames maps every file matching the job's frame glob to its mtime.
func listFrames(job *ffmpeg.Job) (map[string]time.Time, error) {
	paths, err := filepath.Glob(job.FrameGlob())
	if err != nil {
		return nil, fmt.Errorf("glob frames: %w", err)
	}
	frames := make(map[string]time.Time, len(paths))
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			continue
		}
		frames[p] = info.ModTime()
	}
	return frames, nil
}

// writtenSince returns, sorted, the files in after that are new or whose
// mtime changed since before.
func writtenSince(before, after map[string]time.Time) []string {
	var out []string
	for p, mod := range after {
		if old, ok := before[p]; ok && old.Equal(mod) {
			continue
		}
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
