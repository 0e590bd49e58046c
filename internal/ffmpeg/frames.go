package ffmpeg

import (
	"context"
	"fmt"
	"strconv"
)

// BuildFrameArgs returns the ffmpeg arguments that write every native frame
// of the job's range as numbered images, without resampling the frame rate.
func BuildFrameArgs(job *Job) ([]string, error) {
	if err := job.Validate(); err != nil {
		return nil, err
	}

	args := []string{
		"-hide_banner", "-loglevel", "error", "-y",
		"-i", job.Input,
		"-ss", job.Start(),
		"-to", job.End(),
		"-vsync", "0",
	}

	if job.UsePTS {
		args = append(args, "-frame_pts", "1")
	}

	switch job.Format {
	case FormatJPG, FormatJPEG:
		args = append(args, "-q:v", strconv.Itoa(job.Quality))
	case FormatWEBP:
		args = append(args, "-quality", strconv.Itoa(WebPQuality(job.Quality)))
	case FormatGIF:
		// gif encoder needs a palette-friendly input
		args = append(args, "-pix_fmt", "rgb24")
	}

	return append(args, job.FramePattern()), nil
}

// ExtractFrames writes the job's frames into OutputDir
func (e *Executor) ExtractFrames(ctx context.Context, job *Job, progress ProgressFunc, logLine func(string)) (*RunResult, error) {
	args, err := BuildFrameArgs(job)
	if err != nil {
		return nil, err
	}

	e.logger.Info().
		Str("job", job.ID.String()).
		Str("input", job.Input).
		Str("pattern", job.FramePattern()).
		Str("format", string(job.Format)).
		Bool("pts", job.UsePTS).
		Msg("extracting frames")

	res, err := e.Run(ctx, RunOptions{
		Args:            args,
		ProgressHandler: progress,
		LogHandler:      logLine,
	})
	if err != nil {
		return res, fmt.Errorf("frame extraction failed: %w", err)
	}

	e.logger.Info().Str("dir", job.OutputDir).Dur("took", res.Elapsed).Msg("frame extraction complete")
	return res, nil
}
