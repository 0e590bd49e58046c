package ffmpeg

import (
	"context"
	"fmt"
	"strconv"
)

// BuildClipArgs returns the ffmpeg arguments that re-encode the job's range
// into ClipOutput. ok is false when the job did not ask for a clip.
func BuildClipArgs(job *Job) (args []string, ok bool, err error) {
	if err := job.Validate(); err != nil {
		return nil, false, err
	}
	if !job.WantsClip() {
		return nil, false, nil
	}

	args = []string{
		"-hide_banner", "-loglevel", "error", "-y",
		"-i", job.Input,
		"-ss", job.Start(),
		"-to", job.End(),
		"-c:v", ClipVideoCodec,
		"-crf", strconv.Itoa(ClipCRF),
		"-preset", ClipPreset,
		"-c:a", ClipAudioCodec,
		"-b:a", ClipAudioBitrate,
		job.ClipOutput,
	}
	return args, true, nil
}

// ExportClip cuts the job's range to ClipOutput with frame-accurate re-encoding
func (e *Executor) ExportClip(ctx context.Context, job *Job, progress ProgressFunc, logLine func(string)) (*RunResult, error) {
	args, ok, err := BuildClipArgs(job)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("job %s has no clip output", job.ID)
	}

	e.logger.Info().
		Str("job", job.ID.String()).
		Str("input", job.Input).
		Str("output", job.ClipOutput).
		Str("start", job.Start()).
		Str("end", job.End()).
		Msg("exporting clip")

	res, err := e.Run(ctx, RunOptions{
		Args:            args,
		ProgressHandler: progress,
		LogHandler:      logLine,
	})
	if err != nil {
		return res, fmt.Errorf("clip export failed: %w", err)
	}

	e.logger.Info().Str("output", job.ClipOutput).Dur("took", res.Elapsed).Msg("clip export complete")
	return res, nil
}
