package pipeline

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kikiluvv/videotoframe/internal/ffmpeg"
	"github.com/kikiluvv/videotoframe/internal/metrics"
)

func skipIfNoFFmpeg(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not found in PATH")
	}
	if _, err := exec.LookPath("ffprobe"); err != nil {
		t.Skip("ffprobe not found in PATH")
	}
}

func validJob(t *testing.T) *ffmpeg.Job {
	t.Helper()
	dir := t.TempDir()
	input := filepath.Join(dir, "in.mp4")
	require.NoError(t, os.WriteFile(input, []byte("x"), 0644))

	job := ffmpeg.NewJob()
	job.Input = input
	job.OutputDir = filepath.Join(dir, "frames")
	job.Prefix = "frame"
	job.StartMs = 0
	job.EndMs = 500
	return job
}

func TestNewDefaults(t *testing.T) {
	p := New(zerolog.Nop(), nil)
	assert.Greater(t, p.config.ProbeTimeout.Seconds(), 0.0)
}

func TestMissingToolsAreDependencyErrors(t *testing.T) {
	p := New(zerolog.Nop(), &Config{FFmpegBinary: "no-such-ffmpeg-vtf", FFprobeBinary: "no-such-ffprobe-vtf"})

	var depErr *ffmpeg.DependencyError
	require.ErrorAs(t, p.CheckTools(), &depErr)
	assert.Equal(t, "no-such-ffmpeg-vtf", depErr.Name)
	assert.Equal(t, ffmpeg.FfmpegInstallURL, depErr.InstallURL)

	_, err := p.ProbeDuration(context.Background(), "whatever.mp4")
	require.ErrorAs(t, err, &depErr)
	assert.Equal(t, "no-such-ffprobe-vtf", depErr.Name)

	_, err = p.Run(context.Background(), validJob(t), Hooks{})
	assert.ErrorAs(t, err, &depErr)
}

func TestRunRejectsInvalidJobs(t *testing.T) {
	p := New(zerolog.Nop(), nil)

	_, err := p.Run(context.Background(), nil, Hooks{})
	assert.Error(t, err)

	job := validJob(t)
	job.EndMs = job.StartMs + 5
	_, err = p.Run(context.Background(), job, Hooks{})
	assert.ErrorContains(t, err, "10ms")

	job = validJob(t)
	job.Format = ffmpeg.FormatJPG
	job.Quality = 40
	_, err = p.Run(context.Background(), job, Hooks{})
	assert.ErrorIs(t, err, ffmpeg.ErrQuality)

	_, statErr := os.Stat(job.OutputDir)
	assert.True(t, os.IsNotExist(statErr), "nothing may be created for an invalid job")
}

// oneFrameFFmpeg writes a script that stands in for ffmpeg and ffprobe: it
// renders frame 1 of the output pattern (its last argument) and exits 0.
func oneFrameFFmpeg(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}
	script := filepath.Join(t.TempDir(), "fake-ffmpeg")
	body := "#!/bin/sh\nfor a; do last=$a; done\nprintf 'x' > \"$(printf \"$last\" 1)\"\n"
	require.NoError(t, os.WriteFile(script, []byte(body), 0755))
	return script
}

func TestRunCountsOnlyFramesWrittenByThisRun(t *testing.T) {
	fake := oneFrameFFmpeg(t)
	p := New(zerolog.Nop(), &Config{FFmpegBinary: fake, FFprobeBinary: fake})

	job := validJob(t)
	job.Format = ffmpeg.FormatPNG
	require.NoError(t, os.MkdirAll(job.OutputDir, 0755))

	old := time.Now().Add(-time.Hour)
	for _, name := range []string{"frame_000001.png", "frame_000002.png", "frame_000003.png", "frame_000004.png"} {
		path := filepath.Join(job.OutputDir, name)
		require.NoError(t, os.WriteFile(path, []byte("old"), 0644))
		require.NoError(t, os.Chtimes(path, old, old))
	}

	report, err := p.Run(context.Background(), job, Hooks{})
	require.NoError(t, err)
	assert.Equal(t, 1, report.FrameCount)
	assert.Equal(t, filepath.Join(job.OutputDir, "frame_000001.png"), report.FirstFrame)
}

func TestRunHandlesGlobCharactersInNames(t *testing.T) {
	fake := oneFrameFFmpeg(t)
	p := New(zerolog.Nop(), &Config{FFmpegBinary: fake, FFprobeBinary: fake})

	job := validJob(t)
	job.Format = ffmpeg.FormatPNG
	job.OutputDir = filepath.Join(filepath.Dir(job.OutputDir), "take [1]")
	job.Prefix = "shot*?"

	report, err := p.Run(context.Background(), job, Hooks{})
	require.NoError(t, err)
	assert.Equal(t, 1, report.FrameCount)
	assert.Equal(t, filepath.Join(job.OutputDir, "shot*?_000001.png"), report.FirstFrame)
}

func TestHooksAreNilSafeAndClamped(t *testing.T) {
	var h Hooks
	h.log("ignored")
	h.progress(0.5)

	var got []float64
	h.Progress = func(f float64) { got = append(got, f) }
	h.progress(-1)
	h.progress(2)
	h.progress(0.25)
	assert.Equal(t, []float64{0, 1, 0.25}, got)
}

func TestRunEndToEnd(t *testing.T) {
	skipIfNoFFmpeg(t)

	dir := t.TempDir()
	input := filepath.Join(dir, "src.mp4")
	gen := exec.Command("ffmpeg", "-f", "lavfi", "-i", "testsrc=duration=2:size=160x120:rate=10",
		"-pix_fmt", "yuv420p", "-y", input)
	if out, err := gen.CombinedOutput(); err != nil {
		t.Skipf("could not generate test video: %v\n%s", err, out)
	}

	rec := metrics.New()
	promFile := filepath.Join(dir, "videotoframe.prom")
	p := New(zerolog.Nop(), &Config{Threads: 1, Metrics: rec, MetricsFile: promFile})

	secs, err := p.ProbeDuration(context.Background(), input)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, secs, 0.2)

	job := ffmpeg.NewJob()
	job.Input = input
	job.OutputDir = filepath.Join(dir, "out")
	job.Prefix = "shot"
	job.Format = ffmpeg.FormatJPEG
	job.Quality = 5
	job.StartMs = 500
	job.EndMs = 1500
	job.ClipOutput = filepath.Join(dir, "clips", "cut.mp4")

	var (
		mu       sync.Mutex
		lines    []string
		progress []float64
	)
	hooks := Hooks{
		Log: func(line string) {
			mu.Lock()
			lines = append(lines, line)
			mu.Unlock()
		},
		Progress: func(f float64) {
			mu.Lock()
			progress = append(progress, f)
			mu.Unlock()
		},
	}

	report, err := p.Run(context.Background(), job, hooks)
	require.NoError(t, err)

	assert.Equal(t, job.ClipOutput, report.ClipPath)
	assert.FileExists(t, job.ClipOutput)
	assert.Greater(t, report.FrameCount, 5)
	assert.True(t, strings.HasSuffix(report.FirstFrame, "shot_000001.jpg"), report.FirstFrame)

	mu.Lock()
	defer mu.Unlock()
	joined := strings.Join(lines, "\n")
	assert.Contains(t, joined, "[INFO] Cutting video clip...")
	assert.Contains(t, joined, "[OK] Clip: "+job.ClipOutput)
	assert.Contains(t, joined, "[INFO] Extracting native frames as JPEG...")
	assert.Contains(t, joined, "frames extracted to: "+job.OutputDir)
	require.NotEmpty(t, progress)
	assert.Equal(t, 1.0, progress[len(progress)-1])

	prom, err := os.ReadFile(promFile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), `videotoframe_jobs_total{status="ok"} 1`)
	assert.Contains(t, string(prom), `videotoframe_stage_duration_seconds_count{stage="clip"} 1`)
	assert.Contains(t, string(prom), `videotoframe_stage_duration_seconds_count{stage="frames"} 1`)
}

func TestRunFailureIsCounted(t *testing.T) {
	skipIfNoFFmpeg(t)

	rec := metrics.New()
	promFile := filepath.Join(t.TempDir(), "videotoframe.prom")
	p := New(zerolog.Nop(), &Config{Metrics: rec, MetricsFile: promFile})

	// validJob's input is not a video, so ffmpeg exits non-zero
	_, err := p.Run(context.Background(), validJob(t), Hooks{})
	require.Error(t, err)

	prom, err := os.ReadFile(promFile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), `videotoframe_jobs_total{status="failed"} 1`)
	assert.Contains(t, string(prom), "videotoframe_frames_extracted_total 0")
}
