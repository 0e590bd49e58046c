package ffmpeg

import (
	"errors"
	"fmt"
	"strings"
)

// Install hints shown with a missing-binary error
const (
	FfmpegInstallURL = "https://ffmpeg.org/download.html"
)

// ErrQuality is returned when a lossy format gets a quality outside [2, 31].
var ErrQuality = errors.New("quality must be an integer between 2 and 31")

// DependencyError contains information about a missing binary
type DependencyError struct {
	Name       string
	InstallURL string
	Err        error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s not found in PATH. Install from: %s", e.Name, e.InstallURL)
}

func (e *DependencyError) Unwrap() error {
	return e.Err
}

// FormatError reports an image format outside the supported set
type FormatError struct {
	Format string
}

func (e *FormatError) Error() string {
	names := make([]string, len(SupportedFormats))
	for i, f := range SupportedFormats {
		names[i] = string(f)
	}
	return fmt.Sprintf("unsupported image format %q (supported: %s)", e.Format, strings.Join(names, ", "))
}

// ExitError is returned when ffmpeg ran but exited non-zero
type ExitError struct {
	Code   int
	Output string
}

func (e *ExitError) Error() string {
	out := strings.TrimSpace(e.Output)
	if out == "" {
		return fmt.Sprintf("ffmpeg exited with status %d", e.Code)
	}
	return fmt.Sprintf("ffmpeg exited with status %d: %s", e.Code, lastLine(out))
}

func lastLine(s string) string {
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
