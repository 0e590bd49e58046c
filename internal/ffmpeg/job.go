package ffmpeg

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/kikiluvv/videotoframe/pkg/util"
)

// ImageFormat is the container format of extracted frames
type ImageFormat string

const (
	FormatPNG  ImageFormat = "png"
	FormatJPG  ImageFormat = "jpg"
	FormatJPEG ImageFormat = "jpeg"
	FormatWEBP ImageFormat = "webp"
	FormatBMP  ImageFormat = "bmp"
	FormatTIFF ImageFormat = "tiff"
	FormatTIF  ImageFormat = "tif"
	FormatGIF  ImageFormat = "gif"
)

// SupportedFormats lists every accepted format in display order
var SupportedFormats = []ImageFormat{
	FormatPNG, FormatJPG, FormatJPEG, FormatWEBP, FormatBMP, FormatTIFF, FormatTIF, FormatGIF,
}

// ParseImageFormat matches s case-insensitively against SupportedFormats.
func ParseImageFormat(s string) (ImageFormat, error) {
	f := ImageFormat(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range SupportedFormats {
		if f == known {
			return f, nil
		}
	}
	return "", &FormatError{Format: s}
}

// Extension is the file extension written to disk (jpeg->jpg, tif->tiff).
func (f ImageFormat) Extension() string {
	switch f {
	case FormatJPEG:
		return string(FormatJPG)
	case FormatTIF:
		return string(FormatTIFF)
	default:
		return string(f)
	}
}

// UsesQuality reports whether the format is lossy and takes a quality value.
func (f ImageFormat) UsesQuality() bool {
	switch f {
	case FormatJPG, FormatJPEG, FormatWEBP:
		return true
	}
	return false
}

// ParseQuality reads the quality field. Blank means DefaultQuality.
func ParseQuality(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultQuality, nil
	}
	q, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: got %q", ErrQuality, s)
	}
	if err := checkQuality(q); err != nil {
		return 0, err
	}
	return q, nil
}

func checkQuality(q int) error {
	if q < MinQuality || q > MaxQuality {
		return fmt.Errorf("%w: got %d", ErrQuality, q)
	}
	return nil
}

// WebPQuality maps the 2..31 scale (2 best) onto libwebp's 0..100 (100 best).
func WebPQuality(q int) int {
	v := int(100 - float64(q-MinQuality)*70/29)
	return max(0, min(100, v))
}

// Job is one user-requested extraction. Build it with all paths absolute and
// treat it as read-only afterwards.
type Job struct {
	ID         uuid.UUID
	Input      string
	StartMs    int64
	EndMs      int64
	OutputDir  string
	Prefix     string
	Format     ImageFormat
	Quality    int
	UsePTS     bool
	ClipOutput string
}

// NewJob stamps a fresh ID on an otherwise caller-filled job.
func NewJob() *Job {
	return &Job{ID: uuid.New(), Format: FormatPNG, Quality: DefaultQuality}
}

// Start is the -ss argument.
func (j *Job) Start() string {
	return util.FormatTimecode(j.StartMs)
}

// End is the -to argument.
func (j *Job) End() string {
	return util.FormatTimecode(j.EndMs)
}

// WantsClip reports whether a trimmed copy of the range was requested.
func (j *Job) WantsClip() bool {
	return j.ClipOutput != ""
}

// Validate checks everything that must hold before any process is started.
func (j *Job) Validate() error {
	if j.Input == "" {
		return fmt.Errorf("input path is required")
	}
	if !filepath.IsAbs(j.Input) {
		return fmt.Errorf("input path must be absolute: %s", j.Input)
	}
	if j.OutputDir == "" {
		return fmt.Errorf("output directory is required")
	}
	if !filepath.IsAbs(j.OutputDir) {
		return fmt.Errorf("output directory must be absolute: %s", j.OutputDir)
	}
	if j.WantsClip() && !filepath.IsAbs(j.ClipOutput) {
		return fmt.Errorf("clip output must be absolute: %s", j.ClipOutput)
	}
	if j.Prefix == "" {
		return fmt.Errorf("filename prefix is required")
	}
	if j.StartMs < 0 || j.EndMs-j.StartMs < 10 {
		return fmt.Errorf("invalid range %s -> %s: end must be at least 10ms after start", j.Start(), j.End())
	}
	if _, err := ParseImageFormat(string(j.Format)); err != nil {
		return err
	}
	if j.Format.UsesQuality() {
		if err := checkQuality(j.Quality); err != nil {
			return err
		}
	}
	return nil
}

// FramePattern is the output filename template handed to ffmpeg. A literal
// '%' in the folder or prefix is doubled so image2 keeps it.
func (j *Job) FramePattern() string {
	pct := strings.NewReplacer("%", "%%")
	name := fmt.Sprintf("%s_%%0%dd.%s", pct.Replace(j.Prefix), FrameCounterDigits, j.Format.Extension())
	return filepath.Join(pct.Replace(j.OutputDir), name)
}

// FrameGlob matches the files FramePattern produces. Glob metacharacters in
// the folder or prefix match literally.
func (j *Job) FrameGlob() string {
	return filepath.Join(globQuote(j.OutputDir), globQuote(j.Prefix)+"_*."+j.Format.Extension())
}

// globQuote wraps each metacharacter in a one-character class.
func globQuote(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == '*' || r == '?' || r == '[':
			b.WriteString("[" + string(r) + "]")
		case r == '\\' && filepath.Separator != '\\':
			b.WriteString(`\\`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
