package util

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	msPerSecond = 1000
	msPerMinute = 60 * msPerSecond
	msPerHour   = 60 * msPerMinute

	// MaxTimecodeMs is where parsed values saturate. It leaves room for
	// start+duration without overflowing int64.
	MaxTimecodeMs = math.MaxInt64 / 4
)

// FormatTimecode renders milliseconds as HH:MM:SS.mmm. Negative input is treated as zero.
func FormatTimecode(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	h := ms / msPerHour
	ms %= msPerHour
	m := ms / msPerMinute
	ms %= msPerMinute
	s := ms / msPerSecond
	ms %= msPerSecond
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms)
}

// FormatSeconds rounds seconds to the nearest millisecond and formats it as a timecode
func FormatSeconds(sec float64) string {
	return FormatTimecode(SecondsToMs(sec))
}

// SecondsToMs converts fractional seconds to whole milliseconds, rounding to
// nearest. Negative input is zero; huge input saturates at MaxTimecodeMs.
func SecondsToMs(sec float64) int64 {
	if sec <= 0 || math.IsNaN(sec) {
		return 0
	}
	return saturatedMs(sec)
}

func saturatedMs(sec float64) int64 {
	ms := math.Round(sec * msPerSecond)
	switch {
	case ms >= MaxTimecodeMs:
		return MaxTimecodeMs
	case ms <= -MaxTimecodeMs:
		return -MaxTimecodeMs
	}
	return int64(ms)
}

// ParseTimecode parses either bare seconds ("12.5") or HH:MM:SS[.mmm].
// The fractional part of the colon form is padded or truncated to exactly
// three digits. An empty string is zero. Bare seconds may be negative and
// results saturate at ±MaxTimecodeMs; callers clamp to their own range.
func ParseTimecode(text string) (int64, error) {
	t := strings.TrimSpace(text)
	if t == "" {
		return 0, nil
	}

	if !strings.Contains(t, ":") {
		sec, err := strconv.ParseFloat(t, 64)
		// out of range comes back as ±Inf with ErrRange and saturates;
		// a literal "Inf" or "NaN" is rejected
		overflow := errors.Is(err, strconv.ErrRange)
		if (err != nil && !overflow) || math.IsNaN(sec) || (math.IsInf(sec, 0) && !overflow) {
			return 0, fmt.Errorf("invalid timecode: %q", text)
		}
		return saturatedMs(sec), nil
	}

	parts := strings.Split(t, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("invalid timecode: %q (expected HH:MM:SS.mmm)", text)
	}

	hours, err := parseField(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid hours in %q: %w", text, err)
	}
	minutes, err := parseField(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid minutes in %q: %w", text, err)
	}

	secPart, fracPart, hasFrac := strings.Cut(parts[2], ".")
	seconds, err := parseField(secPart)
	if err != nil {
		return 0, fmt.Errorf("invalid seconds in %q: %w", text, err)
	}

	var millis int64
	if hasFrac {
		if !allDigits(fracPart) {
			return 0, fmt.Errorf("invalid milliseconds in %q", text)
		}
		millis, _ = strconv.ParseInt((fracPart + "000")[:3], 10, 64)
	}

	if hours > MaxTimecodeMs/msPerHour || minutes > MaxTimecodeMs/msPerMinute || seconds > MaxTimecodeMs/msPerSecond {
		return MaxTimecodeMs, nil
	}
	return min(hours*msPerHour+minutes*msPerMinute+seconds*msPerSecond+millis, MaxTimecodeMs), nil
}

// parseField reads one non-negative integer field. Values beyond int64
// come back as math.MaxInt64 for the caller to saturate.
func parseField(s string) (int64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty field")
	}
	if !allDigits(s) {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if errors.Is(err, strconv.ErrRange) {
		return math.MaxInt64, nil
	}
	return v, err
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ParseFrameRate parses frame rate from ffprobe format (e.g., "30/1")
func ParseFrameRate(s string) float64 {
	parts := strings.Split(s, "/")
	if len(parts) != 2 {
		return 0
	}
	num, err1 := strconv.ParseFloat(parts[0], 64)
	den, err2 := strconv.ParseFloat(parts[1], 64)
	if err1 != nil || err2 != nil || den == 0 {
		return 0
	}
	return num / den
}
