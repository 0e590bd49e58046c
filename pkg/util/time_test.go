package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimecode(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"", 0},
		{"   ", 0},
		{"01:02:03.456", 3723456},
		{"12.5", 12500},
		{"0", 0},
		{"00:00:05", 5000},
		{"00:00:01.5", 1500},
		{"00:00:01.05", 1050},
		{"00:00:01.123456", 1123},
		{"25:00:00.000", 90000000},
		{" 00:01:00.000 ", 60000},
		{"0.0004", 0},
		{"0.0006", 1},
		{"-5", -5000},
		{"-0.25", -250},
	}

	for _, tc := range cases {
		got, err := ParseTimecode(tc.in)
		require.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}

func TestParseTimecodeRejectsMalformed(t *testing.T) {
	for _, in := range []string{
		"abc",
		"-00:00:01",
		"1:2",
		"1:2:3:4",
		"aa:00:00",
		"00:-1:00",
		"00:00:1x.000",
		"00:00:01.2a",
		"00::01",
		"NaN",
		"Inf",
		"-inf",
		"Infinity",
	} {
		_, err := ParseTimecode(in)
		assert.Error(t, err, "input %q", in)
	}
}

func TestParseTimecodeSaturates(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"1e300", MaxTimecodeMs},
		{"1e400", MaxTimecodeMs},
		{"-1e300", -MaxTimecodeMs},
		{"9999999999999:00:00", MaxTimecodeMs},
		{"99999999999999999999:00:00", MaxTimecodeMs},
		{"00:99999999999999999:00", MaxTimecodeMs},
		{"00:00:99999999999999999999.5", MaxTimecodeMs},
	}

	for _, tc := range cases {
		got, err := ParseTimecode(tc.in)
		require.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}

	assert.Equal(t, int64(MaxTimecodeMs), SecondsToMs(1e300))
}

func TestFormatTimecode(t *testing.T) {
	assert.Equal(t, "00:00:00.000", FormatTimecode(0))
	assert.Equal(t, "00:00:00.000", FormatTimecode(-250))
	assert.Equal(t, "00:00:00.010", FormatTimecode(10))
	assert.Equal(t, "01:02:03.456", FormatTimecode(3723456))
	assert.Equal(t, "100:00:00.001", FormatTimecode(100*msPerHour+1))
}

func TestFormatSecondsRounds(t *testing.T) {
	assert.Equal(t, "00:00:05.000", FormatSeconds(5.0))
	assert.Equal(t, "00:00:10.001", FormatSeconds(10.0006))
	assert.Equal(t, "00:00:00.000", FormatSeconds(-3))
}

func TestTimecodeRoundTrip(t *testing.T) {
	for ms := int64(0); ms <= 10_000; ms += 7 {
		tc := FormatTimecode(ms)
		parsed, err := ParseTimecode(tc)
		require.NoError(t, err)
		if got := FormatTimecode(parsed); got != tc {
			t.Fatalf("round trip of %d: %s -> %d -> %s", ms, tc, parsed, got)
		}
	}

	// hour-scale values
	for _, ms := range []int64{3_599_999, 3_600_000, 86_399_999, 360_000_001} {
		parsed, err := ParseTimecode(FormatTimecode(ms))
		require.NoError(t, err)
		assert.Equal(t, ms, parsed)
	}
}

func TestParseFrameRate(t *testing.T) {
	assert.InDelta(t, 30.0, ParseFrameRate("30/1"), 1e-9)
	assert.InDelta(t, 29.97, ParseFrameRate("30000/1001"), 1e-3)
	assert.Zero(t, ParseFrameRate("30"))
	assert.Zero(t, ParseFrameRate("30/0"))
}

func TestFileHelpers(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "a", "b")

	require.NoError(t, EnsureDir(nested))
	assert.False(t, FileExists(nested), "directories are not files")

	file := filepath.Join(nested, "x.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
	assert.True(t, FileExists(file))

	abs, err := AbsPath("", "frames_out")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(abs))
	assert.Equal(t, "frames_out", filepath.Base(abs))
}
