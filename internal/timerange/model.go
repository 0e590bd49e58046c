// Package timerange keeps a clip's start/end positions and their text mirrors
// consistent no matter which representation was edited last.
package timerange

import (
	"math"
	"strings"

	"github.com/kikiluvv/videotoframe/pkg/util"
)

const (
	// MinGapMs is the smallest allowed distance between start and end.
	MinGapMs int64 = 10

	// DefaultEndMs is where the end handle lands after a new video loads.
	DefaultEndMs int64 = 5000

	// UnknownDurationMs bounds the range when the probe could not read a duration.
	UnknownDurationMs int64 = 24 * 60 * 60 * 1000
)

// Range is a start/end pair in milliseconds.
type Range struct {
	StartMs int64
	EndMs   int64
}

// DurationMs returns End - Start.
func (r Range) DurationMs() int64 {
	return r.EndMs - r.StartMs
}

// Snapshot is everything a view needs to redraw the range controls.
type Snapshot struct {
	Range
	MaxMs        int64
	StartText    string
	EndText      string
	DurationText string
}

// Model holds the authoritative range. The zero value is not usable; call New.
type Model struct {
	startMs int64
	endMs   int64
	maxMs   int64

	startText    string
	endText      string
	durationText string
}

// New returns a model bounded by UnknownDurationMs.
func New() *Model {
	m := &Model{}
	m.Reset(0, false)
	return m
}

// MaxMsFor converts a probed duration in seconds to the slider upper bound.
func MaxMsFor(durationSec float64, known bool) int64 {
	if !known || durationSec <= 0 || math.IsNaN(durationSec) || math.IsInf(durationSec, 0) {
		return UnknownDurationMs
	}
	ms := math.Ceil(durationSec * 1000)
	if ms >= util.MaxTimecodeMs {
		return util.MaxTimecodeMs
	}
	maxMs := int64(ms)
	if maxMs < MinGapMs {
		maxMs = MinGapMs
	}
	return maxMs
}

// Reset re-initializes the range for a newly probed video:
// start=0, end=min(max, 5s).
func (m *Model) Reset(durationSec float64, known bool) {
	m.maxMs = MaxMsFor(durationSec, known)
	m.startMs = 0
	m.endMs = min(m.maxMs, DefaultEndMs)
	m.refreshAll()
}

// SetFromSliderStart moves the start handle. Pushing past the end drags the
// end along to keep the minimum gap.
func (m *Model) SetFromSliderStart(ms int64) Snapshot {
	ms = clamp(ms, 0, m.maxMs-MinGapMs)
	m.startMs = ms
	if m.endMs-m.startMs < MinGapMs {
		m.endMs = min(m.startMs+MinGapMs, m.maxMs)
		m.endText = util.FormatTimecode(m.endMs)
	}
	m.startText = util.FormatTimecode(m.startMs)
	m.refreshDuration()
	return m.Snapshot()
}

// SetFromSliderEnd moves the end handle. Pulling before the start drags the
// start back to keep the minimum gap.
func (m *Model) SetFromSliderEnd(ms int64) Snapshot {
	ms = clamp(ms, MinGapMs, m.maxMs)
	m.endMs = ms
	if m.endMs-m.startMs < MinGapMs {
		m.startMs = max(0, m.endMs-MinGapMs)
		m.startText = util.FormatTimecode(m.startMs)
	}
	m.endText = util.FormatTimecode(m.endMs)
	m.refreshDuration()
	return m.Snapshot()
}

// SetFromText applies the three text fields. A non-empty duration wins over
// the end text. Any parse failure leaves the model untouched and returns false.
func (m *Model) SetFromText(startText, endText, durationText string) (Snapshot, bool) {
	start, err := util.ParseTimecode(startText)
	if err != nil {
		return m.Snapshot(), false
	}
	end, err := util.ParseTimecode(endText)
	if err != nil {
		return m.Snapshot(), false
	}
	if d := strings.TrimSpace(durationText); d != "" {
		dur, err := util.ParseTimecode(d)
		if err != nil {
			return m.Snapshot(), false
		}
		end = start + dur
	}

	start = clamp(start, 0, m.maxMs-MinGapMs)
	end = clamp(max(end, start+MinGapMs), 0, m.maxMs)

	m.startMs, m.endMs = start, end
	m.refreshAll()
	return m.Snapshot(), true
}

// Range returns the current start/end.
func (m *Model) Range() Range {
	return Range{StartMs: m.startMs, EndMs: m.endMs}
}

// MaxMs returns the slider upper bound.
func (m *Model) MaxMs() int64 {
	return m.maxMs
}

// Snapshot returns a copy of the current state.
func (m *Model) Snapshot() Snapshot {
	return Snapshot{
		Range:        m.Range(),
		MaxMs:        m.maxMs,
		StartText:    m.startText,
		EndText:      m.endText,
		DurationText: m.durationText,
	}
}

func (m *Model) refreshAll() {
	m.startText = util.FormatTimecode(m.startMs)
	m.endText = util.FormatTimecode(m.endMs)
	m.refreshDuration()
}

func (m *Model) refreshDuration() {
	m.durationText = util.FormatTimecode(m.endMs - m.startMs)
}

func clamp(v, lo, hi int64) int64 {
	if hi < lo {
		hi = lo
	}
	return max(lo, min(v, hi))
}
