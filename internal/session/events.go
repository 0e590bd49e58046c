package session

import (
	"fmt"

	"github.com/kikiluvv/videotoframe/internal/timerange"
)

// EventKind names a UI interaction that edits the time range.
type EventKind int

const (
	EventSliderStart EventKind = iota
	EventSliderEnd
	EventTextCommit
)

func (k EventKind) String() string {
	switch k {
	case EventSliderStart:
		return "slider-start"
	case EventSliderEnd:
		return "slider-end"
	case EventTextCommit:
		return "text-commit"
	default:
		return fmt.Sprintf("event(%d)", int(k))
	}
}

// Event is a range edit coming from the view. Ms is used by slider events,
// the text fields by EventTextCommit.
type Event struct {
	Kind         EventKind
	Ms           int64
	StartText    string
	EndText      string
	DurationText string
}

type handler func(m *timerange.Model, ev Event) (timerange.Snapshot, bool)

// handlers maps each event to its model operation. Text commits that fail
// to parse leave the model as it was.
var handlers = map[EventKind]handler{
	EventSliderStart: func(m *timerange.Model, ev Event) (timerange.Snapshot, bool) {
		return m.SetFromSliderStart(ev.Ms), true
	},
	EventSliderEnd: func(m *timerange.Model, ev Event) (timerange.Snapshot, bool) {
		return m.SetFromSliderEnd(ev.Ms), true
	},
	EventTextCommit: func(m *timerange.Model, ev Event) (timerange.Snapshot, bool) {
		return m.SetFromText(ev.StartText, ev.EndText, ev.DurationText)
	},
}
