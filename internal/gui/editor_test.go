package gui

import (
	"errors"
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"

	"github.com/kikiluvv/videotoframe/internal/session"
)

func TestDurationText(t *testing.T) {
	assert.Equal(t, "Duration: 00:01:05.250", durationText(session.DurationMsg{Seconds: 65.25, Known: true}))
	assert.Equal(t, "Duration: (ffprobe unavailable)", durationText(session.DurationMsg{Unavailable: true, Err: errors.New("x")}))
	assert.Equal(t, "Duration: error reading video", durationText(session.DurationMsg{Err: errors.New("x")}))
	assert.Equal(t, "Duration: -", durationText(session.DurationMsg{}))
}

func TestCommitEntryFiresOnSubmitAndFocusLoss(t *testing.T) {
	test.NewTempApp(t)

	commits := 0
	e := newCommitEntry(func() { commits++ })

	e.OnSubmitted("00:00:01.000")
	assert.Equal(t, 1, commits)

	e.FocusGained()
	e.FocusLost()
	assert.Equal(t, 2, commits)
}
