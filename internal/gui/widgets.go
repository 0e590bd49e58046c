package gui

import (
	"fyne.io/fyne/v2/widget"
)

// commitEntry is a single-line entry that reports a commit on Enter and when
// it loses focus, which is when the time fields are parsed.
type commitEntry struct {
	widget.Entry
	onCommit func()
}

func newCommitEntry(onCommit func()) *commitEntry {
	e := &commitEntry{onCommit: onCommit}
	e.ExtendBaseWidget(e)
	e.OnSubmitted = func(string) { e.commit() }
	return e
}

func (e *commitEntry) FocusLost() {
	e.Entry.FocusLost()
	e.commit()
}

func (e *commitEntry) commit() {
	if e.onCommit != nil {
		e.onCommit()
	}
}
