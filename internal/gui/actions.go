package gui

import (
	"errors"
	"fmt"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"github.com/ideamans/go-l10n"

	"github.com/kikiluvv/videotoframe/internal/ffmpeg"
	"github.com/kikiluvv/videotoframe/internal/preview"
	"github.com/kikiluvv/videotoframe/internal/session"
)

func (e *Editor) pickInput() {
	if e.session.Busy() {
		dialog.ShowInformation(l10n.T("Extraction in progress"),
			l10n.T("An extraction is running. Wait for it to finish before loading another video."), e.win)
		return
	}

	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		defer reader.Close()
		e.selectInput(reader.URI().Path())
	}, e.win)
	fd.SetFilter(videoFilter())
	fd.Show()
}

func (e *Editor) selectInput(path string) {
	path = strings.TrimSpace(path)
	err := e.session.SelectInput(path)
	switch {
	case errors.Is(err, session.ErrBusy):
		dialog.ShowInformation(l10n.T("In progress"), err.Error(), e.win)
		return
	case err != nil:
		e.showError(l10n.T("Input"), err)
		return
	}
	e.inputEntry.SetText(path)
	e.durationLabel.SetText(l10n.T("Duration: loading..."))
}

func (e *Editor) pickOutDir() {
	dialog.ShowFolderOpen(func(dir fyne.ListableURI, err error) {
		if err != nil || dir == nil {
			return
		}
		e.outDirEntry.SetText(dir.Path())
	}, e.win)
}

func (e *Editor) pickClipFile() {
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		writer.Close()
		path := writer.URI().Path()
		if !strings.HasSuffix(strings.ToLower(path), ".mp4") {
			path += ".mp4"
		}
		e.clipEntry.SetText(path)
	}, e.win)
	fd.SetFileName(e.session.Defaults().ClipFile)
	fd.Show()
}

func (e *Editor) extract() {
	job, err := e.session.StartExtraction(session.Request{
		Input:      e.inputEntry.Text,
		OutputDir:  e.outDirEntry.Text,
		Prefix:     e.prefixEntry.Text,
		Format:     e.formatSelect.Selected,
		Quality:    e.qualityEntry.Text,
		UsePTS:     e.ptsCheck.Checked,
		ExportClip: e.clipCheck.Checked,
		ClipPath:   e.clipEntry.Text,
	})
	if err != nil {
		e.showStartError(err)
		return
	}

	e.extractBtn.SetText(l10n.T(runningText))
	e.extractBtn.Disable()
	e.progress.SetValue(0)
	e.setThumbnail(nil, "")
	e.appendLog(fmt.Sprintf("[INFO] %s -> %s (%s)", job.Start(), job.End(), strings.ToUpper(string(job.Format))))
}

func (e *Editor) showStartError(err error) {
	var (
		depErr    *ffmpeg.DependencyError
		formatErr *ffmpeg.FormatError
	)
	switch {
	case errors.Is(err, session.ErrBusy):
		dialog.ShowInformation(l10n.T("In progress"), err.Error(), e.win)
	case errors.As(err, &depErr):
		e.showError(l10n.T("Dependencies"), err)
	case errors.Is(err, session.ErrInputMissing):
		e.showError(l10n.T("Input"), err)
	case errors.As(err, &formatErr):
		e.showError(l10n.T("Format"), err)
	case errors.Is(err, ffmpeg.ErrQuality):
		e.showError(l10n.T("Quality"), err)
	default:
		e.showError(l10n.T("Extraction"), err)
	}
}

// pump forwards worker messages to the UI goroutine.
func (e *Editor) pump() {
	for msg := range e.session.Results() {
		fyne.Do(func() { e.apply(msg) })
	}
}

func (e *Editor) apply(msg session.Message) {
	e.session.Apply(msg)

	switch m := msg.(type) {
	case session.DurationMsg:
		e.durationLabel.SetText(durationText(m))
		e.render(e.session.Snapshot())
	case session.LogMsg:
		e.appendLog(m.Line)
	case session.ProgressMsg:
		e.progress.SetValue(m.Fraction)
	case session.DoneMsg:
		e.finish(m)
	}
}

func (e *Editor) finish(m session.DoneMsg) {
	e.extractBtn.SetText(l10n.T(extractText))
	e.extractBtn.Enable()

	if m.Err != nil {
		e.appendLog("[ERROR] " + m.Err.Error())
		return
	}

	e.progress.SetValue(1)
	dialog.ShowInformation(l10n.T("Done"),
		l10n.F("%d %s frames saved to:\n%s", m.Report.FrameCount, strings.ToUpper(m.Report.Format), m.Report.OutputDir),
		e.win)

	if m.Report.FirstFrame == "" {
		return
	}
	first := m.Report.FirstFrame
	maxSide := e.cfg.GUI.ThumbSize
	go func() {
		thumb, stats, err := preview.Thumbnail(first, maxSide)
		if err != nil {
			e.logger.Warn().Err(err).Str("frame", first).Msg("preview unavailable")
			return
		}
		fyne.Do(func() { e.setThumbnail(thumb, stats.String()) })
	}()
}
