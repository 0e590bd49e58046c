package gui

import (
	"errors"
	"fmt"
	"image"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
	"github.com/ideamans/go-l10n"
	"github.com/rs/zerolog"

	"github.com/kikiluvv/videotoframe/internal/config"
	"github.com/kikiluvv/videotoframe/internal/ffmpeg"
	"github.com/kikiluvv/videotoframe/internal/logging"
	"github.com/kikiluvv/videotoframe/internal/session"
	"github.com/kikiluvv/videotoframe/internal/timerange"
	"github.com/kikiluvv/videotoframe/pkg/util"
)

const (
	appID       = "io.github.kikiluvv.videotoframe"
	title       = "VideoToFrame"
	extractText = "Extract frames"
	runningText = "Extracting..."
)

// Editor holds the window and every widget the session drives.
type Editor struct {
	logger  zerolog.Logger
	cfg     *config.Config
	session *session.Session
	win     fyne.Window

	inputEntry    *widget.Entry
	durationLabel *widget.Label
	startSlider   *widget.Slider
	endSlider     *widget.Slider
	startEntry    *commitEntry
	endEntry      *commitEntry
	durationEntry *commitEntry

	outDirEntry  *widget.Entry
	prefixEntry  *widget.Entry
	formatSelect *widget.Select
	qualityEntry *widget.Entry
	clipCheck    *widget.Check
	clipEntry    *widget.Entry
	clipButton   *widget.Button
	ptsCheck     *widget.Check

	extractBtn *widget.Button
	progress   *widget.ProgressBar
	logText    *widget.Entry
	thumb      *canvas.Image
	thumbInfo  *widget.Label

	// set while the view is being rewritten from a snapshot so the
	// widget callbacks don't feed it back into the session
	syncing bool
}

// Run opens the main window and blocks until it is closed.
func Run(logger zerolog.Logger, cfg *config.Config, backend session.Backend) {
	a := app.NewWithID(appID)
	e := &Editor{cfg: cfg}
	e.win = a.NewWindow(title)
	e.win.Resize(fyne.NewSize(cfg.GUI.Width, cfg.GUI.Height))

	// warnings and errors from the worker side also land in the log area
	mirror := logging.NewLineWriter(zerolog.WarnLevel, func(line string) {
		fyne.Do(func() { e.appendLog(line) })
	})
	logger = logger.Output(zerolog.MultiLevelWriter(logging.Console(), mirror))
	e.logger = logger.With().Str("component", "gui").Logger()

	e.session = session.New(logger, backend, session.Defaults{
		OutputDir: cfg.OutputDir,
		Prefix:    cfg.Prefix,
		Format:    cfg.Format,
		Quality:   cfg.Quality,
		ClipFile:  cfg.ClipFile,
	})

	e.win.SetContent(e.build())
	e.render(e.session.Snapshot())

	go e.pump()

	e.win.ShowAndRun()
}

func (e *Editor) build() fyne.CanvasObject {
	defaults := e.session.Defaults()

	// Input
	e.inputEntry = widget.NewEntry()
	e.inputEntry.SetPlaceHolder(l10n.T("Path to a video file"))
	e.inputEntry.OnSubmitted = func(path string) { e.selectInput(path) }
	inputButton := widget.NewButton(l10n.T("Choose..."), e.pickInput)
	inputButton.Importance = widget.HighImportance
	e.durationLabel = widget.NewLabel(l10n.T("Duration: -"))

	// Range
	e.startSlider = widget.NewSlider(0, float64(timerange.UnknownDurationMs))
	e.startSlider.Step = 1
	e.startSlider.OnChanged = func(v float64) {
		e.dispatch(session.Event{Kind: session.EventSliderStart, Ms: int64(v)})
	}
	e.endSlider = widget.NewSlider(0, float64(timerange.UnknownDurationMs))
	e.endSlider.Step = 1
	e.endSlider.OnChanged = func(v float64) {
		e.dispatch(session.Event{Kind: session.EventSliderEnd, Ms: int64(v)})
	}

	e.startEntry = newCommitEntry(e.commitText)
	e.endEntry = newCommitEntry(e.commitText)
	e.durationEntry = newCommitEntry(e.commitText)

	// Output
	e.outDirEntry = widget.NewEntry()
	e.outDirEntry.SetText(defaults.OutputDir)
	outDirButton := widget.NewButton(l10n.T("Choose..."), e.pickOutDir)

	e.prefixEntry = widget.NewEntry()
	e.prefixEntry.SetText(defaults.Prefix)

	e.qualityEntry = widget.NewEntry()
	e.qualityEntry.SetText(fmt.Sprint(defaults.Quality))

	formats := make([]string, len(ffmpeg.SupportedFormats))
	for i, f := range ffmpeg.SupportedFormats {
		formats[i] = string(f)
	}
	e.formatSelect = widget.NewSelect(formats, e.formatChanged)
	e.formatSelect.SetSelected(strings.ToLower(defaults.Format))

	e.clipEntry = widget.NewEntry()
	e.clipEntry.SetText(defaults.ClipFile)
	e.clipButton = widget.NewButton(l10n.T("Save as..."), e.pickClipFile)
	e.clipCheck = widget.NewCheck(l10n.T("Export trimmed clip (MP4)"), e.clipToggled)
	e.clipToggled(false)

	e.ptsCheck = widget.NewCheck(l10n.T("Use PTS in file names (real timestamps)"), nil)

	// Actions
	e.extractBtn = widget.NewButton(l10n.T(extractText), e.extract)
	e.extractBtn.Importance = widget.HighImportance
	clearBtn := widget.NewButton(l10n.T("Clear log"), func() { e.logText.SetText("") })

	e.progress = widget.NewProgressBar()

	e.logText = widget.NewMultiLineEntry()
	e.logText.SetPlaceHolder(l10n.T("Log output will appear here..."))
	e.logText.Wrapping = fyne.TextWrapWord

	e.thumb = canvas.NewImageFromImage(nil)
	e.thumb.FillMode = canvas.ImageFillContain
	side := float32(e.cfg.GUI.ThumbSize)
	e.thumb.SetMinSize(fyne.NewSize(side, side*9/16))
	e.thumbInfo = widget.NewLabel("")

	bold := fyne.TextStyle{Bold: true}

	inputSection := container.NewVBox(
		widget.NewLabelWithStyle(l10n.T("Input video"), fyne.TextAlignLeading, bold),
		container.NewBorder(nil, nil, nil, inputButton, e.inputEntry),
		e.durationLabel,
	)

	rangeSection := container.NewVBox(
		widget.NewLabel(l10n.T("Start (drag or edit the field):")),
		e.startSlider,
		widget.NewLabel(l10n.T("End (drag or edit the field):")),
		e.endSlider,
		container.NewGridWithColumns(3,
			container.NewBorder(nil, nil, widget.NewLabel(l10n.T("Start")), nil, e.startEntry),
			container.NewBorder(nil, nil, widget.NewLabel(l10n.T("End")), nil, e.endEntry),
			container.NewBorder(nil, nil, widget.NewLabel(l10n.T("Duration")), nil, e.durationEntry),
		),
	)

	outputSection := container.NewVBox(
		container.NewBorder(nil, nil, widget.NewLabel(l10n.T("Frames folder")), outDirButton, e.outDirEntry),
		container.NewGridWithColumns(3,
			container.NewBorder(nil, nil, widget.NewLabel(l10n.T("Prefix")), nil, e.prefixEntry),
			container.NewBorder(nil, nil, widget.NewLabel(l10n.T("Format")), nil, e.formatSelect),
			container.NewBorder(nil, nil, widget.NewLabel(l10n.T("Quality (2-31)")), nil, e.qualityEntry),
		),
		e.clipCheck,
		container.NewBorder(nil, nil, nil, e.clipButton, e.clipEntry),
		e.ptsCheck,
	)

	actions := container.NewHBox(e.extractBtn, layout.NewSpacer(), clearBtn)

	top := container.NewVBox(
		inputSection,
		widget.NewSeparator(),
		rangeSection,
		widget.NewSeparator(),
		outputSection,
		actions,
		e.progress,
		widget.NewLabelWithStyle(l10n.T("Log"), fyne.TextAlignLeading, bold),
	)

	previewPane := container.NewVBox(e.thumb, e.thumbInfo)

	return container.NewPadded(container.NewBorder(top, nil, nil, previewPane, e.logText))
}

// render writes a range snapshot into the sliders and text fields.
func (e *Editor) render(snap timerange.Snapshot) {
	e.syncing = true
	defer func() { e.syncing = false }()

	maxMs := float64(snap.MaxMs)
	e.startSlider.Max = maxMs
	e.endSlider.Max = maxMs
	e.startSlider.SetValue(float64(snap.StartMs))
	e.endSlider.SetValue(float64(snap.EndMs))
	e.startSlider.Refresh()
	e.endSlider.Refresh()

	e.startEntry.SetText(snap.StartText)
	e.endEntry.SetText(snap.EndText)
	e.durationEntry.SetText(snap.DurationText)
}

func (e *Editor) dispatch(ev session.Event) {
	if e.syncing {
		return
	}
	snap, err := e.session.Dispatch(ev)
	if errors.Is(err, session.ErrUnparsed) {
		return
	}
	if err != nil {
		e.logger.Error().Err(err).Msg("dispatch failed")
		return
	}
	e.render(snap)
}

func (e *Editor) commitText() {
	e.dispatch(session.Event{
		Kind:         session.EventTextCommit,
		StartText:    e.startEntry.Text,
		EndText:      e.endEntry.Text,
		DurationText: e.durationEntry.Text,
	})
}

func (e *Editor) formatChanged(format string) {
	f, err := ffmpeg.ParseImageFormat(format)
	if err == nil && f.UsesQuality() {
		e.qualityEntry.Enable()
	} else {
		e.qualityEntry.Disable()
	}
}

func (e *Editor) clipToggled(on bool) {
	if on {
		e.clipEntry.Enable()
		e.clipButton.Enable()
	} else {
		e.clipEntry.Disable()
		e.clipButton.Disable()
	}
}

func (e *Editor) appendLog(line string) {
	e.logText.SetText(e.logText.Text + line + "\n")
	e.logText.CursorRow = strings.Count(e.logText.Text, "\n")
	e.logText.Refresh()
}

func (e *Editor) setThumbnail(img image.Image, info string) {
	e.thumb.Image = img
	e.thumb.Refresh()
	e.thumbInfo.SetText(info)
}

func (e *Editor) showError(title string, err error) {
	dialog.ShowError(fmt.Errorf("%s: %w", title, err), e.win)
}

func videoFilter() storage.FileFilter {
	return storage.NewExtensionFileFilter([]string{".mp4", ".mov", ".mkv", ".avi", ".webm", ".m4v", ".flv", ".wmv", ".mpg", ".mpeg", ".ts"})
}

func durationText(m session.DurationMsg) string {
	switch {
	case m.Known:
		return l10n.F("Duration: %s", util.FormatSeconds(m.Seconds))
	case m.Unavailable:
		return l10n.T("Duration: (ffprobe unavailable)")
	case m.Err != nil:
		return l10n.T("Duration: error reading video")
	default:
		return l10n.T("Duration: -")
	}
}
