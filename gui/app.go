//go:build gui

package gui

import (
	"context"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"medscribe/controller"
	"medscribe/generate"
	"medscribe/log"
	"medscribe/theme"
)

const (
	placeholderInput  = "e.g., 55F with DM2, HTN. c/o HA x 2 days..."
	placeholderOutput = "Generated note will appear here..."
)

var modeLabels = map[generate.Mode]string{
	generate.ModeExpand:    "Expand",
	generate.ModeSummarize: "Summarize",
}

type App struct {
	ctx  context.Context
	ctrl *controller.Controller

	fyneApp fyne.App
	window  fyne.Window

	input    *widget.Entry
	modes    *widget.RadioGroup
	action   *widget.Button
	progress *widget.ProgressBarInfinite
	errLabel *widget.Label
	title    *widget.Label
	copyBtn  *widget.Button
	output   *widget.Label
	themeBtn *widget.Button

	theme theme.Theme
	// rendering suppresses widget callbacks fired by render itself.
	rendering bool
}

func NewApp(ctx context.Context, ctrl *controller.Controller) *App {
	return &App{ctx: ctx, ctrl: ctrl}
}

// Run builds the window and blocks in the fyne event loop. It must be
// called from the main goroutine.
func Run(a *App) error {
	a.fyneApp = app.NewWithID("io.medscribe.gui")
	a.window = a.fyneApp.NewWindow("MedScribe AI")

	st := a.ctrl.State()
	a.theme = st.Theme
	a.fyneApp.Settings().SetTheme(newVariantTheme(st.Theme))

	a.window.SetContent(a.build(st))
	a.window.Resize(fyne.NewSize(1100, 700))
	a.window.SetOnClosed(func() { a.ctrl.Cancel() })

	go func() {
		<-a.ctx.Done()
		fyne.Do(a.fyneApp.Quit)
	}()

	a.ctrl.SetSink(a)
	defer a.ctrl.SetSink(nil)

	a.window.ShowAndRun()
	return nil
}

func (a *App) build(st controller.State) fyne.CanvasObject {
	heading := widget.NewLabelWithStyle("🩺 MedScribe AI", fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	subtitle := widget.NewLabel("Your AI-powered medical transcription assistant")
	a.themeBtn = widget.NewButton("", func() {
		if err := a.ctrl.ToggleTheme(); err != nil {
			log.Warnf("toggle theme: %v", err)
		}
	})
	header := container.NewBorder(nil, nil, container.NewVBox(heading, subtitle), a.themeBtn)

	a.input = widget.NewMultiLineEntry()
	a.input.SetPlaceHolder(placeholderInput)
	a.input.Wrapping = fyne.TextWrapWord
	a.input.SetMinRowsVisible(10)
	a.input.SetText(st.Input)
	a.input.OnChanged = func(s string) {
		if a.rendering {
			return
		}
		a.ctrl.SetInput(s)
	}

	a.modes = widget.NewRadioGroup([]string{modeLabels[generate.ModeExpand], modeLabels[generate.ModeSummarize]}, func(label string) {
		if a.rendering {
			return
		}
		for m, l := range modeLabels {
			if l == label {
				a.ctrl.SetMode(m)
			}
		}
	})
	a.modes.Horizontal = true
	a.modes.Required = true

	a.action = widget.NewButton("", func() {
		go func() {
			// Failures already reach the window through state.Error.
			if err := a.ctrl.Generate(a.ctx); err != nil && !controller.Rejected(err) {
				log.Errorf("generate: %v", err)
			}
		}()
	})
	a.action.Importance = widget.HighImportance
	a.progress = widget.NewProgressBarInfinite()

	a.errLabel = widget.NewLabel("")
	a.errLabel.Importance = widget.DangerImportance
	a.errLabel.Wrapping = fyne.TextWrapWord

	inputSection := container.NewVBox(
		widget.NewLabelWithStyle("Clinical Shorthand", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		a.input,
		container.NewHBox(widget.NewLabel("Mode"), a.modes),
		a.action,
		a.progress,
		a.errLabel,
	)

	a.title = widget.NewLabelWithStyle("", fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	a.copyBtn = widget.NewButton("", func() {
		go func() {
			if err := a.ctrl.Copy(); err != nil {
				log.Warnf("copy: %v", err)
			}
		}()
	})
	a.output = widget.NewLabel("")
	a.output.Wrapping = fyne.TextWrapWord
	outputSection := container.NewBorder(
		container.NewBorder(nil, nil, nil, a.copyBtn, a.title),
		nil, nil, nil,
		container.NewVScroll(a.output),
	)

	a.render(st)

	split := container.NewHSplit(inputSection, outputSection)
	split.Offset = 0.45
	return container.NewBorder(header, nil, nil, nil, split)
}

// StateChanged hands the state to the UI goroutine.
func (a *App) StateChanged(st controller.State) {
	fyne.Do(func() { a.render(st) })
}

func (a *App) render(st controller.State) {
	a.rendering = true
	defer func() { a.rendering = false }()

	if st.Loading {
		a.input.Disable()
		a.modes.Disable()
		a.progress.Show()
		a.progress.Start()
	} else {
		a.input.Enable()
		a.modes.Enable()
		a.progress.Stop()
		a.progress.Hide()
	}

	a.action.SetText(st.Mode.Action())
	if st.Loading || strings.TrimSpace(st.Input) == "" {
		a.action.Disable()
	} else {
		a.action.Enable()
	}
	if label := modeLabels[st.Mode]; a.modes.Selected != label {
		a.modes.SetSelected(label)
	}

	a.errLabel.SetText(st.Error)
	if st.Error == "" {
		a.errLabel.Hide()
	} else {
		a.errLabel.Show()
	}

	a.title.SetText(st.OutputTitle)
	switch {
	case st.Output != "":
		a.output.SetText(st.Output)
		a.output.Importance = widget.MediumImportance
	case st.Loading:
		a.output.SetText("Generating...")
		a.output.Importance = widget.LowImportance
	default:
		a.output.SetText(placeholderOutput)
		a.output.Importance = widget.LowImportance
	}
	a.output.Refresh()

	a.copyBtn.SetText(st.CopyLabel)
	if st.Output != "" && !st.Loading {
		a.copyBtn.Show()
	} else {
		a.copyBtn.Hide()
	}
	if st.CopyLabel == controller.CopiedLabel {
		a.copyBtn.Disable()
	} else {
		a.copyBtn.Enable()
	}

	a.themeBtn.SetText("Switch to " + st.Theme.Toggle().String() + " mode")
	if st.Theme != a.theme {
		a.theme = st.Theme
		a.fyneApp.Settings().SetTheme(newVariantTheme(st.Theme))
	}
}
