package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"medscribe/controller"
	"medscribe/generate"
	"medscribe/log"
	"medscribe/theme"
)

// TUI message types
type stateMsg controller.State
type generateDoneMsg struct{ err error }
type copyDoneMsg struct{ err error }
type tickMsg time.Time

const (
	placeholderInput  = "e.g., 55F with DM2, HTN. c/o HA x 2 days..."
	placeholderOutput = "Generated note will appear here..."
	maxContentWidth   = 100
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

var modeLabels = []struct {
	mode  generate.Mode
	label string
}{
	{generate.ModeExpand, "Expand"},
	{generate.ModeSummarize, "Summarize"},
}

// tuiSink keeps only the newest state and wakes the program. It never
// blocks, so the controller can publish from any goroutine while the
// program is busy in Update.
type tuiSink struct {
	mu     sync.Mutex
	latest controller.State
	notify chan struct{}
	done   chan struct{}
	once   sync.Once
}

func newTUISink() *tuiSink {
	return &tuiSink{
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

func (s *tuiSink) StateChanged(st controller.State) {
	s.mu.Lock()
	s.latest = st
	s.mu.Unlock()
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// wait delivers the newest state once something changed.
func (s *tuiSink) wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-s.notify:
		case <-s.done:
			return nil
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		return stateMsg(s.latest)
	}
}

func (s *tuiSink) close() {
	s.once.Do(func() { close(s.done) })
}

type tuiModel struct {
	ctx           context.Context
	ctrl          *controller.Controller
	sink          *tuiSink
	state         controller.State
	input         []rune
	frame         int
	width, height int
	status        string // last local problem, e.g. a failed copy
}

func newTUIModel(ctx context.Context, ctrl *controller.Controller, sink *tuiSink) tuiModel {
	st := ctrl.State()
	return tuiModel{
		ctx:   ctx,
		ctrl:  ctrl,
		sink:  sink,
		state: st,
		input: []rune(st.Input),
	}
}

func tuiTick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m tuiModel) Init() tea.Cmd {
	return tea.Batch(m.sink.wait(), tuiTick())
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		if m.state.Loading {
			m.frame++
		}
		return m, tuiTick()

	case stateMsg:
		m.state = controller.State(msg)
		return m, m.sink.wait()

	case generateDoneMsg:
		// Empty input and double submits are silent; other failures
		// already show through state.Error.
		if msg.err != nil && !controller.Rejected(msg.err) {
			log.Errorf("generate: %v", msg.err)
		}

	case copyDoneMsg:
		if msg.err != nil {
			m.status = "Copy failed: " + msg.err.Error()
		}

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m tuiModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.ctrl.Cancel()
		m.sink.close()
		return m, tea.Quit
	case "esc":
		m.ctrl.Cancel()
		return m, nil
	case "ctrl+s":
		m.status = ""
		ctrl, ctx := m.ctrl, m.ctx
		return m, func() tea.Msg { return generateDoneMsg{err: ctrl.Generate(ctx)} }
	case "ctrl+y":
		m.status = ""
		ctrl := m.ctrl
		return m, func() tea.Msg { return copyDoneMsg{err: ctrl.Copy()} }
	case "ctrl+t":
		if err := m.ctrl.ToggleTheme(); err != nil {
			m.status = "Theme not saved: " + err.Error()
		}
		return m, nil
	case "tab":
		next := generate.ModeExpand
		if m.state.Mode == generate.ModeExpand {
			next = generate.ModeSummarize
		}
		m.ctrl.SetMode(next)
		return m, nil
	}

	if m.state.Loading {
		return m, nil
	}

	switch msg.Type {
	case tea.KeyBackspace:
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
	case tea.KeyCtrlU:
		m.input = nil
	case tea.KeyEnter:
		m.input = append(m.input, '\n')
	case tea.KeySpace:
		m.input = append(m.input, ' ')
	case tea.KeyRunes:
		m.input = append(m.input, msg.Runes...)
	default:
		return m, nil
	}
	m.ctrl.SetInput(string(m.input))
	// The controller may have refused the edit.
	m.input = []rune(m.ctrl.State().Input)
	return m, nil
}

func (m tuiModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	st := m.state
	p := theme.PaletteFor(st.Theme)
	width := max(min(m.width-4, maxContentWidth), 20)
	spinner := spinnerFrames[m.frame%len(spinnerFrames)]

	header := lipgloss.JoinHorizontal(lipgloss.Top,
		p.Header.Render("🩺 MedScribe AI"),
		"  ",
		p.Subtitle.Render("Your AI-powered medical transcription assistant"),
	)
	themeHint := p.Muted.Render(fmt.Sprintf("ctrl+t: %s mode", st.Theme.Toggle()))

	inputText := string(m.input)
	switch {
	case inputText == "" && !st.Loading:
		inputText = p.Muted.Render(placeholderInput)
	case !st.Loading:
		inputText += "▏"
	}
	inputBox := p.Input.Width(width).Render(inputText)

	modes := make([]string, 0, len(modeLabels))
	for _, ml := range modeLabels {
		if ml.mode == st.Mode {
			modes = append(modes, p.Active.Render(ml.label))
		} else {
			modes = append(modes, p.Inactive.Render(ml.label))
		}
	}
	modeLine := p.Label.Render("Mode ") + strings.Join(modes, " ") + p.Muted.Render("  tab")

	action := st.Mode.Action()
	if st.Loading {
		action = spinner + " " + action
	}
	actionLine := p.Active.Render(action) + p.Muted.Render("  ctrl+s")

	outputHeader := p.Title.Render(st.OutputTitle)
	if st.Output != "" && !st.Loading {
		if st.CopyLabel == controller.CopiedLabel {
			outputHeader += "  " + p.Copied.Render(st.CopyLabel)
		} else {
			outputHeader += "  " + p.Muted.Render("ctrl+y "+st.CopyLabel)
		}
	}

	var body string
	switch {
	case st.Output != "":
		body = st.Output
	case st.Loading:
		body = p.Muted.Render(spinner + " Generating...")
	default:
		body = p.Muted.Render(placeholderOutput)
	}
	outputBox := p.Output.Width(width).Render(body)

	sections := []string{
		header,
		themeHint,
		"",
		p.Label.Render("Clinical Shorthand"),
		inputBox,
		modeLine,
		actionLine,
	}
	if st.Error != "" {
		sections = append(sections, p.Error.Render(st.Error))
	}
	sections = append(sections, "", outputHeader, outputBox)
	if m.status != "" {
		sections = append(sections, p.Error.Render(m.status))
	}
	sections = append(sections, p.Muted.Render("esc cancel · ctrl+u clear · ctrl+c quit"))

	return lipgloss.NewStyle().Padding(1, 2).Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

// runTUI blocks until the user quits or ctx is canceled.
func runTUI(ctx context.Context, ctrl *controller.Controller) error {
	sink := newTUISink()
	defer sink.close()
	ctrl.SetSink(sink)
	defer ctrl.SetSink(nil)

	p := tea.NewProgram(newTUIModel(ctx, ctrl, sink), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		log.Errorf("TUI error: %v", err)
		return err
	}
	return nil
}
