package controller

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"medscribe/clipboard"
	"medscribe/generate"
	"medscribe/log"
	"medscribe/prefs"
	"medscribe/theme"
)

const (
	CopyLabel   = "Copy"
	CopiedLabel = "Copied!"

	// GenericError is the only failure text shown to the user. The cause
	// goes to the diagnostics log.
	GenericError = "Failed to generate the note. Please check your connection and try again."

	SampleShorthand = "65M, hx CHF, CKD stg 3, DM2. c/o DOE & B/L LE edema. Meds: Lasix, Coreg, Lantus. Labs: Cr 2.3, BNP 1220. Echo: EF 35%. Plan: ^Lasix, start Entresto, fluid restriction, cardio f/u."

	DefaultCopyReset = 2 * time.Second
)

var (
	ErrEmptyInput = errors.New("shorthand is empty")
	ErrBusy       = errors.New("a note is already being generated")
)

// Rejected reports whether err is a Generate guard (empty input or a stream
// already running) rather than a generator failure. Guards leave the state
// untouched, so front ends drop them without a message.
func Rejected(err error) bool {
	return errors.Is(err, ErrEmptyInput) || errors.Is(err, ErrBusy)
}

// State is a point-in-time copy of everything a front end renders.
type State struct {
	Input       string
	Mode        generate.Mode
	Output      string
	OutputTitle string
	Loading     bool
	Error       string
	CopyLabel   string
	Theme       theme.Theme
	RequestID   uint64
}

// EventSink receives the full state after every change. Calls are
// serialized and made with internal locks held, so a sink must return
// quickly and must not call back into the controller.
type EventSink interface {
	StateChanged(State)
}

type SinkFunc func(State)

func (f SinkFunc) StateChanged(s State) { f(s) }

// Store persists preferences. *prefs.Store satisfies it.
type Store interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

type Options struct {
	Generator generate.Generator
	Clipboard clipboard.Writer
	Store     Store
	Sink      EventSink

	// DetectTheme reports the OS preference. Defaults to theme.Detect.
	DetectTheme func() theme.Theme
	CopyReset   time.Duration
	// Input and Mode seed the form. Empty values select the sample
	// shorthand and summarize.
	Input string
	Mode  generate.Mode
}

type Controller struct {
	gen       generate.Generator
	clip      clipboard.Writer
	store     Store
	copyReset time.Duration

	mu        sync.Mutex
	state     State
	seq       uint64
	cancel    context.CancelFunc
	copyTimer *time.Timer
	generated int

	sinkMu sync.Mutex
	sink   EventSink
}

func New(opts Options) *Controller {
	c := &Controller{
		gen:       opts.Generator,
		clip:      opts.Clipboard,
		store:     opts.Store,
		sink:      opts.Sink,
		copyReset: opts.CopyReset,
	}
	if c.copyReset <= 0 {
		c.copyReset = DefaultCopyReset
	}
	if c.clip == nil {
		c.clip = clipboard.System{}
	}

	input := opts.Input
	if input == "" {
		input = SampleShorthand
	}
	mode := opts.Mode
	if _, err := generate.ParseMode(string(mode)); err != nil {
		mode = generate.ModeSummarize
	}

	detect := opts.DetectTheme
	if detect == nil {
		detect = theme.Detect
	}

	c.state = State{
		Input:       input,
		Mode:        mode,
		OutputTitle: mode.Title(),
		CopyLabel:   CopyLabel,
		Theme:       c.initialTheme(detect),
	}
	// The resolved theme is written back so the next start skips detection.
	c.persistTheme(c.state.Theme)
	return c
}

func (c *Controller) initialTheme(detect func() theme.Theme) theme.Theme {
	if c.store != nil {
		v, ok, err := c.store.Get(prefs.ThemeKey)
		if err != nil {
			log.Warnf("read theme preference: %v", err)
		}
		if ok {
			if t, err := theme.Parse(v); err == nil {
				return t
			}
			log.Warnf("ignoring saved theme %q", v)
		}
	}
	return detect()
}

// SetSink replaces the sink. Front ends that are built after the
// controller use it to attach themselves.
func (c *Controller) SetSink(s EventSink) {
	c.sinkMu.Lock()
	c.sink = s
	c.sinkMu.Unlock()
	c.mu.Lock()
	c.publishLocked()
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Generated reports how many generations completed without error.
func (c *Controller) Generated() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generated
}

// publishLocked snapshots the state, releases c.mu and hands the snapshot
// to the sink. Holding sinkMu across the unlock keeps sink calls in the
// same order as the mutations.
func (c *Controller) publishLocked() {
	s := c.state
	c.sinkMu.Lock()
	c.mu.Unlock()
	defer c.sinkMu.Unlock()
	if c.sink != nil {
		c.sink.StateChanged(s)
	}
}

// SetInput is ignored while a note is generating.
func (c *Controller) SetInput(text string) {
	c.mu.Lock()
	if c.state.Loading || c.state.Input == text {
		c.mu.Unlock()
		return
	}
	c.state.Input = text
	c.publishLocked()
}

// SetMode is ignored while a note is generating or for unknown modes. The
// output title follows the mode of the last generation, not this one.
func (c *Controller) SetMode(m generate.Mode) {
	if _, err := generate.ParseMode(string(m)); err != nil {
		return
	}
	c.mu.Lock()
	if c.state.Loading || c.state.Mode == m {
		c.mu.Unlock()
		return
	}
	c.state.Mode = m
	c.publishLocked()
}

// Generate streams a note for the current input and mode, replacing the
// output with each snapshot. It returns ErrEmptyInput or ErrBusy without
// touching the state, otherwise the generator's error. Partial output is
// kept on failure.
func (c *Controller) Generate(ctx context.Context) error {
	c.mu.Lock()
	if strings.TrimSpace(c.state.Input) == "" {
		c.mu.Unlock()
		return ErrEmptyInput
	}
	if c.state.Loading {
		c.mu.Unlock()
		return ErrBusy
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.seq++
	id := c.seq
	c.cancel = cancel
	c.stopCopyTimerLocked()
	req := generate.Request{Shorthand: c.state.Input, Mode: c.state.Mode}
	c.state.Output = ""
	c.state.Error = ""
	c.state.CopyLabel = CopyLabel
	c.state.OutputTitle = req.Mode.Title()
	c.state.Loading = true
	c.state.RequestID = id
	c.publishLocked()

	var err error
	defer func() {
		c.finish(id, req.Mode, err)
	}()

	err = c.gen.Generate(ctx, req, func(snapshot string) {
		c.mu.Lock()
		if c.state.RequestID != id {
			c.mu.Unlock()
			return
		}
		c.state.Output = snapshot
		c.publishLocked()
	})
	return err
}

func (c *Controller) finish(id uint64, mode generate.Mode, err error) {
	c.mu.Lock()
	if c.state.RequestID != id {
		// Superseded by Cancel; the newer state already cleared loading.
		c.mu.Unlock()
		log.Infof("discarded result of superseded generation %d", id)
		return
	}
	c.cancel = nil
	c.state.Loading = false
	output := c.state.Output
	if err != nil {
		c.state.Error = GenericError
	} else {
		c.generated++
	}
	c.publishLocked()

	if err != nil {
		log.GenerationError(fmt.Sprint(id), string(mode), err)
		return
	}
	log.NoteText(string(mode), output)
}

// Cancel abandons the in-flight generation. Loading clears at once and any
// snapshot the abandoned stream still delivers is dropped. Output received
// so far stays. It reports whether anything was running.
func (c *Controller) Cancel() bool {
	c.mu.Lock()
	if !c.state.Loading {
		c.mu.Unlock()
		return false
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.seq++
	c.state.RequestID = c.seq
	c.state.Loading = false
	c.publishLocked()
	return true
}

// Copy puts the output on the clipboard and flips the copy label to
// "Copied!" until the reset delay passes. It does nothing while there is
// no output, a note is still streaming, or the label has not reset yet.
func (c *Controller) Copy() error {
	c.mu.Lock()
	if c.state.Output == "" || c.state.Loading || c.state.CopyLabel == CopiedLabel {
		c.mu.Unlock()
		return nil
	}
	text, id := c.state.Output, c.state.RequestID
	c.mu.Unlock()

	if err := c.clip.Copy(text); err != nil {
		log.Errorf("copy note: %v", err)
		return fmt.Errorf("copy note: %w", err)
	}

	c.mu.Lock()
	if c.state.RequestID != id || c.state.Loading || c.state.Output == "" {
		c.mu.Unlock()
		return nil
	}
	c.state.CopyLabel = CopiedLabel
	c.stopCopyTimerLocked()
	c.copyTimer = time.AfterFunc(c.copyReset, c.resetCopyLabel)
	c.publishLocked()
	return nil
}

func (c *Controller) resetCopyLabel() {
	c.mu.Lock()
	if c.state.CopyLabel == CopyLabel {
		c.mu.Unlock()
		return
	}
	c.state.CopyLabel = CopyLabel
	c.copyTimer = nil
	c.publishLocked()
}

func (c *Controller) stopCopyTimerLocked() {
	if c.copyTimer != nil {
		c.copyTimer.Stop()
		c.copyTimer = nil
	}
}

// ToggleTheme flips between light and dark and saves the choice. The new
// theme is applied even when saving fails.
func (c *Controller) ToggleTheme() error {
	c.mu.Lock()
	t := c.state.Theme.Toggle()
	c.state.Theme = t
	c.publishLocked()
	return c.persistTheme(t)
}

func (c *Controller) SetTheme(t theme.Theme) error {
	t, err := theme.Parse(string(t))
	if err != nil {
		return err
	}
	c.mu.Lock()
	if c.state.Theme == t {
		c.mu.Unlock()
		return c.persistTheme(t)
	}
	c.state.Theme = t
	c.publishLocked()
	return c.persistTheme(t)
}

func (c *Controller) persistTheme(t theme.Theme) error {
	if c.store == nil {
		return nil
	}
	if err := c.store.Set(prefs.ThemeKey, string(t)); err != nil {
		log.Warnf("save theme preference: %v", err)
		return fmt.Errorf("save theme: %w", err)
	}
	return nil
}

// Close cancels any running generation and stops the copy-label timer.
func (c *Controller) Close() {
	c.Cancel()
	c.mu.Lock()
	c.stopCopyTimerLocked()
	c.mu.Unlock()
}
