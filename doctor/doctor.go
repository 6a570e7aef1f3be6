package doctor

import (
	"context"
	"fmt"
	"io"
	"time"

	"medscribe/clipboard"
	"medscribe/prefs"
)

// Prober reports whether a URL answers. *generate.TracedClient satisfies it.
type Prober interface {
	Probe(ctx context.Context, url string) (time.Duration, int, error)
}

type Clipboard interface {
	Copy(text string) error
	Read() (string, error)
}

type Store interface {
	Get(key string) (string, bool, error)
}

type Options struct {
	Endpoint  string
	Prober    Prober
	Clipboard Clipboard // nil checks the system clipboard
	Store     Store
	StorePath string
	Timeout   time.Duration
}

type systemClipboard struct{}

func (systemClipboard) Copy(text string) error { return clipboard.Copy(text) }
func (systemClipboard) Read() (string, error) { return clipboard.Read() }

// Run executes the diagnostic checks, writing a report to w, and returns an
// exit code (0=all pass, 1=any fail).
func Run(ctx context.Context, w io.Writer, opts Options) int {
	if opts.Clipboard == nil {
		opts.Clipboard = systemClipboard{}
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}

	fmt.Fprintln(w, "medscribe doctor - system diagnostics")
	fmt.Fprintln(w, "=====================================")

	allPass := true
	if !checkEndpoint(ctx, w, opts) {
		allPass = false
	}
	if !checkClipboard(w, opts) {
		allPass = false
	}
	if !checkPreferences(w, opts) {
		allPass = false
	}

	fmt.Fprintln(w)
	if allPass {
		fmt.Fprintln(w, "All checks passed!")
		return 0
	}
	fmt.Fprintln(w, "Some checks failed. See details above.")
	return 1
}

func checkEndpoint(ctx context.Context, w io.Writer, opts Options) bool {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "[1/3] Generation endpoint")
	fmt.Fprintf(w, "  %s\n", opts.Endpoint)

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	rtt, status, err := opts.Prober.Probe(ctx, opts.Endpoint)
	if err != nil {
		fmt.Fprintf(w, "  FAIL: endpoint unreachable: %v\n", err)
		fmt.Fprintln(w, "  Is the note server running? Set MEDSCRIBE_ENDPOINT or --endpoint.")
		return false
	}
	// HEAD on a POST-only route usually answers 405; any answer means the
	// server is up.
	fmt.Fprintf(w, "  PASS: server answered %d in %dms\n", status, rtt.Milliseconds())
	return true
}

func checkClipboard(w io.Writer, opts Options) bool {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "[2/3] Clipboard copy")

	testStr := fmt.Sprintf("medscribe-doctor-%d", time.Now().UnixNano())

	type cbResult struct {
		readback string
		err      error
		phase    string
	}
	ch := make(chan cbResult, 1)
	go func() {
		previous, _ := opts.Clipboard.Read()
		if err := opts.Clipboard.Copy(testStr); err != nil {
			ch <- cbResult{err: err, phase: "write"}
			return
		}
		got, err := opts.Clipboard.Read()
		if previous != "" {
			opts.Clipboard.Copy(previous)
		}
		if err != nil {
			ch <- cbResult{err: err, phase: "read"}
			return
		}
		ch <- cbResult{readback: got}
	}()

	select {
	case res := <-ch:
		if res.err != nil {
			fmt.Fprintf(w, "  FAIL: clipboard %s failed: %v\n", res.phase, res.err)
			return false
		}
		if res.readback != testStr {
			fmt.Fprintf(w, "  FAIL: clipboard mismatch: wrote %q, got %q\n", testStr, res.readback)
			return false
		}
		fmt.Fprintln(w, "  PASS: clipboard write/read verified")
		return true
	case <-time.After(opts.Timeout):
		fmt.Fprintln(w, "  FAIL: clipboard timed out (clipboard tool hung?)")
		return false
	}
}

func checkPreferences(w io.Writer, opts Options) bool {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "[3/3] Preferences")
	if opts.StorePath != "" {
		fmt.Fprintf(w, "  %s\n", opts.StorePath)
	}

	v, ok, err := opts.Store.Get(prefs.ThemeKey)
	if err != nil {
		fmt.Fprintf(w, "  FAIL: cannot read preferences: %v\n", err)
		return false
	}
	if !ok {
		fmt.Fprintln(w, "  PASS: no saved theme, terminal background decides")
		return true
	}
	fmt.Fprintf(w, "  PASS: theme=%s\n", v)
	return true
}
