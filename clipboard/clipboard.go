package clipboard

import (
	"errors"
	"sync"

	cb "github.com/atotto/clipboard"
)

// ErrUnavailable is returned when no system clipboard utility can be found
// (xclip, xsel or wl-clipboard on Linux).
var ErrUnavailable = errors.New("system clipboard unavailable")

// Writer places text on a clipboard.
type Writer interface {
	Copy(text string) error
}

// System is the OS clipboard.
type System struct{}

func (System) Copy(text string) error { return Copy(text) }

func Available() bool {
	return !cb.Unsupported
}

func Read() (string, error) {
	if cb.Unsupported {
		return "", ErrUnavailable
	}
	return cb.ReadAll()
}

func Copy(text string) error {
	if cb.Unsupported {
		return ErrUnavailable
	}
	return cb.WriteAll(text)
}

// Memory is an in-process clipboard for headless runs and tests.
type Memory struct {
	mu    sync.Mutex
	text  string
	Err   error
	count int
}

func (m *Memory) Copy(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.text = text
	m.count++
	return nil
}

func (m *Memory) Text() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text
}

// Writes reports how many successful copies were made.
func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.count
}
