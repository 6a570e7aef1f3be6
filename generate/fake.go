package generate

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Fake is a scripted Generator. With no Chunks it streams a canned note
// built from the request, one word at a time.
type Fake struct {
	Chunks []string
	Err    error
	Delay  time.Duration

	mu    sync.Mutex
	calls []Request
}

func NewFake(chunks []string, err error) *Fake {
	return &Fake{Chunks: chunks, Err: err}
}

func (f *Fake) Generate(ctx context.Context, req Request, onChunk func(string)) error {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()

	if err := req.Validate(); err != nil {
		return err
	}

	chunks := f.Chunks
	if chunks == nil {
		chunks = cannedNote(req)
	}

	var text strings.Builder
	for _, c := range chunks {
		if f.Delay > 0 {
			select {
			case <-time.After(f.Delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if c == "" {
			continue
		}
		text.WriteString(c)
		onChunk(text.String())
	}
	if f.Err != nil {
		return fmt.Errorf("fake generator error: %w", f.Err)
	}
	return nil
}

func (f *Fake) Calls() []Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Request(nil), f.calls...)
}

func cannedNote(req Request) []string {
	words := strings.Fields(req.Shorthand)
	chunks := []string{req.Mode.Title() + "\n\n"}
	for i, w := range words {
		if i > 0 {
			w = " " + w
		}
		chunks = append(chunks, w)
	}
	return chunks
}
