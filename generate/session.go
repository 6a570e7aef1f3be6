package generate

import "context"

// Session runs one generation in the background and delivers every snapshot
// on a channel, in order. The consumer must drain Updates or cancel ctx,
// otherwise the generation stalls on the next snapshot.
type Session struct {
	updates chan string
	done    chan struct{}
	err     error
}

func NewSession(ctx context.Context, g Generator, req Request) *Session {
	s := &Session{
		updates: make(chan string, 16),
		done:    make(chan struct{}),
	}
	go func() {
		defer close(s.done)
		defer close(s.updates)
		s.err = g.Generate(ctx, req, func(snapshot string) {
			select {
			case s.updates <- snapshot:
			case <-ctx.Done():
			}
		})
	}()
	return s
}

// Updates is closed once the generation has returned.
func (s *Session) Updates() <-chan string { return s.updates }

func (s *Session) Wait() error {
	<-s.done
	return s.err
}
