package shutdown

import (
	"context"
	"os"
	"os/signal"
)

// Context returns a child of parent that is canceled on the first interrupt
// or termination signal. Call stop to release the signal handler.
func Context(parent context.Context) (ctx context.Context, stop context.CancelFunc) {
	return signal.NotifyContext(parent, signals...)
}

// Notify relays shutdown signals to ch.
func Notify(ch chan os.Signal) {
	signal.Notify(ch, signals...)
}
