package generate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionDeliversEverySnapshotInOrder(t *testing.T) {
	chunks := make([]string, 100)
	for i := range chunks {
		chunks[i] = "x"
	}
	sess := NewSession(context.Background(), NewFake(chunks, nil), Request{Shorthand: "x", Mode: ModeExpand})

	var got []string
	for s := range sess.Updates() {
		got = append(got, s)
	}
	require.NoError(t, sess.Wait())
	require.Len(t, got, 100)
	for i, s := range got {
		assert.Len(t, s, i+1)
	}
}

func TestSessionPropagatesError(t *testing.T) {
	boom := errors.New("boom")
	sess := NewSession(context.Background(), NewFake([]string{"a", "b"}, boom), Request{Shorthand: "x", Mode: ModeExpand})
	var last string
	for s := range sess.Updates() {
		last = s
	}
	assert.ErrorIs(t, sess.Wait(), boom)
	assert.Equal(t, "ab", last)
}

func TestSessionCancelUnblocksProducer(t *testing.T) {
	f := &Fake{Chunks: make([]string, 1000), Delay: time.Millisecond}
	for i := range f.Chunks {
		f.Chunks[i] = "y"
	}
	ctx, cancel := context.WithCancel(context.Background())
	sess := NewSession(ctx, f, Request{Shorthand: "x", Mode: ModeExpand})

	<-sess.Updates()
	cancel()

	done := make(chan error, 1)
	go func() { done <- sess.Wait() }()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("session did not stop after cancel")
	}
}

func TestFakeCannedNote(t *testing.T) {
	f := NewFake(nil, nil)
	var last string
	err := f.Generate(context.Background(), Request{Shorthand: "55F  DM2", Mode: ModeExpand}, func(s string) { last = s })
	require.NoError(t, err)
	assert.Equal(t, "Expanded Patient Note\n\n55F DM2", last)
	require.Len(t, f.Calls(), 1)
	assert.Equal(t, ModeExpand, f.Calls()[0].Mode)
}
