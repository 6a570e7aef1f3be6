package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medscribe/generate"
)

func TestReadShorthand(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		stdin string
		tty   bool
		want  string
	}{
		{"args joined", []string{"55F", "DM2,", "HTN"}, "", true, "55F DM2, HTN"},
		{"dash reads stdin", []string{"-"}, "  65M hx CHF\n", true, "65M hx CHF"},
		{"piped stdin", nil, "c/o HA x 2 days\n", false, "c/o HA x 2 days"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readShorthand(tt.args, strings.NewReader(tt.stdin), tt.tty)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadShorthandErrors(t *testing.T) {
	_, err := readShorthand(nil, strings.NewReader(""), true)
	assert.Error(t, err, "terminal stdin with no args")

	_, err = readShorthand([]string{"-"}, strings.NewReader(" \n\t"), false)
	assert.ErrorIs(t, err, generate.ErrEmptyShorthand)
}

func TestStreamNoteWritesDeltas(t *testing.T) {
	fake := generate.NewFake([]string{"Patient is a 55", "-year-old female", " with DM2."}, nil)
	var out bytes.Buffer

	text, err := streamNote(context.Background(), &out, fake, generate.Request{Shorthand: "55F DM2", Mode: generate.ModeExpand})
	require.NoError(t, err)
	assert.Equal(t, "Patient is a 55-year-old female with DM2.", text)
	assert.Equal(t, "Patient is a 55-year-old female with DM2.\n", out.String())
}

func TestStreamNoteKeepsPartialOnError(t *testing.T) {
	boom := errors.New("connection reset by peer")
	fake := generate.NewFake([]string{"Patient is"}, boom)
	var out bytes.Buffer

	text, err := streamNote(context.Background(), &out, fake, generate.Request{Shorthand: "x", Mode: generate.ModeSummarize})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, "Patient is", text)
	assert.Equal(t, "Patient is\n", out.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestStreamNoteStopsOnWriteError(t *testing.T) {
	fake := generate.NewFake([]string{"a", "b", "c"}, nil)

	_, err := streamNote(context.Background(), failingWriter{}, fake, generate.Request{Shorthand: "x", Mode: generate.ModeSummarize})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken pipe")
}
