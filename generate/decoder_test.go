package generate

import (
	"strings"
	"testing"
)

func TestDecoderChunkBoundaries(t *testing.T) {
	tests := []struct {
		name   string
		chunks []string
		want   []string // decoded text per chunk
	}{
		{"ascii", []string{"abc", "def"}, []string{"abc", "def"}},
		{"two byte split", []string{"caf\xc3", "\xa9!"}, []string{"caf", "é!"}},
		{"four byte split thrice", []string{"\xf0\x9f", "\xa9", "\xba ok"}, []string{"", "", "🩺 ok"}},
		{"short first chunk", []string{"ok"}, []string{"ok"}},
		{"invalid byte", []string{"a\xffb"}, []string{"a�b"}},
		{"empty chunk", []string{"", "x"}, []string{"", "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDecoder()
			for i, c := range tt.chunks {
				got, err := d.Decode([]byte(c))
				if err != nil {
					t.Fatalf("chunk %d: %v", i, err)
				}
				if got != tt.want[i] {
					t.Errorf("chunk %d: got %q, want %q", i, got, tt.want[i])
				}
			}
			if d.Pending() != 0 {
				t.Errorf("pending = %d, want 0", d.Pending())
			}
		})
	}
}

func TestDecoderPendingTail(t *testing.T) {
	d := newDecoder()
	got, err := d.Decode([]byte("note \xe2\x80"))
	if err != nil {
		t.Fatal(err)
	}
	if got != "note " {
		t.Errorf("got %q, want %q", got, "note ")
	}
	if d.Pending() != 2 {
		t.Errorf("pending = %d, want 2", d.Pending())
	}
}

func TestDecoderLargeChunk(t *testing.T) {
	d := newDecoder()
	in := strings.Repeat("é", 10000)
	got, err := d.Decode([]byte(in))
	if err != nil {
		t.Fatal(err)
	}
	if got != in {
		t.Errorf("decoded %d bytes, want %d", len(got), len(in))
	}
}
