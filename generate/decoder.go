package generate

import (
	"errors"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// decoder turns a byte stream into text one chunk at a time. A multi-byte
// sequence cut by a chunk boundary is held back until the next chunk
// completes it.
type decoder struct {
	t       transform.Transformer
	pending []byte
	buf     []byte
}

func newDecoder() *decoder {
	return &decoder{
		t:   unicode.UTF8.NewDecoder(),
		buf: make([]byte, 4096),
	}
}

// Decode returns the text completed by chunk. Invalid sequences decode to
// U+FFFD.
func (d *decoder) Decode(chunk []byte) (string, error) {
	src := make([]byte, 0, len(d.pending)+len(chunk))
	src = append(src, d.pending...)
	src = append(src, chunk...)
	d.pending = d.pending[:0]

	var out strings.Builder
	for {
		nDst, nSrc, err := d.t.Transform(d.buf, src, false)
		out.Write(d.buf[:nDst])
		src = src[nSrc:]
		switch {
		case err == nil:
			return out.String(), nil
		case errors.Is(err, transform.ErrShortDst):
			if nDst == 0 && nSrc == 0 {
				d.buf = make([]byte, 2*len(d.buf))
			}
		case errors.Is(err, transform.ErrShortSrc):
			d.pending = append(d.pending, src...)
			return out.String(), nil
		default:
			return out.String(), err
		}
	}
}

// Pending reports how many bytes are waiting for the rest of a sequence.
func (d *decoder) Pending() int { return len(d.pending) }
