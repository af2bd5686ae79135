// Package boundedreader provides an io.Reader that enforces a hard upper bound on the number of bytes
// read from an upstream source, turning any attempt to read past the bound into a clean io.EOF.
package boundedreader

import "io"

// Reader enforces Limit as a hard upper bound on bytes read from R.
type Reader struct {
	R     io.Reader
	Limit int64

	read int64
}

// New wraps r, allowing at most limit bytes to be read from it.
func New(r io.Reader, limit int64) *Reader {
	return &Reader{R: r, Limit: limit}
}

func (b *Reader) Read(p []byte) (int, error) {
	if b.read >= b.Limit {
		return 0, io.EOF
	}
	if remaining := b.Limit - b.read; int64(len(p)) > remaining {
		p = p[:remaining]
	}
	n, err := b.R.Read(p)
	b.read += int64(n)
	return n, err
}
