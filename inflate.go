package zipcore

import (
	"compress/flate"
	"errors"
	"io"
)

// inflateReader wraps a compress/flate reader, translating flate errors into the IO category per the
// error taxonomy.
type inflateReader struct {
	fr io.ReadCloser
}

// NewInflateReader wraps r, an upstream byte source positioned at the start of a DEFLATE stream, and
// returns an io.ReadCloser delivering the uncompressed bytes.
func NewInflateReader(r io.Reader) io.ReadCloser {
	return &inflateReader{fr: flate.NewReader(r)}
}

func (f *inflateReader) Read(p []byte) (int, error) {
	n, err := f.fr.Read(p)
	if err != nil && err != io.EOF {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return n, newErr(IO, "truncated deflate stream", err)
		}
		return n, newErr(IO, "decompression failed", err)
	}
	return n, err
}

func (f *inflateReader) Close() error {
	return f.fr.Close()
}
