package zipcore

import (
	"compress/flate"
	"hash/crc32"
	"io"
)

// DeflateWriter wraps a downstream sink, computing a running CRC-32 and an uncompressed byte count while
// DEFLATE-compressing bytes written to it, tracking the compressed byte count written downstream.
//
// The zero value is not usable; construct with NewDeflateWriter.
type DeflateWriter struct {
	fw          *flate.Writer
	counter     *countingWriter
	crc         uint32
	uncompCount uint64
	closed      bool
}

// countingWriter tracks the number of bytes written to the wrapped io.Writer.
type countingWriter struct {
	w io.Writer
	n uint64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += uint64(n)
	return n, err
}

// normalizeLevel maps the package's compression-level convention onto compress/flate's accepted range:
// values <= 0 request the default level, values above 9 are clamped to 9.
func normalizeLevel(level int) int {
	if level <= 0 {
		return flate.DefaultCompression
	}
	if level > 9 {
		return 9
	}
	return level
}

// NewDeflateWriter constructs a DeflateWriter writing compressed bytes to w at the given compression level
// (normalized per normalizeLevel).
func NewDeflateWriter(w io.Writer, level int) (*DeflateWriter, error) {
	cw := &countingWriter{w: w}
	fw, err := flate.NewWriter(cw, normalizeLevel(level))
	if err != nil {
		return nil, newErr(IO, "create deflate writer failed", err)
	}
	return &DeflateWriter{fw: fw, counter: cw}, nil
}

// Write compresses p, feeding it through the running CRC-32 and uncompressed byte counter.
func (d *DeflateWriter) Write(p []byte) (int, error) {
	if d.closed {
		return 0, newErr(InvalidState, "write to closed deflate writer", nil)
	}
	d.crc = crc32.Update(d.crc, crc32.IEEETable, p)
	d.uncompCount += uint64(len(p))
	n, err := d.fw.Write(p)
	if err != nil {
		return n, newErr(IO, "deflate write failed", err)
	}
	return n, nil
}

// Close flushes the DEFLATE tail and returns the final CRC-32, uncompressed byte count, and compressed byte
// count. After Close, further writes fail with InvalidState.
func (d *DeflateWriter) Close() (crc uint32, uncompressed, compressed uint64, err error) {
	if d.closed {
		return 0, 0, 0, newErr(InvalidState, "deflate writer already closed", nil)
	}
	d.closed = true
	if err = d.fw.Close(); err != nil {
		return 0, 0, 0, newErr(IO, "deflate close failed", err)
	}
	return d.crc, d.uncompCount, d.counter.n, nil
}
