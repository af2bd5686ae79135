package zipcore

import (
	"io"

	"github.com/valyala/bytebufferpool"
)

// BackBuffer reads a virtual region backward in fixed-size chunks, accumulating the chunks into a single
// growing buffer so that a caller can scan forward through it for a trailing signature (the EOCD) without
// loading the whole archive up front.
//
// The zero value is not usable; construct with NewBackBuffer.
type BackBuffer struct {
	rs          io.ReadSeeker
	vs          *Seeker
	chunkSize   int64
	virtualSize int64
	buf         []byte
}

// NewBackBuffer constructs a BackBuffer over rs addressed through vs, reading chunkSize bytes at a time.
//
// chunkSize must be positive, else ErrInvalidValue. If rs is already closed or otherwise unreadable the
// size probe fails and this returns an IO error.
func NewBackBuffer(rs io.ReadSeeker, vs *Seeker, chunkSize int64) (*BackBuffer, error) {
	if chunkSize <= 0 {
		return nil, newErr(InvalidValue, "chunk size must be positive", nil)
	}
	if vs == nil {
		vs = &Seeker{}
	}

	size, err := underlyingSize(rs)
	if err != nil {
		return nil, newErr(IO, "probe stream size failed", err)
	}

	return &BackBuffer{
		rs:          rs,
		vs:          vs,
		chunkSize:   chunkSize,
		virtualSize: vs.end(size) - vs.Start,
	}, nil
}

// Bytes returns the bytes accumulated so far. Each ReadChunk call prepends its chunk, so the most
// recently read bytes sit at the front of the slice.
func (b *BackBuffer) Bytes() []byte {
	return b.buf
}

// ReadChunk reads one more chunk, moving the read pointer toward the start of the virtual region and
// prepending the new bytes to Bytes(). readPointer tracks the number of bytes read so far (from the end of
// the virtual region); callers initialize it to 0 before the first call.
//
// It returns false, nil once the virtual region's start has been reached and no more data can be
// prepended. Any read or seek failure is returned as an IO error.
func (b *BackBuffer) ReadChunk(readPointer *int64) (bool, error) {
	if *readPointer >= b.virtualSize {
		return false, nil
	}

	chunkLen := min(b.chunkSize, b.virtualSize-*readPointer)
	newPos := b.virtualSize - *readPointer - chunkLen

	if _, err := b.vs.Seek(b.rs, newPos, io.SeekStart); err != nil {
		return false, err
	}

	bb := bytebufferpool.Get()
	defer bytebufferpool.Put(bb)

	bb.B = append(bb.B, make([]byte, chunkLen)...)
	if _, err := io.ReadFull(b.rs, bb.B); err != nil {
		return false, newErr(IO, "read chunk failed", err)
	}

	grown := make([]byte, chunkLen+int64(len(b.buf)))
	copy(grown, bb.B)
	copy(grown[chunkLen:], b.buf)
	b.buf = grown

	*readPointer += chunkLen
	return true, nil
}
