package zipcore

import "io"

// Seeker translates offsets on an underlying seekable stream so that a region embedded inside a larger
// file, for instance a ZIP appended to the tail of a host file, behaves as if it began at offset 0.
//
// Start is the underlying offset of the virtual region's first byte. EndFromEnd is the number of bytes
// between the virtual region's last byte and the underlying stream's end-of-file. Both MUST be
// non-negative, and Start MUST NOT exceed underlyingSize-EndFromEnd. NewSeeker rejects negative values
// with InvalidValue; Seek does not check Start against the underlying stream's size.
type Seeker struct {
	Start      int64
	EndFromEnd int64
}

// NewSeeker validates start and endFromEnd and returns a ready-to-use Seeker.
func NewSeeker(start, endFromEnd int64) (*Seeker, error) {
	if start < 0 {
		return nil, newErr(InvalidValue, "start must be non-negative", nil)
	}
	if endFromEnd < 0 {
		return nil, newErr(InvalidValue, "endFromEnd must be non-negative", nil)
	}
	return &Seeker{Start: start, EndFromEnd: endFromEnd}, nil
}

// end returns the underlying offset one past the virtual region's last byte, given the underlying
// stream's total size.
func (s *Seeker) end(underlyingSize int64) int64 {
	return underlyingSize - s.EndFromEnd
}

// Seek translates a virtual (offset, whence) into the underlying coordinate system and performs the seek
// on rs, returning the new virtual position.
//
// whence must be one of io.SeekStart, io.SeekCurrent, io.SeekEnd; any other value is a programming error
// and panics, matching the contract of io.Seeker itself.
func (s *Seeker) Seek(rs io.Seeker, offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		pos, err := rs.Seek(s.Start+offset, io.SeekStart)
		if err != nil {
			return 0, newErr(IO, "seek failed", err)
		}
		return pos - s.Start, nil

	case io.SeekCurrent:
		pos, err := rs.Seek(offset, io.SeekCurrent)
		if err != nil {
			return 0, newErr(IO, "seek failed", err)
		}
		return pos - s.Start, nil

	case io.SeekEnd:
		size, err := underlyingSize(rs)
		if err != nil {
			return 0, err
		}
		pos, err := rs.Seek(s.end(size)+offset, io.SeekStart)
		if err != nil {
			return 0, newErr(IO, "seek failed", err)
		}
		return pos - s.Start, nil

	default:
		panic("zipcore: invalid whence")
	}
}

// Tell returns the current virtual position of rs, i.e. the underlying position minus Start.
func (s *Seeker) Tell(rs io.Seeker) (int64, error) {
	pos, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, newErr(IO, "tell failed", err)
	}
	return pos - s.Start, nil
}

// underlyingSize returns the total size of the underlying stream without disturbing its current position.
func underlyingSize(rs io.Seeker) (int64, error) {
	cur, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, newErr(IO, "seek failed", err)
	}
	size, err := rs.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, newErr(IO, "seek failed", err)
	}
	if _, err = rs.Seek(cur, io.SeekStart); err != nil {
		return 0, newErr(IO, "seek failed", err)
	}
	return size, nil
}
