package zipcore

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"strings"

	"github.com/nguyengg/zipcore/internal/boundedreader"
)

// scanChunkSize is the chunk size used by the back-buffer scanner while hunting for the EOCD signature.
const scanChunkSize = 1024

var sigEOCDBytes = func() []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, sigEndOfCentralDirectory)
	return b
}()

// Reader is an opened, validated ZIP archive. Its entries are fixed at Open time; subsequent reads borrow
// the archive's path to open independent file descriptors per entry stream.
type Reader struct {
	path    string
	vs      *Seeker
	comment string
	entries []EntryMeta
}

// Open opens the ZIP archive found in the virtual region [start, size-endFromEnd) of the file at path,
// validating its end-of-central-directory, its central directory, and every local header against its
// central-directory twin.
func Open(path string, start, endFromEnd int64) (*Reader, error) {
	vs, err := NewSeeker(start, endFromEnd)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, newErr(IO, "open archive failed", err)
	}
	defer f.Close()

	r := &Reader{path: path, vs: vs}
	if err := r.load(f); err != nil {
		return nil, err
	}
	return r, nil
}

// OpenEmbedded opens a ZIP archive appended to the tail of path per the appendzip convention: the last 4
// bytes of the file are a little-endian u32 giving the byte offset of the ZIP's start.
func OpenEmbedded(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, newErr(IO, "open archive failed", err)
	}

	size, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		f.Close()
		return nil, newErr(IO, "seek failed", err)
	}
	if size < 4 {
		f.Close()
		return nil, newErr(InvalidArchive, "file too small to hold an appendzip trailer", nil)
	}
	if _, err = f.Seek(-4, io.SeekEnd); err != nil {
		f.Close()
		return nil, newErr(IO, "seek failed", err)
	}
	var trailer [4]byte
	if _, err = io.ReadFull(f, trailer[:]); err != nil {
		f.Close()
		return nil, newErr(IO, "read appendzip trailer failed", err)
	}
	f.Close()

	start := int64(binary.LittleEndian.Uint32(trailer[:]))
	return Open(path, start, 4)
}

// load locates and parses the EOCD, reads the central directory, verifies that the directory ends exactly
// where the EOCD says it does, then reads every entry's local header and checks it against its
// central-directory twin.
func (r *Reader) load(f *os.File) error {
	eocd, err := r.findEOCD(f)
	if err != nil {
		return err
	}

	if _, err = r.vs.Seek(f, int64(eocd.CDOffset), io.SeekStart); err != nil {
		return err
	}

	entries := make([]EntryMeta, 0, eocd.EntryCount)
	for i := 0; i < eocd.EntryCount; i++ {
		em, err := ReadCentralDirectoryHeader(f)
		if err != nil {
			return err
		}
		entries = append(entries, em)
	}

	pos, err := r.vs.Tell(f)
	if err != nil {
		return err
	}
	if uint32(pos) != eocd.CDOffset+eocd.CDSize {
		return newErr(InvalidArchive, "central directory size does not match EOCD", nil)
	}
	if eocd.EntryCount != len(entries) {
		return newErr(InvalidArchive, "central directory entry count mismatch", nil)
	}

	for i := range entries {
		if _, err = r.vs.Seek(f, int64(entries[i].LocalHeaderOffset), io.SeekStart); err != nil {
			return err
		}
		lh, err := ReadLocalHeader(f)
		if err != nil {
			return err
		}
		if !HeadersEqual(lh, entries[i]) {
			return newErr(InvalidArchive, "local header does not match central directory twin", nil)
		}

		// The local header's extra field may be longer or shorter than the central directory's, so the
		// first compressed byte sits wherever the local header actually ended, not where the
		// central-directory lengths would predict.
		dataPos, err := r.vs.Tell(f)
		if err != nil {
			return err
		}
		entries[i].dataOffset = uint32(dataPos)
	}

	r.entries = entries
	r.comment = eocd.Comment
	return nil
}

// findEOCD drives the back-buffer scanner backward until a structurally valid EOCD is found, or the start
// of the virtual region is reached.
func (r *Reader) findEOCD(f *os.File) (EOCDRecord, error) {
	bb, err := NewBackBuffer(f, r.vs, scanChunkSize)
	if err != nil {
		return EOCDRecord{}, err
	}

	var readPointer int64
	for {
		more, err := bb.ReadChunk(&readPointer)
		if err != nil {
			return EOCDRecord{}, err
		}

		buf := bb.Bytes()
		if eocd, ok, err := scanForEOCD(buf); err != nil {
			return EOCDRecord{}, err
		} else if ok {
			return eocd, nil
		}

		if !more {
			return EOCDRecord{}, ErrNoEOCDFound
		}
	}
}

// scanForEOCD searches buf for the rightmost candidate EOCD signature and attempts to parse it, rejecting
// false positives (signature bytes that happen to occur inside name/comment data elsewhere in the buffer)
// by requiring the comment to run exactly to the end of buf.
func scanForEOCD(buf []byte) (EOCDRecord, bool, error) {
	pos := len(buf)
	for {
		idx := bytes.LastIndex(buf[:pos], sigEOCDBytes)
		if idx < 0 {
			return EOCDRecord{}, false, nil
		}

		rec, err := ReadEOCD(buf, idx)
		switch {
		case err == nil:
			if idx+int(eocdFixedSize)+len(rec.Comment) == len(buf) {
				return rec, true, nil
			}
		case Is(err, Unsupported):
			return EOCDRecord{}, false, err
		}

		pos = idx
	}
}

// Entries returns the archive's entries in on-disk order.
func (r *Reader) Entries() []EntryMeta {
	return r.entries
}

// Close releases any resources held by r. Open and OpenEmbedded validate the archive by opening the file,
// reading the central directory and every local header, and closing it again before returning, so a Reader
// holds no persistent file descriptor between calls; GetInputStream opens an independent descriptor per
// stream, closed by that stream's own Close. Close is therefore a no-op kept for symmetry with the
// streams it hands out and for callers that want a single deterministic release point.
func (r *Reader) Close() error {
	return nil
}

// Comment returns the archive-level comment.
func (r *Reader) Comment() string {
	return r.comment
}

// GetEntry returns the first entry matching name under the given MatchMode. The boolean is false, with no
// error, when no entry matches.
func (r *Reader) GetEntry(name string, mode MatchMode) (EntryMeta, bool) {
	for _, e := range r.entries {
		if matchName(e.Name, name, mode) {
			return e, true
		}
	}
	return EntryMeta{}, false
}

// GetInputStream returns a fresh read stream positioned at the start of the named entry's uncompressed
// bytes, composed as: virtual-seeker-addressed file -> bounded reader -> (inflate or identity).
func (r *Reader) GetInputStream(name string, mode MatchMode) (io.ReadCloser, bool, error) {
	entry, ok := r.GetEntry(name, mode)
	if !ok {
		return nil, false, nil
	}

	f, err := os.Open(r.path)
	if err != nil {
		return nil, true, newErr(IO, "open archive failed", err)
	}
	if _, err = r.vs.Seek(f, int64(entry.EntryDataOffset()), io.SeekStart); err != nil {
		f.Close()
		return nil, true, err
	}

	bounded := boundedreader.New(f, int64(entry.CompressedSize))

	if entry.Method == Deflated {
		inf := NewInflateReader(bounded)
		return &entryStream{Reader: inf, f: f, inflate: inf}, true, nil
	}
	return &entryStream{Reader: bounded, f: f}, true, nil
}

// entryStream closes both the inflate filter (if any) and the underlying per-stream file descriptor.
type entryStream struct {
	io.Reader
	f       *os.File
	inflate io.Closer
}

func (s *entryStream) Close() error {
	var err error
	if s.inflate != nil {
		err = s.inflate.Close()
	}
	if cerr := s.f.Close(); err == nil {
		err = cerr
	}
	return err
}

func matchName(entryName, query string, mode MatchMode) bool {
	if mode == MatchFull {
		return entryName == query
	}
	return basename(entryName) == basename(query)
}

func basename(s string) string {
	if i := strings.LastIndexByte(s, '/'); i >= 0 {
		return s[i+1:]
	}
	return s
}
