package zipcore

import (
	"hash/crc32"
	"io"
)

// writerState tracks a Writer's lifecycle. PutNextEntry writes and finalizes an entry's data
// synchronously within one call, so the only states observable between calls are idle and
// permanently failed.
type writerState int

const (
	writerIdle writerState = iota
	writerFailed
)

// Writer emits a well-formed ZIP archive to an io.WriteSeeker from an ordered sequence of (metadata, input
// stream) pairs, computing CRC-32 and DEFLATE-compressed sizes on the fly and seeking backward to patch each
// local header once its data has been written.
//
// The zero value is not usable; construct with NewWriter. A Writer is not safe for concurrent use.
type Writer struct {
	w           io.WriteSeeker
	startOffset int64
	comment     string
	entries     []EntryMeta
	state       writerState
	closed      bool

	nextMethod Method
	nextLevel  int
}

// NewWriter constructs a Writer that emits to w. startOffset is the underlying position at which the
// archive's virtual start sits: 0 for a freestanding archive, nonzero when appending a ZIP to the tail of
// an already-written host file. w's current position MUST already be at startOffset.
func NewWriter(w io.WriteSeeker, startOffset int64) *Writer {
	return &Writer{w: w, startOffset: startOffset}
}

// SetComment sets the archive-level comment written by Close. It fails with TooLarge if comment exceeds
// 65535 bytes.
func (w *Writer) SetComment(comment string) error {
	if len(comment) > maxUint16 {
		return newErr(TooLarge, "archive comment too long", nil)
	}
	w.comment = comment
	return nil
}

// SetMethod sets the sticky storage method applied to entries created by NewEntry.
func (w *Writer) SetMethod(m Method) {
	w.nextMethod = m
}

// SetLevel sets the sticky compression level applied to entries created by NewEntry.
func (w *Writer) SetLevel(level int) {
	w.nextLevel = level
}

// NewEntry returns an EntryMeta for name pre-populated with the writer's current sticky method and
// compression level. The caller may further customize the result before passing it to PutNextEntry.
func (w *Writer) NewEntry(name string) EntryMeta {
	return EntryMeta{
		Name:             name,
		Method:           w.nextMethod,
		CompressionLevel: w.nextLevel,
	}
}

// PutNextEntry writes one entry: a placeholder local header, the data read from src (DEFLATE-compressed or
// raw depending on meta.Method), then seeks back to patch the local header with the final CRC-32 and sizes
// before returning the output position to the end of the entry's data.
//
// Any failure leaves the Writer permanently Failed; subsequent calls to PutNextEntry or Close return
// InvalidState.
func (w *Writer) PutNextEntry(meta EntryMeta, src io.Reader) error {
	if w.state == writerFailed || w.closed {
		return newErr(InvalidState, "writer is failed or closed", nil)
	}

	finalized, err := w.putNextEntry(meta, src)
	if err != nil {
		w.state = writerFailed
		return err
	}

	w.entries = append(w.entries, finalized)
	return nil
}

func (w *Writer) putNextEntry(meta EntryMeta, src io.Reader) (EntryMeta, error) {
	meta = normalizeEntry(meta)

	offset, err := w.w.Seek(0, io.SeekCurrent)
	if err != nil {
		return EntryMeta{}, newErr(IO, "seek failed", err)
	}
	if offset-w.startOffset > maxUint32 {
		return EntryMeta{}, newErr(TooLarge, "local header offset exceeds 4 GiB", nil)
	}
	meta.LocalHeaderOffset = uint32(offset - w.startOffset)
	meta.VersionNeeded = versionNeededFor(meta.Method)
	meta.Flags &^= flagTrailingDescriptor

	if err = WriteLocalHeader(w.w, meta); err != nil {
		return EntryMeta{}, err
	}

	if !meta.IsDirectory() {
		crc, uncompressed, compressed, err := w.copyEntryData(meta, src)
		if err != nil {
			return EntryMeta{}, err
		}
		meta.CRC32 = crc
		meta.UncompressedSize = uncompressed
		meta.CompressedSize = compressed
	}

	endPos, err := w.w.Seek(0, io.SeekCurrent)
	if err != nil {
		return EntryMeta{}, newErr(IO, "seek failed", err)
	}
	if _, err = w.w.Seek(offset, io.SeekStart); err != nil {
		return EntryMeta{}, newErr(IO, "seek failed", err)
	}
	if err = WriteLocalHeader(w.w, meta); err != nil {
		return EntryMeta{}, err
	}
	if _, err = w.w.Seek(endPos, io.SeekStart); err != nil {
		return EntryMeta{}, newErr(IO, "seek failed", err)
	}

	return meta, nil
}

// copyEntryData streams src to w.w, either raw (tracking CRC-32 and byte count directly, for STORED) or
// through a DeflateWriter (for DEFLATED), returning the final (crc32, uncompressedSize, compressedSize).
func (w *Writer) copyEntryData(meta EntryMeta, src io.Reader) (crc uint32, uncompressed, compressed uint32, err error) {
	if meta.Method == Stored {
		cw := &countingWriter{w: w.w}
		h := crc32.NewIEEE()
		n, cerr := io.Copy(io.MultiWriter(cw, h), src)
		if cerr != nil {
			return 0, 0, 0, newErr(IO, "write stored entry data failed", cerr)
		}
		if uint64(n) > maxUint32 {
			return 0, 0, 0, newErr(TooLarge, "entry data exceeds 4 GiB", nil)
		}
		return h.Sum32(), uint32(n), uint32(cw.n), nil
	}

	dw, err := NewDeflateWriter(w.w, meta.CompressionLevel)
	if err != nil {
		return 0, 0, 0, err
	}
	if _, err = io.Copy(dw, src); err != nil {
		return 0, 0, 0, newErr(IO, "deflate entry data failed", err)
	}
	c, u, cz, err := dw.Close()
	if err != nil {
		return 0, 0, 0, err
	}
	if u > maxUint32 || cz > maxUint32 {
		return 0, 0, 0, newErr(TooLarge, "entry data exceeds 4 GiB", nil)
	}
	return c, uint32(u), uint32(cz), nil
}

// normalizeEntry resolves the method/level combination before anything is written: DEFLATED with level 0
// silently rewrites to STORED with zero level; STORED with a nonzero requested level stays STORED, the
// level simply ignored. Directory entries are forced to STORED with zero sizes regardless of what was
// requested.
func normalizeEntry(meta EntryMeta) EntryMeta {
	meta.dataOffset = 0

	if meta.IsDirectory() {
		meta.Method = Stored
		meta.CompressionLevel = 0
		meta.UncompressedSize = 0
		meta.CompressedSize = 0
		return meta
	}

	if meta.Method == Deflated && meta.CompressionLevel == 0 {
		meta.Method = Stored
	}
	return meta
}

// Close finalizes the archive: it closes out any in-progress bookkeeping, writes one central-directory
// header per entry appended via PutNextEntry, then the end-of-central-directory record. All size limits
// (entry count, comment/extra lengths) are validated before any central-directory bytes are written, so a
// violation leaves the output exactly as it was after the last successful PutNextEntry.
func (w *Writer) Close() error {
	if w.state == writerFailed {
		return newErr(InvalidState, "writer is in a failed state", nil)
	}
	if w.closed {
		return newErr(InvalidState, "writer already closed", nil)
	}

	if len(w.entries) > maxUint16 {
		w.state = writerFailed
		return newErr(TooLarge, "too many entries", nil)
	}
	for _, e := range w.entries {
		if len(e.Comment) > maxUint16 || len(e.Extra) > maxUint16 || len(e.Name) > maxUint16 {
			w.state = writerFailed
			return newErr(TooLarge, "entry name, extra, or comment too long", nil)
		}
	}

	cdStart, err := w.w.Seek(0, io.SeekCurrent)
	if err != nil {
		w.state = writerFailed
		return newErr(IO, "seek failed", err)
	}
	if cdStart-w.startOffset > maxUint32 {
		w.state = writerFailed
		return newErr(TooLarge, "central directory offset exceeds 4 GiB", nil)
	}
	cdOffset := uint32(cdStart - w.startOffset)

	for _, e := range w.entries {
		if err = WriteCentralDirectoryHeader(w.w, e); err != nil {
			w.state = writerFailed
			return err
		}
	}

	cdEnd, err := w.w.Seek(0, io.SeekCurrent)
	if err != nil {
		w.state = writerFailed
		return newErr(IO, "seek failed", err)
	}
	cdSize := uint32(cdEnd - cdStart)

	if err = WriteEOCD(w.w, cdOffset, cdSize, len(w.entries), w.comment); err != nil {
		w.state = writerFailed
		return err
	}

	w.closed = true
	return nil
}
