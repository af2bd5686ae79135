package zipcore

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempArchivePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "archive.zip")
}

func openWriteSeeker(t *testing.T, path string) *os.File {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestWriter_EmptyArchiveIsExactly22Bytes(t *testing.T) {
	path := tempArchivePath(t)
	f := openWriteSeeker(t, path)

	w := NewWriter(f, 0)
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())

	got, err := os.ReadFile(path)
	require.NoError(t, err)

	want := []byte{
		0x50, 0x4B, 0x05, 0x06,
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00,
	}
	assert.Equal(t, want, got)

	r, err := Open(path, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, r.Entries())
}

func TestWriter_SingleStoredFile(t *testing.T) {
	path := tempArchivePath(t)
	f := openWriteSeeker(t, path)
	payload := []byte("Hello, World!\n")

	w := NewWriter(f, 0)
	meta := EntryMeta{Name: "hello.txt", Method: Stored, DOSTime: MinDOSTime}
	require.NoError(t, w.PutNextEntry(meta, bytes.NewReader(payload)))
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())

	r, err := Open(path, 0, 0)
	require.NoError(t, err)
	require.Len(t, r.Entries(), 1)

	e := r.Entries()[0]
	assert.Equal(t, "hello.txt", e.Name)
	assert.Equal(t, Stored, e.Method)
	assert.Equal(t, uint32(len(payload)), e.UncompressedSize)
	assert.Equal(t, uint32(len(payload)), e.CompressedSize)
	assert.Equal(t, uint32(0xB4E89E84), e.CRC32)

	rc, ok, err := r.GetInputStream("hello.txt", MatchFull)
	require.NoError(t, err)
	require.True(t, ok)
	defer rc.Close()

	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestWriter_SingleDeflatedFile(t *testing.T) {
	path := tempArchivePath(t)
	f := openWriteSeeker(t, path)
	payload := []byte("Hello, World!\n")

	w := NewWriter(f, 0)
	meta := EntryMeta{Name: "hello.txt", Method: Deflated, CompressionLevel: 6, DOSTime: MinDOSTime}
	require.NoError(t, w.PutNextEntry(meta, bytes.NewReader(payload)))
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())

	r, err := Open(path, 0, 0)
	require.NoError(t, err)
	require.Len(t, r.Entries(), 1)

	e := r.Entries()[0]
	assert.Equal(t, Deflated, e.Method)
	assert.Equal(t, uint32(len(payload)), e.UncompressedSize)
	assert.Equal(t, uint32(0xB4E89E84), e.CRC32)

	rc, ok, err := r.GetInputStream("hello.txt", MatchFull)
	require.NoError(t, err)
	require.True(t, ok)
	defer rc.Close()

	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestWriter_ZeroByteFile(t *testing.T) {
	path := tempArchivePath(t)
	f := openWriteSeeker(t, path)

	w := NewWriter(f, 0)
	require.NoError(t, w.PutNextEntry(EntryMeta{Name: "empty.txt", Method: Stored}, bytes.NewReader(nil)))
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())

	r, err := Open(path, 0, 0)
	require.NoError(t, err)
	e := r.Entries()[0]
	assert.Equal(t, uint32(0), e.CRC32)
	assert.Equal(t, uint32(0), e.UncompressedSize)
	assert.Equal(t, uint32(0), e.CompressedSize)
}

func TestWriter_DirectoryEntry(t *testing.T) {
	path := tempArchivePath(t)
	f := openWriteSeeker(t, path)

	w := NewWriter(f, 0)
	require.NoError(t, w.PutNextEntry(EntryMeta{Name: "dir/", Method: Deflated, CompressionLevel: 6}, bytes.NewReader(nil)))
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())

	r, err := Open(path, 0, 0)
	require.NoError(t, err)
	e := r.Entries()[0]
	assert.True(t, e.IsDirectory())
	assert.Equal(t, Stored, e.Method)
	assert.Equal(t, uint32(0), e.UncompressedSize)
	assert.Equal(t, uint32(0), e.CompressedSize)
}

func TestWriter_MultipleEntriesPreserveOrder(t *testing.T) {
	path := tempArchivePath(t)
	f := openWriteSeeker(t, path)

	names := []string{"a.txt", "b/c.txt", "b/d.txt"}
	w := NewWriter(f, 0)
	for _, n := range names {
		require.NoError(t, w.PutNextEntry(EntryMeta{Name: n, Method: Stored}, bytes.NewReader([]byte(n))))
	}
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())

	r, err := Open(path, 0, 0)
	require.NoError(t, err)
	require.Len(t, r.Entries(), len(names))
	for i, e := range r.Entries() {
		assert.Equal(t, names[i], e.Name)
	}
}

func TestWriter_SetCommentTooLarge(t *testing.T) {
	w := NewWriter(&os.File{}, 0)
	err := w.SetComment(string(make([]byte, maxUint16+1)))
	require.Error(t, err)
	assert.True(t, Is(err, TooLarge))
}

func TestWriter_FailedStateRejectsFurtherUse(t *testing.T) {
	path := tempArchivePath(t)
	f := openWriteSeeker(t, path)

	w := NewWriter(f, 0)
	require.NoError(t, w.PutNextEntry(EntryMeta{Name: "a", Method: Stored}, bytes.NewReader([]byte("a"))))
	require.NoError(t, f.Close()) // close the underlying file out from under the writer

	err := w.PutNextEntry(EntryMeta{Name: "b", Method: Stored}, bytes.NewReader([]byte("b")))
	require.Error(t, err)

	// the writer is now permanently failed.
	err = w.PutNextEntry(EntryMeta{Name: "c", Method: Stored}, bytes.NewReader([]byte("c")))
	require.Error(t, err)
	assert.True(t, Is(err, InvalidState))

	err = w.Close()
	require.Error(t, err)
	assert.True(t, Is(err, InvalidState))
}

func TestWriter_DoubleCloseFails(t *testing.T) {
	path := tempArchivePath(t)
	f := openWriteSeeker(t, path)

	w := NewWriter(f, 0)
	require.NoError(t, w.Close())

	err := w.Close()
	require.Error(t, err)
	assert.True(t, Is(err, InvalidState))
}

func TestWriter_NewEntryUsesStickyMethodAndLevel(t *testing.T) {
	f := openWriteSeeker(t, tempArchivePath(t))
	w := NewWriter(f, 0)
	w.SetMethod(Deflated)
	w.SetLevel(9)

	e := w.NewEntry("x.bin")
	assert.Equal(t, Deflated, e.Method)
	assert.Equal(t, 9, e.CompressionLevel)
}

// TestWriterReader_RoundTripReemission checks that an archive accepted by the reader, when its entries
// are re-emitted through the writer, produces an archive the reader also accepts with the same names, in
// the same order, with the same payloads.
func TestWriterReader_RoundTripReemission(t *testing.T) {
	path1 := tempArchivePath(t)
	f1 := openWriteSeeker(t, path1)

	payloads := map[string][]byte{
		"a.txt":   []byte("alpha"),
		"b/c.txt": bytes.Repeat([]byte("beta-charlie "), 50),
	}
	names := []string{"a.txt", "b/c.txt"}

	w1 := NewWriter(f1, 0)
	require.NoError(t, w1.PutNextEntry(EntryMeta{Name: "a.txt", Method: Stored}, bytes.NewReader(payloads["a.txt"])))
	require.NoError(t, w1.PutNextEntry(EntryMeta{Name: "b/c.txt", Method: Deflated, CompressionLevel: 6}, bytes.NewReader(payloads["b/c.txt"])))
	require.NoError(t, w1.Close())
	require.NoError(t, f1.Close())

	r1, err := Open(path1, 0, 0)
	require.NoError(t, err)

	path2 := tempArchivePath(t)
	f2 := openWriteSeeker(t, path2)
	w2 := NewWriter(f2, 0)
	for _, e := range r1.Entries() {
		rc, ok, err := r1.GetInputStream(e.Name, MatchFull)
		require.NoError(t, err)
		require.True(t, ok)

		// CompressionLevel is never persisted on disk (it's a writer directive, not an archive field), so
		// a caller re-emitting a DEFLATED entry must supply one; -1 requests the writer's default level.
		if e.Method == Deflated {
			e.CompressionLevel = -1
		}
		require.NoError(t, w2.PutNextEntry(e, rc))
		require.NoError(t, rc.Close())
	}
	require.NoError(t, w2.Close())
	require.NoError(t, f2.Close())

	r2, err := Open(path2, 0, 0)
	require.NoError(t, err)
	require.Len(t, r2.Entries(), len(names))

	for i, e := range r2.Entries() {
		assert.Equal(t, names[i], e.Name)
		rc, ok, err := r2.GetInputStream(e.Name, MatchFull)
		require.NoError(t, err)
		require.True(t, ok)
		got, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		assert.Equal(t, payloads[e.Name], got)
	}
}
