package collection

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/nguyengg/zipcore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTestArchive(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.zip")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := zipcore.NewWriter(f, 0)
	require.NoError(t, w.PutNextEntry(zipcore.EntryMeta{Name: "a.txt", Method: zipcore.Stored}, bytes.NewReader([]byte("alpha"))))
	require.NoError(t, w.PutNextEntry(zipcore.EntryMeta{Name: "b/c.log", Method: zipcore.Deflated, CompressionLevel: 6}, bytes.NewReader([]byte("charlie"))))
	require.NoError(t, w.Close())
	return path
}

func TestArchiveCollection(t *testing.T) {
	path := buildTestArchive(t)
	r, err := zipcore.Open(path, 0, 0)
	require.NoError(t, err)

	c := NewArchiveCollection(r)

	var names []string
	for e := range c.Entries() {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"a.txt", "b/c.log"}, names)

	e, ok := c.GetEntry("a.txt")
	require.True(t, ok)
	assert.Equal(t, int64(5), e.Size)

	rc, err := c.GetInputStream("b/c.log")
	require.NoError(t, err)
	defer rc.Close()
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "charlie", string(got))

	_, err = c.GetInputStream("nope")
	require.Error(t, err)
}
