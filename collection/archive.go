package collection

import (
	"errors"
	"io"
	"iter"

	"github.com/nguyengg/zipcore"
)

// ArchiveCollection adapts an opened zipcore.Reader to the FileCollection interface.
type ArchiveCollection struct {
	r *zipcore.Reader
}

// NewArchiveCollection wraps r.
func NewArchiveCollection(r *zipcore.Reader) *ArchiveCollection {
	return &ArchiveCollection{r: r}
}

// Entries yields one CollectionEntry per entry in the archive's central directory, in on-disk order.
func (c *ArchiveCollection) Entries() iter.Seq[CollectionEntry] {
	return func(yield func(CollectionEntry) bool) {
		for _, e := range c.r.Entries() {
			ce := CollectionEntry{
				Name:  e.Name,
				Size:  int64(e.UncompressedSize),
				IsDir: e.IsDirectory(),
			}
			if !yield(ce) {
				return
			}
		}
	}
}

// GetEntry returns the full-name match for name, if present.
func (c *ArchiveCollection) GetEntry(name string) (CollectionEntry, bool) {
	e, ok := c.r.GetEntry(name, zipcore.MatchFull)
	if !ok {
		return CollectionEntry{}, false
	}
	return CollectionEntry{Name: e.Name, Size: int64(e.UncompressedSize), IsDir: e.IsDirectory()}, true
}

// GetInputStream returns the named entry's decompressed byte stream.
func (c *ArchiveCollection) GetInputStream(name string) (io.ReadCloser, error) {
	rc, ok, err := c.r.GetInputStream(name, zipcore.MatchFull)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.New("collection: entry not found: " + name)
	}
	return rc, nil
}
