package collection

import (
	"context"
	"io"
	"io/fs"
	"iter"
	"os"
	"path/filepath"

	"github.com/nguyengg/zipcore/internal/clog"
)

// DirectoryCollection exposes a filesystem directory tree as a FileCollection, walking it with
// filepath.WalkDir.
type DirectoryCollection struct {
	Root string

	err error
}

// NewDirectoryCollection returns a DirectoryCollection rooted at root.
func NewDirectoryCollection(root string) *DirectoryCollection {
	return &DirectoryCollection{Root: root}
}

// Err returns the first error encountered by the most recent call to Entries, or nil if the walk completed
// (or was stopped early by the consumer returning false) without one. A caller that needs a signal for a
// truncated listing, rather than a silently short iterator, should check Err after draining Entries.
func (c *DirectoryCollection) Err() error {
	return c.err
}

// Entries walks the directory tree under Root, yielding one CollectionEntry per path it visits: files,
// directories, and non-regular entries such as symlinks alike (the root itself is skipped). Any error encountered mid-walk (permission denied, a broken symlink, ...)
// stops the walk, is logged, and is retrievable afterward via Err.
func (c *DirectoryCollection) Entries() iter.Seq[CollectionEntry] {
	return func(yield func(CollectionEntry) bool) {
		c.err = nil
		logger := clog.MustLogger(clog.WithLogger(context.Background(), "collection: "))

		c.err = filepath.WalkDir(c.Root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				logger.Printf("walk error at %s: %v", path, err)
				return err
			}
			if path == c.Root {
				return nil
			}

			rel, err := filepath.Rel(c.Root, path)
			if err != nil {
				logger.Printf("relativize error at %s: %v", path, err)
				return err
			}
			name := CleanEntryName(rel)

			entry := CollectionEntry{Name: name, IsDir: d.IsDir()}
			if d.IsDir() {
				entry.Name += "/"
			} else if fi, err := d.Info(); err == nil {
				entry.Size = fi.Size()
			}

			if !yield(entry) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

// GetEntry stats the named path under Root.
func (c *DirectoryCollection) GetEntry(name string) (CollectionEntry, bool) {
	fi, err := os.Stat(filepath.Join(c.Root, filepath.FromSlash(name)))
	if err != nil {
		return CollectionEntry{}, false
	}

	entry := CollectionEntry{Name: name, IsDir: fi.IsDir()}
	if fi.IsDir() {
		entry.Name += "/"
	} else {
		entry.Size = fi.Size()
	}
	return entry, true
}

// GetInputStream opens the named file under Root for reading.
func (c *DirectoryCollection) GetInputStream(name string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(c.Root, filepath.FromSlash(name)))
}
