// Package collection provides a uniform way to enumerate and read named entries whether they live on a
// filesystem, inside a zipcore.Reader, or behind a name-pattern filter over another collection.
package collection

import (
	"io"
	"iter"
)

// CollectionEntry is the read-only view of one entry exposed by a FileCollection.
type CollectionEntry struct {
	// Name is the entry's path within the collection, forward-slash separated.
	Name string
	// Size is the entry's uncompressed size in bytes, when known. Directory entries, and entries whose
	// size could not be determined, report 0.
	Size int64
	// IsDir marks a directory entry; directory entries never have an input stream.
	IsDir bool
}

// FileCollection is the common interface implemented by DirectoryCollection, ArchiveCollection, and
// FilterCollection.
type FileCollection interface {
	// Entries iterates the collection's entries in an implementation-defined but stable order.
	Entries() iter.Seq[CollectionEntry]
	// GetEntry returns the entry named name, if present.
	GetEntry(name string) (CollectionEntry, bool)
	// GetInputStream opens a fresh read stream for the named entry's bytes.
	GetInputStream(name string) (io.ReadCloser, error)
}
