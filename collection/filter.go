package collection

import (
	"errors"
	"io"
	"iter"

	"github.com/bmatcuk/doublestar/v4"
)

// FilterCollection wraps another FileCollection, exposing only entries whose name matches a doublestar
// glob-style pattern (e.g. "**/*.txt").
type FilterCollection struct {
	Upstream FileCollection
	Pattern  string
}

// NewFilterCollection wraps upstream, keeping only entries whose name matches pattern.
func NewFilterCollection(upstream FileCollection, pattern string) *FilterCollection {
	return &FilterCollection{Upstream: upstream, Pattern: pattern}
}

func (c *FilterCollection) matches(name string) bool {
	ok, err := doublestar.Match(c.Pattern, name)
	return err == nil && ok
}

// Entries yields the upstream's entries whose name matches Pattern.
func (c *FilterCollection) Entries() iter.Seq[CollectionEntry] {
	return func(yield func(CollectionEntry) bool) {
		for e := range c.Upstream.Entries() {
			if c.matches(e.Name) && !yield(e) {
				return
			}
		}
	}
}

// GetEntry returns the upstream entry named name, provided it also matches Pattern.
func (c *FilterCollection) GetEntry(name string) (CollectionEntry, bool) {
	if !c.matches(name) {
		return CollectionEntry{}, false
	}
	return c.Upstream.GetEntry(name)
}

// GetInputStream opens the named entry's stream, provided it matches Pattern.
func (c *FilterCollection) GetInputStream(name string) (io.ReadCloser, error) {
	if !c.matches(name) {
		return nil, errors.New("collection: entry excluded by filter: " + name)
	}
	return c.Upstream.GetInputStream(name)
}
