// Package geneset holds gene-set collections and the mapper that resolves
// gene-set members to row positions of an expression matrix.
package geneset

import (
	"sort"

	"github.com/YuminosukeSato/gsva/pkg/errors"
)

// Collection is an insertion-ordered mapping from gene-set name to member
// gene identifiers. Adding to an existing set merges members; duplicate
// members within a set are collapsed, keeping first occurrence.
type Collection struct {
	names   []string
	members map[string][]string
	seen    map[string]map[string]struct{}
}

// NewCollection creates an empty collection.
func NewCollection() *Collection {
	return &Collection{
		members: make(map[string][]string),
		seen:    make(map[string]map[string]struct{}),
	}
}

// Add appends genes to the named set, creating it on first use.
func (c *Collection) Add(name string, genes ...string) {
	set, ok := c.seen[name]
	if !ok {
		c.names = append(c.names, name)
		set = make(map[string]struct{})
		c.seen[name] = set
	}
	for _, g := range genes {
		if _, dup := set[g]; dup {
			continue
		}
		set[g] = struct{}{}
		c.members[name] = append(c.members[name], g)
	}
}

// Len returns the number of gene sets.
func (c *Collection) Len() int { return len(c.names) }

// Names returns the gene-set names in insertion order.
func (c *Collection) Names() []string { return c.names }

// Members returns the member gene identifiers of a set, or nil if the set
// does not exist.
func (c *Collection) Members(name string) []string { return c.members[name] }

// MappedSet is a gene set resolved to sorted, unique row positions of the
// filtered expression matrix. Created once per call, read-only thereafter.
type MappedSet struct {
	Name string
	Rows []int
}

// Size returns the mapped cardinality.
func (s MappedSet) Size() int { return len(s.Rows) }

// Map resolves every gene set in c against the given row identifiers by exact
// string match. Unresolved members are dropped silently; sets that resolve to
// zero genes are dropped with a warning. It fails with
// NoMappableIdentifiersError when no member of any set matched at all, and
// with EmptyGeneSetCollectionError when no set's mapped cardinality falls in
// [minSize, maxSize]. The result preserves the collection's insertion order.
func Map(c *Collection, genes []string, minSize, maxSize int) ([]MappedSet, error) {
	if c == nil || c.Len() == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "geneset.Map: empty collection")
	}

	index := make(map[string]int, len(genes))
	for i, g := range genes {
		if _, dup := index[g]; !dup {
			index[g] = i
		}
	}

	var (
		mapped      []MappedSet
		totalMapped int
	)
	for _, name := range c.names {
		members := c.members[name]
		rows := make([]int, 0, len(members))
		for _, g := range members {
			if i, ok := index[g]; ok {
				rows = append(rows, i)
			}
		}
		if len(rows) == 0 {
			errors.Warn(errors.NewUnmappedGeneSetWarning(name, len(members)))
			continue
		}
		sort.Ints(rows)
		totalMapped += len(rows)
		mapped = append(mapped, MappedSet{Name: name, Rows: rows})
	}

	if totalMapped == 0 {
		return nil, errors.NewNoMappableIdentifiersError(c.Len(), len(genes))
	}

	kept := mapped[:0]
	for _, s := range mapped {
		if s.Size() < minSize || s.Size() > maxSize {
			continue
		}
		kept = append(kept, s)
	}
	if len(kept) == 0 {
		return nil, errors.NewEmptyGeneSetCollectionError(c.Len(), minSize, maxSize)
	}
	return kept, nil
}
