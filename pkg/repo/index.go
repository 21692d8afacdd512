package repo

import (
	"fmt"

	"github.com/matzehuels/deptree/pkg/errors"
	"github.com/matzehuels/deptree/pkg/parse"
)

// Collision records two repositories publishing the same package name.
type Collision struct {
	Ecosystem Ecosystem
	Name      string
	Previous  string // repository that lost the index slot
	Winner    string // repository now mapped to Name
}

func (c Collision) String() string {
	return fmt.Sprintf("%s package %q published by %s and %s (using %s)", c.Ecosystem, c.Name, c.Previous, c.Winner, c.Winner)
}

// Err returns the collision as a NAME_COLLISION error.
func (c Collision) Err() error {
	return errors.New(errors.ErrCodeNameCollision, "%s", c.String())
}

// Index maps repository names and published package names to records.
// It is built once and read-only afterwards.
type Index struct {
	ByName      map[string]*Record
	ByPrimary   map[string]*Record
	BySecondary map[string]*Record
	Collisions  []Collision
}

// NewIndex indexes records in a single pass. Last writer wins on a
// duplicate published name.
func NewIndex(records []*Record) *Index {
	idx := &Index{
		ByName:      make(map[string]*Record, len(records)),
		ByPrimary:   make(map[string]*Record),
		BySecondary: make(map[string]*Record),
	}
	for _, r := range records {
		idx.ByName[r.Name] = r
		if name := parse.CanonicalName(r.PrimaryName); name != "" {
			idx.insert(idx.ByPrimary, EcosystemPrimary, name, r)
		}
		if name := r.SecondaryName; name != "" {
			idx.insert(idx.BySecondary, EcosystemSecondary, name, r)
		}
	}
	return idx
}

func (idx *Index) insert(m map[string]*Record, eco Ecosystem, name string, r *Record) {
	if prev, ok := m[name]; ok && prev.Name != r.Name {
		idx.Collisions = append(idx.Collisions, Collision{
			Ecosystem: eco,
			Name:      name,
			Previous:  prev.Name,
			Winner:    r.Name,
		})
	}
	m[name] = r
}

// Len returns the number of indexed repositories.
func (idx *Index) Len() int { return len(idx.ByName) }

// Lookup returns the repository with the given "owner/name" key.
func (idx *Index) Lookup(name string) (*Record, bool) {
	r, ok := idx.ByName[name]
	return r, ok
}

// LookupPrimary returns the repository publishing a PyPI package.
// The name is canonicalized before lookup.
func (idx *Index) LookupPrimary(name string) (*Record, bool) {
	r, ok := idx.ByPrimary[parse.CanonicalName(name)]
	return r, ok
}

// LookupSecondary returns the repository publishing an npm package.
func (idx *Index) LookupSecondary(name string) (*Record, bool) {
	r, ok := idx.BySecondary[name]
	return r, ok
}
