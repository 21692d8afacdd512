package repo

import (
	"cmp"
	"maps"
	"slices"
	"strings"
)

// Record is a normalized view of one repository in the snapshot.
type Record struct {
	Name    string // "owner/name", unique across the snapshot
	Release string // non-empty marks the repository as an entry point

	SourceDeps    []string          // raw source-control declarations, in declared order
	PrimaryDeps   map[string]string // PyPI requirement name -> pinned version
	SecondaryDeps map[string]string // npm package name -> declared version

	PrimaryName   string // canonical PyPI name this repository publishes, if any
	SecondaryName string // npm package this repository publishes, if any

	Private  bool
	Archived bool
	Disabled bool
}

// Key returns the identity of the record.
func (r *Record) Key() string { return r.Name }

// IsEntryPoint reports whether the record is directly part of a release.
func (r *Record) IsEntryPoint() bool { return r.Release != "" }

// Owner returns the owner segment of the record name.
func (r *Record) Owner() string {
	owner, _, _ := strings.Cut(r.Name, "/")
	return owner
}

// Compare orders records by name. It is the only ordering used for
// deterministic output.
func Compare(a, b *Record) int {
	return cmp.Compare(a.Name, b.Name)
}

// Sorted returns the records of a keyed set in name order.
func Sorted(set map[string]*Record) []*Record {
	out := slices.Collect(maps.Values(set))
	slices.SortFunc(out, Compare)
	return out
}

// Names returns the sorted keys of a record set.
func Names(set map[string]*Record) []string {
	return slices.Sorted(maps.Keys(set))
}
