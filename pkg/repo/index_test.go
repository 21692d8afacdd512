package repo

import (
	"strings"
	"testing"

	"github.com/matzehuels/deptree/pkg/errors"
)

func TestNewIndex(t *testing.T) {
	records := []*Record{
		{Name: "edx/foo", PrimaryName: "edx_foo"},
		{Name: "edx/paragon", SecondaryName: "@edx/paragon"},
		{Name: "edx/plain"},
	}
	idx := NewIndex(records)

	if idx.Len() != 3 {
		t.Errorf("Len() = %d, want 3", idx.Len())
	}

	r, ok := idx.LookupPrimary("edx-foo")
	if !ok || r.Name != "edx/foo" {
		t.Errorf("LookupPrimary(edx-foo) = %v, %v", r, ok)
	}
	r, ok = idx.LookupPrimary("edx_foo")
	if !ok || r.Name != "edx/foo" {
		t.Errorf("LookupPrimary(edx_foo) = %v, %v", r, ok)
	}
	if _, ok := idx.ByPrimary["edx_foo"]; ok {
		t.Error("index key should be canonical")
	}

	r, ok = idx.LookupSecondary("@edx/paragon")
	if !ok || r.Name != "edx/paragon" {
		t.Errorf("LookupSecondary(@edx/paragon) = %v, %v", r, ok)
	}

	if _, ok := idx.Lookup("edx/plain"); !ok {
		t.Error("Lookup(edx/plain) not found")
	}
	if _, ok := idx.Lookup("edx/missing"); ok {
		t.Error("Lookup(edx/missing) found")
	}
	if len(idx.ByPrimary) != 1 || len(idx.BySecondary) != 1 {
		t.Errorf("empty published names should not be indexed: %d, %d", len(idx.ByPrimary), len(idx.BySecondary))
	}
}

func TestNewIndexCollision(t *testing.T) {
	records := []*Record{
		{Name: "edx/a", PrimaryName: "shared", SecondaryName: "shared-js"},
		{Name: "edx/b", PrimaryName: "shared"},
		{Name: "edx/c", SecondaryName: "shared-js"},
	}
	idx := NewIndex(records)

	r, _ := idx.LookupPrimary("shared")
	if r.Name != "edx/b" {
		t.Errorf("last writer should win, got %s", r.Name)
	}
	r, _ = idx.LookupSecondary("shared-js")
	if r.Name != "edx/c" {
		t.Errorf("last writer should win, got %s", r.Name)
	}

	if len(idx.Collisions) != 2 {
		t.Fatalf("Collisions = %v, want 2", idx.Collisions)
	}
	c := idx.Collisions[0]
	if c.Ecosystem != EcosystemPrimary || c.Previous != "edx/a" || c.Winner != "edx/b" {
		t.Errorf("Collisions[0] = %+v", c)
	}
	err := c.Err()
	if !errors.Is(err, errors.ErrCodeNameCollision) {
		t.Errorf("Err() code = %v, want %v", errors.GetCode(err), errors.ErrCodeNameCollision)
	}
	if !strings.Contains(errors.UserMessage(err), `"shared"`) {
		t.Errorf("Err() message = %q", errors.UserMessage(err))
	}
}

func TestParseEcosystem(t *testing.T) {
	tests := []struct {
		in      string
		want    Ecosystem
		wantErr bool
	}{
		{"pypi", EcosystemPrimary, false},
		{"PyPI", EcosystemPrimary, false},
		{"npm", EcosystemSecondary, false},
		{"github", EcosystemSource, false},
		{"source", EcosystemSource, false},
		{"maven", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseEcosystem(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseEcosystem(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseEcosystem(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSortedAndCompare(t *testing.T) {
	set := map[string]*Record{
		"edx/c": {Name: "edx/c"},
		"edx/a": {Name: "edx/a", PrimaryDeps: map[string]string{"x": "1"}},
		"edx/b": {Name: "edx/b"},
	}
	got := Sorted(set)
	if len(got) != 3 || got[0].Name != "edx/a" || got[2].Name != "edx/c" {
		t.Errorf("Sorted() = %v", got)
	}

	a := &Record{Name: "edx/a"}
	a2 := &Record{Name: "edx/a", PrimaryDeps: map[string]string{"django": "2.2"}}
	if Compare(a, a2) != 0 {
		t.Error("records with the same name should compare equal regardless of dependencies")
	}

	names := Names(set)
	if len(names) != 3 || names[1] != "edx/b" {
		t.Errorf("Names() = %v", names)
	}
}
