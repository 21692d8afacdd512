package repo

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/matzehuels/deptree/pkg/errors"
	"github.com/matzehuels/deptree/pkg/parse"
)

// Row is one raw snapshot row, keyed by column name.
type Row map[string]string

var keyReplacer = strings.NewReplacer(".", "_", ":", "_")

// NormalizeKey maps a raw column name to its normalized form.
func NormalizeKey(k string) string {
	return keyReplacer.Replace(k)
}

// NormalizeRow returns a copy of row with every key normalized.
func NormalizeRow(row Row) Row {
	out := make(Row, len(row))
	for k, v := range row {
		out[NormalizeKey(k)] = v
	}
	return out
}

// Columns names the snapshot columns a Record is built from.
// Names may be given in raw or normalized form.
type Columns struct {
	Org           string `toml:"org"`
	Name          string `toml:"name"`
	Release       string `toml:"release"`
	SourceDeps    string `toml:"source_deps"`
	PrimaryDeps   string `toml:"primary_deps"`
	SecondaryDeps string `toml:"secondary_deps"`
	PrimaryName   string `toml:"primary_name"`
	SecondaryName string `toml:"secondary_name"`
	Private       string `toml:"private"`
	Archived      string `toml:"archived"`
	Disabled      string `toml:"disabled"`
}

// DefaultColumns returns the column layout of the repo-health dashboard export.
func DefaultColumns() Columns {
	return Columns{
		Org:           "org_name",
		Name:          "repo_name",
		Release:       "openedx_yaml_release",
		SourceDeps:    "dependencies_github_list",
		PrimaryDeps:   "dependencies_pypi_list",
		SecondaryDeps: "dependencies_js_list",
		PrimaryName:   "setup_py_pypi_name",
		SecondaryName: "npm_package",
		Private:       "github_is_private",
		Archived:      "github_is_archived",
		Disabled:      "github_is_disabled",
	}
}

// WithDefaults returns a copy of c with empty names replaced by defaults.
func (c Columns) WithDefaults() Columns {
	d := DefaultColumns()
	fill := func(v *string, def string) {
		if strings.TrimSpace(*v) == "" {
			*v = def
		}
	}
	fill(&c.Org, d.Org)
	fill(&c.Name, d.Name)
	fill(&c.Release, d.Release)
	fill(&c.SourceDeps, d.SourceDeps)
	fill(&c.PrimaryDeps, d.PrimaryDeps)
	fill(&c.SecondaryDeps, d.SecondaryDeps)
	fill(&c.PrimaryName, d.PrimaryName)
	fill(&c.SecondaryName, d.SecondaryName)
	fill(&c.Private, d.Private)
	fill(&c.Archived, d.Archived)
	fill(&c.Disabled, d.Disabled)
	return c
}

// Diagnostic is a data-quality problem found while reading the snapshot.
// Diagnostics never abort a run.
type Diagnostic struct {
	Repo  string // record name, empty if unknown
	Field string // normalized column name or dependency kind
	Err   error
}

func (d Diagnostic) Error() string {
	if d.Repo == "" {
		return fmt.Sprintf("%s: %v", d.Field, d.Err)
	}
	return fmt.Sprintf("%s: %s: %v", d.Repo, d.Field, d.Err)
}

func (d Diagnostic) Unwrap() error { return d.Err }

// FromRow builds a Record from a raw row.
//
// The returned diagnostics describe cells that were ignored. An error is
// returned only when the row has no repository name.
func FromRow(row Row, cols Columns) (*Record, []Diagnostic, error) {
	row = NormalizeRow(row)
	cols = cols.WithDefaults()
	get := func(col string) string { return strings.TrimSpace(row[NormalizeKey(col)]) }

	name := get(cols.Name)
	if name == "" {
		return nil, nil, errors.New(errors.ErrCodeInvalidRow, "missing %s", NormalizeKey(cols.Name))
	}

	var diags []Diagnostic
	report := func(field string, err error) {
		diags = append(diags, Diagnostic{Repo: name, Field: field, Err: err})
	}

	r := &Record{
		Name:          name,
		Release:       get(cols.Release),
		PrimaryName:   parse.CanonicalName(get(cols.PrimaryName)),
		SecondaryName: get(cols.SecondaryName),
		PrimaryDeps:   make(map[string]string),
		SecondaryDeps: make(map[string]string),
	}

	if raw := get(cols.SourceDeps); raw != "" {
		if err := json.Unmarshal([]byte(raw), &r.SourceDeps); err != nil {
			report(NormalizeKey(cols.SourceDeps), errors.Wrap(errors.ErrCodeInvalidJSON, err, "decode list"))
			r.SourceDeps = nil
		}
	}

	if raw := get(cols.PrimaryDeps); raw != "" {
		var lines []string
		if err := json.Unmarshal([]byte(raw), &lines); err != nil {
			report(NormalizeKey(cols.PrimaryDeps), errors.Wrap(errors.ErrCodeInvalidJSON, err, "decode list"))
		}
		for _, line := range lines {
			pkg, err := parse.Requirement(line)
			if err != nil {
				report(NormalizeKey(cols.PrimaryDeps), err)
				continue
			}
			r.PrimaryDeps[pkg.Name] = pkg.Version
		}
	}

	if raw := get(cols.SecondaryDeps); raw != "" {
		var deps map[string]any
		if err := json.Unmarshal([]byte(raw), &deps); err != nil {
			report(NormalizeKey(cols.SecondaryDeps), errors.Wrap(errors.ErrCodeInvalidJSON, err, "decode object"))
		}
		for dep, v := range deps {
			if s, ok := v.(string); ok {
				r.SecondaryDeps[dep] = s
			} else {
				r.SecondaryDeps[dep] = fmt.Sprint(v)
			}
		}
	}

	for _, f := range []struct {
		col string
		dst *bool
	}{
		{cols.Private, &r.Private},
		{cols.Archived, &r.Archived},
		{cols.Disabled, &r.Disabled},
	} {
		v, err := parseFlag(get(f.col))
		if err != nil {
			report(NormalizeKey(f.col), err)
		}
		*f.dst = v
	}

	return r, diags, nil
}

func parseFlag(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "", "false", "0", "no", "off", "f", "n":
		return false, nil
	case "true", "1", "yes", "on", "t", "y":
		return true, nil
	}
	return false, errors.New(errors.ErrCodeInvalidFlag, "not a boolean: %q", s)
}
