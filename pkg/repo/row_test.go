package repo

import (
	"testing"

	"github.com/matzehuels/deptree/pkg/errors"
)

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"openedx.yaml.release", "openedx_yaml_release"},
		{"github:is_private", "github_is_private"},
		{"setup_py.pypi_name", "setup_py_pypi_name"},
		{"repo_name", "repo_name"},
	}
	for _, tt := range tests {
		if got := NormalizeKey(tt.in); got != tt.want {
			t.Errorf("NormalizeKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFromRow(t *testing.T) {
	row := Row{
		"org_name":                 "edx",
		"repo_name":                "edx/edx-platform",
		"openedx.yaml.release":     "master",
		"dependencies.github_list": `["git+https://github.com/edx/codejail.git@3.1.3#egg=codejail==3.1.3"]`,
		"dependencies.pypi_list":   `["django==2.2.20", "opaque-keys[django]==1.2.3a4-dev", "django==3.2.0"]`,
		"dependencies.js_list":     `{"react": "^16.14.0", "edx-ui-toolkit": "1.5.4"}`,
		"setup_py.pypi_name":       "edx_platform",
		"npm_package":              "@edx/platform",
		"github:is_private":        "False",
		"github:is_archived":       "True",
		"github:is_disabled":       "",
	}

	r, diags, err := FromRow(row, Columns{})
	if err != nil {
		t.Fatalf("FromRow() error = %v", err)
	}
	if len(diags) != 0 {
		t.Errorf("FromRow() diagnostics = %v, want none", diags)
	}

	if r.Name != "edx/edx-platform" {
		t.Errorf("Name = %q", r.Name)
	}
	if !r.IsEntryPoint() {
		t.Error("IsEntryPoint() = false, want true")
	}
	if len(r.SourceDeps) != 1 {
		t.Errorf("SourceDeps = %v, want 1 entry", r.SourceDeps)
	}
	if got := r.PrimaryDeps["django"]; got != "3.2.0" {
		t.Errorf("PrimaryDeps[django] = %q, want last occurrence 3.2.0", got)
	}
	if got := r.PrimaryDeps["opaque-keys"]; got != "1.2.3a4-dev" {
		t.Errorf("PrimaryDeps[opaque-keys] = %q", got)
	}
	if len(r.PrimaryDeps) != 2 {
		t.Errorf("PrimaryDeps has %d entries, want 2", len(r.PrimaryDeps))
	}
	if got := r.SecondaryDeps["react"]; got != "^16.14.0" {
		t.Errorf("SecondaryDeps[react] = %q", got)
	}
	if r.PrimaryName != "edx-platform" {
		t.Errorf("PrimaryName = %q, want canonical edx-platform", r.PrimaryName)
	}
	if r.SecondaryName != "@edx/platform" {
		t.Errorf("SecondaryName = %q", r.SecondaryName)
	}
	if r.Private || !r.Archived || r.Disabled {
		t.Errorf("flags = private:%v archived:%v disabled:%v", r.Private, r.Archived, r.Disabled)
	}
	if r.Owner() != "edx" {
		t.Errorf("Owner() = %q", r.Owner())
	}
}

func TestFromRowBlankCells(t *testing.T) {
	r, diags, err := FromRow(Row{"org_name": "edx", "repo_name": "edx/empty"}, Columns{})
	if err != nil {
		t.Fatalf("FromRow() error = %v", err)
	}
	if len(diags) != 0 {
		t.Errorf("diagnostics = %v", diags)
	}
	if r.IsEntryPoint() {
		t.Error("blank release should not be an entry point")
	}
	if len(r.SourceDeps) != 0 || len(r.PrimaryDeps) != 0 || len(r.SecondaryDeps) != 0 {
		t.Errorf("expected empty dependency lists, got %+v", r)
	}
}

func TestFromRowMissingName(t *testing.T) {
	_, _, err := FromRow(Row{"org_name": "edx"}, Columns{})
	if !errors.Is(err, errors.ErrCodeInvalidRow) {
		t.Errorf("FromRow() error = %v, want %s", err, errors.ErrCodeInvalidRow)
	}
}

func TestFromRowDiagnostics(t *testing.T) {
	row := Row{
		"org_name":                 "edx",
		"repo_name":                "edx/messy",
		"dependencies_github_list": `not json`,
		"dependencies_pypi_list":   `["django>=2.2", "six==1.16.0"]`,
		"dependencies_js_list":     `{"lodash": 4}`,
		"github_is_private":        "maybe",
	}

	r, diags, err := FromRow(row, Columns{})
	if err != nil {
		t.Fatalf("FromRow() error = %v", err)
	}

	codes := make(map[errors.Code]int)
	for _, d := range diags {
		if d.Repo != "edx/messy" {
			t.Errorf("diagnostic repo = %q", d.Repo)
		}
		codes[errors.GetCode(d.Err)]++
	}
	if codes[errors.ErrCodeInvalidJSON] != 1 {
		t.Errorf("INVALID_JSON diagnostics = %d, want 1", codes[errors.ErrCodeInvalidJSON])
	}
	if codes[errors.ErrCodeInvalidRequirement] != 1 {
		t.Errorf("INVALID_REQUIREMENT diagnostics = %d, want 1", codes[errors.ErrCodeInvalidRequirement])
	}
	if codes[errors.ErrCodeInvalidFlag] != 1 {
		t.Errorf("INVALID_FLAG diagnostics = %d, want 1", codes[errors.ErrCodeInvalidFlag])
	}

	if len(r.SourceDeps) != 0 {
		t.Errorf("SourceDeps = %v, want empty after bad JSON", r.SourceDeps)
	}
	if _, ok := r.PrimaryDeps["django"]; ok {
		t.Error("unpinned requirement should be excluded")
	}
	if r.PrimaryDeps["six"] != "1.16.0" {
		t.Errorf("PrimaryDeps[six] = %q", r.PrimaryDeps["six"])
	}
	if r.SecondaryDeps["lodash"] != "4" {
		t.Errorf("SecondaryDeps[lodash] = %q, want stringified 4", r.SecondaryDeps["lodash"])
	}
	if r.Private {
		t.Error("unparseable flag should default to false")
	}
}

func TestFromRowCustomColumns(t *testing.T) {
	cols := Columns{Name: "full.name", Release: "release:branch"}
	row := Row{"full.name": "acme/app", "release:branch": "v1"}

	r, _, err := FromRow(row, cols)
	if err != nil {
		t.Fatalf("FromRow() error = %v", err)
	}
	if r.Name != "acme/app" || r.Release != "v1" {
		t.Errorf("got name=%q release=%q", r.Name, r.Release)
	}
}
