package parse

import (
	"regexp"
	"strings"

	"github.com/matzehuels/deptree/pkg/errors"
)

// requirementRE matches name[extras]==version once the environment marker
// has been cut off. Extras are matched but not captured.
var requirementRE = regexp.MustCompile(`^([^\[=]*)(?:\[[^\]]*\])?==(.*)$`)

// Package is a pinned package identity.
type Package struct {
	Name    string
	Version string
}

// String returns the identity in pinned form, e.g. "django==2.2.20".
func (p Package) String() string { return p.Name + "==" + p.Version }

// Requirement parses a pinned requirement line.
//
// Bracketed extras and anything after a ';' are discarded. Lines without an
// "==" pin, or with an empty name or version, fail with
// errors.ErrCodeInvalidRequirement.
func Requirement(line string) (Package, error) {
	line = strings.TrimSpace(line)
	pinned, _, _ := strings.Cut(line, ";")
	m := requirementRE.FindStringSubmatch(strings.TrimSpace(pinned))
	if m == nil {
		return Package{}, errors.New(errors.ErrCodeInvalidRequirement, "no version pin in %q", line)
	}
	name := strings.TrimSpace(m[1])
	version := strings.TrimSpace(m[2])
	if name == "" || version == "" {
		return Package{}, errors.New(errors.ErrCodeInvalidRequirement, "incomplete requirement %q", line)
	}
	return Package{Name: name, Version: version}, nil
}

// CanonicalName returns the form of a published package name used for index
// keys and lookups. Underscores and hyphens are equivalent, and the hyphenated
// form wins.
func CanonicalName(name string) string {
	return strings.ReplaceAll(name, "_", "-")
}
