package parse

import (
	"regexp"
	"strings"

	"github.com/matzehuels/deptree/pkg/errors"
)

// sourceRE matches git+https://<host>/<owner>/<repo>[.git][@ref][#fragment].
var sourceRE = regexp.MustCompile(`^git\+https://([^/]+)/([^/@#]+)/([^/@#]+?)(?:\.git)?(?:@([^#]*))?(?:#(.*))?$`)

// Source is a source-control dependency on another repository.
type Source struct {
	Host     string // e.g. "github.com"
	Owner    string
	Name     string
	Ref      string // pinned ref, empty when unpinned
	Fragment string // trailing fragment without '#', e.g. "egg=codejail==3.1.3"
}

// FullName returns the repository key "owner/name".
func (s Source) FullName() string { return s.Owner + "/" + s.Name }

// SourceDependency parses a source-control reference line.
//
// The ".git" suffix, the "@ref" pin and the "#egg=..." fragment are all
// optional. Lines of any other shape fail with errors.ErrCodeInvalidSource.
func SourceDependency(line string) (Source, error) {
	line = strings.TrimSpace(line)
	m := sourceRE.FindStringSubmatch(line)
	if m == nil {
		return Source{}, errors.New(errors.ErrCodeInvalidSource, "unrecognized source dependency %q", line)
	}
	return Source{
		Host:     m[1],
		Owner:    m[2],
		Name:     m[3],
		Ref:      m[4],
		Fragment: m[5],
	}, nil
}
