package repo

import (
	"strings"

	"github.com/matzehuels/deptree/pkg/errors"
)

// Ecosystem identifies a namespace of dependency identities.
type Ecosystem string

const (
	// EcosystemPrimary is the host language's package index (PyPI).
	EcosystemPrimary Ecosystem = "pypi"
	// EcosystemSecondary is the front-end package index (npm).
	EcosystemSecondary Ecosystem = "npm"
	// EcosystemSource is direct source-control references between repositories.
	EcosystemSource Ecosystem = "github"
)

// Ecosystems lists every ecosystem in reporting order.
var Ecosystems = []Ecosystem{EcosystemSource, EcosystemSecondary, EcosystemPrimary}

var ecosystemAliases = map[string]Ecosystem{
	"pypi":      EcosystemPrimary,
	"primary":   EcosystemPrimary,
	"python":    EcosystemPrimary,
	"npm":       EcosystemSecondary,
	"secondary": EcosystemSecondary,
	"js":        EcosystemSecondary,
	"github":    EcosystemSource,
	"source":    EcosystemSource,
	"git":       EcosystemSource,
}

// ParseEcosystem resolves an ecosystem name or alias, case-insensitively.
func ParseEcosystem(s string) (Ecosystem, error) {
	if e, ok := ecosystemAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return e, nil
	}
	return "", errors.New(errors.ErrCodeInvalidEcosystem, "unknown ecosystem %q (want pypi, npm or github)", s)
}
