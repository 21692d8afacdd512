package closure

import (
	"slices"

	"github.com/matzehuels/deptree/pkg/repo"
)

// Status is the phase of a closure computation.
type Status int

const (
	// Running means the last pass added at least one record.
	Running Status = iota
	// Converged means the last pass added nothing; the state is final.
	Converged
)

func (s Status) String() string {
	if s == Converged {
		return "converged"
	}
	return "running"
}

// Edge is a resolved dependency between two repositories.
type Edge struct {
	From      string         `json:"from"`
	To        string         `json:"to"`
	Ecosystem repo.Ecosystem `json:"ecosystem"`
	Via       string         `json:"via"` // package name or raw source line
}

// State is the mutable state of one closure computation. Only the engine
// mutates it; once Converged it is treated as read-only.
type State struct {
	Status Status

	Installed         map[string]*repo.Record
	ExternalPrimary   Set
	ExternalSecondary Set
	ExternalSource    Set

	// Edges lists resolved edges in discovery order, without duplicates.
	Edges []Edge
	// Reasons maps each transitively installed record to the edge that
	// first pulled it in. Entry points have no reason.
	Reasons map[string]Edge
	// Passes holds the installed count after each completed pass.
	Passes []int
	// Diagnostics lists unparseable source dependency lines, once each.
	Diagnostics []repo.Diagnostic

	edgeSeen map[Edge]bool
	diagSeen map[[2]string]bool
}

func newState() *State {
	return &State{
		Installed:         make(map[string]*repo.Record),
		ExternalPrimary:   make(Set),
		ExternalSecondary: make(Set),
		ExternalSource:    make(Set),
		Reasons:           make(map[string]Edge),
		edgeSeen:          make(map[Edge]bool),
		diagSeen:          make(map[[2]string]bool),
	}
}

// External returns the third-party set for an ecosystem.
func (s *State) External(eco repo.Ecosystem) Set {
	switch eco {
	case repo.EcosystemPrimary:
		return s.ExternalPrimary
	case repo.EcosystemSecondary:
		return s.ExternalSecondary
	case repo.EcosystemSource:
		return s.ExternalSource
	}
	return nil
}

// IsInstalled reports whether the named repository is in the installed set.
func (s *State) IsInstalled(name string) bool {
	_, ok := s.Installed[name]
	return ok
}

// InstalledNames returns the installed repository names in sorted order.
func (s *State) InstalledNames() []string { return repo.Names(s.Installed) }

// InstalledRecords returns the installed records in name order.
func (s *State) InstalledRecords() []*repo.Record { return repo.Sorted(s.Installed) }

// Path returns the chain of edges from an entry point to the named record.
// The chain is empty for an entry point. ok is false when the record is not
// installed.
func (s *State) Path(name string) (chain []Edge, ok bool) {
	if !s.IsInstalled(name) {
		return nil, false
	}
	seen := map[string]bool{name: true}
	for cur := name; ; {
		e, has := s.Reasons[cur]
		if !has {
			break
		}
		chain = append(chain, e)
		if seen[e.From] {
			break
		}
		seen[e.From] = true
		cur = e.From
	}
	slices.Reverse(chain)
	return chain, true
}

// Dependents returns the resolved edges pointing at the named record, in
// discovery order.
func (s *State) Dependents(name string) []Edge {
	var out []Edge
	for _, e := range s.Edges {
		if e.To == name {
			out = append(out, e)
		}
	}
	return out
}

// Dependencies returns the resolved edges leaving the named record, in
// discovery order.
func (s *State) Dependencies(name string) []Edge {
	var out []Edge
	for _, e := range s.Edges {
		if e.From == name {
			out = append(out, e)
		}
	}
	return out
}

func (s *State) install(from, to *repo.Record, eco repo.Ecosystem, via string) {
	e := Edge{From: from.Name, To: to.Name, Ecosystem: eco, Via: via}
	if !s.edgeSeen[e] {
		s.edgeSeen[e] = true
		s.Edges = append(s.Edges, e)
	}
	if s.IsInstalled(to.Name) {
		return
	}
	s.Installed[to.Name] = to
	s.Reasons[to.Name] = e
}

// diagnose records d unless the same repo and line were already reported.
func (s *State) diagnose(d repo.Diagnostic, line string) bool {
	key := [2]string{d.Repo, line}
	if s.diagSeen[key] {
		return false
	}
	s.diagSeen[key] = true
	s.Diagnostics = append(s.Diagnostics, d)
	return true
}
