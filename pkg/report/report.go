// Package report derives summary counts and listings from a converged
// closure and writes the run artifacts.
package report

import (
	"github.com/matzehuels/deptree/pkg/closure"
	"github.com/matzehuels/deptree/pkg/repo"
)

// Summary holds the counts printed at the end of a run.
type Summary struct {
	Repos             int `json:"repos"`
	Skipped           int `json:"skipped_rows"`
	PrimaryPackages   int `json:"pypi_packages"`
	SecondaryPackages int `json:"npm_packages"`
	EntryPoints       int `json:"entry_points"`
	Installed         int `json:"installed"`
	Private           int `json:"installed_private"`
	Archived          int `json:"installed_archived"`
	Disabled          int `json:"installed_disabled"`
	Passes            int `json:"passes"`
	Diagnostics       int `json:"diagnostics"`

	ThirdParty map[repo.Ecosystem]int `json:"third_party"`
	Collisions []repo.Collision       `json:"collisions,omitempty"`
}

// Summarize computes the summary of a converged closure.
func Summarize(snap *repo.Snapshot, idx *repo.Index, s *closure.State) Summary {
	sum := Summary{
		Repos:             idx.Len(),
		Skipped:           snap.Skipped,
		PrimaryPackages:   len(idx.ByPrimary),
		SecondaryPackages: len(idx.BySecondary),
		EntryPoints:       len(snap.EntryPoints()),
		Installed:         len(s.Installed),
		Passes:            len(s.Passes),
		Diagnostics:       len(snap.Diagnostics) + len(s.Diagnostics),
		ThirdParty:        make(map[repo.Ecosystem]int, len(repo.Ecosystems)),
		Collisions:        idx.Collisions,
	}
	for _, r := range s.Installed {
		if r.Private {
			sum.Private++
		}
		if r.Archived {
			sum.Archived++
		}
		if r.Disabled {
			sum.Disabled++
		}
	}
	for _, eco := range repo.Ecosystems {
		sum.ThirdParty[eco] = s.External(eco).Len()
	}
	return sum
}

// ThirdParty returns the sorted third-party identities of an ecosystem,
// keeping only those containing substr when it is non-empty.
func ThirdParty(s *closure.State, eco repo.Ecosystem, substr string) []string {
	set := s.External(eco)
	if set == nil {
		return nil
	}
	return set.Filter(substr)
}

// Diagnostics returns every data-quality message of the run: snapshot
// problems first, then closure problems.
func Diagnostics(snap *repo.Snapshot, s *closure.State) []string {
	out := make([]string, 0, len(snap.Diagnostics)+len(s.Diagnostics))
	for _, d := range snap.Diagnostics {
		out = append(out, d.Error())
	}
	for _, d := range s.Diagnostics {
		out = append(out, d.Error())
	}
	return out
}
