package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/deptree/pkg/closure"
	"github.com/matzehuels/deptree/pkg/repo"
)

// Artifact file names written by WriteFiles.
const (
	RawRowsFile   = "repo_health.json"
	InstalledFile = "installed.txt"
)

// Report is the machine-readable result of a run.
type Report struct {
	Summary     Summary                     `json:"summary"`
	Installed   []string                    `json:"installed"`
	ThirdParty  map[repo.Ecosystem][]string `json:"third_party"`
	Highlight   string                      `json:"highlight,omitempty"`
	Highlighted map[repo.Ecosystem][]string `json:"highlighted,omitempty"`
	Diagnostics []string                    `json:"diagnostics,omitempty"`
}

// Build assembles the full report. highlight selects third-party identities
// worth a closer look, typically the organization name.
func Build(snap *repo.Snapshot, idx *repo.Index, s *closure.State, highlight string) *Report {
	rep := &Report{
		Summary:     Summarize(snap, idx, s),
		Installed:   s.InstalledNames(),
		ThirdParty:  make(map[repo.Ecosystem][]string, len(repo.Ecosystems)),
		Highlight:   highlight,
		Diagnostics: Diagnostics(snap, s),
	}
	if highlight != "" {
		rep.Highlighted = make(map[repo.Ecosystem][]string, len(repo.Ecosystems))
	}
	for _, eco := range repo.Ecosystems {
		rep.ThirdParty[eco] = ThirdParty(s, eco, "")
		if highlight != "" {
			rep.Highlighted[eco] = ThirdParty(s, eco, highlight)
		}
	}
	return rep
}

// WriteInstalled writes the sorted installed repository names, one per line.
func WriteInstalled(w io.Writer, s *closure.State) error {
	names := s.InstalledNames()
	if len(names) == 0 {
		_, err := io.WriteString(w, "\n")
		return err
	}
	_, err := io.WriteString(w, strings.Join(names, "\n")+"\n")
	return err
}

// WriteRawRows writes the filtered input rows as indented JSON so the run
// can be reproduced from its own output.
func WriteRawRows(w io.Writer, rows []repo.Row) error {
	if rows == nil {
		rows = []repo.Row{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	if err := enc.Encode(rows); err != nil {
		return fmt.Errorf("encode rows: %w", err)
	}
	return nil
}

// WriteJSON encodes a report as indented JSON.
func WriteJSON(w io.Writer, rep *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

// WriteFiles writes every input row that names an org and the installed listing into dir,
// creating it if needed. It returns the written paths.
func WriteFiles(dir string, snap *repo.Snapshot, s *closure.State) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}

	files := []struct {
		name  string
		write func(io.Writer) error
	}{
		{RawRowsFile, func(w io.Writer) error { return WriteRawRows(w, snap.Raw) }},
		{InstalledFile, func(w io.Writer) error { return WriteInstalled(w, s) }},
	}

	var paths []string
	for _, f := range files {
		path := filepath.Join(dir, f.name)
		if err := writeFile(path, f.write); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// WriteJSONFile writes the JSON report to path.
func WriteJSONFile(path string, rep *Report) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return writeFile(path, func(w io.Writer) error { return WriteJSON(w, rep) })
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
