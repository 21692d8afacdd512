package closure

import (
	"encoding/json"
	"fmt"

	"github.com/matzehuels/deptree/pkg/errors"
	"github.com/matzehuels/deptree/pkg/repo"
)

type encodedState struct {
	Installed         []string            `json:"installed"`
	ExternalPrimary   []string            `json:"external_pypi"`
	ExternalSecondary []string            `json:"external_npm"`
	ExternalSource    []string            `json:"external_github"`
	Edges             []Edge              `json:"edges"`
	Reasons           map[string]Edge     `json:"reasons"`
	Passes            []int               `json:"passes"`
	Diagnostics       []encodedDiagnostic `json:"diagnostics,omitempty"`
}

type encodedDiagnostic struct {
	Repo    string      `json:"repo"`
	Field   string      `json:"field"`
	Code    errors.Code `json:"code,omitempty"`
	Message string      `json:"message"`
}

// Encode serializes a converged state by record name.
func Encode(s *State) ([]byte, error) {
	if s.Status != Converged {
		return nil, errors.New(errors.ErrCodeInvalidInput, "cannot encode a %s closure", s.Status)
	}
	out := encodedState{
		Installed:         s.InstalledNames(),
		ExternalPrimary:   s.ExternalPrimary.Sorted(),
		ExternalSecondary: s.ExternalSecondary.Sorted(),
		ExternalSource:    s.ExternalSource.Sorted(),
		Edges:             s.Edges,
		Reasons:           s.Reasons,
		Passes:            s.Passes,
	}
	for _, d := range s.Diagnostics {
		out.Diagnostics = append(out.Diagnostics, encodedDiagnostic{
			Repo:    d.Repo,
			Field:   d.Field,
			Code:    errors.GetCode(d.Err),
			Message: errors.UserMessage(d.Err),
		})
	}
	return json.Marshal(out)
}

// Decode rebuilds a converged state against idx. It fails if the data names
// a repository idx does not know, which means the data belongs to another
// snapshot.
func Decode(data []byte, idx *repo.Index) (*State, error) {
	var in encodedState
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidJSON, err, "decode closure")
	}

	s := newState()
	s.Status = Converged
	for _, name := range in.Installed {
		r, ok := idx.Lookup(name)
		if !ok {
			return nil, errors.New(errors.ErrCodeNotFound, "closure references unknown repository %q", name)
		}
		s.Installed[name] = r
	}
	for _, v := range in.ExternalPrimary {
		s.ExternalPrimary.Add(v)
	}
	for _, v := range in.ExternalSecondary {
		s.ExternalSecondary.Add(v)
	}
	for _, v := range in.ExternalSource {
		s.ExternalSource.Add(v)
	}
	for _, e := range in.Edges {
		s.edgeSeen[e] = true
		s.Edges = append(s.Edges, e)
	}
	for name, e := range in.Reasons {
		s.Reasons[name] = e
	}
	s.Passes = in.Passes
	for _, d := range in.Diagnostics {
		var err error = fmt.Errorf("%s", d.Message)
		if d.Code != "" {
			err = &errors.Error{Code: d.Code, Message: d.Message}
		}
		s.Diagnostics = append(s.Diagnostics, repo.Diagnostic{Repo: d.Repo, Field: d.Field, Err: err})
	}
	return s, nil
}
