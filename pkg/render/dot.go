package render

import (
	"bytes"
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/deptree/pkg/closure"
	"github.com/matzehuels/deptree/pkg/repo"
)

// Options configures DOT generation.
type Options struct {
	// Detailed adds the release marker and flags to node labels and the
	// resolving package names to edge labels.
	Detailed bool

	// Focus limits the graph to the discovery chain of one repository
	// plus its direct dependencies. Empty draws everything.
	Focus string
}

// Edge styles per ecosystem.
var edgeStyles = map[repo.Ecosystem]string{
	repo.EcosystemPrimary:   "solid",
	repo.EcosystemSecondary: "dashed",
	repo.EcosystemSource:    "dotted",
}

// ToDOT converts the installed graph to Graphviz DOT. Parallel edges
// between the same two repositories are merged into one arrow.
func ToDOT(s *closure.State, opts Options) string {
	records := s.InstalledRecords()
	edges := mergeEdges(s.Edges)
	if opts.Focus != "" {
		records, edges = focus(s, opts.Focus, edges)
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, r := range records {
		fmt.Fprintf(&buf, "  %s [%s];\n", dotQuote(r.Name), strings.Join(nodeAttrs(r, opts.Detailed), ", "))
	}

	buf.WriteString("\n")
	for _, e := range edges {
		attrs := []string{fmt.Sprintf("style=%s", edgeStyles[e.ecosystems[0]])}
		if opts.Detailed {
			attrs = append(attrs, "label="+dotQuote(strings.Join(e.via, "\n")))
		}
		fmt.Fprintf(&buf, "  %s -> %s [%s];\n", dotQuote(e.from), dotQuote(e.to), strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(r *repo.Record, detailed bool) []string {
	label := r.Name
	if detailed {
		var parts []string
		if r.IsEntryPoint() {
			parts = append(parts, "release: "+r.Release)
		}
		for _, f := range []struct {
			set  bool
			name string
		}{{r.Private, "private"}, {r.Archived, "archived"}, {r.Disabled, "disabled"}} {
			if f.set {
				parts = append(parts, f.name)
			}
		}
		if len(parts) > 0 {
			label += "\n" + strings.Join(parts, "\n")
		}
	}

	attrs := []string{"label=" + dotQuote(label)}
	switch {
	case r.Archived || r.Disabled:
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey")
	case r.IsEntryPoint():
		attrs = append(attrs, "fillcolor=\"#dbeafe\"", "penwidth=2")
	}
	return attrs
}

// dotEscaper escapes a DOT double-quoted string. Newlines become the \n
// line break that Graphviz understands in labels.
var dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", "")

func dotQuote(s string) string {
	return `"` + dotEscaper.Replace(s) + `"`
}

type mergedEdge struct {
	from, to   string
	ecosystems []repo.Ecosystem
	via        []string
}

// mergeEdges groups edges by endpoints, keeping discovery order of first
// appearance.
func mergeEdges(edges []closure.Edge) []*mergedEdge {
	var out []*mergedEdge
	byPair := make(map[[2]string]*mergedEdge)
	for _, e := range edges {
		if e.From == e.To {
			continue
		}
		key := [2]string{e.From, e.To}
		m, ok := byPair[key]
		if !ok {
			m = &mergedEdge{from: e.From, to: e.To}
			byPair[key] = m
			out = append(out, m)
		}
		if !slices.Contains(m.ecosystems, e.Ecosystem) {
			m.ecosystems = append(m.ecosystems, e.Ecosystem)
		}
		m.via = append(m.via, e.Via)
	}
	return out
}

func focus(s *closure.State, name string, edges []*mergedEdge) ([]*repo.Record, []*mergedEdge) {
	keep := map[string]bool{name: true}
	chain, _ := s.Path(name)
	for _, e := range chain {
		keep[e.From] = true
	}
	for _, e := range s.Dependencies(name) {
		keep[e.To] = true
	}

	var records []*repo.Record
	for _, r := range s.InstalledRecords() {
		if keep[r.Name] {
			records = append(records, r)
		}
	}
	var kept []*mergedEdge
	for _, e := range edges {
		if keep[e.from] && keep[e.to] {
			kept = append(kept, e)
		}
	}
	return records, kept
}
