package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/deptree/pkg/errors"
	"github.com/matzehuels/deptree/pkg/report"
	"github.com/matzehuels/deptree/pkg/store"
)

const testSnapshot = `org_name,repo_name,openedx.yaml.release,dependencies.github_list,dependencies.pypi_list,dependencies.js_list,setup_py.pypi_name,npm_package,github.is_private,github.is_archived,github.is_disabled
edx,edx/edx-platform,master,,"[""edx-opaque-keys==2.2.0"",""django==2.2.20""]",,,,False,False,False
edx,edx/opaque-keys,,,"[""six==1.16.0""]",,edx_opaque_keys,,False,False,False
edx,edx/unused,,,,,unused,,False,False,False
`

// newTestCLI runs in an empty working directory with no deptree
// environment so that config and .env lookups find nothing.
func newTestCLI(t *testing.T) (*CLI, string) {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	for _, k := range []string{"DEPTREE_ORG", "DEPTREE_OUT_DIR", "DEPTREE_CACHE_DIR", "DEPTREE_REDIS_URL", "DEPTREE_MONGO_URI", "DEPTREE_ADDR"} {
		t.Setenv(k, "")
	}
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "xdg"))

	path := filepath.Join(dir, "repo_health.csv")
	if err := os.WriteFile(path, []byte(testSnapshot), 0o644); err != nil {
		t.Fatal(err)
	}
	var logs bytes.Buffer
	return New(&logs, log.InfoLevel), path
}

func TestRootCommandSubcommands(t *testing.T) {
	root := New(&bytes.Buffer{}, log.InfoLevel).RootCommand()

	var names []string
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	for _, want := range []string{"closure", "why", "graph", "serve", "history", "cache", "completion"} {
		if !slices.Contains(names, want) {
			t.Errorf("subcommand %q not registered (got %v)", want, names)
		}
	}
}

func TestClosureCommand(t *testing.T) {
	c, snapshot := newTestCLI(t)
	out := filepath.Join(filepath.Dir(snapshot), "out")

	root := c.RootCommand()
	root.SetArgs([]string{"closure", snapshot, "--out-dir", out, "--json", filepath.Join(out, "report.json")})
	if err := root.ExecuteContext(t.Context()); err != nil {
		t.Fatalf("closure error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(out, "installed.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(data), "edx/edx-platform\nedx/opaque-keys\n"; got != want {
		t.Errorf("installed.txt = %q, want %q", got, want)
	}
	for _, name := range []string{"repo_health.json", "report.json"} {
		if _, err := os.Stat(filepath.Join(out, name)); err != nil {
			t.Errorf("%s not written: %v", name, err)
		}
	}

	entries, err := os.ReadDir(filepath.Join(filepath.Dir(snapshot), "xdg", "deptree"))
	if err != nil || len(entries) == 0 {
		t.Errorf("result was not cached: %v", err)
	}
}

func TestClosureCommandMissingSnapshot(t *testing.T) {
	c, snapshot := newTestCLI(t)

	root := c.RootCommand()
	root.SilenceErrors = true
	root.SetArgs([]string{"closure", snapshot + ".missing", "--no-cache"})
	err := root.ExecuteContext(t.Context())
	if err == nil || !strings.Contains(err.Error(), "FILE_NOT_FOUND") {
		t.Errorf("error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestWhyCommand(t *testing.T) {
	tests := []struct {
		name    string
		repo    string
		wantErr string
	}{
		{"installed", "edx/opaque-keys", ""},
		{"not installed", "edx/unused", ""},
		{"unknown", "edx/nope", "NOT_FOUND"},
		{"bad name", "nope", "INVALID_INPUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, snapshot := newTestCLI(t)
			root := c.RootCommand()
			root.SilenceErrors = true
			root.SetArgs([]string{"why", snapshot, tt.repo, "--no-cache"})

			err := root.ExecuteContext(t.Context())
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("why error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want %s", err, tt.wantErr)
			}
		})
	}
}

func TestHistoryWithoutStore(t *testing.T) {
	c, _ := newTestCLI(t)
	root := c.RootCommand()
	root.SilenceErrors = true
	root.SetArgs([]string{"history"})
	if err := root.ExecuteContext(t.Context()); err == nil {
		t.Error("history without a store should fail")
	}
}

func TestRecentRuns(t *testing.T) {
	st := store.NewMemoryStore()
	older := store.NewRun("a.csv", "h1", "edx", report.Summary{Installed: 1}, time.Second)
	older.CreatedAt = older.CreatedAt.Add(-time.Hour)
	newer := store.NewRun("b.csv", "h2", "edx", report.Summary{Installed: 2}, time.Second)
	for _, r := range []*store.Run{older, newer} {
		if err := st.Record(t.Context(), r); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name    string
		id      string
		limit   int
		want    []string
		wantErr errors.Code
	}{
		{"recent", "", 10, []string{newer.ID, older.ID}, ""},
		{"limit", "", 1, []string{newer.ID}, ""},
		{"by id", older.ID, 10, []string{older.ID}, ""},
		{"unknown id", "nope", 10, nil, errors.ErrCodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runs, err := recentRuns(t.Context(), st, tt.id, tt.limit)
			if tt.wantErr != "" {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %s", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("recentRuns() error = %v", err)
			}
			var ids []string
			for _, r := range runs {
				ids = append(ids, r.ID)
			}
			if !slices.Equal(ids, tt.want) {
				t.Errorf("ids = %v, want %v", ids, tt.want)
			}
		})
	}
}

func TestCompletionCommand(t *testing.T) {
	for _, shell := range completionShells {
		t.Run(shell, func(t *testing.T) {
			c, _ := newTestCLI(t)
			root := c.RootCommand()
			var out bytes.Buffer
			root.SetOut(&out)
			root.SetArgs([]string{"completion", shell})
			if err := root.ExecuteContext(t.Context()); err != nil {
				t.Fatalf("completion %s error: %v", shell, err)
			}
			if !strings.Contains(out.String(), "deptree") {
				t.Errorf("completion %s output does not mention deptree", shell)
			}
		})
	}

	c, _ := newTestCLI(t)
	root := c.RootCommand()
	root.SilenceErrors = true
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"completion", "tcsh"})
	if err := root.ExecuteContext(t.Context()); err == nil {
		t.Error("completion tcsh should fail")
	}
}

func TestPortOf(t *testing.T) {
	tests := map[string]string{
		":8080":          ":8080",
		"127.0.0.1:9000": ":9000",
		"8080":           ":8080",
		"[::1]:7000":     ":7000",
	}
	for in, want := range tests {
		if got := portOf(in); got != want {
			t.Errorf("portOf(%q) = %q, want %q", in, got, want)
		}
	}
}
