package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/deptree/pkg/closure"
	"github.com/matzehuels/deptree/pkg/report"
	"github.com/matzehuels/deptree/pkg/repo"
	"github.com/matzehuels/deptree/pkg/store"
)

const snapshotCSV = `org_name,repo_name,openedx.yaml.release,dependencies.github_list,dependencies.pypi_list,dependencies.js_list,setup_py.pypi_name,npm_package,github.is_private,github.is_archived,github.is_disabled
edx,edx/edx-platform,master,"[""git+https://github.com/edx/codejail.git@3.1.3#egg=codejail""]","[""edx-opaque-keys==2.2.0"",""django==2.2.20"",""edx-when==1.0""]","{""@edx/paragon"": ""13.0.0""}",,,False,False,False
edx,edx/codejail,,,,,codejail,,False,False,False
edx,edx/opaque-keys,,,,,edx_opaque_keys,,False,True,False
edx,edx/paragon,,,,"{""react"": ""^16""}",,@edx/paragon,False,False,False
edx,edx/orphan,,,,,orphan,,False,False,False
`

func newTestServer(t *testing.T, st store.Store) *httptest.Server {
	t.Helper()
	snap, err := repo.Read(strings.NewReader(snapshotCSV), repo.Columns{})
	if err != nil {
		t.Fatal(err)
	}
	idx := repo.NewIndex(snap.Records)
	logger := log.New(io.Discard)
	s, err := closure.New(idx, closure.WithLogger(logger)).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	res := &Result{Snapshot: snap, Index: idx, State: s, Highlight: "edx", Store: st}
	srv := httptest.NewServer(Handler(res, logger))
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, srv *httptest.Server, path string, v any) int {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	if v != nil {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("GET %s: decode: %v", path, err)
		}
	}
	return resp.StatusCode
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, nil)

	var body map[string]string
	if code := get(t, srv, "/healthz", &body); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if body["status"] != "ok" || body["state"] != "converged" {
		t.Errorf("body = %v", body)
	}
}

func TestSummary(t *testing.T) {
	srv := newTestServer(t, nil)

	var sum report.Summary
	if code := get(t, srv, "/summary", &sum); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if sum.Repos != 5 || sum.Installed != 4 || sum.Archived != 1 {
		t.Errorf("summary = %+v", sum)
	}
}

func TestInstalled(t *testing.T) {
	srv := newTestServer(t, nil)

	var body struct {
		Count int      `json:"count"`
		Repos []string `json:"repos"`
	}
	get(t, srv, "/installed", &body)
	want := []string{"edx/codejail", "edx/edx-platform", "edx/opaque-keys", "edx/paragon"}
	if body.Count != 4 || !slices.Equal(body.Repos, want) {
		t.Errorf("installed = %+v, want %v", body, want)
	}
}

func TestExternal(t *testing.T) {
	srv := newTestServer(t, nil)

	tests := []struct {
		path      string
		wantCode  int
		wantTotal int
		want      []string
	}{
		{"/external/pypi", http.StatusOK, 2, []string{"edx-when"}},
		{"/external/pypi?contains=", http.StatusOK, 2, []string{"django", "edx-when"}},
		{"/external/python?contains=django", http.StatusOK, 2, []string{"django"}},
		{"/external/npm?contains=", http.StatusOK, 1, []string{"react"}},
		{"/external/github", http.StatusOK, 0, []string{}},
		{"/external/cargo", http.StatusBadRequest, 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			var body struct {
				Total    int      `json:"total"`
				Packages []string `json:"packages"`
				Code     string   `json:"code"`
			}
			code := get(t, srv, tt.path, &body)
			if code != tt.wantCode {
				t.Fatalf("status = %d, want %d", code, tt.wantCode)
			}
			if code != http.StatusOK {
				if body.Code != "INVALID_ECOSYSTEM" {
					t.Errorf("code = %q", body.Code)
				}
				return
			}
			if body.Total != tt.wantTotal || !slices.Equal(body.Packages, tt.want) {
				t.Errorf("body = %+v, want total %d packages %v", body, tt.wantTotal, tt.want)
			}
		})
	}
}

func TestRepository(t *testing.T) {
	srv := newTestServer(t, nil)

	var view struct {
		Name       string         `json:"name"`
		Owner      string         `json:"owner"`
		Installed  bool           `json:"installed"`
		EntryPoint bool           `json:"entry_point"`
		Archived   bool           `json:"archived"`
		Path       []closure.Edge `json:"path"`
	}
	if code := get(t, srv, "/repos/edx/opaque-keys", &view); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if view.Owner != "edx" || !view.Installed || view.EntryPoint || !view.Archived {
		t.Errorf("view = %+v", view)
	}
	if len(view.Path) != 1 || view.Path[0].From != "edx/edx-platform" || view.Path[0].Via != "edx-opaque-keys" {
		t.Errorf("path = %+v", view.Path)
	}

	var orphan struct {
		Installed bool `json:"installed"`
	}
	if code := get(t, srv, "/repos/edx/orphan", &orphan); code != http.StatusOK || orphan.Installed {
		t.Errorf("orphan: status %d, installed %v", code, orphan.Installed)
	}

	if code := get(t, srv, "/repos/edx/missing", nil); code != http.StatusNotFound {
		t.Errorf("missing repo status = %d, want 404", code)
	}
}

func TestGraphDOT(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/graph.dot")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	if !strings.HasPrefix(string(body), "digraph G {") {
		t.Errorf("body = %.100s", body)
	}

	if code := get(t, srv, "/graph.pdf", nil); code != http.StatusBadRequest {
		t.Errorf("pdf status = %d, want 400", code)
	}
}

func TestRuns(t *testing.T) {
	st := store.NewMemoryStore()
	run := store.NewRun("snap.csv", "h", "edx", report.Summary{Installed: 4}, time.Second)
	if err := st.Record(context.Background(), run); err != nil {
		t.Fatal(err)
	}
	srv := newTestServer(t, st)

	var body struct {
		Runs []store.Run `json:"runs"`
	}
	if code := get(t, srv, "/runs?limit=5", &body); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if len(body.Runs) != 1 || body.Runs[0].ID != run.ID {
		t.Errorf("runs = %+v", body.Runs)
	}

	if code := get(t, srv, "/runs?limit=zero", nil); code != http.StatusBadRequest {
		t.Errorf("bad limit status = %d, want 400", code)
	}

	var one store.Run
	if code := get(t, srv, "/runs/"+run.ID, &one); code != http.StatusOK {
		t.Fatalf("run status = %d", code)
	}
	if one.ID != run.ID || one.Installed != 4 {
		t.Errorf("run = %+v", one)
	}
	if code := get(t, srv, "/runs/unknown", nil); code != http.StatusNotFound {
		t.Errorf("unknown run status = %d, want 404", code)
	}

	empty := newTestServer(t, nil)
	get(t, empty, "/runs", &body)
	if len(body.Runs) != 0 {
		t.Errorf("runs without store = %+v", body.Runs)
	}
	if code := get(t, empty, "/runs/"+run.ID, nil); code != http.StatusNotFound {
		t.Errorf("run without store status = %d, want 404", code)
	}
}

func TestCORS(t *testing.T) {
	srv := newTestServer(t, nil)

	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/summary", nil)
	req.Header.Set("Origin", "https://dash.example")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("preflight status = %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "https://dash.example" {
		t.Errorf("Allow-Origin = %q", got)
	}
}

func TestServerRunShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := New("127.0.0.1:0", http.NotFoundHandler(), log.New(io.Discard))

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Run() = %v, want context.Canceled", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
