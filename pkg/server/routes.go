package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/deptree/pkg/buildinfo"
	"github.com/matzehuels/deptree/pkg/closure"
	"github.com/matzehuels/deptree/pkg/errors"
	"github.com/matzehuels/deptree/pkg/render"
	"github.com/matzehuels/deptree/pkg/report"
	"github.com/matzehuels/deptree/pkg/repo"
	"github.com/matzehuels/deptree/pkg/store"
)

// Result is the data served by the API.
type Result struct {
	Snapshot *repo.Snapshot
	Index    *repo.Index
	State    *closure.State

	// Highlight is the default ?contains= filter for /external.
	Highlight string

	// Store backs /runs. Nil serves an empty history.
	Store store.Store
}

type handler struct {
	res     *Result
	summary report.Summary
	logger  *log.Logger
}

// Handler builds the chi router for res.
func Handler(res *Result, logger *log.Logger) http.Handler {
	if logger == nil {
		logger = log.Default()
	}
	h := &handler{
		res:     res,
		summary: report.Summarize(res.Snapshot, res.Index, res.State),
		logger:  logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(cors)

	r.Get("/healthz", h.healthz)
	r.Get("/summary", h.getSummary)
	r.Get("/installed", h.installed)
	r.Get("/external/{ecosystem}", h.external)
	r.Get("/repos/{owner}/{name}", h.repository)
	r.Get("/diagnostics", h.diagnostics)
	r.Get("/graph.{format}", h.graph)
	r.Get("/runs", h.runs)
	r.Get("/runs/{id}", h.run)
	return r
}

func (h *handler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"state":   h.res.State.Status.String(),
		"version": buildinfo.Version,
	})
}

func (h *handler) getSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.summary)
}

func (h *handler) installed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"count": len(h.res.State.Installed),
		"repos": h.res.State.InstalledNames(),
	})
}

func (h *handler) external(w http.ResponseWriter, r *http.Request) {
	eco, err := repo.ParseEcosystem(chi.URLParam(r, "ecosystem"))
	if err != nil {
		writeError(w, err)
		return
	}
	contains := h.res.Highlight
	if q := r.URL.Query(); q.Has("contains") {
		contains = q.Get("contains")
	}

	names := report.ThirdParty(h.res.State, eco, contains)
	writeJSON(w, http.StatusOK, map[string]any{
		"ecosystem": eco,
		"total":     h.res.State.External(eco).Len(),
		"contains":  contains,
		"packages":  names,
	})
}

type repoView struct {
	Name          string            `json:"name"`
	Owner         string            `json:"owner"`
	Release       string            `json:"release,omitempty"`
	EntryPoint    bool              `json:"entry_point"`
	Installed     bool              `json:"installed"`
	PrimaryName   string            `json:"pypi_name,omitempty"`
	SecondaryName string            `json:"npm_name,omitempty"`
	Private       bool              `json:"private"`
	Archived      bool              `json:"archived"`
	Disabled      bool              `json:"disabled"`
	PrimaryDeps   map[string]string `json:"pypi_dependencies,omitempty"`
	SecondaryDeps map[string]string `json:"npm_dependencies,omitempty"`
	SourceDeps    []string          `json:"github_dependencies,omitempty"`
	Path          []closure.Edge    `json:"path,omitempty"`
	Dependencies  []closure.Edge    `json:"dependencies,omitempty"`
	Dependents    []closure.Edge    `json:"dependents,omitempty"`
}

func (h *handler) repository(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "owner") + "/" + chi.URLParam(r, "name")
	if err := errors.ValidateRepoName(name); err != nil {
		writeError(w, err)
		return
	}
	rec, ok := h.res.Index.Lookup(name)
	if !ok {
		writeError(w, errors.New(errors.ErrCodeNotFound, "repository %s not in snapshot", name))
		return
	}

	s := h.res.State
	view := repoView{
		Name:          rec.Name,
		Owner:         rec.Owner(),
		Release:       rec.Release,
		EntryPoint:    rec.IsEntryPoint(),
		Installed:     s.IsInstalled(rec.Name),
		PrimaryName:   rec.PrimaryName,
		SecondaryName: rec.SecondaryName,
		Private:       rec.Private,
		Archived:      rec.Archived,
		Disabled:      rec.Disabled,
		PrimaryDeps:   rec.PrimaryDeps,
		SecondaryDeps: rec.SecondaryDeps,
		SourceDeps:    rec.SourceDeps,
		Dependencies:  s.Dependencies(rec.Name),
		Dependents:    s.Dependents(rec.Name),
	}
	view.Path, _ = s.Path(rec.Name)
	writeJSON(w, http.StatusOK, view)
}

func (h *handler) diagnostics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"diagnostics": report.Diagnostics(h.res.Snapshot, h.res.State),
		"collisions":  h.res.Index.Collisions,
	})
}

func (h *handler) graph(w http.ResponseWriter, r *http.Request) {
	f, err := render.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		writeError(w, err)
		return
	}
	if f != render.FormatDOT && f != render.FormatSVG {
		writeError(w, errors.New(errors.ErrCodeInvalidFormat, "format %s is not served, use dot or svg", f))
		return
	}

	opts := render.Options{
		Detailed: r.URL.Query().Get("detailed") == "true",
		Focus:    r.URL.Query().Get("focus"),
	}
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()
	data, err := render.Render(ctx, h.res.State, f, opts)
	if err != nil {
		h.logger.Error("render graph", "format", f, "err", err)
		writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "render graph"))
		return
	}

	if f == render.FormatSVG {
		w.Header().Set("Content-Type", "image/svg+xml")
	} else {
		w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	}
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *handler) runs(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, errors.New(errors.ErrCodeInvalidInput, "limit must be a positive integer, got %q", v))
			return
		}
		limit = n
	}
	if h.res.Store == nil {
		writeJSON(w, http.StatusOK, map[string]any{"runs": []*store.Run{}})
		return
	}
	runs, err := h.res.Store.Recent(r.Context(), limit)
	if err != nil {
		h.logger.Error("list runs", "err", err)
		writeError(w, err)
		return
	}
	if runs == nil {
		runs = []*store.Run{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

func (h *handler) run(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if h.res.Store == nil {
		writeError(w, errors.New(errors.ErrCodeNotFound, "run %s not found", id))
		return
	}
	run, err := h.res.Store.Get(r.Context(), id)
	if err != nil {
		if !errors.Is(err, errors.ErrCodeNotFound) {
			h.logger.Error("get run", "id", id, "err", err)
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	writeJSON(w, statusFor(code), map[string]string{
		"error": errors.UserMessage(err),
		"code":  string(code),
	})
}

func statusFor(code errors.Code) int {
	switch {
	case code == errors.ErrCodeNotFound || code == errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case strings.HasPrefix(string(code), "INVALID_"):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
