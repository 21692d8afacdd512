package closure

import (
	"context"
	"maps"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/deptree/pkg/errors"
	"github.com/matzehuels/deptree/pkg/observability"
	"github.com/matzehuels/deptree/pkg/parse"
	"github.com/matzehuels/deptree/pkg/repo"
)

// Engine computes the installed closure over a fixed index.
// An Engine holds no per-run state and may be reused.
type Engine struct {
	index  *repo.Index
	logger *log.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for per-pass debug output and diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an engine over idx. The index must not change while the
// engine runs.
func New(idx *repo.Index, opts ...Option) *Engine {
	e := &Engine{index: idx, logger: log.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Init returns a Running state whose installed set holds the entry points.
func (e *Engine) Init() *State {
	s := newState()
	for _, r := range e.index.ByName {
		if r.IsEntryPoint() {
			s.Installed[r.Name] = r
		}
	}
	return s
}

// Step runs one full pass and returns the number of records it added.
// The pass walks a snapshot of the installed set taken before it starts, so
// records added during the pass are walked on the next one. A pass that adds
// nothing moves s to Converged; Step on a converged state does nothing.
func (e *Engine) Step(ctx context.Context, s *State) int {
	if s.Status == Converged {
		return 0
	}
	start := time.Now()
	before := len(s.Installed)

	for _, r := range repo.Sorted(s.Installed) {
		for _, dep := range slices.Sorted(maps.Keys(r.PrimaryDeps)) {
			if target, ok := e.index.LookupPrimary(dep); ok {
				s.install(r, target, repo.EcosystemPrimary, dep)
			} else {
				s.ExternalPrimary.Add(dep)
			}
		}
		for _, dep := range slices.Sorted(maps.Keys(r.SecondaryDeps)) {
			if target, ok := e.index.LookupSecondary(dep); ok {
				s.install(r, target, repo.EcosystemSecondary, dep)
			} else {
				s.ExternalSecondary.Add(dep)
			}
		}
		for _, line := range r.SourceDeps {
			src, err := parse.SourceDependency(line)
			if err != nil {
				e.diagnose(ctx, s, r, line, err)
				continue
			}
			if target, ok := e.index.Lookup(src.FullName()); ok {
				s.install(r, target, repo.EcosystemSource, line)
			} else {
				s.ExternalSource.Add(line)
			}
		}
	}

	added := len(s.Installed) - before
	s.Passes = append(s.Passes, len(s.Installed))
	if added == 0 {
		s.Status = Converged
	}

	pass := len(s.Passes)
	e.logger.Debug("closure pass", "pass", pass, "installed", len(s.Installed), "added", added)
	observability.Closure().OnPass(ctx, pass, len(s.Installed), added, time.Since(start))
	return added
}

func (e *Engine) diagnose(ctx context.Context, s *State, r *repo.Record, line string, err error) {
	d := repo.Diagnostic{Repo: r.Name, Field: string(repo.EcosystemSource), Err: err}
	if !s.diagnose(d, line) {
		return
	}
	e.logger.Warn("unparseable source dependency", "repo", r.Name, "line", line)
	observability.Closure().OnDiagnostic(ctx, r.Name, err)
}

// Run computes the closure from the entry points until convergence.
//
// The context is checked between passes. Run fails only if the context is
// done or the pass bound is exceeded, which indicates a bug.
func (e *Engine) Run(ctx context.Context) (*State, error) {
	start := time.Now()
	s := e.Init()
	observability.Closure().OnStart(ctx, e.index.Len(), len(s.Installed))
	e.logger.Debug("closure start", "records", e.index.Len(), "entry_points", len(s.Installed))

	limit := max(e.index.Len(), 1)
	for s.Status == Running {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if len(s.Passes) >= limit {
			return nil, errors.New(errors.ErrCodeInternal, "closure did not converge within %d passes", limit)
		}
		e.Step(ctx, s)
	}

	observability.Closure().OnConverged(ctx, len(s.Passes), len(s.Installed), time.Since(start))
	return s, nil
}
