package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/deptree/pkg/cache"
	"github.com/matzehuels/deptree/pkg/closure"
	"github.com/matzehuels/deptree/pkg/errors"
	"github.com/matzehuels/deptree/pkg/render"
	"github.com/matzehuels/deptree/pkg/repo"
)

// DefaultCacheTTL is used when Options.CacheTTL is zero.
const DefaultCacheTTL = 24 * time.Hour

// Options configures one run.
type Options struct {
	Snapshot string        // path to the CSV snapshot
	Columns  repo.Columns  // column layout, defaults filled in
	Refresh  bool          // ignore cached results
	CacheTTL time.Duration // lifetime of cached entries
}

// Result is the outcome of one run.
type Result struct {
	Snapshot     *repo.Snapshot
	Index        *repo.Index
	State        *closure.State
	SnapshotHash string
	CacheKey     string
	Cached       bool
	Stats        Stats
}

// Stats records timing of a run.
type Stats struct {
	LoadTime    time.Duration
	ResolveTime time.Duration
}

// Runner executes runs against a cache.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner. A nil keyer uses the default layout, a nil
// cache disables caching.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: cache.Instrument(c), Keyer: keyer, Logger: logger}
}

// Execute loads the snapshot and returns its converged closure, from cache
// when possible. The snapshot and index are always rebuilt from the file
// since decoding a cached result needs them.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if opts.Snapshot == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no snapshot given")
	}
	opts.Columns = opts.Columns.WithDefaults()
	if opts.CacheTTL == 0 {
		opts.CacheTTL = DefaultCacheTTL
	}

	loadStart := time.Now()
	snap, err := repo.Load(opts.Snapshot, opts.Columns)
	if err != nil {
		return nil, err
	}
	hash, err := cache.HashFile(opts.Snapshot)
	if err != nil {
		return nil, err
	}
	idx := repo.NewIndex(snap.Records)

	res := &Result{
		Snapshot:     snap,
		Index:        idx,
		SnapshotHash: hash,
		CacheKey:     r.Keyer.ResultKey(hash, cache.ResultKeyOpts{Columns: opts.Columns}),
	}
	res.Stats.LoadTime = time.Since(loadStart)

	r.Logger.Info("loaded snapshot",
		"repos", idx.Len(),
		"skipped", snap.Skipped,
		"entry_points", len(snap.EntryPoints()),
		"duration", res.Stats.LoadTime.Round(time.Millisecond))
	for _, d := range snap.Diagnostics {
		r.Logger.Warn("snapshot row", "repo", d.Repo, "field", d.Field, "err", d.Err)
	}
	for _, c := range idx.Collisions {
		r.Logger.Warn("name collision", "ecosystem", c.Ecosystem, "name", c.Name, "err", c.Err())
	}

	resolveStart := time.Now()
	if !opts.Refresh {
		if s, ok := r.cached(ctx, res.CacheKey, idx); ok {
			res.State = s
			res.Cached = true
			res.Stats.ResolveTime = time.Since(resolveStart)
			r.Logger.Debug("closure from cache", "key", res.CacheKey)
			return res, nil
		}
	}

	s, err := closure.New(idx, closure.WithLogger(r.Logger)).Run(ctx)
	if err != nil {
		return nil, err
	}
	res.State = s
	res.Stats.ResolveTime = time.Since(resolveStart)

	if data, err := closure.Encode(s); err != nil {
		r.Logger.Warn("encode result", "err", err)
	} else if err := r.Cache.Set(ctx, res.CacheKey, data, opts.CacheTTL); err != nil {
		r.Logger.Warn("cache result", "err", err)
	}
	return res, nil
}

func (r *Runner) cached(ctx context.Context, key string, idx *repo.Index) (*closure.State, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache lookup", "err", err)
		return nil, false
	}
	if !hit {
		return nil, false
	}
	s, err := closure.Decode(data, idx)
	if err != nil {
		r.Logger.Debug("discarding cached result", "err", err)
		_ = r.Cache.Delete(ctx, key)
		return nil, false
	}
	return s, true
}

// Render draws the installed graph of res, caching non-DOT formats.
func (r *Runner) Render(ctx context.Context, res *Result, f render.Format, opts render.Options) ([]byte, bool, error) {
	if f == render.FormatDOT {
		return []byte(render.ToDOT(res.State, opts)), false, nil
	}

	key := r.Keyer.ArtifactKey(res.CacheKey, cache.ArtifactKeyOpts{
		Format:   string(f),
		Detailed: opts.Detailed,
		Focus:    opts.Focus,
	})
	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit && len(data) > 0 {
		return data, true, nil
	}

	data, err := render.Render(ctx, res.State, f, opts)
	if err != nil {
		return nil, false, fmt.Errorf("render %s: %w", f, err)
	}
	if err := r.Cache.Set(ctx, key, bytes.Clone(data), DefaultCacheTTL); err != nil {
		r.Logger.Warn("cache artifact", "err", err)
	}
	return data, false, nil
}
