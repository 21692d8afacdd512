package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/deptree/pkg/observability"
)

// newLogger creates a logger with "HH:MM:SS.ms" timestamps (e.g. "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs completion of an operation with its elapsed time.
// It is safe for sequential use by a single goroutine.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time rounded to the millisecond,
// e.g. "Resolved 212 repositories (41ms)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached by the root command, or
// log.Default() when there is none.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// logHooks reports closure progress and cache activity at debug level.
type logHooks struct {
	logger *log.Logger
}

func (h *logHooks) OnStart(_ context.Context, records, entryPoints int) {
	h.logger.Debug("closure start", "records", records, "entry_points", entryPoints)
}

func (h *logHooks) OnPass(_ context.Context, pass, installed, added int, d time.Duration) {
	h.logger.Debug("pass done", "pass", pass, "installed", installed, "added", added, "took", d.Round(time.Microsecond))
}

func (h *logHooks) OnConverged(_ context.Context, passes, installed int, d time.Duration) {
	h.logger.Debug("closure converged", "passes", passes, "installed", installed, "took", d.Round(time.Microsecond))
}

func (h *logHooks) OnDiagnostic(_ context.Context, repo string, err error) {
	h.logger.Debug("diagnostic", "repo", repo, "err", err)
}

func (h *logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

var (
	_ observability.ClosureHooks = (*logHooks)(nil)
	_ observability.CacheHooks   = (*logHooks)(nil)
)
