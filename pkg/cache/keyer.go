package cache

// FormatVersion is bumped whenever the encoded result layout changes, so
// stale entries are never decoded.
const FormatVersion = 1

// Keyer builds cache keys.
type Keyer interface {
	// ResultKey identifies the converged closure of one snapshot.
	ResultKey(snapshotHash string, opts ResultKeyOpts) string

	// ArtifactKey identifies a rendered graph of one result.
	ArtifactKey(resultKey string, opts ArtifactKeyOpts) string
}

// ResultKeyOpts holds everything besides the snapshot content that changes
// the closure.
type ResultKeyOpts struct {
	Columns any `json:"columns,omitempty"`
}

// ArtifactKeyOpts holds the render settings of a graph artifact.
type ArtifactKeyOpts struct {
	Format   string `json:"format"`
	Detailed bool   `json:"detailed,omitempty"`
	Focus    string `json:"focus,omitempty"`
}

// DefaultKeyer is the standard key layout.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard key layout.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ResultKey returns "result:<hash>".
func (DefaultKeyer) ResultKey(snapshotHash string, opts ResultKeyOpts) string {
	return hashKey("result", FormatVersion, snapshotHash, opts)
}

// ArtifactKey returns "artifact:<hash>".
func (DefaultKeyer) ArtifactKey(resultKey string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", resultKey, opts)
}

// ScopedKeyer prefixes every key of an inner Keyer, so several
// organizations or environments can share one Redis instance.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner uses the
// default layout.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	if prefix == "" {
		return inner
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// ResultKey returns the prefixed result key.
func (k *ScopedKeyer) ResultKey(snapshotHash string, opts ResultKeyOpts) string {
	return k.prefix + k.inner.ResultKey(snapshotHash, opts)
}

// ArtifactKey returns the prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(resultKey string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(resultKey, opts)
}
