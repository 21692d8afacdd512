// Package store keeps a history of closure runs so installed-set growth can
// be followed across snapshots.
//
// [MongoStore] is used when a MongoDB URI is configured; [MemoryStore] backs
// tests and the HTTP server when no database is available.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/deptree/pkg/report"
)

// Run is one recorded closure computation.
type Run struct {
	ID           string         `bson:"_id" json:"id"`
	CreatedAt    time.Time      `bson:"created_at" json:"created_at"`
	Snapshot     string         `bson:"snapshot" json:"snapshot"`
	SnapshotHash string         `bson:"snapshot_hash" json:"snapshot_hash"`
	Org          string         `bson:"org,omitempty" json:"org,omitempty"`
	Duration     time.Duration  `bson:"duration" json:"duration"`
	Repos        int            `bson:"repos" json:"repos"`
	EntryPoints  int            `bson:"entry_points" json:"entry_points"`
	Installed    int            `bson:"installed" json:"installed"`
	Passes       int            `bson:"passes" json:"passes"`
	Diagnostics  int            `bson:"diagnostics" json:"diagnostics"`
	ThirdParty   map[string]int `bson:"third_party" json:"third_party"`
}

// NewRun creates a run record from a summary with a fresh ID.
func NewRun(snapshot, hash, org string, sum report.Summary, took time.Duration) *Run {
	tp := make(map[string]int, len(sum.ThirdParty))
	for eco, n := range sum.ThirdParty {
		tp[string(eco)] = n
	}
	return &Run{
		ID:           uuid.NewString(),
		CreatedAt:    time.Now().UTC(),
		Snapshot:     snapshot,
		SnapshotHash: hash,
		Org:          org,
		Duration:     took,
		Repos:        sum.Repos,
		EntryPoints:  sum.EntryPoints,
		Installed:    sum.Installed,
		Passes:       sum.Passes,
		Diagnostics:  sum.Diagnostics,
		ThirdParty:   tp,
	}
}

// Store persists runs.
type Store interface {
	// Record saves a run.
	Record(ctx context.Context, run *Run) error

	// Recent returns up to limit runs, newest first.
	Recent(ctx context.Context, limit int) ([]*Run, error)

	// Get returns one run by ID, or an errors.ErrCodeNotFound error.
	Get(ctx context.Context, id string) (*Run, error)

	// Close releases the backend.
	Close(ctx context.Context) error
}
