// Package pipeline runs load → resolve with result caching.
//
// A [Runner] is shared by every CLI command and the HTTP server so the
// snapshot-to-closure path and its cache handling exist once:
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	res, err := runner.Execute(ctx, pipeline.Options{Snapshot: "repo_health.csv"})
//
// Results are cached under the SHA-256 of the snapshot file plus the column
// layout, so editing the snapshot or the [columns] config invalidates them.
// Rendered graphs are cached per result and format by [Runner.Render].
package pipeline
