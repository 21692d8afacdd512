// Package repo turns rows of a repository metadata snapshot into typed
// [Record] values and indexes them by the package names they publish.
//
// # Records
//
// A snapshot row is a flat string map. Column names are normalized by
// replacing '.' and ':' with '_' (so "dependencies.pypi_list" and
// "dependencies_pypi_list" are the same column). [FromRow] decodes the
// JSON-encoded dependency cells and parses every requirement line; cells
// that cannot be decoded are reported as [Diagnostic] values and treated as
// empty rather than failing the row.
//
// Records are identified by their "owner/name" key alone. Two records with
// the same key are the same repository even if their dependency lists
// differ; [Compare] orders records by key.
//
// # Index
//
// [NewIndex] maps each published package name, per [Ecosystem], back to the
// record that publishes it. When two records publish the same name the last
// one wins and a [Collision] is recorded.
package repo
