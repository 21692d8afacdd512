// Package pkg provides the libraries behind deptree.
//
// deptree answers one question about an organization's repositories: which
// of them actually end up installed once the release entry points and all of
// their transitive PyPI, npm and GitHub dependencies are followed.
//
// # Layout
//
//   - [parse]: identity parsers for requirement lines and source URLs
//   - [repo]: snapshot loading, records and the published-name index
//   - [closure]: the fixpoint engine and its result state
//   - [report]: summary counts and output files
//   - [render]: DOT and SVG graphs of the installed set
//   - [pipeline]: load, resolve and render with result caching
//   - [cache], [store], [server], [config]: supporting infrastructure
//
// # Data Flow
//
//	repo_health.csv
//	     ↓
//	[repo] Snapshot → Index
//	     ↓
//	[closure] Engine.Run → State
//	     ↓
//	[report] installed.txt, repo_health.json, summary
package pkg
