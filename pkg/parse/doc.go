// Package parse extracts canonical identities from raw dependency
// declarations found in a repository snapshot.
//
// Each micro-grammar has its own function:
//
//   - [Requirement] parses a pinned package requirement such as
//     "opaque-keys[django]==1.2.3a4-dev; python_version < '3.0'" into a
//     [Package] (name and version).
//   - [SourceDependency] parses a source-control reference such as
//     "git+https://github.com/edx/codejail.git@3.1.3#egg=codejail" into a
//     [Source] (host, owner, repository, ref).
//
// Both return a typed error from [github.com/matzehuels/deptree/pkg/errors]
// carrying the offending line when the input does not match, so callers can
// record the failure as a diagnostic and move on.
//
// [CanonicalName] normalizes published package names: an index treats
// "edx_foo" and "edx-foo" as the same package.
package parse
