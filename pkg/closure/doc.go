// Package closure computes the set of repositories installed from a set of
// entry points by iterative fixpoint expansion.
//
// # Algorithm
//
// The installed set starts with every entry-point record (non-empty release
// marker). Each pass walks a sorted copy of the installed set and, for every
// record, every declared dependency:
//
//   - a PyPI requirement resolves through [repo.Index.LookupPrimary]
//   - an npm dependency resolves through [repo.Index.LookupSecondary]
//   - a source-control reference is parsed and resolves by "owner/name"
//
// Resolved records join the installed set. Unresolved identities are
// collected per ecosystem as third-party dependencies. A source line that
// cannot be parsed is reported as a diagnostic and counted nowhere.
//
// A pass that adds no record moves the [State] to [Converged]. The
// external sets may still grow on that last pass. Insertion is idempotent,
// so dependency cycles need no special handling, and the engine converges in
// at most max(|records|, 1) passes.
//
// # Usage
//
//	idx := repo.NewIndex(snap.Records)
//	st, err := closure.New(idx, closure.WithLogger(logger)).Run(ctx)
//	for _, name := range st.InstalledNames() { ... }
//	chain, _ := st.Path("edx/codejail") // why is it installed?
package closure
