package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/deptree/pkg/errors"
	"github.com/matzehuels/deptree/pkg/pipeline"
	"github.com/matzehuels/deptree/pkg/report"
	"github.com/matzehuels/deptree/pkg/repo"
	"github.com/matzehuels/deptree/pkg/store"
)

// closureOpts holds the flags of the closure command.
type closureOpts struct {
	outDir   string // directory for repo_health.json and installed.txt
	contains string // substring filter for the npm and PyPI listings
	all      bool   // list every third-party identity
	jsonOut  string // optional JSON report path
	record   bool   // save the run to the history store
	noCache  bool
	refresh  bool
}

func (c *CLI) closureCommand() *cobra.Command {
	var opts closureOpts

	cmd := &cobra.Command{
		Use:   "closure <snapshot.csv>",
		Short: "Compute the installed repositories and third-party dependencies",
		Long: `Compute the set of repositories reachable from the release entry points.

Writes repo_health.json (the filtered input rows) and installed.txt (one
repository per line) into --out-dir, then prints a summary. GitHub
third-party dependencies are listed in full; npm and PyPI listings only show
names containing --contains, which defaults to the configured organization.

Examples:
  deptree closure repo_health.csv
  deptree closure repo_health.csv --out-dir build --json build/report.json
  deptree closure repo_health.csv --all --record`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("out-dir") {
				opts.outDir = c.Config.OutDir
			}
			if !cmd.Flags().Changed("contains") {
				opts.contains = c.Config.Org
			}
			if opts.all {
				opts.contains = ""
			}
			return c.runClosure(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.outDir, "out-dir", "d", ".", "directory for output files")
	cmd.Flags().StringVar(&opts.contains, "contains", "", "only list npm/PyPI third-party names containing this (default: config org)")
	cmd.Flags().BoolVar(&opts.all, "all", false, "list every third-party name")
	cmd.Flags().StringVar(&opts.jsonOut, "json", "", "also write a JSON report to this path")
	cmd.Flags().BoolVar(&opts.record, "record", false, "record the run in the history store")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the result cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even if a cached result exists")

	return cmd
}

func (c *CLI) runClosure(ctx context.Context, snapshot string, opts closureOpts) error {
	if err := errors.ValidateOutputDir(opts.outDir); err != nil {
		return err
	}
	logger := loggerFromContext(ctx)

	runner, closeRunner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer closeRunner()

	start := time.Now()
	prog := newProgress(logger)
	res, err := runner.Execute(ctx, c.pipelineOptions(snapshot, opts.refresh))
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Resolved %d installed repositories", len(res.State.Installed)))

	paths, err := report.WriteFiles(opts.outDir, res.Snapshot, res.State)
	if err != nil {
		return err
	}
	rep := report.Build(res.Snapshot, res.Index, res.State, opts.contains)
	if opts.jsonOut != "" {
		if err := report.WriteJSONFile(opts.jsonOut, rep); err != nil {
			return err
		}
		paths = append(paths, opts.jsonOut)
	}

	printClosureReport(res, rep, opts.contains)
	printNewline()
	printSuccess("Wrote %d files", len(paths))
	for _, p := range paths {
		printFile(p)
	}

	if opts.record {
		if err := c.recordRun(ctx, snapshot, res, rep.Summary, time.Since(start)); err != nil {
			printError("Run not recorded: %v", err)
			return err
		}
	}
	return nil
}

func (c *CLI) recordRun(ctx context.Context, snapshot string, res *pipeline.Result, sum report.Summary, took time.Duration) error {
	st, err := c.newStore(ctx)
	if err != nil {
		return err
	}
	if st == nil {
		return errors.New(errors.ErrCodeInvalidInput, "no run store configured (set store.mongo_uri or DEPTREE_MONGO_URI)")
	}
	defer st.Close(ctx)

	run := store.NewRun(snapshot, res.SnapshotHash, c.Config.Org, sum, took)
	if err := st.Record(ctx, run); err != nil {
		return err
	}
	printSuccess("Recorded run %s", run.ID)
	return nil
}

// printClosureReport prints the console summary: counts, then third-party
// listings for GitHub (all), npm and PyPI (filtered by contains).
func printClosureReport(res *pipeline.Result, rep *report.Report, contains string) {
	sum := rep.Summary

	printTitle("Repositories")
	printCount("total", sum.Repos)
	printCount("entry points", sum.EntryPoints)
	printCount("installed", sum.Installed)
	printCount("installed private", sum.Private)
	printCount("installed archived", sum.Archived)
	printCount("installed disabled", sum.Disabled)
	printCount("published on PyPI", sum.PrimaryPackages)
	printCount("published on npm", sum.SecondaryPackages)
	printStats(sum.Installed, sum.Passes, res.Cached)

	for _, eco := range repo.Ecosystems {
		printNewline()
		total := sum.ThirdParty[eco]
		heading := fmt.Sprintf("%s third-party", ecosystemLabel(eco))
		if eco == repo.EcosystemSource || contains == "" {
			printList(heading, total, rep.ThirdParty[eco])
			continue
		}
		printList(fmt.Sprintf("%s, containing %q", heading, contains), total, rep.Highlighted[eco])
	}

	if len(sum.Collisions) > 0 || sum.Diagnostics > 0 {
		printNewline()
	}
	for _, col := range sum.Collisions {
		printWarning("%s", errors.UserMessage(col.Err()))
	}
	if sum.Diagnostics > 0 {
		printWarning("%d data-quality problems in the snapshot", sum.Diagnostics)
		for _, d := range rep.Diagnostics {
			printDetail("%s", d)
		}
	}
}

func ecosystemLabel(eco repo.Ecosystem) string {
	switch eco {
	case repo.EcosystemPrimary:
		return "PyPI"
	case repo.EcosystemSecondary:
		return "npm"
	case repo.EcosystemSource:
		return "GitHub"
	}
	return string(eco)
}
