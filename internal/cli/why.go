package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/deptree/pkg/errors"
)

func (c *CLI) whyCommand() *cobra.Command {
	var noCache bool

	cmd := &cobra.Command{
		Use:   "why <snapshot.csv> <owner/repo>",
		Short: "Explain why a repository is installed",
		Long: `Print the chain of dependencies that first pulled a repository into the
installed set, starting from a release entry point.

Example:
  deptree why repo_health.csv edx/opaque-keys`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runWhy(cmd.Context(), args[0], args[1], noCache)
		},
	}
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the result cache")
	return cmd
}

func (c *CLI) runWhy(ctx context.Context, snapshot, name string, noCache bool) error {
	if err := errors.ValidateRepoName(name); err != nil {
		return err
	}

	runner, closeRunner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer closeRunner()

	res, err := runner.Execute(ctx, c.pipelineOptions(snapshot, false))
	if err != nil {
		return err
	}

	rec, ok := res.Index.Lookup(name)
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "repository %s is not in the snapshot", name)
	}
	chain, installed := res.State.Path(rec.Name)
	if !installed {
		printWarning("%s is not installed", rec.Name)
		printDetail("no release entry point depends on it, directly or transitively")
		return nil
	}
	if len(chain) == 0 {
		printSuccess("%s is an entry point (release %s)", rec.Name, rec.Release)
		return nil
	}

	printSuccess("%s is installed", rec.Name)
	printInfo("%s %s", chain[0].From, StyleDim.Render("(entry point)"))
	for _, e := range chain {
		printDetail("%s %s %s", iconArrow, ecosystemLabel(e.Ecosystem), e.Via)
		printInfo("%s", e.To)
	}

	if deps := res.State.Dependents(rec.Name); len(deps) > 1 {
		printNewline()
		printKeyValue("also required by", "")
		for _, e := range deps[1:] {
			printDetail("%s (%s %s)", e.From, ecosystemLabel(e.Ecosystem), e.Via)
		}
	}
	return nil
}
