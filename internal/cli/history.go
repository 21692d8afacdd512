package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/deptree/pkg/errors"
	"github.com/matzehuels/deptree/pkg/repo"
	"github.com/matzehuels/deptree/pkg/store"
)

func (c *CLI) historyCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List recorded closure runs",
		Long: `List runs recorded with "deptree closure --record", newest first.
With a run ID, show only that run.

Requires a MongoDB run store (store.mongo_uri in the config file or
DEPTREE_MONGO_URI).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var id string
			if len(args) == 1 {
				id = args[0]
			}
			return c.runHistory(cmd.Context(), id, limit)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of runs to show")
	return cmd
}

func (c *CLI) runHistory(ctx context.Context, id string, limit int) error {
	if limit < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "--limit must be at least 1")
	}
	st, err := c.newStore(ctx)
	if err != nil {
		return err
	}
	if st == nil {
		return errors.New(errors.ErrCodeInvalidInput, "no run store configured (set store.mongo_uri or DEPTREE_MONGO_URI)")
	}
	defer st.Close(ctx)

	runs, err := recentRuns(ctx, st, id, limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		printInfo("No recorded runs")
		return nil
	}

	for i, run := range runs {
		if i > 0 {
			printNewline()
		}
		printRun(run)
	}
	return nil
}

// recentRuns returns the newest runs, or the single run with the given ID.
func recentRuns(ctx context.Context, st store.Store, id string, limit int) ([]*store.Run, error) {
	if id == "" {
		return st.Recent(ctx, limit)
	}
	run, err := st.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return []*store.Run{run}, nil
}

func printRun(run *store.Run) {
	printTitle(run.CreatedAt.Local().Format(time.DateTime) + "  " + StyleDim.Render(run.ID))
	printKeyValue("snapshot", run.Snapshot)
	printKeyValue("sha256", run.SnapshotHash[:min(12, len(run.SnapshotHash))])
	printCount("installed", run.Installed)
	printCount("entry points", run.EntryPoints)
	for _, eco := range repo.Ecosystems {
		printCount(fmt.Sprintf("%s third-party", ecosystemLabel(eco)), run.ThirdParty[string(eco)])
	}
}
