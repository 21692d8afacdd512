package cli

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/deptree/pkg/report"
	"github.com/matzehuels/deptree/pkg/server"
	"github.com/matzehuels/deptree/pkg/store"
)

// serveOpts holds the flags of the serve command.
type serveOpts struct {
	addr    string
	record  bool
	noCache bool
}

func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve <snapshot.csv>",
		Short: "Serve the closure of a snapshot over HTTP",
		Long: `Resolve a snapshot once and serve the result as a read-only JSON API.

Routes:
  GET /healthz
  GET /summary
  GET /installed
  GET /external/{pypi|npm|github}?contains=edx
  GET /repos/{owner}/{name}
  GET /diagnostics
  GET /graph.{dot|svg}?focus=owner/name&detailed=true
  GET /runs?limit=20
  GET /runs/{id}`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				opts.addr = c.Config.Server.Addr
			}
			return c.runServe(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", ":8080", "listen address")
	cmd.Flags().BoolVar(&opts.record, "record", false, "record the served run in the history store")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the result cache")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, snapshot string, opts serveOpts) error {
	logger := loggerFromContext(ctx)

	runner, closeRunner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer closeRunner()

	start := time.Now()
	res, err := runner.Execute(ctx, c.pipelineOptions(snapshot, false))
	if err != nil {
		return err
	}

	st, err := c.newStore(ctx)
	if err != nil {
		return err
	}
	if st == nil {
		logger.Debug("no run store configured, using memory")
		st = store.NewMemoryStore()
	}
	defer st.Close(context.WithoutCancel(ctx))

	if opts.record {
		sum := report.Summarize(res.Snapshot, res.Index, res.State)
		run := store.NewRun(snapshot, res.SnapshotHash, c.Config.Org, sum, time.Since(start))
		if err := st.Record(ctx, run); err != nil {
			return err
		}
		logger.Info("recorded run", "id", run.ID)
	}

	handler := server.Handler(&server.Result{
		Snapshot:  res.Snapshot,
		Index:     res.Index,
		State:     res.State,
		Highlight: c.Config.Org,
		Store:     st,
	}, logger)

	printSuccess("Serving %d installed repositories", len(res.State.Installed))
	printNextStep("Try", "curl http://localhost"+portOf(opts.addr)+"/summary")

	err = server.New(opts.addr, handler, logger).Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// portOf returns the ":port" suffix of a listen address. A bare port is
// accepted as well.
func portOf(addr string) string {
	if _, port, err := net.SplitHostPort(addr); err == nil {
		return ":" + port
	}
	return ":" + addr
}
