package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/deptree/pkg/render"
)

// graphOpts holds the flags of the graph command.
type graphOpts struct {
	output   string
	format   string // overrides the output extension
	detailed bool
	focus    string
	noCache  bool
}

func (c *CLI) graphCommand() *cobra.Command {
	var opts graphOpts

	cmd := &cobra.Command{
		Use:   "graph <snapshot.csv>",
		Short: "Draw the installed dependency graph",
		Long: `Draw the installed repositories and the dependencies between them.

The format follows the output extension (dot, svg, pdf, png) unless --format
is given. PDF and PNG need rsvg-convert from librsvg.

Examples:
  deptree graph repo_health.csv -o installed.svg
  deptree graph repo_health.csv -o why.dot --focus edx/opaque-keys --detailed`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGraph(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "installed.svg", "output file")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: "+render.FormatList()+" (default: from extension)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "label nodes with release and flags, edges with package names")
	cmd.Flags().StringVar(&opts.focus, "focus", "", "only draw the discovery chain and dependencies of this repository")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the result cache")

	return cmd
}

func (c *CLI) runGraph(ctx context.Context, snapshot string, opts graphOpts) error {
	var (
		f   render.Format
		err error
	)
	if opts.format != "" {
		f, err = render.ParseFormat(opts.format)
	} else {
		f, err = render.FormatFromPath(opts.output)
	}
	if err != nil {
		return err
	}

	runner, closeRunner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer closeRunner()

	res, err := runner.Execute(ctx, c.pipelineOptions(snapshot, false))
	if err != nil {
		return err
	}
	if opts.focus != "" && !res.State.IsInstalled(opts.focus) {
		printWarning("%s is not installed, drawing an empty graph", opts.focus)
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", f))
	spinner.Start()
	data, cached, err := runner.Render(ctx, res, f, render.Options{
		Detailed: opts.detailed,
		Focus:    opts.focus,
	})
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	if dir := filepath.Dir(opts.output); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(opts.output, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}

	printSuccess("Rendered %s graph", f)
	printStats(len(res.State.Installed), len(res.State.Passes), res.Cached || cached)
	printFile(opts.output)
	return nil
}
