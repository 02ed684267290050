package cli

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stackgrid/pkg/errors"
	"github.com/matzehuels/stackgrid/pkg/grid"
	gridio "github.com/matzehuels/stackgrid/pkg/io"
	"github.com/matzehuels/stackgrid/pkg/pipeline"
)

// layoutFlags are shared by the commands that transform a layout file.
type layoutFlags struct {
	output  string
	noCache bool
	refresh bool
	grid    gridFlags
}

func addLayoutFlags(cmd *cobra.Command, f *layoutFlags) {
	cmd.Flags().StringVarP(&f.output, "output", "o", gridio.Stdio, "output file (- for stdout)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "recompute and overwrite cached results")
	addGridFlags(cmd, &f.grid)
}

// compactCommand creates the compact command.
func (c *CLI) compactCommand() *cobra.Command {
	var f layoutFlags
	cmd := &cobra.Command{
		Use:   "compact [layout.json]",
		Short: "Remove gaps from a layout",
		Long: `Remove gaps from a layout along the configured axis.

Items slide up (vertical) or left (horizontal) until they touch another item
or the grid edge. Static items never move. With --compact none items keep
their positions but are clamped into the grid.

Reads standard input when no file is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayoutOp(cmd, &f, inputArg(args), func(ctx context.Context, r *pipeline.Runner, opts pipeline.Options, l grid.Layout) (pipeline.Result, error) {
				return r.Compact(ctx, l, opts)
			})
		},
	}
	addLayoutFlags(cmd, &f)
	return cmd
}

// moveCommand creates the move command.
func (c *CLI) moveCommand() *cobra.Command {
	var f layoutFlags
	cmd := &cobra.Command{
		Use:   "move <layout.json> <id> <x> <y>",
		Short: "Move one item and cascade displaced items",
		Long: `Move one item to the cell (x, y) as a user drag would.

Items the moved item lands on are pushed out of the way, cascading as far as
needed, and the result is compacted. A move onto a static item, or any move
with --prevent-collision that would overlap, is vetoed and leaves the layout
unchanged.`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, y, err := parseInts(args[2], args[3])
			if err != nil {
				return err
			}
			id := args[1]
			return c.runLayoutOp(cmd, &f, args[0], func(ctx context.Context, r *pipeline.Runner, opts pipeline.Options, l grid.Layout) (pipeline.Result, error) {
				return r.Move(ctx, l, id, x, y, opts)
			})
		},
	}
	addLayoutFlags(cmd, &f)
	return cmd
}

// resizeCommand creates the resize command.
func (c *CLI) resizeCommand() *cobra.Command {
	var (
		f      layoutFlags
		handle string
	)
	cmd := &cobra.Command{
		Use:   "resize <layout.json> <id> <w> <h>",
		Short: "Resize one item",
		Long: `Resize one item to w x h grid units, anchored on a resize handle.

West handles (w, sw, nw) keep the right edge fixed and north handles
(n, ne, nw) keep the bottom edge fixed. The size is clamped to the item's
min/max bounds and to the grid width.`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, h, err := parseInts(args[2], args[3])
			if err != nil {
				return err
			}
			id := args[1]
			return c.runLayoutOp(cmd, &f, args[0], func(ctx context.Context, r *pipeline.Runner, opts pipeline.Options, l grid.Layout) (pipeline.Result, error) {
				return r.Resize(ctx, l, id, w, h, handle, opts)
			})
		},
	}
	addLayoutFlags(cmd, &f)
	cmd.Flags().StringVar(&handle, "handle", "se", "resize handle: s, w, e, n, sw, nw, se, ne")
	return cmd
}

// syncCommand creates the sync command.
func (c *CLI) syncCommand() *cobra.Command {
	var f layoutFlags
	cmd := &cobra.Command{
		Use:   "sync <layout.json> <children.json>",
		Short: "Reconcile a layout with declared elements",
		Long: `Reconcile a layout with a declared set of elements.

children.json is an array of keys or {"key": ..., "grid": {...}} objects.
Declared keys keep their items (with any grid overrides applied), new keys
get a 1x1 item below the existing content and undeclared items are removed.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			decls, err := gridio.ImportDeclarations(args[1])
			if err != nil {
				return err
			}
			return c.runLayoutOp(cmd, &f, args[0], func(ctx context.Context, r *pipeline.Runner, opts pipeline.Options, l grid.Layout) (pipeline.Result, error) {
				return r.Synchronize(ctx, l, decls, opts)
			})
		},
	}
	addLayoutFlags(cmd, &f)
	return cmd
}

// =============================================================================
// Helpers
// =============================================================================

type layoutOp func(ctx context.Context, r *pipeline.Runner, opts pipeline.Options, l grid.Layout) (pipeline.Result, error)

// runLayoutOp loads the input layout, runs op and writes the result.
func (c *CLI) runLayoutOp(cmd *cobra.Command, f *layoutFlags, input string, op layoutOp) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	opts, err := c.options(cmd, &f.grid)
	if err != nil {
		return err
	}
	opts.Refresh = f.refresh

	l, err := gridio.ImportLayout(input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, f.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(logger)
	res, err := op(ctx, runner, opts, l)
	if err != nil {
		return err
	}
	logger.Debug("operation finished", "command", cmd.Name(), "items", len(res.Layout), "cache_hit", res.CacheHit, "duration", res.Duration)

	if err := gridio.ExportLayout(res.Layout, f.output); err != nil {
		return err
	}

	if res.Vetoed {
		printWarning("%s vetoed, layout unchanged", cmd.Name())
	} else {
		printSuccess("%s complete", cmd.Name())
	}
	if f.output != gridio.Stdio {
		printFile(f.output)
	}
	printStats(len(res.Layout), res.Changed, res.Vetoed, res.CacheHit)
	if c.Verbose {
		prog.done(cmd.Name())
	}
	return nil
}

// inputArg returns the input path argument, defaulting to stdin.
func inputArg(args []string) string {
	if len(args) == 0 {
		return gridio.Stdio
	}
	return args[0]
}

// parseInts parses two integer arguments.
func parseInts(a, b string) (int, int, error) {
	x, err := strconv.Atoi(a)
	if err != nil {
		return 0, 0, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid integer %q", a)
	}
	y, err := strconv.Atoi(b)
	if err != nil {
		return 0, 0, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid integer %q", b)
	}
	return x, y, nil
}
