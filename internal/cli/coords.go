package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stackgrid/pkg/errors"
	"github.com/matzehuels/stackgrid/pkg/grid"
	gridio "github.com/matzehuels/stackgrid/pkg/io"
	"github.com/matzehuels/stackgrid/pkg/pipeline"
)

// calcXYCommand creates the calc-xy command.
func (c *CLI) calcXYCommand() *cobra.Command {
	var (
		f      gridFlags
		w, h   int
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "calc-xy <top> <left>",
		Short: "Convert a pixel offset to a grid cell",
		Long: `Convert a pixel offset relative to the container into the grid cell an
item of size w x h would snap to. The cell is clamped into the grid.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			top, left, err := parseFloats(args[0], args[1])
			if err != nil {
				return err
			}
			opts, err := c.options(cmd, &f)
			if err != nil {
				return err
			}
			runner := pipeline.NewRunner(nil, nil, loggerFromContext(cmd.Context()))
			cell, err := runner.CalcXY(opts, top, left, w, h)
			if err != nil {
				return err
			}
			if asJSON {
				return gridio.WriteJSON(cell, cmd.OutOrStdout())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d %d\n", cell.X, cell.Y)
			return nil
		},
	}
	addGridFlags(cmd, &f)
	cmd.Flags().IntVar(&w, "w", 1, "item width in grid units")
	cmd.Flags().IntVar(&h, "h", 1, "item height in grid units")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

// positionCommand creates the position command.
func (c *CLI) positionCommand() *cobra.Command {
	var (
		f      gridFlags
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "position <x> <y> <w> <h>",
		Short: "Convert a grid rectangle to pixels",
		Long: `Convert a grid rectangle into its pixel position and size within the
container, including margins and container padding.`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, y, err := parseInts(args[0], args[1])
			if err != nil {
				return err
			}
			w, h, err := parseInts(args[2], args[3])
			if err != nil {
				return err
			}
			it := grid.Item{I: "position", X: x, Y: y, W: w, H: h}
			if err := grid.ValidateItem(it, 0); err != nil {
				return err
			}
			opts, err := c.options(cmd, &f)
			if err != nil {
				return err
			}
			runner := pipeline.NewRunner(nil, nil, loggerFromContext(cmd.Context()))
			pos, err := runner.Position(opts, it)
			if err != nil {
				return err
			}
			if asJSON {
				return gridio.WriteJSON(pos, cmd.OutOrStdout())
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "top %g left %g width %g height %g\n", pos.Top, pos.Left, pos.Width, pos.Height)
			return nil
		},
	}
	addGridFlags(cmd, &f)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

// parseFloats parses two numeric arguments.
func parseFloats(a, b string) (float64, float64, error) {
	x, err := strconv.ParseFloat(a, 64)
	if err != nil {
		return 0, 0, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid number %q", a)
	}
	y, err := strconv.ParseFloat(b, 64)
	if err != nil {
		return 0, 0, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid number %q", b)
	}
	return x, y, nil
}
