package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stackgrid/pkg/errors"
	"github.com/matzehuels/stackgrid/pkg/grid"
	gridio "github.com/matzehuels/stackgrid/pkg/io"
)

// checkCommand creates the check command.
func (c *CLI) checkCommand() *cobra.Command {
	var f gridFlags
	cmd := &cobra.Command{
		Use:   "check [layout.json]",
		Short: "Validate a layout and report collisions",
		Long: `Validate a layout against the grid options.

Reports items that break the layout rules (empty or duplicate ids, sizes
below 1x1, items wider than the grid), overlapping pairs, and whether the
layout is already compacted. Exits non-zero when the layout is invalid or
has overlaps.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.options(cmd, &f)
			if err != nil {
				return err
			}
			input := inputArg(args)
			l, err := gridio.ImportLayout(input)
			if err != nil {
				return err
			}
			if err := grid.Validate(l, opts.Cols); err != nil {
				printError("%s", errors.UserMessage(err))
				return err
			}

			printKeyValue("Items", fmt.Sprint(len(l)))
			printKeyValue("Rows", fmt.Sprint(grid.Bottom(l)))
			printKeyValue("Height", fmt.Sprintf("%gpx", grid.ContainerHeight(opts.Geometry(), l)))
			if statics := grid.GetStatics(l); len(statics) > 0 {
				printKeyValue("Static", strings.Join(grid.IDs(statics), ", "))
			}

			overlaps := grid.Overlaps(l)
			for _, p := range overlaps {
				printWarning("%s overlaps %s", p[0], p[1])
			}
			if len(overlaps) > 0 {
				return errors.New(errors.ErrCodeInvalidLayout, "%d overlapping pairs", len(overlaps))
			}

			ct := opts.EffectiveCompactType()
			if ct != grid.None && !grid.Equal(l, grid.Compact(l, ct, opts.Cols, opts.AllowOverlap)) {
				printInfo("Layout has gaps along the %s axis", ct)
				printNextStep("Compact", "stackgrid compact "+input)
				return nil
			}
			printSuccess("Layout is valid")
			return nil
		},
	}
	addGridFlags(cmd, &f)
	return cmd
}
