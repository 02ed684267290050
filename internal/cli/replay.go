package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stackgrid/pkg/errors"
	"github.com/matzehuels/stackgrid/pkg/grid"
	gridio "github.com/matzehuels/stackgrid/pkg/io"
	"github.com/matzehuels/stackgrid/pkg/pipeline"
	"github.com/matzehuels/stackgrid/pkg/session"
)

// script is a recorded sequence of interactions.
//
//	layout = "dashboard.json"
//	children = ["a", "b", "c"]
//
//	[grid]
//	cols = 6
//
//	[[step]]
//	op = "drag_start"
//	id = "a"
//
//	[[step]]
//	op = "drag_stop"
//	id = "a"
//	x = 2
//	y = 1
type script struct {
	Layout   string            `toml:"layout"`
	Children []string          `toml:"children"`
	Grid     *pipeline.Options `toml:"grid"`
	Steps    []step            `toml:"step"`

	dir string
}

// step is one interaction. Which fields apply depends on Op.
type step struct {
	Op     string   `toml:"op"`
	ID     string   `toml:"id"`
	X      int      `toml:"x"`
	Y      int      `toml:"y"`
	W      int      `toml:"w"`
	H      int      `toml:"h"`
	Top    float64  `toml:"top"`
	Left   float64  `toml:"left"`
	Handle string   `toml:"handle"`
	Keys   []string `toml:"keys"`
	Static bool     `toml:"static"`
}

// Step operations.
const (
	opDragStart   = "drag_start"
	opDrag        = "drag"
	opDragPx      = "drag_px"
	opDragStop    = "drag_stop"
	opResizeStart = "resize_start"
	opResize      = "resize"
	opResizeStop  = "resize_stop"
	opDragEnter   = "drag_enter"
	opDragLeave   = "drag_leave"
	opDropOver    = "drop_over"
	opDropLeave   = "drop_leave"
	opDrop        = "drop"
	opInsert      = "insert"
	opRemove      = "remove"
	opSetHeight   = "set_height"
	opSetDeclared = "set_declared"
)

// replayCommand creates the replay command.
func (c *CLI) replayCommand() *cobra.Command {
	var (
		output string
		trace  bool
	)
	cmd := &cobra.Command{
		Use:   "replay <script.toml>",
		Short: "Replay a recorded gesture script",
		Long: `Replay a TOML gesture script through an interactive grid session.

The script names a starting layout (relative paths are resolved against the
script's directory), an optional declared element set, optional [grid]
overrides of the configured options, and a list of [[step]] tables:

  drag_start, drag, drag_px, drag_stop        id, x, y / top, left
  resize_start, resize, resize_stop           id, w, h, handle
  drag_enter, drag_leave, drop_over, drop     top, left, w, h
  drop_leave, insert, remove                  id, x, y, w, h, static
  set_height, set_declared                    id, h / keys

A dropped item is inserted into the layout. The settled layout after the
last step is written to --output.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			sc, err := loadScript(args[0])
			if err != nil {
				return err
			}
			opts, err := sc.options(c.Config.Grid)
			if err != nil {
				return err
			}
			layout, err := sc.initialLayout()
			if err != nil {
				return err
			}

			var changes int
			sess, err := session.New(layout, sc.declarations(), opts,
				session.WithLogger(logger),
				session.WithOnLayoutChange(func(grid.Layout) { changes++ }),
			)
			if err != nil {
				return err
			}

			start := time.Now()
			if err := replay(ctx, sess, sc.Steps, logger, trace); err != nil {
				return err
			}
			final := sess.Layout()
			if err := gridio.ExportLayout(final, output); err != nil {
				return err
			}

			printSuccess("Replayed %d steps (%s)", len(sc.Steps), time.Since(start).Round(time.Millisecond))
			if output != gridio.Stdio {
				printFile(output)
			}
			printKeyValue("Items", fmt.Sprint(len(final)))
			printKeyValue("Changes", fmt.Sprint(changes))
			printKeyValue("Height", fmt.Sprintf("%gpx", sess.ContainerHeight()))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", gridio.Stdio, "output file (- for stdout)")
	cmd.Flags().BoolVar(&trace, "trace", false, "print the layout after every step")
	return cmd
}

// loadScript decodes the script at path. Unknown keys are rejected.
func loadScript(path string) (*script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "script %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read script %s", path)
	}
	sc, err := parseScript(string(data))
	if err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "script %s", path)
	}
	sc.dir = filepath.Dir(path)
	return sc, nil
}

func parseScript(text string) (*script, error) {
	var sc script
	md, err := toml.Decode(text, &sc)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown keys: %s", strings.Join(keys, ", "))
	}
	for i, st := range sc.Steps {
		if !validOp(st.Op) {
			return nil, errors.New(errors.ErrCodeInvalidInput, "step %d: unknown op %q", i+1, st.Op)
		}
	}
	return &sc, nil
}

// options merges the script's [grid] table over the configured options.
func (sc *script) options(defaults pipeline.Options) (pipeline.Options, error) {
	if sc.Grid == nil {
		return defaults.Clone(), nil
	}
	opts := *sc.Grid
	if err := mergo.Merge(&opts, defaults.Clone(), mergo.WithoutDereference); err != nil {
		return pipeline.Options{}, errors.Wrap(errors.ErrCodeInternal, err, "merge grid options")
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return pipeline.Options{}, err
	}
	return opts, nil
}

// initialLayout reads the starting layout. No layout starts empty.
func (sc *script) initialLayout() (grid.Layout, error) {
	if sc.Layout == "" {
		return grid.Layout{}, nil
	}
	path := sc.Layout
	if !filepath.IsAbs(path) {
		if err := errors.ValidatePath(path); err != nil {
			return nil, err
		}
		path = filepath.Join(sc.dir, path)
	}
	return gridio.ImportLayout(path)
}

// declarations returns the declared set, or nil to keep every layout item.
func (sc *script) declarations() []grid.Declaration {
	if sc.Children == nil {
		return nil
	}
	return grid.Keys(sc.Children...)
}

// replay runs steps in order and stops at the first error.
func replay(ctx context.Context, sess *session.Session, steps []step, logger *log.Logger, trace bool) error {
	for i, st := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := applyStep(ctx, sess, st); err != nil {
			code := errors.GetCode(err)
			if code == "" {
				code = errors.ErrCodeInternal
			}
			return errors.Wrap(code, err, "step %d (%s)", i+1, st.Op)
		}
		logger.Debug("step", "n", i+1, "op", st.Op, "id", st.ID)
		if trace {
			printDetail("%d %s %s", i+1, st.Op, describeLayout(sess.Layout()))
		}
	}
	return nil
}

func applyStep(ctx context.Context, sess *session.Session, st step) error {
	var err error
	switch st.Op {
	case opDragStart:
		_, err = sess.DragStart(ctx, st.ID)
	case opDrag:
		_, err = sess.Drag(ctx, st.ID, st.X, st.Y)
	case opDragPx:
		_, err = sess.DragPx(ctx, st.ID, st.Top, st.Left)
	case opDragStop:
		_, err = sess.DragStop(ctx, st.ID, st.X, st.Y)
	case opResizeStart:
		_, err = sess.ResizeStart(ctx, st.ID)
	case opResize:
		handle := st.Handle
		if handle == "" {
			handle = string(grid.HandleSE)
		}
		_, err = sess.Resize(ctx, st.ID, st.W, st.H, handle)
	case opResizeStop:
		_, err = sess.ResizeStop(ctx, st.ID)
	case opDragEnter:
		sess.DragEnter(ctx)
	case opDragLeave:
		_, err = sess.DragLeave(ctx)
	case opDropOver:
		_, err = sess.DropOver(ctx, st.Top, st.Left, st.patch())
	case opDropLeave:
		_, err = sess.DropLeave(ctx)
	case opDrop:
		var (
			it grid.Item
			ok bool
		)
		it, ok, err = sess.Drop(ctx)
		if err == nil && ok {
			if st.ID != "" {
				it.I = st.ID
			}
			_, err = sess.Insert(ctx, it)
		}
	case opInsert:
		_, err = sess.Insert(ctx, grid.Item{I: st.ID, X: st.X, Y: st.Y, W: max(st.W, 1), H: max(st.H, 1), Static: st.Static})
	case opRemove:
		_, err = sess.Remove(ctx, st.ID)
	case opSetHeight:
		_, err = sess.SetItemHeight(ctx, st.ID, st.H)
	case opSetDeclared:
		_, err = sess.SetDeclared(ctx, grid.Keys(st.Keys...))
	default:
		err = errors.New(errors.ErrCodeInvalidInput, "unknown op %q", st.Op)
	}
	return err
}

// patch returns the size override of a drop_over step.
func (st step) patch() *grid.ItemPatch {
	if st.W == 0 && st.H == 0 {
		return nil
	}
	p := &grid.ItemPatch{}
	if st.W > 0 {
		p.W = grid.Int(st.W)
	}
	if st.H > 0 {
		p.H = grid.Int(st.H)
	}
	return p
}

func validOp(op string) bool {
	switch op {
	case opDragStart, opDrag, opDragPx, opDragStop,
		opResizeStart, opResize, opResizeStop,
		opDragEnter, opDragLeave, opDropOver, opDropLeave, opDrop,
		opInsert, opRemove, opSetHeight, opSetDeclared:
		return true
	}
	return false
}

// describeLayout renders l as "a(0,0 2x1) b(2,0 1x1)" in reading order.
func describeLayout(l grid.Layout) string {
	parts := make([]string, 0, len(l))
	for _, it := range grid.SortLayoutItems(l, grid.Vertical) {
		parts = append(parts, fmt.Sprintf("%s(%d,%d %dx%d)", it.I, it.X, it.Y, it.W, it.H))
	}
	return strings.Join(parts, " ")
}
