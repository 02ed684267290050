package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stackgrid/pkg/errors"
	"github.com/matzehuels/stackgrid/pkg/grid"
	gridio "github.com/matzehuels/stackgrid/pkg/io"
	"github.com/matzehuels/stackgrid/pkg/session"
)

// Editor styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)

	cellEmptyStyle       = lipgloss.NewStyle().Foreground(colorDim)
	cellItemStyle        = lipgloss.NewStyle().Foreground(colorWhite).Background(lipgloss.Color("238"))
	cellSelectedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(colorCyan).Bold(true)
	cellStaticStyle      = lipgloss.NewStyle().Foreground(colorWhite).Background(colorRed)
	cellPlaceholderStyle = lipgloss.NewStyle().Foreground(colorYellow)
)

// cellWidth is the number of terminal columns drawn per grid column.
const cellWidth = 3

// editMode selects what the arrow keys do.
type editMode int

const (
	modeMove editMode = iota
	modeResize
)

func (m editMode) String() string {
	if m == modeResize {
		return "resize"
	}
	return "move"
}

// =============================================================================
// EditorModel - Interactive layout editing
// =============================================================================

// EditorModel is the bubbletea model of the layout editor. Arrow keys start
// a drag or resize of the selected item and step it one cell; enter commits
// the gesture and esc puts the item back where it started.
type EditorModel struct {
	ctx  context.Context
	sess *session.Session

	Selected string
	Mode     editMode
	Saved    bool
	Status   string
	Err      string

	added int
}

// NewEditorModel creates an editor over sess with the first item selected.
func NewEditorModel(ctx context.Context, sess *session.Session) EditorModel {
	m := EditorModel{ctx: ctx, sess: sess}
	if ids := m.order(); len(ids) > 0 {
		m.Selected = ids[0]
	}
	return m
}

func (m EditorModel) Init() tea.Cmd {
	return nil
}

func (m EditorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	m.Err = ""
	var err error

	switch key.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "q":
		if _, _, active := m.sess.Gesture(); active {
			err = m.commit()
		}
		if err == nil {
			m.Saved = true
			return m, tea.Quit
		}
	case "tab", "n":
		m.cycle(1)
	case "shift+tab", "p":
		m.cycle(-1)
	case "m":
		if _, _, active := m.sess.Gesture(); active {
			err = m.commit()
		}
		if m.Mode == modeMove {
			m.Mode = modeResize
		} else {
			m.Mode = modeMove
		}
	case "up", "k":
		err = m.step(0, -1)
	case "down", "j":
		err = m.step(0, 1)
	case "left", "h":
		err = m.step(-1, 0)
	case "right", "l":
		err = m.step(1, 0)
	case "enter", " ":
		err = m.commit()
	case "esc":
		err = m.cancel()
	case "a":
		err = m.add()
	case "x", "delete":
		err = m.remove()
	}

	if err != nil {
		m.Err = errors.UserMessage(err)
	}
	return m, nil
}

// step moves or resizes the selected item by one cell, starting a gesture
// if none is active.
func (m *EditorModel) step(dx, dy int) error {
	if m.Selected == "" {
		return nil
	}
	kind, _, active := m.sess.Gesture()
	want := session.GestureDrag
	if m.Mode == modeResize {
		want = session.GestureResize
	}
	if active && kind != want {
		if err := m.commit(); err != nil {
			return err
		}
		active = false
	}
	if !active {
		var err error
		if want == session.GestureDrag {
			_, err = m.sess.DragStart(m.ctx, m.Selected)
		} else {
			_, err = m.sess.ResizeStart(m.ctx, m.Selected)
		}
		if err != nil {
			return err
		}
	}

	it, ok := m.sess.Item(m.Selected)
	if !ok {
		return errors.New(errors.ErrCodeItemNotFound, "item %q not found", m.Selected)
	}
	if want == session.GestureDrag {
		x, y := it.X+dx, it.Y+dy
		if ph, ok := m.sess.Placeholder(); ok {
			x, y = ph.X+dx, ph.Y+dy
		}
		_, err := m.sess.Drag(m.ctx, m.Selected, max(x, 0), max(y, 0))
		return err
	}
	_, err := m.sess.Resize(m.ctx, m.Selected, max(it.W+dx, 1), max(it.H+dy, 1), string(grid.HandleSE))
	return err
}

// commit ends the active gesture at the placeholder.
func (m *EditorModel) commit() error {
	kind, id, active := m.sess.Gesture()
	if !active {
		return nil
	}
	var err error
	switch kind {
	case session.GestureDrag:
		ph, ok := m.sess.Placeholder()
		if !ok {
			it, _ := m.sess.Item(id)
			ph = session.Rect{X: it.X, Y: it.Y}
		}
		_, err = m.sess.DragStop(m.ctx, id, ph.X, ph.Y)
	case session.GestureResize:
		_, err = m.sess.ResizeStop(m.ctx, id)
	}
	if err == nil {
		m.Status = fmt.Sprintf("%s %s", kind, id)
	}
	return err
}

// cancel returns the item to where the gesture started and ends it.
func (m *EditorModel) cancel() error {
	kind, id, active := m.sess.Gesture()
	if !active {
		return nil
	}
	old, _ := m.sess.Origin()
	var err error
	switch kind {
	case session.GestureDrag:
		_, err = m.sess.DragStop(m.ctx, id, old.X, old.Y)
	case session.GestureResize:
		if _, err = m.sess.Resize(m.ctx, id, old.W, old.H, string(grid.HandleSE)); err == nil {
			_, err = m.sess.ResizeStop(m.ctx, id)
		}
	}
	if err == nil {
		m.Status = "cancelled"
	}
	return err
}

// add inserts a 1x1 item below the content and selects it.
func (m *EditorModel) add() error {
	if err := m.commit(); err != nil {
		return err
	}
	var id string
	for {
		m.added++
		id = "item-" + strconv.Itoa(m.added)
		if _, exists := m.sess.Item(id); !exists {
			break
		}
	}
	if _, err := m.sess.Insert(m.ctx, grid.Item{I: id, Y: grid.Bottom(m.sess.Layout()), W: 1, H: 1}); err != nil {
		return err
	}
	m.Selected = id
	m.Status = "added " + id
	return nil
}

// remove deletes the selected item and selects its neighbour.
func (m *EditorModel) remove() error {
	if m.Selected == "" {
		return nil
	}
	if err := m.commit(); err != nil {
		return err
	}
	id := m.Selected
	m.cycle(1)
	if _, err := m.sess.Remove(m.ctx, id); err != nil {
		return err
	}
	if m.Selected == id {
		m.Selected = ""
	}
	m.Status = "removed " + id
	return nil
}

// cycle moves the selection through the items in reading order. A gesture
// in progress is committed first.
func (m *EditorModel) cycle(dir int) {
	if _, _, active := m.sess.Gesture(); active {
		if err := m.commit(); err != nil {
			m.Err = errors.UserMessage(err)
			return
		}
	}
	ids := m.order()
	if len(ids) == 0 {
		m.Selected = ""
		return
	}
	i := 0
	for j, id := range ids {
		if id == m.Selected {
			i = (j + dir + len(ids)) % len(ids)
			break
		}
	}
	m.Selected = ids[i]
}

// order returns the item ids in reading order.
func (m EditorModel) order() []string {
	return grid.IDs(grid.SortLayoutItems(m.sess.Layout(), grid.Vertical))
}

func (m EditorModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Edit Layout"))
	b.WriteString("  ")
	b.WriteString(listSelectedStyle.Render(m.Mode.String()))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("tab select  ←↑↓→ step  m mode  ⏎ commit  esc cancel  a add  x remove  q save+quit  ctrl+c discard"))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, m.renderGrid(), "  ", m.renderItems()))
	b.WriteString("\n\n")

	opts := m.sess.Options()
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  %d cols  %gpx high", opts.Cols, m.sess.ContainerHeight())))
	if m.Status != "" {
		b.WriteString("  ")
		b.WriteString(listNormalStyle.Render(m.Status))
	}
	if m.Err != "" {
		b.WriteString("  ")
		b.WriteString(styleIconError.Render(m.Err))
	}
	b.WriteString("\n")
	return b.String()
}

// renderGrid draws the layout as a character grid with one cell per grid
// unit and the active placeholder outlined under the items.
func (m EditorModel) renderGrid() string {
	l := m.sess.Layout()
	cols := m.sess.Options().Cols
	ph, hasPh := m.sess.Placeholder()
	rows := grid.Bottom(l) + 1
	if hasPh {
		rows = max(rows, ph.Y+ph.H)
	}

	owner := make([][]int, rows)
	for y := range owner {
		owner[y] = make([]int, cols)
		for x := range owner[y] {
			owner[y][x] = -1
		}
	}
	for idx, it := range l {
		for y := it.Y; y < it.Bottom() && y < rows; y++ {
			for x := it.X; x < it.Right() && x < cols; x++ {
				owner[y][x] = idx
			}
		}
	}

	var b strings.Builder
	for y := range rows {
		for x := range cols {
			idx := owner[y][x]
			if idx < 0 {
				if hasPh && x >= ph.X && x < ph.X+ph.W && y >= ph.Y && y < ph.Y+ph.H {
					b.WriteString(cellPlaceholderStyle.Render(strings.Repeat("░", cellWidth)))
				} else {
					b.WriteString(cellEmptyStyle.Render(" · "))
				}
				continue
			}
			it := l[idx]
			text := strings.Repeat(" ", cellWidth)
			if x == it.X && y == it.Y {
				text = cellLabel(it.I)
			}
			style := cellItemStyle
			switch {
			case it.I == m.Selected:
				style = cellSelectedStyle
			case it.Static:
				style = cellStaticStyle
			}
			b.WriteString(style.Render(text))
		}
		if y < rows-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// renderItems lists the items with their rectangles.
func (m EditorModel) renderItems() string {
	l := grid.SortLayoutItems(m.sess.Layout(), grid.Vertical)
	rows := make([][]string, 0, len(l))
	for _, it := range l {
		cursor := "  "
		if it.I == m.Selected {
			cursor = "▸ "
		}
		flag := ""
		if it.Static {
			flag = "static"
		}
		rows = append(rows, []string{cursor, it.I, strconv.Itoa(it.X), strconv.Itoa(it.Y), strconv.Itoa(it.W), strconv.Itoa(it.H), flag})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Item", "X", "Y", "W", "H", "").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if row < len(l) && l[row].I == m.Selected {
				return listSelectedStyle
			}
			return listNormalStyle
		})
	return t.Render()
}

// cellLabel fits id into one cell.
func cellLabel(id string) string {
	r := []rune(id)
	if len(r) > cellWidth {
		r = r[:cellWidth]
	}
	return fmt.Sprintf("%-*s", cellWidth, string(r))
}

// =============================================================================
// Command
// =============================================================================

// editCommand creates the edit command.
func (c *CLI) editCommand() *cobra.Command {
	var (
		f      gridFlags
		output string
	)
	cmd := &cobra.Command{
		Use:   "edit <layout.json>",
		Short: "Edit a layout interactively",
		Long: `Open a layout in an interactive terminal editor.

Select an item with tab, then use the arrow keys to drag it (or resize it in
resize mode, toggled with m). Other items make room exactly as they would in
the browser. Quit with q to save the result to the input file, or to
--output when given; ctrl+c discards the changes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			path := args[0]
			if path == gridio.Stdio {
				return errors.New(errors.ErrCodeInvalidPath, "edit needs a layout file, not stdin")
			}
			opts, err := c.options(cmd, &f)
			if err != nil {
				return err
			}

			l, err := gridio.ImportLayout(path)
			if err != nil {
				if !errors.Is(err, errors.ErrCodeFileNotFound) {
					return err
				}
				printInfo("Creating %s", path)
				l = grid.Layout{}
			}
			sess, err := session.New(l, nil, opts, session.WithLogger(loggerFromContext(ctx)))
			if err != nil {
				return err
			}

			p := tea.NewProgram(NewEditorModel(ctx, sess), tea.WithContext(ctx), tea.WithOutput(os.Stderr))
			finalModel, err := p.Run()
			if err != nil {
				return err
			}
			fm, ok := finalModel.(EditorModel)
			if !ok || !fm.Saved {
				printDetail("Changes discarded")
				return nil
			}

			dest := path
			if output != "" {
				dest = output
			}
			if err := gridio.ExportLayout(sess.Layout(), dest); err != nil {
				return err
			}
			printSuccess("Layout saved")
			printFile(dest)
			return nil
		},
	}
	addGridFlags(cmd, &f)
	cmd.Flags().StringVarP(&output, "output", "o", "", "save to this file instead of the input")
	return cmd
}
