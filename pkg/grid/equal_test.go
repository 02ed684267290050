package grid

import (
	"strings"
	"testing"
)

func TestEqual(t *testing.T) {
	a := Layout{item("a", 0, 0, 1, 1), item("b", 1, 0, 2, 1)}

	moved := CloneLayout(a)
	moved[1].Moved = true

	reordered := Layout{a[1], a[0]}

	shifted := CloneLayout(a)
	shifted[0].Y = 1

	flagged := CloneLayout(a)
	flagged[0].IsDraggable = Bool(false)

	tests := []struct {
		name string
		x, y Layout
		want bool
	}{
		{"identical", a, CloneLayout(a), true},
		{"moved ignored", a, moved, true},
		{"order ignored", a, reordered, true},
		{"nil and empty", nil, Layout{}, true},
		{"position differs", a, shifted, false},
		{"override differs", a, flagged, false},
		{"missing item", a, a[:1], false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(tt.x, tt.y); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDiff(t *testing.T) {
	a := Layout{item("a", 0, 0, 1, 1)}
	if d := Diff(a, CloneLayout(a)); d != "" {
		t.Errorf("Diff of equal layouts = %q", d)
	}
	b := CloneLayout(a)
	b[0].X = 4
	if d := Diff(a, b); !strings.Contains(d, "X") {
		t.Errorf("Diff should mention the changed field, got:\n%s", d)
	}
}
