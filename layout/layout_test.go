package layout

import (
	"errors"
	"testing"
)

func TestTopologyValidate(t *testing.T) {
	testCases := []struct {
		name string
		topo Topology
		ok   bool
	}{
		{"default", DefaultTopology, true},
		{"wall", Topology{Rows: 3, Cols: 2, PanelWidth: 64, PanelHeight: 32}, true},
		{"no-rows", Topology{Rows: 0, Cols: 2, PanelWidth: 64, PanelHeight: 32}, false},
		{"no-cols", Topology{Rows: 1, Cols: 0, PanelWidth: 64, PanelHeight: 32}, false},
		{"flat-panel", Topology{Rows: 1, Cols: 1, PanelWidth: 64, PanelHeight: 0}, false},
	}
	for _, test := range testCases {
		t.Run(test.name, func(it *testing.T) {
			if err := test.topo.Validate(); (err == nil) != test.ok {
				it.Errorf("Validate() = %v, expected ok=%v", err, test.ok)
			}
		})
	}
}

func TestOffsetSerpentine(t *testing.T) {
	// 2×2 grid of 32×32 panels, 64×64 logical canvas.
	topo := Topology{Rows: 2, Cols: 2, PanelWidth: 32, PanelHeight: 32}
	const panel = 32 * 32

	testCases := []struct {
		name string
		x, y int
		want int
	}{
		// Panel row 0 is scanned right-to-left: logical (0,0) lands on the
		// second panel of the chain, top-left corner.
		{"top-left", 0, 0, 1*panel + 0},
		// The top-right logical corner is the chain head.
		{"top-right", 63, 0, 0*panel + 31},
		{"row0-interior", 40, 5, 0*panel + 5*32 + 8},
		// Panel row 1 runs left-to-right with a vertical flip inside each panel.
		{"row1-left", 0, 32, 2*panel + 31*32},
		{"row1-right", 63, 32, 3*panel + 31*32 + 31},
		{"row1-bottom", 0, 63, 2*panel + 0},
		{"row1-interior", 33, 40, 3*panel + 23*32 + 1},
	}
	for _, test := range testCases {
		t.Run(test.name, func(it *testing.T) {
			got, err := topo.Offset(test.x, test.y)
			if err != nil {
				it.Fatalf("Offset(%d,%d) failed: %v", test.x, test.y, err)
			}
			if got != test.want {
				it.Errorf("Offset(%d,%d) = %d, expected %d", test.x, test.y, got, test.want)
			}
		})
	}
}

func TestOffsetTotal(t *testing.T) {
	// Every logical pixel maps to a distinct scan offset (the mapping is a
	// bijection onto [0, Pixels)).
	topo := Topology{Rows: 2, Cols: 3, PanelWidth: 16, PanelHeight: 8}
	seen := make(map[int]bool, topo.Pixels())
	for y := 0; y < topo.Height(); y++ {
		for x := 0; x < topo.Width(); x++ {
			off, err := topo.Offset(x, y)
			if err != nil {
				t.Fatalf("Offset(%d,%d) failed: %v", x, y, err)
			}
			if off < 0 || off >= topo.Pixels() {
				t.Fatalf("Offset(%d,%d) = %d outside scan buffer", x, y, off)
			}
			if seen[off] {
				t.Fatalf("Offset(%d,%d) = %d already used", x, y, off)
			}
			seen[off] = true
		}
	}
}

func TestOffsetOutOfBounds(t *testing.T) {
	topo := Topology{Rows: 2, Cols: 2, PanelWidth: 32, PanelHeight: 32}
	testCases := []struct{ x, y int }{
		{-1, 0}, {0, -1}, {64, 0}, {0, 64}, {64, 64}, {-100, 100},
	}
	for _, test := range testCases {
		if _, err := topo.Offset(test.x, test.y); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("Offset(%d,%d) = %v, expected ErrOutOfBounds", test.x, test.y, err)
		}
	}
}
