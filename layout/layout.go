// Package layout maps logical canvas coordinates onto the physical scan order
// of a serpentine chain of HUB75 panels.
//
// Panels are chained starting at the top-right of the wall. Even panel rows are
// scanned right-to-left; odd panel rows continue left-to-right with the panels
// mounted upside down. The mapping is a pure function of the wall geometry and
// is the single source of truth for wiring; rendering code must not re-derive
// panel order on its own.
package layout

import (
	"errors"
	"fmt"
	"image"
)

// ErrOutOfBounds is returned for coordinates outside the logical canvas.
var ErrOutOfBounds = errors.New("layout: coordinate out of canvas bounds")

// Topology describes a wall of identical panels.
type Topology struct {
	// Rows is the number of panel rows on the wall.
	Rows int

	// Cols is the number of panels per row.
	Cols int

	// PanelWidth is the width of a single panel in pixels.
	PanelWidth int

	// PanelHeight is the height of a single panel in pixels.
	PanelHeight int
}

// DefaultTopology is a single 64×32 panel.
var DefaultTopology = Topology{
	Rows:        1,
	Cols:        1,
	PanelWidth:  64,
	PanelHeight: 32,
}

// Validate checks that the topology describes at least one pixel.
func (t Topology) Validate() error {
	if t.Rows < 1 || t.Cols < 1 {
		return fmt.Errorf("layout: invalid panel grid %d×%d", t.Cols, t.Rows)
	}
	if t.PanelWidth < 1 || t.PanelHeight < 1 {
		return fmt.Errorf("layout: invalid panel size %d×%d", t.PanelWidth, t.PanelHeight)
	}
	return nil
}

// Width is the logical canvas width in pixels.
func (t Topology) Width() int { return t.Cols * t.PanelWidth }

// Height is the logical canvas height in pixels.
func (t Topology) Height() int { return t.Rows * t.PanelHeight }

// Bounds is the logical canvas bounding box.
func (t Topology) Bounds() image.Rectangle {
	return image.Rect(0, 0, t.Width(), t.Height())
}

// Pixels is the total pixel count of the wall.
func (t Topology) Pixels() int { return t.Width() * t.Height() }

// Offset maps a logical coordinate to its pixel offset in the physical scan
// buffer. The scan buffer is laid out panel by panel in chain order, each panel
// row-major in its own scan orientation.
//
// Coordinates outside the canvas return ErrOutOfBounds; they are never clamped.
func (t Topology) Offset(x, y int) (int, error) {
	if x < 0 || y < 0 || x >= t.Width() || y >= t.Height() {
		return 0, fmt.Errorf("layout: (%d,%d) outside %dx%d canvas: %w",
			x, y, t.Width(), t.Height(), ErrOutOfBounds)
	}

	var (
		pr = y / t.PanelHeight // panel row
		pc = x / t.PanelWidth  // panel column
		ox = x % t.PanelWidth
		oy = y % t.PanelHeight
	)

	// Chain position of the panel. The chain enters each even row at its
	// rightmost panel and each odd row at its leftmost panel.
	var chain int
	if pr%2 == 0 {
		chain = pr*t.Cols + (t.Cols - 1 - pc)
	} else {
		// Odd-row panels hang upside down: vertical scan direction flips.
		chain = pr*t.Cols + pc
		oy = t.PanelHeight - 1 - oy
	}

	return chain*t.PanelWidth*t.PanelHeight + oy*t.PanelWidth + ox, nil
}

// MustOffset is Offset for coordinates already known to be inside the canvas.
// It panics on out-of-bounds input and is intended for tests and generators.
func (t Topology) MustOffset(x, y int) int {
	off, err := t.Offset(x, y)
	if err != nil {
		panic(err)
	}
	return off
}
