package draw

import (
	"image"
	"image/color"
)

// CornerRadii holds the rounding radius of each rectangle corner, in pixels.
// A zero radius leaves the corner square.
type CornerRadii struct {
	TopLeft     int
	TopRight    int
	BottomLeft  int
	BottomRight int
}

// UniformRadii rounds all four corners with the same radius.
func UniformRadii(r int) CornerRadii {
	return CornerRadii{TopLeft: r, TopRight: r, BottomLeft: r, BottomRight: r}
}

// Line draws a single-pixel line between two points.
func Line(dst Image, a, b image.Point, c color.Color) {
	bresenham(dst, a.X, a.Y, b.X, b.Y, c)
}

// StrokeLine draws a line with the given stroke width. Widths above one are
// built from parallel single-pixel lines offset along the minor axis.
func StrokeLine(dst Image, a, b image.Point, stroke int, c color.Color) {
	if stroke < 1 {
		stroke = 1
	}

	// Offset along the axis the line varies least on, so the strokes touch.
	dx := b.X - a.X
	if dx < 0 {
		dx = -dx
	}
	dy := b.Y - a.Y
	if dy < 0 {
		dy = -dy
	}

	for i := 0; i < stroke; i++ {
		// alternate -0, +1, -1, +2, ...
		off := (i + 1) / 2
		if i%2 != 0 {
			off = -off
		}
		if dx >= dy {
			bresenham(dst, a.X, a.Y+off, b.X, b.Y+off, c)
		} else {
			bresenham(dst, a.X+off, a.Y, b.X+off, b.Y, c)
		}
	}
}

// Polyline draws connected line segments through points.
func Polyline(dst Image, points []image.Point, stroke int, c color.Color) {
	if len(points) == 1 {
		dst.Set(points[0].X, points[0].Y, c)
		return
	}
	for i := 1; i < len(points); i++ {
		StrokeLine(dst, points[i-1], points[i], stroke, c)
	}
}

// HorizontalLine draws a line between (x,y) and (x+w-1,y).
func HorizontalLine(dst Image, x, y, w int, c color.Color) {
	bresenham(dst, x, y, x+w-1, y, c)
}

// VerticalLine draws a line between (x,y) and (x,y+h-1).
func VerticalLine(dst Image, x, y, h int, c color.Color) {
	bresenham(dst, x, y, x, y+h-1, c)
}

// Rectangle draws a rectangle outline with the given stroke width. The stroke
// grows inward.
func Rectangle(dst Image, rect image.Rectangle, stroke int, c color.Color) {
	if stroke < 1 {
		stroke = 1
	}
	for i := 0; i < stroke; i++ {
		r := rect.Inset(i)
		if r.Empty() {
			return
		}
		HorizontalLine(dst, r.Min.X, r.Min.Y, r.Dx(), c)
		HorizontalLine(dst, r.Min.X, r.Max.Y-1, r.Dx(), c)
		VerticalLine(dst, r.Min.X, r.Min.Y, r.Dy(), c)
		VerticalLine(dst, r.Max.X-1, r.Min.Y, r.Dy(), c)
	}
}

// Box draws a filled rectangle.
func Box(dst Image, rect image.Rectangle, c color.Color) {
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		HorizontalLine(dst, rect.Min.X, y, rect.Dx(), c)
	}
}

// RoundedRectangle draws a rectangle outline with per-corner rounding.
func RoundedRectangle(dst Image, rect image.Rectangle, radii CornerRadii, stroke int, c color.Color) {
	if stroke < 1 {
		stroke = 1
	}
	var (
		x = rect.Min.X
		y = rect.Min.Y
		w = rect.Dx()
		h = rect.Dy()
	)
	clampRadii(&radii, w, h)
	for i := 0; i < stroke; i++ {
		HorizontalLine(dst, x+radii.TopLeft, y+i, w-radii.TopLeft-radii.TopRight, c)
		HorizontalLine(dst, x+radii.BottomLeft, y+h-1-i, w-radii.BottomLeft-radii.BottomRight, c)
		VerticalLine(dst, x+i, y+radii.TopLeft, h-radii.TopLeft-radii.BottomLeft, c)
		VerticalLine(dst, x+w-1-i, y+radii.TopRight, h-radii.TopRight-radii.BottomRight, c)
	}
	if r := radii.TopLeft; r > 0 {
		roundedCorner(dst, x+r, y+r, r, 1, c)
	}
	if r := radii.TopRight; r > 0 {
		roundedCorner(dst, x+w-r-1, y+r, r, 2, c)
	}
	if r := radii.BottomRight; r > 0 {
		roundedCorner(dst, x+w-r-1, y+h-r-1, r, 4, c)
	}
	if r := radii.BottomLeft; r > 0 {
		roundedCorner(dst, x+r, y+h-r-1, r, 8, c)
	}
}

// RoundedBox draws a filled rectangle with per-corner rounding.
func RoundedBox(dst Image, rect image.Rectangle, radii CornerRadii, c color.Color) {
	var (
		x = rect.Min.X
		y = rect.Min.Y
		w = rect.Dx()
		h = rect.Dy()
	)
	clampRadii(&radii, w, h)
	for row := 0; row < h; row++ {
		left, right := 0, 0
		switch {
		case row < radii.TopLeft:
			left = radii.TopLeft - cornerSpan(radii.TopLeft, radii.TopLeft-1-row)
		case row >= h-radii.BottomLeft:
			left = radii.BottomLeft - cornerSpan(radii.BottomLeft, row-(h-radii.BottomLeft))
		}
		switch {
		case row < radii.TopRight:
			right = radii.TopRight - cornerSpan(radii.TopRight, radii.TopRight-1-row)
		case row >= h-radii.BottomRight:
			right = radii.BottomRight - cornerSpan(radii.BottomRight, row-(h-radii.BottomRight))
		}
		HorizontalLine(dst, x+left, y+row, w-left-right, c)
	}
}

// cornerSpan is the half-width of a radius-r circle at dy rows from its
// center row.
func cornerSpan(r, dy int) int {
	if dy >= r {
		return 0
	}
	for x := r; x >= 0; x-- {
		if x*x+dy*dy <= r*r {
			return x
		}
	}
	return 0
}

func clampRadii(radii *CornerRadii, w, h int) {
	max := w
	if h < max {
		max = h
	}
	max /= 2
	if radii.TopLeft > max {
		radii.TopLeft = max
	}
	if radii.TopRight > max {
		radii.TopRight = max
	}
	if radii.BottomLeft > max {
		radii.BottomLeft = max
	}
	if radii.BottomRight > max {
		radii.BottomRight = max
	}
	if radii.TopLeft < 0 {
		radii.TopLeft = 0
	}
	if radii.TopRight < 0 {
		radii.TopRight = 0
	}
	if radii.BottomLeft < 0 {
		radii.BottomLeft = 0
	}
	if radii.BottomRight < 0 {
		radii.BottomRight = 0
	}
}

func roundedCorner(dst Image, x0, y0, radius, quadrant int, c color.Color) {
	var (
		f    = 1 - radius
		ddFx = 1
		ddFy = -2 * radius
		x    = 0
		y    = radius
	)
	for x < y {
		if f >= 0 {
			y--
			ddFy += 2
			f += ddFy
		}

		x++
		ddFx += 2
		f += ddFx

		if quadrant&4 != 0 {
			dst.Set(x0+x, y0+y, c)
			dst.Set(x0+y, y0+x, c)
		}
		if quadrant&2 != 0 {
			dst.Set(x0+x, y0-y, c)
			dst.Set(x0+y, y0-x, c)
		}
		if quadrant&8 != 0 {
			dst.Set(x0-y, y0+x, c)
			dst.Set(x0-x, y0+y, c)
		}
		if quadrant&1 != 0 {
			dst.Set(x0-y, y0-x, c)
			dst.Set(x0-x, y0-y, c)
		}
	}
}

// Generalized with integer
func bresenham(dst Image, x1, y1, x2, y2 int, c color.Color) {
	var dx, dy, e, slope int

	// Because drawing p1 -> p2 is equivalent to draw p2 -> p1,
	// I sort points in x-axis order to handle only half of possible cases.
	if x1 > x2 {
		x1, y1, x2, y2 = x2, y2, x1, y1
	}

	dx, dy = x2-x1, y2-y1
	// Because point is x-axis ordered, dx cannot be negative
	if dy < 0 {
		dy = -dy
	}

	switch {

	// Is line a point ?
	case x1 == x2 && y1 == y2:
		dst.Set(x1, y1, c)

	// Is line an horizontal ?
	case y1 == y2:
		for ; dx != 0; dx-- {
			dst.Set(x1, y1, c)
			x1++
		}
		dst.Set(x1, y1, c)

	// Is line a vertical ?
	case x1 == x2:
		if y1 > y2 {
			y1, y2 = y2, y1
		}
		for ; dy != 0; dy-- {
			dst.Set(x1, y1, c)
			y1++
		}
		dst.Set(x1, y1, c)

	// Is line a diagonal ?
	case dx == dy:
		if y1 < y2 {
			for ; dx != 0; dx-- {
				dst.Set(x1, y1, c)
				x1++
				y1++
			}
		} else {
			for ; dx != 0; dx-- {
				dst.Set(x1, y1, c)
				x1++
				y1--
			}
		}
		dst.Set(x1, y1, c)

	// wider than high ?
	case dx > dy:
		if y1 < y2 {
			dy, e, slope = 2*dy, dx, 2*dx
			for ; dx != 0; dx-- {
				dst.Set(x1, y1, c)
				x1++
				e -= dy
				if e < 0 {
					y1++
					e += slope
				}
			}
		} else {
			dy, e, slope = 2*dy, dx, 2*dx
			for ; dx != 0; dx-- {
				dst.Set(x1, y1, c)
				x1++
				e -= dy
				if e < 0 {
					y1--
					e += slope
				}
			}
		}
		dst.Set(x2, y2, c)

	// higher than wide.
	default:
		if y1 < y2 {
			dx, e, slope = 2*dx, dy, 2*dy
			for ; dy != 0; dy-- {
				dst.Set(x1, y1, c)
				y1++
				e -= dx
				if e < 0 {
					x1++
					e += slope
				}
			}
		} else {
			dx, e, slope = 2*dx, dy, 2*dy
			for ; dy != 0; dy-- {
				dst.Set(x1, y1, c)
				y1--
				e -= dx
				if e < 0 {
					x1++
					e += slope
				}
			}
		}
		dst.Set(x2, y2, c)
	}
}
