package proto

import (
	"fmt"
	"sort"
)

// Canvas coordinate limits. Elements may start off-canvas (scrolling content
// is placed by the composer), but not absurdly far off.
const maxCoord = 4096

// Point is a logical canvas position.
type Point struct {
	X, Y int16
}

// Size is a width/height pair in pixels.
type Size struct {
	W, H uint16
}

// Color is a 24-bit RGB color.
type Color struct {
	R, G, B uint8
}

// ParseColor parses a 6-nibble hex string such as "ffcc00".
func ParseColor(s string) (Color, error) {
	if len(s) != 6 {
		return Color{}, schemaErrf("color", "%q is not a 6-digit hex color", s)
	}
	var v [3]uint8
	for i := 0; i < 3; i++ {
		hi, ok1 := hexNibble(s[i*2])
		lo, ok2 := hexNibble(s[i*2+1])
		if !ok1 || !ok2 {
			return Color{}, schemaErrf("color", "%q is not a 6-digit hex color", s)
		}
		v[i] = hi<<4 | lo
	}
	return Color{R: v[0], G: v[1], B: v[2]}, nil
}

func hexNibble(c byte) (uint8, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// Alignment of text relative to its anchor point.
type Alignment uint8

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
)

// FontFamily selects one of the built-in typefaces.
type FontFamily uint8

const (
	FontRegular FontFamily = iota
	FontBold
	FontMono
)

// Font pairs a family with a point size.
type Font struct {
	Family FontFamily
	Size   uint8
}

// Font size limits supported by the rasterizer.
const (
	MinFontSize = 6
	MaxFontSize = 32
)

// TextStyle is a named text appearance referenced by Text elements.
type TextStyle struct {
	Color         Color
	Background    *Color
	Font          Font
	Underline     bool
	Strikethrough bool
}

// CornerRadii rounds the corners of a Rect element. Zero means square.
type CornerRadii struct {
	TopLeft     uint8
	TopRight    uint8
	BottomLeft  uint8
	BottomRight uint8
}

// Element is the closed set of drawable dashboard elements.
type Element interface {
	isElement()
}

// Text draws a string in a named style at Position.
type Text struct {
	Style    string
	Text     string
	Position Point
	Align    Alignment
}

// SpriteRef places a stored sprite by key. If Center is set the sprite is
// centered on that point instead of anchored at Position.
type SpriteRef struct {
	Name     string
	Position Point
	Center   *Point
}

// Line draws a straight line segment.
type Line struct {
	Start, End Point
	Color      Color
	Stroke     uint8
}

// Polyline draws connected line segments.
type Polyline struct {
	Points []Point
	Color  Color
	Stroke uint8
}

// Rect draws a rectangle, optionally filled and optionally rounded.
type Rect struct {
	TopLeft     Point
	Size        Size
	Fill        *Color
	StrokeColor *Color
	Stroke      uint8
	Corners     CornerRadii
}

func (Text) isElement()      {}
func (SpriteRef) isElement() {}
func (Line) isElement()      {}
func (Polyline) isElement()  {}
func (Rect) isElement()      {}

// Screen is one set of elements filling the whole canvas.
type Screen struct {
	Elements []Element
}

// Configuration is the full decoded content description. Only configurations
// with exactly one screen are accepted for now; the field stays a slice to
// keep the wire format stable when screen cycling lands.
type Configuration struct {
	Screens []Screen
	Styles  map[string]TextStyle
}

// SpriteKeys returns the sprite keys referenced by the configuration, in
// first-use order without duplicates.
func (c *Configuration) SpriteKeys() []string {
	var keys []string
	seen := make(map[string]bool)
	for _, screen := range c.Screens {
		for _, el := range screen.Elements {
			if ref, ok := el.(SpriteRef); ok && !seen[ref.Name] {
				seen[ref.Name] = true
				keys = append(keys, ref.Name)
			}
		}
	}
	return keys
}

// Validate enforces the schema contract on a structurally decoded
// configuration. Violations are *SchemaViolation.
func (c *Configuration) Validate() error {
	switch {
	case len(c.Screens) == 0:
		return schemaErrf("screens", "configuration must contain at least one screen")
	case len(c.Screens) > 1:
		return schemaErrf("screens", "only single-screen configurations are supported, got %d", len(c.Screens))
	}

	for name, style := range c.Styles {
		if name == "" {
			return schemaErrf("styles", "style with empty name")
		}
		if style.Font.Family > FontMono {
			return schemaErrf("styles", "style %q uses unknown font family %d", name, style.Font.Family)
		}
		if style.Font.Size < MinFontSize || style.Font.Size > MaxFontSize {
			return schemaErrf("styles", "style %q font size %d out of range %d..%d",
				name, style.Font.Size, MinFontSize, MaxFontSize)
		}
	}

	for i, el := range c.Screens[0].Elements {
		if err := validateElement(i, el, c.Styles); err != nil {
			return err
		}
	}
	return nil
}

func validateElement(i int, el Element, styles map[string]TextStyle) error {
	field := fmt.Sprintf("elements[%d]", i)
	switch e := el.(type) {
	case Text:
		if _, ok := styles[e.Style]; !ok {
			return schemaErrf(field, "text uses undefined style %q", e.Style)
		}
		if e.Align > AlignRight {
			return schemaErrf(field, "unknown alignment %d", e.Align)
		}
		return validatePoints(field, e.Position)
	case SpriteRef:
		if e.Name == "" {
			return schemaErrf(field, "sprite reference without a name")
		}
		if e.Center != nil {
			if err := validatePoints(field, *e.Center); err != nil {
				return err
			}
		}
		return validatePoints(field, e.Position)
	case Line:
		return validatePoints(field, e.Start, e.End)
	case Polyline:
		if len(e.Points) < 2 {
			return schemaErrf(field, "polyline needs at least 2 points, got %d", len(e.Points))
		}
		return validatePoints(field, e.Points...)
	case Rect:
		if e.Size.W == 0 || e.Size.H == 0 {
			return schemaErrf(field, "rectangle with empty size %d×%d", e.Size.W, e.Size.H)
		}
		return validatePoints(field, e.TopLeft)
	default:
		return schemaErrf(field, "unknown element %T", el)
	}
}

func validatePoints(field string, points ...Point) error {
	for _, p := range points {
		if p.X < -maxCoord || p.X > maxCoord || p.Y < -maxCoord || p.Y > maxCoord {
			return schemaErrf(field, "point (%d,%d) outside ±%d", p.X, p.Y, maxCoord)
		}
	}
	return nil
}

// Element kind tags on the wire.
const (
	elemText     = 0x01
	elemSprite   = 0x02
	elemLine     = 0x03
	elemPolyline = 0x04
	elemRect     = 0x05
)

func decodeConfiguration(r *reader) (*Configuration, error) {
	screenCount, err := r.u8()
	if err != nil {
		return nil, err
	}

	config := &Configuration{
		Screens: make([]Screen, 0, screenCount),
		Styles:  make(map[string]TextStyle),
	}
	for i := 0; i < int(screenCount); i++ {
		screen, err := decodeScreen(r)
		if err != nil {
			return nil, err
		}
		config.Screens = append(config.Screens, *screen)
	}

	styleCount, err := r.u8()
	if err != nil {
		return nil, err
	}
	for i := 0; i < int(styleCount); i++ {
		name, err := r.str()
		if err != nil {
			return nil, err
		}
		style, err := decodeStyle(r)
		if err != nil {
			return nil, err
		}
		if _, dup := config.Styles[name]; dup {
			return nil, schemaErrf("styles", "style %q defined twice", name)
		}
		config.Styles[name] = *style
	}
	return config, nil
}

func decodeScreen(r *reader) (*Screen, error) {
	count, err := r.u16()
	if err != nil {
		return nil, err
	}
	screen := &Screen{Elements: make([]Element, 0, count)}
	for i := 0; i < int(count); i++ {
		el, err := decodeElement(r)
		if err != nil {
			return nil, err
		}
		screen.Elements = append(screen.Elements, el)
	}
	return screen, nil
}

func decodeElement(r *reader) (Element, error) {
	kind, err := r.u8()
	if err != nil {
		return nil, err
	}
	switch kind {
	case elemText:
		style, err := r.str()
		if err != nil {
			return nil, err
		}
		text, err := r.text()
		if err != nil {
			return nil, err
		}
		pos, err := decodePoint(r)
		if err != nil {
			return nil, err
		}
		align, err := r.u8()
		if err != nil {
			return nil, err
		}
		return Text{Style: style, Text: text, Position: pos, Align: Alignment(align)}, nil

	case elemSprite:
		name, err := r.str()
		if err != nil {
			return nil, err
		}
		pos, err := decodePoint(r)
		if err != nil {
			return nil, err
		}
		hasCenter, err := r.bool()
		if err != nil {
			return nil, err
		}
		ref := SpriteRef{Name: name, Position: pos}
		if hasCenter {
			center, err := decodePoint(r)
			if err != nil {
				return nil, err
			}
			ref.Center = &center
		}
		return ref, nil

	case elemLine:
		start, err := decodePoint(r)
		if err != nil {
			return nil, err
		}
		end, err := decodePoint(r)
		if err != nil {
			return nil, err
		}
		color, err := decodeColor(r)
		if err != nil {
			return nil, err
		}
		stroke, err := r.u8()
		if err != nil {
			return nil, err
		}
		return Line{Start: start, End: end, Color: color, Stroke: stroke}, nil

	case elemPolyline:
		count, err := r.u16()
		if err != nil {
			return nil, err
		}
		points := make([]Point, 0, count)
		for i := 0; i < int(count); i++ {
			p, err := decodePoint(r)
			if err != nil {
				return nil, err
			}
			points = append(points, p)
		}
		color, err := decodeColor(r)
		if err != nil {
			return nil, err
		}
		stroke, err := r.u8()
		if err != nil {
			return nil, err
		}
		return Polyline{Points: points, Color: color, Stroke: stroke}, nil

	case elemRect:
		topLeft, err := decodePoint(r)
		if err != nil {
			return nil, err
		}
		w, err := r.u16()
		if err != nil {
			return nil, err
		}
		h, err := r.u16()
		if err != nil {
			return nil, err
		}
		rect := Rect{TopLeft: topLeft, Size: Size{W: w, H: h}}
		hasFill, err := r.bool()
		if err != nil {
			return nil, err
		}
		if hasFill {
			fill, err := decodeColor(r)
			if err != nil {
				return nil, err
			}
			rect.Fill = &fill
		}
		hasStroke, err := r.bool()
		if err != nil {
			return nil, err
		}
		if hasStroke {
			stroke, err := decodeColor(r)
			if err != nil {
				return nil, err
			}
			rect.StrokeColor = &stroke
		}
		if rect.Stroke, err = r.u8(); err != nil {
			return nil, err
		}
		var radii [4]uint8
		for i := range radii {
			if radii[i], err = r.u8(); err != nil {
				return nil, err
			}
		}
		rect.Corners = CornerRadii{
			TopLeft:     radii[0],
			TopRight:    radii[1],
			BottomLeft:  radii[2],
			BottomRight: radii[3],
		}
		return rect, nil

	default:
		return nil, schemaErrf("elements", "unknown element kind %#02x", kind)
	}
}

func decodeStyle(r *reader) (*TextStyle, error) {
	color, err := decodeColor(r)
	if err != nil {
		return nil, err
	}
	style := &TextStyle{Color: color}

	hasBackground, err := r.bool()
	if err != nil {
		return nil, err
	}
	if hasBackground {
		bg, err := decodeColor(r)
		if err != nil {
			return nil, err
		}
		style.Background = &bg
	}

	family, err := r.u8()
	if err != nil {
		return nil, err
	}
	size, err := r.u8()
	if err != nil {
		return nil, err
	}
	style.Font = Font{Family: FontFamily(family), Size: size}

	flags, err := r.u8()
	if err != nil {
		return nil, err
	}
	if flags&^0x03 != 0 {
		return nil, schemaErrf("styles", "unknown style flags %#02x", flags)
	}
	style.Underline = flags&0x01 != 0
	style.Strikethrough = flags&0x02 != 0
	return style, nil
}

func decodePoint(r *reader) (Point, error) {
	x, err := r.i16()
	if err != nil {
		return Point{}, err
	}
	y, err := r.i16()
	if err != nil {
		return Point{}, err
	}
	return Point{X: x, Y: y}, nil
}

func decodeColor(r *reader) (Color, error) {
	b, err := r.bytes(3)
	if err != nil {
		return Color{}, err
	}
	return Color{R: b[0], G: b[1], B: b[2]}, nil
}

func encodeConfiguration(w *writer, c *Configuration) {
	w.u8(uint8(len(c.Screens)))
	for i := range c.Screens {
		encodeScreen(w, &c.Screens[i])
	}
	w.u8(uint8(len(c.Styles)))
	for _, name := range sortedStyleNames(c.Styles) {
		w.str(name)
		encodeStyle(w, c.Styles[name])
	}
}

func sortedStyleNames(styles map[string]TextStyle) []string {
	names := make([]string, 0, len(styles))
	for name := range styles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func encodeScreen(w *writer, s *Screen) {
	w.u16(uint16(len(s.Elements)))
	for _, el := range s.Elements {
		encodeElement(w, el)
	}
}

func encodeElement(w *writer, el Element) {
	switch e := el.(type) {
	case Text:
		w.u8(elemText)
		w.str(e.Style)
		w.text(e.Text)
		encodePoint(w, e.Position)
		w.u8(uint8(e.Align))
	case SpriteRef:
		w.u8(elemSprite)
		w.str(e.Name)
		encodePoint(w, e.Position)
		w.bool(e.Center != nil)
		if e.Center != nil {
			encodePoint(w, *e.Center)
		}
	case Line:
		w.u8(elemLine)
		encodePoint(w, e.Start)
		encodePoint(w, e.End)
		encodeColor(w, e.Color)
		w.u8(e.Stroke)
	case Polyline:
		w.u8(elemPolyline)
		w.u16(uint16(len(e.Points)))
		for _, p := range e.Points {
			encodePoint(w, p)
		}
		encodeColor(w, e.Color)
		w.u8(e.Stroke)
	case Rect:
		w.u8(elemRect)
		encodePoint(w, e.TopLeft)
		w.u16(e.Size.W)
		w.u16(e.Size.H)
		w.bool(e.Fill != nil)
		if e.Fill != nil {
			encodeColor(w, *e.Fill)
		}
		w.bool(e.StrokeColor != nil)
		if e.StrokeColor != nil {
			encodeColor(w, *e.StrokeColor)
		}
		w.u8(e.Stroke)
		w.u8(e.Corners.TopLeft)
		w.u8(e.Corners.TopRight)
		w.u8(e.Corners.BottomLeft)
		w.u8(e.Corners.BottomRight)
	}
}

func encodeStyle(w *writer, s TextStyle) {
	encodeColor(w, s.Color)
	w.bool(s.Background != nil)
	if s.Background != nil {
		encodeColor(w, *s.Background)
	}
	w.u8(uint8(s.Font.Family))
	w.u8(s.Font.Size)
	var flags uint8
	if s.Underline {
		flags |= 0x01
	}
	if s.Strikethrough {
		flags |= 0x02
	}
	w.u8(flags)
}

func encodePoint(w *writer, p Point) {
	w.i16(p.X)
	w.i16(p.Y)
}

func encodeColor(w *writer, c Color) {
	w.buf = append(w.buf, c.R, c.G, c.B)
}
