package pixel

import (
	"image"
	"image/color"

	"github.com/BeatGlow/matrixwall/draw"
)

type Image interface {
	draw.Image

	// Clear the image.
	Clear()

	// Fill the image with a single color.
	Fill(color.Color)
}

// Buffer holds the pixel values and is a container that is used by the image
// formats in this package.
type Buffer struct {
	// Rect is the image bounding box.
	Rect image.Rectangle

	// Pix are the image pixels.
	Pix []byte

	// Stride is the Pix stride (in bytes) between vertically adjacent pixels.
	Stride int
}

func (p *Buffer) Bounds() image.Rectangle {
	return p.Rect
}

func (p *Buffer) Clear() {
	for i := range p.Pix {
		p.Pix[i] = 0x00
	}
}

func makeBuffer(w, h, stride, size int) Buffer {
	return Buffer{
		Rect:   image.Rect(0, 0, w, h),
		Pix:    make([]byte, size),
		Stride: stride,
	}
}

// RGBImage is a 24-bits per pixel 8-8-8 RGB image, the logical canvas format
// of the panel wall.
type RGBImage struct {
	Buffer
}

func NewRGBImage(w, h int) *RGBImage {
	return &RGBImage{
		Buffer: makeBuffer(w, h, w*3, w*3*h),
	}
}

func (p *RGBImage) ColorModel() color.Model {
	return RGBModel
}

func (p *RGBImage) PixOffset(x, y int) int {
	return y*p.Stride + x*3
}

func (p *RGBImage) At(x, y int) color.Color {
	if !(image.Point{X: x, Y: y}).In(p.Rect) {
		return color.Transparent
	}

	i := p.PixOffset(x, y)
	return RGB{R: p.Pix[i], G: p.Pix[i+1], B: p.Pix[i+2]}
}

// RGBAt is At without the color.Color boxing, for the render hot path.
func (p *RGBImage) RGBAt(x, y int) RGB {
	if !(image.Point{X: x, Y: y}).In(p.Rect) {
		return RGB{}
	}

	i := p.PixOffset(x, y)
	return RGB{R: p.Pix[i], G: p.Pix[i+1], B: p.Pix[i+2]}
}

func (p *RGBImage) Set(x, y int, c color.Color) {
	if !(image.Point{X: x, Y: y}).In(p.Rect) {
		return
	}

	v := rgbModel(c).(RGB)
	i := p.PixOffset(x, y)
	p.Pix[i] = v.R
	p.Pix[i+1] = v.G
	p.Pix[i+2] = v.B
}

// SetRGB is Set without the color.Color boxing, for the render hot path.
func (p *RGBImage) SetRGB(x, y int, v RGB) {
	if !(image.Point{X: x, Y: y}).In(p.Rect) {
		return
	}

	i := p.PixOffset(x, y)
	p.Pix[i] = v.R
	p.Pix[i+1] = v.G
	p.Pix[i+2] = v.B
}

func (p *RGBImage) Fill(c color.Color) {
	v := rgbModel(c).(RGB)
	for i := 0; i < len(p.Pix); i += 3 {
		p.Pix[i] = v.R
		p.Pix[i+1] = v.G
		p.Pix[i+2] = v.B
	}
}

// IndexedImage is an 8-bits per pixel palette image, the compact sprite frame
// format.
type IndexedImage struct {
	Buffer

	// Palette are the colors addressed by the pixel values.
	Palette []RGB
}

func NewIndexedImage(w, h int, palette []RGB) *IndexedImage {
	return &IndexedImage{
		Buffer:  makeBuffer(w, h, w, w*h),
		Palette: palette,
	}
}

func (p *IndexedImage) ColorModel() color.Model {
	return RGBModel
}

func (p *IndexedImage) PixOffset(x, y int) int {
	return y*p.Stride + x
}

func (p *IndexedImage) At(x, y int) color.Color {
	return p.RGBAt(x, y)
}

// RGBAt resolves the palette color at (x, y). Out-of-palette indices resolve
// to black.
func (p *IndexedImage) RGBAt(x, y int) RGB {
	if !(image.Point{X: x, Y: y}).In(p.Rect) {
		return RGB{}
	}

	i := int(p.Pix[p.PixOffset(x, y)])
	if i >= len(p.Palette) {
		return RGB{}
	}
	return p.Palette[i]
}

// SetIndex stores a raw palette index at (x, y).
func (p *IndexedImage) SetIndex(x, y int, index uint8) {
	if !(image.Point{X: x, Y: y}).In(p.Rect) {
		return
	}
	p.Pix[p.PixOffset(x, y)] = index
}

// Set stores the palette index whose color is nearest to c.
func (p *IndexedImage) Set(x, y int, c color.Color) {
	if !(image.Point{X: x, Y: y}).In(p.Rect) {
		return
	}
	p.Pix[p.PixOffset(x, y)] = p.index(rgbModel(c).(RGB))
}

func (p *IndexedImage) index(v RGB) uint8 {
	var (
		best     int
		bestDist = 1 << 30
	)
	for i, c := range p.Palette {
		dr := int(c.R) - int(v.R)
		dg := int(c.G) - int(v.G)
		db := int(c.B) - int(v.B)
		if d := dr*dr + dg*dg + db*db; d < bestDist {
			best, bestDist = i, d
		}
	}
	return uint8(best)
}

func (p *IndexedImage) Fill(c color.Color) {
	index := p.index(rgbModel(c).(RGB))
	for i := range p.Pix {
		p.Pix[i] = index
	}
}

// Interface checks.
var (
	_ Image = (*RGBImage)(nil)
	_ Image = (*IndexedImage)(nil)
)
