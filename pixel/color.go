package pixel

import (
	"image/color"
	"math"
)

// Models for the standard color types.
var (
	RGBModel color.Model = color.ModelFunc(rgbModel)
)

var (
	Black = RGB{}
	White = RGB{R: 0xff, G: 0xff, B: 0xff}
)

// RGB represents a 24-bit 8-8-8 RGB color, the native color of the panel scan
// buffer.
type RGB struct {
	R, G, B uint8
}

func (c RGB) RGBA() (r, g, b, a uint32) {
	r = uint32(c.R)
	r |= r << 8
	g = uint32(c.G)
	g |= g << 8
	b = uint32(c.B)
	b |= b << 8
	return r, g, b, 0xffff
}

func rgbModel(c color.Color) color.Color {
	if _, ok := c.(RGB); ok {
		return c
	}
	r, g, b, _ := c.RGBA()
	return RGB{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)}
}

// Scale applies a linear brightness factor in percent (0–100) to a single
// channel value. Zero stays zero and, unless brightness is zero, nonzero
// stays nonzero, so dimming never changes which pixels are lit.
func Scale(v uint8, brightness uint8) uint8 {
	if brightness >= 100 {
		return v
	}
	s := uint8(uint32(v) * uint32(brightness) / 100)
	if s == 0 && v > 0 && brightness > 0 {
		return 1
	}
	return s
}

// ScaleRGB applies a linear brightness factor in percent (0–100) to a color.
func ScaleRGB(c RGB, brightness uint8) RGB {
	return RGB{
		R: Scale(c.R, brightness),
		G: Scale(c.G, brightness),
		B: Scale(c.B, brightness),
	}
}

// gamma is the 2.2 response table used to linearize LED output. It maps a
// perceptual 8-bit value to the duty value the panel should receive.
var gamma [256]uint8

func init() {
	for i := range gamma {
		gamma[i] = uint8(math.Round(255 * math.Pow(float64(i)/255, 2.2)))
	}
}

// Gamma maps a perceptual channel value to the panel duty value.
func Gamma(v uint8) uint8 { return gamma[v] }

// GammaRGB applies the panel response curve to all channels of a color.
func GammaRGB(c RGB) RGB {
	return RGB{R: gamma[c.R], G: gamma[c.G], B: gamma[c.B]}
}
