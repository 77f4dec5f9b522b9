package pixel

import (
	"image"
	"image/color"
	"math/rand"
	"testing"
)

func TestRGBImage(t *testing.T) {
	testImage(t, func(size image.Point) Image {
		return NewRGBImage(size.X, size.Y)
	})
}

func TestIndexedImage(t *testing.T) {
	palette := make([]RGB, 0, 256)
	for r := 0; r < 8; r++ {
		for g := 0; g < 8; g++ {
			for b := 0; b < 4; b++ {
				palette = append(palette, RGB{
					R: uint8(r<<5 | r<<2 | r>>1),
					G: uint8(g<<5 | g<<2 | g>>1),
					B: uint8(b<<6 | b<<4 | b<<2 | b),
				})
			}
		}
	}
	testCases := []image.Point{
		{},
		image.Pt(1, 1),
		image.Pt(32, 32),
		image.Pt(64, 48),
	}
	for _, test := range testCases {
		t.Run(test.String(), func(it *testing.T) {
			i := NewIndexedImage(test.X, test.Y, palette)

			if v := i.Bounds().Size(); !v.Eq(test) {
				it.Errorf("expected image size %s, got %s", test, v)
			}

			it.Run("set-index", func(itt *testing.T) {
				for y := 0; y < test.Y; y++ {
					for x := 0; x < test.X; x++ {
						index := uint8(rand.Intn(len(palette)))
						i.SetIndex(x, y, index)
						if v := i.RGBAt(x, y); v != palette[index] {
							itt.Fatalf("pixel (%d,%d) is %#+v, expected %#+v", x, y, v, palette[index])
							return
						}
					}
				}
			})

			it.Run("set-exact-color", func(itt *testing.T) {
				for y := 0; y < test.Y; y++ {
					for x := 0; x < test.X; x++ {
						c := palette[rand.Intn(len(palette))]
						i.Set(x, y, c)
						if v := i.RGBAt(x, y); v != c {
							itt.Fatalf("pixel (%d,%d) is %#+v, expected %#+v", x, y, v, c)
							return
						}
					}
				}
			})

			it.Run("out-of-palette-index", func(itt *testing.T) {
				if test.X == 0 || test.Y == 0 {
					return
				}
				short := NewIndexedImage(test.X, test.Y, palette[:4])
				short.Pix[0] = 200
				if v := short.RGBAt(0, 0); v != (RGB{}) {
					itt.Fatalf("dangling palette index resolved to %#+v, expected black", v)
				}
			})
		})
	}
}

func testImage(t *testing.T, f func(image.Point) Image) {
	t.Helper()
	testCases := []image.Point{
		{},
		image.Pt(1, 1),
		image.Pt(2, 2),
		image.Pt(64, 32),
		image.Pt(192, 96),
	}
	for _, test := range testCases {
		t.Run(test.String(), func(it *testing.T) {
			i := f(test)

			if v := i.Bounds().Size(); !v.Eq(test) {
				it.Errorf("expected image size %s, got %s", test, v)
			}

			it.Run("in-bounds", func(itt *testing.T) {
				for y := 0; y < test.Y; y++ {
					for x := 0; x < test.X; x++ {
						c := testRandomColor()
						i.Set(x, y, c)
						if v := i.ColorModel().Convert(c); i.At(x, y) != v {
							itt.Fatalf("pixel (%d,%d) is %#+v, expected %#+v (%v)", x, y, i.At(x, y), v, c)
							return
						}
					}
				}
			})

			it.Run("out-bounds", func(itt *testing.T) {
				for y := -test.Y; y < test.Y*2; y++ {
					for x := -test.X; x < test.X*2; x++ {
						i.Set(x, y, testRandomColor())
						if x < 0 || y < 0 {
							if v := i.At(x, y); v != color.Transparent {
								itt.Fatalf("pixel (%d,%d) is %#+v, expected transparent", x, y, v)
								return
							}
						}
					}
				}
			})

			it.Run("fill", func(itt *testing.T) {
				c := testRandomColor()
				i.Fill(c)
				if test.X > 0 && test.Y > 0 {
					x := rand.Intn(test.X)
					y := rand.Intn(test.Y)
					if v := i.ColorModel().Convert(c); i.At(x, y) != v {
						itt.Fatalf("pixel (%d,%d) is %#+v, expected %#+v (%v)", x, y, i.At(x, y), v, c)
						return
					}
				}
			})

			it.Run("clear", func(itt *testing.T) {
				i.Clear()
				if test.X > 0 && test.Y > 0 {
					x := rand.Intn(test.X)
					y := rand.Intn(test.Y)
					if v := i.At(x, y); v != (RGB{}) {
						itt.Fatalf("pixel (%d,%d) is not black", x, y)
					}
				}
			})
		})
	}
}

func testRandomColor() color.Color {
	return color.RGBA{
		R: uint8(rand.Intn(255)),
		G: uint8(rand.Intn(255)),
		B: uint8(rand.Intn(255)),
		A: 0xFF,
	}
}
