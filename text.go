package matrixwall

import (
	"fmt"
	"image"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"

	"github.com/BeatGlow/matrixwall/draw"
	"github.com/BeatGlow/matrixwall/pixel"
	"github.com/BeatGlow/matrixwall/proto"
)

// fontCache lazily parses the built-in typefaces and caches one font.Face
// per (family, size) pair. Face lookups happen on the render path, so the
// cache holds the parsed fonts for the process lifetime.
type fontCache struct {
	mu    sync.Mutex
	fonts map[proto.FontFamily]*truetype.Font
	faces map[proto.Font]font.Face
}

func newFontCache() *fontCache {
	return &fontCache{
		fonts: make(map[proto.FontFamily]*truetype.Font),
		faces: make(map[proto.Font]font.Face),
	}
}

func (c *fontCache) face(f proto.Font) (font.Face, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if face, ok := c.faces[f]; ok {
		return face, nil
	}

	ttf, ok := c.fonts[f.Family]
	if !ok {
		var data []byte
		switch f.Family {
		case proto.FontRegular:
			data = goregular.TTF
		case proto.FontBold:
			data = gobold.TTF
		case proto.FontMono:
			data = gomono.TTF
		default:
			return nil, fmt.Errorf("matrixwall: unknown font family %d", f.Family)
		}
		var err error
		if ttf, err = truetype.Parse(data); err != nil {
			return nil, fmt.Errorf("matrixwall: parse font %d: %w", f.Family, err)
		}
		c.fonts[f.Family] = ttf
	}

	face := truetype.NewFace(ttf, &truetype.Options{
		Size:    float64(f.Size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	c.faces[f] = face
	return face, nil
}

// drawText rasterizes one text element. The anchor point is the baseline
// origin; alignment moves the string relative to it.
func (c *fontCache) drawText(dst *pixel.RGBImage, el proto.Text, style proto.TextStyle) error {
	face, err := c.face(style.Font)
	if err != nil {
		return err
	}

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(rgbColor(style.Color)),
		Face: face,
		Dot:  fixed.P(int(el.Position.X), int(el.Position.Y)),
	}

	width := d.MeasureString(el.Text)
	switch el.Align {
	case proto.AlignCenter:
		d.Dot.X -= width / 2
	case proto.AlignRight:
		d.Dot.X -= width
	}

	left := d.Dot.X.Floor()
	right := (d.Dot.X + width).Ceil()
	baseline := int(el.Position.Y)
	metrics := face.Metrics()

	if style.Background != nil {
		bg := image.Rect(left-1, baseline-metrics.Ascent.Ceil(), right+1, baseline+metrics.Descent.Ceil())
		draw.Box(dst, bg, rgbColor(*style.Background))
	}

	d.DrawString(el.Text)

	if style.Underline {
		draw.HorizontalLine(dst, left, baseline+1, right-left, rgbColor(style.Color))
	}
	if style.Strikethrough {
		mid := baseline - metrics.Ascent.Ceil()/3
		draw.HorizontalLine(dst, left, mid, right-left, rgbColor(style.Color))
	}
	return nil
}

func rgbColor(c proto.Color) pixel.RGB {
	return pixel.RGB{R: c.R, G: c.G, B: c.B}
}
