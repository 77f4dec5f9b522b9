package proto

// Sprite pixel formats.
const (
	SpriteRGB     = 0x01 // 3 bytes per pixel, row-major
	SpriteIndexed = 0x02 // 1 byte per pixel into Palette
)

// Sprite dimension limits. Sprites larger than the biggest sensible wall
// are rejected at upload time rather than at render time.
const (
	MaxSpriteDim = 1024
	MinFrameTime = 20 // ms, 50 fps cap for animations
)

// Sprite is a decoded stored image, possibly animated. Frames hold raw
// pixel data in the declared format; all frames share one palette.
type Sprite struct {
	Width, Height uint16
	Format        uint8
	FrameTime     uint16 // ms per frame, 0 for static sprites
	Palette       []Color
	Frames        [][]byte
}

// Animated reports whether the sprite has more than one frame.
func (s *Sprite) Animated() bool { return len(s.Frames) > 1 }

func (s *Sprite) bytesPerPixel() int {
	if s.Format == SpriteIndexed {
		return 1
	}
	return 3
}

// DecodeSprite parses a sprite payload as stored in flash:
//
//	[width:u16] [height:u16] [format:u8] [frameTime:u16]
//	[paletteLen:u8] paletteLen × [r g b]
//	[frameCount:u8] frameCount × (width*height*bpp bytes)
//
// Malformed payloads yield *DecodeError, contract violations such as an
// unknown format or a zero dimension yield *SchemaViolation.
func DecodeSprite(payload []byte) (*Sprite, error) {
	r := &reader{buf: payload}

	s := &Sprite{}
	var err error
	if s.Width, err = r.u16(); err != nil {
		return nil, err
	}
	if s.Height, err = r.u16(); err != nil {
		return nil, err
	}
	if s.Format, err = r.u8(); err != nil {
		return nil, err
	}
	if s.FrameTime, err = r.u16(); err != nil {
		return nil, err
	}

	paletteLen, err := r.u8()
	if err != nil {
		return nil, err
	}
	for i := 0; i < int(paletteLen); i++ {
		c, err := decodeColor(r)
		if err != nil {
			return nil, err
		}
		s.Palette = append(s.Palette, c)
	}

	frameCount, err := r.u8()
	if err != nil {
		return nil, err
	}
	if err := s.validateHeader(int(frameCount)); err != nil {
		return nil, err
	}

	frameLen := int(s.Width) * int(s.Height) * s.bytesPerPixel()
	for i := 0; i < int(frameCount); i++ {
		frame, err := r.bytes(frameLen)
		if err != nil {
			return nil, err
		}
		s.Frames = append(s.Frames, frame)
	}
	if err := r.done(); err != nil {
		return nil, err
	}

	if s.Format == SpriteIndexed {
		for fi, frame := range s.Frames {
			for _, idx := range frame {
				if int(idx) >= len(s.Palette) {
					return nil, schemaErrf("frames",
						"frame %d references palette index %d of %d", fi, idx, len(s.Palette))
				}
			}
		}
	}
	return s, nil
}

func (s *Sprite) validateHeader(frameCount int) error {
	switch {
	case s.Width == 0 || s.Height == 0:
		return schemaErrf("size", "sprite size %d×%d is empty", s.Width, s.Height)
	case s.Width > MaxSpriteDim || s.Height > MaxSpriteDim:
		return schemaErrf("size", "sprite size %d×%d exceeds %d", s.Width, s.Height, MaxSpriteDim)
	case s.Format != SpriteRGB && s.Format != SpriteIndexed:
		return schemaErrf("format", "unknown sprite format %#02x", s.Format)
	case s.Format == SpriteIndexed && len(s.Palette) == 0:
		return schemaErrf("palette", "indexed sprite without a palette")
	case s.Format == SpriteRGB && len(s.Palette) != 0:
		return schemaErrf("palette", "RGB sprite carries a palette")
	case frameCount == 0:
		return schemaErrf("frames", "sprite without frames")
	case frameCount > 1 && s.FrameTime < MinFrameTime:
		return schemaErrf("frameTime", "animated sprite frame time %dms below %dms", s.FrameTime, MinFrameTime)
	}
	return nil
}

// EncodeSprite serializes a sprite to its flash payload form. It is the
// inverse of DecodeSprite and does not validate.
func EncodeSprite(s *Sprite) []byte {
	w := &writer{}
	w.u16(s.Width)
	w.u16(s.Height)
	w.u8(s.Format)
	w.u16(s.FrameTime)
	w.u8(uint8(len(s.Palette)))
	for _, c := range s.Palette {
		encodeColor(w, c)
	}
	w.u8(uint8(len(s.Frames)))
	for _, frame := range s.Frames {
		w.buf = append(w.buf, frame...)
	}
	return w.buf
}
