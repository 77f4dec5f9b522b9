package proto

import (
	"errors"
	"reflect"
	"testing"
)

func TestSpriteRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		sprite Sprite
	}{
		{
			"static rgb",
			Sprite{
				Width:  1,
				Height: 2,
				Format: SpriteRGB,
				Frames: [][]byte{{255, 0, 0, 0, 255, 0}},
			},
		},
		{
			"animated indexed",
			Sprite{
				Width:     2,
				Height:    1,
				Format:    SpriteIndexed,
				FrameTime: 100,
				Palette:   []Color{{}, {R: 255, G: 176}},
				Frames:    [][]byte{{0, 1}, {1, 0}, {1, 1}},
			},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			decoded, err := DecodeSprite(EncodeSprite(&test.sprite))
			if err != nil {
				t.Fatalf("DecodeSprite: %v", err)
			}
			if !reflect.DeepEqual(*decoded, test.sprite) {
				t.Errorf("round trip mismatch:\n got %#v\nwant %#v", *decoded, test.sprite)
			}
		})
	}
}

func TestSpriteAnimated(t *testing.T) {
	static := Sprite{Frames: [][]byte{{0}}}
	if static.Animated() {
		t.Error("single-frame sprite reported animated")
	}
	animated := Sprite{Frames: [][]byte{{0}, {1}}}
	if !animated.Animated() {
		t.Error("multi-frame sprite not reported animated")
	}
}

func TestDecodeSpriteRejects(t *testing.T) {
	encode := func(s Sprite) []byte { return EncodeSprite(&s) }

	tests := []struct {
		name    string
		payload []byte
		schema  bool
	}{
		{"empty", nil, false},
		{"truncated header", []byte{2, 0, 2, 0}, false},
		{
			"zero width",
			encode(Sprite{Height: 1, Format: SpriteRGB, Frames: [][]byte{{}}}),
			true,
		},
		{
			"unknown format",
			encode(Sprite{Width: 1, Height: 1, Format: 0x7f, Frames: [][]byte{{0, 0, 0}}}),
			true,
		},
		{
			"indexed without palette",
			encode(Sprite{Width: 1, Height: 1, Format: SpriteIndexed, Frames: [][]byte{{0}}}),
			true,
		},
		{
			"rgb with palette",
			encode(Sprite{
				Width: 1, Height: 1, Format: SpriteRGB,
				Palette: []Color{{}},
				Frames:  [][]byte{{0, 0, 0}},
			}),
			true,
		},
		{
			"no frames",
			encode(Sprite{Width: 1, Height: 1, Format: SpriteRGB}),
			true,
		},
		{
			"animation too fast",
			encode(Sprite{
				Width: 1, Height: 1, Format: SpriteRGB, FrameTime: 5,
				Frames: [][]byte{{0, 0, 0}, {1, 1, 1}},
			}),
			true,
		},
		{
			"short frame",
			encode(Sprite{Width: 2, Height: 2, Format: SpriteRGB, Frames: [][]byte{{0, 0, 0}}}),
			false,
		},
		{
			"palette index out of range",
			encode(Sprite{
				Width: 1, Height: 1, Format: SpriteIndexed,
				Palette: []Color{{}},
				Frames:  [][]byte{{3}},
			}),
			true,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			sprite, err := DecodeSprite(test.payload)
			if sprite != nil {
				t.Errorf("expected no sprite, got %#v", sprite)
			}
			if err == nil {
				t.Fatal("expected an error")
			}
			var violation *SchemaViolation
			if got := errors.As(err, &violation); got != test.schema {
				t.Errorf("schema violation = %v, want %v (err: %v)", got, test.schema, err)
			}
		})
	}
}
