package pixel

import "testing"

func TestRGB(t *testing.T) {
	c := RGB{R: 0x12, G: 0x34, B: 0x56}
	r, g, b, a := c.RGBA()
	if r != 0x1212 {
		t.Errorf("expected red to be %#04x, got %#04x", 0x1212, r)
	}
	if g != 0x3434 {
		t.Errorf("expected green to be %#04x, got %#04x", 0x3434, g)
	}
	if b != 0x5656 {
		t.Errorf("expected blue to be %#04x, got %#04x", 0x5656, b)
	}
	if a != 0xffff {
		t.Errorf("expected alpha to be %#04x, got %#04x", 0xffff, a)
	}
}

func TestScale(t *testing.T) {
	testCases := []struct {
		v, brightness, want uint8
	}{
		{0, 100, 0},
		{0, 50, 0},
		{0, 0, 0},
		{255, 100, 255},
		{200, 50, 100},
		{200, 0, 0},
		{255, 50, 127},
		{10, 10, 1},
		{1, 50, 1},
		{1, 1, 1},
		{1, 0, 0},
	}
	for _, test := range testCases {
		if got := Scale(test.v, test.brightness); got != test.want {
			t.Errorf("Scale(%d, %d) = %d, expected %d", test.v, test.brightness, got, test.want)
		}
	}
}

func TestScalePreservesMembership(t *testing.T) {
	// Brightness scaling must never light a dark pixel, and dimming to a
	// nonzero brightness must never extinguish a lit one.
	for b := uint8(0); b <= 100; b += 10 {
		if Scale(0, b) != 0 {
			t.Fatalf("Scale(0, %d) lit a dark pixel", b)
		}
	}
	for b := uint8(10); b <= 100; b += 10 {
		for _, v := range []uint8{1, 2, 5, 127, 255} {
			if Scale(v, b) == 0 {
				t.Fatalf("Scale(%d, %d) extinguished a lit pixel", v, b)
			}
		}
	}
}

func TestGamma(t *testing.T) {
	if Gamma(0) != 0 {
		t.Errorf("Gamma(0) = %d, expected 0", Gamma(0))
	}
	if Gamma(255) != 255 {
		t.Errorf("Gamma(255) = %d, expected 255", Gamma(255))
	}
	// The 2.2 curve is monotonic and below the identity in the midtones.
	prev := uint8(0)
	for i := 0; i < 256; i++ {
		v := Gamma(uint8(i))
		if v < prev {
			t.Fatalf("Gamma not monotonic at %d: %d < %d", i, v, prev)
		}
		prev = v
	}
	if v := Gamma(128); v >= 128 {
		t.Errorf("Gamma(128) = %d, expected a value below 128", v)
	}
}
