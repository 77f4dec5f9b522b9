package matrixwall

import (
	"errors"
	"testing"
	"time"

	"github.com/BeatGlow/matrixwall/layout"
	"github.com/BeatGlow/matrixwall/pixel"
	"github.com/BeatGlow/matrixwall/proto"
	"github.com/BeatGlow/matrixwall/storage"
)

var testTopology = layout.Topology{Rows: 1, Cols: 2, PanelWidth: 32, PanelHeight: 32}

func newTestWall(t *testing.T) (*Controller, *Renderer, *State, *MemOutput) {
	t.Helper()

	store, err := storage.Open(storage.NewMemDevice(64 << 10))
	if err != nil {
		t.Fatalf("storage.Open: %v", err)
	}
	out, err := NewMemOutput(testTopology)
	if err != nil {
		t.Fatalf("NewMemOutput: %v", err)
	}
	state := NewState()
	renderer, err := NewRenderer(state, store, out, RendererConfig{Topology: testTopology})
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	return NewController(state, store, renderer), renderer, state, out
}

// boxConfig is a minimal valid configuration: one filled rectangle.
func boxConfig(x, y int16, w, h uint16, c proto.Color) proto.Configuration {
	return proto.Configuration{
		Screens: []proto.Screen{{
			Elements: []proto.Element{
				proto.Rect{TopLeft: proto.Point{X: x, Y: y}, Size: proto.Size{W: w, H: h}, Fill: &c},
			},
		}},
	}
}

func apply(t *testing.T, c *Controller, cmd proto.Command) Result {
	t.Helper()
	result, err := c.Apply(cmd)
	if err != nil {
		t.Fatalf("Apply(%T): %v", cmd, err)
	}
	return result
}

func TestBootDefaults(t *testing.T) {
	state := NewState()
	if !state.On() {
		t.Error("expected power on at boot")
	}
	if got := state.Brightness(); got != DefaultBrightness {
		t.Errorf("brightness = %d, expected %d", got, DefaultBrightness)
	}
	if config, _ := state.Config(); config != nil {
		t.Errorf("expected no configuration at boot, got %#v", config)
	}
}

func TestRenderBlankWhenOff(t *testing.T) {
	controller, renderer, _, out := newTestWall(t)
	apply(t, controller, proto.SetConfig{Config: boxConfig(0, 0, 64, 32, proto.Color{R: 255})})
	apply(t, controller, proto.SetState{On: false})

	if err := renderer.RenderFrame(time.Now()); err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	for i, v := range out.ScanBuffer() {
		if v != (pixel.RGB{}) {
			t.Fatalf("scan[%d] = %v, expected black while off", i, v)
		}
	}
}

func TestRenderThroughSerpentineMapping(t *testing.T) {
	controller, renderer, state, out := newTestWall(t)
	state.SetBrightness(100)
	apply(t, controller, proto.SetConfig{Config: boxConfig(0, 0, 1, 1, proto.Color{R: 200, G: 100, B: 50})})

	if err := renderer.RenderFrame(time.Now()); err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}

	scan := out.ScanBuffer()
	want := pixel.RGB{R: 200, G: 100, B: 50}
	off := testTopology.MustOffset(0, 0)
	if scan[off] != want {
		t.Errorf("scan[%d] = %v, expected %v", off, scan[off], want)
	}
	for i, v := range scan {
		if i != off && v != (pixel.RGB{}) {
			t.Errorf("scan[%d] = %v, expected black", i, v)
		}
	}
}

func TestBrightnessScalesOutputOnly(t *testing.T) {
	controller, renderer, _, out := newTestWall(t)
	apply(t, controller, proto.SetConfig{Config: boxConfig(4, 4, 8, 8, proto.Color{R: 200, G: 100, B: 50})})

	apply(t, controller, proto.SetSettings{Brightness: 100})
	if err := renderer.RenderFrame(time.Now()); err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	full := out.ScanBuffer()

	apply(t, controller, proto.SetSettings{Brightness: 50})
	if err := renderer.RenderFrame(time.Now()); err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	half := out.ScanBuffer()

	for i := range full {
		if want := pixel.ScaleRGB(full[i], 50); half[i] != want {
			t.Fatalf("scan[%d] = %v at 50%%, expected %v", i, half[i], want)
		}
		lit := full[i] != pixel.RGB{}
		if lit != (half[i] != pixel.RGB{}) {
			t.Fatalf("scan[%d] changed lit membership between brightness levels", i)
		}
	}
}

func spriteConfig(name string, x, y int16) proto.Configuration {
	return proto.Configuration{
		Screens: []proto.Screen{{
			Elements: []proto.Element{
				proto.SpriteRef{Name: name, Position: proto.Point{X: x, Y: y}},
			},
		}},
	}
}

func TestMissingSpriteRendersPlaceholder(t *testing.T) {
	controller, renderer, state, out := newTestWall(t)
	state.SetBrightness(100)
	apply(t, controller, proto.SetConfig{Config: spriteConfig("ghost", 10, 10)})

	if err := renderer.RenderFrame(time.Now()); err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}

	// The placeholder outline starts at the reference position.
	scan := out.ScanBuffer()
	if got := scan[testTopology.MustOffset(10, 10)]; got == (pixel.RGB{}) {
		t.Error("expected a placeholder marker at the sprite position")
	}
}

func TestSpriteDeleteFallsBackToPlaceholder(t *testing.T) {
	controller, renderer, state, out := newTestWall(t)
	state.SetBrightness(100)

	payload := proto.EncodeSprite(&proto.Sprite{
		Width: 2, Height: 2, Format: proto.SpriteRGB,
		Frames: [][]byte{{
			255, 0, 0, 255, 0, 0,
			255, 0, 0, 255, 0, 0,
		}},
	})
	apply(t, controller, proto.StorageUpload{Key: "dot", Payload: payload})
	apply(t, controller, proto.SetConfig{Config: spriteConfig("dot", 0, 0)})

	if err := renderer.RenderFrame(time.Now()); err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	red := pixel.RGB{R: 255}
	if got := out.ScanBuffer()[testTopology.MustOffset(1, 1)]; got != red {
		t.Fatalf("scan(1,1) = %v, expected %v", got, red)
	}

	apply(t, controller, proto.StorageDelete{Key: "dot"})
	if err := renderer.RenderFrame(time.Now()); err != nil {
		t.Fatalf("RenderFrame after delete: %v", err)
	}
	if got := out.ScanBuffer()[testTopology.MustOffset(1, 1)]; got == red {
		t.Error("deleted sprite still rendered, expected placeholder")
	}
}

func TestAnimatedSpriteAdvances(t *testing.T) {
	controller, renderer, state, out := newTestWall(t)
	state.SetBrightness(100)

	payload := proto.EncodeSprite(&proto.Sprite{
		Width: 1, Height: 1, Format: proto.SpriteRGB, FrameTime: 100,
		Frames: [][]byte{{255, 0, 0}, {0, 0, 255}},
	})
	apply(t, controller, proto.StorageUpload{Key: "blink", Payload: payload})
	apply(t, controller, proto.SetConfig{Config: spriteConfig("blink", 0, 0)})

	now := time.Now()
	if err := renderer.RenderFrame(now); err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	off := testTopology.MustOffset(0, 0)
	if got, want := out.ScanBuffer()[off], (pixel.RGB{R: 255}); got != want {
		t.Fatalf("first frame = %v, expected %v", got, want)
	}

	if err := renderer.RenderFrame(now.Add(150 * time.Millisecond)); err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	if got, want := out.ScanBuffer()[off], (pixel.RGB{B: 255}); got != want {
		t.Errorf("second frame = %v, expected %v", got, want)
	}
}

func TestIdleScreenBeforeFirstConfig(t *testing.T) {
	_, renderer, _, out := newTestWall(t)

	if err := renderer.RenderFrame(time.Now().Add(time.Second)); err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	var lit int
	for _, v := range out.ScanBuffer() {
		if v != (pixel.RGB{}) {
			lit++
		}
	}
	if lit == 0 {
		t.Error("idle screen rendered nothing")
	}
}

func TestInvalidConfigLeavesStateUnchanged(t *testing.T) {
	controller, _, state, _ := newTestWall(t)

	installed := boxConfig(0, 0, 4, 4, proto.Color{G: 255})
	apply(t, controller, proto.SetConfig{Config: installed})
	_, genBefore := state.Config()

	// A malformed message fails decode, so no command ever reaches Apply.
	bad := proto.Configuration{
		Screens: []proto.Screen{{
			Elements: []proto.Element{proto.Text{Style: "nope", Text: "x"}},
		}},
	}
	if _, err := proto.DecodeCommand(proto.EncodeCommand(proto.SetConfig{Config: bad})); err == nil {
		t.Fatal("expected decode of invalid configuration to fail")
	}

	config, gen := state.Config()
	if gen != genBefore {
		t.Errorf("configuration generation changed: %d != %d", gen, genBefore)
	}
	if len(config.Screens[0].Elements) != 1 {
		t.Error("installed configuration was replaced")
	}
}

func TestControllerStorageCommands(t *testing.T) {
	controller, _, _, _ := newTestWall(t)

	payload := proto.EncodeSprite(&proto.Sprite{
		Width: 1, Height: 1, Format: proto.SpriteRGB,
		Frames: [][]byte{{1, 2, 3}},
	})

	if result := apply(t, controller, proto.StorageExists{Key: "icon"}); result.Exists {
		t.Error("expected icon to be absent")
	}
	apply(t, controller, proto.StorageUpload{Key: "icon", Payload: payload})
	if result := apply(t, controller, proto.StorageExists{Key: "icon"}); !result.Exists {
		t.Error("expected icon to exist after upload")
	}

	apply(t, controller, proto.StorageDelete{Key: "icon"})
	if result := apply(t, controller, proto.StorageExists{Key: "icon"}); result.Exists {
		t.Error("expected icon to be gone after delete")
	}
	if _, err := controller.Apply(proto.StorageDelete{Key: "icon"}); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("second delete = %v, expected ErrNotFound", err)
	}

	apply(t, controller, proto.StorageUpload{Key: "icon", Payload: payload})
	apply(t, controller, proto.StorageFormat{})
	if result := apply(t, controller, proto.StorageExists{Key: "icon"}); result.Exists {
		t.Error("expected empty store after format")
	}
}

func TestMemOutputClosed(t *testing.T) {
	out, err := NewMemOutput(testTopology)
	if err != nil {
		t.Fatalf("NewMemOutput: %v", err)
	}
	if err := out.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	img := pixel.NewRGBImage(testTopology.Width(), testTopology.Height())
	if err := out.Frame(img); !errors.Is(err, ErrOutputClosed) {
		t.Errorf("Frame after Close = %v, expected ErrOutputClosed", err)
	}
}
