package matrixwall

import (
	"context"
	"fmt"
	"image"
	"log"
	"time"

	"github.com/BeatGlow/matrixwall/draw"
	"github.com/BeatGlow/matrixwall/layout"
	"github.com/BeatGlow/matrixwall/pixel"
	"github.com/BeatGlow/matrixwall/proto"
	"github.com/BeatGlow/matrixwall/storage"
)

// DefaultFrameRate is the render cadence in frames per second.
const DefaultFrameRate = 30

// RendererConfig configures the render loop.
type RendererConfig struct {
	// Topology of the logical canvas. Must match the output.
	Topology layout.Topology

	// FrameRate in frames per second, default DefaultFrameRate.
	FrameRate int
}

// Renderer continuously rasterizes the installed configuration onto the
// output. Content errors are logged and skipped; only output hardware
// errors and context cancellation stop the loop.
type Renderer struct {
	state    *State
	out      Output
	cache    *spriteCache
	fonts    *fontCache
	canvas   *pixel.RGBImage
	interval time.Duration
	booted   time.Time
}

// NewRenderer wires a render loop to state, sprite storage and an output.
func NewRenderer(state *State, store *storage.Store, out Output, config RendererConfig) (*Renderer, error) {
	if err := config.Topology.Validate(); err != nil {
		return nil, err
	}
	if config.Topology.Bounds() != out.Bounds() {
		return nil, fmt.Errorf("matrixwall: topology canvas %v does not match output %v",
			config.Topology.Bounds(), out.Bounds())
	}
	if config.FrameRate <= 0 {
		config.FrameRate = DefaultFrameRate
	}

	return &Renderer{
		state:    state,
		out:      out,
		cache:    newSpriteCache(store),
		fonts:    newFontCache(),
		canvas:   pixel.NewRGBImage(config.Topology.Width(), config.Topology.Height()),
		interval: time.Second / time.Duration(config.FrameRate),
		booted:   time.Now(),
	}, nil
}

// Invalidate drops a cached sprite after its stored payload changed.
func (r *Renderer) Invalidate(key string) { r.cache.invalidate(key) }

// InvalidateAll drops all cached sprites.
func (r *Renderer) InvalidateAll() { r.cache.reset() }

// Run drives frames at the configured cadence until the context is canceled
// or the output reports a hardware error.
func (r *Renderer) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			if err := r.RenderFrame(now); err != nil {
				return err
			}
		}
	}
}

// RenderFrame rasterizes and outputs a single frame. Exposed for tests and
// single-step tools; Run calls it on every tick.
func (r *Renderer) RenderFrame(now time.Time) error {
	r.canvas.Clear()

	if r.state.On() {
		config, _ := r.state.Config()
		if config == nil {
			r.drawIdle(now)
		} else {
			for i, el := range config.Screens[0].Elements {
				if err := r.drawElement(el, config, now); err != nil {
					log.Printf("matrixwall: skipping element %d: %v", i, err)
				}
			}
		}

		if b := r.state.Brightness(); b < proto.MaxBrightness {
			for i, v := range r.canvas.Pix {
				r.canvas.Pix[i] = pixel.Scale(v, b)
			}
		}
	}

	return r.out.Frame(r.canvas)
}

func (r *Renderer) drawElement(el proto.Element, config *proto.Configuration, now time.Time) error {
	switch e := el.(type) {
	case proto.Text:
		style, ok := config.Styles[e.Style]
		if !ok {
			return fmt.Errorf("undefined text style %q", e.Style)
		}
		return r.fonts.drawText(r.canvas, e, style)

	case proto.SpriteRef:
		r.drawSprite(e, now)
		return nil

	case proto.Line:
		draw.StrokeLine(r.canvas,
			image.Pt(int(e.Start.X), int(e.Start.Y)),
			image.Pt(int(e.End.X), int(e.End.Y)),
			int(e.Stroke), rgbColor(e.Color))
		return nil

	case proto.Polyline:
		points := make([]image.Point, len(e.Points))
		for i, p := range e.Points {
			points[i] = image.Pt(int(p.X), int(p.Y))
		}
		draw.Polyline(r.canvas, points, int(e.Stroke), rgbColor(e.Color))
		return nil

	case proto.Rect:
		rect := image.Rect(
			int(e.TopLeft.X), int(e.TopLeft.Y),
			int(e.TopLeft.X)+int(e.Size.W), int(e.TopLeft.Y)+int(e.Size.H))
		radii := draw.CornerRadii{
			TopLeft:     int(e.Corners.TopLeft),
			TopRight:    int(e.Corners.TopRight),
			BottomLeft:  int(e.Corners.BottomLeft),
			BottomRight: int(e.Corners.BottomRight),
		}
		if e.Fill != nil {
			draw.RoundedBox(r.canvas, rect, radii, rgbColor(*e.Fill))
		}
		if e.StrokeColor != nil {
			draw.RoundedRectangle(r.canvas, rect, radii, int(e.Stroke), rgbColor(*e.StrokeColor))
		}
		return nil

	default:
		return fmt.Errorf("unknown element %T", el)
	}
}

func (r *Renderer) drawSprite(ref proto.SpriteRef, now time.Time) {
	baked := r.cache.resolve(ref.Name, now)
	if baked == nil {
		r.drawPlaceholder(ref)
		return
	}

	frame := baked.frame(now)
	topLeft := image.Pt(int(ref.Position.X), int(ref.Position.Y))
	if ref.Center != nil {
		size := frame.Bounds().Size()
		topLeft = image.Pt(int(ref.Center.X)-size.X/2, int(ref.Center.Y)-size.Y/2)
	}
	draw.Draw(r.canvas, frame.Bounds().Add(topLeft), frame, image.Point{}, draw.Src)
}

// placeholderSize is the box drawn for a sprite reference whose payload is
// missing, matching the footprint of a typical small icon.
const placeholderSize = 12

// drawPlaceholder marks a dangling sprite reference with a dim crossed box.
func (r *Renderer) drawPlaceholder(ref proto.SpriteRef) {
	dim := pixel.RGB{R: 64, G: 64, B: 64}
	topLeft := image.Pt(int(ref.Position.X), int(ref.Position.Y))
	if ref.Center != nil {
		topLeft = image.Pt(int(ref.Center.X)-placeholderSize/2, int(ref.Center.Y)-placeholderSize/2)
	}
	rect := image.Rectangle{Min: topLeft, Max: topLeft.Add(image.Pt(placeholderSize, placeholderSize))}
	draw.Rectangle(r.canvas, rect, 1, dim)
	draw.Line(r.canvas, rect.Min, rect.Max.Sub(image.Pt(1, 1)), dim)
	draw.Line(r.canvas, image.Pt(rect.Min.X, rect.Max.Y-1), image.Pt(rect.Max.X-1, rect.Min.Y), dim)
}

// drawIdle renders the boot screen shown until the first configuration
// arrives: a dim label with a slow breathing underline.
func (r *Renderer) drawIdle(now time.Time) {
	bounds := r.canvas.Bounds()
	center := image.Pt(bounds.Dx()/2, bounds.Dy()/2)

	label := proto.Text{
		Text:     "matrixwall",
		Position: proto.Point{X: int16(center.X), Y: int16(center.Y)},
		Align:    proto.AlignCenter,
	}
	style := proto.TextStyle{
		Color: proto.Color{R: 96, G: 96, B: 96},
		Font:  proto.Font{Family: proto.FontRegular, Size: 10},
	}
	if err := r.fonts.drawText(r.canvas, label, style); err != nil {
		log.Printf("matrixwall: idle screen: %v", err)
	}

	// Triangle wave, one cycle per four seconds.
	phase := now.Sub(r.booted) % (4 * time.Second)
	level := int(phase / (16 * time.Millisecond))
	if level > 125 {
		level = 250 - level
	}
	c := pixel.RGB{R: uint8(level), G: uint8(level), B: uint8(level)}
	draw.HorizontalLine(r.canvas, center.X-16, center.Y+4, 32, c)
}
