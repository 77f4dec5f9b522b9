// Command matrixwall-test drives a noise test pattern straight to the panel
// chain, bypassing storage and the command surface. It verifies wiring and
// panel order: the pattern must flow smoothly across panel seams when the
// topology matches the physical chain.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aykevl/ledsgo"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"github.com/BeatGlow/matrixwall"
	"github.com/BeatGlow/matrixwall/layout"
	"github.com/BeatGlow/matrixwall/pixel"
)

const (
	spread = 6  // higher means more detailed noise
	speed  = 20 // higher means slower animation
)

func main() {
	rowsFlag := flag.Int("rows", layout.DefaultTopology.Rows, "Panel rows")
	colsFlag := flag.Int("cols", layout.DefaultTopology.Cols, "Panel columns")
	panelWidthFlag := flag.Int("panel-width", layout.DefaultTopology.PanelWidth, "Panel width in pixels")
	panelHeightFlag := flag.Int("panel-height", layout.DefaultTopology.PanelHeight, "Panel height in pixels")
	planesFlag := flag.Int("planes", 4, "Modulation bit depth")
	r1Flag := flag.String("r1", "GPIO5", "Upper red data GPIO pin")
	g1Flag := flag.String("g1", "GPIO13", "Upper green data GPIO pin")
	b1Flag := flag.String("b1", "GPIO6", "Upper blue data GPIO pin")
	r2Flag := flag.String("r2", "GPIO12", "Lower red data GPIO pin")
	g2Flag := flag.String("g2", "GPIO16", "Lower green data GPIO pin")
	b2Flag := flag.String("b2", "GPIO23", "Lower blue data GPIO pin")
	addrFlag := flag.String("addr", "GPIO22,GPIO26,GPIO27,GPIO20", "Row address GPIO pins, LSB first")
	clkFlag := flag.String("clk", "GPIO17", "Pixel clock GPIO pin")
	latFlag := flag.String("lat", "GPIO4", "Row latch GPIO pin")
	oeFlag := flag.String("oe", "GPIO18", "Output enable GPIO pin")
	flag.Parse()

	topo := layout.Topology{
		Rows:        *rowsFlag,
		Cols:        *colsFlag,
		PanelWidth:  *panelWidthFlag,
		PanelHeight: *panelHeightFlag,
	}
	if err := topo.Validate(); err != nil {
		fatal(err)
	}

	if _, err := host.Init(); err != nil {
		fatal(err)
	}
	out, err := matrixwall.OpenHUB75(matrixwall.HUB75Config{
		Topology: topo,
		R1:       pin(*r1Flag), G1: pin(*g1Flag), B1: pin(*b1Flag),
		R2: pin(*r2Flag), G2: pin(*g2Flag), B2: pin(*b2Flag),
		Addr:   addrPins(*addrFlag),
		CLK:    pin(*clkFlag),
		LAT:    pin(*latFlag),
		OE:     pin(*oeFlag),
		Planes: *planesFlag,
	})
	if err != nil {
		fatal(err)
	}
	defer out.Close()

	var (
		canvas         = pixel.NewRGBImage(topo.Width(), topo.Height())
		frames         int
		previousSecond int64
	)
	for {
		start := time.Now()
		noise(canvas, start)
		if err := out.Frame(canvas); err != nil {
			fatal(err)
		}
		frames++

		if second := start.Unix(); second != previousSecond {
			if previousSecond != 0 {
				fmt.Printf("%d fps, frame time %s\n", frames, time.Since(start))
			}
			previousSecond = second
			frames = 0
		}
	}
}

func noise(canvas *pixel.RGBImage, now time.Time) {
	bounds := canvas.Bounds()
	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			hue := uint16(ledsgo.Noise3(uint32(now.UnixNano()>>speed), uint32(x<<spread), uint32(y<<spread))) * 2
			c := ledsgo.Color{H: hue, S: 0xff, V: 0xff}.Spectrum()
			canvas.SetRGB(x, y, pixel.RGB{R: c.R, G: c.G, B: c.B})
		}
	}
}

func pin(name string) gpio.PinOut {
	p := gpioreg.ByName(name)
	if p == nil {
		fatal(fmt.Errorf("unknown GPIO pin %q", name))
	}
	return p
}

func addrPins(names string) []gpio.PinOut {
	var pins []gpio.PinOut
	for _, name := range strings.Split(names, ",") {
		pins = append(pins, pin(strings.TrimSpace(name)))
	}
	return pins
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
