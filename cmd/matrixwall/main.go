package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"github.com/BeatGlow/matrixwall"
	"github.com/BeatGlow/matrixwall/framebuffer"
	"github.com/BeatGlow/matrixwall/layout"
	"github.com/BeatGlow/matrixwall/server"
	"github.com/BeatGlow/matrixwall/storage"
)

func main() {
	rowsFlag := flag.Int("rows", layout.DefaultTopology.Rows, "Panel rows")
	colsFlag := flag.Int("cols", layout.DefaultTopology.Cols, "Panel columns")
	panelWidthFlag := flag.Int("panel-width", layout.DefaultTopology.PanelWidth, "Panel width in pixels")
	panelHeightFlag := flag.Int("panel-height", layout.DefaultTopology.PanelHeight, "Panel height in pixels")
	fpsFlag := flag.Int("fps", matrixwall.DefaultFrameRate, "Render frame rate")
	listenFlag := flag.String("listen", ":8080", "HTTP listen address")
	flashFlag := flag.String("flash", "matrixwall.flash", "Sprite flash image file")
	flashSizeFlag := flag.Int64("flash-size", 4<<20, "Sprite flash size in bytes")
	simFlag := flag.Bool("sim", false, "Simulate the panel chain in memory")
	fbFlag := flag.String("fb", "", "Preview on a framebuffer device instead of panels, e.g. /dev/fb0")
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
	fmt.Printf("using topology: %d×%d panels of %d×%d (canvas %d×%d)\n",
		topo.Cols, topo.Rows, topo.PanelWidth, topo.PanelHeight, topo.Width(), topo.Height())

	store := openStore(*flashFlag, *flashSizeFlag)

	var (
		out matrixwall.Output
		err error
	)
	switch {
	case *simFlag:
		out, err = matrixwall.NewMemOutput(topo)
	case *fbFlag != "":
		out, err = framebuffer.Open(*fbFlag, topo)
	default:
		if _, err = host.Init(); err != nil {
			fatal(err)
		}
		out, err = matrixwall.OpenHUB75(matrixwall.HUB75Config{
			Topology: topo,
			R1:       pin(*r1Flag), G1: pin(*g1Flag), B1: pin(*b1Flag),
			R2: pin(*r2Flag), G2: pin(*g2Flag), B2: pin(*b2Flag),
			Addr:   addrPins(*addrFlag),
			CLK:    pin(*clkFlag),
			LAT:    pin(*latFlag),
			OE:     pin(*oeFlag),
			Planes: *planesFlag,
		})
	}
	if err != nil {
		fatal(err)
	}
	defer out.Close()

	state := matrixwall.NewState()
	renderer, err := matrixwall.NewRenderer(state, store, out, matrixwall.RendererConfig{
		Topology:  topo,
		FrameRate: *fpsFlag,
	})
	if err != nil {
		fatal(err)
	}
	controller := matrixwall.NewController(state, store, renderer)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpServer := &http.Server{
		Addr:    *listenFlag,
		Handler: server.New(controller),
	}
	go func() {
		fmt.Printf("listening on %s\n", *listenFlag)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server: %v", err)
			stop()
		}
	}()

	if err := renderer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("render loop: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown: %v", err)
	}
}

// openStore opens the flash-backed sprite store, falling back to a volatile
// in-memory store when the flash file is unusable so the wall keeps running
// without persistence.
func openStore(name string, size int64) *storage.Store {
	dev, err := storage.OpenFile(name, size)
	if err == nil {
		if store, err := storage.Open(dev); err == nil {
			return store
		} else {
			log.Printf("flash store %s unusable: %v", name, err)
		}
	} else {
		log.Printf("cannot open flash store %s: %v", name, err)
	}

	log.Print("continuing with volatile sprite storage")
	store, err := storage.Open(storage.NewMemDevice(int(size)))
	if err != nil {
		fatal(err)
	}
	return store
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
