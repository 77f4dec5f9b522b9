package matrixwall

import (
	"errors"
	"fmt"
	"image"
	"time"

	"periph.io/x/conn/v3/gpio"

	"github.com/BeatGlow/matrixwall/layout"
	"github.com/BeatGlow/matrixwall/pixel"
)

// HUB75 errors.
var (
	ErrMissingPin = errors.New("matrixwall: HUB75 GPIO pin is not configured")
	ErrScanRows   = errors.New("matrixwall: panel height not addressable with configured address pins")
)

// HUB75Config describes the GPIO wiring of a HUB75 panel chain.
type HUB75Config struct {
	// Topology of the panel chain.
	Topology layout.Topology

	// Color pins for the upper and lower half of each panel.
	R1, G1, B1 gpio.PinOut
	R2, G2, B2 gpio.PinOut

	// Addr selects the active scan row pair. Three pins address 1/8 scan
	// panels, four pins 1/16, five pins 1/32.
	Addr []gpio.PinOut

	// Control pins: pixel clock, row latch, output enable (active low).
	CLK, LAT, OE gpio.PinOut

	// Planes is the binary-coded modulation depth, default 4.
	Planes int
}

// HUB75 bit-bangs a chain of HUB75 panels over GPIO. Panels have no frame
// memory, so the chain only lights while Frame is being called; the render
// loop provides the refresh cadence.
type HUB75 struct {
	config HUB75Config
	scan   []pixel.RGB
	closed bool
}

var _ Output = (*HUB75)(nil)

// OpenHUB75 validates the wiring description and prepares a driver.
func OpenHUB75(config HUB75Config) (*HUB75, error) {
	if err := config.Topology.Validate(); err != nil {
		return nil, err
	}
	if config.Planes <= 0 {
		config.Planes = 4
	}
	for _, pin := range []gpio.PinOut{
		config.R1, config.G1, config.B1,
		config.R2, config.G2, config.B2,
		config.CLK, config.LAT, config.OE,
	} {
		if pin == nil {
			return nil, ErrMissingPin
		}
	}
	if config.Topology.PanelHeight != 2<<len(config.Addr) {
		return nil, fmt.Errorf("%w: %d address pins drive %d rows, panel has %d",
			ErrScanRows, len(config.Addr), 2<<len(config.Addr), config.Topology.PanelHeight)
	}

	d := &HUB75{
		config: config,
		scan:   make([]pixel.RGB, config.Topology.Pixels()),
	}
	if err := d.blank(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *HUB75) Bounds() image.Rectangle {
	return d.config.Topology.Bounds()
}

// Frame refreshes the whole chain once from the logical canvas. Colors are
// gamma corrected here so the logical canvas stays linear.
func (d *HUB75) Frame(img *pixel.RGBImage) error {
	if d.closed {
		return ErrOutputClosed
	}

	topo := d.config.Topology
	for y := 0; y < topo.Height(); y++ {
		for x := 0; x < topo.Width(); x++ {
			off, err := topo.Offset(x, y)
			if err != nil {
				return err
			}
			d.scan[off] = pixel.GammaRGB(img.RGBAt(x, y))
		}
	}
	return d.refresh()
}

// refresh drives one full binary-coded modulation pass over all scan rows.
func (d *HUB75) refresh() error {
	topo := d.config.Topology
	half := topo.PanelHeight / 2
	panels := topo.Rows * topo.Cols

	for row := 0; row < half; row++ {
		for plane := 0; plane < d.config.Planes; plane++ {
			bit := uint8(1) << (8 - d.config.Planes + plane)

			// Shift the row through the whole chain, last panel first.
			for panel := panels - 1; panel >= 0; panel-- {
				base := panel * topo.PanelWidth * topo.PanelHeight
				for x := 0; x < topo.PanelWidth; x++ {
					top := d.scan[base+row*topo.PanelWidth+x]
					bottom := d.scan[base+(row+half)*topo.PanelWidth+x]
					if err := d.clockPixel(top, bottom, bit); err != nil {
						return err
					}
				}
			}

			if err := d.latchRow(row, plane); err != nil {
				return err
			}
		}
	}
	return d.config.OE.Out(gpio.High)
}

func (d *HUB75) clockPixel(top, bottom pixel.RGB, bit uint8) error {
	pins := []struct {
		pin   gpio.PinOut
		level gpio.Level
	}{
		{d.config.R1, gpio.Level(top.R&bit != 0)},
		{d.config.G1, gpio.Level(top.G&bit != 0)},
		{d.config.B1, gpio.Level(top.B&bit != 0)},
		{d.config.R2, gpio.Level(bottom.R&bit != 0)},
		{d.config.G2, gpio.Level(bottom.G&bit != 0)},
		{d.config.B2, gpio.Level(bottom.B&bit != 0)},
	}
	for _, p := range pins {
		if err := p.pin.Out(p.level); err != nil {
			return err
		}
	}
	if err := d.config.CLK.Out(gpio.High); err != nil {
		return err
	}
	return d.config.CLK.Out(gpio.Low)
}

// latchRow blanks the output, selects the scan row, latches the shifted data
// and re-enables the output for a plane-weighted interval.
func (d *HUB75) latchRow(row, plane int) error {
	if err := d.config.OE.Out(gpio.High); err != nil {
		return err
	}
	for i, pin := range d.config.Addr {
		if err := pin.Out(gpio.Level(row&(1<<i) != 0)); err != nil {
			return err
		}
	}
	if err := d.config.LAT.Out(gpio.High); err != nil {
		return err
	}
	if err := d.config.LAT.Out(gpio.Low); err != nil {
		return err
	}
	if err := d.config.OE.Out(gpio.Low); err != nil {
		return err
	}
	time.Sleep(time.Microsecond << plane)
	return nil
}

func (d *HUB75) blank() error {
	if err := d.config.OE.Out(gpio.High); err != nil {
		return err
	}
	return d.config.LAT.Out(gpio.Low)
}

// Close blanks the chain and marks the driver closed. The GPIO pins stay
// claimed by the caller.
func (d *HUB75) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	return d.blank()
}
