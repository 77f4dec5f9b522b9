package matrixwall

import (
	"errors"
	"image"
	"sync"

	"github.com/BeatGlow/matrixwall/layout"
	"github.com/BeatGlow/matrixwall/pixel"
)

// ErrOutputClosed is returned by Frame after Close.
var ErrOutputClosed = errors.New("matrixwall: output is closed")

// Output drives a chain of panels. Frame receives one complete logical
// canvas per render cycle; the implementation owns the translation into its
// physical scan order.
type Output interface {
	// Bounds is the logical canvas covered by this output.
	Bounds() image.Rectangle

	// Frame pushes one complete frame. The image is only valid for the
	// duration of the call.
	Frame(img *pixel.RGBImage) error

	// Close releases the output hardware.
	Close() error
}

// MemOutput is an in-memory Output holding the last frame in physical scan
// order. It backs tests and host-side dry runs.
type MemOutput struct {
	mu     sync.Mutex
	topo   layout.Topology
	scan   []pixel.RGB
	frames int
	closed bool
}

var _ Output = (*MemOutput)(nil)

// NewMemOutput returns a memory output for the given topology.
func NewMemOutput(topo layout.Topology) (*MemOutput, error) {
	if err := topo.Validate(); err != nil {
		return nil, err
	}
	return &MemOutput{
		topo: topo,
		scan: make([]pixel.RGB, topo.Pixels()),
	}, nil
}

func (o *MemOutput) Bounds() image.Rectangle {
	return o.topo.Bounds()
}

func (o *MemOutput) Frame(img *pixel.RGBImage) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return ErrOutputClosed
	}

	for y := 0; y < o.topo.Height(); y++ {
		for x := 0; x < o.topo.Width(); x++ {
			off, err := o.topo.Offset(x, y)
			if err != nil {
				return err
			}
			o.scan[off] = img.RGBAt(x, y)
		}
	}
	o.frames++
	return nil
}

func (o *MemOutput) Close() error {
	o.mu.Lock()
	o.closed = true
	o.mu.Unlock()
	return nil
}

// Frames returns the number of frames pushed so far.
func (o *MemOutput) Frames() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.frames
}

// ScanBuffer returns a copy of the last frame in physical scan order.
func (o *MemOutput) ScanBuffer() []pixel.RGB {
	o.mu.Lock()
	defer o.mu.Unlock()
	scan := make([]pixel.RGB, len(o.scan))
	copy(scan, o.scan)
	return scan
}
