package framebuffer

import (
	"encoding/binary"
	"fmt"
	"image"
	"os"
	"syscall"

	"github.com/BeatGlow/matrixwall"
	"github.com/BeatGlow/matrixwall/internal/ioctl"
	"github.com/BeatGlow/matrixwall/layout"
	"github.com/BeatGlow/matrixwall/pixel"
)

// From <linux/fb.h>
const (
	fbioGetVScreenInfo = 0x4600
	fbioGetFScreenInfo = 0x4602
)

// Device is a memory-mapped fbdev output. The wall canvas lands in the top
// left corner of the screen.
type Device struct {
	topo   layout.Topology
	f      *os.File
	mem    []byte
	stride int
	depth  int
	put    func(buf []byte, c pixel.RGB)
	closed bool
}

var _ matrixwall.Output = (*Device)(nil)

// Open maps a framebuffer device and prepares it as an output for the given
// topology. The screen must be at least as large as the logical canvas.
func Open(name string, topo layout.Topology) (matrixwall.Output, error) {
	if err := topo.Validate(); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(name, os.O_RDWR, os.ModeDevice)
	if err != nil {
		return nil, err
	}

	var fix fixScreenInfo
	if err = ioctl.Do(f.Fd(), fbioGetFScreenInfo, &fix); err != nil {
		_ = f.Close()
		return nil, err
	}
	var screen varScreenInfo
	if err = ioctl.Do(f.Fd(), fbioGetVScreenInfo, &screen); err != nil {
		_ = f.Close()
		return nil, err
	}

	if int(screen.Xres) < topo.Width() || int(screen.Yres) < topo.Height() {
		_ = f.Close()
		return nil, fmt.Errorf("framebuffer: screen %d×%d smaller than canvas %d×%d",
			screen.Xres, screen.Yres, topo.Width(), topo.Height())
	}

	d := &Device{
		topo:   topo,
		f:      f,
		stride: int(fix.LineLength),
		depth:  int(screen.BitsPerPixel) / 8,
	}
	if d.put, err = putFunc(&screen); err != nil {
		_ = f.Close()
		return nil, err
	}

	d.mem, err = syscall.Mmap(int(f.Fd()), 0, int(fix.SmemLen),
		syscall.PROT_READ|syscall.PROT_WRITE, syscall.MAP_SHARED)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return d, nil
}

func (d *Device) Bounds() image.Rectangle {
	return d.topo.Bounds()
}

func (d *Device) Frame(img *pixel.RGBImage) error {
	if d.closed {
		return matrixwall.ErrOutputClosed
	}
	for y := 0; y < d.topo.Height(); y++ {
		row := d.mem[y*d.stride:]
		for x := 0; x < d.topo.Width(); x++ {
			d.put(row[x*d.depth:], img.RGBAt(x, y))
		}
	}
	return nil
}

func (d *Device) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	if err := syscall.Munmap(d.mem); err != nil {
		_ = d.f.Close()
		return err
	}
	return d.f.Close()
}

// putFunc selects the pixel writer for the device's color layout.
func putFunc(screen *varScreenInfo) (func([]byte, pixel.RGB), error) {
	switch {
	case screen.BitsPerPixel == 16 && screen.Red.Offset == 11 && screen.Green.Length == 6:
		return putRGB565, nil
	case screen.BitsPerPixel == 16 && screen.Blue.Offset == 11 && screen.Green.Length == 6:
		return putBGR565, nil
	case screen.BitsPerPixel == 32 && screen.Red.Offset == 16:
		return putXRGB32, nil
	case screen.BitsPerPixel == 32 && screen.Red.Offset == 0:
		return putXBGR32, nil
	}
	return nil, fmt.Errorf("framebuffer: unsupported color layout (%d bpp, red at bit %d)",
		screen.BitsPerPixel, screen.Red.Offset)
}

func putRGB565(buf []byte, c pixel.RGB) {
	v := uint16(c.R>>3)<<11 | uint16(c.G>>2)<<5 | uint16(c.B>>3)
	binary.LittleEndian.PutUint16(buf, v)
}

func putBGR565(buf []byte, c pixel.RGB) {
	v := uint16(c.B>>3)<<11 | uint16(c.G>>2)<<5 | uint16(c.R>>3)
	binary.LittleEndian.PutUint16(buf, v)
}

func putXRGB32(buf []byte, c pixel.RGB) {
	buf[0] = c.B
	buf[1] = c.G
	buf[2] = c.R
	buf[3] = 0
}

func putXBGR32(buf []byte, c pixel.RGB) {
	buf[0] = c.R
	buf[1] = c.G
	buf[2] = c.B
	buf[3] = 0
}

// fixScreenInfo is struct fb_fix_screeninfo.
type fixScreenInfo struct {
	ID         [16]byte
	SmemStart  uintptr
	SmemLen    uint32
	Type       uint32
	TypeAux    uint32
	Visual     uint32
	Xpanstep   uint16
	Ypanstep   uint16
	Ywrapstep  uint16
	LineLength uint32
	MmioStart  uintptr
	MmioLen    uint32
	Accel      uint32
	Reserved   [3]uint16
}

type bitField struct {
	Offset   uint32
	Length   uint32
	MsbRight uint32
}

// varScreenInfo is struct fb_var_screeninfo.
type varScreenInfo struct {
	Xres                    uint32
	Yres                    uint32
	XresVirtual             uint32
	YresVirtual             uint32
	Xoffset                 uint32
	Yoffset                 uint32
	BitsPerPixel            uint32
	Grayscale               uint32
	Red, Green, Blue, Alpha bitField
	Nonstd                  uint32
	Activate                uint32
	Height                  uint32
	Width                   uint32
	AccelFlags              uint32
	Pixclock                uint32
	LeftMargin              uint32
	RightMargin             uint32
	UpperMargin             uint32
	LowerMargin             uint32
	HsyncLen                uint32
	VsyncLen                uint32
	Sync                    uint32
	Vmode                   uint32
	Rotate                  uint32
	Colorspace              uint32
	Reserved                [4]uint32
}
