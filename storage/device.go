package storage

import (
	"fmt"
	"os"
)

// erased is the value of a flash cell after block erase.
const erased = 0xff

// BlockDevice is the raw flash region backing a Store.
//
// Implementations must guarantee that bytes, once written, do not change until
// the next EraseAll; the Store relies on this for lock-free reads of committed
// records.
type BlockDevice interface {
	// ReadAt reads len(p) bytes starting at off.
	ReadAt(p []byte, off int64) (int, error)

	// WriteAt writes p starting at off. The Store only writes to regions in
	// the erased state.
	WriteAt(p []byte, off int64) (int, error)

	// EraseAll resets every byte of the region to the erased state.
	EraseAll() error

	// Size is the region capacity in bytes.
	Size() int64
}

// DeviceError wraps a flash I/O failure. Callers treat it as a hardware fault:
// the store keeps serving reads from its index but persistence is degraded.
type DeviceError struct {
	Op  string
	Err error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("storage: device %s failed: %v", e.Op, e.Err)
}

func (e *DeviceError) Unwrap() error { return e.Err }

// MemDevice is an in-memory BlockDevice, used in tests and as the degraded
// fallback when no flash region is available.
type MemDevice struct {
	buf []byte
}

// NewMemDevice returns an erased in-memory region of the given size.
func NewMemDevice(size int) *MemDevice {
	d := &MemDevice{buf: make([]byte, size)}
	_ = d.EraseAll()
	return d
}

func (d *MemDevice) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off+int64(len(p)) > int64(len(d.buf)) {
		return 0, fmt.Errorf("memdevice: read [%d,%d) outside region of %d bytes", off, off+int64(len(p)), len(d.buf))
	}
	return copy(p, d.buf[off:]), nil
}

func (d *MemDevice) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 || off+int64(len(p)) > int64(len(d.buf)) {
		return 0, fmt.Errorf("memdevice: write [%d,%d) outside region of %d bytes", off, off+int64(len(p)), len(d.buf))
	}
	return copy(d.buf[off:], p), nil
}

func (d *MemDevice) EraseAll() error {
	for i := range d.buf {
		d.buf[i] = erased
	}
	return nil
}

func (d *MemDevice) Size() int64 { return int64(len(d.buf)) }

// FileDevice is a file-backed BlockDevice for hosts without a dedicated flash
// partition. The file is created erased at the configured size and reattached
// on subsequent opens, so sprites survive restarts the way they survive
// reboots on real flash.
type FileDevice struct {
	f    *os.File
	size int64
}

// OpenFile opens (or creates) a file-backed region of the given size.
func OpenFile(name string, size int64) (*FileDevice, error) {
	f, err := os.OpenFile(name, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	d := &FileDevice{f: f, size: size}
	if info.Size() != size {
		// Fresh or resized region: start from the erased state.
		if err = d.EraseAll(); err != nil {
			_ = f.Close()
			return nil, err
		}
	}
	return d, nil
}

func (d *FileDevice) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off+int64(len(p)) > d.size {
		return 0, fmt.Errorf("filedevice: read [%d,%d) outside region of %d bytes", off, off+int64(len(p)), d.size)
	}
	return d.f.ReadAt(p, off)
}

func (d *FileDevice) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 || off+int64(len(p)) > d.size {
		return 0, fmt.Errorf("filedevice: write [%d,%d) outside region of %d bytes", off, off+int64(len(p)), d.size)
	}
	return d.f.WriteAt(p, off)
}

func (d *FileDevice) EraseAll() error {
	if err := d.f.Truncate(0); err != nil {
		return err
	}
	if err := d.f.Truncate(d.size); err != nil {
		return err
	}
	// A truncated file reads back zeroes; flash erases to 0xff. Write the
	// erased pattern so log scanning behaves identically on both devices.
	blank := make([]byte, 4096)
	for i := range blank {
		blank[i] = erased
	}
	for off := int64(0); off < d.size; off += int64(len(blank)) {
		n := int64(len(blank))
		if off+n > d.size {
			n = d.size - off
		}
		if _, err := d.f.WriteAt(blank[:n], off); err != nil {
			return err
		}
	}
	return d.f.Sync()
}

func (d *FileDevice) Size() int64 { return d.size }

// Close releases the backing file.
func (d *FileDevice) Close() error { return d.f.Close() }

// Interface checks.
var (
	_ BlockDevice = (*MemDevice)(nil)
	_ BlockDevice = (*FileDevice)(nil)
)
