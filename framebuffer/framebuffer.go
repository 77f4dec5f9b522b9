// Package framebuffer mirrors the wall canvas onto an operating system
// framebuffer device (fbdev), typically /dev/fb0. It implements the same
// output interface as the panel driver, so a development host without panel
// hardware can preview exactly what the chain would show.
//
// Only Linux has framebuffer support; Open fails with ErrNotSupported
// elsewhere.
package framebuffer

import "errors"

// ErrNotSupported is returned by Open on platforms without fbdev.
var ErrNotSupported = errors.New("framebuffer: not supported on this platform")
