// Package matrixwall implements the on-device core of a HUB75 LED matrix
// wall: display state, the render loop, and command dispatch. Content is
// described by the binary protocol in the proto package, sprites persist in
// the flash-backed store in the storage package, and the physical scan order
// of the panel chain comes from the layout package.
package matrixwall

import "os"

var debug bool

func init() {
	debug = os.Getenv("MATRIXWALL_DEBUG") != ""
}
