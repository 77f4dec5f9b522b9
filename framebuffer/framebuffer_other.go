//go:build !linux

package framebuffer

import (
	"github.com/BeatGlow/matrixwall"
	"github.com/BeatGlow/matrixwall/layout"
)

func Open(_ string, _ layout.Topology) (matrixwall.Output, error) {
	return nil, ErrNotSupported
}
