package matrixwall

import (
	"sync"
	"sync/atomic"

	"github.com/BeatGlow/matrixwall/proto"
)

// DefaultBrightness is the boot-time output brightness.
const DefaultBrightness = 80

// State is the process-wide display state: power, brightness, and the
// installed configuration. It is written by the command path and read every
// frame by the render loop. Installed configurations are immutable; callers
// must not modify a configuration after passing it to SetConfig.
type State struct {
	on         atomic.Bool
	brightness atomic.Uint32

	mu     sync.RWMutex
	config *proto.Configuration
	gen    uint64
}

// NewState returns the boot default: powered on, default brightness, no
// configuration installed.
func NewState() *State {
	s := new(State)
	s.on.Store(true)
	s.brightness.Store(DefaultBrightness)
	return s
}

// On reports whether the wall is powered on.
func (s *State) On() bool { return s.on.Load() }

// SetOn switches the wall on or off.
func (s *State) SetOn(on bool) { s.on.Store(on) }

// Brightness returns the output brightness in percent.
func (s *State) Brightness() uint8 { return uint8(s.brightness.Load()) }

// SetBrightness sets the output brightness, clamped to the protocol maximum.
func (s *State) SetBrightness(b uint8) {
	if b > proto.MaxBrightness {
		b = proto.MaxBrightness
	}
	s.brightness.Store(uint32(b))
}

// SetConfig installs a validated configuration, replacing the previous one.
func (s *State) SetConfig(c *proto.Configuration) {
	s.mu.Lock()
	s.config = c
	s.gen++
	s.mu.Unlock()
}

// Config returns the installed configuration, or nil before the first
// install, with a generation counter that changes on every install.
func (s *State) Config() (*proto.Configuration, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config, s.gen
}
