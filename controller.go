package matrixwall

import (
	"fmt"
	"sync"

	"github.com/BeatGlow/matrixwall/proto"
	"github.com/BeatGlow/matrixwall/storage"
)

// Result carries the outcome of a query command. Mutating commands return a
// zero Result.
type Result struct {
	// Exists answers a StorageExists query.
	Exists bool
}

// Controller applies decoded commands to the display state and the sprite
// store. Commands are serialized: one command is fully applied or rejected
// before the next starts, in receipt order.
type Controller struct {
	mu       sync.Mutex
	state    *State
	store    *storage.Store
	renderer *Renderer
}

// NewController wires the command path. The renderer may be nil when no
// render loop runs, as in host-side tooling.
func NewController(state *State, store *storage.Store, renderer *Renderer) *Controller {
	return &Controller{
		state:    state,
		store:    store,
		renderer: renderer,
	}
}

// Apply executes one command. An error means the command had no effect.
func (c *Controller) Apply(cmd proto.Command) (Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch cmd := cmd.(type) {
	case proto.SetState:
		c.state.SetOn(cmd.On)
		return Result{}, nil

	case proto.SetConfig:
		// Decoded commands are already validated; install is unconditional.
		c.state.SetConfig(&cmd.Config)
		if c.renderer != nil {
			c.renderer.InvalidateAll()
		}
		return Result{}, nil

	case proto.SetSettings:
		c.state.SetBrightness(cmd.Brightness)
		return Result{}, nil

	case proto.StorageFormat:
		if err := c.store.Format(); err != nil {
			return Result{}, err
		}
		if c.renderer != nil {
			c.renderer.InvalidateAll()
		}
		return Result{}, nil

	case proto.StorageUpload:
		if err := c.store.Upload(cmd.Key, cmd.Payload); err != nil {
			return Result{}, err
		}
		if c.renderer != nil {
			c.renderer.Invalidate(cmd.Key)
		}
		return Result{}, nil

	case proto.StorageExists:
		return Result{Exists: c.store.Exists(cmd.Key)}, nil

	case proto.StorageDelete:
		if err := c.store.Delete(cmd.Key); err != nil {
			return Result{}, err
		}
		if c.renderer != nil {
			c.renderer.Invalidate(cmd.Key)
		}
		return Result{}, nil

	default:
		return Result{}, fmt.Errorf("matrixwall: unknown command %T", cmd)
	}
}
