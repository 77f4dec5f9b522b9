package matrixwall

import (
	"log"
	"sync"
	"time"

	"github.com/BeatGlow/matrixwall/pixel"
	"github.com/BeatGlow/matrixwall/proto"
	"github.com/BeatGlow/matrixwall/storage"
)

// bakedSprite is a sprite decoded out of flash with every frame expanded to
// a logical canvas fragment, so the render path never touches palettes or
// flash bytes.
type bakedSprite struct {
	frames    []*pixel.RGBImage
	frameTime time.Duration
	loaded    time.Time
}

// frame returns the frame to show at the given instant.
func (s *bakedSprite) frame(now time.Time) *pixel.RGBImage {
	if len(s.frames) == 1 || s.frameTime <= 0 {
		return s.frames[0]
	}
	i := int(now.Sub(s.loaded)/s.frameTime) % len(s.frames)
	return s.frames[i]
}

// spriteCache resolves sprite keys against the flash store and keeps the
// baked result until the key is invalidated by a storage mutation or a
// configuration change. Missing keys are cached as nil so a dangling
// reference costs one flash lookup, not one per frame.
type spriteCache struct {
	store *storage.Store

	mu      sync.Mutex
	sprites map[string]*bakedSprite
}

func newSpriteCache(store *storage.Store) *spriteCache {
	return &spriteCache{
		store:   store,
		sprites: make(map[string]*bakedSprite),
	}
}

// resolve returns the baked sprite for key, or nil when the key is absent or
// unreadable. The caller renders a placeholder for nil.
func (c *spriteCache) resolve(key string, now time.Time) *bakedSprite {
	c.mu.Lock()
	defer c.mu.Unlock()

	if baked, ok := c.sprites[key]; ok {
		return baked
	}

	baked := c.load(key, now)
	c.sprites[key] = baked
	return baked
}

func (c *spriteCache) load(key string, now time.Time) *bakedSprite {
	payload, err := c.store.Load(key)
	if err != nil {
		if debug {
			log.Printf("matrixwall: sprite %q unavailable: %v", key, err)
		}
		return nil
	}
	sprite, err := proto.DecodeSprite(payload)
	if err != nil {
		log.Printf("matrixwall: sprite %q corrupt: %v", key, err)
		return nil
	}
	return bake(sprite, now)
}

func bake(s *proto.Sprite, now time.Time) *bakedSprite {
	baked := &bakedSprite{
		frameTime: time.Duration(s.FrameTime) * time.Millisecond,
		loaded:    now,
	}
	w, h := int(s.Width), int(s.Height)
	for _, frame := range s.Frames {
		img := pixel.NewRGBImage(w, h)
		if s.Format == proto.SpriteRGB {
			copy(img.Pix, frame)
		} else {
			for i, idx := range frame {
				c := s.Palette[idx]
				img.Pix[i*3+0] = c.R
				img.Pix[i*3+1] = c.G
				img.Pix[i*3+2] = c.B
			}
		}
		baked.frames = append(baked.frames, img)
	}
	return baked
}

// invalidate drops one key after an upload or delete.
func (c *spriteCache) invalidate(key string) {
	c.mu.Lock()
	delete(c.sprites, key)
	c.mu.Unlock()
}

// reset drops everything after a format or configuration change.
func (c *spriteCache) reset() {
	c.mu.Lock()
	c.sprites = make(map[string]*bakedSprite)
	c.mu.Unlock()
}
