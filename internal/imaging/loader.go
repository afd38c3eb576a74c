package imaging

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"sync"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/disintegration/imaging"
)

// FrameCache provides thread-safe caching of frames loaded from disk.
//
// Frames are decoded once, normalised to *image.NRGBA and keyed by the path
// string they were loaded with. Replaying the same frame sequence through
// several sessions therefore touches the disk once per file.
//
// Cached frames remain in memory until removed via Evict() or Clear().
type FrameCache struct {
	mu     sync.RWMutex
	frames map[string]*image.NRGBA
}

// NewFrameCache creates an empty frame cache.
func NewFrameCache() *FrameCache {
	return &FrameCache{
		frames: make(map[string]*image.NRGBA),
	}
}

// Load retrieves a frame from the cache or decodes it from disk.
// Supported formats are PNG, JPEG, GIF and BMP.
func (c *FrameCache) Load(path string) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.frames[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	decoded, err := imgio.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load frame %s: %w", path, err)
	}
	if decoded.Bounds().Empty() {
		return nil, fmt.Errorf("failed to load frame %s: %w", path, ErrEmptyFrame)
	}
	img := imaging.Clone(decoded)

	c.mu.Lock()
	c.frames[path] = img
	c.mu.Unlock()

	return img, nil
}

// Len returns the number of cached frames.
func (c *FrameCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.frames)
}

// Clear removes all frames from the cache.
func (c *FrameCache) Clear() {
	c.mu.Lock()
	c.frames = make(map[string]*image.NRGBA)
	c.mu.Unlock()
}

// Evict removes a single frame by the path it was loaded with.
func (c *FrameCache) Evict(path string) {
	c.mu.Lock()
	delete(c.frames, path)
	c.mu.Unlock()
}

// SavePNG writes img to path as PNG.
func SavePNG(path string, img image.Image) error {
	if err := imgio.Save(path, img, imgio.PNGEncoder()); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}
