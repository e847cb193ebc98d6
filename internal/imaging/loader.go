package imaging

import (
	"fmt"
	"image"
	"sync"

	"github.com/disintegration/imaging"
)

// FrameCache keeps decoded frames keyed by file path.
//
// A camera bridge that overwrites the same file on every capture must call
// Evict (or use LoadFresh) so the next detection sees the new frame.
//
// # Example Usage
//
//	cache := imaging.NewFrameCache()
//	frame, err := cache.Load("/tmp/camera/latest.jpg")
//	if err != nil {
//	    return err
//	}
//	cache.Evict("/tmp/camera/latest.jpg")
type FrameCache struct {
	mu     sync.RWMutex
	frames map[string]image.Image
}

// NewFrameCache creates an empty cache.
func NewFrameCache() *FrameCache {
	return &FrameCache{
		frames: make(map[string]image.Image),
	}
}

// Load returns the cached frame for path, decoding it from disk on first use.
//
// Supported formats are those of disintegration/imaging: PNG, JPEG, GIF,
// TIFF and BMP.
func (c *FrameCache) Load(path string) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.frames[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	return c.LoadFresh(path)
}

// LoadFresh decodes path from disk, replacing any cached copy. EXIF
// orientation is applied.
func (c *FrameCache) LoadFresh(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to load frame %s: %w", path, err)
	}

	c.mu.Lock()
	c.frames[path] = img
	c.mu.Unlock()

	return img, nil
}

// Evict drops path from the cache. Unknown paths are ignored.
func (c *FrameCache) Evict(path string) {
	c.mu.Lock()
	delete(c.frames, path)
	c.mu.Unlock()
}

// Clear drops every cached frame.
func (c *FrameCache) Clear() {
	c.mu.Lock()
	c.frames = make(map[string]image.Image)
	c.mu.Unlock()
}

// Len returns the number of cached frames.
func (c *FrameCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.frames)
}
