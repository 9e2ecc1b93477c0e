package imaging

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"path/filepath"
	"sync"
)

// ImageCache keeps decoded drawings so a client can load an image once and
// then classify, render and cross-check it without re-reading the file.
//
// Entries are keyed by the absolute, cleaned path, so "./seven.png" and
// "/work/seven.png" share one entry. ImageCache is safe for concurrent use.
// Entries stay until Evict.
//
//	cache := imaging.NewImageCache()
//	img, err := cache.Load("/tmp/seven.png")
//	if err != nil {
//	    return err
//	}
//	canvas, err := imaging.Rasterize(img, imaging.DefaultRasterOptions())
type ImageCache struct {
	mu      sync.RWMutex
	entries map[string]*cachedImage
}

// cachedImage is one decoded file.
type cachedImage struct {
	img    image.Image
	format string // decoder name: "png", "jpeg" or "gif"
	size   int64
}

// NewImageCache creates an empty cache.
func NewImageCache() *ImageCache {
	return &ImageCache{entries: make(map[string]*cachedImage)}
}

func cacheKey(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

// Load returns the cached image for path or decodes it from disk. PNG, JPEG
// and GIF are supported.
func (c *ImageCache) Load(path string) (image.Image, error) {
	e, err := c.entry(path)
	if err != nil {
		return nil, err
	}
	return e.img, nil
}

func (c *ImageCache) entry(path string) (*cachedImage, error) {
	key := cacheKey(path)

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return e, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	e = &cachedImage{img: img, format: format, size: stat.Size()}
	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
	return e, nil
}

// Len reports how many images are cached.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Evict drops path from the cache so the next Load reads the file again.
// Unknown paths are ignored.
func (c *ImageCache) Evict(path string) {
	key := cacheKey(path)
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// ImageInfo describes a loaded drawing.
type ImageInfo struct {
	Width  int `json:"width"`
	Height int `json:"height"`

	// Format is the decoder that read the file, whatever its extension.
	Format string `json:"format"`

	// ColorDepth is "8-bit" or "16-bit" per channel.
	ColorDepth string `json:"color_depth"`

	HasAlpha      bool  `json:"has_alpha"`
	FileSizeBytes int64 `json:"file_size_bytes"`

	// Square is true when the drawing needs no padding before rasterizing.
	Square bool `json:"square"`
}

// LoadImageInfo loads path through cache and reports its metadata. The size
// is the file size when it was decoded.
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	e, err := cache.entry(path)
	if err != nil {
		return nil, err
	}

	info := &ImageInfo{
		Format:        e.format,
		ColorDepth:    "8-bit",
		FileSizeBytes: e.size,
	}
	switch e.img.(type) {
	case *image.RGBA, *image.NRGBA:
		info.HasAlpha = true
	case *image.RGBA64, *image.NRGBA64:
		info.HasAlpha = true
		info.ColorDepth = "16-bit"
	case *image.Gray16:
		info.ColorDepth = "16-bit"
	}

	b := e.img.Bounds()
	info.Width, info.Height = b.Dx(), b.Dy()
	info.Square = info.Width == info.Height
	return info, nil
}
