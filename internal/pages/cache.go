package pages

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of decoded pages kept in memory
const DefaultCacheSize = 24

// CacheKey identifies a decoded page of one document session
type CacheKey struct {
	Session uuid.UUID
	Page    int
	Variant string
}

// Cache keeps recently decoded pages. Keys carry the document session so a
// page of a previous document is never served for the current one.
type Cache struct {
	lru *lru.Cache[CacheKey, image.Image]
}

// NewCache creates a cache holding up to size pages
func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	c, err := lru.New[CacheKey, image.Image](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create page cache: %w", err)
	}
	return &Cache{lru: c}, nil
}

// Get returns a cached page
func (c *Cache) Get(key CacheKey) (image.Image, bool) {
	return c.lru.Get(key)
}

// Put stores a decoded page
func (c *Cache) Put(key CacheKey, img image.Image) {
	c.lru.Add(key, img)
}

// Contains reports whether key is cached without touching recency
func (c *Cache) Contains(key CacheKey) bool {
	return c.lru.Contains(key)
}

// Len returns the number of cached pages
func (c *Cache) Len() int { return c.lru.Len() }

// Purge empties the cache
func (c *Cache) Purge() { c.lru.Purge() }

// Decode decodes an encoded page image, honouring EXIF orientation
func Decode(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode page image: %w", err)
	}
	return img, nil
}
