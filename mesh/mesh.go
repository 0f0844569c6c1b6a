//
// Copyright (c) 2026 Osmose Engineering
//

// Package mesh is the geometry collaborator consumed by the field engine
// and the slicer: axis-aligned bounds, signed distance, and planar
// cross-sections, looked up by file path through a load-once cache.
package mesh

import (
	"sync"
)

// Point is a location in model space.
type Point struct {
	X, Y, Z float64
}

// Point2 is a planar vertex of a cross-section ring.
type Point2 struct {
	X, Y float64
}

// Ring is a closed loop of cross-section vertices. The last vertex
// implicitly connects back to the first.
type Ring []Point2

// Polygon is one filled region of a cross-section: an exterior boundary
// and any interior holes.
type Polygon struct {
	Outer Ring
	Holes []Ring
}

// Source answers geometry queries for one loaded mesh. Implementations
// must be safe for concurrent queries; the slicer calls them from layer
// workers.
type Source interface {
	// Bounds returns the axis-aligned extent of the mesh.
	Bounds() (min, max Point)
	// SignedDistance is negative inside, positive outside. Sign
	// correctness assumes a watertight mesh; loaders repair holes
	// best-effort before answering.
	SignedDistance(p Point) float64
	// CrossSection intersects the mesh with the plane at height z. A
	// plane that misses the mesh yields an empty polygon set, not an
	// error.
	CrossSection(z float64) []Polygon
}

// Loader turns a file path into a Source.
type Loader func(path string) (Source, error)

// Cache loads each mesh path exactly once and shares the Source across
// queries. A Cache is owned by one pipeline run; independent runs get
// independent caches.
type Cache struct {
	mu      sync.RWMutex
	load    Loader
	sources map[string]Source
}

// NewCache returns a cache backed by the given loader, or by LoadSTL when
// loader is nil.
func NewCache(loader Loader) *Cache {
	if loader == nil {
		loader = LoadSTL
	}
	return &Cache{
		load:    loader,
		sources: make(map[string]Source),
	}
}

// Source returns the loaded mesh for path, loading it on first use.
func (c *Cache) Source(path string) (Source, error) {
	c.mu.RLock()
	src, ok := c.sources[path]
	c.mu.RUnlock()
	if ok {
		return src, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if src, ok = c.sources[path]; ok {
		return src, nil
	}
	src, err := c.load(path)
	if err != nil {
		return nil, err
	}
	c.sources[path] = src
	return src, nil
}

// Bounds is a path-keyed convenience over Source.
func (c *Cache) Bounds(path string) (min, max Point, err error) {
	src, err := c.Source(path)
	if err != nil {
		return Point{}, Point{}, err
	}
	min, max = src.Bounds()
	return min, max, nil
}

// SignedDistance is a path-keyed convenience over Source.
func (c *Cache) SignedDistance(path string, p Point) (float64, error) {
	src, err := c.Source(path)
	if err != nil {
		return 0, err
	}
	return src.SignedDistance(p), nil
}

// CrossSection is a path-keyed convenience over Source.
func (c *Cache) CrossSection(path string, z float64) ([]Polygon, error) {
	src, err := c.Source(path)
	if err != nil {
		return nil, err
	}
	return src.CrossSection(z), nil
}
