package geo

import (
	"math"
	"sort"
	"sync"
)

// Hit is one index result.
type Hit[K comparable] struct {
	Key      K
	Point    Point
	Distance float64
}

// Index answers "everything within r metres of p, nearest first".
type Index[K comparable] interface {
	Insert(key K, p Point)
	Remove(key K)
	Within(center Point, radius float64) []Hit[K]
	Len() int
}

type cell struct{ x, y int }

// GridIndex buckets points into fixed lon/lat cells. Lookups scan only the cells
// overlapping the query's bounding box. Safe for concurrent use.
type GridIndex[K comparable] struct {
	mu      sync.RWMutex
	cellDeg float64
	cells   map[cell]map[K]struct{}
	points  map[K]Point
}

// NewGridIndex creates an index with cellDeg-sized cells; values <= 0 default to 0.1°
// (roughly 11 km of latitude).
func NewGridIndex[K comparable](cellDeg float64) *GridIndex[K] {
	if cellDeg <= 0 {
		cellDeg = 0.1
	}
	return &GridIndex[K]{
		cellDeg: cellDeg,
		cells:   map[cell]map[K]struct{}{},
		points:  map[K]Point{},
	}
}

func (g *GridIndex[K]) cellOf(p Point) cell {
	return cell{
		x: int(math.Floor(p.Longitude / g.cellDeg)),
		y: int(math.Floor(p.Latitude / g.cellDeg)),
	}
}

func (g *GridIndex[K]) Insert(key K, p Point) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if old, ok := g.points[key]; ok {
		g.removeLocked(key, old)
	}
	c := g.cellOf(p)
	bucket := g.cells[c]
	if bucket == nil {
		bucket = map[K]struct{}{}
		g.cells[c] = bucket
	}
	bucket[key] = struct{}{}
	g.points[key] = p
}

func (g *GridIndex[K]) Remove(key K) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if p, ok := g.points[key]; ok {
		g.removeLocked(key, p)
	}
}

func (g *GridIndex[K]) removeLocked(key K, p Point) {
	c := g.cellOf(p)
	if bucket := g.cells[c]; bucket != nil {
		delete(bucket, key)
		if len(bucket) == 0 {
			delete(g.cells, c)
		}
	}
	delete(g.points, key)
}

func (g *GridIndex[K]) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.points)
}

func (g *GridIndex[K]) Within(center Point, radius float64) []Hit[K] {
	g.mu.RLock()
	defer g.mu.RUnlock()

	box := BoundingBox(center, radius)
	lo := g.cellOf(Point{Longitude: box.MinLon, Latitude: box.MinLat})
	hi := g.cellOf(Point{Longitude: box.MaxLon, Latitude: box.MaxLat})

	hits := []Hit[K]{}
	consider := func(key K) {
		p := g.points[key]
		if !box.Contains(p) {
			return
		}
		if d := Distance(center, p); d <= radius {
			hits = append(hits, Hit[K]{Key: key, Point: p, Distance: d})
		}
	}

	span := (hi.x - lo.x + 1) * (hi.y - lo.y + 1)
	if span > len(g.cells) {
		// Sparse grid: walking the occupied cells is cheaper than the box.
		for c, bucket := range g.cells {
			if c.x < lo.x || c.x > hi.x || c.y < lo.y || c.y > hi.y {
				continue
			}
			for key := range bucket {
				consider(key)
			}
		}
	} else {
		for x := lo.x; x <= hi.x; x++ {
			for y := lo.y; y <= hi.y; y++ {
				for key := range g.cells[cell{x: x, y: y}] {
					consider(key)
				}
			}
		}
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	return hits
}

var _ Index[string] = (*GridIndex[string])(nil)
