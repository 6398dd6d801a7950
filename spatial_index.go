package main

import (
	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
)

// minQueryExtent keeps zero-radius queries representable as an R-tree rectangle
const minQueryExtent = 1e-9

// ObstacleEntry wraps an obstacle for R-tree storage
type ObstacleEntry struct {
	Obstacle Obstacle
	BBox     rtreego.Rect
}

// Bounds implements rtreego.Spatial interface
func (e *ObstacleEntry) Bounds() rtreego.Rect {
	return e.BBox
}

// ObstacleIndex manages obstacle overlap queries. It is the production ObstacleDetector.
type ObstacleIndex struct {
	tree *rtreego.Rtree
	size int
}

// NewObstacleIndex creates a new spatial index
func NewObstacleIndex(obstacles []Obstacle) *ObstacleIndex {
	tree := rtreego.NewTree(2, 25, 50) // 2D, min 25, max 50 entries per node

	size := 0
	for _, obstacle := range obstacles {
		bbox, err := boundToRect(obstacle.Bound())
		if err != nil {
			continue
		}
		tree.Insert(&ObstacleEntry{
			Obstacle: obstacle,
			BBox:     bbox,
		})
		size++
	}

	return &ObstacleIndex{tree: tree, size: size}
}

// Size returns the number of indexed obstacles
func (si *ObstacleIndex) Size() int {
	return si.size
}

// QueryRegion returns obstacles on the given layer whose bounding boxes intersect the bound.
// An empty layer matches every obstacle.
func (si *ObstacleIndex) QueryRegion(bound orb.Bound, layer string) []Obstacle {
	bbox, err := boundToRect(bound)
	if err != nil {
		return []Obstacle{}
	}

	results := si.tree.SearchIntersect(bbox, layerFilter(layer))
	obstacles := make([]Obstacle, 0, len(results))

	for _, item := range results {
		entry := item.(*ObstacleEntry)
		obstacles = append(obstacles, entry.Obstacle)
	}

	return obstacles
}

// Overlaps implements ObstacleDetector: broad phase on the R-tree, exact test per candidate
func (si *ObstacleIndex) Overlaps(center Vec3, radius float64, layer string) bool {
	p := center.Planar()
	for _, obstacle := range si.QueryRegion(circleBound(p, radius), layer) {
		if obstacle.Overlaps(p, radius) {
			return true
		}
	}
	return false
}

// layerFilter refuses entries that are not on the requested layer
func layerFilter(layer string) rtreego.Filter {
	return func(results []rtreego.Spatial, object rtreego.Spatial) (refuse, abort bool) {
		if layer == "" {
			return false, false
		}
		entry, ok := object.(*ObstacleEntry)
		return !ok || entry.Obstacle.Layer != layer, false
	}
}

// boundToRect converts a ground-plane bound to an R-tree rectangle
func boundToRect(bound orb.Bound) (rtreego.Rect, error) {
	return rtreego.NewRect(
		rtreego.Point{bound.Min[0], bound.Min[1]},
		[]float64{
			max(bound.Max[0]-bound.Min[0], minQueryExtent),
			max(bound.Max[1]-bound.Min[1], minQueryExtent),
		},
	)
}
