package main

import (
	"github.com/paulmach/orb"
)

// DefaultObstacleLayer is the layer grid construction classifies against
const DefaultObstacleLayer = "Obstacles"

// Obstacle is a static piece of scene geometry on the ground plane.
// Either Polygon is set, or the obstacle is a disc at Center with Radius.
type Obstacle struct {
	Layer   string      `json:"layer"`
	Polygon orb.Polygon `json:"polygon,omitempty"`
	Center  orb.Point   `json:"center,omitempty"`
	Radius  float64     `json:"radius,omitempty"`
}

// IsDisc reports whether the obstacle is a disc rather than a polygon
func (o Obstacle) IsDisc() bool {
	return len(o.Polygon) == 0
}

// Bound returns the obstacle's axis-aligned bounding box
func (o Obstacle) Bound() orb.Bound {
	if o.IsDisc() {
		return circleBound(o.Center, o.Radius)
	}
	return o.Polygon.Bound()
}

// Overlaps checks whether a circle on the ground plane touches the obstacle
func (o Obstacle) Overlaps(center orb.Point, radius float64) bool {
	if o.IsDisc() {
		dx := center[0] - o.Center[0]
		dy := center[1] - o.Center[1]
		reach := radius + o.Radius
		return dx*dx+dy*dy <= reach*reach
	}
	return circleOverlapsPolygon(center, radius, o.Polygon)
}

// PrepareObstacles runs the preprocessing passes before indexing:
// optional outline simplification, then removal of contained obstacles
func PrepareObstacles(obstacles []Obstacle, simplifyTolerance float64) []Obstacle {
	prepared := obstacles
	if simplifyTolerance > 0 {
		prepared = SimplifyObstacles(prepared, simplifyTolerance)
	}
	return RemoveContainedObstacles(prepared)
}
