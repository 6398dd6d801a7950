package main

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/simplify"
)

// SimplifyObstacle reduces polygon outline complexity using Douglas-Peucker.
// Discs and polygons that would collapse below a triangle are returned unchanged.
func SimplifyObstacle(obstacle Obstacle, tolerance float64) Obstacle {
	if obstacle.IsDisc() || tolerance <= 0 {
		return obstacle
	}

	simplified, ok := simplify.DouglasPeucker(tolerance).Simplify(obstacle.Polygon.Clone()).(orb.Polygon)
	if !ok || len(simplified) == 0 || len(simplified[0]) < 4 {
		return obstacle // Failed to simplify adequately
	}

	// Holes that degenerate are dropped, the outer ring is kept
	rings := make(orb.Polygon, 0, len(simplified))
	rings = append(rings, simplified[0])
	for _, hole := range simplified[1:] {
		if len(hole) >= 4 {
			rings = append(rings, hole)
		}
	}

	obstacle.Polygon = rings
	return obstacle
}

// SimplifyObstacles simplifies multiple obstacles
func SimplifyObstacles(obstacles []Obstacle, tolerance float64) []Obstacle {
	simplified := make([]Obstacle, len(obstacles))
	for i, o := range obstacles {
		simplified[i] = SimplifyObstacle(o, tolerance)
	}
	return simplified
}
