package main

import (
	"log"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// RemoveContainedObstacles drops obstacles fully contained within another obstacle
// of the same layer. They can never change a cell's classification.
func RemoveContainedObstacles(obstacles []Obstacle) []Obstacle {
	if len(obstacles) <= 1 {
		return obstacles
	}

	result := make([]Obstacle, 0, len(obstacles))
	contained := make([]bool, len(obstacles))

	// Check each obstacle against all others
	for i := 0; i < len(obstacles); i++ {
		if contained[i] {
			continue
		}

		for j := 0; j < len(obstacles); j++ {
			if i == j || contained[j] || obstacles[i].Layer != obstacles[j].Layer {
				continue
			}

			if isObstacleContainedIn(obstacles[i], obstacles[j]) {
				contained[i] = true
				break
			}

			if isObstacleContainedIn(obstacles[j], obstacles[i]) {
				contained[j] = true
			}
		}
	}

	for i := 0; i < len(obstacles); i++ {
		if !contained[i] {
			result = append(result, obstacles[i])
		}
	}

	if removed := len(obstacles) - len(result); removed > 0 {
		log.Printf("   Obstacles after removing contained: %d (removed %d)\n", len(result), removed)
	}

	return result
}

// isObstacleContainedIn checks if obstacle a lies entirely inside obstacle b.
// Only polygon containers are considered; discs are never treated as containers.
func isObstacleContainedIn(a, b Obstacle) bool {
	if b.IsDisc() {
		return false
	}

	// Quick bounding box check first
	if !isBoundContained(a.Bound(), b.Bound()) {
		return false
	}

	if a.IsDisc() {
		return planar.PolygonContains(b.Polygon, a.Center) &&
			!circleOverlapsRing(a.Center, a.Radius, b.Polygon[0]) &&
			!touchesHole(a, b.Polygon)
	}

	return isPolygonContainedIn(a.Polygon, b.Polygon)
}

// isPolygonContainedIn checks whether the filled area of inner lies inside outer.
// Every vertex must be inside, no edge may touch an outline of outer (concave
// notches, holes), and no hole of outer may sit under inner.
func isPolygonContainedIn(inner, outer orb.Polygon) bool {
	if len(inner) == 0 || len(inner[0]) == 0 || len(outer) == 0 {
		return false
	}
	shell := inner[0]

	for _, v := range shell {
		if !planar.PolygonContains(outer, v) {
			return false
		}
	}

	for _, ring := range outer {
		if ringsIntersect(shell, ring) {
			return false
		}
	}

	for _, hole := range outer[1:] {
		for _, v := range hole {
			if planar.RingContains(shell, v) {
				return false
			}
		}
	}

	return true
}

// touchesHole checks whether a disc reaches into any hole of the polygon
func touchesHole(disc Obstacle, polygon orb.Polygon) bool {
	for _, hole := range polygon[1:] {
		if planar.RingContains(hole, disc.Center) || circleOverlapsRing(disc.Center, disc.Radius, hole) {
			return true
		}
	}
	return false
}

// isBoundContained checks if bound a is contained in bound b
func isBoundContained(a, b orb.Bound) bool {
	return a.Min[0] >= b.Min[0] && a.Max[0] <= b.Max[0] &&
		a.Min[1] >= b.Min[1] && a.Max[1] <= b.Max[1]
}
