package main

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Vec3 is a world-space position. The grid lies on the XZ plane, Y is up.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Add returns the component-wise sum
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// Sub returns the component-wise difference
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

// Magnitude returns the Euclidean length
func (v Vec3) Magnitude() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Distance calculates Euclidean distance between two positions
func (v Vec3) Distance(o Vec3) float64 {
	return v.Sub(o).Magnitude()
}

// Planar projects the position onto the ground plane (X, Z)
func (v Vec3) Planar() orb.Point {
	return orb.Point{v.X, v.Z}
}

// circleBound returns the axis-aligned box around a circle on the ground plane
func circleBound(center orb.Point, radius float64) orb.Bound {
	return orb.Bound{
		Min: orb.Point{center[0] - radius, center[1] - radius},
		Max: orb.Point{center[0] + radius, center[1] + radius},
	}
}

// circleOverlapsRing checks whether a circle touches any edge of a ring
func circleOverlapsRing(center orb.Point, radius float64, ring orb.Ring) bool {
	n := len(ring)
	for i := 0; i < n; i++ {
		a := ring[i]
		b := ring[(i+1)%n]
		if planar.DistanceFromSegment(a, b, center) <= radius {
			return true
		}
	}
	return false
}

// circleOverlapsPolygon checks if a circle intersects a polygon (outer ring minus holes)
func circleOverlapsPolygon(center orb.Point, radius float64, polygon orb.Polygon) bool {
	if len(polygon) == 0 || len(polygon[0]) == 0 {
		return false
	}

	// Centre inside the filled area
	if planar.PolygonContains(polygon, center) {
		return true
	}

	// Circle reaches across a boundary (outer ring or a hole edge)
	for _, ring := range polygon {
		if circleOverlapsRing(center, radius, ring) {
			return true
		}
	}

	return false
}

// segmentsIntersect checks if two segments cross, touch or overlap.
// Shared endpoints and collinear overlaps count as intersections.
func segmentsIntersect(p1, p2, p3, p4 orb.Point) bool {
	d1 := direction(p3, p4, p1)
	d2 := direction(p3, p4, p2)
	d3 := direction(p1, p2, p3)
	d4 := direction(p1, p2, p4)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}

	// Collinear and touching cases
	if d1 == 0 && onSegment(p3, p4, p1) {
		return true
	}
	if d2 == 0 && onSegment(p3, p4, p2) {
		return true
	}
	if d3 == 0 && onSegment(p1, p2, p3) {
		return true
	}
	if d4 == 0 && onSegment(p1, p2, p4) {
		return true
	}

	return false
}

// direction calculates the cross product to determine orientation
func direction(p1, p2, p3 orb.Point) float64 {
	return (p3[0]-p1[0])*(p2[1]-p1[1]) - (p2[0]-p1[0])*(p3[1]-p1[1])
}

// onSegment checks if q lies within the bounding box of segment pr
func onSegment(p, r, q orb.Point) bool {
	return q[0] <= math.Max(p[0], r[0]) && q[0] >= math.Min(p[0], r[0]) &&
		q[1] <= math.Max(p[1], r[1]) && q[1] >= math.Min(p[1], r[1])
}

// ringsIntersect reports whether any edge of a touches or crosses any edge of b
func ringsIntersect(a, b orb.Ring) bool {
	n, m := len(a), len(b)
	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			if segmentsIntersect(a[i], a[(i+1)%n], b[j], b[(j+1)%m]) {
				return true
			}
		}
	}
	return false
}
