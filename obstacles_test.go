package main

import (
	"testing"

	"github.com/paulmach/orb"
)

func rect(minX, minZ, maxX, maxZ float64) orb.Polygon {
	return orb.Polygon{{
		{minX, minZ}, {maxX, minZ}, {maxX, maxZ}, {minX, maxZ}, {minX, minZ},
	}}
}

func TestObstacleOverlaps(t *testing.T) {
	square := Obstacle{Layer: DefaultObstacleLayer, Polygon: rect(0, 0, 2, 2)}
	disc := Obstacle{Layer: DefaultObstacleLayer, Center: orb.Point{5, 5}, Radius: 1}
	holed := Obstacle{Layer: DefaultObstacleLayer, Polygon: orb.Polygon{
		rect(0, 0, 10, 10)[0],
		rect(3, 3, 7, 7)[0],
	}}

	tests := []struct {
		name     string
		obstacle Obstacle
		center   orb.Point
		radius   float64
		want     bool
	}{
		{"centre inside polygon", square, orb.Point{1, 1}, 0, true},
		{"circle reaches edge", square, orb.Point{2.25, 1}, 0.3, true},
		{"circle just short of edge", square, orb.Point{2.5, 1}, 0.3, false},
		{"circle reaches corner", square, orb.Point{2.2, 2.2}, 0.3, true},
		{"disc overlap", disc, orb.Point{6.5, 5}, 0.6, true},
		{"disc miss", disc, orb.Point{6.5, 5}, 0.4, false},
		{"inside hole", holed, orb.Point{5, 5}, 0.5, false},
		{"hole edge", holed, orb.Point{3.2, 5}, 0.3, true},
		{"filled ring", holed, orb.Point{1, 1}, 0.1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.obstacle.Overlaps(tt.center, tt.radius); got != tt.want {
				t.Errorf("Overlaps(%v, %v) = %v, want %v", tt.center, tt.radius, got, tt.want)
			}
		})
	}
}

func TestObstacleIndexLayers(t *testing.T) {
	index := NewObstacleIndex([]Obstacle{
		{Layer: DefaultObstacleLayer, Polygon: rect(0, 0, 1, 1)},
		{Layer: "Water", Polygon: rect(4, 4, 5, 5)},
		{Layer: DefaultObstacleLayer, Center: orb.Point{8, 8}, Radius: 0.5},
	})

	if index.Size() != 3 {
		t.Fatalf("Size() = %d, want 3", index.Size())
	}

	if !index.Overlaps(Vec3{X: 0.5, Y: 12, Z: 0.5}, 0.1, DefaultObstacleLayer) {
		t.Error("expected overlap with polygon on the default layer")
	}
	if index.Overlaps(Vec3{X: 4.5, Z: 4.5}, 0.1, DefaultObstacleLayer) {
		t.Error("geometry on another layer must be ignored")
	}
	if !index.Overlaps(Vec3{X: 4.5, Z: 4.5}, 0.1, "Water") {
		t.Error("expected overlap on the Water layer")
	}
	if !index.Overlaps(Vec3{X: 8, Z: 8}, 0, DefaultObstacleLayer) {
		t.Error("zero-radius query at disc centre should overlap")
	}
	if index.Overlaps(Vec3{X: 2.5, Z: 2.5}, 0.5, DefaultObstacleLayer) {
		t.Error("empty region should not overlap")
	}

	if got := len(index.QueryRegion(orb.Bound{Min: orb.Point{-1, -1}, Max: orb.Point{10, 10}}, "")); got != 3 {
		t.Errorf("QueryRegion with empty layer = %d obstacles, want 3", got)
	}
	if got := len(index.QueryRegion(orb.Bound{Min: orb.Point{-1, -1}, Max: orb.Point{10, 10}}, "Water")); got != 1 {
		t.Errorf("QueryRegion on Water = %d obstacles, want 1", got)
	}
}

func TestGridFromObstacleIndex(t *testing.T) {
	cfg := GridConfig{NumRows: 5, NumColumns: 5, CellSize: 1, ObstacleEpsilon: DefaultObstacleEpsilon}

	t.Run("solid wall", func(t *testing.T) {
		index := NewObstacleIndex([]Obstacle{{Layer: DefaultObstacleLayer, Polygon: rect(0, 2, 5, 3)}})
		g, err := NewGrid(cfg, index)
		if err != nil {
			t.Fatalf("NewGrid: %v", err)
		}

		for col := 0; col < 5; col++ {
			for row := 0; row < 5; row++ {
				if want := row != 2; g.IsTraversable(col, row) != want {
					t.Errorf("IsTraversable(%d, %d) = %v, want %v", col, row, !want, want)
				}
			}
		}
		if _, err := NewPathFinder(g).FindPath(mustNode(t, g, 0, 0), mustNode(t, g, 4, 4)); err == nil {
			t.Error("expected no path across the wall")
		}
	})

	t.Run("wall with gap", func(t *testing.T) {
		index := NewObstacleIndex([]Obstacle{
			{Layer: DefaultObstacleLayer, Polygon: rect(0, 2, 2, 3)},
			{Layer: DefaultObstacleLayer, Polygon: rect(3, 2, 5, 3)},
		})
		g, err := NewGrid(cfg, index)
		if err != nil {
			t.Fatalf("NewGrid: %v", err)
		}

		if !g.IsTraversable(2, 2) {
			t.Fatal("gap cell should be traversable")
		}
		if n := len(g.ObstacleNodes()); n != 4 {
			t.Errorf("got %d obstacle cells, want 4", n)
		}

		path, err := NewPathFinder(g).FindPath(mustNode(t, g, 0, 0), mustNode(t, g, 4, 4))
		if err != nil {
			t.Fatalf("FindPath: %v", err)
		}
		assertContiguous(t, path)
	})

	t.Run("other layer ignored", func(t *testing.T) {
		index := NewObstacleIndex([]Obstacle{{Layer: "Decoration", Polygon: rect(0, 2, 5, 3)}})
		g, err := NewGrid(cfg, index)
		if err != nil {
			t.Fatalf("NewGrid: %v", err)
		}
		if n := len(g.ObstacleNodes()); n != 0 {
			t.Errorf("got %d obstacle cells, want 0", n)
		}
	})
}

func TestRemoveContainedObstacles(t *testing.T) {
	outer := Obstacle{Layer: DefaultObstacleLayer, Polygon: rect(0, 0, 10, 10)}
	inner := Obstacle{Layer: DefaultObstacleLayer, Polygon: rect(2, 2, 4, 4)}
	otherLayer := Obstacle{Layer: "Water", Polygon: rect(2, 2, 4, 4)}
	innerDisc := Obstacle{Layer: DefaultObstacleLayer, Center: orb.Point{5, 5}, Radius: 1}
	crossingDisc := Obstacle{Layer: DefaultObstacleLayer, Center: orb.Point{9.5, 5}, Radius: 1}

	// The contained obstacle comes first so it is dropped on its own iteration
	result := RemoveContainedObstacles([]Obstacle{inner, outer, otherLayer, innerDisc, crossingDisc})
	if len(result) != 3 {
		t.Fatalf("got %d obstacles, want 3: %+v", len(result), result)
	}

	want := []Obstacle{outer, otherLayer, crossingDisc}
	for i := range want {
		if result[i].Layer != want[i].Layer || result[i].IsDisc() != want[i].IsDisc() {
			t.Errorf("obstacle %d = %+v, want %+v", i, result[i], want[i])
		}
	}

	if got := RemoveContainedObstacles([]Obstacle{inner}); len(got) != 1 {
		t.Errorf("single obstacle should be kept, got %d", len(got))
	}
}

func TestRemoveContainedRespectsHoles(t *testing.T) {
	holed := Obstacle{Layer: DefaultObstacleLayer, Polygon: orb.Polygon{
		rect(0, 0, 10, 10)[0],
		rect(3, 3, 7, 7)[0],
	}}
	inHole := Obstacle{Layer: DefaultObstacleLayer, Center: orb.Point{5, 5}, Radius: 1}

	if got := RemoveContainedObstacles([]Obstacle{holed, inHole}); len(got) != 2 {
		t.Errorf("disc inside a hole must be kept, got %d obstacles", len(got))
	}

	// Every vertex lies in the filled ring, but the polygon covers the hole
	cover := Obstacle{Layer: DefaultObstacleLayer, Polygon: rect(1, 1, 9, 9)}
	if got := RemoveContainedObstacles([]Obstacle{cover, holed}); len(got) != 2 {
		t.Errorf("polygon covering a hole must be kept, got %d obstacles", len(got))
	}

	// Polygon inside the filled ring, clear of the hole
	strip := Obstacle{Layer: DefaultObstacleLayer, Polygon: rect(1, 1, 2, 9)}
	if got := RemoveContainedObstacles([]Obstacle{strip, holed}); len(got) != 1 {
		t.Errorf("polygon clear of the hole should be removed, got %d obstacles", len(got))
	}
}

// uShape is a 10x10 square with a notch open to +Z spanning x 3..7, z 3..10
func uShape() orb.Polygon {
	return orb.Polygon{{
		{0, 0}, {10, 0}, {10, 10}, {7, 10}, {7, 3}, {3, 3}, {3, 10}, {0, 10}, {0, 0},
	}}
}

func TestRemoveContainedRespectsConcaveOutlines(t *testing.T) {
	u := Obstacle{Layer: DefaultObstacleLayer, Polygon: uShape()}

	// Both ends sit in the arms, the middle spans the notch
	bar := Obstacle{Layer: DefaultObstacleLayer, Polygon: rect(1, 8, 9, 9)}
	if got := RemoveContainedObstacles([]Obstacle{bar, u}); len(got) != 2 {
		t.Errorf("polygon crossing a notch must be kept, got %d obstacles", len(got))
	}

	arm := Obstacle{Layer: DefaultObstacleLayer, Polygon: rect(1, 5, 2, 9)}
	if got := RemoveContainedObstacles([]Obstacle{arm, u}); len(got) != 1 {
		t.Errorf("polygon inside one arm should be removed, got %d obstacles", len(got))
	}

	// Touching the outline is not containment
	flush := Obstacle{Layer: DefaultObstacleLayer, Polygon: rect(0, 1, 2, 2)}
	if got := RemoveContainedObstacles([]Obstacle{flush, u}); len(got) != 2 {
		t.Errorf("polygon touching the outline must be kept, got %d obstacles", len(got))
	}
}

func TestPreparedObstaclesKeepCellClassification(t *testing.T) {
	cfg := GridConfig{NumRows: 10, NumColumns: 10, CellSize: 1, ObstacleEpsilon: DefaultObstacleEpsilon}

	scenes := map[string][]Obstacle{
		"hole covered": {
			{Layer: DefaultObstacleLayer, Polygon: orb.Polygon{rect(0, 0, 10, 10)[0], rect(3, 3, 7, 7)[0]}},
			{Layer: DefaultObstacleLayer, Polygon: rect(1, 1, 9, 9)},
		},
		"notch bridged": {
			{Layer: DefaultObstacleLayer, Polygon: uShape()},
			{Layer: DefaultObstacleLayer, Polygon: rect(1, 8, 9, 9)},
		},
	}

	for name, obstacles := range scenes {
		t.Run(name, func(t *testing.T) {
			raw, err := NewGrid(cfg, NewObstacleIndex(obstacles))
			if err != nil {
				t.Fatalf("NewGrid: %v", err)
			}
			prepared, err := NewGrid(cfg, NewObstacleIndex(PrepareObstacles(obstacles, 0)))
			if err != nil {
				t.Fatalf("NewGrid: %v", err)
			}

			for col := 0; col < cfg.NumColumns; col++ {
				for row := 0; row < cfg.NumRows; row++ {
					if raw.IsTraversable(col, row) != prepared.IsTraversable(col, row) {
						t.Errorf("cell (%d, %d) changed after preparation", col, row)
					}
				}
			}
		})
	}
}

func TestSimplifyObstacle(t *testing.T) {
	jagged := Obstacle{Layer: DefaultObstacleLayer, Polygon: orb.Polygon{{
		{0, 0}, {1, 0}, {2, 0}, {2, 2}, {0, 2}, {0, 0},
	}}}

	simplified := SimplifyObstacle(jagged, 0.1)
	ring := simplified.Polygon[0]
	if len(ring) != 5 {
		t.Fatalf("simplified ring has %d points, want 5: %v", len(ring), ring)
	}
	for _, p := range ring {
		if p == (orb.Point{1, 0}) {
			t.Errorf("collinear vertex (1, 0) should be removed: %v", ring)
		}
	}
	if len(jagged.Polygon[0]) != 6 {
		t.Error("input polygon must not be modified")
	}

	triangle := Obstacle{Polygon: orb.Polygon{{{0, 0}, {1, 0}, {0, 1}, {0, 0}}}}
	if got := SimplifyObstacle(triangle, 10); len(got.Polygon[0]) != 4 {
		t.Errorf("collapsing polygon should be returned unchanged, got %v", got.Polygon)
	}

	disc := Obstacle{Center: orb.Point{1, 1}, Radius: 2}
	if got := SimplifyObstacle(disc, 10); got.Radius != 2 || !got.IsDisc() {
		t.Errorf("disc should be returned unchanged, got %+v", got)
	}
}

const sampleGeoJSON = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {"layer": "Obstacles"},
      "geometry": {"type": "Polygon", "coordinates": [[[0,0],[1,0],[1,1],[0,1],[0,0]]]}
    },
    {
      "type": "Feature",
      "properties": {},
      "geometry": {"type": "MultiPolygon", "coordinates": [
        [[[2,2],[3,2],[3,3],[2,3],[2,2]]],
        [[[5,5],[6,5],[6,6],[5,6],[5,5]]]
      ]}
    },
    {
      "type": "Feature",
      "properties": {"layer": "Trees", "radius": 0.75},
      "geometry": {"type": "Point", "coordinates": [8, 9]}
    },
    {
      "type": "Feature",
      "properties": {},
      "geometry": {"type": "Point", "coordinates": [1, 1]}
    },
    {
      "type": "Feature",
      "properties": {},
      "geometry": {"type": "LineString", "coordinates": [[0,0],[1,1]]}
    }
  ]
}`

func TestParseObstacles(t *testing.T) {
	obstacles, err := ParseObstacles([]byte(sampleGeoJSON))
	if err != nil {
		t.Fatalf("ParseObstacles: %v", err)
	}
	if len(obstacles) != 4 {
		t.Fatalf("got %d obstacles, want 4", len(obstacles))
	}

	for _, o := range obstacles[:3] {
		if o.Layer != DefaultObstacleLayer || o.IsDisc() {
			t.Errorf("unexpected polygon obstacle %+v", o)
		}
	}

	tree := obstacles[3]
	if !tree.IsDisc() || tree.Layer != "Trees" || tree.Radius != 0.75 || tree.Center != (orb.Point{8, 9}) {
		t.Errorf("unexpected disc obstacle %+v", tree)
	}

	if _, err := ParseObstacles([]byte("not json")); err == nil {
		t.Error("expected error for malformed input")
	}
}

func TestObstaclesToFeatureCollection(t *testing.T) {
	obstacles := []Obstacle{
		{Layer: DefaultObstacleLayer, Polygon: rect(0, 0, 1, 1)},
		{Layer: "Trees", Center: orb.Point{3, 4}, Radius: 2},
	}

	data, err := ObstaclesToFeatureCollection(obstacles).MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}

	parsed, err := ParseObstacles(data)
	if err != nil {
		t.Fatalf("ParseObstacles: %v", err)
	}
	if len(parsed) != 2 || parsed[1].Radius != 2 || parsed[1].Layer != "Trees" {
		t.Errorf("unexpected obstacles %+v", parsed)
	}
}

func TestPrepareObstacles(t *testing.T) {
	obstacles := []Obstacle{
		{Layer: DefaultObstacleLayer, Polygon: rect(2, 2, 3, 3)},
		{Layer: DefaultObstacleLayer, Polygon: orb.Polygon{{
			{0, 0}, {5, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0},
		}}},
	}

	prepared := PrepareObstacles(obstacles, 0.5)
	if len(prepared) != 1 {
		t.Fatalf("got %d obstacles, want 1", len(prepared))
	}
	if n := len(prepared[0].Polygon[0]); n != 5 {
		t.Errorf("outer polygon has %d points after simplification, want 5", n)
	}
}
