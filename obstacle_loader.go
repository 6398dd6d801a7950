package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// LoadObstaclesFromDir loads all GeoJSON files from a directory.
// Unreadable or malformed files are logged and skipped.
func LoadObstaclesFromDir(dir string) ([]Obstacle, error) {
	var allObstacles []Obstacle

	files, err := filepath.Glob(filepath.Join(dir, "*.geojson"))
	if err != nil {
		return nil, err
	}

	log.Printf("Loading obstacles from %d GeoJSON files...\n", len(files))

	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			log.Printf("⚠️  Failed to read %s: %v\n", file, err)
			continue
		}

		obstacles, err := ParseObstacles(data)
		if err != nil {
			log.Printf("⚠️  Failed to parse %s: %v\n", file, err)
			continue
		}

		allObstacles = append(allObstacles, obstacles...)
		log.Printf("   ✅ Loaded %d obstacles from %s\n", len(obstacles), filepath.Base(file))
	}

	log.Printf("Total obstacles loaded: %d\n", len(allObstacles))
	return allObstacles, nil
}

// ParseObstacles decodes a GeoJSON FeatureCollection. GeoJSON [x, y] maps to world (X, Z).
//
// Feature properties:
//   - "layer": obstacle layer, defaults to DefaultObstacleLayer
//   - "radius": required for Point features, which become discs
func ParseObstacles(data []byte) ([]Obstacle, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal feature collection: %w", err)
	}

	var obstacles []Obstacle
	for _, feature := range fc.Features {
		obstacles = append(obstacles, featureToObstacles(feature)...)
	}
	return obstacles, nil
}

// featureToObstacles converts one feature's geometry to obstacles
func featureToObstacles(feature *geojson.Feature) []Obstacle {
	layer := feature.Properties.MustString("layer", DefaultObstacleLayer)

	switch geom := feature.Geometry.(type) {
	case orb.Polygon:
		if len(geom) == 0 {
			return nil
		}
		return []Obstacle{{Layer: layer, Polygon: geom}}

	case orb.MultiPolygon:
		obstacles := make([]Obstacle, 0, len(geom))
		for _, polygon := range geom {
			if len(polygon) > 0 {
				obstacles = append(obstacles, Obstacle{Layer: layer, Polygon: polygon})
			}
		}
		return obstacles

	case orb.Point:
		radius := feature.Properties.MustFloat64("radius", 0)
		if radius <= 0 {
			log.Printf("⚠️  Skipping point obstacle without positive radius at (%.3f, %.3f)\n", geom[0], geom[1])
			return nil
		}
		return []Obstacle{{Layer: layer, Center: geom, Radius: radius}}

	default:
		if feature.Geometry != nil {
			log.Printf("⚠️  Unsupported obstacle geometry: %s\n", feature.Geometry.GeoJSONType())
		}
		return nil
	}
}

// ObstaclesToFeatureCollection encodes obstacles back to GeoJSON
func ObstaclesToFeatureCollection(obstacles []Obstacle) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, o := range obstacles {
		var f *geojson.Feature
		if o.IsDisc() {
			f = geojson.NewFeature(o.Center)
			f.Properties["radius"] = o.Radius
		} else {
			f = geojson.NewFeature(o.Polygon)
		}
		f.Properties["layer"] = o.Layer
		fc.Append(f)
	}
	return fc
}
