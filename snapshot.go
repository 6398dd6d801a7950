package main

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"os"
)

// CellCoord is a (col, row) pair
type CellCoord struct {
	Col int `json:"col"`
	Row int `json:"row"`
}

// GridSnapshot is the persisted form of a built grid: its parameters and obstacle cells
type GridSnapshot struct {
	Config        GridConfig  `json:"config"`
	ObstacleCells []CellCoord `json:"obstacleCells"`
}

// NewGridSnapshot captures a grid
func NewGridSnapshot(g *Grid) *GridSnapshot {
	obstacles := g.ObstacleNodes()
	cells := make([]CellCoord, 0, len(obstacles))
	for _, n := range obstacles {
		cells = append(cells, CellCoord{Col: n.Col, Row: n.Row})
	}
	return &GridSnapshot{Config: g.Config(), ObstacleCells: cells}
}

// Detector reports an overlap for queries centred in a recorded obstacle cell
func (s *GridSnapshot) Detector() ObstacleDetector {
	blocked := make(map[CellCoord]bool, len(s.ObstacleCells))
	for _, c := range s.ObstacleCells {
		blocked[c] = true
	}
	cfg := s.Config

	return DetectorFunc(func(center Vec3, radius float64, layer string) bool {
		col := int(math.Floor((center.X - cfg.Origin.X) / cfg.CellSize))
		row := int(math.Floor((center.Z - cfg.Origin.Z) / cfg.CellSize))
		return blocked[CellCoord{Col: col, Row: row}]
	})
}

// Build reconstructs the grid through the normal construction path
func (s *GridSnapshot) Build() (*Grid, error) {
	return NewGrid(s.Config, s.Detector())
}

// SaveGridSnapshot serializes and saves the grid to a JSON file
func SaveGridSnapshot(g *Grid, filename string) error {
	log.Printf("💾 Saving grid snapshot to %s...\n", filename)

	data, err := json.MarshalIndent(NewGridSnapshot(g), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal grid: %w", err)
	}

	err = os.WriteFile(filename, data, 0644)
	if err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	log.Printf("   ✅ Snapshot saved (%d bytes)\n", len(data))
	return nil
}

// LoadGridSnapshot deserializes a snapshot from a JSON file
func LoadGridSnapshot(filename string) (*GridSnapshot, error) {
	log.Printf("📂 Loading grid snapshot from %s...\n", filename)

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var snapshot GridSnapshot
	err = json.Unmarshal(data, &snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal grid: %w", err)
	}

	log.Printf("   ✅ Snapshot loaded: %d x %d, %d obstacle cells\n",
		snapshot.Config.NumColumns, snapshot.Config.NumRows, len(snapshot.ObstacleCells))
	return &snapshot, nil
}

// GridLines returns the cell boundaries as line segments for visualization:
// numRows+1 lines along X followed by numColumns+1 lines along Z
func (g *Grid) GridLines() [][2]Vec3 {
	width := float64(g.numColumns) * g.cellSize
	height := float64(g.numRows) * g.cellSize

	lines := make([][2]Vec3, 0, g.numRows+g.numColumns+2)

	for row := 0; row <= g.numRows; row++ {
		start := g.origin.Add(Vec3{Z: float64(row) * g.cellSize})
		end := start.Add(Vec3{X: width})
		lines = append(lines, [2]Vec3{start, end})
	}

	for col := 0; col <= g.numColumns; col++ {
		start := g.origin.Add(Vec3{X: float64(col) * g.cellSize})
		end := start.Add(Vec3{Z: height})
		lines = append(lines, [2]Vec3{start, end})
	}

	return lines
}
