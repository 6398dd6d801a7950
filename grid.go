package main

import (
	"fmt"
	"log"
	"math"
	"time"
)

// OutOfBounds is the sentinel coordinate returned for positions outside the grid
const OutOfBounds = -1

// MaxGridCells caps numRows*numColumns so construction cannot overflow or exhaust memory
const MaxGridCells = 1 << 24

// DefaultObstacleEpsilon shrinks the detection radius so geometry in adjacent cells is ignored
const DefaultObstacleEpsilon = 0.2

// GridConfig holds the construction parameters of a grid
type GridConfig struct {
	NumRows         int     `json:"numRows"`
	NumColumns      int     `json:"numColumns"`
	CellSize        float64 `json:"cellSize"`
	ObstacleEpsilon float64 `json:"obstacleEpsilon"`
	Origin          Vec3    `json:"origin"`
	ObstacleLayer   string  `json:"obstacleLayer"`
}

// Validate checks the configuration before any cell is built
func (c GridConfig) Validate() error {
	if c.NumRows <= 0 || c.NumColumns <= 0 {
		return fmt.Errorf("%w: dimensions must be positive, got %d rows x %d columns",
			ErrInvalidGridConfiguration, c.NumRows, c.NumColumns)
	}
	if c.NumRows > MaxGridCells/c.NumColumns {
		return fmt.Errorf("%w: %d rows x %d columns exceeds %d cells",
			ErrInvalidGridConfiguration, c.NumRows, c.NumColumns, MaxGridCells)
	}
	if !(c.CellSize > 0) || math.IsInf(c.CellSize, 0) {
		return fmt.Errorf("%w: cell size must be positive, got %v", ErrInvalidGridConfiguration, c.CellSize)
	}
	if c.ObstacleEpsilon < 0 || math.IsNaN(c.ObstacleEpsilon) {
		return fmt.Errorf("%w: obstacle epsilon must not be negative, got %v",
			ErrInvalidGridConfiguration, c.ObstacleEpsilon)
	}
	return nil
}

// ObstacleDetector answers whether any geometry on a layer overlaps a circle on the ground plane
type ObstacleDetector interface {
	Overlaps(center Vec3, radius float64, layer string) bool
}

// DetectorFunc adapts a plain function to ObstacleDetector
type DetectorFunc func(center Vec3, radius float64, layer string) bool

// Overlaps implements ObstacleDetector
func (f DetectorFunc) Overlaps(center Vec3, radius float64, layer string) bool {
	return f(center, radius, layer)
}

// Grid is a fixed-size rectangular spatial index over the XZ plane.
// Columns run along +X, rows along +Z. It is read-only once constructed.
type Grid struct {
	numRows         int
	numColumns      int
	cellSize        float64
	obstacleEpsilon float64
	origin          Vec3
	obstacleLayer   string

	nodes []*Node // Indexed col*numRows + row
}

// NewGrid validates the configuration and builds every cell, classifying each one
// through the detector. A nil detector builds an open field.
func NewGrid(config GridConfig, detector ObstacleDetector) (*Grid, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.ObstacleLayer == "" {
		config.ObstacleLayer = DefaultObstacleLayer
	}

	g := &Grid{
		numRows:         config.NumRows,
		numColumns:      config.NumColumns,
		cellSize:        config.CellSize,
		obstacleEpsilon: config.ObstacleEpsilon,
		origin:          config.Origin,
		obstacleLayer:   config.ObstacleLayer,
		nodes:           make([]*Node, config.NumRows*config.NumColumns),
	}
	g.build(detector)

	return g, nil
}

func (g *Grid) build(detector ObstacleDetector) {
	startTime := time.Now()

	radius := math.Max(g.cellSize/2-g.obstacleEpsilon, 0)
	obstacleCount := 0

	for col := 0; col < g.numColumns; col++ {
		for row := 0; row < g.numRows; row++ {
			idx := g.index(col, row)
			node := newNode(g.GetCellCenter(col, row), col, row, idx)

			if detector != nil && detector.Overlaps(node.Position, radius, g.obstacleLayer) {
				node.MarkAsObstacle()
				obstacleCount++
			}

			g.nodes[idx] = node
		}
	}

	gridBuildDuration.Observe(time.Since(startTime).Seconds())
	log.Printf("   ✅ Grid built: %d x %d cells (%d obstacles) in %v\n",
		g.numColumns, g.numRows, obstacleCount, time.Since(startTime))
}

// NumRows returns the number of rows
func (g *Grid) NumRows() int { return g.numRows }

// NumColumns returns the number of columns
func (g *Grid) NumColumns() int { return g.numColumns }

// CellSize returns the edge length of a cell
func (g *Grid) CellSize() float64 { return g.cellSize }

// Origin returns the grid's corner in world space
func (g *Grid) Origin() Vec3 { return g.origin }

// StepCost is the uniform cost of moving between adjacent cells
func (g *Grid) StepCost() float64 { return g.cellSize }

// Config returns the parameters the grid was built with
func (g *Grid) Config() GridConfig {
	return GridConfig{
		NumRows:         g.numRows,
		NumColumns:      g.numColumns,
		CellSize:        g.cellSize,
		ObstacleEpsilon: g.obstacleEpsilon,
		Origin:          g.origin,
		ObstacleLayer:   g.obstacleLayer,
	}
}

// Size returns the total number of cells
func (g *Grid) Size() int {
	return len(g.nodes)
}

func (g *Grid) index(col, row int) int {
	return col*g.numRows + row
}

func (g *Grid) inRange(col, row int) bool {
	return col >= 0 && row >= 0 && col < g.numColumns && row < g.numRows
}

// GetCellCenter returns the world-space centre of a cell
func (g *Grid) GetCellCenter(col, row int) Vec3 {
	pos := g.GetCellCorner(col, row)
	pos.X += g.cellSize / 2
	pos.Z += g.cellSize / 2
	return pos
}

// GetCellCorner returns the world-space minimum corner of a cell
func (g *Grid) GetCellCorner(col, row int) Vec3 {
	return g.origin.Add(Vec3{
		X: float64(col) * g.cellSize,
		Z: float64(row) * g.cellSize,
	})
}

// IsInBounds checks whether a position lies in the covered rectangle, far edges included
func (g *Grid) IsInBounds(pos Vec3) bool {
	width := float64(g.numColumns) * g.cellSize
	height := float64(g.numRows) * g.cellSize

	return pos.X >= g.origin.X &&
		pos.X <= g.origin.X+width &&
		pos.Z >= g.origin.Z &&
		pos.Z <= g.origin.Z+height
}

// GetGridCoordinates maps a position to (col, row), or (OutOfBounds, OutOfBounds).
// Positions on the far edges map to the last column or row.
func (g *Grid) GetGridCoordinates(pos Vec3) (int, int) {
	if !g.IsInBounds(pos) {
		return OutOfBounds, OutOfBounds
	}

	col := int(math.Floor((pos.X - g.origin.X) / g.cellSize))
	row := int(math.Floor((pos.Z - g.origin.Z) / g.cellSize))

	return min(col, g.numColumns-1), min(row, g.numRows-1)
}

// IsTraversable is false out of range or on obstacle cells. Total over all ints.
func (g *Grid) IsTraversable(col, row int) bool {
	return g.inRange(col, row) && !g.nodes[g.index(col, row)].IsObstacle
}

// NodeAt returns the node at (col, row)
func (g *Grid) NodeAt(col, row int) (*Node, bool) {
	if !g.inRange(col, row) {
		return nil, false
	}
	return g.nodes[g.index(col, row)], true
}

// NodeAtPosition resolves a world position to its cell's node
func (g *Grid) NodeAtPosition(pos Vec3) (*Node, error) {
	col, row := g.GetGridCoordinates(pos)
	if col == OutOfBounds {
		return nil, fmt.Errorf("%w: (%.3f, %.3f, %.3f)", ErrOutOfBounds, pos.X, pos.Y, pos.Z)
	}
	return g.nodes[g.index(col, row)], nil
}

// Owns reports whether the node is one of this grid's cells
func (g *Grid) Owns(node *Node) bool {
	return node != nil && node.index >= 0 && node.index < len(g.nodes) && g.nodes[node.index] == node
}

// neighbourOffsets lists the 4-connected offsets in their fixed order: west, east, south, north
var neighbourOffsets = [4][2]int{
	{-1, 0}, {1, 0}, {0, -1}, {0, 1},
}

// GetNeighbours returns the traversable 4-connected neighbours of a node
func (g *Grid) GetNeighbours(node *Node) []*Node {
	result := make([]*Node, 0, len(neighbourOffsets))

	for _, off := range neighbourOffsets {
		col, row := node.Col+off[0], node.Row+off[1]
		if g.IsTraversable(col, row) {
			result = append(result, g.nodes[g.index(col, row)])
		}
	}

	return result
}

// ObstacleNodes returns every obstacle cell in column-major order
func (g *Grid) ObstacleNodes() []*Node {
	obstacles := make([]*Node, 0)
	for _, n := range g.nodes {
		if n.IsObstacle {
			obstacles = append(obstacles, n)
		}
	}
	return obstacles
}
