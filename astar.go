package main

import (
	"fmt"
	"time"
)

// UpdatePolicy decides what happens when an already-discovered neighbour is reached again
type UpdatePolicy int

const (
	// UpdateAlways overwrites a non-closed neighbour's cost, score and parent on every
	// visit, even when the new cost is worse, and queues it again.
	UpdateAlways UpdatePolicy = iota

	// UpdateIfBetter only relaxes a neighbour when the new cost is strictly lower (canonical A*)
	UpdateIfBetter
)

func (p UpdatePolicy) String() string {
	switch p {
	case UpdateAlways:
		return "always"
	case UpdateIfBetter:
		return "if-better"
	default:
		return fmt.Sprintf("UpdatePolicy(%d)", int(p))
	}
}

// ParseUpdatePolicy maps a configuration string to a policy. Empty selects UpdateAlways.
func ParseUpdatePolicy(s string) (UpdatePolicy, error) {
	switch s {
	case "", "always":
		return UpdateAlways, nil
	case "if-better":
		return UpdateIfBetter, nil
	default:
		return UpdateAlways, fmt.Errorf("unknown update policy %q", s)
	}
}

// Options defines parameters for the search
type Options struct {
	Policy UpdatePolicy
}

// Option is a function that modifies Options
type Option func(*Options)

// WithUpdatePolicy selects how rediscovered neighbours are handled
func WithUpdatePolicy(policy UpdatePolicy) Option {
	return func(options *Options) { options.Policy = policy }
}

// Result contains the outcome of a search
type Result struct {
	Path          []*Node
	TotalCost     float64
	ExpandedNodes int
	Found         bool
}

// searchRecord is the per-query bookkeeping for one cell
type searchRecord struct {
	costSoFar float64
	fScore    float64
	parent    int // Index of the predecessor, -1 for none
	seen      bool
}

// PathFinder runs A* over a grid. All search state is allocated per call,
// so one PathFinder can serve concurrent queries.
type PathFinder struct {
	grid    *Grid
	options Options
}

// NewPathFinder creates a path finder bound to a grid
func NewPathFinder(grid *Grid, options ...Option) *PathFinder {
	searchOptions := Options{Policy: UpdateAlways}
	for _, option := range options {
		option(&searchOptions)
	}
	return &PathFinder{grid: grid, options: searchOptions}
}

// Grid returns the grid this path finder searches
func (pf *PathFinder) Grid() *Grid {
	return pf.grid
}

// Policy returns the configured neighbour update policy
func (pf *PathFinder) Policy() UpdatePolicy {
	return pf.options.Policy
}

// heuristic is the straight-line distance between cell centres
func (pf *PathFinder) heuristic(a, b *Node) float64 {
	return a.Position.Distance(b.Position)
}

// FindPath returns the nodes from start to goal inclusive, or ErrPathNotFound
func (pf *PathFinder) FindPath(start, goal *Node) ([]*Node, error) {
	result, err := pf.Search(start, goal)
	if err != nil {
		return nil, err
	}
	return result.Path, nil
}

// FindPathBetween resolves two world positions to cells and searches between them
func (pf *PathFinder) FindPathBetween(startPos, goalPos Vec3) ([]*Node, error) {
	start, err := pf.grid.NodeAtPosition(startPos)
	if err != nil {
		return nil, fmt.Errorf("start: %w", err)
	}
	goal, err := pf.grid.NodeAtPosition(goalPos)
	if err != nil {
		return nil, fmt.Errorf("goal: %w", err)
	}
	return pf.FindPath(start, goal)
}

// Search executes A* from start to goal
func (pf *PathFinder) Search(start, goal *Node) (Result, error) {
	startTime := time.Now()
	defer func() {
		pathQueryDuration.WithLabelValues(pf.options.Policy.String()).Observe(time.Since(startTime).Seconds())
	}()

	if !pf.grid.Owns(start) || !pf.grid.Owns(goal) {
		pathQueryTotal.WithLabelValues("invalid", pf.options.Policy.String()).Inc()
		return Result{}, ErrForeignNode
	}

	result := pf.search(start, goal)
	pathQueryExpanded.Observe(float64(result.ExpandedNodes))

	if !result.Found {
		pathQueryTotal.WithLabelValues("not_found", pf.options.Policy.String()).Inc()
		return result, ErrPathNotFound
	}

	pathQueryTotal.WithLabelValues("found", pf.options.Policy.String()).Inc()
	return result, nil
}

func (pf *PathFinder) search(start, goal *Node) Result {
	// An obstacle goal is never returned by GetNeighbours, so it can only be reached as the start
	if goal.IsObstacle {
		return Result{}
	}

	size := pf.grid.Size()
	records := make([]searchRecord, size)
	for i := range records {
		records[i].parent = -1
	}
	closed := make([]bool, size)

	openSet := NewPriorityFrontier(size/4, func(idx int) bool { return closed[idx] })

	// Setup start node
	records[start.index] = searchRecord{
		costSoFar: 0,
		fScore:    pf.heuristic(start, goal),
		parent:    -1,
		seen:      true,
	}
	openSet.Push(start.index, records[start.index].fScore)

	stepCost := pf.grid.StepCost()
	expandedNodes := 0

	for {
		entry, ok := openSet.Pop()
		if !ok {
			return Result{ExpandedNodes: expandedNodes}
		}
		expandedNodes++

		node := pf.grid.nodes[entry.NodeIndex]

		// Goal reached?
		if node.index == goal.index {
			return Result{
				Path:          pf.reconstructPath(records, node.index),
				TotalCost:     records[node.index].costSoFar,
				ExpandedNodes: expandedNodes,
				Found:         true,
			}
		}

		for _, neighbour := range pf.grid.GetNeighbours(node) {
			if closed[neighbour.index] {
				continue
			}

			totalCost := records[node.index].costSoFar + stepCost
			rec := &records[neighbour.index]

			if pf.options.Policy == UpdateIfBetter && rec.seen && totalCost >= rec.costSoFar {
				continue
			}

			rec.costSoFar = totalCost
			rec.fScore = totalCost + pf.heuristic(neighbour, goal)
			rec.parent = node.index
			rec.seen = true

			openSet.Push(neighbour.index, rec.fScore)
		}

		// Finished with this node
		closed[node.index] = true
	}
}

// reconstructPath follows parent links back to the start and reverses them
func (pf *PathFinder) reconstructPath(records []searchRecord, goalIndex int) []*Node {
	path := make([]*Node, 0)
	for idx := goalIndex; idx != -1; idx = records[idx].parent {
		path = append(path, pf.grid.nodes[idx])
	}

	// reverse path
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
