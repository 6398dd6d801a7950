package main

import "errors"

var (
	// ErrInvalidGridConfiguration is returned when grid dimensions, cell size or epsilon are out of range
	ErrInvalidGridConfiguration = errors.New("invalid grid configuration")

	// ErrOutOfBounds is returned when a world position does not map to any cell
	ErrOutOfBounds = errors.New("position out of grid bounds")

	// ErrPathNotFound is returned when the open set empties before the goal is reached
	ErrPathNotFound = errors.New("path not found")

	// ErrForeignNode is returned when a node does not belong to the searched grid
	ErrForeignNode = errors.New("node does not belong to this grid")
)

// ErrGridNotBuilt is returned by the service when a query arrives before any grid exists
var ErrGridNotBuilt = errors.New("grid not built")
