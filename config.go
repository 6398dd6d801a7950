package main

import (
	"encoding/json"
	"fmt"
	"os"
)

// ServerConfig is the service configuration file
type ServerConfig struct {
	Addr              string     `json:"addr"`
	Grid              GridConfig `json:"grid"`
	ObstacleDir       string     `json:"obstacleDir"`
	SnapshotFile      string     `json:"snapshotFile"`
	SimplifyTolerance float64    `json:"simplifyTolerance"`
	UpdatePolicy      string     `json:"updatePolicy"`
	MarkerOffset      float64    `json:"markerOffset"`
	AllowedOrigins    []string   `json:"allowedOrigins"`
}

// DefaultServerConfig returns the configuration used when no file is given
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr: ":8080",
		Grid: GridConfig{
			NumRows:         20,
			NumColumns:      20,
			CellSize:        1.0,
			ObstacleEpsilon: DefaultObstacleEpsilon,
			ObstacleLayer:   DefaultObstacleLayer,
		},
		ObstacleDir:    "obstacles",
		SnapshotFile:   "grid_snapshot.json",
		UpdatePolicy:   UpdateAlways.String(),
		MarkerOffset:   DefaultMarkerOffset,
		AllowedOrigins: []string{"*"},
	}
}

// LoadServerConfig reads a JSON config file on top of the defaults.
// Fields absent from the file keep their default values.
func LoadServerConfig(filename string) (ServerConfig, error) {
	cfg := DefaultServerConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the grid parameters and the update policy name
func (c ServerConfig) Validate() error {
	if err := c.Grid.Validate(); err != nil {
		return err
	}
	if _, err := ParseUpdatePolicy(c.UpdatePolicy); err != nil {
		return err
	}
	if c.SimplifyTolerance < 0 {
		return fmt.Errorf("simplify tolerance must not be negative, got %v", c.SimplifyTolerance)
	}
	return nil
}
