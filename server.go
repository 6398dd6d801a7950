package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

type RouteRequest struct {
	Start Vec3 `json:"start"`
	End   Vec3 `json:"end"`
}

type RouteResponse struct {
	Path          []Vec3      `json:"path"`
	Cells         []CellCoord `json:"cells"`
	Success       bool        `json:"success"`
	Message       string      `json:"message,omitempty"`
	Distance      float64     `json:"distance,omitempty"`
	ExpandedNodes int         `json:"expandedNodes"`
}

type BuildGridRequest struct {
	Grid              *GridConfig     `json:"grid,omitempty"`              // Layered over the configured grid
	Obstacles         json.RawMessage `json:"obstacles,omitempty"`         // GeoJSON FeatureCollection, defaults to loaded obstacles
	SimplifyTolerance *float64        `json:"simplifyTolerance,omitempty"` // Defaults to the configured tolerance
	SaveToFile        bool            `json:"saveToFile"`
	Force             bool            `json:"force,omitempty"` // Set to true to force rebuild
}

type GridExport struct {
	Origin        Vec3        `json:"origin"`
	CellSize      float64     `json:"cellSize"`
	NumRows       int         `json:"numRows"`
	NumColumns    int         `json:"numColumns"`
	Lines         [][2]Vec3   `json:"lines"`
	ObstacleCells []CellCoord `json:"obstacleCells"`
}

type AgentRequest struct {
	Name     string `json:"name"`
	Position Vec3   `json:"position"`
}

type TargetRequest struct {
	Position Vec3 `json:"position"`
}

// Server owns the active grid and the agent registry
type Server struct {
	config     ServerConfig
	policy     UpdatePolicy
	dispatcher *TargetDispatcher

	buildMu sync.Mutex // Serializes /buildGrid from the existence check to install

	mu        sync.RWMutex
	grid      *Grid
	finder    *PathFinder
	obstacles []Obstacle // Obstacles used when a build request carries none
}

// NewServer creates a server with no grid
func NewServer(config ServerConfig) (*Server, error) {
	policy, err := ParseUpdatePolicy(config.UpdatePolicy)
	if err != nil {
		return nil, err
	}
	return &Server{
		config:     config,
		policy:     policy,
		dispatcher: NewTargetDispatcher(config.MarkerOffset),
	}, nil
}

// SetObstacles replaces the default obstacle set used by grid builds
func (s *Server) SetObstacles(obstacles []Obstacle) {
	s.mu.Lock()
	s.obstacles = obstacles
	s.mu.Unlock()
}

// SetGrid installs a built grid and a path finder over it
func (s *Server) SetGrid(g *Grid) {
	finder := NewPathFinder(g, WithUpdatePolicy(s.policy))
	s.mu.Lock()
	s.grid = g
	s.finder = finder
	s.mu.Unlock()
}

// Grid returns the active grid, nil before the first build
func (s *Server) Grid() *Grid {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.grid
}

// Dispatcher returns the target dispatcher
func (s *Server) Dispatcher() *TargetDispatcher {
	return s.dispatcher
}

// BuildGrid prepares obstacles, indexes them and constructs a grid. It does not install it.
func (s *Server) BuildGrid(config GridConfig, obstacles []Obstacle, simplifyTolerance float64) (*Grid, error) {
	prepared := PrepareObstacles(obstacles, simplifyTolerance)
	index := NewObstacleIndex(prepared)
	log.Printf("   Indexed %d obstacles (%d before preparation)\n", index.Size(), len(obstacles))

	return NewGrid(config, index)
}

// FindPathBetween implements RoutePlanner against whichever grid is active
func (s *Server) FindPathBetween(startPos, goalPos Vec3) ([]*Node, error) {
	s.mu.RLock()
	finder := s.finder
	s.mu.RUnlock()

	if finder == nil {
		return nil, ErrGridNotBuilt
	}
	return finder.FindPathBetween(startPos, goalPos)
}

// Router wires every endpoint behind CORS
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/buildGrid", s.buildGridHandler).Methods(http.MethodPost)
	r.HandleFunc("/route", s.routeHandler).Methods(http.MethodPost)
	r.HandleFunc("/grid", s.getGridHandler).Methods(http.MethodGet)
	r.HandleFunc("/obstacles", s.getObstaclesHandler).Methods(http.MethodGet)
	r.HandleFunc("/agents", s.registerAgentHandler).Methods(http.MethodPost)
	r.HandleFunc("/agents", s.listAgentsHandler).Methods(http.MethodGet)
	r.HandleFunc("/agents/{id}", s.deleteAgentHandler).Methods(http.MethodDelete)
	r.HandleFunc("/target", s.targetHandler).Methods(http.MethodPost)
	r.HandleFunc("/health", s.healthHandler).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	c := cors.New(cors.Options{
		AllowedOrigins: s.config.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})

	return c.Handler(r)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// POST /buildGrid - Build the grid from configured or supplied obstacles
func (s *Server) buildGridHandler(w http.ResponseWriter, r *http.Request) {
	log.Println("========================================")
	log.Println("🗺️  Build grid request received")

	// Fields absent from the request's grid keep their configured values
	defaults := s.config.Grid
	req := BuildGridRequest{Grid: &defaults}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		log.Printf("❌ Invalid request body: %v\n", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	s.buildMu.Lock()
	defer s.buildMu.Unlock()

	s.mu.RLock()
	alreadyExists := s.grid != nil
	obstacles := s.obstacles
	s.mu.RUnlock()

	if alreadyExists && !req.Force {
		log.Println("⚠️  Grid already exists")
		log.Println("   To rebuild, set force:true in request or restart the server")
		log.Println("========================================")

		writeJSON(w, http.StatusConflict, map[string]interface{}{
			"success": false,
			"error":   "grid already exists",
			"message": "Grid is already built. Set 'force: true' to rebuild, or restart the server.",
		})
		return
	}

	if alreadyExists && req.Force {
		log.Println("🔄 Force rebuild requested - recreating grid...")
	}

	// Set defaults
	config := s.config.Grid
	if req.Grid != nil {
		config = *req.Grid
	}
	tolerance := s.config.SimplifyTolerance
	if req.SimplifyTolerance != nil {
		tolerance = *req.SimplifyTolerance
	}
	if len(req.Obstacles) > 0 {
		parsed, err := ParseObstacles(req.Obstacles)
		if err != nil {
			log.Printf("❌ Invalid obstacles: %v\n", err)
			http.Error(w, "Invalid obstacles", http.StatusBadRequest)
			return
		}
		obstacles = parsed
	}

	log.Printf("   Size: %d x %d cells of %.3f\n", config.NumColumns, config.NumRows, config.CellSize)
	log.Printf("   Obstacles: %d\n", len(obstacles))

	grid, err := s.BuildGrid(config, obstacles, tolerance)
	if err != nil {
		log.Printf("❌ Grid build failed: %v\n", err)
		log.Println("========================================")
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	s.SetGrid(grid)

	// Optionally save to file
	if req.SaveToFile {
		if err := SaveGridSnapshot(grid, s.config.SnapshotFile); err != nil {
			log.Printf("⚠️  Failed to save grid: %v\n", err)
		}
	}

	numObstacles := len(grid.ObstacleNodes())
	log.Printf("✅ Grid built and stored in memory\n")
	log.Println("========================================")

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":        true,
		"numRows":        grid.NumRows(),
		"numColumns":     grid.NumColumns(),
		"cellSize":       grid.CellSize(),
		"numObstacles":   numObstacles,
		"numTraversable": grid.Size() - numObstacles,
	})
}

// POST /route - Compute a grid path between two world positions
func (s *Server) routeHandler(w http.ResponseWriter, r *http.Request) {
	log.Println("========================================")
	log.Println("📍 Route request received")

	var req RouteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("❌ Invalid request body: %v\n", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	log.Printf("   Start: (%.3f, %.3f, %.3f)\n", req.Start.X, req.Start.Y, req.Start.Z)
	log.Printf("   End:   (%.3f, %.3f, %.3f)\n", req.End.X, req.End.Y, req.End.Z)

	s.mu.RLock()
	finder := s.finder
	s.mu.RUnlock()

	if finder == nil {
		log.Println("❌ Grid not available")
		http.Error(w, "Grid not built. Call /buildGrid first", http.StatusBadRequest)
		log.Println("========================================")
		return
	}

	grid := finder.Grid()
	start, startErr := grid.NodeAtPosition(req.Start)
	goal, goalErr := grid.NodeAtPosition(req.End)
	if startErr != nil || goalErr != nil {
		log.Println("❌ Start or end lies outside the grid")
		writeJSON(w, http.StatusBadRequest, RouteResponse{
			Success: false,
			Message: "Start or end point lies outside the grid",
		})
		log.Println("========================================")
		return
	}

	log.Println("🔍 Running A* on grid...")
	result, err := finder.Search(start, goal)

	response := RouteResponse{
		Success:       err == nil,
		ExpandedNodes: result.ExpandedNodes,
	}

	if err != nil {
		log.Printf("❌ %v\n", err)
		response.Message = fmt.Sprintf("No path found: %v", err)
	} else {
		response.Distance = result.TotalCost
		response.Path = make([]Vec3, 0, len(result.Path))
		response.Cells = make([]CellCoord, 0, len(result.Path))
		for _, n := range result.Path {
			response.Path = append(response.Path, n.Position)
			response.Cells = append(response.Cells, CellCoord{Col: n.Col, Row: n.Row})
		}
		log.Printf("✅ Path found with %d cells\n", len(result.Path))
		log.Printf("   Distance: %.3f, expanded %d nodes\n", result.TotalCost, result.ExpandedNodes)
	}

	writeJSON(w, http.StatusOK, response)
	log.Println("========================================")
}

// GET /grid - Grid lines and obstacle cells for visualization
func (s *Server) getGridHandler(w http.ResponseWriter, r *http.Request) {
	grid := s.Grid()
	if grid == nil {
		http.Error(w, "Grid not built. Call /buildGrid first", http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, GridExport{
		Origin:        grid.Origin(),
		CellSize:      grid.CellSize(),
		NumRows:       grid.NumRows(),
		NumColumns:    grid.NumColumns(),
		Lines:         grid.GridLines(),
		ObstacleCells: NewGridSnapshot(grid).ObstacleCells,
	})
}

// GET /obstacles - Default obstacle set as a GeoJSON FeatureCollection
func (s *Server) getObstaclesHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	obstacles := s.obstacles
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, ObstaclesToFeatureCollection(obstacles))
}

// POST /agents - Register a planner agent
func (s *Server) registerAgentHandler(w http.ResponseWriter, r *http.Request) {
	var req AgentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	id := s.dispatcher.Register(NewPlannerAgent(req.Name, req.Position, s))
	log.Printf("🤖 Agent %q registered as %s\n", req.Name, id)

	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// GET /agents - List agents with their last destination and route
func (s *Server) listAgentsHandler(w http.ResponseWriter, r *http.Request) {
	statuses := make([]AgentStatus, 0)
	for _, id := range s.dispatcher.IDs() {
		agent, ok := s.dispatcher.Agent(id)
		if !ok {
			continue
		}
		if pa, ok := agent.(*PlannerAgent); ok {
			statuses = append(statuses, pa.Status(id))
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"agents": statuses})
}

// DELETE /agents/{id}
func (s *Server) deleteAgentHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !s.dispatcher.Unregister(id) {
		http.Error(w, "Unknown agent", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /target - Send every active agent toward a position
func (s *Server) targetHandler(w http.ResponseWriter, r *http.Request) {
	var req TargetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	dispatched := s.dispatcher.SetTarget(req.Position)
	marker, _ := s.dispatcher.Marker()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"dispatched": dispatched,
		"marker":     marker,
	})
}

// GET /health - Health check endpoint
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	grid := s.Grid()
	hasGrid := grid != nil
	numCells := 0
	if hasGrid {
		numCells = grid.Size()
	}

	status := "ready"
	if !hasGrid {
		status = "waiting for grid"
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    status,
		"hasGrid":   hasGrid,
		"numCells":  numCells,
		"numAgents": len(s.dispatcher.IDs()),
		"policy":    s.policy.String(),
	})
}
