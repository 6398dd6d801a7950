package main

import (
	"flag"
	"log"
	"net/http"
	"os"
)

func main() {
	configFile := flag.String("config", "", "path to a JSON server config file")
	addr := flag.String("addr", "", "listen address, overrides the config file")
	obstacleDir := flag.String("obstacles", "", "directory of GeoJSON obstacle files, overrides the config file")
	snapshotFile := flag.String("snapshot", "", "grid snapshot file, overrides the config file")
	flag.Parse()

	log.Println("========================================")
	log.Println("🚀 Grid Path Planner Server")
	log.Println("========================================")

	cfg := DefaultServerConfig()
	if *configFile != "" {
		loaded, err := LoadServerConfig(*configFile)
		if err != nil {
			log.Fatalf("❌ %v", err)
		}
		cfg = loaded
		log.Printf("✅ Loaded config from %s\n", *configFile)
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *obstacleDir != "" {
		cfg.ObstacleDir = *obstacleDir
	}
	if *snapshotFile != "" {
		cfg.SnapshotFile = *snapshotFile
	}

	server, err := NewServer(cfg)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	if info, err := os.Stat(cfg.ObstacleDir); err == nil && info.IsDir() {
		obstacles, err := LoadObstaclesFromDir(cfg.ObstacleDir)
		if err != nil {
			log.Printf("⚠️  Failed to load obstacles: %v\n", err)
		} else {
			server.SetObstacles(obstacles)
		}
	}

	// Try to load an existing grid snapshot on startup
	log.Println("Checking for existing grid snapshot...")
	if snapshot, err := LoadGridSnapshot(cfg.SnapshotFile); err == nil {
		grid, err := snapshot.Build()
		if err != nil {
			log.Printf("⚠️  Snapshot is invalid: %v\n", err)
		} else {
			server.SetGrid(grid)
			log.Printf("✅ Loaded existing grid from file\n")
		}
	} else {
		log.Println("ℹ️  No existing grid found (this is normal on first run)")
		log.Println("   Call /buildGrid to create a new grid")
	}
	log.Println("")

	log.Printf("Server starting on %s\n", cfg.Addr)
	log.Println("")
	log.Println("Endpoints:")
	log.Println("  POST   /buildGrid    - Build the obstacle grid")
	log.Println("  POST   /route        - Compute a path between two points")
	log.Println("  GET    /grid         - Grid lines and obstacle cells for visualization")
	log.Println("  GET    /obstacles    - Loaded obstacles as GeoJSON")
	log.Println("  POST   /agents       - Register an agent")
	log.Println("  GET    /agents       - List agents and their routes")
	log.Println("  DELETE /agents/{id}  - Remove an agent")
	log.Println("  POST   /target       - Send all agents toward a destination")
	log.Println("  GET    /health       - Check server status")
	log.Println("  GET    /metrics      - Prometheus metrics")
	log.Println("========================================")
	log.Println("")

	if err := http.ListenAndServe(cfg.Addr, server.Router()); err != nil {
		log.Fatal(err)
	}
}
