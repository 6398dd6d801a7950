package main

import (
	"log"
	"sync"

	"github.com/google/uuid"
)

// DefaultMarkerOffset lifts the target marker above the picked point
const DefaultMarkerOffset = 10.0

// Agent is anything that can be sent toward a destination
type Agent interface {
	SetDestination(target Vec3)
	IsActive() bool
}

// RoutePlanner resolves world positions to a grid path
type RoutePlanner interface {
	FindPathBetween(startPos, goalPos Vec3) ([]*Node, error)
}

// TargetDispatcher holds the current destination and hands it to every registered agent
type TargetDispatcher struct {
	mu           sync.RWMutex
	agents       map[string]Agent
	order        []string // Registration order, dispatch follows it
	target       Vec3
	hasTarget    bool
	markerOffset float64
}

// NewTargetDispatcher creates an empty dispatcher
func NewTargetDispatcher(markerOffset float64) *TargetDispatcher {
	return &TargetDispatcher{
		agents:       make(map[string]Agent),
		order:        make([]string, 0),
		markerOffset: markerOffset,
	}
}

// Register adds an agent and returns its generated ID
func (d *TargetDispatcher) Register(agent Agent) string {
	id := uuid.NewString()

	d.mu.Lock()
	d.agents[id] = agent
	d.order = append(d.order, id)
	d.mu.Unlock()

	return id
}

// Unregister removes an agent. Returns false if the ID is unknown.
func (d *TargetDispatcher) Unregister(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.agents[id]; !ok {
		return false
	}
	delete(d.agents, id)
	for i, v := range d.order {
		if v == id {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
	return true
}

// Agent looks up a registered agent
func (d *TargetDispatcher) Agent(id string) (Agent, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	a, ok := d.agents[id]
	return a, ok
}

// IDs returns agent IDs in registration order
func (d *TargetDispatcher) IDs() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	ids := make([]string, len(d.order))
	copy(ids, d.order)
	return ids
}

// SetTarget records the destination and sends it to every active agent.
// Returns how many agents received it.
func (d *TargetDispatcher) SetTarget(target Vec3) int {
	d.mu.Lock()
	d.target = target
	d.hasTarget = true
	agents := make([]Agent, 0, len(d.order))
	for _, id := range d.order {
		agents = append(agents, d.agents[id])
	}
	d.mu.Unlock()

	dispatched := 0
	for _, agent := range agents {
		if agent == nil || !agent.IsActive() {
			targetDispatchTotal.WithLabelValues("skipped").Inc()
			continue
		}
		agent.SetDestination(target)
		targetDispatchTotal.WithLabelValues("dispatched").Inc()
		dispatched++
	}

	log.Printf("🎯 Target set to (%.3f, %.3f, %.3f), dispatched to %d/%d agents\n",
		target.X, target.Y, target.Z, dispatched, len(agents))
	return dispatched
}

// Target returns the last destination, if any
func (d *TargetDispatcher) Target() (Vec3, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.target, d.hasTarget
}

// Marker returns where the target marker is drawn: the destination lifted by the marker offset
func (d *TargetDispatcher) Marker() (Vec3, bool) {
	target, ok := d.Target()
	if !ok {
		return Vec3{}, false
	}
	return target.Add(Vec3{Y: d.markerOffset}), true
}

// AgentStatus is a read-only view of a planner agent
type AgentStatus struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Position    Vec3   `json:"position"`
	Active      bool   `json:"active"`
	Destination *Vec3  `json:"destination,omitempty"`
	Route       []Vec3 `json:"route,omitempty"`
	Error       string `json:"error,omitempty"`
}

// PlannerAgent plans a grid route from its position whenever it receives a destination.
// Following the route is left to the host.
type PlannerAgent struct {
	mu          sync.Mutex
	name        string
	position    Vec3
	active      bool
	planner     RoutePlanner
	destination *Vec3
	route       []*Node
	lastErr     error
}

// NewPlannerAgent creates an active agent at a position
func NewPlannerAgent(name string, position Vec3, planner RoutePlanner) *PlannerAgent {
	return &PlannerAgent{
		name:     name,
		position: position,
		active:   true,
		planner:  planner,
	}
}

// SetDestination implements Agent
func (a *PlannerAgent) SetDestination(target Vec3) {
	a.mu.Lock()
	defer a.mu.Unlock()

	dest := target
	a.destination = &dest
	a.route, a.lastErr = a.planner.FindPathBetween(a.position, target)
	if a.lastErr != nil {
		log.Printf("   ⚠️  Agent %s: %v\n", a.name, a.lastErr)
	}
}

// IsActive implements Agent
func (a *PlannerAgent) IsActive() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.active
}

// SetActive enables or disables dispatch to this agent
func (a *PlannerAgent) SetActive(active bool) {
	a.mu.Lock()
	a.active = active
	a.mu.Unlock()
}

// Route returns the last planned route and planning error
func (a *PlannerAgent) Route() ([]*Node, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.route, a.lastErr
}

// Status returns a snapshot of the agent
func (a *PlannerAgent) Status(id string) AgentStatus {
	a.mu.Lock()
	defer a.mu.Unlock()

	status := AgentStatus{
		ID:       id,
		Name:     a.name,
		Position: a.position,
		Active:   a.active,
	}
	if a.destination != nil {
		dest := *a.destination
		status.Destination = &dest
	}
	for _, n := range a.route {
		status.Route = append(status.Route, n.Position)
	}
	if a.lastErr != nil {
		status.Error = a.lastErr.Error()
	}
	return status
}
