// Package api provides the HTTP API for observing running regions.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (admin control plane).
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mdwalters/symbiants/internal/ants"
	"github.com/mdwalters/symbiants/internal/engine"
	"github.com/mdwalters/symbiants/internal/persistence"
	"github.com/mdwalters/symbiants/internal/world"
)

// Region bundles one simulation with the driver advancing it.
type Region struct {
	Sim    *engine.Simulation
	Driver *engine.Driver
	hub    *streamHub
}

// Server serves region state over HTTP. All reads take Mu, which the
// tick loops hold while mutating, so handlers always observe a state
// between ticks.
type Server struct {
	Mu       *sync.Mutex
	DB       *persistence.DB
	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.

	regions map[string]*Region
	names   []string
}

// NewServer creates a server over zero regions; register them with
// AddRegion before Start.
func NewServer(mu *sync.Mutex, db *persistence.DB, port int, adminKey string) *Server {
	return &Server{
		Mu:       mu,
		DB:       db,
		Port:     port,
		AdminKey: adminKey,
		regions:  make(map[string]*Region),
	}
}

// AddRegion registers a region and subscribes to its event stream. Call
// before Start and before the region's driver runs.
func (s *Server) AddRegion(r *Region) {
	r.hub = newStreamHub()
	r.Sim.AddSink(r.hub.publish)
	s.regions[r.Sim.Region] = r
	s.names = append(s.names, r.Sim.Region)
	sort.Strings(s.names)
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	streamLimiter := NewRateLimiter(30, time.Minute)

	mux := http.NewServeMux()

	// Public endpoints (GET, read-only — anyone can check in on the colony).
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/regions", s.handleRegions)
	mux.HandleFunc("/api/v1/region/", s.handleRegionRoutes)

	// WebSocket streaming endpoint.
	mux.HandleFunc("/api/v1/stream", RateLimitMiddleware(streamLimiter, s.handleStream))

	// Admin endpoints (POST, require bearer token).
	mux.HandleFunc("/api/v1/speed", s.adminOnly(s.handleSpeed))

	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		handler := corsMiddleware(mux)
		if err := http.ListenAndServe(addr, handler); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// corsMiddleware adds CORS headers for allowed frontend origins. Set
// CORS_ORIGINS to a comma-separated list of allowed origins; localhost
// dev servers are always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth on POST
// requests. GET requests pass through.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				http.Error(w, "admin endpoints disabled (no SYMBIANTS_ADMIN_KEY set)", http.StatusForbidden)
				return
			}
			if !s.checkBearerToken(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.Mu.Lock()
	defer s.Mu.Unlock()

	regions := make([]map[string]any, 0, len(s.names))
	for _, name := range s.names {
		reg := s.regions[name]
		regions = append(regions, map[string]any{
			"name":          name,
			"tick":          reg.Sim.CurrentTick(),
			"ants_alive":    reg.Sim.AliveCount(),
			"queen_asleep":  reg.Sim.QueenAsleep(),
			"speed":         reg.Driver.Speed,
			"running":       reg.Driver.Running,
			"pending_ticks": reg.Driver.PendingTicks(),
		})
	}

	writeJSON(w, map[string]any{
		"name":    "Symbiants",
		"regions": regions,
	})
}

func (s *Server) handleRegions(w http.ResponseWriter, r *http.Request) {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	writeJSON(w, s.names)
}

// handleRegionRoutes dispatches /api/v1/region/:name/{ants,grid,pheromones,events}.
func (s *Server) handleRegionRoutes(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(r.URL.Path, "/")
	// /api/v1/region/:name/:resource → [0]="" [1]="api" [2]="v1" [3]="region" [4]=name [5]=resource
	if len(parts) < 6 {
		http.Error(w, "usage: /api/v1/region/:name/:resource", http.StatusBadRequest)
		return
	}

	reg, ok := s.regions[parts[4]]
	if !ok {
		http.Error(w, "region not found", http.StatusNotFound)
		return
	}

	switch parts[5] {
	case "ants":
		s.handleAnts(w, r, reg)
	case "grid":
		s.handleGrid(w, r, reg)
	case "pheromones":
		s.handlePheromones(w, r, reg)
	case "events":
		s.handleEvents(w, r, reg)
	default:
		http.Error(w, "unknown resource", http.StatusNotFound)
	}
}

func (s *Server) handleAnts(w http.ResponseWriter, r *http.Request, reg *Region) {
	type antSummary struct {
		ID          ants.AntID     `json:"id"`
		Role        string         `json:"role"`
		Position    world.Position `json:"position"`
		Orientation string         `json:"orientation"`
		Carrying    string         `json:"carrying,omitempty"`
		Hunger      float64        `json:"hunger"`
		Asleep      bool           `json:"asleep"`
		Dead        bool           `json:"dead"`
		BornTick    uint64         `json:"born_tick"`
	}

	s.Mu.Lock()
	defer s.Mu.Unlock()

	result := make([]antSummary, 0, len(reg.Sim.Ants))
	for _, a := range reg.Sim.Ants {
		entry := antSummary{
			ID:          a.ID,
			Role:        a.Role.String(),
			Position:    a.Position,
			Orientation: a.Orientation.String(),
			Hunger:      a.Hunger,
			Asleep:      a.Asleep,
			Dead:        a.Dead,
			BornTick:    a.BornTick,
		}
		if a.HasInventory() {
			if el, ok := reg.Sim.Grid.Element(a.Inventory); ok {
				entry.Carrying = el.Kind.String()
			}
		}
		result = append(result, entry)
	}
	writeJSON(w, result)
}

// handleGrid returns the whole grid as one character per cell, row by
// row, top to bottom. Payloads are small enough that run-length encoding
// has not been worth it.
func (s *Server) handleGrid(w http.ResponseWriter, r *http.Request, reg *Region) {
	s.Mu.Lock()
	defer s.Mu.Unlock()

	grid := reg.Sim.Grid
	rows := make([]string, 0, grid.Height())
	var row strings.Builder
	for y := 0; y < grid.Height(); y++ {
		row.Reset()
		for x := 0; x < grid.Width(); x++ {
			el, err := grid.ElementAt(world.Position{X: x, Y: y})
			if err != nil {
				slog.Error("grid read failed", "region", reg.Sim.Region, "error", err)
				http.Error(w, "grid inconsistency", http.StatusInternalServerError)
				return
			}
			row.WriteByte(kindGlyph(el.Kind))
		}
		rows = append(rows, row.String())
	}

	writeJSON(w, map[string]any{
		"width":         grid.Width(),
		"height":        grid.Height(),
		"surface_level": grid.SurfaceLevel(),
		"rows":          rows,
		"tick":          reg.Sim.CurrentTick(),
	})
}

func kindGlyph(k world.Kind) byte {
	switch k {
	case world.Dirt:
		return 'd'
	case world.Sand:
		return 's'
	case world.Food:
		return 'f'
	default:
		return '.'
	}
}

func (s *Server) handlePheromones(w http.ResponseWriter, r *http.Request, reg *Region) {
	type cellEntry struct {
		Position world.Position `json:"position"`
		Kind     string         `json:"kind"`
		Strength int            `json:"strength"`
	}

	s.Mu.Lock()
	defer s.Mu.Unlock()

	result := make([]cellEntry, 0, reg.Sim.Pheromones.Len())
	for p, ph := range reg.Sim.Pheromones.Cells() {
		result = append(result, cellEntry{Position: p, Kind: ph.Kind.String(), Strength: ph.Strength})
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i].Position, result[j].Position
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})
	writeJSON(w, result)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request, reg *Region) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	s.Mu.Lock()
	events := reg.Sim.Events
	start := 0
	if len(events) > limit {
		start = len(events) - limit
	}
	out := make([]engine.Event, len(events)-start)
	copy(out, events[start:])
	s.Mu.Unlock()

	writeJSON(w, out)
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	region := r.URL.Query().Get("region")

	s.Mu.Lock()
	defer s.Mu.Unlock()

	if r.Method == http.MethodPost {
		var req struct {
			Speed float64 `json:"speed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Speed < 0 || req.Speed > 1000 {
			http.Error(w, "speed must be 0-1000", http.StatusBadRequest)
			return
		}
		for name, reg := range s.regions {
			if region != "" && name != region {
				continue
			}
			reg.Driver.Speed = req.Speed
		}
		slog.Info("speed changed", "speed", req.Speed, "region", region)
	}

	speeds := make(map[string]float64, len(s.regions))
	for name, reg := range s.regions {
		speeds[name] = reg.Driver.Speed
	}
	writeJSON(w, speeds)
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
