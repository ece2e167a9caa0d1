// Command symbiants runs the ant colony simulation server.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/mdwalters/symbiants/internal/api"
	"github.com/mdwalters/symbiants/internal/engine"
	"github.com/mdwalters/symbiants/internal/persistence"
	"github.com/mdwalters/symbiants/internal/settings"
)

// regionNames are the independent worlds this server runs. Each gets its
// own grid, colony, and tick loop.
var regionNames = []string{"nest", "crater"}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	settingsPath := flag.String("settings", "", "path to settings YAML (defaults used when empty)")
	dbPath := flag.String("db", "data/symbiants.db", "path to SQLite database")
	apiPort := flag.Int("port", 8080, "HTTP API port")
	flag.Parse()

	slog.Info("Symbiants — ant colony simulation")

	cfg := settings.Default()
	if *settingsPath != "" {
		loaded, err := settings.Load(*settingsPath)
		if err != nil {
			slog.Error("failed to load settings", "path", *settingsPath, "error", err)
			os.Exit(1)
		}
		cfg = loaded
		slog.Info("settings loaded", "path", *settingsPath)
	}

	// ── Database ──────────────────────────────────────────────────────
	os.MkdirAll(filepath.Dir(*dbPath), 0755)
	db, err := persistence.Open(*dbPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", *dbPath)

	// Elapsed real time since the last save, for catch-up on resume.
	var downtime time.Duration
	if saved, err := db.GetMeta("last_save_time"); err == nil {
		if t, err := time.Parse(time.RFC3339, saved); err == nil {
			downtime = time.Since(t)
			slog.Info("resuming after downtime", "downtime", downtime.Round(time.Second).String())
		}
	}

	// ── Regions ───────────────────────────────────────────────────────
	var mu sync.Mutex
	interval := time.Duration(cfg.SecondsPerTick * float64(time.Second))

	adminKey := os.Getenv("SYMBIANTS_ADMIN_KEY")
	if adminKey == "" {
		slog.Warn("SYMBIANTS_ADMIN_KEY not set — admin POST endpoints will be disabled")
	}
	server := api.NewServer(&mu, db, *apiPort, adminKey)

	var drivers []*engine.Driver
	var sims []*engine.Simulation

	for i, name := range regionNames {
		sim, fresh, err := loadOrCreate(db, name, cfg, int64(i))
		if err != nil {
			slog.Error("failed to set up region", "region", name, "error", err)
			os.Exit(1)
		}

		driver, err := engine.NewDriver(sim, interval)
		if err != nil {
			slog.Error("bad tick interval", "error", err)
			os.Exit(1)
		}
		driver.Lock = &mu
		if !fresh {
			if err := driver.FastForward(downtime); err != nil {
				slog.Error("fast-forward failed", "region", name, "error", err)
				os.Exit(1)
			}
		}

		// Autosave on the save interval. Runs on the tick goroutine with
		// the state lock already held.
		driver.OnTick = func(tick uint64) error {
			if cfg.SaveIntervalTicks <= 0 || tick%uint64(cfg.SaveIntervalTicks) != 0 {
				return nil
			}
			return db.SaveRegion(sim, time.Now().UTC().Format(time.RFC3339))
		}

		if fresh {
			if err := db.SaveRegion(sim, time.Now().UTC().Format(time.RFC3339)); err != nil {
				slog.Error("initial save failed", "region", name, "error", err)
			}
		}

		server.AddRegion(&api.Region{Sim: sim, Driver: driver})
		drivers = append(drivers, driver)
		sims = append(sims, sim)
	}

	// ── HTTP API ──────────────────────────────────────────────────────
	server.Start()

	// ── Start ─────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		for _, d := range drivers {
			d.Stop()
		}
	}()

	fmt.Printf("\nSymbiants is alive: %d regions at %s per tick.\n", len(drivers), interval)
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", *apiPort)
	fmt.Println("Starting simulation... (Ctrl+C to stop)")

	var wg sync.WaitGroup
	for _, d := range drivers {
		wg.Add(1)
		go func(d *engine.Driver) {
			defer wg.Done()
			if err := d.Run(); err != nil {
				slog.Error("region stopped with error", "region", d.Sim.Region, "error", err)
				for _, other := range drivers {
					other.Stop()
				}
			}
		}(d)
	}
	wg.Wait()

	// Final save on shutdown.
	slog.Info("final save...")
	mu.Lock()
	for _, sim := range sims {
		if err := db.SaveRegion(sim, time.Now().UTC().Format(time.RFC3339)); err != nil {
			slog.Error("final save failed", "region", sim.Region, "error", err)
		}
	}
	mu.Unlock()

	fmt.Println("Simulation stopped. Region state saved.")
}

// loadOrCreate restores a region from its snapshot or generates a fresh
// one. Each region derives its own seed so worlds differ.
func loadOrCreate(db *persistence.DB, name string, cfg settings.Settings, seedOffset int64) (*engine.Simulation, bool, error) {
	snap, err := db.LoadSnapshot(name)
	switch {
	case err == nil:
		sim, err := engine.FromSnapshot(snap)
		if err != nil {
			return nil, false, err
		}
		slog.Info("region restored",
			"region", name,
			"tick", sim.CurrentTick(),
			"ants", sim.AliveCount(),
		)
		return sim, false, nil

	case errors.Is(err, persistence.ErrNoSnapshot):
		regionCfg := cfg
		regionCfg.Seed += seedOffset
		sim, err := engine.NewSimulation(name, regionCfg)
		if err != nil {
			return nil, false, err
		}
		return sim, true, nil

	default:
		return nil, false, err
	}
}
