package persistence

import (
	"database/sql"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/mdwalters/symbiants/internal/engine"
	"github.com/mdwalters/symbiants/internal/settings"
	"github.com/mdwalters/symbiants/internal/world"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestRegion(t *testing.T, region string) *engine.Simulation {
	t.Helper()
	cfg := settings.Default()
	cfg.WorldWidth = 32
	cfg.WorldHeight = 24
	cfg.InitialWorkerCount = 2

	s, err := engine.NewSimulation(region, cfg)
	if err != nil {
		t.Fatalf("new simulation: %v", err)
	}
	for i := 0; i < 10; i++ {
		if err := s.Tick(); err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
	}
	return s
}

func TestSnapshotSaveLoadRoundTrip(t *testing.T) {
	db := openTestDB(t)
	s := newTestRegion(t, "nest")

	snap := s.Snapshot()
	if err := db.SaveSnapshot(snap); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := db.LoadSnapshot("nest")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(snap, loaded) {
		t.Fatal("loaded snapshot differs from the saved one")
	}
}

func TestSaveSnapshotReplacesPrevious(t *testing.T) {
	db := openTestDB(t)
	s := newTestRegion(t, "nest")

	if err := db.SaveSnapshot(s.Snapshot()); err != nil {
		t.Fatal(err)
	}
	firstTick := s.CurrentTick()

	for i := 0; i < 5; i++ {
		if err := s.Tick(); err != nil {
			t.Fatal(err)
		}
	}
	if err := db.SaveSnapshot(s.Snapshot()); err != nil {
		t.Fatal(err)
	}

	loaded, err := db.LoadSnapshot("nest")
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Tick != firstTick+5 {
		t.Fatalf("loaded tick %d, want the later save to win", loaded.Tick)
	}
}

func TestLoadSnapshotUnknownRegion(t *testing.T) {
	db := openTestDB(t)
	if _, err := db.LoadSnapshot("atlantis"); !errors.Is(err, ErrNoSnapshot) {
		t.Fatalf("got %v, want ErrNoSnapshot", err)
	}
}

func TestEventsNewestFirst(t *testing.T) {
	db := openTestDB(t)

	batch := []engine.Event{
		{Tick: 1, Kind: engine.EventAntBorn, Ant: 1, Position: world.Position{X: 2, Y: 3}},
		{Tick: 2, Kind: engine.EventPositionChanged, Ant: 1, Position: world.Position{X: 3, Y: 3}},
		{Tick: 3, Kind: engine.EventAntDied, Ant: 1, Position: world.Position{X: 3, Y: 3}, Detail: "starved"},
	}
	if err := db.SaveEvents("nest", batch); err != nil {
		t.Fatalf("save events: %v", err)
	}

	got, err := db.RecentEvents("nest", 2)
	if err != nil {
		t.Fatalf("recent events: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d events, want the limit", len(got))
	}
	if got[0].Kind != engine.EventAntDied || got[1].Kind != engine.EventPositionChanged {
		t.Fatalf("order %s, %s; want newest first", got[0].Kind, got[1].Kind)
	}
	if got[0].Detail != "starved" {
		t.Fatalf("detail %q lost in storage", got[0].Detail)
	}

	// Events are scoped per region.
	other, err := db.RecentEvents("crater", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(other) != 0 {
		t.Fatalf("foreign region sees %d events", len(other))
	}
}

func TestSaveEventsEmptyBatch(t *testing.T) {
	db := openTestDB(t)
	if err := db.SaveEvents("nest", nil); err != nil {
		t.Fatalf("empty batch should be a no-op, got %v", err)
	}
}

func TestMetaRoundTrip(t *testing.T) {
	db := openTestDB(t)

	if _, err := db.GetMeta("last_save_time"); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("missing key got %v, want sql.ErrNoRows", err)
	}

	if err := db.SaveMeta("last_save_time", "2026-08-23T10:00:00Z"); err != nil {
		t.Fatal(err)
	}
	if err := db.SaveMeta("last_save_time", "2026-08-23T11:00:00Z"); err != nil {
		t.Fatal(err)
	}

	v, err := db.GetMeta("last_save_time")
	if err != nil {
		t.Fatal(err)
	}
	if v != "2026-08-23T11:00:00Z" {
		t.Fatalf("got %q, want the later write", v)
	}
}

func TestSaveRegionFlushesEvents(t *testing.T) {
	db := openTestDB(t)
	s := newTestRegion(t, "nest")
	if len(s.Events) == 0 {
		t.Fatal("test region produced no events to flush")
	}
	buffered := len(s.Events)

	if err := db.SaveRegion(s, "2026-08-23T12:00:00Z"); err != nil {
		t.Fatalf("save region: %v", err)
	}

	if len(s.Events) != 0 {
		t.Fatal("buffered events should be drained after a save")
	}
	stored, err := db.RecentEvents("nest", buffered+10)
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != buffered {
		t.Fatalf("stored %d events, want %d", len(stored), buffered)
	}
	if _, err := db.LoadSnapshot("nest"); err != nil {
		t.Fatalf("save region did not store a snapshot: %v", err)
	}
	if v, err := db.GetMeta("last_save_time"); err != nil || v != "2026-08-23T12:00:00Z" {
		t.Fatalf("timestamp %q, %v", v, err)
	}
}
