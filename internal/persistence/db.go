// Package persistence provides SQLite-based region state storage.
// Snapshots are stored whole, as zstd-compressed JSON blobs keyed by
// region, alongside a key-value metadata table and an append-only event
// log.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/klauspost/compress/zstd"
	_ "modernc.org/sqlite"

	"github.com/mdwalters/symbiants/internal/engine"
)

// ErrNoSnapshot is returned when a region has never been saved.
var ErrNoSnapshot = errors.New("no snapshot for region")

// DB wraps a SQLite connection for region state persistence.
type DB struct {
	conn    *sqlx.DB
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("zstd decoder: %w", err)
	}

	db := &DB{conn: conn, encoder: enc, decoder: dec}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	db.encoder.Close()
	db.decoder.Close()
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		region TEXT PRIMARY KEY,
		tick INTEGER NOT NULL,
		blob BLOB NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		region TEXT NOT NULL,
		tick INTEGER NOT NULL,
		kind TEXT NOT NULL,
		ant INTEGER NOT NULL,
		pos_x INTEGER NOT NULL,
		pos_y INTEGER NOT NULL,
		detail TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_region_tick ON events(region, tick);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveSnapshot replaces the stored snapshot for the snapshot's region.
func (db *DB) SaveSnapshot(snap *engine.Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	blob := db.encoder.EncodeAll(raw, nil)

	_, err = db.conn.Exec(
		"INSERT OR REPLACE INTO snapshots (region, tick, blob) VALUES (?, ?, ?)",
		snap.Region, snap.Tick, blob,
	)
	if err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	slog.Info("snapshot saved",
		"region", snap.Region,
		"tick", snap.Tick,
		"raw_bytes", len(raw),
		"stored_bytes", len(blob),
	)
	return nil
}

// LoadSnapshot retrieves the stored snapshot for a region, or
// ErrNoSnapshot if the region has never been saved.
func (db *DB) LoadSnapshot(region string) (*engine.Snapshot, error) {
	var blob []byte
	err := db.conn.Get(&blob, "SELECT blob FROM snapshots WHERE region = ?", region)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	raw, err := db.decoder.DecodeAll(blob, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress snapshot: %w", err)
	}

	var snap engine.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}

// SaveEvents appends events for a region to the log.
func (db *DB) SaveEvents(region string, events []engine.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Preparex(
		"INSERT INTO events (region, tick, kind, ant, pos_x, pos_y, detail) VALUES (?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range events {
		if _, err := stmt.Exec(region, e.Tick, e.Kind, e.Ant, e.Position.X, e.Position.Y, e.Detail); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// RecentEvents returns the most recent N events for a region, newest
// first.
func (db *DB) RecentEvents(region string, limit int) ([]engine.Event, error) {
	rows, err := db.conn.Queryx(
		"SELECT tick, kind, ant, pos_x, pos_y, detail FROM events WHERE region = ? ORDER BY id DESC LIMIT ?",
		region, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []engine.Event
	for rows.Next() {
		var e engine.Event
		if err := rows.Scan(&e.Tick, &e.Kind, &e.Ant, &e.Position.X, &e.Position.Y, &e.Detail); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// SaveMeta stores a key-value pair.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value. Missing keys return sql.ErrNoRows.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM meta WHERE key = ?", key)
	return value, err
}

// SaveRegion performs a full save of one region: its snapshot, any
// buffered events, and the save timestamp used for catch-up on resume.
func (db *DB) SaveRegion(sim *engine.Simulation, savedAt string) error {
	if err := db.SaveSnapshot(sim.Snapshot()); err != nil {
		return err
	}
	if err := db.SaveEvents(sim.Region, sim.Events); err != nil {
		return fmt.Errorf("save events: %w", err)
	}
	sim.Events = sim.Events[:0]
	if err := db.SaveMeta("last_save_time", savedAt); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}
	return nil
}
