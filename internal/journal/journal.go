// Package journal keeps the activity history of the records: one row per
// create, update, delete, export or import event, stored in SQLite under
// the per-user data directory.
//
// The journal is an optional collaborator. Recording never fails the
// operation that produced the event; errors are logged and dropped.
package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/HendryAvila/clinimap/internal/records"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// DBFile is the database file name inside the data directory.
const DBFile = "journal.db"

// timeLayout stores occurred_at at a fixed width so text order is time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ─── Config ──────────────────────────────────────────────────────────────────

// Config holds journal configuration.
type Config struct {
	DataDir      string
	DefaultLimit int
	MaxLimit     int
}

// DefaultConfig returns the default configuration for the journal.
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{
		DataDir:      filepath.Join(home, ".clinimap"),
		DefaultLimit: 20,
		MaxLimit:     200,
	}
}

// ─── Store ───────────────────────────────────────────────────────────────────

// Store is the SQLite-backed activity history.
type Store struct {
	db     *sql.DB
	cfg    Config
	logger *zap.Logger
}

// New opens (creating if needed) the journal database under cfg.DataDir.
func New(cfg Config, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = 20
	}
	if cfg.MaxLimit < cfg.DefaultLimit {
		cfg.MaxLimit = cfg.DefaultLimit
	}
	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return nil, fmt.Errorf("journal: create data dir: %w", err)
	}

	db, err := openDB("sqlite", filepath.Join(cfg.DataDir, DBFile))
	if err != nil {
		return nil, fmt.Errorf("journal: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("journal: pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db, cfg: cfg, logger: logger}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("journal: migration: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS events (
			id          TEXT PRIMARY KEY,
			kind        TEXT NOT NULL,
			entity      TEXT NOT NULL,
			entity_id   TEXT NOT NULL,
			occurred_at TEXT NOT NULL,
			data        TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_events_entity   ON events(entity_id, occurred_at DESC);
		CREATE INDEX IF NOT EXISTS idx_events_occurred ON events(occurred_at DESC);
	`)
	return err
}

// ─── Writes ──────────────────────────────────────────────────────────────────

// Add stores ev. Events with an id already present are ignored.
func (s *Store) Add(ctx context.Context, ev records.Event) error {
	if ev.ID == "" || ev.Kind == "" || ev.Entity == "" {
		return fmt.Errorf("journal: incomplete event %+v", ev)
	}
	var data any
	if len(ev.Data) > 0 {
		data = string(ev.Data)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO events (id, kind, entity, entity_id, occurred_at, data)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		ev.ID, string(ev.Kind), string(ev.Entity), ev.EntityID,
		ev.Timestamp.UTC().Format(timeLayout), data)
	if err != nil {
		return fmt.Errorf("journal: add event: %w", err)
	}
	return nil
}

// Record implements records.Recorder.
func (s *Store) Record(ctx context.Context, ev records.Event) {
	if err := s.Add(ctx, ev); err != nil {
		s.logger.Warn("event not recorded",
			zap.String("kind", string(ev.Kind)),
			zap.String("entity", string(ev.Entity)),
			zap.Error(err))
	}
}

// ─── Reads ───────────────────────────────────────────────────────────────────

// Recent returns the latest events, newest first. limit <= 0 uses the
// configured default.
func (s *Store) Recent(ctx context.Context, limit int) ([]records.Event, error) {
	return s.query(ctx,
		`SELECT id, kind, entity, entity_id, occurred_at, data
		 FROM events ORDER BY occurred_at DESC, rowid DESC LIMIT ?`,
		s.clamp(limit))
}

// ForEntity returns the latest events of one entity, newest first.
func (s *Store) ForEntity(ctx context.Context, entityID string, limit int) ([]records.Event, error) {
	return s.query(ctx,
		`SELECT id, kind, entity, entity_id, occurred_at, data
		 FROM events WHERE entity_id = ? ORDER BY occurred_at DESC, rowid DESC LIMIT ?`,
		entityID, s.clamp(limit))
}

// Count returns the number of stored events.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&n); err != nil {
		return 0, fmt.Errorf("journal: count: %w", err)
	}
	return n, nil
}

func (s *Store) clamp(limit int) int {
	if limit <= 0 {
		return s.cfg.DefaultLimit
	}
	if limit > s.cfg.MaxLimit {
		return s.cfg.MaxLimit
	}
	return limit
}

func (s *Store) query(ctx context.Context, q string, args ...any) ([]records.Event, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("journal: query: %w", err)
	}
	defer rows.Close()

	var out []records.Event
	for rows.Next() {
		var (
			ev       records.Event
			kind     string
			entity   string
			occurred string
			data     sql.NullString
		)
		if err := rows.Scan(&ev.ID, &kind, &entity, &ev.EntityID, &occurred, &data); err != nil {
			return nil, fmt.Errorf("journal: scan: %w", err)
		}
		ev.Kind = records.EventKind(kind)
		ev.Entity = records.EntityKind(entity)
		if ev.Timestamp, err = time.Parse(time.RFC3339Nano, occurred); err != nil {
			return nil, fmt.Errorf("journal: event %s has bad timestamp: %w", ev.ID, err)
		}
		if data.Valid {
			ev.Data = json.RawMessage(data.String)
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}
