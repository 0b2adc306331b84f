package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/tidwall/btree"
	_ "modernc.org/sqlite"

	"github.com/mwantia/cncmaps/data"
	"github.com/mwantia/cncmaps/source/codec"
)

// SQLiteSource serves entries stored in a sqlite asset pack. Entry names
// are kept in memory once the pack is opened.
type SQLiteSource struct {
	mu  sync.RWMutex
	dsn string
	db  *sql.DB

	// lower-cased entry names
	names *btree.Map[string, struct{}]
}

func NewSQLiteSource(dsn string) *SQLiteSource {
	return &SQLiteSource{
		dsn:   dsn,
		names: btree.NewMap[string, struct{}](0),
	}
}

func (ss *SQLiteSource) Name() string {
	return "sqlite://" + ss.dsn
}

func (ss *SQLiteSource) Open(ctx context.Context) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	db, err := sql.Open("sqlite", ss.dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps ":memory:" packs on one database.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return fmt.Errorf("failed to set journal mode: %w", err)
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	rows, err := db.QueryContext(ctx, "SELECT name FROM assets")
	if err != nil {
		db.Close()
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			db.Close()
			return err
		}
		ss.names.Set(name, struct{}{})
	}
	if err := rows.Err(); err != nil {
		db.Close()
		return err
	}

	ss.db = db
	return nil
}

func initSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS assets (
			name TEXT PRIMARY KEY,
			flags INTEGER NOT NULL DEFAULT 0,
			size INTEGER NOT NULL,
			data BLOB NOT NULL
		)
	`)
	return err
}

func (ss *SQLiteSource) Close(ctx context.Context) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if ss.db == nil {
		return nil
	}

	err := ss.db.Close()
	ss.db = nil
	return err
}

// Put stores content under name, zstd compressed when compress is set.
func (ss *SQLiteSource) Put(ctx context.Context, name string, content []byte, compress bool) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if ss.db == nil {
		return data.ErrClosed
	}

	flags, payload, err := codec.Encode(content, compress)
	if err != nil {
		return err
	}

	key := strings.ToLower(name)
	if _, err := ss.db.ExecContext(ctx, `
		INSERT INTO assets (name, flags, size, data) VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET flags = excluded.flags, size = excluded.size, data = excluded.data
	`, key, flags, len(content), payload); err != nil {
		return err
	}

	ss.names.Set(key, struct{}{})
	return nil
}

func (ss *SQLiteSource) Contains(name string) bool {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	_, ok := ss.names.Get(strings.ToLower(name))
	return ok
}

func (ss *SQLiteSource) Entries() []string {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	return ss.names.Keys()
}

func (ss *SQLiteSource) ReadEntry(ctx context.Context, name string) ([]byte, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	if ss.db == nil {
		return nil, data.ErrClosed
	}

	var (
		flags   int
		payload []byte
	)
	err := ss.db.QueryRowContext(ctx, "SELECT flags, data FROM assets WHERE name = ?", strings.ToLower(name)).Scan(&flags, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, data.NewNotFound(data.KindEntry, name)
	}
	if err != nil {
		return nil, err
	}

	return codec.Decode(name, flags, payload)
}
