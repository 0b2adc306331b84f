package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tidwall/btree"

	"github.com/mwantia/cncmaps/data"
	"github.com/mwantia/cncmaps/source/codec"
)

// PostgresSource serves entries of an asset pack stored in PostgreSQL.
// The table layout matches the sqlite asset pack.
type PostgresSource struct {
	mu         sync.RWMutex
	connString string
	pool       *pgxpool.Pool

	names *btree.Map[string, struct{}]
}

func NewPostgresSource(connString string) *PostgresSource {
	return &PostgresSource{
		connString: connString,
		names:      btree.NewMap[string, struct{}](0),
	}
}

func (ps *PostgresSource) Name() string {
	if i := strings.LastIndex(ps.connString, "@"); i >= 0 {
		return "postgres://" + ps.connString[i+1:]
	}
	return ps.connString
}

func (ps *PostgresSource) Open(ctx context.Context) error {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	config, err := pgxpool.ParseConfig(ps.connString)
	if err != nil {
		return fmt.Errorf("invalid connection string: %w", err)
	}

	// Disable prepared statement caching to avoid collisions in pooled connections
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}

	if _, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS assets (
			name TEXT PRIMARY KEY,
			flags INTEGER NOT NULL DEFAULT 0,
			size BIGINT NOT NULL,
			data BYTEA NOT NULL
		)
	`); err != nil {
		pool.Close()
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	rows, err := pool.Query(ctx, "SELECT name FROM assets")
	if err != nil {
		pool.Close()
		return err
	}

	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		pool.Close()
		return err
	}
	for _, name := range names {
		ps.names.Set(name, struct{}{})
	}

	ps.pool = pool
	return nil
}

func (ps *PostgresSource) Close(ctx context.Context) error {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if ps.pool != nil {
		ps.pool.Close()
		ps.pool = nil
	}
	return nil
}

// Put stores content under name, zstd compressed when compress is set.
func (ps *PostgresSource) Put(ctx context.Context, name string, content []byte, compress bool) error {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if ps.pool == nil {
		return data.ErrClosed
	}

	flags, payload, err := codec.Encode(content, compress)
	if err != nil {
		return err
	}

	key := strings.ToLower(name)
	if _, err := ps.pool.Exec(ctx, `
		INSERT INTO assets (name, flags, size, data) VALUES ($1, $2, $3, $4)
		ON CONFLICT (name) DO UPDATE SET flags = EXCLUDED.flags, size = EXCLUDED.size, data = EXCLUDED.data
	`, key, flags, len(content), payload); err != nil {
		return err
	}

	ps.names.Set(key, struct{}{})
	return nil
}

func (ps *PostgresSource) Contains(name string) bool {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	_, ok := ps.names.Get(strings.ToLower(name))
	return ok
}

func (ps *PostgresSource) Entries() []string {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	return ps.names.Keys()
}

func (ps *PostgresSource) ReadEntry(ctx context.Context, name string) ([]byte, error) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	if ps.pool == nil {
		return nil, data.ErrClosed
	}

	var (
		flags   int
		payload []byte
	)
	err := ps.pool.QueryRow(ctx, "SELECT flags, data FROM assets WHERE name = $1", strings.ToLower(name)).Scan(&flags, &payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, data.NewNotFound(data.KindEntry, name)
	}
	if err != nil {
		return nil, err
	}

	return codec.Decode(name, flags, payload)
}
