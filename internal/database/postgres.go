package database

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// PostgresConfig controls the connection pool behind the chunk store.
type PostgresConfig struct {
	DSN             string
	Table           string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type execCloser interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Close()
}

// PostgresProvider writes chunk rows into Postgres.
//
// Expected schema:
//
//	CREATE TABLE chunks (
//	    id UUID PRIMARY KEY,
//	    document_id UUID NOT NULL,
//	    source_url TEXT NOT NULL,
//	    title TEXT,
//	    chunk_index INT NOT NULL,
//	    chunk_total INT NOT NULL,
//	    chunk_text TEXT NOT NULL,
//	    metadata JSONB,
//	    created_at TIMESTAMPTZ DEFAULT NOW()
//	);
type PostgresProvider struct {
	pool  execCloser
	table string
}

// NewPostgresProvider connects a pool using cfg.
func NewPostgresProvider(ctx context.Context, cfg PostgresConfig) (*PostgresProvider, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database.dsn is required")
	}
	table, err := tableName(cfg.Table)
	if err != nil {
		return nil, err
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &PostgresProvider{pool: pool, table: table}, nil
}

// NewPostgresProviderWithPool constructs a provider from an existing pool,
// primarily for testing.
func NewPostgresProviderWithPool(pool execCloser, table string) (*PostgresProvider, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	validated, err := tableName(table)
	if err != nil {
		return nil, err
	}
	return &PostgresProvider{pool: pool, table: validated}, nil
}

func tableName(table string) (string, error) {
	if table == "" {
		table = "chunks"
	}
	if !validTableName.MatchString(table) {
		return "", fmt.Errorf("invalid table name %q", table)
	}
	return table, nil
}

// SaveChunk inserts one chunk row.
func (p *PostgresProvider) SaveChunk(ctx context.Context, rec ChunkRecord) error {
	metadata, err := json.Marshal(rec.Metadata)
	if err != nil {
		return fmt.Errorf("marshal chunk metadata: %w", err)
	}
	query := fmt.Sprintf(`INSERT INTO %s
		(id, document_id, source_url, title, chunk_index, chunk_total, chunk_text, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`, p.table)
	if _, err := p.pool.Exec(ctx, query,
		rec.ID,
		rec.DocumentID,
		rec.SourceURL,
		rec.Title,
		rec.ChunkIndex,
		rec.ChunkTotal,
		rec.Text,
		metadata,
	); err != nil {
		return fmt.Errorf("insert chunk: %w", err)
	}
	return nil
}

// Close releases the pool.
func (p *PostgresProvider) Close() {
	if p == nil || p.pool == nil {
		return
	}
	p.pool.Close()
}
