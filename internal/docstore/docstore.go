// Package docstore persists process metadata — everything the core
// pipeline produces about a single transform() run besides the
// statement stream itself — to Postgres via bun, grounded on the
// teacher's infrastructure/storage.BunStore and WorkflowModel pattern.
// This is explicitly an external collaborator (spec.md §1, "persistence
// of process metadata to a document store"): the core pipeline never
// imports this package.
package docstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// ProcessMetadata is one transform() run's persisted record: the raw
// input, the statistics the transformer accumulated, and enough of the
// statement stream to audit or replay it.
type ProcessMetadata struct {
	bun.BaseModel `bun:"table:process_metadata,alias:pm"`

	ID         int64          `bun:"id,pk,autoincrement"`
	Filename   string         `bun:"filename,notnull"`
	ProcessID  string         `bun:"process_id,notnull,unique"`
	NodeCount  int            `bun:"node_count,notnull"`
	EdgeCount  int            `bun:"edge_count,notnull"`
	Status     string         `bun:"status,notnull"`
	Source     string         `bun:"source"`
	ExternalID string         `bun:"external_model_id"`
	GraphStats map[string]any `bun:"graph_stats,type:jsonb"`
	RawJSON    map[string]any `bun:"raw_json,type:jsonb"`
	CypherFull []string       `bun:"cypher_full,type:jsonb"`
	CreatedAt  time.Time      `bun:"created_at,notnull,default:current_timestamp"`
}

// Store persists and retrieves ProcessMetadata records.
type Store interface {
	InitSchema(ctx context.Context) error
	Save(ctx context.Context, meta *ProcessMetadata) error
	FindByProcessID(ctx context.Context, processID string) (*ProcessMetadata, error)
	Close() error
}

// BunStore is the production Store backed by Postgres.
type BunStore struct {
	db *bun.DB
}

// NewBunStore dials Postgres at dsn using pgdriver and wraps the
// resulting *sql.DB in a bun.DB with the Postgres dialect, exactly as
// the teacher's NewBunStore does.
func NewBunStore(dsn string) (*BunStore, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	return &BunStore{db: db}, nil
}

// InitSchema creates the process_metadata table if it does not exist.
func (s *BunStore) InitSchema(ctx context.Context) error {
	_, err := s.db.NewCreateTable().Model((*ProcessMetadata)(nil)).IfNotExists().Exec(ctx)
	return err
}

// Save inserts meta, relying on the unique process_id constraint to
// reject accidental double-persistence of the same transform() run.
func (s *BunStore) Save(ctx context.Context, meta *ProcessMetadata) error {
	_, err := s.db.NewInsert().Model(meta).Exec(ctx)
	return err
}

// FindByProcessID looks up a previously persisted run by its process id.
func (s *BunStore) FindByProcessID(ctx context.Context, processID string) (*ProcessMetadata, error) {
	meta := new(ProcessMetadata)
	err := s.db.NewSelect().Model(meta).Where("process_id = ?", processID).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return meta, nil
}

// Close releases the underlying connection pool.
func (s *BunStore) Close() error {
	return s.db.Close()
}
