// Package postgres provides a VectorIndex backed by PostgreSQL with the
// pgvector extension. Nearest-neighbour ranking is done by the database.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver

	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/vectorutil"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

var schema = []string{
	`CREATE EXTENSION IF NOT EXISTS vector`,
	`CREATE TABLE IF NOT EXISTS docqa_collections (
		name       TEXT PRIMARY KEY,
		metric     TEXT NOT NULL,
		dimension  INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS docqa_entries (
		collection TEXT NOT NULL REFERENCES docqa_collections(name) ON DELETE CASCADE,
		id         TEXT NOT NULL,
		source     TEXT NOT NULL,
		chunk_id   INTEGER NOT NULL,
		document   TEXT NOT NULL,
		embedding  vector NOT NULL,
		updated_at TIMESTAMPTZ DEFAULT NOW(),
		PRIMARY KEY (collection, id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_docqa_entries_source ON docqa_entries (collection, source)`,
}

// VectorIndex is a named collection stored in PostgreSQL.
type VectorIndex struct {
	db         *sql.DB
	collection string

	mu          sync.RWMutex
	metric      domain.DistanceMetric
	dimension   int
	initialised bool
}

// New opens a connection pool. The schema is created by Init.
func New(dsn, collection string, metric domain.DistanceMetric) (*VectorIndex, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("%w: empty postgres dsn", domain.ErrInvalidConfig)
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	return &VectorIndex{db: db, collection: collection, metric: metric}, nil
}

// Init verifies connectivity, creates the schema and the collection, and
// loads the collection's metric and dimension.
func (v *VectorIndex) Init(ctx context.Context) error {
	if !v.metric.IsValid() {
		return fmt.Errorf("%w: distance metric %q", domain.ErrInvalidConfig, v.metric)
	}
	if err := v.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	for _, stmt := range schema {
		if _, err := v.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("execute migration: %w", err)
		}
	}

	if _, err := v.db.ExecContext(ctx, `
		INSERT INTO docqa_collections (name, metric) VALUES ($1, $2)
		ON CONFLICT (name) DO NOTHING
	`, v.collection, string(v.metric)); err != nil {
		return fmt.Errorf("create collection %s: %w", v.collection, err)
	}

	var metric string
	var dimension int
	if err := v.db.QueryRowContext(ctx,
		`SELECT metric, dimension FROM docqa_collections WHERE name = $1`, v.collection,
	).Scan(&metric, &dimension); err != nil {
		return fmt.Errorf("load collection %s: %w", v.collection, err)
	}
	if dimension != 0 {
		n, err := v.count(ctx, v.db)
		if err != nil {
			return err
		}
		if n == 0 {
			if _, err := v.db.ExecContext(ctx,
				`UPDATE docqa_collections SET dimension = 0 WHERE name = $1`, v.collection); err != nil {
				return fmt.Errorf("clear dimension of %s: %w", v.collection, err)
			}
			dimension = 0
		}
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if domain.DistanceMetric(metric) != v.metric {
		logger.Warn("collection %s was created with metric %s; ignoring configured %s", v.collection, metric, v.metric)
	}
	v.metric = domain.DistanceMetric(metric)
	v.dimension = dimension
	v.initialised = true
	return nil
}

func (v *VectorIndex) ready() error {
	if !v.initialised {
		return fmt.Errorf("%s: collection not initialised", v.collection)
	}
	return nil
}

// Upsert inserts or replaces entries in one transaction.
func (v *VectorIndex) Upsert(ctx context.Context, ids, texts []string, vectors [][]float32, metas []domain.ChunkMetadata) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.ready(); err != nil {
		return err
	}

	dim, err := vectorutil.CheckUpsert(ids, texts, vectors, metas, v.dimension)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	tx, err := v.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := v.setDimension(ctx, tx, dim); err != nil {
		return err
	}
	if err := v.insert(ctx, tx, ids, texts, vectors, metas); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert: %w", err)
	}
	v.dimension = dim
	return nil
}

// ReplaceSource deletes the entries of source and inserts the new ones in a
// single transaction.
func (v *VectorIndex) ReplaceSource(
	ctx context.Context, source string, ids, texts []string, vectors [][]float32, metas []domain.ChunkMetadata,
) (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.ready(); err != nil {
		return 0, err
	}

	tx, err := v.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin replace: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	removed, err := v.deleteSource(ctx, tx, source)
	if err != nil {
		return 0, err
	}
	remaining, err := v.count(ctx, tx)
	if err != nil {
		return 0, err
	}

	dim, err := vectorutil.CheckReplace(source, ids, texts, vectors, metas, v.dimension, remaining)
	if err != nil {
		return 0, err
	}
	if err := v.setDimension(ctx, tx, dim); err != nil {
		return 0, err
	}
	if err := v.insert(ctx, tx, ids, texts, vectors, metas); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit replace: %w", err)
	}
	v.dimension = dim
	return removed, nil
}

func (v *VectorIndex) setDimension(ctx context.Context, tx *sql.Tx, dim int) error {
	if dim == v.dimension {
		return nil
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE docqa_collections SET dimension = $1 WHERE name = $2`, dim, v.collection); err != nil {
		return fmt.Errorf("record dimension: %w", err)
	}
	return nil
}

func (v *VectorIndex) insert(ctx context.Context, tx *sql.Tx, ids, texts []string, vectors [][]float32, metas []domain.ChunkMetadata) error {
	for i, id := range ids {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO docqa_entries (collection, id, source, chunk_id, document, embedding, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6::vector, NOW())
			ON CONFLICT (collection, id) DO UPDATE SET
				source = EXCLUDED.source,
				chunk_id = EXCLUDED.chunk_id,
				document = EXCLUDED.document,
				embedding = EXCLUDED.embedding,
				updated_at = EXCLUDED.updated_at
		`, v.collection, id, metas[i].Source, metas[i].ChunkID, texts[i], formatEmbedding(vectors[i]))
		if err != nil {
			return fmt.Errorf("upsert %s: %w", id, err)
		}
	}
	return nil
}

func (v *VectorIndex) deleteSource(ctx context.Context, tx *sql.Tx, source string) (int, error) {
	res, err := tx.ExecContext(ctx,
		`DELETE FROM docqa_entries WHERE collection = $1 AND source = $2`, v.collection, source)
	if err != nil {
		return 0, fmt.Errorf("delete entries of %s: %w", source, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(n), nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (v *VectorIndex) count(ctx context.Context, q queryer) (int, error) {
	var n int
	if err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM docqa_entries WHERE collection = $1`, v.collection).Scan(&n); err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return n, nil
}

// distanceExpr returns the SQL expression computing the metric's distance to $2.
func distanceExpr(metric domain.DistanceMetric) string {
	if metric == domain.DistanceCosine {
		return "embedding <=> $2::vector"
	}
	// <-> is Euclidean distance; square it to match the other backends.
	return "(embedding <-> $2::vector) ^ 2"
}

// Query returns the topK nearest entries ranked by the database.
func (v *VectorIndex) Query(ctx context.Context, vector []float32, topK int) (domain.QueryResult, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if err := v.ready(); err != nil {
		return domain.QueryResult{}, err
	}
	if err := vectorutil.CheckQuery(vector, topK, v.dimension); err != nil {
		return domain.QueryResult{}, err
	}
	if v.dimension == 0 {
		return domain.QueryResult{}, nil
	}

	query := fmt.Sprintf(`
		SELECT id, source, chunk_id, document, %s AS distance
		FROM docqa_entries
		WHERE collection = $1
		ORDER BY distance, id
		LIMIT $3
	`, distanceExpr(v.metric))

	rows, err := v.db.QueryContext(ctx, query, v.collection, formatEmbedding(vector), topK)
	if err != nil {
		return domain.QueryResult{}, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var matches []domain.Match
	for rows.Next() {
		var m domain.Match
		if err := rows.Scan(&m.ID, &m.Metadata.Source, &m.Metadata.ChunkID, &m.Text, &m.Distance); err != nil {
			return domain.QueryResult{}, fmt.Errorf("scan row: %w", err)
		}
		matches = append(matches, m)
	}
	return domain.QueryResult{Matches: matches}, rows.Err()
}

// DeleteBySource removes every entry of the given document and clears the
// collection's dimension when nothing is left.
func (v *VectorIndex) DeleteBySource(ctx context.Context, source string) (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.ready(); err != nil {
		return 0, err
	}

	tx, err := v.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin delete: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	removed, err := v.deleteSource(ctx, tx, source)
	if err != nil {
		return 0, err
	}
	remaining, err := v.count(ctx, tx)
	if err != nil {
		return 0, err
	}
	dim := v.dimension
	if remaining == 0 {
		dim = 0
	}
	if err := v.setDimension(ctx, tx, dim); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit delete: %w", err)
	}
	v.dimension = dim
	return removed, nil
}

// Count returns the number of entries in the collection.
func (v *VectorIndex) Count(ctx context.Context) (int, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if err := v.ready(); err != nil {
		return 0, err
	}

	return v.count(ctx, v.db)
}

// Sources returns per-document entry counts ordered by source.
func (v *VectorIndex) Sources(ctx context.Context) ([]domain.SourceSummary, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if err := v.ready(); err != nil {
		return nil, err
	}

	rows, err := v.db.QueryContext(ctx, `
		SELECT source, COUNT(*) FROM docqa_entries
		WHERE collection = $1
		GROUP BY source ORDER BY source
	`, v.collection)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	defer rows.Close()

	summaries := []domain.SourceSummary{}
	for rows.Next() {
		var s domain.SourceSummary
		if err := rows.Scan(&s.Source, &s.ChunkCount); err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// Close closes the connection pool.
func (v *VectorIndex) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.initialised = false
	return v.db.Close()
}

// formatEmbedding converts a vector to pgvector text format: "[0.1,0.2,0.3]".
func formatEmbedding(embedding []float32) string {
	parts := make([]string, len(embedding))
	for i, f := range embedding {
		parts[i] = strconv.FormatFloat(float64(f), 'g', -1, 32)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

