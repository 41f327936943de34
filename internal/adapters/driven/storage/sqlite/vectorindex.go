package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/vectorutil"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

// errNotInitialised is returned when a collection is used before Init.
var errNotInitialised = errors.New("collection not initialised")

// VectorIndex is a named collection stored in SQLite.
type VectorIndex struct {
	store      *Store
	ownsStore  bool
	collection string

	mu          sync.RWMutex
	metric      domain.DistanceMetric
	dimension   int
	initialised bool
}

// Open creates a store in dataDir and returns the named collection, initialised.
// Closing the returned index closes the store.
func Open(ctx context.Context, dataDir, collection string, metric domain.DistanceMetric) (*VectorIndex, error) {
	store, err := NewStore(dataDir)
	if err != nil {
		return nil, err
	}
	idx := store.VectorIndex(collection, metric)
	idx.ownsStore = true
	if err := idx.Init(ctx); err != nil {
		store.Close()
		return nil, err
	}
	return idx, nil
}

// Init creates the collection if absent and loads its metric and dimension.
func (v *VectorIndex) Init(ctx context.Context) error {
	if !v.metric.IsValid() {
		return fmt.Errorf("%w: distance metric %q", domain.ErrInvalidConfig, v.metric)
	}

	_, err := v.store.db.ExecContext(ctx, `
		INSERT INTO collections (name, metric) VALUES (?, ?)
		ON CONFLICT(name) DO NOTHING
	`, v.collection, string(v.metric))
	if err != nil {
		return fmt.Errorf("creating collection %s: %w", v.collection, err)
	}

	var metric string
	var dimension int
	row := v.store.db.QueryRowContext(ctx,
		"SELECT metric, dimension FROM collections WHERE name = ?", v.collection)
	if err := row.Scan(&metric, &dimension); err != nil {
		return fmt.Errorf("loading collection %s: %w", v.collection, err)
	}

	// Collections emptied before the dimension was cleared on delete.
	if dimension != 0 {
		n, err := v.count(ctx, v.store.db)
		if err != nil {
			return err
		}
		if n == 0 {
			if _, err := v.store.db.ExecContext(ctx,
				"UPDATE collections SET dimension = 0 WHERE name = ?", v.collection); err != nil {
				return fmt.Errorf("clearing dimension of %s: %w", v.collection, err)
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

// Metric returns the collection's distance metric.
func (v *VectorIndex) Metric() domain.DistanceMetric {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.metric
}

// Dimension returns the established dimension, or 0 while the collection is empty.
func (v *VectorIndex) Dimension() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.dimension
}

func (v *VectorIndex) ready() error {
	if !v.initialised {
		return fmt.Errorf("%s: %w", v.collection, errNotInitialised)
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

	tx, err := v.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning upsert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := v.setDimension(ctx, tx, dim); err != nil {
		return err
	}
	if err := v.insert(ctx, tx, ids, texts, vectors, metas); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing upsert: %w", err)
	}
	v.dimension = dim
	return nil
}

// ReplaceSource deletes the entries of source and inserts the new ones in a
// single transaction, so a rejected batch leaves the old entries in place.
func (v *VectorIndex) ReplaceSource(
	ctx context.Context, source string, ids, texts []string, vectors [][]float32, metas []domain.ChunkMetadata,
) (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.ready(); err != nil {
		return 0, err
	}

	tx, err := v.store.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning replace: %w", err)
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
		return 0, fmt.Errorf("committing replace: %w", err)
	}
	v.dimension = dim
	return removed, nil
}

func (v *VectorIndex) setDimension(ctx context.Context, tx *sql.Tx, dim int) error {
	if dim == v.dimension {
		return nil
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE collections SET dimension = ? WHERE name = ?", dim, v.collection); err != nil {
		return fmt.Errorf("recording dimension: %w", err)
	}
	return nil
}

func (v *VectorIndex) insert(ctx context.Context, tx *sql.Tx, ids, texts []string, vectors [][]float32, metas []domain.ChunkMetadata) error {
	if len(ids) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO entries (collection, id, source, chunk_id, document, embedding, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(collection, id) DO UPDATE SET
			source = excluded.source,
			chunk_id = excluded.chunk_id,
			document = excluded.document,
			embedding = excluded.embedding,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	for i, id := range ids {
		if _, err := stmt.ExecContext(ctx, v.collection, id, metas[i].Source, metas[i].ChunkID,
			texts[i], float32SliceToBytes(vectors[i])); err != nil {
			return fmt.Errorf("upserting %s: %w", id, err)
		}
	}
	return nil
}

func (v *VectorIndex) deleteSource(ctx context.Context, tx *sql.Tx, source string) (int, error) {
	res, err := tx.ExecContext(ctx,
		"DELETE FROM entries WHERE collection = ? AND source = ?", v.collection, source)
	if err != nil {
		return 0, fmt.Errorf("deleting entries of %s: %w", source, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting deleted entries: %w", err)
	}
	return int(n), nil
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (v *VectorIndex) count(ctx context.Context, q queryer) (int, error) {
	var n int
	row := q.QueryRowContext(ctx, "SELECT COUNT(*) FROM entries WHERE collection = ?", v.collection)
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("counting entries: %w", err)
	}
	return n, nil
}

// Query scans the collection and returns the topK nearest entries.
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

	rows, err := v.store.db.QueryContext(ctx, `
		SELECT id, source, chunk_id, document, embedding
		FROM entries WHERE collection = ?
	`, v.collection)
	if err != nil {
		return domain.QueryResult{}, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	var matches []domain.Match
	for rows.Next() {
		var m domain.Match
		var blob []byte
		if err := rows.Scan(&m.ID, &m.Metadata.Source, &m.Metadata.ChunkID, &m.Text, &blob); err != nil {
			return domain.QueryResult{}, fmt.Errorf("scanning entry: %w", err)
		}
		m.Distance = vectorutil.Distance(v.metric, vector, bytesToFloat32Slice(blob))
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return domain.QueryResult{}, fmt.Errorf("iterating entries: %w", err)
	}

	return domain.QueryResult{Matches: vectorutil.TopK(matches, topK)}, nil
}

// DeleteBySource removes every entry of the given document. Emptying the
// collection clears its dimension so a different embedding model can be used.
func (v *VectorIndex) DeleteBySource(ctx context.Context, source string) (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.ready(); err != nil {
		return 0, err
	}

	tx, err := v.store.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning delete: %w", err)
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
		return 0, fmt.Errorf("committing delete: %w", err)
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

	return v.count(ctx, v.store.db)
}

// Sources returns per-document entry counts ordered by source.
func (v *VectorIndex) Sources(ctx context.Context) ([]domain.SourceSummary, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if err := v.ready(); err != nil {
		return nil, err
	}

	rows, err := v.store.db.QueryContext(ctx, `
		SELECT source, COUNT(*) FROM entries
		WHERE collection = ?
		GROUP BY source ORDER BY source
	`, v.collection)
	if err != nil {
		return nil, fmt.Errorf("listing sources: %w", err)
	}
	defer rows.Close()

	summaries := []domain.SourceSummary{}
	for rows.Next() {
		var s domain.SourceSummary
		if err := rows.Scan(&s.Source, &s.ChunkCount); err != nil {
			return nil, fmt.Errorf("scanning source: %w", err)
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// Close releases the store if this index opened it.
func (v *VectorIndex) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.initialised = false
	if v.ownsStore {
		return v.store.Close()
	}
	return nil
}

