package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/custodia-labs/athena/internal/core/domain"
	"github.com/custodia-labs/athena/internal/core/ports/driven"
)

// ==================== Vector Snapshot Store ====================

// snapshotStore persists the vector store triple in three tables.
// Rows are keyed by chunk id; Save only inserts the ids not yet stored,
// all inside one transaction.
type snapshotStore struct {
	store *Store
}

var _ driven.SnapshotStore = (*snapshotStore)(nil)

// Save writes the rows of snap missing from the database.
// A snapshot shorter than the stored one (after a reset) rewrites the tables.
func (s *snapshotStore) Save(ctx context.Context, snap *domain.VectorSnapshot) error {
	if snap == nil {
		return errors.New("snapshot is nil")
	}
	if !snap.Consistent() {
		return fmt.Errorf("%w: snapshot arrays disagree", domain.ErrInvalidInput)
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	var stored int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM vector_embeddings").Scan(&stored); err != nil {
		return fmt.Errorf("counting stored vectors: %w", err)
	}

	if stored > snap.Len() {
		if err := truncateVectors(ctx, tx); err != nil {
			return err
		}
		stored = 0
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO vector_meta (id, dimensions) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET dimensions = excluded.dimensions
	`, snap.Dimensions)
	if err != nil {
		return fmt.Errorf("saving dimensions: %w", err)
	}

	for id := stored; id < snap.Len(); id++ {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO vector_embeddings (chunk_id, embedding) VALUES (?, ?)",
			id, float32SliceToBytes(snap.Embeddings[id])); err != nil {
			return fmt.Errorf("saving embedding %d: %w", id, err)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO vector_texts (chunk_id, text) VALUES (?, ?)", id, snap.Texts[id]); err != nil {
			return fmt.Errorf("saving chunk text %d: %w", id, err)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO vector_sources (chunk_id, source_id) VALUES (?, ?)", id, snap.Sources[id]); err != nil {
			return fmt.Errorf("saving chunk source %d: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing snapshot: %w", err)
	}
	return nil
}

// Load reads the stored snapshot. Empty or disagreeing tables yield
// domain.ErrStoreNotFound.
func (s *snapshotStore) Load(ctx context.Context) (*domain.VectorSnapshot, error) {
	var dims int
	err := s.store.db.QueryRowContext(ctx, "SELECT dimensions FROM vector_meta WHERE id = 1").Scan(&dims)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrStoreNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading dimensions: %w", err)
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT e.chunk_id, e.embedding, t.text, src.source_id
		FROM vector_embeddings e
		LEFT JOIN vector_texts t ON t.chunk_id = e.chunk_id
		LEFT JOIN vector_sources src ON src.chunk_id = e.chunk_id
		ORDER BY e.chunk_id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying vectors: %w", err)
	}
	defer rows.Close()

	snap := &domain.VectorSnapshot{Dimensions: dims}
	for rows.Next() {
		var id int
		var blob []byte
		var text, source sql.NullString
		if err := rows.Scan(&id, &blob, &text, &source); err != nil {
			return nil, fmt.Errorf("scanning vector: %w", err)
		}
		if id != snap.Len() || !text.Valid || !source.Valid {
			return nil, fmt.Errorf("%w: chunk %d is incomplete", domain.ErrStoreNotFound, id)
		}
		snap.Embeddings = append(snap.Embeddings, bytesToFloat32Slice(blob))
		snap.Texts = append(snap.Texts, text.String)
		snap.Sources = append(snap.Sources, source.String)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating vectors: %w", err)
	}

	if snap.Len() == 0 {
		return nil, domain.ErrStoreNotFound
	}
	if !snap.Consistent() {
		return nil, fmt.Errorf("%w: stored vectors disagree with dimension %d", domain.ErrStoreNotFound, dims)
	}
	return snap, nil
}

// Clear removes every stored vector.
func (s *snapshotStore) Clear(ctx context.Context) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if err := truncateVectors(ctx, tx); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM vector_meta"); err != nil {
		return fmt.Errorf("clearing vector meta: %w", err)
	}
	return tx.Commit()
}

func truncateVectors(ctx context.Context, tx *sql.Tx) error {
	for _, table := range []string{"vector_embeddings", "vector_texts", "vector_sources"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}
	return nil
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
