package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/athena/internal/core/domain"
	"github.com/custodia-labs/athena/internal/core/ports/driven"
)

// ==================== Source Store ====================

// sourceStore implements driven.SourceStore.
type sourceStore struct {
	store *Store
}

var _ driven.SourceStore = (*sourceStore)(nil)

// Save stores or replaces a source record together with its images and
// retired chunk ids.
func (s *sourceStore) Save(ctx context.Context, doc domain.SourceDocument) error {
	chunkIDs, err := json.Marshal(nonNilInts(doc.ChunkIDs))
	if err != nil {
		return fmt.Errorf("marshalling chunk ids: %w", err)
	}

	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = now
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sources (id, fingerprint, chunk_ids, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			fingerprint = excluded.fingerprint,
			chunk_ids = excluded.chunk_ids,
			updated_at = excluded.updated_at
	`, doc.ID, doc.Fingerprint, string(chunkIDs), doc.CreatedAt, doc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("saving source: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM source_images WHERE source_id = ?", doc.ID); err != nil {
		return fmt.Errorf("clearing images: %w", err)
	}
	if err := insertImages(ctx, tx, doc.ID, doc.Images); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM retired_chunks WHERE source_id = ?", doc.ID); err != nil {
		return fmt.Errorf("clearing retired chunks: %w", err)
	}
	for _, id := range doc.RetiredChunkIDs {
		if _, err := tx.ExecContext(ctx,
			"INSERT OR REPLACE INTO retired_chunks (chunk_id, source_id) VALUES (?, ?)", id, doc.ID); err != nil {
			return fmt.Errorf("saving retired chunk: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing source: %w", err)
	}
	return nil
}

// Get retrieves a source record by filename.
func (s *sourceStore) Get(ctx context.Context, id string) (*domain.SourceDocument, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, fingerprint, chunk_ids, created_at, updated_at
		FROM sources WHERE id = ?
	`, id)

	doc, err := scanSource(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := s.loadChildren(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// AppendImages adds images to an existing record.
func (s *sourceStore) AppendImages(ctx context.Context, id string, images []domain.ImageRef) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	res, err := tx.ExecContext(ctx, "UPDATE sources SET updated_at = ? WHERE id = ?", time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("touching source: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}

	if err := insertImages(ctx, tx, id, images); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing images: %w", err)
	}
	return nil
}

// List returns all source records ordered by id.
func (s *sourceStore) List(ctx context.Context) ([]domain.SourceDocument, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, fingerprint, chunk_ids, created_at, updated_at
		FROM sources ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying sources: %w", err)
	}

	var docs []domain.SourceDocument //nolint:prealloc // size unknown from query
	for rows.Next() {
		doc, err := scanSource(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterating sources: %w", err)
	}
	rows.Close()

	// Children are loaded once the cursor is closed.
	for i := range docs {
		if err := s.loadChildren(ctx, &docs[i]); err != nil {
			return nil, err
		}
	}
	return docs, nil
}

// RetiredChunkIDs returns every chunk id superseded by a re-ingest.
func (s *sourceStore) RetiredChunkIDs(ctx context.Context) (map[int]struct{}, error) {
	rows, err := s.store.db.QueryContext(ctx, "SELECT chunk_id FROM retired_chunks")
	if err != nil {
		return nil, fmt.Errorf("querying retired chunks: %w", err)
	}
	defer rows.Close()

	retired := make(map[int]struct{})
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning retired chunk: %w", err)
		}
		retired[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating retired chunks: %w", err)
	}
	return retired, nil
}

// Clear removes every source record.
func (s *sourceStore) Clear(ctx context.Context) error {
	// Images and retired chunks cascade.
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM sources"); err != nil {
		return fmt.Errorf("clearing sources: %w", err)
	}
	return nil
}

func (s *sourceStore) loadChildren(ctx context.Context, doc *domain.SourceDocument) error {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT path, page_index, ordinal FROM source_images
		WHERE source_id = ? ORDER BY page_index, ordinal
	`, doc.ID)
	if err != nil {
		return fmt.Errorf("querying images: %w", err)
	}
	for rows.Next() {
		var img domain.ImageRef
		if err := rows.Scan(&img.Path, &img.PageIndex, &img.Ordinal); err != nil {
			rows.Close()
			return fmt.Errorf("scanning image: %w", err)
		}
		doc.Images = append(doc.Images, img)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("iterating images: %w", err)
	}
	rows.Close()

	rows, err = s.store.db.QueryContext(ctx,
		"SELECT chunk_id FROM retired_chunks WHERE source_id = ? ORDER BY chunk_id", doc.ID)
	if err != nil {
		return fmt.Errorf("querying retired chunks: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("scanning retired chunk: %w", err)
		}
		doc.RetiredChunkIDs = append(doc.RetiredChunkIDs, id)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating retired chunks: %w", err)
	}
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSource(row rowScanner) (*domain.SourceDocument, error) {
	var doc domain.SourceDocument
	var chunkIDs string
	var createdAt, updatedAt sql.NullTime
	if err := row.Scan(&doc.ID, &doc.Fingerprint, &chunkIDs, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning source: %w", err)
	}

	if err := json.Unmarshal([]byte(chunkIDs), &doc.ChunkIDs); err != nil {
		return nil, fmt.Errorf("unmarshaling chunk ids: %w", err)
	}
	if createdAt.Valid {
		doc.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		doc.UpdatedAt = updatedAt.Time
	}
	return &doc, nil
}

func insertImages(ctx context.Context, tx *sql.Tx, sourceID string, images []domain.ImageRef) error {
	for _, img := range images {
		_, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO source_images (source_id, page_index, ordinal, path)
			VALUES (?, ?, ?, ?)
		`, sourceID, img.PageIndex, img.Ordinal, img.Path)
		if err != nil {
			return fmt.Errorf("saving image: %w", err)
		}
	}
	return nil
}

func nonNilInts(ids []int) []int {
	if ids == nil {
		return []int{}
	}
	return ids
}
