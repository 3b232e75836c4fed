package vectorstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"
)

// PgStore implements Store on Postgres + pgvector. Collections share one
// table and are kept apart by the collection column.
type PgStore struct {
	pool       *pgxpool.Pool
	embedder   Embedder
	collection string
}

// NewPgStore creates a store scoped to the given collection.
func NewPgStore(pool *pgxpool.Pool, embedder Embedder, collection string) *PgStore {
	return &PgStore{pool: pool, embedder: embedder, collection: collection}
}

func (s *PgStore) Upsert(ctx context.Context, doc Document) error {
	embedding, err := s.embedder.Embed(ctx, doc.Text)
	if err != nil {
		return fmt.Errorf("embedding document %s: %w", doc.ID, err)
	}

	metadata, err := json.Marshal(doc.Metadata)
	if err != nil {
		return fmt.Errorf("marshaling metadata for %s: %w", doc.ID, err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO vector_documents (collection, doc_id, content, metadata, embedding)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (collection, doc_id)
		 DO UPDATE SET content = EXCLUDED.content, metadata = EXCLUDED.metadata, embedding = EXCLUDED.embedding`,
		s.collection, doc.ID, doc.Text, metadata, pgvector.NewVector(embedding),
	)
	if err != nil {
		return fmt.Errorf("upserting document %s: %w: %w", doc.ID, ErrStoreUnavailable, err)
	}
	return nil
}

func (s *PgStore) Query(ctx context.Context, text string, k int, filter Filter) ([]Match, error) {
	embedding, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	vec := pgvector.NewVector(embedding)

	query := `SELECT doc_id, metadata, embedding <=> $1 AS distance
		 FROM vector_documents
		 WHERE collection = $2`
	args := []any{vec, s.collection}
	if !filter.isZero() {
		query += ` AND metadata->>$3 = $4`
		args = append(args, filter.Key, filter.Value)
	}
	query += fmt.Sprintf(` ORDER BY embedding <=> $1 LIMIT %d`, k)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying collection %s: %w: %w", s.collection, ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var m Match
		var metadata []byte
		if err := rows.Scan(&m.ID, &metadata, &m.Distance); err != nil {
			return nil, fmt.Errorf("scanning match: %w", err)
		}
		if err := json.Unmarshal(metadata, &m.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshaling metadata for %s: %w", m.ID, err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (s *PgStore) Delete(ctx context.Context, filter Filter) error {
	query := `DELETE FROM vector_documents WHERE collection = $1`
	args := []any{s.collection}
	if !filter.isZero() {
		query += ` AND metadata->>$2 = $3`
		args = append(args, filter.Key, filter.Value)
	}

	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("deleting from collection %s: %w: %w", s.collection, ErrStoreUnavailable, err)
	}
	return nil
}
