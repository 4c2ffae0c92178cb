package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/MrWong99/callaudit/pkg/store"
)

// PhraseEmbeddingIndexImpl backs [store.PhraseEmbeddingIndex] with a
// PostgreSQL phrase_embeddings table and a pgvector HNSW index for
// approximate nearest-neighbour search.
//
// Obtain one via [Store.Embeddings] rather than constructing directly. All
// methods are safe for concurrent use.
type PhraseEmbeddingIndexImpl struct {
	pool *pgxpool.Pool
}

// IndexPhrase implements [store.PhraseEmbeddingIndex]. It upserts the
// embedding for (category, phrase); a pre-existing row is fully replaced.
func (s *PhraseEmbeddingIndexImpl) IndexPhrase(ctx context.Context, category, phrase string, embedding []float32) error {
	const q = `
		INSERT INTO phrase_embeddings (category, phrase, embedding, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (category, phrase) DO UPDATE SET
		    embedding  = EXCLUDED.embedding,
		    updated_at = now()`

	vec := pgvector.NewVector(embedding)
	if _, err := s.pool.Exec(ctx, q, category, phrase, vec); err != nil {
		return fmt.Errorf("phrase embedding index: index phrase: %w", err)
	}
	return nil
}

// Search implements [store.PhraseEmbeddingIndex]. It finds the topK phrases
// whose embeddings are closest (cosine distance) to embedding, ordered by
// ascending distance (most similar first).
func (s *PhraseEmbeddingIndexImpl) Search(ctx context.Context, embedding []float32, topK int) ([]store.PhraseMatch, error) {
	queryVec := pgvector.NewVector(embedding)

	const q = `
		SELECT category, phrase, embedding <=> $1 AS distance
		FROM   phrase_embeddings
		ORDER  BY distance
		LIMIT  $2`

	rows, err := s.pool.Query(ctx, q, queryVec, topK)
	if err != nil {
		return nil, fmt.Errorf("phrase embedding index: search: %w", err)
	}

	results, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (store.PhraseMatch, error) {
		var m store.PhraseMatch
		if err := row.Scan(&m.Category, &m.Phrase, &m.Distance); err != nil {
			return store.PhraseMatch{}, err
		}
		return m, nil
	})
	if err != nil {
		return nil, fmt.Errorf("phrase embedding index: scan rows: %w", err)
	}
	if results == nil {
		results = []store.PhraseMatch{}
	}
	return results, nil
}

var _ store.PhraseEmbeddingIndex = (*PhraseEmbeddingIndexImpl)(nil)
