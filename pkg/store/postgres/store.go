package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxvec "github.com/pgvector/pgvector-go/pgx"

	"github.com/MrWong99/callaudit/pkg/store"
)

// Compile-time interface checks.
var (
	_ store.Store               = (*Store)(nil)
	_ store.PhraseEmbeddingIndex = (*PhraseEmbeddingIndexImpl)(nil)
)

// Store is the PostgreSQL-backed implementation of [store.Store]. It embeds
// *PhraseStoreImpl so Store satisfies the interface directly, and exposes
// the embedding index separately via [Store.Embeddings] since
// [store.PhraseEmbeddingIndex] is a distinct collaborator (the rebuttal
// phrase repository writes to it independently of the phrase catalogue).
//
// All operations are safe for concurrent use.
type Store struct {
	*PhraseStoreImpl
	pool       *pgxpool.Pool
	embeddings *PhraseEmbeddingIndexImpl
}

// NewStore creates a new Store, establishes a connection pool to the
// PostgreSQL database at dsn, registers pgvector types on every connection,
// and runs [Migrate] to ensure all required tables and extensions exist.
//
// embeddingDimensions must match the output dimension of the Embedder used
// for this deployment (e.g. 768 for nomic-embed-text, 1536 for OpenAI
// text-embedding-3-small). Changing it after the first migration requires a
// manual schema update.
func NewStore(ctx context.Context, dsn string, embeddingDimensions int) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres store: parse dsn: %w", err)
	}

	// Register pgvector types on every new connection so that vector columns
	// can be scanned into and inserted from pgvector.Vector values.
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres store: create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres store: ping: %w", err)
	}

	if err := Migrate(ctx, pool, embeddingDimensions); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres store: migrate: %w", err)
	}

	return &Store{
		PhraseStoreImpl: &PhraseStoreImpl{pool: pool},
		pool:            pool,
		embeddings:      &PhraseEmbeddingIndexImpl{pool: pool},
	}, nil
}

// Embeddings returns the [store.PhraseEmbeddingIndex] backing this Store.
func (s *Store) Embeddings() *PhraseEmbeddingIndexImpl { return s.embeddings }

// Close releases all connections held by the underlying connection pool. It
// should be called when the Store is no longer needed, typically via defer.
func (s *Store) Close() {
	s.pool.Close()
}
