// Package postgres provides a PostgreSQL + pgvector backed implementation of
// [store.Store] and [store.PhraseEmbeddingIndex].
//
// All tables share a single [pgxpool.Pool] connection pool. The pgvector
// extension must be available in the target database; [Migrate] installs it
// automatically via CREATE EXTENSION IF NOT EXISTS.
//
// Usage:
//
//	st, err := postgres.NewStore(ctx, dsn, 768)
//	if err != nil { … }
//	defer st.Close()
//
//	phrases, err := st.LoadPhrases(ctx)
//	err = st.Embeddings().IndexPhrase(ctx, "other_property_family", "i already own one", embedding)
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const ddlPhraseEntries = `
CREATE TABLE IF NOT EXISTS phrase_entries (
    id                    BIGSERIAL    PRIMARY KEY,
    category              TEXT         NOT NULL,
    phrase                TEXT         NOT NULL,
    source                TEXT         NOT NULL DEFAULT 'manual',
    usage_count           BIGINT       NOT NULL DEFAULT 0,
    successful_detections BIGINT       NOT NULL DEFAULT 0,
    effectiveness_score   DOUBLE PRECISION,
    added_at              TIMESTAMPTZ  NOT NULL DEFAULT now(),
    UNIQUE (category, phrase)
);

CREATE INDEX IF NOT EXISTS idx_phrase_entries_category ON phrase_entries (category);
`

const ddlPendingPhrases = `
CREATE TABLE IF NOT EXISTS pending_phrases (
    id                BIGSERIAL    PRIMARY KEY,
    phrase            TEXT         NOT NULL,
    phrase_key        TEXT         NOT NULL,
    category          TEXT         NOT NULL,
    confidence        DOUBLE PRECISION NOT NULL,
    detection_count   BIGINT       NOT NULL DEFAULT 1,
    first_seen_at     TIMESTAMPTZ  NOT NULL DEFAULT now(),
    last_seen_at      TIMESTAMPTZ  NOT NULL DEFAULT now(),
    sample_contexts   TEXT         NOT NULL DEFAULT '',
    similar_to        TEXT         NOT NULL DEFAULT '',
    quality_score     DOUBLE PRECISION,
    canonical_form    TEXT         NOT NULL DEFAULT '',
    status            TEXT         NOT NULL DEFAULT 'pending',
    UNIQUE (phrase_key)
);

CREATE INDEX IF NOT EXISTS idx_pending_phrases_status ON pending_phrases (status);
CREATE INDEX IF NOT EXISTS idx_pending_phrases_category ON pending_phrases (category);
`

const ddlPhraseBlacklist = `
CREATE TABLE IF NOT EXISTS phrase_blacklist (
    phrase       TEXT         NOT NULL,
    category     TEXT         NOT NULL,
    reason       TEXT         NOT NULL DEFAULT '',
    rejected_at  TIMESTAMPTZ  NOT NULL DEFAULT now(),
    PRIMARY KEY (phrase, category)
);
`

const ddlCategoryPerformance = `
CREATE TABLE IF NOT EXISTS category_performance (
    category          TEXT         PRIMARY KEY,
    approval_rate     DOUBLE PRECISION NOT NULL DEFAULT 0,
    avg_quality_score DOUBLE PRECISION NOT NULL DEFAULT 0,
    total_phrases     BIGINT       NOT NULL DEFAULT 0,
    updated_at        TIMESTAMPTZ  NOT NULL DEFAULT now()
);
`

const ddlBatchSettings = `
CREATE TABLE IF NOT EXISTS batch_settings (
    user_id             TEXT         PRIMARY KEY,
    max_workers         INT          NOT NULL DEFAULT 0,
    per_file_timeout_sec INT         NOT NULL DEFAULT 0,
    lite_mode           BOOLEAN      NOT NULL DEFAULT false,
    updated_at          TIMESTAMPTZ  NOT NULL DEFAULT now()
);
`

// ddlPhraseEmbeddings returns the phrase-embedding-index DDL with the vector
// dimension baked into the column type.
func ddlPhraseEmbeddings(embeddingDimensions int) string {
	return fmt.Sprintf(`
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS phrase_embeddings (
    category   TEXT         NOT NULL,
    phrase     TEXT         NOT NULL,
    embedding  vector(%d)   NOT NULL,
    updated_at TIMESTAMPTZ  NOT NULL DEFAULT now(),
    PRIMARY KEY (category, phrase)
);

CREATE INDEX IF NOT EXISTS idx_phrase_embeddings_vec
    ON phrase_embeddings USING hnsw (embedding vector_cosine_ops);
`, embeddingDimensions)
}

// Migrate creates or ensures all required tables and extensions exist. It is
// idempotent and safe to call on every application start.
//
// embeddingDimensions must match the output dimension of the Embedder used
// for this deployment (e.g. 768 for nomic-embed-text, 1536 for OpenAI
// text-embedding-3-small). Changing it after the first migration requires a
// manual schema update.
func Migrate(ctx context.Context, pool *pgxpool.Pool, embeddingDimensions int) error {
	statements := []string{
		ddlPhraseEntries,
		ddlPendingPhrases,
		ddlPhraseBlacklist,
		ddlCategoryPerformance,
		ddlBatchSettings,
		ddlPhraseEmbeddings(embeddingDimensions),
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("postgres migrate: %w", err)
		}
	}
	return nil
}
