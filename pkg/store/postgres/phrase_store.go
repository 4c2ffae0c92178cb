package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MrWong99/callaudit/internal/domain"
	"github.com/MrWong99/callaudit/pkg/store"
)

// maxSampleContexts bounds the sample_contexts column; beyond this, older
// samples are dropped in favour of the newest ones.
const maxSampleContexts = 5

// PhraseStoreImpl backs [store.Store] with the phrase_entries,
// pending_phrases, phrase_blacklist, category_performance, and
// batch_settings tables.
//
// Obtain one via [NewStore] rather than constructing directly. All methods
// are safe for concurrent use.
type PhraseStoreImpl struct {
	pool *pgxpool.Pool
}

// LoadPhrases implements [store.Store].
func (s *PhraseStoreImpl) LoadPhrases(ctx context.Context) ([]domain.PhraseEntry, error) {
	const q = `
		SELECT id, category, phrase, source, usage_count, successful_detections,
		       effectiveness_score, added_at
		FROM   phrase_entries
		ORDER  BY category, phrase`

	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("phrase store: load phrases: %w", err)
	}

	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.PhraseEntry, error) {
		var (
			e   domain.PhraseEntry
			id  int64
			src string
		)
		if err := row.Scan(&id, &e.Category, &e.Phrase, &src, &e.UsageCount,
			&e.SuccessfulDetections, &e.EffectivenessScore, &e.AddedAt); err != nil {
			return domain.PhraseEntry{}, err
		}
		e.ID = fmt.Sprintf("%d", id)
		e.Source = domain.PhraseSource(src)
		return e, nil
	})
	if err != nil {
		return nil, fmt.Errorf("phrase store: scan phrases: %w", err)
	}
	if entries == nil {
		entries = []domain.PhraseEntry{}
	}
	return entries, nil
}

// UpsertPendingPhrase implements [store.Store]. Deduplication keys on
// lower(trim(phrase)) regardless of category. phrase.SampleContexts is
// treated as the single new context snippet for this detection; it is
// concatenated onto any prior contexts and truncated to the most recent
// maxSampleContexts entries.
func (s *PhraseStoreImpl) UpsertPendingPhrase(ctx context.Context, phrase domain.PendingPhrase) (domain.PendingPhrase, error) {
	key := phraseKey(phrase.Phrase)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.PendingPhrase{}, fmt.Errorf("phrase store: upsert pending phrase: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var existingContexts string
	const selectQ = `SELECT sample_contexts FROM pending_phrases WHERE phrase_key = $1 FOR UPDATE`
	err = tx.QueryRow(ctx, selectQ, key).Scan(&existingContexts)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return domain.PendingPhrase{}, fmt.Errorf("phrase store: upsert pending phrase: lookup: %w", err)
	}
	merged := truncateContexts(existingContexts, phrase.SampleContexts)

	const q = `
		INSERT INTO pending_phrases
		    (phrase, phrase_key, category, confidence, detection_count,
		     first_seen_at, last_seen_at, sample_contexts, status)
		VALUES ($1, $2, $3, $4, 1, now(), now(), $5, 'pending')
		ON CONFLICT (phrase_key) DO UPDATE SET
		    confidence      = GREATEST(pending_phrases.confidence, EXCLUDED.confidence),
		    detection_count = pending_phrases.detection_count + 1,
		    last_seen_at    = now(),
		    sample_contexts = $5
		RETURNING id, phrase, category, confidence, detection_count, first_seen_at,
		          last_seen_at, sample_contexts, similar_to, quality_score,
		          canonical_form, status`

	row := tx.QueryRow(ctx, q, phrase.Phrase, key, phrase.Category, phrase.Confidence, merged)
	result, err := scanPendingPhraseRow(row)
	if err != nil {
		return domain.PendingPhrase{}, fmt.Errorf("phrase store: upsert pending phrase: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.PendingPhrase{}, fmt.Errorf("phrase store: upsert pending phrase: commit: %w", err)
	}
	return result, nil
}

// ListPendingPhrases implements [store.Store].
func (s *PhraseStoreImpl) ListPendingPhrases(ctx context.Context, filter store.PendingPhraseFilter) ([]domain.PendingPhrase, error) {
	args := []any{}
	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	var conditions []string
	if filter.Status != "" {
		conditions = append(conditions, "status = "+next(string(filter.Status)))
	}
	if filter.Category != "" {
		conditions = append(conditions, "category = "+next(filter.Category))
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, "\n  AND ")
	}

	limitClause := ""
	if filter.Limit > 0 {
		limitClause = "LIMIT " + next(filter.Limit)
	}

	q := fmt.Sprintf(`
		SELECT id, phrase, category, confidence, detection_count, first_seen_at,
		       last_seen_at, sample_contexts, similar_to, quality_score,
		       canonical_form, status
		FROM   pending_phrases
		%s
		ORDER  BY last_seen_at DESC
		%s`, whereClause, limitClause)

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("phrase store: list pending phrases: %w", err)
	}

	results, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.PendingPhrase, error) {
		return scanPendingPhraseRow(row)
	})
	if err != nil {
		return nil, fmt.Errorf("phrase store: scan pending phrases: %w", err)
	}
	if results == nil {
		results = []domain.PendingPhrase{}
	}
	return results, nil
}

// ApprovePhrase implements [store.Store].
func (s *PhraseStoreImpl) ApprovePhrase(ctx context.Context, pendingID string) (domain.PhraseEntry, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.PhraseEntry{}, fmt.Errorf("phrase store: approve phrase: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	const selectQ = `
		SELECT phrase, category FROM pending_phrases WHERE id = $1 FOR UPDATE`
	var phrase, category string
	if err := tx.QueryRow(ctx, selectQ, pendingID).Scan(&phrase, &category); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.PhraseEntry{}, fmt.Errorf("phrase store: approve phrase: pending phrase %q not found", pendingID)
		}
		return domain.PhraseEntry{}, fmt.Errorf("phrase store: approve phrase: lookup: %w", err)
	}

	const markQ = `UPDATE pending_phrases SET status = 'approved' WHERE id = $1`
	if _, err := tx.Exec(ctx, markQ, pendingID); err != nil {
		return domain.PhraseEntry{}, fmt.Errorf("phrase store: approve phrase: mark approved: %w", err)
	}

	const upsertQ = `
		INSERT INTO phrase_entries (category, phrase, source, usage_count, added_at)
		VALUES ($1, $2, 'auto_learned', 0, now())
		ON CONFLICT (category, phrase) DO UPDATE SET source = phrase_entries.source
		RETURNING id, category, phrase, source, usage_count, successful_detections,
		          effectiveness_score, added_at`

	var (
		entry domain.PhraseEntry
		id    int64
		src   string
	)
	row := tx.QueryRow(ctx, upsertQ, category, phrase)
	if err := row.Scan(&id, &entry.Category, &entry.Phrase, &src, &entry.UsageCount,
		&entry.SuccessfulDetections, &entry.EffectivenessScore, &entry.AddedAt); err != nil {
		return domain.PhraseEntry{}, fmt.Errorf("phrase store: approve phrase: upsert entry: %w", err)
	}
	entry.ID = fmt.Sprintf("%d", id)
	entry.Source = domain.PhraseSource(src)

	if err := tx.Commit(ctx); err != nil {
		return domain.PhraseEntry{}, fmt.Errorf("phrase store: approve phrase: commit: %w", err)
	}
	return entry, nil
}

// RejectPhrase implements [store.Store].
func (s *PhraseStoreImpl) RejectPhrase(ctx context.Context, pendingID string, reason string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("phrase store: reject phrase: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	const selectQ = `SELECT phrase, category FROM pending_phrases WHERE id = $1 FOR UPDATE`
	var phrase, category string
	if err := tx.QueryRow(ctx, selectQ, pendingID).Scan(&phrase, &category); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("phrase store: reject phrase: pending phrase %q not found", pendingID)
		}
		return fmt.Errorf("phrase store: reject phrase: lookup: %w", err)
	}

	const markQ = `UPDATE pending_phrases SET status = 'rejected' WHERE id = $1`
	if _, err := tx.Exec(ctx, markQ, pendingID); err != nil {
		return fmt.Errorf("phrase store: reject phrase: mark rejected: %w", err)
	}

	const blacklistQ = `
		INSERT INTO phrase_blacklist (phrase, category, reason, rejected_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (phrase, category) DO NOTHING`
	if _, err := tx.Exec(ctx, blacklistQ, phrase, category, reason); err != nil {
		return fmt.Errorf("phrase store: reject phrase: blacklist: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("phrase store: reject phrase: commit: %w", err)
	}
	return nil
}

// AddBlacklist implements [store.Store].
func (s *PhraseStoreImpl) AddBlacklist(ctx context.Context, entry domain.PhraseBlacklist) error {
	const q = `
		INSERT INTO phrase_blacklist (phrase, category, reason, rejected_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (phrase, category) DO NOTHING`
	if _, err := s.pool.Exec(ctx, q, entry.Phrase, entry.Category, entry.Reason); err != nil {
		return fmt.Errorf("phrase store: add blacklist: %w", err)
	}
	return nil
}

// IsBlacklisted implements [store.Store].
func (s *PhraseStoreImpl) IsBlacklisted(ctx context.Context, phrase, category string) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM phrase_blacklist WHERE phrase = $1 AND category = $2)`
	var exists bool
	if err := s.pool.QueryRow(ctx, q, phrase, category).Scan(&exists); err != nil {
		return false, fmt.Errorf("phrase store: is blacklisted: %w", err)
	}
	return exists, nil
}

// CategoryPerformance implements [store.Store].
func (s *PhraseStoreImpl) CategoryPerformance(ctx context.Context, category string) (domain.CategoryPerformance, error) {
	const q = `
		SELECT category, approval_rate, avg_quality_score, total_phrases, updated_at
		FROM   category_performance
		WHERE  category = $1`

	var perf domain.CategoryPerformance
	err := s.pool.QueryRow(ctx, q, category).Scan(
		&perf.Category, &perf.ApprovalRate, &perf.AvgQualityScore, &perf.TotalPhrases, &perf.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.CategoryPerformance{Category: category}, nil
	}
	if err != nil {
		return domain.CategoryPerformance{}, fmt.Errorf("phrase store: category performance: %w", err)
	}
	return perf, nil
}

// LoadSettings implements [store.Store].
func (s *PhraseStoreImpl) LoadSettings(ctx context.Context, userID string) (domain.BatchSettings, error) {
	const q = `
		SELECT max_workers, per_file_timeout_sec, lite_mode
		FROM   batch_settings
		WHERE  user_id = $1`

	var settings domain.BatchSettings
	err := s.pool.QueryRow(ctx, q, userID).Scan(&settings.MaxWorkers, &settings.PerFileTimeoutSec, &settings.LiteMode)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.BatchSettings{}, nil
	}
	if err != nil {
		return domain.BatchSettings{}, fmt.Errorf("phrase store: load settings: %w", err)
	}
	return settings, nil
}

// SaveSettings implements [store.Store].
func (s *PhraseStoreImpl) SaveSettings(ctx context.Context, userID string, settings domain.BatchSettings) error {
	const q = `
		INSERT INTO batch_settings (user_id, max_workers, per_file_timeout_sec, lite_mode, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (user_id) DO UPDATE SET
		    max_workers          = EXCLUDED.max_workers,
		    per_file_timeout_sec = EXCLUDED.per_file_timeout_sec,
		    lite_mode            = EXCLUDED.lite_mode,
		    updated_at           = now()`
	if _, err := s.pool.Exec(ctx, q, userID, settings.MaxWorkers, settings.PerFileTimeoutSec, settings.LiteMode); err != nil {
		return fmt.Errorf("phrase store: save settings: %w", err)
	}
	return nil
}

func phraseKey(phrase string) string {
	return strings.ToLower(strings.TrimSpace(phrase))
}

// truncateContexts appends newContext to existing (newline-separated),
// keeping only the most recent maxSampleContexts entries.
func truncateContexts(existing, newContext string) string {
	var parts []string
	if existing != "" {
		parts = strings.Split(existing, "\n")
	}
	if newContext != "" {
		parts = append(parts, newContext)
	}
	if len(parts) > maxSampleContexts {
		parts = parts[len(parts)-maxSampleContexts:]
	}
	return strings.Join(parts, "\n")
}

type scannable interface {
	Scan(dest ...any) error
}

func scanPendingPhraseRow(row scannable) (domain.PendingPhrase, error) {
	var (
		p         domain.PendingPhrase
		id        int64
		status    string
		similarTo *string
		canonical *string
	)
	if err := row.Scan(&id, &p.Phrase, &p.Category, &p.Confidence, &p.DetectionCount,
		&p.FirstSeenAt, &p.LastSeenAt, &p.SampleContexts, &similarTo, &p.QualityScore,
		&canonical, &status); err != nil {
		return domain.PendingPhrase{}, err
	}
	p.ID = fmt.Sprintf("%d", id)
	p.Status = domain.PendingStatus(status)
	if similarTo != nil && *similarTo != "" {
		p.SimilarTo = similarTo
	}
	if canonical != nil && *canonical != "" {
		p.CanonicalForm = canonical
	}
	return p, nil
}

var _ store.Store = (*PhraseStoreImpl)(nil)
