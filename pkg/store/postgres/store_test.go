package postgres_test

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxvec "github.com/pgvector/pgvector-go/pgx"

	"github.com/MrWong99/callaudit/internal/domain"
	"github.com/MrWong99/callaudit/pkg/store"
	"github.com/MrWong99/callaudit/pkg/store/postgres"
)

const testEmbeddingDim = 4

// testDSN returns the test database DSN from the environment, or skips the
// test if CALLAUDIT_TEST_POSTGRES_DSN is not set.
func testDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("CALLAUDIT_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("CALLAUDIT_TEST_POSTGRES_DSN not set — skipping PostgreSQL integration tests")
	}
	return dsn
}

// newTestStore creates a fresh [postgres.Store] with a clean schema. It
// calls t.Cleanup to close the store when the test finishes.
func newTestStore(t *testing.T) *postgres.Store {
	t.Helper()
	dsn := testDSN(t)
	ctx := context.Background()

	cleanPool := mustPool(t, ctx, dsn)
	t.Cleanup(cleanPool.Close)
	dropSchema(t, ctx, cleanPool)

	st, err := postgres.NewStore(ctx, dsn, testEmbeddingDim)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(st.Close)
	return st
}

// mustPool opens a pgxpool with pgvector types registered, best-effort
// (pgvector may not be installed yet on a fresh database).
func mustPool(t *testing.T, ctx context.Context, dsn string) *pgxpool.Pool {
	t.Helper()
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		_ = pgxvec.RegisterTypes(ctx, conn)
		return nil
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		t.Fatalf("pool: %v", err)
	}
	return pool
}

// dropSchema removes all tables created by [postgres.Migrate].
func dropSchema(t *testing.T, ctx context.Context, pool *pgxpool.Pool) {
	t.Helper()
	for _, stmt := range []string{
		"DROP TABLE IF EXISTS phrase_embeddings CASCADE",
		"DROP TABLE IF EXISTS batch_settings CASCADE",
		"DROP TABLE IF EXISTS category_performance CASCADE",
		"DROP TABLE IF EXISTS phrase_blacklist CASCADE",
		"DROP TABLE IF EXISTS pending_phrases CASCADE",
		"DROP TABLE IF EXISTS phrase_entries CASCADE",
	} {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			t.Fatalf("dropSchema %q: %v", stmt, err)
		}
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Phrase catalogue
// ─────────────────────────────────────────────────────────────────────────────

func TestLoadPhrases_Empty(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	got, err := st.LoadPhrases(ctx)
	if err != nil {
		t.Fatalf("LoadPhrases: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("want 0 phrases, got %d", len(got))
	}
}

func TestUpsertPendingPhrase_NewThenMerge(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	first, err := st.UpsertPendingPhrase(ctx, domain.PendingPhrase{
		Phrase:         "I already have a provider",
		Category:       "existing_provider",
		Confidence:     0.6,
		SampleContexts: "call-1: prospect says they already have a provider",
	})
	if err != nil {
		t.Fatalf("UpsertPendingPhrase (first): %v", err)
	}
	if first.DetectionCount != 1 {
		t.Errorf("want DetectionCount 1, got %d", first.DetectionCount)
	}

	second, err := st.UpsertPendingPhrase(ctx, domain.PendingPhrase{
		Phrase:         "  I Already Have A Provider  ",
		Category:       "existing_provider",
		Confidence:     0.8,
		SampleContexts: "call-2: same objection",
	})
	if err != nil {
		t.Fatalf("UpsertPendingPhrase (second): %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("expected merge onto same row, got different IDs %q vs %q", first.ID, second.ID)
	}
	if second.DetectionCount != 2 {
		t.Errorf("want DetectionCount 2 after merge, got %d", second.DetectionCount)
	}
	if second.Confidence != 0.8 {
		t.Errorf("want merged confidence 0.8 (max), got %v", second.Confidence)
	}
}

func TestListPendingPhrases_FilterByStatus(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	if _, err := st.UpsertPendingPhrase(ctx, domain.PendingPhrase{
		Phrase: "call me back next quarter", Category: "timing_stall", Confidence: 0.5,
	}); err != nil {
		t.Fatalf("UpsertPendingPhrase: %v", err)
	}

	pending, err := st.ListPendingPhrases(ctx, store.PendingPhraseFilter{Status: domain.PendingStatusPending})
	if err != nil {
		t.Fatalf("ListPendingPhrases: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("want 1 pending phrase, got %d", len(pending))
	}

	approved, err := st.ListPendingPhrases(ctx, store.PendingPhraseFilter{Status: domain.PendingStatusApproved})
	if err != nil {
		t.Fatalf("ListPendingPhrases (approved): %v", err)
	}
	if len(approved) != 0 {
		t.Errorf("want 0 approved phrases, got %d", len(approved))
	}
}

func TestApprovePhrase_AddsToEntries(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	pending, err := st.UpsertPendingPhrase(ctx, domain.PendingPhrase{
		Phrase: "I need to check with my partner", Category: "decision_maker_absent", Confidence: 0.75,
	})
	if err != nil {
		t.Fatalf("UpsertPendingPhrase: %v", err)
	}

	entry, err := st.ApprovePhrase(ctx, pending.ID)
	if err != nil {
		t.Fatalf("ApprovePhrase: %v", err)
	}
	if entry.Phrase != pending.Phrase {
		t.Errorf("want phrase %q, got %q", pending.Phrase, entry.Phrase)
	}
	if entry.Source != domain.SourceAutoLearned {
		t.Errorf("want source %q, got %q", domain.SourceAutoLearned, entry.Source)
	}

	loaded, err := st.LoadPhrases(ctx)
	if err != nil {
		t.Fatalf("LoadPhrases: %v", err)
	}
	if len(loaded) != 1 {
		t.Fatalf("want 1 approved phrase, got %d", len(loaded))
	}

	remaining, err := st.ListPendingPhrases(ctx, store.PendingPhraseFilter{Status: domain.PendingStatusPending})
	if err != nil {
		t.Fatalf("ListPendingPhrases: %v", err)
	}
	if len(remaining) != 0 {
		t.Errorf("want 0 remaining pending phrases, got %d", len(remaining))
	}
}

func TestRejectPhrase_Blacklists(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	pending, err := st.UpsertPendingPhrase(ctx, domain.PendingPhrase{
		Phrase: "not interested at all", Category: "not_interested", Confidence: 0.4,
	})
	if err != nil {
		t.Fatalf("UpsertPendingPhrase: %v", err)
	}

	if err := st.RejectPhrase(ctx, pending.ID, "too generic"); err != nil {
		t.Fatalf("RejectPhrase: %v", err)
	}

	blacklisted, err := st.IsBlacklisted(ctx, pending.Phrase, pending.Category)
	if err != nil {
		t.Fatalf("IsBlacklisted: %v", err)
	}
	if !blacklisted {
		t.Error("expected phrase to be blacklisted after rejection")
	}
}

func TestAddBlacklist_Idempotent(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	entry := domain.PhraseBlacklist{Phrase: "hello", Category: "greeting", Reason: "too common"}
	if err := st.AddBlacklist(ctx, entry); err != nil {
		t.Fatalf("AddBlacklist (first): %v", err)
	}
	if err := st.AddBlacklist(ctx, entry); err != nil {
		t.Fatalf("AddBlacklist (duplicate): %v", err)
	}

	blacklisted, err := st.IsBlacklisted(ctx, entry.Phrase, entry.Category)
	if err != nil {
		t.Fatalf("IsBlacklisted: %v", err)
	}
	if !blacklisted {
		t.Error("expected phrase to be blacklisted")
	}
}

func TestCategoryPerformance_DefaultsWhenMissing(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	perf, err := st.CategoryPerformance(ctx, "never_seen_category")
	if err != nil {
		t.Fatalf("CategoryPerformance: %v", err)
	}
	if perf.Category != "never_seen_category" {
		t.Errorf("want category echoed back, got %q", perf.Category)
	}
	if perf.TotalPhrases != 0 {
		t.Errorf("want TotalPhrases 0, got %d", perf.TotalPhrases)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Batch settings
// ─────────────────────────────────────────────────────────────────────────────

func TestSaveAndLoadSettings(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	defaults, err := st.LoadSettings(ctx, "no-such-user")
	if err != nil {
		t.Fatalf("LoadSettings (missing): %v", err)
	}
	if defaults != (domain.BatchSettings{}) {
		t.Errorf("want zero value for unknown user, got %+v", defaults)
	}

	want := domain.BatchSettings{MaxWorkers: 8, PerFileTimeoutSec: 120, LiteMode: true}
	if err := st.SaveSettings(ctx, "user-1", want); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}

	got, err := st.LoadSettings(ctx, "user-1")
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if got != want {
		t.Errorf("want %+v, got %+v", want, got)
	}

	// Overwriting replaces the previous value entirely.
	updated := domain.BatchSettings{MaxWorkers: 2, PerFileTimeoutSec: 30, LiteMode: false}
	if err := st.SaveSettings(ctx, "user-1", updated); err != nil {
		t.Fatalf("SaveSettings (update): %v", err)
	}
	got, err = st.LoadSettings(ctx, "user-1")
	if err != nil {
		t.Fatalf("LoadSettings (after update): %v", err)
	}
	if got != updated {
		t.Errorf("want %+v, got %+v", updated, got)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Phrase embedding index
// ─────────────────────────────────────────────────────────────────────────────

func TestPhraseEmbeddingIndex_SearchOrdersByDistance(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	idx := st.Embeddings()

	phrases := []struct {
		category string
		phrase   string
		vec      []float32
	}{
		{"price_objection", "too expensive", []float32{1, 0, 0, 0}},
		{"price_objection", "out of budget", []float32{0.9, 0.1, 0, 0}},
		{"not_interested", "no thanks", []float32{0, 1, 0, 0}},
	}
	for _, p := range phrases {
		if err := idx.IndexPhrase(ctx, p.category, p.phrase, p.vec); err != nil {
			t.Fatalf("IndexPhrase(%q): %v", p.phrase, err)
		}
	}

	results, err := idx.Search(ctx, []float32{1, 0, 0, 0}, 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("want 2 results, got %d", len(results))
	}
	if results[0].Phrase != "too expensive" {
		t.Errorf("want closest match %q, got %q", "too expensive", results[0].Phrase)
	}
	if results[0].Distance > results[1].Distance {
		t.Errorf("want ascending distance, got %v then %v", results[0].Distance, results[1].Distance)
	}
}

func TestPhraseEmbeddingIndex_ReindexReplaces(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	idx := st.Embeddings()

	if err := idx.IndexPhrase(ctx, "timing_stall", "call back later", []float32{1, 0, 0, 0}); err != nil {
		t.Fatalf("IndexPhrase: %v", err)
	}
	if err := idx.IndexPhrase(ctx, "timing_stall", "call back later", []float32{0, 0, 0, 1}); err != nil {
		t.Fatalf("IndexPhrase (reindex): %v", err)
	}

	results, err := idx.Search(ctx, []float32{0, 0, 0, 1}, 1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Distance > 0.01 {
		t.Errorf("want reindexed embedding to be the closest match, got %+v", results)
	}
}
