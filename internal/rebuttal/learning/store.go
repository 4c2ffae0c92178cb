package learning

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/MrWong99/callaudit/internal/domain"
	"github.com/MrWong99/callaudit/pkg/store"
)

// Refresher is the subset of Repository the learning store needs after an
// auto-approval: re-publish the phrase snapshot so the new phrase is
// searchable immediately. Depending on this narrow interface rather than the
// concrete Repository type keeps Repository free of any reference back to
// the learning store (§9 cycle-breaking design).
type Refresher interface {
	Refresh(ctx context.Context) error
}

// ApprovedLookup is the read side of Repository the pre-filter needs to
// reject phrases already in the approved catalogue.
type ApprovedLookup interface {
	ByCategory(category string) []string
}

// Store implements the PhraseLearningStore write pipeline (§4.7): filtering,
// dedup, quality scoring, and auto-approval of Tier-2 semantic-matcher hits.
type Store struct {
	st       store.Store
	refresher Refresher
	approved  ApprovedLookup

	confidenceThreshold  float64
	autoApproveThreshold float64
	frequencyThreshold   int

	quality    *qualityCache
	thresholds *thresholdCache
}

// New constructs a Store. confidenceThreshold gates which semantic hits are
// even considered (default 0.85); autoApproveThreshold and
// frequencyThreshold feed the standard auto-approval check (defaults 0.95
// and 5).
func New(st store.Store, refresher Refresher, approved ApprovedLookup, confidenceThreshold, autoApproveThreshold float64, frequencyThreshold int) *Store {
	return &Store{
		st:                   st,
		refresher:            refresher,
		approved:             approved,
		confidenceThreshold:  confidenceThreshold,
		autoApproveThreshold: autoApproveThreshold,
		frequencyThreshold:   frequencyThreshold,
		quality:              newQualityCache(),
		thresholds:           newThresholdCache(),
	}
}

// Observe implements rebuttal.LearningStore. It is invoked by the semantic
// matcher for every Tier-2 hit; hits below confidenceThreshold are ignored
// without error.
func (s *Store) Observe(ctx context.Context, category, phrase string, confidence float64, sampleContext string) error {
	if confidence < s.confidenceThreshold {
		return nil
	}

	normalized := normalizePhrase(strings.TrimSpace(phrase))
	if rejectSilently(normalized) {
		return nil
	}

	blacklisted, err := s.st.IsBlacklisted(ctx, normalized, category)
	if err != nil {
		return fmt.Errorf("learning: observe: blacklist lookup: %w", err)
	}
	if blacklisted {
		return nil
	}

	if s.approved != nil {
		for _, p := range s.approved.ByCategory(category) {
			if strings.EqualFold(p, normalized) {
				return nil
			}
		}
	}

	now := time.Now()
	sampleContext = truncateContext(sampleContext)
	canon := canonicalForm(normalized)

	pending, err := s.st.UpsertPendingPhrase(ctx, domain.PendingPhrase{
		Phrase:         normalized,
		Category:       category,
		Confidence:     confidence,
		DetectionCount: 1,
		FirstSeenAt:    now,
		LastSeenAt:     now,
		SampleContexts: sampleContext,
		Status:         domain.PendingStatusPending,
		CanonicalForm:  &canon,
	})
	if err != nil {
		return fmt.Errorf("learning: observe: upsert pending: %w", err)
	}

	score := s.quality.get(pending.ID, pending.Confidence, pending.DetectionCount, pending.LastSeenAt, len(pending.SampleContexts), now)

	if s.shouldAutoApprove(ctx, pending, score, now) {
		if _, err := s.st.ApprovePhrase(ctx, pending.ID); err != nil {
			return fmt.Errorf("learning: observe: auto-approve: %w", err)
		}
		if s.refresher != nil {
			if err := s.refresher.Refresh(ctx); err != nil {
				return fmt.Errorf("learning: observe: refresh after approval: %w", err)
			}
		}
	}

	return nil
}

// shouldAutoApprove implements the §4.7 auto-approval triggers: a
// high-priority path with no frequency requirement, and a standard path
// gated on both confidence and detection count.
func (s *Store) shouldAutoApprove(ctx context.Context, pending domain.PendingPhrase, score float64, now time.Time) bool {
	if pending.Confidence >= 0.90 || score >= 0.90 {
		return true
	}

	standardThreshold := s.thresholds.adaptiveThreshold(ctx, s.st, pending.Category, s.autoApproveThreshold, now)
	return pending.Confidence >= standardThreshold && pending.DetectionCount >= s.frequencyThreshold
}

// Reject marks a pending phrase rejected and blacklists it so future dedup
// lookups short-circuit.
func (s *Store) Reject(ctx context.Context, pendingID, reason string) error {
	if err := s.st.RejectPhrase(ctx, pendingID, reason); err != nil {
		return fmt.Errorf("learning: reject: %w", err)
	}
	return nil
}

// ListPending returns the store's pending rows matching filter. It runs no
// dedup cleanup of its own; pending rows are merged on lower(trim(phrase)),
// regardless of category, when UpsertPendingPhrase writes them.
func (s *Store) ListPending(ctx context.Context, filter store.PendingPhraseFilter) ([]domain.PendingPhrase, error) {
	rows, err := s.st.ListPendingPhrases(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("learning: list pending: %w", err)
	}
	return rows, nil
}

const maxSampleContextChars = 500

func truncateContext(s string) string {
	if len(s) <= maxSampleContextChars {
		return s
	}
	return s[:maxSampleContextChars]
}
