package domain

import "time"

// PhraseSource records how a PhraseEntry entered the repository.
type PhraseSource string

const (
	SourceManual        PhraseSource = "manual"
	SourceAutoLearned    PhraseSource = "auto_learned"
	SourceAdminApproved  PhraseSource = "admin_approved"
)

// PhraseEntry is a single approved phrase within a category. Uniqueness is
// (Category, Phrase); SuccessfulDetections must never exceed UsageCount.
type PhraseEntry struct {
	ID                   string
	Category             string
	Phrase               string
	Source               PhraseSource
	UsageCount           int
	SuccessfulDetections int
	EffectivenessScore   *float64
	AddedAt              time.Time
}

// PendingStatus is the lifecycle state of a PendingPhrase row.
type PendingStatus string

const (
	PendingStatusPending      PendingStatus = "pending"
	PendingStatusApproved     PendingStatus = "approved"
	PendingStatusRejected     PendingStatus = "rejected"
	PendingStatusAutoApproved PendingStatus = "auto_approved"
)

// PendingPhrase is a candidate phrase observed by the semantic matcher,
// awaiting approval into the repository. Deduplication keys solely on
// lower(trim(Phrase)) — category is not part of the dedup key.
type PendingPhrase struct {
	ID              string
	Phrase          string
	Category        string
	Confidence      float64
	DetectionCount  int
	FirstSeenAt     time.Time
	LastSeenAt      time.Time
	SampleContexts  string
	SimilarTo       *string
	QualityScore    *float64
	CanonicalForm   *string
	Status          PendingStatus
}

// PhraseBlacklist entry. Uniqueness is (Phrase, Category).
type PhraseBlacklist struct {
	Phrase     string
	Category   string
	Reason     string
	RejectedAt time.Time
}

// CategoryPerformance tracks the approval history of a category, used to
// derive adaptive per-category auto-approval thresholds. Safe to cache up to
// one week.
type CategoryPerformance struct {
	Category       string
	ApprovalRate   float64
	AvgQualityScore float64
	TotalPhrases   int
	UpdatedAt      time.Time
}

// QualityTier buckets a QualityScore into a coarse label.
type QualityTier string

const (
	QualityAutoApprove QualityTier = "auto_approve"
	QualityHighValue   QualityTier = "high_value"
	QualityMediumValue QualityTier = "medium_value"
	QualityLowValue    QualityTier = "low_value"
)

// TierForScore buckets score per the §4.7 quality tiers.
func TierForScore(score float64) QualityTier {
	switch {
	case score >= 0.90:
		return QualityAutoApprove
	case score >= 0.80:
		return QualityHighValue
	case score >= 0.65:
		return QualityMediumValue
	default:
		return QualityLowValue
	}
}
