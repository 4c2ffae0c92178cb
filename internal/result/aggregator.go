// Package result implements the ResultSink/Aggregator (§4.12): two read-only
// transforms over a batch run's raw FileResults.
package result

import "github.com/MrWong99/callaudit/internal/domain"

// FlaggedOnly returns the subset of results worth a reviewer's attention:
// a releasing call, a late hello, or a missed rebuttal. Error rows are
// excluded from both views per §4.12.
func FlaggedOnly(results []domain.FileResult) []domain.FileResult {
	var out []domain.FileResult
	for _, r := range results {
		if r.Status == domain.StatusError {
			continue
		}
		if r.Releasing == domain.VerdictYes || r.LateHello == domain.VerdictYes || r.Rebuttal == domain.VerdictNo {
			out = append(out, r)
		}
	}
	return out
}

// AllResults returns every successfully processed row (error rows
// excluded).
func AllResults(results []domain.FileResult) []domain.FileResult {
	var out []domain.FileResult
	for _, r := range results {
		if r.Status == domain.StatusError {
			continue
		}
		out = append(out, r)
	}
	return out
}

// TabularResult is the BatchEngine's top-level return value: every row plus
// the two derived views, ready for CSV/table rendering by a caller.
type TabularResult struct {
	All     []domain.FileResult
	Flagged []domain.FileResult
	Errors  []domain.FileResult
}

// NewTabularResult partitions raw into the three views TabularResult
// exposes.
func NewTabularResult(raw []domain.FileResult) TabularResult {
	var errs []domain.FileResult
	for _, r := range raw {
		if r.Status == domain.StatusError {
			errs = append(errs, r)
		}
	}
	return TabularResult{
		All:     AllResults(raw),
		Flagged: FlaggedOnly(raw),
		Errors:  errs,
	}
}
