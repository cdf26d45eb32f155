package golden

import (
	"sort"
	"strings"
	"unicode/utf8"

	"songbird_evals/internal/chathistory"
)

// Questions under this length are degenerate ("show all", "hi") and never
// worth keeping as evaluation cases.
const minQuestionLen = 15

// Stats counts the outcome of one selection pass.
type Stats struct {
	Candidates int
	Duplicates int
	TooShort   int
	ErrorLike  int
	Accepted   int
}

// Select picks at most target golden examples from the candidate pool, most
// recent first. Duplicate questions (trimmed, lowercased) are dropped, as are
// questions shorter than 15 characters and SQL that mentions "error" without a
// "select" — those rows are error traces misfiled as queries. Equal timestamps
// keep their incoming order.
func Select(records []chathistory.Record, target int) ([]chathistory.Record, Stats) {
	stats := Stats{Candidates: len(records)}

	sorted := make([]chathistory.Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp > sorted[j].Timestamp
	})

	seen := make(map[string]struct{}, len(sorted))
	var out []chathistory.Record
	for _, rec := range sorted {
		question := strings.TrimSpace(rec.Question)
		normalized := strings.ToLower(question)
		if _, dup := seen[normalized]; dup {
			stats.Duplicates++
			continue
		}
		seen[normalized] = struct{}{}

		if utf8.RuneCountInString(question) < minQuestionLen {
			stats.TooShort++
			continue
		}
		lowerSQL := strings.ToLower(rec.SQL)
		if strings.Contains(lowerSQL, "error") && !strings.Contains(lowerSQL, "select") {
			stats.ErrorLike++
			continue
		}

		out = append(out, rec)
		if len(out) >= target {
			break
		}
	}
	stats.Accepted = len(out)
	return out, stats
}
