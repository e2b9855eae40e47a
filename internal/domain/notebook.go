package domain

import "strconv"

// NotebookStats summarises a learner's notebook.
type NotebookStats struct {
	Total         int            `json:"total"`
	New           int            `json:"new"`
	Learning      int            `json:"learning"`
	Known         int            `json:"known"`
	Due           int            `json:"due"`
	RecentReviews int            `json:"recent_reviews"`
	ByState       map[string]int `json:"by_state"`
	ByFamiliarity map[string]int `json:"by_familiarity"`
}

// NewNotebookStats derives the summary counts from the grouped totals.
// Known is the number of characters at the top familiarity tier and Learning
// is everything that is neither known nor new.
func NewNotebookStats(
	total, due, recent int,
	byState map[CardState]int,
	byFamiliarity map[int]int,
) *NotebookStats {
	stats := &NotebookStats{
		Total:         total,
		Due:           due,
		RecentReviews: recent,
		ByState:       make(map[string]int, len(byState)),
		ByFamiliarity: make(map[string]int, len(byFamiliarity)),
	}

	for state, n := range byState {
		stats.ByState[strconv.Itoa(int(state))] = n
	}
	for tier, n := range byFamiliarity {
		stats.ByFamiliarity[strconv.Itoa(tier)] = n
	}

	stats.New = byState[StateNew]
	stats.Known = byFamiliarity[MaxFamiliarity]
	stats.Learning = total - stats.Known - stats.New

	return stats
}
