package srs

import (
	"sort"
	"time"

	"github.com/phrazzld/hanzi-srs/internal/domain"
)

// IsDue reports whether card belongs in the review queue at now. Unscheduled
// cards are due only while they are still new.
func IsDue(card *domain.UserCharacter, now time.Time) bool {
	if card.NextReview == nil {
		return card.State == domain.StateNew
	}
	return !card.NextReview.After(now)
}

// queueRank orders states in the review queue: unseen characters first, then
// in-progress learning, then regular reviews.
func queueRank(state domain.CardState) int {
	switch state {
	case domain.StateNew:
		return 0
	case domain.StateLearning, domain.StateRelearning:
		return 1
	default:
		return 2
	}
}

// SelectDue filters cards down to those due at now, orders them by queue rank and
// then by next review (unset first), and truncates to limit. The input slice is
// left untouched.
func SelectDue(cards []*domain.UserCharacter, now time.Time, limit int) []*domain.UserCharacter {
	if limit <= 0 {
		return []*domain.UserCharacter{}
	}

	due := make([]*domain.UserCharacter, 0, len(cards))
	for _, card := range cards {
		if card != nil && IsDue(card, now) {
			due = append(due, card)
		}
	}

	sort.SliceStable(due, func(i, j int) bool {
		ri, rj := queueRank(due[i].State), queueRank(due[j].State)
		if ri != rj {
			return ri < rj
		}
		return dueBefore(due[i].NextReview, due[j].NextReview)
	})

	if len(due) > limit {
		due = due[:limit]
	}
	return due
}

// dueBefore orders next-review times ascending with unset values earliest.
func dueBefore(a, b *time.Time) bool {
	switch {
	case a == nil && b == nil:
		return false
	case a == nil:
		return true
	case b == nil:
		return false
	default:
		return a.Before(*b)
	}
}
