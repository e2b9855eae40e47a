package events

import (
	"context"

	"github.com/google/uuid"
)

// StatsCache is the subset of the statistics cache the invalidator needs.
type StatsCache interface {
	InvalidateStats(ctx context.Context, userID uuid.UUID) error
}

// StatsInvalidator drops a learner's cached notebook statistics whenever
// their notebook changes.
type StatsInvalidator struct {
	cache StatsCache
}

// NewStatsInvalidator creates a handler that invalidates entries in cache.
func NewStatsInvalidator(cache StatsCache) *StatsInvalidator {
	return &StatsInvalidator{cache: cache}
}

// HandleEvent implements EventHandler.
func (h *StatsInvalidator) HandleEvent(ctx context.Context, event *NotebookEvent) error {
	switch event.Type {
	case TypeReviewRecorded, TypeFamiliarityChanged:
		return h.cache.InvalidateStats(ctx, event.UserID)
	default:
		return nil
	}
}
