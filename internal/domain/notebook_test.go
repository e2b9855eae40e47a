package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewNotebookStats(t *testing.T) {
	t.Parallel()

	stats := NewNotebookStats(
		10, 4, 6,
		map[CardState]int{StateNew: 3, StateLearning: 1, StateReview: 5, StateRelearning: 1},
		map[int]int{1: 4, 3: 2, 5: 4},
	)

	assert.Equal(t, 10, stats.Total)
	assert.Equal(t, 3, stats.New)
	assert.Equal(t, 4, stats.Known)
	assert.Equal(t, 3, stats.Learning)
	assert.Equal(t, 4, stats.Due)
	assert.Equal(t, 6, stats.RecentReviews)
	assert.Equal(t, map[string]int{"0": 3, "1": 1, "2": 5, "3": 1}, stats.ByState)
	assert.Equal(t, map[string]int{"1": 4, "3": 2, "5": 4}, stats.ByFamiliarity)
}

func TestNewNotebookStatsEmpty(t *testing.T) {
	t.Parallel()

	stats := NewNotebookStats(0, 0, 0, nil, nil)

	assert.Equal(t, 0, stats.Learning)
	assert.NotNil(t, stats.ByState)
	assert.NotNil(t, stats.ByFamiliarity)
}
