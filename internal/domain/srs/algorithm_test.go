package srs

import (
	"math"
	"testing"
	"time"

	"github.com/phrazzld/hanzi-srs/internal/domain"
	"github.com/stretchr/testify/assert"
)

const tolerance = 1e-9

func TestInitialStabilityAndDifficulty(t *testing.T) {
	t.Parallel()
	w := &DefaultWeights

	testCases := []struct {
		grade              domain.Grade
		expectedStability  float64
		expectedDifficulty float64
	}{
		{domain.GradeAgain, 0.4072, 7.864851076299848},
		{domain.GradeHard, 1.1829, 7.622536045260429},
		{domain.GradeGood, 3.1262, 7.2102},
		{domain.GradeEasy, 15.4722, 6.508547223894037},
	}

	for _, tc := range testCases {
		t.Run(tc.grade.String(), func(t *testing.T) {
			assert.Equal(t, tc.expectedStability, initialStability(w, tc.grade))
			assert.InDelta(t, tc.expectedDifficulty, initialDifficulty(w, tc.grade), tolerance)
		})
	}
}

func TestRetrievability(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1.0, retrievability(0, 5))
	// Nine stabilities worth of elapsed time per unit: t = 9S gives R = 0.5.
	assert.InDelta(t, 0.5, retrievability(45, 5), tolerance)
	assert.InDelta(t, 0.9, retrievability(10, 10), tolerance)

	// Decays monotonically with elapsed time.
	prev := 1.0
	for days := 1.0; days < 400; days *= 2 {
		r := retrievability(days, 3)
		assert.Less(t, r, prev)
		prev = r
	}
}

func TestDifficultyUpdates(t *testing.T) {
	t.Parallel()
	w := &DefaultWeights

	assert.InDelta(t, 5.0046, nextDifficulty(w, 5, domain.GradeHard), tolerance)
	assert.InDelta(t, 5.0, nextDifficulty(w, 5, domain.GradeGood), tolerance)
	assert.InDelta(t, 4.9954, nextDifficulty(w, 5, domain.GradeEasy), tolerance)
	assert.InDelta(t, 5.0092, lapseDifficulty(w, 5), tolerance)

	// Clamped at both ends.
	assert.Equal(t, domain.MaxDifficulty, nextDifficulty(w, 10, domain.GradeHard))
	assert.Equal(t, domain.MaxDifficulty, lapseDifficulty(w, 10))
	assert.Equal(t, domain.MinDifficulty, nextDifficulty(w, 1, domain.GradeEasy))
}

func TestStabilityAfterRecall(t *testing.T) {
	t.Parallel()
	w := &DefaultWeights
	r := retrievability(10, 10)

	testCases := []struct {
		grade    domain.Grade
		expected float64
	}{
		{domain.GradeHard, 23.031450923129746},
		{domain.GradeGood, 23.041449367644944},
		{domain.GradeEasy, 35.31328303168459},
	}

	for _, tc := range testCases {
		t.Run(tc.grade.String(), func(t *testing.T) {
			d := nextDifficulty(w, 5, tc.grade)
			assert.InDelta(t, tc.expected, stabilityAfterRecall(w, 10, d, r, tc.grade), 1e-6)
		})
	}

	// Reviewing at full retrievability leaves stability unchanged.
	assert.InDelta(t, 10.0, stabilityAfterRecall(w, 10, 5, 1, domain.GradeGood), tolerance)
}

func TestStabilityAfterLapse(t *testing.T) {
	t.Parallel()
	w := &DefaultWeights

	assert.InDelta(t, 0.1*math.Pow(10, 0.3), stabilityAfterLapse(w, 10), tolerance)
	// Small stabilities fall to the floor.
	assert.Equal(t, domain.MinStability, stabilityAfterLapse(w, 0.2))
}

func TestIntervalDays(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()

	assert.Equal(t, 3.0, intervalDays(3.1262, params))
	assert.Equal(t, 0.0, intervalDays(0.4072, params))
	assert.Equal(t, 15.0, intervalDays(15.4722, params))
	assert.Equal(t, params.MaxIntervalDays, intervalDays(1e9, params))

	lower := NewParams(ParamsConfig{TargetRetention: 0.8})
	assert.Equal(t, 23.0, intervalDays(10, lower)) // 9*10*0.25 = 22.5 → 23
}

func TestElapsedDays(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, 0.0, elapsedDays(nil, now))

	last := now.Add(-36 * time.Hour)
	assert.InDelta(t, 1.5, elapsedDays(&last, now), tolerance)

	future := now.Add(time.Hour)
	assert.Equal(t, 0.0, elapsedDays(&future, now))
}

func TestDaysToDuration(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 72*time.Hour, daysToDuration(3))
	// Fractional days are kept.
	assert.Equal(t, 12*time.Hour, daysToDuration(0.5))
	assert.Equal(t, 6*time.Hour, daysToDuration(0.25))
}
