package srs

import (
	"math"
	"time"

	"github.com/phrazzld/hanzi-srs/internal/domain"
)

const day = 24 * time.Hour

// initialStability returns the stability of a card after its very first grade.
func initialStability(w *[WeightCount]float64, grade domain.Grade) float64 {
	return w[int(grade)-1]
}

// initialDifficulty returns the difficulty of a card after its very first grade.
// Good lands exactly on w4; Again and Hard start harder, Easy starts easier.
func initialDifficulty(w *[WeightCount]float64, grade domain.Grade) float64 {
	return clampDifficulty(w[4] - math.Exp(w[5]*float64(grade-3)) + 1)
}

// retrievability is the modelled probability of recall after elapsedDays,
// a power-law forgetting curve relative to stability.
func retrievability(elapsedDays, stability float64) float64 {
	return math.Pow(1+elapsedDays/(9*stability), -1)
}

// nextDifficulty moves difficulty after a successful review: Hard raises it,
// Good leaves it, Easy lowers it.
func nextDifficulty(w *[WeightCount]float64, difficulty float64, grade domain.Grade) float64 {
	return clampDifficulty(difficulty + w[7]*float64(3-grade))
}

// lapseDifficulty moves difficulty after an Again on a scheduled card.
func lapseDifficulty(w *[WeightCount]float64, difficulty float64) float64 {
	return clampDifficulty(difficulty + 2*w[7])
}

// gradeFactor is the per-grade multiplier on stability growth.
func gradeFactor(w *[WeightCount]float64, grade domain.Grade) float64 {
	switch grade {
	case domain.GradeHard:
		return w[10]
	case domain.GradeEasy:
		return w[11]
	default:
		return 1
	}
}

// stabilityAfterRecall grows stability after a successful review. The growth is
// proportional to (exp((1-R)*w14) - 1), so reviewing at high retrievability
// teaches little and reviewing after heavy decay teaches a lot.
//
// nextD must already be the post-review difficulty.
func stabilityAfterRecall(
	w *[WeightCount]float64,
	stability float64,
	nextD float64,
	r float64,
	grade domain.Grade,
) float64 {
	growth := math.Exp(w[6]) *
		(11 - nextD) *
		math.Pow(stability, -w[5]) *
		(math.Exp((1-r)*w[14]) - 1) *
		gradeFactor(w, grade)

	return floorStability(stability * (1 + growth))
}

// stabilityAfterLapse shrinks stability after an Again on a scheduled card.
func stabilityAfterLapse(w *[WeightCount]float64, stability float64) float64 {
	return floorStability(w[12] * math.Pow(stability, w[13]))
}

// intervalDays converts stability into whole days until retrievability falls to
// the target retention, capped at the configured maximum and never negative.
func intervalDays(stability float64, params *Params) float64 {
	interval := math.Round(9 * stability * (1/params.TargetRetention - 1))
	interval = math.Min(interval, params.MaxIntervalDays)
	return math.Max(0, interval)
}

// elapsedDays returns fractional days between the last review and now.
// A missing last review or a clock that went backwards counts as zero.
func elapsedDays(lastReview *time.Time, now time.Time) float64 {
	if lastReview == nil {
		return 0
	}
	elapsed := now.Sub(*lastReview)
	if elapsed < 0 {
		return 0
	}
	return float64(elapsed) / float64(day)
}

// daysToDuration converts a day interval into a duration, keeping fractional days.
func daysToDuration(days float64) time.Duration {
	return time.Duration(days * float64(day))
}

func clampDifficulty(d float64) float64 {
	return math.Max(domain.MinDifficulty, math.Min(domain.MaxDifficulty, d))
}

func floorStability(s float64) float64 {
	return math.Max(domain.MinStability, s)
}

// calculateNext creates the post-review copy of card. It assumes grade and card
// have already been validated and never modifies card.
func calculateNext(
	card *domain.UserCharacter,
	grade domain.Grade,
	now time.Time,
	params *Params,
) (*domain.UserCharacter, float64) {
	w := &params.Weights
	next := card.Clone()

	switch {
	case card.State == domain.StateNew:
		next.Stability = initialStability(w, grade)
		next.Difficulty = initialDifficulty(w, grade)
		next.Reps = 1
		next.Lapses = 0
		if grade == domain.GradeAgain {
			next.State = domain.StateLearning
		} else {
			next.State = domain.StateReview
		}

	case grade == domain.GradeAgain:
		next.Stability = stabilityAfterLapse(w, card.Stability)
		next.Difficulty = lapseDifficulty(w, card.Difficulty)
		next.Lapses = card.Lapses + 1
		next.Reps = card.Reps + 1
		next.State = domain.StateRelearning

	default:
		r := retrievability(elapsedDays(card.LastReview, now), card.Stability)
		next.Difficulty = nextDifficulty(w, card.Difficulty, grade)
		next.Stability = stabilityAfterRecall(w, card.Stability, next.Difficulty, r, grade)
		next.Reps = card.Reps + 1
		next.State = domain.StateReview
	}

	interval := intervalDays(next.Stability, params)
	reviewedAt := now
	nextReview := now.Add(daysToDuration(interval))

	next.LastReview = &reviewedAt
	next.NextReview = &nextReview
	next.Familiarity = Familiarity(next.Stability, next.State)
	next.UpdatedAt = now

	return next, interval
}
