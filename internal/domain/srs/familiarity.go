package srs

import (
	"math"

	"github.com/phrazzld/hanzi-srs/internal/domain"
)

// Familiarity projects a memory state onto the 1-5 display tier.
//
// Cards in Learning or Relearning are capped at 3. Everything else is bucketed
// by stability in days. The result is never an input to the memory model.
func Familiarity(stability float64, state domain.CardState) int {
	if state == domain.StateLearning || state == domain.StateRelearning {
		return int(math.Min(3, math.Ceil(stability/2)+1))
	}

	switch {
	case stability < 1:
		return 1
	case stability < 3:
		return 2
	case stability < 10:
		return 3
	case stability < 30:
		return 4
	default:
		return 5
	}
}
