package domain

import "fmt"

// Grade is the learner's self-reported recall quality for a single review.
type Grade int

// Review grades. The numeric values are part of the public API contract.
const (
	GradeAgain Grade = 1
	GradeHard  Grade = 2
	GradeGood  Grade = 3
	GradeEasy  Grade = 4
)

// Grades lists every valid grade in ascending order.
var Grades = []Grade{GradeAgain, GradeHard, GradeGood, GradeEasy}

// Valid reports whether g is one of the four review grades.
func (g Grade) Valid() bool {
	return g >= GradeAgain && g <= GradeEasy
}

// String returns the lowercase grade name.
func (g Grade) String() string {
	switch g {
	case GradeAgain:
		return "again"
	case GradeHard:
		return "hard"
	case GradeGood:
		return "good"
	case GradeEasy:
		return "easy"
	default:
		return fmt.Sprintf("grade(%d)", int(g))
	}
}

// ParseGrade converts an integer from an external source into a Grade.
func ParseGrade(v int) (Grade, error) {
	g := Grade(v)
	if !g.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidGrade, v)
	}
	return g, nil
}

// CardState is the lifecycle phase of a user character.
type CardState int

// Lifecycle phases. Values match the persisted column.
const (
	StateNew        CardState = 0
	StateLearning   CardState = 1
	StateReview     CardState = 2
	StateRelearning CardState = 3
)

// Valid reports whether s is a known lifecycle phase.
func (s CardState) Valid() bool {
	return s >= StateNew && s <= StateRelearning
}

// String returns the lowercase state name.
func (s CardState) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateLearning:
		return "learning"
	case StateReview:
		return "review"
	case StateRelearning:
		return "relearning"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}
