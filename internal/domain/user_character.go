package domain

import (
	"errors"
	"math"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Numeric bounds on the memory state of a scheduled character.
const (
	MinStability  = 0.1
	MinDifficulty = 1.0
	MaxDifficulty = 10.0

	MinFamiliarity = 1
	MaxFamiliarity = 5
)

// Validation errors for UserCharacter
var (
	ErrEmptyUserCharacterID = errors.New("user character ID cannot be empty")
	ErrEmptyUserID          = errors.New("user character user ID cannot be empty")
	ErrNegativeStability    = errors.New("stability must be positive once scheduled")
	ErrDifficultyOutOfRange = errors.New("difficulty must be between 1 and 10 once scheduled")
	ErrNegativeCounter      = errors.New("reps and lapses cannot be negative")
	ErrNewCardReviewed      = errors.New("new card cannot have reps or a last review")
)

// UserCharacter is the persisted memory record for one (learner, character) pair.
// Stability and Difficulty are undefined (zero) while State is StateNew.
type UserCharacter struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	CharacterID string     `json:"character_id"`
	Stability   float64    `json:"stability"`
	Difficulty  float64    `json:"difficulty"`
	State       CardState  `json:"state"`
	Reps        int        `json:"reps"`
	Lapses      int        `json:"lapses"`
	LastReview  *time.Time `json:"last_review"`
	NextReview  *time.Time `json:"next_review"`
	Familiarity int        `json:"familiarity"`
	FirstSeen   time.Time  `json:"first_seen"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewUserCharacter creates an unseen character record for a learner.
func NewUserCharacter(userID uuid.UUID, character string, now time.Time) (*UserCharacter, error) {
	uc := &UserCharacter{
		ID:          uuid.New(),
		UserID:      userID,
		CharacterID: character,
		State:       StateNew,
		Familiarity: MinFamiliarity,
		FirstSeen:   now,
		UpdatedAt:   now,
	}

	if err := uc.Validate(); err != nil {
		return nil, err
	}

	return uc, nil
}

// Validate checks identity fields and the memory state.
func (uc *UserCharacter) Validate() error {
	if uc.ID == uuid.Nil {
		return ErrEmptyUserCharacterID
	}

	if uc.UserID == uuid.Nil {
		return ErrEmptyUserID
	}

	if err := ValidateCharacter(uc.CharacterID); err != nil {
		return err
	}

	if err := ValidateFamiliarity(uc.Familiarity); err != nil {
		return err
	}

	return uc.ValidateMemory()
}

// ValidateMemory checks only the fields the scheduler reads. It is the boundary
// check applied before any memory-model arithmetic.
func (uc *UserCharacter) ValidateMemory() error {
	if !uc.State.Valid() {
		return NewValidationError("state", "is not a known lifecycle phase", ErrInvalidState)
	}

	if uc.Reps < 0 || uc.Lapses < 0 {
		return ErrNegativeCounter
	}

	if !isFinite(uc.Stability) {
		return ErrNegativeStability
	}

	if !isFinite(uc.Difficulty) {
		return ErrDifficultyOutOfRange
	}

	if uc.State == StateNew {
		if uc.Reps != 0 || uc.LastReview != nil {
			return ErrNewCardReviewed
		}
		return nil
	}

	if uc.Stability <= 0 {
		return ErrNegativeStability
	}

	if uc.Difficulty < MinDifficulty || uc.Difficulty > MaxDifficulty {
		return ErrDifficultyOutOfRange
	}

	return nil
}

// Clone returns a deep copy, including the time pointers.
func (uc *UserCharacter) Clone() *UserCharacter {
	c := *uc
	if uc.LastReview != nil {
		t := *uc.LastReview
		c.LastReview = &t
	}
	if uc.NextReview != nil {
		t := *uc.NextReview
		c.NextReview = &t
	}
	return &c
}

// ValidateCharacter checks that s is exactly one Unicode code point.
func ValidateCharacter(s string) error {
	if !utf8.ValidString(s) || utf8.RuneCountInString(s) != 1 {
		return NewValidationError("character", "must be a single character", ErrInvalidCharacter)
	}
	return nil
}

// ValidateFamiliarity checks that f is a 1-5 tier.
func ValidateFamiliarity(f int) error {
	if f < MinFamiliarity || f > MaxFamiliarity {
		return NewValidationError("familiarity", "must be an integer between 1 and 5", ErrInvalidFamiliarity)
	}
	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
