package srs

import (
	"errors"
	"fmt"
	"time"

	"github.com/phrazzld/hanzi-srs/internal/domain"
)

// Common errors
var (
	ErrNilCard = errors.New("user character cannot be nil")
)

// IntervalPreview holds the formatted interval each grade would produce.
type IntervalPreview struct {
	Again string `json:"again"`
	Hard  string `json:"hard"`
	Good  string `json:"good"`
	Easy  string `json:"easy"`
}

// Service defines the interface for memory-model scheduling operations.
// Implementations are pure: they never read the clock or mutate their inputs.
type Service interface {
	// Schedule applies grade to card at time now and returns the new card state
	// together with the interval in days until the next review.
	Schedule(
		card *domain.UserCharacter,
		grade domain.Grade,
		now time.Time,
	) (*domain.UserCharacter, float64, error)

	// PreviewIntervals schedules card once per grade and formats each interval.
	// The resulting card states are discarded.
	PreviewIntervals(card *domain.UserCharacter, now time.Time) (*IntervalPreview, error)

	// Params returns a copy of the parameters the service was built with.
	Params() Params
}

// defaultService is the standard implementation of the Service interface
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new SRS service with default parameters
func NewDefaultService() (Service, error) {
	return NewServiceWithParams(NewDefaultParams())
}

// NewServiceWithParams creates a new SRS service with custom parameters
func NewServiceWithParams(params *Params) (Service, error) {
	if params == nil {
		return nil, errors.New("params cannot be nil")
	}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid srs params: %w", err)
	}

	p := *params
	return &defaultService{params: &p}, nil
}

// Schedule implements the Service interface
func (s *defaultService) Schedule(
	card *domain.UserCharacter,
	grade domain.Grade,
	now time.Time,
) (*domain.UserCharacter, float64, error) {
	if err := validateInput(card, grade); err != nil {
		return nil, 0, err
	}

	next, interval := calculateNext(card, grade, now, s.params)
	return next, interval, nil
}

// PreviewIntervals implements the Service interface
func (s *defaultService) PreviewIntervals(
	card *domain.UserCharacter,
	now time.Time,
) (*IntervalPreview, error) {
	if err := validateInput(card, domain.GradeGood); err != nil {
		return nil, err
	}

	formatted := make(map[domain.Grade]string, len(domain.Grades))
	for _, grade := range domain.Grades {
		_, interval := calculateNext(card, grade, now, s.params)
		formatted[grade] = FormatInterval(interval)
	}

	return &IntervalPreview{
		Again: formatted[domain.GradeAgain],
		Hard:  formatted[domain.GradeHard],
		Good:  formatted[domain.GradeGood],
		Easy:  formatted[domain.GradeEasy],
	}, nil
}

// Params implements the Service interface
func (s *defaultService) Params() Params {
	return *s.params
}

// validateInput rejects contract violations before any arithmetic runs.
func validateInput(card *domain.UserCharacter, grade domain.Grade) error {
	if card == nil {
		return ErrNilCard
	}
	if !grade.Valid() {
		return fmt.Errorf("%w: %d", domain.ErrInvalidGrade, int(grade))
	}
	if err := card.ValidateMemory(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}
	return nil
}
