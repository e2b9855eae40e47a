package review

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/hanzi-srs/internal/domain"
	"github.com/phrazzld/hanzi-srs/internal/domain/srs"
)

// MockReviewService is a function-field implementation of ReviewService for handler tests.
// Unset functions return zero values.
type MockReviewService struct {
	SubmitReviewFunc     func(ctx context.Context, userID, userCharacterID uuid.UUID, grade int) (*ReviewResult, error)
	PreviewIntervalsFunc func(ctx context.Context, userID, userCharacterID uuid.UUID) (*srs.IntervalPreview, error)
	GetDueFunc           func(ctx context.Context, userID uuid.UUID, limit int) ([]*DueCharacter, error)
	StatsFunc            func(ctx context.Context, userID uuid.UUID) (*domain.NotebookStats, error)
	ListFunc             func(ctx context.Context, userID uuid.UUID, query ListQuery) (*Page, error)
	SetFamiliarityFunc   func(ctx context.Context, userID uuid.UUID, character string, familiarity int) (*domain.UserCharacter, error)
	MarkCharacterFunc    func(ctx context.Context, userID uuid.UUID, character string, familiarity int) (*domain.UserCharacter, error)
	BulkMarkFunc         func(ctx context.Context, userID uuid.UUID, characters []string, familiarity int) ([]*domain.UserCharacter, error)
	LookupFunc           func(ctx context.Context, userID uuid.UUID, chars string) (map[string]*domain.UserCharacter, error)
}

var _ ReviewService = (*MockReviewService)(nil)

func (m *MockReviewService) SubmitReview(
	ctx context.Context,
	userID, userCharacterID uuid.UUID,
	grade int,
) (*ReviewResult, error) {
	if m.SubmitReviewFunc != nil {
		return m.SubmitReviewFunc(ctx, userID, userCharacterID, grade)
	}
	return nil, nil
}

func (m *MockReviewService) PreviewIntervals(
	ctx context.Context,
	userID, userCharacterID uuid.UUID,
) (*srs.IntervalPreview, error) {
	if m.PreviewIntervalsFunc != nil {
		return m.PreviewIntervalsFunc(ctx, userID, userCharacterID)
	}
	return nil, nil
}

func (m *MockReviewService) GetDue(ctx context.Context, userID uuid.UUID, limit int) ([]*DueCharacter, error) {
	if m.GetDueFunc != nil {
		return m.GetDueFunc(ctx, userID, limit)
	}
	return nil, nil
}

func (m *MockReviewService) Stats(ctx context.Context, userID uuid.UUID) (*domain.NotebookStats, error) {
	if m.StatsFunc != nil {
		return m.StatsFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockReviewService) List(ctx context.Context, userID uuid.UUID, query ListQuery) (*Page, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, userID, query)
	}
	return nil, nil
}

func (m *MockReviewService) SetFamiliarity(
	ctx context.Context,
	userID uuid.UUID,
	character string,
	familiarity int,
) (*domain.UserCharacter, error) {
	if m.SetFamiliarityFunc != nil {
		return m.SetFamiliarityFunc(ctx, userID, character, familiarity)
	}
	return nil, nil
}

func (m *MockReviewService) MarkCharacter(
	ctx context.Context,
	userID uuid.UUID,
	character string,
	familiarity int,
) (*domain.UserCharacter, error) {
	if m.MarkCharacterFunc != nil {
		return m.MarkCharacterFunc(ctx, userID, character, familiarity)
	}
	return nil, nil
}

func (m *MockReviewService) BulkMark(
	ctx context.Context,
	userID uuid.UUID,
	characters []string,
	familiarity int,
) ([]*domain.UserCharacter, error) {
	if m.BulkMarkFunc != nil {
		return m.BulkMarkFunc(ctx, userID, characters, familiarity)
	}
	return nil, nil
}

func (m *MockReviewService) Lookup(
	ctx context.Context,
	userID uuid.UUID,
	chars string,
) (map[string]*domain.UserCharacter, error) {
	if m.LookupFunc != nil {
		return m.LookupFunc(ctx, userID, chars)
	}
	return nil, nil
}
