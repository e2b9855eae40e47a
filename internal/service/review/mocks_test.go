package review_test

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/hanzi-srs/internal/domain"
	"github.com/phrazzld/hanzi-srs/internal/events"
	"github.com/phrazzld/hanzi-srs/internal/store"
	"github.com/stretchr/testify/mock"
)

// MockUserCharacterStore mocks the UserCharacterStore interface.
// WithTx returns the mock itself so expectations cover transactional calls.
type MockUserCharacterStore struct {
	mock.Mock
}

var _ store.UserCharacterStore = (*MockUserCharacterStore)(nil)

func (m *MockUserCharacterStore) Create(ctx context.Context, uc *domain.UserCharacter) error {
	args := m.Called(ctx, uc)
	return args.Error(0)
}

func (m *MockUserCharacterStore) Get(ctx context.Context, userID, id uuid.UUID) (*domain.UserCharacter, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserCharacter), args.Error(1)
}

func (m *MockUserCharacterStore) GetForUpdate(
	ctx context.Context,
	userID, id uuid.UUID,
) (*domain.UserCharacter, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserCharacter), args.Error(1)
}

func (m *MockUserCharacterStore) GetByCharacter(
	ctx context.Context,
	userID uuid.UUID,
	character string,
) (*domain.UserCharacter, error) {
	args := m.Called(ctx, userID, character)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserCharacter), args.Error(1)
}

func (m *MockUserCharacterStore) Update(ctx context.Context, uc *domain.UserCharacter) error {
	args := m.Called(ctx, uc)
	return args.Error(0)
}

func (m *MockUserCharacterStore) SetFamiliarity(
	ctx context.Context,
	userID uuid.UUID,
	character string,
	familiarity int,
	now time.Time,
) (*domain.UserCharacter, error) {
	args := m.Called(ctx, userID, character, familiarity, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserCharacter), args.Error(1)
}

func (m *MockUserCharacterStore) UpsertFamiliarity(
	ctx context.Context,
	userID uuid.UUID,
	character string,
	familiarity int,
	now time.Time,
) (*domain.UserCharacter, error) {
	args := m.Called(ctx, userID, character, familiarity, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserCharacter), args.Error(1)
}

func (m *MockUserCharacterStore) ListDueCandidates(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
	limit int,
) ([]*domain.UserCharacter, error) {
	args := m.Called(ctx, userID, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.UserCharacter), args.Error(1)
}

func (m *MockUserCharacterStore) List(
	ctx context.Context,
	userID uuid.UUID,
	params store.ListParams,
) ([]*domain.UserCharacter, int, error) {
	args := m.Called(ctx, userID, params)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*domain.UserCharacter), args.Int(1), args.Error(2)
}

func (m *MockUserCharacterStore) Lookup(
	ctx context.Context,
	userID uuid.UUID,
	characters []string,
) ([]*domain.UserCharacter, error) {
	args := m.Called(ctx, userID, characters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.UserCharacter), args.Error(1)
}

func (m *MockUserCharacterStore) Stats(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
) (*domain.NotebookStats, error) {
	args := m.Called(ctx, userID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.NotebookStats), args.Error(1)
}

func (m *MockUserCharacterStore) WithTx(tx *sql.Tx) store.UserCharacterStore {
	m.Called(tx)
	return m
}

// MockStatsCache mocks the statistics cache.
type MockStatsCache struct {
	mock.Mock
}

func (m *MockStatsCache) GetStats(ctx context.Context, userID uuid.UUID) (*domain.NotebookStats, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.NotebookStats), args.Error(1)
}

func (m *MockStatsCache) StatsGeneration(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStatsCache) SetStats(
	ctx context.Context,
	userID uuid.UUID,
	generation int64,
	stats *domain.NotebookStats,
) error {
	args := m.Called(ctx, userID, generation, stats)
	return args.Error(0)
}

// recordingHandler collects every event it receives.
type recordingHandler struct {
	events []*events.NotebookEvent
}

func (h *recordingHandler) HandleEvent(ctx context.Context, event *events.NotebookEvent) error {
	h.events = append(h.events, event)
	return nil
}
