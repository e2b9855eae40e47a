package review

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/phrazzld/hanzi-srs/internal/domain"
	"github.com/phrazzld/hanzi-srs/internal/domain/srs"
	"github.com/phrazzld/hanzi-srs/internal/events"
	"github.com/phrazzld/hanzi-srs/internal/platform/logger"
	"github.com/phrazzld/hanzi-srs/internal/store"
)

// Verify interface compliance at compile time
var _ ReviewService = (*reviewServiceImpl)(nil)

// StatsCache is the read-through cache used by Stats. SetStats must drop the
// write when the learner's generation moved past the one passed in.
type StatsCache interface {
	GetStats(ctx context.Context, userID uuid.UUID) (*domain.NotebookStats, error)
	StatsGeneration(ctx context.Context, userID uuid.UUID) (int64, error)
	SetStats(ctx context.Context, userID uuid.UUID, generation int64, stats *domain.NotebookStats) error
}

// Option configures optional collaborators of the review service.
type Option func(*reviewServiceImpl)

// WithClock replaces time.Now as the source of review timestamps.
func WithClock(clock func() time.Time) Option {
	return func(s *reviewServiceImpl) {
		s.clock = clock
	}
}

// WithStatsCache enables caching of notebook statistics.
func WithStatsCache(cache StatsCache) Option {
	return func(s *reviewServiceImpl) {
		s.cache = cache
	}
}

// WithEventEmitter publishes an event after every committed write.
func WithEventEmitter(emitter events.EventEmitter) Option {
	return func(s *reviewServiceImpl) {
		s.emitter = emitter
	}
}

type reviewServiceImpl struct {
	db        *sql.DB
	store     store.UserCharacterStore
	scheduler srs.Service
	cache     StatsCache
	emitter   events.EventEmitter
	clock     func() time.Time
	logger    *slog.Logger
}

// NewReviewService creates a ReviewService backed by the given store.
// db is used to open the transactions that wrap every write.
func NewReviewService(
	db *sql.DB,
	userCharacterStore store.UserCharacterStore,
	scheduler srs.Service,
	logger *slog.Logger,
	opts ...Option,
) ReviewService {
	if db == nil {
		panic("db cannot be nil")
	}
	if userCharacterStore == nil {
		panic("userCharacterStore cannot be nil")
	}
	if scheduler == nil {
		panic("scheduler cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &reviewServiceImpl{
		db:        db,
		store:     userCharacterStore,
		scheduler: scheduler,
		clock:     time.Now,
		logger:    logger.With(slog.String("component", "review_service")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *reviewServiceImpl) now() time.Time {
	return s.clock().UTC()
}

// SubmitReview implements ReviewService.SubmitReview.
func (s *reviewServiceImpl) SubmitReview(
	ctx context.Context,
	userID, userCharacterID uuid.UUID,
	grade int,
) (*ReviewResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	g, err := domain.ParseGrade(grade)
	if err != nil {
		log.Warn("invalid review grade",
			slog.String("user_id", userID.String()),
			slog.String("user_character_id", userCharacterID.String()),
			slog.Int("grade", grade))
		return nil, err
	}

	now := s.now()
	var result *ReviewResult
	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.store.WithTx(tx)

		current, err := txStore.GetForUpdate(ctx, userID, userCharacterID)
		if err != nil {
			return err
		}

		next, interval, err := s.scheduler.Schedule(current, g, now)
		if err != nil {
			return err
		}
		next.UpdatedAt = now

		if err := txStore.Update(ctx, next); err != nil {
			return err
		}

		result = &ReviewResult{Character: next, IntervalDays: interval}
		return nil
	})
	if err != nil {
		if store.IsNotFoundError(err) {
			log.Debug("review target not found",
				slog.String("user_id", userID.String()),
				slog.String("user_character_id", userCharacterID.String()))
			return nil, ErrUserCharacterNotFound
		}
		if errors.Is(err, domain.ErrValidation) {
			return nil, err
		}

		log.Error("failed to submit review",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("user_character_id", userCharacterID.String()))
		return nil, NewServiceError("submit_review", "failed to record review", err)
	}

	s.emit(ctx, events.TypeReviewRecorded, userID, events.ReviewRecorded{
		UserCharacterID: result.Character.ID,
		CharacterID:     result.Character.CharacterID,
		Grade:           int(g),
		State:           result.Character.State.String(),
		IntervalDays:    result.IntervalDays,
		NextReview:      *result.Character.NextReview,
	}, now)

	log.Debug("review recorded",
		slog.String("user_id", userID.String()),
		slog.String("user_character_id", userCharacterID.String()),
		slog.String("grade", g.String()),
		slog.String("state", result.Character.State.String()),
		slog.Float64("stability", result.Character.Stability),
		slog.Float64("interval_days", result.IntervalDays))

	return result, nil
}

// PreviewIntervals implements ReviewService.PreviewIntervals.
func (s *reviewServiceImpl) PreviewIntervals(
	ctx context.Context,
	userID, userCharacterID uuid.UUID,
) (*srs.IntervalPreview, error) {
	card, err := s.store.Get(ctx, userID, userCharacterID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrUserCharacterNotFound
		}
		return nil, NewServiceError("preview_intervals", "failed to load character", err)
	}

	preview, err := s.scheduler.PreviewIntervals(card, s.now())
	if err != nil {
		return nil, NewServiceError("preview_intervals", "failed to compute previews", err)
	}
	return preview, nil
}

// GetDue implements ReviewService.GetDue.
func (s *reviewServiceImpl) GetDue(
	ctx context.Context,
	userID uuid.UUID,
	limit int,
) ([]*DueCharacter, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit <= 0 {
		limit = DefaultDueLimit
	}
	if limit > MaxDueLimit {
		return nil, fmt.Errorf("%w: limit must be at most %d", ErrInvalidQuery, MaxDueLimit)
	}

	now := s.now()
	candidates, err := s.store.ListDueCandidates(ctx, userID, now, limit)
	if err != nil {
		log.Error("failed to list due candidates",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, NewServiceError("get_due", "failed to list due characters", err)
	}

	selected := srs.SelectDue(candidates, now, limit)
	due := make([]*DueCharacter, 0, len(selected))
	for _, card := range selected {
		preview, err := s.scheduler.PreviewIntervals(card, now)
		if err != nil {
			// A malformed row should not hide the rest of the queue.
			log.Warn("skipping due character with invalid memory state",
				slog.String("error", err.Error()),
				slog.String("user_character_id", card.ID.String()))
			continue
		}
		due = append(due, &DueCharacter{Character: card, Previews: preview})
	}

	return due, nil
}

// Stats implements ReviewService.Stats.
func (s *reviewServiceImpl) Stats(ctx context.Context, userID uuid.UUID) (*domain.NotebookStats, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var generation int64
	cacheable := false
	if s.cache != nil {
		cached, err := s.cache.GetStats(ctx, userID)
		if err == nil {
			return cached, nil
		}
		log.Debug("notebook stats not served from cache",
			slog.String("user_id", userID.String()),
			slog.String("reason", err.Error()))

		// Read before querying so a concurrent invalidation wins over this snapshot.
		generation, err = s.cache.StatsGeneration(ctx, userID)
		if err != nil {
			log.Warn("failed to read notebook stats generation",
				slog.String("error", err.Error()),
				slog.String("user_id", userID.String()))
		} else {
			cacheable = true
		}
	}

	stats, err := s.store.Stats(ctx, userID, s.now())
	if err != nil {
		log.Error("failed to compute notebook stats",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, NewServiceError("stats", "failed to compute notebook stats", err)
	}

	if cacheable {
		if err := s.cache.SetStats(ctx, userID, generation, stats); err != nil {
			log.Warn("failed to cache notebook stats",
				slog.String("error", err.Error()),
				slog.String("user_id", userID.String()))
		}
	}

	return stats, nil
}

// List implements ReviewService.List.
func (s *reviewServiceImpl) List(ctx context.Context, userID uuid.UUID, query ListQuery) (*Page, error) {
	params, err := query.params()
	if err != nil {
		return nil, err
	}

	characters, total, err := s.store.List(ctx, userID, params)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list notebook",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, NewServiceError("list", "failed to list notebook", err)
	}

	return &Page{
		Characters: characters,
		Total:      total,
		Page:       params.Page,
		PerPage:    params.PerPage,
	}, nil
}

// params validates the query and applies defaults.
func (q ListQuery) params() (store.ListParams, error) {
	p := store.ListParams{
		Page:    q.Page,
		PerPage: q.PerPage,
		Sort:    store.SortRecent,
	}

	if p.Page == 0 {
		p.Page = 1
	}
	if p.PerPage == 0 {
		p.PerPage = DefaultPerPage
	}
	if p.Page < 1 {
		return p, fmt.Errorf("%w: page must be positive", ErrInvalidQuery)
	}
	if p.PerPage < 1 || p.PerPage > MaxPerPage {
		return p, fmt.Errorf("%w: per_page must be between 1 and %d", ErrInvalidQuery, MaxPerPage)
	}

	switch store.ListSort(q.Sort) {
	case "":
	case store.SortRecent, store.SortOldest, store.SortFamiliarity:
		p.Sort = store.ListSort(q.Sort)
	default:
		return p, fmt.Errorf("%w: unknown sort %q", ErrInvalidQuery, q.Sort)
	}

	if q.Familiarity != nil {
		switch *q.Familiarity {
		case 0:
			p.Filter = store.FilterUnknown
		case domain.MaxFamiliarity:
			p.Filter = store.FilterKnown
		default:
			p.Filter = store.FilterLearning
		}
	}

	return p, nil
}

// SetFamiliarity implements ReviewService.SetFamiliarity.
func (s *reviewServiceImpl) SetFamiliarity(
	ctx context.Context,
	userID uuid.UUID,
	character string,
	familiarity int,
) (*domain.UserCharacter, error) {
	if err := validateMark(character, familiarity); err != nil {
		return nil, err
	}

	now := s.now()
	uc, err := s.store.SetFamiliarity(ctx, userID, character, familiarity, now)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrUserCharacterNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to set familiarity",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("character", character))
		return nil, NewServiceError("set_familiarity", "failed to update familiarity", err)
	}

	s.emitFamiliarity(ctx, userID, []string{character}, familiarity, now)
	return uc, nil
}

// MarkCharacter implements ReviewService.MarkCharacter.
func (s *reviewServiceImpl) MarkCharacter(
	ctx context.Context,
	userID uuid.UUID,
	character string,
	familiarity int,
) (*domain.UserCharacter, error) {
	if err := validateMark(character, familiarity); err != nil {
		return nil, err
	}

	now := s.now()
	uc, err := s.store.UpsertFamiliarity(ctx, userID, character, familiarity, now)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to mark character",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("character", character))
		return nil, NewServiceError("mark_character", "failed to save familiarity", err)
	}

	s.emitFamiliarity(ctx, userID, []string{character}, familiarity, now)
	return uc, nil
}

// BulkMark implements ReviewService.BulkMark.
func (s *reviewServiceImpl) BulkMark(
	ctx context.Context,
	userID uuid.UUID,
	characters []string,
	familiarity int,
) ([]*domain.UserCharacter, error) {
	if len(characters) == 0 {
		return nil, ErrNoCharacters
	}
	if len(characters) > MaxBatchCharacters {
		return nil, ErrTooManyCharacters
	}
	if err := domain.ValidateFamiliarity(familiarity); err != nil {
		return nil, err
	}
	for _, c := range characters {
		if err := domain.ValidateCharacter(c); err != nil {
			return nil, err
		}
	}

	unique := dedupe(characters)
	now := s.now()
	marked := make([]*domain.UserCharacter, 0, len(unique))

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.store.WithTx(tx)
		for _, c := range unique {
			uc, err := txStore.UpsertFamiliarity(ctx, userID, c, familiarity, now)
			if err != nil {
				return fmt.Errorf("failed to mark %q: %w", c, err)
			}
			marked = append(marked, uc)
		}
		return nil
	})
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to bulk mark characters",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.Int("count", len(unique)))
		return nil, NewServiceError("bulk_mark", "failed to save familiarity", err)
	}

	s.emitFamiliarity(ctx, userID, unique, familiarity, now)
	return marked, nil
}

// Lookup implements ReviewService.Lookup.
func (s *reviewServiceImpl) Lookup(
	ctx context.Context,
	userID uuid.UUID,
	chars string,
) (map[string]*domain.UserCharacter, error) {
	if !utf8.ValidString(chars) {
		return nil, fmt.Errorf("%w: chars must be valid UTF-8", ErrInvalidQuery)
	}

	runes := make([]string, 0, utf8.RuneCountInString(chars))
	for _, r := range chars {
		runes = append(runes, string(r))
	}
	unique := dedupe(runes)

	found := make(map[string]*domain.UserCharacter, len(unique))
	if len(unique) == 0 {
		return found, nil
	}
	if len(unique) > MaxBatchCharacters {
		return nil, ErrTooManyCharacters
	}

	rows, err := s.store.Lookup(ctx, userID, unique)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to look up characters",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, NewServiceError("lookup", "failed to look up characters", err)
	}

	for _, uc := range rows {
		found[uc.CharacterID] = uc
	}
	return found, nil
}

func validateMark(character string, familiarity int) error {
	if err := domain.ValidateCharacter(character); err != nil {
		return err
	}
	return domain.ValidateFamiliarity(familiarity)
}

// dedupe returns the distinct values of in, keeping first occurrences in order.
func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func (s *reviewServiceImpl) emitFamiliarity(
	ctx context.Context,
	userID uuid.UUID,
	characters []string,
	familiarity int,
	now time.Time,
) {
	s.emit(ctx, events.TypeFamiliarityChanged, userID, events.FamiliarityChanged{
		Characters:  characters,
		Familiarity: familiarity,
	}, now)
}

// emit publishes a committed change. Failures are logged only since the
// write itself has already succeeded.
func (s *reviewServiceImpl) emit(
	ctx context.Context,
	eventType string,
	userID uuid.UUID,
	payload interface{},
	now time.Time,
) {
	if s.emitter == nil {
		return
	}

	log := logger.FromContextOrDefault(ctx, s.logger)
	event, err := events.NewNotebookEvent(eventType, userID, payload, now)
	if err != nil {
		log.Error("failed to build event",
			slog.String("error", err.Error()),
			slog.String("event_type", eventType))
		return
	}

	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		log.Warn("event handler failed",
			slog.String("error", err.Error()),
			slog.String("event_type", eventType),
			slog.String("user_id", userID.String()))
	}
}
