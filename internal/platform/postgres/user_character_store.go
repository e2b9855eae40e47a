package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/hanzi-srs/internal/domain"
	"github.com/phrazzld/hanzi-srs/internal/platform/logger"
	"github.com/phrazzld/hanzi-srs/internal/store"
)

const userCharacterColumns = `id, user_id, character_id, stability, difficulty, state, reps, lapses,
	last_review, next_review, familiarity, first_seen, updated_at`

// dueCondition matches rows that may be due at $2: scheduled in the past, or
// never scheduled and still new.
const dueCondition = `(next_review <= $2 OR (next_review IS NULL AND state = 0))`

// PostgresUserCharacterStore implements the store.UserCharacterStore interface
// using a PostgreSQL database as the storage backend.
type PostgresUserCharacterStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresUserCharacterStore creates a new PostgreSQL implementation of the
// UserCharacterStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresUserCharacterStore(db store.DBTX, logger *slog.Logger) *PostgresUserCharacterStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresUserCharacterStore{
		db:     db,
		logger: logger.With(slog.String("component", "user_character_store")),
	}
}

// Ensure PostgresUserCharacterStore implements store.UserCharacterStore interface
var _ store.UserCharacterStore = (*PostgresUserCharacterStore)(nil)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUserCharacter(row rowScanner) (*domain.UserCharacter, error) {
	var (
		uc         domain.UserCharacter
		state      int
		lastReview sql.NullTime
		nextReview sql.NullTime
	)

	err := row.Scan(
		&uc.ID,
		&uc.UserID,
		&uc.CharacterID,
		&uc.Stability,
		&uc.Difficulty,
		&state,
		&uc.Reps,
		&uc.Lapses,
		&lastReview,
		&nextReview,
		&uc.Familiarity,
		&uc.FirstSeen,
		&uc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	uc.State = domain.CardState(state)
	if lastReview.Valid {
		t := lastReview.Time.UTC()
		uc.LastReview = &t
	}
	if nextReview.Valid {
		t := nextReview.Time.UTC()
		uc.NextReview = &t
	}
	uc.FirstSeen = uc.FirstSeen.UTC()
	uc.UpdatedAt = uc.UpdatedAt.UTC()

	return &uc, nil
}

func scanUserCharacters(rows *sql.Rows) ([]*domain.UserCharacter, error) {
	defer func() { _ = rows.Close() }()

	result := make([]*domain.UserCharacter, 0)
	for rows.Next() {
		uc, err := scanUserCharacter(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, uc)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

// Create implements store.UserCharacterStore.Create
func (s *PostgresUserCharacterStore) Create(ctx context.Context, uc *domain.UserCharacter) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := uc.Validate(); err != nil {
		log.Warn("user character validation failed during create",
			slog.String("error", err.Error()),
			slog.String("user_character_id", uc.ID.String()))
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO user_characters (` + userCharacterColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := s.db.ExecContext(ctx, query,
		uc.ID,
		uc.UserID,
		uc.CharacterID,
		uc.Stability,
		uc.Difficulty,
		int(uc.State),
		uc.Reps,
		uc.Lapses,
		nullTime(uc.LastReview),
		nullTime(uc.NextReview),
		uc.Familiarity,
		uc.FirstSeen.UTC(),
		uc.UpdatedAt.UTC(),
	)
	if err != nil {
		log.Error("failed to create user character",
			slog.String("error", err.Error()),
			slog.String("user_character_id", uc.ID.String()),
			slog.String("user_id", uc.UserID.String()))
		return MapError(err)
	}

	log.Debug("user character created",
		slog.String("user_character_id", uc.ID.String()),
		slog.String("user_id", uc.UserID.String()))
	return nil
}

// Get implements store.UserCharacterStore.Get
func (s *PostgresUserCharacterStore) Get(
	ctx context.Context,
	userID, id uuid.UUID,
) (*domain.UserCharacter, error) {
	return s.get(ctx, userID, id, false)
}

// GetForUpdate implements store.UserCharacterStore.GetForUpdate
func (s *PostgresUserCharacterStore) GetForUpdate(
	ctx context.Context,
	userID, id uuid.UUID,
) (*domain.UserCharacter, error) {
	return s.get(ctx, userID, id, true)
}

func (s *PostgresUserCharacterStore) get(
	ctx context.Context,
	userID, id uuid.UUID,
	forUpdate bool,
) (*domain.UserCharacter, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + userCharacterColumns + ` FROM user_characters WHERE id = $1 AND user_id = $2`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	uc, err := scanUserCharacter(s.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("user character not found",
				slog.String("user_character_id", id.String()),
				slog.String("user_id", userID.String()))
			return nil, store.ErrUserCharacterNotFound
		}
		log.Error("failed to get user character",
			slog.String("error", err.Error()),
			slog.String("user_character_id", id.String()),
			slog.Bool("for_update", forUpdate))
		return nil, MapError(err)
	}

	return uc, nil
}

// GetByCharacter implements store.UserCharacterStore.GetByCharacter
func (s *PostgresUserCharacterStore) GetByCharacter(
	ctx context.Context,
	userID uuid.UUID,
	character string,
) (*domain.UserCharacter, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + userCharacterColumns + ` FROM user_characters WHERE user_id = $1 AND character_id = $2`

	uc, err := scanUserCharacter(s.db.QueryRowContext(ctx, query, userID, character))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserCharacterNotFound
		}
		log.Error("failed to get user character by character",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}

	return uc, nil
}

// Update implements store.UserCharacterStore.Update
func (s *PostgresUserCharacterStore) Update(ctx context.Context, uc *domain.UserCharacter) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := uc.Validate(); err != nil {
		log.Warn("user character validation failed during update",
			slog.String("error", err.Error()),
			slog.String("user_character_id", uc.ID.String()))
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE user_characters
		SET stability = $1, difficulty = $2, state = $3, reps = $4, lapses = $5,
			last_review = $6, next_review = $7, familiarity = $8, updated_at = $9
		WHERE id = $10 AND user_id = $11
	`
	result, err := s.db.ExecContext(ctx, query,
		uc.Stability,
		uc.Difficulty,
		int(uc.State),
		uc.Reps,
		uc.Lapses,
		nullTime(uc.LastReview),
		nullTime(uc.NextReview),
		uc.Familiarity,
		uc.UpdatedAt.UTC(),
		uc.ID,
		uc.UserID,
	)
	if err != nil {
		log.Error("failed to update user character",
			slog.String("error", err.Error()),
			slog.String("user_character_id", uc.ID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrUserCharacterNotFound); err != nil {
		return err
	}

	log.Debug("user character updated",
		slog.String("user_character_id", uc.ID.String()),
		slog.String("state", uc.State.String()))
	return nil
}

// SetFamiliarity implements store.UserCharacterStore.SetFamiliarity
func (s *PostgresUserCharacterStore) SetFamiliarity(
	ctx context.Context,
	userID uuid.UUID,
	character string,
	familiarity int,
	now time.Time,
) (*domain.UserCharacter, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE user_characters
		SET familiarity = $3, updated_at = $4
		WHERE user_id = $1 AND character_id = $2
		RETURNING ` + userCharacterColumns

	uc, err := scanUserCharacter(s.db.QueryRowContext(ctx, query, userID, character, familiarity, now.UTC()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserCharacterNotFound
		}
		log.Error("failed to set familiarity",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}

	return uc, nil
}

// UpsertFamiliarity implements store.UserCharacterStore.UpsertFamiliarity
func (s *PostgresUserCharacterStore) UpsertFamiliarity(
	ctx context.Context,
	userID uuid.UUID,
	character string,
	familiarity int,
	now time.Time,
) (*domain.UserCharacter, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO user_characters (id, user_id, character_id, familiarity, first_seen, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (user_id, character_id)
		DO UPDATE SET familiarity = EXCLUDED.familiarity, updated_at = EXCLUDED.updated_at
		RETURNING ` + userCharacterColumns

	uc, err := scanUserCharacter(
		s.db.QueryRowContext(ctx, query, uuid.New(), userID, character, familiarity, now.UTC()),
	)
	if err != nil {
		log.Error("failed to upsert familiarity",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}

	return uc, nil
}

// ListDueCandidates implements store.UserCharacterStore.ListDueCandidates
func (s *PostgresUserCharacterStore) ListDueCandidates(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
	limit int,
) ([]*domain.UserCharacter, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + userCharacterColumns + `
		FROM user_characters
		WHERE user_id = $1 AND ` + dueCondition + `
		ORDER BY CASE state WHEN 0 THEN 0 WHEN 2 THEN 2 ELSE 1 END, next_review ASC NULLS FIRST
		LIMIT $3
	`

	rows, err := s.db.QueryContext(ctx, query, userID, now.UTC(), limit)
	if err != nil {
		log.Error("failed to query due characters",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}

	result, err := scanUserCharacters(rows)
	if err != nil {
		log.Error("failed to scan due characters", slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	log.Debug("due candidates loaded",
		slog.String("user_id", userID.String()),
		slog.Int("count", len(result)))
	return result, nil
}

func listFilterClause(filter store.FamiliarityFilter) string {
	switch filter {
	case store.FilterUnknown:
		return ` AND familiarity = 1`
	case store.FilterKnown:
		return ` AND familiarity = 5`
	case store.FilterLearning:
		return ` AND familiarity < 5`
	default:
		return ""
	}
}

func listOrderClause(sort store.ListSort) string {
	switch sort {
	case store.SortOldest:
		return ` ORDER BY first_seen ASC, id ASC`
	case store.SortFamiliarity:
		return ` ORDER BY familiarity ASC, first_seen DESC, id ASC`
	default:
		return ` ORDER BY first_seen DESC, id ASC`
	}
}

// List implements store.UserCharacterStore.List
func (s *PostgresUserCharacterStore) List(
	ctx context.Context,
	userID uuid.UUID,
	params store.ListParams,
) ([]*domain.UserCharacter, int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	where := ` WHERE user_id = $1` + listFilterClause(params.Filter)

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM user_characters`+where, userID).Scan(&total); err != nil {
		log.Error("failed to count user characters",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, 0, MapError(err)
	}

	query := `SELECT ` + userCharacterColumns + ` FROM user_characters` + where +
		listOrderClause(params.Sort) + ` LIMIT $2 OFFSET $3`

	rows, err := s.db.QueryContext(ctx, query, userID, params.PerPage, params.Offset())
	if err != nil {
		log.Error("failed to list user characters",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, 0, MapError(err)
	}

	result, err := scanUserCharacters(rows)
	if err != nil {
		return nil, 0, MapError(err)
	}

	return result, total, nil
}

// Lookup implements store.UserCharacterStore.Lookup
func (s *PostgresUserCharacterStore) Lookup(
	ctx context.Context,
	userID uuid.UUID,
	characters []string,
) ([]*domain.UserCharacter, error) {
	if len(characters) == 0 {
		return []*domain.UserCharacter{}, nil
	}

	log := logger.FromContextOrDefault(ctx, s.logger)

	args := make([]any, 0, len(characters)+1)
	args = append(args, userID)
	placeholders := make([]string, len(characters))
	for i, c := range characters {
		args = append(args, c)
		placeholders[i] = fmt.Sprintf("$%d", i+2)
	}

	query := `SELECT ` + userCharacterColumns + ` FROM user_characters
		WHERE user_id = $1 AND character_id IN (` + strings.Join(placeholders, ", ") + `)`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to look up user characters",
			slog.String("error", err.Error()),
			slog.Int("characters", len(characters)))
		return nil, MapError(err)
	}

	result, err := scanUserCharacters(rows)
	if err != nil {
		return nil, MapError(err)
	}
	return result, nil
}

// Stats implements store.UserCharacterStore.Stats
func (s *PostgresUserCharacterStore) Stats(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
) (*domain.NotebookStats, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	byState, total, err := s.groupCounts(ctx,
		`SELECT state, COUNT(*) FROM user_characters WHERE user_id = $1 GROUP BY state`, userID)
	if err != nil {
		log.Error("failed to count by state", slog.String("error", err.Error()))
		return nil, err
	}

	byFamiliarity, _, err := s.groupCounts(ctx,
		`SELECT familiarity, COUNT(*) FROM user_characters WHERE user_id = $1 GROUP BY familiarity`, userID)
	if err != nil {
		log.Error("failed to count by familiarity", slog.String("error", err.Error()))
		return nil, err
	}

	query := `
		SELECT
			COUNT(*) FILTER (WHERE ` + dueCondition + `),
			COUNT(*) FILTER (WHERE last_review >= $3)
		FROM user_characters
		WHERE user_id = $1
	`
	var due, recent int
	recentSince := now.Add(-7 * 24 * time.Hour).UTC()
	if err := s.db.QueryRowContext(ctx, query, userID, now.UTC(), recentSince).Scan(&due, &recent); err != nil {
		log.Error("failed to count due and recent", slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	states := make(map[domain.CardState]int, len(byState))
	for k, n := range byState {
		states[domain.CardState(k)] = n
	}

	return domain.NewNotebookStats(total, due, recent, states, byFamiliarity), nil
}

// groupCounts runs a two-column (key, count) query and returns the counts by key
// together with their sum.
func (s *PostgresUserCharacterStore) groupCounts(
	ctx context.Context,
	query string,
	userID uuid.UUID,
) (map[int]int, int, error) {
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, 0, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[int]int)
	total := 0
	for rows.Next() {
		var key, n int
		if err := rows.Scan(&key, &n); err != nil {
			return nil, 0, MapError(err)
		}
		counts[key] = n
		total += n
	}
	if err := rows.Err(); err != nil {
		return nil, 0, MapError(err)
	}

	return counts, total, nil
}

// WithTx implements store.UserCharacterStore.WithTx
func (s *PostgresUserCharacterStore) WithTx(tx *sql.Tx) store.UserCharacterStore {
	return &PostgresUserCharacterStore{
		db:     tx,
		logger: s.logger,
	}
}
