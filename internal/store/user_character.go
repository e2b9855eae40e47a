package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/hanzi-srs/internal/domain"
)

// ListSort selects the ordering of a notebook listing.
type ListSort string

// Listing orders.
const (
	SortRecent      ListSort = "recent"      // first seen, newest first
	SortOldest      ListSort = "oldest"      // first seen, oldest first
	SortFamiliarity ListSort = "familiarity" // least familiar first
)

// FamiliarityFilter restricts a listing by familiarity tier.
type FamiliarityFilter int

// Listing filters.
const (
	FilterNone     FamiliarityFilter = iota
	FilterUnknown                    // familiarity = 1
	FilterKnown                      // familiarity = 5
	FilterLearning                   // familiarity < 5
)

// ListParams describes one page of a notebook listing.
type ListParams struct {
	Page    int
	PerPage int
	Filter  FamiliarityFilter
	Sort    ListSort
}

// Offset returns the number of rows to skip for the requested page.
func (p ListParams) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PerPage
}

// UserCharacterStore defines the interface for user character persistence.
// Every lookup is scoped to a learner; rows owned by another learner are
// reported as ErrUserCharacterNotFound.
type UserCharacterStore interface {
	// Create saves a new user character. Returns ErrDuplicate if the learner
	// already has a row for the character.
	Create(ctx context.Context, uc *domain.UserCharacter) error

	// Get retrieves a user character by row ID.
	// NOTE: This method does NOT lock the row; use GetForUpdate before writes.
	Get(ctx context.Context, userID, id uuid.UUID) (*domain.UserCharacter, error)

	// GetForUpdate retrieves a user character with a row-level lock using
	// SELECT FOR UPDATE. It must be called inside a transaction.
	GetForUpdate(ctx context.Context, userID, id uuid.UUID) (*domain.UserCharacter, error)

	// GetByCharacter retrieves the learner's row for a character.
	GetByCharacter(ctx context.Context, userID uuid.UUID, character string) (*domain.UserCharacter, error)

	// Update writes the memory state and familiarity of an existing row.
	Update(ctx context.Context, uc *domain.UserCharacter) error

	// SetFamiliarity changes only the familiarity of an existing row.
	SetFamiliarity(
		ctx context.Context,
		userID uuid.UUID,
		character string,
		familiarity int,
		now time.Time,
	) (*domain.UserCharacter, error)

	// UpsertFamiliarity creates the row as New if absent and sets its familiarity.
	UpsertFamiliarity(
		ctx context.Context,
		userID uuid.UUID,
		character string,
		familiarity int,
		now time.Time,
	) (*domain.UserCharacter, error)

	// ListDueCandidates returns rows that may be due at now, ordered for the
	// review queue and capped at limit.
	ListDueCandidates(
		ctx context.Context,
		userID uuid.UUID,
		now time.Time,
		limit int,
	) ([]*domain.UserCharacter, error)

	// List returns one page of the learner's notebook and the total row count
	// matching the filter.
	List(ctx context.Context, userID uuid.UUID, params ListParams) ([]*domain.UserCharacter, int, error)

	// Lookup returns the learner's rows for the given characters. Missing
	// characters are simply absent from the result.
	Lookup(ctx context.Context, userID uuid.UUID, characters []string) ([]*domain.UserCharacter, error)

	// Stats computes notebook statistics at now.
	Stats(ctx context.Context, userID uuid.UUID, now time.Time) (*domain.NotebookStats, error)

	// WithTx returns a new UserCharacterStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) UserCharacterStore
}
