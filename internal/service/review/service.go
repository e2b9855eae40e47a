package review

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/phrazzld/hanzi-srs/internal/domain"
	"github.com/phrazzld/hanzi-srs/internal/domain/srs"
)

// Limits applied to notebook queries.
const (
	DefaultDueLimit = 50
	MaxDueLimit     = 500

	DefaultPerPage = 24
	MaxPerPage     = 100

	// MaxBatchCharacters caps bulk marks and batch lookups.
	MaxBatchCharacters = 1000
)

// ReviewService schedules reviews and manages a learner's notebook.
// Every operation is scoped to the learner identified by userID.
type ReviewService interface {
	// SubmitReview applies a grade to one of the learner's characters inside a
	// transaction that holds a row lock for the duration of the read-schedule-write.
	//
	// Returns:
	//   - ErrUserCharacterNotFound if the row does not exist or belongs to someone else
	//   - domain.ErrInvalidGrade if grade is outside 1..4
	SubmitReview(ctx context.Context, userID, userCharacterID uuid.UUID, grade int) (*ReviewResult, error)

	// PreviewIntervals formats the interval each grade would produce without
	// writing anything.
	PreviewIntervals(ctx context.Context, userID, userCharacterID uuid.UUID) (*srs.IntervalPreview, error)

	// GetDue returns the learner's review queue. limit <= 0 selects DefaultDueLimit;
	// limits above MaxDueLimit are rejected with ErrInvalidQuery.
	// Rows with an invalid memory state are logged and dropped after the store
	// applies the limit, so the queue may hold fewer than limit entries even
	// when more characters are due.
	GetDue(ctx context.Context, userID uuid.UUID, limit int) ([]*DueCharacter, error)

	// Stats returns notebook statistics, served from the cache when possible.
	Stats(ctx context.Context, userID uuid.UUID) (*domain.NotebookStats, error)

	// List returns one page of the learner's notebook.
	List(ctx context.Context, userID uuid.UUID, query ListQuery) (*Page, error)

	// SetFamiliarity changes the familiarity of a character already in the notebook.
	SetFamiliarity(ctx context.Context, userID uuid.UUID, character string, familiarity int) (*domain.UserCharacter, error)

	// MarkCharacter records a familiarity for a character, adding it to the
	// notebook as New when absent.
	MarkCharacter(ctx context.Context, userID uuid.UUID, character string, familiarity int) (*domain.UserCharacter, error)

	// BulkMark applies MarkCharacter to every distinct character in one transaction.
	BulkMark(ctx context.Context, userID uuid.UUID, characters []string, familiarity int) ([]*domain.UserCharacter, error)

	// Lookup returns the learner's rows for each distinct code point of chars,
	// keyed by character. Characters absent from the notebook are omitted.
	Lookup(ctx context.Context, userID uuid.UUID, chars string) (map[string]*domain.UserCharacter, error)
}

// ReviewResult is the outcome of a committed review.
type ReviewResult struct {
	Character    *domain.UserCharacter
	IntervalDays float64
}

// DueCharacter is a queue entry with the interval each grade would produce.
type DueCharacter struct {
	Character *domain.UserCharacter
	Previews  *srs.IntervalPreview
}

// ListQuery is an unvalidated listing request. A nil Familiarity disables filtering.
type ListQuery struct {
	Page        int
	PerPage     int
	Familiarity *int
	Sort        string
}

// Page is one page of a notebook listing.
type Page struct {
	Characters []*domain.UserCharacter
	Total      int
	Page       int
	PerPage    int
}

// TotalPages returns the number of pages needed to list Total rows.
func (p *Page) TotalPages() int {
	if p.PerPage <= 0 {
		return 0
	}
	return (p.Total + p.PerPage - 1) / p.PerPage
}

// Common error types for ReviewService
var (
	// ErrUserCharacterNotFound indicates that the character is not in the learner's notebook.
	ErrUserCharacterNotFound = errors.New("character not found in notebook")

	// ErrInvalidQuery indicates a malformed limit, page, sort or filter.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrNoCharacters indicates an empty character batch.
	ErrNoCharacters = errors.New("no characters provided")

	// ErrTooManyCharacters indicates a batch above MaxBatchCharacters.
	ErrTooManyCharacters = fmt.Errorf("too many characters (max %d)", MaxBatchCharacters)
)

// ServiceError wraps errors from the review service with the failing operation.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "submit_review", "bulk_mark")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError returns a ServiceError for the given operation.
func NewServiceError(operation, message string, err error) *ServiceError {
	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
