package api

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/hanzi-srs/internal/api/shared"
	"github.com/phrazzld/hanzi-srs/internal/domain"
	"github.com/phrazzld/hanzi-srs/internal/platform/logger"
	"github.com/phrazzld/hanzi-srs/internal/service/review"
)

// NotebookHandler serves the review queue, grading and notebook listing endpoints.
type NotebookHandler struct {
	reviewService review.ReviewService
	logger        *slog.Logger
}

// NewNotebookHandler creates a new NotebookHandler. A nil logger falls back to slog.Default().
func NewNotebookHandler(reviewService review.ReviewService, logger *slog.Logger) *NotebookHandler {
	if reviewService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("reviewService cannot be nil for NotebookHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &NotebookHandler{
		reviewService: reviewService,
		logger:        logger.With(slog.String("component", "notebook_handler")),
	}
}

// SubmitReview handles POST /api/notebook/review.
func (h *NotebookHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := handleUserIDFromContext(w, r, log)
	if !ok {
		return
	}

	var req ReviewRequest
	if !parseAndValidateRequest(w, r, &req) {
		return
	}
	userCharacterID, err := uuid.Parse(req.UserCharacterID)
	if err != nil {
		HandleAPIError(w, r, domain.NewValidationError("user_character_id", "has invalid format", domain.ErrInvalidID), "")
		return
	}

	result, err := h.reviewService.SubmitReview(r.Context(), userID, userCharacterID, req.Grade)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to record review")
		return
	}

	log.Debug("review submitted",
		slog.String("user_id", userID.String()),
		slog.String("user_character_id", userCharacterID.String()),
		slog.Int("grade", req.Grade))

	shared.RespondWithJSON(w, r, http.StatusOK, ReviewResponse{
		Success:      true,
		NextReview:   result.Character.NextReview,
		IntervalDays: result.IntervalDays,
		Familiarity:  result.Character.Familiarity,
		State:        result.Character.State,
	})
}

// GetDue handles GET /api/notebook/due?limit=N.
func (h *NotebookHandler) GetDue(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := handleUserIDFromContext(w, r, log)
	if !ok {
		return
	}

	limit, err := queryInt(r, "limit", review.DefaultDueLimit)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if limit <= 0 {
		shared.RespondWithError(w, r, http.StatusBadRequest, "limit must be positive")
		return
	}

	due, err := h.reviewService.GetDue(r.Context(), userID, limit)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load review queue")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, dueToResponse(due))
}

// PreviewIntervals handles GET /api/notebook/characters/{id}/preview.
func (h *NotebookHandler) PreviewIntervals(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, userCharacterID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	preview, err := h.reviewService.PreviewIntervals(r.Context(), userID, userCharacterID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to compute interval previews")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, PreviewResponse{
		UserCharacterID: userCharacterID,
		Previews:        preview,
	})
}

// Stats handles GET /api/notebook/stats.
func (h *NotebookHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID, ok := handleUserIDFromContext(w, r, logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}

	stats, err := h.reviewService.Stats(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load notebook statistics")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, stats)
}

// ListCharacters handles GET /api/notebook/characters?page&per_page&familiarity&sort.
func (h *NotebookHandler) ListCharacters(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := handleUserIDFromContext(w, r, log)
	if !ok {
		return
	}

	query := review.ListQuery{Sort: r.URL.Query().Get("sort")}

	var err error
	if query.Page, err = queryInt(r, "page", 1); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if query.PerPage, err = queryInt(r, "per_page", review.DefaultPerPage); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	familiarity, set, err := queryOptionalInt(r, "familiarity")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if set {
		query.Familiarity = &familiarity
	}

	page, err := h.reviewService.List(r.Context(), userID, query)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list characters")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, pageToResponse(page))
}

// UpdateFamiliarity handles PATCH /api/notebook/characters.
func (h *NotebookHandler) UpdateFamiliarity(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := handleUserIDFromContext(w, r, log)
	if !ok {
		return
	}

	var req UpdateFamiliarityRequest
	if !parseAndValidateRequest(w, r, &req) {
		return
	}

	uc, err := h.reviewService.SetFamiliarity(r.Context(), userID, req.CharacterID, req.Familiarity)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update familiarity")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, UpdateFamiliarityResponse{
		Success:     true,
		Familiarity: uc.Familiarity,
	})
}
