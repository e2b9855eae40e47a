package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/hanzi-srs/internal/api/shared"
	"github.com/phrazzld/hanzi-srs/internal/platform/logger"
	"github.com/phrazzld/hanzi-srs/internal/service/review"
)

// UserCharacterHandler serves manual familiarity marks and batch lookups.
type UserCharacterHandler struct {
	reviewService review.ReviewService
	logger        *slog.Logger
}

// NewUserCharacterHandler creates a new UserCharacterHandler.
func NewUserCharacterHandler(reviewService review.ReviewService, logger *slog.Logger) *UserCharacterHandler {
	if reviewService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("reviewService cannot be nil for UserCharacterHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &UserCharacterHandler{
		reviewService: reviewService,
		logger:        logger.With(slog.String("component", "user_character_handler")),
	}
}

// MarkCharacter handles POST /api/user-character.
func (h *UserCharacterHandler) MarkCharacter(w http.ResponseWriter, r *http.Request) {
	userID, ok := handleUserIDFromContext(w, r, logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}

	var req MarkCharacterRequest
	if !parseAndValidateRequest(w, r, &req) {
		return
	}

	uc, err := h.reviewService.MarkCharacter(r.Context(), userID, req.Character, req.Familiarity)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to mark character")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, MarkCharacterResponse{
		Success:     true,
		Character:   uc.CharacterID,
		Familiarity: uc.Familiarity,
		State:       uc.State,
	})
}

// BulkMark handles POST /api/user-characters/bulk.
func (h *UserCharacterHandler) BulkMark(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := handleUserIDFromContext(w, r, log)
	if !ok {
		return
	}

	var req BulkMarkRequest
	if !parseAndValidateRequest(w, r, &req) {
		return
	}

	marked, err := h.reviewService.BulkMark(r.Context(), userID, req.Characters, req.Familiarity)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to mark characters")
		return
	}

	resp := BulkMarkResponse{
		Success:    true,
		Updated:    len(marked),
		Characters: make(map[string]FamiliarityEntry, len(marked)),
	}
	for _, uc := range marked {
		resp.Characters[uc.CharacterID] = FamiliarityEntry{Familiarity: uc.Familiarity}
	}

	log.Debug("bulk mark applied",
		slog.String("user_id", userID.String()),
		slog.Int("updated", resp.Updated),
		slog.Int("familiarity", req.Familiarity))

	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// Lookup handles GET /api/user-characters?chars=... Anonymous callers receive
// an empty result instead of a 401.
func (h *UserCharacterHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithJSON(w, r, http.StatusOK, LookupResponse{
			Characters:      map[string]LookupEntry{},
			IsAuthenticated: false,
		})
		return
	}

	chars := r.URL.Query().Get("chars")
	if chars == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Missing chars parameter")
		return
	}

	found, err := h.reviewService.Lookup(r.Context(), userID, chars)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to look up characters")
		return
	}

	resp := LookupResponse{
		Characters:      make(map[string]LookupEntry, len(found)),
		IsAuthenticated: true,
	}
	for char, uc := range found {
		resp.Characters[char] = LookupEntry{Familiarity: uc.Familiarity, State: uc.State}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}
