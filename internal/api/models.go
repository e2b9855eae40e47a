package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/hanzi-srs/internal/domain"
	"github.com/phrazzld/hanzi-srs/internal/domain/srs"
	"github.com/phrazzld/hanzi-srs/internal/service/review"
)

// Request payloads

// ReviewRequest defines the payload for POST /api/notebook/review.
type ReviewRequest struct {
	UserCharacterID string `json:"user_character_id" validate:"required,uuid"`
	Grade           int    `json:"grade"             validate:"required,min=1,max=4"`
}

// UpdateFamiliarityRequest defines the payload for PATCH /api/notebook/characters.
type UpdateFamiliarityRequest struct {
	CharacterID string `json:"character_id" validate:"required"`
	Familiarity int    `json:"familiarity"  validate:"required,min=1,max=5"`
}

// MarkCharacterRequest defines the payload for POST /api/user-character.
type MarkCharacterRequest struct {
	Character   string `json:"character"   validate:"required"`
	Familiarity int    `json:"familiarity" validate:"required,min=1,max=5"`
}

// BulkMarkRequest defines the payload for POST /api/user-characters/bulk.
// Batch size is enforced by the service so the limit is reported precisely.
type BulkMarkRequest struct {
	Characters  []string `json:"characters"`
	Familiarity int      `json:"familiarity" validate:"required,min=1,max=5"`
}

// Response payloads

// UserCharacterResponse is the client view of a notebook row.
type UserCharacterResponse struct {
	ID          uuid.UUID        `json:"id"`
	CharacterID string           `json:"character_id"`
	Stability   float64          `json:"stability"`
	Difficulty  float64          `json:"difficulty"`
	State       domain.CardState `json:"state"`
	Reps        int              `json:"reps"`
	Lapses      int              `json:"lapses"`
	LastReview  *time.Time       `json:"last_review"`
	NextReview  *time.Time       `json:"next_review"`
	Familiarity int              `json:"familiarity"`
	FirstSeen   time.Time        `json:"first_seen"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// ReviewResponse is returned after a review is committed.
type ReviewResponse struct {
	Success      bool             `json:"success"`
	NextReview   *time.Time       `json:"next_review"`
	IntervalDays float64          `json:"interval_days"`
	Familiarity  int              `json:"familiarity"`
	State        domain.CardState `json:"state"`
}

// DueCharacterResponse is a queue entry with its grade-button labels.
type DueCharacterResponse struct {
	UserCharacterResponse
	Previews *srs.IntervalPreview `json:"previews"`
}

// DueResponse wraps the review queue.
type DueResponse struct {
	Characters []DueCharacterResponse `json:"characters"`
	Count      int                    `json:"count"`
}

// PreviewResponse carries the interval previews for one character.
type PreviewResponse struct {
	UserCharacterID uuid.UUID            `json:"user_character_id"`
	Previews        *srs.IntervalPreview `json:"previews"`
}

// ListResponse is one page of the notebook.
type ListResponse struct {
	Characters []UserCharacterResponse `json:"characters"`
	Total      int                     `json:"total"`
	Page       int                     `json:"page"`
	PerPage    int                     `json:"per_page"`
	TotalPages int                     `json:"total_pages"`
}

// UpdateFamiliarityResponse confirms a familiarity change.
type UpdateFamiliarityResponse struct {
	Success     bool `json:"success"`
	Familiarity int  `json:"familiarity"`
}

// MarkCharacterResponse confirms a single mark.
type MarkCharacterResponse struct {
	Success     bool             `json:"success"`
	Character   string           `json:"character"`
	Familiarity int              `json:"familiarity"`
	State       domain.CardState `json:"state"`
}

// FamiliarityEntry is the per-character payload of a bulk mark.
type FamiliarityEntry struct {
	Familiarity int `json:"familiarity"`
}

// BulkMarkResponse confirms a bulk mark.
type BulkMarkResponse struct {
	Success    bool                        `json:"success"`
	Updated    int                         `json:"updated"`
	Characters map[string]FamiliarityEntry `json:"characters"`
}

// LookupEntry is the per-character payload of a batch lookup.
type LookupEntry struct {
	Familiarity int              `json:"familiarity"`
	State       domain.CardState `json:"state"`
}

// LookupResponse maps characters to the learner's familiarity. Anonymous
// callers get an empty map.
type LookupResponse struct {
	Characters      map[string]LookupEntry `json:"characters"`
	IsAuthenticated bool                   `json:"is_authenticated"`
}

func userCharacterToResponse(uc *domain.UserCharacter) UserCharacterResponse {
	return UserCharacterResponse{
		ID:          uc.ID,
		CharacterID: uc.CharacterID,
		Stability:   uc.Stability,
		Difficulty:  uc.Difficulty,
		State:       uc.State,
		Reps:        uc.Reps,
		Lapses:      uc.Lapses,
		LastReview:  uc.LastReview,
		NextReview:  uc.NextReview,
		Familiarity: uc.Familiarity,
		FirstSeen:   uc.FirstSeen,
		UpdatedAt:   uc.UpdatedAt,
	}
}

func dueToResponse(due []*review.DueCharacter) DueResponse {
	resp := DueResponse{
		Characters: make([]DueCharacterResponse, 0, len(due)),
		Count:      len(due),
	}
	for _, d := range due {
		resp.Characters = append(resp.Characters, DueCharacterResponse{
			UserCharacterResponse: userCharacterToResponse(d.Character),
			Previews:              d.Previews,
		})
	}
	return resp
}

func pageToResponse(page *review.Page) ListResponse {
	resp := ListResponse{
		Characters: make([]UserCharacterResponse, 0, len(page.Characters)),
		Total:      page.Total,
		Page:       page.Page,
		PerPage:    page.PerPage,
		TotalPages: page.TotalPages(),
	}
	for _, uc := range page.Characters {
		resp.Characters = append(resp.Characters, userCharacterToResponse(uc))
	}
	return resp
}
