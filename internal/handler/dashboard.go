package handler

import (
	"log/slog"
	"net/http"

	"github.com/questline/questline/internal/ctxkeys"
	"github.com/questline/questline/internal/model"
	"github.com/questline/questline/internal/service"
)

type DashboardHandler struct {
	journeyService *service.JourneyService
}

func NewDashboardHandler(journeyService *service.JourneyService) *DashboardHandler {
	return &DashboardHandler{journeyService: journeyService}
}

// Show returns the signed-in user's home view: profile with rank, rank
// progression, and the active journey when one exists.
func (h *DashboardHandler) Show(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	detail, err := h.journeyService.ActiveJourney(user.ID)
	if err != nil {
		slog.Error("failed to load active journey", "error", err, "user_id", user.ID)
		respondError(w, http.StatusInternalServerError, "failed to load dashboard")
		return
	}

	resp := map[string]any{
		"user":      toUserResponse(user),
		"next_rank": model.NextRank(user.Points),
	}
	if detail != nil {
		resp["journey"] = toJourneyDetailResponse(detail)
	} else {
		resp["journey"] = nil
	}

	respondJSON(w, http.StatusOK, resp)
}
