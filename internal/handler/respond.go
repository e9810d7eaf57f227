package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/questline/questline/internal/model"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func respondMessage(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"message": message})
}

// userResponse is the public shape of a user; the password hash never
// leaves the service layer.
type userResponse struct {
	ID       string     `json:"id"`
	Username string     `json:"username"`
	Points   int        `json:"points"`
	Streak   int        `json:"streak"`
	GroupID  *string    `json:"group_id,omitempty"`
	Rank     model.Rank `json:"rank"`
}

func toUserResponse(user *model.User) userResponse {
	return userResponse{
		ID:       user.ID,
		Username: user.Username,
		Points:   user.Points,
		Streak:   user.Streak,
		GroupID:  user.GroupID,
		Rank:     model.RankFor(user.Points),
	}
}
