package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/questline/questline/internal/ai"
	"github.com/questline/questline/internal/ctxkeys"
	"github.com/questline/questline/internal/model"
	"github.com/questline/questline/internal/repository"
	"github.com/questline/questline/internal/service"
)

const maxUploadBytes = 10 << 20

type TargetHandler struct {
	verificationService *service.VerificationService
}

func NewTargetHandler(verificationService *service.VerificationService) *TargetHandler {
	return &TargetHandler{verificationService: verificationService}
}

type targetResponse struct {
	ID                   string    `json:"id"`
	Title                string    `json:"title"`
	Completed            bool      `json:"completed"`
	VerificationRequired bool      `json:"verification_required"`
	VerificationStatus   string    `json:"verification_status"`
	CreatedAt            time.Time `json:"created_at"`
}

func toTargetResponse(target *model.Target) targetResponse {
	return targetResponse{
		ID:                   target.ID,
		Title:                target.Title,
		Completed:            target.Completed,
		VerificationRequired: target.VerificationRequired,
		VerificationStatus:   target.VerificationStatus,
		CreatedAt:            target.CreatedAt,
	}
}

type evidenceResponse struct {
	ID         string    `json:"id"`
	URL        string    `json:"url"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Show returns a target with its uploaded evidence photos.
func (h *TargetHandler) Show(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	targetID := r.PathValue("id")

	target, err := h.verificationService.Target(user.ID, targetID)
	if err != nil {
		h.respondTargetError(w, err, targetID)
		return
	}

	evidence, err := h.verificationService.Evidence(target.ID)
	if err != nil {
		slog.Error("failed to list evidence", "error", err, "target_id", targetID)
		respondError(w, http.StatusInternalServerError, "failed to load target")
		return
	}

	files := make([]evidenceResponse, 0, len(evidence))
	for _, ev := range evidence {
		files = append(files, evidenceResponse{
			ID:         ev.File.ID,
			URL:        ev.URL,
			UploadedAt: ev.File.CreatedAt,
		})
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"target":   toTargetResponse(target),
		"evidence": files,
	})
}

// Verify accepts a photo upload as multipart form data under the "file" field
// and runs AI verification against the target's task.
func (h *TargetHandler) Verify(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	targetID := r.PathValue("id")

	err := r.ParseMultipartForm(maxUploadBytes)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "No file provided.")
		return
	}
	defer file.Close()

	result, err := h.verificationService.Verify(r.Context(), user.ID, targetID, file, header)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidUpload):
			respondError(w, http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, service.ErrVerificationNotRequired):
			respondError(w, http.StatusBadRequest, "This target does not require verification.")
		default:
			var statusErr *ai.StatusError
			if errors.As(err, &statusErr) {
				slog.Error("verification failed upstream", "error", err, "target_id", targetID)
				respondError(w, http.StatusBadGateway, "Verification is unavailable right now. Please try again.")
				return
			}
			h.respondTargetError(w, err, targetID)
		}
		return
	}

	if !result.Verified {
		respondJSON(w, http.StatusOK, map[string]any{
			"verified": false,
			"message":  "Verification failed. The photo does not show the completed task.",
			"target":   toTargetResponse(result.Target),
		})
		return
	}

	slog.Info("target verified", "target_id", targetID, "user_id", user.ID)
	respondJSON(w, http.StatusOK, map[string]any{
		"verified":       true,
		"message":        "Verification successful!",
		"points_awarded": service.VerificationBonus,
		"target":         toTargetResponse(result.Target),
	})
}

func (h *TargetHandler) respondTargetError(w http.ResponseWriter, err error, targetID string) {
	switch {
	case errors.Is(err, repository.ErrTargetNotFound):
		respondError(w, http.StatusNotFound, "target not found")
	case errors.Is(err, service.ErrNotTargetOwner):
		respondError(w, http.StatusForbidden, "target belongs to another user")
	default:
		slog.Error("target request failed", "error", err, "target_id", targetID)
		respondError(w, http.StatusInternalServerError, "request failed")
	}
}
