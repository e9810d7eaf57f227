package handler

import (
	"encoding/json"
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

type JourneyHandler struct {
	journeyService *service.JourneyService
}

func NewJourneyHandler(journeyService *service.JourneyService) *JourneyHandler {
	return &JourneyHandler{journeyService: journeyService}
}

type journeyResponse struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	OriginalGoal string    `json:"original_goal"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}

type taskResponse struct {
	ID        string  `json:"id"`
	Task      string  `json:"task"`
	Completed bool    `json:"completed"`
	TargetID  *string `json:"target_id,omitempty"`
}

type milestoneResponse struct {
	ID    string         `json:"id"`
	Week  int            `json:"week"`
	Goal  string         `json:"goal"`
	Tasks []taskResponse `json:"tasks"`
}

type journeyDetailResponse struct {
	journeyResponse
	Milestones []milestoneResponse `json:"milestones"`
}

func toJourneyResponse(journey *model.Journey) journeyResponse {
	return journeyResponse{
		ID:           journey.ID,
		Title:        journey.Title,
		OriginalGoal: journey.OriginalGoal,
		Active:       journey.Active,
		CreatedAt:    journey.CreatedAt,
	}
}

func toJourneyDetailResponse(detail *service.JourneyDetail) journeyDetailResponse {
	resp := journeyDetailResponse{
		journeyResponse: toJourneyResponse(detail.Journey),
		Milestones:      []milestoneResponse{},
	}
	for _, ms := range detail.Milestones {
		milestone := milestoneResponse{
			ID:    ms.Milestone.ID,
			Week:  ms.Milestone.Week,
			Goal:  ms.Milestone.Goal,
			Tasks: []taskResponse{},
		}
		for _, task := range ms.Tasks {
			milestone.Tasks = append(milestone.Tasks, taskResponse{
				ID:        task.ID,
				Task:      task.Task,
				Completed: task.Completed,
				TargetID:  task.TargetID,
			})
		}
		resp.Milestones = append(resp.Milestones, milestone)
	}
	return resp
}

type createJourneyRequest struct {
	Goal string `json:"goal"`
}

// Create generates a journey plan from the user's goal. Generation blocks on
// the AI call, bounded by the configured timeout.
func (h *JourneyHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req createJourneyRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	journey, err := h.journeyService.Generate(r.Context(), user.ID, req.Goal)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrGoalRequired):
			respondError(w, http.StatusBadRequest, "Please enter a goal.")
		case errors.Is(err, service.ErrMalformedPlan):
			slog.Error("journey plan unusable", "error", err, "user_id", user.ID)
			respondError(w, http.StatusBadGateway, "Sorry, the AI could not generate a plan for that goal. Please try rephrasing it.")
		default:
			var statusErr *ai.StatusError
			if errors.As(err, &statusErr) {
				slog.Error("journey generation failed upstream", "error", err, "user_id", user.ID)
				respondError(w, http.StatusBadGateway, "Sorry, the AI could not generate a plan for that goal. Please try rephrasing it.")
				return
			}
			slog.Error("journey creation failed", "error", err, "user_id", user.ID)
			respondError(w, http.StatusInternalServerError, "failed to create journey")
		}
		return
	}

	detail, err := h.journeyService.ByID(user.ID, journey.ID)
	if err != nil {
		slog.Error("failed to load created journey", "error", err, "journey_id", journey.ID)
		respondError(w, http.StatusInternalServerError, "failed to load journey")
		return
	}

	slog.Info("journey created", "journey_id", journey.ID, "user_id", user.ID)
	respondJSON(w, http.StatusCreated, toJourneyDetailResponse(detail))
}

// List returns all of the user's journeys, newest first.
func (h *JourneyHandler) List(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	journeys, err := h.journeyService.Journeys(user.ID)
	if err != nil {
		slog.Error("failed to list journeys", "error", err, "user_id", user.ID)
		respondError(w, http.StatusInternalServerError, "failed to list journeys")
		return
	}

	resp := make([]journeyResponse, 0, len(journeys))
	for _, journey := range journeys {
		resp = append(resp, toJourneyResponse(journey))
	}
	respondJSON(w, http.StatusOK, map[string]any{"journeys": resp})
}

// Show returns one journey with its milestones and tasks. Foreign journeys
// read as not found.
func (h *JourneyHandler) Show(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	journeyID := r.PathValue("id")

	detail, err := h.journeyService.ByID(user.ID, journeyID)
	if err != nil {
		if errors.Is(err, repository.ErrJourneyNotFound) {
			respondError(w, http.StatusNotFound, "journey not found")
			return
		}
		slog.Error("failed to load journey", "error", err, "journey_id", journeyID)
		respondError(w, http.StatusInternalServerError, "failed to load journey")
		return
	}

	respondJSON(w, http.StatusOK, toJourneyDetailResponse(detail))
}

// CompleteTask marks a plain daily task done and pays the task bonus.
func (h *JourneyHandler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	taskID := r.PathValue("id")

	err := h.journeyService.CompleteTask(user.ID, taskID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrTaskNotFound):
			respondError(w, http.StatusNotFound, "task not found")
		case errors.Is(err, service.ErrNotTaskOwner):
			respondError(w, http.StatusForbidden, "task belongs to another user")
		case errors.Is(err, service.ErrTaskNeedsVerification):
			respondError(w, http.StatusBadRequest, "This task is completed through photo verification.")
		case errors.Is(err, service.ErrTaskAlreadyCompleted):
			respondMessage(w, http.StatusOK, "Task already completed.")
		default:
			slog.Error("failed to complete task", "error", err, "task_id", taskID)
			respondError(w, http.StatusInternalServerError, "failed to complete task")
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"message":        "Task complete!",
		"points_awarded": service.TaskBonus,
	})
}
