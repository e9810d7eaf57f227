package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/questline/questline/internal/ctxkeys"
	"github.com/questline/questline/internal/model"
	"github.com/questline/questline/internal/repository"
	"github.com/questline/questline/internal/service"
)

type GroupHandler struct {
	groupService *service.GroupService
}

func NewGroupHandler(groupService *service.GroupService) *GroupHandler {
	return &GroupHandler{groupService: groupService}
}

type groupResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func toGroupResponse(group *model.Group) groupResponse {
	return groupResponse{ID: group.ID, Name: group.Name, CreatedAt: group.CreatedAt}
}

type groupTargetResponse struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	CompletedBy []string `json:"completed_by"`
}

// List returns every group, for browsing before joining.
func (h *GroupHandler) List(w http.ResponseWriter, r *http.Request) {
	groups, err := h.groupService.Groups()
	if err != nil {
		slog.Error("failed to list groups", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to list groups")
		return
	}

	resp := make([]groupResponse, 0, len(groups))
	for _, group := range groups {
		resp = append(resp, toGroupResponse(group))
	}
	respondJSON(w, http.StatusOK, map[string]any{"groups": resp})
}

type createGroupRequest struct {
	Name string `json:"name"`
}

// Create makes a new group. The creator becomes its first member.
func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req createGroupRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	group, err := h.groupService.Create(user, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrGroupNameRequired):
			respondError(w, http.StatusBadRequest, "Please enter a group name.")
		case errors.Is(err, service.ErrGroupNameTaken):
			respondError(w, http.StatusBadRequest, "A group with this name already exists.")
		default:
			slog.Error("failed to create group", "error", err, "user_id", user.ID)
			respondError(w, http.StatusInternalServerError, "failed to create group")
		}
		return
	}

	slog.Info("group created", "group_id", group.ID, "user_id", user.ID)
	respondJSON(w, http.StatusCreated, toGroupResponse(group))
}

// Join puts the user into a group. Members of another group must leave first.
func (h *GroupHandler) Join(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	groupID := r.PathValue("id")

	group, err := h.groupService.Join(user, groupID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAlreadyInGroup):
			respondError(w, http.StatusBadRequest, "You are already in a group. Leave it first to join another.")
		case errors.Is(err, repository.ErrGroupNotFound):
			respondError(w, http.StatusNotFound, "group not found")
		default:
			slog.Error("failed to join group", "error", err, "group_id", groupID)
			respondError(w, http.StatusInternalServerError, "failed to join group")
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"message": "Joined " + group.Name + "!",
		"group":   toGroupResponse(group),
	})
}

// Leave removes the user from their group. A no-op when ungrouped.
func (h *GroupHandler) Leave(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	err := h.groupService.Leave(user)
	if err != nil {
		slog.Error("failed to leave group", "error", err, "user_id", user.ID)
		respondError(w, http.StatusInternalServerError, "failed to leave group")
		return
	}

	respondMessage(w, http.StatusOK, "You have left the group.")
}

// Show returns the group page: members ranked by points and shared targets
// with their completion sets. Members only.
func (h *GroupHandler) Show(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	groupID := r.PathValue("id")

	detail, err := h.groupService.Detail(user, groupID)
	if err != nil {
		h.respondGroupError(w, err, groupID)
		return
	}

	members := make([]userResponse, 0, len(detail.Members))
	for _, member := range detail.Members {
		members = append(members, toUserResponse(member))
	}

	targets := make([]groupTargetResponse, 0, len(detail.Targets))
	for _, target := range detail.Targets {
		completedBy := target.CompletedBy
		if completedBy == nil {
			completedBy = []string{}
		}
		targets = append(targets, groupTargetResponse{
			ID:          target.Target.ID,
			Title:       target.Target.Title,
			CompletedBy: completedBy,
		})
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"group":   toGroupResponse(detail.Group),
		"members": members,
		"targets": targets,
	})
}

type addTargetRequest struct {
	Title string `json:"title"`
}

// AddTarget creates a shared target in the user's group.
func (h *GroupHandler) AddTarget(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	groupID := r.PathValue("id")

	var req addTargetRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	target, err := h.groupService.AddTarget(user, groupID, req.Title)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTargetTitleRequired):
			respondError(w, http.StatusBadRequest, "Please enter a target title.")
		default:
			h.respondGroupError(w, err, groupID)
		}
		return
	}

	respondJSON(w, http.StatusCreated, groupTargetResponse{
		ID:          target.ID,
		Title:       target.Title,
		CompletedBy: []string{},
	})
}

// CompleteTarget records the user's completion of a shared target. The group
// bonus pays out once per user per target; repeats are acknowledged without
// points.
func (h *GroupHandler) CompleteTarget(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	groupTargetID := r.PathValue("id")

	awarded, err := h.groupService.CompleteTarget(user, groupTargetID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrGroupTargetNotFound):
			respondError(w, http.StatusNotFound, "group target not found")
		case errors.Is(err, service.ErrNotGroupMember):
			respondError(w, http.StatusForbidden, "not a member of this group")
		default:
			slog.Error("failed to complete group target", "error", err, "group_target_id", groupTargetID)
			respondError(w, http.StatusInternalServerError, "failed to complete group target")
		}
		return
	}

	if !awarded {
		respondMessage(w, http.StatusOK, "You have already completed this target.")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"message":        "Group target complete!",
		"points_awarded": service.GroupTargetBonus,
	})
}

// Leaderboard returns all users ordered by points descending.
func (h *GroupHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	users, err := h.groupService.Leaderboard()
	if err != nil {
		slog.Error("failed to load leaderboard", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load leaderboard")
		return
	}

	entries := make([]userResponse, 0, len(users))
	for _, user := range users {
		entries = append(entries, toUserResponse(user))
	}
	respondJSON(w, http.StatusOK, map[string]any{"leaderboard": entries})
}

func (h *GroupHandler) respondGroupError(w http.ResponseWriter, err error, groupID string) {
	switch {
	case errors.Is(err, repository.ErrGroupNotFound):
		respondError(w, http.StatusNotFound, "group not found")
	case errors.Is(err, service.ErrNotGroupMember):
		respondError(w, http.StatusForbidden, "not a member of this group")
	default:
		slog.Error("group request failed", "error", err, "group_id", groupID)
		respondError(w, http.StatusInternalServerError, "request failed")
	}
}
