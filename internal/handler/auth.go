package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/questline/questline/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.authService.Register(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUsernameTaken) {
			respondError(w, http.StatusBadRequest, "Username already exists.")
			return
		}
		// Remaining registration failures are input validation
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	slog.Info("user registered", "user_id", user.ID)
	respondJSON(w, http.StatusCreated, map[string]any{
		"message": "Registration successful! Please log in.",
		"user":    toUserResponse(user),
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, bonus, err := h.authService.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			// Uniform message for unknown user and wrong password
			respondError(w, http.StatusUnauthorized, "Invalid username or password.")
			return
		}
		slog.Error("login failed", "error", err)
		respondError(w, http.StatusInternalServerError, "login failed")
		return
	}

	token, err := h.authService.GenerateJWT(user)
	if err != nil {
		slog.Error("failed to generate session token", "error", err, "user_id", user.ID)
		respondError(w, http.StatusInternalServerError, "login failed")
		return
	}
	h.authService.SetJWTCookie(w, token, time.Now().Add(h.authService.JWTExpiry()))

	message := "Welcome back!"
	if bonus {
		message = fmt.Sprintf("Welcome back! +%d daily login points!", service.LoginBonus)
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"message": message,
		"user":    toUserResponse(user),
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.authService.ClearJWTCookie(w)
	respondMessage(w, http.StatusOK, "Logged out.")
}
