package routes

import (
	"net/http"

	"github.com/questline/questline/internal/app"
	"github.com/questline/questline/internal/handler"
	"github.com/questline/questline/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	auth := handler.NewAuthHandler(app.AuthService)
	dashboard := handler.NewDashboardHandler(app.JourneyService)
	journey := handler.NewJourneyHandler(app.JourneyService)
	target := handler.NewTargetHandler(app.VerificationService)
	group := handler.NewGroupHandler(app.GroupService)

	mux := http.NewServeMux()

	// ============================================================================
	// PUBLIC ROUTES
	// ============================================================================

	// Evidence photos (local storage only; S3 serves through presigned URLs)
	if app.Cfg.StorageDriver == "local" {
		mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(app.Cfg.UploadDir))))
	}

	// Auth (rate limited)
	rateLimiter := middleware.RateLimitAuth()

	mux.HandleFunc("POST /auth/register", rateLimiter(auth.Register))
	mux.HandleFunc("POST /auth/login", rateLimiter(auth.Login))
	mux.HandleFunc("POST /auth/logout", auth.Logout)

	// ============================================================================
	// PROTECTED ROUTES (/app/*)
	// ============================================================================

	// Dashboard
	mux.HandleFunc("GET /app/dashboard", middleware.RequireAuth(dashboard.Show))

	// Journeys
	mux.HandleFunc("GET /app/journeys", middleware.RequireAuth(journey.List))
	mux.HandleFunc("GET /app/journeys/{id}", middleware.RequireAuth(journey.Show))
	mux.HandleFunc("POST /app/journeys", middleware.RequireAuth(journey.Create))
	mux.HandleFunc("POST /app/tasks/{id}/complete", middleware.RequireAuth(journey.CompleteTask))

	// Targets and photo verification
	mux.HandleFunc("GET /app/targets/{id}", middleware.RequireAuth(target.Show))
	mux.HandleFunc("POST /app/targets/{id}/verification", middleware.RequireAuth(target.Verify))

	// Groups
	mux.HandleFunc("GET /app/groups", middleware.RequireAuth(group.List))
	mux.HandleFunc("POST /app/groups", middleware.RequireAuth(group.Create))
	mux.HandleFunc("GET /app/groups/{id}", middleware.RequireAuth(group.Show))
	mux.HandleFunc("POST /app/groups/{id}/join", middleware.RequireAuth(group.Join))
	mux.HandleFunc("POST /app/groups/leave", middleware.RequireAuth(group.Leave))
	mux.HandleFunc("POST /app/groups/{id}/targets", middleware.RequireAuth(group.AddTarget))
	mux.HandleFunc("POST /app/group-targets/{id}/complete", middleware.RequireAuth(group.CompleteTarget))

	// Leaderboard
	mux.HandleFunc("GET /app/leaderboard", middleware.RequireAuth(group.Leaderboard))

	// ============================================================================
	// FALLBACK
	// ============================================================================

	mux.HandleFunc("/{path...}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"not found"}`))
	})

	// Global middleware - executed in order (top to bottom)
	handler := middleware.Chain(
		mux,
		middleware.Config(app.Cfg), // Config must be first (CSRF and logging read it)
		middleware.RequestLogging,
		middleware.CSRFProtection, // CSRF protection for all state-changing requests
		middleware.AuthMiddleware(app.AuthService),
	)

	return handler
}
