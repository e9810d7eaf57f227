package middleware

import (
	"net/http"

	"github.com/questline/questline/internal/config"
	"github.com/questline/questline/internal/ctxkeys"
)

// Config middleware adds the sanitized app configuration to the request
// context. Sensitive values like JWTSecret and the API key are excluded.
func Config(cfg *config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := ctxkeys.WithConfig(r.Context(), cfg.Sanitized())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
