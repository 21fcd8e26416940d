package middleware

import (
	"bigbrain/internal/service"
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
)

type contextKey string

const AdminEmailKey contextKey = "adminEmail"

// AuthMiddleware provides JWT authentication middleware
type AuthMiddleware struct {
	authSvc *service.AuthService
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(authSvc *service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{authSvc: authSvc}
}

// RequireAdmin validates the admin JWT from the Authorization header
func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		email, err := m.authSvc.Authenticate(r.Context(), r.Header.Get("Authorization"))
		if err != nil {
			status := http.StatusForbidden
			if !service.IsAccessError(err) {
				status = http.StatusInternalServerError
				zerolog.Ctx(r.Context()).Error().Err(err).Msg("authentication failed")
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
			return
		}

		ctx := context.WithValue(r.Context(), AdminEmailKey, email)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetAdminEmail extracts the authenticated admin from context
func GetAdminEmail(ctx context.Context) string {
	if v := ctx.Value(AdminEmailKey); v != nil {
		return v.(string)
	}
	return ""
}
