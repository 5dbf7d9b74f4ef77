package auth

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// Middleware provides HTTP authentication and role gating.
type Middleware struct {
	verifier *Verifier
	logger   *zap.Logger
}

// NewMiddleware creates auth middleware around the given verifier.
func NewMiddleware(verifier *Verifier, logger *zap.Logger) *Middleware {
	return &Middleware{verifier: verifier, logger: logger}
}

// RequireRole validates the bearer token and requires the caller to hold
// one of the given roles. An empty role list only requires authentication.
// Verified claims are stored in the request context for handlers.
func (m *Middleware) RequireRole(roles ...string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			claims, err := m.verifier.ValidateRequest(r)
			if err != nil {
				m.logger.Debug("authentication failed", zap.Error(err))
				m.unauthorized(w, "Authentication required")
				return
			}

			if len(roles) > 0 && !claims.HasRole(roles...) {
				m.forbidden(w, "Insufficient role")
				return
			}

			ctx := context.WithValue(r.Context(), ClaimsKey, claims)
			next(w, r.WithContext(ctx))
		}
	}
}

func (m *Middleware) unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   "unauthorized",
		"message": message,
	})
}

func (m *Middleware) forbidden(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   "forbidden",
		"message": message,
	})
}
