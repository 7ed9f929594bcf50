package middleware

import (
	"net/http"

	"go.uber.org/zap"
)

// RequireRole ensures the authenticated user carries the given role
// claim. This is a pure claim check over the decoded token; roles are
// not looked up again.
func RequireRole(role string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userRole, ok := GetUserRole(r.Context())
			if !ok {
				logger.Warn("Role not found in context")
				RespondWithError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			if userRole != role {
				logger.Warn("User role not authorized",
					zap.String("role", userRole),
					zap.String("required_role", role),
				)
				RespondWithError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin ensures the user has the admin role
func RequireAdmin(logger *zap.Logger) func(http.Handler) http.Handler {
	return RequireRole("admin", logger)
}
