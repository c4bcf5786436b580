package auth

import (
	"log/slog"
	"net/http"
)

// RBACAuthorization gates routes by the role carried on the caller identity.
// Ownership and assigned-manager checks belong to the services; this only
// keeps the wrong role class out of a route group.
type RBACAuthorization struct {
	logger *slog.Logger
}

func NewRBACAuthorization(logger *slog.Logger) *RBACAuthorization {
	return &RBACAuthorization{logger: logger}
}

func (ra *RBACAuthorization) requireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFromContext(r.Context())
			if !ok {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			for _, role := range roles {
				if identity.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			ra.logger.WarnContext(r.Context(), "access denied: insufficient role",
				"user_id", identity.UserID,
				"role", identity.Role,
				"required_roles", roles)
			http.Error(w, "Forbidden: insufficient role", http.StatusForbidden)
		})
	}
}

func (ra *RBACAuthorization) RequireAdmin() func(http.Handler) http.Handler {
	return ra.requireRole(RoleAdmin)
}

func (ra *RBACAuthorization) RequireManager() func(http.Handler) http.Handler {
	return ra.requireRole(RoleManager)
}

func (ra *RBACAuthorization) RequireEmployee() func(http.Handler) http.Handler {
	return ra.requireRole(RoleEmployee)
}

// RequireManagerOrAdmin covers read surfaces shared by both roles.
func (ra *RBACAuthorization) RequireManagerOrAdmin() func(http.Handler) http.Handler {
	return ra.requireRole(RoleManager, RoleAdmin)
}
