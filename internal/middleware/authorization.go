package middleware

import (
	"net/http"

	"veganbite/internal/domain"

	"go.uber.org/zap"
)

// RequireCustomer ensures the caller is a signed-in customer
func RequireCustomer(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFromContext(r.Context())
			if !ok {
				RespondWithError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			if principal.Kind() != domain.PrincipalCustomer {
				logger.Warn("Non-customer attempted to access customer endpoint",
					zap.String("kind", string(principal.Kind())),
					zap.Int64("principal_id", principal.ID()),
				)
				RespondWithError(w, http.StatusForbidden, "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin ensures the caller is an admin of any role
func RequireAdmin(logger *zap.Logger) func(http.Handler) http.Handler {
	return RequireRole([]domain.AdminRole{
		domain.AdminRoleSuperAdmin,
		domain.AdminRoleAdmin,
		domain.AdminRoleModerator,
	}, logger)
}

// RequireCatalogAdmin ensures the caller may edit categories and products
func RequireCatalogAdmin(logger *zap.Logger) func(http.Handler) http.Handler {
	return RequireRole([]domain.AdminRole{
		domain.AdminRoleSuperAdmin,
		domain.AdminRoleAdmin,
	}, logger)
}

// RequireRole ensures the caller is an admin with one of the specified roles
func RequireRole(allowedRoles []domain.AdminRole, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFromContext(r.Context())
			if !ok {
				RespondWithError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			admin, ok := domain.AsAdmin(principal)
			if !ok {
				logger.Warn("Non-admin attempted to access admin endpoint",
					zap.Int64("principal_id", principal.ID()),
				)
				RespondWithError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			allowed := false
			for _, role := range allowedRoles {
				if admin.Role == role {
					allowed = true
					break
				}
			}

			if !allowed {
				logger.Warn("Admin role not authorized",
					zap.String("role", string(admin.Role)),
					zap.Int64("admin_id", admin.ID),
				)
				RespondWithError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
