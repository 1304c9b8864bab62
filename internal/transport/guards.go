package transport

import (
	"net/http"

	"veganbite/internal/middleware"

	"go.uber.org/zap"
)

// Guards bundles the authentication and authorization middleware that
// handlers attach to their routes.
type Guards struct {
	Authenticate func(http.Handler) http.Handler
	Customer     func(http.Handler) http.Handler
	Admin        func(http.Handler) http.Handler
	CatalogAdmin func(http.Handler) http.Handler
}

// NewGuards builds Guards around a session resolver.
func NewGuards(resolver middleware.SessionResolver, logger *zap.Logger) Guards {
	return Guards{
		Authenticate: middleware.AuthMiddleware(resolver, logger),
		Customer:     middleware.RequireCustomer(logger),
		Admin:        middleware.RequireAdmin(logger),
		CatalogAdmin: middleware.RequireCatalogAdmin(logger),
	}
}
