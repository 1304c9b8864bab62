package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"veganbite/internal/domain"
	"veganbite/internal/service"

	"go.uber.org/zap"
)

type contextKey string

const sessionKey contextKey = "session"

// SessionResolver turns a bearer token into a session.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*domain.Session, error)
}

// AuthMiddleware requires a valid bearer token and stores the resolved
// session in the request context.
func AuthMiddleware(resolver SessionResolver, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := SessionFromContext(r.Context()); ok {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := bearerToken(r)
			if !ok {
				logger.Debug("Missing or malformed authorization header")
				RespondWithError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			session, err := resolver.Resolve(r.Context(), token)
			if err != nil {
				if errors.Is(err, service.ErrUnauthorized) {
					logger.Debug("Token rejected", zap.Error(err))
					RespondWithError(w, http.StatusUnauthorized, "invalid token")
					return
				}
				logger.Error("Failed to resolve session", zap.Error(err))
				RespondWithError(w, http.StatusInternalServerError, "internal server error")
				return
			}

			logger.Debug("Principal authenticated",
				zap.String("kind", string(session.Principal.Kind())),
				zap.Int64("principal_id", session.Principal.ID()),
			)

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
		})
	}
}

// OptionalAuthMiddleware attaches the session when the request carries a
// valid bearer token and otherwise lets the request through anonymously.
// Rejected tokens are left for AuthMiddleware to report on protected routes.
func OptionalAuthMiddleware(resolver SessionResolver, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			session, err := resolver.Resolve(r.Context(), token)
			if err != nil {
				if !errors.Is(err, service.ErrUnauthorized) {
					logger.Warn("Failed to resolve optional session", zap.Error(err))
				}
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
		})
	}
}

// WithSession returns a copy of ctx carrying session.
func WithSession(ctx context.Context, session *domain.Session) context.Context {
	return context.WithValue(ctx, sessionKey, session)
}

// SessionFromContext extracts the session stored by AuthMiddleware
func SessionFromContext(ctx context.Context) (*domain.Session, bool) {
	session, ok := ctx.Value(sessionKey).(*domain.Session)
	return session, ok && session != nil
}

// PrincipalFromContext extracts the authenticated principal
func PrincipalFromContext(ctx context.Context) (domain.Principal, bool) {
	session, ok := SessionFromContext(ctx)
	if !ok {
		return nil, false
	}
	return session.Principal, true
}

func bearerToken(r *http.Request) (string, bool) {
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}
