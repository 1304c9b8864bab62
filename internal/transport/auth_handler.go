package transport

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"veganbite/internal/auth"
	"veganbite/internal/domain"
	"veganbite/internal/middleware"
	"veganbite/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// MeResponse describes the signed-in principal
type MeResponse struct {
	IsAdmin  bool             `json:"isAdmin"`
	Customer *domain.Customer `json:"customer,omitempty"`
	Admin    *domain.Admin    `json:"admin,omitempty"`
}

// AuthHandler handles Google sign-in, the current principal and logout
type AuthHandler struct {
	authService service.AuthService
	frontendURL string
	logger      *zap.Logger
}

// NewAuthHandler creates a new AuthHandler. Sign-in callbacks redirect to
// pages under frontendURL.
func NewAuthHandler(authService service.AuthService, frontendURL string, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		logger:      logger,
	}
}

// RegisterRoutes registers all auth routes
func (h *AuthHandler) RegisterRoutes(r chi.Router, guards Guards) {
	r.Route("/api/auth", func(r chi.Router) {
		r.Get("/google", h.login(domain.PrincipalCustomer))
		r.Get("/google/callback", h.callback(domain.PrincipalCustomer))
		r.Get("/admin/google", h.login(domain.PrincipalAdmin))
		r.Get("/admin/google/callback", h.callback(domain.PrincipalAdmin))

		r.Group(func(r chi.Router) {
			r.Use(guards.Authenticate)
			r.Get("/me", h.Me)
			r.Post("/logout", h.Logout)
		})
	})
}

func (h *AuthHandler) login(audience domain.PrincipalKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		target, err := h.authService.LoginURL(r.Context(), audience)
		if err != nil {
			h.logger.Error("Failed to start sign-in", zap.String("audience", string(audience)), zap.Error(err))
			h.redirectError(w, r, audience, "state")
			return
		}
		http.Redirect(w, r, target, http.StatusTemporaryRedirect)
	}
}

func (h *AuthHandler) callback(audience domain.PrincipalKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		if query.Get("code") == "" {
			h.redirectError(w, r, audience, "no_code")
			return
		}

		result, err := h.authService.CompleteLogin(r.Context(), audience, query.Get("state"), query.Get("code"))
		if err != nil {
			reason := callbackErrorReason(err)
			h.logger.Warn("Sign-in failed",
				zap.String("audience", string(audience)),
				zap.String("reason", reason),
				zap.Error(err),
			)
			h.redirectError(w, r, audience, reason)
			return
		}

		path := "/auth/callback"
		if audience == domain.PrincipalAdmin {
			path = "/admin/auth/callback"
		}
		http.Redirect(w, r, h.frontendURL+path+"?token="+url.QueryEscape(result.Token), http.StatusTemporaryRedirect)
	}
}

func callbackErrorReason(err error) string {
	switch {
	case errors.Is(err, service.ErrNotAdmin):
		return "not_admin"
	case errors.Is(err, service.ErrInvalidOAuthState):
		return "invalid_state"
	case errors.Is(err, auth.ErrUnverifiedEmail):
		return "user_info"
	default:
		return "token_exchange"
	}
}

func (h *AuthHandler) redirectError(w http.ResponseWriter, r *http.Request, audience domain.PrincipalKind, reason string) {
	path := "/login"
	if audience == domain.PrincipalAdmin {
		path = "/admin/login"
	}
	http.Redirect(w, r, h.frontendURL+path+"?error="+url.QueryEscape(reason), http.StatusTemporaryRedirect)
}

// Me returns {isAdmin, customer} or {isAdmin, admin}
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, service.ErrUnauthorized.Error())
		return
	}

	var response MeResponse
	if admin, ok := domain.AsAdmin(principal); ok {
		response = MeResponse{IsAdmin: true, Admin: admin}
	} else if customer, ok := domain.AsCustomer(principal); ok {
		response = MeResponse{Customer: customer}
	}
	middleware.RespondWithJSON(w, http.StatusOK, response)
}

// Logout revokes the bearer token
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.SessionFromContext(r.Context())
	if err := h.authService.Logout(r.Context(), session); err != nil {
		respondWithServiceError(w, h.logger, err, "logout")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}
