package transport

import (
	"net/http"

	"veganbite/internal/domain"
	"veganbite/internal/middleware"
	"veganbite/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BanRequest represents the ban payload. The reason is checked by the
// moderation service so a blank one is rejected before any state is read.
type BanRequest struct {
	Reason string `json:"reason"`
}

// SuspendRequest represents the suspend payload; duration is in days.
type SuspendRequest struct {
	Duration int    `json:"duration"`
	Reason   string `json:"reason"`
}

// AdminHandler handles customer moderation in the back-office
type AdminHandler struct {
	moderationService service.ModerationService
	logger            *zap.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(moderationService service.ModerationService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{moderationService: moderationService, logger: logger}
}

// RegisterRoutes registers all admin customer routes
func (h *AdminHandler) RegisterRoutes(r chi.Router, guards Guards) {
	r.Group(func(r chi.Router) {
		r.Use(guards.Authenticate, guards.Admin)
		r.Get("/api/admin/customers", h.ListCustomers)
		r.Get("/api/admin/customers/{id}", h.GetCustomer)
		r.Post("/api/admin/customers/{id}/ban", h.Ban)
		r.Post("/api/admin/customers/{id}/suspend", h.Suspend)
		r.Post("/api/admin/customers/{id}/unban", h.Unban)
	})
}

// ListCustomers returns every customer with review counts, ordered by id
func (h *AdminHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.moderationService.ListCustomers(r.Context())
	if err != nil {
		respondWithServiceError(w, h.logger, err, "list customers")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, customers)
}

func (h *AdminHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	customer, err := h.moderationService.GetCustomer(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "get customer")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, customer)
}

func (h *AdminHandler) Ban(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req BanRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	customer, err := h.moderationService.Ban(r.Context(), h.admin(r), id, req.Reason)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "ban customer")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, customer)
}

func (h *AdminHandler) Suspend(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req SuspendRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	customer, err := h.moderationService.Suspend(r.Context(), h.admin(r), id, req.Duration, req.Reason)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "suspend customer")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, customer)
}

func (h *AdminHandler) Unban(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	customer, err := h.moderationService.Unban(r.Context(), h.admin(r), id)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "unban customer")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, customer)
}

func (h *AdminHandler) admin(r *http.Request) *domain.Admin {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		return nil
	}
	admin, _ := domain.AsAdmin(principal)
	return admin
}
