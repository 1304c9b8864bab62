package transport

import (
	"net/http"

	"veganbite/internal/domain"
	"veganbite/internal/middleware"
	"veganbite/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// FavoriteRequest represents the add favorite payload
type FavoriteRequest struct {
	ProductID int64 `json:"productId" validate:"required,gt=0"`
}

// FavoriteHandler handles HTTP requests for a customer's favorites
type FavoriteHandler struct {
	favoriteService service.FavoriteService
	logger          *zap.Logger
}

// NewFavoriteHandler creates a new FavoriteHandler
func NewFavoriteHandler(favoriteService service.FavoriteService, logger *zap.Logger) *FavoriteHandler {
	return &FavoriteHandler{favoriteService: favoriteService, logger: logger}
}

// RegisterRoutes registers all favorite routes
func (h *FavoriteHandler) RegisterRoutes(r chi.Router, guards Guards) {
	r.Route("/api/customers/{id}/favorites", func(r chi.Router) {
		r.Use(guards.Authenticate, guards.Customer)
		r.Get("/", h.List)
		r.Post("/", h.Add)
		r.Delete("/{productId}", h.Remove)
	})
}

// self returns the caller when it is the customer named in the path.
func (h *FavoriteHandler) self(w http.ResponseWriter, r *http.Request) (domain.Principal, bool) {
	customerID, ok := pathID(w, r, "id")
	if !ok {
		return nil, false
	}
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, service.ErrUnauthorized.Error())
		return nil, false
	}
	if principal.Kind() != domain.PrincipalCustomer || principal.ID() != customerID {
		h.logger.Warn("Favorites accessed for another customer",
			zap.Int64("customer_id", customerID),
			zap.Int64("principal_id", principal.ID()),
		)
		middleware.RespondWithError(w, http.StatusForbidden, service.ErrForbidden.Error())
		return nil, false
	}
	return principal, true
}

func (h *FavoriteHandler) List(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.self(w, r)
	if !ok {
		return
	}
	favorites, err := h.favoriteService.List(r.Context(), principal)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "list favorites")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, favorites)
}

// Add saves a product; 201 when newly saved, 200 when it already was.
func (h *FavoriteHandler) Add(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.self(w, r)
	if !ok {
		return
	}
	var req FavoriteRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	favorite, created, err := h.favoriteService.Add(r.Context(), principal, req.ProductID)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "add favorite")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	middleware.RespondWithJSON(w, status, favorite)
}

// Remove always answers 204, whether or not the product was saved.
func (h *FavoriteHandler) Remove(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.self(w, r)
	if !ok {
		return
	}
	productID, ok := pathID(w, r, "productId")
	if !ok {
		return
	}
	if err := h.favoriteService.Remove(r.Context(), principal, productID); err != nil {
		respondWithServiceError(w, h.logger, err, "remove favorite")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
