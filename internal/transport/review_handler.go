package transport

import (
	"net/http"

	"veganbite/internal/domain"
	"veganbite/internal/middleware"
	"veganbite/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ReviewRequest represents the create/update review payload
type ReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string `json:"comment" validate:"required"`
}

func (req ReviewRequest) input() domain.ReviewInput {
	return domain.ReviewInput{Rating: req.Rating, Comment: req.Comment}
}

// ReviewHandler handles HTTP requests for reviews
type ReviewHandler struct {
	reviewService service.ReviewService
	logger        *zap.Logger
}

// NewReviewHandler creates a new ReviewHandler
func NewReviewHandler(reviewService service.ReviewService, logger *zap.Logger) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService, logger: logger}
}

// RegisterRoutes registers all review routes
func (h *ReviewHandler) RegisterRoutes(r chi.Router, guards Guards) {
	r.Get("/api/products/{id}/reviews", h.ListByProduct)
	r.Get("/api/customers/{id}/reviews", h.ListByCustomer)

	r.Group(func(r chi.Router) {
		r.Use(guards.Authenticate)

		r.With(guards.Customer).Post("/api/products/{id}/reviews", h.Create)
		r.Put("/api/reviews/{id}", h.Update)
		r.Delete("/api/reviews/{id}", h.Delete)

		r.With(guards.Admin).Get("/api/admin/reviews", h.ListAll)
	})
}

// ListByProduct returns a product's reviews, newest first
func (h *ReviewHandler) ListByProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	reviews, err := h.reviewService.ListByProduct(r.Context(), productID)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "list reviews")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, reviews)
}

// ListByCustomer returns a customer's reviews with their products
func (h *ReviewHandler) ListByCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	reviews, err := h.reviewService.ListByCustomer(r.Context(), customerID)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "list reviews")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, reviews)
}

func (h *ReviewHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.reviewService.ListAll(r.Context())
	if err != nil {
		respondWithServiceError(w, h.logger, err, "list reviews")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, reviews)
}

func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req ReviewRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	principal, _ := middleware.PrincipalFromContext(r.Context())
	review, err := h.reviewService.Create(r.Context(), principal, productID, req.input())
	if err != nil {
		respondWithServiceError(w, h.logger, err, "create review")
		return
	}
	middleware.RespondWithJSON(w, http.StatusCreated, review)
}

func (h *ReviewHandler) Update(w http.ResponseWriter, r *http.Request) {
	reviewID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req ReviewRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	principal, _ := middleware.PrincipalFromContext(r.Context())
	review, err := h.reviewService.Update(r.Context(), principal, reviewID, req.input())
	if err != nil {
		respondWithServiceError(w, h.logger, err, "update review")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, review)
}

func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	reviewID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	principal, _ := middleware.PrincipalFromContext(r.Context())
	if err := h.reviewService.Delete(r.Context(), principal, reviewID); err != nil {
		respondWithServiceError(w, h.logger, err, "delete review")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
