package transport

import (
	"net/http"

	"veganbite/internal/domain"
	"veganbite/internal/middleware"
	"veganbite/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CategoryRef is the {id} shape the storefront sends for product categories
type CategoryRef struct {
	ID int64 `json:"id" validate:"gt=0"`
}

// ProductRequest represents the create/update product payload. Categories
// may be sent as categoryIds or as categories [{id}]; both are merged.
type ProductRequest struct {
	Name          string        `json:"name" validate:"required,max=255,latin"`
	NameJa        string        `json:"nameJa" validate:"required,max=255,japanese"`
	Description   string        `json:"description" validate:"required,max=5000,latin"`
	DescriptionJa string        `json:"descriptionJa" validate:"required,max=5000,japanese"`
	ImageURL      string        `json:"imageUrl" validate:"required,httpurl"`
	AmazonURL     *string       `json:"amazonUrl"`
	RakutenURL    *string       `json:"rakutenUrl"`
	YahooURL      *string       `json:"yahooUrl"`
	CategoryIDs   []int64       `json:"categoryIds" validate:"dive,gt=0"`
	Categories    []CategoryRef `json:"categories" validate:"dive"`
}

func (req ProductRequest) input() domain.ProductInput {
	ids := append([]int64{}, req.CategoryIDs...)
	for _, c := range req.Categories {
		ids = append(ids, c.ID)
	}
	return domain.ProductInput{
		Name:          req.Name,
		NameJa:        req.NameJa,
		Description:   req.Description,
		DescriptionJa: req.DescriptionJa,
		ImageURL:      req.ImageURL,
		AmazonURL:     req.AmazonURL,
		RakutenURL:    req.RakutenURL,
		YahooURL:      req.YahooURL,
		CategoryIDs:   ids,
	}
}

// ProductHandler handles HTTP requests for products
type ProductHandler struct {
	productService service.ProductService
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService service.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{productService: productService, logger: logger}
}

// RegisterRoutes registers all product routes. Review routes under
// /api/products/{id}/reviews are registered by ReviewHandler.
func (h *ProductHandler) RegisterRoutes(r chi.Router, guards Guards) {
	r.Get("/api/products", h.List)
	r.Get("/api/products/{id}", h.Get)

	r.Group(func(r chi.Router) {
		r.Use(guards.Authenticate, guards.CatalogAdmin)
		r.Post("/api/products", h.Create)
		r.Put("/api/products/{id}", h.Update)
		r.Delete("/api/products/{id}", h.Delete)
	})
}

// List handles GET /api/products?category=&search=
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	products, err := h.productService.List(r.Context(), query.Get("category"), query.Get("search"))
	if err != nil {
		respondWithServiceError(w, h.logger, err, "list products")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	product, err := h.productService.Get(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "get product")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	product, err := h.productService.Create(r.Context(), req.input())
	if err != nil {
		respondWithServiceError(w, h.logger, err, "create product")
		return
	}
	middleware.RespondWithJSON(w, http.StatusCreated, product)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req ProductRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	product, err := h.productService.Update(r.Context(), id, req.input())
	if err != nil {
		respondWithServiceError(w, h.logger, err, "update product")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// Delete removes the product together with its reviews and favorites
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.productService.Delete(r.Context(), id); err != nil {
		respondWithServiceError(w, h.logger, err, "delete product")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
