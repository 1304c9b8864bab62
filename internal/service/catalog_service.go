package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"veganbite/internal/domain"
	"veganbite/internal/events"
	"veganbite/internal/repository"

	"go.uber.org/zap"
)

const msgUnknownCategory = "One or more categories do not exist"

// CategoryService defines the interface for category business logic
type CategoryService interface {
	List(ctx context.Context) ([]*domain.Category, error)
	Get(ctx context.Context, id int64) (*domain.Category, error)
	Create(ctx context.Context, input domain.CategoryInput) (*domain.Category, error)
	Update(ctx context.Context, id int64, input domain.CategoryInput) (*domain.Category, error)
	Delete(ctx context.Context, id int64) error
}

type categoryService struct {
	categoryRepo repository.CategoryRepository
	logger       *zap.Logger
}

// NewCategoryService creates a new instance of CategoryService
func NewCategoryService(categoryRepo repository.CategoryRepository, logger *zap.Logger) CategoryService {
	return &categoryService{categoryRepo: categoryRepo, logger: logger}
}

func (s *categoryService) List(ctx context.Context) ([]*domain.Category, error) {
	return s.categoryRepo.List(ctx)
}

func (s *categoryService) Get(ctx context.Context, id int64) (*domain.Category, error) {
	return s.categoryRepo.FindByID(ctx, id)
}

func (s *categoryService) Create(ctx context.Context, input domain.CategoryInput) (*domain.Category, error) {
	input.Normalize()
	if err := newValidationError(input.Validate()); err != nil {
		return nil, err
	}

	category := &domain.Category{
		Name:   input.Name,
		NameJa: input.NameJa,
		Slug:   domain.Slugify(input.Name),
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.logger.Info("Category created", zap.Int64("category_id", category.ID), zap.String("slug", category.Slug))
	return category, nil
}

func (s *categoryService) Update(ctx context.Context, id int64, input domain.CategoryInput) (*domain.Category, error) {
	input.Normalize()
	if err := newValidationError(input.Validate()); err != nil {
		return nil, err
	}

	category := &domain.Category{
		ID:     id,
		Name:   input.Name,
		NameJa: input.NameJa,
		Slug:   domain.Slugify(input.Name),
	}
	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}
	return category, nil
}

// Delete removes a category and unlinks it from products. Products stay.
func (s *categoryService) Delete(ctx context.Context, id int64) error {
	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	s.logger.Info("Category deleted", zap.Int64("category_id", id))
	return nil
}

// ProductService defines the interface for product business logic
type ProductService interface {
	// List filters by category (an id, a slug, or "all"/"" for none) and by a
	// case-insensitive search over both names.
	List(ctx context.Context, category, search string) ([]*domain.Product, error)
	Get(ctx context.Context, id int64) (*domain.Product, error)
	Create(ctx context.Context, input domain.ProductInput) (*domain.Product, error)
	Update(ctx context.Context, id int64, input domain.ProductInput) (*domain.Product, error)
	Delete(ctx context.Context, id int64) error
}

type productService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	publisher    events.Publisher
	logger       *zap.Logger
}

// NewProductService creates a new instance of ProductService
func NewProductService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	publisher events.Publisher,
	logger *zap.Logger,
) ProductService {
	return &productService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		publisher:    publisher,
		logger:       logger,
	}
}

func (s *productService) List(ctx context.Context, category, search string) ([]*domain.Product, error) {
	filter := domain.ProductFilter{Search: strings.TrimSpace(search)}

	category = strings.TrimSpace(category)
	if category != "" && !strings.EqualFold(category, "all") {
		if id, err := strconv.ParseInt(category, 10, 64); err == nil {
			filter.CategoryID = &id
		} else {
			filter.CategorySlug = strings.ToLower(category)
		}
	}

	return s.productRepo.List(ctx, filter)
}

func (s *productService) Get(ctx context.Context, id int64) (*domain.Product, error) {
	return s.productRepo.FindByID(ctx, id)
}

func (s *productService) Create(ctx context.Context, input domain.ProductInput) (*domain.Product, error) {
	if err := s.validate(ctx, &input); err != nil {
		return nil, err
	}

	product := &domain.Product{}
	input.Apply(product)

	if err := s.productRepo.Create(ctx, product, input.CategoryIDs); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, fieldError("categoryIds", msgUnknownCategory)
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info("Product created", zap.Int64("product_id", product.ID))
	return product, nil
}

func (s *productService) Update(ctx context.Context, id int64, input domain.ProductInput) (*domain.Product, error) {
	if err := s.validate(ctx, &input); err != nil {
		return nil, err
	}

	product := &domain.Product{ID: id}
	input.Apply(product)

	if err := s.productRepo.Update(ctx, product, input.CategoryIDs); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, fieldError("categoryIds", msgUnknownCategory)
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return product, nil
}

// Delete removes the product with its reviews, favorites and category links.
func (s *productService) Delete(ctx context.Context, id int64) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	s.logger.Info("Product deleted", zap.Int64("product_id", id))
	events.Emit(ctx, s.publisher, s.logger, events.ProductDeleted, "product", id, map[string]int64{"productId": id})
	return nil
}

func (s *productService) validate(ctx context.Context, input *domain.ProductInput) error {
	input.Normalize()
	fields := input.Validate()

	if _, failed := fields["categoryIds"]; !failed {
		found, err := s.categoryRepo.FindByIDs(ctx, input.CategoryIDs)
		if err != nil {
			return fmt.Errorf("failed to check categories: %w", err)
		}
		if len(found) != len(input.CategoryIDs) {
			fields.Add("categoryIds", msgUnknownCategory)
		}
	}

	return newValidationError(fields)
}
