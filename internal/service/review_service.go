package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"veganbite/internal/domain"
	"veganbite/internal/events"
	"veganbite/internal/repository"

	"go.uber.org/zap"
)

// ReviewService defines the interface for review business logic
type ReviewService interface {
	ListByProduct(ctx context.Context, productID int64) ([]*domain.Review, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]*domain.Review, error)
	ListAll(ctx context.Context) ([]*domain.Review, error)
	Create(ctx context.Context, principal domain.Principal, productID int64, input domain.ReviewInput) (*domain.Review, error)
	Update(ctx context.Context, principal domain.Principal, reviewID int64, input domain.ReviewInput) (*domain.Review, error)
	Delete(ctx context.Context, principal domain.Principal, reviewID int64) error
}

type reviewService struct {
	reviewRepo   repository.ReviewRepository
	productRepo  repository.ProductRepository
	customerRepo repository.CustomerRepository
	publisher    events.Publisher
	logger       *zap.Logger
	now          func() time.Time
}

// NewReviewService creates a new instance of ReviewService
func NewReviewService(
	reviewRepo repository.ReviewRepository,
	productRepo repository.ProductRepository,
	customerRepo repository.CustomerRepository,
	publisher events.Publisher,
	logger *zap.Logger,
) ReviewService {
	return &reviewService{
		reviewRepo:   reviewRepo,
		productRepo:  productRepo,
		customerRepo: customerRepo,
		publisher:    publisher,
		logger:       logger,
		now:          time.Now,
	}
}

type reviewEventData struct {
	ReviewID   int64 `json:"reviewId"`
	ProductID  int64 `json:"productId"`
	CustomerID int64 `json:"customerId"`
	Rating     int   `json:"rating"`
}

func (s *reviewService) ListByProduct(ctx context.Context, productID int64) ([]*domain.Review, error) {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return nil, err
	}
	return s.reviewRepo.ListByProduct(ctx, productID)
}

func (s *reviewService) ListByCustomer(ctx context.Context, customerID int64) ([]*domain.Review, error) {
	if _, err := s.customerRepo.FindByID(ctx, customerID); err != nil {
		return nil, err
	}
	return s.reviewRepo.ListByCustomer(ctx, customerID)
}

func (s *reviewService) ListAll(ctx context.Context) ([]*domain.Review, error) {
	return s.reviewRepo.ListAll(ctx)
}

// Create stores the caller's review of a product. The unique index on
// (product, customer) is authoritative; the lookup before insert only
// provides the existing review id early.
func (s *reviewService) Create(ctx context.Context, principal domain.Principal, productID int64, input domain.ReviewInput) (review *domain.Review, err error) {
	defer func() { reviewMutationsTotal.WithLabelValues("create", outcome(err)).Inc() }()

	customer, ok := domain.AsCustomer(principal)
	if !ok {
		return nil, ErrForbidden
	}
	if !customer.CanContribute(s.now()) {
		return nil, ErrForbidden
	}

	input.Normalize()
	if err := newValidationError(input.Validate()); err != nil {
		return nil, err
	}

	if existing, err := s.reviewRepo.FindByProductAndCustomer(ctx, productID, customer.ID); err == nil {
		return nil, &DuplicateReviewError{ExistingID: existing.ID}
	} else if !errors.Is(err, repository.ErrReviewNotFound) {
		return nil, fmt.Errorf("failed to check existing review: %w", err)
	}

	review = &domain.Review{
		ProductID:  productID,
		CustomerID: customer.ID,
		Rating:     input.Rating,
		Comment:    input.Comment,
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		if errors.Is(err, repository.ErrDuplicateReview) {
			return nil, s.duplicateOf(ctx, productID, customer.ID)
		}
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	s.logger.Info("Review created",
		zap.Int64("review_id", review.ID),
		zap.Int64("product_id", productID),
		zap.Int64("customer_id", customer.ID),
	)
	events.Emit(ctx, s.publisher, s.logger, events.ReviewCreated, "review", review.ID, reviewEventData{
		ReviewID: review.ID, ProductID: productID, CustomerID: customer.ID, Rating: review.Rating,
	})
	return review, nil
}

// Update rewrites a review. Only its author or an admin may do so.
func (s *reviewService) Update(ctx context.Context, principal domain.Principal, reviewID int64, input domain.ReviewInput) (review *domain.Review, err error) {
	defer func() { reviewMutationsTotal.WithLabelValues("update", outcome(err)).Inc() }()

	input.Normalize()
	if err := newValidationError(input.Validate()); err != nil {
		return nil, err
	}

	review, err = s.authorize(ctx, principal, reviewID)
	if err != nil {
		return nil, err
	}
	if customer, ok := domain.AsCustomer(principal); ok && !customer.CanContribute(s.now()) {
		return nil, ErrForbidden
	}

	review.Rating = input.Rating
	review.Comment = input.Comment
	if err := s.reviewRepo.Update(ctx, review); err != nil {
		return nil, fmt.Errorf("failed to update review: %w", err)
	}

	events.Emit(ctx, s.publisher, s.logger, events.ReviewUpdated, "review", review.ID, reviewEventData{
		ReviewID: review.ID, ProductID: review.ProductID, CustomerID: review.CustomerID, Rating: review.Rating,
	})
	return review, nil
}

// Delete removes a review. Only its author or an admin may do so.
func (s *reviewService) Delete(ctx context.Context, principal domain.Principal, reviewID int64) (err error) {
	defer func() { reviewMutationsTotal.WithLabelValues("delete", outcome(err)).Inc() }()

	if _, err := s.authorize(ctx, principal, reviewID); err != nil {
		return err
	}

	deleted, err := s.reviewRepo.Delete(ctx, reviewID)
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}

	if principal.Kind() == domain.PrincipalAdmin {
		s.logger.Info("Review removed by admin",
			zap.Int64("review_id", reviewID),
			zap.Int64("admin_id", principal.ID()),
		)
	}
	events.Emit(ctx, s.publisher, s.logger, events.ReviewDeleted, "review", reviewID, reviewEventData{
		ReviewID: deleted.ID, ProductID: deleted.ProductID, CustomerID: deleted.CustomerID, Rating: deleted.Rating,
	})
	return nil
}

func (s *reviewService) authorize(ctx context.Context, principal domain.Principal, reviewID int64) (*domain.Review, error) {
	if principal == nil {
		return nil, ErrUnauthorized
	}

	review, err := s.reviewRepo.FindByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}

	switch principal.Kind() {
	case domain.PrincipalAdmin:
		admin, _ := domain.AsAdmin(principal)
		if admin == nil || !admin.CanModerate() {
			return nil, ErrForbidden
		}
	case domain.PrincipalCustomer:
		if review.CustomerID != principal.ID() {
			return nil, ErrForbidden
		}
	default:
		return nil, ErrForbidden
	}
	return review, nil
}

func (s *reviewService) duplicateOf(ctx context.Context, productID, customerID int64) error {
	existing, err := s.reviewRepo.FindByProductAndCustomer(ctx, productID, customerID)
	if err != nil {
		return ErrDuplicateReview
	}
	return &DuplicateReviewError{ExistingID: existing.ID}
}
