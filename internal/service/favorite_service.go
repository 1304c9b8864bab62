package service

import (
	"context"
	"fmt"

	"veganbite/internal/domain"
	"veganbite/internal/repository"

	"go.uber.org/zap"
)

// FavoriteService defines the interface for a customer's saved products.
// Every operation acts on the calling customer only.
type FavoriteService interface {
	List(ctx context.Context, principal domain.Principal) ([]*domain.Favorite, error)
	// Add is idempotent; created is false when the product was already saved.
	Add(ctx context.Context, principal domain.Principal, productID int64) (fav *domain.Favorite, created bool, err error)
	Remove(ctx context.Context, principal domain.Principal, productID int64) error
}

type favoriteService struct {
	favoriteRepo repository.FavoriteRepository
	logger       *zap.Logger
}

// NewFavoriteService creates a new instance of FavoriteService
func NewFavoriteService(favoriteRepo repository.FavoriteRepository, logger *zap.Logger) FavoriteService {
	return &favoriteService{favoriteRepo: favoriteRepo, logger: logger}
}

func (s *favoriteService) List(ctx context.Context, principal domain.Principal) ([]*domain.Favorite, error) {
	customer, err := customerOf(principal)
	if err != nil {
		return nil, err
	}
	return s.favoriteRepo.ListByCustomer(ctx, customer.ID)
}

func (s *favoriteService) Add(ctx context.Context, principal domain.Principal, productID int64) (*domain.Favorite, bool, error) {
	customer, err := customerOf(principal)
	if err != nil {
		return nil, false, err
	}

	fav, created, err := s.favoriteRepo.Add(ctx, customer.ID, productID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to add favorite: %w", err)
	}
	if created {
		s.logger.Debug("Favorite added", zap.Int64("customer_id", customer.ID), zap.Int64("product_id", productID))
	}
	return fav, created, nil
}

func (s *favoriteService) Remove(ctx context.Context, principal domain.Principal, productID int64) error {
	customer, err := customerOf(principal)
	if err != nil {
		return err
	}
	if err := s.favoriteRepo.Remove(ctx, customer.ID, productID); err != nil {
		return fmt.Errorf("failed to remove favorite: %w", err)
	}
	return nil
}

func customerOf(principal domain.Principal) (*domain.Customer, error) {
	if principal == nil {
		return nil, ErrUnauthorized
	}
	customer, ok := domain.AsCustomer(principal)
	if !ok {
		return nil, ErrForbidden
	}
	return customer, nil
}
