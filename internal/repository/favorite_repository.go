package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"veganbite/internal/domain"
)

// FavoriteRepository defines the interface for favorite data access
type FavoriteRepository interface {
	// Add saves the pair if absent and returns the stored row; created is
	// false when the favorite already existed.
	Add(ctx context.Context, customerID, productID int64) (fav *domain.Favorite, created bool, err error)
	Remove(ctx context.Context, customerID, productID int64) error
	ListByCustomer(ctx context.Context, customerID int64) ([]*domain.Favorite, error)
}

type favoriteRepository struct {
	db *sql.DB
}

// NewFavoriteRepository creates a new instance of FavoriteRepository
func NewFavoriteRepository(db *sql.DB) FavoriteRepository {
	return &favoriteRepository{db: db}
}

func (r *favoriteRepository) Add(ctx context.Context, customerID, productID int64) (*domain.Favorite, bool, error) {
	fav := &domain.Favorite{CustomerID: customerID, ProductID: productID}
	created := true

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO favorites (customer_id, product_id)
		VALUES ($1, $2)
		ON CONFLICT (customer_id, product_id) DO NOTHING
		RETURNING id, created_at
	`, customerID, productID).Scan(&fav.ID, &fav.CreatedAt)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		created = false
		err = r.db.QueryRowContext(ctx,
			`SELECT id, created_at FROM favorites WHERE customer_id = $1 AND product_id = $2`,
			customerID, productID).Scan(&fav.ID, &fav.CreatedAt)
		if err != nil {
			return nil, false, fmt.Errorf("failed to load existing favorite: %w", err)
		}
	case err != nil:
		if isForeignKeyViolation(err) {
			if constraintName(err) == "fk_favorites_customer" {
				return nil, false, ErrCustomerNotFound
			}
			return nil, false, ErrProductNotFound
		}
		return nil, false, fmt.Errorf("failed to add favorite: %w", err)
	}

	product, err := findProduct(ctx, r.db, productID)
	if err != nil {
		return nil, false, err
	}
	fav.Product = product

	return fav, created, nil
}

// Remove deletes the favorite if present; removing a missing favorite is not an error.
func (r *favoriteRepository) Remove(ctx context.Context, customerID, productID int64) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM favorites WHERE customer_id = $1 AND product_id = $2`, customerID, productID)
	if err != nil {
		return fmt.Errorf("failed to remove favorite: %w", err)
	}
	return nil
}

// ListByCustomer returns a customer's favorites with their products, newest first
func (r *favoriteRepository) ListByCustomer(ctx context.Context, customerID int64) ([]*domain.Favorite, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT f.id, f.customer_id, f.created_at, `+productColumns+`
		FROM favorites f
		JOIN products p ON p.id = f.product_id
		WHERE f.customer_id = $1
		ORDER BY f.created_at DESC, f.id DESC
	`, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	defer rows.Close()

	favorites := []*domain.Favorite{}
	products := []*domain.Product{}
	for rows.Next() {
		fav := &domain.Favorite{Product: &domain.Product{}}
		var amazon, rakuten, yahoo sql.NullString
		p := fav.Product
		err := rows.Scan(
			&fav.ID, &fav.CustomerID, &fav.CreatedAt,
			&p.ID, &p.Name, &p.NameJa, &p.Description, &p.DescriptionJa, &p.ImageURL,
			&amazon, &rakuten, &yahoo, &p.Rating, &p.ReviewCount, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan favorite: %w", err)
		}
		p.AmazonURL = nullableString(amazon)
		p.RakutenURL = nullableString(rakuten)
		p.YahooURL = nullableString(yahoo)
		fav.ProductID = p.ID

		favorites = append(favorites, fav)
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating favorites: %w", err)
	}

	if err := loadCategories(ctx, r.db, products...); err != nil {
		return nil, err
	}
	return favorites, nil
}
