package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"veganbite/internal/domain"
)

var (
	ErrReviewNotFound  = errors.New("review not found")
	ErrDuplicateReview = errors.New("customer has already reviewed this product")
)

// ReviewRepository defines the interface for review data access.
// Every mutation recomputes the product's rating and review count in the
// same transaction, holding the product row lock.
type ReviewRepository interface {
	Create(ctx context.Context, review *domain.Review) error
	Update(ctx context.Context, review *domain.Review) error
	Delete(ctx context.Context, id int64) (*domain.Review, error)
	FindByID(ctx context.Context, id int64) (*domain.Review, error)
	FindByProductAndCustomer(ctx context.Context, productID, customerID int64) (*domain.Review, error)
	ListByProduct(ctx context.Context, productID int64) ([]*domain.Review, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]*domain.Review, error)
	ListAll(ctx context.Context) ([]*domain.Review, error)
}

type reviewRepository struct {
	db *sql.DB
}

// NewReviewRepository creates a new instance of ReviewRepository
func NewReviewRepository(db *sql.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

const reviewSelect = `
	SELECT r.id, r.product_id, r.customer_id, r.rating, r.comment, r.created_at, r.updated_at,
	       c.name, c.avatar, p.name, p.name_ja, p.image_url
	FROM reviews r
	JOIN customers c ON c.id = r.customer_id
	JOIN products p ON p.id = r.product_id`

func scanReview(row interface{ Scan(...any) error }, withProduct bool) (*domain.Review, error) {
	review := &domain.Review{}
	product := &domain.ProductSummary{}
	err := row.Scan(
		&review.ID,
		&review.ProductID,
		&review.CustomerID,
		&review.Rating,
		&review.Comment,
		&review.CreatedAt,
		&review.UpdatedAt,
		&review.Customer.Name,
		&review.Customer.Avatar,
		&product.Name,
		&product.NameJa,
		&product.ImageURL,
	)
	if err != nil {
		return nil, err
	}
	review.Customer.ID = review.CustomerID
	if withProduct {
		product.ID = review.ProductID
		review.Product = product
	}
	return review, nil
}

// Create inserts a review and refreshes the product aggregate.
// A second review for the same (product, customer) yields ErrDuplicateReview.
func (r *reviewRepository) Create(ctx context.Context, review *domain.Review) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := lockProduct(ctx, tx, review.ProductID); err != nil {
			return err
		}

		query := `
			INSERT INTO reviews (product_id, customer_id, rating, comment)
			VALUES ($1, $2, $3, $4)
			RETURNING id, created_at, updated_at
		`
		err := tx.QueryRowContext(ctx, query, review.ProductID, review.CustomerID, review.Rating, review.Comment).
			Scan(&review.ID, &review.CreatedAt, &review.UpdatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicateReview
			}
			if isForeignKeyViolation(err) && constraintName(err) == "fk_reviews_customer" {
				return ErrCustomerNotFound
			}
			return fmt.Errorf("failed to create review: %w", err)
		}

		if err := recomputeAggregate(ctx, tx, review.ProductID); err != nil {
			return err
		}
		return fillAuthor(ctx, tx, review)
	})
}

// Update rewrites rating and comment of a review and refreshes the product aggregate.
func (r *reviewRepository) Update(ctx context.Context, review *domain.Review) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		productID, err := productOfReview(ctx, tx, review.ID)
		if err != nil {
			return err
		}
		if err := lockProduct(ctx, tx, productID); err != nil {
			return err
		}

		query := `
			UPDATE reviews
			SET rating = $2, comment = $3
			WHERE id = $1
			RETURNING product_id, customer_id, created_at, updated_at
		`
		err = tx.QueryRowContext(ctx, query, review.ID, review.Rating, review.Comment).
			Scan(&review.ProductID, &review.CustomerID, &review.CreatedAt, &review.UpdatedAt)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrReviewNotFound
			}
			return fmt.Errorf("failed to update review: %w", err)
		}

		if err := recomputeAggregate(ctx, tx, productID); err != nil {
			return err
		}
		return fillAuthor(ctx, tx, review)
	})
}

// Delete removes a review, refreshes the product aggregate and returns the
// removed row.
func (r *reviewRepository) Delete(ctx context.Context, id int64) (*domain.Review, error) {
	var deleted *domain.Review
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		productID, err := productOfReview(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := lockProduct(ctx, tx, productID); err != nil {
			return err
		}

		deleted = &domain.Review{}
		err = tx.QueryRowContext(ctx, `
			DELETE FROM reviews WHERE id = $1
			RETURNING id, product_id, customer_id, rating, comment, created_at, updated_at
		`, id).Scan(
			&deleted.ID,
			&deleted.ProductID,
			&deleted.CustomerID,
			&deleted.Rating,
			&deleted.Comment,
			&deleted.CreatedAt,
			&deleted.UpdatedAt,
		)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrReviewNotFound
			}
			return fmt.Errorf("failed to delete review: %w", err)
		}
		deleted.Customer.ID = deleted.CustomerID

		return recomputeAggregate(ctx, tx, productID)
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// FindByID retrieves a review with its author and product summary
func (r *reviewRepository) FindByID(ctx context.Context, id int64) (*domain.Review, error) {
	review, err := scanReview(r.db.QueryRowContext(ctx, reviewSelect+` WHERE r.id = $1`, id), true)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to find review by ID: %w", err)
	}
	return review, nil
}

// FindByProductAndCustomer retrieves the review a customer wrote for a product
func (r *reviewRepository) FindByProductAndCustomer(ctx context.Context, productID, customerID int64) (*domain.Review, error) {
	review, err := scanReview(r.db.QueryRowContext(ctx,
		reviewSelect+` WHERE r.product_id = $1 AND r.customer_id = $2`, productID, customerID), false)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to find review: %w", err)
	}
	return review, nil
}

// ListByProduct returns the reviews of a product, newest first
func (r *reviewRepository) ListByProduct(ctx context.Context, productID int64) ([]*domain.Review, error) {
	return r.list(ctx, reviewSelect+` WHERE r.product_id = $1 ORDER BY r.created_at DESC, r.id DESC`, false, productID)
}

// ListByCustomer returns a customer's reviews with their products, newest first
func (r *reviewRepository) ListByCustomer(ctx context.Context, customerID int64) ([]*domain.Review, error) {
	return r.list(ctx, reviewSelect+` WHERE r.customer_id = $1 ORDER BY r.created_at DESC, r.id DESC`, true, customerID)
}

// ListAll returns every review with author and product, newest first
func (r *reviewRepository) ListAll(ctx context.Context) ([]*domain.Review, error) {
	return r.list(ctx, reviewSelect+` ORDER BY r.created_at DESC, r.id DESC`, true)
}

func (r *reviewRepository) list(ctx context.Context, query string, withProduct bool, args ...any) ([]*domain.Review, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	reviews := []*domain.Review{}
	for rows.Next() {
		review, err := scanReview(rows, withProduct)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, review)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reviews: %w", err)
	}
	return reviews, nil
}

func lockProduct(ctx context.Context, tx *sql.Tx, productID int64) error {
	var id int64
	err := tx.QueryRowContext(ctx, `SELECT id FROM products WHERE id = $1 FOR UPDATE`, productID).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to lock product: %w", err)
	}
	return nil
}

func productOfReview(ctx context.Context, tx *sql.Tx, reviewID int64) (int64, error) {
	var productID int64
	err := tx.QueryRowContext(ctx, `SELECT product_id FROM reviews WHERE id = $1`, reviewID).Scan(&productID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrReviewNotFound
		}
		return 0, fmt.Errorf("failed to find review product: %w", err)
	}
	return productID, nil
}

// recomputeAggregate sets rating to the mean of all ratings rounded to one
// decimal, or 0 when the product has no reviews.
func recomputeAggregate(ctx context.Context, tx *sql.Tx, productID int64) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE products p
		SET rating = agg.rating, review_count = agg.review_count
		FROM (
			SELECT COALESCE(ROUND(AVG(rating)::numeric, 1), 0)::float8 AS rating,
			       COUNT(*)::int AS review_count
			FROM reviews
			WHERE product_id = $1
		) agg
		WHERE p.id = $1
	`, productID)
	if err != nil {
		return fmt.Errorf("failed to recompute product rating: %w", err)
	}
	return nil
}

func fillAuthor(ctx context.Context, tx *sql.Tx, review *domain.Review) error {
	review.Customer.ID = review.CustomerID
	err := tx.QueryRowContext(ctx, `SELECT name, avatar FROM customers WHERE id = $1`, review.CustomerID).
		Scan(&review.Customer.Name, &review.Customer.Avatar)
	if err != nil {
		return fmt.Errorf("failed to load review author: %w", err)
	}
	return nil
}
