package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"veganbite/internal/domain"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product, categoryIDs []int64) error
	Update(ctx context.Context, product *domain.Product, categoryIDs []int64) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `p.id, p.name, p.name_ja, p.description, p.description_ja, p.image_url,
	p.amazon_url, p.rakuten_url, p.yahoo_url, p.rating, p.review_count, p.created_at, p.updated_at`

func scanProduct(row interface{ Scan(...any) error }, p *domain.Product) error {
	var amazon, rakuten, yahoo sql.NullString
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.NameJa,
		&p.Description,
		&p.DescriptionJa,
		&p.ImageURL,
		&amazon,
		&rakuten,
		&yahoo,
		&p.Rating,
		&p.ReviewCount,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return err
	}
	p.AmazonURL = nullableString(amazon)
	p.RakutenURL = nullableString(rakuten)
	p.YahooURL = nullableString(yahoo)
	if p.Categories == nil {
		p.Categories = []domain.Category{}
	}
	return nil
}

func nullableString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

// Create inserts a product and links it to categoryIDs in one transaction.
// An unknown category id yields ErrCategoryNotFound.
func (r *productRepository) Create(ctx context.Context, product *domain.Product, categoryIDs []int64) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		query := `
			INSERT INTO products AS p (name, name_ja, description, description_ja, image_url,
				amazon_url, rakuten_url, yahoo_url)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING ` + productColumns

		row := tx.QueryRowContext(ctx, query,
			product.Name,
			product.NameJa,
			product.Description,
			product.DescriptionJa,
			product.ImageURL,
			product.AmazonURL,
			product.RakutenURL,
			product.YahooURL,
		)
		if err := scanProduct(row, product); err != nil {
			return fmt.Errorf("failed to create product: %w", err)
		}

		if err := linkCategories(ctx, tx, product.ID, categoryIDs); err != nil {
			return err
		}

		return loadCategories(ctx, tx, product)
	})
}

// Update rewrites the editable fields of a product and replaces its category
// set. Rating and review count are never written here.
func (r *productRepository) Update(ctx context.Context, product *domain.Product, categoryIDs []int64) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		query := `
			UPDATE products AS p
			SET name = $2, name_ja = $3, description = $4, description_ja = $5, image_url = $6,
			    amazon_url = $7, rakuten_url = $8, yahoo_url = $9
			WHERE p.id = $1
			RETURNING ` + productColumns

		row := tx.QueryRowContext(ctx, query,
			product.ID,
			product.Name,
			product.NameJa,
			product.Description,
			product.DescriptionJa,
			product.ImageURL,
			product.AmazonURL,
			product.RakutenURL,
			product.YahooURL,
		)
		if err := scanProduct(row, product); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrProductNotFound
			}
			return fmt.Errorf("failed to update product: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM product_categories WHERE product_id = $1`, product.ID); err != nil {
			return fmt.Errorf("failed to clear product categories: %w", err)
		}
		if err := linkCategories(ctx, tx, product.ID, categoryIDs); err != nil {
			return err
		}

		product.Categories = nil
		return loadCategories(ctx, tx, product)
	})
}

// Delete removes a product together with its favorites, reviews and category links.
func (r *productRepository) Delete(ctx context.Context, id int64) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		var locked int64
		err := tx.QueryRowContext(ctx, `SELECT id FROM products WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrProductNotFound
			}
			return fmt.Errorf("failed to lock product: %w", err)
		}

		for _, stmt := range []string{
			`DELETE FROM favorites WHERE product_id = $1`,
			`DELETE FROM reviews WHERE product_id = $1`,
			`DELETE FROM product_categories WHERE product_id = $1`,
			`DELETE FROM products WHERE id = $1`,
		} {
			if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
				return fmt.Errorf("failed to delete product: %w", err)
			}
		}
		return nil
	})
}

// FindByID retrieves a product with its categories
func (r *productRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	return findProduct(ctx, r.db, id)
}

func findProduct(ctx context.Context, q querier, id int64) (*domain.Product, error) {
	product := &domain.Product{}
	err := scanProduct(q.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products p WHERE p.id = $1`, id), product)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	if err := loadCategories(ctx, q, product); err != nil {
		return nil, err
	}
	return product, nil
}

// List retrieves products matching filter, newest first with id as a tiebreaker.
func (r *productRepository) List(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error) {
	conditions := []string{}
	args := []interface{}{}

	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		conditions = append(conditions, fmt.Sprintf(
			`EXISTS (SELECT 1 FROM product_categories pc WHERE pc.product_id = p.id AND pc.category_id = $%d)`, len(args)))
	}

	if filter.CategorySlug != "" {
		args = append(args, filter.CategorySlug)
		conditions = append(conditions, fmt.Sprintf(
			`EXISTS (SELECT 1 FROM product_categories pc JOIN categories c ON c.id = pc.category_id
			         WHERE pc.product_id = p.id AND c.slug = $%d)`, len(args)))
	}

	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, likePattern(search))
		conditions = append(conditions, fmt.Sprintf(`(p.name ILIKE $%d OR p.name_ja ILIKE $%d)`, len(args), len(args)))
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM products p
		%s
		ORDER BY p.created_at DESC, p.id ASC
	`, productColumns, whereClause)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product := &domain.Product{}
		if err := scanProduct(rows, product); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	if err := loadCategories(ctx, r.db, products...); err != nil {
		return nil, err
	}
	return products, nil
}

func linkCategories(ctx context.Context, tx *sql.Tx, productID int64, categoryIDs []int64) error {
	for _, categoryID := range categoryIDs {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO product_categories (product_id, category_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			productID, categoryID)
		if err != nil {
			if isForeignKeyViolation(err) {
				return ErrCategoryNotFound
			}
			return fmt.Errorf("failed to link product category: %w", err)
		}
	}
	return nil
}

// loadCategories fills the Categories of each product with a single query.
func loadCategories(ctx context.Context, q querier, products ...*domain.Product) error {
	if len(products) == 0 {
		return nil
	}

	byID := make(map[int64]*domain.Product, len(products))
	ids := make([]int64, 0, len(products))
	for _, p := range products {
		p.Categories = []domain.Category{}
		byID[p.ID] = p
		ids = append(ids, p.ID)
	}

	rows, err := q.QueryContext(ctx, `
		SELECT pc.product_id, c.id, c.name, c.name_ja, c.slug, c.created_at, c.updated_at
		FROM product_categories pc
		JOIN categories c ON c.id = pc.category_id
		WHERE pc.product_id = ANY($1)
		ORDER BY c.id ASC
	`, ids)
	if err != nil {
		return fmt.Errorf("failed to load product categories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var productID int64
		var c domain.Category
		if err := rows.Scan(&productID, &c.ID, &c.Name, &c.NameJa, &c.Slug, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return fmt.Errorf("failed to scan product category: %w", err)
		}
		if p, ok := byID[productID]; ok {
			p.Categories = append(p.Categories, c)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating product categories: %w", err)
	}
	return nil
}
