package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"veganbite/internal/domain"
)

var (
	ErrCategoryNotFound      = errors.New("category not found")
	ErrCategoryAlreadyExists = errors.New("category with this slug already exists")
)

// CategoryRepository defines the interface for category data access
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	Update(ctx context.Context, category *domain.Category) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]*domain.Category, error)
	FindByID(ctx context.Context, id int64) (*domain.Category, error)
	FindByIDs(ctx context.Context, ids []int64) ([]*domain.Category, error)
	FindBySlug(ctx context.Context, slug string) (*domain.Category, error)
}

type categoryRepository struct {
	db *sql.DB
}

// NewCategoryRepository creates a new instance of CategoryRepository
func NewCategoryRepository(db *sql.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

const categoryColumns = `id, name, name_ja, slug, created_at, updated_at`

func scanCategory(row interface{ Scan(...any) error }, c *domain.Category) error {
	return row.Scan(&c.ID, &c.Name, &c.NameJa, &c.Slug, &c.CreatedAt, &c.UpdatedAt)
}

// Create inserts a category. When category.Slug is taken, a numeric suffix is
// appended until a free slug is found.
func (r *categoryRepository) Create(ctx context.Context, category *domain.Category) error {
	base := category.Slug
	if base == "" {
		base = "category"
	}

	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		slug, err := uniqueSlug(ctx, tx, base, 0)
		if err != nil {
			return err
		}

		query := `
			INSERT INTO categories (name, name_ja, slug)
			VALUES ($1, $2, $3)
			RETURNING ` + categoryColumns

		err = scanCategory(tx.QueryRowContext(ctx, query, category.Name, category.NameJa, slug), category)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrCategoryAlreadyExists
			}
			return fmt.Errorf("failed to create category: %w", err)
		}
		return nil
	})
}

// Update rewrites the names of a category. The slug is kept stable unless
// category.Slug changed, in which case it is made unique again.
func (r *categoryRepository) Update(ctx context.Context, category *domain.Category) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		var current string
		err := tx.QueryRowContext(ctx, `SELECT slug FROM categories WHERE id = $1 FOR UPDATE`, category.ID).Scan(&current)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrCategoryNotFound
			}
			return fmt.Errorf("failed to lock category: %w", err)
		}

		slug := current
		if category.Slug != "" && category.Slug != current {
			if slug, err = uniqueSlug(ctx, tx, category.Slug, category.ID); err != nil {
				return err
			}
		}

		query := `
			UPDATE categories
			SET name = $2, name_ja = $3, slug = $4
			WHERE id = $1
			RETURNING ` + categoryColumns

		err = scanCategory(tx.QueryRowContext(ctx, query, category.ID, category.Name, category.NameJa, slug), category)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrCategoryAlreadyExists
			}
			return fmt.Errorf("failed to update category: %w", err)
		}
		return nil
	})
}

// Delete unlinks the category from every product and removes it. Products are
// never deleted.
func (r *categoryRepository) Delete(ctx context.Context, id int64) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM product_categories WHERE category_id = $1`, id); err != nil {
			return fmt.Errorf("failed to unlink category: %w", err)
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete category: %w", err)
		}
		return checkRowsAffected(result, ErrCategoryNotFound)
	})
}

// List retrieves all categories ordered by id
func (r *categoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	return collectCategories(rows)
}

// FindByID retrieves a category by ID
func (r *categoryRepository) FindByID(ctx context.Context, id int64) (*domain.Category, error) {
	return r.findOne(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
}

// FindBySlug retrieves a category by its slug
func (r *categoryRepository) FindBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	return r.findOne(ctx, `SELECT `+categoryColumns+` FROM categories WHERE slug = $1`, slug)
}

// FindByIDs returns the categories that exist among ids, ordered by id.
func (r *categoryRepository) FindByIDs(ctx context.Context, ids []int64) ([]*domain.Category, error) {
	if len(ids) == 0 {
		return []*domain.Category{}, nil
	}

	rows, err := r.db.QueryContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = ANY($1) ORDER BY id ASC`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to find categories by IDs: %w", err)
	}
	defer rows.Close()

	return collectCategories(rows)
}

func (r *categoryRepository) findOne(ctx context.Context, query string, arg any) (*domain.Category, error) {
	category := &domain.Category{}
	if err := scanCategory(r.db.QueryRowContext(ctx, query, arg), category); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to find category: %w", err)
	}
	return category, nil
}

func collectCategories(rows *sql.Rows) ([]*domain.Category, error) {
	categories := []*domain.Category{}
	for rows.Next() {
		category := &domain.Category{}
		if err := scanCategory(rows, category); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}
	return categories, nil
}

// uniqueSlug returns base, or base-2, base-3, ... whichever is not used by
// another category than exceptID.
func uniqueSlug(ctx context.Context, q querier, base string, exceptID int64) (string, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT slug FROM categories WHERE (slug = $1 OR slug LIKE $2) AND id <> $3`,
		base, base+"-%", exceptID)
	if err != nil {
		return "", fmt.Errorf("failed to check category slug: %w", err)
	}
	defer rows.Close()

	taken := map[string]bool{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return "", fmt.Errorf("failed to scan category slug: %w", err)
		}
		taken[s] = true
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("error iterating category slugs: %w", err)
	}

	slug := base
	for n := 2; taken[slug]; n++ {
		slug = base + "-" + strconv.Itoa(n)
	}
	return slug, nil
}
