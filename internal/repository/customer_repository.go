package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"veganbite/internal/domain"
)

var (
	ErrCustomerNotFound = errors.New("customer not found")
)

// CustomerRepository defines the interface for customer data access
type CustomerRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.Customer, error)
	// UpsertByGoogleID creates the customer on first sign-in and refreshes
	// name, email and avatar on later ones.
	UpsertByGoogleID(ctx context.Context, customer *domain.Customer) error
	ListManaged(ctx context.Context) ([]*domain.ManagedCustomer, error)
	FindManagedByID(ctx context.Context, id int64) (*domain.ManagedCustomer, error)
	// Moderate locks the customer row, applies change and persists the
	// resulting status fields when change succeeds.
	Moderate(ctx context.Context, id int64, change func(*domain.Customer) error) (*domain.ManagedCustomer, error)
}

type customerRepository struct {
	db *sql.DB
}

// NewCustomerRepository creates a new instance of CustomerRepository
func NewCustomerRepository(db *sql.DB) CustomerRepository {
	return &customerRepository{db: db}
}

const customerColumns = `c.id, c.google_id, c.name, c.email, c.avatar, c.status, c.status_reason,
	c.suspended_until, c.created_at, c.updated_at`

func scanCustomer(row interface{ Scan(...any) error }, c *domain.Customer, extra ...any) error {
	var reason sql.NullString
	var until sql.NullTime
	dest := []any{
		&c.ID, &c.GoogleID, &c.Name, &c.Email, &c.Avatar, &c.Status, &reason,
		&until, &c.MemberSince, &c.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return err
	}
	c.StatusReason = nullableString(reason)
	c.SuspendedUntil = nil
	if until.Valid {
		t := until.Time
		c.SuspendedUntil = &t
	}
	return nil
}

// FindByID retrieves a customer by ID
func (r *customerRepository) FindByID(ctx context.Context, id int64) (*domain.Customer, error) {
	customer := &domain.Customer{}
	err := scanCustomer(r.db.QueryRowContext(ctx, `SELECT `+customerColumns+` FROM customers c WHERE c.id = $1`, id), customer)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to find customer by ID: %w", err)
	}
	return customer, nil
}

func (r *customerRepository) UpsertByGoogleID(ctx context.Context, customer *domain.Customer) error {
	query := `
		INSERT INTO customers AS c (google_id, name, email, avatar)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (google_id) DO UPDATE
		SET name = EXCLUDED.name, email = EXCLUDED.email, avatar = EXCLUDED.avatar
		RETURNING ` + customerColumns

	row := r.db.QueryRowContext(ctx, query, customer.GoogleID, customer.Name, customer.Email, customer.Avatar)
	if err := scanCustomer(row, customer); err != nil {
		return fmt.Errorf("failed to upsert customer: %w", err)
	}
	return nil
}

const managedCustomerSelect = `
	SELECT ` + customerColumns + `,
	       (SELECT COUNT(*) FROM reviews r WHERE r.customer_id = c.id) AS review_count
	FROM customers c`

// ListManaged returns every customer with their review count, ordered by id
func (r *customerRepository) ListManaged(ctx context.Context) ([]*domain.ManagedCustomer, error) {
	rows, err := r.db.QueryContext(ctx, managedCustomerSelect+` ORDER BY c.id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	customers := []*domain.ManagedCustomer{}
	for rows.Next() {
		mc := &domain.ManagedCustomer{}
		if err := scanCustomer(rows, &mc.Customer, &mc.ReviewCount); err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, mc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating customers: %w", err)
	}
	return customers, nil
}

// FindManagedByID retrieves the admin view of a customer
func (r *customerRepository) FindManagedByID(ctx context.Context, id int64) (*domain.ManagedCustomer, error) {
	return findManaged(ctx, r.db, id)
}

func findManaged(ctx context.Context, q querier, id int64) (*domain.ManagedCustomer, error) {
	mc := &domain.ManagedCustomer{}
	err := scanCustomer(q.QueryRowContext(ctx, managedCustomerSelect+` WHERE c.id = $1`, id), &mc.Customer, &mc.ReviewCount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to find customer by ID: %w", err)
	}
	return mc, nil
}

func (r *customerRepository) Moderate(ctx context.Context, id int64, change func(*domain.Customer) error) (*domain.ManagedCustomer, error) {
	var result *domain.ManagedCustomer
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		customer := &domain.Customer{}
		err := scanCustomer(tx.QueryRowContext(ctx,
			`SELECT `+customerColumns+` FROM customers c WHERE c.id = $1 FOR UPDATE`, id), customer)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrCustomerNotFound
			}
			return fmt.Errorf("failed to lock customer: %w", err)
		}

		if err := change(customer); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE customers
			SET status = $2, status_reason = $3, suspended_until = $4
			WHERE id = $1
		`, customer.ID, customer.Status, customer.StatusReason, customer.SuspendedUntil)
		if err != nil {
			return fmt.Errorf("failed to update customer status: %w", err)
		}

		result, err = findManaged(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
