package customer

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository implements Repository using pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Repository backed by the given connection pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &PostgresRepository{pool: pool}
}

// Create inserts a new customer record.
func (r *PostgresRepository) Create(ctx context.Context, c *Customer) error {
	query := `
		INSERT INTO customers (name, email, image_url)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, query, c.Name, c.Email, c.ImageURL).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("inserting customer: %w", err)
	}

	return nil
}

// GetByID retrieves a single customer by its UUID.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Customer, error) {
	query := `
		SELECT id, name, email, image_url, created_at
		FROM customers
		WHERE id = $1`

	var c Customer
	err := r.pool.QueryRow(ctx, query, id).Scan(&c.ID, &c.Name, &c.Email, &c.ImageURL, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying customer: %w", err)
	}

	return &c, nil
}

// ListAll retrieves every customer ordered by name, for selection lists.
func (r *PostgresRepository) ListAll(ctx context.Context) ([]Customer, error) {
	query := `
		SELECT id, name, email, image_url, created_at
		FROM customers
		ORDER BY name ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing customers: %w", err)
	}
	defer rows.Close()

	customers := []Customer{}
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.ImageURL, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning customer row: %w", err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating customer rows: %w", err)
	}

	return customers, nil
}

// ListFiltered retrieves customers whose name or email matches query, with
// their invoice count and pending/paid totals.
func (r *PostgresRepository) ListFiltered(ctx context.Context, query string) ([]Summary, error) {
	sql := `
		SELECT customers.id, customers.name, customers.email, customers.image_url,
		       COUNT(invoices.id),
		       COALESCE(SUM(CASE WHEN invoices.status = 'pending' THEN invoices.amount ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN invoices.status = 'paid' THEN invoices.amount ELSE 0 END), 0)
		FROM customers
		LEFT JOIN invoices ON customers.id = invoices.customer_id
		WHERE customers.name ILIKE $1 OR customers.email ILIKE $1
		GROUP BY customers.id, customers.name, customers.email, customers.image_url
		ORDER BY customers.name ASC`

	rows, err := r.pool.Query(ctx, sql, "%"+query+"%")
	if err != nil {
		return nil, fmt.Errorf("filtering customers: %w", err)
	}
	defer rows.Close()

	summaries := []Summary{}
	for rows.Next() {
		var s Summary
		err := rows.Scan(&s.ID, &s.Name, &s.Email, &s.ImageURL,
			&s.TotalInvoices, &s.TotalPending, &s.TotalPaid)
		if err != nil {
			return nil, fmt.Errorf("scanning customer summary row: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating customer summary rows: %w", err)
	}

	return summaries, nil
}
