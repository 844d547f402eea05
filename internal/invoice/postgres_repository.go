package invoice

import (
	"context"
	"errors"
	"fmt"
	"time"

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

// Create inserts a new invoice. A zero Date is stamped with the current UTC date.
func (r *PostgresRepository) Create(ctx context.Context, inv *Invoice) error {
	if inv.Date.IsZero() {
		inv.Date = time.Now().UTC()
	}

	query := `
		INSERT INTO invoices (customer_id, amount, status, date)
		VALUES ($1, $2, $3, $4)
		RETURNING id, date`

	err := r.pool.QueryRow(ctx, query,
		inv.CustomerID,
		inv.Amount,
		string(inv.Status),
		inv.Date,
	).Scan(&inv.ID, &inv.Date)
	if err != nil {
		return translateWriteError("inserting invoice", err)
	}

	return nil
}

// GetByID retrieves a single invoice by its UUID.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	query := `
		SELECT id, customer_id, amount, status, date
		FROM invoices
		WHERE id = $1`

	return r.scanOne(ctx, query, id)
}

const listingFilter = `
		FROM invoices
		JOIN customers ON invoices.customer_id = customers.id
		WHERE customers.name ILIKE $1
		   OR customers.email ILIKE $1
		   OR invoices.amount::text ILIKE $1
		   OR invoices.date::text ILIKE $1
		   OR invoices.status ILIKE $1`

// ListFiltered returns one page of invoices whose customer, amount, date or
// status matches query. Pages are 1-based and hold ItemsPerPage rows.
func (r *PostgresRepository) ListFiltered(ctx context.Context, query string, page int) (*ListResult, error) {
	if page < 1 {
		page = 1
	}
	pattern := "%" + query + "%"

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*)"+listingFilter, pattern).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting invoices: %w", err)
	}

	dataQuery := `
		SELECT invoices.id, invoices.amount, invoices.date, invoices.status,
		       customers.name, customers.email, customers.image_url` + listingFilter + `
		ORDER BY invoices.date DESC, invoices.id
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, dataQuery, pattern, ItemsPerPage, (page-1)*ItemsPerPage)
	if err != nil {
		return nil, fmt.Errorf("listing invoices: %w", err)
	}
	defer rows.Close()

	invoices := []Listing{}
	for rows.Next() {
		var l Listing
		var status string
		if err := rows.Scan(&l.ID, &l.Amount, &l.Date, &status, &l.Name, &l.Email, &l.ImageURL); err != nil {
			return nil, fmt.Errorf("scanning invoice row: %w", err)
		}
		l.Status = Status(status)
		invoices = append(invoices, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating invoice rows: %w", err)
	}

	return &ListResult{
		Invoices:   invoices,
		Total:      total,
		Page:       page,
		TotalPages: (total + ItemsPerPage - 1) / ItemsPerPage,
	}, nil
}

// Update replaces the customer, amount and status of an invoice.
func (r *PostgresRepository) Update(ctx context.Context, id uuid.UUID, fields Fields) (*Invoice, error) {
	query := `
		UPDATE invoices
		SET customer_id = $1, amount = $2, status = $3
		WHERE id = $4
		RETURNING id, customer_id, amount, status, date`

	inv, err := r.scanOne(ctx, query, fields.CustomerID, fields.Amount, string(fields.Status), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, translateWriteError("updating invoice", err)
	}
	return inv, nil
}

// Delete removes an invoice by its UUID.
func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM invoices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting invoice: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// scanOne scans a single Invoice row from a query. Returns ErrNotFound if no rows.
func (r *PostgresRepository) scanOne(ctx context.Context, query string, args ...any) (*Invoice, error) {
	var inv Invoice
	var status string
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&inv.ID, &inv.CustomerID, &inv.Amount, &status, &inv.Date,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning invoice row: %w", err)
	}
	inv.Status = Status(status)
	return &inv, nil
}

// translateWriteError maps constraint violations to package errors.
func translateWriteError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return ErrCustomerNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
