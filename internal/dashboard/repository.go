package dashboard

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

// Repository provides the read-only aggregate queries behind the dashboard.
type Repository interface {
	Cards(ctx context.Context) (*Cards, error)
	Revenue(ctx context.Context) ([]Revenue, error)
	LatestInvoices(ctx context.Context, limit int) ([]LatestInvoice, error)
}

// PostgresRepository implements Repository using pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Repository backed by the given connection pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &PostgresRepository{pool: pool}
}

// Cards runs the three card queries concurrently.
func (r *PostgresRepository) Cards(ctx context.Context) (*Cards, error) {
	var c Cards
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM invoices`).Scan(&c.NumberOfInvoices); err != nil {
			return fmt.Errorf("counting invoices: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM customers`).Scan(&c.NumberOfCustomers); err != nil {
			return fmt.Errorf("counting customers: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		query := `
			SELECT COALESCE(SUM(CASE WHEN status = 'paid' THEN amount ELSE 0 END), 0),
			       COALESCE(SUM(CASE WHEN status = 'pending' THEN amount ELSE 0 END), 0)
			FROM invoices`
		if err := r.pool.QueryRow(ctx, query).Scan(&c.TotalPaid, &c.TotalPending); err != nil {
			return fmt.Errorf("summing invoices: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Revenue returns the monthly revenue series in table order.
func (r *PostgresRepository) Revenue(ctx context.Context) ([]Revenue, error) {
	rows, err := r.pool.Query(ctx, `SELECT month, revenue FROM revenue ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("querying revenue: %w", err)
	}
	defer rows.Close()

	revenue := []Revenue{}
	for rows.Next() {
		var rv Revenue
		if err := rows.Scan(&rv.Month, &rv.Revenue); err != nil {
			return nil, fmt.Errorf("scanning revenue row: %w", err)
		}
		revenue = append(revenue, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating revenue rows: %w", err)
	}

	return revenue, nil
}

// LatestInvoices returns the most recent invoices, newest first.
func (r *PostgresRepository) LatestInvoices(ctx context.Context, limit int) ([]LatestInvoice, error) {
	query := `
		SELECT invoices.id, invoices.amount, customers.name, customers.email, customers.image_url
		FROM invoices
		JOIN customers ON invoices.customer_id = customers.id
		ORDER BY invoices.date DESC, invoices.id
		LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("querying latest invoices: %w", err)
	}
	defer rows.Close()

	latest := []LatestInvoice{}
	for rows.Next() {
		var li LatestInvoice
		if err := rows.Scan(&li.ID, &li.Amount, &li.Name, &li.Email, &li.ImageURL); err != nil {
			return nil, fmt.Errorf("scanning latest invoice row: %w", err)
		}
		latest = append(latest, li)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating latest invoice rows: %w", err)
	}

	return latest, nil
}
