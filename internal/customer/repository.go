package customer

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a customer record is not found.
var ErrNotFound = errors.New("customer not found")

// ErrDuplicateEmail is returned when a customer with the same email already exists.
var ErrDuplicateEmail = errors.New("customer email already exists")

// Repository provides operations on the customers table.
type Repository interface {
	Create(ctx context.Context, c *Customer) error
	GetByID(ctx context.Context, id uuid.UUID) (*Customer, error)
	ListAll(ctx context.Context) ([]Customer, error)
	ListFiltered(ctx context.Context, query string) ([]Summary, error)
}
