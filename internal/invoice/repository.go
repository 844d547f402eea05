package invoice

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when an invoice record is not found.
var ErrNotFound = errors.New("invoice not found")

// ErrCustomerNotFound is returned when the referenced customer does not exist.
var ErrCustomerNotFound = errors.New("invoice customer not found")

// Repository provides CRUD operations on the invoices table.
type Repository interface {
	Create(ctx context.Context, inv *Invoice) error
	GetByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	ListFiltered(ctx context.Context, query string, page int) (*ListResult, error)
	Update(ctx context.Context, id uuid.UUID, fields Fields) (*Invoice, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
