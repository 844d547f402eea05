package invoice

import (
	"time"

	"github.com/google/uuid"
)

// Status is the payment state of an invoice.
type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
)

// Valid reports whether s is a known invoice status.
func (s Status) Valid() bool {
	return s == StatusPending || s == StatusPaid
}

// ItemsPerPage is the page size of the filtered invoice listing.
const ItemsPerPage = 6

// Invoice represents a row in the invoices table. Amount is in cents.
type Invoice struct {
	ID         uuid.UUID
	CustomerID uuid.UUID
	Amount     int64
	Status     Status
	Date       time.Time
}

// Listing is an invoice joined with the customer it bills.
type Listing struct {
	ID       uuid.UUID
	Amount   int64
	Date     time.Time
	Status   Status
	Name     string
	Email    string
	ImageURL *string
}

// Fields holds the updatable fields of an invoice.
type Fields struct {
	CustomerID uuid.UUID
	Amount     int64
	Status     Status
}

// ListResult holds one page of a filtered invoice listing.
type ListResult struct {
	Invoices   []Listing
	Total      int
	Page       int
	TotalPages int
}
