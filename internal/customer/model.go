package customer

import (
	"time"

	"github.com/google/uuid"
)

// Customer represents a row in the customers table.
type Customer struct {
	ID        uuid.UUID
	Name      string
	Email     string
	ImageURL  *string
	CreatedAt time.Time
}

// Summary is a customer with invoice totals, in cents.
type Summary struct {
	ID            uuid.UUID
	Name          string
	Email         string
	ImageURL      *string
	TotalInvoices int
	TotalPending  int64
	TotalPaid     int64
}
