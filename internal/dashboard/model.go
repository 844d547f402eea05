package dashboard

import "github.com/google/uuid"

// Cards holds the headline figures of the dashboard. Sums are in cents.
type Cards struct {
	NumberOfCustomers int
	NumberOfInvoices  int
	TotalPaid         int64
	TotalPending      int64
}

// Revenue is one month of the revenue chart, in whole dollars.
type Revenue struct {
	Month   string
	Revenue int
}

// LatestInvoice is a recent invoice with its customer.
type LatestInvoice struct {
	ID       uuid.UUID
	Amount   int64
	Name     string
	Email    string
	ImageURL *string
}
