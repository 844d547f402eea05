package validation

import (
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/ledgerline/dashboard/internal/invoice"
	"github.com/ledgerline/dashboard/internal/money"
)

// InvoiceForm holds the raw invoice form fields as submitted.
type InvoiceForm struct {
	CustomerID string
	Amount     string
	Status     string
}

// Echo returns the raw values keyed by form field name, for redisplaying the form.
func (f InvoiceForm) Echo() map[string]string {
	return map[string]string{
		"customerId": f.CustomerID,
		"amount":     f.Amount,
		"status":     f.Status,
	}
}

// InvoiceInput is a validated invoice form with coerced values.
type InvoiceInput struct {
	CustomerID  uuid.UUID
	AmountCents int64
	Status      invoice.Status
}

// ValidateInvoiceForm validates and coerces an invoice form. The amount is read
// in dollars and converted to cents.
func ValidateInvoiceForm(f InvoiceForm) (InvoiceInput, FieldErrors) {
	errs := FieldErrors{}
	var in InvoiceInput

	customerID := strings.TrimSpace(f.CustomerID)
	if customerID == "" {
		errs.Add("customerId", "Please select a customer.")
	} else if id, err := uuid.Parse(customerID); err != nil {
		errs.Add("customerId", "Please select a valid customer.")
	} else {
		in.CustomerID = id
	}

	amount, err := money.ParseAmount(f.Amount)
	switch {
	case errors.Is(err, money.ErrInvalidAmount):
		errs.Add("amount", "Please enter a valid amount.")
	case !amount.IsPositive():
		errs.Add("amount", "Please enter an amount greater than $0.")
	default:
		cents, err := money.ToMinorUnits(amount)
		switch {
		case err != nil:
			errs.Add("amount", "Please enter an amount no greater than "+money.FormatUSD(money.MaxMinorUnits)+".")
		case cents < 1:
			errs.Add("amount", "Please enter an amount of at least $0.01.")
		default:
			in.AmountCents = cents
		}
	}

	status := invoice.Status(strings.TrimSpace(f.Status))
	if !status.Valid() {
		errs.Add("status", "Please select an invoice status.")
	} else {
		in.Status = status
	}

	return in, errs
}
