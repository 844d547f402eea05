package mutation

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/ledgerline/dashboard/internal/api/validation"
	"github.com/ledgerline/dashboard/internal/invoice"
	"github.com/ledgerline/dashboard/internal/viewcache"
)

const (
	msgCreateInvoiceInvalid = "Missing or Invalid Fields. Failed to Create Invoice."
	msgUpdateInvoiceInvalid = "Missing or Invalid Fields. Failed to Update Invoice."
	msgCreateInvoiceFailed  = "Database Error: Failed to Create Invoice."
	msgUpdateInvoiceFailed  = "Database Error: Failed to Update Invoice."
	msgDeleteInvoiceFailed  = "Database Error: Failed to Delete Invoice."
	msgInvoiceCreated       = "Invoice created successfully!"
	msgInvoiceUpdated       = "Invoice updated successfully!"
	msgInvoiceDeleted       = "Invoice Deleted Successfully."
	msgMissingInvoiceID     = "Missing Invoice ID."
	msgInvoiceNotFound      = "Invoice not found."
	msgCustomerGone         = "Selected customer does not exist."
)

// CreateInvoice validates the form and inserts a new invoice dated today.
func (s *Service) CreateInvoice(ctx context.Context, form validation.InvoiceForm) Result {
	in, errs := validation.ValidateInvoiceForm(form)
	if errs.HasErrors() {
		return unsuccessful(Rejected, msgCreateInvoiceInvalid, errs, form.Echo())
	}

	inv := &invoice.Invoice{
		CustomerID: in.CustomerID,
		Amount:     in.AmountCents,
		Status:     in.Status,
	}
	if err := s.invoices.Create(ctx, inv); err != nil {
		if errors.Is(err, invoice.ErrCustomerNotFound) {
			return unsuccessful(Rejected, msgCreateInvoiceInvalid,
				validation.FieldErrors{"customerId": {msgCustomerGone}}, form.Echo())
		}
		slog.Error("failed to create invoice", "error", err)
		return unsuccessful(Failed, msgCreateInvoiceFailed, nil, form.Echo())
	}

	s.invalidate(ctx, viewcache.ViewInvoices, viewcache.ViewDashboard)
	return committed(msgInvoiceCreated)
}

// UpdateInvoice validates the form and replaces the fields of invoice id.
func (s *Service) UpdateInvoice(ctx context.Context, id string, form validation.InvoiceForm) Result {
	invoiceID, res, ok := parseInvoiceID(id, form.Echo())
	if !ok {
		return res
	}

	in, errs := validation.ValidateInvoiceForm(form)
	if errs.HasErrors() {
		return unsuccessful(Rejected, msgUpdateInvoiceInvalid, errs, form.Echo())
	}

	_, err := s.invoices.Update(ctx, invoiceID, invoice.Fields{
		CustomerID: in.CustomerID,
		Amount:     in.AmountCents,
		Status:     in.Status,
	})
	if err != nil {
		switch {
		case errors.Is(err, invoice.ErrNotFound):
			return unsuccessful(NotFound, msgInvoiceNotFound, nil, form.Echo())
		case errors.Is(err, invoice.ErrCustomerNotFound):
			return unsuccessful(Rejected, msgUpdateInvoiceInvalid,
				validation.FieldErrors{"customerId": {msgCustomerGone}}, form.Echo())
		}
		slog.Error("failed to update invoice", "error", err, "id", invoiceID)
		return unsuccessful(Failed, msgUpdateInvoiceFailed, nil, form.Echo())
	}

	s.invalidate(ctx, viewcache.ViewInvoices, viewcache.ViewDashboard)
	return committed(msgInvoiceUpdated)
}

// DeleteInvoice removes invoice id. An empty id is rejected without touching
// the database.
func (s *Service) DeleteInvoice(ctx context.Context, id string) Result {
	invoiceID, res, ok := parseInvoiceID(id, nil)
	if !ok {
		return res
	}

	if err := s.invoices.Delete(ctx, invoiceID); err != nil {
		if errors.Is(err, invoice.ErrNotFound) {
			return unsuccessful(NotFound, msgInvoiceNotFound, nil, nil)
		}
		slog.Error("failed to delete invoice", "error", err, "id", invoiceID)
		return unsuccessful(Failed, msgDeleteInvoiceFailed, nil, nil)
	}

	s.invalidate(ctx, viewcache.ViewInvoices, viewcache.ViewDashboard)
	return committed(msgInvoiceDeleted)
}

func parseInvoiceID(id string, formData map[string]string) (uuid.UUID, Result, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		return uuid.Nil, unsuccessful(Rejected, msgMissingInvoiceID, nil, formData), false
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, unsuccessful(NotFound, msgInvoiceNotFound, nil, formData), false
	}
	return parsed, Result{}, true
}
