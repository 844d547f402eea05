package mutation

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ledgerline/dashboard/internal/api/validation"
	"github.com/ledgerline/dashboard/internal/customer"
	"github.com/ledgerline/dashboard/internal/upload"
	"github.com/ledgerline/dashboard/internal/viewcache"
)

const (
	msgCreateCustomerInvalid = "Missing or Invalid Fields. Failed to Create Customer."
	msgCreateCustomerFailed  = "Database Error: Failed to Create Customer."
	msgCustomerCreated       = "Customer created successfully!"
	msgDuplicateEmail        = "A customer with this email already exists."
)

// CreateCustomer validates the text fields and the image together, stores the
// image, and inserts the customer. The image is only stored once every field
// is valid, and is removed again if the insert fails.
func (s *Service) CreateCustomer(ctx context.Context, form validation.CustomerForm, image *upload.File) Result {
	in, errs := validation.ValidateCustomerForm(form)
	for _, msg := range s.images.Validate(image) {
		errs.Add(upload.FieldName, msg)
	}
	if errs.HasErrors() {
		return unsuccessful(Rejected, msgCreateCustomerInvalid, errs, form.Echo())
	}

	url, err := s.images.Ingest(ctx, image)
	if err != nil {
		var verr *upload.ValidationError
		if errors.As(err, &verr) {
			return unsuccessful(Rejected, msgCreateCustomerInvalid,
				validation.FieldErrors{upload.FieldName: verr.Messages}, form.Echo())
		}
		slog.Error("failed to store customer image", "error", err, "file", image.Name)
		return unsuccessful(StoreFailed, upload.MsgStoreFailed, nil, form.Echo())
	}

	c := &customer.Customer{
		Name:     in.Name,
		Email:    in.Email,
		ImageURL: &url,
	}
	if err := s.customers.Create(ctx, c); err != nil {
		s.discardImage(ctx, url)
		if errors.Is(err, customer.ErrDuplicateEmail) {
			return unsuccessful(Rejected, msgCreateCustomerInvalid,
				validation.FieldErrors{"email": {msgDuplicateEmail}}, form.Echo())
		}
		slog.Error("failed to create customer", "error", err)
		return unsuccessful(Failed, msgCreateCustomerFailed, nil, form.Echo())
	}

	s.invalidate(ctx, viewcache.ViewCustomers, viewcache.ViewInvoices, viewcache.ViewDashboard)
	return committed(msgCustomerCreated)
}

func (s *Service) discardImage(ctx context.Context, url string) {
	if err := s.images.Discard(ctx, url); err != nil {
		slog.Warn("failed to remove orphaned customer image", "error", err, "url", url)
	}
}
