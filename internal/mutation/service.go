package mutation

import (
	"context"
	"log/slog"

	"github.com/ledgerline/dashboard/internal/customer"
	"github.com/ledgerline/dashboard/internal/invoice"
	"github.com/ledgerline/dashboard/internal/upload"
	"github.com/ledgerline/dashboard/internal/viewcache"
)

// Service runs the mutation operations against the repositories.
type Service struct {
	invoices  invoice.Repository
	customers customer.Repository
	images    *upload.Ingester
	views     viewcache.Invalidator
}

// NewService creates a mutation Service. A nil views disables invalidation.
func NewService(invoices invoice.Repository, customers customer.Repository, images *upload.Ingester, views viewcache.Invalidator) *Service {
	if views == nil {
		views = viewcache.Nop{}
	}
	return &Service{
		invoices:  invoices,
		customers: customers,
		images:    images,
		views:     views,
	}
}

// invalidate drops cached views after a committed write. A failure here does
// not undo the write, so it is only logged.
func (s *Service) invalidate(ctx context.Context, views ...string) {
	if err := s.views.Invalidate(ctx, views...); err != nil {
		slog.Warn("failed to invalidate views", "error", err, "views", views)
	}
}
