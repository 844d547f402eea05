package api

import (
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/go-chi/chi/v5"

	"github.com/ledgerline/dashboard/internal/api/handler"
	"github.com/ledgerline/dashboard/internal/api/middleware"
	"github.com/ledgerline/dashboard/internal/auth"
	"github.com/ledgerline/dashboard/internal/customer"
	"github.com/ledgerline/dashboard/internal/dashboard"
	"github.com/ledgerline/dashboard/internal/invoice"
	"github.com/ledgerline/dashboard/internal/mutation"
	"github.com/ledgerline/dashboard/internal/viewcache"
)

// Sessions issues and verifies session tokens.
type Sessions interface {
	handler.SessionIssuer
	middleware.SessionVerifier
}

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	DBPinger    handler.DBPinger
	Version     string
	OpenAPISpec []byte

	Mutations *mutation.Service
	Invoices  invoice.Repository
	Customers customer.Repository
	Dashboard dashboard.Repository
	Views     viewcache.Cache

	Authenticator auth.Authenticator
	Sessions      Sessions

	// ImageDir is served under /customers/{filename} when the local image
	// store is in use. Empty disables the route.
	ImageDir string
}

// NewRouter creates and configures a Chi router with all middleware and routes.
// Data routes require a session when Sessions is set.
func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery)
	r.Use(chimiddleware.Logger)

	healthHandler := handler.NewHealthHandler(deps.DBPinger, deps.Version)
	r.Get("/health", healthHandler.ServeHTTP)

	if len(deps.OpenAPISpec) > 0 {
		openapiHandler := handler.NewOpenAPIHandler(deps.OpenAPISpec, deps.Version)
		r.Get("/openapi.json", openapiHandler.ServeHTTP)
	}

	if deps.Authenticator != nil && deps.Sessions != nil {
		authHandler := handler.NewAuthHandler(deps.Authenticator, deps.Sessions)
		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
	}

	if deps.ImageDir != "" {
		r.Get("/customers/{filename}", handler.NewImageHandler(deps.ImageDir).ServeHTTP)
	}

	r.Group(func(r chi.Router) {
		if deps.Sessions != nil {
			r.Use(middleware.RequireSession(deps.Sessions))
		}

		if deps.Dashboard != nil {
			r.Get("/dashboard", handler.NewDashboardHandler(deps.Dashboard, deps.Views).ServeHTTP)
		}

		if deps.Mutations != nil && deps.Invoices != nil {
			invoiceHandler := handler.NewInvoiceHandler(deps.Mutations, deps.Invoices, deps.Views)
			r.Route("/invoices", func(r chi.Router) {
				r.Get("/", invoiceHandler.List)
				r.Post("/", invoiceHandler.Create)
				r.Get("/{id}", invoiceHandler.GetByID)
				r.Put("/{id}", invoiceHandler.Update)
				r.Delete("/{id}", invoiceHandler.Delete)
			})
		}

		if deps.Mutations != nil && deps.Customers != nil {
			customerHandler := handler.NewCustomerHandler(deps.Mutations, deps.Customers, deps.Views)
			r.Get("/customers", customerHandler.List)
			r.Post("/customers", customerHandler.Create)
			r.Get("/customers/options", customerHandler.Options)
		}
	})

	return r
}
