package handler

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ledgerline/dashboard/internal/api/middleware"
	"github.com/ledgerline/dashboard/internal/api/response"
	"github.com/ledgerline/dashboard/internal/api/validation"
	"github.com/ledgerline/dashboard/internal/customer"
	"github.com/ledgerline/dashboard/internal/money"
	"github.com/ledgerline/dashboard/internal/mutation"
	"github.com/ledgerline/dashboard/internal/upload"
	"github.com/ledgerline/dashboard/internal/viewcache"
)

// CustomerHandler handles the /customers endpoints.
type CustomerHandler struct {
	mutations *mutation.Service
	repo      customer.Repository
	cache     viewcache.Cache
}

// NewCustomerHandler creates a new CustomerHandler. A nil cache disables caching.
func NewCustomerHandler(mutations *mutation.Service, repo customer.Repository, cache viewcache.Cache) *CustomerHandler {
	return &CustomerHandler{
		mutations: mutations,
		repo:      repo,
		cache:     orNop(cache),
	}
}

type customerListItem struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	ImageURL      *string   `json:"imageUrl"`
	TotalInvoices int       `json:"totalInvoices"`
	TotalPending  string    `json:"totalPending"`
	TotalPaid     string    `json:"totalPaid"`
}

type customerOption struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// List handles GET /customers?query=.
func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	query := strings.TrimSpace(r.URL.Query().Get("query"))

	items, err := cachedView(r.Context(), h.cache, viewcache.ViewCustomers, "q="+query, func(ctx context.Context) ([]customerListItem, error) {
		summaries, err := h.repo.ListFiltered(ctx, query)
		if err != nil {
			return nil, err
		}
		items := make([]customerListItem, 0, len(summaries))
		for _, s := range summaries {
			items = append(items, customerListItem{
				ID:            s.ID,
				Name:          s.Name,
				Email:         s.Email,
				ImageURL:      s.ImageURL,
				TotalInvoices: s.TotalInvoices,
				TotalPending:  money.FormatUSD(s.TotalPending),
				TotalPaid:     money.FormatUSD(s.TotalPaid),
			})
		}
		return items, nil
	})
	if err != nil {
		slog.Error("failed to list customers", "error", err, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch customer table.", requestID)
		return
	}

	response.Success(w, http.StatusOK, items, requestID)
}

// Options handles GET /customers/options, the id and name list used by the
// invoice form's customer select.
func (h *CustomerHandler) Options(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	options, err := cachedView(r.Context(), h.cache, viewcache.ViewCustomers, "options", func(ctx context.Context) ([]customerOption, error) {
		customers, err := h.repo.ListAll(ctx)
		if err != nil {
			return nil, err
		}
		options := make([]customerOption, 0, len(customers))
		for _, c := range customers {
			options = append(options, customerOption{ID: c.ID, Name: c.Name})
		}
		return options, nil
	})
	if err != nil {
		slog.Error("failed to list customer options", "error", err, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch all customers.", requestID)
		return
	}

	response.Success(w, http.StatusOK, options, requestID)
}

// Create handles POST /customers with name, email and imageFile fields.
func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}

	image, closeImage := formFile(r, upload.FieldName)
	defer closeImage()

	res := h.mutations.CreateCustomer(r.Context(), validation.CustomerForm{
		Name:  r.FormValue("name"),
		Email: r.FormValue("email"),
	}, image)
	writeResult(w, r, res, http.StatusCreated)
}

// ImageHandler serves images written by the local image store.
type ImageHandler struct {
	files fs.FS
}

// NewImageHandler creates an ImageHandler serving files from dir.
func NewImageHandler(dir string) *ImageHandler {
	return &ImageHandler{files: os.DirFS(dir)}
}

// ServeHTTP handles GET /customers/{filename}.
func (h *ImageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")
	if !fs.ValidPath(name) || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		response.Err(w, http.StatusNotFound, "NOT_FOUND", "Image not found", middleware.GetRequestID(r.Context()))
		return
	}
	if _, err := fs.Stat(h.files, name); err != nil {
		response.Err(w, http.StatusNotFound, "NOT_FOUND", "Image not found", middleware.GetRequestID(r.Context()))
		return
	}
	http.ServeFileFS(w, r, h.files, name)
}
