package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ledgerline/dashboard/internal/api/middleware"
	"github.com/ledgerline/dashboard/internal/api/response"
	"github.com/ledgerline/dashboard/internal/api/validation"
	"github.com/ledgerline/dashboard/internal/format"
	"github.com/ledgerline/dashboard/internal/invoice"
	"github.com/ledgerline/dashboard/internal/money"
	"github.com/ledgerline/dashboard/internal/mutation"
	"github.com/ledgerline/dashboard/internal/viewcache"
)

// InvoiceHandler handles the /invoices endpoints.
type InvoiceHandler struct {
	mutations *mutation.Service
	repo      invoice.Repository
	cache     viewcache.Cache
}

// NewInvoiceHandler creates a new InvoiceHandler. A nil cache disables caching.
func NewInvoiceHandler(mutations *mutation.Service, repo invoice.Repository, cache viewcache.Cache) *InvoiceHandler {
	return &InvoiceHandler{
		mutations: mutations,
		repo:      repo,
		cache:     orNop(cache),
	}
}

type invoiceListItem struct {
	ID              uuid.UUID      `json:"id"`
	Name            string         `json:"name"`
	Email           string         `json:"email"`
	ImageURL        *string        `json:"imageUrl"`
	Amount          int64          `json:"amount"`
	FormattedAmount string         `json:"formattedAmount"`
	Date            string         `json:"date"`
	FormattedDate   string         `json:"formattedDate"`
	Status          invoice.Status `json:"status"`
}

type invoicePage struct {
	Invoices   []invoiceListItem `json:"invoices"`
	Pages      []format.PageItem `json:"pages"`
	Total      int               `json:"-"`
	Page       int               `json:"-"`
	TotalPages int               `json:"-"`
}

// cachedInvoicePage keeps the pagination fields that the response moves into meta.
type cachedInvoicePage struct {
	Invoices   []invoiceListItem `json:"invoices"`
	Pages      []format.PageItem `json:"pages"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	TotalPages int               `json:"totalPages"`
}

type invoiceEditResponse struct {
	ID         uuid.UUID      `json:"id"`
	CustomerID uuid.UUID      `json:"customerId"`
	Amount     string         `json:"amount"`
	Status     invoice.Status `json:"status"`
	Date       string         `json:"date"`
}

// List handles GET /invoices?query=&page=.
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	query := strings.TrimSpace(r.URL.Query().Get("query"))
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		p, err := strconv.Atoi(raw)
		if err != nil || p < 1 {
			response.Err(w, http.StatusBadRequest, "INVALID_PAGE", "page must be a positive integer", requestID)
			return
		}
		page = p
	}

	key := fmt.Sprintf("q=%s&p=%d", query, page)
	cached, err := cachedView(r.Context(), h.cache, viewcache.ViewInvoices, key, func(ctx context.Context) (cachedInvoicePage, error) {
		return h.loadPage(ctx, query, page)
	})
	if err != nil {
		slog.Error("failed to list invoices", "error", err, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch invoices.", requestID)
		return
	}

	data := invoicePage(cached)
	response.SuccessPage(w, data, response.Page{
		Total:      data.Total,
		Page:       data.Page,
		Limit:      invoice.ItemsPerPage,
		TotalPages: data.TotalPages,
	}, requestID)
}

func (h *InvoiceHandler) loadPage(ctx context.Context, query string, page int) (cachedInvoicePage, error) {
	result, err := h.repo.ListFiltered(ctx, query, page)
	if err != nil {
		return cachedInvoicePage{}, err
	}

	items := make([]invoiceListItem, 0, len(result.Invoices))
	for _, l := range result.Invoices {
		items = append(items, invoiceListItem{
			ID:              l.ID,
			Name:            l.Name,
			Email:           l.Email,
			ImageURL:        l.ImageURL,
			Amount:          l.Amount,
			FormattedAmount: money.FormatUSD(l.Amount),
			Date:            l.Date.Format(time.DateOnly),
			FormattedDate:   format.Date(l.Date),
			Status:          l.Status,
		})
	}

	return cachedInvoicePage{
		Invoices:   items,
		Pages:      format.Pagination(result.Page, result.TotalPages),
		Total:      result.Total,
		Page:       result.Page,
		TotalPages: result.TotalPages,
	}, nil
}

// GetByID handles GET /invoices/{id}, returning the invoice for editing with
// the amount in dollars.
func (h *InvoiceHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.Err(w, http.StatusNotFound, "NOT_FOUND", "Invoice not found.", requestID)
		return
	}

	inv, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, invoice.ErrNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Invoice not found.", requestID)
			return
		}
		slog.Error("failed to get invoice", "error", err, "id", id, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch invoice.", requestID)
		return
	}

	response.Success(w, http.StatusOK, invoiceEditResponse{
		ID:         inv.ID,
		CustomerID: inv.CustomerID,
		Amount:     money.FromMinorUnits(inv.Amount).StringFixed(2),
		Status:     inv.Status,
		Date:       inv.Date.Format(time.DateOnly),
	}, requestID)
}

// Create handles POST /invoices.
func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	res := h.mutations.CreateInvoice(r.Context(), invoiceForm(r))
	writeResult(w, r, res, http.StatusCreated)
}

// Update handles PUT /invoices/{id}.
func (h *InvoiceHandler) Update(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	res := h.mutations.UpdateInvoice(r.Context(), chi.URLParam(r, "id"), invoiceForm(r))
	writeResult(w, r, res, http.StatusOK)
}

// Delete handles DELETE /invoices/{id}.
func (h *InvoiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	res := h.mutations.DeleteInvoice(r.Context(), chi.URLParam(r, "id"))
	writeResult(w, r, res, http.StatusOK)
}

func invoiceForm(r *http.Request) validation.InvoiceForm {
	return validation.InvoiceForm{
		CustomerID: r.FormValue("customerId"),
		Amount:     r.FormValue("amount"),
		Status:     r.FormValue("status"),
	}
}
