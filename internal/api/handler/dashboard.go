package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ledgerline/dashboard/internal/api/middleware"
	"github.com/ledgerline/dashboard/internal/api/response"
	"github.com/ledgerline/dashboard/internal/dashboard"
	"github.com/ledgerline/dashboard/internal/format"
	"github.com/ledgerline/dashboard/internal/money"
	"github.com/ledgerline/dashboard/internal/viewcache"
)

// latestInvoicesLimit is the number of invoices in the "latest" panel.
const latestInvoicesLimit = 5

// DashboardHandler handles GET /dashboard.
type DashboardHandler struct {
	repo  dashboard.Repository
	cache viewcache.Cache
}

// NewDashboardHandler creates a new DashboardHandler. A nil cache disables caching.
func NewDashboardHandler(repo dashboard.Repository, cache viewcache.Cache) *DashboardHandler {
	return &DashboardHandler{repo: repo, cache: orNop(cache)}
}

type cardsResponse struct {
	NumberOfCustomers    int    `json:"numberOfCustomers"`
	NumberOfInvoices     int    `json:"numberOfInvoices"`
	TotalPaidInvoices    string `json:"totalPaidInvoices"`
	TotalPendingInvoices string `json:"totalPendingInvoices"`
}

type revenueMonth struct {
	Month   string `json:"month"`
	Revenue int    `json:"revenue"`
}

type revenueResponse struct {
	Months      []revenueMonth `json:"months"`
	YAxisLabels []string       `json:"yAxisLabels"`
	TopLabel    int            `json:"topLabel"`
}

type latestInvoiceResponse struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	ImageURL *string   `json:"imageUrl"`
	Amount   string    `json:"amount"`
}

type dashboardResponse struct {
	Cards          cardsResponse           `json:"cards"`
	Revenue        revenueResponse         `json:"revenue"`
	LatestInvoices []latestInvoiceResponse `json:"latestInvoices"`
}

// ServeHTTP returns the cards, revenue chart and latest invoices.
func (h *DashboardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	data, err := cachedView(r.Context(), h.cache, viewcache.ViewDashboard, "overview", h.load)
	if err != nil {
		slog.Error("failed to load dashboard", "error", err, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch dashboard data.", requestID)
		return
	}

	response.Success(w, http.StatusOK, data, requestID)
}

func (h *DashboardHandler) load(ctx context.Context) (dashboardResponse, error) {
	var (
		cards   *dashboard.Cards
		revenue []dashboard.Revenue
		latest  []dashboard.LatestInvoice
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		cards, err = h.repo.Cards(gctx)
		return err
	})
	g.Go(func() (err error) {
		revenue, err = h.repo.Revenue(gctx)
		return err
	})
	g.Go(func() (err error) {
		latest, err = h.repo.LatestInvoices(gctx, latestInvoicesLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return dashboardResponse{}, err
	}

	months := make([]revenueMonth, 0, len(revenue))
	values := make([]int, 0, len(revenue))
	for _, rv := range revenue {
		months = append(months, revenueMonth{Month: rv.Month, Revenue: rv.Revenue})
		values = append(values, rv.Revenue)
	}
	labels, top := format.YAxis(values)

	latestOut := make([]latestInvoiceResponse, 0, len(latest))
	for _, li := range latest {
		latestOut = append(latestOut, latestInvoiceResponse{
			ID:       li.ID,
			Name:     li.Name,
			Email:    li.Email,
			ImageURL: li.ImageURL,
			Amount:   money.FormatUSD(li.Amount),
		})
	}

	return dashboardResponse{
		Cards: cardsResponse{
			NumberOfCustomers:    cards.NumberOfCustomers,
			NumberOfInvoices:     cards.NumberOfInvoices,
			TotalPaidInvoices:    money.FormatUSD(cards.TotalPaid),
			TotalPendingInvoices: money.FormatUSD(cards.TotalPending),
		},
		Revenue: revenueResponse{
			Months:      months,
			YAxisLabels: labels,
			TopLabel:    top,
		},
		LatestInvoices: latestOut,
	}, nil
}
