package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/ledgerline/dashboard/internal/customer"
	"github.com/ledgerline/dashboard/internal/dashboard"
	"github.com/ledgerline/dashboard/internal/invoice"
	"github.com/ledgerline/dashboard/internal/mutation"
	"github.com/ledgerline/dashboard/internal/upload"
)

// --- Mock Invoice Repository ---

type mockInvoiceRepo struct {
	createFn       func(ctx context.Context, inv *invoice.Invoice) error
	getByIDFn      func(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error)
	listFilteredFn func(ctx context.Context, query string, page int) (*invoice.ListResult, error)
	updateFn       func(ctx context.Context, id uuid.UUID, fields invoice.Fields) (*invoice.Invoice, error)
	deleteFn       func(ctx context.Context, id uuid.UUID) error
}

func (m *mockInvoiceRepo) Create(ctx context.Context, inv *invoice.Invoice) error {
	if m.createFn != nil {
		return m.createFn(ctx, inv)
	}
	inv.ID = uuid.New()
	inv.Date = time.Now().UTC()
	return nil
}

func (m *mockInvoiceRepo) GetByID(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, invoice.ErrNotFound
}

func (m *mockInvoiceRepo) ListFiltered(ctx context.Context, query string, page int) (*invoice.ListResult, error) {
	if m.listFilteredFn != nil {
		return m.listFilteredFn(ctx, query, page)
	}
	return &invoice.ListResult{Invoices: []invoice.Listing{}, Page: page}, nil
}

func (m *mockInvoiceRepo) Update(ctx context.Context, id uuid.UUID, fields invoice.Fields) (*invoice.Invoice, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, fields)
	}
	return &invoice.Invoice{ID: id, CustomerID: fields.CustomerID, Amount: fields.Amount, Status: fields.Status}, nil
}

func (m *mockInvoiceRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

// --- Mock Customer Repository ---

type mockCustomerRepo struct {
	createFn       func(ctx context.Context, c *customer.Customer) error
	listAllFn      func(ctx context.Context) ([]customer.Customer, error)
	listFilteredFn func(ctx context.Context, query string) ([]customer.Summary, error)
}

func (m *mockCustomerRepo) Create(ctx context.Context, c *customer.Customer) error {
	if m.createFn != nil {
		return m.createFn(ctx, c)
	}
	c.ID = uuid.New()
	return nil
}

func (m *mockCustomerRepo) GetByID(ctx context.Context, id uuid.UUID) (*customer.Customer, error) {
	return nil, customer.ErrNotFound
}

func (m *mockCustomerRepo) ListAll(ctx context.Context) ([]customer.Customer, error) {
	if m.listAllFn != nil {
		return m.listAllFn(ctx)
	}
	return []customer.Customer{}, nil
}

func (m *mockCustomerRepo) ListFiltered(ctx context.Context, query string) ([]customer.Summary, error) {
	if m.listFilteredFn != nil {
		return m.listFilteredFn(ctx, query)
	}
	return []customer.Summary{}, nil
}

// --- Mock Dashboard Repository ---

type mockDashboardRepo struct {
	cardsFn   func(ctx context.Context) (*dashboard.Cards, error)
	revenueFn func(ctx context.Context) ([]dashboard.Revenue, error)
	latestFn  func(ctx context.Context, limit int) ([]dashboard.LatestInvoice, error)
}

func (m *mockDashboardRepo) Cards(ctx context.Context) (*dashboard.Cards, error) {
	if m.cardsFn != nil {
		return m.cardsFn(ctx)
	}
	return &dashboard.Cards{}, nil
}

func (m *mockDashboardRepo) Revenue(ctx context.Context) ([]dashboard.Revenue, error) {
	if m.revenueFn != nil {
		return m.revenueFn(ctx)
	}
	return []dashboard.Revenue{}, nil
}

func (m *mockDashboardRepo) LatestInvoices(ctx context.Context, limit int) ([]dashboard.LatestInvoice, error) {
	if m.latestFn != nil {
		return m.latestFn(ctx, limit)
	}
	return []dashboard.LatestInvoice{}, nil
}

// --- Mock Image Store ---

type mockStore struct {
	saved   []string
	deleted []string
	err     error
}

func (m *mockStore) Save(_ context.Context, r io.Reader, _ int64, _ string, name string) (string, error) {
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	if m.err != nil {
		return "", m.err
	}
	m.saved = append(m.saved, name)
	return "/customers/" + name, nil
}

func (m *mockStore) Delete(_ context.Context, url string) error {
	m.deleted = append(m.deleted, url)
	return nil
}

// --- Mock View Cache ---

type memoryCache struct {
	entries     map[string][]byte
	gens        map[string]int64
	invalidated []string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]byte{}, gens: map[string]int64{}}
}

func (c *memoryCache) Generation(_ context.Context, view string) (int64, error) {
	return c.gens[view], nil
}

func (c *memoryCache) Get(_ context.Context, view, key string, dst any) (bool, error) {
	b, ok := c.entries[view+"|"+key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *memoryCache) Set(_ context.Context, view, key string, gen int64, value any) error {
	if gen != c.gens[view] {
		return nil
	}
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[view+"|"+key] = b
	return nil
}

func (c *memoryCache) Invalidate(_ context.Context, views ...string) error {
	for _, v := range views {
		c.gens[v]++
		for k := range c.entries {
			if strings.HasPrefix(k, v+"|") {
				delete(c.entries, k)
			}
		}
	}
	c.invalidated = append(c.invalidated, views...)
	return nil
}

// --- Helpers ---

func newMutations(invoices invoice.Repository, customers customer.Repository, store upload.Store) *mutation.Service {
	if store == nil {
		store = &mockStore{}
	}
	return mutation.NewService(invoices, customers, upload.NewIngester(store), nil)
}

func makeChiRequest(method, path string, body io.Reader, contentType string, params map[string]string) (*http.Request, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	w := httptest.NewRecorder()

	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range params {
			rctx.URLParams.Add(k, v)
		}
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}

	return req, w
}

func makeFormRequest(method, path string, form url.Values, params map[string]string) (*http.Request, *httptest.ResponseRecorder) {
	return makeChiRequest(method, path, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", params)
}

type filePart struct {
	field, name, contentType string
	data                     []byte
}

func multipartBody(t *testing.T, fields map[string]string, files ...filePart) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+f.field+`"; filename="`+f.name+`"`)
		h.Set("Content-Type", f.contentType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func parseEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var env map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &env)
	require.NoError(t, err, "failed to parse response body")
	return env
}

func pngBytes(size int) []byte {
	b := make([]byte, size)
	copy(b, []byte("\x89PNG\r\n\x1a\n"))
	return b
}
