package mutation_test

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ledgerline/dashboard/internal/customer"
	"github.com/ledgerline/dashboard/internal/invoice"
)

// --- Mock Invoice Repository ---

type mockInvoiceRepo struct {
	createFn func(ctx context.Context, inv *invoice.Invoice) error
	updateFn func(ctx context.Context, id uuid.UUID, fields invoice.Fields) (*invoice.Invoice, error)
	deleteFn func(ctx context.Context, id uuid.UUID) error

	calls int
}

func (m *mockInvoiceRepo) Create(ctx context.Context, inv *invoice.Invoice) error {
	m.calls++
	if m.createFn != nil {
		return m.createFn(ctx, inv)
	}
	inv.ID = uuid.New()
	inv.Date = time.Now().UTC()
	return nil
}

func (m *mockInvoiceRepo) GetByID(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	m.calls++
	return nil, invoice.ErrNotFound
}

func (m *mockInvoiceRepo) ListFiltered(ctx context.Context, query string, page int) (*invoice.ListResult, error) {
	m.calls++
	return &invoice.ListResult{Invoices: []invoice.Listing{}, Page: page}, nil
}

func (m *mockInvoiceRepo) Update(ctx context.Context, id uuid.UUID, fields invoice.Fields) (*invoice.Invoice, error) {
	m.calls++
	if m.updateFn != nil {
		return m.updateFn(ctx, id, fields)
	}
	return &invoice.Invoice{ID: id, CustomerID: fields.CustomerID, Amount: fields.Amount, Status: fields.Status}, nil
}

func (m *mockInvoiceRepo) Delete(ctx context.Context, id uuid.UUID) error {
	m.calls++
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

// --- Mock Customer Repository ---

type mockCustomerRepo struct {
	createFn func(ctx context.Context, c *customer.Customer) error

	calls int
}

func (m *mockCustomerRepo) Create(ctx context.Context, c *customer.Customer) error {
	m.calls++
	if m.createFn != nil {
		return m.createFn(ctx, c)
	}
	c.ID = uuid.New()
	c.CreatedAt = time.Now().UTC()
	return nil
}

func (m *mockCustomerRepo) GetByID(ctx context.Context, id uuid.UUID) (*customer.Customer, error) {
	m.calls++
	return nil, customer.ErrNotFound
}

func (m *mockCustomerRepo) ListAll(ctx context.Context) ([]customer.Customer, error) {
	m.calls++
	return []customer.Customer{}, nil
}

func (m *mockCustomerRepo) ListFiltered(ctx context.Context, query string) ([]customer.Summary, error) {
	m.calls++
	return []customer.Summary{}, nil
}

// --- Mock Image Store ---

type mockStore struct {
	mu      sync.Mutex
	saveFn  func(name string) (string, error)
	saved   map[string][]byte
	deleted []string
}

func newMockStore() *mockStore {
	return &mockStore{saved: map[string][]byte{}}
}

func (m *mockStore) Save(_ context.Context, r io.Reader, _ int64, _ string, name string) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveFn != nil {
		if url, err := m.saveFn(name); err != nil {
			return url, err
		}
	}
	m.saved[name] = b
	return "/customers/" + name, nil
}

func (m *mockStore) Delete(_ context.Context, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, url)
	return nil
}

// --- Mock View Invalidator ---

type mockViews struct {
	err         error
	invalidated []string
}

func (m *mockViews) Invalidate(_ context.Context, views ...string) error {
	m.invalidated = append(m.invalidated, views...)
	return m.err
}
