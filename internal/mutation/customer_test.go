package mutation_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerline/dashboard/internal/api/validation"
	"github.com/ledgerline/dashboard/internal/customer"
	"github.com/ledgerline/dashboard/internal/mutation"
	"github.com/ledgerline/dashboard/internal/upload"
	"github.com/ledgerline/dashboard/internal/viewcache"
)

var jpegHeader = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}

func jpeg(name string, size int) *upload.File {
	data := make([]byte, size)
	copy(data, jpegHeader)
	return &upload.File{
		Name:        name,
		ContentType: "image/jpeg",
		Size:        int64(size),
		Content:     bytes.NewReader(data),
	}
}

type customerFixture struct {
	repo  *mockCustomerRepo
	store *mockStore
	views *mockViews
	svc   *mutation.Service
}

func newCustomerFixture() *customerFixture {
	f := &customerFixture{
		repo:  &mockCustomerRepo{},
		store: newMockStore(),
		views: &mockViews{},
	}
	f.svc = mutation.NewService(&mockInvoiceRepo{}, f.repo, upload.NewIngester(f.store), f.views)
	return f
}

func validCustomerForm() validation.CustomerForm {
	return validation.CustomerForm{Name: " Evil Rabbit ", Email: " evil@rabbit.com "}
}

func TestCreateCustomer_Success(t *testing.T) {
	t.Parallel()

	f := newCustomerFixture()
	var stored *customer.Customer
	f.repo.createFn = func(_ context.Context, c *customer.Customer) error {
		stored = c
		return nil
	}

	res := f.svc.CreateCustomer(context.Background(), validCustomerForm(), jpeg("evil rabbit.jpg", 1024))

	assertCommitted(t, res, "Customer created successfully!")
	require.NotNil(t, stored)
	assert.Equal(t, "Evil Rabbit", stored.Name)
	assert.Equal(t, "evil@rabbit.com", stored.Email)
	require.NotNil(t, stored.ImageURL)
	assert.Regexp(t, `^/customers/evil_rabbit-\d+-\d+\.jpg$`, *stored.ImageURL)
	assert.Len(t, f.store.saved, 1)
	assert.ElementsMatch(t,
		[]string{viewcache.ViewCustomers, viewcache.ViewInvoices, viewcache.ViewDashboard},
		f.views.invalidated)
}

func TestCreateCustomer_NameAndImageErrorsMerged(t *testing.T) {
	t.Parallel()

	f := newCustomerFixture()

	res := f.svc.CreateCustomer(context.Background(),
		validation.CustomerForm{Name: "Al", Email: "a@b.com"},
		jpeg("big.jpg", 3<<20))

	assert.False(t, res.Success)
	assert.Equal(t, mutation.Rejected, res.Outcome)
	assert.NotEmpty(t, res.Errors["name"])
	assert.NotEmpty(t, res.Errors[upload.FieldName])
	assert.False(t, res.Errors.Has("email"))
	require.NotNil(t, res.Message)
	assert.Equal(t, "Missing or Invalid Fields. Failed to Create Customer.", *res.Message)
	assert.Equal(t, map[string]string{"name": "Al", "email": "a@b.com"}, res.FormData)
	assert.Empty(t, f.store.saved)
	assert.Equal(t, 0, f.repo.calls)
}

func TestCreateCustomer_RejectedImageWritesNothing(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		file *upload.File
	}{
		{"oversize", jpeg("big.jpg", upload.MaxImageSize+1)},
		{"disallowed type", &upload.File{
			Name:        "doc.pdf",
			ContentType: "application/pdf",
			Size:        4,
			Content:     bytes.NewReader([]byte("%PDF")),
		}},
		{"missing", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCustomerFixture()

			res := f.svc.CreateCustomer(context.Background(), validCustomerForm(), tt.file)

			assert.False(t, res.Success)
			assert.NotEmpty(t, res.Errors[upload.FieldName])
			assert.Empty(t, f.store.saved)
			assert.Equal(t, 0, f.repo.calls)
		})
	}
}

func TestCreateCustomer_DuplicateEmail(t *testing.T) {
	t.Parallel()

	f := newCustomerFixture()
	f.repo.createFn = func(context.Context, *customer.Customer) error {
		return customer.ErrDuplicateEmail
	}

	res := f.svc.CreateCustomer(context.Background(), validCustomerForm(), jpeg("a.jpg", 64))

	assert.False(t, res.Success)
	assert.Equal(t, mutation.Rejected, res.Outcome)
	assert.Equal(t, []string{"A customer with this email already exists."}, res.Errors["email"])
	require.Len(t, f.store.deleted, 1)
	assert.Empty(t, f.views.invalidated)
}

func TestCreateCustomer_DatabaseErrorRemovesImage(t *testing.T) {
	t.Parallel()

	f := newCustomerFixture()
	f.repo.createFn = func(context.Context, *customer.Customer) error {
		return errors.New("too many connections")
	}

	res := f.svc.CreateCustomer(context.Background(), validCustomerForm(), jpeg("a.jpg", 64))

	assert.False(t, res.Success)
	assert.Equal(t, mutation.Failed, res.Outcome)
	require.NotNil(t, res.Message)
	assert.Equal(t, "Database Error: Failed to Create Customer.", *res.Message)
	require.Len(t, f.store.deleted, 1)
	assert.Regexp(t, `^/customers/a-\d+-\d+\.jpg$`, f.store.deleted[0])
}

func TestCreateCustomer_StoreFailure(t *testing.T) {
	t.Parallel()

	f := newCustomerFixture()
	f.store.saveFn = func(string) (string, error) {
		return "", errors.New("disk full")
	}

	res := f.svc.CreateCustomer(context.Background(), validCustomerForm(), jpeg("a.jpg", 64))

	assert.False(t, res.Success)
	assert.Equal(t, mutation.StoreFailed, res.Outcome)
	require.NotNil(t, res.Message)
	assert.Equal(t, upload.MsgStoreFailed, *res.Message)
	assert.Equal(t, 0, f.repo.calls)
}

func TestCreateCustomer_SuccessInvariant(t *testing.T) {
	t.Parallel()

	inputs := []struct {
		form validation.CustomerForm
		file *upload.File
	}{
		{validCustomerForm(), jpeg("a.jpg", 64)},
		{validation.CustomerForm{Name: "", Email: ""}, nil},
		{validation.CustomerForm{Name: "Lee Robinson", Email: "lee@robinson.com"}, jpeg("b.jpg", 3<<20)},
	}

	for _, in := range inputs {
		f := newCustomerFixture()
		res := f.svc.CreateCustomer(context.Background(), in.form, in.file)
		if res.Success {
			assert.False(t, res.Errors.HasErrors())
			assert.Nil(t, res.FormData)
		} else {
			assert.NotNil(t, res.FormData)
		}
	}
}
