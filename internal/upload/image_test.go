package upload_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerline/dashboard/internal/upload"
)

// pngHeader is enough of a PNG for content sniffing.
var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

type recordingStore struct {
	saved   map[string][]byte
	deleted []string
	saveErr error
}

func newRecordingStore() *recordingStore {
	return &recordingStore{saved: map[string][]byte{}}
}

func (s *recordingStore) Save(_ context.Context, r io.Reader, _ int64, _ string, name string) (string, error) {
	if s.saveErr != nil {
		return "", s.saveErr
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.saved[name] = b
	return "/customers/" + name, nil
}

func (s *recordingStore) Delete(_ context.Context, url string) error {
	s.deleted = append(s.deleted, url)
	return nil
}

func imageFile(name, contentType string, data []byte) *upload.File {
	return &upload.File{
		Name:        name,
		ContentType: contentType,
		Size:        int64(len(data)),
		Content:     bytes.NewReader(data),
	}
}

func TestValidate_Accepts(t *testing.T) {
	ing := upload.NewIngester(newRecordingStore())

	for _, ct := range []string{"image/jpeg", "image/png", "image/webp", "IMAGE/PNG", "image/jpeg; charset=binary"} {
		t.Run(ct, func(t *testing.T) {
			assert.Empty(t, ing.Validate(imageFile("a.img", ct, []byte("data"))))
		})
	}
}

func TestValidate_Missing(t *testing.T) {
	ing := upload.NewIngester(newRecordingStore())

	assert.Equal(t, []string{"Please select an image file."}, ing.Validate(nil))
	assert.Equal(t, []string{"Please select an image file."}, ing.Validate(imageFile("empty.png", "image/png", nil)))
}

func TestValidate_DisallowedType(t *testing.T) {
	ing := upload.NewIngester(newRecordingStore())

	msgs := ing.Validate(imageFile("doc.pdf", "application/pdf", []byte("%PDF-1.4")))

	assert.Equal(t, []string{"Invalid file type. Only JPEG, PNG, and WEBP are allowed."}, msgs)
}

func TestValidate_TooLarge(t *testing.T) {
	ing := upload.NewIngester(newRecordingStore())

	msgs := ing.Validate(imageFile("big.jpg", "image/jpeg", make([]byte, 3<<20)))

	assert.Equal(t, []string{"File is too large. Maximum size is 2MB."}, msgs)
}

func TestValidate_ExactlyMaxSize(t *testing.T) {
	ing := upload.NewIngester(newRecordingStore())

	assert.Empty(t, ing.Validate(imageFile("max.jpg", "image/jpeg", make([]byte, upload.MaxImageSize))))
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	ing := upload.NewIngester(newRecordingStore())

	msgs := ing.Validate(imageFile("big.gif", "image/gif", make([]byte, 3<<20)))

	assert.Equal(t, []string{
		"Invalid file type. Only JPEG, PNG, and WEBP are allowed.",
		"File is too large. Maximum size is 2MB.",
	}, msgs)
}

func TestValidate_SniffsUndeclaredType(t *testing.T) {
	ing := upload.NewIngester(newRecordingStore())

	assert.Empty(t, ing.Validate(imageFile("photo", "", pngHeader)))
	assert.Empty(t, ing.Validate(imageFile("photo", "application/octet-stream", pngHeader)))
	assert.NotEmpty(t, ing.Validate(imageFile("notes", "", []byte("just some text"))))
}

func TestIngest_StoresUnderGeneratedName(t *testing.T) {
	store := newRecordingStore()
	ing := upload.NewIngester(store)

	url, err := ing.Ingest(context.Background(), imageFile("My Photo (1).png", "image/png", pngHeader))

	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^/customers/My_Photo_1-\d+-\d+\.png$`), url)
	require.Len(t, store.saved, 1)
	for _, b := range store.saved {
		assert.Equal(t, pngHeader, b)
	}
}

func TestIngest_RewindsAfterSniffing(t *testing.T) {
	store := newRecordingStore()
	ing := upload.NewIngester(store)

	_, err := ing.Ingest(context.Background(), imageFile("photo.png", "", pngHeader))

	require.NoError(t, err)
	for _, b := range store.saved {
		assert.Equal(t, pngHeader, b)
	}
}

func TestIngest_InvalidWritesNothing(t *testing.T) {
	store := newRecordingStore()
	ing := upload.NewIngester(store)

	url, err := ing.Ingest(context.Background(), imageFile("big.jpg", "image/jpeg", make([]byte, 3<<20)))

	assert.Empty(t, url)
	var verr *upload.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"File is too large. Maximum size is 2MB."}, verr.Messages)
	assert.False(t, errors.Is(err, upload.ErrStoreFailed))
	assert.Empty(t, store.saved)
}

func TestIngest_StoreFailure(t *testing.T) {
	store := newRecordingStore()
	store.saveErr = errors.New("disk full")
	ing := upload.NewIngester(store)

	url, err := ing.Ingest(context.Background(), imageFile("a.png", "image/png", pngHeader))

	assert.Empty(t, url)
	assert.ErrorIs(t, err, upload.ErrStoreFailed)
	var verr *upload.ValidationError
	assert.False(t, errors.As(err, &verr))
}

func TestIngest_NamesDoNotCollide(t *testing.T) {
	store := newRecordingStore()
	ing := upload.NewIngester(store)

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		url, err := ing.Ingest(context.Background(), imageFile("same.png", "image/png", pngHeader))
		require.NoError(t, err)
		assert.False(t, seen[url], "duplicate name %s", url)
		seen[url] = true
	}
}

func TestDiscard(t *testing.T) {
	store := newRecordingStore()
	ing := upload.NewIngester(store)

	require.NoError(t, ing.Discard(context.Background(), "/customers/x.png"))

	assert.Equal(t, []string{"/customers/x.png"}, store.deleted)
}

func TestGenerateFilename(t *testing.T) {
	now := time.UnixMilli(1700000000123)

	tests := []struct {
		original string
		want     string
	}{
		{"photo.png", "photo-1700000000123-42.png"},
		{"my photo.jpg", "my_photo-1700000000123-42.jpg"},
		{"évil rabbit!!.webp", "vil_rabbit-1700000000123-42.webp"},
		{"../../etc/passwd", "passwd-1700000000123-42"},
		{"noext", "noext-1700000000123-42"},
		{"a-b_c.d.png", "a-b_cd-1700000000123-42.png"},
	}

	for _, tt := range tests {
		t.Run(tt.original, func(t *testing.T) {
			assert.Equal(t, tt.want, upload.GenerateFilename(tt.original, now, 42))
		})
	}
}
