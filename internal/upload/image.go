// Package upload validates uploaded customer images and persists them through
// a pluggable Store.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

// MaxImageSize is the largest accepted image, in bytes.
const MaxImageSize = 2 << 20

// FieldName is the form field carrying the image.
const FieldName = "imageFile"

// MsgStoreFailed is shown to the client when a validated image cannot be stored.
const MsgStoreFailed = "Could not save the uploaded image. Please try again."

const (
	msgMissing  = "Please select an image file."
	msgType     = "Invalid file type. Only JPEG, PNG, and WEBP are allowed."
	msgTooLarge = "File is too large. Maximum size is 2MB."
)

var allowedContentTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
}

// ErrStoreFailed wraps any failure to persist a validated image.
var ErrStoreFailed = errors.New("failed to store image")

// ValidationError carries the client-correctable problems with an upload.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "invalid image: " + strings.Join(e.Messages, "; ")
}

// File is an uploaded file as received from a multipart form.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Content     io.ReadSeeker
}

// Ingester validates images and hands them to a Store under a generated name.
type Ingester struct {
	store  Store
	now    func() time.Time
	suffix func() int64
}

// NewIngester creates an Ingester writing to store.
func NewIngester(store Store) *Ingester {
	return &Ingester{
		store:  store,
		now:    time.Now,
		suffix: func() int64 { return rand.Int64N(1e9) },
	}
}

// Validate returns every problem with f; an empty result means f is acceptable.
// A missing or empty file yields only the missing-file message.
func (i *Ingester) Validate(f *File) []string {
	if f == nil || f.Size == 0 || f.Content == nil {
		return []string{msgMissing}
	}

	var msgs []string
	if _, ok := allowedContentTypes[contentType(f)]; !ok {
		msgs = append(msgs, msgType)
	}
	if f.Size > MaxImageSize {
		msgs = append(msgs, msgTooLarge)
	}
	return msgs
}

// Ingest validates f and stores it, returning the public path or URL of the
// stored image. Validation problems come back as *ValidationError and nothing
// is written; store failures wrap ErrStoreFailed.
func (i *Ingester) Ingest(ctx context.Context, f *File) (string, error) {
	if msgs := i.Validate(f); len(msgs) > 0 {
		return "", &ValidationError{Messages: msgs}
	}

	name := GenerateFilename(f.Name, i.now(), i.suffix())
	if _, err := f.Content.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("%w: rewinding upload: %v", ErrStoreFailed, err)
	}

	url, err := i.store.Save(ctx, f.Content, f.Size, contentType(f), name)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStoreFailed, err)
	}
	return url, nil
}

// Discard removes a previously stored image. It is used to undo an upload
// whose owning record could not be saved.
func (i *Ingester) Discard(ctx context.Context, url string) error {
	return i.store.Delete(ctx, url)
}

var (
	whitespace = regexp.MustCompile(`\s+`)
	unsafeChar = regexp.MustCompile(`[^a-zA-Z0-9_-]`)
)

// GenerateFilename derives a collision-resistant name from an uploaded file
// name: whitespace becomes "_", the base name keeps only letters, digits, "_"
// and "-", and a millisecond timestamp plus random suffix precede the original
// extension.
func GenerateFilename(original string, now time.Time, suffix int64) string {
	name := whitespace.ReplaceAllString(filepath.Base(original), "_")
	ext := filepath.Ext(name)
	base := unsafeChar.ReplaceAllString(strings.TrimSuffix(name, ext), "")
	ext = "." + unsafeChar.ReplaceAllString(strings.TrimPrefix(ext, "."), "")
	if ext == "." {
		ext = ""
	}
	return fmt.Sprintf("%s-%d-%d%s", base, now.UnixMilli(), suffix, ext)
}

// contentType returns the declared type, sniffing the content when the client
// declared nothing useful.
func contentType(f *File) string {
	declared := strings.ToLower(strings.TrimSpace(f.ContentType))
	if i := strings.IndexByte(declared, ';'); i >= 0 {
		declared = strings.TrimSpace(declared[:i])
	}
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}

	head := make([]byte, 512)
	n, _ := io.ReadFull(f.Content, head)
	_, _ = f.Content.Seek(0, io.SeekStart)
	return mimetype.Detect(head[:n]).String()
}
