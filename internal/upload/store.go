package upload

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// Store persists image bytes under a name and returns a URL the presentation
// layer can use directly.
type Store interface {
	Save(ctx context.Context, r io.Reader, size int64, contentType, name string) (string, error)
	Delete(ctx context.Context, url string) error
}

// LocalStore writes images to a directory on disk.
type LocalStore struct {
	root      string
	urlPrefix string
}

// NewLocalStore creates a LocalStore rooted at dir. Stored files are addressed
// as "/customers/<name>".
func NewLocalStore(dir string) *LocalStore {
	return &LocalStore{root: dir, urlPrefix: "/customers/"}
}

// Root returns the directory images are written to.
func (s *LocalStore) Root() string {
	return s.root
}

// Save writes the image to <root>/<name>, creating root if needed.
func (s *LocalStore) Save(_ context.Context, r io.Reader, _ int64, _ string, name string) (string, error) {
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return "", fmt.Errorf("creating image directory: %w", err)
	}

	dst := filepath.Join(s.root, filepath.Base(name))
	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("creating image file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(dst)
		return "", fmt.Errorf("writing image file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("closing image file: %w", err)
	}

	return s.urlPrefix + filepath.Base(name), nil
}

// Delete removes a file previously returned by Save. Unknown URLs are ignored.
func (s *LocalStore) Delete(_ context.Context, url string) error {
	if !strings.HasPrefix(url, s.urlPrefix) {
		return nil
	}
	name := path.Base(strings.TrimPrefix(url, s.urlPrefix))
	if err := os.Remove(filepath.Join(s.root, name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing image file: %w", err)
	}
	return nil
}

// Registry maps backend names to Store implementations.
type Registry struct {
	stores map[string]Store
}

// NewRegistry creates an empty store registry.
func NewRegistry() *Registry {
	return &Registry{stores: make(map[string]Store)}
}

// Register adds a store under the given name.
func (r *Registry) Register(name string, s Store) {
	r.stores[name] = s
}

// Get returns the store registered under the given name.
func (r *Registry) Get(name string) (Store, bool) {
	s, ok := r.stores[name]
	return s, ok
}

// Names returns a sorted list of all registered store names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.stores))
	for name := range r.stores {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
