// Package assets persists processed product images on disk and addresses
// them by stable public refs like "/uploads/3f2a9c1e-….jpg". The store is
// constructed once with an explicit root and injected wherever needed;
// there is no package-level state.
package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Placeholder is the well-known ref assigned to products without images so
// API consumers never have to null-check.
const Placeholder = "/images/No_Image_Available.jpg"

// Store is a filesystem-backed image store.
type Store struct {
	Root         string // directory holding the image files
	PublicPrefix string // URL prefix refs are rooted at, e.g. "/uploads"
}

// New creates the store, making sure the root directory exists.
func New(root, publicPrefix string) (*Store, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("creating asset root: %w", err)
	}
	return &Store{Root: root, PublicPrefix: strings.TrimSuffix(publicPrefix, "/")}, nil
}

// Save writes image data to a new file and returns its public ref. File
// names are generated, never derived from user input, and refs always use
// forward slashes. Exactly one file is written per successful call.
func (s *Store) Save(data []byte) (string, error) {
	name := uuid.NewString() + ".jpg"
	if err := os.WriteFile(filepath.Join(s.Root, name), data, 0644); err != nil {
		return "", fmt.Errorf("writing image file: %w", err)
	}
	return s.PublicPrefix + "/" + name, nil
}

// Remove deletes the file behind a ref. A missing file is not an error:
// the ref is gone either way, so Remove is idempotent.
func (s *Store) Remove(ref string) error {
	name, err := s.fileName(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.Root, name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing image file: %w", err)
	}
	return nil
}

// Exists reports whether the file behind a ref is present.
func (s *Store) Exists(ref string) bool {
	name, err := s.fileName(ref)
	if err != nil {
		return false
	}
	_, err = os.Stat(filepath.Join(s.Root, name))
	return err == nil
}

// fileName maps a public ref back to a bare file name. Anything that does
// not look like a ref this store produced is rejected, so user-supplied
// refs can never reach outside the root.
func (s *Store) fileName(ref string) (string, error) {
	name, ok := strings.CutPrefix(ref, s.PublicPrefix+"/")
	if !ok || name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("not a stored image ref: %q", ref)
	}
	return name, nil
}

// Normalize substitutes the placeholder for an empty ref list.
func Normalize(refs []string) []string {
	if len(refs) == 0 {
		return []string{Placeholder}
	}
	return refs
}
