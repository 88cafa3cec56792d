// util/filestore/filestore.go
package filestore

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Store keeps verification uploads on local disk, one directory per rental,
// so a rental delete can remove everything it owns in one call.
type Store struct {
	base string
}

func New(base string) (*Store, error) {
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, err
	}
	return &Store{base: base}, nil
}

func (s *Store) rentalDir(rentalID int64) string {
	return filepath.Join(s.base, fmt.Sprintf("rental-%d", rentalID))
}

// Save writes the upload under the rental's directory and returns the stored path.
func (s *Store) Save(rentalID int64, filename string, r io.Reader) (string, error) {
	dir := s.rentalDir(rentalID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	// strip any client-supplied path components
	dst := filepath.Join(dir, filepath.Base(filename))
	f, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		os.Remove(dst)
		return "", err
	}
	return dst, nil
}

// Exists reports whether a stored path is still on disk.
func (s *Store) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// RemoveForRental deletes every file uploaded for the rental.
func (s *Store) RemoveForRental(rentalID int64) error {
	return os.RemoveAll(s.rentalDir(rentalID))
}
