package source

import (
	"context"
	"fmt"
	"os"

	"github.com/abgdnv/storefront/internal/catalog"
)

// FileSource reads the catalog JSON document from disk.
type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Fetch(_ context.Context) ([]catalog.Product, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return decode(f)
}
