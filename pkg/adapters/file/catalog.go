// Package file serves static documents from the local filesystem.
package file

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/intake/pkg/domain"
)

// Catalog implements ports.Catalog with a single file on disk.
// The file is checked on every request so it can be replaced while the
// process runs.
type Catalog struct {
	Path    string
	Caption string
}

// NewCatalog creates a Catalog for path. An empty caption lets the agent
// use its default text.
func NewCatalog(path, caption string) *Catalog {
	return &Catalog{Path: path, Caption: caption}
}

// Document returns the catalog file, or an error wrapping fs.ErrNotExist
// when it is missing.
func (c *Catalog) Document(ctx context.Context) (*domain.Document, error) {
	info, err := os.Stat(c.Path)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", c.Path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("catalog %s is a directory", c.Path)
	}
	return &domain.Document{Path: c.Path, Caption: c.Caption}, nil
}
