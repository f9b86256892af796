package file_test

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/intake/pkg/adapters/file"
)

func TestCatalog(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.pdf")
	c := file.NewCatalog(path, "Our catalog")

	_, err := c.Document(context.Background())
	assert.ErrorIs(t, err, fs.ErrNotExist)

	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o600))
	doc, err := c.Document(context.Background())
	require.NoError(t, err)
	assert.Equal(t, path, doc.Path)
	assert.Equal(t, "Our catalog", doc.Caption)

	_, err = file.NewCatalog(dir, "").Document(context.Background())
	assert.Error(t, err)
	assert.NotErrorIs(t, err, fs.ErrNotExist)
}
