package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectKey(t *testing.T) {
	tests := []struct {
		prefix   string
		path     string
		expected string
	}{
		{"", "Imagenes/Portada-optimized.webp", "Imagenes/Portada-optimized.webp"},
		{"site/", "Imagenes/Azores/a-optimized.webp", "site/Imagenes/Azores/a-optimized.webp"},
		{"site", "./Imagenes/Host-optimized.webp", "site/Imagenes/Host-optimized.webp"},
		{"", "/abs/out.webp", "abs/out.webp"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ObjectKey(tt.prefix, tt.path))
	}
}

func TestLocalMirrorUpload(t *testing.T) {
	dir := t.TempDir()
	m, err := NewLocalMirror(filepath.Join(dir, "mirror"), "https://cdn.example.com/")
	require.NoError(t, err)

	var _ Publisher = m

	res, err := m.Upload(context.Background(), "Imagenes/Azores/a-optimized.webp", []byte("webp bytes"), "image/webp")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/Imagenes/Azores/a-optimized.webp", res.URL)
	assert.Equal(t, int64(10), res.Size)
	assert.Equal(t, "image/webp", res.ContentType)
	assert.NotEmpty(t, res.ETag)

	data, err := os.ReadFile(filepath.Join(dir, "mirror", "Imagenes", "Azores", "a-optimized.webp"))
	require.NoError(t, err)
	assert.Equal(t, "webp bytes", string(data))
}

func TestLocalMirrorPublicURLWithoutBase(t *testing.T) {
	m, err := NewLocalMirror(t.TempDir(), "")
	require.NoError(t, err)
	assert.Equal(t, "Imagenes/a.webp", m.GetPublicURL("Imagenes/a.webp"))
}

func TestNewR2ClientRequiresEndpoint(t *testing.T) {
	_, err := NewR2Client(context.Background(), "", "key", "secret", "bucket", "", "")
	assert.Error(t, err)
}

func TestNewR2ClientPublicURL(t *testing.T) {
	c, err := NewR2Client(context.Background(), "acct", "key", "secret", "bucket", "", "https://img.example.com/")
	require.NoError(t, err)

	var _ Publisher = c
	assert.Equal(t, "https://img.example.com/Imagenes/a.webp", c.GetPublicURL("Imagenes/a.webp"))
}
