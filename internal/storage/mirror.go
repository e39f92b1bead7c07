package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/deepxperience/imgopt/internal/util"
)

// LocalMirror copies published files into a directory tree, standing in for R2
type LocalMirror struct {
	baseDir       string
	publicBaseURL string
}

func NewLocalMirror(baseDir, publicBaseURL string) (*LocalMirror, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create mirror directory: %w", err)
	}
	return &LocalMirror{
		baseDir:       baseDir,
		publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
	}, nil
}

// Upload saves data under baseDir/key
func (m *LocalMirror) Upload(ctx context.Context, key string, data []byte, contentType string) (*UploadResult, error) {
	filePath := filepath.Join(m.baseDir, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	return &UploadResult{
		Key:         key,
		URL:         m.GetPublicURL(key),
		ETag:        fmt.Sprintf(`"%s"`, util.HashBytes(data)[:32]),
		Size:        int64(len(data)),
		ContentType: contentType,
	}, nil
}

// GetPublicURL returns the URL a published key is served from
func (m *LocalMirror) GetPublicURL(key string) string {
	if m.publicBaseURL == "" {
		return key
	}
	return fmt.Sprintf("%s/%s", m.publicBaseURL, key)
}
