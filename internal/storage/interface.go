package storage

import (
	"context"
	"path"
	"path/filepath"
	"strings"
)

// Publisher is implemented by the R2 client and the local mirror
type Publisher interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (*UploadResult, error)
	GetPublicURL(key string) string
}

type UploadResult struct {
	Key         string
	URL         string
	ETag        string
	Size        int64
	ContentType string
}

// ObjectKey maps a local output path to a bucket key under prefix.
func ObjectKey(prefix, localPath string) string {
	key := strings.TrimPrefix(path.Clean(filepath.ToSlash(localPath)), "/")
	if prefix == "" {
		return key
	}
	return strings.TrimSuffix(prefix, "/") + "/" + key
}
