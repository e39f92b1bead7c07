package util

import (
	"mime"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
)

// sourceExtensions are matched case-sensitively; mixed case like ".Jpg" is ignored.
var sourceExtensions = []string{".jpg", ".jpeg", ".png", ".JPG", ".JPEG", ".PNG"}

// DetectContentType sniffs the MIME type from the leading bytes of data
func DetectContentType(data []byte) string {
	kind, err := filetype.Match(data)
	if err != nil || kind == filetype.Unknown {
		return "application/octet-stream"
	}
	return kind.MIME.Value
}

// IsImageMIME checks if the MIME type is a format the optimizer can decode
func IsImageMIME(contentType string) bool {
	switch contentType {
	case "image/jpeg", "image/jpg", "image/png":
		return true
	default:
		return false
	}
}

// IsSourceImage reports whether name carries one of the recognised source extensions
func IsSourceImage(name string) bool {
	for _, ext := range sourceExtensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// OptimizedName returns "<stem>-optimized.webp" for a file name
func OptimizedName(name string) string {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	if stem == "" {
		// ".png" has no stem of its own
		stem = name
	}
	return stem + "-optimized.webp"
}

// WithExtension swaps the extension of path for ext
func WithExtension(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

// ContentTypeFor returns the MIME type to publish a file under
func ContentTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".webp":
		return "image/webp"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	}
	if t := mime.TypeByExtension(filepath.Ext(path)); t != "" {
		return t
	}
	return "application/octet-stream"
}
