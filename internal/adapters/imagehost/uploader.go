// Package imagehost uploads gallery photos to an external image host,
// falling back to inline data URLs for small files when no host is
// configured.
package imagehost

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
)

// MaxInlineSize is the largest file embedded as a data URL. Anything
// bigger must go through a configured host.
const MaxInlineSize = 5 * 1024 * 1024

// Domain errors.
var (
	ErrTooLarge     = errors.New("file too large for inline fallback; configure an image host")
	ErrEmptyImage   = errors.New("image data is required")
	ErrUploadFailed = errors.New("image upload failed")
)

// Uploader stores an image and returns a URL that renders it.
type Uploader interface {
	// Upload stores the image bytes.
	// PRE: data is non-empty; contentType is an image MIME type
	// POST: Returns a browser-renderable URL
	Upload(ctx context.Context, data []byte, contentType string) (string, error)
}

// InlineUploader embeds small images as data URLs instead of hosting
// them. The URL lands in the gallery document as-is.
type InlineUploader struct{}

// Upload encodes data as a data URL.
// PRE: data is non-empty and within MaxInlineSize
// POST: Returns a data: URL, or ErrTooLarge
func (InlineUploader) Upload(_ context.Context, data []byte, contentType string) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyImage
	}
	if len(data) > MaxInlineSize {
		return "", ErrTooLarge
	}
	if contentType == "" {
		contentType = "image/jpeg"
	}
	return fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(data)), nil
}
