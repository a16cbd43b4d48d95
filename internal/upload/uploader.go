// internal/upload/uploader.go
package upload

import (
	"context"
	"io"
	"strings"
)

// MaxImageBytes is the upload size cap, enforced before the asset ever
// reaches the provider.
const MaxImageBytes = 5 * 1024 * 1024

// Result is the provider's answer to a successful upload: a stable URL
// for the stored asset and the handle needed to delete it later.
type Result struct {
	URL     string
	AssetID string
}

// Uploader is the media upload collaborator. Implementations store an
// image payload or remote URL and can later release the stored asset.
type Uploader interface {
	UploadFile(ctx context.Context, file io.Reader) (*Result, error)
	UploadURL(ctx context.Context, imageURL string) (*Result, error)
	Delete(ctx context.Context, assetID string) error
}

// IsImageContentType reports whether a MIME type is acceptable for
// upload. Only image/* payloads are stored.
func IsImageContentType(contentType string) bool {
	return strings.HasPrefix(contentType, "image/")
}
