package storage

import (
	"context"
	"io"
	"time"
)

// ImageRepository abstracts object storage for avatar images
type ImageRepository interface {
	// Upload stores data at objectPath and returns the stored path
	Upload(ctx context.Context, objectPath string, data io.Reader, contentType string, size int64) (string, error)

	// Delete removes an object
	Delete(ctx context.Context, objectPath string) error

	// GeneratePresignedURL generates a temporary GET URL for an object
	GeneratePresignedURL(ctx context.Context, objectPath string, expiry time.Duration) (string, error)
}
