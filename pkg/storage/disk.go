// Package storage is the file storage abstraction used for product images.
//
// Two drivers are available:
//   - "local": a directory served by the HTTP kernel under /storage/
//   - "s3":    S3-compatible object storage (AWS S3, MinIO, R2, Spaces)
//
//	disks := storage.NewManager("local")
//	disks.Register("local", storage.NewLocal(root, baseURL))
//	url, _ := disks.Default().Put(ctx, "products/ab12.png", data, "image/png")
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get for a missing object.
var ErrNotFound = errors.New("storage: object not found")

// Disk is the driver interface.
type Disk interface {
	// Put writes content to path and returns the object's public URL.
	Put(ctx context.Context, path string, content []byte, contentType string) (string, error)
	Get(ctx context.Context, path string) ([]byte, error)
	Exists(ctx context.Context, path string) bool
	// Delete removes path. A missing object is not an error.
	Delete(ctx context.Context, path string) error
	URL(path string) string
}
