// Package storage is the filesystem abstraction product media is read from.
//
// Two drivers are available:
//   - "local": local filesystem (default)
//   - "s3":    S3-compatible object storage (AWS S3, MinIO, R2, Spaces)
//
// `vendorctl products create --image shots/front.jpg` resolves the path on
// the configured disk, so uploads can come from a working directory or a
// bucket that a photographer drops files into.
//
//	disks, _ := storage.NewManager(ctx)
//	data, _ := disks.Default().Get(ctx, "shots/front.jpg")
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotExist is returned when a path is not on the disk.
var ErrNotExist = errors.New("storage: file does not exist")

// Disk is the filesystem driver interface. Every driver must implement this.
type Disk interface {
	// Put writes content to path, creating parent directories as needed.
	Put(ctx context.Context, path string, content []byte) error

	// Get returns the full content of the file at path.
	Get(ctx context.Context, path string) ([]byte, error)

	// GetStream returns a ReadCloser for the file. Caller must close it.
	GetStream(ctx context.Context, path string) (io.ReadCloser, error)

	// Exists reports whether a file exists at path.
	Exists(ctx context.Context, path string) bool

	// Size returns the byte size of the file.
	Size(ctx context.Context, path string) (int64, error)

	// URL returns the public URL for path.
	URL(path string) string

	// Delete removes a file. Returns nil if the file did not exist.
	Delete(ctx context.Context, path string) error
}
