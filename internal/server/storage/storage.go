// Package storage holds uploaded bytes. Metadata lives in the database and
// refers to content by the opaque path returned from Put.
package storage

import "context"

// ContentStore is a flat blob store addressed by path.
type ContentStore interface {
	// Put stores data under a new name and returns its path.
	Put(ctx context.Context, name string, data []byte) (string, error)
	// Write stores data at path, replacing what is there.
	Write(ctx context.Context, path string, data []byte) error
	// Get returns the bytes at path or common.ErrorNotFound.
	Get(ctx context.Context, path string) ([]byte, error)
	Delete(ctx context.Context, path string) error
}

// VariantPath is the path of a derived rendition of the blob at path,
// e.g. the 250px thumbnail of an image.
func VariantPath(path, suffix string) string {
	return path + "_" + suffix
}
