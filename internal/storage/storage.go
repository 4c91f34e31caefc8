// Package storage keeps the bytes of uploaded files. Metadata lives in the
// database, blobs live here under the file's name.
package storage

import (
	"context"
	"errors"
	"io"
)

var ErrNotFound = errors.New("object not found")

type Object struct {
	Body        io.ReadCloser
	Size        int64
	ContentType string
}

type Storage interface {
	// Put stores r under key, replacing whatever was stored there before
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error

	// Get opens the object stored under key. The caller closes Body.
	Get(ctx context.Context, key string) (*Object, error)
}
