package application

import (
	"context"
	"io"
)

// BlobStore persists file payloads by reference path. The GCS-backed
// implementation lives in pkg/helpers; tests substitute a fake.
type BlobStore interface {
	Put(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)
}
