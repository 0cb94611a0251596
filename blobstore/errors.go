// Package blobstore adapts an S3-compatible object store to the pipeline's
// upload contract: raw bytes in, a namespaced key and public URL out.
package blobstore

import "fmt"

// UploadError wraps a failure from the underlying object store client.
// Upload failures are always fatal for the current request — the adapter
// does not retry; the caller decides.
type UploadError struct {
	Op  string
	Err error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("blobstore: %s: %v", e.Op, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}
