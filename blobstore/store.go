package blobstore

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"imageflow/core"
)

// Asset is a Stored Asset: the (key, public_url) pair returned by Upload.
// Assets are never mutated after creation; deletion is out of scope.
type Asset struct {
	Key       string
	PublicURL string
}

const (
	// PrefixInputs namespaces uploaded base and reference images.
	PrefixInputs = "inputs"
	// PrefixOutputs namespaces uploaded synthesis results.
	PrefixOutputs = "outputs"
)

// Store is the Blob Store Adapter: it uploads raw bytes to an S3-compatible
// bucket under a namespaced key and resolves a canonical public URL.
type Store struct {
	client        PutObjectAPI
	bucket        string
	folder        string
	publicBaseURL string
}

// New wires a Store from process configuration using the real
// aws-sdk-go-v2 client.
func New(ctx context.Context, cfg *core.Config) (*Store, error) {
	client, err := NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewWithClient(client, cfg.StorageBucket, cfg.StorageFolder, cfg.StoragePublicLink), nil
}

// NewWithClient builds a Store around an already-constructed client,
// letting tests inject a PutObjectAPI double.
func NewWithClient(client PutObjectAPI, bucket, folder, publicBaseURL string) *Store {
	return &Store{
		client:        client,
		bucket:        bucket,
		folder:        folder,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

// Upload writes data to the bucket under a fresh UUID v4 key and returns
// the (key, url) pair. ext defaults to the substring of mime after
// "image/" when absent. prefix must be "inputs" or "outputs".
func (s *Store) Upload(ctx context.Context, data []byte, mime, prefix, ext string) (Asset, error) {
	if ext == "" {
		ext = extensionFromMIME(mime)
	}

	key := fmt.Sprintf("%s/%s/%s.%s", s.folder, prefix, uuid.New().String(), ext)

	_, err := s.client.PutObject(ctx, putObjectInput(s.bucket, key, bytes.NewReader(data), mime, int64(len(data))))
	if err != nil {
		return Asset{}, &UploadError{Op: "put_object", Err: err}
	}

	return Asset{
		Key:       key,
		PublicURL: s.publicBaseURL + "/" + key,
	}, nil
}

func extensionFromMIME(mime string) string {
	if idx := strings.Index(mime, "/"); idx != -1 {
		return mime[idx+1:]
	}
	return mime
}
