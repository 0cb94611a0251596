package blobstore

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var errTest = errors.New("simulated put-object failure")

type fakePutObjectAPI struct {
	calls []*s3.PutObjectInput
	err   error
}

func (f *fakePutObjectAPI) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.calls = append(f.calls, params)
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestUpload_KeyShapeAndURL(t *testing.T) {
	fake := &fakePutObjectAPI{}
	store := NewWithClient(fake, "my-bucket", "internaluse", "https://cdn.example.com/")

	asset, err := store.Upload(context.Background(), []byte("fake-bytes"), "image/png", PrefixInputs, "")
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	if !strings.HasPrefix(asset.Key, "internaluse/inputs/") {
		t.Errorf("key = %q, want prefix internaluse/inputs/", asset.Key)
	}
	if !strings.HasSuffix(asset.Key, ".png") {
		t.Errorf("key = %q, want suffix .png", asset.Key)
	}
	if asset.PublicURL != "https://cdn.example.com/"+asset.Key {
		t.Errorf("PublicURL = %q, want %q", asset.PublicURL, "https://cdn.example.com/"+asset.Key)
	}

	if len(fake.calls) != 1 {
		t.Fatalf("expected 1 PutObject call, got %d", len(fake.calls))
	}
}

func TestUpload_DistinctKeysForIdenticalBytes(t *testing.T) {
	fake := &fakePutObjectAPI{}
	store := NewWithClient(fake, "my-bucket", "internaluse", "https://cdn.example.com")

	a1, err := store.Upload(context.Background(), []byte("same"), "image/jpeg", PrefixOutputs, "")
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	a2, err := store.Upload(context.Background(), []byte("same"), "image/jpeg", PrefixOutputs, "")
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	if a1.Key == a2.Key {
		t.Errorf("expected distinct UUID keys, got the same key twice: %q", a1.Key)
	}
}

func TestUpload_ExtensionDefaultsFromMIME(t *testing.T) {
	fake := &fakePutObjectAPI{}
	store := NewWithClient(fake, "my-bucket", "internaluse", "https://cdn.example.com")

	asset, err := store.Upload(context.Background(), []byte("x"), "image/webp", PrefixInputs, "")
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if !strings.HasSuffix(asset.Key, ".webp") {
		t.Errorf("key = %q, want suffix .webp", asset.Key)
	}
}

func TestUpload_ExplicitExtensionOverridesMIME(t *testing.T) {
	fake := &fakePutObjectAPI{}
	store := NewWithClient(fake, "my-bucket", "internaluse", "https://cdn.example.com")

	asset, err := store.Upload(context.Background(), []byte("x"), "image/jpeg", PrefixOutputs, "png")
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if !strings.HasSuffix(asset.Key, ".png") {
		t.Errorf("key = %q, want suffix .png", asset.Key)
	}
}

func TestUpload_WrapsClientError(t *testing.T) {
	fake := &fakePutObjectAPI{err: errTest}
	store := NewWithClient(fake, "my-bucket", "internaluse", "https://cdn.example.com")

	_, err := store.Upload(context.Background(), []byte("x"), "image/png", PrefixInputs, "")
	if err == nil {
		t.Fatal("expected an error, got nil")
	}
	var uploadErr *UploadError
	if !errors.As(err, &uploadErr) {
		t.Fatalf("expected *UploadError, got %T", err)
	}
}
