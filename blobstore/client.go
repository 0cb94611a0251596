package blobstore

import (
	"context"
	"fmt"
	"io"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"imageflow/core"
)

// PutObjectAPI is the minimal S3 surface the Store depends on. Production
// code is wired to the real aws-sdk-go-v2 client; tests inject a double.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// NewClient builds the real aws-sdk-go-v2 S3 client from the process
// configuration, honoring a custom endpoint for S3-compatible stores
// (MinIO, R2, DigitalOcean Spaces, ...).
func NewClient(ctx context.Context, cfg *core.Config) (PutObjectAPI, error) {
	provider := credentials.NewStaticCredentialsProvider(cfg.StorageAccessKey, cfg.StorageSecretKey, "")

	region := core.GetEnvOrDefault("S3_REGION", "us-east-1")

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(provider),
	)
	if err != nil {
		return nil, fmt.Errorf("blobstore: load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.StorageEndpoint != "" {
			endpoint := cfg.StorageEndpoint
			o.BaseEndpoint = &endpoint
			o.UsePathStyle = true
		}
	})

	return client, nil
}

// s3PutObjectAdapter satisfies PutObjectAPI for the canned-ACL object write
// the Store needs; kept separate so tests can substitute a lighter double
// without pulling in the full s3.Client type.
var _ PutObjectAPI = (*s3.Client)(nil)

func putObjectInput(bucket, key string, body io.Reader, mime string, size int64) *s3.PutObjectInput {
	return &s3.PutObjectInput{
		Bucket:        &bucket,
		Key:           &key,
		Body:          body,
		ContentType:   &mime,
		ContentLength: &size,
		ACL:           s3types.ObjectCannedACLPublicRead,
	}
}
