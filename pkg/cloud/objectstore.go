package cloud

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// ObjectStore persists a named blob and returns its public URL.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// S3PutAPI is the subset of the S3 client used for uploads.
type S3PutAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Bucket is an ObjectStore backed by a single public S3 bucket.
type S3Bucket struct {
	client S3PutAPI
	bucket string
}

// NewS3Bucket wraps an S3 client around a bucket name.
func NewS3Bucket(client S3PutAPI, bucket string) *S3Bucket {
	return &S3Bucket{client: client, bucket: bucket}
}

func (b *S3Bucket) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
		ACL:         s3types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", b.bucket, key), nil
}
