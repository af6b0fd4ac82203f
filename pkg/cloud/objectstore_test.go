package cloud_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hellybrine/terraforms/pkg/cloud"
)

type fakeS3Put struct {
	input *s3.PutObjectInput
	err   error
}

func (f *fakeS3Put) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestS3Bucket_Put(t *testing.T) {
	fake := &fakeS3Put{}
	bucket := cloud.NewS3Bucket(fake, "resized-images")

	url, err := bucket.Put(context.Background(), "abc.png", []byte("image-bytes"), "image/png")
	require.NoError(t, err)

	assert.Equal(t, "https://resized-images.s3.amazonaws.com/abc.png", url)
	require.NotNil(t, fake.input)
	assert.Equal(t, "resized-images", *fake.input.Bucket)
	assert.Equal(t, "abc.png", *fake.input.Key)
	assert.Equal(t, "image/png", *fake.input.ContentType)
	assert.Equal(t, s3types.ObjectCannedACLPublicRead, fake.input.ACL)

	data, err := io.ReadAll(fake.input.Body)
	require.NoError(t, err)
	assert.Equal(t, "image-bytes", string(data))
}

func TestS3Bucket_Put_Error(t *testing.T) {
	bucket := cloud.NewS3Bucket(&fakeS3Put{err: errors.New("access denied")}, "b")

	_, err := bucket.Put(context.Background(), "k", nil, "image/png")
	assert.Error(t, err)
}
