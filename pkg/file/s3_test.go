package file_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/detectkit/pkg/file"
)

type MockS3Client struct {
	mock.Mock
}

func (m *MockS3Client) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	args := m.Called(ctx, params, optFns)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.GetObjectOutput), args.Error(1)
}

func newSource(t *testing.T, client *MockS3Client, cfg file.S3Config, opts ...file.S3Option) *file.S3Source {
	t.Helper()
	src, err := file.NewS3Source(context.Background(), cfg, append(opts, file.WithS3Client(client))...)
	require.NoError(t, err)
	return src
}

func objectInput(bucket, key string) any {
	return mock.MatchedBy(func(in *s3.GetObjectInput) bool {
		return aws.ToString(in.Bucket) == bucket && aws.ToString(in.Key) == key
	})
}

func TestNewS3Source_RequiresRegion(t *testing.T) {
	t.Parallel()

	_, err := file.NewS3Source(context.Background(), file.S3Config{})
	assert.ErrorIs(t, err, file.ErrInvalidConfig)
}

func TestParseS3URI(t *testing.T) {
	t.Parallel()

	bucket, key, err := file.ParseS3URI("s3://uploads/a/b.png")
	require.NoError(t, err)
	assert.Equal(t, "uploads", bucket)
	assert.Equal(t, "a/b.png", key)

	bucket, key, err = file.ParseS3URI("s3:///b.png")
	require.NoError(t, err)
	assert.Empty(t, bucket)
	assert.Equal(t, "b.png", key)

	for _, ref := range []string{"/tmp/a.png", "s3://bucket", "s3://bucket/dir/", "s3://bucket/../x"} {
		_, _, err := file.ParseS3URI(ref)
		assert.ErrorIs(t, err, file.ErrInvalidPath, ref)
	}
}

func TestS3Source_Open(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	data := pngBytes(t)

	t.Run("downloads object", func(t *testing.T) {
		t.Parallel()
		client := &MockS3Client{}
		client.On("GetObject", mock.Anything, objectInput("uploads", "cats/cat.png"), mock.Anything).
			Return(&s3.GetObjectOutput{
				Body:          io.NopCloser(bytes.NewReader(data)),
				ContentLength: aws.Int64(int64(len(data))),
			}, nil)

		blob, err := newSource(t, client, file.S3Config{}).Open(ctx, "s3://uploads/cats/cat.png")
		require.NoError(t, err)
		assert.Equal(t, "cat.png", blob.Name)
		assert.Equal(t, "image/png", blob.MIMEType)
		assert.Equal(t, data, blob.Data)
		client.AssertExpectations(t)
	})

	t.Run("default bucket", func(t *testing.T) {
		t.Parallel()
		client := &MockS3Client{}
		client.On("GetObject", mock.Anything, objectInput("fallback", "x.png"), mock.Anything).
			Return(&s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil)

		_, err := newSource(t, client, file.S3Config{DefaultBucket: "fallback"}).Open(ctx, "s3:///x.png")
		require.NoError(t, err)
		client.AssertExpectations(t)
	})

	t.Run("no bucket", func(t *testing.T) {
		t.Parallel()
		client := &MockS3Client{}
		_, err := newSource(t, client, file.S3Config{}).Open(ctx, "s3:///x.png")
		assert.ErrorIs(t, err, file.ErrInvalidPath)
		client.AssertNotCalled(t, "GetObject", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("content length over limit", func(t *testing.T) {
		t.Parallel()
		client := &MockS3Client{}
		client.On("GetObject", mock.Anything, mock.Anything, mock.Anything).
			Return(&s3.GetObjectOutput{
				Body:          io.NopCloser(bytes.NewReader(data)),
				ContentLength: aws.Int64(1 << 30),
			}, nil)

		_, err := newSource(t, client, file.S3Config{}).Open(ctx, "s3://b/k.png")
		assert.ErrorIs(t, err, file.ErrFileTooLarge)
	})

	t.Run("body over limit without length", func(t *testing.T) {
		t.Parallel()
		client := &MockS3Client{}
		client.On("GetObject", mock.Anything, mock.Anything, mock.Anything).
			Return(&s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil)

		_, err := newSource(t, client, file.S3Config{}, file.WithS3MaxSize(4)).Open(ctx, "s3://b/k.png")
		assert.ErrorIs(t, err, file.ErrFileTooLarge)
	})
}

func TestS3Source_ErrorClassification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"no such key", &types.NoSuchKey{}, file.ErrFileNotFound},
		{"no such bucket", &types.NoSuchBucket{}, file.ErrBucketNotFound},
		{"access denied", &smithy.GenericAPIError{Code: "AccessDenied"}, file.ErrAccessDenied},
		{"throttled", &smithy.GenericAPIError{Code: "SlowDown"}, file.ErrServiceUnavailable},
		{"request timeout", &smithy.GenericAPIError{Code: "RequestTimeout"}, file.ErrRequestTimeout},
		{"deadline", context.DeadlineExceeded, file.ErrOperationTimeout},
		{"canceled", context.Canceled, file.ErrOperationCanceled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			client := &MockS3Client{}
			client.On("GetObject", mock.Anything, mock.Anything, mock.Anything).Return(nil, tt.err)

			_, err := newSource(t, client, file.S3Config{}).Open(context.Background(), "s3://b/k.png")
			assert.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("unknown code keeps cause", func(t *testing.T) {
		t.Parallel()
		cause := &smithy.GenericAPIError{Code: "Weird"}
		client := &MockS3Client{}
		client.On("GetObject", mock.Anything, mock.Anything, mock.Anything).Return(nil, cause)

		_, err := newSource(t, client, file.S3Config{}).Open(context.Background(), "s3://b/k.png")
		var apiErr smithy.APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, "Weird", apiErr.ErrorCode())
	})
}

func TestResolver_S3(t *testing.T) {
	t.Parallel()
	data := pngBytes(t)
	client := &MockS3Client{}
	client.On("GetObject", mock.Anything, objectInput("b", "k.png"), mock.Anything).
		Return(&s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil)

	r := file.NewResolver(file.WithS3Source(newSource(t, client, file.S3Config{})))
	blob, err := r.Open(context.Background(), "s3://b/k.png")
	require.NoError(t, err)
	assert.Equal(t, "k.png", blob.Name)
}
