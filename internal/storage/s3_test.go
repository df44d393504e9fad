package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	objects     map[string]string
	contentType map[string]string
	bucketErr   error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string]string{}, contentType: map[string]string{}}
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Key)] = string(body)
	f.contentType[aws.ToString(in.Key)] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) HeadObject(ctx context.Context, in *s3.HeadObjectInput, opts ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if _, ok := f.objects[aws.ToString(in.Key)]; ok {
		return &s3.HeadObjectOutput{}, nil
	}
	return nil, &types.NotFound{}
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) HeadBucket(ctx context.Context, in *s3.HeadBucketInput, opts ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	return &s3.HeadBucketOutput{}, f.bucketErr
}

func TestS3Backend_SaveAndCollision(t *testing.T) {
	client := newFakeS3()
	b := newS3Backend(client, "media", "https://cdn.example.com/")
	ctx := context.Background()

	first, err := b.Save(ctx, "services/logo.png", strings.NewReader("one"), "image/png")
	require.NoError(t, err)
	second, err := b.Save(ctx, "services/logo.png", strings.NewReader("two"), "image/png")
	require.NoError(t, err)

	assert.Equal(t, "services/logo.png", first)
	assert.NotEqual(t, first, second)
	assert.Equal(t, "one", client.objects[first])
	assert.Equal(t, "two", client.objects[second])
	assert.Equal(t, "image/png", client.contentType[first])
	assert.Equal(t, "https://cdn.example.com/services/logo.png", b.URL(first))
}

func TestS3Backend_ExistsAndDelete(t *testing.T) {
	client := newFakeS3()
	b := newS3Backend(client, "media", "https://cdn.example.com")
	ctx := context.Background()

	ok, err := b.Exists(ctx, "resumes/cv.pdf")
	require.NoError(t, err)
	assert.False(t, ok)

	client.objects["resumes/cv.pdf"] = "x"
	ok, err = b.Exists(ctx, "resumes/cv.pdf")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, b.Delete(ctx, "resumes/cv.pdf"))
	assert.Empty(t, client.objects)
}

func TestS3Backend_Ping(t *testing.T) {
	client := newFakeS3()
	b := newS3Backend(client, "media", "")
	require.NoError(t, b.Ping(context.Background()))

	client.bucketErr = errors.New("forbidden")
	err := b.Ping(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "media")
}

func TestSecureStorage_WithS3Backend(t *testing.T) {
	client := newFakeS3()
	s := NewSecureStorage(newS3Backend(client, "media", "https://cdn.example.com"), DefaultMaxSize)

	name, err := s.Save(context.Background(), "resumes/cv.pdf", strings.NewReader(string(pdfContent)), int64(len(pdfContent)))
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", client.contentType[name])
}
