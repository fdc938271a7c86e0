package upload

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoredName(t *testing.T) {
	a := storedName("shirt.PNG")
	b := storedName("shirt.PNG")

	assert.True(t, strings.HasSuffix(a, ".png"))
	assert.NotEqual(t, a, b)
	assert.False(t, strings.Contains(storedName("../../etc/passwd"), "/"))
	assert.Equal(t, 36, len(storedName("noext")))
}

func TestDiskStorage_Save(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	s, err := NewDiskStorage(dir)
	require.NoError(t, err)
	require.NoError(t, s.Ping(context.Background()))

	name, err := s.Save(context.Background(), File{Name: "shirt.jpg", Body: strings.NewReader("jpeg-bytes")})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, ".jpg"))

	got, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(got))
}

func TestDiskStorage_SaveNoBody(t *testing.T) {
	s, err := NewDiskStorage(t.TempDir())
	require.NoError(t, err)

	_, err = s.Save(context.Background(), File{Name: "x.png"})
	assert.ErrorIs(t, err, ErrNoFile)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("boom") }

func TestDiskStorage_SaveRemovesPartialFile(t *testing.T) {
	dir := t.TempDir()
	s, err := NewDiskStorage(dir)
	require.NoError(t, err)

	_, err = s.Save(context.Background(), File{Name: "x.png", Body: failingReader{}})
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

type fakeObjectAPI struct {
	put     *s3.PutObjectInput
	body    string
	putErr  error
	headErr error
}

func (f *fakeObjectAPI) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	f.put = in
	b, _ := io.ReadAll(in.Body)
	f.body = string(b)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeObjectAPI) HeadBucket(ctx context.Context, in *s3.HeadBucketInput, _ ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	return &s3.HeadBucketOutput{}, f.headErr
}

func TestS3Storage_Save(t *testing.T) {
	api := &fakeObjectAPI{}
	s := NewS3Storage(api, "images", "https://cdn.example.com/images/")

	ref, err := s.Save(context.Background(), File{
		Name:        "shirt.png",
		ContentType: "image/png",
		Size:        3,
		Body:        strings.NewReader("png"),
	})
	require.NoError(t, err)

	require.NotNil(t, api.put)
	assert.Equal(t, "images", aws.ToString(api.put.Bucket))
	assert.True(t, strings.HasPrefix(aws.ToString(api.put.Key), "products/"))
	assert.Equal(t, "image/png", aws.ToString(api.put.ContentType))
	assert.Equal(t, int64(3), aws.ToInt64(api.put.ContentLength))
	assert.Equal(t, "png", api.body)
	assert.Equal(t, "https://cdn.example.com/images/"+aws.ToString(api.put.Key), ref)
}

func TestS3Storage_SaveReturnsKeyWithoutPublicURL(t *testing.T) {
	api := &fakeObjectAPI{}
	s := NewS3Storage(api, "images", "")

	ref, err := s.Save(context.Background(), File{Name: "a.gif", Body: strings.NewReader("g")})
	require.NoError(t, err)
	assert.Equal(t, aws.ToString(api.put.Key), ref)
}

func TestS3Storage_Errors(t *testing.T) {
	api := &fakeObjectAPI{putErr: errors.New("denied"), headErr: errors.New("no bucket")}
	s := NewS3Storage(api, "images", "")

	_, err := s.Save(context.Background(), File{Name: "a.gif", Body: strings.NewReader("g")})
	assert.ErrorContains(t, err, "denied")
	assert.ErrorContains(t, s.Ping(context.Background()), "no bucket")

	_, err = s.Save(context.Background(), File{Name: "a.gif"})
	assert.ErrorIs(t, err, ErrNoFile)
}
