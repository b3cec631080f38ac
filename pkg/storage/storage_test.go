package storage

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = context.Background()

// fakeS3 is an in-memory bucket.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	b, _ := io.ReadAll(in.Body)
	f.mu.Lock()
	f.objects[aws.ToString(in.Key)] = b
	f.mu.Unlock()
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(b))}, nil
}

func (f *fakeS3) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{ContentLength: aws.Int64(int64(len(b)))}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	delete(f.objects, aws.ToString(in.Key))
	f.mu.Unlock()
	return &s3.DeleteObjectOutput{}, nil
}

func disks(t *testing.T) map[string]Disk {
	local, err := NewLocal(t.TempDir(), "http://cdn.test/media")
	require.NoError(t, err)
	return map[string]Disk{
		"local": local,
		"s3":    newS3(&fakeS3{objects: map[string][]byte{}}, "media", "https://media.s3.test"),
	}
}

func TestDiskContract(t *testing.T) {
	for name, d := range disks(t) {
		t.Run(name, func(t *testing.T) {
			assert.False(t, d.Exists(ctx, "shots/front.jpg"))
			_, err := d.Get(ctx, "shots/front.jpg")
			assert.ErrorIs(t, err, ErrNotExist)

			require.NoError(t, d.Put(ctx, "shots/front.jpg", []byte("jpeg-bytes")))
			assert.True(t, d.Exists(ctx, "shots/front.jpg"))

			got, err := d.Get(ctx, "shots/front.jpg")
			require.NoError(t, err)
			assert.Equal(t, "jpeg-bytes", string(got))

			size, err := d.Size(ctx, "shots/front.jpg")
			require.NoError(t, err)
			assert.Equal(t, int64(10), size)

			require.NoError(t, d.Delete(ctx, "shots/front.jpg"))
			require.NoError(t, d.Delete(ctx, "shots/front.jpg"))
			assert.False(t, d.Exists(ctx, "shots/front.jpg"))
		})
	}
}

func TestURLs(t *testing.T) {
	d := disks(t)
	assert.Equal(t, "http://cdn.test/media/a/b.jpg", d["local"].URL("a/b.jpg"))
	assert.Equal(t, "https://media.s3.test/a/b.jpg", d["s3"].URL("/a/b.jpg"))
}

func TestLocalRejectsEscapes(t *testing.T) {
	d, err := NewLocal(t.TempDir(), "")
	require.NoError(t, err)
	_, err = d.Get(ctx, "../../etc/passwd")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotExist)
}

func TestManager(t *testing.T) {
	m := NewManagerWith("s3", disks(t))
	assert.Equal(t, []string{"local", "s3"}, m.Names())
	assert.IsType(t, &S3{}, m.Default())

	_, err := m.Disk("gcs")
	assert.Error(t, err)
	d, err := m.Disk("local")
	require.NoError(t, err)
	assert.IsType(t, &Local{}, d)
}
