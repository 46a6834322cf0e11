package catalog

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilePublisher_ReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pricing", "normalized-pricing.json")
	p := FilePublisher{Path: path}

	require.NoError(t, p.Publish(context.Background(), []byte(`[1]`)))
	require.NoError(t, p.Publish(context.Background(), []byte(`[2]`)))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `[2]`, string(got))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
	assert.Equal(t, path, p.Destination())
}

type fakeS3 struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakeS3) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.input = params
	f.body, _ = io.ReadAll(params.Body)
	return &s3.PutObjectOutput{}, nil
}

func TestS3Publisher(t *testing.T) {
	fake := &fakeS3{}
	p := &S3Publisher{client: fake, bucket: "pricing-cache", key: "bedrock/normalized-pricing.json"}

	require.NoError(t, p.Publish(context.Background(), []byte(`[]`)))
	assert.Equal(t, "pricing-cache", aws.ToString(fake.input.Bucket))
	assert.Equal(t, "bedrock/normalized-pricing.json", aws.ToString(fake.input.Key))
	assert.Equal(t, "application/json", aws.ToString(fake.input.ContentType))
	assert.Equal(t, `[]`, string(fake.body))
	assert.Equal(t, "s3://pricing-cache/bedrock/normalized-pricing.json", p.Destination())
}

func TestS3Publisher_Error(t *testing.T) {
	boom := errors.New("access denied")
	p := &S3Publisher{client: &fakeS3{err: boom}, bucket: "b", key: "k"}
	err := p.Publish(context.Background(), []byte(`[]`))
	assert.ErrorIs(t, err, boom)
}
