package catalog

import (
	"bytes"
	"context"
	"fmt"

	"github.com/af-corp/llm-cost-calculator/internal/fsutil"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Publisher writes a rendered catalog so that readers see either the old
// file or the new one, never a partial write.
type Publisher interface {
	Publish(ctx context.Context, data []byte) error
	Destination() string
}

// FilePublisher writes to a temp file in the target directory and renames
// it into place.
type FilePublisher struct {
	Path string
}

func (p FilePublisher) Destination() string { return p.Path }

func (p FilePublisher) Publish(_ context.Context, data []byte) error {
	if err := fsutil.WriteFileAtomic(p.Path, data, 0o644); err != nil {
		return fmt.Errorf("publish catalog: %w", err)
	}
	return nil
}

// putObjectAPI is the slice of the S3 client the publisher needs.
type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Publisher uploads the catalog with a single PutObject, which S3 applies
// atomically.
type S3Publisher struct {
	client putObjectAPI
	bucket string
	key    string
}

func NewS3Publisher(ctx context.Context, region, bucket, key string) (*S3Publisher, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &S3Publisher{client: s3.NewFromConfig(cfg), bucket: bucket, key: key}, nil
}

func (p *S3Publisher) Destination() string { return "s3://" + p.bucket + "/" + p.key }

func (p *S3Publisher) Publish(ctx context.Context, data []byte) error {
	_, err := p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(p.bucket),
		Key:          aws.String(p.key),
		Body:         bytes.NewReader(data),
		ContentType:  aws.String("application/json"),
		CacheControl: aws.String("max-age=3600"),
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", p.Destination(), err)
	}
	return nil
}
