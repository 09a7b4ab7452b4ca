package attach

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/xid"
)

// S3Store keeps attachments in an S3 bucket, one object per blob under a
// key prefix. The advertised filename rides along as object metadata.
//
// Example:
//
//	cfg, _ := config.LoadDefaultConfig(context.Background())
//	store := attach.NewS3Store(s3.NewFromConfig(cfg), "my-bucket", "attachments/", 8<<20)
type S3Store struct {
	client  *s3.Client
	bucket  string
	prefix  string
	maxSize int64
}

const metaFilename = "attachment-filename"

// NewS3Store creates an S3-backed store. maxSize bounds a single blob;
// 0 means no limit.
func NewS3Store(client *s3.Client, bucket, prefix string, maxSize int64) *S3Store {
	return &S3Store{
		client:  client,
		bucket:  bucket,
		prefix:  prefix,
		maxSize: maxSize,
	}
}

// Save implements Store.
func (s *S3Store) Save(ctx context.Context, name string, data []byte) (string, error) {
	if s.maxSize > 0 && int64(len(data)) > s.maxSize {
		return "", ErrTooLarge
	}

	id := xid.New().String()
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.prefix + id),
		Body:   bytes.NewReader(data),
		Metadata: map[string]string{
			metaFilename: name,
		},
	})
	if err != nil {
		return "", fmt.Errorf("s3 put failed: %w", err)
	}

	return id, nil
}

// Fetch implements Store.
func (s *S3Store) Fetch(ctx context.Context, id string) (*Attachment, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.prefix + id),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			// Lifecycle rules delete aged objects, so a missing key is
			// indistinguishable from expiry once the id was issued.
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("s3 get failed: %w", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("s3 read failed: %w", err)
	}

	a := &Attachment{
		ID:   id,
		Name: out.Metadata[metaFilename],
		Data: data,
	}
	if out.LastModified != nil {
		a.SavedAt = *out.LastModified
	}
	return a, nil
}

// Cleanup implements Store. Prefer an S3 lifecycle rule on the prefix;
// this is for buckets where configuring one is not an option.
func (s *S3Store) Cleanup(ctx context.Context, maxAge time.Duration) error {
	cutoff := time.Now().Add(-maxAge)

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("s3 list failed: %w", err)
		}
		for _, obj := range page.Contents {
			if obj.LastModified == nil || !obj.LastModified.Before(cutoff) {
				continue
			}
			_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
				Bucket: aws.String(s.bucket),
				Key:    obj.Key,
			})
			if err != nil {
				return fmt.Errorf("s3 delete failed: %w", err)
			}
		}
	}

	return nil
}
