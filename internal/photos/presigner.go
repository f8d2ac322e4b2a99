// Package photos turns stored service photo references into URLs the
// dashboard can display.
package photos

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/GTDGit/opsdash/internal/config"
)

// Signer resolves a stored photo reference to a viewable URL.
type Signer interface {
	URL(ctx context.Context, ref string) (string, error)
}

// IsAbsolute reports whether ref is already a full http(s) URL.
func IsAbsolute(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

// Passthrough returns references unchanged. Used when no bucket is configured.
type Passthrough struct{}

func (Passthrough) URL(_ context.Context, ref string) (string, error) {
	return ref, nil
}

// S3Presigner signs GET URLs for photo object keys stored in a private bucket.
// Absolute URLs written by the bot are returned as they are.
type S3Presigner struct {
	client *s3.PresignClient
	bucket string
	ttl    time.Duration
}

// NewS3Presigner builds a presigner from the default AWS credential chain.
func NewS3Presigner(ctx context.Context, cfg config.PhotosConfig) (*S3Presigner, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("photos bucket is not configured")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS SDK config: %w", err)
	}

	return newS3Presigner(s3.NewFromConfig(awsCfg), cfg.Bucket, cfg.URLTTL), nil
}

func newS3Presigner(client *s3.Client, bucket string, ttl time.Duration) *S3Presigner {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &S3Presigner{
		client: s3.NewPresignClient(client),
		bucket: bucket,
		ttl:    ttl,
	}
}

func (p *S3Presigner) URL(ctx context.Context, ref string) (string, error) {
	if ref == "" || IsAbsolute(ref) {
		return ref, nil
	}

	req, err := p.client.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(strings.TrimPrefix(ref, "/")),
	}, s3.WithPresignExpires(p.ttl))
	if err != nil {
		return "", fmt.Errorf("failed to presign %q: %w", ref, err)
	}
	return req.URL, nil
}

// New returns an S3 presigner when a bucket is configured and Passthrough
// otherwise.
func New(ctx context.Context, cfg config.PhotosConfig) (Signer, error) {
	if cfg.Bucket == "" {
		return Passthrough{}, nil
	}
	return NewS3Presigner(ctx, cfg)
}
