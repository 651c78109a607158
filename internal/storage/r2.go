package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/guuukimama/shop-manager/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var ErrNotConfigured = errors.New("r2 storage is not configured")

// objectPutter is the part of *s3.Client the uploader needs.
type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// R2Client stores report files in a Cloudflare R2 bucket through the S3 API.
type R2Client struct {
	client  objectPutter
	bucket  string
	baseURL string
}

func NewR2Client(ctx context.Context, cfg config.R2Config) (*R2Client, error) {
	if !cfg.Enabled() {
		return nil, ErrNotConfigured
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(
		ctx,
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				cfg.AccessKey,
				cfg.SecretKey,
				"",
			),
		),
		awsconfig.WithEndpointResolverWithOptions(
			aws.EndpointResolverWithOptionsFunc(
				func(service, region string, options ...interface{}) (aws.Endpoint, error) {
					if service == s3.ServiceID {
						return aws.Endpoint{
							URL:           cfg.Endpoint,
							SigningRegion: "auto",
						}, nil
					}
					return aws.Endpoint{}, &aws.EndpointNotFoundError{}
				},
			),
		),
	)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})
	return newR2Client(client, cfg.Bucket, cfg.PublicBaseURL), nil
}

func newR2Client(client objectPutter, bucket, baseURL string) *R2Client {
	return &R2Client{
		client:  client,
		bucket:  bucket,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Upload puts body under key and returns the public URL of the object, or
// the bare key when no public base URL is configured.
func (r *R2Client) Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	in := &s3.PutObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}

	if _, err := r.client.PutObject(ctx, in); err != nil {
		return "", fmt.Errorf("put %s: %w", key, err)
	}

	if r.baseURL == "" {
		return key, nil
	}
	return fmt.Sprintf("%s/%s", r.baseURL, key), nil
}
