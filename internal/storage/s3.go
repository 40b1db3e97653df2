package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"github.com/dukerupert/regcheck/internal/domain"
)

// S3Config holds connection parameters for S3-compatible object storage.
// A custom Endpoint points the client at R2 or MinIO; static credentials
// are optional and fall back to the default AWS credential chain.
type S3Config struct {
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// S3Source opens batch inputs from S3-compatible object storage.
type S3Source struct {
	cfg S3Config

	mu     sync.Mutex
	client *s3.Client
}

// NewS3Source creates an object-storage input source. The client is built
// lazily on first Open so constructing a source never touches the network.
func NewS3Source(cfg S3Config) *S3Source {
	return &S3Source{cfg: cfg}
}

// Open fetches the object addressed by an s3://bucket/key reference and
// returns its body stream.
func (s *S3Source) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	bucket, key, err := ParseS3Ref(ref)
	if err != nil {
		return nil, err
	}

	client, err := s.getClient(ctx)
	if err != nil {
		return nil, err
	}

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NoSuchKey" {
			return nil, domain.NotFound("input.open", "input object", ref)
		}
		return nil, fmt.Errorf("failed to fetch input object: %w", err)
	}

	return out.Body, nil
}

func (s *S3Source) getClient(ctx context.Context) (*s3.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil {
		return s.client, nil
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(s.cfg.Region),
	}
	if s.cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(s.cfg.AccessKey, s.cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s.client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if s.cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(s.cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return s.client, nil
}

// ParseS3Ref splits an s3://bucket/key reference into bucket and key.
func ParseS3Ref(ref string) (bucket, key string, err error) {
	if !IsS3Ref(ref) {
		return "", "", domain.Invalid("input.parse", fmt.Sprintf("not an s3 reference: %s", ref))
	}

	rest := strings.TrimPrefix(ref, s3Scheme)
	bucket, key, found := strings.Cut(rest, "/")
	if !found || bucket == "" || key == "" {
		return "", "", domain.Invalid("input.parse", fmt.Sprintf("malformed s3 reference: %s", ref))
	}

	return bucket, key, nil
}
