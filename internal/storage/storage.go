// Package storage resolves batch-input references to readable streams.
// A reference is either a local file path or an s3://bucket/key URL.
package storage

import (
	"context"
	"io"
	"strings"

	"github.com/dukerupert/regcheck/internal"
)

// Source opens a batch-input reference for reading. The caller owns the
// returned reader and must close it.
type Source interface {
	Open(ctx context.Context, ref string) (io.ReadCloser, error)
}

// s3Scheme prefixes references served from object storage.
const s3Scheme = "s3://"

// IsS3Ref reports whether ref addresses object storage.
func IsS3Ref(ref string) bool {
	return strings.HasPrefix(ref, s3Scheme)
}

// NewSource returns the Source able to open ref: S3 for s3:// references,
// the local filesystem for everything else.
func NewSource(ref string, cfg internal.InputConfig) (Source, error) {
	if IsS3Ref(ref) {
		return NewS3Source(S3Config{
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		}), nil
	}
	return NewLocalSource(), nil
}
