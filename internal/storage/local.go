package storage

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dukerupert/regcheck/internal/domain"
)

// LocalSource opens batch inputs from the local filesystem.
type LocalSource struct{}

// NewLocalSource creates a local filesystem input source.
func NewLocalSource() *LocalSource {
	return &LocalSource{}
}

// Open opens the file at ref.
func (s *LocalSource) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	f, err := os.Open(ref)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.NotFound("input.open", "input file", ref)
		}
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	return f, nil
}
