package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/regcheck/internal"
	"github.com/dukerupert/regcheck/internal/domain"
)

func TestNewSource_Dispatch(t *testing.T) {
	local, err := NewSource("data/rows.json", internal.InputConfig{})
	require.NoError(t, err)
	assert.IsType(t, &LocalSource{}, local)

	remote, err := NewSource("s3://bucket/rows.json", internal.InputConfig{S3Region: "us-east-1"})
	require.NoError(t, err)
	assert.IsType(t, &S3Source{}, remote)
}

func TestLocalSource_Open(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.json")
	require.NoError(t, os.WriteFile(path, []byte("{}\n"), 0o644))

	src := NewLocalSource()
	rc, err := src.Open(context.Background(), path)
	require.NoError(t, err)
	defer rc.Close()

	content, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "{}\n", string(content))
}

func TestLocalSource_OpenMissing(t *testing.T) {
	src := NewLocalSource()
	_, err := src.Open(context.Background(), "does/not/exist.json")
	require.Error(t, err)
	assert.Equal(t, domain.ENOTFOUND, domain.ErrorCode(err))
}

func TestParseS3Ref(t *testing.T) {
	bucket, key, err := ParseS3Ref("s3://intake/batches/2023-01-01.json")
	require.NoError(t, err)
	assert.Equal(t, "intake", bucket)
	assert.Equal(t, "batches/2023-01-01.json", key)

	for _, ref := range []string{"intake/rows.json", "s3://", "s3://bucket", "s3://bucket/"} {
		_, _, err := ParseS3Ref(ref)
		assert.Error(t, err, "ref %q should not parse", ref)
	}
}
