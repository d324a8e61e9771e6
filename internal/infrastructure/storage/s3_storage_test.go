package storage

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/aprovacrm/backend/internal/infrastructure/config"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStorageConfig() config.StorageConfig {
	return config.StorageConfig{
		Enabled:      true,
		Endpoint:     "localhost:9000",
		Bucket:       "proposta-documentos",
		AccessKey:    "minio",
		SecretKey:    "minio-secret",
		UsePathStyle: true,
	}
}

func TestNewS3Storage_Validation(t *testing.T) {
	cfg := testStorageConfig()
	cfg.Bucket = ""
	_, err := NewS3Storage(cfg, nil)
	assert.ErrorContains(t, err, "bucket is required")

	cfg = testStorageConfig()
	cfg.SecretKey = ""
	_, err = NewS3Storage(cfg, nil)
	assert.ErrorContains(t, err, "secret key are required")

	s, err := NewS3Storage(testStorageConfig(), nil)
	require.NoError(t, err)
	assert.Equal(t, "proposta-documentos", s.Bucket())
	assert.Equal(t, defaultPresignExpiration, s.presignExpiration)
}

func TestNormalizeEndpoint(t *testing.T) {
	got, err := normalizeEndpoint("minio:9000", true)
	require.NoError(t, err)
	assert.Equal(t, "https://minio:9000", got)

	got, err = normalizeEndpoint("", false)
	require.NoError(t, err)
	assert.Equal(t, defaultEndpoint, got)

	got, err = normalizeEndpoint("http://s3.local", true)
	require.NoError(t, err)
	assert.Equal(t, "http://s3.local", got)
}

func TestS3Storage_PresignedURLs(t *testing.T) {
	s, err := NewS3Storage(testStorageConfig(), nil)
	require.NoError(t, err)
	ctx := context.Background()
	key := "tenants/t1/propostas/p1/d1-rg.pdf"

	upload, exp, err := s.GenerateUploadURL(ctx, key, "application/pdf", 0)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(defaultPresignExpiration), exp, 5*time.Second)
	u, err := url.Parse(upload)
	require.NoError(t, err)
	assert.Equal(t, "localhost:9000", u.Host)
	assert.Equal(t, "/proposta-documentos/"+key, u.Path)
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))

	download, _, err := s.GenerateDownloadURL(ctx, key, "rg.pdf", time.Minute)
	require.NoError(t, err)
	u, err = url.Parse(download)
	require.NoError(t, err)
	assert.Equal(t, "60", u.Query().Get("X-Amz-Expires"))
	assert.True(t, strings.HasPrefix(u.Query().Get("response-content-disposition"), "attachment"))

	_, _, err = s.GenerateUploadURL(ctx, "", "application/pdf", 0)
	assert.ErrorIs(t, err, errEmptyKey)
	_, err = s.ObjectExists(ctx, "")
	assert.ErrorIs(t, err, errEmptyKey)
	assert.ErrorIs(t, s.DeleteObject(ctx, ""), errEmptyKey)
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, isNotFound(&types.NotFound{}))
	assert.True(t, isNotFound(&types.NoSuchKey{}))
	assert.False(t, isNotFound(assert.AnError))
}

func TestContentDisposition(t *testing.T) {
	assert.Equal(t, `attachment; filename=rg.pdf`, contentDisposition("rg.pdf"))
	assert.Contains(t, contentDisposition("comprovante de renda.pdf"), `"comprovante de renda.pdf"`)
}
