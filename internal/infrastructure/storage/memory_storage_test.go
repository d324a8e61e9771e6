package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorage(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStorage()
	key := "tenants/t1/propostas/p1/d1-rg.pdf"

	exists, err := m.ObjectExists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, m.Upload(ctx, key, strings.NewReader("%PDF-1.4"), 8, "application/pdf"))
	exists, err = m.ObjectExists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)
	data, ok := m.Get(key)
	require.True(t, ok)
	assert.Equal(t, "%PDF-1.4", string(data))

	link, exp, err := m.GenerateDownloadURL(ctx, key, "rg.pdf", time.Minute)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(link, "http://storage.local/download/"))
	assert.True(t, exp.After(time.Now()))

	require.NoError(t, m.DeleteObject(ctx, key))
	exists, _ = m.ObjectExists(ctx, key)
	assert.False(t, exists)

	_, _, err = m.GenerateUploadURL(ctx, "", "application/pdf", 0)
	assert.ErrorIs(t, err, errEmptyKey)
}
