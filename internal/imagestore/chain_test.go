package imagestore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUploader struct {
	name  string
	url   string
	err   error
	calls int
}

func (s *stubUploader) Name() string { return s.name }

func (s *stubUploader) Upload(ctx context.Context, data []byte, name string) (string, error) {
	s.calls++
	return s.url, s.err
}

func TestChainReportsWinningBackend(t *testing.T) {
	s3 := &stubUploader{name: "s3", err: errors.New("access denied")}
	local := &stubUploader{name: "local", url: "file:///tmp/images/a.jpg"}
	chain := NewChain(s3, local)

	url, backend, err := chain.Upload(context.Background(), []byte("img"), "a.jpg")
	require.NoError(t, err)
	assert.Equal(t, "file:///tmp/images/a.jpg", url)
	assert.Equal(t, "local", backend)
	assert.Equal(t, 1, s3.calls)
	assert.Equal(t, 1, local.calls)
}

func TestChainStopsAtFirstSuccess(t *testing.T) {
	s3 := &stubUploader{name: "s3", url: "https://cdn.example.com/a.jpg"}
	local := &stubUploader{name: "local", url: "file:///tmp/a.jpg"}
	chain := NewChain(s3, local)

	url, backend, err := chain.Upload(context.Background(), []byte("img"), "a.jpg")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/a.jpg", url)
	assert.Equal(t, "s3", backend)
	assert.Equal(t, 0, local.calls)
}

func TestChainAggregatesFailures(t *testing.T) {
	s3 := &stubUploader{name: "s3", err: errors.New("access denied")}
	local := &stubUploader{name: "local", err: errors.New("disk full")}
	chain := NewChain(s3, local)

	_, _, err := chain.Upload(context.Background(), []byte("img"), "a.jpg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
	assert.Contains(t, err.Error(), "disk full")
}

func TestLocalUploadStripsPathParts(t *testing.T) {
	dir := t.TempDir()
	local, err := NewLocal(LocalConfig{Dir: dir, BaseURL: "https://bot.example.com/images"})
	require.NoError(t, err)

	url, err := local.Upload(context.Background(), []byte("img"), "../../etc/passwd.jpg")
	require.NoError(t, err)
	assert.Equal(t, "https://bot.example.com/images/passwd.jpg", url)
}
