//go:build integration

package storage

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/documind-ai/documind/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestS3ClientIntegration(t *testing.T) {
	ctx := context.Background()
	rc := testutil.NewRustFSContainer(ctx, t)
	defer rc.Terminate(ctx)

	client, err := NewS3Client(ctx, S3ClientConfig{
		Endpoint:        rc.Endpoint(),
		Region:          "us-east-1",
		AccessKeyID:     rc.AccessKey,
		SecretAccessKey: rc.SecretKey,
		Bucket:          "documind-uploads",
		UsePathStyle:    true,
	})
	require.NoError(t, err)

	t.Run("EnsureBucket", func(t *testing.T) {
		require.NoError(t, client.EnsureBucket(ctx))
		// Second call sees the existing bucket.
		require.NoError(t, client.EnsureBucket(ctx))
	})

	t.Run("UploadAndDownload", func(t *testing.T) {
		content := []byte("Refunds take 30 days.")
		require.NoError(t, client.Upload(ctx, "policy.txt", content, "text/plain"))

		url, err := client.DownloadURL(ctx, "policy.txt", 5*time.Minute)
		require.NoError(t, err)
		require.NotEmpty(t, url)

		resp, err := http.Get(url)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, content, body)
		assert.Equal(t, "text/plain", resp.Header.Get("Content-Type"))
	})

	t.Run("ReuploadOverwrites", func(t *testing.T) {
		require.NoError(t, client.Upload(ctx, "notes.md", []byte("v1"), "text/markdown"))
		require.NoError(t, client.Upload(ctx, "notes.md", []byte("v2 content"), "text/markdown"))

		url, err := client.DownloadURL(ctx, "notes.md", 5*time.Minute)
		require.NoError(t, err)

		resp, err := http.Get(url)
		require.NoError(t, err)
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, []byte("v2 content"), body)
	})

	t.Run("MissingObject", func(t *testing.T) {
		// Presigning never touches the store; the GET is what fails.
		url, err := client.DownloadURL(ctx, "never-uploaded.pdf", 0)
		require.NoError(t, err)

		resp, err := http.Get(url)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}
