package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jpegBytes = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10}

func TestImageFetcher_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/typed.png":
			w.Header().Set("Content-Type", "image/png; charset=binary")
			w.Write(jpegBytes)
		case "/untyped":
			// Setting an empty slice stops net/http from sniffing a type.
			w.Header()["Content-Type"] = nil
			w.Write(jpegBytes)
		case "/missing":
			http.NotFound(w, r)
		case "/empty":
			w.Header().Set("Content-Type", "image/jpeg")
		case "/big":
			w.Header().Set("Content-Type", "image/jpeg")
			w.Write(make([]byte, 64))
		}
	}))
	defer server.Close()

	fetcher := NewImageFetcher(5*time.Second, 32)
	ctx := context.Background()

	t.Run("keeps origin content type", func(t *testing.T) {
		img, err := fetcher.Fetch(ctx, server.URL+"/typed.png")
		require.NoError(t, err)
		assert.Equal(t, "image/png", img.MIMEType)
		assert.Equal(t, jpegBytes, img.Data)
	})

	t.Run("defaults missing content type", func(t *testing.T) {
		img, err := fetcher.Fetch(ctx, server.URL+"/untyped")
		require.NoError(t, err)
		assert.Equal(t, "image/jpeg", img.MIMEType)
	})

	t.Run("non-2xx is an error", func(t *testing.T) {
		_, err := fetcher.Fetch(ctx, server.URL+"/missing")
		assert.ErrorContains(t, err, "status 404")
	})

	t.Run("empty body is an error", func(t *testing.T) {
		_, err := fetcher.Fetch(ctx, server.URL+"/empty")
		assert.Error(t, err)
	})

	t.Run("oversized body is an error", func(t *testing.T) {
		_, err := fetcher.Fetch(ctx, server.URL+"/big")
		assert.ErrorContains(t, err, "exceeds")
	})

	t.Run("rejects non-http schemes", func(t *testing.T) {
		_, err := fetcher.Fetch(ctx, "file:///etc/passwd")
		assert.ErrorContains(t, err, "unsupported image URL")
	})
}

func TestImageMIMEType(t *testing.T) {
	assert.Equal(t, "image/jpeg", imageMIMEType(""))
	assert.Equal(t, "image/webp", imageMIMEType("image/webp"))
	assert.Equal(t, "image/png", imageMIMEType("image/png; q=1"))
	assert.Equal(t, "image/jpeg", imageMIMEType("application/octet-stream"))
	assert.Equal(t, "image/jpeg", imageMIMEType(";;;"))
}

func TestFetchedImage_Part(t *testing.T) {
	img := &FetchedImage{Data: jpegBytes, MIMEType: "image/png"}

	blob, ok := img.Part().(genai.Blob)
	require.True(t, ok)
	assert.Equal(t, "image/png", blob.MIMEType)
	assert.Equal(t, jpegBytes, blob.Data)
}
