package services

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
)

const defaultImageMIME = "image/jpeg"

// FetchedImage is a downloaded image ready to be attached to a prompt.
type FetchedImage struct {
	Data     []byte
	MIMEType string
}

// Part returns the image as an inline Gemini blob.
func (i *FetchedImage) Part() genai.Part {
	return genai.Blob{MIMEType: i.MIMEType, Data: i.Data}
}

type ImageFetcher struct {
	client   *http.Client
	maxBytes int64
}

func NewImageFetcher(timeout time.Duration, maxBytes int64) *ImageFetcher {
	return &ImageFetcher{
		client:   &http.Client{Timeout: timeout},
		maxBytes: maxBytes,
	}
}

// Fetch downloads a publicly reachable image. Non-2xx answers, empty bodies
// and bodies above the size cap are errors.
func (f *ImageFetcher) Fetch(ctx context.Context, rawURL string) (*FetchedImage, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("unsupported image URL %q", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create image request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("image fetch returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("image exceeds %d bytes", f.maxBytes)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("image payload is empty")
	}

	return &FetchedImage{
		Data:     data,
		MIMEType: imageMIMEType(resp.Header.Get("Content-Type")),
	}, nil
}

// imageMIMEType strips parameters from a Content-Type header and falls back
// to JPEG when the origin sent nothing usable.
func imageMIMEType(header string) string {
	if header == "" {
		return defaultImageMIME
	}
	mediaType, _, err := mime.ParseMediaType(header)
	if err != nil || !strings.HasPrefix(mediaType, "image/") {
		return defaultImageMIME
	}
	return mediaType
}
