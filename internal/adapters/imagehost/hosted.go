package imagehost

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
)

// HostedUploader posts images to an ImgBB-style upload endpoint and
// returns the direct file URL. When the host rejects a small file it
// falls back to the inline data URL so the gallery entry still works.
type HostedUploader struct {
	uploadURL string
	apiKey    string
	client    *http.Client
	fallback  InlineUploader
}

// Compile-time check.
var _ Uploader = (*HostedUploader)(nil)

// NewHostedUploader creates an uploader for the given endpoint.
// PRE: uploadURL and apiKey are non-empty
// POST: Returns a ready uploader using httpClient, or http.DefaultClient when nil
func NewHostedUploader(uploadURL, apiKey string, httpClient *http.Client) *HostedUploader {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HostedUploader{
		uploadURL: uploadURL,
		apiKey:    apiKey,
		client:    httpClient,
	}
}

// Upload posts the image as multipart form data.
// PRE: data is non-empty
// POST: Returns the hosted direct URL, or an inline data URL when the
// host fails and the file is small enough
func (u *HostedUploader) Upload(ctx context.Context, data []byte, contentType string) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyImage
	}

	url, err := u.post(ctx, data)
	if err == nil {
		return url, nil
	}
	slog.Warn("image_upload_failed", "error", err)

	if len(data) <= MaxInlineSize {
		return u.fallback.Upload(ctx, data, contentType)
	}
	return "", err
}

// post performs the multipart upload and parses the response envelope.
func (u *HostedUploader) post(ctx context.Context, data []byte) (string, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("image", "upload")
	if err != nil {
		return "", err
	}
	if _, err := part.Write(data); err != nil {
		return "", err
	}
	if err := form.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s?key=%s", u.uploadURL, u.apiKey), &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := u.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("%w: status %d: %s", ErrUploadFailed, resp.StatusCode, detail)
	}

	var parsed struct {
		Success bool `json:"success"`
		Data    struct {
			Image struct {
				URL string `json:"url"`
			} `json:"image"`
			DisplayURL string `json:"display_url"`
			URL        string `json:"url"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("%w: decode: %v", ErrUploadFailed, err)
	}
	if !parsed.Success {
		return "", fmt.Errorf("%w: host reported failure", ErrUploadFailed)
	}

	// Prefer the direct file URL over the viewer page.
	switch {
	case parsed.Data.Image.URL != "":
		return parsed.Data.Image.URL, nil
	case parsed.Data.DisplayURL != "":
		return parsed.Data.DisplayURL, nil
	case parsed.Data.URL != "":
		return parsed.Data.URL, nil
	}
	return "", fmt.Errorf("%w: no URL in response", ErrUploadFailed)
}
