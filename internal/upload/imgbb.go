package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"boltadmin/internal/apperr"

	"github.com/rs/zerolog/log"
)

// ImgBBClient uploads images to the imgbb hosting service and returns their
// public display URLs.
type ImgBBClient struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

// NewImgBBClient creates an imgbb client. The endpoint is the upload URL
// without the key query parameter. A missing key is reported on the first
// upload attempt, not at construction.
func NewImgBBClient(endpoint, apiKey string) *ImgBBClient {
	return &ImgBBClient{
		endpoint: endpoint,
		apiKey:   apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// imgbbResponse is the host's upload response envelope
type imgbbResponse struct {
	Success bool `json:"success"`
	Data    struct {
		DisplayURL string `json:"display_url"`
	} `json:"data"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Upload sends the valid subset of files to imgbb one at a time. Uploads are
// deliberately sequential: per-file progress stays simple and the host sees a
// bounded concurrent load. A host-side failure fails the batch; URLs already
// collected are returned with the error.
func (c *ImgBBClient) Upload(ctx context.Context, files []File, progress ProgressFunc) ([]string, []Rejected, error) {
	valid, indexes, rejected := screen(files)
	if len(valid) > 0 && c.apiKey == "" {
		return nil, rejected, apperr.UploadErr("Image host API key is not configured", nil)
	}

	urls := make([]string, 0, len(valid))
	for i, f := range valid {
		u, err := c.uploadOne(ctx, f)
		if err != nil {
			return urls, rejected, err
		}
		urls = append(urls, u)
		if progress != nil {
			progress(indexes[i], 100)
		}
	}

	if len(urls) > 0 {
		log.Info().Int("count", len(urls)).Msg("images uploaded to imgbb")
	}
	return urls, rejected, nil
}

func (c *ImgBBClient) uploadOne(ctx context.Context, f File) (string, error) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("image", f.Name)
	if err != nil {
		return "", fmt.Errorf("failed to build upload form: %w", err)
	}
	if _, err := part.Write(f.Data); err != nil {
		return "", fmt.Errorf("failed to write upload form: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize upload form: %w", err)
	}

	uploadURL := c.endpoint + "?key=" + url.QueryEscape(c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, body)
	if err != nil {
		return "", fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", apperr.UploadErr(fmt.Sprintf("Failed to upload %s", f.Name), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", apperr.UploadErr(fmt.Sprintf("Failed to upload %s", f.Name),
			fmt.Errorf("imgbb returned status %d", resp.StatusCode))
	}

	var result imgbbResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", apperr.UploadErr(fmt.Sprintf("Failed to upload %s", f.Name),
			fmt.Errorf("failed to decode imgbb response: %w", err))
	}
	if !result.Success {
		msg := result.Error.Message
		if msg == "" {
			msg = "unknown error"
		}
		return "", apperr.UploadErr(fmt.Sprintf("Image host rejected %s: %s", f.Name, msg), nil)
	}

	return result.Data.DisplayURL, nil
}
