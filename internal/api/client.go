package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"boltadmin/internal/apperr"
	"boltadmin/pkg/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Client talks to the catalog backend. The backend is an external
// collaborator; its /api/v1 surface is the only contract this app depends on.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tracer     trace.Tracer
}

// NewClient creates a backend client for the given base URL (including the
// /api/v1 prefix).
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		tracer: otel.Tracer("boltadmin/api"),
	}
}

// LoginRequest is the body sent to the google-login endpoint
type LoginRequest struct {
	IDToken string `json:"id_token"`
}

// LoginResult is the successful response of the google-login endpoint
type LoginResult struct {
	AccessToken string       `json:"access_token"`
	Admin       models.Admin `json:"admin"`
	Message     string       `json:"message"`
}

// ProductListResponse wraps the product collection returned by the backend
type ProductListResponse struct {
	Products []models.Product `json:"products"`
}

// Login exchanges a third-party identity credential for a bearer token.
// The backend rejecting the credential (expired token, unauthorized email) or
// answering with an unexpected shape both fail with an auth error; nothing is
// retried here, the caller surfaces the failure.
func (c *Client) Login(ctx context.Context, idToken string) (*LoginResult, error) {
	ctx, span := c.tracer.Start(ctx, "api.Login")
	defer span.End()

	body, err := json.Marshal(LoginRequest{IDToken: idToken})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal login request: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/auth/google-login", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperr.NetworkErr(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.NetworkErr(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail := parseDetail(respBody)
		if detail == "" {
			detail = fmt.Sprintf("Login failed with status %d", resp.StatusCode)
		}
		log.Warn().Int("status", resp.StatusCode).Msg("backend rejected login")
		return nil, apperr.AuthErr(detail)
	}

	var result LoginResult
	if err := json.Unmarshal(respBody, &result); err != nil || result.AccessToken == "" {
		return nil, apperr.AuthErr("Invalid response from server")
	}

	log.Info().Str("admin", result.Admin.Email).Msg("login succeeded")
	return &result, nil
}

// Verify confirms the token is still accepted by the backend. Any failure,
// transport included, counts as not valid.
func (c *Client) Verify(ctx context.Context, token string) bool {
	ctx, span := c.tracer.Start(ctx, "api.Verify")
	defer span.End()

	req, err := c.newRequest(ctx, http.MethodGet, "/auth/me", nil)
	if err != nil {
		return false
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Debug().Err(err).Msg("token verification round-trip failed")
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// ListProducts fetches one page of the product collection. The read is
// unauthenticated.
func (c *Client) ListProducts(ctx context.Context, page, perPage int) ([]models.Product, error) {
	ctx, span := c.tracer.Start(ctx, "api.ListProducts")
	defer span.End()

	path := fmt.Sprintf("/products/?page=%d&perpage=%d", page, perPage)
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperr.NetworkErr(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, apperr.APIErr(resp.StatusCode, parseDetail(respBody))
	}

	var list ProductListResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("failed to decode product list: %w", err)
	}

	return list.Products, nil
}

// ProductPayload is the normalized outgoing form for product create/update.
// List fields are already comma-joined and image URLs JSON-encoded by the
// form workflow before the payload reaches the wire.
type ProductPayload struct {
	Name          string
	Description   string
	Price         float64
	OriginalPrice *float64
	Category      string
	Brand         string
	Material      string
	IsFeatured    bool
	IsActive      bool
	Sizes         string
	Colors        string
	ImageURLs     []string
}

// CreateProduct submits a new product as a multipart form with the bearer
// token attached.
func (c *Client) CreateProduct(ctx context.Context, token string, payload ProductPayload) error {
	ctx, span := c.tracer.Start(ctx, "api.CreateProduct")
	defer span.End()
	return c.sendProduct(ctx, http.MethodPost, "/products/", token, payload)
}

// UpdateProduct updates an existing product, same fields as create.
func (c *Client) UpdateProduct(ctx context.Context, token string, id models.FlexID, payload ProductPayload) error {
	ctx, span := c.tracer.Start(ctx, "api.UpdateProduct")
	defer span.End()
	return c.sendProduct(ctx, http.MethodPut, "/products/"+url.PathEscape(id.String()), token, payload)
}

// DeleteProduct removes a product. Irreversible; callers are responsible for
// confirmation.
func (c *Client) DeleteProduct(ctx context.Context, token string, id models.FlexID) error {
	ctx, span := c.tracer.Start(ctx, "api.DeleteProduct")
	defer span.End()

	req, err := c.newRequest(ctx, http.MethodDelete, "/products/"+url.PathEscape(id.String()), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperr.NetworkErr(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return apperr.APIErr(resp.StatusCode, parseDetail(respBody))
	}

	log.Info().Str("product_id", id.String()).Msg("product deleted")
	return nil
}

func (c *Client) sendProduct(ctx context.Context, method, path, token string, payload ProductPayload) error {
	body, contentType, err := encodeProductForm(payload)
	if err != nil {
		return err
	}

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperr.NetworkErr(err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Warn().Int("status", resp.StatusCode).Str("path", path).Msg("product submit rejected")
		return apperr.APIErr(resp.StatusCode, parseDetail(respBody))
	}

	log.Info().Str("path", path).Str("name", payload.Name).Msg("product submitted")
	return nil
}

// encodeProductForm builds the multipart body the backend expects. Optional
// fields (original_price, material) are omitted when empty rather than sent
// blank.
func encodeProductForm(payload ProductPayload) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	fields := map[string]string{
		"name":        payload.Name,
		"description": payload.Description,
		"price":       formatNumber(payload.Price),
		"category":    payload.Category,
		"brand":       payload.Brand,
		"is_featured": strconv.FormatBool(payload.IsFeatured),
		"is_active":   strconv.FormatBool(payload.IsActive),
		"sizes":       payload.Sizes,
		"colors":      payload.Colors,
	}
	if payload.OriginalPrice != nil {
		fields["original_price"] = formatNumber(*payload.OriginalPrice)
	}
	if payload.Material != "" {
		fields["material"] = payload.Material
	}

	urls, err := json.Marshal(payload.ImageURLs)
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode image urls: %w", err)
	}
	fields["image_urls"] = string(urls)

	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return nil, "", fmt.Errorf("failed to write form field %s: %w", name, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finalize form: %w", err)
	}

	return body, w.FormDataContentType(), nil
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Request-ID", uuid.New().String())
	return req, nil
}

// parseDetail extracts the backend's error detail, which is either a plain
// string or a list of {msg} items on validation failures.
func parseDetail(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(envelope.Detail, &s); err == nil {
		return s
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(envelope.Detail, &items); err == nil {
		parts := make([]string, 0, len(items))
		for _, item := range items {
			if item.Msg != "" {
				parts = append(parts, item.Msg)
			}
		}
		return strings.Join(parts, ", ")
	}

	return ""
}
