// Package client is a typed client for the enquiry CRM admin API. crmctl
// uses it; so can anything else that needs to drive imports or backups
// over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/ignite/enquiry-crm/internal/datanorm"
	"github.com/ignite/enquiry-crm/internal/domain"
	"github.com/ignite/enquiry-crm/internal/pkg/httpretry"
)

// APIError is returned for any non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.Status, e.Message)
}

// Client talks to one CRM server.
type Client struct {
	baseURL    string
	httpClient httpretry.HTTPDoer
}

// New creates a client for baseURL, e.g. http://localhost:8080.
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: httpretry.NewRetryClient(&http.Client{
			Timeout: 5 * time.Minute,
		}, 3),
	}
}

// SetHTTPClient sets a custom HTTP client (useful for testing)
func (c *Client) SetHTTPClient(client httpretry.HTTPDoer) {
	c.httpClient = client
}

// ========== Import ==========

// Import uploads a CSV or JSON file with an explicit column mapping.
func (c *Client) Import(ctx context.Context, filename string, data []byte, mappings []domain.FieldMapping, custom []domain.CustomField) (*domain.ImportReport, error) {
	mappingsJSON, err := json.Marshal(mappings)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal mappings: %w", err)
	}
	fields := map[string]string{"mappings": string(mappingsJSON)}
	if len(custom) > 0 {
		customJSON, err := json.Marshal(custom)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal custom fields: %w", err)
		}
		fields["customFields"] = string(customJSON)
	}

	var report domain.ImportReport
	if err := c.upload(ctx, "/api/admin/import", filename, data, fields, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// Preview asks the server to parse a file and suggest a mapping without
// importing anything.
func (c *Client) Preview(ctx context.Context, filename string, data []byte) (*datanorm.Preview, error) {
	var preview datanorm.Preview
	if err := c.upload(ctx, "/api/admin/import/preview", filename, data, nil, &preview); err != nil {
		return nil, err
	}
	return &preview, nil
}

// ========== Duplicates ==========

// ScanDuplicates returns the current duplicate groups.
func (c *Client) ScanDuplicates(ctx context.Context) (*domain.DuplicateScan, error) {
	var scan domain.DuplicateScan
	if err := c.doJSON(ctx, http.MethodGet, "/api/admin/duplicates", nil, &scan); err != nil {
		return nil, err
	}
	return &scan, nil
}

// RemoveDuplicates deletes exactly ids.
func (c *Client) RemoveDuplicates(ctx context.Context, ids []int64) (*domain.RemovalResult, error) {
	if ids == nil {
		ids = []int64{}
	}
	body := map[string]any{"action": "remove", "duplicateIds": ids}

	var result domain.RemovalResult
	if err := c.doJSON(ctx, http.MethodPost, "/api/admin/duplicates", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ========== Backups ==========

// CreateBackup takes a manual snapshot. An empty trigger uses the server
// default.
func (c *Client) CreateBackup(ctx context.Context, trigger string) (*domain.Snapshot, error) {
	var body any
	if trigger != "" {
		body = map[string]string{"trigger": trigger}
	}

	var resp struct {
		Backup domain.Snapshot `json:"backup"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/admin/backups", body, &resp); err != nil {
		return nil, err
	}
	return &resp.Backup, nil
}

// ListBackups returns snapshot metadata, newest first.
func (c *Client) ListBackups(ctx context.Context) ([]domain.Snapshot, error) {
	var resp struct {
		Backups []domain.Snapshot `json:"backups"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/admin/backups", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Backups, nil
}

// DownloadBackup returns the raw snapshot payload.
func (c *Client) DownloadBackup(ctx context.Context, id int64) ([]byte, error) {
	return c.do(ctx, http.MethodGet, fmt.Sprintf("/api/admin/backups/%d/download", id), "", nil)
}

// RestoreBackup replaces every enquiry with the contents of snapshot id and
// returns how many were restored.
func (c *Client) RestoreBackup(ctx context.Context, id int64) (int, error) {
	var resp struct {
		RestoredCount int `json:"restoredCount"`
	}
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/api/admin/backups/%d/restore", id), nil, &resp); err != nil {
		return 0, err
	}
	return resp.RestoredCount, nil
}

// ========== Maintenance ==========

// MaintenanceResult is the outcome of one maintenance action. Details keeps
// the action-specific payload undecoded.
type MaintenanceResult struct {
	Message string          `json:"message"`
	Details json.RawMessage `json:"details"`
}

// Maintenance runs action ("clean", "integrity" or "optimize") on the server.
func (c *Client) Maintenance(ctx context.Context, action string) (*MaintenanceResult, error) {
	var result MaintenanceResult
	body := map[string]string{"action": action}
	if err := c.doJSON(ctx, http.MethodPost, "/api/admin/maintenance", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ========== Transport ==========

func (c *Client) doJSON(ctx context.Context, method, endpoint string, body, out any) error {
	var reqBody io.Reader
	contentType := ""
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonBody)
		contentType = "application/json"
	}

	respBody, err := c.do(ctx, method, endpoint, contentType, reqBody)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) upload(ctx context.Context, endpoint, filename string, data []byte, fields map[string]string, out any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := fw.Write(data); err != nil {
		return fmt.Errorf("failed to write form file: %w", err)
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return fmt.Errorf("failed to write form field %s: %w", k, err)
		}
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("failed to close multipart body: %w", err)
	}

	respBody, err := c.do(ctx, http.MethodPost, endpoint, mw.FormDataContentType(), bytes.NewReader(buf.Bytes()))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// do sends the request and returns the body of a 2xx response. bytes.Reader
// bodies let the retry client rewind between attempts.
func (c *Client) do(ctx context.Context, method, endpoint, contentType string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{Status: resp.StatusCode, Message: errorMessage(respBody)}
	}
	return respBody, nil
}

// errorMessage pulls the text out of the {"error": "..."} envelope, falling
// back to the raw body.
func errorMessage(body []byte) string {
	var envelope struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != "" {
		return envelope.Error
	}
	return strings.TrimSpace(string(body))
}
