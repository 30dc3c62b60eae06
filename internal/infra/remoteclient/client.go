// Package remoteclient talks to the sandbox runner service, which hosts
// per-project media sandboxes and executes ffmpeg on their contents.
package remoteclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/clipforge/clipforge/internal/config"
	"github.com/clipforge/clipforge/internal/modules/model"
)

// Client is the HTTP client for the sandbox runner service.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// New creates a Client with OpenTelemetry instrumentation. Timeouts are
// generous because tool invocations block on ffmpeg.
func New(cfg *config.Config, log *zap.Logger) *Client {
	return &Client{
		BaseURL: cfg.Remote.BaseURL,
		APIKey:  cfg.Remote.APIKey,
		HTTPClient: &http.Client{
			Timeout:   5 * time.Minute,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		Logger: log,
	}
}

func (c *Client) do(ctx context.Context, method, endpoint string, body io.Reader, contentType string, out any) error {
	httpReq, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if c.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.Logger.Error("runner request failed",
			zap.String("endpoint", endpoint),
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", string(respBody)))
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	if out == nil {
		return nil
	}
	if err := sonic.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, endpoint string, req, out any) error {
	body, err := sonic.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	return c.do(ctx, http.MethodPost, endpoint, bytes.NewReader(body), "application/json", out)
}

// RegisterProject creates the project's sandbox on the runner. Idempotent
// on the runner side; re-registering an existing project is a no-op.
func (c *Client) RegisterProject(ctx context.Context, projectID uuid.UUID) error {
	endpoint := fmt.Sprintf("%s/api/v1/project/%s", c.BaseURL, projectID)
	return c.do(ctx, http.MethodPost, endpoint, nil, "", nil)
}

// UploadResult describes where an uploaded file landed in the sandbox.
type UploadResult struct {
	RelativePath string `json:"relative_path"`
	URL          string `json:"url"`
	SizeB        int64  `json:"size_b"`
}

// UploadFile streams a file into the project's sandbox input area.
func (c *Client) UploadFile(ctx context.Context, projectID uuid.UUID, name string, r io.Reader) (*UploadResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("copy file body: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	endpoint := fmt.Sprintf("%s/api/v1/project/%s/files", c.BaseURL, projectID)
	var result UploadResult
	if err := c.do(ctx, http.MethodPost, endpoint, &buf, mw.FormDataContentType(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// InvokeRequest asks the runner to execute one editing tool inside the
// project's sandbox. Paths in Args are sandbox-relative.
type InvokeRequest struct {
	Tool string         `json:"tool"`
	Args map[string]any `json:"args"`
}

// InvokeResult is the runner's verdict on one tool invocation.
type InvokeResult struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	OutputPath string `json:"output_path,omitempty"`
	OutputURL  string `json:"output_url,omitempty"`
}

// InvokeTool executes an editing tool remotely. A transport or server
// error is returned as err; a tool-level failure comes back as a result
// with Success false.
func (c *Client) InvokeTool(ctx context.Context, projectID uuid.UUID, tool string, args map[string]any) (*InvokeResult, error) {
	endpoint := fmt.Sprintf("%s/api/v1/project/%s/invoke", c.BaseURL, projectID)
	var result InvokeResult
	if err := c.postJSON(ctx, endpoint, InvokeRequest{Tool: tool, Args: args}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// MediaInfo probes a sandbox file and returns its metadata.
func (c *Client) MediaInfo(ctx context.Context, projectID uuid.UUID, remotePath string) (*model.MediaInfo, error) {
	endpoint := fmt.Sprintf("%s/api/v1/project/%s/probe?path=%s", c.BaseURL, projectID, remotePath)
	var info model.MediaInfo
	if err := c.do(ctx, http.MethodGet, endpoint, nil, "", &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// SandboxListing holds the names in each sandbox area.
type SandboxListing struct {
	Input  []string `json:"input"`
	Output []string `json:"output"`
}

// ListFiles returns the current sandbox contents for a project.
func (c *Client) ListFiles(ctx context.Context, projectID uuid.UUID) (*SandboxListing, error) {
	endpoint := fmt.Sprintf("%s/api/v1/project/%s/files", c.BaseURL, projectID)
	var listing SandboxListing
	if err := c.do(ctx, http.MethodGet, endpoint, nil, "", &listing); err != nil {
		return nil, err
	}
	return &listing, nil
}

// DeleteProject removes the project's sandbox and all of its files.
func (c *Client) DeleteProject(ctx context.Context, projectID uuid.UUID) error {
	endpoint := fmt.Sprintf("%s/api/v1/project/%s", c.BaseURL, projectID)
	return c.do(ctx, http.MethodDelete, endpoint, nil, "", nil)
}
