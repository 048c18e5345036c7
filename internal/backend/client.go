package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"taskconsole/internal/config"
	"taskconsole/internal/logging"

	"github.com/google/uuid"
)

// maxErrorBody caps how much of an unparseable error body ends up in a StatusError.
const maxErrorBody = 512

// Client talks to the task-execution backend's HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxBody    int64
	log        *logging.Logger
	newID      func() string
}

// NewClient builds a client. log is used as given; callers name it.
func NewClient(cfg config.BackendConfig, log *logging.Logger) *Client {
	timeout := time.Duration(cfg.TimeoutMS) * time.Millisecond
	if log == nil {
		log = logging.Nop()
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		maxBody: int64(cfg.MaxResponseMB) << 20,
		log:     log,
		newID:   uuid.NewString,
	}
}

// BaseURL returns the backend root the client was configured with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// CreateTask submits instructions and returns the create envelope.
func (c *Client) CreateTask(ctx context.Context, instructions string) (CreateResult, error) {
	var out CreateResult
	body := map[string]string{"instructions": instructions}
	if err := c.do(ctx, http.MethodPost, "/api/send-task", body, &out); err != nil {
		return CreateResult{}, fmt.Errorf("send task: %w", err)
	}
	return out, nil
}

// TaskStatus fetches the latest snapshot for taskID.
func (c *Client) TaskStatus(ctx context.Context, taskID string) (Snapshot, error) {
	var out Snapshot
	if err := c.do(ctx, http.MethodGet, "/api/task-status/"+url.PathEscape(taskID), nil, &out); err != nil {
		return Snapshot{}, fmt.Errorf("task status: %w", err)
	}
	return out, nil
}

// RespondToPrompt relays a prompt response for taskID.
func (c *Client) RespondToPrompt(ctx context.Context, taskID, response string) (Ack, error) {
	var out Ack
	body := map[string]string{"response": response}
	if err := c.do(ctx, http.MethodPost, "/api/respond-to-prompt/"+url.PathEscape(taskID), body, &out); err != nil {
		return Ack{}, fmt.Errorf("respond to prompt: %w", err)
	}
	return out, nil
}

// TestReport fetches the accumulated test report. A missing report comes
// back as *APIError carrying the backend's message.
func (c *Client) TestReport(ctx context.Context) (TestReport, error) {
	var out struct {
		Status  string `json:"status"`
		Message string `json:"message"`
		TestReport
	}
	if err := c.do(ctx, http.MethodGet, "/api/test-report", nil, &out); err != nil {
		return TestReport{}, fmt.Errorf("test report: %w", err)
	}
	if out.Status == TaskStatusError {
		return TestReport{}, &APIError{Message: out.Message}
	}
	return out.TestReport, nil
}

// ClearTestReport asks the backend to delete its report file.
func (c *Client) ClearTestReport(ctx context.Context) (Ack, error) {
	var out Ack
	if err := c.do(ctx, http.MethodPost, "/api/test-report/clear", nil, &out); err != nil {
		return Ack{}, fmt.Errorf("clear test report: %w", err)
	}
	return out, nil
}

// do sends one JSON request. Non-2xx responses whose body still decodes into
// out are returned as success so the caller can read the envelope's message.
func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	var req *http.Request
	var err error
	if reader != nil {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	}
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	requestID := c.newID()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug("request failed", "method", method, "path", path, "request_id", requestID, "error", err)
		return err
	}
	defer resp.Body.Close()

	data, err := readAllWithLimit(resp.Body, c.maxBody)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	c.log.Debug("request done",
		"method", method,
		"path", path,
		"request_id", requestID,
		"status", resp.StatusCode,
		"bytes", len(data),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	if err := json.Unmarshal(data, out); err != nil {
		if !ok {
			return &StatusError{Code: resp.StatusCode, Body: truncate(strings.TrimSpace(string(data)), maxErrorBody)}
		}
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
