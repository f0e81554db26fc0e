package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/sandeepkv93/taskmaster/internal/logging"
	"github.com/sandeepkv93/taskmaster/internal/model"
)

const tasksPath = "/api/tasks"

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 4 << 20

var ErrMalformedResponse = errors.New("api: malformed response body")

// StatusError reports a non-2xx response. Callers are not expected to branch
// on the code; it is kept for logs.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	if body == "" {
		return fmt.Sprintf("api: %s %s returned %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("api: %s %s returned %d: %s", e.Method, e.Path, e.StatusCode, body)
}

type ClientConfig struct {
	// BaseURL is the server root, e.g. "http://localhost:5000". The task
	// endpoints live under /api/tasks.
	BaseURL string
	// Timeout applies to every request. Zero means no timeout.
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *log.Logger
}

// Client speaks the task REST contract. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger
}

func NewClient(cfg ClientConfig) (*Client, error) {
	raw := strings.TrimSpace(cfg.BaseURL)
	if raw == "" {
		return nil, errors.New("api: base url is required")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("api: invalid base url %q: %w", raw, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("api: unsupported scheme %q", parsed.Scheme)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	base := strings.TrimRight(raw, "/")
	base = strings.TrimSuffix(base, tasksPath)
	return &Client{
		baseURL:    base,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) ListTasks(ctx context.Context) ([]model.Task, error) {
	body, err := c.doRequest(ctx, http.MethodGet, tasksPath, nil)
	if err != nil {
		return nil, err
	}
	var out []model.Task
	if err := decode(body, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.Task{}
	}
	return out, nil
}

func (c *Client) CreateTask(ctx context.Context, in model.NewTask) (model.Task, error) {
	body, err := c.doRequest(ctx, http.MethodPost, tasksPath, in)
	if err != nil {
		return model.Task{}, err
	}
	var out model.Task
	if err := decode(body, &out); err != nil {
		return model.Task{}, err
	}
	return out, nil
}

func (c *Client) UpdateTask(ctx context.Context, id model.ID, patch model.Patch) (model.Task, error) {
	body, err := c.doRequest(ctx, http.MethodPut, taskPath(id), patch)
	if err != nil {
		return model.Task{}, err
	}
	var out model.Task
	if err := decode(body, &out); err != nil {
		return model.Task{}, err
	}
	return out, nil
}

func (c *Client) DeleteTask(ctx context.Context, id model.ID) error {
	_, err := c.doRequest(ctx, http.MethodDelete, taskPath(id), nil)
	return err
}

func taskPath(id model.ID) string {
	return tasksPath + "/" + url.PathEscape(id.String())
}

func decode(body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

func (c *Client) doRequest(ctx context.Context, method, path string, requestBody any) ([]byte, error) {
	var bodyReader io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return nil, fmt.Errorf("api: encode request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("api: build request: %w", err)
	}
	request.Header.Set("Accept", "application/json")
	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	started := time.Now()
	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	defer response.Body.Close()

	responseBody, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("api: read %s %s response: %w", method, path, err)
	}
	c.logger.Debug("api request", "method", method, "path", path, "status", response.StatusCode, "elapsed", time.Since(started))

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return nil, &StatusError{
			Method:     method,
			Path:       path,
			StatusCode: response.StatusCode,
			Body:       string(responseBody),
		}
	}
	return responseBody, nil
}
