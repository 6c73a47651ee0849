// Package client is the Go consumer of the studio API: a thin HTTP client
// plus a polling state controller that mirrors the server-side job
// lifecycle for UIs and tools.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// APIError is any non-2xx response from the studio API. StatusCode is 0
// when the request never reached the server (network failure, timeout).
type APIError struct {
	Message    string `json:"message"`
	StatusCode int    `json:"status_code"`
	Details    string `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("api unreachable: %s", e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// Result is the payload of a finished generation.
type Result struct {
	VideoURL    string `json:"video_url"`
	Code        string `json:"code"`
	SceneName   string `json:"scene_name"`
	Description string `json:"description,omitempty"`
	Method      string `json:"method,omitempty"`
	Model       string `json:"model,omitempty"`
	SampleUsed  string `json:"sample_used,omitempty"`
}

// GenerateResponse is what POST /api/generate returns. Servers normally
// answer with a job to poll; some deployments answer inline, in which
// case JobID is empty and the result fields are filled directly.
type GenerateResponse struct {
	JobID       string `json:"job_id"`
	Status      string `json:"status"`
	Progress    int    `json:"progress"`
	CurrentStep string `json:"current_step"`

	VideoURL   string `json:"video_url,omitempty"`
	Code       string `json:"code,omitempty"`
	SceneName  string `json:"scene_name,omitempty"`
	Method     string `json:"method,omitempty"`
	Model      string `json:"model,omitempty"`
	SampleUsed string `json:"sample_used,omitempty"`
}

// JobInfo mirrors the flat job document returned by the status endpoint.
type JobInfo struct {
	JobID       string `json:"job_id"`
	Status      string `json:"status"`
	Progress    int    `json:"progress"`
	CurrentStep string `json:"current_step"`
	VideoURL    string `json:"video_url,omitempty"`
	Code        string `json:"code,omitempty"`
	SceneName   string `json:"scene_name,omitempty"`
	Description string `json:"description,omitempty"`
	Method      string `json:"method,omitempty"`
	Model       string `json:"model,omitempty"`
	SampleUsed  string `json:"sample_used,omitempty"`
	Error       string `json:"error,omitempty"`
}

// result extracts the result payload of a terminal job.
func (j *JobInfo) result() *Result {
	return &Result{
		VideoURL:    j.VideoURL,
		Code:        j.Code,
		SceneName:   j.SceneName,
		Description: j.Description,
		Method:      j.Method,
		Model:       j.Model,
		SampleUsed:  j.SampleUsed,
	}
}

// Example is one gallery entry.
type Example struct {
	Title        string `json:"title"`
	Prompt       string `json:"prompt"`
	VideoURL     string `json:"video_url"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	Description  string `json:"description,omitempty"`
	Category     string `json:"category,omitempty"`
	Duration     string `json:"duration,omitempty"`
}

// Client talks to one studio server. It performs no retries of its own;
// retry policy belongs to the caller (the Controller tolerates transient
// poll failures itself).
type Client struct {
	baseURL string
	http    *http.Client
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/health", nil, nil)
}

// Generate submits a prompt for asynchronous generation.
func (c *Client) Generate(ctx context.Context, prompt, quality string) (*GenerateResponse, error) {
	var resp GenerateResponse
	body := map[string]string{"prompt": prompt}
	if quality != "" {
		body["quality"] = quality
	}
	if err := c.do(ctx, http.MethodPost, "/api/generate", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RenderSync runs the pipeline inline on the server and blocks for the
// finished result.
func (c *Client) RenderSync(ctx context.Context, prompt, quality string) (*Result, error) {
	var resp Result
	body := map[string]string{"prompt": prompt}
	if quality != "" {
		body["quality"] = quality
	}
	if err := c.do(ctx, http.MethodPost, "/api/render", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) JobStatus(ctx context.Context, jobID string) (*JobInfo, error) {
	var info JobInfo
	if err := c.do(ctx, http.MethodGet, "/api/job/"+jobID+"/status", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) DeleteJob(ctx context.Context, jobID string) error {
	return c.do(ctx, http.MethodDelete, "/api/job/"+jobID, nil, nil)
}

func (c *Client) Examples(ctx context.Context) ([]Example, error) {
	var resp struct {
		Examples []Example `json:"examples"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/examples", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Examples, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rdr = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &APIError{Message: err.Error(), StatusCode: 0}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &APIError{Message: "malformed response body", StatusCode: resp.StatusCode, Details: err.Error()}
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var envelope struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Details string `json:"details"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Message != "" {
		return &APIError{Message: envelope.Message, StatusCode: resp.StatusCode, Details: envelope.Details}
	}
	return &APIError{Message: strings.TrimSpace(string(raw)), StatusCode: resp.StatusCode}
}
