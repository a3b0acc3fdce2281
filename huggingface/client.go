// Package huggingface is a minimal client for the hub API: model metadata,
// file and snapshot downloads into the shared cache layout, repo creation
// and file uploads via the commit endpoint.
package huggingface

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	DefaultHubURL        = "https://huggingface.co"
	DefaultClientTimeout = 30 * time.Minute // large model files
	EnvToken             = "HF_TOKEN"
	EnvHome              = "HF_HOME"
	EnvEndpoint          = "HF_ENDPOINT"
	clientUserAgent      = "finetune/1.0"
)

var (
	ErrModelNotFound   = errors.New("model not found")
	ErrUnauthorized    = errors.New("authentication failed")
	ErrRateLimited     = errors.New("rate limited")
	ErrNetwork         = errors.New("network error")
	ErrInvalidRepoID   = errors.New("invalid repo id")
	ErrFileNotFound    = errors.New("file not found")
	ErrDownloadFailed  = errors.New("download failed")
	ErrUploadFailed    = errors.New("upload failed")
	ErrInvalidResponse = errors.New("invalid server response")
)

// ModelInfo holds model metadata from the hub API.
type ModelInfo struct {
	ID           string    `json:"id"`
	Author       string    `json:"author"`
	SHA          string    `json:"sha"`
	LastModified time.Time `json:"lastModified"`
	Private      bool      `json:"private"`
	Gated        any       `json:"gated"` // bool or "auto"/"manual"
	Pipeline     string    `json:"pipeline_tag"`
	Tags         []string  `json:"tags"`
	Downloads    int64     `json:"downloads"`
	LibraryName  string    `json:"library_name"`
	Siblings     []Sibling `json:"siblings"`
}

// IsGated reports whether accessing the model requires accepted terms.
func (m *ModelInfo) IsGated() bool {
	switch v := m.Gated.(type) {
	case bool:
		return v
	case string:
		return v == "auto" || v == "manual"
	default:
		return false
	}
}

// Sibling is one file in a model repository.
type Sibling struct {
	Filename string   `json:"rfilename"`
	Size     int64    `json:"size"`
	LFS      *LFSInfo `json:"lfs,omitempty"`
}

// LFSInfo holds LFS metadata for large files.
type LFSInfo struct {
	Size   int64  `json:"size"`
	SHA256 string `json:"sha256"`
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	userAgent  string
}

type ClientOption func(*Client)

func WithToken(token string) ClientOption {
	return func(c *Client) { c.token = token }
}

func WithBaseURL(url string) ClientOption {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(url, "/") }
}

func WithClientTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) { c.httpClient.Timeout = timeout }
}

func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = client }
}

// NewClient builds a client from the environment (HF_TOKEN, HF_ENDPOINT),
// then applies options.
func NewClient(options ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultClientTimeout},
		baseURL:    DefaultHubURL,
		userAgent:  clientUserAgent,
	}
	if token := os.Getenv(EnvToken); token != "" {
		c.token = token
	}
	if endpoint := os.Getenv(EnvEndpoint); endpoint != "" {
		c.baseURL = strings.TrimSuffix(endpoint, "/")
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string { return c.baseURL }
func (c *Client) HasToken() bool  { return c.token != "" }

// GetModelInfo fetches model metadata, including the file listing.
func (c *Client) GetModelInfo(ctx context.Context, repoID string) (*ModelInfo, error) {
	if err := validateRepoID(repoID); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/api/models/%s", c.baseURL, repoID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if err := c.responseError(resp); err != nil {
		return nil, err
	}

	var info ModelInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return &info, nil
}

// DownloadFile fetches a single repository file into the cache and returns
// its local path. Cached files are returned without a network round trip.
func (c *Client) DownloadFile(ctx context.Context, repoID, filename, revision string) (string, error) {
	if err := validateRepoID(repoID); err != nil {
		return "", err
	}
	if filename == "" {
		return "", fmt.Errorf("%w: empty filename", ErrFileNotFound)
	}
	if revision == "" {
		revision = "main"
	}

	targetPath := filepath.Join(snapshotDir(repoID, revision), filename)
	if _, err := os.Stat(targetPath); err == nil {
		return targetPath, nil
	}

	if err := os.MkdirAll(filepath.Dir(targetPath), 0o755); err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/%s/resolve/%s/%s", c.baseURL, repoID, revision, filename)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if err := c.responseError(resp); err != nil {
		return "", err
	}

	// write to a temp file, rename when complete
	tmpFile, err := os.CreateTemp(filepath.Dir(targetPath), ".download-*")
	if err != nil {
		return "", err
	}
	tmpPath := tmpFile.Name()
	defer func() {
		if tmpFile != nil {
			tmpFile.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := io.Copy(tmpFile, resp.Body); err != nil {
		return "", fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	if err := tmpFile.Close(); err != nil {
		return "", err
	}
	tmpFile = nil

	if err := os.Rename(tmpPath, targetPath); err != nil {
		return "", err
	}
	return targetPath, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", c.userAgent)
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func (c *Client) responseError(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusPartialContent:
		return nil
	case http.StatusNotFound:
		return ErrModelNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		if resp.StatusCode >= 400 {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
			return fmt.Errorf("%w: status %d - %s", ErrInvalidResponse, resp.StatusCode, string(body))
		}
		return nil
	}
}

func validateRepoID(repoID string) error {
	if repoID == "" {
		return fmt.Errorf("%w: empty repo id", ErrInvalidRepoID)
	}
	parts := strings.Split(repoID, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return fmt.Errorf("%w: expected 'owner/name', got %q", ErrInvalidRepoID, repoID)
	}
	return nil
}

// RepoOwner returns the owner part of an owner/name repo id.
func RepoOwner(repoID string) string {
	owner, _, _ := strings.Cut(repoID, "/")
	return owner
}

// RepoName returns the name part of an owner/name repo id.
func RepoName(repoID string) string {
	if _, name, ok := strings.Cut(repoID, "/"); ok {
		return name
	}
	return repoID
}
