package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/multierr"

	"github.com/justyntemme/brahmand-t/pkg/models"
)

// ErrNotFound is returned when the asset host answers 404
var ErrNotFound = errors.New("asset not found")

// Client fetches magazine assets (page images, PDFs, manifests) from a
// static asset host
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// NewClient creates a new asset client
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: "brahmand-t",
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// BaseURL returns the asset host
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetUserAgent overrides the User-Agent header
func (c *Client) SetUserAgent(ua string) {
	c.userAgent = ua
}

// URL resolves an asset path against the base URL. Absolute URLs are returned
// unchanged.
func (c *Client) URL(path string) string {
	if u, err := url.Parse(path); err == nil && u.IsAbs() {
		return path
	}
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

// request makes an HTTP request to the asset host
func (c *Client) request(ctx context.Context, method, path string) (*http.Response, error) {
	if c.baseURL == "" && !isAbsolute(path) {
		return nil, fmt.Errorf("no asset base URL configured for %s", path)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.URL(path), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	return c.httpClient.Do(req)
}

// checkStatus turns error statuses into errors, consuming the body
func checkStatus(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrNotFound, resp.Request.URL)
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var errResp models.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, errResp.Error)
	}
	return fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
}

// parseResponse reads and unmarshals the response body
func parseResponse[T any](resp *http.Response) (T, error) {
	var result T
	if err := checkStatus(resp); err != nil {
		return result, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return result, err
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return result, err
	}
	return result, nil
}

// Fetch returns the bytes of an asset
func (c *Client) Fetch(ctx context.Context, path string) ([]byte, error) {
	resp, err := c.request(ctx, http.MethodGet, path)
	if err != nil {
		return nil, err
	}
	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// Manifest returns the page manifest of a remote page directory
func (c *Client) Manifest(ctx context.Context, dir string) (*models.PageManifest, error) {
	resp, err := c.request(ctx, http.MethodGet, strings.TrimRight(dir, "/")+"/manifest.json")
	if err != nil {
		return nil, err
	}
	return parseResponse[*models.PageManifest](resp)
}

// Download streams an asset into dst and returns the number of bytes
// written. The file appears at dst only once it is complete.
func (c *Client) Download(ctx context.Context, path, dst string) (n int64, err error) {
	resp, err := c.request(ctx, http.MethodGet, path)
	if err != nil {
		return 0, err
	}
	if err := checkStatus(resp); err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return 0, fmt.Errorf("failed to create download directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*")
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			err = multierr.Append(err, os.Remove(tmp.Name()))
		}
	}()

	n, err = io.Copy(tmp, resp.Body)
	err = multierr.Append(err, tmp.Close())
	if err != nil {
		return 0, fmt.Errorf("failed to download %s: %w", path, err)
	}
	if err = os.Rename(tmp.Name(), dst); err != nil {
		return 0, fmt.Errorf("failed to move download into place: %w", err)
	}
	return n, nil
}

// Health checks if the asset host is reachable
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.request(ctx, http.MethodHead, "/")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("asset host unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

func isAbsolute(path string) bool {
	u, err := url.Parse(path)
	return err == nil && u.IsAbs()
}
