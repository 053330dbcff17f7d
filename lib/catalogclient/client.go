// Copyright 2026 The Tessera Authors
// SPDX-License-Identifier: Apache-2.0

// Package catalogclient is a typed HTTP client for the catalog
// service's REST API.
//
// The client covers exactly the surfaces the local consistency layer
// injects: blob payload fetch (blobcache.FetchFunc), child listing
// (hierarchy.ListFunc), fragment deletion (fragment.Deleter), and the
// asset/fragment reads the CLI presents. Method values wire directly:
//
//	cache := blobcache.New(logger, client.FetchBlob)
//	store := hierarchy.NewStore(logger, parent, client.ListChildren)
//
// Requests authenticate with a bearer token when one is configured.
// Non-2xx responses decode into [ServiceError] carrying the status
// code and the service's error message.
package catalogclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/tessera-works/tessera/lib/catalog"
	"github.com/tessera-works/tessera/lib/netutil"
)

// defaultTimeout bounds each request when the caller does not supply
// its own HTTP client. Blob fetches dominate; 30 seconds covers a
// multi-megabyte payload on a slow link.
const defaultTimeout = 30 * time.Second

// Client communicates with the catalog service over HTTP. Each method
// performs one request. The zero value is not usable; construct with
// [New] or [NewFromToken].
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient substitutes the HTTP client used for all requests.
// The default is a dedicated client with a 30 second timeout.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// WithTimeout sets the per-request timeout on the underlying HTTP
// client. Apply after WithHTTPClient when both are used.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = timeout }
}

// New creates an authenticated client by reading the bearer token
// from tokenPath. Surrounding whitespace in the file is ignored.
func New(baseURL, tokenPath string, options ...Option) (*Client, error) {
	tokenBytes, err := os.ReadFile(tokenPath)
	if err != nil {
		return nil, fmt.Errorf("reading catalog token from %s: %w", tokenPath, err)
	}
	token := strings.TrimSpace(string(tokenBytes))
	if token == "" {
		return nil, fmt.Errorf("catalog token file %s is empty", tokenPath)
	}
	return NewFromToken(baseURL, token, options...), nil
}

// NewFromToken creates a client with a pre-loaded token. An empty
// token sends unauthenticated requests, which only works against a
// catalog running without auth.
func NewFromToken(baseURL, token string, options ...Option) *Client {
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		token:      token,
	}
	for _, option := range options {
		option(client)
	}
	return client
}

// FetchBlob downloads the payload stored under a blob path. The
// returned bytes are exactly the service's stored payload; integrity
// verification is the cache's job.
func (c *Client) FetchBlob(ctx context.Context, path string) ([]byte, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, c.blobURL(path), nil)
	if err != nil {
		return nil, fmt.Errorf("fetching blob %q: %w", path, err)
	}
	c.authorize(request)

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("fetching blob %q: %w", path, err)
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return nil, fmt.Errorf("fetching blob %q: %w", path, errorFromResponse(response))
	}

	payload, err := netutil.ReadResponse(response.Body)
	if err != nil {
		return nil, fmt.Errorf("reading blob %q: %w", path, err)
	}
	return payload, nil
}

// GetAsset fetches one asset's catalog record.
func (c *Client) GetAsset(ctx context.Context, id int64) (*catalog.Asset, error) {
	var asset catalog.Asset
	endpoint := fmt.Sprintf("%s/api/v1/assets/%d", c.baseURL, id)
	if err := c.getJSON(ctx, endpoint, &asset); err != nil {
		return nil, fmt.Errorf("fetching asset %d: %w", id, err)
	}
	return &asset, nil
}

// ListChildren fetches the child assets of a parent, ordered by part
// index as the service stores them.
func (c *Client) ListChildren(ctx context.Context, parentID int64) ([]catalog.ChildAsset, error) {
	var children []catalog.ChildAsset
	endpoint := fmt.Sprintf("%s/api/v1/assets/%d/children", c.baseURL, parentID)
	if err := c.getJSON(ctx, endpoint, &children); err != nil {
		return nil, fmt.Errorf("listing children of asset %d: %w", parentID, err)
	}
	return children, nil
}

// ListFragments fetches the curated fragments attached to an asset.
func (c *Client) ListFragments(ctx context.Context, assetID int64) ([]catalog.Fragment, error) {
	var fragments []catalog.Fragment
	endpoint := fmt.Sprintf("%s/api/v1/assets/%d/fragments", c.baseURL, assetID)
	if err := c.getJSON(ctx, endpoint, &fragments); err != nil {
		return nil, fmt.Errorf("listing fragments of asset %d: %w", assetID, err)
	}
	return fragments, nil
}

// DeleteFragment removes one fragment from an asset by key.
func (c *Client) DeleteFragment(ctx context.Context, assetID int64, key string) error {
	endpoint := fmt.Sprintf("%s/api/v1/assets/%d/fragments/%s",
		c.baseURL, assetID, url.PathEscape(key))
	request, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return fmt.Errorf("deleting fragment %q from asset %d: %w", key, assetID, err)
	}
	c.authorize(request)

	response, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("deleting fragment %q from asset %d: %w", key, assetID, err)
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return fmt.Errorf("deleting fragment %q from asset %d: %w",
			key, assetID, errorFromResponse(response))
	}
	return nil
}

// --- Internal helpers ---

// blobURL builds the blob endpoint URL, escaping each path segment
// while preserving the segment structure.
func (c *Client) blobURL(blobPath string) string {
	segments := strings.Split(blobPath, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return c.baseURL + "/api/v1/blobs/" + strings.Join(segments, "/")
}

// authorize attaches the bearer token, if any.
func (c *Client) authorize(request *http.Request) {
	if c.token != "" {
		request.Header.Set("Authorization", "Bearer "+c.token)
	}
}

// getJSON performs an authenticated GET and decodes the JSON response
// into result.
func (c *Client) getJSON(ctx context.Context, endpoint string, result any) error {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	c.authorize(request)
	request.Header.Set("Accept", "application/json")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return errorFromResponse(response)
	}
	if err := netutil.DecodeResponse(response.Body, result); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// errorFromResponse turns a non-2xx response into a ServiceError. The
// service sends {"error": "..."} bodies; anything else falls back to
// the raw body or the status text.
func errorFromResponse(response *http.Response) error {
	body := netutil.ErrorBody(response.Body)
	var wire struct {
		Error string `json:"error"`
	}
	message := ""
	if err := json.Unmarshal([]byte(body), &wire); err == nil {
		message = wire.Error
	}
	if message == "" {
		message = strings.TrimSpace(body)
	}
	if message == "" {
		message = http.StatusText(response.StatusCode)
	}
	return &ServiceError{Status: response.StatusCode, Message: message}
}

// ServiceError is a non-2xx response from the catalog service.
type ServiceError struct {
	// Status is the HTTP response status code.
	Status int

	// Message is the service's error description.
	Message string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("catalog: HTTP %d: %s", e.Status, e.Message)
}

// IsNotFound reports whether err is a catalog 404 response.
func IsNotFound(err error) bool {
	var serviceError *ServiceError
	return errors.As(err, &serviceError) && serviceError.Status == http.StatusNotFound
}
