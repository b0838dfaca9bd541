package adapter

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/whisker/pkg/model"
)

const (
	DefaultCatAPIBaseURL = "https://api.thecatapi.com/v1"
	DefaultCatAPITimeout = 10 * time.Second

	maxResponseSize = 1 << 20
)

// CatAPI is the interface for The Cat API client
type CatAPI interface {
	// ListBreeds returns all breeds in the order the API sent them
	ListBreeds(ctx context.Context) ([]*model.Breed, error)

	// SearchImages returns at most limit images of the given breed
	SearchImages(ctx context.Context, breedID model.BreedID, limit int) ([]*model.Image, error)
}

// catAPIClient implements CatAPI interface
type catAPIClient struct {
	apiKey     string
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
}

// CatAPIOption is a functional option for NewCatAPI
type CatAPIOption func(*catAPIClient)

// WithBaseURL overrides the API endpoint, e.g. for a test server
func WithBaseURL(baseURL string) CatAPIOption {
	return func(c *catAPIClient) {
		if v := strings.TrimSpace(baseURL); v != "" {
			c.baseURL = strings.TrimRight(v, "/")
		}
	}
}

// WithTimeout sets the deadline applied to each request
func WithTimeout(timeout time.Duration) CatAPIOption {
	return func(c *catAPIClient) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(client *http.Client) CatAPIOption {
	return func(c *catAPIClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewCatAPI creates a new Cat API client. An empty apiKey is allowed; the API
// then answers with an auth error that surfaces through the normal error path.
func NewCatAPI(apiKey string, opts ...CatAPIOption) CatAPI {
	c := &catAPIClient{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    DefaultCatAPIBaseURL,
		timeout:    DefaultCatAPITimeout,
		httpClient: &http.Client{},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *catAPIClient) ListBreeds(ctx context.Context) ([]*model.Breed, error) {
	var breeds []*model.Breed
	if err := c.get(ctx, "/breeds", nil, &breeds); err != nil {
		return nil, err
	}
	return breeds, nil
}

func (c *catAPIClient) SearchImages(ctx context.Context, breedID model.BreedID, limit int) ([]*model.Image, error) {
	if breedID == "" {
		return nil, goerr.New("breed id is required")
	}
	if limit <= 0 {
		limit = 1
	}

	query := url.Values{}
	query.Set("breed_ids", string(breedID))
	query.Set("limit", strconv.Itoa(limit))

	var images []*model.Image
	if err := c.get(ctx, "/images/search", query, &images); err != nil {
		return nil, err
	}
	return images, nil
}

// get sends a GET request to path and decodes the JSON body into out
func (c *catAPIClient) get(ctx context.Context, path string, query url.Values, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return goerr.Wrap(err, "failed to create request", goerr.V("url", endpoint))
	}

	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return goerr.Wrap(err, "failed to send request", goerr.V("url", endpoint))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return goerr.Wrap(err, "failed to read response", goerr.V("url", endpoint))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return goerr.Wrap(&model.APIError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}, "Cat API returned error",
			goerr.V("status", resp.StatusCode),
			goerr.V("url", endpoint))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return goerr.Wrap(err, "failed to decode response",
			goerr.V("url", endpoint),
			goerr.V("body", string(body)))
	}

	return nil
}
