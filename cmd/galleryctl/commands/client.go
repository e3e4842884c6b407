package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/SebastienMelki/artwall/internal/gallery"
	"github.com/SebastienMelki/artwall/internal/gateway"
)

// apiError is a non-2xx answer from the server.
type apiError struct {
	Status int
	Body   gateway.ErrorResponse
}

func (e *apiError) Error() string {
	if e.Body.Error != "" {
		return e.Body.Error
	}
	return http.StatusText(e.Status)
}

// apiClient calls the gateway's HTTP API.
type apiClient struct {
	base string
	http *http.Client
}

func newAPIClient(base string, timeout time.Duration) *apiClient {
	return &apiClient{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: timeout},
	}
}

func (c *apiClient) Search(ctx context.Context, query, media string) (*gateway.SearchResponse, error) {
	var resp gateway.SearchResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/search", gateway.SearchRequest{Query: query, Media: media}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *apiClient) Play(ctx context.Context) (*gallery.View, error) {
	return c.view(ctx, http.MethodPost, "/api/v1/play")
}

func (c *apiClient) Pause(ctx context.Context) (*gallery.View, error) {
	return c.view(ctx, http.MethodPost, "/api/v1/pause")
}

func (c *apiClient) Gallery(ctx context.Context) (*gallery.View, error) {
	return c.view(ctx, http.MethodGet, "/api/v1/gallery")
}

func (c *apiClient) MediaTypes(ctx context.Context) (*gateway.MediaTypesResponse, error) {
	var resp gateway.MediaTypesResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/media-types", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *apiClient) view(ctx context.Context, method, path string) (*gallery.View, error) {
	var v gallery.View
	if err := c.do(ctx, method, path, nil, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (c *apiClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, c.base+path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &apiError{Status: resp.StatusCode}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr.Body)
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// asAPIError unwraps err to an *apiError when the server answered.
func asAPIError(err error) (*apiError, bool) {
	var apiErr *apiError
	ok := errors.As(err, &apiErr)
	return apiErr, ok
}
