package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/matzehuels/genomap/pkg/buildinfo"
	"github.com/matzehuels/genomap/pkg/cache"
	"github.com/matzehuels/genomap/pkg/errors"
	"github.com/matzehuels/genomap/pkg/genome"
	"github.com/matzehuels/genomap/pkg/pipeline"
)

// DefaultRetryDelay is the delay before the first retry of a failed request.
const DefaultRetryDelay = 500 * time.Millisecond

// Client calls a genomap server. Network failures and 5xx responses are
// retried with backoff; other failures are returned as coded errors.
type Client struct {
	BaseURL    string
	HTTP       *http.Client
	RetryDelay time.Duration
}

// NewClient returns a client for the server at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTP:       &http.Client{Timeout: DefaultRequestTimeout + 5*time.Second},
		RetryDelay: DefaultRetryDelay,
	}
}

// Health fetches the server build information.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.do(ctx, http.MethodGet, "/healthz", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Layout requests a layout of m.
func (c *Client) Layout(ctx context.Context, m *genome.Map, opts pipeline.Options) (*LayoutResponse, error) {
	var out LayoutResponse
	if err := c.do(ctx, http.MethodPost, "/v1/layout", LayoutRequest{Map: m, Options: opts}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Query lists the features of req.Map in the requested range.
func (c *Client) Query(ctx context.Context, req QueryRequest) (*QueryResponse, error) {
	var out QueryResponse
	if err := c.do(ctx, http.MethodPost, "/v1/query", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var payload []byte
	if in != nil {
		var err error
		if payload, err = json.Marshal(in); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	return cache.RetryWithBackoff(ctx, c.RetryDelay, func() error {
		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
		if err != nil {
			return err
		}
		req.Header.Set("User-Agent", buildinfo.UserAgent())
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.HTTP.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return err
			}
			return cache.Retryable(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= http.StatusBadRequest {
			err := decodeError(resp)
			if resp.StatusCode >= http.StatusInternalServerError {
				return cache.Retryable(err)
			}
			return err
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "decode %s response", path)
		}
		return nil
	})
}

// decodeError rebuilds the coded error carried by an error response.
func decodeError(resp *http.Response) error {
	var er ErrorResponse
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(data, &er); err != nil || er.Error.Code == "" {
		return errors.New(errors.ErrCodeInternal, "server returned %s", resp.Status)
	}
	return errors.New(errors.Code(er.Error.Code), "%s", er.Error.Message)
}
