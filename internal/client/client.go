package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/amoylab/coursechat/internal/common/cnst"
	"github.com/amoylab/coursechat/internal/common/config"
	"github.com/amoylab/coursechat/internal/common/dto"
	"github.com/amoylab/coursechat/internal/common/errorx"
)

// Client talks to the conversational backend
type Client struct {
	logger  *zap.Logger
	baseURL *url.URL
	http    *http.Client
}

// New creates a backend client. Cookies set through jar are sent with every request.
func New(cfg config.BackendClientConfig, jar http.CookieJar, logger *zap.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid backend base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid backend base url: %q", cfg.BaseURL)
	}
	return &Client{
		logger:  logger.Named("client"),
		baseURL: base,
		http: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Jar:       jar,
			Timeout:   cfg.Timeout,
		},
	}, nil
}

// BaseURL returns the backend site URL
func (c *Client) BaseURL() *url.URL {
	u := *c.baseURL
	return &u
}

// Jar returns the cookie jar shared by all requests, possibly nil
func (c *Client) Jar() http.CookieJar {
	return c.http.Jar
}

// Query posts a user query. The body is decoded whatever the status code; an
// undecodable body is a transport error.
func (c *Client) Query(ctx context.Context, req dto.QueryRequest) (*dto.QueryResponse, error) {
	status, body, err := c.do(ctx, http.MethodPost, cnst.PathQuery, req)
	if err != nil {
		return nil, err
	}
	var resp dto.QueryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errorx.NewTransportError("query", decodeError(status, body, err))
	}
	return &resp, nil
}

// MediaMatch asks for media of kind tagged with tag and returns the raw JSON
// body. Shape checks are left to the caller.
func (c *Client) MediaMatch(ctx context.Context, kind cnst.ContentKind, tag string) ([]byte, error) {
	status, body, err := c.do(ctx, http.MethodPost, cnst.PathMediaMatch, dto.MediaMatchRequest{Type: kind.String(), Tag: tag})
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(body) {
		return nil, errorx.NewTransportError("media-match", decodeError(status, body, fmt.Errorf("invalid JSON body")))
	}
	return body, nil
}

// SendClicks posts a batch of click events
func (c *Client) SendClicks(ctx context.Context, req dto.SessionClicksRequest) error {
	return c.send(ctx, "session-clicks", cnst.PathSessionClicks, req)
}

// SendMoves posts a batch of pointer-move events
func (c *Client) SendMoves(ctx context.Context, req dto.SessionMovesRequest) error {
	return c.send(ctx, "session-move", cnst.PathSessionMove, req)
}

// UpcomingClasses fetches the listing of classes that have not started yet
func (c *Client) UpcomingClasses(ctx context.Context) ([]dto.UpcomingClass, error) {
	status, body, err := c.do(ctx, http.MethodGet, cnst.PathUpcomingClasses, nil)
	if err != nil {
		return nil, err
	}
	if status/100 != 2 {
		return nil, errorx.NewTransportError("upcoming-classes", &errorx.StatusError{StatusCode: status, Body: preview(body)})
	}
	var classes []dto.UpcomingClass
	if err := json.Unmarshal(body, &classes); err != nil {
		return nil, errorx.NewTransportError("upcoming-classes", err)
	}
	return classes, nil
}

func (c *Client) send(ctx context.Context, op, path string, payload any) error {
	status, body, err := c.do(ctx, http.MethodPost, path, payload)
	if err != nil {
		return err
	}
	if status/100 != 2 {
		return errorx.NewTransportError(op, &errorx.StatusError{StatusCode: status, Body: preview(body)})
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, payload any) (int, []byte, error) {
	var reader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, errorx.NewTransportError(strings.TrimPrefix(path, "/api/"), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, errorx.NewTransportError(strings.TrimPrefix(path, "/api/"), err)
	}

	c.logger.Debug("backend response",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)))
	return resp.StatusCode, body, nil
}

func decodeError(status int, body []byte, err error) error {
	if status/100 != 2 {
		return fmt.Errorf("%w: %v", &errorx.StatusError{StatusCode: status, Body: preview(body)}, err)
	}
	return err
}

func preview(body []byte) string {
	const limit = 200
	s := strings.TrimSpace(string(body))
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
