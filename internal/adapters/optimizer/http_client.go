package optimizer

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

	"go.uber.org/zap"

	"route-dashboard/internal/domain"
	"route-dashboard/internal/platform/obs"
	"route-dashboard/internal/ports"
)

// maxErrorBody bounds how much of a failed response is read for its message.
const maxErrorBody = 64 << 10

// HTTPClient implements ports.Optimizer against the computation service's
// JSON endpoint. Requests are never retried automatically.
//
// The client is safe for concurrent use.
type HTTPClient struct {
	session  *http.Client
	endpoint string
	logger   *zap.Logger
}

var _ ports.Optimizer = (*HTTPClient)(nil)

func NewHTTPClient(endpoint string, timeout time.Duration, logger *zap.Logger) (*HTTPClient, error) {
	if strings.TrimSpace(endpoint) == "" {
		return nil, errors.New("optimizer endpoint is empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &HTTPClient{
		session:  &http.Client{Timeout: timeout},
		endpoint: endpoint,
		logger:   logger,
	}, nil
}

// Optimize posts the parameters and decodes the result snapshot.
func (c *HTTPClient) Optimize(
	ctx context.Context,
	req domain.OptimizationRequest,
) (_ *domain.OptimizationResult, err error) {
	defer obs.Time(ctx, c.logger, "optimizer.Optimize")(&err)

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal optimization request: %w", err)
	}

	httpReq, err := c.newRequest(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}

	resp, err := c.do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var result domain.OptimizationResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &TransportError{Op: "decode optimization response", Err: err}
	}

	// A well-formed response can still carry a failure.
	if msg := strings.TrimSpace(result.ErrorMessage); msg != "" {
		return nil, &ServerError{Status: resp.StatusCode, Message: msg}
	}

	return &result, nil
}

func (c *HTTPClient) newRequest(
	ctx context.Context,
	method string,
	url string,
	body io.Reader,
) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")
	if id := obs.RequestID(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

func (c *HTTPClient) do(req *http.Request) (*http.Response, error) {
	resp, err := c.session.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "execute request", Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		resp.Body.Close()
		return nil, newServerError(resp.StatusCode, b)
	}
	return resp, nil
}
