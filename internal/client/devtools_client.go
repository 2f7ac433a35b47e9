package client

import (
	"context"
	"fmt"
	"strings"
	"time"

	"portfolio_scraper/internal/entity"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DevToolsClient talks to the HTTP side of a remote Chrome DevTools endpoint.
type DevToolsClient interface {
	// Version returns the browser version payload.
	Version(ctx context.Context) (*entity.DevToolsVersion, error)
	// WebSocketURL resolves the browser-level websocket debugger URL.
	WebSocketURL(ctx context.Context) (string, error)
}

// devToolsClientImpl is the implementation of DevToolsClient.
type devToolsClientImpl struct {
	client  *fasthttp.Client
	baseURL string
	timeout time.Duration
	logger  *zap.Logger
}

// NewDevToolsClient creates a client for the DevTools endpoint at baseURL, e.g. http://127.0.0.1:9222.
func NewDevToolsClient(baseURL string, timeout time.Duration, logger *zap.Logger) DevToolsClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &devToolsClientImpl{
		client:  &fasthttp.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		logger:  logger.Named("DevToolsClient"),
	}
}

// Version implements the DevToolsClient interface.
func (c *devToolsClientImpl) Version(ctx context.Context) (*entity.DevToolsVersion, error) {
	requestURL := c.baseURL + "/json/version"
	c.logger.Debug("Requesting DevTools version", zap.String("url", requestURL))

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(fasthttp.MethodGet)

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	if deadline, ok := ctx.Deadline(); ok {
		if err := c.client.DoDeadline(req, resp, deadline); err != nil {
			c.logger.Error("Failed to execute request to DevTools", zap.String("url", requestURL), zap.Error(err))
			return nil, fmt.Errorf("failed to execute request to %s: %w", requestURL, err)
		}
	} else if err := c.client.DoTimeout(req, resp, c.timeout); err != nil {
		c.logger.Error("Failed to execute request to DevTools (with default timeout)", zap.String("url", requestURL), zap.Error(err))
		return nil, fmt.Errorf("failed to execute request to %s with default timeout: %w", requestURL, err)
	}

	rawBody := resp.Body()
	if resp.StatusCode() != fasthttp.StatusOK {
		c.logger.Error("DevTools version request failed",
			zap.String("url", requestURL),
			zap.Int("statusCode", resp.StatusCode()),
			zap.ByteString("responseBody", rawBody),
		)
		return nil, fmt.Errorf("DevTools request to %s failed with status %d: %s", requestURL, resp.StatusCode(), string(rawBody))
	}

	var version entity.DevToolsVersion
	if err := json.Unmarshal(rawBody, &version); err != nil {
		return nil, fmt.Errorf("failed to unmarshal DevTools version from %s: %w", requestURL, err)
	}
	c.logger.Debug("DevTools version received",
		zap.String("browser", version.Browser),
		zap.String("protocolVersion", version.ProtocolVersion))
	return &version, nil
}

// WebSocketURL implements the DevToolsClient interface.
func (c *devToolsClientImpl) WebSocketURL(ctx context.Context) (string, error) {
	version, err := c.Version(ctx)
	if err != nil {
		return "", err
	}
	if version.WebSocketDebuggerURL == "" {
		return "", fmt.Errorf("DevTools at %s reported no webSocketDebuggerUrl", c.baseURL)
	}
	return version.WebSocketDebuggerURL, nil
}
