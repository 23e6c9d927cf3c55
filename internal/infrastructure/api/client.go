// Package api talks to the remote store: the product feed and order submission.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Dradcheenko/weblarek/internal/domain/catalog"
	"github.com/Dradcheenko/weblarek/internal/domain/order"
	"github.com/Dradcheenko/weblarek/internal/infrastructure/logger"
	"github.com/Dradcheenko/weblarek/internal/infrastructure/telemetry"
)

// maxResponseSize is the largest response body read from the store (10MB)
const maxResponseSize = 10 * 1024 * 1024

const (
	productListPath = "/product/"
	orderPath       = "/order"
)

// Config holds client settings
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client calls the store API over HTTP
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the instrumented default client
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// NewClient creates a store client. Requests go through an otelhttp
// transport so outgoing calls carry trace context.
func NewClient(cfg Config, log *zap.Logger, opts ...Option) (*Client, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, cfg.BaseURL)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: logger.Named(log, "api"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// FetchProductList loads the product feed
func (c *Client) FetchProductList(ctx context.Context) (catalog.ProductList, error) {
	ctx, span := telemetry.StartSpan(ctx, "api.fetch_products", telemetry.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	var list catalog.ProductList
	if err := c.do(ctx, http.MethodGet, productListPath, nil, &list); err != nil {
		telemetry.RecordError(span, err)
		return catalog.ProductList{}, fmt.Errorf("fetch product list: %w", err)
	}
	if list.Items == nil {
		list.Items = []catalog.Product{}
	}

	telemetry.SetAttributes(span, telemetry.SpanAttrProducts, len(list.Items))
	logger.WithLogger(ctx, c.logger).Debug("Product list fetched",
		zap.Int("total", list.Total),
		zap.Int("items", len(list.Items)),
	)
	return list, nil
}

// orderBody is the wire form of an order. Totals are sent as JSON numbers.
type orderBody struct {
	Payment string      `json:"payment"`
	Email   string      `json:"email"`
	Phone   string      `json:"phone"`
	Address string      `json:"address"`
	Total   json.Number `json:"total"`
	Items   []string    `json:"items"`
}

type orderResultBody struct {
	ID    string          `json:"id"`
	Total decimal.Decimal `json:"total"`
}

// SubmitOrder posts the order and returns the store's confirmation
func (c *Client) SubmitOrder(ctx context.Context, req order.Request) (order.Result, error) {
	ctx, span := telemetry.StartSpan(ctx, "api.submit_order",
		telemetry.WithSpanKind(trace.SpanKindClient),
		telemetry.WithAttribute(telemetry.SpanAttrItemCount, len(req.Items)),
		telemetry.WithAttribute(telemetry.SpanAttrOrderTotal, req.Total.String()),
	)
	defer span.End()

	items := req.Items
	if items == nil {
		items = []string{}
	}
	body := orderBody{
		Payment: string(req.Payment),
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
		Total:   json.Number(req.Total.String()),
		Items:   items,
	}

	var res orderResultBody
	if err := c.do(ctx, http.MethodPost, orderPath, body, &res); err != nil {
		telemetry.RecordError(span, err)
		return order.Result{}, fmt.Errorf("submit order: %w", err)
	}

	telemetry.SetAttributes(span, telemetry.SpanAttrOrderID, res.ID)
	return order.Result{ID: res.ID, Total: res.Total}, nil
}

type errorBody struct {
	Error string `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var reqBody io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id := logger.GetRequestID(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var eb errorBody
		if json.Unmarshal(data, &eb) == nil && eb.Error != "" {
			apiErr.Message = eb.Error
		}
		logger.WithLogger(ctx, c.logger).Warn("Store API returned an error",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("message", apiErr.Message),
		)
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

var (
	_ catalog.Source = (*Client)(nil)
	_ order.Gateway  = (*Client)(nil)
)
