package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmitrymomot/detectkit/pkg/logger"
	"github.com/dmitrymomot/detectkit/pkg/requestid"
)

const (
	tracerName       = "github.com/dmitrymomot/detectkit/pkg/apiclient"
	defaultUserAgent = "detectkit/1.0"
	defaultTimeout   = 30 * time.Second

	// maxResponseSize caps how much of a response body is read.
	maxResponseSize = 10 << 20
)

// Client sends requests to a single backend base URL.
// Zero value is not usable; use New. It is safe for concurrent use.
type Client struct {
	baseURL   string
	http      *http.Client
	timeout   time.Duration
	token     TokenFunc
	log       *slog.Logger
	tracer    trace.Tracer
	userAgent string
}

// New creates a client for baseURL, e.g. "https://api.example.com/aion/users".
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Join(ErrInvalidBaseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, ErrInvalidBaseURL
	}

	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{},
		timeout:   defaultTimeout,
		token:     func(context.Context) (string, error) { return "", nil },
		log:       logger.Discard(),
		tracer:    otel.Tracer(tracerName),
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// URL joins the base URL with endpoint. An empty endpoint targets the base URL.
func (c *Client) URL(endpoint string) string {
	endpoint = strings.TrimLeft(endpoint, "/")
	if endpoint == "" {
		return c.baseURL
	}
	return c.baseURL + "/" + endpoint
}

// Do sends a request and returns the raw JSON response body. A successful
// response without a body yields nil. body may be nil.
func (c *Client) Do(ctx context.Context, method, endpoint string, body Body) (json.RawMessage, error) {
	ctx, span := c.tracer.Start(ctx, "apiclient.Do",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("detectkit.endpoint", endpoint),
		),
	)
	defer span.End()

	start := time.Now()
	raw, status, err := c.do(ctx, method, endpoint, body)
	if status > 0 {
		span.SetAttributes(attribute.Int("http.response.status_code", status))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.log.ErrorContext(ctx, "api request failed",
			logger.Method(method),
			logger.Endpoint(endpoint),
			logger.StatusCode(status),
			logger.Duration(time.Since(start)),
			logger.Error(err),
		)
		return nil, err
	}
	return raw, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, body Body) (json.RawMessage, int, error) {
	fail := func(status int, cause error) (json.RawMessage, int, error) {
		return nil, status, &Error{Class: ClassOther, StatusCode: status, Method: method, Endpoint: endpoint, Cause: cause}
	}

	var (
		reader      io.Reader
		contentType string
	)
	if body != nil {
		var err error
		if reader, contentType, err = body.encode(); err != nil {
			return fail(0, err)
		}
	}

	token, err := c.token(ctx)
	if err != nil {
		return fail(0, errors.Join(ErrTokenUnavailable, err))
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, c.URL(endpoint), reader)
	if err != nil {
		return fail(0, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if id := requestid.FromContext(ctx); id != "" {
		req.Header.Set(requestid.Header, id)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.http.Do(req)
	if err != nil {
		return fail(0, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fail(resp.StatusCode, err)
	}

	raw, err := classify(method, endpoint, resp.StatusCode, data)
	return raw, resp.StatusCode, err
}

// classify maps a response onto the error taxonomy. Order matters: the three
// well-known client errors win over the generic non-2xx branch.
func classify(method, endpoint string, status int, data []byte) (json.RawMessage, error) {
	newErr := func(class StatusClass, payload any, cause error) error {
		return &Error{Class: class, StatusCode: status, Method: method, Endpoint: endpoint, Payload: payload, Cause: cause}
	}

	switch {
	case status == http.StatusBadRequest:
		return nil, newErr(ClassBadRequest, decodePayload(data), nil)
	case status == http.StatusUnauthorized:
		return nil, newErr(ClassUnauthorized, nil, nil)
	case status == http.StatusNotFound:
		return nil, newErr(ClassNotFound, nil, nil)
	case status < 200 || status > 299:
		return nil, newErr(ClassOther, decodePayload(data), nil)
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}
	if !json.Valid(data) {
		return nil, newErr(ClassOther, nil, ErrInvalidResponse)
	}
	return json.RawMessage(data), nil
}

func decodePayload(data []byte) any {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return string(data)
	}
	return v
}

// Decode unmarshals a response body into T. Empty or malformed bodies are
// reported as ClassOther errors.
func Decode[T any](raw json.RawMessage) (T, error) {
	var v T
	if len(raw) == 0 {
		return v, &Error{Class: ClassOther, Cause: ErrEmptyResponse}
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, &Error{Class: ClassOther, Cause: errors.Join(ErrInvalidResponse, err)}
	}
	return v, nil
}

// Endpoint appends an encoded query string to path.
func Endpoint(path string, query url.Values) string {
	if len(query) == 0 {
		return path
	}
	return path + "?" + query.Encode()
}
