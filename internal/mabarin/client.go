// Package mabarin is a typed client for the Mabarin REST API.  Every reply
// goes through ParseEnvelope so callers see one schema, an *APIError for
// reported failures and a *DecodeError for replies that do not fit.
package mabarin

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

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const maxBody = 4 << 20

// Client talks to one API base such as https://api.mabarin.id/api/v1.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tracer     trace.Tracer
}

// NewClient creates a client with the given request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		tracer:     otel.Tracer("github.com/mabarin/mabarin-web/internal/mabarin"),
	}
}

// call describes one request.  Token is sent as a bearer when set.
type call struct {
	method string
	path   string
	query  url.Values
	body   any
	token  string
}

func (c *Client) do(ctx context.Context, rq call) (Envelope, error) {
	endpoint := rq.method + " " + rq.path
	ctx, span := c.tracer.Start(ctx, endpoint, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	env, status, err := c.roundTrip(ctx, rq, endpoint)
	span.SetAttributes(
		attribute.String("http.request.method", rq.method),
		attribute.String("url.path", rq.path),
		attribute.Int("http.response.status_code", status),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return env, err
}

func (c *Client) roundTrip(ctx context.Context, rq call, endpoint string) (Envelope, int, error) {
	u := c.baseURL + rq.path
	if len(rq.query) > 0 {
		u += "?" + rq.query.Encode()
	}

	var body io.Reader
	if rq.body != nil {
		b, err := json.Marshal(rq.body)
		if err != nil {
			return Envelope{}, 0, fmt.Errorf("%s: marshal request: %w", endpoint, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, rq.method, u, body)
	if err != nil {
		return Envelope{}, 0, fmt.Errorf("%s: create request: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if rq.token != "" {
		req.Header.Set("Authorization", "Bearer "+rq.token)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Envelope{}, 0, fmt.Errorf("%s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return Envelope{}, resp.StatusCode, fmt.Errorf("%s: read body: %w", endpoint, err)
	}

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	env, perr := ParseEnvelope(raw)
	switch {
	case perr != nil && ok:
		return Envelope{}, resp.StatusCode, &DecodeError{Endpoint: endpoint, Err: perr}
	case perr != nil:
		return Envelope{}, resp.StatusCode, &APIError{Endpoint: endpoint, Status: resp.StatusCode}
	case !ok || !env.Success:
		return env, resp.StatusCode, &APIError{Endpoint: endpoint, Status: resp.StatusCode, Message: env.Message}
	}
	return env, resp.StatusCode, nil
}

// fetch runs rq and decodes the payload into out.
func (c *Client) fetch(ctx context.Context, rq call, out any) error {
	env, err := c.do(ctx, rq)
	if err != nil {
		return err
	}
	if err := decodeInto(env.Payload, out); err != nil {
		return &DecodeError{Endpoint: rq.method + " " + rq.path, Err: err}
	}
	return nil
}

// fetchList runs rq and decodes a list payload.
func fetchList[T any](ctx context.Context, c *Client, rq call) ([]T, error) {
	env, err := c.do(ctx, rq)
	if err != nil {
		return nil, err
	}
	items, err := decodeList[T](env.Payload)
	if err != nil {
		return nil, &DecodeError{Endpoint: rq.method + " " + rq.path, Err: err}
	}
	return items, nil
}
