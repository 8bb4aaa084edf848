// Package appwrite is a small REST client for the Appwrite backend: the
// account, databases and storage services this application depends on.
package appwrite

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const (
	headerProject        = "X-Appwrite-Project"
	headerKey            = "X-Appwrite-Key"
	headerSession        = "X-Appwrite-Session"
	headerResponseFormat = "X-Appwrite-Response-Format"
	responseFormat       = "1.5.0"

	tracerName = "store-it/appwrite"
)

// ErrNoSession is returned when a session client is requested without a secret.
var ErrNoSession = errors.New("no session")

// Config addresses one backend project.
type Config struct {
	Endpoint   string
	ProjectID  string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client issues authenticated requests against the backend REST API. A client
// carries either the server API key (admin) or a user session secret, never both.
type Client struct {
	endpoint string
	project  string
	key      string
	session  string
	http     *http.Client
	tracer   trace.Tracer
}

// NewAdminClient returns a client authenticated with the server API key.
func NewAdminClient(cfg Config) *Client {
	c := newClient(cfg)
	c.key = cfg.APIKey
	return c
}

// NewSessionClient returns a client acting as the user owning secret.
func NewSessionClient(cfg Config, secret string) (*Client, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrNoSession
	}
	c := newClient(cfg)
	c.session = secret
	return c, nil
}

func newClient(cfg Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	return &Client{
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		project:  cfg.ProjectID,
		http:     hc,
		tracer:   otel.Tracer(tracerName),
	}
}

// Account returns the account service bound to this client.
func (c *Client) Account() *Account { return &Account{c: c} }

// Databases returns the databases service bound to this client.
func (c *Client) Databases() *Databases { return &Databases{c: c} }

// Storage returns the storage service bound to this client.
func (c *Client) Storage() *Storage { return &Storage{c: c} }

// UniqueID returns a fresh identifier accepted by the backend for new resources.
func UniqueID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Error is a non-2xx backend response.
type Error struct {
	Status  int    `json:"-"`
	Code    int    `json:"code"`
	Type    string `json:"type"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("appwrite: %s (%d %s)", e.Message, e.Status, e.Type)
	}
	return fmt.Sprintf("appwrite: %s (%d)", e.Message, e.Status)
}

// IsNotFound reports whether err is a backend 404.
func IsNotFound(err error) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Status == http.StatusNotFound
}

func (c *Client) url(path string, query url.Values) string {
	u := c.endpoint + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (c *Client) sendJSON(ctx context.Context, op, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode %s payload: %w", op, err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.url(path, nil), body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(op, req, out)
}

func (c *Client) get(ctx context.Context, op, path string, query url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(path, query), nil)
	if err != nil {
		return err
	}
	return c.do(op, req, out)
}

// do sends req inside a client span and decodes a JSON body into out when
// out is non-nil and the response carries content.
func (c *Client) do(op string, req *http.Request, out any) error {
	ctx, span := c.tracer.Start(req.Context(), "appwrite."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("appwrite.project", c.project),
		),
	)
	defer span.End()
	req = req.WithContext(ctx)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	req.Header.Set(headerProject, c.project)
	req.Header.Set(headerResponseFormat, responseFormat)
	req.Header.Set("Accept", "application/json")
	if c.key != "" {
		req.Header.Set(headerKey, c.key)
	}
	if c.session != "" {
		req.Header.Set(headerSession, c.session)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport")
		return fmt.Errorf("appwrite %s: %w", op, err)
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode >= 400 {
		apiErr := decodeError(resp)
		span.RecordError(apiErr)
		span.SetStatus(codes.Error, apiErr.Type)
		return apiErr
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		span.RecordError(err)
		return fmt.Errorf("decode %s response: %w", op, err)
	}
	return nil
}

func decodeError(resp *http.Response) *Error {
	apiErr := &Error{Status: resp.StatusCode}
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(b, apiErr); err != nil || apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(b))
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
	}
	return apiErr
}

func pathf(format string, ids ...string) string {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = url.PathEscape(id)
	}
	return fmt.Sprintf(format, args...)
}
