// Package client talks to the memory JSON API of a running service.
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

	"github.com/dkrizic/memorylove/service/creation"
	"github.com/dkrizic/memorylove/service/persistence"
	"github.com/dkrizic/memorylove/telemetry/httpclient"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

// APIError is a non-2xx answer from the service.
type APIError struct {
	StatusCode int
	Message    string
	Step       int
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("memorylove: unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("memorylove: %s (status %d)", e.Message, e.StatusCode)
}

// Unwrap lets errors.Is match persistence.ErrStorageUnavailable on 503.
func (e *APIError) Unwrap() error {
	if e.StatusCode == http.StatusServiceUnavailable {
		return persistence.ErrStorageUnavailable
	}
	return nil
}

type Client struct {
	endpoint string
	username string
	password string
	http     *httpclient.Client
}

// New returns a client for endpoint. A missing scheme defaults to http. A nil
// hc uses httpclient.DefaultClient.
func New(endpoint, username, password string, hc *httpclient.Client) *Client {
	if !strings.Contains(endpoint, "://") {
		endpoint = "http://" + endpoint
	}
	if hc == nil {
		hc = httpclient.DefaultClient()
	}
	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		username: username,
		password: password,
		http:     hc,
	}
}

// Endpoint is the normalized base URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.username != "" && c.password != "" {
		req.SetBasicAuth(c.username, c.password)
	}
	return c.http.Do(req)
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	var body struct {
		Error string `json:"error"`
		Step  int    `json:"step"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		apiErr.Message = body.Error
		apiErr.Step = body.Step
	}
	return apiErr
}

func memoryPath(id string) string {
	return "/api/memories/" + url.PathEscape(id)
}

// GenerateID asks the service for a fresh id.
func (c *Client) GenerateID(ctx context.Context) (string, error) {
	ctx, span := otel.Tracer("client").Start(ctx, "GenerateID")
	defer span.End()

	resp, err := c.do(ctx, http.MethodGet, "/api/id", nil)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := decodeError(resp)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	var body struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return body.ID, nil
}

// Create submits a draft and returns the stored record.
func (c *Client) Create(ctx context.Context, draft creation.Draft) (persistence.Record, error) {
	ctx, span := otel.Tracer("client").Start(ctx, "Create")
	defer span.End()

	resp, err := c.do(ctx, http.MethodPost, "/api/memories", draft)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return persistence.Record{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		err := decodeError(resp)
		span.SetStatus(codes.Error, err.Error())
		return persistence.Record{}, err
	}
	var r persistence.Record
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return persistence.Record{}, fmt.Errorf("decode response: %w", err)
	}
	return r, nil
}

// Get fetches id. found is false when the service answers 404.
func (c *Client) Get(ctx context.Context, id string) (persistence.Record, bool, error) {
	ctx, span := otel.Tracer("client").Start(ctx, "Get")
	defer span.End()

	resp, err := c.do(ctx, http.MethodGet, memoryPath(id), nil)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return persistence.Record{}, false, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return persistence.Record{}, false, nil
	default:
		err := decodeError(resp)
		span.SetStatus(codes.Error, err.Error())
		return persistence.Record{}, false, err
	}
	var r persistence.Record
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return persistence.Record{}, false, fmt.Errorf("decode response: %w", err)
	}
	return r, true, nil
}

// GetAll lists every memory keyed by id.
func (c *Client) GetAll(ctx context.Context) (map[string]persistence.Record, error) {
	ctx, span := otel.Tracer("client").Start(ctx, "GetAll")
	defer span.End()

	resp, err := c.do(ctx, http.MethodGet, "/api/memories", nil)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := decodeError(resp)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	all := map[string]persistence.Record{}
	if err := json.NewDecoder(resp.Body).Decode(&all); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return all, nil
}

func (c *Client) Delete(ctx context.Context, id string) error {
	ctx, span := otel.Tracer("client").Start(ctx, "Delete")
	defer span.End()

	resp, err := c.do(ctx, http.MethodDelete, memoryPath(id), nil)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		err := decodeError(resp)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

// QRCode downloads the PNG QR code of id.
func (c *Client) QRCode(ctx context.Context, id string) ([]byte, error) {
	ctx, span := otel.Tracer("client").Start(ctx, "QRCode")
	defer span.End()

	resp, err := c.do(ctx, http.MethodGet, "/memory/"+url.PathEscape(id)+"/qr.png", nil)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := &APIError{StatusCode: resp.StatusCode}
		if resp.StatusCode == http.StatusNotFound {
			err.Message = "memory not found"
		}
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return io.ReadAll(resp.Body)
}
