package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/nikolayk812/cartsync/internal/domain"
)

const maxResponseBytes = 1 << 20

// Edge talks to the hosted cart edge functions over HTTP.
type Edge struct {
	baseURL string
	anonKey string
	client  *http.Client
}

func NewEdge(baseURL, anonKey string, client *http.Client) (*Edge, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("baseURL is empty")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("url.ParseRequestURI: %w", err)
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &Edge{
		baseURL: baseURL,
		anonKey: anonKey,
		client:  client,
	}, nil
}

func (e *Edge) Do(ctx context.Context, token string, req Request) (Response, error) {
	method, path, body, err := route(req)
	if err != nil {
		return Response{}, err
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return Response{}, fmt.Errorf("json.Marshal: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, e.baseURL+path, reader)
	if err != nil {
		return Response{}, fmt.Errorf("http.NewRequestWithContext: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if e.anonKey != "" {
		httpReq.Header.Set("apikey", e.anonKey)
	}

	httpResp, err := e.client.Do(httpReq)
	if err != nil {
		return Response{}, domain.Wrap(domain.CodeTransient, fmt.Errorf("client.Do: %w", err), "remote cart unreachable")
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	if err != nil {
		return Response{}, domain.Wrap(domain.CodeTransient, fmt.Errorf("io.ReadAll: %w", err), "remote cart response interrupted")
	}

	var envelope Response
	decodeErr := json.Unmarshal(raw, &envelope)

	if err := statusError(httpResp.StatusCode, envelope.Message); err != nil {
		return Response{}, err
	}
	if decodeErr != nil {
		return Response{}, domain.Wrap(domain.CodeService, fmt.Errorf("json.Unmarshal: %w", decodeErr), "malformed response")
	}

	return envelope, nil
}

func route(req Request) (method, path string, body any, err error) {
	switch req.Operation {
	case OpFetch:
		return http.MethodGet, "/cart", nil, nil
	case OpAdd:
		return http.MethodPost, "/cart/items", newAddBody(req), nil
	case OpUpdate:
		return http.MethodPut, "/cart/items/" + url.PathEscape(req.LineID), updateBody{Quantity: req.Quantity}, nil
	case OpRemove:
		return http.MethodDelete, "/cart/items/" + url.PathEscape(req.LineID), nil, nil
	case OpClear:
		return http.MethodDelete, "/cart", nil, nil
	default:
		return "", "", nil, fmt.Errorf("operation[%s] is not supported", req.Operation)
	}
}

func statusError(status int, message string) error {
	if status < http.StatusBadRequest {
		return nil
	}

	cause := fmt.Errorf("status %d", status)
	if message == "" {
		message = strings.ToLower(http.StatusText(status))
	}

	switch {
	case status == http.StatusUnauthorized:
		return domain.Wrap(domain.CodeUnauthenticated, fmt.Errorf("%w: %s", cause, message), domain.ErrNotAuthenticated.Message())
	case status == http.StatusTooManyRequests || status >= http.StatusInternalServerError:
		return domain.Wrap(domain.CodeTransient, cause, message)
	default:
		return domain.Wrap(domain.CodeService, cause, message)
	}
}
