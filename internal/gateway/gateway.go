package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nikolayk812/cartsync/internal/domain"
	"github.com/nikolayk812/cartsync/internal/logger"
	"github.com/nikolayk812/cartsync/internal/port"
	"github.com/sethvargo/go-retry"
)

// Gateway is the remote cart as seen through a Backend. It owns the session
// guard, the catalog snapshot on add, retries and the response decoding, so
// backends only move requests.
type Gateway struct {
	backend Backend
	session port.SessionProvider
	catalog port.Catalog
	log     *logger.Logger

	retryAttempts uint64
	retryBase     time.Duration
}

type Option func(*Gateway)

// WithCatalog makes AddLine send the product snapshot along with the id.
func WithCatalog(catalog port.Catalog) Option {
	return func(g *Gateway) {
		g.catalog = catalog
	}
}

// WithRetry retries idempotent calls that failed transiently, up to attempts
// extra times with exponential backoff starting at base.
func WithRetry(attempts uint64, base time.Duration) Option {
	return func(g *Gateway) {
		g.retryAttempts = attempts
		g.retryBase = base
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(g *Gateway) {
		if l != nil {
			g.log = l
		}
	}
}

func New(backend Backend, session port.SessionProvider, opts ...Option) (*Gateway, error) {
	if backend == nil {
		return nil, fmt.Errorf("backend is nil")
	}
	if session == nil {
		return nil, fmt.Errorf("session is nil")
	}

	g := &Gateway{
		backend:   backend,
		session:   session,
		log:       logger.Nop(),
		retryBase: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.retryBase <= 0 {
		g.retryBase = 100 * time.Millisecond
	}

	return g, nil
}

func (g *Gateway) Fetch(ctx context.Context) (domain.Cart, error) {
	token, err := g.token()
	if err != nil {
		return domain.Cart{}, err
	}

	resp, err := g.do(ctx, token, Request{Operation: OpFetch})
	if err != nil {
		return domain.Cart{}, err
	}

	var data cartData
	if err := decodeData(resp, &data); err != nil {
		return domain.Cart{}, err
	}

	cart := domain.Cart{Scope: domain.ScopeRemote}
	for _, item := range data.Items {
		cart.Lines = append(cart.Lines, item.toDomain())
	}
	return cart, nil
}

func (g *Gateway) AddLine(ctx context.Context, productID string, quantity int) (domain.CartLine, error) {
	token, err := g.token()
	if err != nil {
		return domain.CartLine{}, err
	}
	if productID == "" {
		return domain.CartLine{}, domain.New(domain.CodeService, "productID is empty")
	}
	if quantity <= 0 {
		return domain.CartLine{}, domain.New(domain.CodeService, "quantity must be positive")
	}

	req := Request{
		Operation: OpAdd,
		ProductID: productID,
		Quantity:  quantity,
	}
	if g.catalog != nil {
		product, err := g.catalog.Product(ctx, productID)
		if err != nil {
			return domain.CartLine{}, fmt.Errorf("catalog.Product: %w", err)
		}
		req.Product = &product
	}

	resp, err := g.do(ctx, token, req)
	if err != nil {
		return domain.CartLine{}, err
	}

	var line Line
	if err := decodeData(resp, &line); err != nil {
		return domain.CartLine{}, err
	}
	return line.toDomain(), nil
}

func (g *Gateway) UpdateLine(ctx context.Context, remoteLineID string, quantity int) error {
	token, err := g.token()
	if err != nil {
		return err
	}
	if remoteLineID == "" {
		return domain.ErrLineNotFound
	}
	if quantity <= 0 {
		return g.RemoveLine(ctx, remoteLineID)
	}

	_, err = g.do(ctx, token, Request{
		Operation: OpUpdate,
		LineID:    remoteLineID,
		Quantity:  quantity,
	})
	return err
}

func (g *Gateway) RemoveLine(ctx context.Context, remoteLineID string) error {
	token, err := g.token()
	if err != nil {
		return err
	}
	if remoteLineID == "" {
		return domain.ErrLineNotFound
	}

	_, err = g.do(ctx, token, Request{
		Operation: OpRemove,
		LineID:    remoteLineID,
	})
	return err
}

func (g *Gateway) Clear(ctx context.Context) error {
	token, err := g.token()
	if err != nil {
		return err
	}

	_, err = g.do(ctx, token, Request{Operation: OpClear})
	return err
}

func (g *Gateway) token() (string, error) {
	token, ok := g.session.CurrentSessionToken()
	if !ok || token == "" {
		return "", domain.ErrNotAuthenticated
	}
	return token, nil
}

func (g *Gateway) do(ctx context.Context, token string, req Request) (Response, error) {
	if !req.Operation.Idempotent() || g.retryAttempts == 0 {
		return g.call(ctx, token, req)
	}

	backoff := retry.WithMaxRetries(g.retryAttempts, retry.NewExponential(g.retryBase))

	var resp Response
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		r, err := g.call(ctx, token, req)
		if err != nil {
			if domain.IsRetryable(err) {
				g.log.Warn(ctx, fmt.Sprintf("remote cart %s failed, retrying", req.Operation), err)
				return retry.RetryableError(err)
			}
			return err
		}
		resp = r
		return nil
	})
	if err != nil {
		return Response{}, contextError(err)
	}
	return resp, nil
}

func (g *Gateway) call(ctx context.Context, token string, req Request) (Response, error) {
	resp, err := g.backend.Do(ctx, token, req)
	if err != nil {
		return Response{}, contextError(err)
	}
	if !resp.Success {
		message := resp.Message
		if message == "" {
			message = fmt.Sprintf("remote cart %s failed", req.Operation)
		}
		return Response{}, domain.New(domain.CodeService, message)
	}
	return resp, nil
}

func decodeData(resp Response, v any) error {
	if len(resp.Data) == 0 {
		return domain.New(domain.CodeService, "response has no data")
	}
	if err := json.Unmarshal(resp.Data, v); err != nil {
		return domain.Wrap(domain.CodeService, fmt.Errorf("json.Unmarshal: %w", err), "malformed response")
	}
	return nil
}

// contextError classifies cancellation and deadline errors as transient.
func contextError(err error) error {
	if domain.As(err) != nil {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return domain.Wrap(domain.CodeTransient, err, "remote cart call interrupted")
	}
	return err
}
