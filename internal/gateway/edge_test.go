package gateway_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/nikolayk812/cartsync/internal/catalog"
	"github.com/nikolayk812/cartsync/internal/domain"
	"github.com/nikolayk812/cartsync/internal/gateway"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEdge serves the cart edge functions on top of an in-memory cart.
type fakeEdge struct {
	cart *gateway.Memory

	mu       sync.Mutex
	headers  []http.Header
	bodies   []map[string]any
	statuses []int
}

func newFakeEdge(t *testing.T) (*fakeEdge, *httptest.Server) {
	t.Helper()

	f := &fakeEdge{cart: gateway.NewMemory()}

	r := chi.NewRouter()
	r.Get("/cart", f.handle(func(r *http.Request, _ map[string]any) gateway.Request {
		return gateway.Request{Operation: gateway.OpFetch}
	}))
	r.Delete("/cart", f.handle(func(r *http.Request, _ map[string]any) gateway.Request {
		return gateway.Request{Operation: gateway.OpClear}
	}))
	r.Post("/cart/items", f.handle(func(r *http.Request, body map[string]any) gateway.Request {
		req := gateway.Request{
			Operation: gateway.OpAdd,
			ProductID: asString(body["productId"]),
			Quantity:  asInt(body["quantity"]),
		}
		if name := asString(body["productName"]); name != "" {
			req.Product = &domain.Product{
				ID:       req.ProductID,
				Name:     name,
				Price:    decimal.RequireFromString(asString(body["productPrice"])),
				ImageRef: asString(body["productImage"]),
			}
		}
		return req
	}))
	r.Put("/cart/items/{cartItemId}", f.handle(func(r *http.Request, body map[string]any) gateway.Request {
		return gateway.Request{
			Operation: gateway.OpUpdate,
			LineID:    chi.URLParam(r, "cartItemId"),
			Quantity:  asInt(body["quantity"]),
		}
	}))
	r.Delete("/cart/items/{cartItemId}", f.handle(func(r *http.Request, _ map[string]any) gateway.Request {
		return gateway.Request{
			Operation: gateway.OpRemove,
			LineID:    chi.URLParam(r, "cartItemId"),
		}
	}))

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return f, srv
}

// failNext makes the next requests answer with the given statuses.
func (f *fakeEdge) failNext(statuses ...int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses = append(f.statuses, statuses...)
}

func (f *fakeEdge) handle(build func(r *http.Request, body map[string]any) gateway.Request) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.headers = append(f.headers, r.Header.Clone())
		var status int
		if len(f.statuses) > 0 {
			status = f.statuses[0]
			f.statuses = f.statuses[1:]
		}
		f.mu.Unlock()

		if status != 0 {
			writeJSON(w, status, gateway.Response{Message: "injected failure"})
			return
		}

		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || token == "" {
			writeJSON(w, http.StatusUnauthorized, gateway.Response{Message: "missing bearer token"})
			return
		}

		body := map[string]any{}
		if r.Body != nil && r.ContentLength != 0 {
			dec := json.NewDecoder(r.Body)
			dec.UseNumber()
			if err := dec.Decode(&body); err != nil {
				writeJSON(w, http.StatusBadRequest, gateway.Response{Message: err.Error()})
				return
			}
		}
		f.mu.Lock()
		f.bodies = append(f.bodies, body)
		f.mu.Unlock()

		resp, err := f.cart.Do(r.Context(), token, build(r, body))
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, gateway.Response{Message: err.Error()})
			return
		}
		if !resp.Success {
			writeJSON(w, http.StatusNotFound, resp)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (f *fakeEdge) lastHeader() http.Header {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.headers[len(f.headers)-1]
}

func (f *fakeEdge) lastBody() map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bodies[len(f.bodies)-1]
}

func (f *fakeEdge) requests() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.headers)
}

func writeJSON(w http.ResponseWriter, status int, resp gateway.Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func asString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	default:
		return ""
	}
}

func asInt(v any) int {
	if n, ok := v.(json.Number); ok {
		i, _ := n.Int64()
		return int(i)
	}
	return 0
}

func newEdgeGateway(t *testing.T, srv *httptest.Server, opts ...gateway.Option) *gateway.Gateway {
	t.Helper()

	edge, err := gateway.NewEdge(srv.URL+"/", "anon-key", srv.Client())
	require.NoError(t, err)

	return newGateway(t, edge, opts...)
}

func TestEdgeRoundTrip(t *testing.T) {
	product := domain.Product{ID: "42", Name: "Desk lamp", Price: decimal.RequireFromString("29.90"), ImageRef: "img/lamp.jpg"}
	c, err := catalog.New(product)
	require.NoError(t, err)

	f, srv := newFakeEdge(t)
	g := newEdgeGateway(t, srv, gateway.WithCatalog(c))
	ctx := t.Context()

	line, err := g.AddLine(ctx, "42", 3)
	require.NoError(t, err)
	assert.Equal(t, "Desk lamp", line.Name)
	assert.True(t, product.Price.Equal(line.UnitPrice))
	assert.NotEmpty(t, line.RemoteLineID)

	header := f.lastHeader()
	assert.Equal(t, "Bearer token-1", header.Get("Authorization"))
	assert.Equal(t, "anon-key", header.Get("apikey"))
	assert.Equal(t, "application/json", header.Get("Content-Type"))

	body := f.lastBody()
	assert.Equal(t, "Desk lamp", body["productName"])
	assert.Equal(t, "img/lamp.jpg", body["productImage"])

	require.NoError(t, g.UpdateLine(ctx, line.RemoteLineID, 4))

	cart, err := g.Fetch(ctx)
	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 4, cart.Lines[0].Quantity)
	assert.Equal(t, "img/lamp.jpg", cart.Lines[0].ImageRef)

	require.NoError(t, g.RemoveLine(ctx, line.RemoteLineID))
	require.ErrorIs(t, g.RemoveLine(ctx, line.RemoteLineID), domain.ErrLineNotFound)

	_, err = g.AddLine(ctx, "42", 1)
	require.NoError(t, err)
	require.NoError(t, g.Clear(ctx))

	cart, err = g.Fetch(ctx)
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)
}

func TestEdgeStatusMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		wantCode domain.Code
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, wantCode: domain.CodeUnauthenticated},
		{name: "too many requests", status: http.StatusTooManyRequests, wantCode: domain.CodeTransient},
		{name: "bad gateway", status: http.StatusBadGateway, wantCode: domain.CodeTransient},
		{name: "bad request", status: http.StatusBadRequest, wantCode: domain.CodeService},
		{name: "conflict", status: http.StatusConflict, wantCode: domain.CodeService},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, srv := newFakeEdge(t)
			g := newEdgeGateway(t, srv)

			f.failNext(tt.status)

			_, err := g.Fetch(t.Context())
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, domain.CodeOf(err))
			if tt.wantCode == domain.CodeUnauthenticated {
				assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
			}
		})
	}
}

func TestEdgeRetriesFetchButNotAdd(t *testing.T) {
	f, srv := newFakeEdge(t)
	g := newEdgeGateway(t, srv, gateway.WithRetry(3, time.Millisecond))
	ctx := t.Context()

	f.failNext(http.StatusServiceUnavailable, http.StatusServiceUnavailable)
	_, err := g.Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, f.requests())

	f.failNext(http.StatusServiceUnavailable)
	_, err = g.AddLine(ctx, "p1", 1)
	require.Error(t, err)
	assert.Equal(t, domain.CodeTransient, domain.CodeOf(err))
	assert.Equal(t, 4, f.requests())
	assert.Empty(t, f.cart.Lines())
}

func TestEdgeUnreachable(t *testing.T) {
	_, srv := newFakeEdge(t)
	g := newEdgeGateway(t, srv)
	srv.Close()

	_, err := g.Fetch(t.Context())
	require.Error(t, err)
	assert.Equal(t, domain.CodeTransient, domain.CodeOf(err))
}

func TestNewEdgeValidation(t *testing.T) {
	_, err := gateway.NewEdge("", "", nil)
	require.EqualError(t, err, "baseURL is empty")

	_, err = gateway.NewEdge("not a url", "", nil)
	require.Error(t, err)
}
