package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/nikolayk812/cartsync/internal/domain"
)

// Memory is an in-process backend holding a single account cart. It stands
// in for the hosted service in tests and offline runs.
type Memory struct {
	mu    sync.Mutex
	lines []Line
	calls map[Operation]int
	fail  func(Request) error
}

func NewMemory(lines ...domain.CartLine) *Memory {
	m := &Memory{calls: make(map[Operation]int)}
	for _, line := range lines {
		if line.RemoteLineID == "" {
			line.RemoteLineID = uuid.NewString()
		}
		m.lines = append(m.lines, lineFromDomain(line))
	}
	return m
}

// FailWith installs a hook consulted before every request; a non-nil error
// is returned instead of serving the request.
func (m *Memory) FailWith(fn func(Request) error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = fn
}

// Calls is the number of requests of op received so far, failed ones included.
func (m *Memory) Calls(op Operation) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

// Lines returns a copy of the stored cart lines.
func (m *Memory) Lines() []domain.CartLine {
	m.mu.Lock()
	defer m.mu.Unlock()

	var lines []domain.CartLine
	for _, l := range m.lines {
		lines = append(lines, l.toDomain())
	}
	return lines
}

func (m *Memory) Do(ctx context.Context, token string, req Request) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls[req.Operation]++

	if token == "" {
		return Response{}, domain.ErrNotAuthenticated
	}
	if m.fail != nil {
		if err := m.fail(req); err != nil {
			return Response{}, err
		}
	}

	switch req.Operation {
	case OpFetch:
		return ok(cartData{Items: append([]Line{}, m.lines...)})
	case OpAdd:
		return m.add(req)
	case OpUpdate:
		idx := m.indexOf(req.LineID)
		if idx < 0 {
			return notFound(), nil
		}
		if req.Quantity <= 0 {
			m.lines = append(m.lines[:idx], m.lines[idx+1:]...)
		} else {
			m.lines[idx].Quantity = req.Quantity
		}
		return ok(nil)
	case OpRemove:
		idx := m.indexOf(req.LineID)
		if idx < 0 {
			return notFound(), nil
		}
		m.lines = append(m.lines[:idx], m.lines[idx+1:]...)
		return ok(nil)
	case OpClear:
		m.lines = nil
		return ok(nil)
	default:
		return Response{Message: fmt.Sprintf("operation[%s] is not supported", req.Operation)}, nil
	}
}

func (m *Memory) add(req Request) (Response, error) {
	if req.ProductID == "" || req.Quantity <= 0 {
		return Response{Message: "productId and a positive quantity are required"}, nil
	}

	for i := range m.lines {
		if m.lines[i].ProductID == req.ProductID {
			m.lines[i].Quantity += req.Quantity
			return ok(m.lines[i])
		}
	}

	line := Line{
		CartItemID: uuid.NewString(),
		ProductID:  req.ProductID,
		Quantity:   req.Quantity,
	}
	if req.Product != nil {
		line.Name = req.Product.Name
		line.Price = req.Product.Price
		line.Image = req.Product.ImageRef
	}
	m.lines = append(m.lines, line)
	return ok(line)
}

func (m *Memory) indexOf(lineID string) int {
	for i, l := range m.lines {
		if l.CartItemID == lineID {
			return i
		}
	}
	return -1
}

func ok(data any) (Response, error) {
	if data == nil {
		return Response{Success: true}, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return Response{}, fmt.Errorf("json.Marshal: %w", err)
	}
	return Response{Success: true, Data: raw}, nil
}

func notFound() Response {
	return Response{Message: domain.ErrLineNotFound.Message()}
}
