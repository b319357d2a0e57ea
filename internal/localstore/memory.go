package localstore

import (
	"context"
	"sync"

	"github.com/nikolayk812/cartsync/internal/domain"
	"github.com/nikolayk812/cartsync/internal/port"
)

// Memory keeps the encoded guest cart in process memory. It goes through the
// same record codec as the durable stores.
type Memory struct {
	mu      sync.RWMutex
	payload []byte
}

func NewMemory() port.LocalCartStore {
	return &Memory{}
}

func (m *Memory) Get(_ context.Context) (domain.Cart, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cart, err := decodeCart(m.payload)
	if err != nil {
		return domain.NewLocalCart(), storageError("decode local cart", err)
	}
	return cart, nil
}

func (m *Memory) Save(_ context.Context, cart domain.Cart) error {
	data, err := encodeCart(cart)
	if err != nil {
		return storageError("encode local cart", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.payload = data
	return nil
}

func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payload = nil
	return nil
}
