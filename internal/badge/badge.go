package badge

import (
	"context"
	"fmt"
	"sync"

	"github.com/nikolayk812/cartsync/internal/logger"
	"github.com/nikolayk812/cartsync/internal/port"
)

// Display receives the badge number whenever it is refreshed.
type Display interface {
	ShowCount(ctx context.Context, count int)
}

type DisplayFunc func(ctx context.Context, count int)

func (f DisplayFunc) ShowCount(ctx context.Context, count int) {
	f(ctx, count)
}

// Badge is the number of items shown next to the cart icon. It counts the
// account cart for a signed-in shopper and the guest cart otherwise.
type Badge struct {
	session port.SessionProvider
	local   port.LocalCartStore
	remote  port.RemoteCartGateway
	display Display
	log     *logger.Logger

	mu   sync.Mutex
	last int
}

type Option func(*Badge)

func WithDisplay(d Display) Option {
	return func(b *Badge) {
		b.display = d
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(b *Badge) {
		if l != nil {
			b.log = l
		}
	}
}

func New(session port.SessionProvider, local port.LocalCartStore, remote port.RemoteCartGateway, opts ...Option) (*Badge, error) {
	if session == nil {
		return nil, fmt.Errorf("session is nil")
	}
	if local == nil {
		return nil, fmt.Errorf("local store is nil")
	}
	if remote == nil {
		return nil, fmt.Errorf("remote gateway is nil")
	}

	b := &Badge{
		session: session,
		local:   local,
		remote:  remote,
		log:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}

	return b, nil
}

// Count never fails: a remote error falls back to the guest cart and an
// unreadable guest cart counts as zero.
func (b *Badge) Count(ctx context.Context) int {
	if b.session.IsAuthenticated() {
		cart, err := b.remote.Fetch(ctx)
		if err == nil {
			return cart.ItemCount()
		}
		b.log.Warn(ctx, "badge: remote cart unavailable, counting guest cart", err)
	}

	cart, err := b.local.Get(ctx)
	if err != nil {
		b.log.Warn(ctx, "badge: guest cart unreadable", err)
		return 0
	}
	return cart.ItemCount()
}

// Refresh recounts and publishes the result to the display.
func (b *Badge) Refresh(ctx context.Context) {
	count := b.Count(ctx)

	b.mu.Lock()
	b.last = count
	b.mu.Unlock()

	if b.display != nil {
		b.display.ShowCount(ctx, count)
	}
}

// Last is the count published by the most recent Refresh.
func (b *Badge) Last() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.last
}
