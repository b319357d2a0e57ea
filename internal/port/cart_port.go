package port

import (
	"context"

	"github.com/nikolayk812/cartsync/internal/domain"
)

// LocalCartStore keeps the guest cart of one profile.
type LocalCartStore interface {
	Get(ctx context.Context) (domain.Cart, error)
	Save(ctx context.Context, cart domain.Cart) error
	Clear(ctx context.Context) error
}

// RemoteCartGateway is the account cart held by the backend service. Every
// variant fails with domain.CodeUnauthenticated when no session is active.
type RemoteCartGateway interface {
	Fetch(ctx context.Context) (domain.Cart, error)
	AddLine(ctx context.Context, productID string, quantity int) (domain.CartLine, error)
	UpdateLine(ctx context.Context, remoteLineID string, quantity int) error
	RemoveLine(ctx context.Context, remoteLineID string) error
	Clear(ctx context.Context) error
}

type SessionProvider interface {
	IsAuthenticated() bool
	CurrentSessionToken() (string, bool)
}

type Catalog interface {
	Product(ctx context.Context, productID string) (domain.Product, error)
}

// BadgeRefresher is notified whenever the visible cart changed.
type BadgeRefresher interface {
	Refresh(ctx context.Context)
}

// Notifier surfaces a one-line message to the shopper.
type Notifier interface {
	Notify(ctx context.Context, message string)
}
