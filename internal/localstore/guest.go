package localstore

import (
	"context"

	"github.com/nikolayk812/cartsync/internal/domain"
	"github.com/nikolayk812/cartsync/internal/port"
)

// Guest implements the shopper-facing guest cart operations on top of any
// LocalCartStore. A failed write still returns the updated cart together with
// the storage error so callers can keep going.
type Guest struct {
	store port.LocalCartStore
}

func NewGuest(store port.LocalCartStore) *Guest {
	return &Guest{store: store}
}

func (g *Guest) Cart(ctx context.Context) (domain.Cart, error) {
	return g.store.Get(ctx)
}

func (g *Guest) AddLine(ctx context.Context, product domain.Product, quantity int) (domain.Cart, error) {
	if quantity <= 0 {
		return g.store.Get(ctx)
	}

	cart, err := g.store.Get(ctx)
	if err != nil {
		return cart, err
	}

	cart = cart.Add(product, quantity)
	return cart, g.store.Save(ctx, cart)
}

// UpdateLine sets the quantity of productID; a quantity <= 0 removes the line.
// Unknown products are a no-op.
func (g *Guest) UpdateLine(ctx context.Context, productID string, quantity int) (domain.Cart, error) {
	cart, err := g.store.Get(ctx)
	if err != nil {
		return cart, err
	}

	if _, ok := cart.Find(productID); !ok {
		return cart, nil
	}

	cart = cart.SetQuantity(productID, quantity)
	return cart, g.store.Save(ctx, cart)
}

func (g *Guest) RemoveLine(ctx context.Context, productID string) (domain.Cart, error) {
	cart, err := g.store.Get(ctx)
	if err != nil {
		return cart, err
	}

	cart = cart.Remove(productID)
	return cart, g.store.Save(ctx, cart)
}

func (g *Guest) Clear(ctx context.Context) error {
	return g.store.Clear(ctx)
}

// Count returns the badge number of the guest cart, zero when it cannot be read.
func (g *Guest) Count(ctx context.Context) int {
	cart, err := g.store.Get(ctx)
	if err != nil {
		return 0
	}
	return cart.ItemCount()
}
