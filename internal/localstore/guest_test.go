package localstore_test

import (
	"context"
	"errors"
	"testing"

	"github.com/nikolayk812/cartsync/internal/domain"
	"github.com/nikolayk812/cartsync/internal/localstore"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	shoe = domain.Product{ID: "p-1", Name: "Running shoe", Price: decimal.NewFromInt(50), ImageRef: "img/shoe.jpg"}
	sock = domain.Product{ID: "p-2", Name: "Sock", Price: decimal.NewFromInt(10), ImageRef: "img/sock.jpg"}
)

func TestGuestAddLineMergesSameProduct(t *testing.T) {
	ctx := t.Context()
	guest := localstore.NewGuest(localstore.NewMemory())

	_, err := guest.AddLine(ctx, shoe, 1)
	require.NoError(t, err)
	_, err = guest.AddLine(ctx, sock, 3)
	require.NoError(t, err)
	cart, err := guest.AddLine(ctx, shoe, 2)
	require.NoError(t, err)

	require.Len(t, cart.Lines, 2)
	assert.Equal(t, "p-1", cart.Lines[0].ProductID)
	assert.Equal(t, 3, cart.Lines[0].Quantity)
	assert.Equal(t, "Running shoe", cart.Lines[0].Name)
	assert.Equal(t, 6, guest.Count(ctx))
}

func TestGuestUpdateLine(t *testing.T) {
	tests := []struct {
		name      string
		productID string
		quantity  int
		wantLines int
		wantQty   int
	}{
		{name: "set quantity", productID: "p-1", quantity: 7, wantLines: 2, wantQty: 7},
		{name: "zero removes line", productID: "p-1", quantity: 0, wantLines: 1},
		{name: "negative removes line", productID: "p-1", quantity: -3, wantLines: 1},
		{name: "unknown product is a no-op", productID: "p-9", quantity: 4, wantLines: 2, wantQty: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := t.Context()
			guest := localstore.NewGuest(localstore.NewMemory())
			_, err := guest.AddLine(ctx, shoe, 2)
			require.NoError(t, err)
			_, err = guest.AddLine(ctx, sock, 1)
			require.NoError(t, err)

			cart, err := guest.UpdateLine(ctx, tt.productID, tt.quantity)
			require.NoError(t, err)
			require.Len(t, cart.Lines, tt.wantLines)

			line, ok := cart.Find("p-1")
			if tt.wantQty == 0 {
				assert.False(t, ok)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tt.wantQty, line.Quantity)
		})
	}
}

func TestGuestRemoveAndClear(t *testing.T) {
	ctx := t.Context()
	guest := localstore.NewGuest(localstore.NewMemory())

	_, err := guest.AddLine(ctx, shoe, 1)
	require.NoError(t, err)
	_, err = guest.AddLine(ctx, sock, 1)
	require.NoError(t, err)

	cart, err := guest.RemoveLine(ctx, "p-2")
	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)

	require.NoError(t, guest.Clear(ctx))
	assert.Equal(t, 0, guest.Count(ctx))
}

func TestGuestAddLineIgnoresNonPositiveQuantity(t *testing.T) {
	ctx := t.Context()
	guest := localstore.NewGuest(localstore.NewMemory())

	cart, err := guest.AddLine(ctx, shoe, 0)
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
}

type failingStore struct {
	localstore.Memory
}

func (f *failingStore) Save(context.Context, domain.Cart) error {
	return domain.Wrap(domain.CodeStorage, errors.New("quota exceeded"), "write local cart")
}

func TestGuestSaveFailureReturnsCart(t *testing.T) {
	ctx := t.Context()
	guest := localstore.NewGuest(&failingStore{})

	cart, err := guest.AddLine(ctx, shoe, 1)
	require.Error(t, err)
	assert.Equal(t, domain.CodeStorage, domain.CodeOf(err))
	require.Len(t, cart.Lines, 1)
}
