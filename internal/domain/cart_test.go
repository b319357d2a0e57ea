package domain_test

import (
	"testing"

	"github.com/nikolayk812/cartsync/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartAddKeepsProductsUnique(t *testing.T) {
	p := domain.Product{ID: "p-1", Name: "Mug", Price: decimal.NewFromInt(12), ImageRef: "mug.png"}

	cart := domain.NewLocalCart().Add(p, 1).Add(p, 4)

	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 5, cart.Lines[0].Quantity)
	assert.Equal(t, "Mug", cart.Lines[0].Name)
	assert.Equal(t, "mug.png", cart.Lines[0].ImageRef)
}

func TestCartOperationsDoNotMutateReceiver(t *testing.T) {
	p := domain.Product{ID: "p-1", Price: decimal.NewFromInt(1)}
	original := domain.NewLocalCart().Add(p, 1)

	_ = original.Add(p, 5)
	_ = original.SetQuantity("p-1", 9)
	_ = original.Remove("p-1")

	require.Len(t, original.Lines, 1)
	assert.Equal(t, 1, original.Lines[0].Quantity)
}

func TestCartSetQuantity(t *testing.T) {
	cart := domain.Cart{Lines: []domain.CartLine{
		{ProductID: "a", Quantity: 1},
		{ProductID: "b", Quantity: 2},
	}}

	updated := cart.SetQuantity("b", 7)
	line, ok := updated.Find("b")
	require.True(t, ok)
	assert.Equal(t, 7, line.Quantity)

	removed := cart.SetQuantity("a", 0)
	_, ok = removed.Find("a")
	assert.False(t, ok)
	assert.Len(t, removed.Lines, 1)
}

func TestCartItemCount(t *testing.T) {
	cart := domain.Cart{Lines: []domain.CartLine{
		{ProductID: "a", Quantity: 3},
		{ProductID: "b", Quantity: 4},
	}}
	assert.Equal(t, 7, cart.ItemCount())
	assert.Equal(t, 0, domain.Cart{}.ItemCount())
}

func TestCartSnapshotDropsRemoteIDs(t *testing.T) {
	remote := domain.Cart{Scope: domain.ScopeRemote, Lines: []domain.CartLine{
		{ProductID: "a", Name: "A", Quantity: 120, RemoteLineID: "line-1"},
	}}

	local := remote.Snapshot()

	assert.Equal(t, domain.ScopeLocal, local.Scope)
	require.Len(t, local.Lines, 1)
	assert.Empty(t, local.Lines[0].RemoteLineID)
	assert.Equal(t, 120, local.Lines[0].Quantity)
	assert.Equal(t, "line-1", remote.Lines[0].RemoteLineID)
}

func TestCartSnapshotFoldsRepeatedProducts(t *testing.T) {
	remote := domain.Cart{Scope: domain.ScopeRemote, Lines: []domain.CartLine{
		{ProductID: "a", Name: "A", UnitPrice: decimal.NewFromInt(3), Quantity: 2, RemoteLineID: "line-1"},
		{ProductID: "b", Name: "B", Quantity: 1, RemoteLineID: "line-2"},
		{ProductID: "a", Name: "A", UnitPrice: decimal.NewFromInt(3), Quantity: 3, RemoteLineID: "line-3"},
	}}

	local := remote.Snapshot()

	require.Len(t, local.Lines, 2)
	assert.Equal(t, "a", local.Lines[0].ProductID)
	assert.Equal(t, 5, local.Lines[0].Quantity)
	assert.Equal(t, "A", local.Lines[0].Name)
	assert.True(t, decimal.NewFromInt(3).Equal(local.Lines[0].UnitPrice))
	assert.Empty(t, local.Lines[0].RemoteLineID)
	assert.Equal(t, 1, local.Lines[1].Quantity)
}

func TestCartCompact(t *testing.T) {
	cart := domain.Cart{Scope: domain.ScopeLocal, Lines: []domain.CartLine{
		{ProductID: "a", Name: "first", Quantity: 2},
		{ProductID: "a", Name: "second", Quantity: 3},
		{ProductID: "b", Quantity: 1},
	}}

	compact := cart.Compact()

	require.Len(t, compact.Lines, 2)
	assert.Equal(t, "first", compact.Lines[0].Name)
	assert.Equal(t, 5, compact.Lines[0].Quantity)
	assert.Equal(t, domain.ScopeLocal, compact.Scope)
	assert.Len(t, cart.Lines, 3)
	assert.Equal(t, 2, cart.Lines[0].Quantity)
}

func TestSyncSummaryMessage(t *testing.T) {
	merge := domain.SyncSummary{Direction: domain.DirectionMerge, Merged: 2, Added: 1}
	assert.Equal(t, "Synced cart: 2 merged, 1 added", merge.Message())
	assert.Equal(t, 3, merge.Updated())
	assert.NoError(t, merge.Err())

	mirror := domain.SyncSummary{Direction: domain.DirectionMirror, Synced: 4}
	assert.Equal(t, "4 items synced to local storage", mirror.Message())
}

func TestSyncSummaryErrCombinesLines(t *testing.T) {
	summary := domain.SyncSummary{
		Direction: domain.DirectionMerge,
		Errors: []domain.LineError{
			{ProductID: "a", Op: "updateLine", Err: domain.New(domain.CodeTransient, "timeout")},
			{ProductID: "b", Op: "addLine", Err: domain.ErrProductNotFound},
		},
	}

	err := summary.Err()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "updateLine a")
	assert.Contains(t, err.Error(), "addLine b")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
	assert.Equal(t, "Synced cart: 0 merged, 0 added, 2 failed", summary.Message())
}
