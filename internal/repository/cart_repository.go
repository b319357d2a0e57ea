package repository

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/cartsync/internal/db"
	"github.com/nikolayk812/cartsync/internal/domain"
	"github.com/nikolayk812/cartsync/internal/port"
)

// OwnerSession is the session of the shopper whose rows are read. The owner
// is the user id carried by the session token.
type OwnerSession interface {
	port.SessionProvider
	UserID() (string, bool)
}

// cartRepository is the table-backed gateway variant: it queries the
// platform's cart_items table directly and translates its snake_case rows
// into domain lines.
type cartRepository struct {
	q       *db.Queries
	pool    *pgxpool.Pool
	session OwnerSession
	catalog port.Catalog
}

func NewCart(pool *pgxpool.Pool, session OwnerSession, catalog port.Catalog) (port.RemoteCartGateway, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	if session == nil {
		return nil, fmt.Errorf("session is nil")
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog is nil")
	}

	return &cartRepository{
		q:       db.New(pool),
		pool:    pool,
		session: session,
		catalog: catalog,
	}, nil
}

func NewCartWithTx(tx pgx.Tx, session OwnerSession, catalog port.Catalog) port.RemoteCartGateway {
	return &cartRepository{
		q:       db.New(tx),
		pool:    nil, // use provided transaction instead
		session: session,
		catalog: catalog,
	}
}

func (r *cartRepository) Fetch(ctx context.Context) (domain.Cart, error) {
	ownerID, err := r.ownerID()
	if err != nil {
		return domain.Cart{}, err
	}

	rows, err := r.q.GetCart(ctx, ownerID)
	if err != nil {
		return domain.Cart{}, classify("fetch cart", fmt.Errorf("q.GetCart: %w", err))
	}

	return domain.Cart{
		Scope: domain.ScopeRemote,
		Lines: mapCartItemsToDomain(rows),
	}, nil
}

func (r *cartRepository) AddLine(ctx context.Context, productID string, quantity int) (domain.CartLine, error) {
	ownerID, err := r.ownerID()
	if err != nil {
		return domain.CartLine{}, err
	}
	if productID == "" {
		return domain.CartLine{}, domain.New(domain.CodeService, "productID is empty")
	}
	if quantity <= 0 {
		return domain.CartLine{}, domain.New(domain.CodeService, "quantity must be positive")
	}
	qty, err := toQuantity(quantity)
	if err != nil {
		return domain.CartLine{}, err
	}

	product, err := r.catalog.Product(ctx, productID)
	if err != nil {
		return domain.CartLine{}, fmt.Errorf("catalog.Product: %w", err)
	}

	row, err := r.q.AddItem(ctx, db.AddItemParams{
		UserID:       ownerID,
		ProductID:    product.ID,
		ProductName:  product.Name,
		ProductPrice: product.Price,
		ProductImage: product.ImageRef,
		Quantity:     qty,
	})
	if err != nil {
		return domain.CartLine{}, classify("add line", fmt.Errorf("q.AddItem: %w", err))
	}

	return mapCartItemToDomain(row), nil
}

func (r *cartRepository) UpdateLine(ctx context.Context, remoteLineID string, quantity int) error {
	ownerID, err := r.ownerID()
	if err != nil {
		return err
	}

	lineID, err := parseLineID(remoteLineID)
	if err != nil {
		return err
	}

	if quantity <= 0 {
		return r.RemoveLine(ctx, remoteLineID)
	}
	qty, err := toQuantity(quantity)
	if err != nil {
		return err
	}

	_, err = withTx(ctx, r.pool, r.q, func(q *db.Queries) (struct{}, error) {
		rowsAffected, err := q.UpdateItemQuantity(ctx, db.UpdateItemQuantityParams{
			ID:       lineID,
			UserID:   ownerID,
			Quantity: qty,
		})
		if err != nil {
			return struct{}{}, classify("update line", fmt.Errorf("q.UpdateItemQuantity: %w", err))
		}
		if rowsAffected == 0 {
			return struct{}{}, domain.ErrLineNotFound
		}
		return struct{}{}, nil
	})
	return err
}

func (r *cartRepository) RemoveLine(ctx context.Context, remoteLineID string) error {
	ownerID, err := r.ownerID()
	if err != nil {
		return err
	}

	lineID, err := parseLineID(remoteLineID)
	if err != nil {
		return err
	}

	rowsAffected, err := r.q.DeleteItem(ctx, db.DeleteItemParams{
		ID:     lineID,
		UserID: ownerID,
	})
	if err != nil {
		return classify("remove line", fmt.Errorf("q.DeleteItem: %w", err))
	}
	if rowsAffected == 0 {
		return domain.ErrLineNotFound
	}

	return nil
}

func (r *cartRepository) Clear(ctx context.Context) error {
	ownerID, err := r.ownerID()
	if err != nil {
		return err
	}

	_, err = withTx(ctx, r.pool, r.q, func(q *db.Queries) (int64, error) {
		n, err := q.ClearCart(ctx, ownerID)
		if err != nil {
			return 0, classify("clear cart", fmt.Errorf("q.ClearCart: %w", err))
		}
		return n, nil
	})
	return err
}

func (r *cartRepository) ownerID() (string, error) {
	if !r.session.IsAuthenticated() {
		return "", domain.ErrNotAuthenticated
	}
	ownerID, ok := r.session.UserID()
	if !ok || ownerID == "" {
		return "", domain.ErrNotAuthenticated
	}
	return ownerID, nil
}

// toQuantity narrows quantity to the int4 column.
func toQuantity(quantity int) (int32, error) {
	if quantity > math.MaxInt32 {
		return 0, domain.New(domain.CodeService, fmt.Sprintf("quantity %d is out of range", quantity))
	}
	return int32(quantity), nil
}

func parseLineID(remoteLineID string) (uuid.UUID, error) {
	id, err := uuid.Parse(remoteLineID)
	if err != nil {
		return uuid.Nil, domain.Wrap(domain.CodeService, fmt.Errorf("remoteLineID[%s]: %w", remoteLineID, err), domain.ErrLineNotFound.Message())
	}
	return id, nil
}

// classify maps database failures onto the gateway error taxonomy: errors the
// server answered with are service errors, everything else is transient.
func classify(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return domain.Wrap(domain.CodeService, err, op)
	}
	return domain.Wrap(domain.CodeTransient, err, op)
}

func mapCartItemToDomain(row db.CartItem) domain.CartLine {
	return domain.CartLine{
		ProductID:    row.ProductID,
		Name:         row.ProductName,
		UnitPrice:    row.ProductPrice,
		ImageRef:     row.ProductImage,
		Quantity:     int(row.Quantity),
		RemoteLineID: row.ID.String(),
	}
}

func mapCartItemsToDomain(rows []db.CartItem) []domain.CartLine {
	var lines []domain.CartLine

	for _, row := range rows {
		lines = append(lines, mapCartItemToDomain(row))
	}

	return lines
}
