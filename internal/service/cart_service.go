package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/nikolayk812/cartsync/internal/domain"
	"github.com/nikolayk812/cartsync/internal/localstore"
	"github.com/nikolayk812/cartsync/internal/logger"
	"github.com/nikolayk812/cartsync/internal/port"
	"golang.org/x/text/currency"
)

var validate = validator.New()

type addInput struct {
	ProductID string `validate:"required"`
	Quantity  int    `validate:"gte=1"`
}

type productInput struct {
	ProductID string `validate:"required"`
}

// View is what the cart page renders.
type View struct {
	Cart      domain.Cart
	Totals    domain.Totals
	ItemCount int
	// Fallback is set when the account cart could not be read and the guest
	// cart is shown instead.
	Fallback bool
}

// CartService routes shopper cart operations to the account cart when signed
// in and to the guest cart otherwise.
type CartService struct {
	session port.SessionProvider
	guest   *localstore.Guest
	remote  port.RemoteCartGateway
	catalog port.Catalog

	badge    port.BadgeRefresher
	currency currency.Unit
	log      *logger.Logger
}

type Option func(*CartService)

func WithBadge(b port.BadgeRefresher) Option {
	return func(s *CartService) {
		s.badge = b
	}
}

func WithCurrency(unit currency.Unit) Option {
	return func(s *CartService) {
		s.currency = unit
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(s *CartService) {
		if l != nil {
			s.log = l
		}
	}
}

func New(session port.SessionProvider, local port.LocalCartStore, remote port.RemoteCartGateway, catalog port.Catalog, opts ...Option) (*CartService, error) {
	if session == nil {
		return nil, fmt.Errorf("session is nil")
	}
	if local == nil {
		return nil, fmt.Errorf("local store is nil")
	}
	if remote == nil {
		return nil, fmt.Errorf("remote gateway is nil")
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog is nil")
	}

	s := &CartService{
		session:  session,
		guest:    localstore.NewGuest(local),
		remote:   remote,
		catalog:  catalog,
		currency: currency.INR,
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

func (s *CartService) Load(ctx context.Context) (View, error) {
	var view View

	if s.session.IsAuthenticated() {
		cart, err := s.remote.Fetch(ctx)
		if err == nil {
			return s.view(cart), nil
		}
		s.log.Warn(ctx, "load account cart failed, showing guest cart", err)
		view.Fallback = true
	}

	cart, err := s.guest.Cart(ctx)
	if err = s.guestErr(ctx, "guest.Cart", err); err != nil {
		return view, err
	}

	fallback := view.Fallback
	view = s.view(cart)
	view.Fallback = fallback
	return view, nil
}

func (s *CartService) Add(ctx context.Context, productID string, quantity int) error {
	if err := validateInput(addInput{ProductID: productID, Quantity: quantity}); err != nil {
		return err
	}
	defer s.refreshBadge(ctx)

	if s.session.IsAuthenticated() {
		if _, err := s.remote.AddLine(ctx, productID, quantity); err != nil {
			return fmt.Errorf("remote.AddLine: %w", err)
		}
		return nil
	}

	product, err := s.catalog.Product(ctx, productID)
	if err != nil {
		return fmt.Errorf("catalog.Product: %w", err)
	}
	_, err = s.guest.AddLine(ctx, product, quantity)
	return s.guestErr(ctx, "guest.AddLine", err)
}

// SetQuantity sets the quantity of a line already in the cart. Quantities
// below one remove the line.
func (s *CartService) SetQuantity(ctx context.Context, productID string, quantity int) error {
	if err := validateInput(productInput{ProductID: productID}); err != nil {
		return err
	}
	if quantity < 1 {
		return s.Remove(ctx, productID)
	}
	if quantity > domain.MaxQuantity {
		return domain.ErrQuantityLimit
	}
	defer s.refreshBadge(ctx)

	if s.session.IsAuthenticated() {
		line, err := s.remoteLine(ctx, productID)
		if err != nil {
			return err
		}
		if err := s.remote.UpdateLine(ctx, line.RemoteLineID, quantity); err != nil {
			return fmt.Errorf("remote.UpdateLine: %w", err)
		}
		return nil
	}

	if err := s.guestLine(ctx, productID); err != nil {
		return err
	}
	_, err := s.guest.UpdateLine(ctx, productID, quantity)
	return s.guestErr(ctx, "guest.UpdateLine", err)
}

func (s *CartService) Remove(ctx context.Context, productID string) error {
	if err := validateInput(productInput{ProductID: productID}); err != nil {
		return err
	}
	defer s.refreshBadge(ctx)

	if s.session.IsAuthenticated() {
		line, err := s.remoteLine(ctx, productID)
		if err != nil {
			return err
		}
		if err := s.remote.RemoveLine(ctx, line.RemoteLineID); err != nil {
			return fmt.Errorf("remote.RemoveLine: %w", err)
		}
		return nil
	}

	if err := s.guestLine(ctx, productID); err != nil {
		return err
	}
	_, err := s.guest.RemoveLine(ctx, productID)
	return s.guestErr(ctx, "guest.RemoveLine", err)
}

func (s *CartService) Clear(ctx context.Context) error {
	defer s.refreshBadge(ctx)

	if s.session.IsAuthenticated() {
		if err := s.remote.Clear(ctx); err != nil {
			return fmt.Errorf("remote.Clear: %w", err)
		}
		return nil
	}

	return s.guestErr(ctx, "guest.Clear", s.guest.Clear(ctx))
}

func (s *CartService) remoteLine(ctx context.Context, productID string) (domain.CartLine, error) {
	cart, err := s.remote.Fetch(ctx)
	if err != nil {
		return domain.CartLine{}, fmt.Errorf("remote.Fetch: %w", err)
	}

	line, ok := cart.Find(productID)
	if !ok || line.RemoteLineID == "" {
		return domain.CartLine{}, domain.Wrap(domain.CodeService, fmt.Errorf("productID[%s]", productID), domain.ErrLineNotFound.Message())
	}
	return line, nil
}

func (s *CartService) guestLine(ctx context.Context, productID string) error {
	cart, err := s.guest.Cart(ctx)
	if err != nil {
		// an unreadable guest cart cannot be checked; the write logs the failure
		return s.guestErr(ctx, "guest.Cart", err)
	}
	if _, ok := cart.Find(productID); !ok {
		return domain.Wrap(domain.CodeService, fmt.Errorf("productID[%s]", productID), domain.ErrLineNotFound.Message())
	}
	return nil
}

// guestErr wraps a guest cart failure. Non-fatal ones, such as local storage
// being full or unavailable, are logged and dropped.
func (s *CartService) guestErr(ctx context.Context, op string, err error) error {
	if err == nil {
		return nil
	}
	if !domain.MetadataFor(domain.CodeOf(err)).Fatal {
		s.log.Warn(ctx, op+" failed, guest cart not persisted", err)
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (s *CartService) view(cart domain.Cart) View {
	return View{
		Cart:      cart,
		Totals:    domain.ComputeTotals(cart, s.currency),
		ItemCount: cart.ItemCount(),
	}
}

func (s *CartService) refreshBadge(ctx context.Context) {
	if s.badge != nil {
		s.badge.Refresh(ctx)
	}
}

func validateInput(v any) error {
	if err := validate.Struct(v); err != nil {
		return domain.Wrap(domain.CodeValidation, err, "invalid cart input")
	}
	return nil
}
