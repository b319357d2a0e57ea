package gateway

import (
	"context"
	"encoding/json"

	"github.com/nikolayk812/cartsync/internal/domain"
	"github.com/shopspring/decimal"
)

type Operation string

const (
	OpFetch  Operation = "fetch"
	OpAdd    Operation = "add"
	OpUpdate Operation = "update"
	OpRemove Operation = "remove"
	OpClear  Operation = "clear"
)

// Idempotent reports whether repeating op leaves the cart in the same state.
func (op Operation) Idempotent() bool {
	return op != OpAdd
}

// Request is the normalized call every backend understands.
type Request struct {
	Operation Operation
	ProductID string
	Quantity  int
	LineID    string
	// Product is the catalog snapshot sent along with OpAdd, if known.
	Product *domain.Product
}

// Response is the normalized envelope every backend answers with.
type Response struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}

// Backend carries normalized requests to the account cart service.
type Backend interface {
	Do(ctx context.Context, token string, req Request) (Response, error)
}

// Line is a cart line as the service returns it.
type Line struct {
	CartItemID string          `json:"cartItemId"`
	ProductID  string          `json:"productId"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Image      string          `json:"image"`
	Quantity   int             `json:"quantity"`
}

type cartData struct {
	Items []Line `json:"items"`
}

type addBody struct {
	ProductID    string           `json:"productId"`
	Quantity     int              `json:"quantity"`
	ProductName  string           `json:"productName,omitempty"`
	ProductPrice *decimal.Decimal `json:"productPrice,omitempty"`
	ProductImage string           `json:"productImage,omitempty"`
}

type updateBody struct {
	Quantity int `json:"quantity"`
}

func newAddBody(req Request) addBody {
	body := addBody{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	}
	if req.Product != nil {
		price := req.Product.Price
		body.ProductName = req.Product.Name
		body.ProductPrice = &price
		body.ProductImage = req.Product.ImageRef
	}
	return body
}

func (l Line) toDomain() domain.CartLine {
	return domain.CartLine{
		ProductID:    l.ProductID,
		Name:         l.Name,
		UnitPrice:    l.Price,
		ImageRef:     l.Image,
		Quantity:     l.Quantity,
		RemoteLineID: l.CartItemID,
	}
}

func lineFromDomain(line domain.CartLine) Line {
	return Line{
		CartItemID: line.RemoteLineID,
		ProductID:  line.ProductID,
		Name:       line.Name,
		Price:      line.UnitPrice,
		Image:      line.ImageRef,
		Quantity:   line.Quantity,
	}
}
