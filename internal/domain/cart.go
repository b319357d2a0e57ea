package domain

import (
	"github.com/shopspring/decimal"
)

// MaxQuantity is the largest quantity a shopper may set on a single line.
const MaxQuantity = 99

type Scope string

const (
	ScopeLocal  Scope = "local"
	ScopeRemote Scope = "remote"
)

type Cart struct {
	Scope Scope
	Lines []CartLine
}

type CartLine struct {
	ProductID string
	Name      string
	UnitPrice decimal.Decimal
	ImageRef  string
	Quantity  int

	// RemoteLineID is assigned by the remote service, empty for guest lines.
	RemoteLineID string
}

// Product is the catalog snapshot copied onto a line when it is added.
type Product struct {
	ID       string          `json:"id" validate:"required"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	ImageRef string          `json:"image"`
}

func NewLocalCart() Cart {
	return Cart{Scope: ScopeLocal}
}

func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// ItemCount is the badge number: the sum of all line quantities.
func (c Cart) ItemCount() int {
	var n int
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

func (c Cart) Find(productID string) (CartLine, bool) {
	for _, l := range c.Lines {
		if l.ProductID == productID {
			return l, true
		}
	}
	return CartLine{}, false
}

// Add appends a snapshot of p, or increases the quantity of the existing line
// for the same product. Lines stay unique by ProductID.
func (c Cart) Add(p Product, quantity int) Cart {
	out := c.clone()
	for i := range out.Lines {
		if out.Lines[i].ProductID == p.ID {
			out.Lines[i].Quantity += quantity
			return out
		}
	}

	out.Lines = append(out.Lines, CartLine{
		ProductID: p.ID,
		Name:      p.Name,
		UnitPrice: p.Price,
		ImageRef:  p.ImageRef,
		Quantity:  quantity,
	})
	return out
}

// SetQuantity replaces the quantity of productID. A quantity <= 0 removes the
// line. Unknown products leave the cart unchanged.
func (c Cart) SetQuantity(productID string, quantity int) Cart {
	if quantity <= 0 {
		return c.Remove(productID)
	}

	out := c.clone()
	for i := range out.Lines {
		if out.Lines[i].ProductID == productID {
			out.Lines[i].Quantity = quantity
		}
	}
	return out
}

func (c Cart) Remove(productID string) Cart {
	out := Cart{Scope: c.Scope}
	for _, l := range c.Lines {
		if l.ProductID != productID {
			out.Lines = append(out.Lines, l)
		}
	}
	return out
}

// Snapshot converts a remote cart into a guest cart: display fields and
// quantities are kept, remote line ids are dropped. Lines repeating a product
// are folded into the first one.
func (c Cart) Snapshot() Cart {
	out := NewLocalCart()
	for _, l := range c.Lines {
		out = out.Add(l.product(), l.Quantity)
	}
	return out
}

// Compact folds lines repeating a product into the first one, summing
// quantities. The first line's display fields and remote id win.
func (c Cart) Compact() Cart {
	out := Cart{Scope: c.Scope}
	for _, l := range c.Lines {
		if i := out.index(l.ProductID); i >= 0 {
			out.Lines[i].Quantity += l.Quantity
			continue
		}
		out.Lines = append(out.Lines, l)
	}
	return out
}

func (c Cart) index(productID string) int {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func (l CartLine) product() Product {
	return Product{ID: l.ProductID, Name: l.Name, Price: l.UnitPrice, ImageRef: l.ImageRef}
}

func (c Cart) clone() Cart {
	out := Cart{Scope: c.Scope}
	if c.Lines != nil {
		out.Lines = make([]CartLine, len(c.Lines))
		copy(out.Lines, c.Lines)
	}
	return out
}
