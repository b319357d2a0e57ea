package localstore

import (
	"encoding/json"
	"fmt"

	"github.com/nikolayk812/cartsync/internal/domain"
	"github.com/shopspring/decimal"
)

// record is the persisted layout of a guest cart, one per profile:
// {"items":[{"productId","name","unitPrice","imageRef","quantity"}]}.
type record struct {
	Items []recordItem `json:"items"`
}

type recordItem struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	ImageRef  string          `json:"imageRef"`
	Quantity  int             `json:"quantity"`
}

func encodeCart(cart domain.Cart) ([]byte, error) {
	rec := record{Items: make([]recordItem, 0, len(cart.Lines))}
	for _, l := range cart.Lines {
		rec.Items = append(rec.Items, recordItem{
			ProductID: l.ProductID,
			Name:      l.Name,
			UnitPrice: l.UnitPrice,
			ImageRef:  l.ImageRef,
			Quantity:  l.Quantity,
		})
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("json.Marshal: %w", err)
	}
	return data, nil
}

func decodeCart(data []byte) (domain.Cart, error) {
	cart := domain.NewLocalCart()
	if len(data) == 0 {
		return cart, nil
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return cart, fmt.Errorf("json.Unmarshal: %w", err)
	}

	for _, item := range rec.Items {
		if item.ProductID == "" || item.Quantity <= 0 {
			continue
		}
		cart.Lines = append(cart.Lines, domain.CartLine{
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			ImageRef:  item.ImageRef,
			Quantity:  item.Quantity,
		})
	}
	return cart, nil
}

func storageError(op string, err error) error {
	return domain.Wrap(domain.CodeStorage, err, op)
}
