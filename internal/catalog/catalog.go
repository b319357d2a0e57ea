package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/nikolayk812/cartsync/internal/domain"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

type productsFile struct {
	Products []productRow `json:"products"`
}

// productRow mirrors data/products.json, where ids may be numbers or strings.
type productRow struct {
	ID    any             `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Image string          `json:"image"`
}

// Catalog resolves product snapshots by id. It is read-only after Load.
type Catalog struct {
	products map[string]domain.Product
}

func New(products ...domain.Product) (*Catalog, error) {
	c := &Catalog{products: make(map[string]domain.Product, len(products))}
	for _, p := range products {
		if err := validate.Struct(p); err != nil {
			return nil, fmt.Errorf("product[%s] is not valid: %w", p.ID, err)
		}
		if p.Price.IsNegative() {
			return nil, fmt.Errorf("product[%s] has negative price", p.ID)
		}
		c.products[p.ID] = p
	}
	return c, nil
}

// Load reads a products.json file from fsys.
func Load(fsys fs.FS, name string) (*Catalog, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("fs.ReadFile: %w", err)
	}

	var file productsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("json.Unmarshal: %w", err)
	}

	products := make([]domain.Product, 0, len(file.Products))
	for _, row := range file.Products {
		products = append(products, domain.Product{
			ID:       normalizeID(row.ID),
			Name:     row.Name,
			Price:    row.Price,
			ImageRef: row.Image,
		})
	}
	return New(products...)
}

func (c *Catalog) Product(_ context.Context, productID string) (domain.Product, error) {
	p, ok := c.products[productID]
	if !ok {
		return domain.Product{}, domain.Wrap(domain.CodeService, fmt.Errorf("productID[%s]", productID), domain.ErrProductNotFound.Message())
	}
	return p, nil
}

func (c *Catalog) Len() int {
	return len(c.products)
}

func normalizeID(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(id)
	case float64:
		return decimal.NewFromFloat(id).String()
	default:
		return fmt.Sprint(id)
	}
}
