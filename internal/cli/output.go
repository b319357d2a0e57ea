package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/nikolayk812/cartsync/internal/app"
	"github.com/nikolayk812/cartsync/internal/domain"
	"github.com/nikolayk812/cartsync/internal/service"
)

// printer writes command results as text or JSON. It is also the notifier
// for sync messages, which only show up in text mode.
type printer struct {
	format string
	w      io.Writer
}

type cartLineOutput struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	UnitPrice string `json:"price"`
	ImageRef  string `json:"image,omitempty"`
	Quantity  int    `json:"quantity"`
}

type cartOutput struct {
	Items     []cartLineOutput     `json:"items"`
	ItemCount int                  `json:"itemCount"`
	Totals    domain.TotalsDisplay `json:"totals"`
	Fallback  bool                 `json:"fallback,omitempty"`
}

type syncOutput struct {
	Direction string   `json:"direction"`
	Merged    int      `json:"merged"`
	Added     int      `json:"added"`
	Synced    int      `json:"synced"`
	Failed    []string `json:"failed,omitempty"`
	Message   string   `json:"message"`
	Error     string   `json:"error,omitempty"`
}

func (p *printer) Notify(_ context.Context, message string) {
	if p.format == "json" {
		return
	}
	writeLine(p.w, "%s", message)
}

func (p *printer) json(v any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("enc.Encode: %w", err)
	}
	return nil
}

func (p *printer) message(msg string) error {
	if p.format == "json" {
		return p.json(map[string]string{"message": msg})
	}
	writeLine(p.w, "%s", msg)
	return nil
}

func (p *printer) cart(view service.View) error {
	out := cartOutput{
		Items:     []cartLineOutput{},
		ItemCount: view.ItemCount,
		Totals:    view.Totals.Display(),
		Fallback:  view.Fallback,
	}
	for _, line := range view.Cart.Lines {
		out.Items = append(out.Items, cartLineOutput{
			ProductID: line.ProductID,
			Name:      line.Name,
			UnitPrice: line.UnitPrice.StringFixed(2),
			ImageRef:  line.ImageRef,
			Quantity:  line.Quantity,
		})
	}

	if p.format == "json" {
		return p.json(out)
	}

	if view.Fallback {
		writeLine(p.w, "account cart unavailable, showing guest cart")
	}
	if len(out.Items) == 0 {
		writeLine(p.w, "cart is empty")
		return nil
	}
	for _, item := range out.Items {
		writeLine(p.w, "%-12s %-30s %3d x %s", item.ProductID, item.Name, item.Quantity, item.UnitPrice)
	}
	writeLine(p.w, "%s", strings.Repeat("-", 60))
	writeLine(p.w, "items    %d", out.ItemCount)
	writeLine(p.w, "subtotal %s", out.Totals.Subtotal)
	writeLine(p.w, "tax      %s", out.Totals.Tax)
	if view.Totals.Shipping.IsZero() {
		writeLine(p.w, "shipping FREE")
	} else {
		writeLine(p.w, "shipping %s", out.Totals.Shipping)
	}
	writeLine(p.w, "total    %s", out.Totals.Total)
	return nil
}

func (p *printer) sync(result app.SyncResult) error {
	out := syncOutput{
		Direction: string(result.Summary.Direction),
		Merged:    result.Summary.Merged,
		Added:     result.Summary.Added,
		Synced:    result.Summary.Synced,
		Message:   result.Summary.Message(),
	}
	for _, le := range result.Summary.Errors {
		out.Failed = append(out.Failed, le.Error())
	}
	if result.Err != nil {
		out.Error = result.Err.Error()
	}

	if p.format == "json" {
		return p.json(out)
	}

	for _, failed := range out.Failed {
		writeLine(p.w, "not synced: %s", failed)
	}
	if result.Err != nil {
		writeLine(p.w, "cart sync skipped: %v", result.Err)
	}
	return nil
}
