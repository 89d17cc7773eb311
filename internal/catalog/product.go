// Package catalog defines the canonical product entity. The backend
// emits product fields under two spellings depending on code path
// (imageUrl/image_url, stockQuantity/stock_quantity, numeric or string
// ids); everything is normalized here, at the API boundary, so nothing
// deeper in the app ever branches on field names.
package catalog

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Product is the canonical product shape used everywhere past ingress.
type Product struct {
	ID            string
	Name          string
	Description   string
	Price         decimal.Decimal
	StockQuantity int
	Category      string
	ImageURL      string
	Featured      bool
}

// productWire matches every field spelling the backend is known to use.
type productWire struct {
	ID          json.RawMessage `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       json.RawMessage `json:"price"`
	StockCamel  *int            `json:"stockQuantity"`
	StockSnake  *int            `json:"stock_quantity"`
	Category    string          `json:"category"`
	ImageCamel  string          `json:"imageUrl"`
	ImageSnake  string          `json:"image_url"`
	Featured    bool            `json:"featured"`
}

// UnmarshalJSON normalizes the duck-typed wire shape into the canonical
// Product. Camel-case spellings win when both are present, matching the
// backend's newer serializer.
func (p *Product) UnmarshalJSON(data []byte) error {
	var w productWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	id, err := normalizeID(w.ID)
	if err != nil {
		return fmt.Errorf("product id: %w", err)
	}
	price, err := normalizePrice(w.Price)
	if err != nil {
		return fmt.Errorf("product %s price: %w", id, err)
	}

	stock := 0
	switch {
	case w.StockCamel != nil:
		stock = *w.StockCamel
	case w.StockSnake != nil:
		stock = *w.StockSnake
	}

	image := w.ImageCamel
	if image == "" {
		image = w.ImageSnake
	}

	*p = Product{
		ID:            id,
		Name:          w.Name,
		Description:   w.Description,
		Price:         price,
		StockQuantity: stock,
		Category:      w.Category,
		ImageURL:      image,
		Featured:      w.Featured,
	}
	return nil
}

// MarshalJSON emits the canonical (camel-case) spelling only.
func (p Product) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID            string          `json:"id"`
		Name          string          `json:"name"`
		Description   string          `json:"description,omitempty"`
		Price         decimal.Decimal `json:"price"`
		StockQuantity int             `json:"stockQuantity"`
		Category      string          `json:"category,omitempty"`
		ImageURL      string          `json:"imageUrl,omitempty"`
		Featured      bool            `json:"featured,omitempty"`
	}{p.ID, p.Name, p.Description, p.Price, p.StockQuantity, p.Category, p.ImageURL, p.Featured})
}

// InStock reports whether the product has remaining stock.
func (p Product) InStock() bool { return p.StockQuantity > 0 }

func normalizeID(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", fmt.Errorf("missing")
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s == "" {
			return "", fmt.Errorf("empty")
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), nil
	}
	return "", fmt.Errorf("unsupported id form %s", raw)
}

func normalizePrice(raw json.RawMessage) (decimal.Decimal, error) {
	if len(raw) == 0 {
		return decimal.Zero, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		raw = json.RawMessage(s)
	}
	d, err := decimal.NewFromString(string(raw))
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("negative price %s", d)
	}
	return d, nil
}
