package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"bmxshop/internal/catalog"
)

// Products lists the whole catalog. Anonymous endpoint.
func (c *Client) Products(ctx context.Context) ([]catalog.Product, error) {
	var out []catalog.Product
	if err := c.do(ctx, http.MethodGet, "/api/products", nil, &out, false); err != nil {
		return nil, err
	}
	return out, nil
}

// FeaturedProducts lists products flagged for the home page.
func (c *Client) FeaturedProducts(ctx context.Context) ([]catalog.Product, error) {
	var out []catalog.Product
	if err := c.do(ctx, http.MethodGet, "/api/products/featured", nil, &out, false); err != nil {
		return nil, err
	}
	return out, nil
}

// ProductsByCategory lists the catalog filtered by category name.
func (c *Client) ProductsByCategory(ctx context.Context, category string) ([]catalog.Product, error) {
	var out []catalog.Product
	path := "/api/products/category/" + url.PathEscape(category)
	if err := c.do(ctx, http.MethodGet, path, nil, &out, false); err != nil {
		return nil, err
	}
	return out, nil
}

// ProductByID fetches a single product.
func (c *Client) ProductByID(ctx context.Context, id string) (catalog.Product, error) {
	var out catalog.Product
	if err := c.do(ctx, http.MethodGet, "/api/products/"+url.PathEscape(id), nil, &out, false); err != nil {
		return catalog.Product{}, err
	}
	return out, nil
}

// Categories lists the known category names.
func (c *Client) Categories(ctx context.Context) ([]string, error) {
	var out []string
	if err := c.do(ctx, http.MethodGet, "/api/products/categories", nil, &out, false); err != nil {
		return nil, err
	}
	return out, nil
}

// ProductsOrFallback lists the catalog, degrading to the built-in
// snapshot when the fetch fails. The second return reports degraded
// mode so pages can surface it.
func (c *Client) ProductsOrFallback(ctx context.Context) ([]catalog.Product, bool) {
	products, err := c.Products(ctx)
	if err != nil {
		c.logger.Warn("product fetch failed, using built-in catalog", zap.Error(err))
		return catalog.Fallback(), true
	}
	return products, false
}

// FeaturedOrFallback is ProductsOrFallback for the featured list.
func (c *Client) FeaturedOrFallback(ctx context.Context) ([]catalog.Product, bool) {
	products, err := c.FeaturedProducts(ctx)
	if err != nil {
		c.logger.Warn("featured fetch failed, using built-in catalog", zap.Error(err))
		return catalog.FallbackFeatured(), true
	}
	return products, false
}

// ByCategoryOrFallback is ProductsOrFallback for a category listing.
func (c *Client) ByCategoryOrFallback(ctx context.Context, category string) ([]catalog.Product, bool) {
	products, err := c.ProductsByCategory(ctx, category)
	if err != nil {
		c.logger.Warn("category fetch failed, using built-in catalog",
			zap.String("category", category), zap.Error(err))
		return catalog.FallbackByCategory(category), true
	}
	return products, false
}

// ProductInput is the admin create/update payload.
type ProductInput struct {
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stockQuantity"`
	Category      string          `json:"category,omitempty"`
	ImageURL      string          `json:"imageUrl,omitempty"`
	Featured      bool            `json:"featured,omitempty"`
}

// CreateProduct adds a catalog entry (admin).
func (c *Client) CreateProduct(ctx context.Context, in ProductInput) (catalog.Product, error) {
	var out catalog.Product
	if err := c.doAuthed(ctx, http.MethodPost, "/api/products", in, &out); err != nil {
		return catalog.Product{}, err
	}
	return out, nil
}

// UpdateProduct replaces a catalog entry (admin).
func (c *Client) UpdateProduct(ctx context.Context, id string, in ProductInput) (catalog.Product, error) {
	var out catalog.Product
	if err := c.doAuthed(ctx, http.MethodPut, "/api/products/"+url.PathEscape(id), in, &out); err != nil {
		return catalog.Product{}, err
	}
	return out, nil
}

// DeleteProduct removes a catalog entry (admin).
func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	return c.doAuthed(ctx, http.MethodDelete, "/api/products/"+url.PathEscape(id), nil, nil)
}
