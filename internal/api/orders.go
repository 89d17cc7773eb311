package api

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItem is one line of a placed order.
type OrderItem struct {
	ProductID   ID              `json:"productId"`
	ProductName string          `json:"productName"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
}

// Order is a placed order as the backend reports it.
type Order struct {
	ID              ID              `json:"id"`
	Status          string          `json:"status"`
	Total           decimal.Decimal `json:"total"`
	Items           []OrderItem     `json:"items"`
	ShippingAddress string          `json:"shippingAddress"`
	PaymentMethod   string          `json:"paymentMethod"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// CreateOrderRequest places an order. PaymentToken is the opaque token
// delivered by the payment widget; IdempotencyKey guards against
// double submission and is filled in when empty.
type CreateOrderRequest struct {
	Items           []OrderItem `json:"items"`
	ShippingAddress string      `json:"shippingAddress"`
	PaymentMethod   string      `json:"paymentMethod"`
	PaymentToken    string      `json:"paymentToken"`
	IdempotencyKey  string      `json:"idempotencyKey"`
}

// MyOrders lists the current user's orders.
func (c *Client) MyOrders(ctx context.Context) ([]Order, error) {
	var out []Order
	if err := c.doAuthed(ctx, http.MethodGet, "/api/orders/my-orders", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// OrderByID fetches one order belonging to the current user.
func (c *Client) OrderByID(ctx context.Context, id string) (Order, error) {
	var out Order
	if err := c.doAuthed(ctx, http.MethodGet, "/api/orders/"+url.PathEscape(id), nil, &out); err != nil {
		return Order{}, err
	}
	return out, nil
}

// CreateOrder places an order after checkout.
func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (Order, error) {
	if req.IdempotencyKey == "" {
		req.IdempotencyKey = uuid.NewString()
	}
	var out Order
	if err := c.doAuthed(ctx, http.MethodPost, "/api/orders", req, &out); err != nil {
		return Order{}, err
	}
	return out, nil
}

// AllOrders lists every order (admin).
func (c *Client) AllOrders(ctx context.Context) ([]Order, error) {
	var out []Order
	if err := c.doAuthed(ctx, http.MethodGet, "/api/orders/admin/all", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateOrderStatus sets an order's status (admin).
func (c *Client) UpdateOrderStatus(ctx context.Context, id, status string) (Order, error) {
	body := struct {
		Status string `json:"status"`
	}{Status: status}

	var out Order
	path := "/api/orders/admin/" + url.PathEscape(id) + "/status"
	if err := c.doAuthed(ctx, http.MethodPut, path, body, &out); err != nil {
		return Order{}, err
	}
	return out, nil
}
