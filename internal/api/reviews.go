package api

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// Review is a product review.
type Review struct {
	ID        ID        `json:"id"`
	ProductID ID        `json:"productId"`
	UserID    ID        `json:"userId"`
	Username  string    `json:"username"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

// ReviewInput submits a new review.
type ReviewInput struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// ReviewsForProduct lists a product's reviews. Anonymous endpoint; a
// failure degrades to an empty list so the product page still renders.
func (c *Client) ReviewsForProduct(ctx context.Context, productID string) []Review {
	var out []Review
	path := "/api/reviews/product/" + url.PathEscape(productID)
	if err := c.do(ctx, http.MethodGet, path, nil, &out, false); err != nil {
		c.logger.Warn("review fetch failed", zap.String("product", productID), zap.Error(err))
		return nil
	}
	return out
}

// AddReview submits a review for a product. Requires a credential;
// without one the request is not even issued.
func (c *Client) AddReview(ctx context.Context, productID string, in ReviewInput) (Review, error) {
	if c.credential() == "" {
		return Review{}, &AuthError{StatusCode: http.StatusUnauthorized, Message: "authentication required to submit reviews"}
	}
	var out Review
	path := "/api/reviews/product/" + url.PathEscape(productID)
	if err := c.doAuthed(ctx, http.MethodPost, path, in, &out); err != nil {
		return Review{}, err
	}
	return out, nil
}

// DeleteReview removes a review (author or admin).
func (c *Client) DeleteReview(ctx context.Context, id string) error {
	return c.doAuthed(ctx, http.MethodDelete, "/api/reviews/"+url.PathEscape(id), nil, nil)
}
