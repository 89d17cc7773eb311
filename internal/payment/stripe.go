package payment

import (
	"context"
	"fmt"
	"strconv"

	stripe "github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/client"
)

// StripeProvider tokenizes cards against the Stripe API using the shop's
// publishable key. The token is single use and carries no card data.
type StripeProvider struct {
	api *client.API
}

func NewStripe(publishableKey string) *StripeProvider {
	api := &client.API{}
	api.Init(publishableKey, nil)
	return &StripeProvider{api: api}
}

func (p *StripeProvider) Tokenize(ctx context.Context, card Card, charge Charge) (string, error) {
	if err := card.validate(timeNow()); err != nil {
		return "", err
	}
	params := &stripe.TokenParams{
		Card: &stripe.CardParams{
			Number:   stripe.String(card.Number),
			ExpMonth: stripe.String(strconv.Itoa(card.ExpMonth)),
			ExpYear:  stripe.String(strconv.Itoa(card.ExpYear)),
			CVC:      stripe.String(card.CVC),
			Name:     stripe.String(card.Name),
		},
	}
	params.Context = ctx
	tok, err := p.api.Tokens.New(params)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCardRejected, err)
	}
	return tok.ID, nil
}
