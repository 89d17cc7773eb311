// Package payment is the checkout widget contract. A Provider turns card
// details plus a charge summary into an opaque token that the order payload
// carries; the backend performs the actual capture.
package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"bmxshop/internal/config"
)

var ErrCardRejected = errors.New("payment: card rejected")

// Card holds the raw details collected by the checkout form. They are handed
// to the provider and never persisted or sent to the shop backend.
type Card struct {
	Number   string
	ExpMonth int
	ExpYear  int
	CVC      string
	Name     string
}

// Charge describes what the token is being created for. Amount is in minor
// units of Currency (cents for EUR).
type Charge struct {
	Amount      int64
	Currency    string
	Description string
}

// Provider tokenizes a card for a charge. Implementations must not retain
// card details after Tokenize returns.
type Provider interface {
	Tokenize(ctx context.Context, card Card, charge Charge) (string, error)
}

// ForConfig selects the provider named in the config. Unknown names fall
// back to the static provider so checkout stays usable offline.
func ForConfig(cfg config.PaymentConfig) Provider {
	if cfg.Provider == "stripe" && cfg.PublishableKey != "" {
		return NewStripe(cfg.PublishableKey)
	}
	return NewStatic()
}

// MinorUnits converts a decimal price to the provider's integer amount.
// Sub-cent remainders are rounded half up, matching how the backend totals.
func MinorUnits(price decimal.Decimal) int64 {
	return price.Shift(2).Round(0).IntPart()
}

func (c Card) validate(now time.Time) error {
	digits := strings.ReplaceAll(c.Number, " ", "")
	if len(digits) < 12 || len(digits) > 19 {
		return fmt.Errorf("%w: card number must be 12 to 19 digits", ErrCardRejected)
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return fmt.Errorf("%w: card number contains non-digits", ErrCardRejected)
		}
	}
	if !luhnOK(digits) {
		return fmt.Errorf("%w: card number failed checksum", ErrCardRejected)
	}
	if c.ExpMonth < 1 || c.ExpMonth > 12 {
		return fmt.Errorf("%w: invalid expiry month", ErrCardRejected)
	}
	if c.ExpYear < 100 {
		c.ExpYear += 2000
	}
	endOfMonth := time.Date(c.ExpYear, time.Month(c.ExpMonth)+1, 1, 0, 0, 0, 0, time.UTC)
	if !now.Before(endOfMonth) {
		return fmt.Errorf("%w: card expired", ErrCardRejected)
	}
	if len(c.CVC) < 3 || len(c.CVC) > 4 {
		return fmt.Errorf("%w: invalid security code", ErrCardRejected)
	}
	return nil
}

func luhnOK(digits string) bool {
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}
