package payment

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"bmxshop/internal/config"
)

func pinClock(t *testing.T, at time.Time) {
	t.Helper()
	old := timeNow
	timeNow = func() time.Time { return at }
	t.Cleanup(func() { timeNow = old })
}

func validCard() Card {
	return Card{
		Number:   "4242 4242 4242 4242",
		ExpMonth: 12,
		ExpYear:  2030,
		CVC:      "123",
		Name:     "Ada Lovelace",
	}
}

func TestStaticTokenize(t *testing.T) {
	pinClock(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))

	tok, err := NewStatic().Tokenize(context.Background(), validCard(), Charge{Amount: 49999, Currency: "eur"})
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	if !strings.HasPrefix(tok, "tok_test_") {
		t.Fatalf("unexpected token %q", tok)
	}

	again, err := NewStatic().Tokenize(context.Background(), validCard(), Charge{Amount: 49999, Currency: "eur"})
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	if again == tok {
		t.Fatal("tokens must be single use, got a repeat")
	}
}

func TestCardValidation(t *testing.T) {
	pinClock(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))

	cases := []struct {
		name   string
		mutate func(*Card)
	}{
		{"bad checksum", func(c *Card) { c.Number = "4242424242424241" }},
		{"non digits", func(c *Card) { c.Number = "4242-4242-4242-4242" }},
		{"too short", func(c *Card) { c.Number = "42424242" }},
		{"expired", func(c *Card) { c.ExpYear = 2025 }},
		{"bad month", func(c *Card) { c.ExpMonth = 13 }},
		{"bad cvc", func(c *Card) { c.CVC = "12" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			card := validCard()
			tc.mutate(&card)
			_, err := NewStatic().Tokenize(context.Background(), card, Charge{Amount: 100, Currency: "eur"})
			if !errors.Is(err, ErrCardRejected) {
				t.Fatalf("want ErrCardRejected, got %v", err)
			}
		})
	}
}

func TestCardExpiresEndOfMonth(t *testing.T) {
	// A card is good through the last instant of its expiry month.
	pinClock(t, time.Date(2026, 12, 31, 23, 59, 0, 0, time.UTC))

	card := validCard()
	card.ExpMonth = 12
	card.ExpYear = 2026
	if _, err := NewStatic().Tokenize(context.Background(), card, Charge{Amount: 100, Currency: "eur"}); err != nil {
		t.Fatalf("card expiring this month should pass: %v", err)
	}
}

func TestTwoDigitExpiryYear(t *testing.T) {
	pinClock(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))

	card := validCard()
	card.ExpYear = 30
	if _, err := NewStatic().Tokenize(context.Background(), card, Charge{Amount: 100, Currency: "eur"}); err != nil {
		t.Fatalf("two digit year should be accepted: %v", err)
	}
}

func TestMinorUnits(t *testing.T) {
	cases := []struct {
		price string
		want  int64
	}{
		{"499.99", 49999},
		{"0.01", 1},
		{"120", 12000},
		{"10.005", 1001},
		{"0", 0},
	}
	for _, tc := range cases {
		got := MinorUnits(decimal.RequireFromString(tc.price))
		if got != tc.want {
			t.Errorf("MinorUnits(%s) = %d, want %d", tc.price, got, tc.want)
		}
	}
}

func TestForConfig(t *testing.T) {
	stripeCfg := config.PaymentConfig{Provider: "stripe", PublishableKey: "pk_test_abc"}
	if _, ok := ForConfig(stripeCfg).(*StripeProvider); !ok {
		t.Fatal("configured stripe key should select the stripe provider")
	}

	// Missing key degrades to the static provider rather than failing.
	if _, ok := ForConfig(config.PaymentConfig{Provider: "stripe"}).(*StaticProvider); !ok {
		t.Fatal("stripe without a key should fall back to static")
	}
	if _, ok := ForConfig(config.PaymentConfig{Provider: "static"}).(*StaticProvider); !ok {
		t.Fatal("static provider not selected")
	}
}
