package main

import (
	"bmxshop/internal/api"
	"bmxshop/internal/payment"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	checkoutAddress  string
	checkoutCardNum  string
	checkoutCardExp  string
	checkoutCardCVC  string
	checkoutCardName string
)

// checkoutCmd places an order for the cart contents
var checkoutCmd = &cobra.Command{
	Use:   "checkout",
	Short: "Place an order for the cart contents",
	Long: `Place an order for the cart contents.

The card is tokenized by the configured payment provider; only the
resulting token is sent to the shop backend. The cart is cleared once
the order is accepted.`,
	RunE: runCheckout,
}

// ordersCmd lists past orders
var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "List your orders",
	Long: `List your orders.

Fetched orders are cached locally, so the list still renders (marked
offline) when the backend is unreachable.`,
	RunE: runOrders,
}

var ordersShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one order",
	Args:  cobra.ExactArgs(1),
	RunE:  runOrderShow,
}

func init() {
	checkoutCmd.Flags().StringVar(&checkoutAddress, "address", "", "Shipping address (defaults to the profile address)")
	checkoutCmd.Flags().StringVar(&checkoutCardNum, "card", "", "Card number (prompted when omitted)")
	checkoutCmd.Flags().StringVar(&checkoutCardExp, "exp", "", "Card expiry as MM/YY (prompted when omitted)")
	checkoutCmd.Flags().StringVar(&checkoutCardCVC, "cvc", "", "Card security code (prompted when omitted)")
	checkoutCmd.Flags().StringVar(&checkoutCardName, "name", "", "Cardholder name (defaults to the profile name)")

	ordersCmd.AddCommand(ordersShowCmd)
}

func runCheckout(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	sess, err := app.requireSession()
	if err != nil {
		return err
	}

	entries := app.cart.Entries()
	if len(entries) == 0 {
		return fmt.Errorf("cart is empty, nothing to order")
	}

	address := checkoutAddress
	if address == "" {
		address = sess.Address
	}
	if address == "" {
		address, err = promptLine("Shipping address: ")
		if err != nil {
			return err
		}
	}
	if address == "" {
		return fmt.Errorf("a shipping address is required")
	}

	card, err := collectCard(sess.DisplayName())
	if err != nil {
		return err
	}

	total := app.cart.Total()
	fmt.Printf("Order total: %s EUR (%d units)\n", total.StringFixed(2), app.cart.Units())

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	charge := payment.Charge{
		Amount:      payment.MinorUnits(total),
		Currency:    app.cfg.Payment.Currency,
		Description: app.cfg.Payment.MerchantName,
	}
	token, err := app.payment.Tokenize(ctx, card, charge)
	if err != nil {
		return err
	}

	items := make([]api.OrderItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, api.OrderItem{
			ProductID:   api.ID(e.ProductID),
			ProductName: e.Name,
			Price:       e.Price,
			Quantity:    e.Quantity,
		})
	}

	order, err := app.client.CreateOrder(ctx, api.CreateOrderRequest{
		Items:           items,
		ShippingAddress: address,
		PaymentMethod:   app.cfg.Payment.Provider,
		PaymentToken:    token,
	})
	if err != nil {
		if errors.Is(err, api.ErrSessionExpired) {
			return fmt.Errorf("session expired, sign in again with 'bmxshop login'")
		}
		return err
	}

	if err := app.history.Record(order); err != nil {
		app.logger.Warn("failed to cache placed order", zap.Error(err))
	}
	app.cart.Clear()

	fmt.Printf("\n✓ Order %s placed (%s)\n", order.ID, order.Status)
	fmt.Printf("Total: %s EUR, shipping to %s\n", order.Total.StringFixed(2), order.ShippingAddress)
	return nil
}

func runOrders(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if _, err := app.requireSession(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	offline := false
	orders, err := app.client.MyOrders(ctx)
	if err != nil {
		if errors.Is(err, api.ErrSessionExpired) {
			return fmt.Errorf("session expired, sign in again with 'bmxshop login'")
		}
		// Fall back to the local cache.
		offline = true
		orders, err = app.history.Orders()
		if err != nil {
			return err
		}
	} else {
		if err := app.history.RecordAll(orders); err != nil {
			app.logger.Warn("failed to cache order list", zap.Error(err))
		}
	}

	if len(orders) == 0 {
		fmt.Println("No orders yet.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tSTATUS\tTOTAL")
	for _, o := range orders {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			o.ID, o.CreatedAt.Format("2006-01-02"), o.Status, o.Total.StringFixed(2))
	}
	w.Flush()
	if offline {
		fmt.Println("\n(offline: showing locally cached orders)")
	}
	return nil
}

func runOrderShow(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if _, err := app.requireSession(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	order, err := app.client.OrderByID(ctx, args[0])
	if err != nil {
		if errors.Is(err, api.ErrSessionExpired) {
			return fmt.Errorf("session expired, sign in again with 'bmxshop login'")
		}
		return err
	}

	fmt.Printf("Order %s\n", order.ID)
	fmt.Printf("Status:  %s\n", order.Status)
	fmt.Printf("Placed:  %s\n", order.CreatedAt.Format(time.RFC1123))
	fmt.Printf("Ship to: %s\n", order.ShippingAddress)
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PRODUCT\tPRICE\tQTY")
	for _, item := range order.Items {
		fmt.Fprintf(w, "%s\t%s\t%d\n", item.ProductName, item.Price.StringFixed(2), item.Quantity)
	}
	w.Flush()

	fmt.Printf("\nTotal: %s EUR\n", order.Total.StringFixed(2))
	return nil
}

// collectCard gathers card details from flags, prompting for the rest.
func collectCard(holder string) (payment.Card, error) {
	var err error
	number := checkoutCardNum
	if number == "" {
		number, err = promptLine("Card number: ")
		if err != nil {
			return payment.Card{}, err
		}
	}
	exp := checkoutCardExp
	if exp == "" {
		exp, err = promptLine("Expiry (MM/YY): ")
		if err != nil {
			return payment.Card{}, err
		}
	}
	month, year, err := parseExpiry(exp)
	if err != nil {
		return payment.Card{}, err
	}
	cvc := checkoutCardCVC
	if cvc == "" {
		cvc, err = promptLine("CVC: ")
		if err != nil {
			return payment.Card{}, err
		}
	}
	name := checkoutCardName
	if name == "" {
		name = holder
	}
	return payment.Card{
		Number:   number,
		ExpMonth: month,
		ExpYear:  year,
		CVC:      cvc,
		Name:     name,
	}, nil
}

func parseExpiry(s string) (month, year int, err error) {
	idx := strings.IndexAny(s, "/-")
	if idx <= 0 || idx == len(s)-1 {
		return 0, 0, fmt.Errorf("expiry must look like MM/YY")
	}
	month, err = strconv.Atoi(strings.TrimSpace(s[:idx]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid expiry month %q", s[:idx])
	}
	year, err = strconv.Atoi(strings.TrimSpace(s[idx+1:]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid expiry year %q", s[idx+1:])
	}
	return month, year, nil
}
