package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var cartAddQuantity int

// cartCmd manages the local cart
var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Manage the cart",
	Long: `Manage the cart.

The cart lives on disk and works offline; it is only sent to the
backend at checkout.`,
	RunE: runCartList,
}

var cartAddCmd = &cobra.Command{
	Use:   "add <product-id>",
	Short: "Add a product to the cart",
	Args:  cobra.ExactArgs(1),
	RunE:  runCartAdd,
}

var cartSetCmd = &cobra.Command{
	Use:   "set <product-id> <quantity>",
	Short: "Set the quantity of a cart line (0 removes it)",
	Args:  cobra.ExactArgs(2),
	RunE:  runCartSet,
}

var cartRemoveCmd = &cobra.Command{
	Use:   "remove <product-id>",
	Short: "Remove a product from the cart",
	Args:  cobra.ExactArgs(1),
	RunE:  runCartRemove,
}

var cartClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the cart",
	RunE:  runCartClear,
}

func init() {
	cartAddCmd.Flags().IntVarP(&cartAddQuantity, "quantity", "q", 1, "Units to add")
	cartCmd.AddCommand(cartAddCmd)
	cartCmd.AddCommand(cartSetCmd)
	cartCmd.AddCommand(cartRemoveCmd)
	cartCmd.AddCommand(cartClearCmd)
}

func runCartList(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	entries := app.cart.Entries()
	if len(entries) == 0 {
		fmt.Println("Cart is empty.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPRICE\tQTY\tSUBTOTAL")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			e.ProductID, e.Name, e.Price.StringFixed(2), e.Quantity, e.Subtotal().StringFixed(2))
	}
	w.Flush()

	fmt.Printf("\nTotal: %s EUR (%d units)\n", app.cart.Total().StringFixed(2), app.cart.Units())
	return nil
}

func runCartAdd(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	// Resolve against the catalog so the cart line carries name and price.
	p, err := app.client.ProductByID(ctx, args[0])
	if err != nil {
		return fmt.Errorf("cannot resolve product %s: %w", args[0], err)
	}
	if !p.InStock() {
		return fmt.Errorf("%s is out of stock", p.Name)
	}

	app.cart.Add(p, cartAddQuantity)
	fmt.Printf("Added %s. Cart total: %s EUR\n", p.Name, app.cart.Total().StringFixed(2))
	return nil
}

func runCartSet(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	quantity, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid quantity %q", args[1])
	}

	app.cart.SetQuantity(args[0], quantity)
	fmt.Printf("Cart total: %s EUR (%d units)\n", app.cart.Total().StringFixed(2), app.cart.Units())
	return nil
}

func runCartRemove(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	app.cart.Remove(args[0])
	fmt.Printf("Cart total: %s EUR (%d units)\n", app.cart.Total().StringFixed(2), app.cart.Units())
	return nil
}

func runCartClear(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	app.cart.Clear()
	fmt.Println("Cart cleared.")
	return nil
}
