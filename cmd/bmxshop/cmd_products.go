package main

import (
	"bmxshop/internal/api"
	"bmxshop/internal/catalog"
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var productsCategory string

// productsCmd browses the catalog
var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "Browse the catalog",
	Long: `Browse the shop catalog.

When the backend is unreachable a built-in demo catalog is shown
instead, marked as offline.`,
	RunE: runProducts,
}

var productsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one product with its reviews",
	Args:  cobra.ExactArgs(1),
	RunE:  runProductShow,
}

var productsFeaturedCmd = &cobra.Command{
	Use:   "featured",
	Short: "List featured products",
	RunE:  runProductsFeatured,
}

var productsCategoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List product categories",
	RunE:  runProductsCategories,
}

var productsReviewCmd = &cobra.Command{
	Use:   "review <product-id>",
	Short: "Submit a review for a product",
	Args:  cobra.ExactArgs(1),
	RunE:  runProductReview,
}

var productsReviewDeleteCmd = &cobra.Command{
	Use:   "delete <review-id>",
	Short: "Delete a review (author or admin)",
	Args:  cobra.ExactArgs(1),
	RunE:  runProductReviewDelete,
}

var (
	reviewRating  int
	reviewComment string
)

func init() {
	productsCmd.Flags().StringVarP(&productsCategory, "category", "c", "", "Filter by category")
	productsReviewCmd.Flags().IntVarP(&reviewRating, "rating", "r", 5, "Star rating, 1 to 5")
	productsReviewCmd.Flags().StringVarP(&reviewComment, "comment", "m", "", "Review text")
	productsReviewCmd.AddCommand(productsReviewDeleteCmd)
	productsCmd.AddCommand(productsShowCmd)
	productsCmd.AddCommand(productsFeaturedCmd)
	productsCmd.AddCommand(productsCategoriesCmd)
	productsCmd.AddCommand(productsReviewCmd)
}

func runProducts(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	var products []catalog.Product
	var degraded bool
	if productsCategory != "" {
		products, degraded = app.client.ByCategoryOrFallback(ctx, productsCategory)
	} else {
		products, degraded = app.client.ProductsOrFallback(ctx)
	}

	printProductTable(products)
	if degraded {
		fmt.Println("\n(offline: showing the built-in demo catalog)")
	}
	return nil
}

func runProductsFeatured(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	products, degraded := app.client.FeaturedOrFallback(ctx)
	printProductTable(products)
	if degraded {
		fmt.Println("\n(offline: showing the built-in demo catalog)")
	}
	return nil
}

func runProductsCategories(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	categories, err := app.client.Categories(ctx)
	if err != nil {
		categories = catalog.FallbackCategories()
		fmt.Println("(offline: showing the built-in demo catalog)")
	}
	for _, c := range categories {
		fmt.Println(c)
	}
	return nil
}

func runProductShow(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	p, err := app.client.ProductByID(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("%s  [%s]\n", p.Name, p.ID)
	fmt.Printf("Category: %s\n", p.Category)
	fmt.Printf("Price:    %s EUR\n", p.Price.StringFixed(2))
	if p.InStock() {
		fmt.Printf("Stock:    %d\n", p.StockQuantity)
	} else {
		fmt.Println("Stock:    out of stock")
	}
	if p.Featured {
		fmt.Println("Featured: yes")
	}
	if p.Description != "" {
		fmt.Printf("\n%s\n", p.Description)
	}

	reviews := app.client.ReviewsForProduct(ctx, args[0])
	if len(reviews) > 0 {
		fmt.Printf("\nReviews (%d):\n", len(reviews))
		for _, r := range reviews {
			stars := strings.Repeat("★", r.Rating) + strings.Repeat("☆", 5-r.Rating)
			fmt.Printf("  %s  %s\n", stars, r.Username)
			if r.Comment != "" {
				fmt.Printf("      %s\n", r.Comment)
			}
		}
	}
	return nil
}

func runProductReview(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if _, err := app.requireSession(); err != nil {
		return err
	}
	if reviewRating < 1 || reviewRating > 5 {
		return fmt.Errorf("rating must be between 1 and 5")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	review, err := app.client.AddReview(ctx, args[0], api.ReviewInput{
		Rating:  reviewRating,
		Comment: reviewComment,
	})
	if err != nil {
		if expired(err) {
			return fmt.Errorf("session expired, sign in again with 'bmxshop login'")
		}
		return err
	}
	fmt.Printf("✓ Review %s submitted\n", review.ID)
	return nil
}

func runProductReviewDelete(cmd *cobra.Command, args []string) error {
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

	if err := app.client.DeleteReview(ctx, args[0]); err != nil {
		if expired(err) {
			return fmt.Errorf("session expired, sign in again with 'bmxshop login'")
		}
		return err
	}
	fmt.Printf("✓ Review %s deleted\n", args[0])
	return nil
}

func printProductTable(products []catalog.Product) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tPRICE\tSTOCK")
	for _, p := range products {
		stock := fmt.Sprintf("%d", p.StockQuantity)
		if !p.InStock() {
			stock = "out"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Category, p.Price.StringFixed(2), stock)
	}
	w.Flush()
}
