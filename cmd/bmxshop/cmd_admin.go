package main

import (
	"bmxshop/internal/api"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	adminProductName     string
	adminProductDesc     string
	adminProductPrice    string
	adminProductStock    int
	adminProductCategory string
	adminProductImage    string
	adminProductFeatured bool
)

// adminCmd groups the management surface; every call goes through the
// refresh-and-retry wrapper and requires an admin role.
var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Shop management commands (admin role required)",
	Long: `Shop management commands.

Available subcommands:
  product - Create, update, and delete catalog products
  orders  - List all orders and update their status
  users   - Manage user accounts and roles`,
}

var adminProductCmd = &cobra.Command{
	Use:   "product",
	Short: "Manage catalog products",
}

var adminProductCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a product",
	RunE:  runAdminProductCreate,
}

var adminProductUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a product",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdminProductUpdate,
}

var adminProductDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a product",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdminProductDelete,
}

var adminOrdersCmd = &cobra.Command{
	Use:   "orders",
	Short: "List all orders",
	RunE:  runAdminOrders,
}

var adminOrderStatusCmd = &cobra.Command{
	Use:   "set-status <id> <status>",
	Short: "Update an order's status",
	Args:  cobra.ExactArgs(2),
	RunE:  runAdminOrderStatus,
}

var adminUsersCmd = &cobra.Command{
	Use:   "users",
	Short: "List user accounts",
	RunE:  runAdminUsers,
}

var adminUserShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one user account",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdminUserShow,
}

var adminUserDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a user account",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdminUserDelete,
}

var adminUserRolesCmd = &cobra.Command{
	Use:   "set-roles <id> <role>...",
	Short: "Replace a user's roles",
	Long: `Replace a user's roles.

Example:
  bmxshop admin users set-roles 42 ROLE_USER ROLE_ADMIN`,
	Args: cobra.MinimumNArgs(2),
	RunE: runAdminUserRoles,
}

func init() {
	for _, c := range []*cobra.Command{adminProductCreateCmd, adminProductUpdateCmd} {
		c.Flags().StringVar(&adminProductName, "name", "", "Product name")
		c.Flags().StringVar(&adminProductDesc, "description", "", "Product description")
		c.Flags().StringVar(&adminProductPrice, "price", "", "Price in EUR, e.g. 499.99")
		c.Flags().IntVar(&adminProductStock, "stock", 0, "Stock quantity")
		c.Flags().StringVar(&adminProductCategory, "category", "", "Category name")
		c.Flags().StringVar(&adminProductImage, "image", "", "Image URL")
		c.Flags().BoolVar(&adminProductFeatured, "featured", false, "Mark as featured")
	}
	adminProductCreateCmd.MarkFlagRequired("name")
	adminProductCreateCmd.MarkFlagRequired("price")

	adminProductCmd.AddCommand(adminProductCreateCmd)
	adminProductCmd.AddCommand(adminProductUpdateCmd)
	adminProductCmd.AddCommand(adminProductDeleteCmd)

	adminOrdersCmd.AddCommand(adminOrderStatusCmd)

	adminUsersCmd.AddCommand(adminUserShowCmd)
	adminUsersCmd.AddCommand(adminUserDeleteCmd)
	adminUsersCmd.AddCommand(adminUserRolesCmd)

	adminCmd.AddCommand(adminProductCmd)
	adminCmd.AddCommand(adminOrdersCmd)
	adminCmd.AddCommand(adminUsersCmd)
}

func productInputFromFlags() (api.ProductInput, error) {
	price, err := decimal.NewFromString(adminProductPrice)
	if err != nil {
		return api.ProductInput{}, fmt.Errorf("invalid price %q", adminProductPrice)
	}
	return api.ProductInput{
		Name:          adminProductName,
		Description:   adminProductDesc,
		Price:         price,
		StockQuantity: adminProductStock,
		Category:      adminProductCategory,
		ImageURL:      adminProductImage,
		Featured:      adminProductFeatured,
	}, nil
}

func runAdminProductCreate(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if _, err := app.requireAdmin(); err != nil {
		return err
	}

	in, err := productInputFromFlags()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	p, err := app.client.CreateProduct(ctx, in)
	if err != nil {
		return adminErr(err)
	}

	fmt.Printf("✓ Created product %s (%s)\n", p.Name, p.ID)
	return nil
}

func runAdminProductUpdate(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if _, err := app.requireAdmin(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	// Start from the stored product so unset flags keep their values.
	current, err := app.client.ProductByID(ctx, args[0])
	if err != nil {
		return adminErr(err)
	}

	in := api.ProductInput{
		Name:          current.Name,
		Description:   current.Description,
		Price:         current.Price,
		StockQuantity: current.StockQuantity,
		Category:      current.Category,
		ImageURL:      current.ImageURL,
		Featured:      current.Featured,
	}
	if cmd.Flags().Changed("name") {
		in.Name = adminProductName
	}
	if cmd.Flags().Changed("description") {
		in.Description = adminProductDesc
	}
	if cmd.Flags().Changed("price") {
		price, err := decimal.NewFromString(adminProductPrice)
		if err != nil {
			return fmt.Errorf("invalid price %q", adminProductPrice)
		}
		in.Price = price
	}
	if cmd.Flags().Changed("stock") {
		in.StockQuantity = adminProductStock
	}
	if cmd.Flags().Changed("category") {
		in.Category = adminProductCategory
	}
	if cmd.Flags().Changed("image") {
		in.ImageURL = adminProductImage
	}
	if cmd.Flags().Changed("featured") {
		in.Featured = adminProductFeatured
	}

	p, err := app.client.UpdateProduct(ctx, args[0], in)
	if err != nil {
		return adminErr(err)
	}

	fmt.Printf("✓ Updated product %s (%s)\n", p.Name, p.ID)
	return nil
}

func runAdminProductDelete(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if _, err := app.requireAdmin(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	if err := app.client.DeleteProduct(ctx, args[0]); err != nil {
		return adminErr(err)
	}

	fmt.Printf("✓ Deleted product %s\n", args[0])
	return nil
}

func runAdminOrders(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if _, err := app.requireAdmin(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	orders, err := app.client.AllOrders(ctx)
	if err != nil {
		return adminErr(err)
	}
	if len(orders) == 0 {
		fmt.Println("No orders.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tSTATUS\tTOTAL")
	for _, o := range orders {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			o.ID, o.CreatedAt.Format("2006-01-02"), o.Status, o.Total.StringFixed(2))
	}
	w.Flush()
	return nil
}

func runAdminOrderStatus(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if _, err := app.requireAdmin(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	o, err := app.client.UpdateOrderStatus(ctx, args[0], args[1])
	if err != nil {
		return adminErr(err)
	}

	fmt.Printf("✓ Order %s is now %s\n", o.ID, o.Status)
	return nil
}

func runAdminUsers(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if _, err := app.requireAdmin(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	users, err := app.client.Users(ctx)
	if err != nil {
		return adminErr(err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUSERNAME\tEMAIL\tROLES")
	for _, u := range users {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", u.ID, u.Username, u.Email, strings.Join(u.Roles, ","))
	}
	w.Flush()
	return nil
}

func runAdminUserShow(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if _, err := app.requireAdmin(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	u, err := app.client.UserByID(ctx, args[0])
	if err != nil {
		return adminErr(err)
	}

	fmt.Printf("ID:       %s\n", u.ID)
	fmt.Printf("Username: %s\n", u.Username)
	fmt.Printf("Email:    %s\n", u.Email)
	fmt.Printf("Roles:    %s\n", strings.Join(u.Roles, ", "))
	if u.FirstName != "" || u.LastName != "" {
		fmt.Printf("Name:     %s %s\n", u.FirstName, u.LastName)
	}
	if u.Address != "" {
		fmt.Printf("Address:  %s\n", u.Address)
	}
	return nil
}

func runAdminUserDelete(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if _, err := app.requireAdmin(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	if err := app.client.DeleteUser(ctx, args[0]); err != nil {
		return adminErr(err)
	}

	fmt.Printf("✓ Deleted user %s\n", args[0])
	return nil
}

func runAdminUserRoles(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if _, err := app.requireAdmin(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	u, err := app.client.UpdateUserRoles(ctx, args[0], args[1:])
	if err != nil {
		return adminErr(err)
	}

	fmt.Printf("✓ %s now has roles: %s\n", u.Username, strings.Join(u.Roles, ", "))
	return nil
}

func adminErr(err error) error {
	if errors.Is(err, api.ErrSessionExpired) {
		return fmt.Errorf("session expired, sign in again with 'bmxshop login'")
	}
	return err
}
