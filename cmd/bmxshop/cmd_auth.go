package main

import (
	"bmxshop/internal/api"
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	loginPassword    string
	registerPassword string
	registerUsername string
)

// loginCmd signs in against the shop backend
var loginCmd = &cobra.Command{
	Use:   "login <email>",
	Short: "Sign in to the shop",
	Long: `Sign in with your shop account.

The backend is probed first; if it is unreachable the attempt fails
without sending credentials. On success the session is stored under the
state directory and reused by later commands.`,
	Args: cobra.ExactArgs(1),
	RunE: runLogin,
}

// registerCmd creates a new account
var registerCmd = &cobra.Command{
	Use:   "register <email>",
	Short: "Create a new shop account",
	Args:  cobra.ExactArgs(1),
	RunE:  runRegister,
}

// logoutCmd drops the local session
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the stored session",
	RunE:  runLogout,
}

// whoamiCmd prints the active session
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account",
	RunE:  runWhoami,
}

// statusCmd probes the backend and reports local state
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show backend availability and local state",
	RunE:  runStatus,
}

func init() {
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Password (prompted when omitted)")
	registerCmd.Flags().StringVar(&registerPassword, "password", "", "Password (prompted when omitted)")
	registerCmd.Flags().StringVar(&registerUsername, "username", "", "Display name (defaults to the email local part)")
}

func runLogin(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	email := args[0]
	password := loginPassword
	if password == "" {
		password, err = promptLine("Password: ")
		if err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	sess, err := app.session.Login(ctx, email, password)
	if err != nil {
		if errors.Is(err, api.ErrServerUnavailable) {
			return fmt.Errorf("shop backend is unreachable at %s, try again later", app.client.BaseURL())
		}
		return err
	}

	fmt.Printf("Signed in as %s\n", sess.DisplayName())
	if sess.IsAdmin() {
		fmt.Println("Admin commands are available under 'bmxshop admin'.")
	}
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	email := args[0]
	username := registerUsername
	if username == "" {
		username = email
		if at := strings.IndexByte(email, '@'); at > 0 {
			username = email[:at]
		}
	}
	password := registerPassword
	if password == "" {
		password, err = promptLine("Password: ")
		if err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	req := api.RegisterRequest{Username: username, Email: email, Password: password}
	if err := app.session.Register(ctx, req); err != nil {
		if errors.Is(err, api.ErrServerUnavailable) {
			return fmt.Errorf("shop backend is unreachable at %s, try again later", app.client.BaseURL())
		}
		return err
	}

	fmt.Printf("Account created for %s. Run 'bmxshop login %s' to sign in.\n", email, email)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	sess, ok := app.session.Current()
	if !ok {
		fmt.Println("Not signed in.")
		return nil
	}

	app.session.Logout()
	if err := app.history.Clear(); err != nil {
		app.logger.Warn("failed to clear order history on logout", zap.Error(err))
	}

	fmt.Printf("Signed out %s\n", sess.Email)
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	sess, err := app.requireSession()
	if err != nil {
		return err
	}

	fmt.Printf("Signed in as:  %s\n", sess.DisplayName())
	fmt.Printf("Email:         %s\n", sess.Email)
	if len(sess.Roles) > 0 {
		fmt.Printf("Roles:         %s\n", strings.Join(sess.Roles, ", "))
	}
	if sess.Address != "" {
		fmt.Printf("Address:       %s\n", sess.Address)
	}
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	fmt.Printf("Backend: %s\n", app.client.BaseURL())
	avail := app.client.Availability().Check(ctx)
	if avail.Available {
		fmt.Println("Status:  ✓ reachable")
	} else {
		fmt.Println("Status:  ✗ unreachable")
		if avail.ErrorMessage != "" {
			fmt.Printf("Reason:  %s\n", avail.ErrorMessage)
		}
	}
	if !avail.CheckedAt.IsZero() {
		fmt.Printf("Checked: %s\n", avail.CheckedAt.Format(time.RFC3339))
	}

	fmt.Printf("\nState dir: %s\n", app.storage.Dir())
	if sess, ok := app.session.Current(); ok {
		fmt.Printf("Session:   %s\n", sess.Email)
	} else {
		fmt.Println("Session:   none")
	}
	fmt.Printf("Cart:      %d item(s), %d unit(s)\n", app.cart.Len(), app.cart.Units())
	return nil
}

// promptLine reads one line from stdin, trimming the trailing newline.
func promptLine(prompt string) (string, error) {
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
