package main

import (
	"bmxshop/internal/api"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	profileFirstName string
	profileLastName  string
	profileAddress   string
	profilePhone     string
)

// profileCmd manages the signed-in account
var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show the account profile",
	Long: `Show the account profile.

The profile is re-fetched from the backend; if the stored credential
has expired the local session is dropped and you are asked to sign in
again.`,
	RunE: runProfileShow,
}

var profileUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update profile fields",
	RunE:  runProfileUpdate,
}

var profilePasswordCmd = &cobra.Command{
	Use:   "change-password",
	Short: "Change the account password",
	RunE:  runChangePassword,
}

func init() {
	profileUpdateCmd.Flags().StringVar(&profileFirstName, "first-name", "", "First name")
	profileUpdateCmd.Flags().StringVar(&profileLastName, "last-name", "", "Last name")
	profileUpdateCmd.Flags().StringVar(&profileAddress, "address", "", "Shipping address")
	profileUpdateCmd.Flags().StringVar(&profilePhone, "phone", "", "Phone number")

	profileCmd.AddCommand(profileUpdateCmd)
	profileCmd.AddCommand(profilePasswordCmd)
}

func runProfileShow(cmd *cobra.Command, args []string) error {
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

	sess, err := app.session.RefreshProfile(ctx)
	if err != nil {
		if expired(err) {
			return fmt.Errorf("session expired, sign in again with 'bmxshop login'")
		}
		return err
	}

	fmt.Printf("Name:    %s\n", sess.DisplayName())
	fmt.Printf("Email:   %s\n", sess.Email)
	if len(sess.Roles) > 0 {
		fmt.Printf("Roles:   %s\n", strings.Join(sess.Roles, ", "))
	}
	if sess.Address != "" {
		fmt.Printf("Address: %s\n", sess.Address)
	}
	if sess.PhoneNumber != "" {
		fmt.Printf("Phone:   %s\n", sess.PhoneNumber)
	}
	return nil
}

func runProfileUpdate(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if _, err := app.requireSession(); err != nil {
		return err
	}

	fields := api.ProfileUpdate{
		FirstName:   profileFirstName,
		LastName:    profileLastName,
		Address:     profileAddress,
		PhoneNumber: profilePhone,
	}
	if fields == (api.ProfileUpdate{}) {
		return fmt.Errorf("nothing to update, pass at least one field flag")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	sess, err := app.session.UpdateProfile(ctx, fields)
	if err != nil {
		if expired(err) {
			return fmt.Errorf("session expired, sign in again with 'bmxshop login'")
		}
		return err
	}

	fmt.Printf("Profile updated for %s\n", sess.DisplayName())
	return nil
}

func runChangePassword(cmd *cobra.Command, args []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if _, err := app.requireSession(); err != nil {
		return err
	}

	current, err := promptLine("Current password: ")
	if err != nil {
		return err
	}
	next, err := promptLine("New password: ")
	if err != nil {
		return err
	}
	confirm, err := promptLine("Repeat new password: ")
	if err != nil {
		return err
	}
	if next != confirm {
		return fmt.Errorf("passwords do not match")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	if err := app.session.ChangePassword(ctx, current, next); err != nil {
		if expired(err) {
			return fmt.Errorf("session expired, sign in again with 'bmxshop login'")
		}
		return err
	}

	fmt.Println("Password changed.")
	return nil
}

// expired reports whether err is a terminal credential failure.
func expired(err error) bool {
	if errors.Is(err, api.ErrSessionExpired) {
		return true
	}
	var authErr *api.AuthError
	return errors.As(err, &authErr) && authErr.Expired
}
