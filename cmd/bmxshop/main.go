package main

import (
	"bmxshop/internal/config"
	"bmxshop/internal/logging"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	verbose  bool
	apiURL   string
	stateDir string
	timeout  time.Duration

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "bmxshop",
	Short: "RN BMX Shop - terminal storefront client",
	Long: `bmxshop is the terminal client for the RN BMX Shop backend.

It keeps cart and session state on disk, degrades to a built-in catalog
when the backend is unreachable, and refreshes expired credentials
transparently on authenticated calls.

Run without arguments to start the interactive storefront.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// The interactive storefront renders its own status line, keep
		// zap quiet there unless asked for.
		if cmd.CalledAs() == "bmxshop" && !verbose {
			logger = zap.NewNop()
			return nil
		}

		cfg := config.Default().Logging
		if verbose {
			cfg.Level = "debug"
			cfg.Development = true
		}
		var err error
		logger, err = logging.New(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: launch the interactive storefront
		return runStorefront()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Shop backend base URL (or set BMXSHOP_API_URL)")
	rootCmd.PersistentFlags().StringVar(&stateDir, "state-dir", "", "Local state directory (default: ~/.bmxshop)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Request timeout for one-shot commands")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(productsCmd)
	rootCmd.AddCommand(cartCmd)
	rootCmd.AddCommand(checkoutCmd)
	rootCmd.AddCommand(ordersCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(adminCmd)
	rootCmd.AddCommand(statusCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
