package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "shackpck",
	Short: "ShackPack - Collectible Coin Pack Storefront",
	Long: `ShackPack is the backend for the collectible coin pack storefront.

It serves the JSON API for catalog browsing, cart validation, checkout,
orders and addresses, and receives payment-processor webhooks. Inventory
and sales data are synchronized with the external inventory app.`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
