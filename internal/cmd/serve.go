package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zfrey55/shackpck-sub000/internal/checkout"
	"github.com/zfrey55/shackpck-sub000/internal/config"
	"github.com/zfrey55/shackpck-sub000/internal/database"
	"github.com/zfrey55/shackpck-sub000/internal/inventory"
	"github.com/zfrey55/shackpck-sub000/internal/mail"
	"github.com/zfrey55/shackpck-sub000/internal/payments"
	"github.com/zfrey55/shackpck-sub000/internal/server"
	"github.com/zfrey55/shackpck-sub000/internal/shipping"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the storefront API server",
	Long: `Start the ShackPack API server which provides:
- REST API for series browsing, cart validation and checkout
- Order and address management for accounts
- The payment-processor webhook receiver`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServer(cmd *cobra.Command, args []string) error {
	fmt.Println("🚀 ShackPack Starting...")

	fmt.Println("📝 Loading configuration...")
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	fmt.Println("🔌 Connecting to database...")
	db, err := database.NewConnection(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	fmt.Println("✅ Database connected successfully")

	processor, err := payments.NewProcessor(&cfg.Payments)
	if err != nil {
		return fmt.Errorf("failed to set up payment processor: %w", err)
	}
	carrier, err := shipping.NewCarrier(&cfg.Shipping)
	if err != nil {
		return fmt.Errorf("failed to set up shipping carrier: %w", err)
	}
	mailer, err := mail.NewSender(&cfg.Email)
	if err != nil {
		return fmt.Errorf("failed to set up mail sender: %w", err)
	}
	inv := inventory.NewHTTPClient(&cfg.Inventory)

	svc := checkout.NewService(db, processor, inv, carrier, mailer, cfg.Checkout, cfg.Payments.WebhookSecret)

	fmt.Println("⚙️  Setting up server...")
	srv := server.NewServer(cfg, db, svc, inv)

	fmt.Printf("🌐 Starting server on %s...\n", cfg.Server.Addr)
	if err := srv.Start(cfg.Server.Addr); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
