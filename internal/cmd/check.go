package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/zfrey55/shackpck-sub000/internal/config"
	"github.com/zfrey55/shackpck-sub000/internal/database"
	"github.com/zfrey55/shackpck-sub000/internal/inventory"
)

var checkTimeout time.Duration

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check connectivity to the database and the inventory app",
	Long: `Verifies that the configured database is reachable and that the
external inventory app answers its catalog endpoints. Useful after
deploying configuration changes.`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().DurationVar(&checkTimeout, "timeout", 10*time.Second, "Overall timeout for the checks")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()

	fmt.Println("🔍 Checking database...")
	db, err := database.NewConnection(&cfg.DB)
	if err != nil {
		return fmt.Errorf("database check failed: %w", err)
	}
	defer db.Close()
	fmt.Println("✅ Database reachable")

	fmt.Println("🔍 Checking inventory app...")
	inv := inventory.NewHTTPClient(&cfg.Inventory)
	featured, err := inv.GetFeaturedSeries(ctx)
	if err != nil {
		return fmt.Errorf("inventory app check failed: %w", err)
	}
	fmt.Printf("✅ Inventory app reachable (%d featured series)\n", len(featured))

	return nil
}
