package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zfrey55/shackpck-sub000/internal/config"
	"github.com/zfrey55/shackpck-sub000/internal/database"
)

var seedCatalog bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	Long: `Creates the storefront tables (users, series, orders, order items,
addresses, purchase counts, payment claims). Safe to run repeatedly.`,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)

	migrateCmd.Flags().BoolVar(&seedCatalog, "seed", false, "Insert a few sample series after migrating")
}

func runMigrate(cmd *cobra.Command, args []string) error {
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

	fmt.Println("📋 Applying schema...")
	if err := db.Migrate(); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}

	if seedCatalog {
		fmt.Println("🌱 Seeding sample series...")
		if err := seedSampleSeries(db); err != nil {
			return fmt.Errorf("failed to seed catalog: %w", err)
		}
	}

	fmt.Println("✅ Migration complete")
	return nil
}

func seedSampleSeries(db *database.DB) error {
	samples := []struct {
		name  string
		price string
		total int
	}{
		{"Morgan Dollar Starter Pack", "49.99", 200},
		{"Buffalo Nickel Pack", "24.99", 500},
		{"Walking Liberty Premium Pack", "99.99", 50},
	}
	for _, s := range samples {
		_, err := db.Exec(`
			INSERT IGNORE INTO series (name, description, price, total_count, active, featured)
			VALUES (?, '', ?, ?, TRUE, TRUE)
		`, s.name, s.price, s.total)
		if err != nil {
			return err
		}
	}
	return nil
}
