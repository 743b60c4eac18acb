package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	DB        DBConfig        `mapstructure:"db"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Checkout  CheckoutConfig  `mapstructure:"checkout"`
	Payments  PaymentsConfig  `mapstructure:"payments"`
	Inventory InventoryConfig `mapstructure:"inventory"`
	Shipping  ShippingConfig  `mapstructure:"shipping"`
	Email     EmailConfig     `mapstructure:"email"`
	Flags     FlagsConfig     `mapstructure:"flags"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
	Env  string `mapstructure:"env"` // development, production
}

func (s ServerConfig) IsProduction() bool {
	return s.Env == "production"
}

type DBConfig struct {
	DSN          string `mapstructure:"dsn"`
	MaxOpenConns int    `mapstructure:"maxOpenConns"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

type CheckoutConfig struct {
	GuestShippingFee string `mapstructure:"guest_shipping_fee"`
	PointsPerDollar  int    `mapstructure:"points_per_dollar"`
	PackLimit        int    `mapstructure:"pack_limit"`
}

type PaymentsConfig struct {
	Provider      string `mapstructure:"provider"`
	APIKey        string `mapstructure:"api_key"`
	APIKeyEnv     string `mapstructure:"api_key_env"`
	WebhookSecret string `mapstructure:"webhook_secret"`
}

type InventoryConfig struct {
	BaseURL string `mapstructure:"base_url"`
	OrgID   string `mapstructure:"org_id"`
}

type ShippingConfig struct {
	Provider     string `mapstructure:"provider"`
	BaseURL      string `mapstructure:"base_url"`
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
}

type EmailConfig struct {
	Provider   string `mapstructure:"provider"`
	APIKey     string `mapstructure:"api_key"`
	APIKeyEnv  string `mapstructure:"api_key_env"`
	FromEmail  string `mapstructure:"from_email"`
	AdminEmail string `mapstructure:"admin_email"`
}

// FlagsConfig gates whole surfaces of the storefront so the shop can run in a
// degraded contact-us-only mode. Injected into the server rather than read from
// the environment at request time.
type FlagsConfig struct {
	CheckoutEnabled       bool `mapstructure:"checkout_enabled"`
	AccountsEnabled       bool `mapstructure:"accounts_enabled"`
	DirectPurchaseEnabled bool `mapstructure:"direct_purchase_enabled"`
}

// LoadConfig loads configuration from config.yaml and environment variables
func LoadConfig() (*Config, error) {
	v := viper.New()

	// Set config file locations
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./deploy/")
	v.AddConfigPath("./")
	v.AddConfigPath("$HOME/.shackpck/")
	v.AddConfigPath("/etc/shackpck/")

	// Enable environment variable override with SHACKPCK_ prefix
	v.SetEnvPrefix("SHACKPCK")
	v.AutomaticEnv()

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.env", "development")
	v.SetDefault("db.maxOpenConns", 25)
	v.SetDefault("auth.token_ttl", "24h")
	v.SetDefault("checkout.guest_shipping_fee", "5.00")
	v.SetDefault("checkout.points_per_dollar", 1)
	v.SetDefault("checkout.pack_limit", 5)
	v.SetDefault("payments.provider", "stripe")
	v.SetDefault("email.provider", "mock")
	v.SetDefault("shipping.provider", "mock")
	v.SetDefault("flags.checkout_enabled", true)
	v.SetDefault("flags.accounts_enabled", true)
	v.SetDefault("flags.direct_purchase_enabled", true)

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}
