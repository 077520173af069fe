package config

import (
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	MongoDB  MongoDBConfig
	JWT      JWTConfig
	Loyalty  LoyaltyConfig
	Coupons  CouponConfig
	Admin    AdminConfig
	LogLevel string
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port         string
	AllowedHosts []string
}

// MongoDBConfig holds MongoDB-specific configuration
type MongoDBConfig struct {
	URI      string
	Database string
}

// JWTConfig holds JWT-specific configuration
type JWTConfig struct {
	Secret    string
	ExpiresIn int // seconds
}

// LoyaltyConfig holds the point-economy tunables. Defaults reproduce the
// storefront rules: 1 base point per $10 spent, 100 points worth $10 at
// redemption, redemption capped at half the cart, points expiring after a
// year.
type LoyaltyConfig struct {
	EarnRate          float64 // currency units per base point
	RedeemValue       float64 // currency value of 100 points
	RedeemCapFraction float64 // max share of the cart payable with points
	ExpiryDays        int
}

// CouponConfig holds coupon catalog configuration
type CouponConfig struct {
	SeedDefaults bool
}

// AdminConfig optionally bootstraps a dashboard account at startup
type AdminConfig struct {
	Email    string
	Password string
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	// Set defaults
	setDefaults()

	// Read configuration
	if err := viper.ReadInConfig(); err != nil {
		// It's okay if config file is not found, we'll use environment variables
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	// Unmarshal configuration
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// setDefaults sets default values for configuration
func setDefaults() {
	viper.SetDefault("Server.Port", "4000")
	viper.SetDefault("Server.AllowedHosts", []string{"localhost:3000"})
	viper.SetDefault("MongoDB.URI", "mongodb://localhost:27017")
	viper.SetDefault("MongoDB.Database", "printcraft-loyalty")
	viper.SetDefault("JWT.ExpiresIn", 24*60*60) // 24 hours
	viper.SetDefault("Loyalty.EarnRate", 10.0)
	viper.SetDefault("Loyalty.RedeemValue", 10.0)
	viper.SetDefault("Loyalty.RedeemCapFraction", 0.5)
	viper.SetDefault("Loyalty.ExpiryDays", 365)
	viper.SetDefault("Coupons.SeedDefaults", true)
	viper.SetDefault("LogLevel", "info")
}
