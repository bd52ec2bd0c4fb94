package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"
)

// Config holds all application configuration
type Config struct {
	// HTTP server
	ListenAddr string

	// Database configuration
	DatabaseURL string

	// Auth
	JWTSecret string
	AdminCode string

	// Game settings
	SignupBonus      int64         // gold granted on registration
	MinBet           int64         // minimum stake for spins and peer bets
	SpinDelay        time.Duration // artificial delay before a spin resolves
	MinWithdrawal    int64         // balance threshold for withdrawal eligibility
	MaxAccountsPerIP int64         // registration cap per source address, 0 disables

	// Environment: "development", "production" or "test"
	Environment string
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		ListenAddr:  os.Getenv("LISTEN_ADDR"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		AdminCode:   os.Getenv("ADMIN_CODE"),

		// Game settings with defaults
		SignupBonus:      10,
		MinBet:           10,
		SpinDelay:        3 * time.Second,
		MinWithdrawal:    200,
		MaxAccountsPerIP: 5,

		Environment: os.Getenv("ENVIRONMENT"),
	}

	if config.ListenAddr == "" {
		config.ListenAddr = ":8080"
	}

	// Override defaults if environment variables are set
	if bonus := os.Getenv("SIGNUP_BONUS"); bonus != "" {
		if parsed, err := strconv.ParseInt(bonus, 10, 64); err == nil {
			config.SignupBonus = parsed
		}
	}
	if minBet := os.Getenv("MIN_BET"); minBet != "" {
		if parsed, err := strconv.ParseInt(minBet, 10, 64); err == nil {
			config.MinBet = parsed
		}
	}
	if delay := os.Getenv("SPIN_DELAY"); delay != "" {
		if parsed, err := time.ParseDuration(delay); err == nil {
			config.SpinDelay = parsed
		}
	}
	if min := os.Getenv("MIN_WITHDRAWAL"); min != "" {
		if parsed, err := strconv.ParseInt(min, 10, 64); err == nil {
			config.MinWithdrawal = parsed
		}
	}
	if cap := os.Getenv("MAX_ACCOUNTS_PER_IP"); cap != "" {
		if parsed, err := strconv.ParseInt(cap, 10, 64); err == nil {
			config.MaxAccountsPerIP = parsed
		}
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		if config.JWTSecret == "" {
			return nil, fmt.Errorf("JWT_SECRET is required")
		}
		if config.AdminCode == "" {
			return nil, fmt.Errorf("ADMIN_CODE is required")
		}
	}

	return config, nil
}
