package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// Custody modes for newly provisioned wallets
const (
	CustodyModeDerived = "derived"
	CustodyModeRemote  = "remote"
)

// Config holds all configuration values
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Stacks   StacksConfig
	Turnkey  TurnkeyConfig
	Wallet   WalletConfig
	Pricing  PricingConfig
	Tips     TipsConfig
	Jobs     JobsConfig
	Security SecurityConfig
	CORS     CORSConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port    string
	Env     string
	Version string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	AutoMigrate bool
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL      string
	PASSWORD string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

// StacksConfig selects the Stacks network and its API endpoints
type StacksConfig struct {
	Network     string
	CoreAPIURL  string
	ExplorerURL string
}

// TurnkeyConfig holds the remote custody provider credentials
type TurnkeyConfig struct {
	BaseURL        string
	OrganizationID string
	APIPublicKey   string
	APIPrivateKey  string
	PollInterval   time.Duration
	PollMaxWait    time.Duration
}

// Enabled reports whether API credentials are configured
func (c TurnkeyConfig) Enabled() bool {
	return c.OrganizationID != "" && c.APIPublicKey != "" && c.APIPrivateKey != ""
}

// WalletConfig controls how custodial wallets are provisioned
type WalletConfig struct {
	EncryptionSalt string
	CustodyMode    string
}

// PricingConfig controls USD conversion
type PricingConfig struct {
	Source         string
	FixedUSDPerSTX string
	CoinGeckoURL   string
	CacheTTL       time.Duration
}

// TipsConfig holds tip submission settings
type TipsConfig struct {
	RequireIdempotencyKey bool
	TipLinkBaseURL        string
}

// JobsConfig holds background job settings
type JobsConfig struct {
	PendingSweepInterval time.Duration
	PendingStaleAfter    time.Duration
}

// SecurityConfig holds security encryption keys
type SecurityConfig struct {
	SessionEncryptionKey string
}

// CORSConfig holds allowed browser origins
type CORSConfig struct {
	AllowedOrigins []string
}

// Load loads configuration from environment variables
func Load() *Config {
	network := getEnv("STACKS_NETWORK", "testnet")
	return &Config{
		Server: ServerConfig{
			Port:    getEnv("SERVER_PORT", "8080"),
			Env:     getEnv("SERVER_ENV", "development"),
			Version: getEnv("SERVER_VERSION", "0.1.0"),
		},
		Database: DatabaseConfig{
			Host:        getEnv("DB_HOST", "localhost"),
			Port:        getEnvAsInt("DB_PORT", 5432),
			User:        getEnv("DB_USER", "postgres"),
			Password:    getEnv("DB_PASSWORD", "postgres"),
			DBName:      getEnv("DB_NAME", "tipsats"),
			SSLMode:     getEnv("DB_SSLMODE", "disable"),
			AutoMigrate: getEnvAsBool("DB_AUTO_MIGRATE", false),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", "redis://localhost:6379"),
			PASSWORD: getEnv("REDIS_PASSWORD", ""),
		},
		JWT: JWTConfig{
			Secret:        getEnv("JWT_SECRET", "change-this-in-production"),
			AccessExpiry:  getEnvAsDuration("JWT_ACCESS_EXPIRY", 15*time.Minute),
			RefreshExpiry: getEnvAsDuration("JWT_REFRESH_EXPIRY", 7*24*time.Hour),
		},
		Stacks: StacksConfig{
			Network:     network,
			CoreAPIURL:  getEnv("STACKS_API_URL", ""),
			ExplorerURL: getEnv("STACKS_EXPLORER_URL", "https://explorer.stacks.co"),
		},
		Turnkey: TurnkeyConfig{
			BaseURL:        getEnv("TURNKEY_BASE_URL", "https://api.turnkey.com"),
			OrganizationID: getEnv("TURNKEY_ORGANIZATION_ID", ""),
			APIPublicKey:   getEnv("TURNKEY_API_PUBLIC_KEY", ""),
			APIPrivateKey:  getEnv("TURNKEY_API_PRIVATE_KEY", ""),
			PollInterval:   getEnvAsDuration("TURNKEY_POLL_INTERVAL", 250*time.Millisecond),
			PollMaxWait:    getEnvAsDuration("TURNKEY_POLL_MAX_WAIT", 30*time.Second),
		},
		Wallet: WalletConfig{
			EncryptionSalt: getEnv("WALLET_ENCRYPTION_SALT", ""),
			CustodyMode:    getEnv("WALLET_CUSTODY_MODE", CustodyModeDerived),
		},
		Pricing: PricingConfig{
			Source:         getEnv("PRICE_SOURCE", "fixed"),
			FixedUSDPerSTX: getEnv("PRICE_FIXED_USD_PER_STX", "0.5"),
			CoinGeckoURL:   getEnv("PRICE_COINGECKO_URL", "https://api.coingecko.com/api/v3"),
			CacheTTL:       getEnvAsDuration("PRICE_CACHE_TTL", time.Minute),
		},
		Tips: TipsConfig{
			RequireIdempotencyKey: getEnvAsBool("TIPS_REQUIRE_IDEMPOTENCY_KEY", false),
			TipLinkBaseURL:        getEnv("TIP_LINK_BASE_URL", "https://tipsats.app/tip"),
		},
		Jobs: JobsConfig{
			PendingSweepInterval: getEnvAsDuration("JOB_PENDING_SWEEP_INTERVAL", time.Minute),
			PendingStaleAfter:    getEnvAsDuration("JOB_PENDING_STALE_AFTER", 10*time.Minute),
		},
		Security: SecurityConfig{
			SessionEncryptionKey: getEnv("SESSION_ENCRYPTION_KEY", "0000000000000000000000000000000000000000000000000000000000000000"), // 32-bytes hex string
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		},
	}
}

// Validate reports configuration that must stop the process at startup
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Wallet.EncryptionSalt) == "" {
		return errors.New("WALLET_ENCRYPTION_SALT is required")
	}
	switch c.Stacks.Network {
	case "mainnet", "testnet":
	default:
		return errors.New("STACKS_NETWORK must be mainnet or testnet")
	}
	switch c.Wallet.CustodyMode {
	case CustodyModeDerived:
	case CustodyModeRemote:
		if !c.Turnkey.Enabled() {
			return errors.New("remote custody requires TURNKEY_ORGANIZATION_ID, TURNKEY_API_PUBLIC_KEY and TURNKEY_API_PRIVATE_KEY")
		}
	default:
		return errors.New("WALLET_CUSTODY_MODE must be derived or remote")
	}
	if c.Server.Env == "production" && c.JWT.Secret == "change-this-in-production" {
		return errors.New("JWT_SECRET must be set in production")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
