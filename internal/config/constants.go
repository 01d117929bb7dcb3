package config

import "time"

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"
	defaultPort       = 2333
	defaultEnv        = "development"

	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"

	defaultDBDriver   = DriverMySQL
	defaultDBHost     = "127.0.0.1"
	defaultDBPort     = 3306
	defaultDBUser     = "root"
	defaultDBPassword = "password"
	defaultDBName     = "metafields"
	defaultDBCharset  = "utf8mb4"
	defaultDBLoc      = "Local"
	defaultSQLitePath = "data/metafields.db"

	defaultRedisHost = "localhost"
	defaultRedisPort = 6379
	defaultRedisDB   = 0

	defaultShopifyAPIVersion = "2024-07"
	defaultShopifyTimeout    = 30 * time.Second

	defaultPageSize       = 5
	maxPageSize           = 50
	defaultSessionTTL     = 30 * time.Minute
	defaultDefinitionsTTL = 5 * time.Minute

	defaultRateLimitMax    = 50
	defaultRateLimitWindow = time.Second
)

// Environment variables that override secrets from the YAML file.
const (
	EnvShopDomain  = "SHOPIFY_SHOP"
	EnvAccessToken = "SHOPIFY_ACCESS_TOKEN"
	EnvAPIKey      = "SHOPIFY_API_KEY"
	EnvAPISecret   = "SHOPIFY_API_SECRET"
	EnvDatabaseDSN = "DATABASE_DSN"
	EnvRedisURL    = "REDIS_URL"
)
