package config

import "time"

// AppConfig holds runtime startup configuration loaded from YAML.
type AppConfig struct {
	Port           int
	Env            string
	DSN            string
	RedisURL       string
	AllowedOrigins []string
	Timezone       string
	Paths          RuntimePathsConfig
	Database       DatabaseRuntimeConfig
	Redis          RedisRuntimeConfig
	Shopify        ShopifyRuntimeConfig
	Editor         EditorRuntimeConfig
	RateLimit      RateLimitRuntimeConfig

	// BaseDir is the directory of the loaded config file.
	BaseDir string
}

type DatabaseRuntimeConfig struct {
	Driver    string
	DSN       string
	Host      string
	Port      int
	User      string
	Password  string
	Name      string
	Charset   string
	ParseTime bool
	Loc       string
	Params    map[string]string
	Path      string // sqlite file path
}

type RedisRuntimeConfig struct {
	URL      string
	Host     string
	Port     int
	Username string
	Password string
	DB       int
	TLS      bool
}

// ShopifyRuntimeConfig addresses the Admin GraphQL API of a single shop.
type ShopifyRuntimeConfig struct {
	ShopDomain  string
	APIVersion  string
	AccessToken string
	APIKey      string
	APISecret   string
	Timeout     time.Duration
}

type EditorRuntimeConfig struct {
	PageSize       int
	SessionTTL     time.Duration
	DefinitionsTTL time.Duration
}

type RateLimitRuntimeConfig struct {
	Max    int
	Window time.Duration
}

type RuntimePathsConfig struct {
	Logs string
}

type rawAppConfig struct {
	Port           int                `yaml:"port"`
	Env            string             `yaml:"env"`
	DSN            string             `yaml:"dsn"`
	RedisURL       string             `yaml:"redis_url"`
	AllowedOrigins []string           `yaml:"allowed_origins"`
	Timezone       string             `yaml:"timezone"`
	Paths          rawPathsConfig     `yaml:"paths"`
	Database       rawDatabaseConfig  `yaml:"database"`
	Redis          rawRedisConfig     `yaml:"redis"`
	Shopify        rawShopifyConfig   `yaml:"shopify"`
	Editor         rawEditorConfig    `yaml:"editor"`
	RateLimit      rawRateLimitConfig `yaml:"rate_limit"`
}

type rawDatabaseConfig struct {
	Driver    string            `yaml:"driver"`
	DSN       string            `yaml:"dsn"`
	Host      string            `yaml:"host"`
	Port      int               `yaml:"port"`
	User      string            `yaml:"user"`
	Password  string            `yaml:"password"`
	Name      string            `yaml:"name"`
	Charset   string            `yaml:"charset"`
	ParseTime *bool             `yaml:"parse_time"`
	Loc       string            `yaml:"loc"`
	Params    map[string]string `yaml:"params"`
	Path      string            `yaml:"path"`
}

type rawRedisConfig struct {
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DB       *int   `yaml:"db"`
	TLS      *bool  `yaml:"tls"`
}

type rawShopifyConfig struct {
	Shop           string `yaml:"shop"`
	APIVersion     string `yaml:"api_version"`
	AccessToken    string `yaml:"access_token"`
	APIKey         string `yaml:"api_key"`
	APISecret      string `yaml:"api_secret"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type rawEditorConfig struct {
	PageSize              int `yaml:"page_size"`
	SessionTTLMinutes     int `yaml:"session_ttl_minutes"`
	DefinitionsTTLSeconds int `yaml:"definitions_ttl_seconds"`
}

type rawRateLimitConfig struct {
	Max           int `yaml:"max"`
	WindowSeconds int `yaml:"window_seconds"`
}

type rawPathsConfig struct {
	Logs string `yaml:"logs"`
}
