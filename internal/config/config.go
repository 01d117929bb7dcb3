package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Load reads the YAML config file, applies env overrides and validates the result.
// A .env file next to the working directory is loaded first when present.
func Load(configPath string) (*AppConfig, error) {
	path := strings.TrimSpace(configPath)
	if path == "" {
		path = DefaultConfigPath
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %q: %w", path, err)
	}
	cfg, err := Parse(content)
	if err != nil {
		return nil, fmt.Errorf("parse config file %q: %w", path, err)
	}
	if abs, err := filepath.Abs(path); err == nil {
		cfg.BaseDir = filepath.Dir(abs)
	}
	return cfg, nil
}

// Parse decodes YAML content into a normalized AppConfig.
func Parse(content []byte) (*AppConfig, error) {
	cfg := defaultAppConfig()

	raw := rawAppConfig{}
	if len(bytes.TrimSpace(content)) > 0 {
		decoder := yaml.NewDecoder(bytes.NewReader(content))
		decoder.KnownFields(true)
		if err := decoder.Decode(&raw); err != nil {
			return nil, err
		}
	}

	applyRawAppConfig(&cfg, raw)
	applyEnvOverrides(&cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func defaultAppConfig() AppConfig {
	cfg := AppConfig{
		Port: defaultPort,
		Env:  defaultEnv,
		Database: DatabaseRuntimeConfig{
			Driver:    defaultDBDriver,
			Host:      defaultDBHost,
			Port:      defaultDBPort,
			User:      defaultDBUser,
			Password:  defaultDBPassword,
			Name:      defaultDBName,
			Charset:   defaultDBCharset,
			ParseTime: true,
			Loc:       defaultDBLoc,
			Path:      defaultSQLitePath,
		},
		Redis: RedisRuntimeConfig{
			Host: defaultRedisHost,
			Port: defaultRedisPort,
			DB:   defaultRedisDB,
		},
		Shopify: ShopifyRuntimeConfig{
			APIVersion: defaultShopifyAPIVersion,
			Timeout:    defaultShopifyTimeout,
		},
		Editor: EditorRuntimeConfig{
			PageSize:       defaultPageSize,
			SessionTTL:     defaultSessionTTL,
			DefinitionsTTL: defaultDefinitionsTTL,
		},
		RateLimit: RateLimitRuntimeConfig{
			Max:    defaultRateLimitMax,
			Window: defaultRateLimitWindow,
		},
	}
	cfg.DSN = cfg.Database.DSNValue()
	cfg.RedisURL = cfg.Redis.URLValue()
	return cfg
}

func applyRawAppConfig(cfg *AppConfig, raw rawAppConfig) {
	if raw.Port != 0 {
		cfg.Port = raw.Port
	}
	if v := strings.TrimSpace(raw.Env); v != "" {
		cfg.Env = v
	}
	if raw.AllowedOrigins != nil {
		cfg.AllowedOrigins = normalizeOrigins(raw.AllowedOrigins)
	}
	if v := strings.TrimSpace(raw.Timezone); v != "" {
		cfg.Timezone = v
	}
	if v := strings.TrimSpace(raw.Paths.Logs); v != "" {
		cfg.Paths.Logs = v
	}

	cfg.Database = applyRawDatabaseConfig(cfg.Database, raw)
	cfg.Redis = applyRawRedisConfig(cfg.Redis, raw)
	cfg.Shopify = applyRawShopifyConfig(cfg.Shopify, raw.Shopify)
	cfg.Editor = applyRawEditorConfig(cfg.Editor, raw.Editor)

	if raw.RateLimit.Max != 0 {
		cfg.RateLimit.Max = raw.RateLimit.Max
	}
	if raw.RateLimit.WindowSeconds != 0 {
		cfg.RateLimit.Window = time.Duration(raw.RateLimit.WindowSeconds) * time.Second
	}

	cfg.DSN = cfg.Database.DSNValue()
	cfg.RedisURL = cfg.Redis.URLValue()
	cfg.Env = normalizeEnv(cfg.Env)
}

func applyRawDatabaseConfig(current DatabaseRuntimeConfig, raw rawAppConfig) DatabaseRuntimeConfig {
	cfg := current
	db := raw.Database

	if v := strings.TrimSpace(db.Driver); v != "" {
		cfg.Driver = v
	}
	if v := strings.TrimSpace(db.DSN); v != "" {
		cfg.DSN = v
	}
	if v := strings.TrimSpace(raw.DSN); v != "" {
		cfg.DSN = v
	}
	if v := strings.TrimSpace(db.Host); v != "" {
		cfg.Host = v
	}
	if db.Port != 0 {
		cfg.Port = db.Port
	}
	if v := strings.TrimSpace(db.User); v != "" {
		cfg.User = v
	}
	if v := strings.TrimSpace(db.Password); v != "" {
		cfg.Password = v
	}
	if v := strings.TrimSpace(db.Name); v != "" {
		cfg.Name = v
	}
	if v := strings.TrimSpace(db.Charset); v != "" {
		cfg.Charset = v
	}
	if db.ParseTime != nil {
		cfg.ParseTime = *db.ParseTime
	}
	if v := strings.TrimSpace(db.Loc); v != "" {
		cfg.Loc = v
	}
	if db.Params != nil {
		cfg.Params = copyStringMap(db.Params)
	}
	if v := strings.TrimSpace(db.Path); v != "" {
		cfg.Path = v
	}

	return normalizeDatabaseConfig(cfg)
}

func applyRawRedisConfig(current RedisRuntimeConfig, raw rawAppConfig) RedisRuntimeConfig {
	cfg := current
	rc := raw.Redis

	if v := strings.TrimSpace(rc.URL); v != "" {
		cfg.URL = v
	}
	if v := strings.TrimSpace(raw.RedisURL); v != "" {
		cfg.URL = v
	}
	if v := strings.TrimSpace(rc.Host); v != "" {
		cfg.Host = v
	}
	if rc.Port != 0 {
		cfg.Port = rc.Port
	}
	if v := strings.TrimSpace(rc.Username); v != "" {
		cfg.Username = v
	}
	if v := strings.TrimSpace(rc.Password); v != "" {
		cfg.Password = v
	}
	if rc.DB != nil {
		cfg.DB = *rc.DB
	}
	if rc.TLS != nil {
		cfg.TLS = *rc.TLS
	}

	return normalizeRedisConfig(cfg)
}

func applyRawShopifyConfig(current ShopifyRuntimeConfig, raw rawShopifyConfig) ShopifyRuntimeConfig {
	cfg := current
	if v := strings.TrimSpace(raw.Shop); v != "" {
		cfg.ShopDomain = v
	}
	if v := strings.TrimSpace(raw.APIVersion); v != "" {
		cfg.APIVersion = v
	}
	if v := strings.TrimSpace(raw.AccessToken); v != "" {
		cfg.AccessToken = v
	}
	if v := strings.TrimSpace(raw.APIKey); v != "" {
		cfg.APIKey = v
	}
	if v := strings.TrimSpace(raw.APISecret); v != "" {
		cfg.APISecret = v
	}
	if raw.TimeoutSeconds > 0 {
		cfg.Timeout = time.Duration(raw.TimeoutSeconds) * time.Second
	}
	return normalizeShopifyConfig(cfg)
}

func applyRawEditorConfig(current EditorRuntimeConfig, raw rawEditorConfig) EditorRuntimeConfig {
	cfg := current
	if raw.PageSize != 0 {
		cfg.PageSize = raw.PageSize
	}
	if raw.SessionTTLMinutes > 0 {
		cfg.SessionTTL = time.Duration(raw.SessionTTLMinutes) * time.Minute
	}
	if raw.DefinitionsTTLSeconds > 0 {
		cfg.DefinitionsTTL = time.Duration(raw.DefinitionsTTLSeconds) * time.Second
	}
	return cfg
}

// applyEnvOverrides lets deployments keep secrets out of the YAML file.
func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvShopDomain)); v != "" {
		cfg.Shopify.ShopDomain = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvAccessToken)); v != "" {
		cfg.Shopify.AccessToken = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvAPIKey)); v != "" {
		cfg.Shopify.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvAPISecret)); v != "" {
		cfg.Shopify.APISecret = v
	}
	cfg.Shopify = normalizeShopifyConfig(cfg.Shopify)

	if v := strings.TrimSpace(os.Getenv(EnvDatabaseDSN)); v != "" {
		cfg.Database.DSN = v
		cfg.DSN = cfg.Database.DSNValue()
	}
	if v := strings.TrimSpace(os.Getenv(EnvRedisURL)); v != "" {
		cfg.Redis.URL = normalizeRedisRawURL(v)
		cfg.RedisURL = cfg.Redis.URLValue()
	}
}

func (c *AppConfig) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d, expected 1-65535", c.Port)
	}
	switch c.Database.Driver {
	case DriverMySQL:
		if c.Database.Port < 1 || c.Database.Port > 65535 {
			return fmt.Errorf("invalid database.port %d, expected 1-65535", c.Database.Port)
		}
	case DriverSQLite:
		if c.Database.Path == "" {
			return errors.New("database.path is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("unsupported database.driver %q, expected mysql or sqlite", c.Database.Driver)
	}
	if c.Redis.Port < 1 || c.Redis.Port > 65535 {
		return fmt.Errorf("invalid redis.port %d, expected 1-65535", c.Redis.Port)
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("invalid redis.db %d, expected >= 0", c.Redis.DB)
	}
	if c.Editor.PageSize < 1 || c.Editor.PageSize > maxPageSize {
		return fmt.Errorf("invalid editor.page_size %d, expected 1-%d", c.Editor.PageSize, maxPageSize)
	}
	if c.RateLimit.Max < 0 {
		return fmt.Errorf("invalid rate_limit.max %d, expected >= 0", c.RateLimit.Max)
	}
	return nil
}

func (c *AppConfig) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}

// LogDir resolves the native log directory.
func (c *AppConfig) LogDir() string {
	return resolvePath(c.BaseDir, c.Paths.Logs, "logs")
}

// SQLitePath resolves the sqlite database file. In-memory and file: URIs are
// passed through untouched.
func (c *AppConfig) SQLitePath() string {
	if isSQLiteURI(c.Database.Path) {
		return c.Database.Path
	}
	return resolvePath(c.BaseDir, c.Database.Path, defaultSQLitePath)
}
