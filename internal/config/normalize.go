package config

import "strings"

func trimAll(fields ...*string) {
	for _, f := range fields {
		*f = strings.TrimSpace(*f)
	}
}

func orDefault[T comparable](v, fallback T) T {
	var zero T
	if v == zero {
		return fallback
	}
	return v
}

func normalizeDatabaseConfig(cfg DatabaseRuntimeConfig) DatabaseRuntimeConfig {
	trimAll(&cfg.DSN, &cfg.Host, &cfg.User, &cfg.Password, &cfg.Name, &cfg.Charset, &cfg.Loc, &cfg.Path)

	switch driver := strings.ToLower(strings.TrimSpace(cfg.Driver)); driver {
	case "", DriverMySQL, "mariadb":
		cfg.Driver = DriverMySQL
	case DriverSQLite, "sqlite3":
		cfg.Driver = DriverSQLite
	default:
		cfg.Driver = driver
	}

	cfg.Host = orDefault(cfg.Host, defaultDBHost)
	cfg.Port = orDefault(cfg.Port, defaultDBPort)
	cfg.User = orDefault(cfg.User, defaultDBUser)
	cfg.Name = orDefault(cfg.Name, defaultDBName)
	cfg.Charset = orDefault(cfg.Charset, defaultDBCharset)
	cfg.Loc = orDefault(cfg.Loc, defaultDBLoc)
	cfg.Path = orDefault(cfg.Path, defaultSQLitePath)
	cfg.Params = copyStringMap(cfg.Params)
	return cfg
}

func normalizeRedisConfig(cfg RedisRuntimeConfig) RedisRuntimeConfig {
	trimAll(&cfg.Host, &cfg.Username, &cfg.Password)
	cfg.URL = normalizeRedisRawURL(cfg.URL)
	if cfg.URL == "" {
		cfg.Host = orDefault(cfg.Host, defaultRedisHost)
	}
	cfg.Port = orDefault(cfg.Port, defaultRedisPort)
	return cfg
}

func normalizeRedisRawURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "redis://") || strings.HasPrefix(trimmed, "rediss://") {
		return trimmed
	}
	return "redis://" + trimmed
}

// normalizeShopifyConfig strips scheme and trailing slashes from the shop domain
// so "https://demo.myshopify.com/" and "demo.myshopify.com" resolve the same.
func normalizeShopifyConfig(cfg ShopifyRuntimeConfig) ShopifyRuntimeConfig {
	shop := strings.TrimSpace(cfg.ShopDomain)
	shop = strings.TrimPrefix(shop, "https://")
	shop = strings.TrimPrefix(shop, "http://")
	cfg.ShopDomain = strings.TrimRight(shop, "/")
	cfg.APIVersion = strings.TrimSpace(cfg.APIVersion)
	if cfg.APIVersion == "" {
		cfg.APIVersion = defaultShopifyAPIVersion
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultShopifyTimeout
	}
	return cfg
}

func normalizeOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(env string) string {
	trimmed := strings.ToLower(strings.TrimSpace(env))
	if trimmed == "" {
		return defaultEnv
	}
	return trimmed
}

func copyStringMap(input map[string]string) map[string]string {
	if input == nil {
		return nil
	}
	out := make(map[string]string, len(input))
	for key, value := range input {
		k := strings.TrimSpace(key)
		v := strings.TrimSpace(value)
		if k != "" && v != "" {
			out[k] = v
		}
	}
	return out
}
