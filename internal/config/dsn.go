package config

import (
	"fmt"
	"net"
	neturl "net/url"
	"strconv"
	"strings"
	"time"

	mysqlDriver "github.com/go-sql-driver/mysql"
)

// DSNValue returns the explicit DSN when set, otherwise a MySQL DSN built from
// the discrete host/user/name fields.
func (c DatabaseRuntimeConfig) DSNValue() string {
	if v := strings.TrimSpace(c.DSN); v != "" {
		return v
	}
	if c.Driver == DriverSQLite {
		return c.Path
	}

	host := c.Host
	if host == "" {
		host = defaultDBHost
	}
	port := c.Port
	if port == 0 {
		port = defaultDBPort
	}

	mc := mysqlDriver.NewConfig()
	mc.User = c.User
	mc.Passwd = c.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	mc.DBName = c.Name
	mc.ParseTime = c.ParseTime
	mc.Loc = resolveLocation(c.Loc)

	params := map[string]string{}
	for k, v := range c.Params {
		params[k] = v
	}
	if _, ok := params["charset"]; !ok && c.Charset != "" {
		params["charset"] = c.Charset
	}
	if len(params) > 0 {
		mc.Params = params
	}
	return mc.FormatDSN()
}

// ValidateMySQLDSN reports whether dsn parses as a go-sql-driver DSN.
func ValidateMySQLDSN(dsn string) error {
	if _, err := mysqlDriver.ParseDSN(dsn); err != nil {
		return fmt.Errorf("invalid mysql dsn: %w", err)
	}
	return nil
}

func resolveLocation(name string) *time.Location {
	switch strings.TrimSpace(name) {
	case "", "Local":
		return time.Local
	case "UTC":
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.Local
	}
	return loc
}

func (c RedisRuntimeConfig) URLValue() string {
	if u := normalizeRedisRawURL(c.URL); u != "" {
		return u
	}

	host := c.Host
	if host == "" {
		host = defaultRedisHost
	}
	port := c.Port
	if port == 0 {
		port = defaultRedisPort
	}
	db := c.DB
	if db < 0 {
		db = defaultRedisDB
	}

	scheme := "redis"
	if c.TLS {
		scheme = "rediss"
	}

	u := &neturl.URL{
		Scheme: scheme,
		Host:   net.JoinHostPort(host, strconv.Itoa(port)),
		Path:   "/" + strconv.Itoa(db),
	}
	if c.Username != "" {
		if c.Password != "" {
			u.User = neturl.UserPassword(c.Username, c.Password)
		} else {
			u.User = neturl.User(c.Username)
		}
	} else if c.Password != "" {
		u.User = neturl.UserPassword("", c.Password)
	}
	return u.String()
}
