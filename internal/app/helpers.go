package app

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mx-space/metafields/internal/config"
)

// applyRuntimeSettings pins the process timezone used by log lines and cron
// next-run dates.
func applyRuntimeSettings(cfg *config.AppConfig) error {
	name := strings.TrimSpace(cfg.Timezone)
	if name == "" {
		return nil
	}
	loc, err := parseTimezoneLocation(name)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", name, err)
	}
	time.Local = loc
	return os.Setenv("TZ", name)
}

// parseTimezoneLocation accepts an IANA name or a fixed "+hh:mm" offset.
func parseTimezoneLocation(name string) (*time.Location, error) {
	if loc, err := time.LoadLocation(name); err == nil {
		return loc, nil
	}
	ref, err := time.Parse("-07:00", name)
	if err != nil {
		return nil, errors.New("want an IANA zone such as Asia/Shanghai or an offset such as -05:00")
	}
	_, offset := ref.Zone()
	return time.FixedZone(name, offset), nil
}

func humanizeDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return d.Truncate(time.Second).String()
	case d < time.Hour:
		return d.Truncate(time.Minute).String()
	case d < 24*time.Hour:
		return d.Truncate(time.Hour).String()
	}
	return d.Truncate(24 * time.Hour).String()
}
