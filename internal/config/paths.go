package config

import (
	"os"
	"path/filepath"
	"strings"
)

// resolvePath anchors a relative runtime path at base, the directory holding
// the config file. An empty base falls back to the working directory.
func resolvePath(base, raw, fallback string) string {
	target := strings.TrimSpace(raw)
	if target == "" {
		target = fallback
	}
	if filepath.IsAbs(target) {
		return filepath.Clean(target)
	}
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return filepath.Clean(target)
		}
		base = wd
	}
	return filepath.Join(base, target)
}

func isSQLiteURI(path string) bool {
	return path == ":memory:" || strings.HasPrefix(path, "file:")
}
