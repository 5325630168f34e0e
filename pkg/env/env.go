// Package env reads process settings that must be known before the typed
// config is loaded, such as the log format used while bootstrapping.
package env

import (
	"os"
	"strings"
)

const prefix = "FASTFOOD_"

// Get returns FASTFOOD_<key>, then the bare key, then fallback. Blank values
// count as unset.
func Get(key, fallback string) string {
	for _, name := range []string{prefix + key, key} {
		if val := strings.TrimSpace(os.Getenv(name)); val != "" {
			return val
		}
	}
	return fallback
}
