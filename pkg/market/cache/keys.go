package cache

import (
	"net/url"
	"strings"
)

// Namespace prefixes every cache key.
const Namespace = "marketdash"

// Key builds a provider-scoped key. Query parameters are encoded in sorted
// order so identical requests always map to the same key.
func Key(provider, path string, params url.Values) string {
	return formatKey(provider, path, params.Encode())
}

func formatKey(parts ...string) string {
	values := make([]string, 0, len(parts)+1)
	values = append(values, Namespace)
	for _, part := range parts {
		clean := strings.TrimSpace(part)
		if clean == "" {
			continue
		}
		values = append(values, clean)
	}
	return strings.Join(values, ":")
}
