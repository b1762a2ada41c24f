// FILE: lixenwraith/envchain/key.go
package envchain

import (
	"strings"
)

// EnvKey converts a logical key into the physical name used by environment-style
// sources: every dot-separated segment has dashes replaced with underscores and
// is upper-cased, and segments are joined with a double underscore.
//
//	EnvKey("database.pool-size") == "DATABASE__POOL_SIZE"
func EnvKey(key string) string {
	segments := splitKey(key)
	for i, segment := range segments {
		segments[i] = strings.ToUpper(strings.ReplaceAll(segment, "-", "_"))
	}
	return strings.Join(segments, "__")
}

// splitKey splits a logical key into its dot-separated segments.
func splitKey(key string) []string {
	return strings.Split(key, ".")
}

// joinKey prepends a scope segment to a logical key.
func joinKey(prefix, key string) string {
	return prefix + "." + key
}

// isKebabCase reports whether every segment of key is lower-case kebab-case.
// Keys failing this check still resolve; the caller only emits a warning.
func isKebabCase(key string) bool {
	for _, segment := range splitKey(key) {
		if !isKebabSegment(segment) {
			return false
		}
	}
	return true
}

// isKebabSegment checks a single segment: lower-case ASCII letters, digits and dashes.
func isKebabSegment(s string) bool {
	if len(s) == 0 {
		return false
	}
	for _, r := range s {
		isLower := r >= 'a' && r <= 'z'
		isDigit := r >= '0' && r <= '9'
		if !(isLower || isDigit || r == '-') {
			return false
		}
	}
	return true
}

// kebabCase converts a Go identifier such as "PoolSize" or "HTTPTimeout" into
// its kebab-case key form ("pool-size", "http-timeout").
func kebabCase(name string) string {
	runes := []rune(name)
	var b strings.Builder
	for i, r := range runes {
		isUpper := r >= 'A' && r <= 'Z'
		if isUpper {
			if i > 0 {
				prevLower := runes[i-1] >= 'a' && runes[i-1] <= 'z' || runes[i-1] >= '0' && runes[i-1] <= '9'
				nextLower := i+1 < len(runes) && runes[i+1] >= 'a' && runes[i+1] <= 'z'
				prevUpper := runes[i-1] >= 'A' && runes[i-1] <= 'Z'
				if prevLower || (prevUpper && nextLower) {
					b.WriteByte('-')
				}
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		if r == '_' {
			b.WriteByte('-')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
