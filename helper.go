// File: lixenwraith/envchain/helper.go
package envchain

import "strings"

// setNestedValue sets a value in a nested map using a dot-notation path.
// It creates intermediate maps if they don't exist.
// If a segment exists but is not a map, it will be overwritten by a new map.
func setNestedValue(nested map[string]any, path string, value any) {
	segments := splitKey(path)
	current := nested

	// Iterate through segments up to the second-to-last one
	for _, segment := range segments[:len(segments)-1] {
		next, exists := current[segment]
		if nextMap, isMap := next.(map[string]any); exists && isMap {
			current = nextMap
			continue
		}
		newMap := make(map[string]any)
		current[segment] = newMap
		current = newMap
	}

	current[segments[len(segments)-1]] = value
}

// isValidKeySegment checks if a single path segment can name a key.
// Letters, digits, underscores and dashes are accepted; anything outside
// lower-case kebab-case still resolves but draws a warning at lookup time.
func isValidKeySegment(s string) bool {
	if len(s) == 0 || strings.ContainsRune(s, '.') {
		return false
	}

	for _, r := range s {
		isLetter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		if !(isLetter || isDigit || r == '_' || r == '-') {
			return false
		}
	}
	return true
}
