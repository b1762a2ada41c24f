// FILE: lixenwraith/envchain/duration.go
package envchain

import (
	"math"
	"time"
)

// durationParts are the sub-keys read by Duration, largest unit first.
var durationParts = []struct {
	name string
	unit time.Duration
}{
	{"weeks", 7 * 24 * time.Hour},
	{"days", 24 * time.Hour},
	{"hours", time.Hour},
	{"minutes", time.Minute},
	{"seconds", time.Second},
	{"milliseconds", time.Millisecond},
	{"microseconds", time.Microsecond},
}

// Duration composes a duration from up to seven integer sub-keys under key:
// weeks, days, hours, minutes, seconds, milliseconds and microseconds.
//
//	TIMEOUT__MINUTES=1
//	TIMEOUT__SECONDS=30   -> env.Duration("timeout") == 90s
//
// If none of the sub-keys is set the duration is missing and the Default /
// Required contract applies. If at least one is set, even to 0, the unset ones
// count as 0.
func (e *Env) Duration(key string, opts ...Option[time.Duration]) (time.Duration, bool, error) {
	fb := newFallback(opts)
	fullKey := qualifiedKey(e.src, key)
	if key == "" {
		return 0, false, newError(ErrInvalidKey, fullKey, "key cannot be empty")
	}

	scope := e
	for _, segment := range splitKey(key) {
		var err error
		if scope, err = scope.Scope(segment); err != nil {
			return 0, false, err
		}
	}

	var total time.Duration
	configured := false
	for _, part := range durationParts {
		n, ok, err := scope.Int(part.name)
		if err != nil {
			return 0, false, err
		}
		if !ok {
			continue
		}
		configured = true

		if total, ok = addScaled(total, n, part.unit); !ok {
			return 0, false, newError(ErrMalformed, fullKey, "duration overflows at %s=%d", part.name, n)
		}
	}

	if !configured {
		return fb.settle(fullKey)
	}
	return total, true, nil
}

// addScaled returns total + n*unit, reporting false on int64 overflow.
func addScaled(total time.Duration, n int, unit time.Duration) (time.Duration, bool) {
	d := time.Duration(n)
	if d > math.MaxInt64/unit || d < math.MinInt64/unit {
		return 0, false
	}
	d *= unit
	if (d > 0 && total > math.MaxInt64-d) || (d < 0 && total < math.MinInt64-d) {
		return 0, false
	}
	return total + d, true
}
