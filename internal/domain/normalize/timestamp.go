package normalize

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Timestamps are compared by the store's condition expressions, so every
// producer must emit one representation. The canonical form is a fixed-point
// decimal string of epoch seconds with millisecond precision and no trailing
// zeros ("1700000000.123"). Mixing float and fixed-point forms in the same
// comparison is how out-of-order bugs are born.

// CanonicalTimestamp converts an event timestamp to the canonical form.
// Accepted inputs: epoch seconds as float64/int/json.Number, a numeric
// string, or an RFC3339 / ISO-8601 datetime string.
func CanonicalTimestamp(v any) (string, error) {
	switch t := v.(type) {
	case float64:
		return canonicalFromFloat(t), nil
	case int:
		return strconv.Itoa(t), nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	case json.Number:
		return canonicalFromNumeric(t.String())
	case string:
		if s := strings.TrimSpace(t); s != "" {
			if c, err := canonicalFromNumeric(s); err == nil {
				return c, nil
			}
			if ts, err := parseDatetime(s); err == nil {
				return canonicalFromFloat(float64(ts.UnixMilli()) / 1000), nil
			}
		}
		return "", fmt.Errorf("timestamp %q is neither numeric nor a datetime", t)
	case time.Time:
		return canonicalFromFloat(float64(t.UnixMilli()) / 1000), nil
	default:
		return "", fmt.Errorf("unsupported timestamp type %T", v)
	}
}

// EpochNow is the canonical form of the given wall-clock instant.
func EpochNow(now time.Time) string {
	return canonicalFromFloat(float64(now.UnixMilli()) / 1000)
}

func canonicalFromFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', 3, 64)
	return trimFraction(s)
}

func canonicalFromNumeric(s string) (string, error) {
	if _, err := strconv.ParseFloat(s, 64); err != nil {
		return "", err
	}
	if !strings.Contains(s, ".") {
		return s, nil
	}
	// Truncate, don't re-parse: string round trips keep sub-second precision.
	parts := strings.SplitN(s, ".", 2)
	frac := parts[1]
	if len(frac) > 3 {
		frac = frac[:3]
	}
	return trimFraction(parts[0] + "." + frac), nil
}

func trimFraction(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

func parseDatetime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized datetime %q", s)
}

// CompareTimestamps orders two canonical timestamps without converting to
// binary floats. Returns -1, 0 or 1.
func CompareTimestamps(a, b string) int {
	ai, af := splitDecimal(a)
	bi, bf := splitDecimal(b)
	if ai != bi {
		if len(ai) != len(bi) {
			if len(ai) < len(bi) {
				return -1
			}
			return 1
		}
		if ai < bi {
			return -1
		}
		return 1
	}
	// Pad fractions to equal width, then compare lexically.
	for len(af) < len(bf) {
		af += "0"
	}
	for len(bf) < len(af) {
		bf += "0"
	}
	if af == bf {
		return 0
	}
	if af < bf {
		return -1
	}
	return 1
}

func splitDecimal(s string) (intPart, fracPart string) {
	parts := strings.SplitN(s, ".", 2)
	intPart = parts[0]
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	return intPart, fracPart
}
