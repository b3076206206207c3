package rollup

import (
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// Unix values at or above this magnitude are read as milliseconds. As seconds it would be year 5138.
const unixMillisThreshold = 1e11

// Numeric strings below this magnitude (2001-09-09 as seconds) are not epochs; "20240501" is a date.
const minEpochString = 1e9

const compactDate = "20060102"

// NormalizeTime converts any supported timestamp shape to a time.Time. The second result is false when the value is
// absent or cannot be interpreted; callers treat that as "no timestamp", never as an error.
//
// Supported shapes: time.Time, *time.Time, date strings (RFC3339, YYYYMMDD and the layouts spf13/cast knows), numeric
// strings of at least ten digits, unix seconds or milliseconds, and Firestore-style maps with seconds/nanoseconds or _seconds/_nanoseconds.
func NormalizeTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return t, !t.IsZero()
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, !t.IsZero()
	case string:
		return parseTimeString(t)
	case json.Number:
		return parseTimeString(t.String())
	case map[string]any:
		return fromSecondsMap(t)
	case map[string]int64:
		m := make(map[string]any, len(t))
		for k, v := range t {
			m[k] = v
		}
		return fromSecondsMap(m)
	case int, int32, int64, uint, uint32, uint64, float32, float64:
		f, err := cast.ToFloat64E(t)
		if err != nil {
			return time.Time{}, false
		}
		return fromUnix(f)
	}

	parsed, err := cast.ToTimeE(v)
	if err != nil || parsed.IsZero() {
		return time.Time{}, false
	}
	return parsed, true
}

func parseTimeString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if len(s) == len(compactDate) && isDigits(s) {
		parsed, err := time.Parse(compactDate, s)
		return parsed, err == nil
	}
	if f, err := cast.ToFloat64E(s); err == nil {
		if math.Abs(f) < minEpochString {
			return time.Time{}, false
		}
		return fromUnix(f)
	}
	parsed, err := cast.ToTimeE(s)
	if err != nil || parsed.IsZero() {
		return time.Time{}, false
	}
	return parsed, true
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func fromUnix(f float64) (time.Time, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return time.Time{}, false
	}
	if f >= unixMillisThreshold {
		return time.UnixMilli(int64(f)).UTC(), true
	}
	sec, frac := math.Modf(f)
	return time.Unix(int64(sec), int64(frac*1e9)).UTC(), true
}

func fromSecondsMap(m map[string]any) (time.Time, bool) {
	rawSec, ok := m["seconds"]
	if !ok {
		rawSec, ok = m["_seconds"]
	}
	if !ok {
		return time.Time{}, false
	}
	sec, err := toInt64(rawSec)
	if err != nil || sec <= 0 {
		return time.Time{}, false
	}

	rawNanos, ok := m["nanoseconds"]
	if !ok {
		rawNanos = m["_nanoseconds"]
	}
	nanos, err := toInt64(rawNanos)
	if err != nil || nanos < 0 {
		nanos = 0
	}
	return time.Unix(sec, nanos).UTC(), true
}

func toInt64(v any) (int64, error) {
	if n, ok := v.(json.Number); ok {
		f, err := n.Float64()
		return int64(f), err
	}
	return cast.ToInt64E(v)
}
