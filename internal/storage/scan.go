package storage

import (
	"fmt"
	"strconv"
	"time"
)

// Value coercion helpers for rows materialized by Repository.Query. Drivers
// disagree on scan types (SQLite returns int64 for booleans, MySQL returns
// []byte for text), so consumers of the small configuration and audit tables
// normalize through these instead of type-asserting driver-specific types.

// AsString renders v as a string; nil becomes "".
func AsString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return fmt.Sprint(t)
	}
}

// AsInt64 coerces numeric scan values to int64; anything else yields 0.
func AsInt64(v any) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int32:
		return int64(t)
	case int:
		return int64(t)
	case float64:
		return int64(t)
	case []byte:
		n, _ := strconv.ParseInt(string(t), 10, 64)
		return n
	case string:
		n, _ := strconv.ParseInt(t, 10, 64)
		return n
	default:
		return 0
	}
}

// AsBool coerces boolean scan values. SQLite and MySQL report 0/1 integers,
// Postgres reports bool. nil (column default not yet applied, or NULL)
// reports false.
func AsBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case int64:
		return t != 0
	case int:
		return t != 0
	case []byte:
		return len(t) > 0 && t[0] != '0'
	case string:
		return t == "1" || t == "true" || t == "TRUE"
	default:
		return false
	}
}

// AsTime coerces timestamp scan values. Text timestamps (SQLite stores
// CURRENT_TIMESTAMP as "2006-01-02 15:04:05") are parsed in UTC; unparseable
// values yield the zero time.
func AsTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		return parseSQLTime(t)
	case []byte:
		return parseSQLTime(string(t))
	default:
		return time.Time{}
	}
}

func parseSQLTime(s string) time.Time {
	for _, layout := range []string{
		"2006-01-02 15:04:05",
		time.RFC3339,
		"2006-01-02T15:04:05",
	} {
		if ts, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return ts
		}
	}
	return time.Time{}
}
