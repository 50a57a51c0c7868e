// Package probe reads loosely specified venue JSON by trying candidate field
// names in order and returning the first one present.
package probe

import (
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// First returns the first candidate path that exists on v.
func First(v gjson.Result, paths ...string) (gjson.Result, bool) {
	for _, p := range paths {
		if r := v.Get(p); r.Exists() && r.Type != gjson.Null {
			return r, true
		}
	}
	return gjson.Result{}, false
}

// String returns the first candidate holding a non-blank value, trimmed.
func String(v gjson.Result, paths ...string) (string, bool) {
	for _, p := range paths {
		r := v.Get(p)
		if !r.Exists() || r.Type == gjson.Null {
			continue
		}
		if s := strings.TrimSpace(r.String()); s != "" {
			return s, true
		}
	}
	return "", false
}

// Float returns the first present candidate that parses as a finite number.
// Venues mix JSON numbers and numeric strings, both are accepted.
func Float(v gjson.Result, paths ...string) (float64, bool) {
	for _, p := range paths {
		r := v.Get(p)
		if !r.Exists() {
			continue
		}
		if f, ok := toFloat(r); ok {
			return f, true
		}
	}
	return 0, false
}

// Int returns the first present candidate as an integer (e.g. ms timestamps).
func Int(v gjson.Result, paths ...string) (int64, bool) {
	for _, p := range paths {
		r := v.Get(p)
		switch r.Type {
		case gjson.Number:
			return r.Int(), true
		case gjson.String:
			if n, err := strconv.ParseInt(strings.TrimSpace(r.Str), 10, 64); err == nil {
				return n, true
			}
			if f, err := strconv.ParseFloat(strings.TrimSpace(r.Str), 64); err == nil {
				return int64(f), true
			}
		}
	}
	return 0, false
}

// Array returns the first candidate that is a JSON array. An empty path
// selects v itself.
func Array(v gjson.Result, paths ...string) ([]gjson.Result, bool) {
	for _, p := range paths {
		r := v
		if p != "" {
			r = v.Get(p)
		}
		if r.IsArray() {
			return r.Array(), true
		}
	}
	return nil, false
}

func toFloat(r gjson.Result) (float64, bool) {
	switch r.Type {
	case gjson.Number:
		return finite(r.Num)
	case gjson.String:
		f, err := strconv.ParseFloat(strings.TrimSpace(r.Str), 64)
		if err != nil {
			return 0, false
		}
		return finite(f)
	default:
		return 0, false
	}
}

func finite(f float64) (float64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
