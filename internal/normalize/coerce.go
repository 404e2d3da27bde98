package normalize

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/guregu/null/v6"
	"github.com/spf13/cast"
)

// placeholders are provider spellings of "no value". They map to unknown
// without being reported as coercion failures.
var placeholders = map[string]struct{}{
	"":     {},
	"n/a":  {},
	"na":   {},
	"-":    {},
	"--":   {},
	"none": {},
	"null": {},
	"./.":  {},
}

var errNotScalar = errors.New("value is not a scalar")

func isPlaceholder(s string) bool {
	_, ok := placeholders[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

// unwrapRaw handles the {"raw": 1.5, "fmt": "1.50"} objects some feeds use
// for formatted numbers.
func unwrapRaw(v any) any {
	if m, ok := v.(map[string]any); ok {
		if raw, ok := m["raw"]; ok {
			return raw
		}
	}
	return v
}

func toFloat(v any) (null.Float, error) {
	v = unwrapRaw(v)
	switch x := v.(type) {
	case nil:
		return null.Float{}, nil
	case bool, map[string]any, []any:
		return null.Float{}, fmt.Errorf("%w: %T", errNotScalar, v)
	case string:
		if isPlaceholder(x) {
			return null.Float{}, nil
		}
		v = strings.TrimSpace(x)
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return null.Float{}, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return null.Float{}, fmt.Errorf("non-finite number %v", f)
	}
	return null.FloatFrom(f), nil
}

func toInt(v any) (null.Int, error) {
	f, err := toFloat(v)
	if err != nil || !f.Valid {
		return null.Int{}, err
	}
	if f.Float64 != math.Trunc(f.Float64) {
		return null.Int{}, fmt.Errorf("not an integer: %v", f.Float64)
	}
	// float64(math.MaxInt64) rounds up to 2^63, which int64 cannot hold.
	if f.Float64 >= math.MaxInt64 || f.Float64 < math.MinInt64 {
		return null.Int{}, fmt.Errorf("integer overflow: %v", f.Float64)
	}
	return null.IntFrom(int64(f.Float64)), nil
}

func toString(v any) (null.String, error) {
	v = unwrapRaw(v)
	switch x := v.(type) {
	case nil:
		return null.String{}, nil
	case bool, map[string]any, []any:
		return null.String{}, fmt.Errorf("%w: %T", errNotScalar, v)
	case string:
		if isPlaceholder(x) {
			return null.String{}, nil
		}
		return null.StringFrom(strings.TrimSpace(x)), nil
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return null.String{}, err
	}
	return null.StringFrom(s), nil
}

// toTime accepts date strings in the common layouts and unix epochs in
// seconds or milliseconds.
func toTime(v any) (null.Time, error) {
	v = unwrapRaw(v)
	switch x := v.(type) {
	case nil:
		return null.Time{}, nil
	case bool, map[string]any, []any:
		return null.Time{}, fmt.Errorf("%w: %T", errNotScalar, v)
	case string:
		if isPlaceholder(x) {
			return null.Time{}, nil
		}
		t, err := cast.ToTimeE(strings.TrimSpace(x))
		if err != nil {
			return null.Time{}, err
		}
		return null.TimeFrom(t.UTC()), nil
	case float64, float32, int, int64, int32, uint, uint64, uint32:
		n, err := cast.ToFloat64E(x)
		if err != nil {
			return null.Time{}, err
		}
		if n > 1e12 {
			return null.TimeFrom(time.UnixMilli(int64(n)).UTC()), nil
		}
		return null.TimeFrom(time.Unix(int64(n), 0).UTC()), nil
	}
	t, err := cast.ToTimeE(v)
	if err != nil {
		return null.Time{}, err
	}
	return null.TimeFrom(t.UTC()), nil
}
