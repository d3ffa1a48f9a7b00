package transform

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

// dateLayouts are accepted by string→date coercion, most specific first.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
}

var truthy = map[string]bool{"true": true, "1": true, "yes": true, "on": true}
var falsy = map[string]bool{"false": false, "0": false, "no": false, "off": false, "": false}

// Coerce converts v toward the target runtime kind using the built-in
// coercers. An identity coercion returns v unchanged.
func Coerce(v any, target Target, params map[string]any) (any, *Error) {
	src := TypeOf(v)
	if src == target {
		return v, nil
	}
	switch target {
	case TargetNumber:
		return coerceToNumber(v, src)
	case TargetBoolean:
		return coerceToBoolean(v, src)
	case TargetDate:
		return coerceToDate(v, src)
	case TargetArray:
		return coerceToArray(v, src, params)
	case TargetString:
		return coerceToString(v, src)
	}
	return nil, noCoercion(v, src, target)
}

func noCoercion(v any, src Target, target Target) *Error {
	return newError("", CodeNoTransformer,
		fmt.Sprintf("no coercion from %s to %s", src, target), v, string(target), nil)
}

func coerceToNumber(v any, src Target) (any, *Error) {
	switch src {
	case TargetString:
		s := strings.TrimSpace(v.(string))
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, newError("", CodeCoerceFailed,
				fmt.Sprintf("cannot coerce %q to number", s), v, string(TargetNumber), err)
		}
		return f, nil
	case TargetBoolean:
		if v.(bool) {
			return float64(1), nil
		}
		return float64(0), nil
	case TargetDate:
		return float64(v.(time.Time).UnixMilli()), nil
	}
	return nil, noCoercion(v, src, TargetNumber)
}

func coerceToBoolean(v any, src Target) (any, *Error) {
	switch src {
	case TargetString:
		s := strings.ToLower(strings.TrimSpace(v.(string)))
		if b, ok := truthy[s]; ok {
			return b, nil
		}
		if b, ok := falsy[s]; ok {
			return b, nil
		}
		return nil, newError("", CodeCoerceFailed,
			fmt.Sprintf("cannot coerce %q to boolean", v), v, string(TargetBoolean), nil)
	case TargetNumber:
		f, err := numberAsFloat(v)
		if err != nil {
			return nil, newError("", CodeCoerceFailed, err.Error(), v, string(TargetBoolean), err)
		}
		return f != 0, nil
	}
	return nil, noCoercion(v, src, TargetBoolean)
}

func coerceToDate(v any, src Target) (any, *Error) {
	switch src {
	case TargetString:
		s := strings.TrimSpace(v.(string))
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
		return nil, newError("", CodeCoerceFailed,
			fmt.Sprintf("cannot parse %q as a date", s), v, string(TargetDate), nil)
	case TargetNumber:
		f, err := numberAsFloat(v)
		if err != nil {
			return nil, newError("", CodeCoerceFailed, err.Error(), v, string(TargetDate), err)
		}
		return time.UnixMilli(int64(f)).UTC(), nil
	}
	return nil, noCoercion(v, src, TargetDate)
}

// coerceToArray tries a JSON array first and falls back to CSV splitting.
func coerceToArray(v any, src Target, params map[string]any) (any, *Error) {
	if src != TargetString {
		return nil, noCoercion(v, src, TargetArray)
	}
	s := strings.TrimSpace(v.(string))
	if strings.HasPrefix(s, "[") {
		var arr []any
		if err := json.Unmarshal([]byte(s), &arr); err == nil {
			return arr, nil
		}
	}
	sep := ","
	if p, ok := params["separator"].(string); ok && p != "" {
		sep = p
	}
	parts := strings.Split(s, sep)
	out := make([]any, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out, nil
}

func coerceToString(v any, src Target) (any, *Error) {
	switch src {
	case TargetNumber:
		f, err := numberAsFloat(v)
		if err != nil {
			return nil, newError("", CodeCoerceFailed, err.Error(), v, string(TargetString), err)
		}
		return strconv.FormatFloat(f, 'g', -1, 64), nil
	case TargetBoolean:
		return strconv.FormatBool(v.(bool)), nil
	case TargetDate:
		return v.(time.Time).Format(time.RFC3339), nil
	case TargetArray, TargetObject:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, newError("", CodeCoerceFailed, err.Error(), v, string(TargetString), err)
		}
		return string(b), nil
	}
	return nil, noCoercion(v, src, TargetString)
}

// numberAsFloat normalizes the numeric representations TypeOf classifies as
// TargetNumber into float64.
func numberAsFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int8:
		return float64(n), nil
	case int16:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint:
		return float64(n), nil
	case uint8:
		return float64(n), nil
	case uint16:
		return float64(n), nil
	case uint32:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case json.Number:
		return n.Float64()
	}
	return math.NaN(), fmt.Errorf("not a number: %T", v)
}
