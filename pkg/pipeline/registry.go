package pipeline

import (
	"cmp"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/vango-dev/livecoll/internal/errors"
)

// Transform maps one value to another.
type Transform func(any) any

// Predicate decides whether a value is kept.
type Predicate func(any) bool

// Comparator orders two values.
type Comparator func(a, b any) int

// splitName splits "name:arg" into its parts.
func splitName(spec string) (name, arg string, hasArg bool) {
	return strings.Cut(spec, ":")
}

// LookupTransform resolves a transform name.
func LookupTransform(spec string) (Transform, error) {
	name, arg, hasArg := splitName(spec)
	switch {
	case name == "identity" && !hasArg:
		return func(v any) any { return v }, nil
	case name == "double" && !hasArg:
		return numeric(func(f float64) float64 { return f * 2 }), nil
	case name == "negate" && !hasArg:
		return numeric(func(f float64) float64 { return -f }), nil
	case name == "square" && !hasArg:
		return numeric(func(f float64) float64 { return f * f }), nil
	case name == "upper" && !hasArg:
		return textual(strings.ToUpper), nil
	case name == "lower" && !hasArg:
		return textual(strings.ToLower), nil
	case name == "string" && !hasArg:
		return func(v any) any { return Format(v) }, nil
	case name == "len" && !hasArg:
		return func(v any) any { return float64(length(v)) }, nil
	case name == "prefix" && hasArg:
		return func(v any) any { return arg + Format(v) }, nil
	case name == "scale" && hasArg:
		factor, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return nil, errors.New("E106").WithDetailf("scale factor %q is not a number", arg)
		}
		return numeric(func(f float64) float64 { return f * factor }), nil
	}
	return nil, errors.New("E106").WithDetailf("Unknown transform %q", spec).
		WithSuggestion("Use identity, double, negate, square, upper, lower, string, len, prefix:<text> or scale:<n>")
}

// LookupPredicate resolves a predicate name. The empty name keeps every
// value and returns a nil Predicate.
func LookupPredicate(spec string) (Predicate, error) {
	if spec == "" {
		return nil, nil
	}
	name, arg, hasArg := splitName(spec)
	switch {
	case name == "all" && !hasArg:
		return func(any) bool { return true }, nil
	case name == "even" && !hasArg:
		return func(v any) bool {
			f, ok := toFloat(v)
			return ok && f == math.Trunc(f) && math.Mod(f, 2) == 0
		}, nil
	case name == "odd" && !hasArg:
		return func(v any) bool {
			f, ok := toFloat(v)
			return ok && f == math.Trunc(f) && math.Mod(f, 2) != 0
		}, nil
	case name == "nonzero" && !hasArg:
		return func(v any) bool {
			f, ok := toFloat(v)
			return ok && f != 0
		}, nil
	case name == "truthy" && !hasArg:
		return truthy, nil
	case (name == "gt" || name == "lt") && hasArg:
		bound, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return nil, errors.New("E107").WithDetailf("bound %q is not a number", arg)
		}
		if name == "gt" {
			return func(v any) bool { f, ok := toFloat(v); return ok && f > bound }, nil
		}
		return func(v any) bool { f, ok := toFloat(v); return ok && f < bound }, nil
	case name == "eq" && hasArg:
		return func(v any) bool { return Format(v) == arg }, nil
	case name == "contains" && hasArg:
		return func(v any) bool { return strings.Contains(Format(v), arg) }, nil
	}
	return nil, errors.New("E107").WithDetailf("Unknown predicate %q", spec).
		WithSuggestion("Use all, even, odd, nonzero, truthy, gt:<n>, lt:<n>, eq:<value> or contains:<text>")
}

// LookupComparator resolves a comparator name.
func LookupComparator(spec string) (Comparator, error) {
	switch spec {
	case "asc":
		return Compare, nil
	case "desc":
		return func(a, b any) int { return Compare(b, a) }, nil
	}
	return nil, errors.New("E108").WithDetailf("Unknown comparator %q", spec).
		WithSuggestion("Use asc or desc")
}

// Compare orders dynamic values: nil first, then booleans, numbers, strings
// and finally everything else by its formatted text.
func Compare(a, b any) int {
	if c := cmp.Compare(rank(a), rank(b)); c != 0 {
		return c
	}
	switch x := a.(type) {
	case nil:
		return 0
	case bool:
		y := b.(bool)
		switch {
		case x == y:
			return 0
		case !x:
			return -1
		default:
			return 1
		}
	case string:
		return cmp.Compare(x, b.(string))
	}
	if fa, ok := toFloat(a); ok {
		fb, _ := toFloat(b)
		return cmp.Compare(fa, fb)
	}
	return cmp.Compare(Format(a), Format(b))
}

func rank(v any) int {
	switch v.(type) {
	case nil:
		return 0
	case bool:
		return 1
	case string:
		return 3
	}
	if _, ok := toFloat(v); ok {
		return 2
	}
	return 4
}

// Format renders a dynamic value as text. Integral floats print without a
// fraction.
func Format(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}

// toFloat converts numeric values. JSON numbers decode as float64.
func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case int32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case uint32:
		return float64(x), true
	}
	return 0, false
}

func numeric(fn func(float64) float64) Transform {
	return func(v any) any {
		f, ok := toFloat(v)
		if !ok {
			return v
		}
		return fn(f)
	}
}

func textual(fn func(string) string) Transform {
	return func(v any) any {
		s, ok := v.(string)
		if !ok {
			return v
		}
		return fn(s)
	}
}

func length(v any) int {
	switch x := v.(type) {
	case string:
		return utf8.RuneCountInString(x)
	case []any:
		return len(x)
	case map[string]any:
		return len(x)
	}
	return 0
}

func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	}
	if f, ok := toFloat(v); ok {
		return f != 0
	}
	return true
}
