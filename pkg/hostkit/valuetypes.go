package hostkit

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
)

// Char stands in for the host's character value type. Go's rune is just
// int32, which would collide with Int32 in the default allowed-type
// table, so the char-literal-decay rule (spec.md §4.1) targets this
// named type instead.
type Char int32

func (c Char) String() string { return string(rune(c)) }

// Decimal stands in for the host's fixed-point decimal value type.
// RegisterDecimal opts it into NumericKind's floating-like classification
// (spec.md §4.2's widening row for Single/Double/Decimal) at package init.
type Decimal float64

func (d Decimal) String() string { return strconv.FormatFloat(float64(d), 'f', -1, 64) }

func init() {
	RegisterDecimal(reflect.TypeOf(Decimal(0)))
}

// MathUtil is the zero-value receiver for the host's static Math-utility
// type access (Math.Abs(x), Math.Round(x), ...): spec.md §3 mentions
// "two math/conversion utility types" in the default allowed set. Go has
// no static-class member access, so a zero-value struct receiver plays
// that role — the parser's type-access member lookup runs ordinary
// method resolution against it the same way it would against any other
// allowed type.
type MathUtil struct{}

func (MathUtil) Abs(x float64) float64    { return math.Abs(x) }
func (MathUtil) Round(x float64) float64  { return math.Round(x) }
func (MathUtil) Floor(x float64) float64  { return math.Floor(x) }
func (MathUtil) Ceil(x float64) float64   { return math.Ceil(x) }
func (MathUtil) Max(a, b float64) float64 { return math.Max(a, b) }
func (MathUtil) Min(a, b float64) float64 { return math.Min(a, b) }
func (MathUtil) Pow(a, b float64) float64 { return math.Pow(a, b) }
func (MathUtil) Sqrt(x float64) float64   { return math.Sqrt(x) }

// ConvertUtil is the companion static-conversion utility type.
type ConvertUtil struct{}

func (ConvertUtil) ToInt32(v interface{}) (int32, error) {
	switch t := v.(type) {
	case string:
		n, err := strconv.ParseInt(t, 10, 32)
		return int32(n), err
	case float64:
		return int32(t), nil
	case int64:
		return int32(t), nil
	default:
		return 0, fmt.Errorf("hostkit: cannot convert %T to int32", v)
	}
}

func (ConvertUtil) ToInt64(v interface{}) (int64, error) {
	switch t := v.(type) {
	case string:
		return strconv.ParseInt(t, 10, 64)
	case float64:
		return int64(t), nil
	case int32:
		return int64(t), nil
	default:
		return 0, fmt.Errorf("hostkit: cannot convert %T to int64", v)
	}
}

func (ConvertUtil) ToDouble(v interface{}) (float64, error) {
	switch t := v.(type) {
	case string:
		return strconv.ParseFloat(t, 64)
	case int32:
		return float64(t), nil
	case int64:
		return float64(t), nil
	default:
		return 0, fmt.Errorf("hostkit: cannot convert %T to float64", v)
	}
}

func (ConvertUtil) ToString(v interface{}) string { return fmt.Sprintf("%v", v) }

func (ConvertUtil) ToBoolean(v interface{}) (bool, error) {
	switch t := v.(type) {
	case string:
		return strconv.ParseBool(t)
	case bool:
		return t, nil
	default:
		return false, fmt.Errorf("hostkit: cannot convert %T to bool", v)
	}
}
