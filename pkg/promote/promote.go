// Package promote implements spec.md §4.3: retyping literals, widening
// numerics, lifting to nullable, and converting enums so that an
// expression's type matches a required target type.
package promote

import (
	"reflect"
	"strconv"

	"github.com/exprlang/dynlinq/pkg/hostkit"
	"github.com/exprlang/dynlinq/pkg/ir"
	"github.com/exprlang/dynlinq/pkg/types"
)

// LiteralText is the side-table the parser keeps mapping a constant
// node to the exact source text it was lexed from, so promotion can
// re-lex a narrower numeric type without losing precision information
// the already-parsed float64/int64 would have discarded. See spec.md §9
// ("Iterator-invalidation of literal table").
type LiteralText map[*ir.Node]string

// Expression promotes e to target, returning the (possibly new) node
// whose Type equals target, or an error if no rule applies.
//
// exact forces a checked Convert node even when e's type is merely
// compatible-but-not-identical and target is a reference type; without
// exact, a compatible reference-typed e is returned unchanged (widening
// reference conversions are implicit, matching spec.md §4.3 rule 4).
func Expression(e *ir.Node, target reflect.Type, exact bool, literals LiteralText) (*ir.Node, error) {
	if e == nil || target == nil {
		return nil, notPromotable(e, target)
	}

	// 1. Identity.
	if e.Type == target {
		return e, nil
	}

	// 2. The null-constant literal.
	if e.Kind == ir.KindConstant && e.Value == nil && e.Type == nil {
		if isReferenceType(target) || hostkit.IsNullable(target) {
			return &ir.Node{Kind: ir.KindConstant, Type: target, Value: nil, Position: e.Position}, nil
		}
		return nil, notPromotable(e, target)
	}

	// 3. Literal retyping from source text.
	if e.Kind == ir.KindConstant && literals != nil {
		if text, ok := literals[e]; ok {
			if n, err := retypeLiteral(e, text, target); err == nil {
				return n, nil
			}
		}
	}

	// 4. Compatibility-driven promotion.
	if hostkit.IsCompatibleWith(e.Type, target) {
		if isValueType(target) || exact {
			return &ir.Node{
				Kind:       ir.KindConvert,
				Type:       target,
				TargetType: target,
				Operand:    e,
				Position:   e.Position,
			}, nil
		}
		return e, nil
	}

	// 5. Fail.
	return nil, notPromotable(e, target)
}

func notPromotable(e *ir.Node, target reflect.Type) error {
	srcName := "<nil>"
	if e != nil && e.Type != nil {
		srcName = e.Type.String()
	}
	tgtName := "<nil>"
	if target != nil {
		tgtName = target.String()
	}
	pos := 0
	if e != nil {
		pos = e.Position
	}
	return types.NewParseError(types.ErrExpressionTypeMismatch, pos,
		"cannot promote %s to %s", srcName, tgtName)
}

func isReferenceType(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.String:
		return true
	default:
		return false
	}
}

func isValueType(t reflect.Type) bool { return !isReferenceType(t) }

// retypeLiteral implements rule 3: integer/real/string literal retyping
// from preserved source text.
func retypeLiteral(e *ir.Node, text string, target reflect.Type) (*ir.Node, error) {
	nn := hostkit.NonNullable(target)
	switch {
	case e.Type == reflect.TypeOf(int64(0)) || e.Type == reflect.TypeOf(int(0)) || e.Type == reflect.TypeOf(uint64(0)):
		return retypeInteger(e, text, target, nn)
	case e.Type == reflect.TypeOf(float64(0)):
		if nn.Kind() != reflect.Float64 && !isDecimalLike(nn) {
			return nil, notPromotable(e, target)
		}
		return retypeReal(e, text, target, nn)
	case e.Type == reflect.TypeOf(""):
		if hostkit.IsEnum(nn) {
			if val, ok := hostkit.EnumValue(nn, text); ok {
				return &ir.Node{Kind: ir.KindConstant, Type: target, Value: val, Position: e.Position}, nil
			}
		}
	}
	return nil, notPromotable(e, target)
}

func isDecimalLike(t reflect.Type) bool {
	return hostkit.NumericKind(t) == hostkit.KindFloating
}

func retypeInteger(e *ir.Node, text string, target, nn reflect.Type) (*ir.Node, error) {
	switch nn.Kind() {
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64, reflect.Int:
		v, err := strconv.ParseInt(text, 10, bitsOf(nn))
		if err != nil {
			return nil, notPromotable(e, target)
		}
		return constOf(target, nn, v, e.Position)
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uint:
		v, err := strconv.ParseUint(text, 10, bitsOf(nn))
		if err != nil {
			return nil, notPromotable(e, target)
		}
		return constOf(target, nn, v, e.Position)
	case reflect.Float32, reflect.Float64:
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, notPromotable(e, target)
		}
		return constOf(target, nn, v, e.Position)
	}
	return nil, notPromotable(e, target)
}

func retypeReal(e *ir.Node, text string, target, nn reflect.Type) (*ir.Node, error) {
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, notPromotable(e, target)
	}
	return constOf(target, nn, v, e.Position)
}

func bitsOf(t reflect.Type) int {
	switch t.Kind() {
	case reflect.Int8, reflect.Uint8:
		return 8
	case reflect.Int16, reflect.Uint16:
		return 16
	case reflect.Int32, reflect.Uint32:
		return 32
	default:
		return 64
	}
}

// constOf builds a constant node of nn's Go value carrying the
// requested target type (which may be target's nullable lift).
func constOf(target, nn reflect.Type, v interface{}, pos int) (*ir.Node, error) {
	rv := reflect.New(nn).Elem()
	switch rv.Kind() {
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64, reflect.Int:
		rv.SetInt(toInt64(v))
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uint:
		rv.SetUint(toUint64(v))
	case reflect.Float32, reflect.Float64:
		rv.SetFloat(toFloat64(v))
	}
	return &ir.Node{Kind: ir.KindConstant, Type: target, Value: rv.Interface(), Position: pos}, nil
}

func toInt64(v interface{}) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case uint64:
		return int64(t)
	case float64:
		return int64(t)
	default:
		return 0
	}
}

func toUint64(v interface{}) uint64 {
	switch t := v.(type) {
	case int64:
		return uint64(t)
	case uint64:
		return t
	case float64:
		return uint64(t)
	default:
		return 0
	}
}

func toFloat64(v interface{}) float64 {
	switch t := v.(type) {
	case int64:
		return float64(t)
	case uint64:
		return float64(t)
	case float64:
		return t
	default:
		return 0
	}
}
