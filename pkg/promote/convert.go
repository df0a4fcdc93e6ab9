package promote

import (
	"reflect"

	"github.com/exprlang/dynlinq/pkg/hostkit"
	"github.com/exprlang/dynlinq/pkg/ir"
	"github.com/exprlang/dynlinq/pkg/types"
)

// GenerateConversion implements spec.md §4.3's explicit T(x) conversion
// rule, used by the parser for a type-access call T(x) with exactly one
// argument.
func GenerateConversion(e *ir.Node, target reflect.Type) (*ir.Node, error) {
	src := e.Type

	bothValueTypes := isValueType(src) && isValueType(target)
	if bothValueTypes {
		sameUnderlyingNullableLift := hostkit.NonNullable(src) == hostkit.NonNullable(target) && src != target
		bothNumericOrEnum := (hostkit.NumericKind(src) != hostkit.KindNone || hostkit.IsEnum(hostkit.NonNullable(src))) &&
			(hostkit.NumericKind(target) != hostkit.KindNone || hostkit.IsEnum(hostkit.NonNullable(target)))
		if sameUnderlyingNullableLift || bothNumericOrEnum {
			return &ir.Node{
				Kind:       ir.KindConvert,
				Type:       target,
				TargetType: target,
				Operand:    e,
				Position:   e.Position,
			}, nil
		}
	}

	if src != nil && target != nil && (src.AssignableTo(target) || target.AssignableTo(src)) {
		return &ir.Node{
			Kind:       ir.KindConvert,
			Type:       target,
			TargetType: target,
			Operand:    e,
			Position:   e.Position,
		}, nil
	}

	if (src != nil && src.Kind() == reflect.Interface) || (target != nil && target.Kind() == reflect.Interface) {
		return &ir.Node{
			Kind:       ir.KindConvert,
			Type:       target,
			TargetType: target,
			Operand:    e,
			Position:   e.Position,
		}, nil
	}

	srcName := "<nil>"
	if src != nil {
		srcName = src.String()
	}
	return nil, types.NewParseError(types.ErrCannotConvertValue, e.Position,
		"cannot convert value of type %s to %s", srcName, target)
}
