package promote

import (
	"github.com/exprlang/dynlinq/pkg/ir"
	"github.com/exprlang/dynlinq/pkg/types"
)

// Reconcile implements the ternary operator's bidirectional promotion
// rule (spec.md §4.4 level 0): exactly one of {promote a to b's type,
// promote b to a's type} must succeed. Branches that already share a
// (non-null) type are returned unchanged. The null constant is never a
// promotion target on either side.
func Reconcile(a, b *ir.Node, literals LiteralText) (*ir.Node, *ir.Node, error) {
	if a.Type != nil && a.Type == b.Type {
		return a, b, nil
	}
	aIsNull := a.Kind == ir.KindConstant && a.Value == nil && a.Type == nil
	bIsNull := b.Kind == ir.KindConstant && b.Value == nil && b.Type == nil

	var aToB, bToA *ir.Node
	var errAtoB, errBtoA error
	if !bIsNull {
		aToB, errAtoB = Expression(a, b.Type, false, literals)
	} else {
		errAtoB = notPromotable(a, nil)
	}
	if !aIsNull {
		bToA, errBtoA = Expression(b, a.Type, false, literals)
	} else {
		errBtoA = notPromotable(b, nil)
	}

	succA := errAtoB == nil
	succB := errBtoA == nil

	switch {
	case succA && succB:
		return nil, nil, types.NewParseError(types.ErrBothTypesConvertToOther, a.Position,
			"both %s and %s convert to the other's type", a.Type, b.Type)
	case succA:
		return aToB, b, nil
	case succB:
		return a, bToA, nil
	default:
		return nil, nil, types.NewParseError(types.ErrNeitherTypeConvertsToOther, a.Position,
			"neither %s nor %s converts to the other's type", a.Type, b.Type)
	}
}
