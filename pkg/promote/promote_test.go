package promote_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/exprlang/dynlinq/pkg/hostkit"
	"github.com/exprlang/dynlinq/pkg/ir"
	"github.com/exprlang/dynlinq/pkg/promote"
	"github.com/exprlang/dynlinq/pkg/types"
)

func constNode(t reflect.Type, v interface{}) *ir.Node {
	return &ir.Node{Kind: ir.KindConstant, Type: t, Value: v}
}

func TestExpressionIdentityIsNoOp(t *testing.T) {
	n := constNode(reflect.TypeOf(int32(0)), int32(5))
	out, err := promote.Expression(n, reflect.TypeOf(int32(0)), false, nil)
	require.NoError(t, err)
	require.Same(t, n, out)
}

func TestExpressionNullConstantLiftsToNullable(t *testing.T) {
	n := &ir.Node{Kind: ir.KindConstant, Type: nil, Value: nil}
	target := reflect.TypeOf(hostkit.Nullable[int32]{})
	out, err := promote.Expression(n, target, false, nil)
	require.NoError(t, err)
	require.Equal(t, target, out.Type)
	require.Nil(t, out.Value)
}

func TestExpressionNullConstantRejectedForPlainValueType(t *testing.T) {
	n := &ir.Node{Kind: ir.KindConstant, Type: nil, Value: nil}
	_, err := promote.Expression(n, reflect.TypeOf(int32(0)), false, nil)
	require.Error(t, err)
}

func TestExpressionWideningProducesConvertNode(t *testing.T) {
	n := constNode(reflect.TypeOf(int32(0)), int32(5))
	out, err := promote.Expression(n, reflect.TypeOf(int64(0)), false, nil)
	require.NoError(t, err)
	require.Equal(t, ir.KindConvert, out.Kind)
	require.Equal(t, reflect.TypeOf(int64(0)), out.Type)
	require.Same(t, n, out.Operand)
}

func TestExpressionIncompatibleFails(t *testing.T) {
	n := constNode(reflect.TypeOf(""), "hi")
	_, err := promote.Expression(n, reflect.TypeOf(int32(0)), false, nil)
	require.Error(t, err)
	var pe *types.ParseError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, types.ErrExpressionTypeMismatch, pe.Code)
}

// Literal idempotence: retyping a literal twice against the same target
// from the same preserved source text yields the same resolved type and
// value both times (spec.md §8's literal-idempotence property).
func TestLiteralRetypingIsIdempotent(t *testing.T) {
	n := constNode(reflect.TypeOf(int64(0)), int64(5))
	literals := promote.LiteralText{n: "5"}

	out1, err := promote.Expression(n, reflect.TypeOf(int16(0)), false, literals)
	require.NoError(t, err)
	out2, err := promote.Expression(n, reflect.TypeOf(int16(0)), false, literals)
	require.NoError(t, err)

	require.Equal(t, out1.Type, out2.Type)
	require.Equal(t, out1.Value, out2.Value)
	require.Equal(t, int16(5), out1.Value)
}

func TestLiteralRetypingToEnumByName(t *testing.T) {
	type color int32
	colorType := reflect.TypeOf(color(0))
	hostkit.RegisterEnum(colorType, map[string]int64{"Red": 0, "Blue": 1})

	n := constNode(reflect.TypeOf(""), "Blue")
	literals := promote.LiteralText{n: "Blue"}
	out, err := promote.Expression(n, colorType, false, literals)
	require.NoError(t, err)
	require.Equal(t, colorType, out.Type)
	require.Equal(t, int64(1), out.Value)
}

// Nullable lifting: a plain value widens into the Nullable[T] form of a
// compatible target (spec.md §8's nullable-lifting property), producing
// a checked convert node since the target is a value type.
func TestNullableLiftingOfCompatibleValue(t *testing.T) {
	n := constNode(reflect.TypeOf(int32(0)), int32(7))
	target := reflect.TypeOf(hostkit.Nullable[int64]{})
	out, err := promote.Expression(n, target, false, nil)
	require.NoError(t, err)
	require.Equal(t, ir.KindConvert, out.Kind)
	require.Equal(t, target, out.Type)
}

func TestReconcileLiftsNullAgainstReferenceTypedOther(t *testing.T) {
	a := constNode(reflect.TypeOf(""), "x")
	b := &ir.Node{Kind: ir.KindConstant, Type: nil, Value: nil}
	outA, outB, err := promote.Reconcile(a, b, nil)
	require.NoError(t, err)
	require.Same(t, a, outA)
	require.Equal(t, reflect.TypeOf(""), outB.Type)
	require.Nil(t, outB.Value)
}

func TestReconcileNullAgainstPlainValueTypeFails(t *testing.T) {
	a := constNode(reflect.TypeOf(int32(0)), int32(1))
	b := &ir.Node{Kind: ir.KindConstant, Type: nil, Value: nil}
	_, _, err := promote.Reconcile(a, b, nil)
	require.Error(t, err)
}

func TestReconcileNeitherConvertsFails(t *testing.T) {
	a := constNode(reflect.TypeOf(""), "x")
	b := constNode(reflect.TypeOf(false), true)
	_, _, err := promote.Reconcile(a, b, nil)
	require.Error(t, err)
	var pe *types.ParseError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, types.ErrNeitherTypeConvertsToOther, pe.Code)
}

func TestReconcilePicksTheWideningDirection(t *testing.T) {
	a := constNode(reflect.TypeOf(int32(0)), int32(1))
	b := constNode(reflect.TypeOf(int64(0)), int64(2))
	outA, outB, err := promote.Reconcile(a, b, nil)
	require.NoError(t, err)
	require.Equal(t, reflect.TypeOf(int64(0)), outA.Type)
	require.Same(t, b, outB)
}

func TestGenerateConversionBetweenNumericTypes(t *testing.T) {
	n := constNode(reflect.TypeOf(float64(0)), float64(3.9))
	out, err := promote.GenerateConversion(n, reflect.TypeOf(int32(0)))
	require.NoError(t, err)
	require.Equal(t, ir.KindConvert, out.Kind)
	require.Equal(t, reflect.TypeOf(int32(0)), out.Type)
}

func TestGenerateConversionRejectsUnrelatedValueTypes(t *testing.T) {
	n := constNode(reflect.TypeOf(""), "x")
	_, err := promote.GenerateConversion(n, reflect.TypeOf(false))
	require.Error(t, err)
}
