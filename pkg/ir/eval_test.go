package ir_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/exprlang/dynlinq/pkg/ir"
	"github.com/exprlang/dynlinq/pkg/parser"
)

func evalExpr(t *testing.T, resultType reflect.Type, expr string) reflect.Value {
	t.Helper()
	node, err := parser.New().Parse(resultType, expr)
	require.NoError(t, err)
	v, err := ir.Eval(node, ir.NewScope(reflect.Value{}))
	require.NoError(t, err)
	return v
}

func TestEvalArithmetic(t *testing.T) {
	v := evalExpr(t, reflect.TypeOf(int64(0)), "2 + 3 * 4")
	require.Equal(t, int64(14), v.Int())
}

func TestEvalStringConcat(t *testing.T) {
	v := evalExpr(t, reflect.TypeOf(""), `"a" & "b" & "c"`)
	require.Equal(t, "abc", v.String())
}

func TestEvalConditional(t *testing.T) {
	v := evalExpr(t, nil, `1 < 2 ? "lo" : "hi"`)
	require.Equal(t, "lo", v.String())
}

func TestEvalAggregatesOverLiteralLikeSlice(t *testing.T) {
	lambda, err := parser.New().ParseLambdaIt(reflect.TypeOf([]int32{}), nil, "Sum(it)")
	require.NoError(t, err)
	v, err := ir.CallLambda(lambda.Node, ir.NewScope(reflect.Value{}), []reflect.Value{reflect.ValueOf([]int32{1, 2, 3})})
	require.NoError(t, err)
	require.Equal(t, int32(6), int32(v.Int()))
}

func TestEvalWhereSelectChain(t *testing.T) {
	lambda, err := parser.New().ParseLambdaIt(reflect.TypeOf([]int32{}), nil, "Where(it > 1).Select(it * 10)")
	require.NoError(t, err)
	v, err := ir.CallLambda(lambda.Node, ir.NewScope(reflect.Value{}), []reflect.Value{reflect.ValueOf([]int32{1, 2, 3})})
	require.NoError(t, err)
	require.Equal(t, []int32{20, 30}, v.Interface())
}

func TestEvalGroupBy(t *testing.T) {
	lambda, err := parser.New().ParseLambdaIt(reflect.TypeOf([]int32{}), nil, "GroupBy(it % 2)")
	require.NoError(t, err)
	_, err = ir.CallLambda(lambda.Node, ir.NewScope(reflect.Value{}), []reflect.Value{reflect.ValueOf([]int32{1, 2, 3, 4})})
	require.NoError(t, err)
}

func TestDumpYAMLRendersKind(t *testing.T) {
	node, err := parser.New().Parse(nil, "1 + 2")
	require.NoError(t, err)
	out, err := ir.DumpYAML(node)
	require.NoError(t, err)
	require.Contains(t, out, "kind: binary")
}

func TestIterationScopeNesting(t *testing.T) {
	type tuple struct{ Item1 string }
	lambda, err := parser.New().ParseLambda([]ir.Parameter{
		{Name: "outer", Type: reflect.TypeOf([]tuple{})},
		{Name: "inner", Type: reflect.TypeOf([]string{})},
	}, reflect.TypeOf(false), "outer.Any(inner.Contains(it_1.Item1))")
	require.NoError(t, err)

	outer := reflect.ValueOf([]tuple{{Item1: "x"}, {Item1: "y"}})
	result, err := ir.CallLambda(lambda.Node, ir.NewScope(reflect.Value{}), []reflect.Value{outer, reflect.ValueOf([]string{"y"})})
	require.NoError(t, err)
	require.True(t, result.Bool())
}
