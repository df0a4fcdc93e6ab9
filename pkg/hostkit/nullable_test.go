package hostkit_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/exprlang/dynlinq/pkg/hostkit"
)

func TestIsNullableStructural(t *testing.T) {
	require.True(t, hostkit.IsNullable(reflect.TypeOf(hostkit.Nullable[int32]{})))

	synthesized := reflect.StructOf([]reflect.StructField{
		{Name: "Valid", Type: reflect.TypeOf(false)},
		{Name: "Value", Type: reflect.TypeOf("")},
	})
	require.True(t, hostkit.IsNullable(synthesized))

	require.False(t, hostkit.IsNullable(reflect.TypeOf(int32(0))))
	require.False(t, hostkit.IsNullable(reflect.TypeOf(struct{ X int }{})))
}

func TestNullableOfKnownType(t *testing.T) {
	nt := hostkit.NullableOf(reflect.TypeOf(int32(0)))
	require.Equal(t, reflect.TypeOf(hostkit.Nullable[int32]{}), nt)
	require.True(t, hostkit.IsNullable(nt))
}

func TestNullableOfSynthesizesForArbitraryType(t *testing.T) {
	type custom struct{ X int }
	nt := hostkit.NullableOf(reflect.TypeOf(custom{}))
	require.True(t, hostkit.IsNullable(nt))
	require.Equal(t, reflect.TypeOf(custom{}), hostkit.NonNullable(nt))
}

func TestNullableOfIsIdempotent(t *testing.T) {
	nt := hostkit.NullableOf(reflect.TypeOf(int32(0)))
	require.Equal(t, nt, hostkit.NullableOf(nt))
}

func TestNonNullablePassesThroughNonNullableTypes(t *testing.T) {
	require.Equal(t, reflect.TypeOf(""), hostkit.NonNullable(reflect.TypeOf("")))
}

func TestMakeNullableAndInnerOf(t *testing.T) {
	nt := reflect.TypeOf(hostkit.Nullable[int32]{})

	withValue := hostkit.MakeNullable(nt, reflect.ValueOf(int32(42)))
	inner, valid := hostkit.InnerOf(withValue)
	require.True(t, valid)
	require.Equal(t, int32(42), int32(inner.Int()))

	empty := hostkit.MakeNullable(nt, reflect.Value{})
	_, valid = hostkit.InnerOf(empty)
	require.False(t, valid)
}
