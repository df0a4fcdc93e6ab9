package record_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/exprlang/dynlinq/pkg/record"
	"github.com/exprlang/dynlinq/pkg/types"
)

func TestCreateClassStructuralIdentity(t *testing.T) {
	f := record.New()
	fieldsA := []types.DynamicProperty{{Name: "Len", Type: reflect.TypeOf(int32(0))}}
	fieldsB := []types.DynamicProperty{{Name: "Len", Type: reflect.TypeOf(int32(0))}}
	fieldsC := []types.DynamicProperty{{Name: "Len", Type: reflect.TypeOf(int64(0))}}
	fieldsD := []types.DynamicProperty{{Name: "Width", Type: reflect.TypeOf(int32(0))}}

	a, err := f.CreateClass(fieldsA)
	require.NoError(t, err)
	b, err := f.CreateClass(fieldsB)
	require.NoError(t, err)
	c, err := f.CreateClass(fieldsC)
	require.NoError(t, err)
	d, err := f.CreateClass(fieldsD)
	require.NoError(t, err)

	require.Equal(t, a, b, "equal signatures must yield the identical type")
	require.NotEqual(t, a, c, "differing field type must yield a distinct type")
	require.NotEqual(t, a, d, "differing field name must yield a distinct type")
}

func TestCreateClassFieldAccess(t *testing.T) {
	f := record.New()
	typ, err := f.CreateClass([]types.DynamicProperty{
		{Name: "len", Type: reflect.TypeOf(int32(0))},
		{Name: "Name", Type: reflect.TypeOf("")},
	})
	require.NoError(t, err)

	v := reflect.New(typ).Elem()
	field, ok := typ.FieldByName("Len")
	require.True(t, ok, "lowercase property name must still produce an exported struct field")
	v.FieldByIndex(field.Index).SetInt(5)

	require.Equal(t, int32(5), int32(v.FieldByIndex(field.Index).Int()))
}

func TestCreateClassRejectsEmptyField(t *testing.T) {
	f := record.New()
	_, err := f.CreateClass([]types.DynamicProperty{{Name: "", Type: reflect.TypeOf(0)}})
	require.Error(t, err)
}

func TestDebugNameStableAcrossRepeatedCalls(t *testing.T) {
	f := record.New()
	fields := []types.DynamicProperty{{Name: "X", Type: reflect.TypeOf(0)}}
	_, err := f.CreateClass(fields)
	require.NoError(t, err)
	name1 := f.DebugName(fields)
	_, err = f.CreateClass(fields)
	require.NoError(t, err)
	name2 := f.DebugName(fields)
	require.NotEmpty(t, name1)
	require.Equal(t, name1, name2)
}

func TestEqualAndHashCode(t *testing.T) {
	f := record.New()
	typ, err := f.CreateClass([]types.DynamicProperty{
		{Name: "A", Type: reflect.TypeOf(0)},
		{Name: "B", Type: reflect.TypeOf("")},
	})
	require.NoError(t, err)

	v1 := reflect.New(typ).Elem()
	v1.Field(0).SetInt(1)
	v1.Field(1).SetString("x")

	v2 := reflect.New(typ).Elem()
	v2.Field(0).SetInt(1)
	v2.Field(1).SetString("x")

	v3 := reflect.New(typ).Elem()
	v3.Field(0).SetInt(2)
	v3.Field(1).SetString("x")

	require.True(t, record.Equal(v1, v2))
	require.False(t, record.Equal(v1, v3))
	require.Equal(t, record.HashCode(v1), record.HashCode(v2))
}
