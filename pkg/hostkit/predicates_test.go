package hostkit_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/exprlang/dynlinq/pkg/hostkit"
)

// wideningClosure mirrors spec.md §4.2's widening table rows, expressed
// as reflect types, so the test can check IsCompatibleWith against both
// members and non-members of each row.
var wideningClosure = map[reflect.Type][]reflect.Type{
	reflect.TypeOf(int8(0)): {
		reflect.TypeOf(int8(0)), reflect.TypeOf(int16(0)), reflect.TypeOf(int32(0)),
		reflect.TypeOf(int64(0)), reflect.TypeOf(float32(0)), reflect.TypeOf(float64(0)),
	},
	reflect.TypeOf(uint8(0)): {
		reflect.TypeOf(uint8(0)), reflect.TypeOf(int16(0)), reflect.TypeOf(uint16(0)),
		reflect.TypeOf(int32(0)), reflect.TypeOf(uint32(0)), reflect.TypeOf(int64(0)),
		reflect.TypeOf(uint64(0)), reflect.TypeOf(float32(0)), reflect.TypeOf(float64(0)),
	},
	reflect.TypeOf(int32(0)): {
		reflect.TypeOf(int32(0)), reflect.TypeOf(int64(0)), reflect.TypeOf(float32(0)), reflect.TypeOf(float64(0)),
	},
	reflect.TypeOf(float32(0)): {
		reflect.TypeOf(float32(0)), reflect.TypeOf(float64(0)),
	},
}

var allNumericTypes = []reflect.Type{
	reflect.TypeOf(int8(0)), reflect.TypeOf(uint8(0)), reflect.TypeOf(int16(0)), reflect.TypeOf(uint16(0)),
	reflect.TypeOf(int32(0)), reflect.TypeOf(uint32(0)), reflect.TypeOf(int64(0)), reflect.TypeOf(uint64(0)),
	reflect.TypeOf(float32(0)), reflect.TypeOf(float64(0)),
}

func TestWideningClosureHoldsForMembers(t *testing.T) {
	for source, targets := range wideningClosure {
		for _, target := range targets {
			require.True(t, hostkit.IsCompatibleWith(source, target),
				"%s should widen to %s", source, target)
		}
	}
}

func TestWideningClosureFailsForNonMembers(t *testing.T) {
	for source, targets := range wideningClosure {
		allowed := map[reflect.Type]bool{}
		for _, target := range targets {
			allowed[target] = true
		}
		for _, candidate := range allNumericTypes {
			if allowed[candidate] {
				continue
			}
			require.False(t, hostkit.IsCompatibleWith(source, candidate),
				"%s should not widen to %s", source, candidate)
		}
	}
}

func TestIsCompatibleWithReferenceTypes(t *testing.T) {
	require.True(t, hostkit.IsCompatibleWith(reflect.TypeOf(""), reflect.TypeOf("")))
	require.False(t, hostkit.IsCompatibleWith(reflect.TypeOf(0), reflect.TypeOf("")))
}

// A value type assignable to an interface target (boxing) is
// compatible even though the source itself is not a reference type:
// spec.md §4.2 only constrains the target side of the relation.
func TestIsCompatibleWithBoxesValueTypeIntoInterface(t *testing.T) {
	anyType := reflect.TypeOf((*interface{})(nil)).Elem()
	require.True(t, hostkit.IsCompatibleWith(reflect.TypeOf(int32(0)), anyType))
	require.True(t, hostkit.IsCompatibleWith(reflect.TypeOf(false), anyType))
}

func TestIsCompatibleWithNullableSourceRejected(t *testing.T) {
	nullableInt := reflect.TypeOf(hostkit.Nullable[int32]{})
	require.False(t, hostkit.IsCompatibleWith(nullableInt, reflect.TypeOf(int32(0))))
}

func TestIsCompatibleWithEnumIsExactOnly(t *testing.T) {
	type status int32
	statusType := reflect.TypeOf(status(0))
	hostkit.RegisterEnum(statusType, map[string]int64{"Open": 0, "Closed": 1})

	require.True(t, hostkit.IsCompatibleWith(statusType, statusType))
	require.False(t, hostkit.IsCompatibleWith(reflect.TypeOf(int32(0)), statusType))
}

func TestNumericKindClassifiesByKind(t *testing.T) {
	require.Equal(t, hostkit.KindSigned, hostkit.NumericKind(reflect.TypeOf(int32(0))))
	require.Equal(t, hostkit.KindUnsigned, hostkit.NumericKind(reflect.TypeOf(uint64(0))))
	require.Equal(t, hostkit.KindFloating, hostkit.NumericKind(reflect.TypeOf(float64(0))))
	require.Equal(t, hostkit.KindNone, hostkit.NumericKind(reflect.TypeOf("")))
}

func TestNumericKindTreatsRegisteredEnumAsNone(t *testing.T) {
	type flavor int32
	flavorType := reflect.TypeOf(flavor(0))
	hostkit.RegisterEnum(flavorType, map[string]int64{"Vanilla": 0})
	require.Equal(t, hostkit.KindNone, hostkit.NumericKind(flavorType))
}

func TestNumericKindTreatsDecimalAsFloating(t *testing.T) {
	require.Equal(t, hostkit.KindFloating, hostkit.NumericKind(reflect.TypeOf(hostkit.Decimal(0))))
}
