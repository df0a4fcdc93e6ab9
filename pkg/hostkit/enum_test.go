package hostkit_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/exprlang/dynlinq/pkg/hostkit"
)

type trafficLight int32

const (
	trafficLightRed trafficLight = iota
	trafficLightGreen
)

func init() {
	hostkit.RegisterEnum(reflect.TypeOf(trafficLightRed), map[string]int64{
		"Red":   int64(trafficLightRed),
		"Green": int64(trafficLightGreen),
	})
}

func TestRegisterEnumAndIsEnum(t *testing.T) {
	require.True(t, hostkit.IsEnum(reflect.TypeOf(trafficLightRed)))
	require.False(t, hostkit.IsEnum(reflect.TypeOf(int32(0))))
}

func TestEnumValueIsCaseInsensitive(t *testing.T) {
	v, ok := hostkit.EnumValue(reflect.TypeOf(trafficLightRed), "green")
	require.True(t, ok)
	require.Equal(t, int64(trafficLightGreen), v)

	_, ok = hostkit.EnumValue(reflect.TypeOf(trafficLightRed), "Yellow")
	require.False(t, ok)
}

func TestEnumNameRoundTrips(t *testing.T) {
	name, ok := hostkit.EnumName(reflect.TypeOf(trafficLightRed), int64(trafficLightRed))
	require.True(t, ok)
	require.Equal(t, "Red", name)

	_, ok = hostkit.EnumName(reflect.TypeOf(trafficLightRed), 99)
	require.False(t, ok)
}

// A registered enum's underlying kind (int32) still widens like any
// plain int32 once it is itself the source of a conversion: only the
// target side of IsCompatibleWith is restricted to exact-type identity.
func TestEnumSourceWidensLikeItsUnderlyingKind(t *testing.T) {
	require.True(t, hostkit.IsCompatibleWith(reflect.TypeOf(trafficLightRed), reflect.TypeOf(int64(0))))
}
