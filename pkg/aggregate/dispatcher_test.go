package aggregate_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/exprlang/dynlinq/pkg/aggregate"
)

func TestLookupDistinguishesArityByHasArg(t *testing.T) {
	withArg, ok := aggregate.Lookup("Any", true)
	require.True(t, ok)
	require.Equal(t, aggregate.ArgBool, withArg.Arg)

	withoutArg, ok := aggregate.Lookup("Any", false)
	require.True(t, ok)
	require.Equal(t, aggregate.ArgNone, withoutArg.Arg)
}

func TestLookupMissingArityFails(t *testing.T) {
	_, ok := aggregate.Lookup("Where", false)
	require.False(t, ok, "Where has no zero-argument form")
}

func TestLookupUnknownNameFails(t *testing.T) {
	_, ok := aggregate.Lookup("Frobnicate", true)
	require.False(t, ok)
}

func TestIsAggregateNameAcrossEitherArity(t *testing.T) {
	require.True(t, aggregate.IsAggregateName("Where"))
	require.True(t, aggregate.IsAggregateName("Distinct"))
	require.False(t, aggregate.IsAggregateName("Length"))
}

func TestResultTypeForSingleElementForms(t *testing.T) {
	elem := reflect.TypeOf("")
	form, ok := aggregate.Lookup("FirstOrDefault", true)
	require.True(t, ok)
	require.True(t, aggregate.IsSingleElement(form))
	require.Equal(t, elem, aggregate.ResultType(form, elem, nil))
}

func TestResultTypeForSliceReturningForms(t *testing.T) {
	elem := reflect.TypeOf(int32(0))
	form, ok := aggregate.Lookup("Where", true)
	require.True(t, ok)
	require.False(t, aggregate.IsSingleElement(form))
	require.Equal(t, reflect.SliceOf(elem), aggregate.ResultType(form, elem, nil))
}

func TestResultTypeFollowsBodyForSelectAndNumerics(t *testing.T) {
	elem := reflect.TypeOf(int32(0))
	body := reflect.TypeOf(float64(0))

	selectForm, ok := aggregate.Lookup("Select", true)
	require.True(t, ok)
	require.Equal(t, reflect.SliceOf(body), aggregate.ResultType(selectForm, elem, body))

	sumForm, ok := aggregate.Lookup("Sum", true)
	require.True(t, ok)
	require.Equal(t, body, aggregate.ResultType(sumForm, elem, body))
}

func TestResultTypeBoolAndIntForms(t *testing.T) {
	elem := reflect.TypeOf("")
	anyForm, _ := aggregate.Lookup("Any", true)
	require.Equal(t, reflect.TypeOf(false), aggregate.ResultType(anyForm, elem, nil))

	countForm, _ := aggregate.Lookup("Count", false)
	require.Equal(t, reflect.TypeOf(0), aggregate.ResultType(countForm, elem, nil))
}

func TestContainsIsMarkedAsSingleValueForm(t *testing.T) {
	form, ok := aggregate.Lookup("Contains", true)
	require.True(t, ok)
	require.Equal(t, aggregate.ArgContains, form.Arg,
		"Contains's argument is evaluated once under a pushed it frame, not per element")
}
