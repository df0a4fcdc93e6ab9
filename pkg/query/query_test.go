package query_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/exprlang/dynlinq/pkg/query"
)

type product struct {
	Name  string
	Price float64
	Tags  []string
}

var sample = []product{
	{Name: "widget", Price: 9.99, Tags: []string{"a", "b"}},
	{Name: "gadget", Price: 19.99, Tags: []string{"b", "c"}},
	{Name: "sprocket", Price: 2.50, Tags: []string{"a"}},
}

func TestWhereFilters(t *testing.T) {
	q, err := query.New(sample)
	require.NoError(t, err)

	filtered, err := q.Where("Price > 5")
	require.NoError(t, err)

	v := filtered.Values()
	require.Equal(t, 2, v.Len())
	require.Equal(t, "widget", v.Index(0).Interface().(product).Name)
	require.Equal(t, "gadget", v.Index(1).Interface().(product).Name)
}

func TestWhereOverNestedAggregate(t *testing.T) {
	q, err := query.New(sample)
	require.NoError(t, err)

	filtered, err := q.Where(`Tags.Any(it == "c")`)
	require.NoError(t, err)

	v := filtered.Values()
	require.Equal(t, 1, v.Len())
	require.Equal(t, "gadget", v.Index(0).Interface().(product).Name)
}

func TestSelectProjects(t *testing.T) {
	q, err := query.New(sample)
	require.NoError(t, err)

	names, err := q.Select("Name")
	require.NoError(t, err)

	v := names.Values()
	require.Equal(t, 3, v.Len())
	require.Equal(t, "widget", v.Index(0).String())
}

func TestOrderBySortsAscendingAndDescending(t *testing.T) {
	q, err := query.New(sample)
	require.NoError(t, err)

	asc, err := q.OrderBy("Price")
	require.NoError(t, err)
	v := asc.Values()
	require.Equal(t, "sprocket", v.Index(0).Interface().(product).Name)
	require.Equal(t, "gadget", v.Index(2).Interface().(product).Name)

	desc, err := q.OrderBy("Price desc")
	require.NoError(t, err)
	v = desc.Values()
	require.Equal(t, "gadget", v.Index(0).Interface().(product).Name)
	require.Equal(t, "sprocket", v.Index(2).Interface().(product).Name)
}

func TestNewRejectsNonSlice(t *testing.T) {
	_, err := query.New(42)
	require.Error(t, err)
}
