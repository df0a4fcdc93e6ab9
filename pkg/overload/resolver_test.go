package overload_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/exprlang/dynlinq/pkg/ir"
	"github.com/exprlang/dynlinq/pkg/overload"
	"github.com/exprlang/dynlinq/pkg/types"
)

func constArg(t reflect.Type, v interface{}) *ir.Node {
	return &ir.Node{Kind: ir.KindConstant, Type: t, Value: v}
}

func TestResolveSingleApplicableCandidate(t *testing.T) {
	candidates := []overload.Candidate{
		{Params: []overload.Param{overload.One(reflect.TypeOf(""))}, Payload: "string-form"},
	}
	args := []*ir.Node{constArg(reflect.TypeOf(""), "hi")}

	out, err := overload.Resolve(candidates, args, nil, 0)
	require.NoError(t, err)
	require.Equal(t, "string-form", out.Candidate.Payload)
}

func TestResolveNoApplicableCandidateFails(t *testing.T) {
	candidates := []overload.Candidate{
		{Params: []overload.Param{overload.One(reflect.TypeOf(false))}, Payload: "bool-form"},
	}
	args := []*ir.Node{constArg(reflect.TypeOf(""), "hi")}

	_, err := overload.Resolve(candidates, args, nil, 0)
	require.Error(t, err)
	var pe *types.ParseError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, types.ErrNoApplicableMethod, pe.Code)
}

// A widened int32 argument picks the narrowest applicable candidate
// (int32) over a wider one (int64), matching spec.md §4.6's
// better-conversion ranking over overload.SameTypeCandidates.
func TestResolvePicksNarrowestApplicableCandidate(t *testing.T) {
	candidates := overload.SameTypeCandidates([]reflect.Type{
		reflect.TypeOf(int32(0)), reflect.TypeOf(int64(0)),
	})
	args := []*ir.Node{
		constArg(reflect.TypeOf(int32(0)), int32(3)),
		constArg(reflect.TypeOf(int32(0)), int32(4)),
	}

	out, err := overload.Resolve(candidates, args, nil, 0)
	require.NoError(t, err)
	require.Equal(t, reflect.TypeOf(int32(0)), out.Candidate.Payload)
}

func TestResolveAmbiguousWhenNoCandidateStrictlyWins(t *testing.T) {
	candidates := []overload.Candidate{
		{Params: []overload.Param{overload.One(reflect.TypeOf(int32(0))), overload.One(reflect.TypeOf(int64(0)))}, Payload: "a"},
		{Params: []overload.Param{overload.One(reflect.TypeOf(int64(0))), overload.One(reflect.TypeOf(int32(0)))}, Payload: "b"},
	}
	args := []*ir.Node{
		constArg(reflect.TypeOf(int32(0)), int32(1)),
		constArg(reflect.TypeOf(int32(0)), int32(2)),
	}

	_, err := overload.Resolve(candidates, args, nil, 0)
	require.Error(t, err)
	var pe *types.ParseError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, types.ErrAmbiguousMethodInvocation, pe.Code)
}

func TestResolveRejectsArityMismatch(t *testing.T) {
	candidates := []overload.Candidate{
		{Params: []overload.Param{overload.One(reflect.TypeOf(""))}, Payload: "one-arg"},
	}
	args := []*ir.Node{constArg(reflect.TypeOf(""), "a"), constArg(reflect.TypeOf(""), "b")}

	_, err := overload.Resolve(candidates, args, nil, 0)
	require.Error(t, err)
}

func TestResolveUnionParamMatchesAnyMember(t *testing.T) {
	candidates := []overload.Candidate{
		{Params: []overload.Param{overload.Union(reflect.TypeOf(int32(0)), reflect.TypeOf(""))}, Payload: "union-form"},
	}
	args := []*ir.Node{constArg(reflect.TypeOf(""), "hi")}

	out, err := overload.Resolve(candidates, args, nil, 0)
	require.NoError(t, err)
	require.Equal(t, "union-form", out.Candidate.Payload)
}

func TestSameTypeCandidatesBuildsOneCandidatePerType(t *testing.T) {
	ts := []reflect.Type{reflect.TypeOf(false), reflect.TypeOf(int32(0))}
	cands := overload.SameTypeCandidates(ts)
	require.Len(t, cands, 2)
	for i, c := range cands {
		require.Len(t, c.Params, 2)
		require.Equal(t, ts[i], c.Payload)
	}
}
