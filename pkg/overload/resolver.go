// Package overload implements spec.md §4.6: applicability and
// better-conversion ranking over a candidate signature set. The same
// machine backs operator dispatch, method calls, indexers, and
// constructors — callers only differ in how they build the Candidate
// slice.
package overload

import (
	"reflect"
	"strings"

	"github.com/exprlang/dynlinq/pkg/hostkit"
	"github.com/exprlang/dynlinq/pkg/ir"
	"github.com/exprlang/dynlinq/pkg/promote"
	"github.com/exprlang/dynlinq/pkg/types"
	"golang.org/x/exp/slices"
)

// Param is one candidate parameter slot. Most slots name a single
// reflect.Type; the synthetic operator-signature sets of spec.md §4.4
// are "intentionally over-generous" unions of acceptable types, so a
// slot may instead list several — the argument need only promote to
// one member, and that member is what ranking compares against.
type Param struct {
	Types []reflect.Type
}

// One builds a single-type Param.
func One(t reflect.Type) Param { return Param{Types: []reflect.Type{t}} }

// Union builds a multi-type Param (an operator-signature set member).
func Union(ts ...reflect.Type) Param { return Param{Types: ts} }

// Candidate is one signature competing for a call site.
type Candidate struct {
	Params  []Param
	Payload interface{}
}

// Outcome is returned by Resolve: the winning candidate plus the
// argument nodes after promotion to its parameter types.
type Outcome struct {
	Candidate Candidate
	Promoted  []*ir.Node
}

type applicable struct {
	cand     Candidate
	promoted []*ir.Node
	// chosen holds, per argument, which Param.Types member matched —
	// needed by betterThan's per-position comparison.
	chosen []reflect.Type
}

// Resolve runs spec.md §4.6 end to end.
func Resolve(candidates []Candidate, args []*ir.Node, literals promote.LiteralText, pos int) (Outcome, error) {
	var pool []applicable
	for _, c := range candidates {
		if len(c.Params) != len(args) {
			continue
		}
		promoted := make([]*ir.Node, len(args))
		chosen := make([]reflect.Type, len(args))
		ok := true
		for i, a := range args {
			n, t, err := promoteToSlot(a, c.Params[i], literals)
			if err != nil {
				ok = false
				break
			}
			promoted[i] = n
			chosen[i] = t
		}
		if ok {
			pool = append(pool, applicable{cand: c, promoted: promoted, chosen: chosen})
		}
	}

	if len(pool) == 0 {
		return Outcome{}, types.NewParseError(types.ErrNoApplicableMethod, pos,
			"no applicable overload for %d argument(s)", len(args))
	}
	if len(pool) == 1 {
		return Outcome{Candidate: pool[0].cand, Promoted: pool[0].promoted}, nil
	}

	var survivors []int
	for i := range pool {
		beaten := false
		for j := range pool {
			if i == j {
				continue
			}
			if betterThan(pool[j], pool[i], args) {
				beaten = true
				break
			}
		}
		if !beaten {
			survivors = append(survivors, i)
		}
	}

	switch len(survivors) {
	case 1:
		p := pool[survivors[0]]
		return Outcome{Candidate: p.cand, Promoted: p.promoted}, nil
	case 0:
		return Outcome{}, types.NewParseError(types.ErrAmbiguousMethodInvocation, pos,
			"ambiguous invocation among %d candidates: %s", len(pool), describeTied(pool, rangeOf(len(pool))))
	default:
		return Outcome{}, types.NewParseError(types.ErrAmbiguousMethodInvocation, pos,
			"ambiguous invocation among %d candidates: %s", len(survivors), describeTied(pool, survivors))
	}
}

func rangeOf(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

// describeTied renders the parameter-type signatures of the tied
// candidates at the given pool indices, sorted for a deterministic
// error message (candidates commonly reach Resolve already collected
// from a map elsewhere in the call chain, so pool order alone is not a
// reliable rendering order).
func describeTied(pool []applicable, indices []int) string {
	descs := make([]string, len(indices))
	for i, idx := range indices {
		descs[i] = describeCandidate(pool[idx].cand)
	}
	slices.SortFunc(descs, func(a, b string) int { return strings.Compare(a, b) })
	return strings.Join(descs, ", ")
}

func describeCandidate(c Candidate) string {
	parts := make([]string, len(c.Params))
	for i, p := range c.Params {
		names := make([]string, len(p.Types))
		for j, t := range p.Types {
			names[j] = t.String()
		}
		parts[i] = strings.Join(names, "|")
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// promoteToSlot tries each member of slot.Types in order, returning the
// first that promotes successfully along with the member type it chose.
func promoteToSlot(a *ir.Node, slot Param, literals promote.LiteralText) (*ir.Node, reflect.Type, error) {
	var lastErr error
	for _, t := range slot.Types {
		n, err := promote.Expression(a, t, false, literals)
		if err == nil {
			return n, t, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = types.NewParseError(types.ErrNoApplicableMethod, a.Position, "no parameter type to promote to")
	}
	return nil, nil, lastErr
}

// betterThan implements spec.md §4.6 step 2.
func betterThan(m, n applicable, args []*ir.Node) bool {
	strictlyBetterSomewhere := false
	for i, a := range args {
		c := cmp(a.Type, m.chosen[i], n.chosen[i])
		if c < 0 {
			return false
		}
		if c > 0 {
			strictlyBetterSomewhere = true
		}
	}
	return strictlyBetterSomewhere
}

// cmp implements spec.md §4.6 step 3: +1 means t1 is the better target.
func cmp(s, t1, t2 reflect.Type) int {
	if t1 == t2 {
		return 0
	}
	if s == t1 {
		return 1
	}
	if s == t2 {
		return -1
	}
	c1 := hostkit.IsCompatibleWith(t1, t2)
	c2 := hostkit.IsCompatibleWith(t2, t1)
	if c1 != c2 {
		if c1 {
			return 1
		}
		return -1
	}
	if signedBeatsUnsigned(t1, t2) {
		return 1
	}
	if signedBeatsUnsigned(t2, t1) {
		return -1
	}
	return 0
}

// signedBeatsUnsigned reports whether a is a signed integral type and b
// is the unsigned integral type of the same bit width.
func signedBeatsUnsigned(a, b reflect.Type) bool {
	if hostkit.NumericKind(a) != hostkit.KindSigned || hostkit.NumericKind(b) != hostkit.KindUnsigned {
		return false
	}
	return bitWidth(hostkit.NonNullable(a)) == bitWidth(hostkit.NonNullable(b))
}

func bitWidth(t reflect.Type) int {
	switch t.Kind() {
	case reflect.Int8, reflect.Uint8:
		return 8
	case reflect.Int16, reflect.Uint16:
		return 16
	case reflect.Int32, reflect.Uint32, reflect.Int, reflect.Uint:
		return 32
	default:
		return 64
	}
}
