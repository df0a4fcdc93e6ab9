package types

import (
	"hash/fnv"
	"reflect"
)

// Ordering is one clause of a ParseOrdering result: a compiled selector
// expression evaluated over the implicit "it" parameter, plus its sort
// direction. Selector holds an *ir.Node; the field is typed interface{}
// rather than *ir.Node because types has no dependency on ir (ir is the
// parser's output, types is a dependency shared by both parser and
// record) — ir.Eval(ordering.Selector.(*ir.Node), scope) runs it.
type Ordering struct {
	Source    string
	Selector  interface{}
	Ascending bool
}

// DynamicProperty names one field of an anonymous record: a non-empty
// name paired with its host type. Both fields are required.
type DynamicProperty struct {
	Name string
	Type reflect.Type
}

// Signature is an ordered list of DynamicProperty with a precomputed
// hash. Two signatures are equal iff they are positionally equal on
// both name and type; the hash must agree whenever equality does, but
// two signatures may collide on hash without being equal (callers that
// key a map by signature must use Key(), not Hash() — see
// record.Factory).
type Signature struct {
	Properties []DynamicProperty
	hash       uint64
}

// NewSignature builds a Signature from a field list, computing its hash
// eagerly so construction and lookup share the same cost.
func NewSignature(fields []DynamicProperty) Signature {
	sig := Signature{Properties: append([]DynamicProperty(nil), fields...)}
	sig.hash = sig.computeHash()
	return sig
}

// Hash returns the precomputed structural hash.
func (s Signature) Hash() uint64 { return s.hash }

func (s Signature) computeHash() uint64 {
	var h uint64
	for _, p := range s.Properties {
		h ^= hashString(p.Name) ^ hashType(p.Type)
	}
	return h
}

// Equal reports positional, exact equality on (name, type).
func (s Signature) Equal(other Signature) bool {
	if len(s.Properties) != len(other.Properties) {
		return false
	}
	for i, p := range s.Properties {
		o := other.Properties[i]
		if p.Name != o.Name || p.Type != o.Type {
			return false
		}
	}
	return true
}

// key renders a Signature into a string usable as a Go map key, since
// Signature itself (holding a reflect.Type slice) is not comparable with
// ==. Positional name+type pairs are encoded unambiguously.
func (s Signature) key() string {
	b := make([]byte, 0, 64)
	for _, p := range s.Properties {
		b = append(b, p.Name...)
		b = append(b, '\x00')
		if p.Type != nil {
			b = append(b, p.Type.String()...)
		}
		b = append(b, '\x00')
	}
	return string(b)
}

// Key returns the canonical cache key for this signature.
func (s Signature) Key() string { return s.key() }

func hashString(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}

func hashType(t reflect.Type) uint64 {
	if t == nil {
		return 0
	}
	return hashString(t.String())
}
