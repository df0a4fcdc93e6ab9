// Package record implements spec.md §4.8: a signature-keyed cache of
// synthesized anonymous record types. Go has no runtime facility for
// minting a brand-new *named* type the way a CLR reflection-emit host
// does, but reflect.StructOf synthesizes a fresh *struct* type on every
// call — this package is the cache and identity layer on top of that
// primitive, giving repeated calls with an equal Signature the same
// reflect.Type back (spec.md's "Record structural identity" property).
package record

import (
	"fmt"
	"hash/fnv"
	"reflect"
	"sync"

	"github.com/exprlang/dynlinq/pkg/types"
	"github.com/google/uuid"
)

// recordNamespace seeds the deterministic per-signature debug UUID (see
// Factory.debugName). Any fixed UUID works; this one has no other
// significance.
var recordNamespace = uuid.MustParse("7f59278c-f3d1-4a57-9b2f-2a9a52ec3b39")

// Factory is the process-wide, signature-keyed cache described in
// spec.md §4.8/§5: many concurrent readers, a single writer upgrading
// to exclusive access on a miss, re-checking after the upgrade before
// emitting (double-checked insertion). Grounded on sandrolain-gosonata's
// pkg/cache/cache.go locking discipline, adapted from an LRU eviction
// cache (this cache never evicts — emitted types must stay valid for
// the lifetime of the process, per spec.md §5).
type Factory struct {
	mu    sync.RWMutex
	types map[string]entry
}

type entry struct {
	sig  types.Signature
	typ  reflect.Type
	name string
}

// New creates an empty record Factory.
func New() *Factory {
	return &Factory{types: make(map[string]entry)}
}

// CreateClass returns the cached or freshly minted reflect.Type for
// fields, per spec.md §4.8.
func (f *Factory) CreateClass(fields []types.DynamicProperty) (reflect.Type, error) {
	for _, p := range fields {
		if p.Name == "" || p.Type == nil {
			return nil, fmt.Errorf("record: field has empty name or nil type")
		}
	}
	sig := types.NewSignature(fields)
	key := sig.Key()

	f.mu.RLock()
	if e, ok := f.types[key]; ok {
		f.mu.RUnlock()
		return e.typ, nil
	}
	f.mu.RUnlock()

	f.mu.Lock()
	defer f.mu.Unlock()
	// Re-check: another writer may have inserted while we waited for
	// the exclusive lock.
	if e, ok := f.types[key]; ok {
		return e.typ, nil
	}

	typ := synthesize(fields)
	name := debugName(sig)
	f.types[key] = entry{sig: sig, typ: typ, name: name}
	return typ, nil
}

// DebugName returns the deterministic, signature-derived identifier
// minted for a cached type, or "" if the signature hasn't been used
// with CreateClass yet. Intended for logging/CLI output only — it plays
// no role in type identity, which the Signature map key alone decides.
func (f *Factory) DebugName(fields []types.DynamicProperty) string {
	sig := types.NewSignature(fields)
	f.mu.RLock()
	defer f.mu.RUnlock()
	if e, ok := f.types[sig.Key()]; ok {
		return e.name
	}
	return ""
}

func synthesize(fields []types.DynamicProperty) reflect.Type {
	sf := make([]reflect.StructField, len(fields))
	for i, p := range fields {
		sf[i] = reflect.StructField{
			Name: exportedName(p.Name, i),
			Type: p.Type,
			Tag:  reflect.StructTag(fmt.Sprintf(`json:%q`, p.Name)),
		}
	}
	return reflect.StructOf(sf)
}

// exportedName ensures the synthesized struct field is addressable via
// reflection (Go requires exported struct fields to start uppercase);
// the original, possibly lowercase, property name is preserved in the
// json tag and in DynamicProperty.Name for lookups by name.
func exportedName(name string, idx int) string {
	if name == "" {
		return fmt.Sprintf("Field%d", idx)
	}
	b := []byte(name)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] = b[0] - 'a' + 'A'
	} else if !(b[0] >= 'A' && b[0] <= 'Z') {
		return fmt.Sprintf("Field%d", idx)
	}
	return string(b)
}

func debugName(sig types.Signature) string {
	id := uuid.NewSHA1(recordNamespace, []byte(sig.Key()))
	return "DynamicRecord_" + id.String()
}

// Equal reports spec.md §4.8's record Equals semantics: exact same
// synthesized type, then per-field comparison using reflect.DeepEqual
// as the default equality comparer, short-circuiting on the first
// mismatch.
func Equal(a, b reflect.Value) bool {
	if a.Type() != b.Type() {
		return false
	}
	for i := 0; i < a.NumField(); i++ {
		if !reflect.DeepEqual(a.Field(i).Interface(), b.Field(i).Interface()) {
			return false
		}
	}
	return true
}

// HashCode implements spec.md §4.8's GetHashCode: start from zero, XOR
// in each field's hash under the default comparer.
func HashCode(v reflect.Value) uint64 {
	var h uint64
	for i := 0; i < v.NumField(); i++ {
		h ^= fieldHash(v.Field(i))
	}
	return h
}

func fieldHash(v reflect.Value) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(fmt.Sprintf("%v", v.Interface())))
	return h.Sum64()
}
