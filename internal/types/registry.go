package types

// Registry hash-conses every structural Type Arpha constructs during
// resolution, so that two call sites building "the same" shape — most
// importantly two anonymous records with identical field types/labels,
// spec.md §8 invariant 1 and scenario S3 — get back the identical *Type
// value rather than two structurally-equal-but-distinct pointers.
//
// Nominal types (Record/Variant/Trait) are declaration-identified and
// never go through the Registry: their identity IS their declaration.
// Registry only covers the structural family: Pointer/BoundedPointer/
// BoundedConstantPointer/StaticArray/LinearSequence/Function/
// AnonymousAggregate, plus Integer (so a custom bit-width doesn't
// proliferate distinct Min/Max-bearing values for the same (bits,signed)
// pair).
//
// Grounded on spec.md C1's interning requirement; the teacher's own
// typesystem package does structural HM types and has no analogous
// registry, so the fingerprint-keyed map shape here is this package's
// own (a plain `map[string]*T` keyed by the candidate's String() form,
// which is already a deterministic structural encoding of every variant
// below).
type Registry struct {
	pointers     map[string]*Pointer
	boundedPtrs  map[string]*BoundedPointer
	boundedConst map[string]*BoundedConstantPointer
	arrays       map[string]*StaticArray
	sequences    map[string]*LinearSequence
	functions    map[string]*Function
	aggregates   map[string]*AnonymousAggregate
	integers     map[string]*Integer
}

// NewRegistry creates an empty Registry, pre-seeded with the canonical
// built-in integer kinds so GetIntegerType(32, true) returns the same
// *Integer as every other caller asking for a plain Int32, rather than a
// freshly allocated duplicate.
func NewRegistry() *Registry {
	r := &Registry{
		pointers:     make(map[string]*Pointer),
		boundedPtrs:  make(map[string]*BoundedPointer),
		boundedConst: make(map[string]*BoundedConstantPointer),
		arrays:       make(map[string]*StaticArray),
		sequences:    make(map[string]*LinearSequence),
		functions:    make(map[string]*Function),
		aggregates:   make(map[string]*AnonymousAggregate),
		integers:     make(map[string]*Integer),
	}
	for _, i := range []Integer{Int8, Int16, Int32, Int64, UInt8, UInt16, UInt32, UInt64} {
		i := i
		r.integers[integerKey(i.Bits, i.Signed)] = &i
	}
	return r
}

func integerKey(bits int, signed bool) string {
	if signed {
		return "int" + itoa(bits)
	}
	return "uint" + itoa(bits)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// GetIntegerType returns the canonical *Integer for (bits, signed),
// registering it on first request. Arpha's built-in kinds (Int8..UInt64)
// are pre-seeded by NewRegistry; a type generator producing a non-standard
// width still gets a single shared instance per distinct width/signedness.
func (r *Registry) GetIntegerType(bits int, signed bool) *Integer {
	key := integerKey(bits, signed)
	if i, ok := r.integers[key]; ok {
		return i
	}
	max := int64(1)<<uint(bits-1) - 1
	min := -max - 1
	if !signed {
		min = 0
		max = int64(1)<<uint(bits) - 1
	}
	i := &Integer{Min: min, Max: max, Bits: bits, Signed: signed}
	r.integers[key] = i
	return i
}

// GetPointer returns the canonical Pointer{Elem: elem}.
func (r *Registry) GetPointer(elem Type) Pointer {
	key := elem.String()
	if p, ok := r.pointers[key]; ok {
		return *p
	}
	p := Pointer{Elem: elem}
	r.pointers[key] = &p
	return p
}

// GetBoundedPointer returns the canonical BoundedPointer{Elem: elem}.
func (r *Registry) GetBoundedPointer(elem Type) BoundedPointer {
	key := elem.String()
	if p, ok := r.boundedPtrs[key]; ok {
		return *p
	}
	p := BoundedPointer{Elem: elem}
	r.boundedPtrs[key] = &p
	return p
}

// GetBoundedConstantPointer returns the canonical BoundedConstantPointer
// for (elem, n).
func (r *Registry) GetBoundedConstantPointer(elem Type, n int64) BoundedConstantPointer {
	key := elem.String() + "#" + itoa(int(n))
	if p, ok := r.boundedConst[key]; ok {
		return *p
	}
	p := BoundedConstantPointer{Elem: elem, N: n}
	r.boundedConst[key] = &p
	return p
}

// GetStaticArray returns the canonical StaticArray for (elem, n).
func (r *Registry) GetStaticArray(elem Type, n int64) StaticArray {
	key := elem.String() + "#" + itoa(int(n))
	if a, ok := r.arrays[key]; ok {
		return *a
	}
	a := StaticArray{Elem: elem, N: n}
	r.arrays[key] = &a
	return a
}

// GetLinearSequence returns the canonical LinearSequence{Elem: elem}.
func (r *Registry) GetLinearSequence(elem Type) LinearSequence {
	key := elem.String()
	if s, ok := r.sequences[key]; ok {
		return *s
	}
	s := LinearSequence{Elem: elem}
	r.sequences[key] = &s
	return s
}

// GetFunction returns the canonical Function{Arg: arg, Return: ret}.
func (r *Registry) GetFunction(arg, ret Type) Function {
	key := arg.String() + "->" + ret.String()
	if f, ok := r.functions[key]; ok {
		return *f
	}
	f := Function{Arg: arg, Return: ret}
	r.functions[key] = &f
	return f
}

// GetAnonymousRecord returns the canonical *AnonymousAggregate for this
// exact sequence of (type, label) pairs and variant-ness — the fix for
// spec.md §8 invariant 1 / scenario S3: two call sites building "the same"
// anonymous record now share one pointer, so AnonymousAggregate.Equals's
// identity check (oa == a) actually holds between them.
func (r *Registry) GetAnonymousRecord(elemTypes []Type, labels []string, isVariant bool) *AnonymousAggregate {
	key := aggregateKey(elemTypes, labels, isVariant)
	if a, ok := r.aggregates[key]; ok {
		return a
	}
	a := &AnonymousAggregate{
		Types:     append([]Type(nil), elemTypes...),
		Labels:    append([]string(nil), labels...),
		IsVariant: isVariant,
	}
	r.aggregates[key] = a
	return a
}

func aggregateKey(elemTypes []Type, labels []string, isVariant bool) string {
	var sb []byte
	if isVariant {
		sb = append(sb, 'V')
	} else {
		sb = append(sb, 'R')
	}
	for i, t := range elemTypes {
		sb = append(sb, '|')
		sb = append(sb, labels[i]...)
		sb = append(sb, ':')
		sb = append(sb, t.String()...)
	}
	return string(sb)
}
