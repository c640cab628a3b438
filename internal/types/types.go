// Package types implements Arpha's type system: type construction, identity
// and structural equality for the hash-consed type registry (spec.md C1,
// §3.1, §4.1).
//
// The package has no dependency on internal/ast: expression-level
// assignability (which may retype the source expression, e.g. narrowing a
// literal to the destination's type) lives in internal/ast.CanAssignFrom, which calls down into
// this package's AssignRank for the pure type-compatibility question.
package types

import (
	"fmt"
	"strings"
)

// Type is the closed sum of all type variants (spec.md §3.1).
type Type interface {
	isType()
	String() string
	// Equals reports structural/declaration equality, per spec.md
	// invariant 1: structural constructions compare by shape (except
	// AnonymousAggregate, which compares by Registry identity), declared
	// types (Record/Variant/Trait) compare by declaration identity.
	Equals(Type) bool
}

// Weight ranks how well an argument matches a parameter (spec.md §3.1, §4.4).
type Weight int

const (
	NoMatch                  Weight = 0
	Wildcard                 Weight = 1
	ConstrainedWildcard      Weight = 2
	Literal                  Weight = 4
	Subtype                  Weight = 5
	Exact                    Weight = 6
)

// ---- nullary primitives ----

type voidType struct{}
type typeType struct{}
type boolType struct{}

func (voidType) isType()           {}
func (voidType) String() string    { return "Void" }
func (voidType) Equals(o Type) bool { _, ok := o.(voidType); return ok }

func (typeType) isType()           {}
func (typeType) String() string    { return "Type" }
func (typeType) Equals(o Type) bool { _, ok := o.(typeType); return ok }

func (boolType) isType()           {}
func (boolType) String() string    { return "Bool" }
func (boolType) Equals(o Type) bool { _, ok := o.(boolType); return ok }

var (
	Void = voidType{}
	Meta = typeType{} // the "Type" primitive from spec §3.1
	Bool = boolType{}
)

// ---- Integer / Float / Char ----

// Integer is registered per concrete integer kind (spec §3.1).
type Integer struct {
	Min, Max int64
	Bits     int
	Signed   bool
}

func (Integer) isType() {}
func (i Integer) String() string {
	if i.Signed {
		return fmt.Sprintf("int%d", i.Bits)
	}
	return fmt.Sprintf("uint%d", i.Bits)
}
func (i Integer) Equals(o Type) bool {
	oi, ok := o.(Integer)
	return ok && oi.Bits == i.Bits && oi.Signed == i.Signed
}

type Float struct{ Bits int }

func (Float) isType()        {}
func (f Float) String() string { return fmt.Sprintf("float%d", f.Bits) }
func (f Float) Equals(o Type) bool {
	of, ok := o.(Float)
	return ok && of.Bits == f.Bits
}

type Char struct{ Bits int }

func (Char) isType()        {}
func (c Char) String() string { return fmt.Sprintf("char%d", c.Bits) }
func (c Char) Equals(o Type) bool {
	oc, ok := o.(Char)
	return ok && oc.Bits == c.Bits
}

// ---- Records ----

// Field describes one member of a Record or AnonymousAggregate.
type Field struct {
	Name        string // "" for anonymous/unlabeled fields
	Type        Type
	IsExtending bool // extender field: structural subtyping to Type
	HasInit     bool
}

// Record is a user-declared (nominal) record, interfaces, variant case, etc.
// Identified by declaration identity (pointer equality), not structure.
type Record struct {
	Name   string
	Fields []Field
}

func (*Record) isType()          {}
func (r *Record) String() string { return r.Name }
func (r *Record) Equals(o Type) bool {
	or, ok := o.(*Record)
	return ok && or == r
}

// ExtendingField returns the first extender field, if any.
func (r *Record) ExtendingField() (Field, bool) {
	for _, f := range r.Fields {
		if f.IsExtending {
			return f, true
		}
	}
	return Field{}, false
}

// AnonymousAggregate is hash-consed in the Registry: two constructions with
// equal types/labels/variant-ness are the same object (spec §3.1, §4.1).
type AnonymousAggregate struct {
	Types     []Type
	Labels    []string // parallel to Types; "" where unlabeled
	IsVariant bool
}

func (*AnonymousAggregate) isType() {}
func (a *AnonymousAggregate) String() string {
	parts := make([]string, len(a.Types))
	for i, t := range a.Types {
		if a.Labels[i] != "" {
			parts[i] = a.Labels[i] + ": " + t.String()
		} else {
			parts[i] = t.String()
		}
	}
	sep := ", "
	if a.IsVariant {
		sep = " | "
	}
	return "(" + strings.Join(parts, sep) + ")"
}
func (a *AnonymousAggregate) Equals(o Type) bool {
	oa, ok := o.(*AnonymousAggregate)
	if !ok {
		return false
	}
	// Hash-consed: two aggregates are equal only when they are the same
	// Registry.GetAnonymousRecord entry, never by comparing their fields.
	return oa == a
}

// Variant is a nominal tagged union (declaration-identified).
type Variant struct {
	Name  string
	Cases []Field
}

func (*Variant) isType()          {}
func (v *Variant) String() string { return v.Name }
func (v *Variant) Equals(o Type) bool {
	ov, ok := o.(*Variant)
	return ok && ov == v
}

// Trait is a nominal interface-like method set (declaration-identified).
type Trait struct {
	Name    string
	Methods []Field // each Field.Type is a Function type
}

func (*Trait) isType()          {}
func (t *Trait) String() string { return t.Name }
func (t *Trait) Equals(o Type) bool {
	ot, ok := o.(*Trait)
	return ok && ot == t
}

// ---- Pointer family, arrays, sequences (hash-consed structural types) ----

type Pointer struct{ Elem Type }

func (Pointer) isType()          {}
func (p Pointer) String() string { return p.Elem.String() + "*" }
func (p Pointer) Equals(o Type) bool {
	op, ok := o.(Pointer)
	return ok && op.Elem.Equals(p.Elem)
}

type BoundedPointer struct{ Elem Type }

func (BoundedPointer) isType()          {}
func (p BoundedPointer) String() string { return p.Elem.String() + "[]*" }
func (p BoundedPointer) Equals(o Type) bool {
	op, ok := o.(BoundedPointer)
	return ok && op.Elem.Equals(p.Elem)
}

type BoundedConstantPointer struct {
	Elem Type
	N    int64
}

func (BoundedConstantPointer) isType() {}
func (p BoundedConstantPointer) String() string {
	return fmt.Sprintf("%s[%d]*", p.Elem.String(), p.N)
}
func (p BoundedConstantPointer) Equals(o Type) bool {
	op, ok := o.(BoundedConstantPointer)
	return ok && op.N == p.N && op.Elem.Equals(p.Elem)
}

type StaticArray struct {
	Elem Type
	N    int64
}

func (StaticArray) isType() {}
func (a StaticArray) String() string {
	return fmt.Sprintf("Array(%s, %d)", a.Elem.String(), a.N)
}
func (a StaticArray) Equals(o Type) bool {
	oa, ok := o.(StaticArray)
	return ok && oa.N == a.N && oa.Elem.Equals(a.Elem)
}

type LinearSequence struct{ Elem Type }

func (LinearSequence) isType()          {}
func (s LinearSequence) String() string { return "LinearSequence(" + s.Elem.String() + ")" }
func (s LinearSequence) Equals(o Type) bool {
	os, ok := o.(LinearSequence)
	return ok && os.Elem.Equals(s.Elem)
}

// Function is a hash-consed structural type; Arg may itself be a Record
// (multi-arg) or AnonymousAggregate.
type Function struct {
	Arg    Type
	Return Type
}

func (Function) isType() {}
func (f Function) String() string {
	return fmt.Sprintf("(%s -> %s)", f.Arg.String(), f.Return.String())
}
func (f Function) Equals(o Type) bool {
	of, ok := o.(Function)
	return ok && of.Arg.Equals(f.Arg) && of.Return.Equals(f.Return)
}

// ---- Literal carriers ----
// These are the types of not-yet-defaulted literal expressions; they widen
// to a concrete type once assigned or defaulted (spec §3.1).

type LiteralInt struct{}
type LiteralFloat struct{}
type LiteralChar struct{}
type LiteralString struct{}

func (LiteralInt) isType()            {}
func (LiteralInt) String() string     { return "LiteralInt" }
func (LiteralInt) Equals(o Type) bool { _, ok := o.(LiteralInt); return ok }

func (LiteralFloat) isType()            {}
func (LiteralFloat) String() string     { return "LiteralFloat" }
func (LiteralFloat) Equals(o Type) bool { _, ok := o.(LiteralFloat); return ok }

func (LiteralChar) isType()            {}
func (LiteralChar) String() string     { return "LiteralChar" }
func (LiteralChar) Equals(o Type) bool { _, ok := o.(LiteralChar); return ok }

func (LiteralString) isType()            {}
func (LiteralString) String() string     { return "LiteralString" }
func (LiteralString) Equals(o Type) bool { _, ok := o.(LiteralString); return ok }

// Node is the type of a quoted AST fragment (spec §3.1, §4.6).
type Node struct{ Subtype Type }

func (Node) isType() {}
func (n Node) String() string {
	if n.Subtype == nil {
		return "Node"
	}
	return "Node(" + n.Subtype.String() + ")"
}
func (n Node) Equals(o Type) bool {
	on, ok := o.(Node)
	if !ok {
		return false
	}
	if n.Subtype == nil || on.Subtype == nil {
		return n.Subtype == on.Subtype
	}
	return n.Subtype.Equals(on.Subtype)
}

// AssignRank reports whether a value of type src can be used where dst is
// expected, and how good that match is (spec §3.1's canAssignFrom weight
// table: Exact=6, Subtype=5, Literal=4; no match is Weight 0). It is
// deliberately blind to expressions: internal/ast.CanAssignFrom wraps this
// with the expression-level narrowing-literal rewrite (setting an
// IntegerLiteral's type to the destination's concrete integer type).
func AssignRank(dst, src Type) (Weight, bool) {
	if dst.Equals(src) {
		return Exact, true
	}
	switch d := dst.(type) {
	case Integer:
		if _, ok := src.(LiteralInt); ok {
			return Literal, true
		}
	case Float:
		if _, ok := src.(LiteralFloat); ok {
			return Literal, true
		}
	case Char:
		if _, ok := src.(LiteralChar); ok {
			return Literal, true
		}
	case LinearSequence:
		if _, ok := src.(LiteralString); ok {
			if _, isChar := d.Elem.(Char); isChar {
				return Literal, true
			}
		}
	case *Trait:
		// Structural subtyping: src must supply every method the trait
		// declares (spec §3.1's extender-field / trait conformance rule).
		if ok := traitSatisfiedBy(d, src); ok {
			return Subtype, true
		}
	case *Record:
		if sr, ok := src.(*Record); ok {
			if ef, has := sr.ExtendingField(); has {
				if _, ok := AssignRank(d, ef.Type); ok {
					return Subtype, true // direct or transitive extender
				}
			}
		}
	}
	return NoMatch, false
}

func traitSatisfiedBy(tr *Trait, src Type) bool {
	methods := methodSetOf(src)
	if methods == nil {
		return false
	}
	for _, want := range tr.Methods {
		fn, ok := methods[want.Name]
		if !ok || !fn.Equals(want.Type) {
			return false
		}
	}
	return true
}

// methodSetOf returns the declared method set of a type that can satisfy a
// Trait, keyed by name. Only Record is wired today; extending this to
// Variant is a one-line addition once variant methods are modeled.
func methodSetOf(t Type) map[string]Type {
	if r, ok := t.(*Record); ok {
		m := make(map[string]Type, len(r.Fields))
		for _, f := range r.Fields {
			if fn, ok := f.Type.(Function); ok {
				m[f.Name] = fn
			}
		}
		return m
	}
	return nil
}

// Default built-in integer kinds, registered once at process start by the
// intrinsic/primitive registry (spec.md §1's "out of scope" registry); kept
// here as the canonical Registry-backed instances every component shares.
var (
	Int8   = Integer{Min: -1 << 7, Max: 1<<7 - 1, Bits: 8, Signed: true}
	Int16  = Integer{Min: -1 << 15, Max: 1<<15 - 1, Bits: 16, Signed: true}
	Int32  = Integer{Min: -1 << 31, Max: 1<<31 - 1, Bits: 32, Signed: true}
	Int64  = Integer{Min: -1 << 63, Max: 1<<63 - 1, Bits: 64, Signed: true}
	UInt8  = Integer{Min: 0, Max: 1<<8 - 1, Bits: 8, Signed: false}
	UInt16 = Integer{Min: 0, Max: 1<<16 - 1, Bits: 16, Signed: false}
	UInt32 = Integer{Min: 0, Max: 1<<32 - 1, Bits: 32, Signed: false}
	UInt64 = Integer{Min: 0, Max: 1<<63 - 1, Bits: 64, Signed: false} // Max is an int64, so it stops at the largest int64 rather than 2^64-1

	Float32 = Float{Bits: 32}
	Float64 = Float{Bits: 64}
)

// DefaultOf widens a not-yet-defaulted literal carrier to its default
// concrete type (spec §3.1): Int32 for an integer literal, Float64 for a
// float literal, a 32-bit Char, and a LinearSequence of that Char for a
// string literal. Anything that isn't a Literal* carrier is returned
// unchanged — this is the "no assignment destination to narrow against"
// counterpart to AssignRank's Literal-weight narrowing, used wherever a
// literal's type feeds something other than an assignment (e.g. binding a
// generic's pattern variable to a call-site argument's type, spec §4.6).
func DefaultOf(t Type) Type {
	switch t.(type) {
	case LiteralInt:
		return Int32
	case LiteralFloat:
		return Float64
	case LiteralChar:
		return Char{Bits: 32}
	case LiteralString:
		return LinearSequence{Elem: Char{Bits: 32}}
	default:
		return t
	}
}
