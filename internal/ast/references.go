package ast

import (
	"github.com/hyp/arpha/internal/scope"
	"github.com/hyp/arpha/internal/token"
	"github.com/hyp/arpha/internal/types"
)

// TypeRef is an expression that denotes a resolved Type value, e.g. after a
// type-pattern subtree or a bare type name has been settled (spec §3.2,
// §4.3). Its own ReturnType is types.Meta; the denoted type is Denoted.
type TypeRef struct {
	base
	Denoted types.Type
}

func NewTypeRef(pos token.Position, t types.Type) *TypeRef {
	n := &TypeRef{Denoted: t}
	n.Loc = pos
	n.retType = types.Meta
	n.flags = Resolved | Constant | IsType
	return n
}
func (n *TypeRef) String() string { return n.Denoted.String() }

// VariableRef is a resolved reference to a Variable or Argument binding.
type VariableRef struct {
	base
	Var *Variable
}

func NewVariableRef(pos token.Position, v *Variable) *VariableRef {
	n := &VariableRef{Var: v}
	n.Loc = pos
	if v.Type() != nil {
		n.retType = v.Type()
		n.flags = Resolved
	}
	return n
}
func (n *VariableRef) String() string { return n.Var.Name }

// ArgumentRef is a resolved reference to a Function Argument; kept distinct
// from VariableRef because an Argument may still be pattern-bound (its
// resolved Type depends on the call-site specialization) while a plain
// Variable's type is scope-local (spec §4.3, §4.6).
type ArgumentRef struct {
	base
	Arg *Argument
}

func NewArgumentRef(pos token.Position, a *Argument) *ArgumentRef {
	n := &ArgumentRef{Arg: a}
	n.Loc = pos
	if a.Type() != nil {
		n.retType = a.Type()
		n.flags = Resolved
	}
	return n
}
func (n *ArgumentRef) String() string { return n.Arg.Name }

// FunctionRef is a resolved reference to a single, non-overloaded Function
// (spec §4.5: once overload resolution picks a unique candidate, the Call's
// Callee is rewritten to a FunctionRef naming it).
type FunctionRef struct {
	base
	Fn *Function
}

func NewFunctionRef(pos token.Position, fn *Function) *FunctionRef {
	n := &FunctionRef{Fn: fn}
	n.Loc = pos
	// Resolved here means "the name was looked up to this Function", not
	// "its signature is concrete" — a generic Function's own declaration
	// never becomes TypeResolved (only its specializations do, spec
	// §4.6), so gating on that would leave every call to a generic
	// permanently unable to even reach overload/specialize resolution.
	n.flags = Resolved
	if fn.TypeResolved() {
		n.retType = fn.Type()
	}
	return n
}
func (n *FunctionRef) String() string { return n.Fn.Name }

// OverloadsetRef is an as-yet-unresolved reference to a name bound to more
// than one Function; overload resolution (spec §4.4) consumes it and
// replaces it with a FunctionRef (or an ErrorExpression on ambiguity).
type OverloadsetRef struct {
	base
	Set *Overloadset
}

func NewOverloadsetRef(pos token.Position, set *Overloadset) *OverloadsetRef {
	n := &OverloadsetRef{Set: set}
	n.Loc = pos
	// Resolved means "the name names this overload set" — which overload
	// wins, and whether each candidate's own header is settled, is
	// overload.Resolve's job at the call site (spec §4.4), not a
	// precondition for this reference existing.
	n.flags = Resolved
	return n
}
func (n *OverloadsetRef) String() string { return n.Set.Name }

// ImportedScopeRef denotes a qualifier expression resolving to an imported
// scope (e.g. a module or namespace name used before `.`), spec §3.3, §4.2.
type ImportedScopeRef struct {
	base
	Scope *scope.Scope
	Name  string
}

func NewImportedScopeRef(pos token.Position, name string, s *scope.Scope) *ImportedScopeRef {
	n := &ImportedScopeRef{Scope: s, Name: name}
	n.Loc = pos
	n.flags = Resolved
	return n
}
func (n *ImportedScopeRef) String() string { return n.Name }

// UnresolvedSymbol is a bare identifier the resolver has not yet looked up,
// or looked up and failed to find in LookupScope (spec §4.2, §4.8).
type UnresolvedSymbol struct {
	base
	Name        string
	LookupScope *scope.Scope
}

func NewUnresolvedSymbol(pos token.Position, name string, lookupScope *scope.Scope) *UnresolvedSymbol {
	n := &UnresolvedSymbol{Name: name, LookupScope: lookupScope}
	n.Loc = pos
	return n
}
func (n *UnresolvedSymbol) String() string { return n.Name }

// BoundPattern is a type-pattern subtree of the form `label:inner` (spec
// §4.3's "T:_"): it never resolves to a concrete Type by itself — Inner may
// be a bare `_`, a constrained wildcard, or a nested generator-call pattern
// — it only marks that whatever concrete type Inner matches at a call site
// should also be bound to Label. internal/resolver's patternsFor converts
// this into a pattern.Pattern{Kind: BoundName} for the pattern matcher and
// specializer to consume; the resolver's ordinary fixpoint loop leaves it
// alone (a generic Function's header never becomes a single concrete
// types.Function — only its specializations do).
type BoundPattern struct {
	base
	Label string
	Inner Expression
}

func NewBoundPattern(pos token.Position, label string, inner Expression) *BoundPattern {
	n := &BoundPattern{Label: label, Inner: inner}
	n.Loc = pos
	return n
}
func (n *BoundPattern) String() string { return n.Label + ":" + n.Inner.String() }

// AccessExpression is an unresolved `object.name` form: it may settle into
// a record field access or a qualified imported-scope lookup (spec §4.2,
// §4.8's per-kind contracts). It is not rewritten into a call of name with
// object as an argument, so on any other object it stays unresolved.
type AccessExpression struct {
	base
	Object Expression
	Name   string
}

func NewAccessExpression(pos token.Position, object Expression, name string) *AccessExpression {
	n := &AccessExpression{Object: object, Name: name}
	n.Loc = pos
	return n
}
func (n *AccessExpression) String() string { return n.Object.String() + "." + n.Name }

// FieldAccess is the resolved form of AccessExpression against a Record
// value: a positional field read (spec §4.2).
type FieldAccess struct {
	base
	Object    Expression
	Index     int
	FieldName string
}

func NewFieldAccess(pos token.Position, object Expression, index int, name string) *FieldAccess {
	n := &FieldAccess{Object: object, Index: index, FieldName: name}
	n.Loc = pos
	return n
}
func (n *FieldAccess) String() string { return n.Object.String() + "." + n.FieldName }
