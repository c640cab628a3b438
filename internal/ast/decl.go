package ast

import (
	"strings"

	"github.com/hyp/arpha/internal/ctfebind"
	"github.com/hyp/arpha/internal/scope"
	"github.com/hyp/arpha/internal/token"
	"github.com/hyp/arpha/internal/types"
)

// declBase is embedded by declaration nodes: a Statement that also names
// itself as a scope.Definition.
type declBase struct {
	Loc  token.Position
	Name string
}

func (d *declBase) Pos() token.Position  { return d.Loc }
func (d *declBase) statementNode()       {}
func (d *declBase) DefinitionName() string { return d.Name }

// Variable is a `var` binding, a `let`-bound match arm, or a bare-name
// pattern binding introduced during pattern matching (spec §3.3, §4.3).
type Variable struct {
	declBase
	OwningScope *scope.Scope
	Mutable     bool
	// TypePattern is the (possibly unresolved) expression subtree naming
	// the variable's declared type, or nil if only Init determines it.
	TypePattern Expression
	Init        Expression // nil for an argument/pattern binding with no initializer
	// ConstSubstitute holds the constant value substituted in for this
	// variable during CTFE/macro-argument binding (spec §4.6), nil
	// otherwise.
	ConstSubstitute Expression

	resolvedType types.Type
}

func NewVariable(pos token.Position, name string, owner *scope.Scope, mutable bool) *Variable {
	return &Variable{declBase: declBase{Loc: pos, Name: name}, OwningScope: owner, Mutable: mutable}
}
func (v *Variable) String() string { return "var " + v.Name }
func (v *Variable) Type() types.Type { return v.resolvedType }
func (v *Variable) SetType(t types.Type) { v.resolvedType = t }

// Argument is one parameter of a Function. Its Type field is a type
// pattern expression (spec §4.3): a bare type, a wildcard, a constrained
// wildcard, or a generator-call pattern.
type Argument struct {
	declBase
	Owner        *Function
	Pattern      Expression // the argument's type-pattern subtree
	Default      Expression // nil if required
	Label        string     // "" if positional-only
	Expandable   bool       // trailing `...` variadic absorber
	resolvedType types.Type
}

func NewArgument(pos token.Position, name string, pattern Expression) *Argument {
	return &Argument{declBase: declBase{Loc: pos, Name: name}, Pattern: pattern}
}
func (a *Argument) String() string    { return a.Name }
func (a *Argument) Type() types.Type  { return a.resolvedType }
func (a *Argument) SetType(t types.Type) { a.resolvedType = t }

// FunctionFlags records function-level metadata distinct from the node
// Flags on ordinary expressions (spec §4.5, §4.6, §4.7).
type FunctionFlags uint16

const (
	FnMacro          FunctionFlags = 1 << iota // CTFE'd; result spliced as a quoted AST
	FnTypeGenerator                            // may appear in a type-pattern position
	FnConstraint                                // constrained-wildcard predicate
	FnFieldAccess                               // synthesized record-field accessor
	FnIntrinsic                                 // backed by a ctfebind.Binder, no body
	FnPure                                      // side-effect-free; eligible for constant folding
	FnContainsReturn                            // body contains an explicit `return`
	FnHasExpandableArgs                         // last argument is variadic
	FnHasPatternArgs                            // >=1 argument uses a non-bare-type pattern
)

// Function is a `def` declaration: a named, possibly overloaded, possibly
// generic callable (spec §3.3, §4.4, §4.5, §4.6).
type Function struct {
	declBase
	OwningScope  *scope.Scope
	BodyScope    *scope.Scope // scope introducing Arguments, nested in OwningScope
	Arguments    []*Argument
	ReturnTypePattern Expression // nil: inferred from Body
	Body         *Block         // nil for an intrinsic
	Flags        FunctionFlags
	Intrinsic    ctfebind.Binder // non-nil iff FnIntrinsic

	// GenericSource is non-nil when this Function is a cached
	// specialization produced from a generic definition (spec §4.6's
	// specialization cache); it points back to the generic original.
	GenericSource *Function
	Specializations map[string]*Function // spec.SpecializationKey -> instance

	resolvedType types.Function
	typeResolved bool
}

func NewFunction(pos token.Position, name string, owner *scope.Scope) *Function {
	return &Function{
		declBase:        declBase{Loc: pos, Name: name},
		OwningScope:     owner,
		Specializations: make(map[string]*Function),
	}
}

func (f *Function) String() string {
	parts := make([]string, len(f.Arguments))
	for i, a := range f.Arguments {
		parts[i] = a.Name
	}
	return "def " + f.Name + "(" + strings.Join(parts, ", ") + ")"
}

func (f *Function) IsGeneric() bool { return f.Flags&FnHasPatternArgs != 0 }

func (f *Function) Type() types.Function     { return f.resolvedType }
func (f *Function) SetType(t types.Function) { f.resolvedType = t; f.typeResolved = true }
func (f *Function) TypeResolved() bool       { return f.typeResolved }

// Overloadset is the Definition a name is promoted to once a scope binds
// two or more Functions to it (spec §4.5's candidate-collection source).
type Overloadset struct {
	declBase
	Functions []*Function
}

func NewOverloadset(name string, fns ...*Function) *Overloadset {
	return &Overloadset{declBase: declBase{Name: name}, Functions: fns}
}
func (o *Overloadset) String() string { return "overloadset " + o.Name }
func (o *Overloadset) Add(f *Function) { o.Functions = append(o.Functions, f) }

// Record is a nominal product-type declaration (spec §3.1, §3.3).
type RecordFieldDecl struct {
	Name        string
	Pattern     Expression // type-pattern subtree
	IsExtending bool
	Init        Expression
}

type Record struct {
	declBase
	OwningScope *scope.Scope
	Fields      []RecordFieldDecl
	resolved    *types.Record
}

func NewRecord(pos token.Position, name string, owner *scope.Scope) *Record {
	return &Record{declBase: declBase{Loc: pos, Name: name}, OwningScope: owner}
}
func (r *Record) String() string      { return "record " + r.Name }
func (r *Record) Type() *types.Record { return r.resolved }
func (r *Record) SetType(t *types.Record) { r.resolved = t }

// Variant is a nominal tagged-union declaration.
type VariantCaseDecl struct {
	Name    string
	Pattern Expression // payload type pattern; nil for a unit case
}

type Variant struct {
	declBase
	OwningScope *scope.Scope
	Cases       []VariantCaseDecl
	resolved    *types.Variant
}

func NewVariant(pos token.Position, name string, owner *scope.Scope) *Variant {
	return &Variant{declBase: declBase{Loc: pos, Name: name}, OwningScope: owner}
}
func (v *Variant) String() string       { return "variant " + v.Name }
func (v *Variant) Type() *types.Variant { return v.resolved }
func (v *Variant) SetType(t *types.Variant) { v.resolved = t }

// Trait is a nominal method-set declaration used as a constrained-wildcard
// bound (spec §3.1, §4.3).
type Trait struct {
	declBase
	OwningScope *scope.Scope
	Methods     []*Function // signatures only; Body may be nil
	resolved    *types.Trait
}

func NewTrait(pos token.Position, name string, owner *scope.Scope) *Trait {
	return &Trait{declBase: declBase{Loc: pos, Name: name}, OwningScope: owner}
}
func (t *Trait) String() string      { return "trait " + t.Name }
func (t *Trait) Type() *types.Trait  { return t.resolved }
func (t *Trait) SetType(ty *types.Trait) { t.resolved = ty }

// TypeDeclaration is a `type Name = <pattern>` alias/binding (spec §3.3).
type TypeDeclaration struct {
	declBase
	Pattern  Expression
	resolved types.Type
}

func NewTypeDeclaration(pos token.Position, name string, pattern Expression) *TypeDeclaration {
	return &TypeDeclaration{declBase: declBase{Loc: pos, Name: name}, Pattern: pattern}
}
func (t *TypeDeclaration) String() string     { return "type " + t.Name }
func (t *TypeDeclaration) Type() types.Type   { return t.resolved }
func (t *TypeDeclaration) SetType(ty types.Type) { t.resolved = ty }

// PrefixMacro and InfixMacro bind an operator symbol (as opposed to an
// ordinary identifier) to a Function, so the parser/scope tree can resolve
// user-declared operators (spec §3.3's prefix/infix definition maps).
type PrefixMacro struct {
	declBase
	Fn *Function
}

func NewPrefixMacro(pos token.Position, symbol string, fn *Function) *PrefixMacro {
	return &PrefixMacro{declBase: declBase{Loc: pos, Name: symbol}, Fn: fn}
}
func (p *PrefixMacro) String() string { return "prefix " + p.Name }

type InfixMacro struct {
	declBase
	Fn         *Function
	Precedence int
}

func NewInfixMacro(pos token.Position, symbol string, fn *Function, prec int) *InfixMacro {
	return &InfixMacro{declBase: declBase{Loc: pos, Name: symbol}, Fn: fn, Precedence: prec}
}
func (p *InfixMacro) String() string { return "infix " + p.Name }
