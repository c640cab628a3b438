// Package ast defines Arpha's closed-sum-type AST (spec.md C3, §3.2).
//
// Every node kind is a concrete struct; callers dispatch with a Go type
// switch rather than a Visitor (spec.md §9 redesign note: the teacher's open
// Visitor interface is dropped in favor of exhaustive type switches so the
// compiler flags missed cases when a node kind is added). A Visitor is kept
// only for whole-tree walks (printer.go's Walk and CountNodes), where
// open-ended traversal is a better fit than another type switch.
package ast

import (
	"github.com/hyp/arpha/internal/scope"
	"github.com/hyp/arpha/internal/token"
	"github.com/hyp/arpha/internal/types"
)

// Flags records per-node resolver state (spec §3.2 invariant: every node
// carries a Resolved flag so the fixpoint driver can skip already-settled
// subtrees).
type Flags uint8

const (
	Resolved Flags = 1 << iota
	Constant        // expression is a compile-time constant (CTFE-foldable)
	IsType          // expression denotes a type, not a value
)

// Node is the root of the closed sum. Every concrete node type in this
// package implements it.
type Node interface {
	Pos() token.Position
	String() string
}

// Expression is a Node that produces a value (or a type, when IsType is
// set) and carries a resolved return Type once settled.
type Expression interface {
	Node
	expressionNode()
	GetFlags() Flags
	SetFlags(Flags)
	ClearFlags(Flags)
	IsResolved() bool
	ReturnType() types.Type
	SetReturnType(types.Type)
}

// Statement is a Node appearing in a Block's body: an Expression used for
// its side effect, a control form, or a Declaration.
type Statement interface {
	Node
	statementNode()
}

// Declaration is a Statement that also binds a name in a Scope (spec §3.3).
type Declaration interface {
	Statement
	scope.Definition // DefinitionName() string
}

// base is embedded by every expression node; it supplies position, flag and
// resolved-type storage so concrete node types only declare their own
// payload fields.
type base struct {
	Loc     token.Position
	flags   Flags
	retType types.Type
}

func (b *base) Pos() token.Position    { return b.Loc }
func (b *base) expressionNode()        {}
func (b *base) GetFlags() Flags        { return b.flags }
func (b *base) SetFlags(f Flags)       { b.flags |= f }
func (b *base) ClearFlags(f Flags)     { b.flags &^= f }
func (b *base) IsResolved() bool       { return b.flags&Resolved != 0 }
func (b *base) ReturnType() types.Type { return b.retType }
func (b *base) SetReturnType(t types.Type) {
	b.retType = t
	b.flags |= Resolved
}

// MarkResolved is a convenience for nodes whose type was already set by
// construction and only need the flag flipped (spec §4.8's markResolved).
func (b *base) MarkResolved() { b.flags |= Resolved }

// ExpressionStatement adapts any Expression for use as a Block Statement
// (an expression evaluated for its side effect, spec §3.2).
type ExpressionStatement struct {
	Expr Expression
}

func (s *ExpressionStatement) Pos() token.Position { return s.Expr.Pos() }
func (s *ExpressionStatement) String() string      { return s.Expr.String() }
func (s *ExpressionStatement) statementNode()      {}
