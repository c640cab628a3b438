package ast

import (
	"fmt"

	"github.com/hyp/arpha/internal/token"
	"github.com/hyp/arpha/internal/types"
)

// IntegerLiteral is an un-widened integer constant; its ReturnType is
// types.LiteralInt until assignment or defaulting narrows it (spec §3.1).
type IntegerLiteral struct {
	base
	Value int64
}

func NewIntegerLiteral(pos token.Position, v int64) *IntegerLiteral {
	n := &IntegerLiteral{Value: v}
	n.Loc = pos
	n.retType = types.LiteralInt{}
	n.flags = Resolved | Constant
	return n
}
func (n *IntegerLiteral) String() string { return fmt.Sprintf("%d", n.Value) }

type FloatLiteral struct {
	base
	Value float64
}

func NewFloatLiteral(pos token.Position, v float64) *FloatLiteral {
	n := &FloatLiteral{Value: v}
	n.Loc = pos
	n.retType = types.LiteralFloat{}
	n.flags = Resolved | Constant
	return n
}
func (n *FloatLiteral) String() string { return fmt.Sprintf("%g", n.Value) }

type CharLiteral struct {
	base
	Value rune
}

func NewCharLiteral(pos token.Position, v rune) *CharLiteral {
	n := &CharLiteral{Value: v}
	n.Loc = pos
	n.retType = types.LiteralChar{}
	n.flags = Resolved | Constant
	return n
}
func (n *CharLiteral) String() string { return fmt.Sprintf("#%d", n.Value) }

type StringLiteral struct {
	base
	Value string
}

func NewStringLiteral(pos token.Position, v string) *StringLiteral {
	n := &StringLiteral{Value: v}
	n.Loc = pos
	n.retType = types.LiteralString{}
	n.flags = Resolved | Constant
	return n
}
func (n *StringLiteral) String() string { return fmt.Sprintf("%q", n.Value) }

type BoolLiteral struct {
	base
	Value bool
}

func NewBoolLiteral(pos token.Position, v bool) *BoolLiteral {
	n := &BoolLiteral{Value: v}
	n.Loc = pos
	n.retType = types.Bool
	n.flags = Resolved | Constant
	return n
}
func (n *BoolLiteral) String() string { return fmt.Sprintf("%t", n.Value) }

// UnitLiteral is the sole value of Void, written `()`.
type UnitLiteral struct{ base }

func NewUnitLiteral(pos token.Position) *UnitLiteral {
	n := &UnitLiteral{}
	n.Loc = pos
	n.retType = types.Void
	n.flags = Resolved | Constant
	return n
}
func (n *UnitLiteral) String() string { return "()" }

// WildcardLiteral is the bare `_` expression used as a discard / universal
// pattern placeholder (spec §4.3).
type WildcardLiteral struct{ base }

func NewWildcardLiteral(pos token.Position) *WildcardLiteral {
	n := &WildcardLiteral{}
	n.Loc = pos
	return n
}
func (n *WildcardLiteral) String() string { return "_" }

// ErrorExpression replaces a subtree the resolver could not make sense of,
// so the fixpoint driver can keep going without panicking on a nil type
// (spec §4.8: failed nodes become ErrorExpression and finish the pass).
type ErrorExpression struct {
	base
	Message string
}

func NewErrorExpression(pos token.Position, msg string) *ErrorExpression {
	n := &ErrorExpression{Message: msg}
	n.Loc = pos
	n.retType = types.Void
	n.flags = Resolved
	return n
}
func (n *ErrorExpression) String() string { return "<error: " + n.Message + ">" }
