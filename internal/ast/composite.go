package ast

import (
	"strings"

	"github.com/hyp/arpha/internal/scope"
	"github.com/hyp/arpha/internal/token"
)

// Tuple is a parenthesized, comma-separated expression list; it resolves to
// an AnonymousAggregate Type unless it has exactly one unlabeled child, in
// which case it collapses to that child (spec §3.1, §4.8).
type Tuple struct {
	base
	Children []Expression
	Labels   []string // parallel to Children; "" where unlabeled
}

func NewTuple(pos token.Position, children []Expression, labels []string) *Tuple {
	n := &Tuple{Children: children, Labels: labels}
	n.Loc = pos
	return n
}
func (n *Tuple) String() string {
	parts := make([]string, len(n.Children))
	for i, c := range n.Children {
		parts[i] = c.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Block is a `{ ... }` sequence of statements introducing its own Scope;
// its ReturnType is that of its last Statement if that is an Expression,
// else Void (spec §3.2, §3.3).
type Block struct {
	base
	Scope    *scope.Scope
	Children []Statement
}

func NewBlock(pos token.Position, s *scope.Scope) *Block {
	n := &Block{Scope: s}
	n.Loc = pos
	return n
}
func (n *Block) String() string {
	parts := make([]string, len(n.Children))
	for i, c := range n.Children {
		parts[i] = c.String()
	}
	return "{ " + strings.Join(parts, "; ") + " }"
}

// Call is an application `Callee(Arg)`; Arg is typically a Tuple for
// multi-argument calls (spec §3.2, §4.4, §4.8).
type Call struct {
	base
	Callee Expression
	Arg    Expression
}

func NewCall(pos token.Position, callee, arg Expression) *Call {
	n := &Call{Callee: callee, Arg: arg}
	n.Loc = pos
	return n
}
func (n *Call) String() string { return n.Callee.String() + n.Arg.String() }
