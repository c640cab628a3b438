package ast

import "github.com/hyp/arpha/internal/token"

// UnaryOpKind enumerates built-in prefix operators; user-declared prefix
// operators go through PrefixMacro/Call instead (spec §3.2, §3.3).
type UnaryOpKind int

const (
	UnaryNeg UnaryOpKind = iota
	UnaryNot
)

type UnaryOp struct {
	base
	Kind UnaryOpKind
	E    Expression
}

func NewUnaryOp(pos token.Position, kind UnaryOpKind, e Expression) *UnaryOp {
	n := &UnaryOp{Kind: kind, E: e}
	n.Loc = pos
	return n
}
func (n *UnaryOp) String() string {
	sym := "-"
	if n.Kind == UnaryNot {
		sym = "not "
	}
	return sym + n.E.String()
}

// BinaryOpKind enumerates built-in infix operators resolved directly by
// the resolver rather than through user operator overloads (spec §3.2).
type BinaryOpKind int

const (
	Add BinaryOpKind = iota
	Sub
	Mul
	Div
	Mod
	Eq
	Neq
	Lt
	Gt
	Le
	Ge
	LAnd
	LOr
)

type BinaryOp struct {
	base
	Kind BinaryOpKind
	A, B Expression
}

func NewBinaryOp(pos token.Position, kind BinaryOpKind, a, b Expression) *BinaryOp {
	n := &BinaryOp{Kind: kind, A: a, B: b}
	n.Loc = pos
	return n
}

var binOpSymbols = map[BinaryOpKind]string{
	Add: "+", Sub: "-", Mul: "*", Div: "/", Mod: "%",
	Eq: "==", Neq: "<>", Lt: "<", Gt: ">", Le: "<=", Ge: ">=",
	LAnd: "and", LOr: "or",
}

func (n *BinaryOp) String() string {
	return n.A.String() + " " + binOpSymbols[n.Kind] + " " + n.B.String()
}

// PointerOpKind distinguishes address-of from dereference (spec §3.1's
// Pointer/BoundedPointer family).
type PointerOpKind int

const (
	AddressOf PointerOpKind = iota
	Dereference
)

type PointerOp struct {
	base
	Kind PointerOpKind
	E    Expression
}

func NewPointerOp(pos token.Position, kind PointerOpKind, e Expression) *PointerOp {
	n := &PointerOp{Kind: kind, E: e}
	n.Loc = pos
	return n
}
func (n *PointerOp) String() string {
	if n.Kind == AddressOf {
		return "&" + n.E.String()
	}
	return n.E.String() + "^"
}

// Assignment is `Object = Value` (IsInit marks a `var` initializer written
// in assignment form, which permits narrowing that plain reassignment does
// not) — spec §3.2, §4.8's per-kind contract for Assignment.
type Assignment struct {
	base
	Object Expression
	Value  Expression
	IsInit bool
}

func NewAssignment(pos token.Position, object, value Expression, isInit bool) *Assignment {
	n := &Assignment{Object: object, Value: value, IsInit: isInit}
	n.Loc = pos
	return n
}
func (n *Assignment) String() string { return n.Object.String() + " = " + n.Value.String() }

// Cast is an explicit `Expr as Type`; unlike implicit canAssignFrom
// coercions, a Cast always carries the target Type node even after
// resolution, since it changes ReturnType regardless of E's own type
// (spec §3.1's assignability, applied explicitly).
type Cast struct {
	base
	E         Expression
	TargetPat Expression // type-pattern subtree naming the target type
}

func NewCast(pos token.Position, e, targetPat Expression) *Cast {
	n := &Cast{E: e, TargetPat: targetPat}
	n.Loc = pos
	return n
}
func (n *Cast) String() string { return n.E.String() + " as " + n.TargetPat.String() }

// NodeReference is a quoted AST fragment introduced by `[> ... <]`
// (spec §3.2, §4.6). Quoted holds the literal, unevaluated subtree; its
// ReturnType is types.Node{Subtype: <Quoted's type, once known>}.
type NodeReference struct {
	base
	Quoted Node
}

func NewNodeReference(pos token.Position, quoted Node) *NodeReference {
	n := &NodeReference{Quoted: quoted}
	n.Loc = pos
	return n
}
func (n *NodeReference) String() string { return "[> " + n.Quoted.String() + " <]" }
func (n *NodeReference) ASTString() string { return n.Quoted.String() }
