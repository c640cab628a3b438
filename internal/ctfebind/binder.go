// Package ctfebind defines the minimal contract an intrinsic function uses
// to participate in compile-time function evaluation (spec.md C7, §4.7),
// without depending on internal/ast or internal/ctfe.
//
// internal/ast.Function.Intrinsic is typed against Binder so a Function
// declaration can carry an intrinsic without ast importing the (much
// heavier) ctfe interpreter package, which itself needs ast to walk
// bodies. ctfe is the only package that constructs InvocationContext
// values and interprets the Value the Binder returns.
package ctfebind

import "github.com/hyp/arpha/internal/types"

// Value is the tree-walking interpreter's runtime representation of a
// compile-time constant: one of int64, float64, rune, string, bool, a
// types.Type for a type value, nil for Unit, a map[string]Value for a
// record-shaped result (internal/rpc), or a Node for a quoted AST fragment
// result (spec §4.6). Concretely typed as
// `any` here so this leaf package never needs to name internal/ast.Node.
type Value any

// Node is a quoted-AST-fragment payload; internal/ctfe sets this to the
// underlying ast.Node it wraps so intrinsics that manufacture or splice
// macro output can be generic over the concrete AST package.
type Node interface {
	ASTString() string
}

// InvocationContext is the view an intrinsic Binder has of its call site:
// typed argument access plus a way to report its result back to the
// interpreter (spec §4.7).
type InvocationContext interface {
	// ArgCount returns the number of bound arguments.
	ArgCount() int
	// GetType returns the static (resolved) type of argument i.
	GetType(i int) types.Type
	// GetInt returns argument i's constant value as an int64; ok is false
	// if it is not an integer constant.
	GetInt(i int) (v int64, ok bool)
	// GetFloat returns argument i's constant value as a float64.
	GetFloat(i int) (v float64, ok bool)
	// GetString returns argument i's constant value as a string.
	GetString(i int) (v string, ok bool)
	// GetBool returns argument i's constant value as a bool.
	GetBool(i int) (v bool, ok bool)
	// GetConstant returns argument i's constant value, whatever its kind.
	GetConstant(i int) (Value, bool)
	// Ret records the call's result.
	Ret(v Value)
	// RetErr aborts the CTFE evaluation with a diagnostic message,
	// surfaced as a resolver error at the call site (spec §4.8 error
	// propagation).
	RetErr(msg string)
}

// Binder is implemented by every compile-time intrinsic: primitive
// arithmetic/comparison operators, record/variant reflection builtins, and
// the RPC-oracle intrinsic in internal/rpc (spec §4.7, §12).
type Binder interface {
	Invoke(ctx InvocationContext) Value
}

// BinderFunc adapts a plain function to Binder.
type BinderFunc func(ctx InvocationContext) Value

func (f BinderFunc) Invoke(ctx InvocationContext) Value { return f(ctx) }
