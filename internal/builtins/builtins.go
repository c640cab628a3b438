// Package builtins wires host-supplied ctfebind.Binder implementations
// (for example an internal/rpc gRPC oracle) onto a root scope as
// FnIntrinsic Functions, so spec.md §4.7's "intrinsic function" concept
// has an actual call site instead of sitting unreferenced. It defines no
// binders of its own; arithmetic and comparison are evaluated by
// internal/ctfe directly.
//
// Grounded on funvibe-funxy's builtins registration (the evaluator package
// pre-binds its builtin names into the global environment before running a
// program); here the same idea predefines a Function declaration per
// intrinsic so the resolver's ordinary call-resolution path (internal/
// overload, then internal/ctfe.Interpreter.Eval) reaches it without any
// special-casing.
package builtins

import (
	"github.com/hyp/arpha/internal/ast"
	"github.com/hyp/arpha/internal/ctfebind"
	"github.com/hyp/arpha/internal/scope"
	"github.com/hyp/arpha/internal/token"
	"github.com/hyp/arpha/internal/types"
)

// RegisterIntrinsic defines a FnIntrinsic Function named name in s, bound
// to binder, with an already-known call signature. Host embedders use this
// to expose a ctfebind.Binder — e.g. an internal/rpc.Oracle dialed against
// a project's own .proto/service config — as an ordinary callable that CTFE
// can fold (spec §4.7, §12).
func RegisterIntrinsic(s *scope.Scope, name string, binder ctfebind.Binder, argType, retType types.Type) *ast.Function {
	fn := ast.NewFunction(token.Position{}, name, s)
	fn.Flags = ast.FnIntrinsic | ast.FnPure
	fn.Intrinsic = binder
	fn.SetType(types.Function{Arg: argType, Return: retType})
	s.Define(name, fn)
	return fn
}

// RegisterOracle is a convenience for the common case of wiring a single
// internal/rpc.Oracle in under name, taking a single argType record (the
// request fields) and returning retType (the response record) — spec §12's
// RPC-oracle domain-stack component.
func RegisterOracle(s *scope.Scope, name string, oracle ctfebind.Binder, argType, retType types.Type) *ast.Function {
	return RegisterIntrinsic(s, name, oracle, argType, retType)
}
