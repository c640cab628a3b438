// Package specialize implements Arpha's generic specialization /
// monomorphization engine (spec.md C6, §4.6): given a generic Function and
// a concrete set of argument types, it produces (or reuses a cached) fully
// concrete Function instance.
//
// Grounded on funvibe/funxy's internal/analyzer.AnalyzeInstances, which
// walks a generic definition's use sites and builds a concrete instance
// per distinct argument shape; generalized here with an explicit cache key
// and a deep-copy-with-substitution step, since funxy's HM inference does
// not need to re-walk an AST per instantiation the way Arpha's
// pattern-based generics do.
package specialize

import (
	"fmt"
	"strings"

	"github.com/hyp/arpha/internal/ast"
	"github.com/hyp/arpha/internal/pattern"
	"github.com/hyp/arpha/internal/scope"
	"github.com/hyp/arpha/internal/types"
)

// Key uniquely identifies one specialization of a generic Function by the
// concrete types bound to its pattern arguments (spec §4.6).
type Key string

// ComputeKey derives a Key from the generic Function's identity and the
// concrete argument types a call site supplied.
func ComputeKey(fn *ast.Function, argTypes []types.Type) Key {
	var sb strings.Builder
	sb.WriteString(fn.Name)
	for _, t := range argTypes {
		sb.WriteByte('|')
		sb.WriteString(t.String())
	}
	return Key(sb.String())
}

// Cache is the in-process specialization cache (spec §4.6); it lives only
// as long as the process, nothing persists its entries.
type Cache struct {
	entries map[Key]*ast.Function
}

func NewCache() *Cache { return &Cache{entries: make(map[Key]*ast.Function)} }

func (c *Cache) Get(k Key) (*ast.Function, bool) {
	fn, ok := c.entries[k]
	return fn, ok
}

func (c *Cache) Put(k Key, fn *ast.Function) {
	c.entries[k] = fn
}

// Specialize returns the concrete instance of generic for argTypes,
// building it if this is the first time this Key has been seen. Each of
// patterns is matched against the argTypes entry at the same index; the
// pattern.Binding values those matches produce are used to substitute
// bound names (e.g. a generator-call argument like `Array(_, n)`'s `n`)
// into the copied body.
func Specialize(cache *Cache, generic *ast.Function, argTypes []types.Type, patterns []*pattern.Pattern) (*ast.Function, error) {
	key := ComputeKey(generic, argTypes)
	if fn, ok := cache.Get(key); ok {
		return fn, nil
	}
	if existing, ok := generic.Specializations[string(key)]; ok {
		cache.Put(key, existing)
		return existing, nil
	}

	var allBindings []pattern.Binding
	for i, p := range patterns {
		if i >= len(argTypes) {
			break
		}
		bs, ok := pattern.Match(p, argTypes[i])
		if !ok {
			return nil, fmt.Errorf("specialize %s: argument %d does not match its pattern", generic.Name, i)
		}
		allBindings = append(allBindings, bs...)
	}

	instance := cloneFunction(generic, allBindings, argTypes)
	instance.GenericSource = generic
	generic.Specializations[string(key)] = instance
	cache.Put(key, instance)
	return instance, nil
}

// cloneFunction deep-copies generic's signature and body into a fresh
// Function whose scope substitutes each binding's name for its concrete
// type/value, and whose Arguments carry concrete TypeRef patterns instead
// of the generic's pattern subtrees (spec §4.6's "wrapper scope
// construction").
func cloneFunction(generic *ast.Function, bindings []pattern.Binding, argTypes []types.Type) *ast.Function {
	wrapper := scope.New(generic.OwningScope)
	for _, b := range bindings {
		v := ast.NewVariable(generic.Pos(), b.Name, wrapper, false)
		v.SetType(b.Type)
		wrapper.Define(b.Name, v)
	}

	instance := ast.NewFunction(generic.Pos(), generic.Name, wrapper)
	instance.Flags = generic.Flags &^ ast.FnHasPatternArgs
	instance.Intrinsic = generic.Intrinsic
	instance.BodyScope = wrapper

	instance.Arguments = make([]*ast.Argument, len(generic.Arguments))
	for i, p := range generic.Arguments {
		na := ast.NewArgument(p.Pos(), p.Name, nil)
		na.Label = p.Label
		na.Owner = instance
		if i < len(argTypes) {
			na.SetType(argTypes[i])
			na.Pattern = ast.NewTypeRef(p.Pos(), argTypes[i])
		}
		instance.Arguments[i] = na
		// Defined into wrapper just as the parser defines a plain
		// Function's Arguments into its BodyScope, so the cloned body's
		// references to the argument's name resolve against this
		// instance's own Argument rather than the generic template's.
		wrapper.Define(na.Name, na)
	}

	instance.ReturnTypePattern = cloneExpr(generic.ReturnTypePattern, wrapper, bindings)
	if generic.Body != nil {
		instance.Body = cloneBlock(generic.Body, wrapper, bindings)
	}
	return instance
}

// cloneBlock copies a Block into newScope's lexical family, rewriting any
// UnresolvedSymbol that names a bound pattern variable into a literal
// TypeRef so re-resolution sees the concrete substitution
// directly rather than re-discovering it by name lookup.
func cloneBlock(b *ast.Block, parent *scope.Scope, bindings []pattern.Binding) *ast.Block {
	if b == nil {
		return nil
	}
	s := scope.New(parent)
	nb := ast.NewBlock(b.Pos(), s)
	nb.Children = make([]ast.Statement, len(b.Children))
	for i, st := range b.Children {
		nb.Children[i] = cloneStatement(st, s, bindings)
	}
	return nb
}

func cloneStatement(st ast.Statement, s *scope.Scope, bindings []pattern.Binding) ast.Statement {
	switch v := st.(type) {
	case *ast.ExpressionStatement:
		return &ast.ExpressionStatement{Expr: cloneExpr(v.Expr, s, bindings)}
	default:
		// Nested declarations inside a generic body are rare in Arpha's
		// pattern-based generics (most generic code is a single
		// expression); copy the statement node unchanged rather than
		// attempt a full declaration clone, and let re-resolution settle
		// it against the new scope.
		return st
	}
}

// cloneExpr performs a substituting deep copy: names bound by the pattern
// match become concrete TypeRef leaves, everything else is
// copied structurally so the instance's tree is wholly independent of the
// generic's (spec §4.6: "deep-copy-with-substitution").
func cloneExpr(e ast.Expression, s *scope.Scope, bindings []pattern.Binding) ast.Expression {
	if e == nil {
		return nil
	}
	if u, ok := e.(*ast.UnresolvedSymbol); ok {
		for _, b := range bindings {
			if b.Name == u.Name {
				return ast.NewTypeRef(u.Pos(), b.Type)
			}
		}
		return ast.NewUnresolvedSymbol(u.Pos(), u.Name, s)
	}
	switch v := e.(type) {
	case *ast.Tuple:
		children := make([]ast.Expression, len(v.Children))
		for i, c := range v.Children {
			children[i] = cloneExpr(c, s, bindings)
		}
		return ast.NewTuple(v.Pos(), children, append([]string(nil), v.Labels...))
	case *ast.Call:
		return ast.NewCall(v.Pos(), cloneExpr(v.Callee, s, bindings), cloneExpr(v.Arg, s, bindings))
	case *ast.BinaryOp:
		return ast.NewBinaryOp(v.Pos(), v.Kind, cloneExpr(v.A, s, bindings), cloneExpr(v.B, s, bindings))
	case *ast.UnaryOp:
		return ast.NewUnaryOp(v.Pos(), v.Kind, cloneExpr(v.E, s, bindings))
	case *ast.If:
		return ast.NewIf(v.Pos(), cloneExpr(v.Cond, s, bindings), cloneExpr(v.Then, s, bindings), cloneExpr(v.Else, s, bindings))
	case *ast.AccessExpression:
		return ast.NewAccessExpression(v.Pos(), cloneExpr(v.Object, s, bindings), v.Name)
	case *ast.Block:
		return cloneBlock(v, s, bindings)
	default:
		// Literals, already-resolved TypeRef/VariableRef/FunctionRef: no
		// substitution applies, and they carry no scope pointer to fix
		// up, so sharing the node is safe.
		return e
	}
}
