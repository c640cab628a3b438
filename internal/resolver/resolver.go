// Package resolver implements Arpha's multi-pass fixpoint resolution
// driver (spec.md C8, §4.8): it repeatedly walks the program's AST,
// letting each node attempt to settle its own type and rewrite itself into
// a more resolved form, until no node makes progress or a pass-count bound
// is reached.
//
// Grounded on funvibe/funxy's internal/analyzer four-stage pipeline
// (AnalyzeNaming -> AnalyzeHeaders -> AnalyzeInstances -> AnalyzeBodies),
// collapsed into Arpha's single repeated-pass model per spec §4.8: rather
// than fixed stages, every node kind offers the same resolve contract and
// the driver just keeps looping until the program stops changing.
package resolver

import (
	"fmt"

	"github.com/hyp/arpha/internal/ast"
	"github.com/hyp/arpha/internal/ctfe"
	"github.com/hyp/arpha/internal/ctfebind"
	"github.com/hyp/arpha/internal/diagnostics"
	"github.com/hyp/arpha/internal/overload"
	"github.com/hyp/arpha/internal/pattern"
	"github.com/hyp/arpha/internal/scope"
	"github.com/hyp/arpha/internal/specialize"
	"github.com/hyp/arpha/internal/token"
	"github.com/hyp/arpha/internal/types"
)

// Resolver carries the shared state a single resolution run threads
// through every node's resolve step: the diagnostic sink, the
// specialization cache, and the CTFE interpreter used for constant
// folding and constrained-wildcard predicates.
type Resolver struct {
	Sink  diagnostics.Sink
	Cache *specialize.Cache
	CTFE  *ctfe.Interpreter
	Types *types.Registry // hash-consing registry for structural types (spec C1)

	// MaxPasses, when positive, caps Run's computed pass bound instead of
	// the default CountNodes(root)+numberOfGenerics+1 — set from an arpha.yaml
	// config's maxPasses field (internal/config) so CI runs get a
	// predictable ceiling on unusually deep programs (spec.md §12).
	MaxPasses int

	unresolved int // count of nodes that made no progress this pass
}

// New creates a Resolver with fresh specialization cache, CTFE state, and
// type registry.
func New(sink diagnostics.Sink) *Resolver {
	return &Resolver{Sink: sink, Cache: specialize.NewCache(), CTFE: ctfe.New(), Types: types.NewRegistry()}
}

// markResolved sets a node's Resolved flag; it does not touch the pass's
// unresolved counter (spec §4.8).
func (r *Resolver) markResolved(e ast.Expression) {
	e.SetFlags(ast.Resolved)
}

// Run drives the fixpoint loop over root (typically the top-level Block of
// a compiled unit). The pass bound is CountNodes(root) + numberOfGenerics
// + 1 (spec §4.8): the node count is never less than the AST's depth, and
// deep nesting needs at most one pass per level to bottom out, while each
// distinct generic instantiation needs at most one additional pass to
// specialize and then resolve its body. The loop stops early only when a
// pass leaves nothing unresolved; a pass that makes no progress does not
// end it.
func (r *Resolver) Run(root *ast.Block, numberOfGenerics int) ([]ast.Node, error) {
	bound := ast.CountNodes(root) + numberOfGenerics + 1
	if r.MaxPasses > 0 && r.MaxPasses < bound {
		bound = r.MaxPasses
	}
	var replaced []ast.Node
	var pending []*ast.Function // specialization instances introduced by a call site (spec §4.6), not reachable from root's own Children
	for pass := 0; pass < bound; pass++ {
		r.unresolved = 0
		newRoot, repl := r.resolveBlock(root)
		root = newRoot
		replaced = append(replaced, repl...)
		pending = append(pending, newlySpecialized(repl)...)

		for _, fn := range pending {
			r.resolveFunctionHeader(fn, fn.OwningScope)
			if fn.Body != nil && !fn.Body.IsResolved() {
				nb, repl2 := r.resolveBlock(fn.Body)
				fn.Body = nb
				replaced = append(replaced, repl2...)
				pending = append(pending, newlySpecialized(repl2)...)
			}
			if !fn.TypeResolved() {
				r.resolveFunctionHeader(fn, fn.OwningScope)
			}
		}

		if r.unresolved == 0 {
			return replaced, nil
		}
	}
	return replaced, fmt.Errorf("resolver: did not reach a fixpoint within %d passes", bound)
}

// newlySpecialized filters a batch of sibling nodes a resolve step
// introduced down to the Functions among them — the specialization
// instances internal/specialize.Specialize manufactures, which need their
// own header/body resolved on subsequent passes even though they are never
// inserted into any Block's Children (spec §4.6, §4.8).
func newlySpecialized(nodes []ast.Node) []*ast.Function {
	var out []*ast.Function
	for _, n := range nodes {
		if fn, ok := n.(*ast.Function); ok {
			out = append(out, fn)
		}
	}
	return out
}

// resolve dispatches a single Expression through its per-kind contract,
// returning its (possibly replaced) node and any newly-introduced sibling
// nodes (e.g. a specialized Function inserted alongside its call site).
// This is the node-kind type switch spec §9's redesign note calls for in
// place of the teacher's open Visitor.
func (r *Resolver) resolve(e ast.Expression, s *scope.Scope) (ast.Expression, []ast.Node) {
	if e.IsResolved() {
		return e, nil
	}
	switch v := e.(type) {
	case *ast.UnresolvedSymbol:
		return r.resolveSymbol(v)
	case *ast.AccessExpression:
		return r.resolveAccess(v, s)
	case *ast.Call:
		return r.resolveCall(v, s)
	case *ast.Tuple:
		return r.resolveTuple(v, s)
	case *ast.Assignment:
		return r.resolveAssignment(v, s)
	case *ast.Return:
		return r.resolveReturn(v, s)
	case *ast.Match:
		return r.resolveMatch(v, s)
	case *ast.If:
		return r.resolveIf(v, s)
	case *ast.BinaryOp:
		return r.resolveBinary(v, s)
	case *ast.Block:
		nb, repl := r.resolveBlock(v)
		return nb, repl
	case *ast.VariableRef:
		// resolveSymbol builds this the moment a name looks up to a
		// Variable, whether or not that Variable's own type has settled
		// yet (e.g. a forward reference within the same Block, spec
		// §4.8): re-check here on every later pass rather than stranding
		// it the way a construction-time-only Resolved flag would.
		if v.Var.Type() != nil {
			v.SetReturnType(v.Var.Type())
			return v, nil
		}
		r.unresolved++
		return v, nil
	case *ast.ArgumentRef:
		if v.Arg.Type() != nil {
			v.SetReturnType(v.Arg.Type())
			return v, nil
		}
		r.unresolved++
		return v, nil
	case *ast.NodeReference:
		// A quotation is a value as written: its fragment is cloned and
		// resolved where a macro call splices it, not here.
		v.SetReturnType(types.Node{})
		return v, nil
	default:
		r.unresolved++
		return e, nil
	}
}

// resolveBlock walks b.Children, rewriting each Statement in place via its
// own resolve contract. Statement-producing replacements — the macro/mixin
// splice mechanism of spec §4.6 — are threaded through as a
// (replacement, insertion list) pair: expandMacro's insertion-list nodes
// come back through the same []ast.Node a specialized Function does, so
// here they are partitioned by kind and the Statement ones are spliced into
// a rebuilt Children slice immediately after the statement that produced
// them, while *ast.Function instances are left for Resolver.Run's
// pending-specialization loop exactly as before.
func (r *Resolver) resolveBlock(b *ast.Block) (*ast.Block, []ast.Node) {
	var all []ast.Node
	newChildren := make([]ast.Statement, 0, len(b.Children))
	for _, st := range b.Children {
		switch v := st.(type) {
		case *ast.ExpressionStatement:
			ne, repl := r.resolve(v.Expr, b.Scope)
			v.Expr = ne
			spliced, rest := splitSpliceable(repl)
			all = append(all, rest...)
			newChildren = append(newChildren, v)
			newChildren = append(newChildren, spliced...)
			if len(spliced) > 0 {
				// Freshly spliced statements are unresolved by
				// construction; force another pass so they are not
				// stranded by a premature fixpoint.
				r.unresolved++
			}
		case *ast.Function:
			// Header before body, matching funxy's AnalyzeHeaders-before-
			// AnalyzeBodies ordering (spec §4.8): argument types must be
			// settled before the body's references to them resolve. Run
			// it again after the body resolves too, for the common case
			// of an omitted ReturnTypePattern (inferred from Body).
			//
			// A generic Function's body template is never resolved
			// directly: its Arguments have no concrete types until a call
			// site specializes it (spec §4.6), so walking the template
			// body would only strand unresolved ArgumentRefs. Only the
			// specialized copies internal/specialize.Specialize produces
			// get their bodies resolved (driven from Resolver.Run's
			// pending-specialization loop).
			r.resolveFunctionHeader(v, b.Scope)
			if !v.IsGeneric() {
				if v.Body != nil && !v.Body.IsResolved() {
					nb, repl := r.resolveBlock(v.Body)
					v.Body = nb
					all = append(all, repl...)
				}
				if !v.TypeResolved() {
					r.resolveFunctionHeader(v, b.Scope)
				}
			}
			newChildren = append(newChildren, v)
		case *ast.Variable:
			repl := r.resolveVariable(v, b.Scope)
			spliced, rest := splitSpliceable(repl)
			all = append(all, rest...)
			newChildren = append(newChildren, v)
			newChildren = append(newChildren, spliced...)
		default:
			newChildren = append(newChildren, st)
		}
	}
	b.Children = newChildren
	if len(b.Children) > 0 {
		if es, ok := b.Children[len(b.Children)-1].(*ast.ExpressionStatement); ok && es.Expr.IsResolved() {
			b.SetReturnType(es.Expr.ReturnType())
		}
	} else {
		b.SetReturnType(types.Void)
	}
	return b, all
}

// splitSpliceable partitions a resolve step's insertion-list nodes into the
// Statements a macro/mixin expansion wants spliced into the enclosing
// Block's Children (spec §4.6) versus everything else — chiefly the
// specialization-instance Functions internal/specialize.Specialize
// manufactures, which must NOT land in Children (they are never reachable
// from root by name) and instead keep flowing to Resolver.Run's
// pending-specialization loop unchanged.
func splitSpliceable(nodes []ast.Node) (spliced []ast.Statement, rest []ast.Node) {
	for _, n := range nodes {
		if _, isFn := n.(*ast.Function); isFn {
			rest = append(rest, n)
			continue
		}
		if st, ok := n.(ast.Statement); ok {
			spliced = append(spliced, st)
			continue
		}
		rest = append(rest, n)
	}
	return spliced, rest
}

// resolveSymbol is the contract for an UnresolvedSymbol: look Name up in
// LookupScope and rewrite to the appropriate reference kind (spec §4.2,
// §4.8).
func (r *Resolver) resolveSymbol(u *ast.UnresolvedSymbol) (ast.Expression, []ast.Node) {
	def, ok := u.LookupScope.LookupPrefix(u.Name)
	if !ok {
		r.unresolved++
		r.Sink.Report(diagnostics.Diagnostic{
			Code: diagnostics.ErrUndefinedSymbol, Pos: u.Pos(),
			Message: fmt.Sprintf("undefined symbol %q", u.Name),
		})
		return ast.NewErrorExpression(u.Pos(), "undefined symbol "+u.Name), nil
	}
	switch d := def.(type) {
	case *ast.Variable:
		return ast.NewVariableRef(u.Pos(), d), nil
	case *ast.Argument:
		return ast.NewArgumentRef(u.Pos(), d), nil
	case *ast.Function:
		return ast.NewFunctionRef(u.Pos(), d), nil
	case *ast.Overloadset:
		return ast.NewOverloadsetRef(u.Pos(), d), nil
	case *ast.Record:
		if d.Type() != nil {
			return ast.NewTypeRef(u.Pos(), d.Type()), nil
		}
	case *ast.Variant:
		if d.Type() != nil {
			return ast.NewTypeRef(u.Pos(), d.Type()), nil
		}
	case *ast.TypeDeclaration:
		if d.Type() != nil {
			return ast.NewTypeRef(u.Pos(), d.Type()), nil
		}
	}
	r.unresolved++
	return u, nil
}

// resolveAccess is the contract for `object.name`: once Object is
// resolved, decide whether this is a record field read, a qualified
// imported-scope lookup, or leave it pending (spec §4.2, §4.8).
func (r *Resolver) resolveAccess(a *ast.AccessExpression, s *scope.Scope) (ast.Expression, []ast.Node) {
	obj, repl := r.resolve(a.Object, s)
	a.Object = obj
	if !obj.IsResolved() {
		r.unresolved++
		return a, repl
	}
	if isr, ok := obj.(*ast.ImportedScopeRef); ok {
		def, ok := isr.Scope.LookupPrefix(a.Name)
		if !ok {
			r.Sink.Report(diagnostics.Diagnostic{
				Code: diagnostics.ErrUndefinedSymbol, Pos: a.Pos(),
				Message: fmt.Sprintf("%q has no member %q", isr.Name, a.Name),
			})
			return ast.NewErrorExpression(a.Pos(), "no such member"), repl
		}
		if fn, ok := def.(*ast.Function); ok {
			return ast.NewFunctionRef(a.Pos(), fn), repl
		}
		if v, ok := def.(*ast.Variable); ok {
			return ast.NewVariableRef(a.Pos(), v), repl
		}
	}
	rec, ok := obj.ReturnType().(*types.Record)
	if !ok {
		r.unresolved++
		return a, repl
	}
	for i, f := range rec.Fields {
		if f.Name == a.Name {
			fa := ast.NewFieldAccess(a.Pos(), obj, i, a.Name)
			fa.SetReturnType(f.Type)
			return fa, repl
		}
	}
	r.Sink.Report(diagnostics.Diagnostic{
		Code: diagnostics.ErrNoSuchField, Pos: a.Pos(),
		Message: fmt.Sprintf("%s has no field %q", rec.Name, a.Name),
	})
	return ast.NewErrorExpression(a.Pos(), "no such field"), repl
}

// resolveTuple is the contract for a Tuple: resolve every child; once all
// are resolved, settle the Tuple's own type (collapsing a single unlabeled
// child, else an AnonymousAggregate) (spec §3.1, §4.8).
func (r *Resolver) resolveTuple(t *ast.Tuple, s *scope.Scope) (ast.Expression, []ast.Node) {
	var all []ast.Node
	allResolved := true
	for i, c := range t.Children {
		nc, repl := r.resolve(c, s)
		t.Children[i] = nc
		all = append(all, repl...)
		if !nc.IsResolved() {
			allResolved = false
		}
	}
	if !allResolved {
		r.unresolved++
		return t, all
	}
	if len(t.Children) == 1 && t.Labels[0] == "" {
		return t.Children[0], all
	}
	elemTypes := make([]types.Type, len(t.Children))
	for i, c := range t.Children {
		elemTypes[i] = c.ReturnType()
	}
	t.SetReturnType(r.Types.GetAnonymousRecord(elemTypes, t.Labels, false))
	return t, all
}

// resolveCall is the contract for Call: resolve Callee and Arg, run
// overload resolution once Callee names an Overloadset/single Function,
// specialize if the winner is generic, and fold if the winner is pure and
// every argument is constant (spec §4.4, §4.6, §4.7, §4.8).
func (r *Resolver) resolveCall(c *ast.Call, s *scope.Scope) (ast.Expression, []ast.Node) {
	var all []ast.Node
	callee, repl := r.resolve(c.Callee, s)
	c.Callee = callee
	all = append(all, repl...)
	arg, repl := r.resolve(c.Arg, s)
	c.Arg = arg
	all = append(all, repl...)
	if !callee.IsResolved() || !arg.IsResolved() {
		r.unresolved++
		return c, all
	}

	var fn *ast.Function
	switch cal := callee.(type) {
	case *ast.FunctionRef:
		fn = cal.Fn
	case *ast.OverloadsetRef:
		name := cal.Set.Name
		res := overload.Resolve(s, name, r.patternsFor, arg)
		if res.NoMatch {
			r.Sink.Report(diagnostics.Diagnostic{Code: diagnostics.ErrNoOverloadMatch, Pos: c.Pos(), Message: fmt.Sprintf("no overload of %q matches these arguments", name)})
			return ast.NewErrorExpression(c.Pos(), "no matching overload"), all
		}
		if res.Winner == nil {
			r.Sink.Report(diagnostics.Diagnostic{Code: diagnostics.ErrAmbiguousCall, Pos: c.Pos(), Message: overload.AmbiguityError(name, res.Ambiguous).Error()})
			return ast.NewErrorExpression(c.Pos(), "ambiguous call"), all
		}
		fn = res.Winner
		c.Callee = ast.NewFunctionRef(c.Pos(), fn)
	default:
		r.unresolved++
		return c, all
	}

	if fn.IsGeneric() {
		argTypes := flattenTypes(arg)
		patterns := r.patternsFor(fn)
		inst, err := specialize.Specialize(r.Cache, fn, argTypes, patterns)
		if err != nil {
			r.Sink.Report(diagnostics.Diagnostic{Code: diagnostics.ErrSpecializationFailed, Pos: c.Pos(), Message: err.Error()})
			return ast.NewErrorExpression(c.Pos(), err.Error()), all
		}
		c.Callee = ast.NewFunctionRef(c.Pos(), inst)
		fn = inst
		all = append(all, inst)
	}

	if !fn.TypeResolved() {
		r.unresolved++
		return c, all
	}
	c.SetReturnType(fn.Type().Return)

	if fn.Flags&ast.FnMacro != 0 {
		return r.expandMacro(c, fn, s, all)
	}

	if fn.Flags&ast.FnPure != 0 && isConstant(arg) {
		if val, err := r.CTFE.Eval(c); err == nil {
			if folded := constToExpr(c.Pos(), val); folded != nil {
				return folded, all
			}
		}
	}
	return c, all
}

// expandMacro is the contract for a FnMacro-flagged Call (spec §4.6): the
// macro's body is evaluated at the call site via CTFE, and the quoted
// fragment it produces is spliced in place of the Call. A quoted Expression
// replaces c directly; a quoted Block (the "mixin" form) is instead
// flattened into the insertion list, since a Call occupies a single
// Expression slot and cannot itself hold several statements — resolveBlock
// splices the insertion list's Statements into the enclosing Block's
// Children in the Call's place.
//
// Identifiers the quoted fragment introduces are renamed via
// ctfe.CloneWithFreshIdentifiers before splicing so they cannot capture or
// collide with names already in scope at the call site (spec §4.6's
// hygiene requirement).
func (r *Resolver) expandMacro(c *ast.Call, fn *ast.Function, s *scope.Scope, all []ast.Node) (ast.Expression, []ast.Node) {
	val, err := r.CTFE.Eval(c)
	if err != nil {
		// fn's body may not have resolved yet on this pass (e.g. the
		// macro is declared after its call site); retry next pass rather
		// than failing the program outright.
		r.unresolved++
		return c, all
	}
	ref, ok := val.(*ast.NodeReference)
	if !ok {
		r.Sink.Report(diagnostics.Diagnostic{Code: diagnostics.ErrMacroExpansionFailed, Pos: c.Pos(), Message: fmt.Sprintf("macro %q did not expand to a quoted fragment", fn.Name)})
		return ast.NewErrorExpression(c.Pos(), "macro did not produce a quoted fragment"), all
	}
	spliced := ctfe.CloneWithFreshIdentifiers(ref.Quoted, s)
	if blk, ok := spliced.(*ast.Block); ok {
		for _, st := range blk.Children {
			all = append(all, st)
		}
		return ast.NewUnitLiteral(c.Pos()), all
	}
	expr, ok := spliced.(ast.Expression)
	if !ok {
		r.Sink.Report(diagnostics.Diagnostic{Code: diagnostics.ErrMacroExpansionFailed, Pos: c.Pos(), Message: fmt.Sprintf("macro %q quoted a fragment that is neither an expression nor a block", fn.Name)})
		return ast.NewErrorExpression(c.Pos(), "macro quoted an unsplicable fragment"), all
	}
	if expr.IsResolved() {
		return expr, all
	}
	nexpr, repl := r.resolve(expr, s)
	all = append(all, repl...)
	return nexpr, all
}

func (r *Resolver) patternsFor(fn *ast.Function) []*pattern.Pattern {
	out := make([]*pattern.Pattern, len(fn.Arguments))
	for i, a := range fn.Arguments {
		out[i] = astPatternToPattern(a.Pattern)
	}
	return out
}

// astPatternToPattern converts a parsed type-pattern subtree (spec §4.3)
// into the pattern.Pattern shape the matcher/overload resolver/specializer
// consume. A plain TypeRef (the common case: an ordinary typed argument)
// becomes a BareType; `_` becomes Wildcard; `label:inner` becomes a
// BoundName wrapping the recursively-converted Inner.
func astPatternToPattern(e ast.Expression) *pattern.Pattern {
	switch v := e.(type) {
	case *ast.TypeRef:
		return &pattern.Pattern{Kind: pattern.BareType, Type: v.Denoted}
	case *ast.WildcardLiteral:
		return &pattern.Pattern{Kind: pattern.Wildcard}
	case *ast.BoundPattern:
		return &pattern.Pattern{Kind: pattern.BoundName, BindName: v.Label, Inner: astPatternToPattern(v.Inner)}
	default:
		return &pattern.Pattern{Kind: pattern.Wildcard}
	}
}

// flattenTypes gathers a Call's argument type(s) for pattern matching
// against a generic Function's patterns (spec §4.6), widening any
// not-yet-defaulted literal carrier to its default concrete type first —
// there is no assignment destination here to narrow a literal against, so
// a bare `id(3)` must bind its pattern variable to Int32, not LiteralInt.
func flattenTypes(arg ast.Expression) []types.Type {
	if t, ok := arg.(*ast.Tuple); ok {
		out := make([]types.Type, len(t.Children))
		for i, c := range t.Children {
			out[i] = types.DefaultOf(c.ReturnType())
		}
		return out
	}
	return []types.Type{types.DefaultOf(arg.ReturnType())}
}

func isConstant(e ast.Expression) bool { return e.GetFlags()&ast.Constant != 0 }

// constToExpr materializes a folded CTFE result back into a literal node
// so the caller's tree carries the constant directly (spec §4.7's "fold
// contract"). Result kinds with no direct literal form (e.g. a Node or a
// Record value) are left unfolded; the caller keeps the original Call.
func constToExpr(pos token.Position, v ctfebind.Value) ast.Expression {
	switch n := v.(type) {
	case int64:
		return ast.NewIntegerLiteral(pos, n)
	case float64:
		return ast.NewFloatLiteral(pos, n)
	case string:
		return ast.NewStringLiteral(pos, n)
	case bool:
		return ast.NewBoolLiteral(pos, n)
	case rune:
		return ast.NewCharLiteral(pos, n)
	default:
		return nil
	}
}

// resolveAssignment is the contract for Assignment: resolve Object and
// Value, then check assignability via ast.CanAssignFrom (spec §3.1,
// §4.8).
func (r *Resolver) resolveAssignment(a *ast.Assignment, s *scope.Scope) (ast.Expression, []ast.Node) {
	obj, repl1 := r.resolve(a.Object, s)
	a.Object = obj
	val, repl2 := r.resolve(a.Value, s)
	a.Value = val
	all := append(repl1, repl2...)
	if !obj.IsResolved() || !val.IsResolved() {
		r.unresolved++
		return a, all
	}
	rewritten, _, ok := ast.CanAssignFrom(obj.ReturnType(), val)
	if !ok {
		r.Sink.Report(diagnostics.Diagnostic{Code: diagnostics.ErrTypeMismatch, Pos: a.Pos(),
			Message: fmt.Sprintf("cannot assign %s to %s", val.ReturnType(), obj.ReturnType())})
		return ast.NewErrorExpression(a.Pos(), "type mismatch"), all
	}
	a.Value = rewritten
	a.SetReturnType(types.Void)
	return a, all
}

// resolveReturn is the contract for Return: resolve Value (if any) against
// the innermost enclosing Function's declared return type, found via
// FunctionOwner (spec §3.3, §4.8).
func (r *Resolver) resolveReturn(ret *ast.Return, s *scope.Scope) (ast.Expression, []ast.Node) {
	if ret.Value == nil {
		ret.SetReturnType(types.Void)
		return ret, nil
	}
	val, repl := r.resolve(ret.Value, s)
	ret.Value = val
	if !val.IsResolved() {
		r.unresolved++
		return ret, repl
	}
	owner := s.FunctionOwner()
	fn, ok := owner.(*ast.Function)
	if ok && fn.ReturnTypePattern != nil {
		if tr, ok := fn.ReturnTypePattern.(*ast.TypeRef); ok {
			if rewritten, _, ok := ast.CanAssignFrom(tr.Denoted, val); ok {
				ret.Value = rewritten
			}
		}
	}
	ret.SetReturnType(types.Void)
	return ret, repl
}

// resolveIf is the contract for If (spec §3.2, §4.8): Cond, Then and Else
// (if present) are resolved, Cond's type is not checked here; the overall
// type is Then's type once both branches (or just Then, absent Else) are
// resolved.
func (r *Resolver) resolveIf(n *ast.If, s *scope.Scope) (ast.Expression, []ast.Node) {
	var all []ast.Node
	cond, repl := r.resolve(n.Cond, s)
	n.Cond = cond
	all = append(all, repl...)
	then, repl := r.resolve(n.Then, s)
	n.Then = then
	all = append(all, repl...)
	if n.Else != nil {
		els, repl := r.resolve(n.Else, s)
		n.Else = els
		all = append(all, repl...)
	}
	if !cond.IsResolved() || !then.IsResolved() || (n.Else != nil && !n.Else.IsResolved()) {
		r.unresolved++
		return n, all
	}
	n.SetReturnType(then.ReturnType())
	return n, all
}

// resolveBinary is the contract for BinaryOp: resolve both operands and
// settle the built-in arithmetic/comparison result type (spec §3.2, §4.8).
func (r *Resolver) resolveBinary(n *ast.BinaryOp, s *scope.Scope) (ast.Expression, []ast.Node) {
	var all []ast.Node
	a, repl := r.resolve(n.A, s)
	n.A = a
	all = append(all, repl...)
	b, repl := r.resolve(n.B, s)
	n.B = b
	all = append(all, repl...)
	if !a.IsResolved() || !b.IsResolved() {
		r.unresolved++
		return n, all
	}
	switch n.Kind {
	case ast.Eq, ast.Neq, ast.Lt, ast.Gt, ast.Le, ast.Ge, ast.LAnd, ast.LOr:
		n.SetReturnType(types.Bool)
	default:
		if w, ok := types.AssignRank(a.ReturnType(), b.ReturnType()); ok && w >= types.Subtype {
			n.SetReturnType(a.ReturnType())
		} else {
			n.SetReturnType(b.ReturnType())
		}
	}
	if a.GetFlags()&ast.Constant != 0 && b.GetFlags()&ast.Constant != 0 {
		n.SetFlags(ast.Constant)
	}
	return n, all
}

// resolveMatch is the contract for Match (spec §4.3, §4.7, §4.8). Obj
// dispatches one of two ways depending on what it denotes:
//
//   - a type value (Obj's type is Type and CTFE evaluates it to a
//     types.Type): run the two-phase pattern
//     matcher against each case's Pattern in order, taking the first that
//     both Checks and whose Guard (if present, CTFE-evaluated) is true,
//     introducing its Bindings as immutable Variables in the case's own
//     scope before resolving Guard/Body (spec §4.3). The whole Match then
//     collapses to that case's Body — Arpha's type-level match is a
//     compile-time dispatch, not a runtime branch.
//   - an ordinary integer or bool value: lower to a chained If/else, each
//     arm testing Obj for equality against a literal Pattern, with a `_`
//     case (if any) as the tail default (spec §4.7's MatchResolver).
func (r *Resolver) resolveMatch(m *ast.Match, s *scope.Scope) (ast.Expression, []ast.Node) {
	var all []ast.Node
	obj, repl := r.resolve(m.Obj, s)
	m.Obj = obj
	all = append(all, repl...)
	if !obj.IsResolved() {
		r.unresolved++
		return m, all
	}
	if obj.ReturnType() != nil && obj.ReturnType().Equals(types.Meta) {
		val, err := r.CTFE.Eval(obj)
		if err != nil {
			r.unresolved++
			return m, all
		}
		scrutinee, ok := val.(types.Type)
		if !ok {
			r.unresolved++
			return m, all
		}
		return r.resolveTypeMatch(m, scrutinee, s, all)
	}
	return r.resolveValueMatch(m, s, all)
}

// resolveTypeMatch is the type-pattern half of resolveMatch (spec §4.3).
func (r *Resolver) resolveTypeMatch(m *ast.Match, scrutinee types.Type, s *scope.Scope, all []ast.Node) (ast.Expression, []ast.Node) {
	for ci := range m.Cases {
		c := &m.Cases[ci]
		caseScope := c.Scope
		if caseScope == nil {
			caseScope = s
		}
		np, ok := r.resolvePatternTree(c.Pattern, caseScope)
		c.Pattern = np
		if !ok {
			r.unresolved++
			return m, all
		}
		p := astPatternToPattern(c.Pattern)
		bindings, matched := pattern.Match(p, scrutinee)
		if !matched {
			continue
		}
		if len(c.Bindings) < len(bindings) {
			c.Bindings = make([]*ast.Variable, len(bindings))
			for bi, bd := range bindings {
				v := ast.NewVariable(c.Pattern.Pos(), bd.Name, caseScope, false)
				v.SetType(bd.Type)
				c.Bindings[bi] = v
			}
		}
		for _, v := range c.Bindings {
			caseScope.Define(v.Name, v)
		}

		if c.Guard != nil {
			if !c.Guard.IsResolved() {
				ng, repl := r.resolve(c.Guard, caseScope)
				c.Guard = ng
				all = append(all, repl...)
			}
			if !c.Guard.IsResolved() {
				r.unresolved++
				return m, all
			}
			val, err := r.CTFE.Eval(c.Guard)
			if err != nil {
				r.unresolved++
				return m, all
			}
			if truth, ok := val.(bool); !ok || !truth {
				continue
			}
		}

		if !c.Body.IsResolved() {
			nb, repl := r.resolve(c.Body, caseScope)
			c.Body = nb
			all = append(all, repl...)
		}
		if !c.Body.IsResolved() {
			r.unresolved++
			return m, all
		}
		return c.Body, all
	}
	r.Sink.Report(diagnostics.Diagnostic{Code: diagnostics.ErrNoMatchingCase, Pos: m.Pos(), Message: "no case's pattern matches this type"})
	return ast.NewErrorExpression(m.Pos(), "no matching case"), all
}

// resolvePatternTree settles any UnresolvedSymbol naming a concrete type
// within a Match case's Pattern subtree into a TypeRef (spec §4.2), the
// same settling resolveFunctionHeader performs for an ordinary argument
// pattern, recursing into BoundPattern's Inner so a binding like `n:Int32`
// converts its declared bound too.
func (r *Resolver) resolvePatternTree(e ast.Expression, s *scope.Scope) (ast.Expression, bool) {
	switch v := e.(type) {
	case *ast.UnresolvedSymbol:
		ne, _ := r.resolve(v, s)
		return ne, ne.IsResolved()
	case *ast.BoundPattern:
		inner, ok := r.resolvePatternTree(v.Inner, s)
		v.Inner = inner
		return v, ok
	default:
		return e, true
	}
}

// resolveValueMatch is the integer/bool half of resolveMatch (spec §4.7):
// it rewrites the Match into a chained If/else and lets the ordinary If
// contract take over resolving it on this and later passes.
func (r *Resolver) resolveValueMatch(m *ast.Match, s *scope.Scope, all []ast.Node) (ast.Expression, []ast.Node) {
	objType := m.Obj.ReturnType()
	if !isMatchableScalar(objType) {
		r.Sink.Report(diagnostics.Diagnostic{Code: diagnostics.ErrTypeMismatch, Pos: m.Pos(), Message: fmt.Sprintf("match over %s is neither a type value nor an integer/bool value", objType)})
		return ast.NewErrorExpression(m.Pos(), "unmatchable scrutinee"), all
	}

	var ordinary []ast.MatchCase
	var def *ast.MatchCase
	for i := range m.Cases {
		c := m.Cases[i]
		if _, ok := c.Pattern.(*ast.WildcardLiteral); ok {
			d := c
			def = &d
			continue
		}
		ordinary = append(ordinary, c)
	}

	var chain ast.Expression
	if def != nil {
		chain = def.Body
	} else {
		r.Sink.Report(diagnostics.Diagnostic{Code: diagnostics.ErrNoMatchingCase, Pos: m.Pos(), Message: "match over an integer/bool value needs a `_` case covering the remaining values"})
		chain = ast.NewErrorExpression(m.Pos(), "non-exhaustive match")
	}
	for i := len(ordinary) - 1; i >= 0; i-- {
		c := ordinary[i]
		cond := ast.NewBinaryOp(c.Pattern.Pos(), ast.Eq, m.Obj, c.Pattern)
		chain = ast.NewIf(c.Pattern.Pos(), cond, c.Body, chain)
	}
	nchain, repl := r.resolve(chain, s)
	all = append(all, repl...)
	return nchain, all
}

// isMatchableScalar reports whether t is an integer or bool type, the two
// scalar kinds resolveValueMatch's if/else lowering accepts (spec §4.7).
func isMatchableScalar(t types.Type) bool {
	switch t.(type) {
	case types.Integer, types.LiteralInt:
		return true
	}
	return t.Equals(types.Bool)
}

// resolveVariable is the contract for a `var` Declaration statement: resolve
// its TypePattern (if any) and Init, then settle the Variable's own Type
// (declared pattern wins; otherwise inferred from Init) — spec §3.3,
// §4.8.
func (r *Resolver) resolveVariable(v *ast.Variable, s *scope.Scope) []ast.Node {
	if v.Type() != nil {
		return nil
	}
	var all []ast.Node
	var declared types.Type
	if v.TypePattern != nil {
		nt, repl := r.resolve(v.TypePattern, s)
		v.TypePattern = nt
		all = append(all, repl...)
		if !nt.IsResolved() {
			r.unresolved++
			return all
		}
		tr, ok := nt.(*ast.TypeRef)
		if !ok {
			r.unresolved++
			return all
		}
		declared = tr.Denoted
	}
	if v.Init != nil {
		ni, repl := r.resolve(v.Init, s)
		v.Init = ni
		all = append(all, repl...)
		if !ni.IsResolved() {
			r.unresolved++
			return all
		}
		if declared != nil {
			rewritten, _, ok := ast.CanAssignFrom(declared, ni)
			if !ok {
				r.Sink.Report(diagnostics.Diagnostic{Code: diagnostics.ErrTypeMismatch, Pos: v.Pos(),
					Message: fmt.Sprintf("cannot initialize %s with %s", declared, ni.ReturnType())})
				return all
			}
			v.Init = rewritten
		} else {
			declared = ni.ReturnType()
		}
	}
	if declared == nil {
		r.unresolved++
		return all
	}
	v.SetType(declared)
	return all
}

// resolveFunctionHeader settles a Function's own Type (its Arguments'
// patterns and ReturnTypePattern, once those are TypeRefs) independently
// of resolving its Body, matching funxy's AnalyzeHeaders-before-
// AnalyzeBodies ordering within a single pass (spec §4.8).
func (r *Resolver) resolveFunctionHeader(fn *ast.Function, s *scope.Scope) {
	if fn.TypeResolved() {
		return
	}
	// A generic Function's own declaration never becomes one concrete
	// types.Function — each call site specializes it (spec §4.6) and it is
	// that specialization's header which gets resolved, on a later pass,
	// through this same function. Treating the generic original as settled
	// here (without ever calling SetType on it) keeps the fixpoint driver
	// from looping on it forever.
	if fn.IsGeneric() {
		return
	}

	// Settle every argument's and the return type's pattern. Concrete type
	// names start life as an UnresolvedSymbol and need a resolve pass;
	// `_`/`label:pattern` subtrees are left as-is (only a generic
	// specialization ever turns those into TypeRefs, via
	// internal/specialize's substitution, and fn.IsGeneric() already
	// short-circuited that case above).
	allPatternsResolved := true
	for _, a := range fn.Arguments {
		if a.Pattern == nil || a.Pattern.IsResolved() {
			continue
		}
		if _, ok := a.Pattern.(*ast.UnresolvedSymbol); !ok {
			continue
		}
		np, _ := r.resolve(a.Pattern, s)
		a.Pattern = np
		if !np.IsResolved() {
			allPatternsResolved = false
		}
	}
	if fn.ReturnTypePattern != nil && !fn.ReturnTypePattern.IsResolved() {
		if _, ok := fn.ReturnTypePattern.(*ast.UnresolvedSymbol); ok {
			nrt, _ := r.resolve(fn.ReturnTypePattern, s)
			fn.ReturnTypePattern = nrt
			if !nrt.IsResolved() {
				allPatternsResolved = false
			}
		}
	}
	if !allPatternsResolved {
		r.unresolved++
		return
	}

	argType := types.Type(types.Void)
	if len(fn.Arguments) == 1 {
		if t, ok := fn.Arguments[0].Pattern.(*ast.TypeRef); ok {
			argType = t.Denoted
			fn.Arguments[0].SetType(t.Denoted)
		} else {
			r.unresolved++
			return
		}
	} else if len(fn.Arguments) > 1 {
		fields := make([]types.Type, len(fn.Arguments))
		labels := make([]string, len(fn.Arguments))
		for i, a := range fn.Arguments {
			t, ok := a.Pattern.(*ast.TypeRef)
			if !ok {
				r.unresolved++
				return
			}
			fields[i] = t.Denoted
			labels[i] = a.Label
			a.SetType(t.Denoted)
		}
		argType = r.Types.GetAnonymousRecord(fields, labels, false)
	}
	var retType types.Type
	if fn.ReturnTypePattern != nil {
		t, ok := fn.ReturnTypePattern.(*ast.TypeRef)
		if !ok {
			r.unresolved++
			return
		}
		retType = t.Denoted
	} else if fn.Body != nil && fn.Body.IsResolved() {
		retType = fn.Body.ReturnType()
	} else {
		r.unresolved++
		return
	}
	fn.SetType(r.Types.GetFunction(argType, retType))
}
