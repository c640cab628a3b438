// Package ctfe implements Arpha's compile-time function evaluation engine
// (spec.md C7, §4.6, §4.7): a tree-walking interpreter over already-typed
// ast.Expression subtrees, used both to fold pure constant expressions and
// to run macro bodies whose result is spliced back into the caller's AST.
//
// Grounded on funvibe/funxy's internal/evaluator tree-walking interpreter
// (the same switch-on-node-kind structure, generalized from funxy's
// dynamic values down to Arpha's const-only Value set) and its builtin
// binder registration pattern, narrowed to internal/ctfebind.Binder so
// internal/ast never needs to import this package.
package ctfe

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/hyp/arpha/internal/ast"
	"github.com/hyp/arpha/internal/ctfebind"
	"github.com/hyp/arpha/internal/scope"
	"github.com/hyp/arpha/internal/types"
)

// Interpreter evaluates constant-foldable ast.Expression subtrees.
type Interpreter struct {
	// MaxSteps bounds evaluation so a non-terminating CTFE body cannot
	// hang the resolver fixpoint (spec §4.7's "must terminate" invariant
	// is enforced defensively here, not proven statically).
	MaxSteps int
	steps    int

	// env, when non-nil, supplies ArgumentRef values for a single
	// function invocation's nested evaluation (set by evalCall).
	env map[*ast.Argument]ctfebind.Value
}

func New() *Interpreter { return &Interpreter{MaxSteps: 1_000_000} }

// Eval evaluates e, returning its constant Value. It returns an error if e
// is not constant-foldable (contains a non-constant reference) or a step
// budget is exceeded.
func (in *Interpreter) Eval(e ast.Expression) (ctfebind.Value, error) {
	if in.steps++; in.steps > in.MaxSteps {
		return nil, fmt.Errorf("ctfe: exceeded step budget evaluating %s", e)
	}
	switch v := e.(type) {
	case *ast.IntegerLiteral:
		return v.Value, nil
	case *ast.FloatLiteral:
		return v.Value, nil
	case *ast.CharLiteral:
		return v.Value, nil
	case *ast.StringLiteral:
		return v.Value, nil
	case *ast.BoolLiteral:
		return v.Value, nil
	case *ast.UnitLiteral:
		return nil, nil
	case *ast.TypeRef:
		return v.Denoted, nil
	case *ast.ArgumentRef:
		return in.evalArgumentRef(v)
	case *ast.VariableRef:
		if v.Var.ConstSubstitute != nil {
			return in.Eval(v.Var.ConstSubstitute)
		}
		if v.Var.Init != nil && !v.Var.Mutable {
			return in.Eval(v.Var.Init)
		}
		return nil, fmt.Errorf("ctfe: %s is not a compile-time constant", v.Var.Name)
	case *ast.UnaryOp:
		return in.evalUnary(v)
	case *ast.BinaryOp:
		return in.evalBinary(v)
	case *ast.If:
		cond, err := in.Eval(v.Cond)
		if err != nil {
			return nil, err
		}
		b, ok := cond.(bool)
		if !ok {
			return nil, fmt.Errorf("ctfe: if condition did not fold to Bool")
		}
		if b {
			return in.Eval(v.Then)
		}
		if v.Else != nil {
			return in.Eval(v.Else)
		}
		return nil, nil
	case *ast.Block:
		return in.evalBlock(v)
	case *ast.Call:
		return in.evalCall(v)
	case *ast.NodeReference:
		return v, nil
	default:
		return nil, fmt.Errorf("ctfe: %T is not constant-foldable", e)
	}
}

func (in *Interpreter) evalUnary(u *ast.UnaryOp) (ctfebind.Value, error) {
	val, err := in.Eval(u.E)
	if err != nil {
		return nil, err
	}
	switch u.Kind {
	case ast.UnaryNeg:
		switch n := val.(type) {
		case int64:
			return -n, nil
		case float64:
			return -n, nil
		}
		return nil, fmt.Errorf("ctfe: cannot negate %v", val)
	case ast.UnaryNot:
		b, ok := val.(bool)
		if !ok {
			return nil, fmt.Errorf("ctfe: `not` requires Bool")
		}
		return !b, nil
	}
	return nil, fmt.Errorf("ctfe: unknown unary op")
}

func (in *Interpreter) evalBinary(b *ast.BinaryOp) (ctfebind.Value, error) {
	av, err := in.Eval(b.A)
	if err != nil {
		return nil, err
	}
	bv, err := in.Eval(b.B)
	if err != nil {
		return nil, err
	}
	if ai, ok := av.(int64); ok {
		if bi, ok := bv.(int64); ok {
			return intBinOp(b.Kind, ai, bi)
		}
	}
	if af, ok := toFloat(av); ok {
		if bf, ok := toFloat(bv); ok {
			return floatBinOp(b.Kind, af, bf)
		}
	}
	if as, ok := av.(string); ok {
		if bs, ok := bv.(string); ok && b.Kind == ast.Add {
			return as + bs, nil
		}
	}
	return nil, fmt.Errorf("ctfe: unsupported operand types for binary op")
}

func toFloat(v ctfebind.Value) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func intBinOp(kind ast.BinaryOpKind, a, b int64) (ctfebind.Value, error) {
	switch kind {
	case ast.Add:
		return a + b, nil
	case ast.Sub:
		return a - b, nil
	case ast.Mul:
		return a * b, nil
	case ast.Div:
		if b == 0 {
			return nil, fmt.Errorf("ctfe: division by zero")
		}
		return a / b, nil
	case ast.Mod:
		if b == 0 {
			return nil, fmt.Errorf("ctfe: modulo by zero")
		}
		return a % b, nil
	case ast.Eq:
		return a == b, nil
	case ast.Neq:
		return a != b, nil
	case ast.Lt:
		return a < b, nil
	case ast.Gt:
		return a > b, nil
	case ast.Le:
		return a <= b, nil
	case ast.Ge:
		return a >= b, nil
	}
	return nil, fmt.Errorf("ctfe: unsupported integer op")
}

func floatBinOp(kind ast.BinaryOpKind, a, b float64) (ctfebind.Value, error) {
	switch kind {
	case ast.Add:
		return a + b, nil
	case ast.Sub:
		return a - b, nil
	case ast.Mul:
		return a * b, nil
	case ast.Div:
		return a / b, nil
	case ast.Eq:
		return a == b, nil
	case ast.Neq:
		return a != b, nil
	case ast.Lt:
		return a < b, nil
	case ast.Gt:
		return a > b, nil
	case ast.Le:
		return a <= b, nil
	case ast.Ge:
		return a >= b, nil
	}
	return nil, fmt.Errorf("ctfe: unsupported float op")
}

func (in *Interpreter) evalBlock(b *ast.Block) (ctfebind.Value, error) {
	var last ctfebind.Value
	for _, st := range b.Children {
		es, ok := st.(*ast.ExpressionStatement)
		if !ok {
			return nil, fmt.Errorf("ctfe: block contains a non-expression statement not supported in CTFE")
		}
		v, err := in.Eval(es.Expr)
		if err != nil {
			return nil, err
		}
		last = v
	}
	return last, nil
}

func (in *Interpreter) evalCall(c *ast.Call) (ctfebind.Value, error) {
	ref, ok := c.Callee.(*ast.FunctionRef)
	if !ok {
		return nil, fmt.Errorf("ctfe: call target did not resolve to a single function")
	}
	fn := ref.Fn
	args := flattenArgs(c.Arg)
	argVals := make([]ctfebind.Value, len(args))
	argTypes := make([]types.Type, len(args))
	for i, a := range args {
		v, err := in.Eval(a)
		if err != nil {
			return nil, err
		}
		argVals[i] = v
		argTypes[i] = a.ReturnType()
	}

	if fn.Flags&ast.FnIntrinsic != 0 && fn.Intrinsic != nil {
		ctx := &invocationContext{args: argVals, types: argTypes}
		result := fn.Intrinsic.Invoke(ctx)
		if ctx.err != "" {
			return nil, fmt.Errorf("ctfe: %s: %s", fn.Name, ctx.err)
		}
		if result == nil {
			return ctx.ret, nil
		}
		return result, nil
	}

	if fn.Body == nil {
		return nil, fmt.Errorf("ctfe: %s has no body to evaluate", fn.Name)
	}
	// Bind arguments as ConstSubstitute on the function's own Argument
	// Variables is the resolver's job before re-entering the body;
	// here we bind transiently via a nested interpreter call by
	// substituting each Argument's Pattern-derived Variable (the body
	// references Arguments through ArgumentRef, not VariableRef, so a
	// plain constant environment suffices without mutating shared state).
	sub := New()
	sub.env = map[*ast.Argument]ctfebind.Value{}
	for i, a := range fn.Arguments {
		if i < len(argVals) {
			sub.env[a] = argVals[i]
		}
	}
	sub.MaxSteps = in.MaxSteps - in.steps
	return sub.evalBlock(fn.Body)
}

func flattenArgs(arg ast.Expression) []ast.Expression {
	if t, ok := arg.(*ast.Tuple); ok {
		return t.Children
	}
	return []ast.Expression{arg}
}

func (in *Interpreter) evalArgumentRef(a *ast.ArgumentRef) (ctfebind.Value, error) {
	if in.env != nil {
		if v, ok := in.env[a.Arg]; ok {
			return v, nil
		}
	}
	return nil, fmt.Errorf("ctfe: argument %s has no bound constant value", a.Arg.Name)
}

// CloneWithFreshIdentifiers performs hygienic macro splicing (spec §4.6):
// every Variable declared within quoted renames to a fresh,
// uuid-suffixed name so the splice site's own bindings cannot capture (or
// be captured by) names the macro body introduced.
func CloneWithFreshIdentifiers(quoted ast.Node, s *scope.Scope) ast.Node {
	renames := map[*ast.Variable]*ast.Variable{}
	return renameNode(quoted, s, renames)
}

func renameNode(n ast.Node, s *scope.Scope, renames map[*ast.Variable]*ast.Variable) ast.Node {
	switch v := n.(type) {
	case *ast.VariableRef:
		if nv, ok := renames[v.Var]; ok {
			return ast.NewVariableRef(v.Pos(), nv)
		}
		return v
	case *ast.Block:
		ns := scope.New(s)
		nb := ast.NewBlock(v.Pos(), ns)
		nb.Children = make([]ast.Statement, len(v.Children))
		for i, st := range v.Children {
			nb.Children[i] = renameStatement(st, ns, renames)
		}
		return nb
	case *ast.BinaryOp:
		return ast.NewBinaryOp(v.Pos(), v.Kind,
			renameNode(v.A, s, renames).(ast.Expression),
			renameNode(v.B, s, renames).(ast.Expression))
	case *ast.Call:
		return ast.NewCall(v.Pos(),
			renameNode(v.Callee, s, renames).(ast.Expression),
			renameNode(v.Arg, s, renames).(ast.Expression))
	default:
		return n
	}
}

func renameStatement(st ast.Statement, s *scope.Scope, renames map[*ast.Variable]*ast.Variable) ast.Statement {
	switch v := st.(type) {
	case *ast.Variable:
		fresh := ast.NewVariable(v.Pos(), v.Name+"$"+uuid.NewString()[:8], s, v.Mutable)
		renames[v] = fresh
		s.Define(fresh.Name, fresh)
		if v.Init != nil {
			fresh.Init = renameNode(v.Init, s, renames).(ast.Expression)
		}
		return fresh
	case *ast.ExpressionStatement:
		return &ast.ExpressionStatement{Expr: renameNode(v.Expr, s, renames).(ast.Expression)}
	default:
		return st
	}
}

// invocationContext implements ctfebind.InvocationContext over a flat,
// already-evaluated argument list (spec §4.7).
type invocationContext struct {
	args  []ctfebind.Value
	types []types.Type
	ret   ctfebind.Value
	err   string
}

func (c *invocationContext) ArgCount() int { return len(c.args) }

func (c *invocationContext) GetType(i int) types.Type {
	if i < 0 || i >= len(c.types) {
		return nil
	}
	return c.types[i]
}

func (c *invocationContext) GetInt(i int) (int64, bool) {
	v, ok := c.GetConstant(i)
	if !ok {
		return 0, false
	}
	n, ok := v.(int64)
	return n, ok
}

func (c *invocationContext) GetFloat(i int) (float64, bool) {
	v, ok := c.GetConstant(i)
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	return f, ok
}

func (c *invocationContext) GetString(i int) (string, bool) {
	v, ok := c.GetConstant(i)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func (c *invocationContext) GetBool(i int) (bool, bool) {
	v, ok := c.GetConstant(i)
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

func (c *invocationContext) GetConstant(i int) (ctfebind.Value, bool) {
	if i < 0 || i >= len(c.args) {
		return nil, false
	}
	return c.args[i], true
}

func (c *invocationContext) Ret(v ctfebind.Value) { c.ret = v }
func (c *invocationContext) RetErr(msg string)     { c.err = msg }
