package ctfe_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyp/arpha/internal/ast"
	"github.com/hyp/arpha/internal/ctfe"
	"github.com/hyp/arpha/internal/scope"
	"github.com/hyp/arpha/internal/token"
)

func TestEval_IntegerLiteral(t *testing.T) {
	in := ctfe.New()
	v, err := in.Eval(ast.NewIntegerLiteral(token.Position{}, 7))
	require.NoError(t, err)
	assert.Equal(t, int64(7), v)
}

func TestEval_BinaryOpFoldsArithmetic(t *testing.T) {
	in := ctfe.New()
	expr := ast.NewBinaryOp(token.Position{}, ast.Add,
		ast.NewIntegerLiteral(token.Position{}, 19),
		ast.NewIntegerLiteral(token.Position{}, 23))
	v, err := in.Eval(expr)
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)
}

func TestEval_DivisionByZeroReportsError(t *testing.T) {
	in := ctfe.New()
	expr := ast.NewBinaryOp(token.Position{}, ast.Div,
		ast.NewIntegerLiteral(token.Position{}, 1),
		ast.NewIntegerLiteral(token.Position{}, 0))
	_, err := in.Eval(expr)
	assert.Error(t, err)
}

// TestEval_VariableRefReadsImmutableInit confirms that an immutable
// Variable's own Init is itself constant-foldable through a VariableRef,
// the mechanism resolveValueMatch and ordinary constant folding both rely
// on for `var`-bound constants (spec §4.6).
func TestEval_VariableRefReadsImmutableInit(t *testing.T) {
	s := scope.New(nil)
	v := ast.NewVariable(token.Position{}, "x", s, false)
	v.Init = ast.NewIntegerLiteral(token.Position{}, 5)

	in := ctfe.New()
	got, err := in.Eval(ast.NewVariableRef(token.Position{}, v))
	require.NoError(t, err)
	assert.Equal(t, int64(5), got)
}

// TestEval_MutableVariableRefIsNotConstant confirms a mutable Variable
// never folds, even when it happens to have a literal Init — mutability
// alone disqualifies it as a compile-time constant.
func TestEval_MutableVariableRefIsNotConstant(t *testing.T) {
	s := scope.New(nil)
	v := ast.NewVariable(token.Position{}, "x", s, true)
	v.Init = ast.NewIntegerLiteral(token.Position{}, 5)

	in := ctfe.New()
	_, err := in.Eval(ast.NewVariableRef(token.Position{}, v))
	assert.Error(t, err)
}

// TestCloneWithFreshIdentifiers_RenamesBlockLocal exercises the hygienic
// macro-splice cloning mixins rely on: a Block quoted by a macro body gets
// its own Variable renamed to a fresh, uuid-suffixed name distinct from the
// original, and any reference to it within the same quoted fragment is
// rewritten to point at the fresh Variable rather than the original.
func TestCloneWithFreshIdentifiers_RenamesBlockLocal(t *testing.T) {
	s := scope.New(nil)
	blockScope := scope.New(s)
	block := ast.NewBlock(token.Position{}, blockScope)

	helper := ast.NewVariable(token.Position{}, "helper", blockScope, false)
	helper.Init = ast.NewIntegerLiteral(token.Position{}, 7)
	blockScope.Define(helper.Name, helper)

	useHelper := &ast.ExpressionStatement{Expr: ast.NewVariableRef(token.Position{}, helper)}

	block.Children = []ast.Statement{helper, useHelper}

	cloned := ctfe.CloneWithFreshIdentifiers(block, s)
	clonedBlock, ok := cloned.(*ast.Block)
	require.True(t, ok)
	require.Len(t, clonedBlock.Children, 2)

	freshVar, ok := clonedBlock.Children[0].(*ast.Variable)
	require.True(t, ok)
	assert.NotEqual(t, "helper", freshVar.Name)
	assert.Contains(t, freshVar.Name, "helper$")

	// The fix under test: the clone must carry the original Init across,
	// not silently drop it.
	require.NotNil(t, freshVar.Init, "cloned Variable must keep its original Init expression")
	lit, ok := freshVar.Init.(*ast.IntegerLiteral)
	require.True(t, ok)
	assert.Equal(t, int64(7), lit.Value)

	freshUse, ok := clonedBlock.Children[1].(*ast.ExpressionStatement)
	require.True(t, ok)
	freshRef, ok := freshUse.Expr.(*ast.VariableRef)
	require.True(t, ok)
	assert.Same(t, freshVar, freshRef.Var,
		"a reference inside the same quoted fragment must point at the renamed Variable")
}
