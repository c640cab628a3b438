package specialize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyp/arpha/internal/ast"
	"github.com/hyp/arpha/internal/pattern"
	"github.com/hyp/arpha/internal/scope"
	"github.com/hyp/arpha/internal/specialize"
	"github.com/hyp/arpha/internal/token"
	"github.com/hyp/arpha/internal/types"
)

// genericID builds a minimal analogue of `def id(x: T:_) -> T { x }`: a
// single argument bound to a fresh name via a BoundName/Wildcard pattern,
// with a Body that just references the argument by name.
func genericID(s *scope.Scope) (*ast.Function, []*pattern.Pattern) {
	fn := ast.NewFunction(token.Position{}, "id", s)
	fn.Flags = ast.FnHasPatternArgs
	arg := ast.NewArgument(token.Position{}, "x", nil)
	fn.Arguments = []*ast.Argument{arg}
	fn.Body = ast.NewBlock(token.Position{}, scope.New(s))
	fn.Body.Children = []ast.Statement{
		&ast.ExpressionStatement{Expr: ast.NewUnresolvedSymbol(token.Position{}, "x", s)},
	}
	boundPattern := &pattern.Pattern{Kind: pattern.BoundName, BindName: "x", Inner: &pattern.Pattern{Kind: pattern.Wildcard}}
	return fn, []*pattern.Pattern{boundPattern}
}

// TestSpecialize_SameArgTypesReturnCachedInstance confirms two Specialize
// calls against the same generic Function with the same concrete argument
// types return the identical instance (pointer equality) rather than
// building a fresh one each time (spec §4.6's specialization cache).
func TestSpecialize_SameArgTypesReturnCachedInstance(t *testing.T) {
	s := scope.New(nil)
	generic, patterns := genericID(s)
	cache := specialize.NewCache()

	first, err := specialize.Specialize(cache, generic, []types.Type{types.Int32}, patterns)
	require.NoError(t, err)

	second, err := specialize.Specialize(cache, generic, []types.Type{types.Int32}, patterns)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Same(t, generic, first.GenericSource)
}

// TestSpecialize_DistinctArgTypesProduceDistinctInstances confirms two
// calls with different concrete argument types are treated as distinct
// specializations, each with its own Key, rather than colliding in the
// cache.
func TestSpecialize_DistinctArgTypesProduceDistinctInstances(t *testing.T) {
	s := scope.New(nil)
	generic, patterns := genericID(s)
	cache := specialize.NewCache()

	forInt32, err := specialize.Specialize(cache, generic, []types.Type{types.Int32}, patterns)
	require.NoError(t, err)

	forInt64, err := specialize.Specialize(cache, generic, []types.Type{types.Int64}, patterns)
	require.NoError(t, err)

	assert.NotSame(t, forInt32, forInt64)
	assert.NotEqual(t,
		specialize.ComputeKey(generic, []types.Type{types.Int32}),
		specialize.ComputeKey(generic, []types.Type{types.Int64}))
}

// TestSpecialize_ReusesExistingInstanceAcrossFreshCache confirms a
// generic's own Specializations map (not just the transient Cache passed
// in) is consulted, so a fresh Cache still finds a previously-built
// instance instead of rebuilding it.
func TestSpecialize_ReusesExistingInstanceAcrossFreshCache(t *testing.T) {
	s := scope.New(nil)
	generic, patterns := genericID(s)

	firstCache := specialize.NewCache()
	built, err := specialize.Specialize(firstCache, generic, []types.Type{types.Int32}, patterns)
	require.NoError(t, err)

	secondCache := specialize.NewCache()
	reused, err := specialize.Specialize(secondCache, generic, []types.Type{types.Int32}, patterns)
	require.NoError(t, err)

	assert.Same(t, built, reused)
}

// TestSpecialize_InstanceArgumentCarriesConcreteTypeRef confirms the
// cloned instance's Argument.Pattern becomes a concrete TypeRef naming the
// bound type, rather than carrying over the generic's own pattern subtree.
func TestSpecialize_InstanceArgumentCarriesConcreteTypeRef(t *testing.T) {
	s := scope.New(nil)
	generic, patterns := genericID(s)
	cache := specialize.NewCache()

	instance, err := specialize.Specialize(cache, generic, []types.Type{types.Int32}, patterns)
	require.NoError(t, err)

	require.Len(t, instance.Arguments, 1)
	tr, ok := instance.Arguments[0].Pattern.(*ast.TypeRef)
	require.True(t, ok)
	assert.True(t, types.Int32.Equals(tr.Denoted))
	assert.False(t, instance.Flags&ast.FnHasPatternArgs != 0,
		"a concrete specialization must not still be marked generic")
}
