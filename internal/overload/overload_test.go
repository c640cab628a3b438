package overload_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyp/arpha/internal/ast"
	"github.com/hyp/arpha/internal/overload"
	"github.com/hyp/arpha/internal/pattern"
	"github.com/hyp/arpha/internal/scope"
	"github.com/hyp/arpha/internal/token"
	"github.com/hyp/arpha/internal/types"
)

func noPatterns(*ast.Function) []*pattern.Pattern { return nil }

func oneArgFn(s *scope.Scope, name string, argType types.Type) *ast.Function {
	fn := ast.NewFunction(token.Position{}, name, s)
	arg := ast.NewArgument(token.Position{}, "a", nil)
	arg.SetType(argType)
	fn.Arguments = []*ast.Argument{arg}
	return fn
}

func intLiteralArg(v int64, t types.Type) ast.Expression {
	lit := ast.NewIntegerLiteral(token.Position{}, v)
	lit.SetReturnType(t)
	return lit
}

// TestResolve_PicksExactTypeOverNonMatching confirms an Int32-typed
// argument resolves to the Int32 overload, and the Int64 overload (which
// doesn't accept an Int32 value at all, since AssignRank only allows a
// literal-kind source to widen) is excluded rather than scored.
func TestResolve_PicksExactTypeOverNonMatching(t *testing.T) {
	s := scope.New(nil)
	fnInt32 := oneArgFn(s, "f", types.Int32)
	fnInt64 := oneArgFn(s, "f", types.Int64)
	s.Define("f", ast.NewOverloadset("f", fnInt32, fnInt64))

	result := overload.Resolve(s, "f", noPatterns, intLiteralArg(5, types.Int32))
	require.NotNil(t, result.Winner)
	assert.Same(t, fnInt32, result.Winner)
	assert.Empty(t, result.Ambiguous)
}

// TestResolve_TiedCandidatesAreHardAmbiguity confirms that when two
// candidates score identically, Resolve reports a hard ambiguity rather
// than silently picking the first (or any) one by declaration order
// (spec §4.4's tie-break-to-error rule).
func TestResolve_TiedCandidatesAreHardAmbiguity(t *testing.T) {
	s := scope.New(nil)
	first := oneArgFn(s, "f", types.Int32)
	second := oneArgFn(s, "f", types.Int32)
	s.Define("f", ast.NewOverloadset("f", first, second))

	result := overload.Resolve(s, "f", noPatterns, intLiteralArg(5, types.Int32))
	assert.Nil(t, result.Winner)
	assert.Len(t, result.Ambiguous, 2)
}

// TestResolve_NoCandidatesIsNoMatch confirms an unknown callee name (or one
// where every candidate's shape rejects the call) reports NoMatch rather
// than panicking or silently returning a zero-value winner.
func TestResolve_NoCandidatesIsNoMatch(t *testing.T) {
	s := scope.New(nil)
	result := overload.Resolve(s, "doesNotExist", noPatterns, intLiteralArg(5, types.Int32))
	assert.True(t, result.NoMatch)
	assert.Nil(t, result.Winner)
}

func TestAmbiguityError_NamesEveryWinner(t *testing.T) {
	s := scope.New(nil)
	a := oneArgFn(s, "f", types.Int32)
	b := oneArgFn(s, "f", types.Int32)
	err := overload.AmbiguityError("f", []*ast.Function{a, b})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "f")
	assert.Contains(t, err.Error(), "2")
}
