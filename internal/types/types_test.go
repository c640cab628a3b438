package types_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyp/arpha/internal/types"
)

func TestAssignRank_ExactMatch(t *testing.T) {
	w, ok := types.AssignRank(types.Int32, types.Int32)
	require.True(t, ok)
	assert.Equal(t, types.Exact, w)
}

func TestAssignRank_LiteralNarrowing(t *testing.T) {
	w, ok := types.AssignRank(types.Int64, types.LiteralInt{})
	require.True(t, ok)
	assert.Equal(t, types.Literal, w)
}

func TestAssignRank_NoMatch(t *testing.T) {
	_, ok := types.AssignRank(types.Bool, types.Int32)
	assert.False(t, ok)
}

func TestAssignRank_ExtenderSubtyping(t *testing.T) {
	base := &types.Record{Name: "Shape", Fields: []types.Field{
		{Name: "area", Type: types.Float64},
	}}
	derived := &types.Record{Name: "Circle", Fields: []types.Field{
		{Name: "base", Type: base, IsExtending: true},
		{Name: "radius", Type: types.Float64},
	}}

	w, ok := types.AssignRank(base, derived)
	require.True(t, ok)
	assert.Equal(t, types.Subtype, w)
}

func TestAnonymousAggregate_HashConsedIdentityEquality(t *testing.T) {
	a := &types.AnonymousAggregate{Types: []types.Type{types.Int32, types.Bool}, Labels: []string{"", ""}}
	b := &types.AnonymousAggregate{Types: []types.Type{types.Int32, types.Bool}, Labels: []string{"", ""}}

	assert.False(t, a.Equals(b), "distinct constructions are not Equal without registry interning")
	assert.True(t, a.Equals(a))
}

func TestRecordEquality_IsDeclarationIdentity(t *testing.T) {
	r1 := &types.Record{Name: "Point"}
	r2 := &types.Record{Name: "Point"}
	assert.False(t, r1.Equals(r2), "same-named but distinct declarations must not compare equal")
	assert.True(t, r1.Equals(r1))
}
