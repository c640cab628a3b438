package pattern_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyp/arpha/internal/pattern"
	"github.com/hyp/arpha/internal/types"
)

func TestWildcard_MatchesAnything(t *testing.T) {
	p := &pattern.Pattern{Kind: pattern.Wildcard}
	w, ok := p.Weight(types.Int32)
	require.True(t, ok)
	assert.Equal(t, types.Wildcard, w)
}

func TestBareType_ExactWeight(t *testing.T) {
	p := &pattern.Pattern{Kind: pattern.BareType, Type: types.Int32}
	w, ok := p.Weight(types.Int32)
	require.True(t, ok)
	assert.Equal(t, types.Exact, w)
}

func TestBareType_Rejects(t *testing.T) {
	p := &pattern.Pattern{Kind: pattern.BareType, Type: types.Bool}
	_, ok := p.Weight(types.Int32)
	assert.False(t, ok)
}

func TestGeneratorCall_StaticArray(t *testing.T) {
	p := &pattern.Pattern{
		Kind: pattern.GeneratorCall,
		Args: []*pattern.Pattern{
			{Kind: pattern.BareType, Type: types.Int32},
			{Kind: pattern.Wildcard},
		},
	}
	arr := types.StaticArray{Elem: types.Int32, N: 4}
	bindings, ok := pattern.Match(p, arr)
	require.True(t, ok)
	assert.Empty(t, bindings, "no BoundName sub-patterns means no bindings introduced")
}

func TestBoundName_IntroducesBinding(t *testing.T) {
	p := &pattern.Pattern{
		Kind:     pattern.BoundName,
		BindName: "n",
		Inner:    &pattern.Pattern{Kind: pattern.Wildcard},
	}
	bindings, ok := pattern.Match(p, types.Int64)
	require.True(t, ok)
	require.Len(t, bindings, 1)
	assert.Equal(t, "n", bindings[0].Name)
	assert.True(t, types.Int64.Equals(bindings[0].Type))
}
