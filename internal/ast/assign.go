package ast

import "github.com/hyp/arpha/internal/types"

// CanAssignFrom is the expression-aware half of spec §3.1's assignability
// rule: given the destination type and a source expression, it decides
// whether the assignment is allowed and, for a Literal-weight match,
// returns a rewritten expression with the destination's concrete type
// substituted in (e.g. an IntegerLiteral's LiteralInt type narrows to the
// parameter's actual Integer kind). The pure type-compatibility check
// lives in types.AssignRank.
func CanAssignFrom(dst types.Type, src Expression) (Expression, types.Weight, bool) {
	w, ok := types.AssignRank(dst, src.ReturnType())
	if !ok {
		return nil, types.NoMatch, false
	}
	if w == types.Literal {
		src.SetReturnType(dst)
	}
	return src, w, true
}
