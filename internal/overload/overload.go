// Package overload implements Arpha's overload resolver (spec.md C5,
// §4.4): given a callee name and an argument Tuple, it picks the single
// best-matching Function out of every candidate visible at the call site.
//
// Grounded on funvibe/funxy's internal/analyzer overload-candidate
// collection (walking the current scope plus imported scopes, respecting
// import visibility) generalized with Arpha's weighted scoring
// (types.Weight) and labeled-argument anchoring.
package overload

import (
	"fmt"
	"strings"

	"github.com/hyp/arpha/internal/ast"
	"github.com/hyp/arpha/internal/pattern"
	"github.com/hyp/arpha/internal/scope"
	"github.com/hyp/arpha/internal/types"
)

// Candidate is one Function in contention, paired with the per-argument
// pattern weights it scored once resolution runs.
type Candidate struct {
	Fn      *ast.Function
	Weights []types.Weight
	Total   types.Weight
}

// Result is the outcome of resolving one call site.
type Result struct {
	Winner     *ast.Function
	Ambiguous  []*ast.Function // >1 entries iff resolution failed on a tie
	NoMatch    bool
}

// Collect gathers every Function candidate bound to name visible from s:
// a single Function, every member of an Overloadset, found via
// s.LookupPrefix walking parents and imports (spec §3.3, §4.4).
func Collect(s *scope.Scope, name string) []*ast.Function {
	def, ok := s.LookupPrefix(name)
	if !ok {
		return nil
	}
	switch d := def.(type) {
	case *ast.Function:
		return []*ast.Function{d}
	case *ast.Overloadset:
		out := make([]*ast.Function, len(d.Functions))
		copy(out, d.Functions)
		return out
	}
	return nil
}

// argExprs flattens a call's argument expression into a positional list
// plus parallel labels, treating a bare (non-Tuple) expression as a single
// unlabeled argument (spec §4.4).
func argExprs(arg ast.Expression) ([]ast.Expression, []string) {
	if t, ok := arg.(*ast.Tuple); ok {
		return t.Children, t.Labels
	}
	return []ast.Expression{arg}, []string{""}
}

// lastNonLabeledExpr finds the rightmost positional (unlabeled) argument
// index. anchor does not call it: anchor binds labeled arguments to the
// parameter of the same name and fills the remaining parameters with the
// positional arguments left-to-right, without consulting this index.
func lastNonLabeledExpr(labels []string) int {
	last := -1
	for i, l := range labels {
		if l == "" {
			last = i
		}
	}
	return last
}

// anchor pairs each Function argument with the call expression(s) that
// bind it: a labeled call argument matches the parameter of the same
// Label; the remaining call arguments fill the remaining parameters in
// order, left to right. If the Function's last parameter is variadic
// (FnHasExpandableArgs), it absorbs every positional argument left over
// once all earlier parameters are filled (spec §4.4's variadic
// absorption). Returns nil if the shapes cannot be reconciled.
func anchor(fn *ast.Function, exprs []ast.Expression, labels []string) [][]ast.Expression {
	params := fn.Arguments
	bound := make([][]ast.Expression, len(params))
	used := make([]bool, len(exprs))

	paramIndex := make(map[string]int, len(params))
	for i, p := range params {
		if p.Label != "" {
			paramIndex[p.Label] = i
		}
	}
	for i, l := range labels {
		if l == "" {
			continue
		}
		pi, ok := paramIndex[l]
		if !ok {
			return nil
		}
		bound[pi] = append(bound[pi], exprs[i])
		used[i] = true
	}

	isVariadic := fn.Flags&ast.FnHasExpandableArgs != 0
	pi := 0
	for i, e := range exprs {
		if used[i] {
			continue
		}
		for pi < len(params) && bound[pi] != nil {
			pi++
		}
		switch {
		case pi < len(params):
			bound[pi] = append(bound[pi], e)
		case isVariadic && len(params) > 0:
			last := len(params) - 1
			bound[last] = append(bound[last], e)
		default:
			return nil
		}
	}

	for i, p := range params {
		if len(bound[i]) == 0 && p.Default == nil {
			return nil
		}
	}
	return bound
}

// Score computes fn's total match weight against a call's argument
// expressions, or ok=false if fn does not apply at all (wrong arity,
// unbound required parameter, or a parameter pattern rejecting its
// argument outright).
func Score(fn *ast.Function, patterns []*pattern.Pattern, arg ast.Expression) (Candidate, bool) {
	exprs, labels := argExprs(arg)
	bound := anchor(fn, exprs, labels)
	if bound == nil {
		return Candidate{}, false
	}
	weights := make([]types.Weight, len(bound))
	total := types.Weight(0)
	for i, boundExprs := range bound {
		if len(boundExprs) == 0 {
			// Defaulted parameter: contributes the lowest positive
			// weight, never the winning margin on its own.
			weights[i] = types.Wildcard
			total += types.Wildcard
			continue
		}
		var p *pattern.Pattern
		if i < len(patterns) {
			p = patterns[i]
		}
		for _, e := range boundExprs {
			w, ok := scoreOne(fn, i, p, e)
			if !ok {
				return Candidate{}, false
			}
			weights[i] = w
			total += w
		}
	}
	return Candidate{Fn: fn, Weights: weights, Total: total}, true
}

func scoreOne(fn *ast.Function, i int, p *pattern.Pattern, e ast.Expression) (types.Weight, bool) {
	if p == nil {
		return types.AssignRank(fn.Arguments[i].Type(), e.ReturnType())
	}
	return p.Weight(e.ReturnType())
}

// Resolve scores every candidate visible for name at s and returns the
// single best match. A strict-best (no ties for Total) wins; a tie among
// the best-scoring candidates is a hard ambiguity error, never silently
// broken by declaration order (spec §4.4's tie-break-to-hard-error rule).
func Resolve(s *scope.Scope, name string, patternsOf func(*ast.Function) []*pattern.Pattern, arg ast.Expression) Result {
	candidates := Collect(s, name)
	if len(candidates) == 0 {
		return Result{NoMatch: true}
	}

	var scored []Candidate
	for _, fn := range candidates {
		c, ok := Score(fn, patternsOf(fn), arg)
		if ok {
			scored = append(scored, c)
		}
	}
	if len(scored) == 0 {
		return Result{NoMatch: true}
	}

	best := scored[0].Total
	for _, c := range scored[1:] {
		if c.Total > best {
			best = c.Total
		}
	}
	var winners []*ast.Function
	for _, c := range scored {
		if c.Total == best {
			winners = append(winners, c.Fn)
		}
	}
	if len(winners) == 1 {
		return Result{Winner: winners[0]}
	}
	return Result{Ambiguous: winners}
}

// AmbiguityError formats the hard-error message for a tied resolution
// (spec §4.8 error propagation).
func AmbiguityError(name string, winners []*ast.Function) error {
	locs := make([]string, len(winners))
	for i, w := range winners {
		locs[i] = w.Pos().String()
	}
	return fmt.Errorf("ambiguous call to %q: %d equally-ranked overloads at %s", name, len(winners), strings.Join(locs, ", "))
}
