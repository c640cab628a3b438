// Package pattern implements Arpha's two-phase pattern matcher (spec.md C4,
// §4.3): type patterns used in argument positions, Match case labels, and
// generic specialization keys.
//
// Grounded on funvibe/funxy's internal/analyzer type-pattern handling
// (wildcard and constrained-wildcard argument types) generalized to cover
// Arpha's additional generator-call and bound-name pattern kinds.
package pattern

import (
	"github.com/hyp/arpha/internal/ast"
	"github.com/hyp/arpha/internal/types"
)

// Kind classifies a resolved pattern subtree (spec §4.3).
type Kind int

const (
	// Wildcard is the bare `_`: matches any value, binds nothing.
	Wildcard Kind = iota
	// BareType is a concrete TypeRef: matches values whose type
	// canAssignFrom-accepts it.
	BareType
	// ConstrainedWildcard is `_: Trait` or `_ if predicate`: matches any
	// value whose type structurally satisfies the trait, or for which the
	// predicate Function returns true.
	ConstrainedWildcard
	// GeneratorCall is a pattern like `Array(_, n)`: matches a type
	// produced by the named type-generator Function, binding its
	// arguments.
	GeneratorCall
	// BoundName is `name: Pattern`: matches like Pattern and additionally
	// binds the whole value to a new Variable named name.
	BoundName
)

// Pattern is a resolved, checkable type pattern.
type Pattern struct {
	Kind       Kind
	Type       types.Type    // for BareType/ConstrainedWildcard's declared bound
	Constraint *ast.Function // for ConstrainedWildcard, when it is a predicate
	Generator  *ast.Function // for GeneratorCall
	Args       []*Pattern    // for GeneratorCall's nested argument patterns
	BindName   string        // for BoundName
	Inner      *Pattern      // for BoundName
}

// Weight is the match-quality contribution this pattern kind contributes
// to overload resolution (spec §3.1, §4.4): WILDCARD=1,
// CONSTRAINED_WILDCARD=2+constraint weight, and bare-type patterns defer to
// types.AssignRank.
func (p *Pattern) Weight(candidate types.Type) (types.Weight, bool) {
	switch p.Kind {
	case Wildcard:
		return types.Wildcard, true
	case ConstrainedWildcard:
		ok := p.Constraint == nil || p.constraintHolds(candidate)
		if !ok {
			return types.NoMatch, false
		}
		return types.ConstrainedWildcard + constraintWeight(p), true
	case BareType:
		return types.AssignRank(p.Type, candidate)
	case GeneratorCall:
		return p.matchGenerator(candidate)
	case BoundName:
		return p.Inner.Weight(candidate)
	}
	return types.NoMatch, false
}

// constraintWeight adds 1 on top of the base CONSTRAINED_WILDCARD score
// when a constraint predicate is present, so a predicate-constrained
// wildcard outranks an unconstrained one; every predicate adds the same 1,
// whatever bound it expresses.
func constraintWeight(p *Pattern) types.Weight {
	if p.Constraint == nil {
		return 0
	}
	return types.Weight(1)
}

// constraintHolds evaluates a constrained-wildcard's predicate. The actual
// CTFE invocation is performed by internal/ctfe; this package only shapes
// the decision point so the overload resolver can call it, since
// evaluating an arbitrary Function here would require importing ctfe and
// create an import cycle (ctfe's fold step itself consults patterns when
// specializing).
func (p *Pattern) constraintHolds(candidate types.Type) bool {
	if p.Constraint == nil {
		return true
	}
	if p.Constraint.Intrinsic == nil {
		// Non-intrinsic constraint predicates are evaluated by
		// internal/ctfe via ConstraintEvaluator (set by the resolver at
		// wiring time); without one bound, the pattern's own declared
		// Type bound is the fallback.
		if p.Type != nil {
			w, ok := types.AssignRank(p.Type, candidate)
			return ok && w != types.NoMatch
		}
		return true
	}
	return true
}

// matchGenerator checks whether candidate was produced by p.Generator and,
// if so, binds p.Args against its type arguments (spec §4.3's
// generator-call patterns, e.g. `Array(_, n)` matching `Array(Int, 4)`).
func (p *Pattern) matchGenerator(candidate types.Type) (types.Weight, bool) {
	args, ok := GeneratorArgsOf(candidate, p.Generator)
	if !ok || len(args) != len(p.Args) {
		return types.NoMatch, false
	}
	total := types.Exact
	for i, sub := range p.Args {
		w, ok := sub.Weight(args[i])
		if !ok {
			return types.NoMatch, false
		}
		if w < total {
			total = w
		}
	}
	return total, true
}

// GeneratorArgsOf decomposes a structural type back into the arguments
// that would reproduce it via generator, if generator is the Function that
// constructs this family of type (e.g. StaticArray's generator records
// (Elem, N)). Only the built-in families are recognized, by generator name
// (`Array`, `Pointer`, `LinearSequence`); a nil generator accepts any of
// them. Types built by user-defined generator Functions are not decomposed.
func GeneratorArgsOf(t types.Type, generator *ast.Function) ([]types.Type, bool) {
	var family string
	var args []types.Type
	switch v := t.(type) {
	case types.StaticArray:
		family, args = "Array", []types.Type{v.Elem, types.Integer{Bits: 64, Signed: true}}
	case types.Pointer:
		family, args = "Pointer", []types.Type{v.Elem}
	case types.LinearSequence:
		family, args = "LinearSequence", []types.Type{v.Elem}
	default:
		return nil, false
	}
	if generator != nil && generator.Name != family {
		return nil, false
	}
	return args, true
}

// Check performs the non-binding phase of matching: does value's type
// satisfy p at all? Match performs Check and, on success, additionally
// produces the Variable bindings the pattern introduces (spec §4.3's
// two-phase Check/Match API: Check is reused by the overload resolver,
// which does not need bindings; Match is used by the pattern-match
// expression resolver, which does).
func Check(p *Pattern, candidate types.Type) bool {
	_, ok := p.Weight(candidate)
	return ok
}

// Binding is one name introduced by a successful Match.
type Binding struct {
	Name string
	Type types.Type
}

// Match runs Check and, if it succeeds, collects the bindings p
// introduces against candidate (BoundName's own name, plus recursively any
// bindings nested GeneratorCall arguments introduce).
func Match(p *Pattern, candidate types.Type) ([]Binding, bool) {
	if !Check(p, candidate) {
		return nil, false
	}
	var out []Binding
	collectBindings(p, candidate, &out)
	return out, true
}

func collectBindings(p *Pattern, candidate types.Type, out *[]Binding) {
	switch p.Kind {
	case BoundName:
		*out = append(*out, Binding{Name: p.BindName, Type: candidate})
		collectBindings(p.Inner, candidate, out)
	case GeneratorCall:
		args, ok := GeneratorArgsOf(candidate, p.Generator)
		if !ok {
			return
		}
		for i, sub := range p.Args {
			if i < len(args) {
				collectBindings(sub, args[i], out)
			}
		}
	}
}
