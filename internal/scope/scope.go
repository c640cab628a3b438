// Package scope implements Arpha's scope tree (spec.md C2, §3.3): nested
// lexical scopes, imports, and the prefix/infix definition maps that name
// resolution walks.
//
// scope deliberately does not import internal/ast: a Definition is any
// declaration node that can name itself, so ast's declaration nodes satisfy
// Definition structurally without creating an import cycle (ast already
// depends on *Scope for Block.Scope / Function.OwningScope).
package scope

// Definition is anything a scope can bind a name to: a Variable, Argument,
// Function, Overloadset, Record, Variant, Trait, TypeDeclaration, PrefixMacro
// or InfixMacro node from internal/ast.
type Definition interface {
	DefinitionName() string
}

// Import records one scope imported into another (spec §3.3).
type Import struct {
	Scope      *Scope
	Qualified  bool // accessible only as qualifier.name
	Reexported bool // visible to importers of the importing scope
}

// Scope is one node of the lexical scope tree.
type Scope struct {
	Parent  *Scope
	Imports []Import

	prefix map[string]Definition
	infix  map[string]Definition

	// Owner is the Function (if any) whose body this scope or an ancestor
	// up to the nearest enclosing function belongs to; used by
	// FunctionOwner to find the innermost enclosing function for `return`.
	Owner Definition
}

// New creates a child scope of parent (parent may be nil for the root).
func New(parent *Scope) *Scope {
	return &Scope{
		Parent: parent,
		prefix: make(map[string]Definition),
		infix:  make(map[string]Definition),
	}
}

// Define binds name to def as a prefix (ordinary value/type/function)
// definition in this scope, replacing any existing binding. Merging a
// second Function into an Overloadset is the caller's responsibility
// (internal/parser's registerOverload does it, spec §4.5).
func (s *Scope) Define(name string, def Definition) {
	s.prefix[name] = def
}

// DefineInfix binds name as an infix (binary operator) definition.
func (s *Scope) DefineInfix(name string, def Definition) {
	s.infix[name] = def
}

// LookupPrefix resolves name as a prefix/ordinary symbol, searching this
// scope, then imported scopes (unqualified, non-reexported import edges are
// still visible to direct lookups originating in the importing scope),
// then the parent scope. Returns the first match; shadowing follows lookup
// order (spec §3.3, §4.2: the innermost non-resolved scope).
func (s *Scope) LookupPrefix(name string) (Definition, bool) {
	return s.lookup(name, false)
}

// LookupInfix resolves name as an infix operator symbol.
func (s *Scope) LookupInfix(name string) (Definition, bool) {
	return s.lookup(name, true)
}

func (s *Scope) lookup(name string, infix bool) (Definition, bool) {
	for cur := s; cur != nil; cur = cur.Parent {
		table := cur.prefix
		if infix {
			table = cur.infix
		}
		if d, ok := table[name]; ok {
			return d, true
		}
		for _, imp := range cur.Imports {
			if d, ok := imp.Scope.lookupLocal(name, infix); ok {
				return d, true
			}
		}
	}
	return nil, false
}

// lookupLocal resolves name in s or its reexported imports only, without
// walking up to s.Parent; used when resolving through an import edge so
// an imported scope's own parent chain (e.g. an enclosing function body)
// is not accidentally searched (spec §3.3 invariant: imports bring in a
// scope's definitions, not its lexical ancestry).
func (s *Scope) lookupLocal(name string, infix bool) (Definition, bool) {
	table := s.prefix
	if infix {
		table = s.infix
	}
	if d, ok := table[name]; ok {
		return d, true
	}
	for _, imp := range s.Imports {
		if !imp.Reexported {
			continue
		}
		if d, ok := imp.Scope.lookupLocal(name, infix); ok {
			return d, true
		}
	}
	return nil, false
}

// Import adds an import edge from s to imported.
func (s *Scope) Import(imported *Scope, qualified, reexported bool) {
	s.Imports = append(s.Imports, Import{Scope: imported, Qualified: qualified, Reexported: reexported})
}

// FunctionOwner returns the nearest enclosing function definition, walking
// up the scope tree, or nil at the top level (spec §3.3: used to resolve
// bare `return`).
func (s *Scope) FunctionOwner() Definition {
	for cur := s; cur != nil; cur = cur.Parent {
		if cur.Owner != nil {
			return cur.Owner
		}
	}
	return nil
}

// PrefixNames returns the names currently bound as prefix definitions in
// this scope only (no parents/imports), in no particular order.
func (s *Scope) PrefixNames() []string {
	names := make([]string, 0, len(s.prefix))
	for n := range s.prefix {
		names = append(names, n)
	}
	return names
}

// Prefix returns the raw prefix definition table entry for name, defined in
// this scope only. Used by internal/parser's registerOverload, which needs
// to know whether this scope already binds the name (spec §4.5) without
// walking parents.
func (s *Scope) Prefix(name string) (Definition, bool) {
	d, ok := s.prefix[name]
	return d, ok
}
