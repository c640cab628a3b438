// Package arpha is the public embedding API for Arpha's semantic resolver:
// given source text, it parses and resolves it to a fixpoint and returns
// either the resolved program or the diagnostics explaining why it could
// not be resolved.
//
// Grounded on funvibe/funxy's pkg/embed host-embedding surface (a small
// facade wrapping lex/parse/analyze into one call), narrowed to Arpha's
// resolve-only scope — spec.md's Non-goals exclude code generation and
// runtime execution, so this facade stops at a resolved AST rather than
// funxy's further "evaluate the program" step.
package arpha

import (
	"github.com/hyp/arpha/internal/ast"
	"github.com/hyp/arpha/internal/builtins"
	"github.com/hyp/arpha/internal/ctfebind"
	"github.com/hyp/arpha/internal/diagnostics"
	"github.com/hyp/arpha/internal/parser"
	"github.com/hyp/arpha/internal/pipeline"
	"github.com/hyp/arpha/internal/resolver"
	"github.com/hyp/arpha/internal/scope"
	"github.com/hyp/arpha/internal/token"
	"github.com/hyp/arpha/internal/types"
)

// builtinTypes binds the primitive type names every Arpha source file can
// reference without an import, mirroring the registry a real front end
// would seed before resolving anything (spec §3.1's primitive set).
var builtinTypes = map[string]types.Type{
	"Void": types.Void, "Bool": types.Bool, "Type": types.Meta,
	"Int8": types.Int8, "Int16": types.Int16, "Int32": types.Int32, "Int64": types.Int64,
	"UInt8": types.UInt8, "UInt16": types.UInt16, "UInt32": types.UInt32, "UInt64": types.UInt64,
	"Float32": types.Float32, "Float64": types.Float64,
}

func newRootScope() *scope.Scope {
	s := scope.New(nil)
	for name, t := range builtinTypes {
		decl := ast.NewTypeDeclaration(token.Position{}, name, nil)
		decl.SetType(t)
		s.Define(name, decl)
	}
	return s
}

// Diagnostic is re-exported so callers don't need to import internal/diagnostics.
type Diagnostic = diagnostics.Diagnostic

// Option configures a Resolve call; currently only used to wire
// host-provided CTFE intrinsics (e.g. an internal/rpc.Oracle dialed
// against a project's arpha.yaml-configured gRPC services, spec §12) onto
// the root scope before resolution starts.
type Option func(*options)

type options struct {
	intrinsics []intrinsicReg
	maxPasses  int
}

type intrinsicReg struct {
	name             string
	binder           ctfebind.Binder
	argType, retType types.Type
}

// WithIntrinsic registers an additional callable name bound to binder,
// reachable from source as an ordinary function call and eligible for CTFE
// folding (spec §4.7). Use this to expose an internal/rpc.Oracle or any
// other ctfebind.Binder under a name a .arp source file can call.
func WithIntrinsic(name string, binder ctfebind.Binder, argType, retType types.Type) Option {
	return func(o *options) {
		o.intrinsics = append(o.intrinsics, intrinsicReg{name, binder, argType, retType})
	}
}

// WithMaxPasses caps the resolver's fixpoint loop at n passes instead of
// letting it derive CountNodes(root)+numberOfGenerics+1 itself — wired from an
// arpha.yaml manifest's maxPasses field (internal/config) by callers like
// cmd/arphac that load project configuration. n <= 0 is a no-op.
func WithMaxPasses(n int) Option {
	return func(o *options) { o.maxPasses = n }
}

// ResolvedProgram is a fully-resolved compilation unit's root Block plus
// the scope it was resolved against.
type ResolvedProgram struct {
	Root  *ast.Block
	Scope *scope.Scope
}

// Resolve parses source (attributing positions to file) and runs it
// through the resolver's fixpoint driver. It always returns whatever
// diagnostics were collected; program is nil if parsing failed outright,
// and non-nil-but-partially-resolved if the resolver could not reach a
// fixpoint (callers should still check for diagnostics in that case).
//
// The two stages run as an internal/pipeline Pipeline (lex is folded into
// parser.New itself, so there are two Processors here rather than three):
// parsing first, then resolving — the same lex/parse/resolve stage chain
// cmd/arphac and any other embedder share, rather than a hand-written
// straight-line function.
func Resolve(file, source string, opts ...Option) (*ResolvedProgram, []Diagnostic) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	sink := &diagnostics.CollectingSink{}
	root := newRootScope()
	for _, reg := range o.intrinsics {
		builtins.RegisterIntrinsic(root, reg.name, reg.binder, reg.argType, reg.retType)
	}

	var parseFailed bool
	parseStage := pipeline.ProcessorFunc(func(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
		p := parser.New(ctx.File, ctx.Source)
		ctx.Root = p.ParseProgram(root)
		for _, err := range p.Errors() {
			ctx.Sink.Report(diagnostics.Diagnostic{
				Code:    diagnostics.ErrUndefinedSymbol,
				Message: err.Error(),
			})
		}
		parseFailed = sink.HasErrors()
		return ctx
	})
	resolveStage := pipeline.ProcessorFunc(func(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
		if parseFailed {
			return ctx
		}
		numberOfGenerics := countGenericDefs(ctx.Root)
		r := resolver.New(ctx.Sink)
		r.MaxPasses = o.maxPasses
		if _, err := r.Run(ctx.Root, numberOfGenerics); err != nil {
			ctx.Sink.Report(diagnostics.Diagnostic{
				Code:    diagnostics.ErrFixpointNotReached,
				Pos:     ctx.Root.Pos(),
				Message: err.Error(),
			})
		}
		return ctx
	})

	ctx := pipeline.New(parseStage, resolveStage).Run(&pipeline.PipelineContext{
		File: file, Source: source, Sink: sink,
	})
	if parseFailed {
		return nil, sink.Diagnostics
	}
	return &ResolvedProgram{Root: ctx.Root, Scope: root}, sink.Diagnostics
}

func countGenericDefs(b *ast.Block) int {
	n := 0
	for _, st := range b.Children {
		if fn, ok := st.(*ast.Function); ok && fn.IsGeneric() {
			n++
		}
	}
	return n
}
