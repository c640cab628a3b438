package arpha_test

import (
	"context"
	"net"
	"testing"

	"github.com/jhump/protoreflect/desc/protoparse"
	"github.com/jhump/protoreflect/dynamic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"

	"github.com/hyp/arpha/internal/ast"
	"github.com/hyp/arpha/internal/ctfebind"
	"github.com/hyp/arpha/internal/rpc"
	"github.com/hyp/arpha/internal/types"
	"github.com/hyp/arpha/pkg/arpha"
)

func noErrors(t *testing.T, diags []arpha.Diagnostic) {
	t.Helper()
	for _, d := range diags {
		t.Logf("diagnostic: %s %s", d.Code, d.Message)
	}
	for _, d := range diags {
		require.NotEqual(t, "E", string(d.Code[0]), "unexpected error diagnostic: %s", d.Message)
	}
}

func TestResolve_SimpleArithmeticVar(t *testing.T) {
	src := `var x = 1 + 2`
	prog, diags := arpha.Resolve("t.arp", src)
	noErrors(t, diags)
	require.NotNil(t, prog)
	require.Len(t, prog.Root.Children, 1)

	v, ok := prog.Root.Children[0].(*ast.Variable)
	require.True(t, ok)
	assert.Equal(t, "x", v.Name)
	require.NotNil(t, v.Type())
}

func TestResolve_IfExpression(t *testing.T) {
	src := `var y = if true then 1 else 2`
	prog, diags := arpha.Resolve("t.arp", src)
	noErrors(t, diags)
	require.NotNil(t, prog)
	require.Len(t, prog.Root.Children, 1)
}

func TestResolve_UndefinedSymbolReportsDiagnostic(t *testing.T) {
	src := `var z = undefinedThing`
	_, diags := arpha.Resolve("t.arp", src)
	require.NotEmpty(t, diags)
	assert.Equal(t, "E0001", string(diags[0].Code))
}

func TestResolve_FunctionDeclarationAndCall(t *testing.T) {
	src := `def add(a: Int32, b: Int32) -> Int32 { a + b }`
	prog, diags := arpha.Resolve("t.arp", src)
	noErrors(t, diags)
	require.NotNil(t, prog)
	require.Len(t, prog.Root.Children, 1)

	fn, ok := prog.Root.Children[0].(*ast.Function)
	require.True(t, ok)
	assert.Equal(t, "add", fn.Name)
}

// TestResolve_WithIntrinsic_ConstantFolds exercises the host-embedding hook
// a real caller would use to wire internal/rpc.Oracle (or any other
// ctfebind.Binder) into the resolver: a pure intrinsic called with a
// constant argument should fold away into a literal (spec §4.7).
func TestResolve_WithIntrinsic_ConstantFolds(t *testing.T) {
	double := ctfebind.BinderFunc(func(ctx ctfebind.InvocationContext) ctfebind.Value {
		v, ok := ctx.GetInt(0)
		if !ok {
			ctx.RetErr("expected an integer argument")
			return nil
		}
		return v * 2
	})

	src := `var x = double(21)`
	prog, diags := arpha.Resolve("t.arp", src, arpha.WithIntrinsic("double", double, types.Int64, types.Int64))
	noErrors(t, diags)
	require.NotNil(t, prog)

	v, ok := prog.Root.Children[0].(*ast.Variable)
	require.True(t, ok)
	lit, ok := v.Init.(*ast.IntegerLiteral)
	require.True(t, ok, "constant call should have folded into a literal, got %T", v.Init)
	assert.Equal(t, int64(42), lit.Value)
}

// TestResolve_GenericFunctionSpecializes is this module's analogue of
// spec.md's S2 scenario: a generic `id` with a bound-name pattern argument
// (`x: T:_`) gets specialized against a concrete call-site argument type,
// and the specialization's own header (including its return type, deduced
// from `T`) resolves.
func TestResolve_GenericFunctionSpecializes(t *testing.T) {
	src := `
def id(x: T:_) -> T { x }
var y = id(3)
`
	prog, diags := arpha.Resolve("t.arp", src)
	noErrors(t, diags)
	require.NotNil(t, prog)
	require.Len(t, prog.Root.Children, 2)

	fn, ok := prog.Root.Children[0].(*ast.Function)
	require.True(t, ok)
	assert.True(t, fn.IsGeneric())
	assert.False(t, fn.TypeResolved(), "the generic declaration itself never becomes one concrete signature")

	y, ok := prog.Root.Children[1].(*ast.Variable)
	require.True(t, ok)
	require.NotNil(t, y.Type())
	assert.True(t, types.Int32.Equals(y.Type()) || types.Int64.Equals(y.Type()),
		"expected id(3) to deduce an integer return type, got %s", y.Type())
}

// TestResolve_MacroSplicesQuotedLiteral exercises the simple (non-mixin)
// macro form (spec §4.6): a `macro` whose body CTFE-evaluates to a
// NodeReference quoting a single expression has that expression spliced in
// place of the call, rather than the call itself being folded or left
// unresolved.
func TestResolve_MacroSplicesQuotedLiteral(t *testing.T) {
	src := `
macro answer() -> Int32 {
  [> 42 <]
}
var x = answer()
`
	prog, diags := arpha.Resolve("t.arp", src)
	noErrors(t, diags)
	require.NotNil(t, prog)
	require.Len(t, prog.Root.Children, 2)

	v, ok := prog.Root.Children[1].(*ast.Variable)
	require.True(t, ok)
	lit, ok := v.Init.(*ast.IntegerLiteral)
	require.True(t, ok, "expected the macro call to be replaced by its quoted literal, got %T", v.Init)
	assert.Equal(t, int64(42), lit.Value)
}

// TestResolve_MacroMixinSplicesHygienically exercises the mixin form: a
// macro quoting a Block has that block's own Children flattened into the
// surrounding block in the call's place (resolveBlock's insertion-list
// contract), and any variable the fragment introduces is hygienically
// renamed (CloneWithFreshIdentifiers) so it is invisible under its
// original name to code outside the fragment.
func TestResolve_MacroMixinSplicesHygienically(t *testing.T) {
	src := `
macro declareHelper() -> Void {
  [> { var helper = 7 } <]
}
declareHelper()
var y = helper
`
	_, diags := arpha.Resolve("t.arp", src)

	var sawUndefinedHelper bool
	for _, d := range diags {
		if d.Code == "E0001" {
			sawUndefinedHelper = true
		}
	}
	assert.True(t, sawUndefinedHelper,
		"expected the macro-introduced `helper` binding to be invisible under its original name outside the spliced fragment")
}

// TestResolve_TypeMatchDispatchesByPattern exercises the type-value half of
// Match's dual dispatch (spec §4.7): each case's pattern is checked against
// the scrutinee type in order, and the first matching case's Body (not
// always the first case) is what the Match resolves to.
func TestResolve_TypeMatchDispatchesByPattern(t *testing.T) {
	src := `
def classify() -> Int32 {
  match Bool {
    case Int32 -> 1
    case Bool -> 2
    case _ -> 0
  }
}
var a = classify()
`
	prog, diags := arpha.Resolve("t.arp", src)
	noErrors(t, diags)
	require.NotNil(t, prog)

	fn, ok := prog.Root.Children[0].(*ast.Function)
	require.True(t, ok)
	require.NotEmpty(t, fn.Body.Children)
	last, ok := fn.Body.Children[len(fn.Body.Children)-1].(*ast.ExpressionStatement)
	require.True(t, ok)
	lit, ok := last.Expr.(*ast.IntegerLiteral)
	require.True(t, ok, "expected the matching case's body to be spliced in, got %T", last.Expr)
	assert.Equal(t, int64(2), lit.Value, "Bool should have matched the second case, not the first")
}

// TestResolve_ValueMatchLowersToIfChain exercises the integer/bool half of
// Match's dual dispatch: matching over a non-type value lowers to a chained
// If comparing the scrutinee against each case's pattern by equality, with
// `_` as the final else.
func TestResolve_ValueMatchLowersToIfChain(t *testing.T) {
	src := `
def sign(n: Int32) -> Int32 {
  match n {
    case 1 -> 10
    case 2 -> 20
    case _ -> 0
  }
}
var b = sign(2)
`
	prog, diags := arpha.Resolve("t.arp", src)
	noErrors(t, diags)
	require.NotNil(t, prog)

	fn, ok := prog.Root.Children[0].(*ast.Function)
	require.True(t, ok)
	require.NotEmpty(t, fn.Body.Children)
	last, ok := fn.Body.Children[len(fn.Body.Children)-1].(*ast.ExpressionStatement)
	require.True(t, ok)
	_, ok = last.Expr.(*ast.If)
	assert.True(t, ok, "expected match over an Int32 scrutinee to lower to a chained If, got %T", last.Expr)

	b, ok := prog.Root.Children[1].(*ast.Variable)
	require.True(t, ok)
	require.NotNil(t, b.Type())
	assert.True(t, types.Int32.Equals(b.Type()), "expected sign(2) to resolve to Int32, got %s", b.Type())
}

// startDoubleOracleServer starts an in-process gRPC server implementing
// the oracletest.Echo/Double method from internal/rpc/testdata/oracle.proto,
// so TestResolve_WithRPCOracle can dial a real internal/rpc.Oracle against
// it rather than a fake Binder.
func startDoubleOracleServer(t *testing.T) (addr string, stop func()) {
	t.Helper()

	parser := protoparse.Parser{ImportPaths: []string{"../../internal/rpc/testdata"}}
	fds, err := parser.ParseFiles("oracle.proto")
	require.NoError(t, err)
	md := fds[0].FindService("oracletest.Echo").FindMethodByName("Double")
	require.NotNil(t, md)

	sd := &grpc.ServiceDesc{
		ServiceName: "oracletest.Echo",
		HandlerType: (*any)(nil),
		Methods: []grpc.MethodDesc{{
			MethodName: "Double",
			Handler: func(_ any, ctx context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
				req := dynamic.NewMessage(md.GetInputType())
				if err := dec(req); err != nil {
					return nil, err
				}
				n, _ := req.TryGetFieldByName("n")
				resp := dynamic.NewMessage(md.GetOutputType())
				if err := resp.TrySetFieldByName("n", n.(int32)*2); err != nil {
					return nil, err
				}
				return resp, nil
			},
		}},
	}

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	srv := grpc.NewServer()
	srv.RegisterService(sd, struct{}{})
	go srv.Serve(lis)
	return lis.Addr().String(), srv.Stop
}

// TestResolve_WithRPCOracle drives internal/rpc.Oracle end to end through
// the public embedding surface: a live (if in-process) gRPC server, a real
// NewOracle dialed against it, wired in as a CTFE intrinsic via
// WithIntrinsic and called from source; the test checks that the call
// resolves to a typed variable (the oracle's field-map result has no
// literal form, so the Call itself stays in place) (spec §12's
// RPC-oracle domain-stack component).
func TestResolve_WithRPCOracle(t *testing.T) {
	addr, stop := startDoubleOracleServer(t)
	defer stop()

	oracle, err := rpc.NewOracle("oracle.proto", "../../internal/rpc/testdata", "oracletest.Echo", "Double", addr)
	require.NoError(t, err)
	defer oracle.Close()

	src := `var x = doubleViaRPC(21)`
	prog, diags := arpha.Resolve("t.arp", src,
		arpha.WithIntrinsic("doubleViaRPC", oracle, types.Int32, types.Int32))
	noErrors(t, diags)
	require.NotNil(t, prog)

	v, ok := prog.Root.Children[0].(*ast.Variable)
	require.True(t, ok)
	require.NotNil(t, v.Type())
}
