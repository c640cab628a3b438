package rpc_test

import (
	"context"
	"net"
	"testing"

	"github.com/jhump/protoreflect/desc/protoparse"
	"github.com/jhump/protoreflect/dynamic"
	"google.golang.org/grpc"

	"github.com/hyp/arpha/internal/ctfebind"
	"github.com/hyp/arpha/internal/rpc"
	"github.com/hyp/arpha/internal/types"
)

// fakeCtx is a minimal ctfebind.InvocationContext standing in for the CTFE
// interpreter's real one, so Oracle.Invoke can be exercised without running
// a whole resolve pass.
type fakeCtx struct {
	args []ctfebind.Value
	ret  ctfebind.Value
	err  string
}

func (f *fakeCtx) ArgCount() int              { return len(f.args) }
func (f *fakeCtx) GetType(i int) types.Type   { return nil }
func (f *fakeCtx) GetInt(i int) (int64, bool) { v, ok := f.args[i].(int64); return v, ok }
func (f *fakeCtx) GetFloat(i int) (float64, bool) {
	v, ok := f.args[i].(float64)
	return v, ok
}
func (f *fakeCtx) GetString(i int) (string, bool) { v, ok := f.args[i].(string); return v, ok }
func (f *fakeCtx) GetBool(i int) (bool, bool)     { v, ok := f.args[i].(bool); return v, ok }
func (f *fakeCtx) GetConstant(i int) (ctfebind.Value, bool) {
	if i < 0 || i >= len(f.args) {
		return nil, false
	}
	return f.args[i], true
}
func (f *fakeCtx) Ret(v ctfebind.Value)   { f.ret = v }
func (f *fakeCtx) RetErr(msg string)      { f.err = msg }

// startEchoServer starts an in-process gRPC server implementing the
// Echo/Double method from testdata/oracle.proto via a codegen-free
// dynamic.Message handler, mirroring funvibe-funxy's builtinGrpcRegister
// dynamic service wiring. It returns the listener address and a stop func.
func startEchoServer(t *testing.T) (addr string, stop func()) {
	t.Helper()

	parser := protoparse.Parser{ImportPaths: []string{"testdata"}}
	fds, err := parser.ParseFiles("oracle.proto")
	if err != nil {
		t.Fatalf("parsing testdata/oracle.proto: %v", err)
	}
	svc := fds[0].FindService("oracletest.Echo")
	if svc == nil {
		t.Fatal("service oracletest.Echo not found in testdata/oracle.proto")
	}
	md := svc.FindMethodByName("Double")
	if md == nil {
		t.Fatal("method Double not found on oracletest.Echo")
	}

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
	if err != nil {
		t.Fatalf("listening: %v", err)
	}
	srv := grpc.NewServer()
	srv.RegisterService(sd, struct{}{})
	go srv.Serve(lis)

	return lis.Addr().String(), srv.Stop
}

// TestOracleInvoke drives internal/rpc.Oracle through a real (if
// in-process) gRPC round trip: NewOracle resolves the method from the
// .proto file with no generated stubs, Invoke dials, marshals a request
// from CTFE constant arguments, and returns the response fields — the path
// a macro's compile-time RPC call takes (spec.md §12).
func TestOracleInvoke(t *testing.T) {
	addr, stop := startEchoServer(t)
	defer stop()

	oracle, err := rpc.NewOracle("oracle.proto", "testdata", "oracletest.Echo", "Double", addr)
	if err != nil {
		t.Fatalf("NewOracle: %v", err)
	}
	defer oracle.Close()

	ctx := &fakeCtx{args: []ctfebind.Value{int32(21)}}
	result := oracle.Invoke(ctx)
	if ctx.err != "" {
		t.Fatalf("Invoke reported error: %s", ctx.err)
	}
	out, ok := result.(map[string]ctfebind.Value)
	if !ok {
		t.Fatalf("Invoke returned %T, want map[string]ctfebind.Value", result)
	}
	got, ok := out["n"].(int32)
	if !ok || got != 42 {
		t.Fatalf("out[%q] = %v, want int32(42)", "n", out["n"])
	}
}

// TestNewOracleUnknownMethod confirms NewOracle fails fast (no dial
// attempted) when the .proto file doesn't name the requested method,
// rather than deferring the error to the first Invoke.
func TestNewOracleUnknownMethod(t *testing.T) {
	if _, err := rpc.NewOracle("oracle.proto", "testdata", "oracletest.Echo", "Triple", "127.0.0.1:0"); err == nil {
		t.Fatal("expected an error for an unknown method, got nil")
	}
}
