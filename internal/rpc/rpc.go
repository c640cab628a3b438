// Package rpc implements Arpha's compile-time "RPC oracle" intrinsic
// (spec.md §12 domain-stack wiring): a CTFE Binder that lets a macro or
// constant expression call out to a live gRPC service at compile time
// (e.g. to fetch a schema version or validate a request shape against a
// running service) and fold the result into the program being resolved.
//
// Grounded directly on funvibe/funxy's internal/evaluator/builtins_grpc.go,
// which resolves a .proto file with jhump/protoreflect's codegen-free
// dynamic.Message + protoparse.Parser, then invokes it over a real
// grpc.ClientConn without any generated stub — the same pattern this
// package reuses, since dynamic.Message implements proto.Message and so
// needs no additional binding plumbing to cross grpc.ClientConn.Invoke.
package rpc

import (
	"context"
	"fmt"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/desc/protoparse"
	"github.com/jhump/protoreflect/dynamic"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/hyp/arpha/internal/ctfebind"
)

// Oracle is a CTFE Binder bound to one gRPC method of one service,
// resolved from a .proto file without generated stubs.
type Oracle struct {
	Target     string // grpc dial target, e.g. "localhost:50051"
	ProtoPath  string
	ImportPath string
	Service    string
	Method     string

	conn    *grpc.ClientConn
	methodD *desc.MethodDescriptor
}

// NewOracle parses protoPath (searched under importPath) and resolves the
// named service/method, without dialing yet (Dial is separate so a
// resolver pass that never actually invokes the oracle pays no network
// cost).
func NewOracle(protoPath, importPath, service, method, target string) (*Oracle, error) {
	parser := protoparse.Parser{ImportPaths: []string{importPath}}
	fds, err := parser.ParseFiles(protoPath)
	if err != nil {
		return nil, fmt.Errorf("rpc: parsing %s: %w", protoPath, err)
	}
	if len(fds) == 0 {
		return nil, fmt.Errorf("rpc: %s produced no file descriptor", protoPath)
	}
	svc := fds[0].FindService(service)
	if svc == nil {
		return nil, fmt.Errorf("rpc: service %q not found in %s", service, protoPath)
	}
	md := svc.FindMethodByName(method)
	if md == nil {
		return nil, fmt.Errorf("rpc: method %q not found on service %q", method, service)
	}
	return &Oracle{
		Target: target, ProtoPath: protoPath, ImportPath: importPath,
		Service: service, Method: method, methodD: md,
	}, nil
}

// Dial opens the underlying grpc connection; called lazily by Invoke on
// first use so constructing the Binder never blocks on network I/O.
func (o *Oracle) dial() error {
	if o.conn != nil {
		return nil
	}
	conn, err := grpc.NewClient(o.Target, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return fmt.Errorf("rpc: dialing %s: %w", o.Target, err)
	}
	o.conn = conn
	return nil
}

// Invoke implements ctfebind.Binder: it builds a dynamic.Message request
// from the invocation's constant arguments (matched to the request
// message's fields by position), invokes the method with no generated
// stub, and returns the response's fields back as a ctfebind.Value map.
func (o *Oracle) Invoke(ctx ctfebind.InvocationContext) ctfebind.Value {
	if err := o.dial(); err != nil {
		ctx.RetErr(err.Error())
		return nil
	}

	reqMsg := dynamic.NewMessage(o.methodD.GetInputType())
	fields := o.methodD.GetInputType().GetFields()
	for i, f := range fields {
		if i >= ctx.ArgCount() {
			break
		}
		val, ok := ctx.GetConstant(i)
		if !ok {
			continue
		}
		if err := reqMsg.TrySetField(f, val); err != nil {
			ctx.RetErr(fmt.Sprintf("rpc: binding argument %d to field %s: %v", i, f.GetName(), err))
			return nil
		}
	}

	respMsg := dynamic.NewMessage(o.methodD.GetOutputType())
	fullMethod := fmt.Sprintf("/%s/%s", o.methodD.GetService().GetFullyQualifiedName(), o.methodD.GetName())
	if err := o.conn.Invoke(context.Background(), fullMethod, reqMsg, respMsg); err != nil {
		ctx.RetErr(fmt.Sprintf("rpc: invoking %s: %v", fullMethod, err))
		return nil
	}

	out := make(map[string]ctfebind.Value, len(o.methodD.GetOutputType().GetFields()))
	for _, f := range o.methodD.GetOutputType().GetFields() {
		out[f.GetName()] = respMsg.GetField(f)
	}
	return out
}

// Close releases the oracle's grpc connection, if one was dialed.
func (o *Oracle) Close() error {
	if o.conn == nil {
		return nil
	}
	return o.conn.Close()
}
