package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

/*
 * automata.v1.AutomationService wire contract.
 *
 * Every request is a JSON document carried in google.protobuf.StringValue
 * so numeric literals reach the engine with their exact text; every
 * response is a google.protobuf.Struct. The descriptor below is written by
 * hand and matches what protoc-gen-go emits for the equivalent .proto.
 */

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "automata.v1.AutomationService"

// AutomationServer is the server API for the automation service.
type AutomationServer interface {
	SaveAutomation(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	GetAutomation(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	ListAutomations(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	DeleteAutomation(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	EvaluateAutomation(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	EvaluateCondition(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	ListEvaluations(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
}

type handlerFunc func(AutomationServer, context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)

func method(name string, call handlerFunc) grpc.MethodDesc {
	fullMethod := "/" + ServiceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(wrapperspb.StringValue)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(AutomationServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(AutomationServer), ctx, req.(*wrapperspb.StringValue))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ServiceDesc is the grpc.ServiceDesc for the automation service.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AutomationServer)(nil),
	Methods: []grpc.MethodDesc{
		method("SaveAutomation", AutomationServer.SaveAutomation),
		method("GetAutomation", AutomationServer.GetAutomation),
		method("ListAutomations", AutomationServer.ListAutomations),
		method("DeleteAutomation", AutomationServer.DeleteAutomation),
		method("EvaluateAutomation", AutomationServer.EvaluateAutomation),
		method("EvaluateCondition", AutomationServer.EvaluateCondition),
		method("ListEvaluations", AutomationServer.ListEvaluations),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "automata/v1/automation.proto",
}

// RegisterAutomationServer registers srv on s.
func RegisterAutomationServer(s grpc.ServiceRegistrar, srv AutomationServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// Client calls the automation service over cc.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient creates a client over cc.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Call invokes name with a JSON request document.
func (c *Client) Call(ctx context.Context, name, request string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+name, wrapperspb.String(request), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
