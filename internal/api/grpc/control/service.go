package control

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	// ServiceName is the fully qualified gRPC service name.
	ServiceName = "possession.control.v1.ControlService"

	// SendCommandMethod is the full method name of SendCommand.
	SendCommandMethod = "/" + ServiceName + "/SendCommand"
	// GetStatusMethod is the full method name of GetStatus.
	GetStatusMethod = "/" + ServiceName + "/GetStatus"
)

// ControlServer is the server side of the control API.
type ControlServer interface {
	SendCommand(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error)
	GetStatus(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
}

// ServiceDesc describes the control service for grpc.Server registration.
//
//nolint:gochecknoglobals // grpc keeps a pointer to the descriptor.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ControlServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "SendCommand",
			Handler:    sendCommandHandler,
		},
		{
			MethodName: "GetStatus",
			Handler:    getStatusHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "possession/control/v1/control.proto",
}

// RegisterControlServer registers srv on the gRPC registrar.
func RegisterControlServer(registrar grpc.ServiceRegistrar, srv ControlServer) {
	registrar.RegisterService(&ServiceDesc, srv)
}

func sendCommandHandler(
	srv any,
	ctx context.Context,
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(ControlServer).SendCommand(ctx, in) //nolint:forcetypeassert // grpc checks HandlerType on registration.
	}

	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: SendCommandMethod,
	}

	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ControlServer).SendCommand(ctx, req.(*wrapperspb.StringValue)) //nolint:forcetypeassert // Decoded above.
	}

	return interceptor(ctx, in, info, handler)
}

func getStatusHandler(
	srv any,
	ctx context.Context,
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(ControlServer).GetStatus(ctx, in) //nolint:forcetypeassert // grpc checks HandlerType on registration.
	}

	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: GetStatusMethod,
	}

	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ControlServer).GetStatus(ctx, req.(*emptypb.Empty)) //nolint:forcetypeassert // Decoded above.
	}

	return interceptor(ctx, in, info, handler)
}

// ControlClient is the client side of the control API.
type ControlClient interface {
	SendCommand(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*emptypb.Empty, error)
	GetStatus(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
}

// controlClient invokes the control methods over a client connection.
type controlClient struct {
	// cc is the underlying connection.
	cc grpc.ClientConnInterface
}

// NewControlClient returns a client bound to cc.
func NewControlClient(cc grpc.ClientConnInterface) ControlClient {
	return &controlClient{cc: cc}
}

func (c *controlClient) SendCommand(
	ctx context.Context,
	in *wrapperspb.StringValue,
	opts ...grpc.CallOption,
) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, SendCommandMethod, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *controlClient) GetStatus(
	ctx context.Context,
	in *emptypb.Empty,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, GetStatusMethod, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}
