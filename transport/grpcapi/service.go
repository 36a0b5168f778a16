package grpcapi

import (
	"context"

	"google.golang.org/grpc"
)

const serviceName = "cellgate.RateLimiter"

// RateLimiterServer is the server API for the RateLimiter service.
type RateLimiterServer interface {
	Throttle(context.Context, *ThrottleRequest) (*ThrottleResponse, error)
}

// RateLimiterClient is the client API for the RateLimiter service.
type RateLimiterClient interface {
	Throttle(ctx context.Context, in *ThrottleRequest, opts ...grpc.CallOption) (*ThrottleResponse, error)
}

type rateLimiterClient struct {
	cc grpc.ClientConnInterface
}

// NewRateLimiterClient builds a client stub over an existing connection.
func NewRateLimiterClient(cc grpc.ClientConnInterface) RateLimiterClient {
	return &rateLimiterClient{cc: cc}
}

func (c *rateLimiterClient) Throttle(ctx context.Context, in *ThrottleRequest, opts ...grpc.CallOption) (*ThrottleResponse, error) {
	out := new(ThrottleResponse)
	err := c.cc.Invoke(ctx, "/"+serviceName+"/Throttle", in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func throttleHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ThrottleRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RateLimiterServer).Throttle(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/Throttle"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(RateLimiterServer).Throttle(ctx, req.(*ThrottleRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// serviceDesc is the grpc.ServiceDesc a protoc-gen-go-grpc-generated file
// would emit for this service.
var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*RateLimiterServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Throttle",
			Handler:    throttleHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "cellgate/ratelimiter.proto",
}

// RegisterRateLimiterServer wires the implementation into a grpc.Server.
func RegisterRateLimiterServer(s grpc.ServiceRegistrar, srv RateLimiterServer) {
	s.RegisterService(&serviceDesc, srv)
}
