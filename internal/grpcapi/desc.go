// Package grpcapi serves the simulator over gRPC. Requests and responses
// are google.protobuf.Struct documents shaped like the HTTP JSON bodies.
package grpcapi

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ServiceName = "diamond.v1.Simulator"

	SimulateGameMethod = "/diamond.v1.Simulator/SimulateGame"
	GetSnapshotMethod  = "/diamond.v1.Simulator/GetSnapshot"
)

// SimulatorServer is the server API for diamond.v1.Simulator.
type SimulatorServer interface {
	SimulateGame(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetSnapshot(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// ServiceDesc describes diamond.v1.Simulator for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SimulatorServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "SimulateGame", Handler: simulateGameHandler},
		{MethodName: "GetSnapshot", Handler: getSnapshotHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "diamond/v1/simulator.proto",
}

func RegisterSimulatorServer(s grpc.ServiceRegistrar, srv SimulatorServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func simulateGameHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SimulatorServer).SimulateGame(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: SimulateGameMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SimulatorServer).SimulateGame(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func getSnapshotHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SimulatorServer).GetSnapshot(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: GetSnapshotMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SimulatorServer).GetSnapshot(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// Client calls diamond.v1.Simulator.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client { return &Client{cc: cc} }

func (c *Client) SimulateGame(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, SimulateGameMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetSnapshot(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, GetSnapshotMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
