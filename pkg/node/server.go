package node

import (
	"context"
	"net"

	"github.com/lioia/corpus-pagerank/pkg/pagerank"
	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	rankerService     = "pagerank.Ranker"
	rankMethod        = "/" + rankerService + "/Rank"
	healthCheckMethod = "/" + rankerService + "/HealthCheck"
)

// RankerServer is the gRPC ranking service. Requests and responses travel as
// protobuf Structs produced by Request.Struct and Response.Struct.
type RankerServer interface {
	Rank(context.Context, *structpb.Struct) (*structpb.Struct, error)
	HealthCheck(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
}

var rankerServiceDesc = grpc.ServiceDesc{
	ServiceName: rankerService,
	HandlerType: (*RankerServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Rank", Handler: rankHandler},
		{MethodName: "HealthCheck", Handler: healthCheckHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "pagerank.proto",
}

// RegisterRankerServer registers srv on s.
func RegisterRankerServer(s grpc.ServiceRegistrar, srv RankerServer) {
	s.RegisterService(&rankerServiceDesc, srv)
}

func rankHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RankerServer).Rank(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: rankMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(RankerServer).Rank(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func healthCheckHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RankerServer).HealthCheck(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: healthCheckMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(RankerServer).HealthCheck(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

type NodeServerImpl struct {
	Logger *logrus.Entry
	Limits Limits
}

// Used by clients to check that the node is still alive
func (s *NodeServerImpl) HealthCheck(context.Context, *emptypb.Empty) (*emptypb.Empty, error) {
	return &emptypb.Empty{}, nil
}

// Rank computes the ranks of the graph carried by in.
func (s *NodeServerImpl) Rank(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := RequestFromStruct(in)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	res, err := Compute(req, s.Limits, s.Logger)
	if err != nil {
		return nil, status.Error(errorCode(err), err.Error())
	}
	out, err := res.Struct()
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

func errorCode(err error) codes.Code {
	switch {
	case xerrors.Is(err, ErrBadRequest):
		return codes.InvalidArgument
	case xerrors.Is(err, pagerank.ErrNotConverged):
		return codes.Aborted
	}
	return codes.Internal
}

// Serve runs the Ranker service on lis until the listener fails or the
// server is stopped.
func Serve(lis net.Listener, limits Limits, logger *logrus.Entry) (*grpc.Server, <-chan error) {
	server := grpc.NewServer()
	RegisterRankerServer(server, &NodeServerImpl{Logger: logger, Limits: limits})
	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if err := server.Serve(lis); err != nil {
			errCh <- err
		}
	}()
	return server, errCh
}
