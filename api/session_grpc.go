package api

import (
	"context"

	grpc "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	Session_NewSession_FullMethodName  = "/vinom.labyrinth.Session/NewSession"
	Session_SessionInfo_FullMethodName = "/vinom.labyrinth.Session/SessionInfo"
	Session_Snapshot_FullMethodName    = "/vinom.labyrinth.Session/Snapshot"
)

// SessionClient is the client API for the Session service.
type SessionClient interface {
	NewSession(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
	SessionInfo(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
	Snapshot(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error)
}

type sessionClient struct {
	cc grpc.ClientConnInterface
}

func NewSessionClient(cc grpc.ClientConnInterface) SessionClient {
	return &sessionClient{cc}
}

func (c *sessionClient) NewSession(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, Session_NewSession_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *sessionClient) SessionInfo(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, Session_SessionInfo_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *sessionClient) Snapshot(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error) {
	out := new(wrapperspb.BytesValue)
	if err := c.cc.Invoke(ctx, Session_Snapshot_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// SessionServer is the server API for the Session service.
type SessionServer interface {
	NewSession(context.Context, *structpb.Struct) (*wrapperspb.StringValue, error)
	SessionInfo(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	Snapshot(context.Context, *wrapperspb.StringValue) (*wrapperspb.BytesValue, error)
}

// UnimplementedSessionServer can be embedded to have forward compatible
// implementations.
type UnimplementedSessionServer struct{}

func (UnimplementedSessionServer) NewSession(context.Context, *structpb.Struct) (*wrapperspb.StringValue, error) {
	return nil, status.Errorf(codes.Unimplemented, "method NewSession not implemented")
}

func (UnimplementedSessionServer) SessionInfo(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method SessionInfo not implemented")
}

func (UnimplementedSessionServer) Snapshot(context.Context, *wrapperspb.StringValue) (*wrapperspb.BytesValue, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Snapshot not implemented")
}

func RegisterSessionServer(s grpc.ServiceRegistrar, srv SessionServer) {
	s.RegisterService(&Session_ServiceDesc, srv)
}

func _Session_NewSession_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SessionServer).NewSession(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: Session_NewSession_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SessionServer).NewSession(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func _Session_SessionInfo_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SessionServer).SessionInfo(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: Session_SessionInfo_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SessionServer).SessionInfo(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _Session_Snapshot_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SessionServer).Snapshot(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: Session_Snapshot_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SessionServer).Snapshot(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

// Session_ServiceDesc is the grpc.ServiceDesc for the Session service. The
// messages are protobuf well-known types.
var Session_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "vinom.labyrinth.Session",
	HandlerType: (*SessionServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "NewSession", Handler: _Session_NewSession_Handler},
		{MethodName: "SessionInfo", Handler: _Session_SessionInfo_Handler},
		{MethodName: "Snapshot", Handler: _Session_Snapshot_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "labyrinth/session.proto",
}
