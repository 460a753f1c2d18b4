package credentialv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "credkeeper.v1.CredentialService"

const (
	CredentialService_Verify_FullMethodName         = "/" + ServiceName + "/Verify"
	CredentialService_ChangePassword_FullMethodName = "/" + ServiceName + "/ChangePassword"
	CredentialService_Ping_FullMethodName           = "/" + ServiceName + "/Ping"
)

// CredentialServiceServer is the server API for CredentialService.
type CredentialServiceServer interface {
	Verify(context.Context, *VerifyRequest) (*VerifyResponse, error)
	ChangePassword(context.Context, *ChangePasswordRequest) (*ChangePasswordResponse, error)
	Ping(context.Context, *PingRequest) (*PingResponse, error)
}

// UnimplementedCredentialServiceServer can be embedded to get Unimplemented
// errors for methods a server does not provide.
type UnimplementedCredentialServiceServer struct{}

func (UnimplementedCredentialServiceServer) Verify(context.Context, *VerifyRequest) (*VerifyResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Verify not implemented")
}

func (UnimplementedCredentialServiceServer) ChangePassword(context.Context, *ChangePasswordRequest) (*ChangePasswordResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ChangePassword not implemented")
}

func (UnimplementedCredentialServiceServer) Ping(context.Context, *PingRequest) (*PingResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Ping not implemented")
}

func RegisterCredentialServiceServer(s grpc.ServiceRegistrar, srv CredentialServiceServer) {
	s.RegisterService(&CredentialService_ServiceDesc, srv)
}

func _CredentialService_Verify_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(VerifyRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CredentialServiceServer).Verify(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: CredentialService_Verify_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CredentialServiceServer).Verify(ctx, req.(*VerifyRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _CredentialService_ChangePassword_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ChangePasswordRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CredentialServiceServer).ChangePassword(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: CredentialService_ChangePassword_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CredentialServiceServer).ChangePassword(ctx, req.(*ChangePasswordRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _CredentialService_Ping_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(PingRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CredentialServiceServer).Ping(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: CredentialService_Ping_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CredentialServiceServer).Ping(ctx, req.(*PingRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// CredentialService_ServiceDesc is the grpc.ServiceDesc for CredentialService.
var CredentialService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CredentialServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Verify", Handler: _CredentialService_Verify_Handler},
		{MethodName: "ChangePassword", Handler: _CredentialService_ChangePassword_Handler},
		{MethodName: "Ping", Handler: _CredentialService_Ping_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "credkeeper/v1/credential.json",
}

// CredentialServiceClient is the client API for CredentialService.
type CredentialServiceClient interface {
	Verify(ctx context.Context, in *VerifyRequest, opts ...grpc.CallOption) (*VerifyResponse, error)
	ChangePassword(ctx context.Context, in *ChangePasswordRequest, opts ...grpc.CallOption) (*ChangePasswordResponse, error)
	Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error)
}

type credentialServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewCredentialServiceClient(cc grpc.ClientConnInterface) CredentialServiceClient {
	return &credentialServiceClient{cc: cc}
}

func (c *credentialServiceClient) invoke(ctx context.Context, method string, in, out any, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	return c.cc.Invoke(ctx, method, in, out, opts...)
}

func (c *credentialServiceClient) Verify(ctx context.Context, in *VerifyRequest, opts ...grpc.CallOption) (*VerifyResponse, error) {
	out := new(VerifyResponse)
	if err := c.invoke(ctx, CredentialService_Verify_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *credentialServiceClient) ChangePassword(ctx context.Context, in *ChangePasswordRequest, opts ...grpc.CallOption) (*ChangePasswordResponse, error) {
	out := new(ChangePasswordResponse)
	if err := c.invoke(ctx, CredentialService_ChangePassword_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *credentialServiceClient) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error) {
	out := new(PingResponse)
	if err := c.invoke(ctx, CredentialService_Ping_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}
