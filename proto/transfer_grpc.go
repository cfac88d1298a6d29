package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "transfer.v1.TransferService"

const (
	TransferFullMethodName      = "/" + ServiceName + "/Transfer"
	CreateAccountFullMethodName = "/" + ServiceName + "/CreateAccount"
	GetAccountFullMethodName    = "/" + ServiceName + "/GetAccount"
)

// TransferServiceClient is the client API for TransferService.
type TransferServiceClient interface {
	Transfer(ctx context.Context, in *TransferRequest, opts ...grpc.CallOption) (*TransferResponse, error)
	CreateAccount(ctx context.Context, in *CreateAccountRequest, opts ...grpc.CallOption) (*Account, error)
	GetAccount(ctx context.Context, in *GetAccountRequest, opts ...grpc.CallOption) (*Account, error)
}

type transferServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewTransferServiceClient 所有呼叫都會帶上 JSON content-subtype
func NewTransferServiceClient(cc grpc.ClientConnInterface) TransferServiceClient {
	return &transferServiceClient{cc: cc}
}

func (c *transferServiceClient) invoke(ctx context.Context, method string, in, out any, opts []grpc.CallOption) error {
	callOpts := append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	return c.cc.Invoke(ctx, method, in, out, callOpts...)
}

func (c *transferServiceClient) Transfer(ctx context.Context, in *TransferRequest, opts ...grpc.CallOption) (*TransferResponse, error) {
	out := new(TransferResponse)
	if err := c.invoke(ctx, TransferFullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *transferServiceClient) CreateAccount(ctx context.Context, in *CreateAccountRequest, opts ...grpc.CallOption) (*Account, error) {
	out := new(Account)
	if err := c.invoke(ctx, CreateAccountFullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *transferServiceClient) GetAccount(ctx context.Context, in *GetAccountRequest, opts ...grpc.CallOption) (*Account, error) {
	out := new(Account)
	if err := c.invoke(ctx, GetAccountFullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

// TransferServiceServer is the server API for TransferService.
type TransferServiceServer interface {
	Transfer(context.Context, *TransferRequest) (*TransferResponse, error)
	CreateAccount(context.Context, *CreateAccountRequest) (*Account, error)
	GetAccount(context.Context, *GetAccountRequest) (*Account, error)
}

// UnimplementedTransferServiceServer 嵌入後未實作的方法回傳 codes.Unimplemented
type UnimplementedTransferServiceServer struct{}

func (UnimplementedTransferServiceServer) Transfer(context.Context, *TransferRequest) (*TransferResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Transfer not implemented")
}

func (UnimplementedTransferServiceServer) CreateAccount(context.Context, *CreateAccountRequest) (*Account, error) {
	return nil, status.Error(codes.Unimplemented, "method CreateAccount not implemented")
}

func (UnimplementedTransferServiceServer) GetAccount(context.Context, *GetAccountRequest) (*Account, error) {
	return nil, status.Error(codes.Unimplemented, "method GetAccount not implemented")
}

func RegisterTransferServiceServer(s grpc.ServiceRegistrar, srv TransferServiceServer) {
	s.RegisterService(&TransferServiceDesc, srv)
}

// unaryHandler 把型別化的 server 方法包成 grpc.MethodDesc 需要的 handler
func unaryHandler[Req any, Resp any](
	fullMethod string,
	call func(TransferServiceServer, context.Context, *Req) (*Resp, error),
) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(TransferServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(TransferServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// TransferServiceDesc is the grpc.ServiceDesc for TransferService.
var TransferServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*TransferServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Transfer",
			Handler:    unaryHandler(TransferFullMethodName, TransferServiceServer.Transfer),
		},
		{
			MethodName: "CreateAccount",
			Handler:    unaryHandler(CreateAccountFullMethodName, TransferServiceServer.CreateAccount),
		},
		{
			MethodName: "GetAccount",
			Handler:    unaryHandler(GetAccountFullMethodName, TransferServiceServer.GetAccount),
		},
	},
	Streams: []grpc.StreamDesc{},
}
