// Package saborv1 содержит gRPC-контракт sabor.v1.LedgerService (см. ledger.proto).
// Сервис использует только стандартные типы protobuf, поэтому дескриптор и клиент описаны вручную.
package saborv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	LedgerService_CreateOrder_FullMethodName  = "/sabor.v1.LedgerService/CreateOrder"
	LedgerService_UpdateOrder_FullMethodName  = "/sabor.v1.LedgerService/UpdateOrder"
	LedgerService_DeleteOrder_FullMethodName  = "/sabor.v1.LedgerService/DeleteOrder"
	LedgerService_GetOrder_FullMethodName     = "/sabor.v1.LedgerService/GetOrder"
	LedgerService_SearchOrders_FullMethodName = "/sabor.v1.LedgerService/SearchOrders"
	LedgerService_ExportOrders_FullMethodName = "/sabor.v1.LedgerService/ExportOrders"
)

// LedgerServiceClient - клиентский API LedgerService.
type LedgerServiceClient interface {
	CreateOrder(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	UpdateOrder(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	DeleteOrder(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*emptypb.Empty, error)
	GetOrder(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error)
	SearchOrders(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.ListValue, error)
	ExportOrders(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error)
}

type ledgerServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewLedgerServiceClient создаёт клиента поверх соединения.
func NewLedgerServiceClient(cc grpc.ClientConnInterface) LedgerServiceClient {
	return &ledgerServiceClient{cc: cc}
}

func (c *ledgerServiceClient) CreateOrder(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, LedgerService_CreateOrder_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ledgerServiceClient) UpdateOrder(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, LedgerService_UpdateOrder_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ledgerServiceClient) DeleteOrder(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, LedgerService_DeleteOrder_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ledgerServiceClient) GetOrder(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, LedgerService_GetOrder_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ledgerServiceClient) SearchOrders(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, LedgerService_SearchOrders_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ledgerServiceClient) ExportOrders(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error) {
	out := new(wrapperspb.BytesValue)
	if err := c.cc.Invoke(ctx, LedgerService_ExportOrders_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// LedgerServiceServer - серверный API LedgerService.
// Реализации должны встраивать UnimplementedLedgerServiceServer.
type LedgerServiceServer interface {
	CreateOrder(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateOrder(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteOrder(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error)
	GetOrder(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	SearchOrders(context.Context, *wrapperspb.StringValue) (*structpb.ListValue, error)
	ExportOrders(context.Context, *structpb.Struct) (*wrapperspb.BytesValue, error)
	mustEmbedUnimplementedLedgerServiceServer()
}

// UnimplementedLedgerServiceServer отвечает Unimplemented на все методы.
type UnimplementedLedgerServiceServer struct{}

func (UnimplementedLedgerServiceServer) CreateOrder(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method CreateOrder not implemented")
}
func (UnimplementedLedgerServiceServer) UpdateOrder(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method UpdateOrder not implemented")
}
func (UnimplementedLedgerServiceServer) DeleteOrder(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method DeleteOrder not implemented")
}
func (UnimplementedLedgerServiceServer) GetOrder(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method GetOrder not implemented")
}
func (UnimplementedLedgerServiceServer) SearchOrders(context.Context, *wrapperspb.StringValue) (*structpb.ListValue, error) {
	return nil, status.Error(codes.Unimplemented, "method SearchOrders not implemented")
}
func (UnimplementedLedgerServiceServer) ExportOrders(context.Context, *structpb.Struct) (*wrapperspb.BytesValue, error) {
	return nil, status.Error(codes.Unimplemented, "method ExportOrders not implemented")
}
func (UnimplementedLedgerServiceServer) mustEmbedUnimplementedLedgerServiceServer() {}

// RegisterLedgerServiceServer регистрирует реализацию на gRPC-сервере.
func RegisterLedgerServiceServer(s grpc.ServiceRegistrar, srv LedgerServiceServer) {
	s.RegisterService(&LedgerService_ServiceDesc, srv)
}

// unaryHandler строит обработчик метода: декодирует запрос в новый In и вызывает call с учётом interceptor.
func unaryHandler[In any, Out any](fullMethod string, call func(LedgerServiceServer, context.Context, *In) (Out, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(In)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(LedgerServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(LedgerServiceServer), ctx, req.(*In))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var (
	_LedgerService_CreateOrder_Handler = unaryHandler(LedgerService_CreateOrder_FullMethodName,
		func(s LedgerServiceServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
			return s.CreateOrder(ctx, in)
		})
	_LedgerService_UpdateOrder_Handler = unaryHandler(LedgerService_UpdateOrder_FullMethodName,
		func(s LedgerServiceServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
			return s.UpdateOrder(ctx, in)
		})
	_LedgerService_DeleteOrder_Handler = unaryHandler(LedgerService_DeleteOrder_FullMethodName,
		func(s LedgerServiceServer, ctx context.Context, in *wrapperspb.StringValue) (*emptypb.Empty, error) {
			return s.DeleteOrder(ctx, in)
		})
	_LedgerService_GetOrder_Handler = unaryHandler(LedgerService_GetOrder_FullMethodName,
		func(s LedgerServiceServer, ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
			return s.GetOrder(ctx, in)
		})
	_LedgerService_SearchOrders_Handler = unaryHandler(LedgerService_SearchOrders_FullMethodName,
		func(s LedgerServiceServer, ctx context.Context, in *wrapperspb.StringValue) (*structpb.ListValue, error) {
			return s.SearchOrders(ctx, in)
		})
	_LedgerService_ExportOrders_Handler = unaryHandler(LedgerService_ExportOrders_FullMethodName,
		func(s LedgerServiceServer, ctx context.Context, in *structpb.Struct) (*wrapperspb.BytesValue, error) {
			return s.ExportOrders(ctx, in)
		})
)

// LedgerService_ServiceDesc - дескриптор сервиса для grpc.ServiceRegistrar.
var LedgerService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "sabor.v1.LedgerService",
	HandlerType: (*LedgerServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateOrder", Handler: _LedgerService_CreateOrder_Handler},
		{MethodName: "UpdateOrder", Handler: _LedgerService_UpdateOrder_Handler},
		{MethodName: "DeleteOrder", Handler: _LedgerService_DeleteOrder_Handler},
		{MethodName: "GetOrder", Handler: _LedgerService_GetOrder_Handler},
		{MethodName: "SearchOrders", Handler: _LedgerService_SearchOrders_Handler},
		{MethodName: "ExportOrders", Handler: _LedgerService_ExportOrders_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "sabor/v1/ledger.proto",
}
