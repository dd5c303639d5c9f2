package saborv1

import (
	"context"
	"errors"
	"os"
	"reflect"
	"regexp"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type fakeClientConn struct {
	invoke func(context.Context, string, any, any, ...grpc.CallOption) error
}

func (f *fakeClientConn) Invoke(ctx context.Context, method string, args any, reply any, opts ...grpc.CallOption) error {
	if f.invoke == nil {
		return errors.New("unexpected Invoke call")
	}
	return f.invoke(ctx, method, args, reply, opts...)
}

func (f *fakeClientConn) NewStream(context.Context, *grpc.StreamDesc, string, ...grpc.CallOption) (grpc.ClientStream, error) {
	return nil, errors.New("not implemented")
}

type grpcTestLedgerService struct {
	UnimplementedLedgerServiceServer
}

func (s *grpcTestLedgerService) CreateOrder(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return req, nil
}

func (s *grpcTestLedgerService) UpdateOrder(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return req, nil
}

func (s *grpcTestLedgerService) DeleteOrder(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error) {
	return &emptypb.Empty{}, nil
}

func (s *grpcTestLedgerService) GetOrder(_ context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	return &structpb.Struct{Fields: map[string]*structpb.Value{"id": structpb.NewStringValue(req.GetValue())}}, nil
}

func (s *grpcTestLedgerService) SearchOrders(context.Context, *wrapperspb.StringValue) (*structpb.ListValue, error) {
	return &structpb.ListValue{}, nil
}

func (s *grpcTestLedgerService) ExportOrders(context.Context, *structpb.Struct) (*wrapperspb.BytesValue, error) {
	return wrapperspb.Bytes([]byte("id;customer_name")), nil
}

func TestLedgerServiceClientMethods(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		methods := map[string]int{}
		conn := &fakeClientConn{
			invoke: func(_ context.Context, method string, _ any, reply any, _ ...grpc.CallOption) error {
				methods[method]++
				switch out := reply.(type) {
				case *structpb.Struct:
					out.Fields = map[string]*structpb.Value{"id": structpb.NewStringValue("order-1")}
				case *emptypb.Empty:
				case *structpb.ListValue:
					out.Values = []*structpb.Value{structpb.NewStringValue("order-1")}
				case *wrapperspb.BytesValue:
					out.Value = []byte("data")
				default:
					t.Fatalf("unexpected reply type: %T", out)
				}
				return nil
			},
		}

		client := NewLedgerServiceClient(conn)
		ctx := context.Background()
		if _, err := client.CreateOrder(ctx, &structpb.Struct{}); err != nil {
			t.Fatalf("CreateOrder failed: %v", err)
		}
		if _, err := client.UpdateOrder(ctx, &structpb.Struct{}); err != nil {
			t.Fatalf("UpdateOrder failed: %v", err)
		}
		if _, err := client.DeleteOrder(ctx, wrapperspb.String("order-1")); err != nil {
			t.Fatalf("DeleteOrder failed: %v", err)
		}
		got, err := client.GetOrder(ctx, wrapperspb.String("order-1"))
		if err != nil {
			t.Fatalf("GetOrder failed: %v", err)
		}
		if got.GetFields()["id"].GetStringValue() != "order-1" {
			t.Fatalf("unexpected GetOrder reply: %v", got)
		}
		if _, err := client.SearchOrders(ctx, wrapperspb.String("")); err != nil {
			t.Fatalf("SearchOrders failed: %v", err)
		}
		if _, err := client.ExportOrders(ctx, &structpb.Struct{}); err != nil {
			t.Fatalf("ExportOrders failed: %v", err)
		}

		for _, method := range []string{
			LedgerService_CreateOrder_FullMethodName,
			LedgerService_UpdateOrder_FullMethodName,
			LedgerService_DeleteOrder_FullMethodName,
			LedgerService_GetOrder_FullMethodName,
			LedgerService_SearchOrders_FullMethodName,
			LedgerService_ExportOrders_FullMethodName,
		} {
			if methods[method] != 1 {
				t.Fatalf("expected method %s called exactly once, got %d", method, methods[method])
			}
		}
	})

	t.Run("error", func(t *testing.T) {
		conn := &fakeClientConn{
			invoke: func(context.Context, string, any, any, ...grpc.CallOption) error {
				return status.Error(codes.Internal, "boom")
			},
		}
		client := NewLedgerServiceClient(conn)
		ctx := context.Background()

		for name, call := range map[string]func() error{
			"CreateOrder":  func() error { _, err := client.CreateOrder(ctx, &structpb.Struct{}); return err },
			"UpdateOrder":  func() error { _, err := client.UpdateOrder(ctx, &structpb.Struct{}); return err },
			"DeleteOrder":  func() error { _, err := client.DeleteOrder(ctx, wrapperspb.String("x")); return err },
			"GetOrder":     func() error { _, err := client.GetOrder(ctx, wrapperspb.String("x")); return err },
			"SearchOrders": func() error { _, err := client.SearchOrders(ctx, wrapperspb.String("")); return err },
			"ExportOrders": func() error { _, err := client.ExportOrders(ctx, &structpb.Struct{}); return err },
		} {
			if err := call(); status.Code(err) != codes.Internal {
				t.Fatalf("%s expected Internal error, got %v", name, err)
			}
		}
	})
}

func TestUnimplementedLedgerServiceServer(t *testing.T) {
	var srv UnimplementedLedgerServiceServer
	ctx := context.Background()

	for name, call := range map[string]func() error{
		"CreateOrder":  func() error { _, err := srv.CreateOrder(ctx, &structpb.Struct{}); return err },
		"UpdateOrder":  func() error { _, err := srv.UpdateOrder(ctx, &structpb.Struct{}); return err },
		"DeleteOrder":  func() error { _, err := srv.DeleteOrder(ctx, &wrapperspb.StringValue{}); return err },
		"GetOrder":     func() error { _, err := srv.GetOrder(ctx, &wrapperspb.StringValue{}); return err },
		"SearchOrders": func() error { _, err := srv.SearchOrders(ctx, &wrapperspb.StringValue{}); return err },
		"ExportOrders": func() error { _, err := srv.ExportOrders(ctx, &structpb.Struct{}); return err },
	} {
		if err := call(); status.Code(err) != codes.Unimplemented {
			t.Fatalf("%s expected Unimplemented error, got %v", name, err)
		}
	}

	srv.mustEmbedUnimplementedLedgerServiceServer()
}

type grpcHandlerCase struct {
	name   string
	method string
	call   grpc.MethodHandler
}

func TestMethodHandlers(t *testing.T) {
	srv := &grpcTestLedgerService{}
	ctx := context.Background()

	cases := []grpcHandlerCase{
		{name: "CreateOrder", method: LedgerService_CreateOrder_FullMethodName, call: _LedgerService_CreateOrder_Handler},
		{name: "UpdateOrder", method: LedgerService_UpdateOrder_FullMethodName, call: _LedgerService_UpdateOrder_Handler},
		{name: "DeleteOrder", method: LedgerService_DeleteOrder_FullMethodName, call: _LedgerService_DeleteOrder_Handler},
		{name: "GetOrder", method: LedgerService_GetOrder_FullMethodName, call: _LedgerService_GetOrder_Handler},
		{name: "SearchOrders", method: LedgerService_SearchOrders_FullMethodName, call: _LedgerService_SearchOrders_Handler},
		{name: "ExportOrders", method: LedgerService_ExportOrders_FullMethodName, call: _LedgerService_ExportOrders_Handler},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := tc.call(srv, ctx, func(any) error { return errors.New("decode failed") }, nil); err == nil {
				t.Fatalf("expected decode error")
			}

			resp, err := tc.call(srv, ctx, decodeFor(tc.name), nil)
			if err != nil {
				t.Fatalf("handler without interceptor failed: %v", err)
			}
			if resp == nil {
				t.Fatalf("expected non-nil response")
			}

			interceptorCalled := false
			resp, err = tc.call(srv, ctx, decodeFor(tc.name), func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
				interceptorCalled = true
				if info.FullMethod != tc.method {
					t.Fatalf("unexpected full method: got %s want %s", info.FullMethod, tc.method)
				}
				return handler(ctx, req)
			})
			if err != nil {
				t.Fatalf("handler with interceptor failed: %v", err)
			}
			if !interceptorCalled {
				t.Fatalf("interceptor was not called")
			}
			if resp == nil {
				t.Fatalf("expected non-nil response")
			}
		})
	}
}

func TestRegisterAndServiceDescriptor(t *testing.T) {
	g := grpc.NewServer()
	RegisterLedgerServiceServer(g, &grpcTestLedgerService{})

	if got, want := LedgerService_ServiceDesc.ServiceName, "sabor.v1.LedgerService"; got != want {
		t.Fatalf("unexpected service name: got %s want %s", got, want)
	}
	if len(LedgerService_ServiceDesc.Methods) != 6 {
		t.Fatalf("expected 6 method descriptors, got %d", len(LedgerService_ServiceDesc.Methods))
	}
	if LedgerService_ServiceDesc.Metadata == "" {
		t.Fatalf("metadata should not be empty")
	}
	if _, ok := g.GetServiceInfo()["sabor.v1.LedgerService"]; !ok {
		t.Fatalf("service is not registered")
	}
}

func decodeFor(name string) func(any) error {
	return func(v any) error {
		switch req := v.(type) {
		case *structpb.Struct:
			req.Fields = map[string]*structpb.Value{"customer_name": structpb.NewStringValue("Ana")}
		case *wrapperspb.StringValue:
			req.Value = "order-1"
		default:
			return status.Errorf(codes.Internal, "unexpected request type for %s: %T", name, req)
		}
		return nil
	}
}

var rpcPattern = regexp.MustCompile(`rpc\s+(\w+)\s*\(\s*([\w.]+)\s*\)\s*returns\s*\(\s*([\w.]+)\s*\)`)

type protoRPC struct {
	name, input, output string
}

func parseLedgerProto(t *testing.T) (string, []protoRPC) {
	t.Helper()

	raw, err := os.ReadFile("ledger.proto")
	if err != nil {
		t.Fatalf("read ledger.proto: %v", err)
	}
	src := string(raw)

	pkg := regexp.MustCompile(`(?m)^package\s+([\w.]+);`).FindStringSubmatch(src)
	svc := regexp.MustCompile(`(?m)^service\s+(\w+)\s*\{`).FindStringSubmatch(src)
	if pkg == nil || svc == nil {
		t.Fatal("package or service declaration not found in ledger.proto")
	}

	var rpcs []protoRPC
	for _, m := range rpcPattern.FindAllStringSubmatch(src, -1) {
		rpcs = append(rpcs, protoRPC{name: m[1], input: m[2], output: m[3]})
	}
	return pkg[1] + "." + svc[1], rpcs
}

func messageName(t *testing.T, typ reflect.Type) string {
	t.Helper()
	if typ.Kind() != reflect.Pointer {
		t.Fatalf("expected pointer message type, got %s", typ)
	}
	msg, ok := reflect.New(typ.Elem()).Interface().(proto.Message)
	if !ok {
		t.Fatalf("%s is not a proto message", typ)
	}
	return string(msg.ProtoReflect().Descriptor().FullName())
}

func TestServiceDescMatchesLedgerProto(t *testing.T) {
	service, rpcs := parseLedgerProto(t)
	if service != LedgerService_ServiceDesc.ServiceName {
		t.Fatalf("service name: proto %q, descriptor %q", service, LedgerService_ServiceDesc.ServiceName)
	}
	if len(rpcs) != len(LedgerService_ServiceDesc.Methods) {
		t.Fatalf("proto declares %d rpcs, descriptor has %d methods", len(rpcs), len(LedgerService_ServiceDesc.Methods))
	}

	described := make(map[string]bool, len(LedgerService_ServiceDesc.Methods))
	for _, m := range LedgerService_ServiceDesc.Methods {
		described[m.MethodName] = true
	}

	serverType := reflect.TypeOf((*LedgerServiceServer)(nil)).Elem()
	clientType := reflect.TypeOf((*LedgerServiceClient)(nil)).Elem()
	for _, rpc := range rpcs {
		if !described[rpc.name] {
			t.Errorf("rpc %s is missing from the service descriptor", rpc.name)
			continue
		}

		method, ok := serverType.MethodByName(rpc.name)
		if !ok {
			t.Errorf("server interface has no method %s", rpc.name)
			continue
		}
		if got := messageName(t, method.Type.In(1)); got != rpc.input {
			t.Errorf("%s input: proto %s, server %s", rpc.name, rpc.input, got)
		}
		if got := messageName(t, method.Type.Out(0)); got != rpc.output {
			t.Errorf("%s output: proto %s, server %s", rpc.name, rpc.output, got)
		}

		if _, ok := clientType.MethodByName(rpc.name); !ok {
			t.Errorf("client interface has no method %s", rpc.name)
		}
	}
}
