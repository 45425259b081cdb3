package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const InvoicingServiceName = "invoicing.InvoicingService"

const (
	InvoicingService_Health_FullMethodName           = "/invoicing.InvoicingService/Health"
	InvoicingService_PaymentCompleted_FullMethodName = "/invoicing.InvoicingService/PaymentCompleted"
	InvoicingService_GetInvoiceURL_FullMethodName    = "/invoicing.InvoicingService/GetInvoiceURL"
)

// InvoicingServiceServer is the internal invoicing API. Messages are the
// well-known wrapper types, so no generated code is involved.
type InvoicingServiceServer interface {
	Health(context.Context, *emptypb.Empty) (*wrapperspb.StringValue, error)
	PaymentCompleted(context.Context, *wrapperspb.UInt64Value) (*wrapperspb.StringValue, error)
	GetInvoiceURL(context.Context, *wrapperspb.UInt64Value) (*wrapperspb.StringValue, error)
}

func RegisterInvoicingServiceServer(s grpc.ServiceRegistrar, srv InvoicingServiceServer) {
	s.RegisterService(&InvoicingService_ServiceDesc, srv)
}

var InvoicingService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: InvoicingServiceName,
	HandlerType: (*InvoicingServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Health", Handler: invoicingServiceHealthHandler},
		{MethodName: "PaymentCompleted", Handler: invoicingServicePaymentCompletedHandler},
		{MethodName: "GetInvoiceURL", Handler: invoicingServiceGetInvoiceURLHandler},
	},
	Streams: []grpc.StreamDesc{},
}

func invoicingServiceHealthHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(InvoicingServiceServer).Health(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: InvoicingService_Health_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(InvoicingServiceServer).Health(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func invoicingServicePaymentCompletedHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.UInt64Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(InvoicingServiceServer).PaymentCompleted(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: InvoicingService_PaymentCompleted_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(InvoicingServiceServer).PaymentCompleted(ctx, req.(*wrapperspb.UInt64Value))
	}
	return interceptor(ctx, in, info, handler)
}

func invoicingServiceGetInvoiceURLHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.UInt64Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(InvoicingServiceServer).GetInvoiceURL(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: InvoicingService_GetInvoiceURL_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(InvoicingServiceServer).GetInvoiceURL(ctx, req.(*wrapperspb.UInt64Value))
	}
	return interceptor(ctx, in, info, handler)
}

// InvoicingServiceClient calls InvoicingService over a client connection.
type InvoicingServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewInvoicingServiceClient(cc grpc.ClientConnInterface) *InvoicingServiceClient {
	return &InvoicingServiceClient{cc: cc}
}

func (c *InvoicingServiceClient) PaymentCompleted(ctx context.Context, paymentID uint64, opts ...grpc.CallOption) (string, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, InvoicingService_PaymentCompleted_FullMethodName, wrapperspb.UInt64(paymentID), out, opts...); err != nil {
		return "", err
	}
	return out.GetValue(), nil
}

func (c *InvoicingServiceClient) GetInvoiceURL(ctx context.Context, paymentID uint64, opts ...grpc.CallOption) (string, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, InvoicingService_GetInvoiceURL_FullMethodName, wrapperspb.UInt64(paymentID), out, opts...); err != nil {
		return "", err
	}
	return out.GetValue(), nil
}
