package grpc

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-invoicing/app/factory"
	"github.com/vibast-solutions/ms-go-invoicing/app/service"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type Server struct {
	invoiceService *service.InvoiceService
}

func NewServer(invoiceService *service.InvoiceService) *Server {
	return &Server{invoiceService: invoiceService}
}

func (s *Server) Health(context.Context, *emptypb.Empty) (*wrapperspb.StringValue, error) {
	return wrapperspb.String("ok"), nil
}

// PaymentCompleted runs the invoice workflow for a completed payment and
// returns the invoice link, empty while the invoice is not available.
func (s *Server) PaymentCompleted(ctx context.Context, req *wrapperspb.UInt64Value) (*wrapperspb.StringValue, error) {
	l := loggerWithContext(ctx)
	if req.GetValue() == 0 {
		return nil, status.Error(codes.InvalidArgument, "invalid payment id")
	}

	state, err := s.invoiceService.ProcessPaymentCompleted(ctx, req.GetValue())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRequest):
			return nil, status.Error(codes.InvalidArgument, err.Error())
		case errors.Is(err, service.ErrPaymentNotFound):
			return nil, status.Error(codes.NotFound, "payment not found")
		default:
			l.WithError(err).Error("Process completed payment failed")
			return nil, status.Error(codes.Internal, "internal server error")
		}
	}

	return wrapperspb.String(state.InvoiceURL), nil
}

func (s *Server) GetInvoiceURL(ctx context.Context, req *wrapperspb.UInt64Value) (*wrapperspb.StringValue, error) {
	if req.GetValue() == 0 {
		return nil, status.Error(codes.InvalidArgument, "invalid payment id")
	}

	link, err := s.invoiceService.ResolveInvoiceURL(ctx, req.GetValue())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvoiceNotAvailable):
			return nil, status.Error(codes.NotFound, "invoice not yet available")
		case errors.Is(err, service.ErrInvoiceServiceUnavailable):
			return nil, status.Error(codes.Unavailable, "invoice service unavailable")
		default:
			loggerWithContext(ctx).WithError(err).Error("Resolve invoice url failed")
			return nil, status.Error(codes.Internal, "internal server error")
		}
	}

	return wrapperspb.String(link), nil
}

func loggerWithContext(ctx context.Context) logrus.FieldLogger {
	return factory.LoggerWithRequestID(interceptorLogger, RequestIDFromContext(ctx))
}
