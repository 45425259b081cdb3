package service

import "errors"

var (
	ErrInvalidRequest            = errors.New("invalid request")
	ErrPaymentNotFound           = errors.New("payment not found")
	ErrPermissionDenied          = errors.New("permission denied")
	ErrInvoiceNotAvailable       = errors.New("invoice not yet available")
	ErrInvoiceServiceUnavailable = errors.New("invoice service unavailable")
)

var errInvalidPaymentDate = errors.New("invalid payment date")
