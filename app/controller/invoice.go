package controller

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-invoicing/app/auth"
	"github.com/vibast-solutions/ms-go-invoicing/app/factory"
	"github.com/vibast-solutions/ms-go-invoicing/app/mapper"
	"github.com/vibast-solutions/ms-go-invoicing/app/service"
	"github.com/vibast-solutions/ms-go-invoicing/app/types"
)

const (
	msgPaymentNotFound    = "This payment record does not exist"
	msgPermissionDenied   = "You do not have permission to download this invoice"
	msgInvoiceUnavailable = "Invoice not yet available, please contact an administrator to get more info"
	msgServiceUnavailable = "Invoice service unavailable, please try again later"
)

type InvoiceController struct {
	invoiceService *service.InvoiceService
	loginURL       string
	logger         logrus.FieldLogger
}

func NewInvoiceController(invoiceService *service.InvoiceService, loginURL string) *InvoiceController {
	return &InvoiceController{
		invoiceService: invoiceService,
		loginURL:       loginURL,
		logger:         factory.NewModuleLogger("invoice-controller"),
	}
}

func (c *InvoiceController) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, &types.HealthResponse{Status: "ok"})
}

// DownloadInvoiceMiddleware answers invoice download requests on any page.
// Requests without the download action pass through untouched.
func (c *InvoiceController) DownloadInvoiceMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		if ctx.Request().Method != http.MethodGet {
			return next(ctx)
		}
		req := types.NewDownloadInvoiceRequestFromContext(ctx)
		if req == nil {
			return next(ctx)
		}

		session := auth.SessionFromContext(ctx)
		if session == nil {
			return ctx.Redirect(http.StatusFound, c.loginRedirect(ctx))
		}

		viewer := service.Viewer{
			UserID:            session.UserID,
			CanManagePayments: session.Can(auth.CapabilityManagePayments),
		}
		link, err := c.invoiceService.DownloadURL(ctx.Request().Context(), req.GetPaymentId(), viewer)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrPaymentNotFound):
				return c.writePage(ctx, http.StatusNotFound, msgPaymentNotFound)
			case errors.Is(err, service.ErrPermissionDenied):
				return c.writePage(ctx, http.StatusForbidden, msgPermissionDenied)
			case errors.Is(err, service.ErrInvoiceNotAvailable):
				return c.writePage(ctx, http.StatusNotFound, msgInvoiceUnavailable)
			default:
				factory.LoggerWithContext(c.logger, ctx).
					WithField("payment_id", req.GetPaymentId()).
					WithError(err).Error("Invoice download failed")
				return c.writePage(ctx, http.StatusServiceUnavailable, msgServiceUnavailable)
			}
		}

		return ctx.Redirect(http.StatusFound, link)
	}
}

func (c *InvoiceController) CompletePayment(ctx echo.Context) error {
	req, err := types.NewCompletePaymentRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	state, err := c.invoiceService.ProcessPaymentCompleted(ctx.Request().Context(), req.GetPaymentId())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRequest):
			return c.writeError(ctx, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrPaymentNotFound):
			return c.writeError(ctx, http.StatusNotFound, "payment not found")
		default:
			factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Process completed payment failed")
			return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
		}
	}

	return ctx.JSON(http.StatusOK, mapper.InvoiceStateToResponse(state))
}

func (c *InvoiceController) Countries(ctx echo.Context) error {
	countries, err := c.invoiceService.Countries(ctx.Request().Context())
	if err != nil {
		factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Countries lookup failed")
		return c.writeError(ctx, http.StatusServiceUnavailable, "country list unavailable")
	}
	if len(countries) == 0 {
		return c.writeError(ctx, http.StatusServiceUnavailable, "country list unavailable")
	}

	return ctx.JSON(http.StatusOK, mapper.CountriesToResponse(countries))
}

func (c *InvoiceController) loginRedirect(ctx echo.Context) string {
	original := ctx.Request().URL.RequestURI()

	target, err := url.Parse(c.loginURL)
	if err != nil {
		return c.loginURL + "?redirect_to=" + url.QueryEscape(original)
	}
	query := target.Query()
	query.Set("redirect_to", original)
	target.RawQuery = query.Encode()
	return target.String()
}

func (c *InvoiceController) writePage(ctx echo.Context, statusCode int, message string) error {
	return ctx.Render(statusCode, "error.html", &errorPage{Title: "Error", Message: message})
}

func (c *InvoiceController) writeError(ctx echo.Context, statusCode int, message string) error {
	return ctx.JSON(statusCode, &types.ErrorResponse{Error: message})
}
