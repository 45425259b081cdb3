package controller

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-invoicing/app/entity"
	"github.com/vibast-solutions/ms-go-invoicing/app/factory"
	"github.com/vibast-solutions/ms-go-invoicing/app/service"
	"github.com/vibast-solutions/ms-go-invoicing/app/types"
)

// CSRFFormField is where admin forms post their CSRF token.
const CSRFFormField = "_csrf"

type invoiceOverridePage struct {
	Title     string
	PaymentID uint64
	InvoiceID string
	CSRFToken string
	Notice    string
	Error     string
}

type settingsPage struct {
	Title       string
	Settings    *entity.Settings
	UIDField    string
	KeyField    string
	WalletField string
	CSRFToken   string
	Notice      string
	Error       string
}

type AdminController struct {
	invoiceService  *service.InvoiceService
	settingsService *service.SettingsService
	logger          logrus.FieldLogger
}

func NewAdminController(invoiceService *service.InvoiceService, settingsService *service.SettingsService) *AdminController {
	return &AdminController{
		invoiceService:  invoiceService,
		settingsService: settingsService,
		logger:          factory.NewModuleLogger("admin-controller"),
	}
}

func (c *AdminController) ShowInvoiceOverride(ctx echo.Context) error {
	req, err := types.NewInvoiceOverrideRequestFromContext(ctx)
	if err != nil || req.Validate() != nil {
		return c.writePage(ctx, http.StatusBadRequest, "Invalid payment id")
	}

	invoiceID, err := c.invoiceService.InvoiceID(ctx.Request().Context(), req.GetPaymentId())
	if err != nil {
		return c.handleServiceError(ctx, err, "Load invoice id failed")
	}

	return ctx.Render(http.StatusOK, "invoice_override.html", c.overridePage(ctx, req.GetPaymentId(), invoiceID))
}

func (c *AdminController) UpdateInvoiceOverride(ctx echo.Context) error {
	req, err := types.NewInvoiceOverrideRequestFromContext(ctx)
	if err != nil {
		return c.writePage(ctx, http.StatusBadRequest, "Invalid payment id")
	}
	if err := req.Validate(); err != nil {
		page := c.overridePage(ctx, req.GetPaymentId(), req.GetInvoiceId())
		page.Error = err.Error()
		return ctx.Render(http.StatusBadRequest, "invoice_override.html", page)
	}

	if err := c.invoiceService.OverrideInvoiceID(ctx.Request().Context(), req.GetPaymentId(), req.GetInvoiceId()); err != nil {
		return c.handleServiceError(ctx, err, "Override invoice id failed")
	}

	page := c.overridePage(ctx, req.GetPaymentId(), req.GetInvoiceId())
	page.Notice = "Invoice ID updated"
	return ctx.Render(http.StatusOK, "invoice_override.html", page)
}

func (c *AdminController) ShowSettings(ctx echo.Context) error {
	settings, err := c.settingsService.Get(ctx.Request().Context())
	if err != nil {
		return c.handleServiceError(ctx, err, "Load settings failed")
	}

	return ctx.Render(http.StatusOK, "settings.html", c.settingsPage(ctx, settings))
}

func (c *AdminController) UpdateSettings(ctx echo.Context) error {
	req := types.NewSettingsRequestFromContext(ctx)
	if err := req.Validate(); err != nil {
		page := c.settingsPage(ctx, req.ToEntity())
		page.Error = err.Error()
		return ctx.Render(http.StatusBadRequest, "settings.html", page)
	}

	settings, err := c.settingsService.Save(ctx.Request().Context(), req.ToEntity())
	if err != nil {
		return c.handleServiceError(ctx, err, "Save settings failed")
	}

	factory.LoggerWithContext(c.logger, ctx).Info("FattureInCloud settings updated")
	page := c.settingsPage(ctx, settings)
	page.Notice = "Settings saved"
	return ctx.Render(http.StatusOK, "settings.html", page)
}

func (c *AdminController) overridePage(ctx echo.Context, paymentID uint64, invoiceID string) *invoiceOverridePage {
	return &invoiceOverridePage{
		Title:     "Edit Payment",
		PaymentID: paymentID,
		InvoiceID: invoiceID,
		CSRFToken: csrfToken(ctx),
	}
}

func (c *AdminController) settingsPage(ctx echo.Context, settings *entity.Settings) *settingsPage {
	return &settingsPage{
		Title:       "FattureInCloud Settings",
		Settings:    settings,
		UIDField:    types.SettingsField(entity.SettingAPIUID),
		KeyField:    types.SettingsField(entity.SettingAPIKey),
		WalletField: types.SettingsField(entity.SettingWallet),
		CSRFToken:   csrfToken(ctx),
	}
}

func (c *AdminController) handleServiceError(ctx echo.Context, err error, message string) error {
	switch {
	case errors.Is(err, service.ErrPaymentNotFound):
		return c.writePage(ctx, http.StatusNotFound, msgPaymentNotFound)
	case errors.Is(err, service.ErrInvalidRequest):
		return c.writePage(ctx, http.StatusBadRequest, err.Error())
	default:
		factory.LoggerWithContext(c.logger, ctx).WithError(err).Error(message)
		return c.writePage(ctx, http.StatusInternalServerError, "Internal server error")
	}
}

func (c *AdminController) writePage(ctx echo.Context, statusCode int, message string) error {
	return ctx.Render(statusCode, "error.html", &errorPage{Title: "Error", Message: message})
}

func csrfToken(ctx echo.Context) string {
	token, _ := ctx.Get(middleware.DefaultCSRFConfig.ContextKey).(string)
	return token
}
