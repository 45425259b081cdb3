package types

import (
	"errors"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/vibast-solutions/ms-go-invoicing/app/entity"
)

const DownloadInvoiceAction = "download_invoice"

type HealthResponse struct {
	Status string `json:"status"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type InvoiceStateResponse struct {
	PaymentId  uint64 `json:"payment_id"`
	InvoiceId  string `json:"invoice_id,omitempty"`
	InvoiceUrl string `json:"invoice_url,omitempty"`
	Stage      string `json:"stage"`
}

type Country struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type CountriesResponse struct {
	Countries []*Country `json:"countries"`
}

type CompletePaymentRequest struct {
	RequestId string
	PaymentId uint64
}

func NewCompletePaymentRequestFromContext(ctx echo.Context) (*CompletePaymentRequest, error) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return nil, err
	}
	return &CompletePaymentRequest{
		RequestId: strings.TrimSpace(ctx.Request().Header.Get(echo.HeaderXRequestID)),
		PaymentId: id,
	}, nil
}

func (r *CompletePaymentRequest) GetPaymentId() uint64 {
	if r == nil {
		return 0
	}
	return r.PaymentId
}

func (r *CompletePaymentRequest) Validate() error {
	if r.GetPaymentId() == 0 {
		return errors.New("invalid payment id")
	}
	return nil
}

type DownloadInvoiceRequest struct {
	PaymentId uint64
}

// NewDownloadInvoiceRequestFromContext returns nil when the request does not
// ask for an invoice download. Both "action" and "rcp-action" are accepted.
func NewDownloadInvoiceRequestFromContext(ctx echo.Context) *DownloadInvoiceRequest {
	action := strings.TrimSpace(ctx.QueryParam("action"))
	if action == "" {
		action = strings.TrimSpace(ctx.QueryParam("rcp-action"))
	}
	if action != DownloadInvoiceAction {
		return nil
	}

	id, err := strconv.ParseUint(strings.TrimSpace(ctx.QueryParam("payment_id")), 10, 64)
	if err != nil || id == 0 {
		return nil
	}
	return &DownloadInvoiceRequest{PaymentId: id}
}

func (r *DownloadInvoiceRequest) GetPaymentId() uint64 {
	if r == nil {
		return 0
	}
	return r.PaymentId
}

type InvoiceOverrideRequest struct {
	PaymentId uint64
	InvoiceId string
}

func NewInvoiceOverrideRequestFromContext(ctx echo.Context) (*InvoiceOverrideRequest, error) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return nil, err
	}
	return &InvoiceOverrideRequest{
		PaymentId: id,
		InvoiceId: strings.TrimSpace(ctx.FormValue(entity.MetaInvoiceID)),
	}, nil
}

func (r *InvoiceOverrideRequest) GetPaymentId() uint64 {
	if r == nil {
		return 0
	}
	return r.PaymentId
}

func (r *InvoiceOverrideRequest) GetInvoiceId() string {
	if r == nil {
		return ""
	}
	return r.InvoiceId
}

func (r *InvoiceOverrideRequest) Validate() error {
	if r.GetPaymentId() == 0 {
		return errors.New("invalid payment id")
	}
	if len(r.GetInvoiceId()) > 64 {
		return errors.New("invoice id is too long")
	}
	return nil
}

type SettingsRequest struct {
	ApiUid string
	ApiKey string
	Wallet string
}

func NewSettingsRequestFromContext(ctx echo.Context) *SettingsRequest {
	return &SettingsRequest{
		ApiUid: strings.TrimSpace(ctx.FormValue(SettingsField(entity.SettingAPIUID))),
		ApiKey: strings.TrimSpace(ctx.FormValue(SettingsField(entity.SettingAPIKey))),
		Wallet: strings.TrimSpace(ctx.FormValue(SettingsField(entity.SettingWallet))),
	}
}

func (r *SettingsRequest) Validate() error {
	if (r.ApiUid == "") != (r.ApiKey == "") {
		return errors.New("api uid and api key must be set together")
	}
	return nil
}

func (r *SettingsRequest) ToEntity() *entity.Settings {
	return &entity.Settings{APIUID: r.ApiUid, APIKey: r.ApiKey, Wallet: r.Wallet}
}

// SettingsField is the form field name a setting is posted under.
func SettingsField(name string) string {
	return "rcp_settings[" + name + "]"
}
