package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/vibast-solutions/ms-go-invoicing/app/auth"
	"github.com/vibast-solutions/ms-go-invoicing/app/entity"
	"github.com/vibast-solutions/ms-go-invoicing/app/provider"
	"github.com/vibast-solutions/ms-go-invoicing/app/service"
	"github.com/vibast-solutions/ms-go-invoicing/app/types"
	"github.com/vibast-solutions/ms-go-invoicing/config"
)

type controllerPaymentRepo struct {
	findByIDFn func(ctx context.Context, id uint64) (*entity.Payment, error)
}

func (r *controllerPaymentRepo) FindByID(ctx context.Context, id uint64) (*entity.Payment, error) {
	if r.findByIDFn != nil {
		return r.findByIDFn(ctx, id)
	}
	return nil, nil
}

type controllerMemberRepo struct{}

func (r *controllerMemberRepo) FindByUserID(_ context.Context, userID uint64) (*entity.Member, error) {
	return &entity.Member{UserID: userID, FirstName: "Mario", LastName: "Rossi"}, nil
}

type controllerMetaRepo struct {
	values map[string]string
}

func newControllerMetaRepo() *controllerMetaRepo {
	return &controllerMetaRepo{values: map[string]string{}}
}

func (r *controllerMetaRepo) Get(_ context.Context, _ uint64, key string) (string, bool, error) {
	value, ok := r.values[key]
	return value, ok, nil
}

func (r *controllerMetaRepo) AddIfAbsent(_ context.Context, _ uint64, key, value string) (bool, error) {
	if _, ok := r.values[key]; ok {
		return false, nil
	}
	r.values[key] = value
	return true, nil
}

func (r *controllerMetaRepo) Set(_ context.Context, _ uint64, key, value string) error {
	r.values[key] = value
	return nil
}

func (r *controllerMetaRepo) Delete(_ context.Context, _ uint64, key string) error {
	delete(r.values, key)
	return nil
}

type controllerEventRepo struct{}

func (r *controllerEventRepo) Create(context.Context, *entity.InvoiceEvent) error {
	return nil
}

type controllerCache struct{}

func (c *controllerCache) Get(context.Context, string, interface{}) (bool, error) {
	return false, nil
}

func (c *controllerCache) Set(context.Context, string, interface{}, time.Duration) error {
	return nil
}

type controllerClient struct {
	createFn  func(ctx context.Context, req *provider.DocumentRequest) (*provider.CreateDocumentResult, error)
	detailsFn func(ctx context.Context, req *provider.DocumentDetailsRequest) (*provider.DocumentDetailsResult, error)
	infoFn    func(ctx context.Context, fields []string) (*provider.InfoListResult, error)
}

func (c *controllerClient) CreateDocument(ctx context.Context, _ string, req *provider.DocumentRequest) (*provider.CreateDocumentResult, error) {
	if c.createFn != nil {
		return c.createFn(ctx, req)
	}
	return &provider.CreateDocumentResult{Success: true, NewID: "900"}, nil
}

func (c *controllerClient) GetDocumentDetails(ctx context.Context, _ string, req *provider.DocumentDetailsRequest) (*provider.DocumentDetailsResult, error) {
	if c.detailsFn != nil {
		return c.detailsFn(ctx, req)
	}
	return &provider.DocumentDetailsResult{Success: true, Details: &provider.DocumentDetails{ID: req.ID, DocumentLink: "https://files.example/" + req.ID + ".pdf"}}, nil
}

func (c *controllerClient) ListInfo(ctx context.Context, fields []string) (*provider.InfoListResult, error) {
	if c.infoFn != nil {
		return c.infoFn(ctx, fields)
	}
	return &provider.InfoListResult{Success: true}, nil
}

type controllerAccounts struct {
	client provider.InvoiceClient
}

func (a *controllerAccounts) Account(context.Context) (*provider.Account, error) {
	return &provider.Account{Client: a.client, Wallet: "Stripe"}, nil
}

func ownedPayment(_ context.Context, id uint64) (*entity.Payment, error) {
	if id != 10 {
		return nil, nil
	}
	return &entity.Payment{ID: 10, UserID: 7, Subscription: "Gold", Amount: "10.00", Date: "2024-01-02 03:04:05", Status: entity.PaymentStatusComplete}, nil
}

func newInvoiceServiceForTest(meta *controllerMetaRepo, client *controllerClient) *service.InvoiceService {
	return service.NewInvoiceService(
		&controllerPaymentRepo{findByIDFn: ownedPayment},
		&controllerMemberRepo{},
		meta,
		&controllerEventRepo{},
		&controllerCache{},
		&controllerAccounts{client: client},
		config.InvoicesConfig{CountriesCacheTTL: 48 * time.Hour},
	)
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Renderer = NewTemplateRenderer()
	return e
}

func passThrough(ctx echo.Context) error {
	return ctx.String(http.StatusTeapot, "next")
}

func serveDownload(t *testing.T, ctrl *InvoiceController, target string, session *auth.Session) *httptest.ResponseRecorder {
	t.Helper()
	e := newEcho()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)
	if session != nil {
		auth.WithSession(ctx, session)
	}
	if err := ctrl.DownloadInvoiceMiddleware(passThrough)(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return rec
}

func TestDownloadInvoicePassesThroughOtherRequests(t *testing.T) {
	ctrl := NewInvoiceController(newInvoiceServiceForTest(newControllerMetaRepo(), &controllerClient{}), "/login")

	for _, target := range []string{"/account", "/account?action=download_invoice", "/account?action=other&payment_id=10"} {
		rec := serveDownload(t, ctrl, target, nil)
		if rec.Code != http.StatusTeapot {
			t.Fatalf("%s: expected pass-through, got %d", target, rec.Code)
		}
	}
}

func TestDownloadInvoiceRedirectsAnonymousToLogin(t *testing.T) {
	ctrl := NewInvoiceController(newInvoiceServiceForTest(newControllerMetaRepo(), &controllerClient{}), "/login")

	rec := serveDownload(t, ctrl, "/account?action=download_invoice&payment_id=10", nil)
	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	location, err := url.Parse(rec.Header().Get(echo.HeaderLocation))
	if err != nil {
		t.Fatalf("invalid location: %v", err)
	}
	if location.Path != "/login" || location.Query().Get("redirect_to") != "/account?action=download_invoice&payment_id=10" {
		t.Fatalf("unexpected login redirect: %s", location)
	}
}

func TestDownloadInvoiceLoginRedirectKeepsLoginQuery(t *testing.T) {
	ctrl := NewInvoiceController(newInvoiceServiceForTest(newControllerMetaRepo(), &controllerClient{}), "https://members.example/wp-login.php?action=login")

	rec := serveDownload(t, ctrl, "/account?action=download_invoice&payment_id=10", nil)
	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	location, err := url.Parse(rec.Header().Get(echo.HeaderLocation))
	if err != nil {
		t.Fatalf("invalid location: %v", err)
	}
	if location.Host != "members.example" || location.Path != "/wp-login.php" {
		t.Fatalf("unexpected login target: %s", location)
	}
	query := location.Query()
	if query.Get("action") != "login" || query.Get("redirect_to") != "/account?action=download_invoice&payment_id=10" {
		t.Fatalf("unexpected login query: %s", location.RawQuery)
	}
}

func TestDownloadInvoiceErrors(t *testing.T) {
	meta := newControllerMetaRepo()
	ctrl := NewInvoiceController(newInvoiceServiceForTest(meta, &controllerClient{}), "/login")

	rec := serveDownload(t, ctrl, "/?action=download_invoice&payment_id=11", &auth.Session{UserID: 7})
	if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), msgPaymentNotFound) {
		t.Fatalf("expected missing payment page, got %d %s", rec.Code, rec.Body.String())
	}

	rec = serveDownload(t, ctrl, "/?action=download_invoice&payment_id=10", &auth.Session{UserID: 8})
	if rec.Code != http.StatusForbidden || !strings.Contains(rec.Body.String(), msgPermissionDenied) {
		t.Fatalf("expected permission page, got %d %s", rec.Code, rec.Body.String())
	}

	rec = serveDownload(t, ctrl, "/?action=download_invoice&payment_id=10", &auth.Session{UserID: 7})
	if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), msgInvoiceUnavailable) {
		t.Fatalf("expected unavailable page, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestDownloadInvoiceRedirectsToDocument(t *testing.T) {
	meta := newControllerMetaRepo()
	meta.values[entity.MetaInvoiceID] = "555"
	ctrl := NewInvoiceController(newInvoiceServiceForTest(meta, &controllerClient{}), "/login")

	rec := serveDownload(t, ctrl, "/?rcp-action=download_invoice&payment_id=10", &auth.Session{UserID: 7})
	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	if location := rec.Header().Get(echo.HeaderLocation); location != "https://files.example/555.pdf" {
		t.Fatalf("unexpected location: %s", location)
	}

	rec = serveDownload(t, ctrl, "/?action=download_invoice&payment_id=10", &auth.Session{UserID: 99, Capabilities: []string{auth.CapabilityManagePayments}})
	if rec.Code != http.StatusFound {
		t.Fatalf("expected admin redirect, got %d", rec.Code)
	}
}

func TestDownloadInvoiceProviderFailure(t *testing.T) {
	meta := newControllerMetaRepo()
	meta.values[entity.MetaInvoiceID] = "555"
	client := &controllerClient{detailsFn: func(context.Context, *provider.DocumentDetailsRequest) (*provider.DocumentDetailsResult, error) {
		return &provider.DocumentDetailsResult{Error: "Documento non trovato"}, nil
	}}
	ctrl := NewInvoiceController(newInvoiceServiceForTest(meta, client), "/login")

	rec := serveDownload(t, ctrl, "/?action=download_invoice&payment_id=10", &auth.Session{UserID: 7})
	if rec.Code != http.StatusServiceUnavailable || !strings.Contains(rec.Body.String(), msgServiceUnavailable) {
		t.Fatalf("expected 503 page, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestCompletePaymentSuccess(t *testing.T) {
	meta := newControllerMetaRepo()
	ctrl := NewInvoiceController(newInvoiceServiceForTest(meta, &controllerClient{}), "/login")
	e := newEcho()
	req := httptest.NewRequest(http.MethodPost, "/internal/payments/10/complete", nil)
	req.Header.Set(echo.HeaderXRequestID, "req-1")
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)
	ctx.SetParamNames("id")
	ctx.SetParamValues("10")

	_ = ctrl.CompletePayment(ctx)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}

	var payload types.InvoiceStateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if payload.InvoiceId != "900" || payload.InvoiceUrl != "https://files.example/900.pdf" || payload.Stage != service.StageURLResolved {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestCompletePaymentNotFound(t *testing.T) {
	ctrl := NewInvoiceController(newInvoiceServiceForTest(newControllerMetaRepo(), &controllerClient{}), "/login")
	e := newEcho()
	req := httptest.NewRequest(http.MethodPost, "/internal/payments/3/complete", nil)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)
	ctx.SetParamNames("id")
	ctx.SetParamValues("3")

	_ = ctrl.CompletePayment(ctx)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestCountries(t *testing.T) {
	client := &controllerClient{}
	ctrl := NewInvoiceController(newInvoiceServiceForTest(newControllerMetaRepo(), client), "/login")
	e := newEcho()

	rec := httptest.NewRecorder()
	_ = ctrl.Countries(e.NewContext(httptest.NewRequest(http.MethodGet, "/countries", nil), rec))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 for empty list, got %d", rec.Code)
	}

	client.infoFn = func(context.Context, []string) (*provider.InfoListResult, error) {
		return &provider.InfoListResult{Success: true, Countries: provider.CountryList{
			"IT": {Code: "IT", Name: "Italia"},
			"FR": {Code: "FR", Name: "Francia"},
		}}, nil
	}
	rec = httptest.NewRecorder()
	_ = ctrl.Countries(e.NewContext(httptest.NewRequest(http.MethodGet, "/countries", nil), rec))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var payload types.CountriesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if len(payload.Countries) != 2 || payload.Countries[0].Name != "Francia" {
		t.Fatalf("unexpected countries: %+v", payload.Countries)
	}
}
