package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-invoicing/app/entity"
	"github.com/vibast-solutions/ms-go-invoicing/app/factory"
	"github.com/vibast-solutions/ms-go-invoicing/app/provider"
	"github.com/vibast-solutions/ms-go-invoicing/config"
)

const (
	countriesCacheKey     = "fattureincloud_countries"
	defaultCountriesCache = 48 * time.Hour
)

const (
	StageNoInvoice      = "no_invoice"
	StageInvoiceCreated = "invoice_created"
	StageURLResolved    = "url_resolved"
)

type paymentRepository interface {
	FindByID(ctx context.Context, id uint64) (*entity.Payment, error)
}

type memberRepository interface {
	FindByUserID(ctx context.Context, userID uint64) (*entity.Member, error)
}

type paymentMetaRepository interface {
	Get(ctx context.Context, paymentID uint64, key string) (string, bool, error)
	AddIfAbsent(ctx context.Context, paymentID uint64, key, value string) (bool, error)
	Set(ctx context.Context, paymentID uint64, key, value string) error
	Delete(ctx context.Context, paymentID uint64, key string) error
}

type invoiceEventRepository interface {
	Create(ctx context.Context, event *entity.InvoiceEvent) error
}

type transientCache interface {
	Get(ctx context.Context, name string, dest interface{}) (bool, error)
	Set(ctx context.Context, name string, value interface{}, ttl time.Duration) error
}

type accountResolver interface {
	Account(ctx context.Context) (*provider.Account, error)
}

// InvoiceState is where a payment stands in the invoice lifecycle.
type InvoiceState struct {
	PaymentID  uint64
	InvoiceID  string
	InvoiceURL string
}

func (s *InvoiceState) Stage() string {
	switch {
	case s.InvoiceID == "":
		return StageNoInvoice
	case s.InvoiceURL == "":
		return StageInvoiceCreated
	default:
		return StageURLResolved
	}
}

// Viewer is the member asking for an invoice download.
type Viewer struct {
	UserID            uint64
	CanManagePayments bool
}

type InvoiceService struct {
	paymentRepo paymentRepository
	memberRepo  memberRepository
	metaRepo    paymentMetaRepository
	eventRepo   invoiceEventRepository
	cache       transientCache
	accounts    accountResolver
	invoicesCfg config.InvoicesConfig
	logger      logrus.FieldLogger
}

func NewInvoiceService(
	paymentRepo paymentRepository,
	memberRepo memberRepository,
	metaRepo paymentMetaRepository,
	eventRepo invoiceEventRepository,
	cache transientCache,
	accounts accountResolver,
	invoicesCfg config.InvoicesConfig,
) *InvoiceService {
	if invoicesCfg.CountriesCacheTTL <= 0 {
		invoicesCfg.CountriesCacheTTL = defaultCountriesCache
	}

	return &InvoiceService{
		paymentRepo: paymentRepo,
		memberRepo:  memberRepo,
		metaRepo:    metaRepo,
		eventRepo:   eventRepo,
		cache:       cache,
		accounts:    accounts,
		invoicesCfg: invoicesCfg,
		logger:      factory.NewModuleLogger("invoice-service"),
	}
}

// ProcessPaymentCompleted creates the remote invoice for a completed payment
// when none is stored yet, then resolves its link when it is not cached.
// Provider failures are logged and never returned; only local store errors
// and unknown payments are.
func (s *InvoiceService) ProcessPaymentCompleted(ctx context.Context, paymentID uint64) (*InvoiceState, error) {
	if paymentID == 0 {
		return nil, ErrInvalidRequest
	}

	payment, err := s.paymentRepo.FindByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, ErrPaymentNotFound
	}

	logger := s.logger.WithField("payment_id", paymentID)
	state := &InvoiceState{PaymentID: paymentID}

	invoiceID, found, err := s.metaRepo.Get(ctx, paymentID, entity.MetaInvoiceID)
	if err != nil {
		return nil, err
	}

	var account *provider.Account
	if !found {
		if account, err = s.accounts.Account(ctx); err != nil {
			return nil, err
		}
		invoiceID, err = s.createInvoice(ctx, logger, account, payment)
		if err != nil {
			return nil, err
		}
	}
	state.InvoiceID = invoiceID
	if invoiceID == "" {
		return state, nil
	}

	invoiceURL, found, err := s.metaRepo.Get(ctx, paymentID, entity.MetaInvoiceURL)
	if err != nil {
		return nil, err
	}
	if found {
		state.InvoiceURL = invoiceURL
		return state, nil
	}

	if account == nil {
		if account, err = s.accounts.Account(ctx); err != nil {
			return nil, err
		}
	}
	state.InvoiceURL = s.resolveAndCacheLink(ctx, logger, account, paymentID, invoiceID)

	return state, nil
}

// ResolveInvoiceURL returns the cached invoice link, looking it up once when
// only the invoice id is known.
func (s *InvoiceService) ResolveInvoiceURL(ctx context.Context, paymentID uint64) (string, error) {
	invoiceID, found, err := s.metaRepo.Get(ctx, paymentID, entity.MetaInvoiceID)
	if err != nil {
		return "", err
	}
	if !found {
		return "", ErrInvoiceNotAvailable
	}

	invoiceURL, found, err := s.metaRepo.Get(ctx, paymentID, entity.MetaInvoiceURL)
	if err != nil {
		return "", err
	}
	if found {
		return invoiceURL, nil
	}

	account, err := s.accounts.Account(ctx)
	if err != nil {
		return "", err
	}
	link := s.resolveAndCacheLink(ctx, s.logger.WithField("payment_id", paymentID), account, paymentID, invoiceID)
	if link == "" {
		return "", ErrInvoiceServiceUnavailable
	}
	return link, nil
}

// DownloadURL authorizes viewer against the payment and resolves a fresh
// invoice link with a live provider lookup.
func (s *InvoiceService) DownloadURL(ctx context.Context, paymentID uint64, viewer Viewer) (string, error) {
	payment, err := s.paymentRepo.FindByID(ctx, paymentID)
	if err != nil {
		return "", err
	}
	if payment == nil {
		return "", ErrPaymentNotFound
	}

	if viewer.UserID != payment.UserID && !viewer.CanManagePayments {
		return "", ErrPermissionDenied
	}

	invoiceID, found, err := s.metaRepo.Get(ctx, paymentID, entity.MetaInvoiceID)
	if err != nil {
		return "", err
	}
	if !found {
		return "", ErrInvoiceNotAvailable
	}

	account, err := s.accounts.Account(ctx)
	if err != nil {
		return "", err
	}
	link := s.resolveAndCacheLink(ctx, s.logger.WithField("payment_id", paymentID), account, paymentID, invoiceID)
	if link == "" {
		return "", ErrInvoiceServiceUnavailable
	}
	return link, nil
}

// Countries returns the provider's country list, cached for the configured
// TTL. Empty or failed lookups are not cached, so the next call retries.
func (s *InvoiceService) Countries(ctx context.Context) (provider.CountryList, error) {
	var cached provider.CountryList
	found, err := s.cache.Get(ctx, countriesCacheKey, &cached)
	if err != nil {
		s.logger.WithError(err).Warn("Countries cache read failed")
	}
	if found && len(cached) > 0 {
		return cached, nil
	}

	account, err := s.accounts.Account(ctx)
	if err != nil {
		return nil, err
	}

	result, err := account.Client.ListInfo(ctx, []string{provider.InfoCountries})
	if err != nil {
		s.logger.WithError(err).Warn("Countries lookup failed")
		return nil, nil
	}
	if result == nil || result.Error != "" || len(result.Countries) == 0 {
		entry := s.logger
		if result != nil && result.Error != "" {
			entry = entry.WithField("error", result.Error)
		}
		entry.Warn("Countries lookup returned no data")
		return nil, nil
	}

	if err := s.cache.Set(ctx, countriesCacheKey, result.Countries, s.invoicesCfg.CountriesCacheTTL); err != nil {
		s.logger.WithError(err).Warn("Countries cache write failed")
	}

	return result.Countries, nil
}

// InvoiceID returns the stored invoice id of a payment, or an empty string.
func (s *InvoiceService) InvoiceID(ctx context.Context, paymentID uint64) (string, error) {
	payment, err := s.paymentRepo.FindByID(ctx, paymentID)
	if err != nil {
		return "", err
	}
	if payment == nil {
		return "", ErrPaymentNotFound
	}

	invoiceID, _, err := s.metaRepo.Get(ctx, paymentID, entity.MetaInvoiceID)
	if err != nil {
		return "", err
	}
	return invoiceID, nil
}

// OverrideInvoiceID is the administrative correction of a payment's invoice
// id. A blank value clears it so the workflow creates a new document on its
// next run. The cached link always goes, since it belongs to the old id.
func (s *InvoiceService) OverrideInvoiceID(ctx context.Context, paymentID uint64, invoiceID string) error {
	payment, err := s.paymentRepo.FindByID(ctx, paymentID)
	if err != nil {
		return err
	}
	if payment == nil {
		return ErrPaymentNotFound
	}

	invoiceID = strings.TrimSpace(invoiceID)
	logger := s.logger.WithField("payment_id", paymentID)

	if invoiceID == "" {
		if err := s.metaRepo.Delete(ctx, paymentID, entity.MetaInvoiceID); err != nil {
			return err
		}
		if err := s.metaRepo.Delete(ctx, paymentID, entity.MetaInvoiceURL); err != nil {
			return err
		}
		logger.Info("Invoice id cleared by administrator")
		s.recordEvent(ctx, paymentID, entity.InvoiceEventCleared, "", "")
		return nil
	}

	if err := s.metaRepo.Set(ctx, paymentID, entity.MetaInvoiceID, invoiceID); err != nil {
		return err
	}
	if err := s.metaRepo.Delete(ctx, paymentID, entity.MetaInvoiceURL); err != nil {
		return err
	}
	logger.WithField("invoice_id", invoiceID).Info("Invoice id overridden by administrator")
	s.recordEvent(ctx, paymentID, entity.InvoiceEventOverridden, invoiceID, "")
	return nil
}

// createInvoice submits the document and stores its id. It returns the
// stored id, or an empty string when no invoice could be created.
func (s *InvoiceService) createInvoice(ctx context.Context, logger logrus.FieldLogger, account *provider.Account, payment *entity.Payment) (string, error) {
	member, err := s.memberRepo.FindByUserID(ctx, payment.UserID)
	if err != nil {
		return "", err
	}
	if member == nil {
		s.createFailed(ctx, logger, payment.ID, fmt.Sprintf("member %d not found", payment.UserID))
		return "", nil
	}

	req, err := buildDocumentRequest(payment, member, account.Wallet)
	if err != nil {
		s.createFailed(ctx, logger, payment.ID, err.Error())
		return "", nil
	}

	result, err := account.Client.CreateDocument(ctx, provider.TypeInvoice, req)
	switch {
	case err != nil:
		s.createFailed(ctx, logger, payment.ID, err.Error())
		return "", nil
	case result == nil:
		s.createFailed(ctx, logger, payment.ID, "empty provider response")
		return "", nil
	case result.Error != "":
		s.createFailed(ctx, logger, payment.ID, result.Error)
		return "", nil
	case result.ID() == "":
		s.createFailed(ctx, logger, payment.ID, "provider response has no document id")
		return "", nil
	}

	invoiceID := result.ID()
	logger = logger.WithField("invoice_id", invoiceID)

	added, err := s.metaRepo.AddIfAbsent(ctx, payment.ID, entity.MetaInvoiceID, invoiceID)
	if err != nil {
		// The remote document exists but nothing points at it.
		logger.WithError(err).Error("Invoice created but its id could not be stored")
		s.recordEvent(ctx, payment.ID, entity.InvoiceEventOrphaned, invoiceID, err.Error())
		return "", nil
	}
	if !added {
		stored, _, err := s.metaRepo.Get(ctx, payment.ID, entity.MetaInvoiceID)
		if err != nil {
			return "", err
		}
		if stored == "" {
			logger.Error("Invoice created but its id could not be stored")
			s.recordEvent(ctx, payment.ID, entity.InvoiceEventOrphaned, invoiceID, "invoice id row could not be claimed")
			return "", nil
		}
		logger.WithField("stored_invoice_id", stored).Error("Invoice created concurrently, keeping the stored id")
		s.recordEvent(ctx, payment.ID, entity.InvoiceEventOrphaned, invoiceID, "invoice id already stored")
		return stored, nil
	}

	logger.Info("Invoice created")
	s.recordEvent(ctx, payment.ID, entity.InvoiceEventCreated, invoiceID, "")
	return invoiceID, nil
}

func (s *InvoiceService) createFailed(ctx context.Context, logger logrus.FieldLogger, paymentID uint64, reason string) {
	logger.WithField("error", reason).Error("Invoice creation failed")
	s.recordEvent(ctx, paymentID, entity.InvoiceEventCreateFailed, "", reason)
}

// resolveAndCacheLink looks the document up and caches its link when no link
// is stored yet. It returns an empty string when the lookup fails.
func (s *InvoiceService) resolveAndCacheLink(ctx context.Context, logger logrus.FieldLogger, account *provider.Account, paymentID uint64, invoiceID string) string {
	logger = logger.WithField("invoice_id", invoiceID)

	result, err := account.Client.GetDocumentDetails(ctx, provider.TypeInvoice, &provider.DocumentDetailsRequest{ID: invoiceID})
	if err != nil {
		logger.WithError(err).Warn("Invoice details lookup failed")
		return ""
	}
	if result == nil || result.Error != "" || result.Link() == "" {
		entry := logger
		if result != nil && result.Error != "" {
			entry = entry.WithField("error", result.Error)
		}
		entry.Warn("Invoice details lookup returned no link")
		return ""
	}

	link := result.Link()
	added, err := s.metaRepo.AddIfAbsent(ctx, paymentID, entity.MetaInvoiceURL, link)
	if err != nil {
		logger.WithError(err).Warn("Invoice link could not be cached")
	} else if added {
		s.recordEvent(ctx, paymentID, entity.InvoiceEventURLResolved, invoiceID, "")
	}

	return link
}

func (s *InvoiceService) recordEvent(ctx context.Context, paymentID uint64, eventType, invoiceID, reason string) {
	if s.eventRepo == nil {
		return
	}
	_ = s.eventRepo.Create(ctx, &entity.InvoiceEvent{
		PaymentID: paymentID,
		EventType: eventType,
		InvoiceID: normalizeOptionalString(invoiceID),
		Error:     normalizeOptionalString(reason),
		CreatedAt: time.Now().UTC(),
	})
}

func buildDocumentRequest(payment *entity.Payment, member *entity.Member, wallet string) (*provider.DocumentRequest, error) {
	paidAt, err := time.Parse(entity.PaymentDateLayout, strings.TrimSpace(payment.Date))
	if err != nil {
		return nil, fmt.Errorf("%w: payment date %q", errInvalidPaymentDate, payment.Date)
	}
	date := provider.Date{Time: paidAt}

	return &provider.DocumentRequest{
		Name:       member.DisplayName(),
		Street:     member.BillingAddress,
		PostalCode: member.BillingPostalCode,
		City:       member.BillingCity,
		Province:   member.BillingState,
		Country:    member.BillingCountry,
		VATNumber:  member.VATNumber,
		TaxCode:    member.TaxCode,
		Articles: []provider.DocumentArticle{{
			Name:       payment.Subscription,
			GrossPrice: json.Number(strings.TrimSpace(payment.Amount)),
			VATCode:    0,
		}},
		Payments: []provider.DocumentPayment{{
			DueDate:     date,
			Amount:      provider.AmountAuto,
			Method:      wallet,
			SettledDate: date,
		}},
		PricesIncludeVAT: true,
	}, nil
}

func normalizeOptionalString(v string) *string {
	trimmed := strings.TrimSpace(v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
