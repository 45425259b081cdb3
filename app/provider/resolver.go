package provider

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-invoicing/app/entity"
	"github.com/vibast-solutions/ms-go-invoicing/app/factory"
)

type settingsReader interface {
	Get(ctx context.Context) (*entity.Settings, error)
}

// Account is an authenticated provider handle plus the wallet payments are
// settled on.
type Account struct {
	Client InvoiceClient
	Wallet string
}

// Resolver builds the provider account from the environment configuration,
// letting non-empty admin settings take precedence.
type Resolver struct {
	cfg           FattureInCloudConfig
	defaultWallet string
	settings      settingsReader
	newClient     func(cfg FattureInCloudConfig) InvoiceClient
	logger        logrus.FieldLogger
}

func NewResolver(cfg FattureInCloudConfig, defaultWallet string, settings settingsReader) *Resolver {
	return &Resolver{
		cfg:           cfg,
		defaultWallet: strings.TrimSpace(defaultWallet),
		settings:      settings,
		newClient: func(cfg FattureInCloudConfig) InvoiceClient {
			return NewFattureInCloudClient(cfg)
		},
		logger: factory.NewModuleLogger("invoice-provider"),
	}
}

func (r *Resolver) Account(ctx context.Context) (*Account, error) {
	cfg := r.cfg
	wallet := r.defaultWallet

	if r.settings != nil {
		stored, err := r.settings.Get(ctx)
		if err != nil {
			r.logger.WithError(err).Warn("Failed to load invoicing settings, using environment configuration")
		} else if stored != nil {
			uid := strings.TrimSpace(stored.APIUID)
			key := strings.TrimSpace(stored.APIKey)
			if uid != "" && key != "" {
				cfg.APIUID = uid
				cfg.APIKey = key
			}
			if w := strings.TrimSpace(stored.Wallet); w != "" {
				wallet = w
			}
		}
	}

	return &Account{
		Client: r.newClient(cfg),
		Wallet: wallet,
	}, nil
}
