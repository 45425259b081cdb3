package service

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-invoicing/app/entity"
	"github.com/vibast-solutions/ms-go-invoicing/app/factory"
)

type settingsRepository interface {
	Get(ctx context.Context) (*entity.Settings, error)
	Save(ctx context.Context, settings *entity.Settings) error
}

type cacheInvalidator interface {
	Delete(ctx context.Context, name string) error
}

type SettingsService struct {
	repo   settingsRepository
	cache  cacheInvalidator
	logger logrus.FieldLogger
}

// NewSettingsService builds the settings service. cache may be nil.
func NewSettingsService(repo settingsRepository, cache cacheInvalidator) *SettingsService {
	return &SettingsService{
		repo:   repo,
		cache:  cache,
		logger: factory.NewModuleLogger("settings-service"),
	}
}

func (s *SettingsService) Get(ctx context.Context) (*entity.Settings, error) {
	settings, err := s.repo.Get(ctx)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		return &entity.Settings{}, nil
	}
	return settings, nil
}

func (s *SettingsService) Save(ctx context.Context, settings *entity.Settings) (*entity.Settings, error) {
	if settings == nil {
		return nil, ErrInvalidRequest
	}
	normalized := &entity.Settings{
		APIUID: strings.TrimSpace(settings.APIUID),
		APIKey: strings.TrimSpace(settings.APIKey),
		Wallet: strings.TrimSpace(settings.Wallet),
	}
	previous, err := s.repo.Get(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to load previous settings")
		previous = nil
	}
	if err := s.repo.Save(ctx, normalized); err != nil {
		return nil, err
	}

	// Cached countries belong to the account that fetched them.
	if previous == nil || previous.APIUID != normalized.APIUID || previous.APIKey != normalized.APIKey {
		s.forgetCountries(ctx)
	}
	return normalized, nil
}

func (s *SettingsService) forgetCountries(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, countriesCacheKey); err != nil {
		s.logger.WithError(err).Warn("Failed to invalidate cached countries")
	}
}
