package cmd

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-invoicing/app/cache"
	"github.com/vibast-solutions/ms-go-invoicing/app/provider"
	"github.com/vibast-solutions/ms-go-invoicing/app/repository"
	"github.com/vibast-solutions/ms-go-invoicing/app/service"
	"github.com/vibast-solutions/ms-go-invoicing/config"
)

type services struct {
	invoice  *service.InvoiceService
	settings *service.SettingsService
}

func mustCreateServices() (*config.Config, *services, func()) {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	if err := configureLogging(cfg); err != nil {
		logrus.WithError(err).Fatal("Failed to configure logging")
	}

	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}

	db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		logrus.WithError(err).Fatal("Failed to ping database")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logrus.WithError(err).Warn("Redis is unreachable, country list will not be cached")
	}
	cancel()

	prefix := cfg.MySQL.TablePrefix
	paymentRepo := repository.NewPaymentRepository(db, prefix)
	memberRepo := repository.NewMemberRepository(db, prefix)
	metaRepo := repository.NewPaymentMetaRepository(db, prefix)
	settingsRepo := repository.NewSettingsRepository(db, prefix)
	eventRepo := repository.NewInvoiceEventRepository(db)

	accounts := provider.NewResolver(provider.FattureInCloudConfig{
		APIUID:      cfg.FattureInCloud.APIUID,
		APIKey:      cfg.FattureInCloud.APIKey,
		BaseURL:     cfg.FattureInCloud.BaseURL,
		HTTPTimeout: cfg.FattureInCloud.HTTPTimeout,
	}, cfg.FattureInCloud.DefaultWallet, settingsRepo)

	transients := cache.NewTransientCache(rdb, cfg.App.ServiceName+":")

	svc := &services{
		invoice: service.NewInvoiceService(
			paymentRepo,
			memberRepo,
			metaRepo,
			eventRepo,
			transients,
			accounts,
			cfg.Invoices,
		),
		settings: service.NewSettingsService(settingsRepo, transients),
	}

	cleanup := func() {
		if err := rdb.Close(); err != nil {
			logrus.WithError(err).Warn("Failed to close redis client")
		}
		if err := db.Close(); err != nil {
			logrus.WithError(err).Warn("Failed to close database")
		}
	}

	return cfg, svc, cleanup
}
