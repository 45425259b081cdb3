package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/vibast-solutions/ms-go-invoicing/app/factory"
	"github.com/vibast-solutions/ms-go-invoicing/app/service"
	"github.com/vibast-solutions/ms-go-invoicing/config"
)

var (
	workerMode bool
	paymentID  uint64
)

var invoiceCmd = &cobra.Command{
	Use:   "invoice",
	Short: "Run invoice related commands",
}

var invoiceGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Run the invoice workflow for a completed payment",
	Run: func(_ *cobra.Command, _ []string) {
		runCommand(
			"invoice_generate",
			nil,
			func(s *services, ctx context.Context) error {
				state, err := s.invoice.ProcessPaymentCompleted(ctx, paymentID)
				if err != nil {
					return err
				}
				fmt.Printf("payment=%d stage=%s invoice_id=%s invoice_url=%s\n", state.PaymentID, state.Stage(), state.InvoiceID, state.InvoiceURL)
				return nil
			},
		)
	},
}

var invoiceURLCmd = &cobra.Command{
	Use:   "url",
	Short: "Resolve the download link of a payment's invoice",
	Run: func(_ *cobra.Command, _ []string) {
		runCommand(
			"invoice_url",
			nil,
			func(s *services, ctx context.Context) error {
				link, err := s.invoice.ResolveInvoiceURL(ctx, paymentID)
				if err != nil {
					return err
				}
				fmt.Println(link)
				return nil
			},
		)
	},
}

var countriesCmd = &cobra.Command{
	Use:   "countries",
	Short: "Run country list related commands",
}

var countriesWarmCmd = &cobra.Command{
	Use:   "warm",
	Short: "Load the provider's country list into the cache",
	Run: func(_ *cobra.Command, _ []string) {
		runCommand(
			"countries_warm",
			func(cfg *config.Config) time.Duration { return cfg.Jobs.CountriesWarmInterval },
			func(s *services, ctx context.Context) error {
				countries, err := s.invoice.Countries(ctx)
				if err != nil {
					return err
				}
				if len(countries) == 0 {
					return errors.New("country list unavailable")
				}
				return nil
			},
		)
	},
}

func init() {
	rootCmd.AddCommand(invoiceCmd)
	rootCmd.AddCommand(countriesCmd)
	invoiceCmd.AddCommand(invoiceGenerateCmd)
	invoiceCmd.AddCommand(invoiceURLCmd)
	countriesCmd.AddCommand(countriesWarmCmd)

	invoiceCmd.PersistentFlags().Uint64Var(&paymentID, "payment-id", 0, "Payment id")
	_ = invoiceCmd.MarkPersistentFlagRequired("payment-id")
	countriesWarmCmd.Flags().BoolVar(&workerMode, "worker", false, "Run continuously using configured interval")
}

func runCommand(
	name string,
	intervalResolver func(cfg *config.Config) time.Duration,
	fn func(s *services, ctx context.Context) error,
) {
	cfg, svc, cleanup := mustCreateServices()
	defer cleanup()

	if workerMode && intervalResolver != nil {
		runWorker(name, intervalResolver(cfg), svc, fn)
		return
	}

	ctx := context.Background()
	if !runJob(name, func() error { return fn(svc, ctx) }) {
		cleanup()
		os.Exit(1)
	}
}

func runWorker(
	name string,
	interval time.Duration,
	svc *services,
	fn func(s *services, ctx context.Context) error,
) {
	if interval <= 0 {
		logrus.WithField("job", name).Fatal("invalid worker interval")
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runJob(name, func() error { return fn(svc, ctx) })

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	for {
		select {
		case <-quit:
			logrus.WithField("job", name).Info("Worker shutdown requested")
			return
		case <-ticker.C:
			runJob(name, func() error { return fn(svc, ctx) })
		}
	}
}

// runJob runs fn once under a fresh request id and reports whether it
// succeeded.
func runJob(name string, fn func() error) bool {
	logger := factory.LoggerWithRequestID(logrus.WithField("job", name), uuid.NewString())
	start := time.Now()
	err := fn()
	latency := time.Since(start)
	if err != nil {
		if errors.Is(err, service.ErrPaymentNotFound) || errors.Is(err, service.ErrInvalidRequest) {
			logger.WithError(err).WithField("latency", latency.String()).Warn("job_rejected")
			return false
		}
		logger.WithError(err).WithField("latency", latency.String()).Error("job_failed")
		return false
	}
	logger.WithField("latency", latency.String()).Info("job_completed")
	return true
}
